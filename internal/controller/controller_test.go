package controller

import (
	"errors"
	"testing"
	"time"

	"github.com/markusressel/therm2go/internal/climate"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/persistence"
	"github.com/stretchr/testify/assert"
)

type mockSensor struct {
	value     float64
	err       error
	movingAvg float64
	config    configuration.SensorConfig
}

// newMockSensor creates a healthy sensor whose moving average already
// settled on the raw reading
func newMockSensor(value float64) *mockSensor {
	return &mockSensor{value: value, movingAvg: value}
}

func (s *mockSensor) GetId() string                         { return s.config.ID }
func (s *mockSensor) GetConfig() configuration.SensorConfig { return s.config }
func (s *mockSensor) GetValue() (float64, error)            { return s.value, s.err }
func (s *mockSensor) GetMovingAvg() float64                 { return s.movingAvg }
func (s *mockSensor) SetMovingAvg(avg float64)              { s.movingAvg = avg }

type mockClimate struct {
	attributes climate.Attributes
	err        error
	config     configuration.ClimateConfig
}

func (c *mockClimate) GetId() string                          { return c.config.ID }
func (c *mockClimate) GetConfig() configuration.ClimateConfig { return c.config }
func (c *mockClimate) GetAttributes() (climate.Attributes, error) {
	return c.attributes, c.err
}

type mockOutput struct {
	written []float64
	err     error
	config  configuration.OutputConfig
}

func (o *mockOutput) GetId() string                         { return o.config.ID }
func (o *mockOutput) GetConfig() configuration.OutputConfig { return o.config }
func (o *mockOutput) Set(value float64) error {
	if o.err != nil {
		return o.err
	}
	o.written = append(o.written, value)
	return nil
}

type mockPersistence struct {
	states map[string]persistence.ControllerState
}

func newMockPersistence() *mockPersistence {
	return &mockPersistence{states: map[string]persistence.ControllerState{}}
}

func (p *mockPersistence) Init() error { return nil }

func (p *mockPersistence) LoadControllerState(zoneId string) (*persistence.ControllerState, error) {
	state, ok := p.states[zoneId]
	if !ok {
		return nil, nil
	}
	return &state, nil
}

func (p *mockPersistence) SaveControllerState(zoneId string, state persistence.ControllerState) error {
	p.states[zoneId] = state
	return nil
}

func (p *mockPersistence) DeleteControllerState(zoneId string) error {
	delete(p.states, zoneId)
	return nil
}

func defaultTestZone() configuration.ZoneConfig {
	return configuration.ZoneConfig{
		ID:             "livingroom",
		Sensor:         "room_temp",
		Output:         "valve",
		OperatingMode:  configuration.OperatingModeHeat,
		TargetTempMode: configuration.TargetModeInternal,
		TargetTemp:     21.0,
		Pi: configuration.PiConfig{
			ProportionalBand: 4.0,
			IntegralTime:     30.0,
			OutputMin:        0,
			OutputMax:        100,
		},
		SampleInterval:         60 * time.Second,
		SensorFaultPolicy:      configuration.FaultPolicyShutdown,
		SensorFaultGracePeriod: 300 * time.Second,
		IntegralStartup: configuration.IntegralStartupConfig{
			Mode: configuration.IntegralStartupZero,
		},
	}
}

func snapshotOf(zone *configuration.ZoneConfig) func() configuration.ZoneConfig {
	return func() configuration.ZoneConfig { return *zone }
}

func TestZoneControllerHealthyCycle(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := newMockSensor(18.5)
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.True(t, result.Active)
	assert.False(t, result.WriteFailed)
	assert.InDelta(t, 2.5, *result.Error, 1e-9)
	assert.InDelta(t, 62.5, *result.PTerm, 1e-9)
	assert.InDelta(t, 64.583333, result.Output, 1e-5)
	assert.Len(t, output.written, 1)
	assert.InDelta(t, 64.583333, output.written[0], 1e-5)
}

func TestZoneControllerDisabledZoneDoesNotWrite(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.Enabled.Set(false)
	sensor := newMockSensor(18.5)
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.False(t, result.Active)
	assert.Equal(t, 0.0, result.Output)
	assert.Empty(t, output.written)
}

func TestZoneControllerAutoDisableWritesZero(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.Climate = "thermostat"
	sensor := newMockSensor(18.5)
	clim := &mockClimate{attributes: climate.Attributes{HvacMode: climate.ModeOff}}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, clim, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.False(t, result.Active)
	assert.Equal(t, 0.0, result.Output)
	assert.Equal(t, []float64{0}, output.written)
}

func TestZoneControllerShutdownPolicyWritesZeroOnFault(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := &mockSensor{err: errors.New("read failed")}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.False(t, result.Active)
	assert.False(t, result.SensorAvailable)
	assert.Equal(t, "faulted", result.FaultState)
	assert.Equal(t, []float64{0}, output.written)
}

func TestZoneControllerHoldPolicyHoldsLastGoodOutput(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.SensorFaultPolicy = configuration.FaultPolicyHold
	sensor := newMockSensor(18.5)
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)
	start := time.Now()
	healthy := c.Cycle(start)

	// WHEN
	sensor.err = errors.New("read failed")
	held := c.Cycle(start.Add(60 * time.Second))

	// THEN
	assert.Equal(t, "grace", held.FaultState)
	assert.Equal(t, healthy.Output, held.Output)
	// the held value is not rewritten
	assert.Len(t, output.written, 1)
}

func TestZoneControllerHoldPolicyShutsDownAfterGracePeriod(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.SensorFaultPolicy = configuration.FaultPolicyHold
	sensor := newMockSensor(18.5)
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)
	start := time.Now()
	c.Cycle(start)

	// WHEN
	sensor.err = errors.New("read failed")
	c.Cycle(start.Add(60 * time.Second))
	faulted := c.Cycle(start.Add(400 * time.Second))

	// THEN
	assert.Equal(t, "faulted", faulted.FaultState)
	assert.Equal(t, 0.0, faulted.Output)
	assert.Equal(t, 0.0, output.written[len(output.written)-1])
}

func TestZoneControllerHoldWithoutPriorOutputStaysAtZero(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.SensorFaultPolicy = configuration.FaultPolicyHold
	sensor := &mockSensor{err: errors.New("read failed")}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.Equal(t, "grace", result.FaultState)
	assert.Equal(t, 0.0, result.Output)
	assert.Empty(t, output.written)
}

func TestZoneControllerRecoversAfterFault(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := &mockSensor{err: errors.New("read failed")}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)
	start := time.Now()
	c.Cycle(start)

	// WHEN
	sensor.err = nil
	sensor.value = 18.5
	result := c.Cycle(start.Add(60 * time.Second))

	// THEN
	assert.True(t, result.Active)
	assert.Equal(t, "ok", result.FaultState)
	assert.Greater(t, result.Output, 0.0)
}

func TestZoneControllerFreezesWithoutDirection(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.OperatingMode = configuration.OperatingModeHeatCool
	zone.Climate = "thermostat"
	sensor := newMockSensor(18.5)
	clim := &mockClimate{attributes: climate.Attributes{HvacAction: climate.ActionHeating}}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, clim, output)
	heating := c.Cycle(time.Now())

	// WHEN
	clim.attributes.HvacAction = climate.ActionIdle
	frozen := c.Cycle(time.Now().Add(60 * time.Second))

	// THEN
	// the frozen cycle reports no loop terms and does not rewrite the
	// held output
	assert.NotNil(t, heating.Error)
	assert.Nil(t, frozen.Error)
	assert.Equal(t, heating.Output, frozen.Output)
	assert.Len(t, output.written, 1)
}

func TestZoneControllerWriteFailureIsRecorded(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := newMockSensor(18.5)
	output := &mockOutput{err: errors.New("device busy")}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.True(t, result.Active)
	assert.True(t, result.WriteFailed)
}

func TestZoneControllerPersistsIntegralTerm(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	pers := newMockPersistence()
	sensor := newMockSensor(20.5)
	c := NewZoneController(snapshotOf(&zone), pers, sensor, nil, nil, &mockOutput{})

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	state, err := pers.LoadControllerState(zone.ID)
	assert.NoError(t, err)
	assert.NotNil(t, state)
	assert.InDelta(t, *result.ITerm, state.IntegralTerm, 1e-9)
}

func TestZoneControllerRestoresIntegralTermOnStartup(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.IntegralStartup.Mode = configuration.IntegralStartupRestore
	pers := newMockPersistence()
	_ = pers.SaveControllerState(zone.ID, persistence.ControllerState{IntegralTerm: 30.0})
	sensor := newMockSensor(21.0)

	// WHEN
	c := NewZoneController(snapshotOf(&zone), pers, sensor, nil, nil, &mockOutput{})
	result := c.Cycle(time.Now())

	// THEN
	// zero error, so the output is carried entirely by the restored
	// integral term
	assert.InDelta(t, 30.0, result.Output, 1e-9)
}

func TestZoneControllerFixedIntegralStartup(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	zone.IntegralStartup.Mode = configuration.IntegralStartupFixed
	zone.IntegralStartup.Value = 25.0
	sensor := newMockSensor(21.0)

	// WHEN
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, &mockOutput{})
	result := c.Cycle(time.Now())

	// THEN
	assert.InDelta(t, 25.0, result.Output, 1e-9)
}

func TestZoneControllerAppliesRuntimeTuningChanges(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := newMockSensor(20.5)
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, &mockOutput{})
	start := time.Now()
	c.Cycle(start)
	integralBefore := *c.LastResult().ITerm

	// WHEN
	zone.Pi.ProportionalBand = 2.0
	result := c.Cycle(start.Add(60 * time.Second))

	// THEN
	// the narrower band doubles the proportional gain while the
	// integral term carries on
	assert.InDelta(t, 50.0*0.5, *result.PTerm, 1e-9)
	assert.Greater(t, *result.ITerm, integralBefore)
}

func TestZoneControllerUsesElapsedTimeBetweenCycles(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := newMockSensor(20.5)
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, &mockOutput{})
	start := time.Now()
	first := c.Cycle(start)

	// WHEN
	// twice the sample interval elapsed, the integral term must grow
	// by twice the per-interval increment
	second := c.Cycle(start.Add(120 * time.Second))

	// THEN
	perInterval := *first.ITerm
	assert.InDelta(t, perInterval*3, *second.ITerm, 1e-9)
}

func TestZoneControllerLastResult(t *testing.T) {
	// GIVEN
	zone := defaultTestZone()
	sensor := newMockSensor(18.5)
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, &mockOutput{})

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.Equal(t, result, c.LastResult())
}

func TestZoneControllerUsesSmoothedSensorValue(t *testing.T) {
	// GIVEN
	// raw reading and moving average diverge, the loop has to follow
	// the smoothed value
	zone := defaultTestZone()
	sensor := &mockSensor{value: 25.0, movingAvg: 18.5}
	output := &mockOutput{}
	c := NewZoneController(snapshotOf(&zone), nil, sensor, nil, nil, output)

	// WHEN
	result := c.Cycle(time.Now())

	// THEN
	assert.Equal(t, 18.5, *result.CurrentTemp)
	assert.InDelta(t, 2.5, *result.Error, 1e-9)
	assert.InDelta(t, 64.583333, result.Output, 1e-5)
}
