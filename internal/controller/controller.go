package controller

import (
	"context"
	"sync"
	"time"

	"github.com/markusressel/therm2go/internal/climate"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/control"
	"github.com/markusressel/therm2go/internal/outputs"
	"github.com/markusressel/therm2go/internal/persistence"
	"github.com/markusressel/therm2go/internal/sensors"
	"github.com/markusressel/therm2go/internal/ui"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// CycleResult is the outcome of a single control cycle of a zone.
type CycleResult struct {
	ZoneId string    `json:"zoneId"`
	Time   time.Time `json:"time"`

	// Output is the control value in percent that applies after this
	// cycle, held values included
	Output float64 `json:"output"`

	Error       *float64 `json:"error,omitempty"`
	PTerm       *float64 `json:"pTerm,omitempty"`
	ITerm       *float64 `json:"iTerm,omitempty"`
	CurrentTemp *float64 `json:"currentTemp,omitempty"`
	TargetTemp  *float64 `json:"targetTemp,omitempty"`

	SensorAvailable bool   `json:"sensorAvailable"`
	FaultState      string `json:"faultState"`

	// Active indicates that the zone is actively driving its actuator
	// (output > 0)
	Active bool `json:"active"`

	WriteFailed bool `json:"writeFailed"`
}

type ZoneController interface {
	GetId() string

	// Run executes control cycles at the configured sample interval
	// until the context is cancelled
	Run(ctx context.Context) error

	// Cycle executes a single control cycle
	Cycle(now time.Time) CycleResult

	// LastResult returns the outcome of the most recent cycle
	LastResult() CycleResult
}

var ControllerMap = cmap.New[ZoneController]()

type zoneController struct {
	mutex sync.Mutex

	// snapshot returns the current zone configuration, picking up
	// runtime tuning changes between cycles
	snapshot func() configuration.ZoneConfig

	pers         persistence.Persistence
	sensor       sensors.Sensor
	targetSensor sensors.Sensor
	clim         climate.Climate
	output       outputs.Output

	pi    *control.PIController
	fault *FaultMonitor

	appliedPi configuration.PiConfig

	lastGoodOutput *float64
	lastResult     CycleResult
	lastUpdate     time.Time
}

func NewZoneController(
	snapshot func() configuration.ZoneConfig,
	pers persistence.Persistence,
	sensor sensors.Sensor,
	targetSensor sensors.Sensor,
	clim climate.Climate,
	output outputs.Output,
) ZoneController {
	zone := snapshot()

	pi := control.NewPIController(
		zone.Pi.ProportionalBand,
		zone.Pi.IntegralTime,
		zone.Pi.OutputMin,
		zone.Pi.OutputMax,
	)
	pi.SetTarget(zone.TargetTemp)
	if zone.OperatingMode == configuration.OperatingModeCool {
		pi.SetCooling(true)
	}

	c := &zoneController{
		snapshot:     snapshot,
		pers:         pers,
		sensor:       sensor,
		targetSensor: targetSensor,
		clim:         clim,
		output:       output,
		pi:           pi,
		fault:        NewFaultMonitor(zone.SensorFaultPolicy, zone.SensorFaultGracePeriod),
		appliedPi:    zone.Pi,
		lastResult:   CycleResult{ZoneId: zone.ID},
	}
	c.seedIntegralTerm(zone)

	return c
}

// seedIntegralTerm applies the configured integral startup policy.
func (c *zoneController) seedIntegralTerm(zone configuration.ZoneConfig) {
	switch zone.IntegralStartup.Mode {
	case configuration.IntegralStartupZero:
		return
	case configuration.IntegralStartupFixed:
		c.pi.RestoreIntegralTerm(zone.IntegralStartup.Value)
	case configuration.IntegralStartupRestore:
		if c.pers == nil {
			c.pi.RestoreIntegralTerm(zone.IntegralStartup.Value)
			return
		}
		state, err := c.pers.LoadControllerState(zone.ID)
		if err != nil {
			ui.Warning("Zone %s: unable to load persisted state: %v", zone.ID, err)
		}
		if state != nil {
			c.pi.RestoreIntegralTerm(state.IntegralTerm)
			ui.Debug("Zone %s: restored integral term %f from %s", zone.ID, state.IntegralTerm, state.SavedAt)
		} else {
			c.pi.RestoreIntegralTerm(zone.IntegralStartup.Value)
		}
	}
}

func (c *zoneController) GetId() string {
	return c.snapshot().ID
}

func (c *zoneController) Run(ctx context.Context) error {
	zone := c.snapshot()
	ui.Info("Starting control loop for zone %s", zone.ID)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			ui.Info("Stopping control loop for zone %s", zone.ID)
			return nil
		case now := <-timer.C:
			result := c.Cycle(now)
			ui.Debug("Zone %s: cycle finished, output %.2f%% (state: %s)", result.ZoneId, result.Output, result.FaultState)
			timer.Reset(c.snapshot().SampleInterval)
		}
	}
}

func (c *zoneController) Cycle(now time.Time) CycleResult {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	zone := c.snapshot()
	result := CycleResult{
		ZoneId:     zone.ID,
		Time:       now,
		FaultState: c.fault.State().String(),
	}

	if !zone.Enabled.Get() {
		// paused: report zero without touching the loop state or the
		// actuator
		result.Output = 0
		c.lastUpdate = time.Time{}
		c.lastResult = result
		return result
	}

	readings := c.collectReadings(zone)
	resolution := ResolveSources(zone, readings)

	if resolution.AutoDisabled {
		// the hvac is off, shut the actuator regardless of sensor state
		result.Output = 0
		c.writeOutput(zone, 0, &result)
		c.lastGoodOutput = nil
		c.lastUpdate = time.Time{}
		c.lastResult = result
		return result
	}

	result.SensorAvailable = resolution.HasCurrent
	state := c.fault.Observe(resolution.HasCurrent, now)
	result.FaultState = state.String()

	if !resolution.HasCurrent {
		c.lastUpdate = time.Time{}
		switch state {
		case FaultGrace:
			// hold the last known good output without rewriting it
			if c.lastGoodOutput != nil {
				result.Output = *c.lastGoodOutput
			}
		case FaultFaulted:
			result.Output = 0
			c.writeOutput(zone, 0, &result)
			c.lastGoodOutput = nil
		}
		result.Active = result.Output > 0
		c.lastResult = result
		return result
	}

	c.applyTuningChanges(zone)

	if !resolution.HasDirection {
		// without a known actuator direction the loop stays frozen at
		// its current output
		if c.lastGoodOutput != nil {
			result.Output = *c.lastGoodOutput
		}
		result.Active = result.Output > 0
		c.lastUpdate = time.Time{}
		c.lastResult = result
		return result
	}

	c.pi.SetCooling(resolution.IsCooling)
	if resolution.HasTarget {
		c.pi.SetTarget(resolution.TargetTemp)
	}

	dt := zone.SampleInterval.Seconds()
	if !c.lastUpdate.IsZero() {
		dt = now.Sub(c.lastUpdate).Seconds()
	}
	c.lastUpdate = now

	loopResult := c.pi.Update(resolution.CurrentTemp, dt)

	target := c.pi.Target()
	result.Output = loopResult.Output
	result.Active = result.Output > 0
	result.Error = &loopResult.Error
	result.PTerm = &loopResult.PTerm
	result.ITerm = &loopResult.ITerm
	result.CurrentTemp = &resolution.CurrentTemp
	result.TargetTemp = &target

	c.writeOutput(zone, loopResult.Output, &result)

	output := loopResult.Output
	c.lastGoodOutput = &output

	c.persistState(zone, now)

	c.lastResult = result
	return result
}

func (c *zoneController) LastResult() CycleResult {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastResult
}

func (c *zoneController) collectReadings(zone configuration.ZoneConfig) Readings {
	readings := Readings{}

	if c.sensor != nil {
		_, err := c.sensor.GetValue()
		if err != nil {
			ui.Debug("Zone %s: sensor unavailable: %v", zone.ID, err)
		} else {
			// the loop consumes the smoothed view maintained by the
			// sensor monitor, availability follows the raw reading
			smoothed := c.sensor.GetMovingAvg()
			readings.SensorTemp = &smoothed
		}
	}

	if c.clim != nil {
		attributes, err := c.clim.GetAttributes()
		if err != nil {
			ui.Debug("Zone %s: climate unavailable: %v", zone.ID, err)
		} else {
			readings.Climate = &attributes
		}
	}

	if c.targetSensor != nil {
		value, err := c.targetSensor.GetValue()
		if err != nil {
			ui.Debug("Zone %s: target sensor unavailable: %v", zone.ID, err)
		} else {
			readings.ExternalTarget = &value
		}
	}

	return readings
}

// applyTuningChanges pushes runtime configuration changes into the
// loop without losing the accumulated integral term.
func (c *zoneController) applyTuningChanges(zone configuration.ZoneConfig) {
	if zone.Pi == c.appliedPi {
		return
	}

	if zone.Pi.ProportionalBand != c.appliedPi.ProportionalBand ||
		zone.Pi.IntegralTime != c.appliedPi.IntegralTime {
		c.pi.UpdateTunings(zone.Pi.ProportionalBand, zone.Pi.IntegralTime)
	}
	if zone.Pi.OutputMin != c.appliedPi.OutputMin ||
		zone.Pi.OutputMax != c.appliedPi.OutputMax {
		c.pi.UpdateOutputLimits(zone.Pi.OutputMin, zone.Pi.OutputMax)
	}

	ui.Info("Zone %s: applied tuning change", zone.ID)
	c.appliedPi = zone.Pi
}

func (c *zoneController) writeOutput(zone configuration.ZoneConfig, value float64, result *CycleResult) {
	if c.output == nil {
		return
	}
	err := c.output.Set(value)
	if err != nil {
		ui.Warning("Zone %s: unable to write output: %v", zone.ID, err)
		result.WriteFailed = true
	}
}

func (c *zoneController) persistState(zone configuration.ZoneConfig, now time.Time) {
	if c.pers == nil {
		return
	}
	err := c.pers.SaveControllerState(zone.ID, persistence.ControllerState{
		IntegralTerm: c.pi.IntegralTerm(),
		SavedAt:      now,
	})
	if err != nil {
		ui.Warning("Zone %s: unable to persist state: %v", zone.ID, err)
	}
}
