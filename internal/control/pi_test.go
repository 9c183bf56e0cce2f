package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHvacGains(t *testing.T) {
	// GIVEN
	proportionalBand := 4.0
	integralTime := 30.0

	// WHEN
	kp, ki := HvacGains(proportionalBand, integralTime)

	// THEN
	assert.InDelta(t, 25.0, kp, 1e-9)
	assert.InDelta(t, 25.0/1800.0, ki, 1e-9)
}

func TestPIControllerFirstUpdate(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)

	// WHEN
	result := controller.Update(18.5, 60)

	// THEN
	assert.InDelta(t, 2.5, result.Error, 1e-9)
	assert.InDelta(t, 62.5, result.PTerm, 1e-9)
	assert.InDelta(t, (25.0/1800.0)*2.5*60, result.ITerm, 1e-9)
	assert.InDelta(t, 64.583333, result.Output, 1e-5)
}

func TestPIControllerOutputIsClamped(t *testing.T) {
	// GIVEN
	controller := NewPIController(1.0, 120.0, 0, 100)
	controller.SetTarget(30.0)

	// WHEN
	result := controller.Update(10.0, 60)

	// THEN
	assert.Equal(t, 100.0, result.Output)
}

func TestPIControllerAntiWindupSkipsIntegrationWhenSaturatedHigh(t *testing.T) {
	// GIVEN
	controller := NewPIController(1.0, 120.0, 0, 100)
	controller.SetTarget(30.0)

	// WHEN
	// the proportional term alone is far beyond the upper limit,
	// so the integral term must not grow
	controller.Update(10.0, 60)
	controller.Update(10.0, 60)
	controller.Update(10.0, 60)

	// THEN
	assert.Equal(t, 0.0, controller.IntegralTerm())
}

func TestPIControllerAntiWindupSkipsIntegrationWhenSaturatedLow(t *testing.T) {
	// GIVEN
	controller := NewPIController(1.0, 120.0, 0, 100)
	controller.SetTarget(10.0)

	// WHEN
	controller.Update(30.0, 60)
	controller.Update(30.0, 60)

	// THEN
	assert.Equal(t, 0.0, controller.IntegralTerm())
	assert.Equal(t, 0.0, controller.Update(30.0, 60).Output)
}

func TestPIControllerIntegratesTowardSetpoint(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)

	// WHEN
	first := controller.Update(20.5, 60)
	second := controller.Update(20.5, 60)

	// THEN
	// constant error, so the proportional term is identical and the
	// integral term keeps ramping the output
	assert.InDelta(t, first.PTerm, second.PTerm, 1e-9)
	assert.Greater(t, second.Output, first.Output)
}

func TestPIControllerNonPositiveDtDoesNotAdvance(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	before := controller.Update(20.0, 60)

	// WHEN
	zeroDt := controller.Update(25.0, 0)
	negativeDt := controller.Update(25.0, -5)

	// THEN
	assert.Equal(t, before.Output, zeroDt.Output)
	assert.Equal(t, before.Output, negativeDt.Output)
	assert.Equal(t, before.ITerm, controller.IntegralTerm())
}

func TestPIControllerCoolingFlipsDirection(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.SetCooling(true)

	// WHEN
	// room warmer than the setpoint, a cooling actuator must open
	result := controller.Update(23.5, 60)

	// THEN
	assert.InDelta(t, -2.5, result.Error, 1e-9)
	assert.InDelta(t, 62.5, result.PTerm, 1e-9)
	assert.Greater(t, result.Output, 62.0)
}

func TestPIControllerSetCoolingIsIdempotent(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.SetCooling(true)
	controller.Update(23.5, 60)
	integral := controller.IntegralTerm()

	// WHEN
	controller.SetCooling(true)
	result := controller.Update(23.5, 0)

	// THEN
	assert.True(t, controller.IsCooling())
	assert.Equal(t, integral, controller.IntegralTerm())
	assert.InDelta(t, integral, result.ITerm, 1e-9)
}

func TestPIControllerDirectionChangePreservesIntegral(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.Update(20.5, 60)
	integral := controller.IntegralTerm()
	assert.Greater(t, integral, 0.0)

	// WHEN
	controller.SetCooling(true)

	// THEN
	assert.Equal(t, integral, controller.IntegralTerm())
}

func TestPIControllerUpdateTuningsPreservesIntegral(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.Update(20.5, 60)
	integral := controller.IntegralTerm()

	// WHEN
	controller.UpdateTunings(2.0, 60.0)
	result := controller.Update(20.5, 60)

	// THEN
	assert.InDelta(t, 50.0*0.5, result.PTerm, 1e-9)
	assert.Greater(t, result.ITerm, integral)
}

func TestPIControllerUpdateTuningsKeepsCoolingSign(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.SetCooling(true)

	// WHEN
	controller.UpdateTunings(2.0, 60.0)
	result := controller.Update(23.0, 60)

	// THEN
	assert.InDelta(t, 100.0, result.PTerm, 1e-9)
}

func TestPIControllerRestoreIntegralTerm(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)

	// WHEN
	controller.RestoreIntegralTerm(42.0)

	// THEN
	assert.Equal(t, 42.0, controller.IntegralTerm())
}

func TestPIControllerRestoreIntegralTermIsVerbatim(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)

	// WHEN
	// restored values round-trip untouched, the output clamp still
	// applies on update
	controller.RestoreIntegralTerm(250.0)

	// THEN
	assert.Equal(t, 250.0, controller.IntegralTerm())
	assert.Equal(t, 100.0, controller.Update(21.0, 60).Output)
}

func TestPIControllerUpdateOutputLimitsClampsIntegral(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.RestoreIntegralTerm(90.0)

	// WHEN
	controller.UpdateOutputLimits(0, 50)

	// THEN
	assert.Equal(t, 50.0, controller.IntegralTerm())
}

func TestPIControllerReset(t *testing.T) {
	// GIVEN
	controller := NewPIController(4.0, 30.0, 0, 100)
	controller.SetTarget(21.0)
	controller.Update(20.0, 60)

	// WHEN
	controller.Reset()

	// THEN
	assert.Equal(t, 0.0, controller.IntegralTerm())
	assert.Equal(t, 0.0, controller.Update(20.0, 0).Output)
}
