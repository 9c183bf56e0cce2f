package control

import (
	"github.com/markusressel/therm2go/internal/util"
)

// PIController implements a discrete PI loop with HVAC-style
// parameterization. Gains are derived from a proportional band
// (Kelvin per full output swing) and an integral time (minutes),
// the integral term accumulates directly in output units.
type PIController struct {
	// proportional gain in %/K
	kp float64
	// integral gain in %/(K*s)
	ki float64

	setpoint  float64
	isCooling bool

	outMin float64
	outMax float64

	integral   float64
	lastOutput float64
}

// Result is a snapshot of a single controller update.
type Result struct {
	Output float64
	Error  float64
	PTerm  float64
	ITerm  float64
}

// NewPIController creates a PI loop from HVAC tuning parameters.
// proportionalBand is the temperature span in Kelvin over which the
// proportional term alone moves the output across its full range,
// integralTime is the reset time in minutes.
func NewPIController(proportionalBand float64, integralTime float64, outMin float64, outMax float64) *PIController {
	kp, ki := HvacGains(proportionalBand, integralTime)
	return &PIController{
		kp:     kp,
		ki:     ki,
		outMin: outMin,
		outMax: outMax,
	}
}

// HvacGains converts a proportional band (K) and integral time (min)
// into the classic Kp/Ki gain pair.
func HvacGains(proportionalBand float64, integralTime float64) (kp float64, ki float64) {
	kp = 100.0 / proportionalBand
	ki = kp / (integralTime * 60.0)
	return kp, ki
}

// Update advances the loop by dt seconds using the given temperature
// reading and returns the new control output in percent.
//
// The integral increment is skipped while the unclamped output is
// saturated at a limit and the increment would push it further past
// that limit.
func (p *PIController) Update(currentTemp float64, dt float64) Result {
	if dt <= 0 {
		return Result{
			Output: p.lastOutput,
			PTerm:  p.lastOutput - p.integral,
			ITerm:  p.integral,
		}
	}

	err := p.setpoint - currentTemp
	pTerm := p.kp * err

	unclamped := pTerm + p.integral
	increment := p.ki * err * dt
	saturatedHigh := unclamped >= p.outMax && increment > 0
	saturatedLow := unclamped <= p.outMin && increment < 0
	if !saturatedHigh && !saturatedLow {
		p.integral += increment
	}

	output := util.Coerce(pTerm+p.integral, p.outMin, p.outMax)
	p.lastOutput = output

	return Result{
		Output: output,
		Error:  err,
		PTerm:  pTerm,
		ITerm:  p.integral,
	}
}

// SetTarget updates the setpoint for subsequent updates.
func (p *PIController) SetTarget(setpoint float64) {
	p.setpoint = setpoint
}

// Target returns the current setpoint.
func (p *PIController) Target() float64 {
	return p.setpoint
}

// SetCooling switches the loop between heating (positive gains) and
// cooling (negative gains). Calling it with the current direction is
// a no-op, the accumulated integral term survives a direction change.
func (p *PIController) SetCooling(cooling bool) {
	if cooling == p.isCooling {
		return
	}
	p.isCooling = cooling
	p.kp = -p.kp
	p.ki = -p.ki
}

// IsCooling indicates whether the loop currently drives a cooling actuator.
func (p *PIController) IsCooling() bool {
	return p.isCooling
}

// UpdateTunings recomputes the gains from new HVAC parameters while
// preserving the accumulated integral term and the configured direction.
func (p *PIController) UpdateTunings(proportionalBand float64, integralTime float64) {
	kp, ki := HvacGains(proportionalBand, integralTime)
	if p.isCooling {
		kp = -kp
		ki = -ki
	}
	p.kp = kp
	p.ki = ki
}

// UpdateOutputLimits replaces the output clamp range.
func (p *PIController) UpdateOutputLimits(outMin float64, outMax float64) {
	p.outMin = outMin
	p.outMax = outMax
	p.integral = util.Coerce(p.integral, outMin, outMax)
}

// OutputLimits returns the current output clamp range.
func (p *PIController) OutputLimits() (outMin float64, outMax float64) {
	return p.outMin, p.outMax
}

// IntegralTerm returns the accumulated integral term in output units.
func (p *PIController) IntegralTerm() float64 {
	return p.integral
}

// RestoreIntegralTerm seeds the integral term verbatim, used to
// warm-start the loop from persisted state.
func (p *PIController) RestoreIntegralTerm(value float64) {
	p.integral = value
}

// Reset clears the accumulated loop state.
func (p *PIController) Reset() {
	p.integral = 0
	p.lastOutput = 0
}
