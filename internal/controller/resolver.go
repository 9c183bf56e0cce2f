package controller

import (
	"github.com/markusressel/therm2go/internal/climate"
	"github.com/markusressel/therm2go/internal/configuration"
)

// Readings is the raw per-cycle input of a zone. Pointer fields are
// nil when the corresponding source was unavailable this cycle.
type Readings struct {
	// SensorTemp is the reading of the zone's temperature sensor
	SensorTemp *float64
	// Climate is the state of the zone's climate source
	Climate *climate.Attributes
	// ExternalTarget is the reading of the external setpoint sensor
	ExternalTarget *float64
}

// Resolution is the outcome of mapping raw readings onto the control
// inputs of a single cycle.
type Resolution struct {
	// CurrentTemp is the process value fed into the loop, only valid
	// when HasCurrent is set
	CurrentTemp float64
	HasCurrent  bool

	// TargetTemp is the resolved setpoint, only valid when HasTarget is
	// set. A missing setpoint keeps the previously applied one.
	TargetTemp float64
	HasTarget  bool

	// IsCooling is the resolved actuator direction, only valid when
	// HasDirection is set. Without a direction the loop is frozen.
	IsCooling    bool
	HasDirection bool

	// AutoDisabled is set when the climate device reports hvac mode
	// "off" and the zone is configured to follow it
	AutoDisabled bool
}

// ResolveSources maps the raw readings of one cycle onto the control
// inputs according to the zone configuration. It is a pure function,
// availability bookkeeping is left to the FaultMonitor.
func ResolveSources(zone configuration.ZoneConfig, readings Readings) Resolution {
	resolution := Resolution{}

	// the dedicated sensor wins over the climate's own reading
	if readings.SensorTemp != nil {
		resolution.CurrentTemp = *readings.SensorTemp
		resolution.HasCurrent = true
	} else if readings.Climate != nil && readings.Climate.CurrentTemp != nil {
		resolution.CurrentTemp = *readings.Climate.CurrentTemp
		resolution.HasCurrent = true
	}

	switch zone.TargetTempMode {
	case configuration.TargetModeInternal:
		resolution.TargetTemp = zone.TargetTemp
		resolution.HasTarget = true
	case configuration.TargetModeExternal:
		if readings.ExternalTarget != nil {
			resolution.TargetTemp = *readings.ExternalTarget
			resolution.HasTarget = true
		}
	case configuration.TargetModeClimate:
		if readings.Climate != nil && readings.Climate.TargetTemp != nil {
			resolution.TargetTemp = *readings.Climate.TargetTemp
			resolution.HasTarget = true
		}
	}

	switch zone.OperatingMode {
	case configuration.OperatingModeHeat:
		resolution.IsCooling = false
		resolution.HasDirection = true
	case configuration.OperatingModeCool:
		resolution.IsCooling = true
		resolution.HasDirection = true
	case configuration.OperatingModeHeatCool:
		if readings.Climate != nil {
			switch readings.Climate.HvacAction {
			case climate.ActionHeating:
				resolution.IsCooling = false
				resolution.HasDirection = true
			case climate.ActionCooling:
				resolution.IsCooling = true
				resolution.HasDirection = true
			}
		}
	}

	if zone.AutoDisableOnHvacOff.Get() &&
		readings.Climate != nil &&
		readings.Climate.HvacMode == climate.ModeOff {
		resolution.AutoDisabled = true
	}

	return resolution
}
