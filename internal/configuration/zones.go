package configuration

import "time"

const (
	// OperatingModeHeat drives a heating actuator, gains are positive
	OperatingModeHeat = "heat"
	// OperatingModeCool drives a cooling actuator, gains are negative
	OperatingModeCool = "cool"
	// OperatingModeHeatCool follows the hvac action of the climate source
	OperatingModeHeatCool = "heat_cool"
)

const (
	// TargetModeInternal uses the targetTemp value from the zone configuration
	TargetModeInternal = "internal"
	// TargetModeExternal reads the setpoint from a dedicated sensor
	TargetModeExternal = "external"
	// TargetModeClimate reads the setpoint from the climate source
	TargetModeClimate = "climate"
)

const (
	// FaultPolicyShutdown forces the output to 0% as soon as the sensor
	// becomes unavailable
	FaultPolicyShutdown = "shutdown"
	// FaultPolicyHold keeps the last known good output for the grace
	// period, then shuts down
	FaultPolicyHold = "hold"
)

const (
	// IntegralStartupRestore restores the persisted integral term,
	// falling back to the configured fixed value when nothing was stored
	IntegralStartupRestore = "restore"
	// IntegralStartupFixed always starts from the configured fixed value
	IntegralStartupFixed = "fixed"
	// IntegralStartupZero always starts from a zero integral term
	IntegralStartupZero = "zero"
)

const (
	DefaultProportionalBand = 4.0
	DefaultIntegralTime     = 120.0
	DefaultOutputMax        = 100.0
	DefaultTargetTemp       = 20.0
	DefaultSampleInterval   = 60 * time.Second
	DefaultGracePeriod      = 300 * time.Second
)

// PiConfig holds the HVAC-style tuning parameters of a zone.
// ProportionalBand is the temperature span in Kelvin over which the output
// moves from 0% to 100%, IntegralTime is the reset time in minutes.
type PiConfig struct {
	ProportionalBand float64 `json:"proportionalBand"`
	IntegralTime     float64 `json:"integralTime"`
	OutputMin        float64 `json:"outputMin"`
	OutputMax        float64 `json:"outputMax"`
}

type IntegralStartupConfig struct {
	Mode  string  `json:"mode"`
	Value float64 `json:"value"`
}

type ZoneConfig struct {
	ID string `json:"id"`

	// Enabled is the master switch of the zone, defaults to true
	Enabled DefaultTrueBool `json:"enabled"`

	// Sensor is the id of the temperature sensor of this zone (optional
	// if a climate source provides a current temperature)
	Sensor string `json:"sensor"`
	// Climate is the id of the climate source of this zone (optional)
	Climate string `json:"climate"`
	// Output is the id of the output the computed value is written to (optional)
	Output string `json:"output"`

	OperatingMode        string          `json:"operatingMode"`
	AutoDisableOnHvacOff DefaultTrueBool `json:"autoDisableOnHvacOff"`

	TargetTempMode string  `json:"targetTempMode"`
	TargetTemp     float64 `json:"targetTemp"`
	// TargetSensor is the id of the sensor providing the external setpoint
	// when targetTempMode is "external"
	TargetSensor string `json:"targetSensor"`

	Pi PiConfig `json:"pi"`

	SampleInterval time.Duration `json:"sampleInterval"`

	SensorFaultPolicy      string        `json:"sensorFaultPolicy"`
	SensorFaultGracePeriod time.Duration `json:"sensorFaultGracePeriod"`

	IntegralStartup IntegralStartupConfig `json:"integralStartup"`
}

func applyZoneDefaults(zone *ZoneConfig) {
	if zone.OperatingMode == "" {
		zone.OperatingMode = OperatingModeHeatCool
	}
	if zone.TargetTempMode == "" {
		zone.TargetTempMode = TargetModeInternal
	}
	if zone.TargetTemp == 0 {
		zone.TargetTemp = DefaultTargetTemp
	}
	if zone.Pi.ProportionalBand == 0 {
		zone.Pi.ProportionalBand = DefaultProportionalBand
	}
	if zone.Pi.IntegralTime == 0 {
		zone.Pi.IntegralTime = DefaultIntegralTime
	}
	if zone.Pi.OutputMax == 0 {
		zone.Pi.OutputMax = DefaultOutputMax
	}
	if zone.SampleInterval == 0 {
		zone.SampleInterval = DefaultSampleInterval
	}
	if zone.SensorFaultPolicy == "" {
		zone.SensorFaultPolicy = FaultPolicyShutdown
	}
	if zone.SensorFaultGracePeriod == 0 {
		zone.SensorFaultGracePeriod = DefaultGracePeriod
	}
	if zone.IntegralStartup.Mode == "" {
		zone.IntegralStartup.Mode = IntegralStartupRestore
	}
}
