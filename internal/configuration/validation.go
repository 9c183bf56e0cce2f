package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/looplab/tarjan"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/markusressel/therm2go/internal/util"
	"golang.org/x/exp/slices"
)

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	err := validateSensors(config)
	if err != nil {
		return err
	}
	err = validateClimates(config)
	if err != nil {
		return err
	}
	err = validateOutputs(config)
	if err != nil {
		return err
	}
	err = validateZones(config)
	if err != nil {
		return err
	}

	if containsCmdCollaborators(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return errors.New(fmt.Sprintf("Config file '%s' has invalid permissions: %s", path, err))
		}
	}

	return nil
}

func containsCmdCollaborators(config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Cmd != nil {
			return true
		}
	}
	for _, outputConfig := range config.Outputs {
		if outputConfig.Cmd != nil {
			return true
		}
	}

	return false
}

func validateSensors(config *Configuration) error {
	graph := make(map[interface{}][]interface{})

	for _, sensorConfig := range config.Sensors {
		subConfigs := 0
		if sensorConfig.File != nil {
			subConfigs++
		}
		if sensorConfig.Cmd != nil {
			subConfigs++
		}
		if sensorConfig.Mqtt != nil {
			subConfigs++
		}
		if sensorConfig.Virtual != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return errors.New(fmt.Sprintf("Sensor %s: only one sensor type can be used per sensor definition block", sensorConfig.ID))
		}
		if subConfigs <= 0 {
			return errors.New(fmt.Sprintf("Sensor %s: sub-configuration for sensor is missing, use one of: file | cmd | mqtt | virtual", sensorConfig.ID))
		}

		if !isSensorConfigInUse(sensorConfig, config) {
			ui.Warning("Unused sensor configuration: %s", sensorConfig.ID)
		}

		if sensorConfig.File != nil {
			if len(sensorConfig.File.Path) <= 0 {
				return errors.New(fmt.Sprintf("Sensor %s: no file path provided", sensorConfig.ID))
			}
		}

		if sensorConfig.Cmd != nil {
			if len(sensorConfig.Cmd.Exec) <= 0 {
				return errors.New(fmt.Sprintf("Sensor %s: executable is missing", sensorConfig.ID))
			}
		}

		if sensorConfig.Mqtt != nil {
			if len(config.Mqtt.Broker) <= 0 {
				return errors.New(fmt.Sprintf("Sensor %s: mqtt sensor configured but no mqtt broker is set", sensorConfig.ID))
			}
			if len(sensorConfig.Mqtt.Topic) <= 0 {
				return errors.New(fmt.Sprintf("Sensor %s: missing mqtt topic", sensorConfig.ID))
			}
		}

		if sensorConfig.Virtual != nil {
			if len(sensorConfig.Virtual.Sensors) <= 0 {
				return errors.New(fmt.Sprintf("Sensor %s: virtual sensor references no sensors", sensorConfig.ID))
			}

			var connections []interface{}
			for _, member := range sensorConfig.Virtual.Sensors {
				if member == sensorConfig.ID {
					return errors.New(fmt.Sprintf("Sensor %s: a virtual sensor cannot reference itself", sensorConfig.ID))
				}
				if !sensorIdExists(member, config) {
					return errors.New(fmt.Sprintf("Sensor %s: no sensor definition with id '%s' found", sensorConfig.ID, member))
				}
				connections = append(connections, member)
			}
			graph[sensorConfig.ID] = connections
		}
	}

	return validateNoLoops(graph)
}

func validateNoLoops(graph map[interface{}][]interface{}) error {
	output := tarjan.Connections(graph)
	for _, items := range output {
		if len(items) > 1 {
			return errors.New(fmt.Sprintf("You have created a virtual sensor dependency cycle: %v", items))
		}
	}
	return nil
}

func isSensorConfigInUse(config SensorConfig, c *Configuration) bool {
	for _, zoneConfig := range c.Zones {
		if zoneConfig.Sensor == config.ID || zoneConfig.TargetSensor == config.ID {
			return true
		}
	}
	for _, sensorConfig := range c.Sensors {
		if sensorConfig.Virtual != nil && slices.Contains(sensorConfig.Virtual.Sensors, config.ID) {
			return true
		}
	}

	return false
}

func validateClimates(config *Configuration) error {
	for _, climateConfig := range config.Climates {
		subConfigs := 0
		if climateConfig.File != nil {
			subConfigs++
		}
		if climateConfig.Mqtt != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return errors.New(fmt.Sprintf("Climate %s: only one climate type can be used per climate definition block", climateConfig.ID))
		}
		if subConfigs <= 0 {
			return errors.New(fmt.Sprintf("Climate %s: sub-configuration for climate is missing, use one of: file | mqtt", climateConfig.ID))
		}

		if climateConfig.File != nil && len(climateConfig.File.Path) <= 0 {
			return errors.New(fmt.Sprintf("Climate %s: no file path provided", climateConfig.ID))
		}

		if climateConfig.Mqtt != nil {
			if len(config.Mqtt.Broker) <= 0 {
				return errors.New(fmt.Sprintf("Climate %s: mqtt climate configured but no mqtt broker is set", climateConfig.ID))
			}
			if len(climateConfig.Mqtt.Topic) <= 0 {
				return errors.New(fmt.Sprintf("Climate %s: missing mqtt topic", climateConfig.ID))
			}
		}
	}

	return nil
}

func validateOutputs(config *Configuration) error {
	for _, outputConfig := range config.Outputs {
		subConfigs := 0
		if outputConfig.File != nil {
			subConfigs++
		}
		if outputConfig.Cmd != nil {
			subConfigs++
		}
		if outputConfig.Mqtt != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return errors.New(fmt.Sprintf("Output %s: only one output type can be used per output definition block", outputConfig.ID))
		}
		if subConfigs <= 0 {
			return errors.New(fmt.Sprintf("Output %s: sub-configuration for output is missing, use one of: file | cmd | mqtt", outputConfig.ID))
		}

		if outputConfig.File != nil && len(outputConfig.File.Path) <= 0 {
			return errors.New(fmt.Sprintf("Output %s: no file path provided", outputConfig.ID))
		}

		if outputConfig.Cmd != nil && len(outputConfig.Cmd.Exec) <= 0 {
			return errors.New(fmt.Sprintf("Output %s: executable is missing", outputConfig.ID))
		}

		if outputConfig.Mqtt != nil {
			if len(config.Mqtt.Broker) <= 0 {
				return errors.New(fmt.Sprintf("Output %s: mqtt output configured but no mqtt broker is set", outputConfig.ID))
			}
			if len(outputConfig.Mqtt.Topic) <= 0 {
				return errors.New(fmt.Sprintf("Output %s: missing mqtt topic", outputConfig.ID))
			}
		}
	}

	return nil
}

func validateZones(config *Configuration) error {
	operatingModes := []string{OperatingModeHeat, OperatingModeCool, OperatingModeHeatCool}
	targetModes := []string{TargetModeInternal, TargetModeExternal, TargetModeClimate}
	faultPolicies := []string{FaultPolicyShutdown, FaultPolicyHold}
	startupModes := []string{IntegralStartupRestore, IntegralStartupFixed, IntegralStartupZero}

	for _, zoneConfig := range config.Zones {
		if zoneConfig.Pi.ProportionalBand <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: proportional band must be > 0", zoneConfig.ID))
		}
		if zoneConfig.Pi.IntegralTime <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: integral time must be > 0", zoneConfig.ID))
		}
		if zoneConfig.Pi.OutputMin >= zoneConfig.Pi.OutputMax {
			return errors.New(fmt.Sprintf("Zone %s: output min must be smaller than output max", zoneConfig.ID))
		}
		if zoneConfig.SampleInterval <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: sample interval must be > 0", zoneConfig.ID))
		}

		if !slices.Contains(operatingModes, zoneConfig.OperatingMode) {
			return errors.New(fmt.Sprintf("Zone %s: unsupported operating mode '%s', use one of: %s", zoneConfig.ID, zoneConfig.OperatingMode, strings.Join(operatingModes, " | ")))
		}
		if !slices.Contains(targetModes, zoneConfig.TargetTempMode) {
			return errors.New(fmt.Sprintf("Zone %s: unsupported target temp mode '%s', use one of: %s", zoneConfig.ID, zoneConfig.TargetTempMode, strings.Join(targetModes, " | ")))
		}
		if !slices.Contains(faultPolicies, zoneConfig.SensorFaultPolicy) {
			return errors.New(fmt.Sprintf("Zone %s: unsupported sensor fault policy '%s', use one of: %s", zoneConfig.ID, zoneConfig.SensorFaultPolicy, strings.Join(faultPolicies, " | ")))
		}
		if !slices.Contains(startupModes, zoneConfig.IntegralStartup.Mode) {
			return errors.New(fmt.Sprintf("Zone %s: unsupported integral startup mode '%s', use one of: %s", zoneConfig.ID, zoneConfig.IntegralStartup.Mode, strings.Join(startupModes, " | ")))
		}

		if len(zoneConfig.Sensor) <= 0 && len(zoneConfig.Climate) <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: no temperature source, configure a sensor or a climate", zoneConfig.ID))
		}
		if zoneConfig.OperatingMode == OperatingModeHeatCool && len(zoneConfig.Climate) <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: operating mode heat_cool requires a climate", zoneConfig.ID))
		}
		if zoneConfig.TargetTempMode == TargetModeClimate && len(zoneConfig.Climate) <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: target temp mode climate requires a climate", zoneConfig.ID))
		}
		if zoneConfig.TargetTempMode == TargetModeExternal && len(zoneConfig.TargetSensor) <= 0 {
			return errors.New(fmt.Sprintf("Zone %s: target temp mode external requires a targetSensor", zoneConfig.ID))
		}

		if len(zoneConfig.Sensor) > 0 && !sensorIdExists(zoneConfig.Sensor, config) {
			return errors.New(fmt.Sprintf("Zone %s: no sensor definition with id '%s' found", zoneConfig.ID, zoneConfig.Sensor))
		}
		if len(zoneConfig.TargetSensor) > 0 && !sensorIdExists(zoneConfig.TargetSensor, config) {
			return errors.New(fmt.Sprintf("Zone %s: no sensor definition with id '%s' found", zoneConfig.ID, zoneConfig.TargetSensor))
		}
		if len(zoneConfig.Climate) > 0 && !climateIdExists(zoneConfig.Climate, config) {
			return errors.New(fmt.Sprintf("Zone %s: no climate definition with id '%s' found", zoneConfig.ID, zoneConfig.Climate))
		}
		if len(zoneConfig.Output) > 0 && !outputIdExists(zoneConfig.Output, config) {
			return errors.New(fmt.Sprintf("Zone %s: no output definition with id '%s' found", zoneConfig.ID, zoneConfig.Output))
		}
	}

	return nil
}

func sensorIdExists(sensorId string, config *Configuration) bool {
	for _, sensor := range config.Sensors {
		if sensor.ID == sensorId {
			return true
		}
	}

	return false
}

func climateIdExists(climateId string, config *Configuration) bool {
	for _, climate := range config.Climates {
		if climate.ID == climateId {
			return true
		}
	}

	return false
}

func outputIdExists(outputId string, config *Configuration) bool {
	for _, output := range config.Outputs {
		if output.ID == outputId {
			return true
		}
	}

	return false
}
