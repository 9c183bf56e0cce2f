package configuration

import "time"

// ClimateConfig describes an external climate device whose state attributes
// (current temperature, setpoint, hvac action and mode) can be used as
// inputs to a zone.
type ClimateConfig struct {
	ID   string             `json:"id"`
	File *FileClimateConfig `json:"file,omitempty"`
	Mqtt *MqttClimateConfig `json:"mqtt,omitempty"`
}

// FileClimateConfig reads climate attributes from a JSON document on disk
type FileClimateConfig struct {
	Path string `json:"path"`
}

// MqttClimateConfig reads climate attributes from a (retained) JSON state topic
type MqttClimateConfig struct {
	Topic     string        `json:"topic"`
	Staleness time.Duration `json:"staleness"`
}
