package configuration

import "time"

type SensorConfig struct {
	ID      string               `json:"id"`
	File    *FileSensorConfig    `json:"file,omitempty"`
	Cmd     *CmdSensorConfig     `json:"cmd,omitempty"`
	Mqtt    *MqttSensorConfig    `json:"mqtt,omitempty"`
	Virtual *VirtualSensorConfig `json:"virtual,omitempty"`
}

type FileSensorConfig struct {
	Path string `json:"path"`
}

type CmdSensorConfig struct {
	Exec string   `json:"exec"`
	Args []string `json:"args"`
}

type MqttSensorConfig struct {
	Topic string `json:"topic"`
	// Staleness is the maximum age of the last received reading before
	// the sensor is considered unavailable
	Staleness time.Duration `json:"staleness"`
	// WindowSize is the number of recent readings averaged by GetMovingAvg
	WindowSize int `json:"windowSize"`
}

// VirtualSensorConfig combines multiple other sensors into
// a single averaged temperature reading
type VirtualSensorConfig struct {
	Sensors []string `json:"sensors"`
}
