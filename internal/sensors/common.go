package sensors

import (
	"github.com/markusressel/therm2go/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

type Sensor interface {
	GetId() string

	GetConfig() configuration.SensorConfig

	// GetValue returns the current temperature of this sensor in °C,
	// or an error if the reading is unavailable
	GetValue() (float64, error)

	// GetMovingAvg returns the moving average of this sensor's value
	GetMovingAvg() float64
	SetMovingAvg(avg float64)
}

var SensorMap = cmap.New[Sensor]()

func NewSensor(config configuration.SensorConfig) (Sensor, error) {
	if config.File != nil {
		return &FileSensor{Config: config}, nil
	}
	if config.Cmd != nil {
		return &CmdSensor{Config: config}, nil
	}
	if config.Mqtt != nil {
		return NewMqttSensor(config)
	}
	if config.Virtual != nil {
		return &VirtualSensor{Config: config}, nil
	}
	return nil, nil
}
