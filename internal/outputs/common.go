package outputs

import (
	"github.com/markusressel/therm2go/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

type Output interface {
	GetId() string

	GetConfig() configuration.OutputConfig

	// Set writes a control value in percent to the actuator
	Set(value float64) error
}

var OutputMap = cmap.New[Output]()

func NewOutput(config configuration.OutputConfig) (Output, error) {
	if config.File != nil {
		return &FileOutput{Config: config}, nil
	}
	if config.Cmd != nil {
		return &CmdOutput{Config: config}, nil
	}
	if config.Mqtt != nil {
		return &MqttOutput{Config: config}, nil
	}
	return nil, nil
}
