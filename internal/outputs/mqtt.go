package outputs

import (
	"fmt"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/mqtt"
)

type MqttOutput struct {
	Config configuration.OutputConfig `json:"configuration"`
}

func (output *MqttOutput) GetId() string {
	return output.Config.ID
}

func (output *MqttOutput) GetConfig() configuration.OutputConfig {
	return output.Config
}

func (output *MqttOutput) Set(value float64) error {
	payload := fmt.Sprintf("%.2f", value)
	err := mqtt.Publish(output.Config.Mqtt.Topic, payload, output.Config.Mqtt.Retained)
	if err != nil {
		return fmt.Errorf("output %s: %s", output.GetId(), err.Error())
	}

	return nil
}
