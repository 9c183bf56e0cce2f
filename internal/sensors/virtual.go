package sensors

import (
	"errors"
	"fmt"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/util"
)

// VirtualSensor averages the readings of a set of member sensors.
// It is unavailable whenever any member is unavailable.
type VirtualSensor struct {
	Config    configuration.SensorConfig `json:"configuration"`
	MovingAvg float64                    `json:"movingAvg"`
}

func (sensor *VirtualSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *VirtualSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *VirtualSensor) GetValue() (float64, error) {
	var values []float64
	for _, id := range sensor.Config.Virtual.Sensors {
		member, ok := SensorMap.Get(id)
		if !ok {
			return 0, errors.New(fmt.Sprintf("sensor %s: member sensor '%s' not found", sensor.Config.ID, id))
		}

		value, err := member.GetValue()
		if err != nil {
			return 0, fmt.Errorf("sensor %s: member sensor '%s': %s", sensor.Config.ID, id, err.Error())
		}
		values = append(values, value)
	}

	if len(values) <= 0 {
		return 0, errors.New(fmt.Sprintf("sensor %s: no member sensors", sensor.Config.ID))
	}

	return util.Avg(values), nil
}

func (sensor *VirtualSensor) GetMovingAvg() (avg float64) {
	return sensor.MovingAvg
}

func (sensor *VirtualSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}
