package internal

import (
	"context"
	"time"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/sensors"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/markusressel/therm2go/internal/util"
)

type SensorMonitor interface {
	Run(ctx context.Context) error
	GetLast() (float64, error)
}

type sensorMonitor struct {
	sensor      sensors.Sensor
	pollingRate time.Duration
}

func NewSensorMonitor(sensor sensors.Sensor, pollingRate time.Duration) SensorMonitor {
	return sensorMonitor{
		sensor:      sensor,
		pollingRate: pollingRate,
	}
}

func (s sensorMonitor) Run(ctx context.Context) error {
	tick := time.Tick(s.pollingRate)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			err := updateSensor(s.sensor)
			if err != nil {
				// a failing sensor is handled by the zone's fault policy
				ui.Debug("Sensor %s: %v", s.sensor.GetId(), err)
			}
		}
	}
}

// read the current value of a sensor and update its moving average
func updateSensor(s sensors.Sensor) (err error) {
	value, err := s.GetValue()
	if err != nil {
		return err
	}

	var n = configuration.CurrentConfig.TempRollingWindowSize
	lastAvg := s.GetMovingAvg()
	newAvg := util.UpdateSimpleMovingAvg(lastAvg, n, value)
	s.SetMovingAvg(newAvg)

	return nil
}

func (s sensorMonitor) GetLast() (float64, error) {
	return s.sensor.GetValue()
}
