package sensors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/mqtt"
	"github.com/markusressel/therm2go/internal/ui"
)

const defaultMqttWindowSize = 5

// MqttSensor caches temperature readings published to a broker topic.
// Incoming values are smoothed over a small rolling window, a reading
// older than the configured staleness counts as unavailable.
type MqttSensor struct {
	Config    configuration.SensorConfig `json:"configuration"`
	MovingAvg float64                    `json:"movingAvg"`

	mu         sync.Mutex
	window     *rolling.PointPolicy
	receivedAt time.Time
}

func NewMqttSensor(config configuration.SensorConfig) (Sensor, error) {
	windowSize := config.Mqtt.WindowSize
	if windowSize <= 0 {
		windowSize = defaultMqttWindowSize
	}

	sensor := &MqttSensor{
		Config: config,
		window: rolling.NewPointPolicy(rolling.NewWindow(windowSize)),
	}
	err := mqtt.Subscribe(config.Mqtt.Topic, sensor.onMessage)
	if err != nil {
		return nil, err
	}
	return sensor, nil
}

func (sensor *MqttSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *MqttSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *MqttSensor) GetValue() (float64, error) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()

	if sensor.receivedAt.IsZero() {
		return 0, errors.New(fmt.Sprintf("sensor %s: no reading received yet", sensor.Config.ID))
	}

	staleness := sensor.Config.Mqtt.Staleness
	if staleness > 0 && time.Since(sensor.receivedAt) > staleness {
		return 0, errors.New(fmt.Sprintf("sensor %s: reading is stale", sensor.Config.ID))
	}

	count := sensor.window.Reduce(rolling.Count)
	if count <= 0 {
		return 0, errors.New(fmt.Sprintf("sensor %s: no reading received yet", sensor.Config.ID))
	}

	return sensor.window.Reduce(rolling.Sum) / count, nil
}

func (sensor *MqttSensor) GetMovingAvg() (avg float64) {
	return sensor.MovingAvg
}

func (sensor *MqttSensor) SetMovingAvg(avg float64) {
	sensor.MovingAvg = avg
}

func (sensor *MqttSensor) onMessage(topic string, payload []byte) {
	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		ui.Warning("sensor %s: ignoring malformed payload on %s: %v", sensor.Config.ID, topic, err)
		return
	}

	sensor.mu.Lock()
	sensor.window.Append(value)
	sensor.receivedAt = time.Now()
	sensor.mu.Unlock()
}
