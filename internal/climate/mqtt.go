package climate

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/mqtt"
	"github.com/markusressel/therm2go/internal/ui"
)

type mqttClimate struct {
	Config configuration.ClimateConfig

	mu         sync.Mutex
	attributes Attributes
	receivedAt time.Time
}

// NewMqttClimate subscribes to the configured state topic and caches
// the most recently received attribute document.
func NewMqttClimate(config configuration.ClimateConfig) (Climate, error) {
	climate := &mqttClimate{Config: config}
	err := mqtt.Subscribe(config.Mqtt.Topic, climate.onMessage)
	if err != nil {
		return nil, err
	}
	return climate, nil
}

func (c *mqttClimate) GetId() string {
	return c.Config.ID
}

func (c *mqttClimate) GetConfig() configuration.ClimateConfig {
	return c.Config
}

func (c *mqttClimate) GetAttributes() (Attributes, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.receivedAt.IsZero() {
		return Attributes{}, errors.New(fmt.Sprintf("Climate %s: no state received yet", c.Config.ID))
	}

	staleness := c.Config.Mqtt.Staleness
	if staleness > 0 && time.Since(c.receivedAt) > staleness {
		return Attributes{}, errors.New(fmt.Sprintf("Climate %s: state is stale", c.Config.ID))
	}

	return c.attributes, nil
}

func (c *mqttClimate) onMessage(topic string, payload []byte) {
	attributes := Attributes{}
	err := json.Unmarshal(payload, &attributes)
	if err != nil {
		ui.Warning("Climate %s: ignoring malformed state on %s: %v", c.Config.ID, topic, err)
		return
	}

	c.mu.Lock()
	c.attributes = attributes
	c.receivedAt = time.Now()
	c.mu.Unlock()
}
