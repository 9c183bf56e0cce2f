package climate

import (
	"github.com/markusressel/therm2go/internal/configuration"
	cmap "github.com/orcaman/concurrent-map/v2"
)

const (
	ActionHeating = "heating"
	ActionCooling = "cooling"
	ActionIdle    = "idle"
	ActionOff     = "off"

	ModeOff = "off"
)

// Attributes is the state snapshot of an external climate device.
// Pointer fields are nil when the device did not report the attribute.
type Attributes struct {
	CurrentTemp *float64 `json:"currentTemp"`
	TargetTemp  *float64 `json:"targetTemp"`
	HvacAction  string   `json:"hvacAction"`
	HvacMode    string   `json:"hvacMode"`
}

type Climate interface {
	GetId() string
	GetConfig() configuration.ClimateConfig
	// GetAttributes returns the current state of the climate device,
	// or an error if the state is unavailable
	GetAttributes() (Attributes, error)
}

var ClimateMap = cmap.New[Climate]()

func NewClimate(config configuration.ClimateConfig) (Climate, error) {
	if config.File != nil {
		return &fileClimate{Config: config}, nil
	}
	if config.Mqtt != nil {
		return NewMqttClimate(config)
	}
	return nil, nil
}
