package climate

import (
	"encoding/json"
	"os"

	"github.com/markusressel/therm2go/internal/configuration"
)

type fileClimate struct {
	Config configuration.ClimateConfig
}

func (c *fileClimate) GetId() string {
	return c.Config.ID
}

func (c *fileClimate) GetConfig() configuration.ClimateConfig {
	return c.Config
}

func (c *fileClimate) GetAttributes() (Attributes, error) {
	data, err := os.ReadFile(c.Config.File.Path)
	if err != nil {
		return Attributes{}, err
	}

	attributes := Attributes{}
	err = json.Unmarshal(data, &attributes)
	if err != nil {
		return Attributes{}, err
	}

	return attributes, nil
}
