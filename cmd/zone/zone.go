package zone

import (
	"errors"
	"fmt"

	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/spf13/cobra"
)

var zoneId string

var Command = &cobra.Command{
	Use:              "zone",
	Short:            "Zone related commands",
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&zoneId,
		"id", "i",
		"",
		"Zone ID as specified in the config",
	)
}

func getZoneConfig(id string, zones []configuration.ZoneConfig) (*configuration.ZoneConfig, error) {
	availableZoneIds := []string{}
	for _, zoneConf := range zones {
		availableZoneIds = append(availableZoneIds, zoneConf.ID)
		if id == zoneConf.ID {
			return &zoneConf, nil
		}
	}

	return nil, errors.New(fmt.Sprintf("No zone with id found: %s, options: %s", id, availableZoneIds))
}
