package zone

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/markusressel/therm2go/cmd/global"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured zone(s) to console",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := configuration.DetectConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		err = configuration.Validate(configPath)
		if err != nil {
			ui.Fatal(err.Error())
		}

		rows := [][]string{}
		for _, zoneConf := range configuration.CurrentConfig.Zones {
			rows = append(rows, []string{
				zoneConf.ID,
				strconv.FormatBool(zoneConf.Enabled.Get()),
				zoneConf.OperatingMode,
				fmt.Sprintf("%.1f K", zoneConf.Pi.ProportionalBand),
				fmt.Sprintf("%.0f min", zoneConf.Pi.IntegralTime),
				zoneConf.SampleInterval.String(),
				zoneConf.SensorFaultPolicy,
			})
		}

		tab := table.Table{
			Headers: []string{"ID", "Enabled", "Mode", "Band", "Integral Time", "Interval", "Fault Policy"},
			Rows:    rows,
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			panic(tableErr)
		}
		ui.Printfln(buf.String())

		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
