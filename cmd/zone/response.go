package zone

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/control"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/markusressel/therm2go/internal/util"
	"github.com/spf13/cobra"
)

var responseCmd = &cobra.Command{
	Use:   "response",
	Short: "Plot the simulated loop response of a zone to a sustained 1K deviation",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		configPath := configuration.DetectConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		err = configuration.Validate(configPath)
		if err != nil {
			ui.Fatal(err.Error())
		}

		zoneConf, err := getZoneConfig(zoneId, configuration.CurrentConfig.Zones)
		if err != nil {
			return err
		}

		loop := control.NewPIController(
			zoneConf.Pi.ProportionalBand,
			zoneConf.Pi.IntegralTime,
			zoneConf.Pi.OutputMin,
			zoneConf.Pi.OutputMax,
		)
		loop.SetTarget(zoneConf.TargetTemp)
		if zoneConf.OperatingMode == configuration.OperatingModeCool {
			loop.SetCooling(true)
		}

		// room stuck 1K below (above for cooling) the setpoint for an hour
		deviation := -1.0
		if loop.IsCooling() {
			deviation = 1.0
		}
		currentTemp := zoneConf.TargetTemp + deviation

		dt := zoneConf.SampleInterval.Seconds()
		cycles := int(3600 / dt)
		if cycles < 1 {
			cycles = 1
		}
		values := make([]float64, 0, cycles)
		for i := 0; i < cycles; i++ {
			result := loop.Update(currentTemp, dt)
			values = append(values, result.Output)
		}

		caption := fmt.Sprintf("Output %% over one hour (peak %.1f%%)", util.Max(values))
		graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
		ui.Printfln(graph)

		return nil
	},
}

func init() {
	Command.AddCommand(responseCmd)
}
