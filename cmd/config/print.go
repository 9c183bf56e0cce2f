package config

import (
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Prints the effective configuration, defaults applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()

		data, err := yaml.Marshal(configuration.CurrentConfig)
		if err != nil {
			return err
		}
		ui.Printfln(string(data))
		return nil
	},
}

func init() {
	Command.AddCommand(printCmd)
}
