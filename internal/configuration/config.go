package configuration

import (
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

type Configuration struct {
	DbPath string `json:"dbPath"`

	TempSensorPollingRate time.Duration `json:"tempSensorPollingRate"`
	TempRollingWindowSize int           `json:"tempRollingWindowSize"`

	Statistics StatisticsConfig `json:"statistics"`
	Api        ApiConfig        `json:"api"`
	Mqtt       MqttConfig       `json:"mqtt"`

	Sensors  []SensorConfig  `json:"sensors"`
	Climates []ClimateConfig `json:"climates"`
	Outputs  []OutputConfig  `json:"outputs"`
	Zones    []ZoneConfig    `json:"zones"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName("therm2go")

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/therm2go/")
	}

	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	viper.SetDefault("dbpath", "/etc/therm2go/therm2go.db")
	viper.SetDefault("TempSensorPollingRate", 2*time.Second)
	viper.SetDefault("TempRollingWindowSize", 10)

	viper.SetDefault("statistics.enabled", false)
	viper.SetDefault("statistics.port", 9000)
	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.port", 9001)

	viper.SetDefault("sensors", []SensorConfig{})
	viper.SetDefault("climates", []ClimateConfig{})
	viper.SetDefault("outputs", []OutputConfig{})
	viper.SetDefault("zones", []ZoneConfig{})
}

// DetectConfigFile returns the path of the config file that will be used
func DetectConfigFile() string {
	if err := viper.ReadInConfig(); err != nil {
		// config file is required, so we fail here
		ui.Fatal("Error reading config file, %s", err)
	}
	// this is only populated _after_ ReadInConfig()
	return viper.ConfigFileUsed()
}

func LoadConfig() {
	// load default configuration values
	err := viper.Unmarshal(&CurrentConfig, viper.DecodeHook(decodeHook()))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}

	for idx := range CurrentConfig.Zones {
		applyZoneDefaults(&CurrentConfig.Zones[idx])
	}
}

// WatchConfig reloads the configuration whenever the config file
// changes on disk. Zone tunings picked up this way apply on the next
// control cycle, structural changes (new sensors, zones, outputs)
// require a restart.
func WatchConfig(onChange func()) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		ui.Info("Config file changed: %s", e.Name)
		LoadConfig()
		if onChange != nil {
			onChange()
		}
	})
	viper.WatchConfig()
}
