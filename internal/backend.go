package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/therm2go/internal/api"
	"github.com/markusressel/therm2go/internal/climate"
	"github.com/markusressel/therm2go/internal/configuration"
	"github.com/markusressel/therm2go/internal/controller"
	"github.com/markusressel/therm2go/internal/mqtt"
	"github.com/markusressel/therm2go/internal/outputs"
	"github.com/markusressel/therm2go/internal/persistence"
	"github.com/markusressel/therm2go/internal/sensors"
	"github.com/markusressel/therm2go/internal/statistics"
	"github.com/markusressel/therm2go/internal/ui"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RunDaemon() {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	if err := pers.Init(); err != nil {
		ui.Fatal("Unable to initialize persistence: %v", err)
	}

	if err := mqtt.Init(configuration.CurrentConfig.Mqtt); err != nil {
		ui.Fatal("Unable to connect to mqtt broker: %v", err)
	}

	InitializeObjects(pers)

	configuration.WatchConfig(nil)

	ctx, cancel := context.WithCancel(context.Background())

	var g run.Group
	{
		enabled := configuration.CurrentConfig.Statistics.Enabled
		if enabled {
			// === Prometheus Exporter
			g.Add(func() error {
				port := configuration.CurrentConfig.Statistics.Port
				if port <= 0 || port >= 65535 {
					port = 9000
				}
				endpoint := "/metrics"
				addr := fmt.Sprintf(":%d", port)
				handler := promhttp.Handler()
				http.Handle(endpoint, handler)
				server := &http.Server{Addr: addr, Handler: handler}
				if err := server.ListenAndServe(); err != nil {
					ui.Error("Cannot start prometheus metrics endpoint (%s)", err.Error())
				}

				select {
				case <-ctx.Done():
					ui.Info("Stopping statistics server...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					return server.Shutdown(timeoutCtx)
				}
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping statistics server: " + err.Error())
				} else {
					ui.Info("Statistics server stopped.")
				}
			})
		}
	}
	{
		enabled := configuration.CurrentConfig.Api.Enabled
		if enabled {
			// === REST Api
			restService := api.CreateRestService()
			g.Add(func() error {
				port := configuration.CurrentConfig.Api.Port
				if port <= 0 || port >= 65535 {
					port = 9001
				}
				addr := fmt.Sprintf(":%d", port)
				if err := restService.Start(addr); err != nil {
					ui.Error("Cannot start REST api endpoint (%s)", err.Error())
				}

				select {
				case <-ctx.Done():
					ui.Info("Stopping REST api server...")
					timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer timeoutCancel()
					return restService.Shutdown(timeoutCtx)
				}
			}, func(err error) {
				if err != nil {
					ui.Warning("Error stopping REST api server: " + err.Error())
				} else {
					ui.Info("REST api server stopped.")
				}
			})
		}
	}
	{
		// === sensor monitoring
		for _, sensor := range sensors.SensorMap.Items() {
			s := sensor
			pollingRate := configuration.CurrentConfig.TempSensorPollingRate
			mon := NewSensorMonitor(s, pollingRate)

			g.Add(func() error {
				err := mon.Run(ctx)
				ui.Info("Sensor Monitor for sensor %s stopped.", s.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Error monitoring sensor: %v", err)
				}
			})
		}
	}
	{
		// === zone controllers
		for _, contr := range controller.ControllerMap.Items() {
			c := contr

			g.Add(func() error {
				err := c.Run(ctx)
				ui.Info("Zone controller for zone %s stopped.", c.GetId())
				return err
			}, func(err error) {
				if err != nil {
					ui.Warning("Something went wrong: %v", err)
				}
			})
		}

		if controller.ControllerMap.Count() == 0 {
			ui.Fatal("No valid zone configurations, exiting.")
		}
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, os.Kill)

		g.Add(func() error {
			<-sig
			ui.Info("Received SIGTERM signal, exiting...")
			return nil
		}, func(err error) {
			defer close(sig)
			cancel()
		})
	}

	err := g.Run()
	mqtt.DisconnectAtExit()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	} else {
		ui.Info("Done.")
		os.Exit(0)
	}
}

func InitializeObjects(pers persistence.Persistence) {
	var sensorList []sensors.Sensor
	for _, config := range configuration.CurrentConfig.Sensors {
		sensor, err := sensors.NewSensor(config)
		if err != nil || sensor == nil {
			ui.Fatal("Unable to process sensor configuration: %s", config.ID)
		}
		sensorList = append(sensorList, sensor)

		currentValue, err := sensor.GetValue()
		if err != nil {
			ui.Warning("Error reading sensor %s: %v", config.ID, err)
		}
		sensor.SetMovingAvg(currentValue)

		sensors.SensorMap.Set(config.ID, sensor)
	}

	sensorCollector := statistics.NewSensorCollector(sensorList)
	statistics.Register(sensorCollector)

	for _, config := range configuration.CurrentConfig.Climates {
		clim, err := climate.NewClimate(config)
		if err != nil || clim == nil {
			ui.Fatal("Unable to process climate configuration: %s", config.ID)
		}
		climate.ClimateMap.Set(config.ID, clim)
	}

	for _, config := range configuration.CurrentConfig.Outputs {
		output, err := outputs.NewOutput(config)
		if err != nil || output == nil {
			ui.Fatal("Unable to process output configuration: %s", config.ID)
		}
		outputs.OutputMap.Set(config.ID, output)
	}

	var controllerList []controller.ZoneController
	for _, config := range configuration.CurrentConfig.Zones {
		contr := createZoneController(pers, config)
		controller.ControllerMap.Set(config.ID, contr)
		controllerList = append(controllerList, contr)
	}

	zoneCollector := statistics.NewZoneCollector(controllerList)
	statistics.Register(zoneCollector)
}

func createZoneController(pers persistence.Persistence, zone configuration.ZoneConfig) controller.ZoneController {
	var sensor sensors.Sensor
	if len(zone.Sensor) > 0 {
		sensor, _ = sensors.SensorMap.Get(zone.Sensor)
	}
	var targetSensor sensors.Sensor
	if len(zone.TargetSensor) > 0 {
		targetSensor, _ = sensors.SensorMap.Get(zone.TargetSensor)
	}
	var clim climate.Climate
	if len(zone.Climate) > 0 {
		clim, _ = climate.ClimateMap.Get(zone.Climate)
	}
	var output outputs.Output
	if len(zone.Output) > 0 {
		output, _ = outputs.OutputMap.Get(zone.Output)
	}

	return controller.NewZoneController(
		zoneSnapshot(zone.ID),
		pers,
		sensor,
		targetSensor,
		clim,
		output,
	)
}

// zoneSnapshot reads the zone configuration fresh from the global
// configuration on every call, so runtime tuning changes picked up by
// the config watcher reach the control loop.
func zoneSnapshot(zoneId string) func() configuration.ZoneConfig {
	return func() configuration.ZoneConfig {
		for _, zone := range configuration.CurrentConfig.Zones {
			if zone.ID == zoneId {
				return zone
			}
		}
		return configuration.ZoneConfig{ID: zoneId}
	}
}
