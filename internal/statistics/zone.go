package statistics

import (
	"github.com/markusressel/therm2go/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemZone = "zone"

type ZoneCollector struct {
	controllers []controller.ZoneController

	output          *prometheus.Desc
	controlError    *prometheus.Desc
	pTerm           *prometheus.Desc
	iTerm           *prometheus.Desc
	currentTemp     *prometheus.Desc
	targetTemp      *prometheus.Desc
	sensorAvailable *prometheus.Desc
	active          *prometheus.Desc
}

func NewZoneCollector(controllers []controller.ZoneController) *ZoneCollector {
	return &ZoneCollector{
		controllers: controllers,
		output: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "output"),
			"Current control output of the zone in percent",
			[]string{"id"}, nil,
		),
		controlError: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "error"),
			"Current control error of the zone in Kelvin",
			[]string{"id"}, nil,
		),
		pTerm: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "p_term"),
			"Proportional term of the zone's control loop",
			[]string{"id"}, nil,
		),
		iTerm: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "i_term"),
			"Integral term of the zone's control loop",
			[]string{"id"}, nil,
		),
		currentTemp: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "current_temp"),
			"Current temperature of the zone in °C",
			[]string{"id"}, nil,
		),
		targetTemp: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "target_temp"),
			"Target temperature of the zone in °C",
			[]string{"id"}, nil,
		),
		sensorAvailable: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "sensor_available"),
			"Whether the temperature source of the zone is available",
			[]string{"id"}, nil,
		),
		active: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemZone, "active"),
			"Whether the zone is actively driving its actuator (output > 0)",
			[]string{"id"}, nil,
		),
	}
}

func (collector *ZoneCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.output
	ch <- collector.controlError
	ch <- collector.pTerm
	ch <- collector.iTerm
	ch <- collector.currentTemp
	ch <- collector.targetTemp
	ch <- collector.sensorAvailable
	ch <- collector.active
}

// Collect implements required collect function for all prometheus collectors
func (collector *ZoneCollector) Collect(ch chan<- prometheus.Metric) {
	for _, contr := range collector.controllers {
		zoneId := contr.GetId()
		result := contr.LastResult()

		ch <- prometheus.MustNewConstMetric(collector.output, prometheus.GaugeValue, result.Output, zoneId)
		ch <- prometheus.MustNewConstMetric(collector.sensorAvailable, prometheus.GaugeValue, boolToFloat(result.SensorAvailable), zoneId)
		ch <- prometheus.MustNewConstMetric(collector.active, prometheus.GaugeValue, boolToFloat(result.Active), zoneId)

		if result.Error != nil {
			ch <- prometheus.MustNewConstMetric(collector.controlError, prometheus.GaugeValue, *result.Error, zoneId)
		}
		if result.PTerm != nil {
			ch <- prometheus.MustNewConstMetric(collector.pTerm, prometheus.GaugeValue, *result.PTerm, zoneId)
		}
		if result.ITerm != nil {
			ch <- prometheus.MustNewConstMetric(collector.iTerm, prometheus.GaugeValue, *result.ITerm, zoneId)
		}
		if result.CurrentTemp != nil {
			ch <- prometheus.MustNewConstMetric(collector.currentTemp, prometheus.GaugeValue, *result.CurrentTemp, zoneId)
		}
		if result.TargetTemp != nil {
			ch <- prometheus.MustNewConstMetric(collector.targetTemp, prometheus.GaugeValue, *result.TargetTemp, zoneId)
		}
	}
}

func boolToFloat(value bool) float64 {
	if value {
		return 1
	}
	return 0
}
