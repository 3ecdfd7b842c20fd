// Package exporter exposes the latest snapshots in the Prometheus text format.
package exporter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

// SnapshotSource yields the latest snapshot of every site.
type SnapshotSource interface {
	Latest() []solar.Snapshot
}

var (
	powerDesc = prometheus.NewDesc(
		"solar_power_watts",
		"Instantaneous electrical production in watts.",
		[]string{"farm"}, nil,
	)
	irradianceDesc = prometheus.NewDesc(
		"solar_irradiance_wm2",
		"Measured solar irradiance in W/m².",
		[]string{"farm"}, nil,
	)
	tempDesc = prometheus.NewDesc(
		"solar_panel_temperature_celsius",
		"Panel temperature in degrees Celsius.",
		[]string{"farm"}, nil,
	)
	inverterDesc = prometheus.NewDesc(
		"solar_inverter_status",
		"Aggregated inverter state (1=OK, 0=faulted).",
		[]string{"farm"}, nil,
	)
)

// SnapshotCollector reads the source on every scrape. All four gauges of a
// site come from the same snapshot value.
type SnapshotCollector struct {
	source SnapshotSource
}

func NewSnapshotCollector(source SnapshotSource) *SnapshotCollector {
	return &SnapshotCollector{source: source}
}

func (c *SnapshotCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- powerDesc
	ch <- irradianceDesc
	ch <- tempDesc
	ch <- inverterDesc
}

func (c *SnapshotCollector) Collect(ch chan<- prometheus.Metric) {
	for _, s := range c.source.Latest() {
		ch <- prometheus.MustNewConstMetric(powerDesc, prometheus.GaugeValue, s.PowerWatts, s.SiteID)
		ch <- prometheus.MustNewConstMetric(irradianceDesc, prometheus.GaugeValue, s.IrradianceWm2, s.SiteID)
		ch <- prometheus.MustNewConstMetric(tempDesc, prometheus.GaugeValue, s.PanelTempC, s.SiteID)
		ch <- prometheus.MustNewConstMetric(inverterDesc, prometheus.GaugeValue, float64(s.InverterOK), s.SiteID)
	}
}
