package exporter

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

type staticSource []solar.Snapshot

func (s staticSource) Latest() []solar.Snapshot { return s }

func TestSnapshotCollector(t *testing.T) {
	src := staticSource{
		{SiteID: "aquitaine", Timestamp: time.Now(), Mode: solar.ModeFallback, PanelTempC: 15, InverterOK: 1},
		{SiteID: "provence", Timestamp: time.Now(), Mode: solar.ModeReplay, PowerWatts: 1800000, IrradianceWm2: 500, PanelTempC: 22.5, InverterOK: 0},
	}

	expected := `
# HELP solar_power_watts Instantaneous electrical production in watts.
# TYPE solar_power_watts gauge
solar_power_watts{farm="aquitaine"} 0
solar_power_watts{farm="provence"} 1800000
# HELP solar_inverter_status Aggregated inverter state (1=OK, 0=faulted).
# TYPE solar_inverter_status gauge
solar_inverter_status{farm="aquitaine"} 1
solar_inverter_status{farm="provence"} 0
# HELP solar_panel_temperature_celsius Panel temperature in degrees Celsius.
# TYPE solar_panel_temperature_celsius gauge
solar_panel_temperature_celsius{farm="aquitaine"} 15
solar_panel_temperature_celsius{farm="provence"} 22.5
`
	err := testutil.CollectAndCompare(NewSnapshotCollector(src), strings.NewReader(expected),
		"solar_power_watts", "solar_inverter_status", "solar_panel_temperature_celsius")
	require.NoError(t, err)

	assert.Equal(t, 8, testutil.CollectAndCount(NewSnapshotCollector(src)))
}

func TestSnapshotCollector_EmptyStore(t *testing.T) {
	assert.Equal(t, 0, testutil.CollectAndCount(NewSnapshotCollector(staticSource{})))
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(staticSource{{SiteID: "provence", IrradianceWm2: 500, InverterOK: 1}})
	m.RecordAnomaly("provence", "INVERTER_FAIL")
	m.RecordAnomaly("provence", "INVERTER_FAIL")
	m.TickCompleted(3, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.anomalies.WithLabelValues("provence", "INVERTER_FAIL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticks))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `solar_irradiance_wm2{farm="provence"} 500`)
	assert.Contains(t, string(body), `solar_anomalies_total{farm="provence",kind="INVERTER_FAIL"} 2`)
	assert.Contains(t, string(body), "solar_simulator_ticks_total 1")
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.RecordAnomaly("provence", "x")
	m.TickCompleted(1, time.Second)
}
