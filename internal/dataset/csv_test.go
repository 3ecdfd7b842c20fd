package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/solar-farm-simulator/internal/solar"
)

const provenceCSV = `timestamp,farm_name,irradiance_wm2,panel_temp_c,power_production_kw,inverter_1_status,inverter_2_status,inverter_3_status,inverter_4_status,anomaly_type,anomaly_severity
2025-06-01 12:00:00,provence,500,22.5,1800,1,1,1,1,NORMAL,none
2025-06-01 13:00:00,provence,480,23.1,1700,1,0,1,1,INVERTER_FAIL,5
`

func TestParseCSV(t *testing.T) {
	ds, skipped, err := ParseCSV(strings.NewReader(provenceCSV))
	require.NoError(t, err)
	assert.Equal(t, 0, skipped)
	require.Len(t, ds, 2)

	assert.Equal(t, solar.DatasetRow{
		Timestamp:       "2025-06-01 12:00:00",
		IrradianceWm2:   "500",
		PanelTempC:      "22.5",
		PowerKW:         "1800",
		InverterStatus:  [solar.InverterCount]string{"1", "1", "1", "1"},
		AnomalyType:     "NORMAL",
		AnomalySeverity: "none",
	}, ds[0])
	assert.Equal(t, "0", ds[1].InverterStatus[1])
	assert.Equal(t, "INVERTER_FAIL", ds[1].AnomalyType)
	assert.Equal(t, "5", ds[1].AnomalySeverity)
}

func TestParseCSV_ColumnOrderAndMissingColumns(t *testing.T) {
	in := "\ufeffPower_Production_KW, irradiance_wm2\n1.5,abc\n2.5\n"

	ds, _, err := ParseCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, ds, 2)

	assert.Equal(t, "1.5", ds[0].PowerKW)
	assert.Equal(t, "abc", ds[0].IrradianceWm2, "cell contents are not validated")
	assert.Equal(t, "", ds[0].PanelTempC)
	assert.Equal(t, "2.5", ds[1].PowerKW)
	assert.Equal(t, "", ds[1].IrradianceWm2, "short records yield empty cells")
	assert.Equal(t, [solar.InverterCount]string{}, ds[1].InverterStatus)
}

func TestParseCSV_Empty(t *testing.T) {
	ds, skipped, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ds)
	assert.Equal(t, 0, skipped)

	ds, _, err = ParseCSV(strings.NewReader("irradiance_wm2,panel_temp_c\n"))
	require.NoError(t, err)
	assert.Empty(t, ds)
}
