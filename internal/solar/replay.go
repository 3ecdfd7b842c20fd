package solar

import (
	"math"
	"strconv"
	"strings"
)

// Substitutes used when a recorded field cannot be parsed.
const (
	defaultIrradianceWm2 = 0.0
	defaultPanelTempC    = 20.0
	defaultPowerKW       = 0.0
	defaultInverterFlag  = 1

	// NormalAnomaly is the anomaly_type value of rows without an anomaly.
	NormalAnomaly = "NORMAL"
)

// replayReading is a dataset row after defensive parsing and unit conversion.
type replayReading struct {
	IrradianceWm2 float64
	PanelTempC    float64
	PowerWatts    float64
	InverterOK    int
}

// normalizeRow parses a recorded row. It never fails: malformed fields fall
// back to their documented defaults, one field at a time.
func normalizeRow(row DatasetRow) replayReading {
	irradiance := parseFloatOr(row.IrradianceWm2, defaultIrradianceWm2)
	temp := parseFloatOr(row.PanelTempC, defaultPanelTempC)
	powerKW := parseFloatOr(row.PowerKW, defaultPowerKW)

	var flags [InverterCount]int
	for i, raw := range row.InverterStatus {
		flags[i] = parseIntOr(raw, defaultInverterFlag)
	}

	return replayReading{
		IrradianceWm2: nonNegative(finiteOr(round2(irradiance), defaultIrradianceWm2)),
		PanelTempC:    finiteOr(round2(temp), defaultPanelTempC),
		PowerWatts:    nonNegative(finiteOr(round2(powerKW*1000), defaultPowerKW*1000)),
		InverterOK:    aggregateInverters(flags),
	}
}

// HasAnomaly reports whether the row carries a recorded anomaly.
func (r DatasetRow) HasAnomaly() bool {
	t := strings.TrimSpace(r.AnomalyType)
	return t != "" && t != NormalAnomaly
}

// aggregateInverters is 0 as soon as one inverter reports 0, else 1.
func aggregateInverters(flags [InverterCount]int) int {
	for _, f := range flags {
		if f == 0 {
			return 0
		}
	}
	return 1
}

func parseFloatOr(s string, def float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// finiteOr replaces values that overflowed during conversion.
func finiteOr(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}

// nonNegative also folds -0 into 0.
func nonNegative(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v
}
