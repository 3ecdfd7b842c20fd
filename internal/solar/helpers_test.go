package solar

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// seqRand replays fixed sequences of values, cycling when exhausted.
type seqRand struct {
	floats []float64
	ints   []int
	fi, ii int
}

func (r *seqRand) Float64() float64 {
	v := r.floats[r.fi%len(r.floats)]
	r.fi++
	return v
}

func (r *seqRand) Intn(n int) int {
	v := r.ints[r.ii%len(r.ints)] % n
	r.ii++
	return v
}

// quiet never injects an anomaly and uses a noise factor of 1.0.
func quiet() *seqRand {
	return &seqRand{floats: []float64{0.5}, ints: []int{0}}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func at(hour, minute int) time.Time {
	return time.Date(2025, time.June, 1, hour, minute, 0, 0, time.UTC)
}

func observedNotifier() (*LogNotifier, *observer.ObservedLogs) {
	core, logs := observer.New(zap.WarnLevel)
	return NewLogNotifier(zap.New(core), nil), logs
}

func provence() Site {
	return DefaultSites()[0]
}

func mustRegistry(sites ...Site) *Registry {
	r, err := NewRegistry(sites)
	if err != nil {
		panic(err)
	}
	return r
}

func row(irr, temp, powerKW string, inverters [InverterCount]string, anomaly, severity string) DatasetRow {
	return DatasetRow{
		IrradianceWm2:   irr,
		PanelTempC:      temp,
		PowerKW:         powerKW,
		InverterStatus:  inverters,
		AnomalyType:     anomaly,
		AnomalySeverity: severity,
	}
}

var allOK = [InverterCount]string{"1", "1", "1", "1"}
