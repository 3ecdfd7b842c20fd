package solar

import (
	"math"
	"time"
)

// RandomSource is the randomness used by the fallback model. *rand.Rand
// satisfies it.
type RandomSource interface {
	Float64() float64
	Intn(n int) int
}

// FallbackAnomaly is the category of anomaly injected by the fallback model.
type FallbackAnomaly int

const (
	FallbackNone FallbackAnomaly = iota
	FallbackInverterFailure
	FallbackOverheat
	FallbackPartialDerate
)

func (a FallbackAnomaly) String() string {
	switch a {
	case FallbackInverterFailure:
		return "inverter_failure"
	case FallbackOverheat:
		return "overheat"
	case FallbackPartialDerate:
		return "partial_derate"
	default:
		return "none"
	}
}

// Alerts reports whether the anomaly must be sent to the notifier.
func (a FallbackAnomaly) Alerts() bool {
	return a == FallbackInverterFailure || a == FallbackOverheat
}

// FallbackParams holds the constants of the procedural model.
type FallbackParams struct {
	SunriseHour        float64
	SunsetHour         float64
	PeakIrradiance     float64 // W/m² at solar noon
	NoiseMin           float64
	NoiseMax           float64
	BaseTempC          float64
	TempRiseC          float64 // added at peak irradiance
	SystemEfficiency   float64
	ReferenceTempC     float64
	TempCoefficient    float64 // per °C above ReferenceTempC
	AnomalyProbability float64
	OverheatDeltaC     float64
	DerateFactor       float64
}

// DefaultFallbackParams returns the reference model constants.
func DefaultFallbackParams() FallbackParams {
	return FallbackParams{
		SunriseHour:        6,
		SunsetHour:         18,
		PeakIrradiance:     1000,
		NoiseMin:           0.8,
		NoiseMax:           1.2,
		BaseTempC:          15,
		TempRiseC:          30,
		SystemEfficiency:   0.85,
		ReferenceTempC:     25,
		TempCoefficient:    -0.0035,
		AnomalyProbability: 0.1,
		OverheatDeltaC:     30,
		DerateFactor:       0.5,
	}
}

// FallbackResult is one generated sample for a site.
type FallbackResult struct {
	IrradianceWm2 float64
	PanelTempC    float64
	PowerWatts    float64
	InverterOK    int
	Anomaly       FallbackAnomaly
}

// FallbackModel synthesizes readings for sites without recorded data: a
// daylight sine curve with multiplicative noise and occasional anomalies.
type FallbackModel struct {
	params FallbackParams
	rnd    RandomSource
}

func NewFallbackModel(params FallbackParams, rnd RandomSource) *FallbackModel {
	return &FallbackModel{params: params, rnd: rnd}
}

// Generate computes a sample for site at the wall-clock time at. The hour of
// day is taken in at's location.
func (m *FallbackModel) Generate(site Site, at time.Time) FallbackResult {
	p := m.params
	hour := float64(at.Hour()) + float64(at.Minute())/60

	irradiance := 0.0
	if hour > p.SunriseHour && hour < p.SunsetHour {
		daylight := p.SunsetHour - p.SunriseHour
		irradiance = p.PeakIrradiance * math.Sin(math.Pi*(hour-p.SunriseHour)/daylight)
		irradiance *= p.NoiseMin + m.rnd.Float64()*(p.NoiseMax-p.NoiseMin)
	}

	temp := p.BaseTempC + (irradiance/p.PeakIrradiance)*p.TempRiseC

	derate := 1 + (temp-p.ReferenceTempC)*p.TempCoefficient
	power := float64(site.PanelCount) * site.PeakUnitKW * 1000 *
		(irradiance / p.PeakIrradiance) * p.SystemEfficiency * derate

	res := FallbackResult{InverterOK: 1}
	if m.rnd.Float64() < p.AnomalyProbability {
		switch m.rnd.Intn(3) {
		case 0:
			res.Anomaly = FallbackInverterFailure
			power = 0
			res.InverterOK = 0
		case 1:
			res.Anomaly = FallbackOverheat
			temp += p.OverheatDeltaC
		default:
			res.Anomaly = FallbackPartialDerate
			power *= p.DerateFactor
		}
	}

	res.IrradianceWm2 = nonNegative(round2(irradiance))
	res.PanelTempC = round2(temp)
	res.PowerWatts = nonNegative(round2(power))
	return res
}
