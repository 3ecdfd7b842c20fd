package solar

import (
	"time"
)

// Mode describes how a site's snapshots are currently being produced.
type Mode string

const (
	ModeReplay   Mode = "replay"
	ModeFallback Mode = "fallback"
)

// Site is one simulated solar farm. Sites are defined once at startup and
// never mutated.
type Site struct {
	ID          string  `json:"id" yaml:"id" validate:"required"`
	DisplayName string  `json:"name" yaml:"name" validate:"required"`
	PanelCount  int     `json:"panels" yaml:"panels" validate:"gt=0"`
	PeakUnitKW  float64 `json:"peakPowerKw" yaml:"peakPowerKw" validate:"gt=0"`
	Latitude    float64 `json:"latitude" yaml:"latitude" validate:"gte=-90,lte=90"`
}

// DatasetRow is one recorded sample as read from the dataset source.
// Values are kept as raw text; they are parsed when the row is replayed.
type DatasetRow struct {
	Timestamp       string
	IrradianceWm2   string
	PanelTempC      string
	PowerKW         string
	InverterStatus  [InverterCount]string
	AnomalyType     string
	AnomalySeverity string
}

// InverterCount is the number of inverters reported per dataset row.
const InverterCount = 4

// Dataset is the ordered recorded series for one site. An empty dataset
// means the site runs on the fallback model.
type Dataset []DatasetRow

// Snapshot is the value set published for one site on one tick.
type Snapshot struct {
	SiteID        string    `json:"site"`
	Timestamp     time.Time `json:"timestamp"` // always UTC
	Mode          Mode      `json:"mode"`
	PowerWatts    float64   `json:"powerWatts"`
	IrradianceWm2 float64   `json:"irradianceWm2"`
	PanelTempC    float64   `json:"panelTempC"`
	InverterOK    int       `json:"inverterOk"`
}

// SiteStatus is a read-only view of a site's playback state.
type SiteStatus struct {
	Site       Site `json:"site"`
	Mode       Mode `json:"mode"`
	DatasetLen int  `json:"datasetRows"`
	Cursor     int  `json:"cursor"`
}
