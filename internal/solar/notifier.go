package solar

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier observes anomalies. It is side-effect only and never changes the
// published values. Recorded anomalies carry the dataset's type code and
// severity; simulated ones only a category.
type Notifier interface {
	RecordedAnomaly(site Site, anomalyType, severity string)
	SimulatedAnomaly(site Site, kind FallbackAnomaly)
}

// AnomalyRecorder counts anomalies, e.g. into a metrics backend.
type AnomalyRecorder interface {
	RecordAnomaly(siteID, kind string)
}

// LogNotifier writes one warning per anomaly.
type LogNotifier struct {
	log      *zap.Logger
	recorder AnomalyRecorder
}

// NewLogNotifier creates a LogNotifier. recorder may be nil.
func NewLogNotifier(log *zap.Logger, recorder AnomalyRecorder) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{log: log, recorder: recorder}
}

func (n *LogNotifier) RecordedAnomaly(site Site, anomalyType, severity string) {
	severity = strings.TrimSpace(severity)
	if severity == "" {
		severity = "none"
	}
	n.log.Warn("anomaly alert",
		zap.String("alert_id", uuid.NewString()),
		zap.String("site", site.ID),
		zap.String("site_name", site.DisplayName),
		zap.String("anomaly", anomalyType),
		zap.String("severity", severity),
		zap.String("source", string(ModeReplay)),
	)
	if n.recorder != nil {
		n.recorder.RecordAnomaly(site.ID, anomalyType)
	}
}

func (n *LogNotifier) SimulatedAnomaly(site Site, kind FallbackAnomaly) {
	n.log.Warn("anomaly alert",
		zap.String("alert_id", uuid.NewString()),
		zap.String("site", site.ID),
		zap.String("site_name", site.DisplayName),
		zap.String("anomaly", kind.String()),
		zap.String("source", string(ModeFallback)),
	)
	if n.recorder != nil {
		n.recorder.RecordAnomaly(site.ID, kind.String())
	}
}
