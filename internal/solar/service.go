package solar

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TickRecorder observes completed ticks.
type TickRecorder interface {
	TickCompleted(sites int, took time.Duration)
}

// Service orchestrates the engine, the snapshot store and the optional publisher.
type Service struct {
	engine    *Engine
	store     Store
	publisher Publisher
	recorder  TickRecorder
	log       *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithPublisher forwards every tick's snapshots to p.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithTickRecorder(r TickRecorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a new Service.
func NewService(engine *Engine, store Store, log *zap.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		engine: engine,
		store:  store,
		log:    log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadDatasets loads the dataset of every registered site. A site whose
// source is missing or unreadable keeps running on the fallback model; load
// failures are logged and never returned.
func (s *Service) LoadDatasets(ctx context.Context, loader Loader) {
	for _, site := range s.engine.Registry().Sites() {
		ds, err := loader.Load(ctx, site.ID)
		if err != nil {
			s.log.Warn("dataset load failed; using fallback model",
				zap.String("site", site.ID), zap.Error(err))
			ds = nil
		}

		if err := s.engine.SetDataset(site.ID, ds); err != nil {
			s.log.Error("dataset install failed", zap.String("site", site.ID), zap.Error(err))
			continue
		}

		if len(ds) == 0 {
			s.log.Info("no recorded data; using fallback model", zap.String("site", site.ID))
		} else {
			s.log.Info("dataset loaded", zap.String("site", site.ID), zap.Int("rows", len(ds)))
		}
	}
}

// RunTick advances the simulation by one tick and publishes the result.
// Every snapshot is stored before publishing; publish errors are logged only.
func (s *Service) RunTick(ctx context.Context) {
	start := time.Now()

	snapshots := s.engine.Tick()
	for _, snap := range snapshots {
		s.store.SaveSnapshot(snap)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, snapshots); err != nil {
			s.log.Warn("snapshot publish failed", zap.Int("snapshots", len(snapshots)), zap.Error(err))
		}
	}

	if s.recorder != nil {
		s.recorder.TickCompleted(len(snapshots), time.Since(start))
	}
	s.log.Debug("tick completed", zap.Int("sites", len(snapshots)))
}

// Sites returns the playback state of every site.
func (s *Service) Sites() []SiteStatus {
	return s.engine.Status()
}

// Site returns the playback state of one site.
func (s *Service) Site(siteID string) (SiteStatus, error) {
	return s.engine.SiteStatus(siteID)
}

// GetLatest delegates to the underlying store.
func (s *Service) GetLatest(siteID string) (Snapshot, error) {
	if _, err := s.engine.Registry().Lookup(siteID); err != nil {
		return Snapshot{}, err
	}
	return s.store.GetLatest(siteID)
}

// GetRange delegates to the underlying store.
func (s *Service) GetRange(siteID string, from, to time.Time) ([]Snapshot, error) {
	if _, err := s.engine.Registry().Lookup(siteID); err != nil {
		return nil, err
	}
	return s.store.GetRange(siteID, from, to)
}
