package solar

import (
	"math/rand"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// siteState is the playback state of one site. The dataset pointer and the
// cursor are atomics so status readers never block the tick loop.
type siteState struct {
	site    Site
	dataset atomic.Pointer[Dataset]
	cursor  atomic.Int64
}

func (st *siteState) rows() Dataset {
	if ds := st.dataset.Load(); ds != nil {
		return *ds
	}
	return nil
}

// Engine produces one snapshot per site per tick, replaying the site's
// dataset when it has one and running the fallback model otherwise.
type Engine struct {
	mu sync.Mutex // serializes ticks and dataset swaps

	registry *Registry
	sites    []*siteState
	byID     map[string]*siteState

	fallback *FallbackModel
	notifier Notifier
	now      func() time.Time
	location *time.Location
	log      *zap.Logger
}

// Option configures an Engine.
type Option func(*engineOptions)

type engineOptions struct {
	rnd      RandomSource
	params   FallbackParams
	notifier Notifier
	now      func() time.Time
	location *time.Location
	log      *zap.Logger
}

// WithRandom sets the random source of the fallback model.
func WithRandom(rnd RandomSource) Option {
	return func(o *engineOptions) { o.rnd = rnd }
}

// WithFallbackParams overrides the fallback model constants.
func WithFallbackParams(p FallbackParams) Option {
	return func(o *engineOptions) { o.params = p }
}

func WithNotifier(n Notifier) Option {
	return func(o *engineOptions) { o.notifier = n }
}

// WithClock sets the wall clock used for fallback generation and timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *engineOptions) { o.now = now }
}

// WithLocation sets the time zone in which the fallback model reads the hour of day.
func WithLocation(loc *time.Location) Option {
	return func(o *engineOptions) { o.location = loc }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *engineOptions) { o.log = log }
}

// NewEngine creates an engine for every site of the registry. All sites start
// with an empty dataset.
func NewEngine(registry *Registry, opts ...Option) *Engine {
	o := engineOptions{
		params:   DefaultFallbackParams(),
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.notifier == nil {
		o.notifier = NewLogNotifier(o.log, nil)
	}

	e := &Engine{
		registry: registry,
		byID:     make(map[string]*siteState, registry.Len()),
		fallback: NewFallbackModel(o.params, o.rnd),
		notifier: o.notifier,
		now:      o.now,
		location: o.location,
		log:      o.log,
	}
	for _, s := range registry.Sites() {
		st := &siteState{site: s}
		e.sites = append(e.sites, st)
		e.byID[s.ID] = st
	}
	return e
}

// SetDataset installs the recorded dataset of a site and rewinds its cursor.
// The dataset must not be modified afterwards.
func (e *Engine) SetDataset(siteID string, ds Dataset) error {
	st, ok := e.byID[siteID]
	if !ok {
		_, err := e.registry.Lookup(siteID)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(ds) == 0 {
		st.dataset.Store(nil)
	} else {
		st.dataset.Store(&ds)
	}
	st.cursor.Store(0)
	return nil
}

// Tick computes one snapshot for each site, in registry order.
func (e *Engine) Tick() []Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	out := make([]Snapshot, 0, len(e.sites))
	for _, st := range e.sites {
		out = append(out, e.step(st, now))
	}
	return out
}

func (e *Engine) step(st *siteState, now time.Time) Snapshot {
	if ds := st.rows(); len(ds) > 0 {
		return e.replay(st, ds, now)
	}
	return e.synthesize(st, now)
}

func (e *Engine) replay(st *siteState, ds Dataset, now time.Time) Snapshot {
	idx := int(st.cursor.Load())
	if idx < 0 || idx >= len(ds) {
		idx = 0
	}
	row := ds[idx]
	st.cursor.Store(int64((idx + 1) % len(ds)))

	r := normalizeRow(row)
	if row.HasAnomaly() {
		e.notifier.RecordedAnomaly(st.site, row.AnomalyType, row.AnomalySeverity)
	}

	return Snapshot{
		SiteID:        st.site.ID,
		Timestamp:     now.UTC(),
		Mode:          ModeReplay,
		PowerWatts:    r.PowerWatts,
		IrradianceWm2: r.IrradianceWm2,
		PanelTempC:    r.PanelTempC,
		InverterOK:    r.InverterOK,
	}
}

func (e *Engine) synthesize(st *siteState, now time.Time) Snapshot {
	r := e.fallback.Generate(st.site, now.In(e.location))
	if r.Anomaly.Alerts() {
		e.notifier.SimulatedAnomaly(st.site, r.Anomaly)
	} else if r.Anomaly != FallbackNone {
		e.log.Debug("fallback anomaly applied", zap.String("site", st.site.ID), zap.Stringer("anomaly", r.Anomaly))
	}

	return Snapshot{
		SiteID:        st.site.ID,
		Timestamp:     now.UTC(),
		Mode:          ModeFallback,
		PowerWatts:    r.PowerWatts,
		IrradianceWm2: r.IrradianceWm2,
		PanelTempC:    r.PanelTempC,
		InverterOK:    r.InverterOK,
	}
}

// Status returns the playback state of every site in registry order.
func (e *Engine) Status() []SiteStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]SiteStatus, 0, len(e.sites))
	for _, st := range e.sites {
		out = append(out, st.status())
	}
	return out
}

// SiteStatus returns the playback state of one site.
func (e *Engine) SiteStatus(siteID string) (SiteStatus, error) {
	st, ok := e.byID[siteID]
	if !ok {
		_, err := e.registry.Lookup(siteID)
		return SiteStatus{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return st.status(), nil
}

// status requires e.mu so the dataset and cursor belong together.
func (st *siteState) status() SiteStatus {
	n := len(st.rows())
	s := SiteStatus{Site: st.site, Mode: ModeFallback, DatasetLen: n}
	if n > 0 {
		s.Mode = ModeReplay
		s.Cursor = int(st.cursor.Load())
	}
	return s
}

// Registry returns the engine's site registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}
