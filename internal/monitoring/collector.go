// Package monitoring records per-run location resolution statistics as
// Prometheus counters on a private registry.
package monitoring

import (
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Entity labels.
const (
	EntityTeam  = "team"
	EntityEvent = "event"
)

// Resolution sources.
const (
	SourceOverride   = "override"
	SourceArchive    = "archive"
	SourceRegistry   = "registry"
	SourceGeocode    = "geocode"
	SourceUnresolved = "unresolved"
)

// Snapshot is a point-in-time view of a run's counters.
type Snapshot struct {
	RunID       string                        `json:"run_id"`
	Resolutions map[string]map[string]float64 `json:"resolutions"`
	Jittered    map[string]float64            `json:"jittered"`
	Elapsed     time.Duration                 `json:"elapsed"`
}

// Collector accumulates the counters of one generator run. A nil *Collector
// is valid and records nothing.
type Collector struct {
	runID    string
	started  time.Time
	registry *prometheus.Registry

	resolutions *prometheus.CounterVec
	jittered    *prometheus.CounterVec
	lastRun     prometheus.Gauge
	duration    prometheus.Gauge
}

// NewCollector creates a collector for the run identified by runID.
func NewCollector(runID string) *Collector {
	c := &Collector{
		runID:    runID,
		started:  time.Now(),
		registry: prometheus.NewRegistry(),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "season_map_resolutions_total",
				Help: "Entities resolved, by entity type and the cascade step that placed them",
			},
			[]string{"entity", "source"},
		),
		jittered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "season_map_jittered_total",
				Help: "Entities displaced to break an exact coordinate collision",
			},
			[]string{"entity"},
		),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "season_map_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "season_map_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
	}
	c.registry.MustRegister(c.resolutions, c.jittered, c.lastRun, c.duration)
	return c
}

// Registry exposes the private registry, e.g. for an HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Resolved counts one entity placed (or left unplaced) by source.
func (c *Collector) Resolved(entity, source string) {
	if c == nil {
		return
	}
	c.resolutions.WithLabelValues(entity, source).Inc()
}

// Jittered counts n displaced entities.
func (c *Collector) Jittered(entity string, n int) {
	if c == nil || n <= 0 {
		return
	}
	c.jittered.WithLabelValues(entity).Add(float64(n))
}

// Count returns the current resolution counter for entity and source.
func (c *Collector) Count(entity, source string) float64 {
	if c == nil {
		return 0
	}
	return counterValue(c.resolutions.WithLabelValues(entity, source))
}

// JitterCount returns the current jitter counter for entity.
func (c *Collector) JitterCount(entity string) float64 {
	if c == nil {
		return 0
	}
	return counterValue(c.jittered.WithLabelValues(entity))
}

func counterValue(m prometheus.Metric) float64 {
	var out dto.Metric
	if err := m.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}

// Finish stamps the run duration and completion time.
func (c *Collector) Finish() {
	if c == nil {
		return
	}
	c.duration.Set(time.Since(c.started).Seconds())
	c.lastRun.SetToCurrentTime()
}

// Snapshot gathers the registry into a plain structure.
func (c *Collector) Snapshot() (*Snapshot, error) {
	snap := &Snapshot{
		RunID:       c.runID,
		Resolutions: make(map[string]map[string]float64),
		Jittered:    make(map[string]float64),
		Elapsed:     time.Since(c.started),
	}

	families, err := c.registry.Gather()
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: gather metrics")
	}

	for _, fam := range families {
		switch fam.GetName() {
		case "season_map_resolutions_total":
			for _, m := range fam.GetMetric() {
				labels := labelMap(m)
				entity := labels["entity"]
				if snap.Resolutions[entity] == nil {
					snap.Resolutions[entity] = make(map[string]float64)
				}
				snap.Resolutions[entity][labels["source"]] = m.GetCounter().GetValue()
			}
		case "season_map_jittered_total":
			for _, m := range fam.GetMetric() {
				snap.Jittered[labelMap(m)["entity"]] = m.GetCounter().GetValue()
			}
		}
	}
	return snap, nil
}

func labelMap(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		out[lp.GetName()] = lp.GetValue()
	}
	return out
}

// Log writes the run summary to the global logger.
func (c *Collector) Log() {
	if c == nil {
		return
	}
	snap, err := c.Snapshot()
	if err != nil {
		zap.L().Warn("failed to gather run statistics", zap.Error(err))
		return
	}

	entities := make([]string, 0, len(snap.Resolutions))
	for e := range snap.Resolutions {
		entities = append(entities, e)
	}
	sort.Strings(entities)

	for _, e := range entities {
		src := snap.Resolutions[e]
		zap.L().Info("resolution summary",
			zap.String("run_id", snap.RunID),
			zap.String("entity", e),
			zap.Float64("override", src[SourceOverride]),
			zap.Float64("archive", src[SourceArchive]),
			zap.Float64("geocode", src[SourceGeocode]),
			zap.Float64("unresolved", src[SourceUnresolved]),
			zap.Float64("jittered", snap.Jittered[e]),
		)
	}
	zap.L().Info("run finished",
		zap.String("run_id", snap.RunID),
		zap.Duration("elapsed", snap.Elapsed),
	)
}

// WriteTextfile writes the registry in Prometheus text format for the
// node-exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	if c == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return eris.Wrapf(err, "monitoring: write textfile %s", path)
	}
	return nil
}
