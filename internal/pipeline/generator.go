package pipeline

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/locate"
	"github.com/frcmap/season-map/internal/model"
	"github.com/frcmap/season-map/internal/monitoring"
	"github.com/frcmap/season-map/pkg/tba"
)

// Option configures a Generator.
type Option func(*Generator)

// WithDebugDir enables intermediate JSON dumps into dir.
func WithDebugDir(dir string) Option {
	return func(g *Generator) {
		g.debug = &debugDumper{dir: dir}
	}
}

// WithRand sets the random source used to jitter colliding positions.
func WithRand(rng *rand.Rand) Option {
	return func(g *Generator) {
		g.rng = rng
	}
}

// WithStats records jitter counts in c.
func WithStats(c *monitoring.Collector) Option {
	return func(g *Generator) {
		g.stats = c
	}
}

// Generator assembles one season's dataset.
type Generator struct {
	registry tba.Client
	resolver *locate.Resolver
	archives *locate.ArchiveStore
	year     int
	debug    *debugDumper
	rng      *rand.Rand
	stats    *monitoring.Collector
}

// New creates a Generator for year.
func New(registry tba.Client, resolver *locate.Resolver, archives *locate.ArchiveStore, year int, opts ...Option) *Generator {
	g := &Generator{
		registry: registry,
		resolver: resolver,
		archives: archives,
		year:     year,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate fetches, resolves and assembles the season. Registry batch
// failures are fatal; everything per-entity is logged and skipped.
func (g *Generator) Generate(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	log := zap.L().With(zap.Int("year", g.year))

	log.Info("pipeline: fetching teams")
	teams, err := g.registry.Teams(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch teams")
	}
	g.debug.dump("teams", teams)

	log.Info("pipeline: fetching events")
	events, err := g.registry.Events(ctx, g.year)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch events")
	}

	log.Info("pipeline: fetching active teams")
	active, err := g.registry.ActiveTeamKeys(ctx, g.year)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch active teams")
	}
	g.debug.dump("active_teams", active)

	teamTable := locate.NewTable(teams)
	g.resolver.ResolveTeams(ctx, teamTable)
	moved := locate.Dedup(teamTable, g.rng)
	g.stats.Jittered(monitoring.EntityTeam, len(moved))
	if err := g.archives.SaveTeams(locate.ArchiveOf(teamTable), g.year); err != nil {
		log.Warn("pipeline: failed to save team archive", zap.Error(err))
	}
	g.debug.dump("teams_geocoded", teams)

	eventTable := locate.NewTable(events)
	g.resolver.ResolveEvents(ctx, eventTable)
	moved = locate.Dedup(eventTable, g.rng)
	g.stats.Jittered(monitoring.EntityEvent, len(moved))
	if err := g.archives.SaveEvents(locate.ArchiveOf(eventTable)); err != nil {
		log.Warn("pipeline: failed to save event archive", zap.Error(err))
	}
	g.debug.dump("events_geocoded", events)

	log.Info("pipeline: mapping teams to events")
	teamEvents, err := g.registry.TeamEventMap(ctx, g.year)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: fetch team events")
	}
	g.debug.dump("team_events", teamEvents)

	ds := &Dataset{
		Teams:  make(map[string]*model.Team, len(active)),
		Events: make(map[string]*model.Event, len(events)),
	}

	for _, key := range active {
		t, ok := teams[key]
		if !ok {
			log.Warn("pipeline: active team missing from team list", zap.String("team", key))
			continue
		}
		out := t.Clone()
		out.Events = teamEvents[key]
		if out.Events == nil {
			out.Events = []string{}
		}
		ds.Teams[key] = out
	}

	for _, key := range eventTable.Keys() {
		e := events[key]
		roster, err := g.registry.EventTeamKeys(ctx, key)
		if err != nil {
			log.Warn("pipeline: failed to fetch event roster", zap.String("event", key), zap.Error(err))
			roster = []string{}
		}
		e.Teams = roster
		ds.Events[key] = e
	}

	placedTeams, placedEvents := ds.Located()
	log.Info("pipeline: dataset assembled",
		zap.Int("teams", len(ds.Teams)),
		zap.Int("teams_located", placedTeams),
		zap.Int("events", len(ds.Events)),
		zap.Int("events_located", placedEvents),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ds, nil
}
