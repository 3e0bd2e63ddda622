package locate

import (
	"context"

	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/model"
	"github.com/frcmap/season-map/internal/monitoring"
	"github.com/frcmap/season-map/pkg/firstapi"
	"github.com/frcmap/season-map/pkg/geocode"
)

// Sources are the local inputs consulted before any network lookup.
type Sources struct {
	TeamOverrides  Overrides
	EventOverrides Overrides
	TeamArchive    Archive
	EventArchive   Archive
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithStats records the outcome of every resolution in c.
func WithStats(c *monitoring.Collector) Option {
	return func(r *Resolver) {
		r.stats = c
	}
}

// Resolver runs the override, archive, live lookup cascade over teams and
// events. Lookup failures never abort a batch; the entity is left without
// coordinates.
type Resolver struct {
	geocoder geocode.Client
	first    firstapi.Client
	src      Sources
	year     int
	stats    *monitoring.Collector
}

// NewResolver creates a resolver for the given season. first may be nil, in
// which case events are geocoded from registry data alone.
func NewResolver(g geocode.Client, first firstapi.Client, src Sources, year int, opts ...Option) *Resolver {
	r := &Resolver{
		geocoder: g,
		first:    first,
		src:      src,
		year:     year,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveTeams places every team. Order of precedence: override, archive,
// geocoded address. A team that cannot be placed has no coordinates.
func (r *Resolver) ResolveTeams(ctx context.Context, teams *Table[*model.Team]) {
	zap.L().Info("resolving team locations", zap.Int("teams", teams.Len()))
	teams.Each(func(key string, t *model.Team) {
		r.stats.Resolved(monitoring.EntityTeam, r.resolveTeam(ctx, t))
	})
}

func (r *Resolver) resolveTeam(ctx context.Context, t *model.Team) string {
	if o, ok := r.src.TeamOverrides[t.Key]; ok {
		o.Apply(t)
		return monitoring.SourceOverride
	}
	if r.src.TeamArchive.Apply(t) {
		return monitoring.SourceArchive
	}
	addr, ok := ComposeTeamAddress(t)
	if r.geocode(ctx, t, addr, ok) {
		return monitoring.SourceGeocode
	}
	return monitoring.SourceUnresolved
}

// ResolveEvents places every event. The override always applies first; an
// event still without coordinates falls back to the archive, then, for
// official events only, to enrichment and geocoding. Events that end up
// without coordinates are marked ignored.
func (r *Resolver) ResolveEvents(ctx context.Context, events *Table[*model.Event]) {
	zap.L().Info("resolving event locations", zap.Int("events", events.Len()))
	events.Each(func(key string, e *model.Event) {
		source := r.resolveEvent(ctx, e)
		if !e.HasLocation() {
			zap.L().Error("event has no location, ignoring", zap.String("event", key))
			e.SetIgnore(true)
			source = monitoring.SourceUnresolved
		}
		r.stats.Resolved(monitoring.EntityEvent, source)
	})
}

func (r *Resolver) resolveEvent(ctx context.Context, e *model.Event) string {
	source := monitoring.SourceRegistry
	if o, ok := r.src.EventOverrides[e.Key]; ok {
		o.Apply(e)
		source = monitoring.SourceOverride
	}
	if e.HasLocation() {
		return source
	}

	if r.src.EventArchive.Apply(e) {
		return monitoring.SourceArchive
	}

	if !e.IsOfficial {
		zap.L().Error("unofficial event has no override or archived location",
			zap.String("event", e.Key),
			zap.String("name", e.Name),
		)
		return monitoring.SourceUnresolved
	}

	r.enrich(ctx, e)
	addr, ok := ComposeEventAddress(e)
	if r.geocode(ctx, e, addr, ok) {
		return monitoring.SourceGeocode
	}
	return monitoring.SourceUnresolved
}

// enrich replaces the registry venue and street address with the FIRST API
// values when those are non-empty.
func (r *Resolver) enrich(ctx context.Context, e *model.Event) {
	if r.first == nil || e.FirstEventCode == "" {
		return
	}
	details, err := r.first.EventDetails(ctx, r.year, e.FirstEventCode)
	if err != nil {
		zap.L().Error("failed to fetch event details",
			zap.String("event", e.Key),
			zap.String("code", e.FirstEventCode),
			zap.Error(err),
		)
		return
	}
	if details == nil {
		zap.L().Warn("event not found in FIRST API",
			zap.String("event", e.Key),
			zap.String("code", e.FirstEventCode),
		)
		return
	}
	if details.Venue != "" {
		e.Venue = details.Venue
	}
	if details.Address != "" {
		e.Address = details.Address
	}
}

// geocode looks up addr and stores the result on e. On any failure the
// location of e is cleared.
func (r *Resolver) geocode(ctx context.Context, e model.Locatable, addr string, ok bool) bool {
	if !ok {
		zap.L().Error("no address to geocode", zap.String("key", e.ID()))
		e.ClearLocation()
		return false
	}

	res, err := r.geocoder.Geocode(ctx, addr)
	if err != nil {
		zap.L().Error("geocode failed",
			zap.String("key", e.ID()),
			zap.String("address", addr),
			zap.Error(err),
		)
		e.ClearLocation()
		return false
	}
	if res == nil || !res.Matched {
		zap.L().Error("geocode returned no result",
			zap.String("key", e.ID()),
			zap.String("address", addr),
		)
		e.ClearLocation()
		return false
	}

	zap.L().Debug("geocoded",
		zap.String("key", e.ID()),
		zap.String("address", addr),
		zap.Float64("lat", res.Latitude),
		zap.Float64("lng", res.Longitude),
	)
	e.SetLocation(res.Latitude, res.Longitude)
	return true
}
