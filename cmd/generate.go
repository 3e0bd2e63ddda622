package main

import (
	"context"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/config"
	"github.com/frcmap/season-map/internal/fsutil"
	"github.com/frcmap/season-map/internal/locate"
	"github.com/frcmap/season-map/internal/monitoring"
	"github.com/frcmap/season-map/internal/pipeline"
	"github.com/frcmap/season-map/internal/publish"
	"github.com/frcmap/season-map/internal/store"
	"github.com/frcmap/season-map/internal/transport"
	"github.com/frcmap/season-map/pkg/firstapi"
	"github.com/frcmap/season-map/pkg/geocode"
	"github.com/frcmap/season-map/pkg/tba"
)

const (
	tbaHost   = "www.thebluealliance.com"
	firstHost = "frc-api.firstinspires.org"
	cacheDB   = "http_cache.db"
)

var generateFlags struct {
	year           int
	teamLocations  string
	eventLocations string
	archive        string
	cache          string
	output         string
	debug          string
	apiKeys        string
	publish        bool
	geojson        bool
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the season dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyGenerateFlags(cmd, cfg)
		return runGenerate(ctx, cfg, generateFlags.publish)
	},
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&generateFlags.year, "year", 0, "season year (default current year)")
	f.StringVar(&generateFlags.teamLocations, "team-locations", "", "team override file")
	f.StringVar(&generateFlags.eventLocations, "event-locations", "", "event override file")
	f.StringVar(&generateFlags.archive, "location-archive", "", "location archive directory")
	f.StringVar(&generateFlags.cache, "cache-location", "", "HTTP cache directory")
	f.StringVar(&generateFlags.output, "output-location", "", "dataset output directory")
	f.StringVar(&generateFlags.debug, "debug-path", "", "directory for intermediate dumps (empty disables)")
	f.StringVar(&generateFlags.apiKeys, "api-keys", "", "YAML file with tba_key, gmaps_key and first_token")
	f.BoolVar(&generateFlags.publish, "publish", false, "upload the dataset to the configured bucket")
	f.BoolVar(&generateFlags.geojson, "geojson", false, "also write a GeoJSON rendering")
	rootCmd.AddCommand(generateCmd)
}

// applyGenerateFlags copies explicitly set flags over the loaded config.
func applyGenerateFlags(cmd *cobra.Command, c *config.Config) {
	f := cmd.Flags()
	if f.Changed("year") {
		c.Year = generateFlags.year
	}
	if f.Changed("team-locations") {
		c.Paths.TeamOverrides = generateFlags.teamLocations
	}
	if f.Changed("event-locations") {
		c.Paths.EventOverrides = generateFlags.eventLocations
	}
	if f.Changed("location-archive") {
		c.Paths.Archive = generateFlags.archive
	}
	if f.Changed("cache-location") {
		c.Paths.Cache = generateFlags.cache
	}
	if f.Changed("output-location") {
		c.Paths.Output = generateFlags.output
	}
	if f.Changed("debug-path") {
		c.Paths.Debug = generateFlags.debug
	}
	if f.Changed("api-keys") {
		c.APIKeysFile = generateFlags.apiKeys
	}
	if f.Changed("geojson") {
		c.Output.GeoJSON = generateFlags.geojson
	}
}

// seasonYear returns the configured year, or the current one.
func seasonYear(c *config.Config) int {
	if c.Year > 0 {
		return c.Year
	}
	return time.Now().Year()
}

func runGenerate(ctx context.Context, c *config.Config, doPublish bool) error {
	if err := c.ResolveKeys(); err != nil {
		return err
	}
	if err := c.Validate("generate"); err != nil {
		return err
	}

	year := seasonYear(c)
	runID := uuid.New().String()
	log := zap.L().With(zap.String("run_id", runID), zap.Int("year", year))
	log.Info("generate: starting")

	for _, dir := range []string{c.Paths.Cache, c.Paths.Archive, c.Paths.Output} {
		if err := fsutil.EnsureDir(dir); err != nil {
			return err
		}
	}
	if c.Paths.Debug != "" {
		if err := fsutil.EnsureDir(c.Paths.Debug); err != nil {
			return err
		}
	}

	teamOverrides, err := locate.LoadOverrides(c.Paths.TeamOverrides)
	if err != nil {
		return err
	}
	eventOverrides, err := locate.LoadOverrides(c.Paths.EventOverrides)
	if err != nil {
		return err
	}

	st, err := openCache(ctx, filepath.Join(c.Paths.Cache, cacheDB))
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck

	apiClient := transport.NewClient(transport.Options{
		UserAgent: c.HTTP.UserAgent,
		Timeout:   time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		Retry:     transport.RetryConfig{MaxAttempts: c.HTTP.MaxRetries + 1},
		Cache:     st,
		CacheTTL:  time.Duration(c.HTTP.CacheTTLHours) * time.Hour,
		RateLimits: map[string]float64{
			tbaHost:   c.HTTP.TBARPS,
			firstHost: c.HTTP.FirstRPS,
		},
	})
	// Geocoding results are persisted in the archive, not the response cache.
	geoClient := transport.NewClient(transport.Options{
		UserAgent: c.HTTP.UserAgent,
		Timeout:   time.Duration(c.HTTP.TimeoutSecs) * time.Second,
		Retry:     transport.RetryConfig{MaxAttempts: c.HTTP.MaxRetries + 1},
	})

	registry := tba.NewClient(c.Keys.TBAKey, tba.WithHTTPClient(apiClient))
	geocoder := geocode.NewClient(c.Keys.GmapsKey,
		geocode.WithHTTPClient(geoClient),
		geocode.WithRateLimit(c.Geocode.RPS),
		geocode.WithMemoTTL(time.Duration(c.Geocode.MemoTTLMinutes)*time.Minute),
	)
	var first firstapi.Client
	if c.Keys.FirstToken != "" {
		first = firstapi.NewClient(c.Keys.FirstToken, firstapi.WithHTTPClient(apiClient))
	} else {
		log.Warn("generate: no FIRST API token, events are geocoded from registry addresses only")
	}

	stats := monitoring.NewCollector(runID)
	archives := locate.NewArchiveStore(c.Paths.Archive)
	sources := locate.Sources{
		TeamOverrides:  teamOverrides,
		EventOverrides: eventOverrides,
		TeamArchive:    archives.LoadTeams(),
		EventArchive:   archives.LoadEvents(),
	}

	resolver := locate.NewResolver(geocoder, first, sources, year, locate.WithStats(stats))
	opts := []pipeline.Option{pipeline.WithStats(stats)}
	if c.Paths.Debug != "" {
		opts = append(opts, pipeline.WithDebugDir(c.Paths.Debug))
	}
	gen := pipeline.New(registry, resolver, archives, year, opts...)

	ds, err := gen.Generate(ctx)
	if err != nil {
		return err
	}

	files, err := pipeline.WriteDataset(c.Paths.Output, year, ds, pipeline.OutputOptions{GeoJSON: c.Output.GeoJSON})
	if err != nil {
		return err
	}

	if doPublish {
		if err := publishFiles(ctx, c.Publish, files); err != nil {
			return err
		}
	}

	stats.Finish()
	stats.Log()
	if err := stats.WriteTextfile(c.Metrics.Textfile); err != nil {
		log.Warn("generate: failed to write metrics textfile", zap.Error(err))
	}
	return nil
}

func openCache(ctx context.Context, path string) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	if n, err := st.DeleteExpired(ctx); err != nil {
		zap.L().Warn("failed to prune response cache", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("pruned response cache", zap.Int("entries", n))
	}
	return st, nil
}

func publishFiles(ctx context.Context, pc config.PublishConfig, files []string) error {
	pcfg := publish.Config{
		Endpoint:  pc.Endpoint,
		AccessKey: pc.AccessKey,
		SecretKey: pc.SecretKey,
		Bucket:    pc.Bucket,
		Prefix:    pc.Prefix,
		Region:    pc.Region,
		UseSSL:    pc.UseSSL,
	}
	if !pcfg.Enabled() {
		return eris.New("generate: --publish requires publish.endpoint and publish.bucket")
	}
	p, err := publish.New(pcfg)
	if err != nil {
		return err
	}
	_, err = p.Upload(ctx, files)
	return err
}
