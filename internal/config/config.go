package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	Year        int           `yaml:"year" mapstructure:"year"`
	Paths       PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Keys        APIKeys       `yaml:"keys" mapstructure:"keys"`
	APIKeysFile string        `yaml:"api_keys_file" mapstructure:"api_keys_file"`
	HTTP        HTTPConfig    `yaml:"http" mapstructure:"http"`
	Geocode     GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Output      OutputConfig  `yaml:"output" mapstructure:"output"`
	Publish     PublishConfig `yaml:"publish" mapstructure:"publish"`
	Metrics     MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Server      ServerConfig  `yaml:"server" mapstructure:"server"`
	Log         LogConfig     `yaml:"log" mapstructure:"log"`
}

// PathsConfig locates inputs, caches and outputs on disk.
type PathsConfig struct {
	TeamOverrides  string `yaml:"team_overrides" mapstructure:"team_overrides"`
	EventOverrides string `yaml:"event_overrides" mapstructure:"event_overrides"`
	Archive        string `yaml:"archive" mapstructure:"archive"`
	Cache          string `yaml:"cache" mapstructure:"cache"`
	Output         string `yaml:"output" mapstructure:"output"`
	Debug          string `yaml:"debug" mapstructure:"debug"`
	Site           string `yaml:"site" mapstructure:"site"`
}

// APIKeys holds the credentials of the upstream services.
type APIKeys struct {
	TBAKey   string `yaml:"tba_key" mapstructure:"tba_key"`
	GmapsKey string `yaml:"gmaps_key" mapstructure:"gmaps_key"`
	// FirstToken is "username:authorization-key" for the FIRST Events API.
	FirstToken string `yaml:"first_token" mapstructure:"first_token"`
}

// HTTPConfig configures the shared HTTP transport.
type HTTPConfig struct {
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	CacheTTLHours int     `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
	TBARPS        float64 `yaml:"tba_rps" mapstructure:"tba_rps"`
	FirstRPS      float64 `yaml:"first_rps" mapstructure:"first_rps"`
}

// GeocodeConfig configures the geocoding client.
type GeocodeConfig struct {
	RPS            float64 `yaml:"rps" mapstructure:"rps"`
	MemoTTLMinutes int     `yaml:"memo_ttl_minutes" mapstructure:"memo_ttl_minutes"`
}

// OutputConfig selects optional dataset renderings.
type OutputConfig struct {
	GeoJSON bool `yaml:"geojson" mapstructure:"geojson"`
}

// PublishConfig locates the S3-compatible bucket outputs are uploaded to.
type PublishConfig struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
	Region    string `yaml:"region" mapstructure:"region"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
}

// MetricsConfig configures run statistics export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile" mapstructure:"textfile"`
}

// ServerConfig configures the preview server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SEASONMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("year", 0)
	v.SetDefault("paths.team_overrides", "locations/teams.json")
	v.SetDefault("paths.event_overrides", "locations/events.json")
	v.SetDefault("paths.archive", "locations/archive")
	v.SetDefault("paths.cache", "cache")
	v.SetDefault("paths.output", "docs/data")
	v.SetDefault("paths.debug", "debug")
	v.SetDefault("paths.site", "docs")
	v.SetDefault("keys.tba_key", "")
	v.SetDefault("keys.gmaps_key", "")
	v.SetDefault("keys.first_token", "")
	v.SetDefault("api_keys_file", "api-keys.yaml")
	v.SetDefault("http.timeout_secs", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.cache_ttl_hours", 24)
	v.SetDefault("http.user_agent", "season-map/1.0")
	v.SetDefault("http.tba_rps", 10)
	v.SetDefault("http.first_rps", 5)
	v.SetDefault("geocode.rps", 25)
	v.SetDefault("geocode.memo_ttl_minutes", 60)
	v.SetDefault("output.geojson", false)
	v.SetDefault("publish.endpoint", "")
	v.SetDefault("publish.access_key", "")
	v.SetDefault("publish.secret_key", "")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "")
	v.SetDefault("publish.use_ssl", true)
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// LoadAPIKeys reads a YAML keys file. A missing file yields empty keys.
func LoadAPIKeys(path string) (APIKeys, error) {
	var keys APIKeys
	if path == "" {
		return keys, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return keys, nil
		}
		return keys, eris.Wrapf(err, "config: read api keys %s", path)
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return keys, eris.Wrapf(err, "config: parse api keys %s", path)
	}
	return keys, nil
}

// Merge returns k with every non-empty value of other applied on top.
func (k APIKeys) Merge(other APIKeys) APIKeys {
	if other.TBAKey != "" {
		k.TBAKey = other.TBAKey
	}
	if other.GmapsKey != "" {
		k.GmapsKey = other.GmapsKey
	}
	if other.FirstToken != "" {
		k.FirstToken = other.FirstToken
	}
	return k
}

// ResolveKeys merges the keys file over the configured keys.
func (c *Config) ResolveKeys() error {
	fileKeys, err := LoadAPIKeys(c.APIKeysFile)
	if err != nil {
		return err
	}
	c.Keys = c.Keys.Merge(fileKeys)
	return nil
}

// Validate checks the settings required by a command.
func (c *Config) Validate(mode string) error {
	var missing []string
	switch mode {
	case "generate":
		if c.Keys.TBAKey == "" {
			missing = append(missing, "keys.tba_key")
		}
		if c.Keys.GmapsKey == "" {
			missing = append(missing, "keys.gmaps_key")
		}
		if c.Keys.FirstToken != "" && !strings.Contains(c.Keys.FirstToken, ":") {
			return eris.New("config: keys.first_token must be username:key")
		}
		if c.HTTP.MaxRetries < 0 {
			return eris.New("config: http.max_retries must not be negative")
		}
	case "serve":
		if c.Server.Port < 1 || c.Server.Port > 65535 {
			return eris.Errorf("config: invalid server.port %d", c.Server.Port)
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}
	if len(missing) > 0 {
		return eris.Errorf("config: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
