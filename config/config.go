package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/mcuadros/go-defaults"
)

const (
	// EnvPrefix prefixes every environment override, SPECTRA_SERVER_LISTEN sets server.listen
	EnvPrefix = "SPECTRA_"
	// DefaultPath is the config file read when none is given
	DefaultPath = "./config/.config.yaml"

	envFile = ".env"
)

// Backend names accepted by the reputation and history sections
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds the spectra service configuration
type Config struct {
	// Server configures the HTTP listener
	Server Server `koanf:"server" json:"server"`
	// Engine configures URL scoring
	Engine Engine `koanf:"engine" json:"engine"`
	// Scanner configures the consensus scanner
	Scanner Scanner `koanf:"scanner" json:"scanner"`
	// Probes configures the enrichment probes
	Probes Probes `koanf:"probes" json:"probes"`
	// Reputation configures the third-party verdict cache
	Reputation Reputation `koanf:"reputation" json:"reputation"`
	// VirusTotal configures the third-party verdict client
	VirusTotal VirusTotal `koanf:"virustotal" json:"virustotal"`
	// Intel configures the threat feed
	Intel Intel `koanf:"intel" json:"intel"`
	// History configures scan history storage
	History History `koanf:"history" json:"history"`
	// Slack configures high risk notifications
	Slack Slack `koanf:"slack" json:"slack"`
}

// Server configures the HTTP listener
type Server struct {
	// Debug enables debug logging; set from the command line
	Debug bool `koanf:"debug" json:"debug" default:"false"`
	// Pretty enables console logging; set from the command line
	Pretty bool `koanf:"pretty" json:"pretty" default:"false"`
	// Listen is the address the server binds to
	Listen string `koanf:"listen" json:"listen" default:":8080"`
	// ReadTimeout bounds reading a request
	ReadTimeout time.Duration `koanf:"readTimeout" json:"readTimeout" default:"30s"`
	// WriteTimeout bounds writing a response and must exceed the scan deadline
	WriteTimeout time.Duration `koanf:"writeTimeout" json:"writeTimeout" default:"60s"`
	// ShutdownGracePeriod is how long in-flight requests get on shutdown
	ShutdownGracePeriod time.Duration `koanf:"shutdownGracePeriod" json:"shutdownGracePeriod" default:"10s"`
	// MaxBodySize caps request bodies in bytes
	MaxBodySize int64 `koanf:"maxBodySize" json:"maxBodySize" default:"1048576"`
}

// Engine configures URL scoring
type Engine struct {
	// Brands are the protected brand names
	Brands []string `koanf:"brands" json:"brands"`
	// HighRiskTLDs are suffixes that add risk
	HighRiskTLDs []string `koanf:"highRiskTLDs" json:"highRiskTLDs"`
}

// Scanner configures the consensus scanner
type Scanner struct {
	// ScanTimeout is the overall deadline of one scan
	ScanTimeout time.Duration `koanf:"scanTimeout" json:"scanTimeout" default:"30s"`
	// MaxConcurrency bounds URLs analyzed at once
	MaxConcurrency int `koanf:"maxConcurrency" json:"maxConcurrency" default:"8"`
}

// Probes configures the enrichment probes
type Probes struct {
	// Enabled turns network probes on; disabled probes report their defaults
	Enabled bool `koanf:"enabled" json:"enabled" default:"true"`

	TLSTimeout      time.Duration `koanf:"tlsTimeout" json:"tlsTimeout" default:"3s"`
	GeoTimeout      time.Duration `koanf:"geoTimeout" json:"geoTimeout" default:"4s"`
	DNSTimeout      time.Duration `koanf:"dnsTimeout" json:"dnsTimeout" default:"3s"`
	WhoisTimeout    time.Duration `koanf:"whoisTimeout" json:"whoisTimeout" default:"8s"`
	RedirectTimeout time.Duration `koanf:"redirectTimeout" json:"redirectTimeout" default:"6s"`
	// MaxRedirects caps the redirect chain
	MaxRedirects int `koanf:"maxRedirects" json:"maxRedirects" default:"10"`
	// DNSServer is the resolver used by the DNS probe and sender policy checks
	DNSServer string `koanf:"dnsServer" json:"dnsServer" default:"8.8.8.8:53"`
	// GeoEndpoint is the ip-api compatible lookup service
	GeoEndpoint string `koanf:"geoEndpoint" json:"geoEndpoint" default:"http://ip-api.com"`
}

// Reputation configures the third-party verdict cache
type Reputation struct {
	// Backend is memory or redis
	Backend string `koanf:"backend" json:"backend" default:"memory"`
	// TTL is how long a cached verdict is trusted
	TTL time.Duration `koanf:"ttl" json:"ttl" default:"24h"`
	// LookupTimeout bounds one third-party fetch
	LookupTimeout time.Duration `koanf:"lookupTimeout" json:"lookupTimeout" default:"20s"`
	RedisAddr     string        `koanf:"redisAddr" json:"redisAddr" default:"localhost:6379"`
	RedisDB       int           `koanf:"redisDB" json:"redisDB" default:"0"`
	RedisPassword string        `koanf:"redisPassword" json:"redisPassword" sensitive:"true"`
}

// VirusTotal configures the third-party verdict client
type VirusTotal struct {
	// APIKey enables lookups when set
	APIKey         string        `koanf:"apiKey" json:"apiKey" sensitive:"true"`
	BaseURL        string        `koanf:"baseURL" json:"baseURL" default:"https://www.virustotal.com/api/v3"`
	RequestTimeout time.Duration `koanf:"requestTimeout" json:"requestTimeout" default:"8s"`
	// BreakerFailures is the consecutive failure count that opens the breaker
	BreakerFailures uint32 `koanf:"breakerFailures" json:"breakerFailures" default:"5"`
	// BreakerOpen is how long the breaker stays open
	BreakerOpen time.Duration `koanf:"breakerOpen" json:"breakerOpen" default:"30s"`
}

// Intel configures the threat feed
type Intel struct {
	// FeedConfig is the path to the feed definition JSON; the built-in feed list is used when missing
	FeedConfig     string        `koanf:"feedConfig" json:"feedConfig" default:"./config/feed_config.json"`
	StorageDir     string        `koanf:"storageDir" json:"storageDir" default:"data/intel"`
	RequestTimeout time.Duration `koanf:"requestTimeout" json:"requestTimeout" default:"90s"`
	// AutoHydrate downloads the feeds in the background at startup
	AutoHydrate bool `koanf:"autoHydrate" json:"autoHydrate" default:"false"`
}

// History configures scan history storage
type History struct {
	// Backend is memory or postgres
	Backend    string `koanf:"backend" json:"backend" default:"memory"`
	DSN        string `koanf:"dsn" json:"dsn" sensitive:"true"`
	MaxRecords int    `koanf:"maxRecords" json:"maxRecords" default:"500"`
}

// Slack configures high risk notifications
type Slack struct {
	// WebhookURL enables notifications when set
	WebhookURL     string        `koanf:"webhookURL" json:"webhookURL" sensitive:"true"`
	Threshold      float64       `koanf:"threshold" json:"threshold" default:"75"`
	RequestTimeout time.Duration `koanf:"requestTimeout" json:"requestTimeout" default:"10s"`
}

// Load builds the configuration from struct defaults, an optional .env file, the YAML file
// at path (when it exists) and SPECTRA_ environment variables, in increasing precedence
func Load(path *string) (*Config, error) {
	cfg := &Config{}
	defaults.SetDefaults(cfg)

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	k := koanf.New(".")

	if path != nil && *path != "" {
		if _, err := os.Stat(*path); err == nil {
			if err := k.Load(file.Provider(*path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey(k.Keys())), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigLoad, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigUnmarshal, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enum fields
func (c *Config) Validate() error {
	c.Reputation.Backend = strings.ToLower(c.Reputation.Backend)
	c.History.Backend = strings.ToLower(c.History.Backend)

	if c.Reputation.Backend != BackendMemory && c.Reputation.Backend != BackendRedis {
		return fmt.Errorf("%w: reputation.backend %q", ErrInvalidBackend, c.Reputation.Backend)
	}

	if c.History.Backend != BackendMemory && c.History.Backend != BackendPostgres {
		return fmt.Errorf("%w: history.backend %q", ErrInvalidBackend, c.History.Backend)
	}

	return nil
}

// envKey maps SPECTRA_SCANNER_SCANTIMEOUT to scanner.scantimeout. A key already loaded from
// the file is reused with its original casing so the override replaces it; struct tags are
// matched case-insensitively on unmarshal
func envKey(loaded []string) func(string) string {
	return func(s string) string {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")

		for _, l := range loaded {
			if strings.EqualFold(l, key) {
				return l
			}
		}

		return key
	}
}
