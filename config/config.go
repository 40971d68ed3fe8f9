package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Fetch     FetchConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Demo      DemoConfig
	Notify    NotifyConfig
	Cache     CacheConfig
	Log       LogConfig
	Sites     []SiteProfile
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls outbound page fetches.
type FetchConfig struct {
	// Timeout bounds a single fetch attempt.
	Timeout time.Duration // default: 20s

	// MaxBodyBytes caps how much of a response body is read.
	MaxBodyBytes int64 // default: 10 MiB

	// UserAgent is sent on generic GET fetches.
	UserAgent string
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys maps an API key to the user id it authenticates as.
	// Parsed from "key:user,key2:user2"; a bare key authenticates as itself.
	APIKeys map[string]string
}

// RateLimitConfig controls per-key rate limiting of the API.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// StoreConfig controls tracker persistence.
type StoreConfig struct {
	// Path is the SQLite database file. ":memory:" keeps everything in RAM.
	Path string // default: "statuswatch.db"
}

// DemoConfig controls the simulation gate in front of real extraction.
type DemoConfig struct {
	Enabled bool // default: true
}

// NotifyConfig controls the change notification channels.
type NotifyConfig struct {
	// WhatsAppEnabled is the transport capability flag. It is read once at
	// startup and never changes afterwards.
	WhatsAppEnabled bool // default: true

	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string

	WebhookURL    string
	WebhookSecret string

	NATSURL     string
	NATSSubject string // default: "statuswatch.status.changed"
}

// CacheConfig controls the page preview cache.
type CacheConfig struct {
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
// Site profiles from WATCH_SITES_FILE are tried before the built-in ones;
// a broken sites file is reported as an error.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: envOr("WATCH_HOST", "0.0.0.0"),
			Port: envIntOr("WATCH_PORT", 8080),
			Mode: envOr("WATCH_MODE", "release"),
		},
		Fetch: FetchConfig{
			Timeout:      envDurationOr("WATCH_FETCH_TIMEOUT", 20*time.Second),
			MaxBodyBytes: int64(envIntOr("WATCH_MAX_BODY_BYTES", 10<<20)),
			UserAgent:    envOr("WATCH_USER_AGENT", DefaultUserAgent),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("WATCH_AUTH_ENABLED", true),
			APIKeys: parseAPIKeys(envSliceOr("WATCH_API_KEYS", nil)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("WATCH_RATE_RPS", 5.0),
			Burst:             envIntOr("WATCH_RATE_BURST", 10),
		},
		Store: StoreConfig{
			Path: envOr("WATCH_DB_PATH", "statuswatch.db"),
		},
		Demo: DemoConfig{
			Enabled: envBoolOr("WATCH_DEMO_MODE", true),
		},
		Notify: NotifyConfig{
			WhatsAppEnabled:      envBoolOr("WATCH_WHATSAPP_ENABLED", true),
			TwilioAccountSID:     os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:      os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioWhatsAppNumber: os.Getenv("TWILIO_WHATSAPP_NUMBER"),
			WebhookURL:           os.Getenv("WATCH_WEBHOOK_URL"),
			WebhookSecret:        os.Getenv("WATCH_WEBHOOK_SECRET"),
			NATSURL:              os.Getenv("WATCH_NATS_URL"),
			NATSSubject:          envOr("WATCH_NATS_SUBJECT", "statuswatch.status.changed"),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("WATCH_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("WATCH_LOG_LEVEL", "info"),
			Format: envOr("WATCH_LOG_FORMAT", "json"),
		},
	}

	sites := []SiteProfile{DefaultGNDUProfile()}
	if path := os.Getenv("WATCH_SITES_FILE"); path != "" {
		extra, err := LoadSites(path)
		if err != nil {
			return nil, err
		}
		sites = append(extra, sites...)
	}
	cfg.Sites = sites

	return cfg, nil
}

// DefaultUserAgent is a desktop Chrome user agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

func parseAPIKeys(entries []string) map[string]string {
	keys := make(map[string]string, len(entries))
	for _, e := range entries {
		key, user, found := strings.Cut(e, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if !found || strings.TrimSpace(user) == "" {
			user = key
		}
		keys[key] = strings.TrimSpace(user)
	}
	return keys
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
