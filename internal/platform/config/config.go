package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr       string
	PathPrefix string
	LogLevel   string
	LogFormat  string
	Database   Database
	Notify     Notify
}

// Database configures the PostgreSQL pool. An empty URL selects the in-memory stores.
type Database struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// Enabled reports whether a database is configured.
func (d Database) Enabled() bool {
	return d.URL != ""
}

// Notify configures the GOV.UK Notify client. Without an API key emails are
// logged instead of sent.
type Notify struct {
	APIKey     string
	BaseURL    string
	TemplateID string
	ReplyToID  string
	Timeout    time.Duration
	MaxRetries int
}

// Enabled reports whether emails are delivered.
func (n Notify) Enabled() bool {
	return n.APIKey != ""
}

const (
	DefaultAddr       = ":3003"
	DefaultPathPrefix = "/standard-forestry-operations-api"
	DefaultBaseURL    = "https://api.notifications.service.gov.uk"
	DefaultTemplateID = "843889da-5a85-470c-a9e5-38f68cdb9ae1"
	DefaultReplyToID  = "4b49467e-2a35-4713-9d92-809c55bf1cdd"
)

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numbers and durations fall back to their defaults.
func FromEnv() Server {
	return Server{
		Addr:       stringEnv("SFO_ADDR", DefaultAddr),
		PathPrefix: normalizePrefix(stringEnv("SFO_PATH_PREFIX", DefaultPathPrefix)),
		LogLevel:   stringEnv("LOG_LEVEL", "info"),
		LogFormat:  stringEnv("LOG_FORMAT", "json"),
		Database: Database{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    intEnv("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    intEnv("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationEnv("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
			Migrate:         boolEnv("DATABASE_MIGRATE", false),
		},
		Notify: Notify{
			APIKey:     os.Getenv("NOTIFY_API_KEY"),
			BaseURL:    stringEnv("NOTIFY_BASE_URL", DefaultBaseURL),
			TemplateID: stringEnv("NOTIFY_TEMPLATE_ID", DefaultTemplateID),
			ReplyToID:  stringEnv("NOTIFY_REPLY_TO_ID", DefaultReplyToID),
			Timeout:    durationEnv("NOTIFY_TIMEOUT", 10*time.Second),
			MaxRetries: intEnv("NOTIFY_MAX_RETRIES", 2),
		},
	}
}

func stringEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v < 0 {
		return def
	}
	return v
}

func boolEnv(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// normalizePrefix keeps a leading slash and drops a trailing one. "/" becomes "".
func normalizePrefix(p string) string {
	p = strings.TrimRight(p, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
