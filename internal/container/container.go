package container

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
	StorageMemory   = "memory"

	EventsChannel = "channel"
	EventsRedis   = "redis"
)

var ErrInvalidOptions = errors.New("invalid options")

type Options struct {
	Port            int    `default:"8888"             help:"Port to listen on"                                      short:"p"`
	BaseURL         string `default:""                 help:"Base URL for short links (default http://localhost:<port>)"`
	CodeLength      int    `default:"6"                help:"Length of generated short codes"                        short:"c"`
	MaxAttempts     int    `default:"10"               help:"Code generation attempts before giving up"`
	Storage         string `default:"sqlite"           help:"Storage backend: sqlite, postgres, redis or memory"     short:"s"`
	SQLitePath      string `default:"database/urls.db" help:"SQLite database file"`
	DatabaseURL     string `default:""                 help:"PostgreSQL connection string"`
	RedisAddr       string `default:""                 help:"Redis server address; enables the read cache"         short:"r"`
	CacheTTLSeconds int    `default:"3600"             help:"Read cache TTL in seconds"`
	EventsBackend   string `default:"channel"          help:"Event transport: channel (in-process) or redis"`
	LogFormat       string `default:"console"          help:"Log format: console or json"`
	LogLevel        string `default:"info"             help:"Log level: debug, info, warn or error"`
}

// Validate reports every invalid option at once.
func (o *Options) Validate() error {
	var problems []string

	if o.Port < 1 || o.Port > 65535 {
		problems = append(problems, fmt.Sprintf("port %d out of range", o.Port))
	}

	if o.CodeLength < 1 {
		problems = append(problems, "code length must be positive")
	}

	if o.MaxAttempts < 1 {
		problems = append(problems, "max attempts must be positive")
	}

	if !slices.Contains([]string{StorageSQLite, StoragePostgres, StorageRedis, StorageMemory}, o.Storage) {
		problems = append(problems, fmt.Sprintf("unknown storage %q", o.Storage))
	}

	if o.Storage == StorageSQLite && o.SQLitePath == "" {
		problems = append(problems, "sqlite storage requires a database path")
	}

	if o.Storage == StoragePostgres && o.DatabaseURL == "" {
		problems = append(problems, "postgres storage requires a database url")
	}

	if o.Storage == StorageRedis && o.RedisAddr == "" {
		problems = append(problems, "redis storage requires a redis address")
	}

	switch o.EventsBackend {
	case EventsChannel:
	case EventsRedis:
		if o.RedisAddr == "" {
			problems = append(problems, "redis events require a redis address")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown events backend %q", o.EventsBackend))
	}

	if o.LogFormat != "console" && o.LogFormat != "json" {
		problems = append(problems, fmt.Sprintf("unknown log format %q", o.LogFormat))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidOptions, strings.Join(problems, "; "))
	}

	return nil
}

// ShortLinkBase returns the prefix for short links without a trailing slash.
func (o *Options) ShortLinkBase() string {
	if o.BaseURL == "" {
		return fmt.Sprintf("http://localhost:%d", o.Port)
	}

	return strings.TrimRight(o.BaseURL, "/")
}

// CacheTTL returns the read cache TTL; zero disables the cache.
func (o *Options) CacheTTL() time.Duration {
	return time.Duration(o.CacheTTLSeconds) * time.Second
}
