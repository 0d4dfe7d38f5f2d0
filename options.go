package discuss

import (
	"io"
	"log/slog"
	"time"

	"github.com/helixml/discuss/internal/config"
)

// clientConfig holds configuration for Client construction.
// Use newClientConfig() to create with defaults from internal/config.
type clientConfig struct {
	dbURL           string
	logger          *slog.Logger
	hostTimeout     time.Duration
	signs           config.SignConfig
	displayFunction string
	closers         []io.Closer
}

// newClientConfig creates a clientConfig with defaults from internal/config.
func newClientConfig() *clientConfig {
	defaults := config.NewAppConfig()
	return &clientConfig{
		dbURL:           defaults.DBURL(),
		hostTimeout:     defaults.HostTimeout(),
		signs:           defaults.Signs(),
		displayFunction: defaults.DisplayFunction(),
	}
}

// Option configures the Client.
type Option func(*clientConfig)

// WithConfig applies the store, editor and sign settings of an AppConfig.
// Logging is configured separately with WithLogger.
func WithConfig(cfg config.AppConfig) Option {
	return func(c *clientConfig) {
		c.dbURL = cfg.DBURL()
		c.hostTimeout = cfg.HostTimeout()
		c.signs = cfg.Signs()
		c.displayFunction = cfg.DisplayFunction()
	}
}

// WithSQLite stores comments in the SQLite file at path.
func WithSQLite(path string) Option {
	return func(c *clientConfig) {
		c.dbURL = "sqlite:///" + path
	}
}

// WithPostgres stores comments in the PostgreSQL database at dsn.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.dbURL = dsn
	}
}

// WithDBURL sets the store URL directly (sqlite:/// or postgres://).
func WithDBURL(url string) Option {
	return func(c *clientConfig) {
		c.dbURL = url
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

// WithHostTimeout bounds every call into the editor. Zero disables.
func WithHostTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		if d < 0 {
			d = 0
		}
		c.hostTimeout = d
	}
}

// WithSigns sets the sign names and, when Define is set, how they are
// defined when serving starts.
func WithSigns(s config.SignConfig) Option {
	return func(c *clientConfig) {
		c.signs = s
	}
}

// WithDisplayFunction sets the Vim function that receives comment text.
func WithDisplayFunction(name string) Option {
	return func(c *clientConfig) {
		c.displayFunction = name
	}
}

// WithCloser registers a resource to be closed when the Client shuts down.
func WithCloser(c io.Closer) Option {
	return func(cfg *clientConfig) {
		cfg.closers = append(cfg.closers, c)
	}
}
