// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Default configuration values.
const (
	DefaultDBURL           = "sqlite:///.comment_code.db"
	DefaultLogLevel        = "INFO"
	DefaultLogFileName     = "discuss.log"
	DefaultSignPrimary     = "annotation"
	DefaultSignContinued   = "annotationContinued"
	DefaultSignText        = ">>"
	DefaultSignContinuedTx = "|"
	DefaultSignHighlight   = "Comment"
	DefaultDisplayFunction = "discuss_code#Display_comment"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// SignConfig names the two signs used as markers and how to define them.
type SignConfig struct {
	primary       string
	continued     string
	primaryText   string
	continuedText string
	highlight     string
	define        bool
}

// NewSignConfig returns the sign configuration the editor plugin expects.
func NewSignConfig() SignConfig {
	return SignConfig{
		primary:       DefaultSignPrimary,
		continued:     DefaultSignContinued,
		primaryText:   DefaultSignText,
		continuedText: DefaultSignContinuedTx,
		highlight:     DefaultSignHighlight,
	}
}

// Primary returns the sign placed on the first line of a range.
func (s SignConfig) Primary() string { return s.primary }

// Continued returns the sign placed on the remaining lines.
func (s SignConfig) Continued() string { return s.continued }

// PrimaryText returns the primary sign text used when defining signs.
func (s SignConfig) PrimaryText() string { return s.primaryText }

// ContinuedText returns the continuation sign text used when defining signs.
func (s SignConfig) ContinuedText() string { return s.continuedText }

// Highlight returns the texthl group used when defining signs.
func (s SignConfig) Highlight() string { return s.highlight }

// Define reports whether signs are defined at startup.
func (s SignConfig) Define() bool { return s.define }

// WithNames returns a copy with the given sign names.
func (s SignConfig) WithNames(primary, continued string) SignConfig {
	s.primary = primary
	s.continued = continued
	return s
}

// WithTexts returns a copy with the given sign texts.
func (s SignConfig) WithTexts(primary, continued string) SignConfig {
	s.primaryText = primary
	s.continuedText = continued
	return s
}

// WithHighlight returns a copy with the given texthl group.
func (s SignConfig) WithHighlight(hl string) SignConfig {
	s.highlight = hl
	return s
}

// WithDefine returns a copy that defines signs at startup when define is true.
func (s SignConfig) WithDefine(define bool) SignConfig {
	s.define = define
	return s
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	dataDir         string
	dbURL           string
	logLevel        string
	logFormat       LogFormat
	logFile         string
	hostTimeout     time.Duration
	signs           SignConfig
	displayFunction string
}

// DefaultDataDir returns the default data directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".discuss"
	}
	return filepath.Join(home, ".discuss")
}

// PrepareDataDir creates the data directory if it does not exist and returns it.
func PrepareDataDir(dataDir string) (string, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", fmt.Errorf("create data directory: %w", err)
	}
	return dataDir, nil
}

// NewAppConfig creates a new AppConfig with defaults. The store lives in
// the working directory, next to the files being commented.
func NewAppConfig() AppConfig {
	return AppConfig{
		dataDir:         DefaultDataDir(),
		dbURL:           DefaultDBURL,
		logLevel:        DefaultLogLevel,
		logFormat:       LogFormatPretty,
		signs:           NewSignConfig(),
		displayFunction: DefaultDisplayFunction,
	}
}

// DataDir returns the data directory.
func (c AppConfig) DataDir() string { return c.dataDir }

// DBURL returns the store URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LogFile returns the log file path, defaulting to a file in the data directory.
func (c AppConfig) LogFile() string {
	if c.logFile != "" {
		return c.logFile
	}
	return filepath.Join(c.dataDir, DefaultLogFileName)
}

// HostTimeout returns the bound on each host call. Zero means unbounded.
func (c AppConfig) HostTimeout() time.Duration { return c.hostTimeout }

// Signs returns the sign configuration.
func (c AppConfig) Signs() SignConfig { return c.signs }

// DisplayFunction returns the Vim function that shows comment text.
func (c AppConfig) DisplayFunction() string { return c.displayFunction }

// EnsureDataDir creates the data directory if it doesn't exist.
func (c AppConfig) EnsureDataDir() error {
	_, err := PrepareDataDir(c.dataDir)
	return err
}

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithDataDir sets the data directory.
func WithDataDir(dir string) AppConfigOption {
	return func(c *AppConfig) {
		c.dataDir = dir
	}
}

// WithDBURL sets the store URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format LogFormat) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithLogFile sets the log file path.
func WithLogFile(path string) AppConfigOption {
	return func(c *AppConfig) { c.logFile = path }
}

// WithHostTimeout bounds each host call. Negative values are treated as zero.
func WithHostTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d < 0 {
			d = 0
		}
		c.hostTimeout = d
	}
}

// WithSignConfig sets the sign configuration.
func WithSignConfig(s SignConfig) AppConfigOption {
	return func(c *AppConfig) { c.signs = s }
}

// WithDisplayFunction sets the Vim function that shows comment text.
func WithDisplayFunction(name string) AppConfigOption {
	return func(c *AppConfig) { c.displayFunction = name }
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Credentials in the store URL are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("data_dir", c.dataDir),
		slog.String("db_url", c.maskedDBURL()),
		slog.String("log_level", c.logLevel),
		slog.String("log_file", c.LogFile()),
		slog.Duration("host_timeout", c.hostTimeout),
		slog.String("sign_primary", c.signs.Primary()),
		slog.String("sign_continued", c.signs.Continued()),
		slog.Bool("define_signs", c.signs.Define()),
		slog.String("display_function", c.displayFunction),
	}
}

func (c AppConfig) maskedDBURL() string {
	if c.dbURL == "" {
		return "(default)"
	}
	if strings.HasPrefix(c.dbURL, "sqlite:") {
		return c.dbURL
	}
	return "postgres://***@***"
}
