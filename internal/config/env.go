package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DISCUSS"

// EnvConfig holds all environment-based configuration.
// Field names map to environment variables with the DISCUSS_ prefix removed.
type EnvConfig struct {
	// DataDir is the directory holding the log file.
	// Env: DATA_DIR
	// Default: ~/.discuss
	DataDir string `envconfig:"DATA_DIR"`

	// DBURL is the store URL.
	// Env: DB_URL (default: sqlite:///.comment_code.db)
	DBURL string `envconfig:"DB_URL"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// LogFile is where the serve command writes logs; stdout carries RPC.
	// Env: LOG_FILE
	// Default: {data_dir}/discuss.log
	LogFile string `envconfig:"LOG_FILE"`

	// HostTimeout bounds each call into the editor, in seconds. 0 disables.
	// Env: HOST_TIMEOUT (default: 0)
	HostTimeout float64 `envconfig:"HOST_TIMEOUT" default:"0"`

	// Sign configures the marker signs.
	Sign SignEnv `envconfig:"SIGN"`

	// DefineSigns defines both signs at startup.
	// Env: DEFINE_SIGNS (default: false)
	DefineSigns bool `envconfig:"DEFINE_SIGNS" default:"false"`

	// DisplayFunction receives the text of a shown comment.
	// Env: DISPLAY_FUNCTION (default: discuss_code#Display_comment)
	DisplayFunction string `envconfig:"DISPLAY_FUNCTION" default:"discuss_code#Display_comment"`
}

// SignEnv holds environment configuration for the marker signs.
type SignEnv struct {
	// Primary is the sign on the first line of a range.
	// Env: SIGN_PRIMARY (default: annotation)
	Primary string `envconfig:"PRIMARY" default:"annotation"`

	// Continued is the sign on the other lines of a range.
	// Env: SIGN_CONTINUED (default: annotationContinued)
	Continued string `envconfig:"CONTINUED" default:"annotationContinued"`

	// Text is the primary sign text when defining signs.
	// Env: SIGN_TEXT (default: >>)
	Text string `envconfig:"TEXT" default:">>"`

	// ContinuedText is the continuation sign text when defining signs.
	// Env: SIGN_CONTINUED_TEXT (default: |)
	ContinuedText string `envconfig:"CONTINUED_TEXT" default:"|"`

	// Highlight is the texthl group when defining signs.
	// Env: SIGN_HIGHLIGHT (default: Comment)
	Highlight string `envconfig:"HIGHLIGHT" default:"Comment"`
}

// LoadFromEnv loads configuration from DISCUSS_ environment variables.
func LoadFromEnv() (EnvConfig, error) {
	return LoadFromEnvWithPrefix(EnvPrefix)
}

// LoadFromEnvWithPrefix loads configuration with a custom prefix.
func LoadFromEnvWithPrefix(prefix string) (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Normalize trims whitespace and fills blank sign fields with defaults.
func (e EnvConfig) Normalize() EnvConfig {
	e.DataDir = strings.TrimSpace(e.DataDir)
	e.DBURL = strings.TrimSpace(e.DBURL)
	e.LogFile = strings.TrimSpace(e.LogFile)
	e.DisplayFunction = strings.TrimSpace(e.DisplayFunction)
	e.Sign.Primary = orDefault(e.Sign.Primary, DefaultSignPrimary)
	e.Sign.Continued = orDefault(e.Sign.Continued, DefaultSignContinued)
	e.Sign.Highlight = orDefault(e.Sign.Highlight, DefaultSignHighlight)
	return e
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.DataDir != "" {
		cfg = applyOption(cfg, WithDataDir(e.DataDir))
	}
	if e.DBURL != "" {
		cfg = applyOption(cfg, WithDBURL(e.DBURL))
	}
	if e.LogLevel != "" {
		cfg = applyOption(cfg, WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = applyOption(cfg, WithLogFormat(parseLogFormat(e.LogFormat)))
	}
	if e.LogFile != "" {
		cfg = applyOption(cfg, WithLogFile(e.LogFile))
	}
	if e.DisplayFunction != "" {
		cfg = applyOption(cfg, WithDisplayFunction(e.DisplayFunction))
	}
	cfg = applyOption(cfg, WithHostTimeout(time.Duration(e.HostTimeout*float64(time.Second))))
	cfg = applyOption(cfg, WithSignConfig(e.Sign.ToSignConfig().WithDefine(e.DefineSigns)))

	return cfg
}

// ToSignConfig converts SignEnv to SignConfig.
func (s SignEnv) ToSignConfig() SignConfig {
	return NewSignConfig().
		WithNames(s.Primary, s.Continued).
		WithTexts(s.Text, s.ContinuedText).
		WithHighlight(s.Highlight)
}

// applyOption applies an option to the config.
func applyOption(cfg AppConfig, opt AppConfigOption) AppConfig {
	opt(&cfg)
	return cfg
}

// parseLogFormat parses a log format string.
func parseLogFormat(s string) LogFormat {
	switch strings.ToLower(s) {
	case "json":
		return LogFormatJSON
	default:
		return LogFormatPretty
	}
}
