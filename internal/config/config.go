// Package config loads fraudform settings from defaults, an optional YAML
// file, a .env file, FRAUDFORM_* environment variables, and bound flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	theme "github.com/goliatone/go-theme"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FRAUDFORM_BASE_URL or FRAUDFORM_LOGGING_LEVEL.
const EnvPrefix = "FRAUDFORM"

// Defaults.
const (
	DefaultPreferredModel = "random_forest_tuned_pipeline"
	DefaultTimeout        = 10 * time.Second
	DefaultAddr           = ":8080"
	DefaultLocale         = "it"
)

// Config is the resolved application configuration.
type Config struct {
	BaseURL        string        `mapstructure:"base_url" validate:"omitempty,url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	PreferredModel string        `mapstructure:"preferred_model"`
	Locale         string        `mapstructure:"locale" validate:"omitempty,oneof=it en"`
	Server         Server        `mapstructure:"server"`
	Logging        Logging       `mapstructure:"logging"`
	Theme          Theme         `mapstructure:"theme"`
}

// Server configures the web front end.
type Server struct {
	Addr    string `mapstructure:"addr" validate:"required"`
	Metrics bool   `mapstructure:"metrics"`
}

// Logging configures the zap logger.
type Logging struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Theme carries the presentation overrides handed to HTML renderers.
type Theme struct {
	Name     string            `mapstructure:"name"`
	Variant  string            `mapstructure:"variant"`
	CSSVars  map[string]string `mapstructure:"css_vars"`
	Partials map[string]string `mapstructure:"partials"`
}

// RendererConfig converts the theme section into the renderer shape. It
// returns nil when nothing is configured.
func (t Theme) RendererConfig() *theme.RendererConfig {
	if t.Name == "" && t.Variant == "" && len(t.CSSVars) == 0 && len(t.Partials) == 0 {
		return nil
	}
	return &theme.RendererConfig{
		Theme:    t.Name,
		Variant:  t.Variant,
		CSSVars:  t.CSSVars,
		Partials: t.Partials,
	}
}

// New returns a viper instance with defaults, env binding, and the config
// file location applied. file may be empty to search ./fraudform.yaml and
// $HOME/.config/fraudform/fraudform.yaml.
func New(file string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("fraudform")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/fraudform")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults registers every key so environment variables resolve even
// without a config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "")
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("preferred_model", DefaultPreferredModel)
	v.SetDefault("locale", DefaultLocale)
	v.SetDefault("server.addr", DefaultAddr)
	v.SetDefault("server.metrics", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("theme.name", "")
	v.SetDefault("theme.variant", "")
}

// LoadDotEnv loads the given .env files (default ".env") into the process
// environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return nil
}

// Load reads the config file when present, decodes every source into a
// Config, and validates it.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))

	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks the struct tags of cfg.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("config: invalid: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("config: invalid: %w", err)
	}
	return nil
}
