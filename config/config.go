// Package config loads askiq settings from flags, the environment, an
// optional .env file and an optional YAML config file.
package config

import (
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/dhamidi/askiq/history"
	"github.com/dhamidi/askiq/remote"
	"github.com/dhamidi/askiq/undo"
)

const EnvPrefix = "askiq"

// Keys understood by Load.
const (
	KeyAPIKey       = "api-key"
	KeyModel        = "model"
	KeyEndpoint     = "endpoint"
	KeyStoreBackend = "store.backend"
	KeyStorePath    = "store.path"
	KeyStoreSlot    = "store.slot"
	KeyUndoWindow   = "undo-window"
	KeyLogLevel     = "log-level"
	KeyRender       = "render"
	KeyRetries      = "retries"
)

const (
	RenderGlamour = "glamour"
	RenderRaw     = "raw"
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	APIKey     string
	Model      string
	Endpoint   string
	Store      Store
	UndoWindow time.Duration
	LogLevel   string
	Render     string
	Retries    int
}

type Store struct {
	Backend string
	Path    string
	Slot    string
}

// New returns a viper instance with the askiq defaults and environment
// bindings installed. ASKIQ_STORE_BACKEND sets store.backend, and the API key
// is also read from GEMINI_API_KEY.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyModel, remote.DefaultModel)
	v.SetDefault(KeyStoreBackend, history.BackendSQLite)
	v.SetDefault(KeyStorePath, history.DefaultDatabasePath)
	v.SetDefault(KeyStoreSlot, history.DefaultSlotName)
	v.SetDefault(KeyUndoWindow, undo.DefaultWindow)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyRender, RenderGlamour)
	v.SetDefault(KeyRetries, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	// BindEnv only fails when called without a key.
	_ = v.BindEnv(KeyAPIKey, "ASKIQ_API_KEY", "GEMINI_API_KEY")
	return v
}

// LoadDotEnv loads environment variables from the given files, .env when none
// are given. Missing files are skipped; variables already set win.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		err := godotenv.Load(name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "loading %s", name)
		}
		log.Debug().Str("file", name).Msg("loaded environment file")
	}
	return nil
}

// Load reads the config file into v and returns the resulting settings. An
// explicit configPath must exist; otherwise $HOME/.askiq/config.yaml is read
// when present.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.askiq")
	}

	err := v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// no config file, defaults and environment only
	} else if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	} else {
		log.Debug().Str("config", v.ConfigFileUsed()).Msg("loaded configuration")
	}

	cfg := &Config{
		APIKey:   v.GetString(KeyAPIKey),
		Model:    v.GetString(KeyModel),
		Endpoint: v.GetString(KeyEndpoint),
		Store: Store{
			Backend: v.GetString(KeyStoreBackend),
			Path:    v.GetString(KeyStorePath),
			Slot:    v.GetString(KeyStoreSlot),
		},
		UndoWindow: v.GetDuration(KeyUndoWindow),
		LogLevel:   v.GetString(KeyLogLevel),
		Render:     v.GetString(KeyRender),
		Retries:    v.GetInt(KeyRetries),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Render {
	case RenderGlamour, RenderRaw:
	default:
		return errors.Wrapf(ErrInvalid, "render %q, want %s or %s", c.Render, RenderGlamour, RenderRaw)
	}
	if c.UndoWindow <= 0 {
		return errors.Wrapf(ErrInvalid, "undo-window %s must be positive", c.UndoWindow)
	}
	if c.Retries < 0 {
		return errors.Wrapf(ErrInvalid, "retries %d must not be negative", c.Retries)
	}
	if c.Store.Slot == "" {
		return errors.Wrap(ErrInvalid, "store.slot must not be empty")
	}
	return nil
}

// RetryDelays returns one backoff delay per configured retry, doubling from
// one second.
func (c *Config) RetryDelays() []time.Duration {
	delays := make([]time.Duration, c.Retries)
	d := time.Second
	for i := range delays {
		delays[i] = d
		d *= 2
	}
	return delays
}
