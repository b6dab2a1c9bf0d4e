package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const envPrefix = "TENDERGATE"

// Load reads configuration from the given file path (optional) merged with
// environment variables, applies defaults and validates the result.
//
// Environment variables take precedence over file values and use the prefix
// TENDERGATE_ with underscores for nesting, e.g. TENDERGATE_DATABASE_HOST.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch behaves like Load but additionally re-reads the file whenever it
// changes on disk, invoking onChange with the freshly validated config.
// Invalid updates are dropped and reported via onError; the previously
// loaded configuration stays in effect.
func Watch(path string, onChange func(*Config), onError func(error)) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: watch requires a file path")
	}
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		updated, uerr := unmarshal(v)
		if uerr != nil {
			if onError != nil {
				onError(uerr)
			}
			return
		}
		if onChange != nil {
			onChange(updated)
		}
	})
	v.WatchConfig()

	return cfg, nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
