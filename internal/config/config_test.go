package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/spf13/pflag"

	"github.com/sangnt1552314/ytscout/internal/config"
)

func newFlags(t *testing.T, cfg *config.Config, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)
	gt.NoError(t, fs.Parse(args))
	return fs
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Run("environment fills unset flags", func(t *testing.T) {
		var cfg config.Config
		fs := newFlags(t, &cfg)

		err := cfg.ApplyEnv(fs, lookupFrom(map[string]string{
			config.EnvAPIKey:   " key-from-env ",
			config.EnvWorkers:  "4",
			config.EnvLogLevel: "debug",
			config.EnvAddr:     ":9090",
		}))
		gt.NoError(t, err)
		gt.Equal(t, cfg.APIKey, "key-from-env")
		gt.Equal(t, cfg.Workers, 4)
		gt.Equal(t, cfg.LogLevel, "debug")
		gt.Equal(t, cfg.Addr, ":9090")
	})

	t.Run("explicit flags win", func(t *testing.T) {
		var cfg config.Config
		fs := newFlags(t, &cfg, "--api-key", "flag-key", "--workers", "2")

		err := cfg.ApplyEnv(fs, lookupFrom(map[string]string{
			config.EnvAPIKey:  "env-key",
			config.EnvWorkers: "8",
		}))
		gt.NoError(t, err)
		gt.Equal(t, cfg.APIKey, "flag-key")
		gt.Equal(t, cfg.Workers, 2)
	})

	t.Run("bad workers value", func(t *testing.T) {
		var cfg config.Config
		fs := newFlags(t, &cfg)

		err := cfg.ApplyEnv(fs, lookupFrom(map[string]string{config.EnvWorkers: "lots"}))
		gt.True(t, errors.Is(err, config.ErrInvalidConfig))
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		var cfg config.Config
		fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
		cfg.BindFlags(fs)
		cfg.APIKey = "key"
		return cfg
	}

	tests := []struct {
		name   string
		modify func(*config.Config)
		want   error
	}{
		{"defaults with key", func(c *config.Config) {}, nil},
		{"missing key", func(c *config.Config) { c.APIKey = "" }, config.ErrMissingAPIKey},
		{"zero limit", func(c *config.Config) { c.Limit = 0 }, config.ErrInvalidConfig},
		{"zero workers", func(c *config.Config) { c.Workers = 0 }, config.ErrInvalidConfig},
		{"unknown uploads source", func(c *config.Config) { c.UploadsSource = "ftp" }, config.ErrInvalidConfig},
		{"web uploads source", func(c *config.Config) { c.UploadsSource = config.UploadsSourceWeb }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				gt.NoError(t, err)
				return
			}
			gt.True(t, errors.Is(err, tt.want))
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		loaded, err := config.LoadEnvFile(filepath.Join(t.TempDir(), "absent.env"))
		gt.NoError(t, err)
		gt.False(t, loaded)
	})

	t.Run("loads variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		gt.NoError(t, os.WriteFile(path, []byte("YTSCOUT_TEST_VALUE=from-dotenv\n"), 0600))
		t.Cleanup(func() { os.Unsetenv("YTSCOUT_TEST_VALUE") })

		loaded, err := config.LoadEnvFile(path)
		gt.NoError(t, err)
		gt.True(t, loaded)
		gt.Equal(t, os.Getenv("YTSCOUT_TEST_VALUE"), "from-dotenv")
	})
}
