package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/pflag"
)

const (
	EnvAPIKey   = "YOUTUBE_API_KEY"
	EnvLogLevel = "YTSCOUT_LOG_LEVEL"
	EnvWorkers  = "YTSCOUT_WORKERS"
	EnvAddr     = "YTSCOUT_ADDR"

	UploadsSourceAPI = "api"
	UploadsSourceWeb = "web"
)

// ErrMissingAPIKey is returned by Validate when no credential was supplied.
// Its message is shown to the user as-is.
var ErrMissingAPIKey = goerr.New("YOUTUBE_API_KEY not found! Please set YOUTUBE_API_KEY in a .env file.")

var ErrInvalidConfig = goerr.New("invalid configuration")

type Config struct {
	APIKey        string
	EnvFile       string
	LogFile       string
	LogLevel      string
	Limit         int
	Workers       int
	UploadsSource string
	ExportDir     string
	Addr          string
}

// BindFlags registers the persistent flags shared by every subcommand.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.APIKey, "api-key", "", "YouTube Data API key (env "+EnvAPIKey+")")
	fs.StringVar(&c.EnvFile, "env-file", ".env", "dotenv file to load before reading the environment")
	fs.StringVar(&c.LogFile, "log-file", "storage/logs/ytscout.log", "log file path, - for stderr")
	fs.StringVar(&c.LogLevel, "log-level", "info", "log level: debug, info, warn, error (env "+EnvLogLevel+")")
	fs.IntVar(&c.Limit, "limit", 50, "maximum number of channels per search")
	fs.IntVar(&c.Workers, "workers", 1, "concurrent channel lookups per search (env "+EnvWorkers+")")
	fs.StringVar(&c.UploadsSource, "uploads-source", UploadsSourceAPI, "where latest uploads are read from: api or web")
	fs.StringVar(&c.ExportDir, "export-dir", ".", "directory the CSV export is written to")
	fs.StringVar(&c.Addr, "addr", "localhost:8080", "listen address of the web UI (env "+EnvAddr+")")
}

// LoadEnvFile loads a dotenv file if it exists. Variables already present in
// the environment win. A missing file is not an error.
func LoadEnvFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return true, nil
}

// ApplyEnv fills every field whose flag was not set explicitly from the
// environment.
func (c *Config) ApplyEnv(fs *pflag.FlagSet, lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	if v, ok := lookup(EnvAPIKey); ok && !changed("api-key") {
		c.APIKey = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvLogLevel); ok && !changed("log-level") {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvAddr); ok && !changed("addr") {
		c.Addr = v
	}
	if v, ok := lookup(EnvWorkers); ok && !changed("workers") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "workers must be a number", goerr.V(EnvWorkers, v))
		}
		c.Workers = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if c.Limit < 1 {
		return goerr.Wrap(ErrInvalidConfig, "limit must be positive", goerr.V("limit", c.Limit))
	}
	if c.Workers < 1 {
		return goerr.Wrap(ErrInvalidConfig, "workers must be positive", goerr.V("workers", c.Workers))
	}
	switch c.UploadsSource {
	case UploadsSourceAPI, UploadsSourceWeb:
	default:
		return goerr.Wrap(ErrInvalidConfig, "unknown uploads source", goerr.V("uploads_source", c.UploadsSource))
	}
	return nil
}
