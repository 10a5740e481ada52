package configs

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout"`
		IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	DB struct {
		Driver       string        `mapstructure:"driver"`
		DSN          string        `mapstructure:"dsn"`
		MaxOpenConns int           `mapstructure:"max_open_conns"`
		LockTimeout  time.Duration `mapstructure:"lock_timeout"`
	} `mapstructure:"db"`
	JWT struct {
		Secret string        `mapstructure:"secret"`
		TTL    time.Duration `mapstructure:"ttl"`
	} `mapstructure:"jwt"`
	Ledger struct {
		MaxAttempts    int           `mapstructure:"max_attempts"`
		InitialBackoff time.Duration `mapstructure:"initial_backoff"`
		MaxBackoff     time.Duration `mapstructure:"max_backoff"`
		WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	} `mapstructure:"ledger"`
	Gateway struct {
		Latency time.Duration `mapstructure:"latency"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"gateway"`
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", DriverMemory)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.lock_timeout", 2*time.Second)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl", time.Hour)

	v.SetDefault("ledger.max_attempts", 5)
	v.SetDefault("ledger.initial_backoff", 20*time.Millisecond)
	v.SetDefault("ledger.max_backoff", 500*time.Millisecond)
	v.SetDefault("ledger.write_timeout", 5*time.Second)

	v.SetDefault("gateway.latency", time.Duration(0))
	v.SetDefault("gateway.timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads config.yaml from the given directories (./configs when none are
// given), then applies FINACLE_* environment overrides. A .env file in the
// working directory is loaded first when present. A missing config file is
// not an error.
func Load(paths ...string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if len(paths) == 0 {
		paths = []string{"./configs"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("FINACLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var fileLookupError viper.ConfigFileNotFoundError
	if err := v.ReadInConfig(); err != nil && !errors.As(err, &fileLookupError) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings needed to serve requests.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("db.driver %q is not one of %s, %s", c.DB.Driver, DriverMemory, DriverPostgres)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if c.Ledger.MaxAttempts < 1 {
		return errors.New("ledger.max_attempts must be at least 1")
	}
	return nil
}
