package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	TDnet   TDnetConfig   `yaml:"tdnet" mapstructure:"tdnet"`
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Extract ExtractConfig `yaml:"extract" mapstructure:"extract"`
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// TDnetConfig configures access to the disclosure portal.
type TDnetConfig struct {
	BaseURL       string        `yaml:"base_url" mapstructure:"base_url"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxRetries    int           `yaml:"max_retries" mapstructure:"max_retries"`
	RowsPerPage   int           `yaml:"rows_per_page" mapstructure:"rows_per_page"`
	PageCap       int           `yaml:"page_cap" mapstructure:"page_cap"`
	PageDelay     time.Duration `yaml:"page_delay" mapstructure:"page_delay"`
	DownloadDelay time.Duration `yaml:"download_delay" mapstructure:"download_delay"`
}

// OutputConfig configures where downloaded packages land.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExtractConfig configures the extraction pipeline.
type ExtractConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver string     `yaml:"driver" mapstructure:"driver"`
	DSN    string     `yaml:"dsn" mapstructure:"dsn"`
	Pool   PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the read API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("TDNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("tdnet.base_url", "https://www.release.tdnet.info/inbs/")
	v.SetDefault("tdnet.user_agent", "tdnet-downloader/1.0")
	v.SetDefault("tdnet.timeout", "30s")
	v.SetDefault("tdnet.max_retries", 3)
	v.SetDefault("tdnet.rows_per_page", 100)
	v.SetDefault("tdnet.page_cap", 20)
	v.SetDefault("tdnet.page_delay", "500ms")
	v.SetDefault("tdnet.download_delay", "1s")
	v.SetDefault("output.dir", "xbrl_data")
	v.SetDefault("extract.workers", 4)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.dsn", "tdnet.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the configuration for a given command mode.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.TDnet.BaseURL == "" {
		problems = append(problems, "tdnet.base_url is required")
	}
	if c.TDnet.RowsPerPage <= 0 {
		problems = append(problems, "tdnet.rows_per_page must be > 0")
	}
	if c.TDnet.PageCap <= 0 {
		problems = append(problems, "tdnet.page_cap must be > 0")
	}

	switch mode {
	case "crawl":
		// no extra requirements
	case "extract":
		if c.Extract.Workers < 1 || c.Extract.Workers > 32 {
			problems = append(problems, "extract.workers must be between 1 and 32")
		}
	case "store":
		switch c.Store.Driver {
		case "sqlite", "postgres":
			if c.Store.DSN == "" {
				problems = append(problems, "store.dsn is required")
			}
		case "off":
			problems = append(problems, "store.driver is off")
		default:
			problems = append(problems, "store.driver must be sqlite, postgres, or off")
		}
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
