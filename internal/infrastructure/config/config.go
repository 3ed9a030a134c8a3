package config

import (
	"errors"
	"fmt"
	"time"
)

// Parser strategies
const (
	ParserStrategyRules  = "rules"
	ParserStrategyOracle = "oracle"
)

// Database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all configuration for the application
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Logger      LoggerConfig    `mapstructure:"logger"`
	Ingestion   IngestionConfig `mapstructure:"ingestion"`
	Oracle      OracleConfig    `mapstructure:"oracle"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// IngestionConfig contains notification processing settings
type IngestionConfig struct {
	ConcurrencyLevel      int      `mapstructure:"concurrencyLevel"`
	QueueSize             int      `mapstructure:"queueSize"`
	ParserStrategy        string   `mapstructure:"parserStrategy"`
	SenderAllowlist       []string `mapstructure:"senderAllowlist"`
	RecategorizeBatchSize int      `mapstructure:"recategorizeBatchSize"`
}

// OracleConfig contains semantic oracle settings
type OracleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"apiKey"`
	Model      string `mapstructure:"model"`
	TimeoutMs  int64  `mapstructure:"timeoutMs"`
	Backend    string `mapstructure:"backend"`
	APIVersion string `mapstructure:"apiVersion"`
}

// Timeout returns the oracle call timeout
func (c OracleConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Validate checks cross-field rules the yaml schema cannot express
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Username == "" || c.Database.Database == "" {
			return errors.New("postgres driver requires database host, username and name")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	switch c.Ingestion.ParserStrategy {
	case ParserStrategyRules:
	case ParserStrategyOracle:
		if !c.Oracle.Enabled {
			return errors.New("parser strategy \"oracle\" requires oracle.enabled")
		}
	default:
		return fmt.Errorf("unknown parser strategy: %q", c.Ingestion.ParserStrategy)
	}

	if c.Ingestion.ConcurrencyLevel <= 0 {
		return fmt.Errorf("ingestion concurrency level must be positive, got: %d", c.Ingestion.ConcurrencyLevel)
	}
	if c.Ingestion.QueueSize <= 0 {
		return fmt.Errorf("ingestion queue size must be positive, got: %d", c.Ingestion.QueueSize)
	}

	if c.Oracle.Enabled {
		if c.Oracle.APIKey == "" {
			return errors.New("oracle.enabled requires an API key (UT_ORACLE_API_KEY)")
		}
		if c.Oracle.TimeoutMs <= 0 {
			return fmt.Errorf("oracle timeout must be positive, got: %dms", c.Oracle.TimeoutMs)
		}
	}
	return nil
}
