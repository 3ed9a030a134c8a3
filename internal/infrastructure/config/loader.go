package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "UT"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
	"../../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
}

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	if err := loadDotEnvFile(); err != nil {
		fmt.Println("Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")
	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	return decode(v, env)
}

// LoadFromViper decodes an already populated viper instance; used by tests
func LoadFromViper(v *viper.Viper, env string) (*Config, error) {
	setDefaults(v)
	return decode(v, env)
}

func decode(v *viper.Viper, env string) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.Environment = env

	processDurations(&config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func loadDotEnvFile() error {
	var lastError error
	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return nil
			} else {
				lastError = err
			}
		}
	}
	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}
	return fmt.Errorf("no .env file found in search paths")
}

// setDefaults sets default values for non-critical settings
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 10)
	v.SetDefault("server.writeTimeout", 15)
	v.SetDefault("server.idleTimeout", 60)
	v.SetDefault("server.readHeaderTimeout", 5)
	v.SetDefault("server.shutdownTimeout", 20)

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 20)
	v.SetDefault("database.maxIdleConns", 10)
	v.SetDefault("database.connMaxLifetime", 5)
	v.SetDefault("database.connMaxIdleTime", 5)
	v.SetDefault("database.queryTimeout", 5)
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	// Ingestion defaults
	v.SetDefault("ingestion.concurrencyLevel", 8)
	v.SetDefault("ingestion.queueSize", 256)
	v.SetDefault("ingestion.parserStrategy", ParserStrategyRules)
	v.SetDefault("ingestion.recategorizeBatchSize", 100)

	// Oracle defaults
	v.SetDefault("oracle.enabled", false)
	v.SetDefault("oracle.model", "gemini-2.0-flash")
	v.SetDefault("oracle.timeoutMs", 3000)
	v.SetDefault("oracle.backend", "gemini")
	v.SetDefault("oracle.apiVersion", "v1")
}

// getEnvironment determines the environment to use based on UT_ENV
func getEnvironment() string {
	env := os.Getenv(EnvPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides ensures environment variables override config values
func processEnvOverrides(v *viper.Viper) {
	stringOverrides := map[string]string{
		"UT_DB_DRIVER":       "database.driver",
		"UT_DB_HOST":         "database.host",
		"UT_DB_PORT":         "database.port",
		"UT_DB_USERNAME":     "database.username",
		"UT_DB_PASSWORD":     "database.password",
		"UT_DB_NAME":         "database.database",
		"UT_DB_SSL_MODE":     "database.sslMode",
		"UT_SERVER_HOST":     "server.host",
		"UT_SERVER_PORT":     "server.port",
		"UT_LOGGER_LEVEL":    "logger.level",
		"UT_PARSER_STRATEGY": "ingestion.parserStrategy",
		"UT_ORACLE_API_KEY":  "oracle.apiKey",
		"UT_ORACLE_MODEL":    "oracle.model",
	}
	for env, key := range stringOverrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	// GEMINI_API_KEY is what the genai SDK itself reads
	if v.GetString("oracle.apiKey") == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			v.Set("oracle.apiKey", key)
		}
	}

	if enabled := os.Getenv("UT_ORACLE_ENABLED"); enabled != "" {
		if b, err := strconv.ParseBool(enabled); err == nil {
			v.Set("oracle.enabled", b)
		}
	}
	if timeout := getEnvInt("UT_ORACLE_TIMEOUT_MS", 0); timeout > 0 {
		v.Set("oracle.timeoutMs", timeout)
	}
	if concurrency := getEnvInt("UT_INGESTION_CONCURRENCY_LEVEL", 0); concurrency > 0 {
		v.Set("ingestion.concurrencyLevel", concurrency)
	}
	if queueSize := getEnvInt("UT_INGESTION_QUEUE_SIZE", 0); queueSize > 0 {
		v.Set("ingestion.queueSize", queueSize)
	}
	if senders := os.Getenv("UT_SENDER_ALLOWLIST"); senders != "" {
		v.Set("ingestion.senderAllowlist", strings.Split(senders, ","))
	}
	if maxOpenConns := getEnvInt("UT_DB_MAX_OPEN_CONNS", 0); maxOpenConns > 0 {
		v.Set("database.maxOpenConns", maxOpenConns)
	}
	if queryTimeout := getEnvInt("UT_DB_QUERY_TIMEOUT_SECONDS", 0); queryTimeout > 0 {
		v.Set("database.queryTimeout", queryTimeout)
	}
}

// getEnvInt reads an integer environment variable
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts raw integer fields into durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = time.Duration(config.Server.ReadTimeout) * time.Second
	config.Server.WriteTimeout = time.Duration(config.Server.WriteTimeout) * time.Second
	config.Server.IdleTimeout = time.Duration(config.Server.IdleTimeout) * time.Second
	config.Server.ReadHeaderTimeout = time.Duration(config.Server.ReadHeaderTimeout) * time.Second
	config.Server.ShutdownTimeout = time.Duration(config.Server.ShutdownTimeout) * time.Second

	config.Database.ConnMaxLifetime = time.Duration(config.Database.ConnMaxLifetime) * time.Minute
	config.Database.ConnMaxIdleTime = time.Duration(config.Database.ConnMaxIdleTime) * time.Minute

	config.Database.QueryTimeout = time.Duration(config.Database.QueryTimeout) * time.Second
	config.Database.RetryDelay = time.Duration(config.Database.RetryDelay) * time.Second
}
