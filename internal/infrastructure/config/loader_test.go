package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memoryYAML = `
database:
  driver: memory
ingestion:
  senderAllowlist:
    - com.phonepe.app
    - net.one97.paytm
`

func loadYAML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return LoadFromViper(v, Test)
}

func TestLoadFromViper_Defaults(t *testing.T) {
	cfg, err := loadYAML(t, memoryYAML)
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, ParserStrategyRules, cfg.Ingestion.ParserStrategy)
	assert.Equal(t, 8, cfg.Ingestion.ConcurrencyLevel)
	assert.Equal(t, []string{"com.phonepe.app", "net.one97.paytm"}, cfg.Ingestion.SenderAllowlist)
	assert.False(t, cfg.Oracle.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Oracle.Timeout())
}

func TestLoadFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("UT_ORACLE_ENABLED", "true")
	t.Setenv("UT_ORACLE_API_KEY", "test-key")
	t.Setenv("UT_PARSER_STRATEGY", "oracle")
	t.Setenv("UT_INGESTION_CONCURRENCY_LEVEL", "3")

	cfg, err := loadYAML(t, memoryYAML)
	require.NoError(t, err)

	assert.True(t, cfg.Oracle.Enabled)
	assert.Equal(t, "test-key", cfg.Oracle.APIKey)
	assert.Equal(t, ParserStrategyOracle, cfg.Ingestion.ParserStrategy)
	assert.Equal(t, 3, cfg.Ingestion.ConcurrencyLevel)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:  DatabaseConfig{Driver: DriverMemory},
			Ingestion: IngestionConfig{ConcurrencyLevel: 4, QueueSize: 16, ParserStrategy: ParserStrategyRules},
			Oracle:    OracleConfig{TimeoutMs: 1000},
		}
	}

	testCases := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid memory config", func(c *Config) {}, ""},
		{"postgres without host", func(c *Config) { c.Database.Driver = DriverPostgres }, "postgres driver requires"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unsupported database driver"},
		{"unknown parser", func(c *Config) { c.Ingestion.ParserStrategy = "magic" }, "unknown parser strategy"},
		{"oracle parser without oracle", func(c *Config) { c.Ingestion.ParserStrategy = ParserStrategyOracle }, "requires oracle.enabled"},
		{"zero concurrency", func(c *Config) { c.Ingestion.ConcurrencyLevel = 0 }, "concurrency level must be positive"},
		{"oracle without key", func(c *Config) { c.Oracle.Enabled = true }, "requires an API key"},
		{"postgres complete", func(c *Config) {
			c.Database = DatabaseConfig{Driver: DriverPostgres, Host: "localhost", Username: "ut", Database: "upi"}
		}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := c.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}
