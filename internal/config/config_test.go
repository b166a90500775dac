package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1000, cfg.ScanPageSize)
	assert.Equal(t, "patients", cfg.PatientsTable)
	assert.Equal(t, "deepseek-chat", cfg.LLMModel)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("DOCTOR_CHAT_ID", "12345")
	t.Setenv("ALERTS_TABLE", "alerts-prod")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, int64(12345), cfg.DoctorChatID)
	assert.Equal(t, "alerts-prod", cfg.AlertsTable)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: DriverMemory, ScanPageSize: 10, RequestTimeout: time.Second}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"postgres without url", func(c *Config) { c.StoreDriver = DriverPostgres }, "DATABASE_URL"},
		{"sqlite without path", func(c *Config) { c.StoreDriver = DriverSQLite }, "SQLITE_PATH"},
		{"unknown driver", func(c *Config) { c.StoreDriver = "dynamo" }, "STORE_DRIVER"},
		{"zero page size", func(c *Config) { c.ScanPageSize = 0 }, "SCAN_PAGE_SIZE"},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, "REQUEST_TIMEOUT"},
		{"bot without chat", func(c *Config) { c.TelegramBotToken = "t" }, "DOCTOR_CHAT_ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_IsDev(t *testing.T) {
	assert.True(t, (&Config{Env: "development"}).IsDev())
	assert.False(t, (&Config{Env: "production"}).IsDev())
}
