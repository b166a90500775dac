package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

type Config struct {
	Port           string        `mapstructure:"PORT"`
	Env            string        `mapstructure:"ENV"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DatabaseURL    string `mapstructure:"DATABASE_URL"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`
	ScanPageSize   int    `mapstructure:"SCAN_PAGE_SIZE"`

	PatientsTable      string `mapstructure:"PATIENTS_TABLE"`
	AlertsTable        string `mapstructure:"ALERTS_TABLE"`
	InterventionsTable string `mapstructure:"INTERVENTIONS_TABLE"`
	NotesTable         string `mapstructure:"NOTES_TABLE"`
	ConversationsTable string `mapstructure:"CONVERSATIONS_TABLE"`
	JobsTable          string `mapstructure:"PREDICTION_JOBS_TABLE"`
	SchedulesTable     string `mapstructure:"PREDICTION_SCHEDULES_TABLE"`

	DeepSeekAPIKey string `mapstructure:"DEEPSEEK_API_KEY"`
	LLMBaseURL     string `mapstructure:"LLM_BASE_URL"`
	LLMModel       string `mapstructure:"LLM_MODEL"`

	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	DoctorChatID     int64  `mapstructure:"DOCTOR_CHAT_ID"`
	ReportFontPath   string `mapstructure:"REPORT_FONT_PATH"`

	ModelBucket string `mapstructure:"MODEL_BUCKET"`
	DataBucket  string `mapstructure:"DATA_BUCKET"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "REQUEST_TIMEOUT",
	"STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "MIGRATIONS_PATH", "SCAN_PAGE_SIZE",
	"PATIENTS_TABLE", "ALERTS_TABLE", "INTERVENTIONS_TABLE", "NOTES_TABLE",
	"CONVERSATIONS_TABLE", "PREDICTION_JOBS_TABLE", "PREDICTION_SCHEDULES_TABLE",
	"DEEPSEEK_API_KEY", "LLM_BASE_URL", "LLM_MODEL",
	"TELEGRAM_BOT_TOKEN", "DOCTOR_CHAT_ID", "REPORT_FONT_PATH",
	"MODEL_BUCKET", "DATA_BUCKET",
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "adherence.db")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("SCAN_PAGE_SIZE", 1000)
	v.SetDefault("PATIENTS_TABLE", "patients")
	v.SetDefault("ALERTS_TABLE", "alerts")
	v.SetDefault("INTERVENTIONS_TABLE", "interventions")
	v.SetDefault("NOTES_TABLE", "care-notes")
	v.SetDefault("CONVERSATIONS_TABLE", "conversations")
	v.SetDefault("PREDICTION_JOBS_TABLE", "prediction-jobs")
	v.SetDefault("PREDICTION_SCHEDULES_TABLE", "prediction-schedules")
	v.SetDefault("LLM_BASE_URL", "https://api.deepseek.com")
	v.SetDefault("LLM_MODEL", "deepseek-chat")
	v.SetDefault("MODEL_BUCKET", "adherence-models")
	v.SetDefault("DATA_BUCKET", "adherence-data")

	// Bind explicitly so Unmarshal sees keys without defaults.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks driver-specific requirements.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER is %q", DriverPostgres)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when STORE_DRIVER is %q", DriverSQLite)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q or %q, got %q", DriverPostgres, DriverSQLite, DriverMemory, c.StoreDriver)
	}

	if c.ScanPageSize <= 0 {
		return fmt.Errorf("SCAN_PAGE_SIZE must be positive, got %d", c.ScanPageSize)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	}
	if c.TelegramBotToken != "" && c.DoctorChatID == 0 {
		return fmt.Errorf("DOCTOR_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}
