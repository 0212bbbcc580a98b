package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mamadbah2/stockroom/internal/domain/models"
	"github.com/mamadbah2/stockroom/internal/repository/formats"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Alerts    AlertConfig
	Analytics AnalyticsConfig
	Sales     SalesConfig
	Scheduler SchedulerConfig
	MongoDB   MongoDBConfig
	Sheets    SheetsConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StorageConfig locates the data files managed by the engine.
type StorageConfig struct {
	DataDir        string
	InventoryFile  string
	SuppliersFile  string
	SalesFile      string
	BackupDir      string
	CategoriesFile string
}

// InventoryPath returns the inventory file joined with the data directory.
func (s StorageConfig) InventoryPath() string { return s.resolve(s.InventoryFile) }

// SuppliersPath returns the supplier file joined with the data directory.
func (s StorageConfig) SuppliersPath() string { return s.resolve(s.SuppliersFile) }

// SalesPath returns the sales history file joined with the data directory.
func (s StorageConfig) SalesPath() string { return s.resolve(s.SalesFile) }

// CategoriesPath returns the category override file, or "" when none is configured.
func (s StorageConfig) CategoriesPath() string {
	if s.CategoriesFile == "" {
		return ""
	}
	return s.resolve(s.CategoriesFile)
}

// Validate checks that every configured data file has a supported extension.
// The suppliers file holds two collections, so it cannot be csv or txt.
func (s StorageConfig) Validate() error {
	files := []struct {
		env, name string
		multi     bool
	}{
		{"INVENTORY_FILE", s.InventoryFile, false},
		{"SALES_FILE", s.SalesFile, false},
		{"SUPPLIERS_FILE", s.SuppliersFile, true},
	}
	for _, f := range files {
		if f.name == "" {
			continue
		}
		format, err := formats.FormatFromPath(f.name)
		if err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		if f.multi && format.SingleTable() {
			return fmt.Errorf("%s: %w: %s holds a single collection, use json, yaml or sqlite", f.env, models.ErrUnsupportedFormat, format)
		}
	}
	return nil
}

func (s StorageConfig) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.DataDir, name)
}

// AlertConfig holds stock thresholds and the alert transports.
type AlertConfig struct {
	CriticalStock    int
	LowStock         int
	ReorderPoint     int
	ExpiryWindowDays int
	WebhookURL       string
	WebhookToken     string
	Email            EmailConfig
}

// EmailConfig is handed to the external SMTP transport; the engine never dials it.
type EmailConfig struct {
	SMTPServer string
	SMTPPort   int
	Username   string
	Password   string
	From       string
	To         []string
}

// Enabled reports whether enough settings are present to send mail.
func (e EmailConfig) Enabled() bool {
	return e.SMTPServer != "" && e.From != "" && len(e.To) > 0
}

// AnalyticsConfig holds the default windows used by the analytics engine.
type AnalyticsConfig struct {
	TurnoverDays  int
	DeadStockDays int
	ForecastDays  int
}

// SalesConfig holds point-of-sale settings.
type SalesConfig struct {
	TaxRate float64
}

// SchedulerConfig holds cron schedules for background jobs.
type SchedulerConfig struct {
	AlertCron  string
	BackupCron string
	ReportCron string
	Timezone   string
}

// MongoDBConfig holds settings for the optional report archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SheetsConfig contains configuration required to export to Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether the sheets export is configured.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// MetricsConfig holds Prometheus options.
type MetricsConfig struct {
	Prefix string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Storage: StorageConfig{
			DataDir:        getenvWithDefault("DATA_DIR", "data"),
			InventoryFile:  getenvWithDefault("INVENTORY_FILE", "inventory.json"),
			SuppliersFile:  getenvWithDefault("SUPPLIERS_FILE", "suppliers.json"),
			SalesFile:      getenvWithDefault("SALES_FILE", "sales_history.json"),
			BackupDir:      getenvWithDefault("BACKUP_DIR", "backups"),
			CategoriesFile: os.Getenv("CATEGORIES_FILE"),
		},
		Alerts: AlertConfig{
			CriticalStock:    getenvInt("ALERT_CRITICAL_STOCK", 5),
			LowStock:         getenvInt("ALERT_LOW_STOCK", 10),
			ReorderPoint:     getenvInt("ALERT_REORDER_POINT", 15),
			ExpiryWindowDays: getenvInt("ALERT_EXPIRY_WINDOW_DAYS", 30),
			WebhookURL:       os.Getenv("ALERT_WEBHOOK_URL"),
			WebhookToken:     os.Getenv("ALERT_WEBHOOK_TOKEN"),
			Email: EmailConfig{
				SMTPServer: os.Getenv("SMTP_SERVER"),
				SMTPPort:   getenvInt("SMTP_PORT", 587),
				Username:   os.Getenv("SMTP_USERNAME"),
				Password:   os.Getenv("SMTP_PASSWORD"),
				From:       os.Getenv("ALERT_EMAIL_FROM"),
				To:         splitList(os.Getenv("ALERT_EMAIL_TO")),
			},
		},
		Analytics: AnalyticsConfig{
			TurnoverDays:  getenvInt("TURNOVER_DAYS", 30),
			DeadStockDays: getenvInt("DEAD_STOCK_DAYS", 90),
			ForecastDays:  getenvInt("FORECAST_DAYS", 30),
		},
		Sales: SalesConfig{
			TaxRate: getenvFloat("SALES_TAX_RATE", 0),
		},
		Scheduler: SchedulerConfig{
			AlertCron:  getenvWithDefault("ALERT_CRON_SCHEDULE", "0 * * * *"),
			BackupCron: getenvWithDefault("BACKUP_CRON_SCHEDULE", "0 2 * * *"),
			ReportCron: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:   getenvWithDefault("TIMEZONE", "UTC"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "stockroom"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_EXPORT_ID"),
		},
		Metrics: MetricsConfig{
			Prefix: getenvWithDefault("METRICS_PREFIX", "stockroom"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and consistent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Storage.DataDir == "" {
		return errors.New("DATA_DIR must not be empty")
	}
	if c.Storage.InventoryFile == "" {
		return errors.New("INVENTORY_FILE must not be empty")
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}

	a := c.Alerts
	switch {
	case a.CriticalStock < 0:
		return errors.New("ALERT_CRITICAL_STOCK must not be negative")
	case a.CriticalStock >= a.LowStock:
		return fmt.Errorf("ALERT_CRITICAL_STOCK (%d) must be below ALERT_LOW_STOCK (%d)", a.CriticalStock, a.LowStock)
	case a.LowStock >= a.ReorderPoint:
		return fmt.Errorf("ALERT_LOW_STOCK (%d) must be below ALERT_REORDER_POINT (%d)", a.LowStock, a.ReorderPoint)
	}

	if c.Analytics.TurnoverDays <= 0 || c.Analytics.DeadStockDays <= 0 || c.Analytics.ForecastDays <= 0 {
		return errors.New("analytics windows must be positive")
	}

	if c.Sales.TaxRate < 0 {
		return errors.New("SALES_TAX_RATE must not be negative")
	}

	if c.Scheduler.AlertCron == "" || c.Scheduler.BackupCron == "" || c.Scheduler.ReportCron == "" {
		return errors.New("cron schedules must be provided")
	}

	if c.Scheduler.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
