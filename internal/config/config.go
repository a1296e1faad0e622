package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"pethotel/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Exports    ExportConfig     `yaml:"exports"`
	Scheduler  SchedulerConfig  `yaml:"scheduler"`
	Hotel      HotelConfig      `yaml:"hotel"`
	Grooming   GroomingConfig   `yaml:"grooming"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Geo        GeoConfig        `yaml:"geo"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// DocumentsConfig selects where config documents live and how writes are batched.
type DocumentsConfig struct {
	// Backend is one of memory, sqlite, redis. redis falls back to sqlite when unreachable.
	Backend        string      `yaml:"backend"`
	DebounceMS     int         `yaml:"debounce_ms"`
	WriteTimeoutMS int         `yaml:"write_timeout_ms"`
	Retry          RetryConfig `yaml:"retry"`
}

type RetryConfig struct {
	MaxRetries     int     `yaml:"max_retries"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type SchedulerConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Timezone       string `yaml:"timezone"`
	DailyNeedsCron string `yaml:"daily_needs_cron"`
	BackupCron     string `yaml:"backup_cron"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

// HotelConfig describes the rooms of both buildings.
type HotelConfig struct {
	HotelOneLastRoom  int `yaml:"hotel_one_last_room"`
	HotelTwoFirstRoom int `yaml:"hotel_two_first_room"`
	HotelTwoLastRoom  int `yaml:"hotel_two_last_room"`
}

type GroomingConfig struct {
	DailyLimit int `yaml:"daily_limit"`
}

type DateRangeConfig struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

type CalendarConfig struct {
	Holidays   []string          `yaml:"holidays"`
	HighSeason []DateRangeConfig `yaml:"high_season"`
}

type GeoConfig struct {
	Enabled        bool   `yaml:"enabled"`
	ReverseURL     string `yaml:"reverse_url"`
	UserAgent      string `yaml:"user_agent"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	switch c.Documents.Backend {
	case "memory", "sqlite":
	case "redis":
		if c.Redis.Address == "" {
			return errors.New("documents.backend=redis requires redis.address")
		}
	default:
		return fmt.Errorf("unknown documents backend %q", c.Documents.Backend)
	}

	if c.Hotel.HotelOneLastRoom > models.HotelOneMaxRoom {
		return fmt.Errorf("hotel 1 rooms must end at or before %d", models.HotelOneMaxRoom)
	}
	if c.Hotel.HotelTwoFirstRoom < models.HotelTwoMinRoom || c.Hotel.HotelTwoLastRoom < c.Hotel.HotelTwoFirstRoom {
		return fmt.Errorf("hotel 2 rooms must start at or after %d", models.HotelTwoMinRoom)
	}

	return ValidateCalendar(c.Calendar)
}

// ValidateCalendar checks that every date is an ISO date and every range is ordered.
func ValidateCalendar(cal CalendarConfig) error {
	for _, h := range cal.Holidays {
		if _, err := models.ParseDate(h); err != nil {
			return fmt.Errorf("invalid holiday %q", h)
		}
	}
	for _, r := range cal.HighSeason {
		from, err := models.ParseDate(r.From)
		if err != nil {
			return fmt.Errorf("invalid high season start %q", r.From)
		}
		to, err := models.ParseDate(r.To)
		if err != nil {
			return fmt.Errorf("invalid high season end %q", r.To)
		}
		if to.Before(from) {
			return fmt.Errorf("high season %s..%s ends before it starts", r.From, r.To)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "pethotel"
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	c.Documents.Backend = strings.ToLower(strings.TrimSpace(c.Documents.Backend))
	if c.Documents.Backend == "" {
		c.Documents.Backend = "sqlite"
	}
	if c.Documents.DebounceMS == 0 {
		c.Documents.DebounceMS = models.DefaultDebounceMS
	}
	if c.Documents.WriteTimeoutMS == 0 {
		c.Documents.WriteTimeoutMS = 5000
	}
	if c.Documents.Retry.InitialDelayMS == 0 {
		c.Documents.Retry.InitialDelayMS = 200
	}
	if c.Documents.Retry.MaxDelayMS == 0 {
		c.Documents.Retry.MaxDelayMS = 5000
	}

	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "backups"
	}

	if c.Scheduler.Timezone == "" {
		c.Scheduler.Timezone = "Europe/Madrid"
	}
	if c.Scheduler.DailyNeedsCron == "" {
		c.Scheduler.DailyNeedsCron = "0 7 * * *"
	}
	if c.Scheduler.BackupCron == "" {
		c.Scheduler.BackupCron = "0 3 * * *"
	}

	if c.Hotel.HotelOneLastRoom == 0 {
		c.Hotel.HotelOneLastRoom = models.HotelOneMaxRoom
	}
	if c.Hotel.HotelTwoFirstRoom == 0 {
		c.Hotel.HotelTwoFirstRoom = models.HotelTwoMinRoom
	}
	if c.Hotel.HotelTwoLastRoom == 0 {
		c.Hotel.HotelTwoLastRoom = models.DefaultHotelTwoLastRoom
	}
	if c.Grooming.DailyLimit == 0 {
		c.Grooming.DailyLimit = models.GroomingDailyLimit
	}

	if c.Geo.TimeoutSeconds == 0 {
		c.Geo.TimeoutSeconds = 5
	}
	if c.Geo.UserAgent == "" {
		c.Geo.UserAgent = c.App.Name
	}
}
