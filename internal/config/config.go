package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Store     StoreConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Alerting  AlertingConfig
	Scheduler SchedulerConfig
	Kafka     KafkaConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

// StoreConfig selects the persistence backend. "memory" keeps everything in
// process and is meant for local runs.
type StoreConfig struct {
	Driver string
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
	SampleRate   float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Per client IP
	RequestsPerSecond float64
	BurstSize         int
}

type AlertingConfig struct {
	// IANA zone used for calendar-day windows and the morning reminder hour.
	Timezone  string
	DayOfHour int
	Workers   int
}

// Location resolves the configured timezone.
func (a AlertingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

type SchedulerConfig struct {
	Enabled    bool
	Interval   time.Duration
	RunOnStart bool
}

type KafkaConfig struct {
	Enabled      bool
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
	// Breaker opens after this many consecutive publish failures.
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "healthtrack"),
			Environment: getEnv("APP_ENV", "development"),
			Version:     getEnv("APP_VERSION", "0.0.0"),
		},
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "healthtrack"),
			User:            getEnv("DB_USER", "healthtrack"),
			Password:        getEnv("DB_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSLMODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", "postgres"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			OutputPath: getEnv("LOG_OUTPUT", "stdout"),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvBool("TRACING_ENABLED", false),
			ServiceName:  getEnv("TRACING_SERVICE_NAME", "healthtrack"),
			OTLPEndpoint: getEnv("OTLP_ENDPOINT", "otel-collector:4318"),
			SampleRate:   getEnvFloat("TRACING_SAMPLE_RATE", 0.1),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			AllowedMethods: getEnvSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "X-Request-ID"}),
			MaxAge:         getEnvDuration("CORS_MAX_AGE", 12*time.Hour),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 50),
			BurstSize:         getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Alerting: AlertingConfig{
			Timezone:  getEnv("ALERT_TIMEZONE", "America/Chicago"),
			DayOfHour: getEnvInt("ALERT_DAY_OF_HOUR", 8),
			Workers:   getEnvInt("ALERT_WORKERS", 4),
		},
		Scheduler: SchedulerConfig{
			Enabled:    getEnvBool("SCHEDULER_ENABLED", true),
			Interval:   getEnvDuration("SCHEDULER_INTERVAL", time.Hour),
			RunOnStart: getEnvBool("SCHEDULER_RUN_ON_START", false),
		},
		Kafka: KafkaConfig{
			Enabled:         getEnvBool("KAFKA_ENABLED", false),
			Brokers:         getEnvSlice("KAFKA_BROKERS", []string{"kafka:9092"}),
			Topic:           getEnv("KAFKA_NOTIFICATIONS_TOPIC", "healthtrack.notifications"),
			WriteTimeout:    getEnvDuration("KAFKA_WRITE_TIMEOUT", 5*time.Second),
			BreakerFailures: uint32(getEnvInt("KAFKA_BREAKER_FAILURES", 5)),
			BreakerTimeout:  getEnvDuration("KAFKA_BREAKER_TIMEOUT", 30*time.Second),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.Store.Driver {
	case "postgres":
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	case "memory":
		if cfg.App.Environment == "production" {
			errs = append(errs, "STORE_DRIVER=memory is not allowed in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("STORE_DRIVER must be postgres or memory, got %q", cfg.Store.Driver))
	}

	if _, err := cfg.Alerting.Location(); err != nil {
		errs = append(errs, "ALERT_TIMEZONE: "+err.Error())
	}
	if cfg.Alerting.DayOfHour < 0 || cfg.Alerting.DayOfHour > 23 {
		errs = append(errs, "ALERT_DAY_OF_HOUR must be between 0 and 23")
	}
	if cfg.Alerting.Workers < 1 {
		errs = append(errs, "ALERT_WORKERS must be at least 1")
	}
	if cfg.Scheduler.Interval <= 0 {
		errs = append(errs, "SCHEDULER_INTERVAL must be positive")
	}
	if cfg.Kafka.Enabled && len(cfg.Kafka.Brokers) == 0 {
		errs = append(errs, "KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	if v, ok := os.LookupEnv(key); ok {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
