package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	GRPCPort string
	WebPort  string
	// AllowedOrigins limits gRPC-Web CORS; empty echoes any origin.
	AllowedOrigins []string
	// DatabaseURL empty runs the in-memory demo store.
	DatabaseURL   string
	MigrationPath string
	JWTSecret     string
	Log           LogConfig
	RateLimit     RateLimitConfig
	Schedule      ScheduleConfig
	Mail          MailConfig
	Reminder      ReminderConfig
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ScheduleConfig drives self-service slot rendering.
type ScheduleConfig struct {
	DayStart     string // HH:MM
	DayEnd       string // HH:MM
	SlotMinutes  int
	WorkWeekdays []time.Weekday
}

type MailConfig struct {
	KafkaBrokers []string
	KafkaTopic   string
	From         string
	// breaker trips after this many consecutive failures
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

type ReminderConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:           env("APP_ENV", "development"),
		GRPCPort:      env("PORT", "50051"),
		WebPort:       env("WEB_PORT", "8080"),
		DatabaseURL:   env("DATABASE_URL", ""),
		MigrationPath: env("MIGRATION_PATH", "db/migrations/001_init.sql"),
		JWTSecret:     env("JWT_SECRET", ""),
		Log: LogConfig{
			Level:      env("LOG_LEVEL", "info"),
			Format:     env("LOG_FORMAT", "json"),
			OutputPath: env("LOG_OUTPUT", "stdout"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloat("RATE_LIMIT_RPS", 5),
			Burst:             envInt("RATE_LIMIT_BURST", 10),
		},
		Schedule: ScheduleConfig{
			DayStart:     env("SCHEDULE_DAY_START", "09:00"),
			DayEnd:       env("SCHEDULE_DAY_END", "18:00"),
			SlotMinutes:  envInt("SCHEDULE_SLOT_MINUTES", 30),
			WorkWeekdays: envWeekdays("SCHEDULE_WEEKDAYS", []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}),
		},
		Mail: MailConfig{
			KafkaBrokers:    envSlice("MAIL_KAFKA_BROKERS", nil),
			KafkaTopic:      env("MAIL_KAFKA_TOPIC", "clinic.email.outbound"),
			From:            env("MAIL_FROM", "consultorio@example.com"),
			BreakerFailures: uint32(envInt("MAIL_BREAKER_FAILURES", 5)),
			BreakerTimeout:  envDuration("MAIL_BREAKER_TIMEOUT", 30*time.Second),
		},
		Reminder: ReminderConfig{
			Enabled:  envBool("REMINDERS_ENABLED", true),
			Interval: envDuration("REMINDER_INTERVAL", 5*time.Minute),
		},
	}

	cfg.AllowedOrigins = envSlice("CORS_ORIGINS", nil)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	var errs []error
	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if cfg.Schedule.SlotMinutes < 5 {
		errs = append(errs, errors.New("SCHEDULE_SLOT_MINUTES must be at least 5"))
	}
	if cfg.Env == "production" && cfg.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required in production"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}

func envSlice(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// envWeekdays parses a list like "mon,tue,wed".
func envWeekdays(key string, fallback []time.Weekday) []time.Weekday {
	var out []time.Weekday
	for _, s := range envSlice(key, nil) {
		if d, ok := weekdays[strings.ToLower(s)]; ok {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
