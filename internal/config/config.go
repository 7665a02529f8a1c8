package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/wicaksana/loan-engine/internal/domain"
	"github.com/wicaksana/loan-engine/internal/ratemath"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Engine    EngineConfig    `mapstructure:"engine"`
}

type ServerConfig struct {
	Port string `mapstructure:"SERVER_PORT"`
	Host string `mapstructure:"SERVER_HOST"`
	Env  string `mapstructure:"ENV"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"DATABASE_HOST"`
	Port     string `mapstructure:"DATABASE_PORT"`
	Name     string `mapstructure:"DATABASE_NAME"`
	User     string `mapstructure:"DATABASE_USER"`
	Password string `mapstructure:"DATABASE_PASSWORD"`
	SSLMode  string `mapstructure:"DATABASE_SSLMODE"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	ReprocessCron string `mapstructure:"SCHEDULER_REPROCESS_CRON"`
	Timezone      string `mapstructure:"SCHEDULER_TIMEZONE"`
}

// EngineConfig carries the decimal context and day-count defaults handed to
// the amortization engine. The engine itself reads no ambient configuration;
// everything is passed down from here explicitly.
type EngineConfig struct {
	Precision          int32  `mapstructure:"ENGINE_PRECISION"`
	RoundingMode       string `mapstructure:"ENGINE_ROUNDING_MODE"`
	DefaultDaysInYear  string `mapstructure:"ENGINE_DAYS_IN_YEAR"`
	DefaultDaysInMonth string `mapstructure:"ENGINE_DAYS_IN_MONTH"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("DATABASE_HOST", "localhost")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_NAME", "loan_engine")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("SCHEDULER_REPROCESS_CRON", "0 0 1 * * *")
	viper.SetDefault("SCHEDULER_TIMEZONE", "Asia/Jakarta")
	viper.SetDefault("ENGINE_PRECISION", 12)
	viper.SetDefault("ENGINE_ROUNDING_MODE", "HALF_EVEN")
	viper.SetDefault("ENGINE_DAYS_IN_YEAR", "DAYS_360")
	viper.SetDefault("ENGINE_DAYS_IN_MONTH", "DAYS_30")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Engine.Precision <= 0 {
		return fmt.Errorf("ENGINE_PRECISION must be greater than 0")
	}

	if _, err := ratemath.ParseRoundingMode(c.Engine.RoundingMode); err != nil {
		return fmt.Errorf("ENGINE_ROUNDING_MODE is invalid: %w", err)
	}

	switch domain.DaysInYearType(c.Engine.DefaultDaysInYear) {
	case domain.DaysInYear360, domain.DaysInYear364, domain.DaysInYear365, domain.DaysInYearActual:
	default:
		return fmt.Errorf("ENGINE_DAYS_IN_YEAR must be one of DAYS_360, DAYS_364, DAYS_365, ACTUAL")
	}

	switch domain.DaysInMonthType(c.Engine.DefaultDaysInMonth) {
	case domain.DaysInMonth30, domain.DaysInMonthActual:
	default:
		return fmt.Errorf("ENGINE_DAYS_IN_MONTH must be one of DAYS_30, ACTUAL")
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE is invalid: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN builds the Postgres connection string.
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s dbname=%s user=%s password=%s sslmode=%s",
		d.Host, d.Port, d.Name, d.User, d.Password, d.SSLMode)
}

// MathContext returns the decimal context the engine computes in.
func (c *Config) MathContext() ratemath.Context {
	mode, _ := ratemath.ParseRoundingMode(c.Engine.RoundingMode)
	return ratemath.NewContext(c.Engine.Precision, mode)
}

// DefaultDaysInYear returns the configured default year convention.
func (c *Config) DefaultDaysInYear() domain.DaysInYearType {
	return domain.DaysInYearType(c.Engine.DefaultDaysInYear)
}

// DefaultDaysInMonth returns the configured default month convention.
func (c *Config) DefaultDaysInMonth() domain.DaysInMonthType {
	return domain.DaysInMonthType(c.Engine.DefaultDaysInMonth)
}
