package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling policy.
	SlotGranularityMin   int  `mapstructure:"SCHED_GRANULARITY_MIN"`
	MinLeadTimeMin       int  `mapstructure:"SCHED_MIN_LEAD_MIN"`
	AllowSpillover       bool `mapstructure:"SCHED_ALLOW_SPILLOVER"`
	AutoStartEnabled     bool `mapstructure:"SCHED_AUTO_START"`
	BookingLockTTLSec    int  `mapstructure:"SCHED_LOCK_TTL_SEC"`
	AvailabilityCacheSec int  `mapstructure:"SCHED_AVAILABILITY_CACHE_SEC"`
	ReminderLeadHours    int  `mapstructure:"SCHED_REMINDER_LEAD_HOURS"`
	NoShowGraceMin       int  `mapstructure:"SCHED_NO_SHOW_GRACE_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SCHED_GRANULARITY_MIN", 30)
	viper.SetDefault("SCHED_MIN_LEAD_MIN", 120)
	viper.SetDefault("SCHED_ALLOW_SPILLOVER", true)
	viper.SetDefault("SCHED_AUTO_START", true)
	viper.SetDefault("SCHED_LOCK_TTL_SEC", 5)
	viper.SetDefault("SCHED_AVAILABILITY_CACHE_SEC", 30)
	viper.SetDefault("SCHED_REMINDER_LEAD_HOURS", 24)
	viper.SetDefault("SCHED_NO_SHOW_GRACE_MIN", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
