package utils

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"agrly/pkg/money"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Pricing  PricingConfig
	Kafka    KafkaConfig
	Outbox   OutboxConfig
	Cache    CacheConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// AuthConfig holds what we need to verify tokens minted by the external
// identity service. We never issue tokens ourselves.
type AuthConfig struct {
	JWTSecret string
}

// PricingConfig is injected into the pricing calculator; fees are global
// constants, not per-listing attributes.
type PricingConfig struct {
	CleaningFee    money.Money
	ServiceFeeRate money.Rate
	TaxRate        money.Rate
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type OutboxConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
}

type CacheConfig struct {
	ApartmentTTL time.Duration
	MaxSize      int64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("CLEANING_FEE", "50.00")
	viper.SetDefault("SERVICE_FEE_RATE", "0.10")
	viper.SetDefault("TAX_RATE", "0.05")
	viper.SetDefault("KAFKA_TOPIC", "booking.events.v1")
	viper.SetDefault("OUTBOX_POLL_INTERVAL_MS", 500)
	viper.SetDefault("OUTBOX_MAX_ATTEMPTS", 10)
	viper.SetDefault("APARTMENT_CACHE_TTL_SECONDS", 60)
	viper.SetDefault("APARTMENT_CACHE_MAX_SIZE", 1000)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	cleaningFee, err := money.ParseAmount(viper.GetString("CLEANING_FEE"))
	if err != nil {
		return nil, fmt.Errorf("parse CLEANING_FEE: %w", err)
	}
	serviceFeeRate, err := money.ParseRate(viper.GetString("SERVICE_FEE_RATE"))
	if err != nil {
		return nil, fmt.Errorf("parse SERVICE_FEE_RATE: %w", err)
	}
	taxRate, err := money.ParseRate(viper.GetString("TAX_RATE"))
	if err != nil {
		return nil, fmt.Errorf("parse TAX_RATE: %w", err)
	}

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Auth: AuthConfig{
			JWTSecret: viper.GetString("JWT_SECRET"),
		},
		Pricing: PricingConfig{
			CleaningFee:    cleaningFee,
			ServiceFeeRate: serviceFeeRate,
			TaxRate:        taxRate,
		},
		Kafka: KafkaConfig{
			Brokers: viper.GetStringSlice("KAFKA_BROKERS"),
			Topic:   viper.GetString("KAFKA_TOPIC"),
		},
		Outbox: OutboxConfig{
			PollInterval: time.Duration(viper.GetInt("OUTBOX_POLL_INTERVAL_MS")) * time.Millisecond,
			MaxAttempts:  viper.GetInt("OUTBOX_MAX_ATTEMPTS"),
		},
		Cache: CacheConfig{
			ApartmentTTL: time.Duration(viper.GetInt("APARTMENT_CACHE_TTL_SECONDS")) * time.Second,
			MaxSize:      viper.GetInt64("APARTMENT_CACHE_MAX_SIZE"),
		},
	}

	return config, nil
}
