package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/basharagb/images-Plate-Recognitions/internal/domain/detection"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RecognitionConfig struct {
	DefaultPolicy  detection.ValidationPolicy
	BatchItemDelay time.Duration
	MaxBatchSize   int
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Recognition RecognitionConfig
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Recognition: RecognitionConfig{
			DefaultPolicy:  detection.ValidationPolicy(v.GetString("RECOGNITION_POLICY")),
			BatchItemDelay: v.GetDuration("BATCH_ITEM_DELAY"),
			MaxBatchSize:   v.GetInt("MAX_BATCH_SIZE"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.Recognition.DefaultPolicy == "" {
		cfg.Recognition.DefaultPolicy = detection.PolicyLenient
	}
	if cfg.Recognition.BatchItemDelay == 0 {
		// One second between items keeps batch replays under the upstream
		// model's request-rate limit.
		cfg.Recognition.BatchItemDelay = time.Second
	}
	if cfg.Recognition.MaxBatchSize == 0 {
		cfg.Recognition.MaxBatchSize = 100
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if !cfg.Recognition.DefaultPolicy.Valid() {
		return fmt.Errorf("RECOGNITION_POLICY %q is not a known policy", cfg.Recognition.DefaultPolicy)
	}
	return nil
}
