package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the indicator service
type Config struct {
	Environment string
	LogLevel    string

	Redis      RedisConfig
	Service    ServiceConfig
	Indicators IndicatorsConfig
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// ServiceConfig holds the indicator service configuration
type ServiceConfig struct {
	HealthCheckPort int
	BarStream       string
	ConsumerGroup   string
	SnapshotPrefix  string
	SnapshotTTL     time.Duration
	UpdateChannel   string
}

// IndicatorsConfig holds the default indicator parameters and the engine's
// per-symbol window size
type IndicatorsConfig struct {
	MaxBars         int
	SMAPeriods      []int
	EMAPeriods      []int
	RSIPeriod       int
	MACDFast        int
	MACDSlow        int
	MACDSignal      int
	BollingerPeriod int
	BollingerK      float64
	TrendLookback   int
	LevelsLookback  int
	ATRPeriod       int
	StochPeriod     int
}

// Load reads configuration from the environment, with .env as a fallback
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Service: ServiceConfig{
			HealthCheckPort: getEnvInt("INDICATOR_HEALTH_PORT", 8086),
			BarStream:       getEnv("INDICATOR_BAR_STREAM", "bars.finalized"),
			ConsumerGroup:   getEnv("INDICATOR_CONSUMER_GROUP", "indicator-engine"),
			SnapshotPrefix:  getEnv("INDICATOR_SNAPSHOT_PREFIX", "ind:"),
			SnapshotTTL:     getEnvDuration("INDICATOR_SNAPSHOT_TTL", 10*time.Minute),
			UpdateChannel:   getEnv("INDICATOR_UPDATE_CHANNEL", "indicators.updated"),
		},
		Indicators: IndicatorsConfig{
			MaxBars:         getEnvInt("INDICATOR_MAX_BARS", 200),
			SMAPeriods:      getEnvIntSlice("INDICATOR_SMA_PERIODS", []int{20, 50}),
			EMAPeriods:      getEnvIntSlice("INDICATOR_EMA_PERIODS", []int{12, 26}),
			RSIPeriod:       getEnvInt("INDICATOR_RSI_PERIOD", 14),
			MACDFast:        getEnvInt("INDICATOR_MACD_FAST", 12),
			MACDSlow:        getEnvInt("INDICATOR_MACD_SLOW", 26),
			MACDSignal:      getEnvInt("INDICATOR_MACD_SIGNAL", 9),
			BollingerPeriod: getEnvInt("INDICATOR_BOLLINGER_PERIOD", 20),
			BollingerK:      getEnvFloat("INDICATOR_BOLLINGER_K", 2.0),
			TrendLookback:   getEnvInt("INDICATOR_TREND_LOOKBACK", 10),
			LevelsLookback:  getEnvInt("INDICATOR_LEVELS_LOOKBACK", 20),
			ATRPeriod:       getEnvInt("INDICATOR_ATR_PERIOD", 14),
			StochPeriod:     getEnvInt("INDICATOR_STOCH_PERIOD", 14),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Redis.Port <= 0 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis port: %d", c.Redis.Port)
	}
	if c.Service.HealthCheckPort <= 0 || c.Service.HealthCheckPort > 65535 {
		return fmt.Errorf("invalid health check port: %d", c.Service.HealthCheckPort)
	}
	if c.Service.BarStream == "" {
		return fmt.Errorf("bar stream name cannot be empty")
	}
	if c.Service.ConsumerGroup == "" {
		return fmt.Errorf("consumer group cannot be empty")
	}

	ind := c.Indicators
	if ind.MaxBars < 1 {
		return fmt.Errorf("max bars must be at least 1, got %d", ind.MaxBars)
	}
	if ind.RSIPeriod < 1 {
		return fmt.Errorf("rsi period must be at least 1, got %d", ind.RSIPeriod)
	}
	if ind.MACDFast >= ind.MACDSlow {
		return fmt.Errorf("macd fast period %d must be less than slow period %d", ind.MACDFast, ind.MACDSlow)
	}
	if ind.BollingerK < 0 {
		return fmt.Errorf("bollinger k must be non-negative, got %g", ind.BollingerK)
	}
	for _, p := range append(append([]int{}, ind.SMAPeriods...), ind.EMAPeriods...) {
		if p < 1 {
			return fmt.Errorf("moving average period must be at least 1, got %d", p)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvIntSlice(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]int, 0, len(parts))
	for _, part := range parts {
		parsed, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		result = append(result, parsed)
	}
	return result
}
