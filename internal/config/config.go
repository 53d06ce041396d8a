package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/apex/log"
	"github.com/joho/godotenv"

	"github.com/fixmycity/backend/internal/priority"
	"github.com/fixmycity/backend/pkg/utils"
)

// maxWorkers caps PRIORITY_WORKERS
const maxWorkers = 64

// Config holds all configuration for the complaint service
type Config struct {
	DatabaseURL string
	AutoMigrate bool
	Port        string
	Env         string

	// Geocoding
	GeocoderURL  string
	GeocoderCity string

	// Priority engine
	Priority   priority.Config
	DefaultTop int
}

// Load reads .env (if present) and the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("No .env file found, using system environment")
	}

	metric, err := priority.ParseMetric(getEnv("PRIORITY_METRIC", string(priority.MetricGreatCircle)))
	if err != nil {
		return nil, err
	}
	noise, err := priority.ParseNoisePolicy(getEnv("PRIORITY_NOISE", string(priority.NoiseAsSingleton)))
	if err != nil {
		return nil, err
	}
	aggregation, err := priority.ParseAggregation(getEnv("PRIORITY_AGGREGATION", string(priority.AggregateSum)))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AutoMigrate:  getBoolEnv("AUTO_MIGRATE", true),
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("GO_ENV", "development"),
		GeocoderURL:  getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderCity: getEnv("GEOCODER_CITY", "Chennai"),
		Priority: priority.Config{
			Weights: priority.Weights{
				ClusterSize:    getFloatEnv("PRIORITY_WEIGHT_CLUSTER", priority.DefaultClusterSizeWeight),
				Severity:       getFloatEnv("PRIORITY_WEIGHT_SEVERITY", priority.DefaultSeverityWeight),
				Age:            getFloatEnv("PRIORITY_WEIGHT_AGE", priority.DefaultAgeWeight),
				AreaImportance: getFloatEnv("PRIORITY_WEIGHT_AREA", priority.DefaultAreaImportanceWeight),
			},
			Epsilon:        getFloatEnv("PRIORITY_EPSILON", priority.DefaultEpsilonKm),
			MinPoints:      getIntEnv("PRIORITY_MIN_POINTS", priority.DefaultMinPoints),
			Metric:         metric,
			Noise:          noise,
			Aggregation:    aggregation,
			Workers:        int(utils.Clamp(float64(getIntEnv("PRIORITY_WORKERS", 0)), 0, maxWorkers)),
			IndexThreshold: getIntEnv("PRIORITY_INDEX_THRESHOLD", priority.DefaultIndexThreshold),
		},
		DefaultTop: getIntEnv("PRIORITY_DEFAULT_TOP", 5),
	}

	if err := cfg.Priority.Validate(); err != nil {
		return nil, err
	}
	if cfg.DefaultTop < 1 {
		return nil, fmt.Errorf("config: PRIORITY_DEFAULT_TOP must be positive, got %d", cfg.DefaultTop)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.WithField("key", key).Warnf("ignoring non-integer value %q", value)
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
		log.WithField("key", key).Warnf("ignoring non-numeric value %q", value)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
