package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Redis      RedisConfig      `yaml:"redis"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Engine     EngineConfig     `yaml:"engine"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Worker     WorkerConfig     `yaml:"worker"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	RevisionsTopic     string   `yaml:"revisions_topic"`
	ItineraryTopic     string   `yaml:"itinerary_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// EngineConfig tunes the continuity engine. Zero values fall back to the
// engine defaults.
type EngineConfig struct {
	LocalBufferMinutes     int     `yaml:"local_buffer_minutes"`
	AirportBufferMinutes   int     `yaml:"airport_buffer_minutes"`
	WalkingWindowMinutes   int     `yaml:"walking_window_minutes"`
	TightThresholdMinutes  int     `yaml:"tight_threshold_minutes"`
	EnrichTimeoutSeconds   int     `yaml:"enrich_timeout_seconds"`
	ImplicitWindowMinutes  int     `yaml:"implicit_window_minutes"`
	CoordinateRadiusMeters float64 `yaml:"coordinate_radius_meters"`
}

type EnrichmentConfig struct {
	BaseURL         string  `yaml:"base_url"`
	APIKey          string  `yaml:"api_key"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	RatePerSecond   float64 `yaml:"rate_per_second"`
	Burst           int     `yaml:"burst"`
}

type WorkerConfig struct {
	LockTTLSeconds      int `yaml:"lock_ttl_seconds"`
	ReportTTLSeconds    int `yaml:"report_ttl_seconds"`
	ProcessedTTLMinutes int `yaml:"processed_ttl_minutes"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	Pretty  bool   `yaml:"pretty"`
	Service string `yaml:"service"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Secrets prefer the environment so they stay out of config files.
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("ENRICHMENT_API_KEY"); v != "" {
		cfg.Enrichment.APIKey = v
	}

	return &cfg, nil
}
