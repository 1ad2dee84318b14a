package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/campus-sports/service-booking/internal/platform/database"
)

// JWTConfig holds token verification settings.
type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// KafkaConfig holds event bus settings.
type KafkaConfig struct {
	Enabled           bool
	Brokers           []string
	NotificationTopic string
	SettingsTopic     string
	GroupID           string
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port        string
	AppEnv      string
	DBConfig    database.PostgresConfig
	JWTConfig   JWTConfig
	KafkaConfig KafkaConfig
}

// Load reads configuration from environment variables and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("JWT_ACCESS_TTL_MINUTES", 60)
	v.SetDefault("KAFKA_ENABLED", true)
	v.SetDefault("KAFKA_BROKERS", "localhost:9092")
	v.SetDefault("KAFKA_NOTIFICATION_TOPIC", "notifications")
	v.SetDefault("KAFKA_SETTINGS_TOPIC", "settings-events")
	v.SetDefault("KAFKA_GROUP_ID", "service-booking")

	return &ServiceConfig{
		Port:   v.GetString("SERVICE_PORT"),
		AppEnv: v.GetString("APP_ENV"),
		DBConfig: database.PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		JWTConfig: JWTConfig{
			Secret:    v.GetString("JWT_SECRET"),
			AccessTTL: time.Duration(v.GetInt("JWT_ACCESS_TTL_MINUTES")) * time.Minute,
		},
		KafkaConfig: KafkaConfig{
			Enabled:           v.GetBool("KAFKA_ENABLED"),
			Brokers:           splitBrokers(v.GetString("KAFKA_BROKERS")),
			NotificationTopic: v.GetString("KAFKA_NOTIFICATION_TOPIC"),
			SettingsTopic:     v.GetString("KAFKA_SETTINGS_TOPIC"),
			GroupID:           v.GetString("KAFKA_GROUP_ID"),
		},
	}, nil
}

func splitBrokers(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
