package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string

	// POS client
	APIBaseURL     string
	EventsURL      string
	StaffEmail     string
	StaffPassword  string
	RequestTimeout time.Duration
	PollInterval   time.Duration
	ReconnectMin   time.Duration
	ReconnectMax   time.Duration
	MetricsPort    string

	// Dev backend
	Port         string
	JWTSecret    string
	JWTExpiry    string
	SeedInterval time.Duration
}

var AppConfig *Config

func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	AppConfig = &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		APIBaseURL:     getEnv("API_BASE_URL", "http://localhost:8082"),
		EventsURL:      getEnv("EVENTS_URL", getEnv("API_BASE_URL", "http://localhost:8082")+"/events"),
		StaffEmail:     getEnv("STAFF_EMAIL", "staff@resto.local"),
		StaffPassword:  getEnv("STAFF_PASSWORD", "staff123"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 10*time.Second),
		PollInterval:   getDuration("POLL_INTERVAL", time.Minute),
		ReconnectMin:   getDuration("RECONNECT_MIN", time.Second),
		ReconnectMax:   getDuration("RECONNECT_MAX", 30*time.Second),
		MetricsPort:    getEnv("METRICS_PORT", "9091"),
		Port:           getEnv("APP_PORT", getEnv("PORT", "8082")),
		JWTSecret:      getEnv("JWT_SECRET", "secret"),
		JWTExpiry:      getEnv("JWT_EXPIRY", "24h"),
		SeedInterval:   getDuration("SEED_INTERVAL", 0),
	}

	log.Println("Configuration loaded successfully")
	log.Printf("Environment: %s", AppConfig.AppEnv)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}
