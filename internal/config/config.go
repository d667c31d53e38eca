// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backends selectable with STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
)

// maxRooms keeps cost arithmetic far from int overflow.
const maxRooms = 100000

// Config holds application configuration.
type Config struct {
	Store          string
	StoreSet       bool // STORE was given explicitly
	Table          string
	Region         string
	DynamoEndpoint string
	RedisURL       string
	Port           string
	TotalRooms     int
	Postgres       Postgres
}

// Postgres holds PostgreSQL connection settings.
type Postgres struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN builds a libpq-compatible connection string.
func (c Postgres) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Load reads an optional .env file, then environment variables,
// falling back to local-development defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Store:          getEnv("STORE", StoreMemory),
		Table:          getEnv("BOOKINGS_TABLE", "hotel-bookings-axile"),
		Region:         getEnv("AWS_REGION", "eu-north-1"),
		DynamoEndpoint: os.Getenv("DYNAMODB_ENDPOINT"),
		RedisURL:       os.Getenv("REDIS_URL"),
		Port:           getEnv("PORT", "8080"),
		Postgres: Postgres{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "hotelbookings"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}

	cfg.StoreSet = os.Getenv("STORE") != ""

	rooms, err := strconv.Atoi(getEnv("TOTAL_ROOMS", "20"))
	if err != nil || rooms <= 0 || rooms > maxRooms {
		return nil, fmt.Errorf("TOTAL_ROOMS must be an integer between 1 and %d", maxRooms)
	}
	cfg.TotalRooms = rooms

	switch cfg.Store {
	case StoreMemory, StorePostgres, StoreDynamoDB:
	default:
		return nil, fmt.Errorf("unknown STORE %q (want %s, %s or %s)", cfg.Store, StoreMemory, StorePostgres, StoreDynamoDB)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
