package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config carries everything the process reads from the environment.
type Config struct {
	Port        string
	DatabaseURL string

	CookieName string
	CookieTTL  time.Duration

	IdentityURL string
	StateSecret string
	StateTTL    time.Duration

	Seed bool
}

// Load reads .env when present and falls back to process env.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/surveyflow?sslmode=disable"),
		CookieName:  getEnv("SESSION_COOKIE_NAME", "survey-session-token"),
		CookieTTL:   getDuration("SESSION_COOKIE_TTL", 7*24*time.Hour),
		IdentityURL: getEnv("IDENTITY_PROVIDER_URL", "http://localhost:4000"),
		StateSecret: getEnv("IDENTITY_STATE_SECRET", ""),
		StateTTL:    getDuration("IDENTITY_STATE_TTL", time.Hour),
		Seed:        getBool("SEED_ON_START", true),
	}

	if cfg.StateSecret == "" {
		log.Println("IDENTITY_STATE_SECRET is not set, identity hand-off will reject callbacks")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getBool(key string, defaultValue bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %t", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
