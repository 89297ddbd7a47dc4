package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all server configuration, loaded from the environment.
type Config struct {
	MongoURI        string
	MongoDatabase   string
	RedisAddr       string
	HTTPPort        string
	JWTSecret       string
	PresenceGraceMS int // grace period before a silent player forfeits
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGO_DB", "campusduel"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		HTTPPort:        getEnv("PORT", "8080"),
		JWTSecret:       getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		PresenceGraceMS: getEnvInt("PRESENCE_GRACE_MS", 15000),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}
