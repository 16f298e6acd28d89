package config

import (
	"os"
	"strconv"
)

// Authorization policy names. One policy is picked per deployment; the two
// are never mixed per-request.
const (
	// PolicyRole distinguishes Forbidden from NotFound and gives admins
	// cross-user visibility and assignment.
	PolicyRole = "role"
	// PolicyStrict scopes every by-id query to the caller in a single store
	// call, so unauthorized access and nonexistence are both NotFound.
	PolicyStrict = "strict"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort    string
	MySQLDSN      string
	RedisAddr     string
	RedisDB       int
	RedisPass     string
	JWTSecret     string
	AuthzPolicy   string
	SeedDemoUsers bool
	SwaggerHost   string
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	return &Config{
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/taskboard?charset=utf8mb4&parseTime=True&loc=Local"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisPass:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		AuthzPolicy:   getEnv("AUTHZ_POLICY", PolicyRole),
		SeedDemoUsers: os.Getenv("SEED_DEMO_USERS") == "true",
		SwaggerHost:   os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}
