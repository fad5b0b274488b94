package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

var AppEnv Config

type Config struct {
	Port              string
	GinMode           string
	StorageDriver     string
	MongoURI          string
	DBName            string
	MongoTransactions bool
	JWTSecret         string
	AccessTokenTTL    time.Duration
	RequestTimeout    time.Duration
	RedisAddr         string
	RedisPassword     string
	CartCacheTTL      time.Duration
	CORSOrigins       []string
	CartRateLimitRPS  float64
	CartRateBurst     int
	LogLevel          string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		logrus.WithField("area", "config").Info(".env not loaded: ", err)
	}
	AppEnv = Config{
		Port:              getEnvOrDefault("PORT", "9000"),
		GinMode:           getEnvOrDefault("GIN_MODE", "release"),
		StorageDriver:     getEnvOrDefault("STORAGE_DRIVER", "mongo"),
		MongoURI:          getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		DBName:            getEnvOrDefault("DB_NAME", "storefront"),
		MongoTransactions: getBoolEnv("MONGO_TRANSACTIONS", true),
		JWTSecret:         getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL:    getDurationEnv("ACCESS_TOKEN_TTL", 40, time.Hour),
		RequestTimeout:    getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		RedisAddr:         getEnvOrDefault("REDIS_ADDR", ""),
		RedisPassword:     getEnvOrDefault("REDIS_PASSWORD", ""),
		CartCacheTTL:      getDurationEnv("CART_CACHE_TTL", 15, time.Minute),
		CORSOrigins:       getListEnv("CORS_ORIGINS", []string{"http://localhost:5173"}),
		CartRateLimitRPS:  getFloatEnv("CART_RATE_LIMIT_RPS", 5),
		CartRateBurst:     getIntEnv("CART_RATE_LIMIT_BURST", 20),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() []string {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	if c.StorageDriver != "mongo" && c.StorageDriver != "memory" {
		problems = append(problems, "STORAGE_DRIVER must be mongo or memory")
	}
	if c.StorageDriver == "mongo" && c.MongoURI == "" {
		problems = append(problems, "MONGO_URI is required")
	}
	return problems
}
