package config

import (
	"fmt"     // DSN formatting
	"os"      // For environment variables
	"strconv" // For string to int conversion
	"strings" // For list parsing
	"time"    // Durations

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort  string // Application port
	IsProd   bool   // Is production environment
	LogLevel string // logrus level name

	DBDriver   string // mysql or postgres
	DBUser     string // Database user
	DBPassword string // Database password
	DBHost     string // Database host
	DBPort     string // Database port
	DBName     string // Database name

	JWTSecret string        // JWT secret key
	JWTTTL    time.Duration // Token lifetime

	RedisAddr string        // Redis server address, empty disables caching
	RedisPass string        // Redis password
	RedisDB   int           // Redis database number
	CacheTTL  time.Duration // TTL of cached listings

	CORSOrigins []string // Allowed browser origins

	ImageProvider       string // cloudinary or local
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	UploadDir           string // Local image store root
	MaxUploadBytes      int64  // Largest accepted image

	AuthRatePerMinute int    // Requests per minute per IP on /api/auth
	SentryDSN         string // Error reporting, empty disables it
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present

	isProd := os.Getenv("IS_PROD") == "true"
	provider := getEnv("IMAGE_PROVIDER", "local")
	if isProd && os.Getenv("IMAGE_PROVIDER") == "" {
		provider = "cloudinary" // production always talks to the image host
	}

	return &Config{
		AppPort:  getEnv("APP_PORT", "5000"),
		IsProd:   isProd,
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     os.Getenv("DB_PORT"),
		DBName:     os.Getenv("DB_NAME"),

		JWTSecret: getEnv("JWT_SECRET", "secretkey"),
		JWTTTL:    time.Duration(getEnvAsInt("JWT_TTL_HOURS", 24)) * time.Hour,

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),
		CacheTTL:  time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 60)) * time.Second,

		CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),

		ImageProvider:       provider,
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "posts"),
		UploadDir:           getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes:      int64(getEnvAsInt("MAX_UPLOAD_MB", 5)) << 20,

		AuthRatePerMinute: getEnvAsInt("AUTH_RATE_PER_MINUTE", 30),
		SentryDSN:         os.Getenv("SENTRY_DSN"),
	}
}

// DSN builds the data source name for the configured driver
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		port := c.DBPort
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			c.DBHost, port, c.DBUser, c.DBPassword, c.DBName)
	}
	port := c.DBPort
	if port == "" {
		port = "3306"
	}
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + port + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4&loc=UTC"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
