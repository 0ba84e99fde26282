package config

import (
	"os"      // For environment variables
	"strconv" // For string to number conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	AppPort          string  // Application port
	DBUser           string  // Database user
	DBPassword       string  // Database password
	DBHost           string  // Database host
	DBPort           string  // Database port
	DBName           string  // Database name
	JWTSecret        string  // JWT signing secret
	JWTTTLMinutes    int     // Token lifetime in minutes
	CookieName       string  // Name of the HTTP-only auth cookie
	SavingsThreshold float64 // Savings floor that triggers an email alert
	SMTPHost         string  // Mail server host
	SMTPPort         string  // Mail server port
	SMTPUser         string  // Mail server username (also the From address)
	SMTPPass         string  // Mail server password
	RedisAddr        string  // Redis server address
	RedisPass        string  // Redis password
	RedisDB          int     // Redis database number
	IsProd           bool    // Is production environment
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	threshold, _ := strconv.ParseFloat(os.Getenv("SAVINGS_THRESHOLD"), 64)
	ttl, err := strconv.Atoi(os.Getenv("JWT_TTL_MINUTES"))
	if err != nil || ttl <= 0 {
		ttl = 60 // One hour unless configured otherwise
	}
	cookieName := os.Getenv("AUTH_COOKIE_NAME")
	if cookieName == "" {
		cookieName = "access_token" // Cookie name the frontend expects
	}
	return &Config{
		AppPort:          os.Getenv("APP_PORT"),          // Application port
		DBUser:           os.Getenv("DB_USER"),           // Database user
		DBPassword:       os.Getenv("DB_PASSWORD"),       // Database password
		DBHost:           os.Getenv("DB_HOST"),           // Database host
		DBPort:           os.Getenv("DB_PORT"),           // Database port
		DBName:           os.Getenv("DB_NAME"),           // Database name
		JWTSecret:        os.Getenv("JWT_SECRET"),        // JWT signing secret
		JWTTTLMinutes:    ttl,                            // Token lifetime in minutes
		CookieName:       cookieName,                     // Auth cookie name
		SavingsThreshold: threshold,                      // Savings alert threshold
		SMTPHost:         os.Getenv("SMTP_HOST"),         // Mail server host
		SMTPPort:         os.Getenv("SMTP_PORT"),         // Mail server port
		SMTPUser:         os.Getenv("SMTP_USER"),         // Mail server username
		SMTPPass:         os.Getenv("SMTP_PASS"),         // Mail server password
		RedisAddr:        os.Getenv("REDIS_ADDR"),        // Redis server address
		RedisPass:        os.Getenv("REDIS_PASS"),        // Redis password
		RedisDB:          redisDB,                        // Redis database number
		IsProd:           os.Getenv("IS_PROD") == "true", // Is production environment
	}
}
