package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port           string
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration
	CORSOrigins    []string

	StorageDriver string
	RedisAddress  string
	RedisPassword string
	CartTTL       time.Duration

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayAPIURL    string
	PaymentTimeout    time.Duration
	Currency          string

	GuestVerificationCode string
	OTPDemoMode           bool
	OTPCooldown           time.Duration
	ProcessingDelay       time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the current process environment only.
func FromEnv() Config {
	return Config{
		Port:           getEnvOrDefault("PORT", "8080"),
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "raydrip"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 24, time.Hour),
		CORSOrigins:    getListEnv("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),

		StorageDriver: strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "redis")),
		RedisAddress:  getEnvOrDefault("REDIS_ADDRESS", "localhost:6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		CartTTL:       getDurationEnv("CART_TTL", 24, time.Hour),

		RazorpayKeyID:     getEnvOrDefault("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		RazorpayAPIURL:    getEnvOrDefault("RAZORPAY_API_URL", "https://api.razorpay.com/v1"),
		PaymentTimeout:    getDurationEnv("PAYMENT_TIMEOUT", 10, time.Second),
		Currency:          strings.ToUpper(getEnvOrDefault("CURRENCY", "INR")),

		GuestVerificationCode: getEnvOrDefault("GUEST_VERIFICATION_CODE", "123456"),
		OTPDemoMode:           getBoolEnv("OTP_DEMO_MODE", false),
		OTPCooldown:           getDurationEnv("OTP_COOLDOWN", 30, time.Second),
		ProcessingDelay:       getDurationEnv("PROCESSING_DELAY", 0, time.Millisecond),

		KafkaBrokers: getListEnv("KAFKA_BROKERS", nil),
		KafkaTopic:   getEnvOrDefault("KAFKA_TOPIC", "orders.committed"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed >= 0 {
			return time.Duration(parsed) * unit
		}
		log.Printf("[CONFIG] [WARN] invalid value for %s, using default", key)
	}
	return time.Duration(defaultValue) * unit
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
		log.Printf("[CONFIG] [WARN] invalid value for %s, using default", key)
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
