package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Host     string
	Port     string
	Env      string
	LogLevel string

	// Output locations
	DataDir          string
	AppointmentsPath string
	HealthRecordPath string

	// Twilio SMS transport
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioBaseURL    string
	TwilioTimeout    time.Duration

	// Circuit breaker around the SMS transport; 0 failures disables it.
	SMSBreakerFailures int
	SMSBreakerCooldown time.Duration

	// Phone normalisation
	PhoneDefaultCountryCode string
	PhonePermissive         bool

	// Tool endpoint protection
	ToolsJWTSecret string
	RateLimitRPS   float64
	RateLimitBurst int

	// Artifact archive (optional)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string
	ArchiveBucket       string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("DATA_DIR", defaultDataDir())
	return &Config{
		Host:     getEnv("HOST", "127.0.0.1"),
		Port:     getEnv("PORT", "8000"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DataDir:          dataDir,
		AppointmentsPath: getEnv("APPOINTMENTS_PATH", filepath.Join(dataDir, "appointments.xlsx")),
		HealthRecordPath: getEnv("HEALTH_RECORD_PATH", filepath.Join(dataDir, "health_record.pdf")),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
		TwilioBaseURL:    getEnv("TWILIO_BASE_URL", "https://api.twilio.com"),
		TwilioTimeout:    getEnvAsDuration("TWILIO_TIMEOUT", 10*time.Second),

		SMSBreakerFailures: getEnvAsInt("SMS_BREAKER_FAILURES", 5),
		SMSBreakerCooldown: getEnvAsDuration("SMS_BREAKER_COOLDOWN", 30*time.Second),

		PhoneDefaultCountryCode: getEnv("PHONE_DEFAULT_COUNTRY_CODE", "+91"),
		PhonePermissive:         getEnvAsBool("PHONE_PERMISSIVE", true),

		ToolsJWTSecret: getEnv("TOOLS_JWT_SECRET", ""),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),
		ArchiveBucket:       getEnv("ARCHIVE_BUCKET", ""),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// SMSConfigured reports whether every Twilio credential is present.
func (c *Config) SMSConfigured() bool {
	return strings.TrimSpace(c.TwilioAccountSID) != "" &&
		strings.TrimSpace(c.TwilioAuthToken) != "" &&
		strings.TrimSpace(c.TwilioFromNumber) != ""
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "data"
	}
	return filepath.Join(home, "Desktop")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
