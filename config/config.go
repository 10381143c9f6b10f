package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	AppEnv    string
	AppName   string
	JWTKey    string
	SaltRound int

	DBDriver   string // postgres, mysql or sqlite
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDSN      string // Overrides the DSN built from the DB_* parts

	InstamojoApiURL      string
	InstamojoApiKey      string
	InstamojoAuthToken   string
	InstamojoRedirectURL string
	PaymentSettledStatus string
	PaymentVerifyTimeout time.Duration

	MonthlyPrice          int64
	LifetimePrice         int64
	MonthlyReferralBonus  int64
	LifetimeReferralBonus int64
	MinRedemptionAmount   int64

	SendgridApiKey   string
	EmailSender      string
	ResetPasswordURL string

	RollbarToken string
	ReminderCron string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:      getEnv("PORT", "5000"),
		AppEnv:    getEnv("APP_ENV", "production"),
		AppName:   getEnv("APP_NAME", "Maitree Marathi"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "maitreemarathi"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBDSN:      getEnv("DB_DSN", ""),

		InstamojoApiURL:      getEnv("INSTAMOJO_API_URL", "https://www.instamojo.com/api/1.1/"),
		InstamojoApiKey:      getEnv("INSTAMOJO_API_KEY", ""),
		InstamojoAuthToken:   getEnv("INSTAMOJO_AUTH_TOKEN", ""),
		InstamojoRedirectURL: getEnv("INSTAMOJO_REDIRECT_URL", "http://localhost:5173/payment-success"),
		PaymentSettledStatus: getEnv("INSTAMOJO_SETTLED_STATUS", "credited"),
		PaymentVerifyTimeout: getEnvDuration("PAYMENT_VERIFY_TIMEOUT", 5*time.Second),

		MonthlyPrice:          getEnvInt64("MONTHLY_PRICE", 199),
		LifetimePrice:         getEnvInt64("LIFETIME_PRICE", 999),
		MonthlyReferralBonus:  getEnvInt64("MONTHLY_REFERRAL_BONUS", 51),
		LifetimeReferralBonus: getEnvInt64("LIFETIME_REFERRAL_BONUS", 101),
		MinRedemptionAmount:   getEnvInt64("MIN_REDEMPTION_AMOUNT", 100),

		SendgridApiKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailSender:      getEnv("EMAIL_SENDER", "no-reply@maitreemarathi.com"),
		ResetPasswordURL: getEnv("RESET_PASSWORD_URL", "http://localhost:5173/reset-password"),

		RollbarToken: getEnv("ROLLBAR_TOKEN", ""),
		ReminderCron: getEnv("REMINDER_CRON", "0 9 * * *"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.InstamojoApiKey == "" || AppConfig.InstamojoAuthToken == "" {
		log.Println("Warning: Instamojo credentials are not set. Every payment verification will fail.")
	}
	if AppConfig.SendgridApiKey == "" {
		log.Println("Warning: SENDGRID_API_KEY not set. Emails will be written to the log.")
	}
}

// IsDevelopment reports whether the service runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		log.Printf("Error converting environment variable %s to int64: %v", key, err)
		return defaultValue
	}
	return intValue
}

// getEnvDuration accepts Go duration strings such as "5s" or "1500ms"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to duration: %v", key, err)
		return defaultValue
	}
	return d
}
