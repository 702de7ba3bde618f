package staffdeck

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config exposes the settings the package consumes. Callers can supply
// their own implementation; LoadConfig builds one from the
// environment.
type Config interface {
	GetPort() string
	GetSigningKey() string
	GetTokenExpiration() int
	GetBcryptCost() int
	GetFrontendURL() string
	GetMailFrom() string
	GetMailFromName() string
	GetSendgridKey() string
	GetRedisAddr() string
	GetDSN() string
	IsProduction() bool
	UseDeterministicIDs() bool
}

type envConfig struct{}

// LoadConfig reads an optional .env file and returns an environment
// backed Config. Missing .env is not an error.
func LoadConfig() Config {
	_ = godotenv.Load()
	return envConfig{}
}

func (envConfig) GetPort() string {
	return getEnvAsString("PORT", "5001")
}

func (envConfig) GetSigningKey() string {
	return getEnvAsString("JWT_SECRET", "")
}

func (envConfig) GetTokenExpiration() int {
	return getEnvAsInt("JWT_EXPIRATION_HOURS", 24)
}

func (envConfig) GetBcryptCost() int {
	return getEnvAsInt("BCRYPT_COST", DefaultBcryptCost)
}

func (envConfig) GetFrontendURL() string {
	return getEnvAsString("FRONTEND_URL", "http://localhost:3000")
}

func (envConfig) GetMailFrom() string {
	return getEnvAsString("MAIL_FROM", "no-reply@staffdeck.local")
}

func (envConfig) GetMailFromName() string {
	return getEnvAsString("MAIL_FROM_NAME", "StaffDeck")
}

func (envConfig) GetSendgridKey() string {
	return getEnvAsString("SENDGRID_API_KEY", "")
}

func (envConfig) GetRedisAddr() string {
	return getEnvAsString("REDIS_ADDR", "")
}

func (envConfig) GetDSN() string {
	return getEnvAsString("DATABASE_DSN", "file:staffdeck.db?cache=shared&mode=rwc")
}

func (envConfig) IsProduction() bool {
	return getEnvAsString("APP_ENV", "development") == "production"
}

func (envConfig) UseDeterministicIDs() bool {
	return getEnvAsBool("DETERMINISTIC_IDS", false)
}

func getEnvAsString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
