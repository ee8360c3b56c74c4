package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	DBMaxOpenConns int
	DBMaxIdleConns int

	// Identity provider that issues the JWTs we validate
	AuthIssuer string

	// Content API that serves quiz definitions
	ContentApiRoot string
	ContentApiKey  string

	// HubSpot CRM
	HubspotPrivateAppToken      string
	HubspotContactCreateUrl     string
	HubspotContactCompletionUrl string
	HubspotContactRetrieveUrl   string

	VimeoAccessToken string

	// Secret the notes cipher key is derived from
	NotesKey string

	EarlyAccessToken string

	SendgridApiKey string
	EmailSender    string
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
		Port: getEnv("PORT", "3000"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "onlinecourses"),
		DBPort:     getEnv("DB_PORT", "5432"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		AuthIssuer: getEnv("AUTH_ISSUER", ""),

		ContentApiRoot: getEnv("CONTENT_API_ROOT", ""),
		ContentApiKey:  getEnv("CONTENT_API_KEY", ""),

		HubspotPrivateAppToken:      getEnv("HUBSPOT_PRIVATE_APP_TOKEN", ""),
		HubspotContactCreateUrl:     getEnv("HUBSPOT_CONTACT_CREATE_URL", ""),
		HubspotContactCompletionUrl: getEnv("HUBSPOT_CONTACT_COMPLETION_URL", ""),
		HubspotContactRetrieveUrl:   getEnv("HUBSPOT_CONTACT_RETRIEVE_URL", ""),

		VimeoAccessToken: getEnv("VIMEO_ACCESS_TOKEN", ""),

		NotesKey: getEnv("NOTES_KEY", ""),

		EarlyAccessToken: getEnv("EARLY_ACCESS_TOKEN", ""),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		EmailSender:    getEnv("EMAIL_SENDER", "courses@example.com"),
	}

	// Validate critical configuration
	if AppConfig.NotesKey == "" {
		log.Println("Warning: NOTES_KEY is not set. Notes cannot be encrypted or decrypted.")
	}
	if AppConfig.AuthIssuer == "" {
		log.Println("Warning: AUTH_ISSUER is not set. JWT validation will reject all tokens.")
	}
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
