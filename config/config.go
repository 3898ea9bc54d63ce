package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// CarrierConfig holds the per-carrier credentials and settings used by the
// shipping adapters and webhook receivers.
type CarrierConfig struct {
	APIToken       string
	BaseURL        string
	PickupLocation string
	WebhookSecret  string
}

// Config is built once at startup and passed into constructors; no component
// reads the process environment on its own.
type Config struct {
	Port          string
	MongoURI      string
	DatabaseName  string
	JWTSecret     string
	OriginPincode string

	Delhivery  CarrierConfig
	Xpressbees CarrierConfig
}

// LoadEnv loads environment variables from a .env file
func LoadEnv() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Error loading .env file")
	}
}

// GetEnv retrieves environment variables with a fallback
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads the full configuration from the environment.
func Load() *Config {
	return &Config{
		Port:          GetEnv("PORT", "3000"),
		MongoURI:      GetEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DatabaseName:  GetEnv("DATABASE_NAME", "vastrika"),
		JWTSecret:     GetEnv("JWT_SECRET", ""),
		OriginPincode: GetEnv("ORIGIN_PINCODE", "110001"),
		Delhivery: CarrierConfig{
			APIToken:       GetEnv("DELHIVERY_API_TOKEN", ""),
			BaseURL:        GetEnv("DELHIVERY_BASE_URL", "https://track.delhivery.com"),
			PickupLocation: GetEnv("DELHIVERY_PICKUP_LOCATION", ""),
			WebhookSecret:  GetEnv("DELHIVERY_WEBHOOK_SECRET", ""),
		},
		Xpressbees: CarrierConfig{
			APIToken:       GetEnv("XPRESSBEES_API_TOKEN", ""),
			BaseURL:        GetEnv("XPRESSBEES_BASE_URL", "https://shipment.xpressbees.com"),
			PickupLocation: GetEnv("XPRESSBEES_PICKUP_LOCATION", ""),
			WebhookSecret:  GetEnv("XPRESSBEES_WEBHOOK_SECRET", ""),
		},
	}
}
