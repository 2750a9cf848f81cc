package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the project config values
type Config struct {
	BaseURL     string
	Port        string
	DataDir     string
	DBURI       string
	DBName      string
	AuthSecret  string
	TokenTTL    time.Duration
	MockStats   bool
	Environment string
}

// New sets up all config related services
func New() *Config {
	// a .env file is optional, real deployments inject the environment directly
	_ = godotenv.Load()

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	c := &Config{
		BaseURL:     os.Getenv("BASE_URL"),
		Port:        os.Getenv("PORT"),
		DataDir:     os.Getenv("DATA_DIR"),
		DBURI:       os.Getenv("DB_URI"),
		DBName:      os.Getenv("DB_NAME"),
		AuthSecret:  os.Getenv("AUTH_SECRET"),
		TokenTTL:    24 * time.Hour,
		MockStats:   true,
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if c.Port == "" {
		c.Port = "5000"
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.AuthSecret == "" {
		// local development fallback, deployments must set AUTH_SECRET
		c.AuthSecret = "dispatch-dev-secret"
	}
	if ttl, err := time.ParseDuration(os.Getenv("TOKEN_TTL")); err == nil && ttl > 0 {
		c.TokenTTL = ttl
	}
	if mock, err := strconv.ParseBool(os.Getenv("MOCK_STATS")); err == nil {
		c.MockStats = mock
	}

	environment = c.Environment
	return c
}

// Production reports whether error details should be redacted from responses
func (c *Config) Production() bool {
	return c.Environment == "production"
}
