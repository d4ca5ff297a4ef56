package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/beka-birhanu/vinom-search/search"
	"github.com/joho/godotenv"
)

var ErrMissingEnv = errors.New("required environment variable is not set")

// Config holds the application's configuration values.
type Config struct {
	HostIP         string        // Host IP for the server
	RESTPort       int           // Port for the REST API
	GinMode        string        // Mode for the Gin framework (e.g., release, debug, test)
	DBURI          string        // MongoDB connection URI
	DBName         string        // Name of the database
	RedisAddr      string        // Address of the Redis server backing the leaderboard
	RedisPassword  string        // Password for Redis, may be empty
	LeaderboardTTL time.Duration // Expiry of leaderboard keys
	JWTSecret      string        // Secret key for JWT signing
	JWTIssuer      string        // Issuer claim for JWTs
	TokenTTL       time.Duration // Lifetime of operator tokens
	LogLevel       string        // logrus level name
	Search         SearchDefaults
}

// SearchDefaults are the episode parameters used when a request or a plan
// leaves them out.
type SearchDefaults struct {
	Dim        int
	Density    float64
	StepBudget int
	Workers    int
	Rates      search.FalseNegativeRates
}

// Load reads the .env file when present, then the environment.
// Malformed values are reported; missing ones fall back to defaults.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	return fromEnv()
}

// MustLoad is Load for program entry points: a malformed environment is fatal.
func MustLoad() Config {
	c, err := Load()
	if err != nil {
		log.Fatalf("[APP] [FATAL] %v", err)
	}
	return c
}

func fromEnv() (Config, error) {
	var errs []error
	intEnv := func(key string, def int) int {
		v, err := getEnvAsInt(key, def)
		errs = append(errs, err)
		return v
	}
	floatEnv := func(key string, def float64) float64 {
		v, err := getEnvAsFloat(key, def)
		errs = append(errs, err)
		return v
	}

	c := Config{
		HostIP:         getEnvWithDefault("HOST_IP", "0.0.0.0"),
		RESTPort:       intEnv("REST_PORT", 8080),
		GinMode:        getEnvWithDefault("GIN_MODE", "release"),
		DBURI:          getEnvWithDefault("DB_URI", ""),
		DBName:         getEnvWithDefault("DB_NAME", "vinom_search"),
		RedisAddr:      getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:  getEnvWithDefault("REDIS_PASSWORD", ""),
		LeaderboardTTL: time.Duration(intEnv("LEADERBOARD_TTL", 7*24*60*60)) * time.Second,
		JWTSecret:      getEnvWithDefault("JWT_SECRET", ""),
		JWTIssuer:      getEnvWithDefault("JWT_ISSUER", "vinom-search"),
		TokenTTL:       time.Duration(intEnv("TOKEN_TTL_HOURS", 24)) * time.Hour,
		LogLevel:       getEnvWithDefault("LOG_LEVEL", "info"),
		Search: SearchDefaults{
			Dim:        intEnv("SEARCH_DIM", 51),
			Density:    floatEnv("SEARCH_DENSITY", 0.3),
			StepBudget: intEnv("SEARCH_STEP_BUDGET", 100000),
			Workers:    intEnv("SEARCH_WORKERS", 4),
			Rates: search.FalseNegativeRates{
				Flat:   floatEnv("FNR_FLAT", search.DefaultRates().Flat),
				Hilly:  floatEnv("FNR_HILLY", search.DefaultRates().Hilly),
				Forest: floatEnv("FNR_FOREST", search.DefaultRates().Forest),
			},
		},
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	if err := c.Search.Rates.Validate(); err != nil {
		return Config{}, fmt.Errorf("false-negative rates: %w", err)
	}
	return c, nil
}

// RequireServer checks the settings only the HTTP server needs.
func (c Config) RequireServer() error {
	var errs []error
	for key, value := range map[string]string{
		"DB_URI":     c.DBURI,
		"REDIS_ADDR": c.RedisAddr,
		"JWT_SECRET": c.JWTSecret,
	} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingEnv, key))
		}
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the REST API.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.HostIP, c.RESTPort)
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer, or defaultValue when it is not set.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue, fmt.Errorf("environment variable %s must be an integer: %w", key, err)
	}
	return value, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue, fmt.Errorf("environment variable %s must be a number: %w", key, err)
	}
	return value, nil
}
