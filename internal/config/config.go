package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"

	DefaultFrontendURL = "http://localhost:3000"
)

// Config is built once at startup and passed by value into constructors.
type Config struct {
	Env               string
	LogLevel          string
	Port              string
	Store             string
	MongoURI          string
	MongoDatabase     string
	FrontendURL       string
	StripeSecretKey   string
	JWTSecret         string
	TokenTTL          time.Duration
	BcryptCost        int
	RequestTimeout    time.Duration
	CartRemoveAtFloor bool
}

// Load reads .env.local and .env (when present) and then the environment.
// Values already set in the environment win over the files.
func Load() (Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an env lookup function.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := Config{
		Env:           get("ENV", "dev"),
		LogLevel:      get("LOG_LEVEL", "info"),
		Port:          get("PORT", "3000"),
		Store:         get("STORE", StoreMongo),
		MongoURI:      get("MONGO_URI", get("MONGO_URL", "")),
		MongoDatabase: get("MONGO_DATABASE", "storefront"),
		FrontendURL:   strings.TrimRight(get("FRONTEND_URL", DefaultFrontendURL), "/"),
		// Secrets are taken verbatim.
		StripeSecretKey: get("STRIPE_SECRET_KEY", ""),
		JWTSecret:       get("JWT_SECRET", ""),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(get("TOKEN_TTL", "1h")); err != nil {
		return Config{}, fmt.Errorf("config: TOKEN_TTL: %w", err)
	}
	if cfg.RequestTimeout, err = time.ParseDuration(get("REQUEST_TIMEOUT", "10s")); err != nil {
		return Config{}, fmt.Errorf("config: REQUEST_TIMEOUT: %w", err)
	}
	if cfg.BcryptCost, err = strconv.Atoi(get("BCRYPT_COST", "10")); err != nil {
		return Config{}, fmt.Errorf("config: BCRYPT_COST: %w", err)
	}
	if cfg.CartRemoveAtFloor, err = strconv.ParseBool(get("CART_REMOVE_AT_FLOOR", "false")); err != nil {
		return Config{}, fmt.Errorf("config: CART_REMOVE_AT_FLOOR: %w", err)
	}
	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c Config) Validate() error {
	var problems []string
	if c.JWTSecret == "" {
		problems = append(problems, "JWT_SECRET is required")
	}
	switch c.Store {
	case StoreMongo:
		if c.MongoURI == "" {
			problems = append(problems, "MONGO_URI is required")
		}
	case StoreMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown store %q", c.Store))
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid PORT %q", c.Port))
	}
	if c.TokenTTL <= 0 {
		problems = append(problems, "TOKEN_TTL must be positive")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("BCRYPT_COST %d out of range", c.BcryptCost))
	}
	if len(problems) > 0 {
		return errors.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) Production() bool { return c.Env == "production" }

func (c Config) Addr() string { return ":" + c.Port }
