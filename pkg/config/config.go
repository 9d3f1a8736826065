package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	AuthProviderFirebase = "firebase"
	AuthProviderJWT      = "jwt"

	PostStoreMongo    = "mongo"
	PostStorePostgres = "postgres"
)

type Config struct {
	Port     string `env:"PORT"      envDefault:"8080"`
	Env      string `env:"ENV"       envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	AuthProvider string `env:"AUTH_PROVIDER" envDefault:"firebase"`
	JWTSecret    string `env:"JWT_SECRET"`

	FirebaseCredentialsPath string        `env:"FIREBASE_CREDENTIALS_PATH" envDefault:"./firebase_credentials.json"`
	AvatarBucket            string        `env:"AVATAR_BUCKET,required"`
	PostBucket              string        `env:"POST_BUCKET,required"`
	SignedURLTTL            time.Duration `env:"SIGNED_URL_TTL" envDefault:"15m"`

	PostgresConnStr string `env:"POSTGRES_CONN_STR,required"`
	PostStore       string `env:"POST_STORE" envDefault:"mongo"`
	MongoURI        string `env:"MONGO_URI"`
	MongoDB         string `env:"MONGO_DB"   envDefault:"socialmedia"`
	RedisURL        string `env:"REDIS_URL"`
	MailOutboxKey   string `env:"MAIL_OUTBOX_KEY" envDefault:"mail:outbox"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	BodyLimit   string   `env:"BODY_LIMIT"   envDefault:"10M"`
	RateLimit   float64  `env:"RATE_LIMIT"   envDefault:"20"`
	RateBurst   int      `env:"RATE_BURST"   envDefault:"40"`
}

// Load reads an optional .env file, then parses and validates the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.AuthProvider) {
	case AuthProviderFirebase:
	case AuthProviderJWT:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when AUTH_PROVIDER=jwt"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider))
	}

	switch strings.ToLower(c.PostStore) {
	case PostStoreMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when POST_STORE=mongo"))
		}
	case PostStorePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown POST_STORE %q", c.PostStore))
	}

	if c.SignedURLTTL <= 0 {
		errs = append(errs, errors.New("SIGNED_URL_TTL must be positive"))
	}
	if c.IsProduction() && c.RedisURL == "" {
		errs = append(errs, errors.New("REDIS_URL is required in production"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
