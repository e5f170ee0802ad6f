// Package config builds the server settings from defaults, the environment
// and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	ImagesFS = "fs"
	ImagesS3 = "s3"

	minSecretLen = 32

	devSessionSecret = "dev-session-secret-not-for-production"
)

type Config struct {
	Addr          string
	Env           string
	SessionSecret string
	SessionTTL    time.Duration
	CacheTTL      time.Duration
	SubmitDelay   time.Duration

	// DatabaseURL selects Postgres storage; empty keeps everything in memory.
	DatabaseURL string
	// RedisAddr selects shared session storage; empty keeps sessions in memory.
	RedisAddr string

	ImageBackend string
	ImageDir     string
	S3Region     string
	S3Endpoint   string
	S3AccessKey  string
	S3SecretKey  string
	S3Bucket     string
	S3PublicURL  string

	MetricsToken  string
	AdminUsername string
	AdminPassword string
}

func (c *Config) LoadDefaults() {
	c.Addr = ":5000"
	c.Env = EnvDevelopment
	c.SessionSecret = devSessionSecret
	c.SessionTTL = 24 * time.Hour
	c.CacheTTL = 5 * time.Minute
	c.SubmitDelay = 0
	c.ImageBackend = ImagesFS
	c.ImageDir = "generated_images"
	c.S3Region = "us-east-1"
	c.AdminUsername = "admin"
	c.AdminPassword = "password"
}

func (c *Config) Production() bool { return c.Env == EnvProduction }

// Load applies defaults, then getenv, then args (without the program name).
func Load(args []string, getenv func(string) string) (*Config, error) {
	c := &Config{}
	c.LoadDefaults()

	if err := c.applyEnv(getenv); err != nil {
		return nil, err
	}
	if err := c.parseFlags(args); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v := getenv(key)
		if v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
		return nil
	}

	if port := getenv("PORT"); port != "" {
		if _, err := strconv.Atoi(port); err != nil {
			return fmt.Errorf("PORT: %q is not a number", port)
		}
		c.Addr = ":" + port
	}
	str("APP_ENV", &c.Env)
	str("SESSION_SECRET", &c.SessionSecret)
	str("DATABASE_URL", &c.DatabaseURL)
	str("REDIS_ADDR", &c.RedisAddr)
	str("IMAGE_BACKEND", &c.ImageBackend)
	str("IMAGE_DIR", &c.ImageDir)
	str("S3_REGION", &c.S3Region)
	str("S3_ENDPOINT", &c.S3Endpoint)
	str("S3_ACCESS_KEY", &c.S3AccessKey)
	str("S3_SECRET_KEY", &c.S3SecretKey)
	str("S3_BUCKET", &c.S3Bucket)
	str("S3_PUBLIC_URL", &c.S3PublicURL)
	str("METRICS_TOKEN", &c.MetricsToken)
	str("ADMIN_USERNAME", &c.AdminUsername)
	str("ADMIN_PASSWORD", &c.AdminPassword)

	return errors.Join(
		dur("SESSION_TTL", &c.SessionTTL),
		dur("CACHE_TTL", &c.CacheTTL),
		dur("SUBMIT_DELAY", &c.SubmitDelay),
	)
}

func (c *Config) parseFlags(args []string) error {
	fs := flag.NewFlagSet("site", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&c.Addr, "a", c.Addr, "listen address")
	fs.StringVar(&c.Env, "env", c.Env, "development or production")
	fs.StringVar(&c.DatabaseURL, "d", c.DatabaseURL, "postgres DSN, empty for in-memory storage")
	fs.StringVar(&c.RedisAddr, "redis", c.RedisAddr, "redis address for sessions, empty for in-memory")
	fs.StringVar(&c.ImageBackend, "images", c.ImageBackend, "image storage: fs or s3")
	fs.StringVar(&c.ImageDir, "image-dir", c.ImageDir, "directory for uploaded images")
	fs.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "product response cache ttl")
	fs.DurationVar(&c.SubmitDelay, "submit-delay", c.SubmitDelay, "artificial delay before storing contact/quote submissions")

	return fs.Parse(args)
}

func (c *Config) Validate() error {
	var errs []error

	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		errs = append(errs, fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.Production() {
		switch {
		case c.SessionSecret == devSessionSecret:
			errs = append(errs, errors.New("SESSION_SECRET must be set in production"))
		case len(c.SessionSecret) < minSecretLen:
			errs = append(errs, fmt.Errorf("SESSION_SECRET must be at least %d chars in production", minSecretLen))
		}
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("session ttl must be positive"))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, errors.New("cache ttl must be positive"))
	}
	if c.SubmitDelay < 0 {
		errs = append(errs, errors.New("submit delay must not be negative"))
	}

	switch c.ImageBackend {
	case ImagesFS:
		if c.ImageDir == "" {
			errs = append(errs, errors.New("image dir is required for the fs backend"))
		}
	case ImagesS3:
		if c.S3Bucket == "" || c.S3PublicURL == "" {
			errs = append(errs, errors.New("S3_BUCKET and S3_PUBLIC_URL are required for the s3 backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("image backend must be %q or %q, got %q", ImagesFS, ImagesS3, c.ImageBackend))
	}

	if c.AdminUsername == "" || c.AdminPassword == "" {
		errs = append(errs, errors.New("admin username and password are required"))
	}

	return errors.Join(errs...)
}
