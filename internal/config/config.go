// Package config loads runtime settings from .env files, an optional YAML file and the
// process environment.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"comicgallery/internal/platform/crypto"
)

// Insecure fallbacks kept for local development only.
const (
	DefaultAdminPassword = "changeme"
	DefaultSessionSecret = "dev-secret-change-in-production"
)

const (
	StoreJSON     = "json"
	StoreBadger   = "badger"
	StorePostgres = "postgres"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Store   StoreConfig   `yaml:"store"`
	Storage StorageConfig `yaml:"storage"`
	NATS    NATSConfig    `yaml:"nats"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds listener settings. TrustedProxies lists IPs or CIDRs whose
// X-Forwarded-For is believed; empty means none.
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"APP_ADDR" env-default:":8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"CORS_ORIGINS" env-separator:","`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"10485760"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES" env-default:"1048576"`
	EnableHSTS      bool          `yaml:"enable_hsts" env:"ENABLE_HSTS" env-default:"false"`
	TrustedProxies  []string      `yaml:"trusted_proxies" env:"TRUSTED_PROXIES" env-separator:","`
}

type AuthConfig struct {
	AdminPassword     string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	AdminPasswordHash string        `yaml:"admin_password_hash" env:"ADMIN_PASSWORD_HASH"`
	SessionSecret     string        `yaml:"session_secret" env:"SESSION_SECRET"`
	SessionTTL        time.Duration `yaml:"session_ttl" env:"SESSION_TTL" env-default:"24h"`
	CookieSecure      bool          `yaml:"cookie_secure" env:"COOKIE_SECURE" env-default:"false"`
	LoginRatePerMin   int           `yaml:"login_rate_per_min" env:"LOGIN_RATE_PER_MIN" env-default:"10"`
}

type StoreConfig struct {
	Driver  string        `yaml:"driver" env:"STORE_DRIVER" env-default:"json"`
	DataDir string        `yaml:"data_dir" env:"DATA_DIR" env-default:"./data"`
	DSN     string        `yaml:"dsn" env:"DB_DSN"`
	Timeout time.Duration `yaml:"timeout" env:"STORE_TIMEOUT" env-default:"5s"`
}

type StorageConfig struct {
	Endpoint      string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Region        string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	Bucket        string `yaml:"bucket" env:"S3_BUCKET"`
	AccessKey     string `yaml:"access_key" env:"S3_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"S3_SECRET_KEY"`
	PublicBaseURL string `yaml:"public_base_url" env:"S3_PUBLIC_BASE_URL"`
	PublicRead    bool   `yaml:"public_read" env:"S3_PUBLIC_READ" env-default:"false"`
}

type NATSConfig struct {
	URL     string `yaml:"url" env:"NATS_URL"`
	Subject string `yaml:"subject" env:"NATS_SUBJECT" env-default:"comics.changed"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// Load reads .env and .env.local (never overriding variables already set), then the YAML
// file named by CONFIG_PATH if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	var cfg Config
	var err error
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.applyFallbacks()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyFallbacks() {
	if c.Auth.AdminPassword == "" && c.Auth.AdminPasswordHash == "" {
		c.Auth.AdminPassword = DefaultAdminPassword
	}
	if c.Auth.SessionSecret == "" {
		c.Auth.SessionSecret = DefaultSessionSecret
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
}

// Validate reports settings that would fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case StoreJSON, StoreBadger:
		if c.Store.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the "+c.Store.Driver+" store"))
		}
	case StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver))
	}

	if c.Auth.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Auth.LoginRatePerMin <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_PER_MIN must be positive"))
	}
	if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
		errs = append(errs, errors.New("S3_ACCESS_KEY and S3_SECRET_KEY must be set together"))
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required when S3_ENDPOINT is set"))
	}
	if h := c.Auth.AdminPasswordHash; h != "" && !crypto.IsBcryptHash(h) {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH is not a bcrypt hash (generate one with cmd/hashpass)"))
	}
	if _, err := c.Server.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_BYTES must be positive"))
	}
	return errors.Join(errs...)
}

// InsecureDefaults lists the fallbacks in use so main can warn about them.
func (c *Config) InsecureDefaults() []string {
	var out []string
	if c.Auth.AdminPasswordHash == "" && c.Auth.AdminPassword == DefaultAdminPassword {
		out = append(out, "ADMIN_PASSWORD")
	}
	if c.Auth.SessionSecret == DefaultSessionSecret {
		out = append(out, "SESSION_SECRET")
	}
	return out
}

// UploadsEnabled reports whether enough object storage settings are present.
func (c *Config) UploadsEnabled() bool {
	return c.Storage.Bucket != ""
}

// TrustedProxyPrefixes parses TrustedProxies; a bare address becomes a single-host prefix.
func (s ServerConfig) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(s.TrustedProxies))
	for _, raw := range s.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}
