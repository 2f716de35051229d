// Package config builds the single Config value the portal runs with.
//
// Values are layered, later layers winning:
//
//	defaults → YAML file (--config / PORTAL_CONFIG) → environment → flags
//
// A .env file, when present, is folded into the environment first by
// LoadDotEnv.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMySQL = "mysql"
	DriverPgx   = "pgx"
)

type Database struct {
	Driver          string        `yaml:"driver"`
	URL             string        `yaml:"url"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Config struct {
	Port            string        `yaml:"port"`
	Database        Database      `yaml:"database"`
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	TrustedProxies  []string      `yaml:"trusted_proxies"`
	Redis           Redis         `yaml:"redis"`
	LoginRateLimit  int           `yaml:"login_rate_limit"`
	LoginRateWindow time.Duration `yaml:"login_rate_window"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
}

// Defaults are development values. JWTSecret is deliberately left empty so
// a deployment cannot start without choosing one.
func Defaults() *Config {
	return &Config{
		Port: "4000",
		Database: Database{
			Driver:          DriverMySQL,
			Host:            "127.0.0.1",
			Port:            3306,
			User:            "root",
			Name:            "cloudportal",
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: 300 * time.Second,
		},
		TokenTTL:        24 * time.Hour,
		BcryptCost:      bcrypt.DefaultCost,
		CORSOrigins:     []string{"http://localhost:3000"},
		LoginRateLimit:  10,
		LoginRateWindow: time.Minute,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load builds the configuration from os.Args-style arguments (without the
// program name) and the process environment.
func Load(args []string) (*Config, error) {
	return load(args, os.LookupEnv)
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg, err := loadUnvalidated(args, lookup)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadUnvalidated(args []string, lookup func(string) (string, bool)) (*Config, error) {
	fl, err := parseFlags(args)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()

	path := fl.configPath
	if path == "" {
		path, _ = lookup("PORTAL_CONFIG")
	}
	if path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	fl.apply(cfg)
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadDatabase is Load for tools that only talk to the database; it skips
// the server-only checks such as the JWT secret.
func LoadDatabase(args []string) (*Config, error) {
	cfg, err := loadUnvalidated(args, os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if errs := cfg.validateDatabase(); len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	errs := c.validateDatabase()

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.Redis.Addr != "" && (c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0) {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive when REDIS_ADDR is set"))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) validateDatabase() []error {
	var errs []error
	switch c.Database.Driver {
	case DriverMySQL:
	case DriverPgx:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the pgx driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	return errs
}

// TrustedProxyPrefixes parses TrustedProxies. Entries may be single
// addresses or CIDR ranges.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, s := range c.TrustedProxies {
		if strings.Contains(s, "/") {
			p, err := netip.ParsePrefix(s)
			if err != nil {
				return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
			}
			out = append(out, p.Masked())
			continue
		}
		a, err := netip.ParseAddr(s)
		if err != nil {
			return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
		}
		a = a.Unmap()
		out = append(out, netip.PrefixFrom(a, a.BitLen()))
	}
	return out, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
