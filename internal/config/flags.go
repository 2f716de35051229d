package config

import (
	"time"

	"github.com/spf13/pflag"
)

type flagValues struct {
	fs         *pflag.FlagSet
	configPath string

	port        string
	driver      string
	databaseURL string
	jwtSecret   string
	tokenTTL    time.Duration
	logLevel    string
	autoMigrate bool
}

// parseFlags reads the server flags. Only flags that were set explicitly
// override earlier layers.
//
//	--config string         YAML config file
//	--port string           listen port
//	--db-driver string      mysql or pgx
//	--database-url string   driver DSN
//	--jwt-secret string     HMAC secret for tokens
//	--token-ttl duration    token lifetime
//	--log-level string      logrus level
//	--auto-migrate          apply migrations at startup
func parseFlags(args []string) (*flagValues, error) {
	v := &flagValues{}
	fs := pflag.NewFlagSet("portal", pflag.ContinueOnError)

	fs.StringVar(&v.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&v.port, "port", "", "port to listen on")
	fs.StringVar(&v.driver, "db-driver", "", "database driver (mysql or pgx)")
	fs.StringVar(&v.databaseURL, "database-url", "", "database DSN")
	fs.StringVar(&v.jwtSecret, "jwt-secret", "", "HMAC secret for signing tokens")
	fs.DurationVar(&v.tokenTTL, "token-ttl", 0, "token lifetime")
	fs.StringVar(&v.logLevel, "log-level", "", "log level")
	fs.BoolVar(&v.autoMigrate, "auto-migrate", false, "apply database migrations at startup")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	v.fs = fs
	return v, nil
}

func (v *flagValues) apply(cfg *Config) {
	if v.fs.Changed("port") {
		cfg.Port = v.port
	}
	if v.fs.Changed("db-driver") {
		cfg.Database.Driver = v.driver
	}
	if v.fs.Changed("database-url") {
		cfg.Database.URL = v.databaseURL
	}
	if v.fs.Changed("jwt-secret") {
		cfg.JWTSecret = v.jwtSecret
	}
	if v.fs.Changed("token-ttl") {
		cfg.TokenTTL = v.tokenTTL
	}
	if v.fs.Changed("log-level") {
		cfg.LogLevel = v.logLevel
	}
	if v.fs.Changed("auto-migrate") {
		cfg.AutoMigrate = v.autoMigrate
	}
}
