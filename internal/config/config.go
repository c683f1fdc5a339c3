// Package config holds the server settings and their command-line flags.
//
// Every flag is bound to an environment variable. An optional .env file is
// loaded into the environment before flags are parsed, so the precedence is
// flag, then process environment, then .env file, then default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/mmynk/billsplit/internal/notify"
)

// DefaultEnvFile is loaded when no --env-file is given. It may be absent.
const DefaultEnvFile = ".env"

// Config is the full set of server settings.
type Config struct {
	EnvFile        string
	BindAddress    string `validate:"required,hostname_port"`
	DatabasePath   string `validate:"required"`
	JWTSecret      string `validate:"required"`
	TokenTTL       time.Duration
	NodeID         int64 `validate:"gte=0,lte=1023"`
	AllowedOrigins cli.StringSlice
	LogLevel       string        `validate:"oneof=debug info warn error"`
	LogFormat      string        `validate:"oneof=text json"`
	NotifyBuffer   int           `validate:"gt=0"`
	HealthInterval time.Duration `validate:"gt=0"`

	// AsOf is the sweep date (YYYY-MM-DD); empty means today.
	AsOf string `validate:"omitempty,datetime=2006-01-02"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		EnvFile:        DefaultEnvFile,
		BindAddress:    "localhost:8080",
		DatabasePath:   "./data/bills.db",
		TokenTTL:       24 * time.Hour,
		NodeID:         1,
		AllowedOrigins: *cli.NewStringSlice("*"),
		LogLevel:       "info",
		LogFormat:      "text",
		NotifyBuffer:   notify.DefaultBuffer,
		HealthInterval: 10 * time.Second,
	}
}

// Flags are shared by every subcommand.
func (c *Config) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "env-file",
			Usage:       "optional dotenv file loaded before flags are read",
			EnvVars:     []string{"ENV_FILE"},
			Value:       c.EnvFile,
			Destination: &(c.EnvFile),
		},
		&cli.StringFlag{
			Name:        "db-path",
			EnvVars:     []string{"DB_PATH"},
			Value:       c.DatabasePath,
			Destination: &(c.DatabasePath),
		},
		&cli.Int64Flag{
			Name:        "node-id",
			Usage:       "snowflake node id used for bill codes (0-1023)",
			EnvVars:     []string{"NODE_ID"},
			Value:       c.NodeID,
			Destination: &(c.NodeID),
		},
		&cli.StringFlag{
			Name:        "log-level",
			EnvVars:     []string{"LOG_LEVEL"},
			Value:       c.LogLevel,
			Destination: &(c.LogLevel),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "text or json",
			EnvVars:     []string{"LOG_FORMAT"},
			Value:       c.LogFormat,
			Destination: &(c.LogFormat),
		},
		&cli.StringFlag{
			Name:        "jwt-secret",
			EnvVars:     []string{"JWT_SECRET"},
			Value:       c.JWTSecret,
			Destination: &(c.JWTSecret),
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			EnvVars:     []string{"TOKEN_TTL"},
			Value:       c.TokenTTL,
			Destination: &(c.TokenTTL),
		},
	}
}

// ServeFlags are only meaningful to the serve command.
func (c *Config) ServeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bind-address",
			EnvVars:     []string{"BIND_ADDRESS"},
			Value:       c.BindAddress,
			Destination: &(c.BindAddress),
		},
		&cli.StringSliceFlag{
			Name:        "allowed-origins",
			Usage:       "CORS origins allowed to call the API",
			EnvVars:     []string{"ALLOWED_ORIGINS"},
			Value:       cli.NewStringSlice(c.AllowedOrigins.Value()...),
			Destination: &(c.AllowedOrigins),
		},
		&cli.IntFlag{
			Name:        "notify-buffer",
			Usage:       "events buffered per notification subscriber",
			EnvVars:     []string{"NOTIFY_BUFFER"},
			Value:       c.NotifyBuffer,
			Destination: &(c.NotifyBuffer),
		},
		&cli.DurationFlag{
			Name:        "health-interval",
			EnvVars:     []string{"HEALTH_INTERVAL"},
			Value:       c.HealthInterval,
			Destination: &(c.HealthInterval),
		},
	}
}

// SweepFlags are only meaningful to the sweep command.
func (c *Config) SweepFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "as-of",
			Usage:       "sweep date as YYYY-MM-DD (default: today)",
			EnvVars:     []string{"SWEEP_AS_OF"},
			Value:       c.AsOf,
			Destination: &(c.AsOf),
		},
	}
}

// Validate checks the settings, skipping the named fields a command does not use.
func (c *Config) Validate(except ...string) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.StructExcept(c, except...); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is only an error when it was
// asked for explicitly.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) && path == DefaultEnvFile {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// EnvFileFromArgs finds the --env-file value in raw arguments, falling back to
// fallback. It lets the file be loaded before the flag parser reads EnvVars.
func EnvFileFromArgs(args []string, fallback string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		name, value, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
		if !strings.HasPrefix(arg, "-") || name != "env-file" {
			continue
		}
		if hasValue {
			return value
		}
		if i+1 < len(args) {
			return args[i+1]
		}
	}
	return fallback
}
