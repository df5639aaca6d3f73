package utils

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Config struct {
	port         string
	databasePath string
	dev          bool

	sessionTTL time.Duration
	location   *time.Location

	discordAppToken string
	discordClientId string
	discordGuildID  string

	staticWebClientDir string
	corsAllowedOrigins []string
	seedFile           string

	digestCron               string
	metricCollectionInterval time.Duration
}

// DefaultConfig returns the configuration used when no env var overrides a value.
func DefaultConfig() *Config {
	return &Config{
		port:                     "8080",
		databasePath:             "./sqlite.db",
		sessionTTL:               7 * 24 * time.Hour,
		location:                 time.Local,
		corsAllowedOrigins:       []string{"http://localhost:3000"},
		digestCron:               "0 8 * * *",
		metricCollectionInterval: 15 * time.Second,
	}
}

// NewConfig reads the env, exiting on values that can't be used.
func NewConfig() *Config {
	c := DefaultConfig()

	if port := os.Getenv("PORT"); port != "" {
		c.port = port
	}
	slog.Debug("env", "PORT", c.port)

	if databasePath := os.Getenv("DATABASE_PATH"); databasePath != "" {
		c.databasePath = filepath.Clean(databasePath)
	}
	slog.Debug("env", "DATABASE_PATH", c.databasePath)

	c.dev = func() bool {
		dev, _ := strconv.ParseBool(os.Getenv("DEV"))
		if dev {
			slog.Warn("DEV is set, session secrets are returned in response bodies")
		}
		return dev
	}()

	c.sessionTTL = func() time.Duration {
		sessionTTL := os.Getenv("SESSION_TTL")
		if sessionTTL == "" {
			return c.sessionTTL
		}
		duration, err := time.ParseDuration(sessionTTL)
		if err != nil {
			slog.Error("invalid SESSION_TTL", "error", err)
			os.Exit(1)
		}
		slog.Debug("env", "SESSION_TTL", sessionTTL, "duration", duration)
		return duration
	}()

	c.location = func() *time.Location {
		timezoneStr := os.Getenv("TIMEZONE")
		var loc *time.Location
		var err error
		switch timezoneStr {
		case "":
			slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
			loc = time.Local
		case "UTC":
			loc = time.UTC
		default:
			loc, err = time.LoadLocation(timezoneStr)
			if err != nil {
				slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
				os.Exit(1)
			}
		}
		slog.Debug("env", "TIMEZONE", timezoneStr)
		return loc
	}()

	c.discordAppToken = func() string {
		discordAppToken := os.Getenv("DISCORD_APP_TOKEN")
		if len(discordAppToken) < 3 {
			slog.Error("DISCORD_APP_TOKEN is not set")
			os.Exit(1)
		}
		slog.Debug("env", "DISCORD_APP_TOKEN", discordAppToken[0:3]+"...")
		return discordAppToken
	}()
	c.discordClientId = func() string {
		discordClientId := os.Getenv("DISCORD_CLIENT_ID")
		if discordClientId == "" {
			slog.Error("DISCORD_CLIENT_ID is not set")
			os.Exit(1)
		}
		slog.Debug("env", "DISCORD_CLIENT_ID", discordClientId)
		return discordClientId
	}()
	// empty means the slash commands are registered globally
	c.discordGuildID = os.Getenv("DISCORD_GUILD_ID")
	slog.Debug("env", "DISCORD_GUILD_ID", c.discordGuildID)

	c.staticWebClientDir = func() string {
		staticWebClientDir := os.Getenv("STATIC_WEB_CLIENT_DIR")
		if staticWebClientDir == "" {
			slog.Warn("STATIC_WEB_CLIENT_DIR is not set, the web client won't be served")
			return ""
		}
		info, err := os.Stat(staticWebClientDir)
		if err != nil {
			slog.Error("can't get info of STATIC_WEB_CLIENT_DIR", "error", err)
			os.Exit(1)
		}
		if !info.IsDir() {
			slog.Error("STATIC_WEB_CLIENT_DIR is not a directory", "path", staticWebClientDir)
			os.Exit(1)
		}
		slog.Debug("env", "STATIC_WEB_CLIENT_DIR", staticWebClientDir)
		return filepath.Clean(staticWebClientDir)
	}()

	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.corsAllowedOrigins = c.corsAllowedOrigins[:0]
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.corsAllowedOrigins = append(c.corsAllowedOrigins, origin)
			}
		}
	}
	slog.Debug("env", "CORS_ALLOWED_ORIGINS", c.corsAllowedOrigins)

	c.seedFile = os.Getenv("SEED_FILE")
	slog.Debug("env", "SEED_FILE", c.seedFile)

	c.digestCron = func() string {
		digestCron := os.Getenv("DIGEST_CRON")
		if digestCron == "" {
			return c.digestCron
		}
		if _, err := cron.ParseStandard(digestCron); err != nil {
			slog.Error("invalid DIGEST_CRON", "value", digestCron, "error", err)
			os.Exit(1)
		}
		slog.Debug("env", "DIGEST_CRON", digestCron)
		return digestCron
	}()

	c.metricCollectionInterval = func() time.Duration {
		interval := os.Getenv("METRIC_INTERVAL")
		if interval == "" {
			return c.metricCollectionInterval
		}
		duration, err := time.ParseDuration(interval)
		if err != nil || duration <= 0 {
			slog.Error("invalid METRIC_INTERVAL", "value", interval, "error", err)
			os.Exit(1)
		}
		return duration
	}()

	return c
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get DATABASE_PATH env, default to ./sqlite.db
func (c *Config) GetDatabasePath() string {
	return c.databasePath
}

// Get DEV env
func (c *Config) GetDev() bool {
	return c.dev
}

// Get SESSION_TTL env, default to a week
func (c *Config) GetSessionTTL() time.Duration {
	return c.sessionTTL
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get DISCORD_APP_TOKEN env
func (c *Config) GetDiscordAppToken() string {
	return c.discordAppToken
}

// Get DISCORD_CLIENT_ID env
func (c *Config) GetDiscordClientId() string {
	return c.discordClientId
}

// Get DISCORD_GUILD_ID env
func (c *Config) GetDiscordGuildID() string {
	return c.discordGuildID
}

// Get STATIC_WEB_CLIENT_DIR env, empty when the web client isn't served
func (c *Config) GetStaticWebClientDir() string {
	return c.staticWebClientDir
}

// Get CORS_ALLOWED_ORIGINS env, comma separated
func (c *Config) GetCorsAllowedOrigins() []string {
	return c.corsAllowedOrigins
}

// Get SEED_FILE env
func (c *Config) GetSeedFile() string {
	return c.seedFile
}

// Get DIGEST_CRON env, default to 8am daily
func (c *Config) GetDigestCron() string {
	return c.digestCron
}

// Get METRIC_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
