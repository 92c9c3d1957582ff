// Package config loads application configuration from environment variables
// and the optional TOML voting policy file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/meritbot/internal/domain/model"
)

const envPrefix = "MERITBOT_"

// Store backends.
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	GitHubToken     string
	Repo            string
	BotLogin        string
	Production      bool
	PollInterval    time.Duration
	BaseWindow      time.Duration
	ExtendedWindow  time.Duration
	TopVoters       int
	TopContributors int
	ListenAddr      string

	Store       string
	DBPath      string
	DatabaseURL string

	MeritocracyPath string
	RestartMode     string
	StartupCommand  string

	PolicyFile string
	Policy     model.VotingPolicy

	LogLevel  string
	LogFormat string
}

// HasGitHubCredentials reports whether a token is configured. Without one
// the bot can read public data but every write fails.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from MERITBOT_* environment variables and returns
// a validated Config. MERITBOT_REPO is required; everything else has a
// default. When MERITBOT_POLICY_FILE is set the voting policy is read from
// it, otherwise model.DefaultVotingPolicy applies.
func Load() (*Config, error) {
	cfg := &Config{
		GitHubToken:     os.Getenv(envPrefix + "GITHUB_TOKEN"),
		Repo:            os.Getenv(envPrefix + "REPO"),
		BotLogin:        stringEnv("BOT_LOGIN", "chaosbot"),
		ListenAddr:      stringEnv("LISTEN_ADDR", "127.0.0.1:8080"),
		Store:           strings.ToLower(stringEnv("STORE", StoreSQLite)),
		DBPath:          stringEnv("DB_PATH", "meritbot.db"),
		DatabaseURL:     os.Getenv(envPrefix + "DATABASE_URL"),
		MeritocracyPath: stringEnv("MERITOCRACY_PATH", "server/meritocracy.json"),
		RestartMode:     stringEnv("RESTART_MODE", "exec"),
		StartupCommand:  os.Getenv(envPrefix + "STARTUP_COMMAND"),
		PolicyFile:      os.Getenv(envPrefix + "POLICY_FILE"),
		LogLevel:        stringEnv("LOG_LEVEL", "info"),
		LogFormat:       strings.ToLower(stringEnv("LOG_FORMAT", "text")),
	}

	var err error
	if cfg.Production, err = boolEnv("PRODUCTION", false); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = durationEnv("POLL_INTERVAL", 3*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BaseWindow, err = durationEnv("BASE_WINDOW", 3*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ExtendedWindow, err = durationEnv("EXTENDED_WINDOW", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TopVoters, err = intEnv("TOP_VOTERS", 10); err != nil {
		return nil, err
	}
	if cfg.TopContributors, err = intEnv("TOP_CONTRIBUTORS", 10); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.Policy = model.DefaultVotingPolicy()
	if cfg.PolicyFile != "" {
		policy, err := LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return nil, err
		}
		cfg.Policy = policy
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Repo == "" {
		return fmt.Errorf("%sREPO is required", envPrefix)
	}
	if owner, name, ok := strings.Cut(c.Repo, "/"); !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return fmt.Errorf("%sREPO has invalid value %q: expected owner/repo", envPrefix, c.Repo)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%sPOLL_INTERVAL must be positive, got %s", envPrefix, c.PollInterval)
	}
	if c.BaseWindow < 0 || c.ExtendedWindow < 0 {
		return fmt.Errorf("%sBASE_WINDOW and %sEXTENDED_WINDOW must not be negative", envPrefix, envPrefix)
	}
	if c.TopVoters < 0 || c.TopContributors < 0 {
		return fmt.Errorf("%sTOP_VOTERS and %sTOP_CONTRIBUTORS must not be negative", envPrefix, envPrefix)
	}

	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%sDATABASE_URL is required when %sSTORE is postgres", envPrefix, envPrefix)
		}
	default:
		return fmt.Errorf("%sSTORE has invalid value %q: expected sqlite or postgres", envPrefix, c.Store)
	}

	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT has invalid value %q: expected text or json", envPrefix, c.LogFormat)
	}

	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%sLOG_LEVEL has invalid value %q: %w", envPrefix, c.LogLevel, err)
	}
	return level, nil
}

func stringEnv(key, def string) string {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s has invalid duration %q: %w", envPrefix, key, v, err)
	}
	return parsed, nil
}

func intEnv(key string, def int) (int, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s%s has invalid integer %q: %w", envPrefix, key, v, err)
	}
	return parsed, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(envPrefix + key)
	if !ok || v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s%s has invalid boolean %q: %w", envPrefix, key, v, err)
	}
	return parsed, nil
}
