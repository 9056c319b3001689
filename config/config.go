package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the dashboard reads from its environment.
type Config struct {
	ListenAddr     string
	JuryURL        string
	SessionSecret  string
	AdminJWTSecret string
	LogLevel       string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	StatsStrict       bool
	StatsFetchTimeout time.Duration

	CORSAllowedOrigins []string
	MountRatePerSecond float64
	MountBurst         int
}

var defaults = map[string]interface{}{
	"listen_addr":           ":8181",
	"jury_url":              "http://localhost:8000/api",
	"session_secret":        "",
	"admin_jwt_secret":      "",
	"log_level":             "info",
	"db_host":               "localhost",
	"db_port":               "5432",
	"db_user":               "postgres",
	"db_password":           "",
	"db_name":               "jury_dashboard",
	"stats_strict":          false,
	"stats_fetch_timeout":   "10s",
	"cors_allowed_origins":  "http://localhost:3000",
	"mount_rate_per_second": 2.0,
	"mount_burst":           5,
}

// Load reads .env (if present), then the optional config file, then the
// process environment. Later sources win.
func Load(configFile string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}
	v.AutomaticEnv()

	cfg := Config{
		ListenAddr:     v.GetString("listen_addr"),
		JuryURL:        strings.TrimRight(v.GetString("jury_url"), "/"),
		SessionSecret:  v.GetString("session_secret"),
		AdminJWTSecret: v.GetString("admin_jwt_secret"),
		LogLevel:       v.GetString("log_level"),

		DBHost:     v.GetString("db_host"),
		DBPort:     v.GetString("db_port"),
		DBUser:     v.GetString("db_user"),
		DBPassword: v.GetString("db_password"),
		DBName:     v.GetString("db_name"),

		StatsStrict:       v.GetBool("stats_strict"),
		StatsFetchTimeout: v.GetDuration("stats_fetch_timeout"),

		CORSAllowedOrigins: splitList(v.GetString("cors_allowed_origins")),
		MountRatePerSecond: v.GetFloat64("mount_rate_per_second"),
		MountBurst:         v.GetInt("mount_burst"),
	}
	if cfg.JuryURL == "" {
		return Config{}, errors.New("JURY_URL must not be empty")
	}
	if cfg.StatsFetchTimeout <= 0 {
		return Config{}, errors.New("STATS_FETCH_TIMEOUT must be positive")
	}
	return cfg, nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c Config) ValidateServer() error {
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET environmental variable not defined")
	}
	if c.AdminJWTSecret == "" {
		return errors.New("ADMIN_JWT_SECRET environmental variable not defined")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
