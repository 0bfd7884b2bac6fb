package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string

	DatabaseURL       string // built from DB_* when DATABASE_URL is empty
	DBSimpleProtocol  bool
	DBMaxConns        int32
	GoogleAPIKey      string
	GeminiModel       string
	JWTSecret         string
	JWTTTL            time.Duration
	CORSAllowedOrigin []string
	LogLevel          string
	ErrorLogFile      string
	ThreadMemoryTTL   time.Duration
	GinMode           string
}

// AIEnabled reports whether a Gemini key was configured.
func (c Config) AIEnabled() bool { return c.GoogleAPIKey != "" }

func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8000")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SIMPLE_PROTOCOL", false)
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ERROR_LOG_FILE", "logs.txt")
	v.SetDefault("THREAD_MEMORY_TTL", "24h")
	v.SetDefault("GIN_MODE", "release")

	cfg := Config{
		Port:             v.GetString("PORT"),
		DBSimpleProtocol: v.GetBool("DB_SIMPLE_PROTOCOL"),
		DBMaxConns:       v.GetInt32("DB_MAX_CONNS"),
		GoogleAPIKey:     v.GetString("GOOGLE_API_KEY"),
		GeminiModel:      v.GetString("GEMINI_MODEL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ErrorLogFile:     v.GetString("ERROR_LOG_FILE"),
		GinMode:          v.GetString("GIN_MODE"),
	}

	var err error
	if cfg.JWTTTL, err = time.ParseDuration(v.GetString("JWT_TTL")); err != nil {
		return Config{}, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.ThreadMemoryTTL, err = time.ParseDuration(v.GetString("THREAD_MEMORY_TTL")); err != nil {
		return Config{}, fmt.Errorf("invalid THREAD_MEMORY_TTL: %w", err)
	}
	for _, o := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigin = append(cfg.CORSAllowedOrigin, o)
		}
	}

	cfg.DatabaseURL = v.GetString("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		user, name := v.GetString("DB_USERNAME"), v.GetString("DB_NAME")
		if user == "" || name == "" {
			return Config{}, fmt.Errorf("missing required env: DATABASE_URL or DB_USERNAME and DB_NAME")
		}
		cfg.DatabaseURL = BuildDSN(user, v.GetString("DB_PASSWORD"), v.GetString("DB_HOST"),
			v.GetString("DB_PORT"), name, v.GetString("DB_SSLMODE"))
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("missing required env: JWT_SECRET")
	}
	return cfg, nil
}

// BuildDSN assembles a postgres:// URL, escaping the credentials.
func BuildDSN(user, password, host, port, name, sslmode string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + name,
	}
	if password != "" {
		u.User = url.UserPassword(user, password)
	} else {
		u.User = url.User(user)
	}
	if sslmode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(sslmode)
	}
	return u.String()
}
