package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DBDriver     string // sqlite | pgx
	DBDSN        string
	LogFile      string
	SeedDemo     bool
	AdminPath    string
	AdminUser    string
	AdminPass    string
	CookieSecure bool
	Notify       NotifyConfig
}

// NotifyConfig points at the WhatsApp webhook. Any empty field disables notifications.
type NotifyConfig struct {
	URL        string
	APIKey     string
	AdminPhone string
	Timeout    time.Duration
}

func (n NotifyConfig) Enabled() bool {
	return n.URL != "" && n.APIKey != "" && n.AdminPhone != ""
}

func Load() Config {
	// .env is optional; real env vars win.
	_ = godotenv.Load()

	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite"),
		DBDSN:        getEnv("DB_DSN", "artyra.db"),
		LogFile:      getEnv("LOG_FILE", "./artyra.log"),
		SeedDemo:     getBool("SEED_DEMO", true),
		AdminPath:    normalizePath(getEnv("ADMIN_PATH", "/admin")),
		AdminUser:    getEnv("ADMIN_USERNAME", "admin"),
		AdminPass:    os.Getenv("ADMIN_PASSWORD"),
		CookieSecure: getBool("COOKIE_SECURE", false),
		Notify: NotifyConfig{
			URL:        os.Getenv("NOTIFY_URL"),
			APIKey:     os.Getenv("NOTIFY_API_KEY"),
			AdminPhone: os.Getenv("NOTIFY_ADMIN_PHONE"),
			Timeout:    getDuration("NOTIFY_TIMEOUT", 10*time.Second),
		},
	}
	log.Printf("[config] PORT=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s ADMIN_PATH=%s NOTIFY=%t",
		cfg.Port, cfg.DBDriver, mask(cfg.DBDSN), cfg.LogFile, cfg.AdminPath, cfg.Notify.Enabled())
	return cfg
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func normalizePath(p string) string {
	p = "/" + strings.Trim(p, "/")
	if p == "/" {
		return "/admin"
	}
	return p
}

// mask hides credentials embedded in a URL-style DSN.
func mask(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	return dsn[:scheme+3] + "***" + dsn[at:]
}
