package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tontt4/steamsync/internal/infra/store"
)

type Config struct {
	// Server
	Port        string
	AdminAPIKey string

	// Timing
	CacheTTL    time.Duration // generic upstream caches
	RateTTL     time.Duration // exchange-rate cache, multi-hour
	WakePeriod  time.Duration // scheduler wake cycle
	ItemDelay   time.Duration // pacing between items in a pass
	SteamDelay  time.Duration // pacing before each store request
	RetryDelay  time.Duration // between reference-price attempts
	MaxRetries  int
	PriceEps    float64 // materiality threshold
	GracePeriod time.Duration // shutdown drain

	// Upstream bases, overridable for tests and mirrors
	RatesBaseURL  string
	NBUBaseURL    string
	CBRBaseURL    string
	SteamBaseURL  string
	FunPayBaseURL string
	FunPayToken   string

	// Persistence
	DataDir      string
	ItemsPath    string
	SettingsPath string
}

// Load reads configuration from the environment, with an optional .env
// file alongside the binary.
func Load(log *slog.Logger) (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("config: .env not loaded", "err", err)
	}

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		CacheTTL:    getEnvAsDur("CACHE_TTL", time.Hour),
		RateTTL:     getEnvAsDur("RATE_TTL", 3*time.Hour),
		WakePeriod:  getEnvAsDur("WAKE_PERIOD", time.Minute),
		ItemDelay:   getEnvAsDur("ITEM_DELAY", 2*time.Second),
		SteamDelay:  getEnvAsDur("STEAM_DELAY", time.Second),
		RetryDelay:  getEnvAsDur("RETRY_DELAY", 2*time.Second),
		MaxRetries:  getEnvAsInt("MAX_RETRIES", 3),
		PriceEps:    getEnvAsFloat("PRICE_EPSILON", 0.01),
		GracePeriod: getEnvAsDur("SHUTDOWN_GRACE", 5*time.Second),

		RatesBaseURL:  getEnv("RATES_BASE_URL", "https://api.exchangerate-api.com"),
		NBUBaseURL:    getEnv("NBU_BASE_URL", "https://bank.gov.ua"),
		CBRBaseURL:    getEnv("CBR_BASE_URL", "https://www.cbr.ru"),
		SteamBaseURL:  getEnv("STEAM_BASE_URL", "https://store.steampowered.com"),
		FunPayBaseURL: getEnv("FUNPAY_BASE_URL", "https://api.funpay.com"),
		FunPayToken:   getEnv("FUNPAY_TOKEN", ""),

		DataDir: getEnv("DATA_DIR", ""),
	}

	if cfg.DataDir == "" {
		dir, err := store.DefaultDataDir()
		if err != nil {
			return Config{}, err
		}
		cfg.DataDir = dir
	}
	cfg.ItemsPath = getEnv("ITEMS_PATH", filepath.Join(cfg.DataDir, "lots.json"))
	cfg.SettingsPath = getEnv("SETTINGS_PATH", filepath.Join(cfg.DataDir, "settings.json"))
	return cfg, nil
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return def
}

func getEnvAsFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return def
}

func getEnvAsDur(key string, def time.Duration) time.Duration {
	s := getEnv(key, "")
	if s == "" {
		return def
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	// bare number means seconds, matching older deployments
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}
