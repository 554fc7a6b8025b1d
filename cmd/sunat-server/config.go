package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"sunatscraper/lib/configutil"
	"sunatscraper/lib/redisutil"
)

type PortalConfig struct {
	BaseURL           string  `json:"base_url"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
	BypassCloudflare  bool    `json:"bypass_cloudflare"`
	BatchConcurrency  int     `json:"batch_concurrency"`
	TimeoutSeconds    int     `json:"timeout_seconds"`
}

type CacheConfig struct {
	LocalSize       int `json:"local_size"`
	LocalTTLMinutes int `json:"local_ttl_minutes"`
	StoreTTLMinutes int `json:"store_ttl_minutes"`
}

type CaptchaConfig struct {
	// local OCR is only available in builds with the tesseract tag
	DisableTesseract bool   `json:"disable_tesseract"`
	TwoCaptchaKey    string `json:"twocaptcha_key"`
	TwoCaptchaURL    string `json:"twocaptcha_url"`
	TwoCaptchaPollMs int    `json:"twocaptcha_poll_ms"`
}

type Config struct {
	Addr                   string           `json:"addr"`
	AccessToken            string           `json:"access_token"`
	RequestTimeoutSeconds  int              `json:"request_timeout_seconds"`
	ShutdownTimeoutSeconds int              `json:"shutdown_timeout_seconds"`
	Portal                 PortalConfig     `json:"portal"`
	Cache                  CacheConfig      `json:"cache"`
	Redis                  redisutil.Config `json:"redis"`
	Captcha                CaptchaConfig    `json:"captcha"`
}

var defaultConfig = Config{
	Addr:                   ":8000",
	RequestTimeoutSeconds:  120,
	ShutdownTimeoutSeconds: 15,
}

// LoadConfig reads config.json5 (when present) and applies SUNAT_*
// environment overrides on top of it.
func LoadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}
	cfg, err = configutil.WithDefaults(cfg, defaultConfig)
	if err != nil {
		return Config{}, err
	}
	err = applyEnv(&cfg)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Addr = valueOrDefault("SUNAT_ADDR", cfg.Addr)
	cfg.AccessToken = valueOrDefault("SUNAT_ACCESS_TOKEN", cfg.AccessToken)
	cfg.Portal.BaseURL = valueOrDefault("SUNAT_BASE_URL", cfg.Portal.BaseURL)
	cfg.Redis.URL = valueOrDefault("SUNAT_REDIS_URL", cfg.Redis.URL)
	cfg.Captcha.TwoCaptchaKey = valueOrDefault("SUNAT_TWOCAPTCHA_KEY", cfg.Captcha.TwoCaptchaKey)

	if v := os.Getenv("SUNAT_REQUESTS_PER_SECOND"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid SUNAT_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.Portal.RequestsPerSecond = rps
	}
	if v := os.Getenv("SUNAT_BATCH_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SUNAT_BATCH_CONCURRENCY: %w", err)
		}
		cfg.Portal.BatchConcurrency = n
	}
	if v := os.Getenv("SUNAT_BYPASS_CLOUDFLARE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SUNAT_BYPASS_CLOUDFLARE: %w", err)
		}
		cfg.Portal.BypassCloudflare = b
	}
	if v := os.Getenv("SUNAT_DISABLE_TESSERACT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SUNAT_DISABLE_TESSERACT: %w", err)
		}
		cfg.Captcha.DisableTesseract = b
	}
	return nil
}

func valueOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
