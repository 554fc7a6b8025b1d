package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"time"

	"sunatscraper/lib/redisutil"
	"sunatscraper/lib/scrapers/sunat"
	"sunatscraper/lib/scrapers/sunat/captcha"
	"sunatscraper/lib/scrapers/sunat/pagecache"
	"sunatscraper/lib/serviceutil"
	"sunatscraper/lib/telemetry"
	"sunatscraper/services/sunatapi"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "Path to the configuration file.")
	flag.Parse()

	ctx, cancel := serviceutil.SignalContext()
	defer cancel()

	dump := InitTelemetry(ctx, *verbose)

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	cache, err := initCache(ctx, cfg)
	if err != nil {
		serviceutil.Fatal("init page cache", err)
	}
	solver, closeSolver, err := initSolver(cfg.Captcha)
	if err != nil {
		serviceutil.Fatal("init captcha solver", err)
	}
	defer closeSolver()

	client, err := sunat.NewClient(sunat.Options{
		BaseURL:           cfg.Portal.BaseURL,
		Timeout:           seconds(cfg.Portal.TimeoutSeconds),
		RequestsPerSecond: cfg.Portal.RequestsPerSecond,
		Burst:             cfg.Portal.Burst,
		BypassCloudflare:  cfg.Portal.BypassCloudflare,
		BatchConcurrency:  cfg.Portal.BatchConcurrency,
		Cache:             cache,
		Solver:            solver,
		Telemetry:         telemetry.SlogAPI{},
		Dump:              dump,
	})
	if err != nil {
		serviceutil.Fatal("init sunat client", err)
	}

	api := sunatapi.New(client, sunatapi.NewMetrics(), sunatapi.Options{
		AccessToken:    cfg.AccessToken,
		RequestTimeout: seconds(cfg.RequestTimeoutSeconds),
	}, telemetry.SlogAPI{})

	err = serviceutil.StartHttpServer(ctx, cfg.Addr, api.Routes(), seconds(cfg.ShutdownTimeoutSeconds))
	if err != nil {
		serviceutil.Fatal("serve http", err)
	}
}

func initCache(ctx context.Context, cfg Config) (*pagecache.Cache, error) {
	opts := pagecache.Options{
		LocalSize: cfg.Cache.LocalSize,
		LocalTTL:  minutes(cfg.Cache.LocalTTLMinutes),
		StoreTTL:  minutes(cfg.Cache.StoreTTLMinutes),
	}

	rdb, err := redisutil.Open(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		slog.InfoContext(ctx, "using redis page cache")
		opts.Store = pagecache.NewRedisStore(rdb)
	}
	return pagecache.New(opts, telemetry.SlogAPI{})
}

// initSolver builds the unattended solver chain, local OCR first. Manual
// entry is never offered here.
func initSolver(cfg CaptchaConfig) (captcha.Solver, func(), error) {
	var chain captcha.Chain
	closeFn := func() {}

	if !cfg.DisableTesseract {
		recognizer, err := captcha.NewTesseractRecognizer()
		switch {
		case err == nil:
			chain = append(chain, captcha.NewOCRSolver(recognizer))
			closeFn = func() { recognizer.Close() }
		case errors.Is(err, captcha.ErrOCRUnavailable):
			slog.Warn("tesseract is not compiled in, skipping local ocr")
		default:
			return nil, nil, err
		}
	}
	if cfg.TwoCaptchaKey != "" {
		chain = append(chain, captcha.NewExternalSolver(captcha.ExternalOptions{
			APIKey:       cfg.TwoCaptchaKey,
			BaseURL:      cfg.TwoCaptchaURL,
			PollInterval: time.Duration(cfg.TwoCaptchaPollMs) * time.Millisecond,
		}))
	}

	if len(chain) == 0 {
		closeFn()
		return nil, nil, captcha.ErrNoSolver
	}
	return chain, closeFn, nil
}
