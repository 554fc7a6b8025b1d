package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"sunatscraper/lib/archive"
	"sunatscraper/lib/restyutil"
	"sunatscraper/lib/scrapers/sunat"
	"sunatscraper/lib/scrapers/sunat/captcha"
	"sunatscraper/lib/telemetry"

	"github.com/spf13/cobra"
)

var (
	verbose       bool
	asJSON        bool
	manualCaptcha bool
	dbPath        string
	dumpDir       string
	baseURL       string
	twoCaptchaKey string
)

var rootCmd = &cobra.Command{
	Use:   "sunat-cli",
	Short: "sunat-cli looks taxpayers up on the SUNAT \"Consulta RUC\" portal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(verbose)
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging.")
	flags.BoolVar(&asJSON, "json", false, "Print results as JSON instead of a table.")
	flags.BoolVar(&manualCaptcha, "manual-captcha", false, "Ask on stdin for the CAPTCHA when no unattended solver succeeds.")
	flags.StringVar(&dbPath, "db", "", "Archive every record found into this sqlite database.")
	flags.StringVar(&dumpDir, "dump", "", "Write every portal request/response pair into this directory.")
	flags.StringVar(&baseURL, "base-url", sunat.DefaultBaseURL, "Base URL of the portal.")
	flags.StringVar(&twoCaptchaKey, "twocaptcha-key", os.Getenv("SUNAT_TWOCAPTCHA_KEY"), "API key of a 2captcha compatible solving service.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSolver() (captcha.Solver, error) {
	var chain captcha.Chain

	recognizer, err := captcha.NewTesseractRecognizer()
	switch {
	case err == nil:
		chain = append(chain, captcha.NewOCRSolver(recognizer))
	case errors.Is(err, captcha.ErrOCRUnavailable):
		slog.Debug("tesseract is not compiled in")
	default:
		return nil, err
	}
	if twoCaptchaKey != "" {
		chain = append(chain, captcha.NewExternalSolver(captcha.ExternalOptions{APIKey: twoCaptchaKey}))
	}
	if manualCaptcha {
		chain = append(chain, captcha.NewManualSolver(os.Stdin, os.Stderr))
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("%w: build with -tags tesseract, pass --twocaptcha-key or --manual-captcha", captcha.ErrNoSolver)
	}
	return chain, nil
}

func newClient() (*sunat.Client, error) {
	solver, err := newSolver()
	if err != nil {
		return nil, err
	}

	var dump restyutil.InstrumentOutput
	if dumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(dumpDir)
		if err != nil {
			return nil, err
		}
		dump = output
	}

	return sunat.NewClient(sunat.Options{
		BaseURL: baseURL,
		Solver:  solver,
		Dump:    dump,
	})
}

// openArchive returns nil when --db was not given.
func openArchive(ctx context.Context) (*archive.Archive, error) {
	if dbPath == "" {
		return nil, nil
	}
	return archive.Open(ctx, dbPath)
}
