package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func create(ctx context.Context, recreate, withStack bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0o755)
	if err != nil {
		return err
	}

	if withStack {
		err = CreateLocalStack()
		if err != nil {
			return fmt.Errorf("local stack: %w", err)
		}
	}
	err = CreateArchive(ctx)
	if err != nil {
		return err
	}
	err = CreateConfigTemplates()
	if err != nil {
		return err
	}
	slog.Info("the live portal tests read dev/.state/live_portal.json5, fill in a captcha key or build with -tags tesseract to run them.")
	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	stack := flag.Bool("stack", true, "start redis and the otel collector with docker compose")
	flag.Parse()

	err := create(context.Background(), *recreate, *stack)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
