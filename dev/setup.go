package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	devenv "sunatscraper/dev/env"
	"sunatscraper/lib/archive"
)

func CreateLocalStack() error {
	c := exec.Command("docker", "compose", "up", "-d")
	c.Dir = filepath.Join("dev", "local_stack")
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	fmt.Println("$ docker compose up -d")
	return c.Run()
}

func CreateArchive(ctx context.Context) error {
	path, err := devenv.ResolvePath(filepath.Join("<dev_state>", "archive.db"))
	if err != nil {
		return err
	}
	db, err := archive.Open(ctx, path)
	if err != nil {
		return err
	}
	slog.Info("archive ready", "path", path)
	return db.Close()
}

const serverConfig = `{
  addr: ":8000",
  portal: { requests_per_second: 2, batch_concurrency: 4 },
  redis: { url: "redis://localhost:6379/0" },
  captcha: { twocaptcha_key: "" },
}
`

const telemetryConfig = `{
  otlp: {
    traces: { grpc_endpoint: "localhost:4317" },
    metrics: { grpc_endpoint: "localhost:4317" },
  },
}
`

const liveConfig = `{
  base_url: "https://e-consultaruc.sunat.gob.pe",
  twocaptcha_key: "",
  known_ruc: "20131312955",
  known_name: "SUPERINTENDENCIA NACIONAL DE ADUANAS Y DE ADMINISTRACION TRIBUTARIA",
}
`

// writeTemplate writes contents to path unless something is already there.
func writeTemplate(path, contents string) error {
	_, err := os.Stat(path)
	if err == nil {
		slog.Info("config already present", "path", path)
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}
	slog.Info("writing config template", "path", path)
	return os.WriteFile(path, []byte(contents), 0o644)
}

func CreateConfigTemplates() error {
	root, err := devenv.WorkspaceRoot()
	if err != nil {
		return err
	}
	live, err := devenv.ResolvePath(filepath.Join("<dev_state>", "live_portal.json5"))
	if err != nil {
		return err
	}

	templates := map[string]string{
		filepath.Join(root, "config.json5"):    serverConfig,
		filepath.Join(root, "telemetry.json5"): telemetryConfig,
		live:                                   liveConfig,
	}
	for path, contents := range templates {
		err = writeTemplate(path, contents)
		if err != nil {
			return err
		}
	}
	return nil
}
