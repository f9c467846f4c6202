package config

import (
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_USERNAME", "APP_PASSWORD_HASH", "SESSION_SECRET",
		"PORT", "GIN_MODE", "CORS_ALLOWED_ORIGINS",
		"WORKER_CONCURRENCY", "QUEUE_CAPACITY", "CONVERT_TIMEOUT_SECONDS",
		"CONVERTER_URL", "CONVERTER_CMD", "CONVERTER_ARGS",
		"MAX_SOURCE_SIZE", "MAX_PAGES",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("unexpected Port: %s", cfg.Port)
	}
	if cfg.GinMode != "debug" {
		t.Fatalf("unexpected GinMode: %s", cfg.GinMode)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("unexpected WorkerConcurrency: %d", cfg.WorkerConcurrency)
	}
	if cfg.QueueCapacity != 64 {
		t.Fatalf("unexpected QueueCapacity: %d", cfg.QueueCapacity)
	}
	if cfg.ConvertTimeoutSeconds != 300 {
		t.Fatalf("unexpected ConvertTimeoutSeconds: %d", cfg.ConvertTimeoutSeconds)
	}
	if cfg.MaxSourceSize != 104857600 {
		t.Fatalf("unexpected MaxSourceSize: %d", cfg.MaxSourceSize)
	}
	if cfg.AuthEnabled() {
		t.Fatal("auth should be disabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("WORKER_CONCURRENCY", "8")
	t.Setenv("CONVERTER_CMD", "/usr/local/bin/doc2text")
	t.Setenv("CONVERTER_ARGS", "--pages={pages} {source}")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("unexpected Port: %s", cfg.Port)
	}
	if cfg.WorkerConcurrency != 8 {
		t.Fatalf("unexpected WorkerConcurrency: %d", cfg.WorkerConcurrency)
	}
	if cfg.ConverterCommand != "/usr/local/bin/doc2text" {
		t.Fatalf("unexpected ConverterCommand: %s", cfg.ConverterCommand)
	}
}

func TestLoadInvalidIntFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("expected fallback to default, got %d", cfg.WorkerConcurrency)
	}
}

func TestValidateReleaseRequiresConverter(t *testing.T) {
	cfg := &Config{GinMode: "release"}
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "CONVERTER_URL") {
		t.Fatalf("expected converter requirement error, got %v", err)
	}

	cfg.ConverterCommand = "/usr/local/bin/doc2text"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
}

func TestValidateConverterExclusivity(t *testing.T) {
	cfg := &Config{
		ConverterURL:     "http://localhost:5001",
		ConverterCommand: "/usr/local/bin/doc2text",
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for both converter settings")
	}
}

func TestValidatePartialAuth(t *testing.T) {
	cfg := &Config{AppUsername: "admin"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for partial auth configuration")
	}

	cfg.AppPasswordHash = "$2a$10$hash"
	cfg.SessionSecret = "secret"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Fatal("expected auth to be enabled")
	}
}
