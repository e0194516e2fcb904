package config

import (
	"testing"
	"time"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("Port = %q, want 8000", cfg.Port)
	}
	if cfg.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Host)
	}
	if cfg.MaxUploadSize != 10*1024*1024 {
		t.Errorf("MaxUploadSize = %d, want 10MiB", cfg.MaxUploadSize)
	}
	if cfg.OCREnabled {
		t.Error("OCR must be off by default")
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive must be off without Azure credentials")
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("OCR_ENABLED", "true")
	t.Setenv("OCR_LANGUAGE", "deu")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}

	if cfg.ServerAddress() != "0.0.0.0:9000" {
		t.Errorf("ServerAddress() = %q, want 0.0.0.0:9000", cfg.ServerAddress())
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %s, want 5s", cfg.RequestTimeout)
	}
	if !cfg.OCREnabled || cfg.OCRLanguage != "deu" {
		t.Errorf("OCR settings not applied: enabled=%v lang=%q", cfg.OCREnabled, cfg.OCRLanguage)
	}
}

func TestLoadFromEnv_InvalidPort(t *testing.T) {
	tests := []string{"0", "65536", "http", "-1"}
	for _, port := range tests {
		t.Run(port, func(t *testing.T) {
			t.Setenv("PORT", port)
			if _, err := LoadFromEnv(); err == nil {
				t.Errorf("expected error for PORT=%q", port)
			}
		})
	}
}

func TestLoadFromEnv_ArchiveRequiresAllValues(t *testing.T) {
	t.Setenv("AZURE_ACCOUNT_NAME", "acct")
	t.Setenv("AZURE_ACCOUNT_KEY", "key")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive must stay off without AZURE_CONTAINER")
	}

	t.Setenv("AZURE_CONTAINER", "uploads")
	cfg, err = LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error: %v", err)
	}
	if !cfg.ArchiveEnabled() {
		t.Error("archive must be on with full Azure settings")
	}
}
