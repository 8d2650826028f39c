package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stubserver.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}
	return path
}

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := loadAppConfig(writeConfig(t, "backend:\n  jwt:\n    secret: s3cret\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Server.Addr != defaultHTTPAddr {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Backend.PublicURL != "http://"+defaultHTTPAddr {
		t.Errorf("PublicURL = %q", cfg.Backend.PublicURL)
	}
	if cfg.Backend.Complaints.Bucket != defaultPhotoBucket {
		t.Errorf("Bucket = %q", cfg.Backend.Complaints.Bucket)
	}
}

func TestLoadAppConfigRequiresSecret(t *testing.T) {
	if _, err := loadAppConfig(writeConfig(t, "server:\n  addr: 127.0.0.1:9000\n")); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestLoadAppConfigSecretFromEnv(t *testing.T) {
	t.Setenv("CAMPUS_JWT_SECRET", "from-env")
	t.Setenv("CAMPUS_OTP_BACKEND", "redis")
	cfg, err := loadAppConfig(writeConfig(t, "storage:\n  minio:\n    bucket: photos\n"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Backend.JWT.Secret != "from-env" || cfg.OTPStore.Backend != "redis" {
		t.Errorf("env overlay not applied: %+v", cfg)
	}
	if cfg.Backend.Complaints.Bucket != "photos" {
		t.Errorf("Bucket = %q", cfg.Backend.Complaints.Bucket)
	}
}

func TestLoadAppConfigRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, "backend:\n  jwt:\n    secret: s\nstorage:\n  backend: ftp\n")
	if _, err := loadAppConfig(path); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}
