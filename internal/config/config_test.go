package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "librarian.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != defaultAPIURL || cfg.Timeout != defaultTimeout || cfg.PageSize != 200 || cfg.MaxPages != 1000 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if filepath.Base(cfg.TokenFile) != "token" {
		t.Fatalf("token file = %q", cfg.TokenFile)
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
api_url: https://catalog.example.org/api
timeout: 45s
page_size: 50
log_level: debug
`)
	t.Setenv("LIBRARIAN_PAGE_SIZE", "75")
	t.Setenv("LIBRARIAN_HTTP_ADDR", ":9000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "https://catalog.example.org/api" {
		t.Fatalf("api url = %q", cfg.APIURL)
	}
	if cfg.Timeout != 45*time.Second {
		t.Fatalf("timeout = %v", cfg.Timeout)
	}
	if cfg.PageSize != 75 {
		t.Fatalf("env did not override file: page size = %d", cfg.PageSize)
	}
	if cfg.HTTPAddr != ":9000" || cfg.LogLevel != "debug" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestValidateClamps(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PageSize = 5000
	cfg.MaxPages = -1
	cfg.Timeout = 0
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.PageSize != maxPageSize || cfg.MaxPages != defaultMaxPages || cfg.Timeout != defaultTimeout {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := map[string]string{
		"relative url": "api_url: /api\n",
		"bad level":    "log_level: loud\n",
		"bad yaml":     "page_size: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeFile(t, body)); err == nil {
				t.Fatal("want error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing explicit file accepted")
	}
	t.Setenv("LIBRARIAN_TIMEOUT", "soon")
	if _, err := Load(""); err == nil {
		t.Fatal("bad LIBRARIAN_TIMEOUT accepted")
	}
}
