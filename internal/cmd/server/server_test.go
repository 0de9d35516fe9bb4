package server

import (
	"flag"
	"path/filepath"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Setenv("PRYSMA_HTTP_ADDR", "")
	t.Setenv("PRYSMA_DB_PATH", "")
	t.Setenv("PRYSMA_ADMIN_API_KEY", "")
	t.Setenv("PRYSMA_VERBOSE", "")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "localhost:8080" {
		t.Fatalf("http addr = %q, want localhost:8080", cfg.HTTPAddr)
	}
	if cfg.DBPath != filepath.Join("data", "prysma.db") {
		t.Fatalf("db path = %q, want default", cfg.DBPath)
	}
	if cfg.Verbose {
		t.Fatal("verbose should default false")
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("PRYSMA_HTTP_ADDR", "env-addr:9999")
	t.Setenv("PRYSMA_ADMIN_API_KEY", "env-key")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-http-addr", "flag-addr:8000", "-verbose"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "flag-addr:8000" {
		t.Fatalf("http addr = %q, want flag override", cfg.HTTPAddr)
	}
	if cfg.AdminKey != "env-key" {
		t.Fatalf("admin key = %q, want env value", cfg.AdminKey)
	}
	if !cfg.Verbose {
		t.Fatal("verbose flag not applied")
	}
}
