package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	o := Default()
	if o.OptDisableAsserts {
		t.Error("expected asserts enabled by default")
	}
	if !o.OptAlgebra {
		t.Error("expected algebraic simplification enabled by default")
	}
	if o.LogLevel != LogError {
		t.Errorf("expected LogError by default, got %v", o.LogLevel)
	}
	if o.CheckpointLookupEnabled || o.CheckpointWriteEnabled {
		t.Error("expected checkpointing disabled by default")
	}
}

func TestLoadMissingFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	o, err := Load(dir)
	if err != nil {
		t.Fatalf("expected no error for a missing project file, got %v", err)
	}
	if *o != *Default() {
		t.Errorf("expected Load to fall back to Default(), got %+v", o)
	}
}

func TestLoadParsesProjectFile(t *testing.T) {
	dir := t.TempDir()
	contents := `
[project]
name = "demo"
disable-asserts = true
enable-algebra = false
log-level = "verbose"
cache-directory = "/tmp/cache"
checkpoint-lookup = true
checkpoint-write = true
`
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	o, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if o.Name != "demo" {
		t.Errorf("expected name %q, got %q", "demo", o.Name)
	}
	if !o.OptDisableAsserts {
		t.Error("expected OptDisableAsserts true")
	}
	if o.OptAlgebra {
		t.Error("expected OptAlgebra false")
	}
	if o.LogLevel != LogVerbose {
		t.Errorf("expected LogVerbose, got %v", o.LogLevel)
	}
	if o.CacheDirectory != "/tmp/cache" {
		t.Errorf("expected cache directory /tmp/cache, got %q", o.CacheDirectory)
	}
	if !o.CheckpointLookupEnabled || !o.CheckpointWriteEnabled {
		t.Error("expected both checkpoint flags true")
	}
}

func TestLoadRejectsMissingProjectTable(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte("x = 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected an error when the [project] table is missing")
	}
}

func TestLoadUnknownLogLevelDefaultsToError(t *testing.T) {
	dir := t.TempDir()
	contents := `
[project]
name = "demo"
log-level = "nonsense"
`
	if err := os.WriteFile(filepath.Join(dir, ProjectFileName), []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if o.LogLevel != LogError {
		t.Errorf("expected an unrecognized log level to default to LogError, got %v", o.LogLevel)
	}
}
