package config

import (
	"testing"
)

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if Exists() {
		t.Fatal("Exists() = true before any save")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("Load() = %+v, want defaults", cfg)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.DBPath = "/tmp/orca-test.db"
	cfg.Defaults.BDIPct = 22.5
	cfg.Defaults.ChargesRegime = RegimeRelief
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.General.DBPath != cfg.General.DBPath || got.Defaults.BDIPct != 22.5 || got.Defaults.ChargesRegime != RegimeRelief {
		t.Fatalf("Load() = %+v, want %+v", got, cfg)
	}
}

func TestDBPath_EnvOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DBPath = "/from/config.db"

	t.Setenv("ORCA_DB_PATH", "")
	if got := DBPath(cfg); got != "/from/config.db" {
		t.Fatalf("DBPath = %q, want config value", got)
	}

	t.Setenv("ORCA_DB_PATH", "/from/env.db")
	if got := DBPath(cfg); got != "/from/env.db" {
		t.Fatalf("DBPath = %q, want env value", got)
	}
}
