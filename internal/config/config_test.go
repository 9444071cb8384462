package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("SEED_RANDOM", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("Expected memory backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Seed.RandomSeed != 0 {
		t.Errorf("Expected zero seed, got %d", cfg.Seed.RandomSeed)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Badger")
	t.Setenv("BADGER_DIR", "/tmp/pharmsync")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("DATABASE_MAX_OPEN_CONNS", "7")
	t.Setenv("SEED_RANDOM", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Storage.Backend != BackendBadger {
		t.Errorf("Expected badger backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Badger.Dir != "/tmp/pharmsync" {
		t.Errorf("Unexpected badger dir %q", cfg.Badger.Dir)
	}
	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("Expected 3s read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Database.MaxOpenConns != 7 {
		t.Errorf("Expected 7 open conns, got %d", cfg.Database.MaxOpenConns)
	}
	if cfg.Seed.RandomSeed != 42 {
		t.Errorf("Expected seed 42, got %d", cfg.Seed.RandomSeed)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("SERVER_WRITE_TIMEOUT", "soon")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "many")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Database.MaxIdleConns != 5 {
		t.Errorf("Expected default idle conns, got %d", cfg.Database.MaxIdleConns)
	}
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "cassandra")

	if _, err := Load(); err == nil {
		t.Fatal("Expected error for unknown backend")
	}
}
