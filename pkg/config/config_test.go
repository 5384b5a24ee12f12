package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("JWT_EXPIRATION_MINUTES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.JWT.Expiration != 120*time.Minute {
		t.Errorf("Expiration = %v, want 2h", cfg.JWT.Expiration)
	}
	if cfg.Server.BodyLimit != 15*1024*1024 {
		t.Errorf("BodyLimit = %d, want 15MB", cfg.Server.BodyLimit)
	}
	if !cfg.JWT.IsDefaultSecret() {
		t.Error("IsDefaultSecret() = false with JWT_SECRET_KEY unset")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123")
	t.Setenv("JWT_EXPIRATION_MINUTES", "5")
	t.Setenv("WORKSPACE_STRICT_HEADER", "true")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Driver = %q, want %q", cfg.Database.Driver, DriverMemory)
	}
	if cfg.JWT.Expiration != 5*time.Minute {
		t.Errorf("Expiration = %v, want 5m", cfg.JWT.Expiration)
	}
	if cfg.JWT.IsDefaultSecret() {
		t.Error("IsDefaultSecret() = true with JWT_SECRET_KEY set")
	}
	if !cfg.Workspace.StrictHeader {
		t.Error("StrictHeader = false, want true")
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("ReadTimeout = %v, want default 30s", cfg.Server.ReadTimeout)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "mysql"}},
		{"short secret", map[string]string{"DB_DRIVER": "memory", "JWT_SECRET_KEY": "short"}},
		{"zero expiration", map[string]string{"DB_DRIVER": "memory", "JWT_EXPIRATION_MINUTES": "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET_KEY", "")
			t.Setenv("JWT_EXPIRATION_MINUTES", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load() error = nil, want error")
			}
		})
	}
}
