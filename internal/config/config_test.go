package config

import (
	"testing"
	"time"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.OrderSource != SourceGraphQL || cfg.CredentialBackend != BackendSQLite {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.AllowUnresolvedOwner {
		t.Fatalf("expected fail-closed ownership by default")
	}
	if cfg.NeedsPostgres() {
		t.Fatalf("default config must not need postgres")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ORDER_SOURCE", "Postgres")
	t.Setenv("CREDENTIAL_BACKEND", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("ALLOW_UNRESOLVED_OWNER", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.OrderSource != SourcePostgres || cfg.CredentialBackend != BackendMemory {
		t.Fatalf("unexpected backends %+v", cfg)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.AllowUnresolvedOwner || !cfg.NeedsPostgres() {
		t.Fatalf("unexpected flags %+v", cfg)
	}
}

func TestFromEnv_RejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"ORDER_SOURCE":       "rest",
		"CREDENTIAL_BACKEND": "cookie",
		"SESSION_TTL":        "0s",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}
