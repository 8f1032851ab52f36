package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("PROMOTION_ENFORCE_START_DATE", "")
	t.Setenv("LOW_STOCK_THRESHOLD", "")
	t.Setenv("PROMOTION_CACHE_TTL_SECONDS", "")

	cfg, _ := Load()
	if cfg.Address() != ":3000" {
		t.Fatalf("expected default address :3000, got %s", cfg.Address())
	}
	if cfg.JWTSecret != "" {
		t.Fatalf("expected empty JWT_SECRET when unset, got %q", cfg.JWTSecret)
	}
	if cfg.PromotionEnforceStartDate {
		t.Fatalf("expected start-date gating to be off by default")
	}
	if cfg.LowStockThreshold != 10 {
		t.Fatalf("expected low stock threshold 10, got %d", cfg.LowStockThreshold)
	}
	if cfg.PromotionCacheTTL != 30*time.Second {
		t.Fatalf("expected 30s promotion cache ttl, got %s", cfg.PromotionCacheTTL)
	}
	if cfg.Location == nil {
		t.Fatalf("expected a location")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("PROMOTION_ENFORCE_START_DATE", "true")
	t.Setenv("LOW_STOCK_THRESHOLD", "not-a-number")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "pos")

	cfg, _ := Load()
	if cfg.Port != "8081" {
		t.Fatalf("expected port override, got %s", cfg.Port)
	}
	if !cfg.PromotionEnforceStartDate {
		t.Fatalf("expected start-date gating to be enabled")
	}
	if cfg.LowStockThreshold != 10 {
		t.Fatalf("expected invalid threshold to fall back to 10, got %d", cfg.LowStockThreshold)
	}
	if !strings.Contains(cfg.DatabaseURL, "host=db.internal") || !strings.Contains(cfg.DatabaseURL, "dbname=pos") {
		t.Fatalf("expected DSN built from DB_* vars, got %s", cfg.DatabaseURL)
	}
}
