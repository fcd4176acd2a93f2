package flow

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scope != ScopeFull {
		t.Errorf("scope = %s, want %s", cfg.Scope, ScopeFull)
	}
	if !cfg.Parallel {
		t.Error("default config should run in parallel")
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.CheckTimeout != 30*time.Second {
		t.Errorf("check timeout = %s, want 30s", cfg.CheckTimeout)
	}
	if cfg.ReportDir != "reports" {
		t.Errorf("report dir = %s, want reports", cfg.ReportDir)
	}
	if cfg.MaxRecommendations != 10 {
		t.Errorf("max recommendations = %d, want 10", cfg.MaxRecommendations)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Scope:              ScopeQuick,
		Workers:            2,
		CheckTimeout:       time.Second,
		RunTimeout:         time.Minute,
		ReportDir:          "/tmp/flow-reports",
		MaxRecommendations: 3,
	}
	cfg.ApplyDefaults()

	if cfg.Scope != ScopeQuick || cfg.Workers != 2 || cfg.CheckTimeout != time.Second {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if cfg.RunTimeout != time.Minute || cfg.ReportDir != "/tmp/flow-reports" || cfg.MaxRecommendations != 3 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
}

func TestConfigValidateRejectsBadScope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scope = "exhaustive"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown scope should be rejected")
	}
}

func TestConfigValidateRejectsNegativeTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RunTimeout = -time.Second
	if err := cfg.Validate(); err == nil {
		t.Error("negative run timeout should be rejected")
	}
}
