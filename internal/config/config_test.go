package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "teardown.yaml")
	content := []byte("regions:\n  line_tolerance: 22\nrender:\n  banner: true\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Regions.LineTolerance != 22 {
		t.Errorf("line_tolerance: got %d, want 22", cfg.Regions.LineTolerance)
	}
	if !cfg.Render.Banner {
		t.Error("banner override not applied")
	}
	// Untouched sections keep their defaults.
	if cfg.Generation.MaxAttempts != 3 {
		t.Errorf("max_attempts: got %d, want default 3", cfg.Generation.MaxAttempts)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/teardown.yaml"); err == nil {
		t.Error("Load should fail for a missing config file")
	}
}

func TestLoad_APIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LLM.APIKey != "test-key" {
		t.Errorf("APIKey: got %q, want %q", cfg.LLM.APIKey, "test-key")
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero attempts", func(c *Config) { c.Generation.MaxAttempts = 0 }},
		{"zero evidence", func(c *Config) { c.Evidence.MaxEvidence = 0 }},
		{"negative tolerance", func(c *Config) { c.Regions.LineTolerance = -1 }},
		{"negative jitter", func(c *Config) { c.Render.Jitter = -1 }},
		{"unknown backend", func(c *Config) { c.Evidence.Backend = "vision" }},
		{"zero parallelism", func(c *Config) { c.Batch.Parallelism = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
