package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "dev" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.LLMModel != "gpt-4o-mini" {
		t.Errorf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.GenerationTimeout != 60*time.Second {
		t.Errorf("GenerationTimeout = %s", cfg.GenerationTimeout)
	}
	if cfg.SummaryCap != 600 || cfg.ListItemCap != 220 || cfg.RawReplyCap != 500 {
		t.Errorf("caps = %d/%d/%d", cfg.SummaryCap, cfg.ListItemCap, cfg.RawReplyCap)
	}
	if cfg.CVTextCap != 8000 || cfg.PostingTextCap != 6000 || cfg.CombinedTextCap != 12000 {
		t.Errorf("text caps = %d/%d/%d", cfg.CVTextCap, cfg.PostingTextCap, cfg.CombinedTextCap)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ENV", "PROD")
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("GENERATION_TIMEOUT", "30s")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("OPENAI_API_KEY", "test-key")

	cfg := Load()
	if cfg.Port != "9999" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.LLMMaxTokens != 512 {
		t.Errorf("LLMMaxTokens = %d", cfg.LLMMaxTokens)
	}
	if cfg.GenerationTimeout != 30*time.Second {
		t.Errorf("GenerationTimeout = %s", cfg.GenerationTimeout)
	}
	if len(cfg.CORSAllowOrigin) != 2 || cfg.CORSAllowOrigin[1] != "http://b.example" {
		t.Errorf("CORSAllowOrigin = %v", cfg.CORSAllowOrigin)
	}
	if cfg.OpenAIAPIKey != "test-key" {
		t.Errorf("OpenAIAPIKey = %q", cfg.OpenAIAPIKey)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "not-a-number")
	t.Setenv("GENERATION_TIMEOUT", "-5s")

	cfg := Load()
	if cfg.LLMMaxTokens != 2048 {
		t.Errorf("LLMMaxTokens = %d, want default", cfg.LLMMaxTokens)
	}
	if cfg.GenerationTimeout != 60*time.Second {
		t.Errorf("GenerationTimeout = %s, want default", cfg.GenerationTimeout)
	}
}

func TestNormalizeEnv(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"prod", "production"},
		{"PRODUCTION", "production"},
		{"staging", "staging"},
		{"local", "local"},
		{"", "dev"},
		{"anything", "dev"},
	}
	for _, tt := range tests {
		if got := normalizeEnv(tt.raw); got != tt.want {
			t.Errorf("normalizeEnv(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}
