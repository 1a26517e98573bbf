package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.VoiceSampleRate != 24000 || cfg.CaptureSampleRate != 16000 {
		t.Errorf("sample rates: voice=%d capture=%d", cfg.VoiceSampleRate, cfg.CaptureSampleRate)
	}
	if cfg.FrameSize != 4096 {
		t.Errorf("frame size=%d", cfg.FrameSize)
	}
	if cfg.ThinkingDebounce != 800*time.Millisecond {
		t.Errorf("debounce=%v", cfg.ThinkingDebounce)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("ORCHESTRATOR_HOST", "agent.example.com")
	t.Setenv("ORCHESTRATOR_PORT", "9000")
	t.Setenv("ORCHESTRATOR_SSL", "true")
	t.Setenv("THINKING_DEBOUNCE_MS", "500")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ThinkingDebounce != 500*time.Millisecond {
		t.Errorf("debounce=%v", cfg.ThinkingDebounce)
	}
	if got := cfg.OrchestratorURL(); got != "wss://agent.example.com:9000/api/v1/ws" {
		t.Errorf("url=%s", got)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("ORCHESTRATOR_PORT", "not-a-number")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for invalid port")
	}
}
