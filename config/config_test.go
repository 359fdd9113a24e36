package config_test

import (
	"testing"

	"github.com/wippyai/icewire/config"
)

func TestDefault_UsesDefaultDepthMax(t *testing.T) {
	cfg := config.Default()
	if cfg.EffectiveClassGraphDepthMax() != config.DefaultClassGraphDepthMax {
		t.Errorf("EffectiveClassGraphDepthMax() = %d, want %d", cfg.EffectiveClassGraphDepthMax(), config.DefaultClassGraphDepthMax)
	}
}

func TestEffectiveClassGraphDepthMax_HonorsOverride(t *testing.T) {
	cfg := config.Config{ClassGraphDepthMax: 3}
	if got := cfg.EffectiveClassGraphDepthMax(); got != 3 {
		t.Errorf("EffectiveClassGraphDepthMax() = %d, want 3", got)
	}
}

func TestEffectiveClassGraphDepthMax_ZeroFallsBackToDefault(t *testing.T) {
	cfg := config.Config{}
	if got := cfg.EffectiveClassGraphDepthMax(); got != config.DefaultClassGraphDepthMax {
		t.Errorf("EffectiveClassGraphDepthMax() = %d, want %d", got, config.DefaultClassGraphDepthMax)
	}
}
