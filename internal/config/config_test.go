package config

import (
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := defaults()
	if cfg.ClientName != "blemidi" {
		t.Errorf("ClientName = %q, want %q", cfg.ClientName, "blemidi")
	}
	if cfg.DiscoveryWindow != 400*time.Millisecond {
		t.Errorf("DiscoveryWindow = %v, want 400ms", cfg.DiscoveryWindow)
	}
}

func TestParseEnvFile(t *testing.T) {
	cfg := defaults()
	parseEnvFile("BLEMIDI_CLIENT_NAME=arpeggiator\nBLEMIDI_ADAPTER_INDEX=1\n# comment\n", &cfg)
	if cfg.ClientName != "arpeggiator" {
		t.Errorf("ClientName = %q, want %q", cfg.ClientName, "arpeggiator")
	}
	if cfg.AdapterIndex != 1 {
		t.Errorf("AdapterIndex = %d, want 1", cfg.AdapterIndex)
	}
}
