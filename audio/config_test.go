package audio

import (
	"testing"

	"github.com/nightveil/lumendrift/parameter"
)

// TestDefaultConfig verifies the defaults match the engine constants
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.SampleRate != parameter.AudioSampleRate {
		t.Errorf("Expected sample rate %d, got %d", parameter.AudioSampleRate, cfg.SampleRate)
	}
	if cfg.BufferSize != parameter.SamplesFor(parameter.AudioBufferDuration) {
		t.Errorf("Expected buffer %d, got %d", parameter.SamplesFor(parameter.AudioBufferDuration), cfg.BufferSize)
	}
	if cfg.StartMuted {
		t.Error("Expected unmuted default")
	}
	if cfg.Tempo != 1 {
		t.Errorf("Expected tempo 1, got %f", cfg.Tempo)
	}
}

// TestLoadConfigEnvOverrides verifies environment variables override
// the defaults
func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LUMENDRIFT_SAMPLE_RATE", "48000")
	t.Setenv("LUMENDRIFT_MASTER_DB", "-12")
	t.Setenv("LUMENDRIFT_START_MUTED", "true")
	t.Setenv("LUMENDRIFT_TEMPO", "1.5")

	cfg := LoadConfig()

	if cfg.SampleRate != 48000 {
		t.Errorf("Expected sample rate 48000, got %d", cfg.SampleRate)
	}
	if cfg.BufferSize != 4800 {
		t.Errorf("Expected buffer to follow sample rate, got %d", cfg.BufferSize)
	}
	if cfg.MasterVolumeDB != -12 {
		t.Errorf("Expected master -12 dB, got %f", cfg.MasterVolumeDB)
	}
	if !cfg.StartMuted {
		t.Error("Expected muted start")
	}
	if cfg.Tempo != 1.5 {
		t.Errorf("Expected tempo 1.5, got %f", cfg.Tempo)
	}
}

// TestLoadConfigClampsMasterDB verifies out-of-range volume values are
// clamped instead of trusted
func TestLoadConfigClampsMasterDB(t *testing.T) {
	t.Setenv("LUMENDRIFT_MASTER_DB", "-900")
	if cfg := LoadConfig(); cfg.MasterVolumeDB != -60 {
		t.Errorf("Expected clamp to -60, got %f", cfg.MasterVolumeDB)
	}

	t.Setenv("LUMENDRIFT_MASTER_DB", "40")
	if cfg := LoadConfig(); cfg.MasterVolumeDB != 6 {
		t.Errorf("Expected clamp to 6, got %f", cfg.MasterVolumeDB)
	}
}

// TestLoadConfigIgnoresGarbage verifies unparsable values fall back to
// the defaults
func TestLoadConfigIgnoresGarbage(t *testing.T) {
	t.Setenv("LUMENDRIFT_SAMPLE_RATE", "fast")
	t.Setenv("LUMENDRIFT_TEMPO", "-2")

	cfg := LoadConfig()
	def := DefaultConfig()

	if cfg.SampleRate != def.SampleRate {
		t.Errorf("Expected default sample rate, got %d", cfg.SampleRate)
	}
	if cfg.Tempo != def.Tempo {
		t.Errorf("Expected default tempo, got %f", cfg.Tempo)
	}
}
