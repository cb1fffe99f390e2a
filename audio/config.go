package audio

import (
	"os"
	"strconv"

	"github.com/nightveil/lumendrift/parameter"
)

// Config holds the engine startup configuration
type Config struct {
	SampleRate     int
	BufferSize     int     // speaker buffer in samples
	MasterVolumeDB float64 // initial master gain in dB
	StartMuted     bool
	Tempo          float64 // chord-step tempo multiplier, 1 = default
}

// DefaultConfig returns the standard engine configuration
func DefaultConfig() *Config {
	return &Config{
		SampleRate:     parameter.AudioSampleRate,
		BufferSize:     parameter.SamplesFor(parameter.AudioBufferDuration),
		MasterVolumeDB: 0,
		StartMuted:     false,
		Tempo:          1,
	}
}

// LoadConfig loads the engine configuration from environment variables
func LoadConfig() *Config {
	cfg := DefaultConfig()

	if rate := os.Getenv("LUMENDRIFT_SAMPLE_RATE"); rate != "" {
		if val, err := strconv.Atoi(rate); err == nil && val > 0 {
			cfg.SampleRate = val
			// keep the speaker latency constant across rates
			cfg.BufferSize = int(parameter.AudioBufferDuration.Seconds() * float64(val))
		}
	}

	if buf := os.Getenv("LUMENDRIFT_BUFFER_SIZE"); buf != "" {
		if val, err := strconv.Atoi(buf); err == nil && val > 0 {
			cfg.BufferSize = val
		}
	}

	// Master volume as dB, clamped to a sane playback range
	if volume := os.Getenv("LUMENDRIFT_MASTER_DB"); volume != "" {
		if val, err := strconv.ParseFloat(volume, 64); err == nil {
			if val < -60 {
				val = -60
			}
			if val > 6 {
				val = 6
			}
			cfg.MasterVolumeDB = val
		}
	}

	if muted := os.Getenv("LUMENDRIFT_START_MUTED"); muted != "" {
		if val, err := strconv.ParseBool(muted); err == nil {
			cfg.StartMuted = val
		}
	}

	if tempo := os.Getenv("LUMENDRIFT_TEMPO"); tempo != "" {
		if val, err := strconv.ParseFloat(tempo, 64); err == nil && val > 0 {
			cfg.Tempo = val
		}
	}

	return cfg
}
