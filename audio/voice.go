package audio

import (
	"math"
	"sync"
	"time"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

// SustainVoice is one long-lived sound source: an oscillator with an
// optional detuned partner through a one-pole filter into a ramped
// gain. It stays connected to its bus for the life of the graph and
// streams silence when idle, so fan-in buses never see it drain.
//
// The voice is monophonic: Start on an already sounding voice only
// retargets, it never re-attacks the phase, so rapid calls cannot
// stack envelopes or click.
type SustainVoice struct {
	mu sync.Mutex

	wave   core.WaveType
	freq   *Param
	detune float64 // partner ratio offset, 0 disables the partner
	phase  float64
	phase2 float64

	filter *onePole
	gain   *Param

	// tremolo
	lfoRate  float64
	lfoDepth *Param
	lfoPhase float64

	active      bool
	pendingStop bool
	rate        float64
}

// NewSustainVoice creates an idle voice
func NewSustainVoice(wave core.WaveType, freqHz, cutoffHz float64) *SustainVoice {
	return &SustainVoice{
		wave:     wave,
		freq:     NewParam(freqHz),
		filter:   newOnePole(cutoffHz, float64(parameter.AudioSampleRate)),
		gain:     NewParam(0),
		lfoDepth: NewParam(0),
		rate:     float64(parameter.AudioSampleRate),
	}
}

// SetDetune enables a second oscillator at ratio*freq for thickness
func (v *SustainVoice) SetDetune(ratio float64) {
	v.mu.Lock()
	v.detune = ratio
	v.mu.Unlock()
}

// Start ramps the voice up to level over attack. Idempotent: an active
// voice with the same target is untouched; an active voice with a new
// target only retargets its gain.
func (v *SustainVoice) Start(level float64, attack time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.pendingStop = false
	samples := parameter.SamplesFor(attack)
	if !v.active {
		v.active = true
		v.gain.Jump(0) // first attack starts from silence
		v.gain.SetTarget(level, samples)
		return
	}
	if v.gain.Target() != level {
		v.gain.SetTarget(level, samples)
	}
}

// Stop ramps the gain to zero over release and silences the voice when
// the ramp lands, in the ramp's own time domain. Idempotent.
func (v *SustainVoice) Stop(release time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.active || v.pendingStop {
		return
	}
	v.pendingStop = true
	v.gain.SetTarget(0, parameter.SamplesFor(release))
}

// SetLevel retargets the sounding level as a ramp
func (v *SustainVoice) SetLevel(level float64, ramp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active || v.pendingStop {
		return
	}
	v.gain.SetTarget(level, parameter.SamplesFor(ramp))
}

// ScaleLevel multiplies the current gain target, so a group volume
// change reaches a sounding voice without restating its level
func (v *SustainVoice) ScaleLevel(ratio float64, ramp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active || v.pendingStop {
		return
	}
	v.gain.SetTarget(v.gain.Target()*ratio, parameter.SamplesFor(ramp))
}

// SetPitch glides the oscillator frequency
func (v *SustainVoice) SetPitch(freqHz float64, glide time.Duration) {
	v.mu.Lock()
	v.freq.SetTarget(freqHz, parameter.SamplesFor(glide))
	v.mu.Unlock()
}

// SetCutoff ramps the voice filter
func (v *SustainVoice) SetCutoff(hz float64, ramp time.Duration) {
	v.mu.Lock()
	v.filter.cutoff.SetTarget(hz, parameter.SamplesFor(ramp))
	v.mu.Unlock()
}

// SetTremolo ramps amplitude modulation depth at the given rate
func (v *SustainVoice) SetTremolo(rateHz, depth float64, ramp time.Duration) {
	v.mu.Lock()
	v.lfoRate = rateHz
	v.lfoDepth.SetTarget(depth, parameter.SamplesFor(ramp))
	v.mu.Unlock()
}

// Active reports whether the voice is producing (or fading) sound
func (v *SustainVoice) Active() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

// GainValue returns the instantaneous gain, for tests and state probes
func (v *SustainVoice) GainValue() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain.Value()
}

// GainTarget returns the gain ramp destination
func (v *SustainVoice) GainTarget() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain.Target()
}

func (v *SustainVoice) Stream(samples [][2]float64) (int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.active {
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}

	for i := range samples {
		freq := v.freq.Step()
		raw := waveSample(v.wave, v.phase)
		v.phase += freq / v.rate
		v.phase -= math.Floor(v.phase)

		if v.detune != 0 {
			raw = (raw + waveSample(v.wave, v.phase2)) * 0.5
			v.phase2 += freq * (1 + v.detune) / v.rate
			v.phase2 -= math.Floor(v.phase2)
		}

		v.filter.step()
		raw = v.filter.process(0, raw)

		amp := 1.0
		if depth := v.lfoDepth.Step(); depth > 0 {
			amp = 1 - depth*(0.5+0.5*math.Sin(2*math.Pi*v.lfoPhase))
			v.lfoPhase += v.lfoRate / v.rate
			v.lfoPhase -= math.Floor(v.lfoPhase)
		}

		g := v.gain.Step()
		s := raw * amp * g

		samples[i][0] = s
		samples[i][1] = s

		// deferred release: silence only once the stop ramp lands
		if v.pendingStop && !v.gain.Ramping() && g == 0 {
			v.active = false
			v.pendingStop = false
			for j := i + 1; j < len(samples); j++ {
				samples[j][0] = 0
				samples[j][1] = 0
			}
			return len(samples), true
		}
	}
	return len(samples), true
}

func (v *SustainVoice) Err() error { return nil }
