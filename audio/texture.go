package audio

import (
	"math/rand"
	"sync"
	"time"

	"github.com/nightveil/lumendrift/parameter"
)

// crackleVoice is the chamber texture: random filtered pops whose
// density follows a ramped parameter. Like SustainVoice it is
// monophonic, stays on its bus for the graph lifetime, and silences
// itself only after its release ramp lands.
type crackleVoice struct {
	mu sync.Mutex

	density *Param // pops per second
	gain    *Param
	energy  float64
	bp      biquad

	active      bool
	pendingStop bool
	rate        float64
}

func newCrackleVoice() *crackleVoice {
	v := &crackleVoice{
		density: NewParam(0),
		gain:    NewParam(0),
		rate:    float64(parameter.AudioSampleRate),
	}
	v.bp.setBandpass(2600, 1.2, v.rate)
	return v
}

// set retargets density and level; attacks from silence only when the
// voice is not already sounding, so updates never restart the texture
func (v *crackleVoice) set(density, level float64, ramp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()

	samples := parameter.SamplesFor(ramp)
	v.pendingStop = false
	v.density.SetTarget(density, samples)
	if !v.active {
		v.active = true
		v.gain.Jump(0)
	}
	v.gain.SetTarget(level, samples)
}

// release ramps to silence and fully stops after the fade
func (v *crackleVoice) release(ramp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active || v.pendingStop {
		return
	}
	v.pendingStop = true
	samples := parameter.SamplesFor(ramp)
	v.gain.SetTarget(0, samples)
	v.density.SetTarget(0, samples)
}

// scaleLevel multiplies the gain target, mirroring
// SustainVoice.ScaleLevel for group volume changes
func (v *crackleVoice) scaleLevel(ratio float64, ramp time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.active || v.pendingStop {
		return
	}
	v.gain.SetTarget(v.gain.Target()*ratio, parameter.SamplesFor(ramp))
}

func (v *crackleVoice) isActive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.active
}

func (v *crackleVoice) gainValue() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain.Value()
}

func (v *crackleVoice) gainTarget() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.gain.Target()
}

func (v *crackleVoice) Stream(samples [][2]float64) (int, bool) {
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
		if rand.Float64() < v.density.Step()/v.rate {
			v.energy = 0.6 + 0.4*rand.Float64()
		}
		s := v.bp.process((rand.Float64()*2 - 1) * v.energy)
		v.energy *= 0.9992

		g := v.gain.Step()
		s *= g
		samples[i][0] = s
		samples[i][1] = s

		if v.pendingStop && !v.gain.Ramping() && g == 0 {
			v.active = false
			v.pendingStop = false
			v.energy = 0
			for j := i + 1; j < len(samples); j++ {
				samples[j][0] = 0
				samples[j][1] = 0
			}
			return len(samples), true
		}
	}
	return len(samples), true
}

func (v *crackleVoice) Err() error { return nil }
