package audio

import (
	"testing"
	"time"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

// pull streams n samples through the voice in blocks
func pull(v *SustainVoice, n int) [][2]float64 {
	block := make([][2]float64, 512)
	for n > 0 {
		want := len(block)
		if n < want {
			want = n
		}
		v.Stream(block[:want])
		n -= want
	}
	return block
}

// TestSustainVoiceIdleSilence verifies an idle voice streams silence
// and never drains off its bus
func TestSustainVoiceIdleSilence(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)

	samples := make([][2]float64, 256)
	samples[3][0] = 1 // stale data must be cleared
	n, ok := v.Stream(samples)

	if n != 256 || !ok {
		t.Fatalf("Expected 256 samples ok, got %d %v", n, ok)
	}
	if hasSignal(samples) {
		t.Error("Expected silence from idle voice")
	}
	if v.Active() {
		t.Error("Expected inactive voice")
	}
}

// TestSustainVoiceStartProducesSignal verifies audible output after the
// attack ramp begins
func TestSustainVoiceStartProducesSignal(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.Start(0.3, 10*time.Millisecond)

	if !v.Active() {
		t.Fatal("Expected active voice")
	}

	block := pull(v, 4096)
	if !hasSignal(block) {
		t.Error("Expected signal from started voice")
	}
}

// TestSustainVoiceStartIdempotent verifies rapid Start calls only
// retarget and never re-attack from zero
func TestSustainVoiceStartIdempotent(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.Start(0.3, 10*time.Millisecond)
	pull(v, parameter.SamplesFor(10*time.Millisecond)+100)

	mid := v.GainValue()
	if mid != 0.3 {
		t.Fatalf("Expected settled gain 0.3, got %f", mid)
	}

	// same target: nothing moves
	v.Start(0.3, 10*time.Millisecond)
	if v.GainValue() != 0.3 {
		t.Errorf("Expected gain untouched by repeated Start, got %f", v.GainValue())
	}

	// new target: ramp from current value, no drop to zero
	v.Start(0.5, 10*time.Millisecond)
	if v.GainValue() != 0.3 {
		t.Errorf("Expected retarget to start from current gain, got %f", v.GainValue())
	}
	if v.GainTarget() != 0.5 {
		t.Errorf("Expected new target 0.5, got %f", v.GainTarget())
	}
}

// TestSustainVoiceLevelBeforeStart verifies the first rendered frame
// reflects a level chosen before Start
func TestSustainVoiceLevelBeforeStart(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.SetPitch(440, 0)
	v.Start(0.4, 5*time.Millisecond)

	pull(v, parameter.SamplesFor(5*time.Millisecond)+10)
	if v.GainValue() != 0.4 {
		t.Errorf("Expected gain 0.4 after attack, got %f", v.GainValue())
	}
}

// TestSustainVoiceDeferredStop verifies Stop fades in the sample domain
// and only then deactivates
func TestSustainVoiceDeferredStop(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.Start(0.3, time.Millisecond)
	pull(v, 1024)

	v.Stop(20 * time.Millisecond)
	if !v.Active() {
		t.Fatal("Expected voice active while release ramp runs")
	}

	pull(v, parameter.SamplesFor(20*time.Millisecond)+512)
	if v.Active() {
		t.Error("Expected voice inactive after release landed")
	}

	block := pull(v, 512)
	if hasSignal(block) {
		t.Error("Expected silence after stop")
	}

	// restart is a clean first attack
	v.Start(0.3, time.Millisecond)
	block = pull(v, 2048)
	if !hasSignal(block) {
		t.Error("Expected signal after restart")
	}
}

// TestSustainVoiceSetLevelIgnoredWhileStopping verifies a release in
// flight cannot be cancelled by a level change
func TestSustainVoiceSetLevelIgnoredWhileStopping(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.Start(0.3, time.Millisecond)
	pull(v, 1024)

	v.Stop(20 * time.Millisecond)
	v.SetLevel(0.8, time.Millisecond)

	if v.GainTarget() != 0 {
		t.Errorf("Expected release target 0 preserved, got %f", v.GainTarget())
	}
}

// TestSustainVoiceTremolo verifies amplitude modulation stays inside
// the valid range
func TestSustainVoiceTremolo(t *testing.T) {
	v := NewSustainVoice(core.WaveSine, 220, 2000)
	v.SetTremolo(3, 0.9, 0)
	v.Start(0.5, time.Millisecond)

	block := pull(v, 8192)
	for _, s := range block {
		if s[0] < -1 || s[0] > 1 {
			t.Fatalf("Tremolo sample out of range: %f", s[0])
		}
	}
}
