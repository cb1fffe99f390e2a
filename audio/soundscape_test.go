package audio

import (
	"testing"
	"time"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

func newTestChain(t *testing.T) *EffectChain {
	t.Helper()
	c := NewEffectChain()
	if err := c.Init(); err != nil {
		t.Fatalf("chain Init failed: %v", err)
	}
	return c
}

// TestSoundscapeInitRequiresChain verifies the chain dependency is a
// hard precondition
func TestSoundscapeInitRequiresChain(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(nil); err != ErrScapeNeedsChain {
		t.Errorf("Expected ErrScapeNeedsChain for nil chain, got %v", err)
	}

	if err := s.Init(NewEffectChain()); err != ErrScapeNeedsChain {
		t.Errorf("Expected ErrScapeNeedsChain for uninitialized chain, got %v", err)
	}

	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if !s.Initialized() {
		t.Error("Expected initialized soundscape")
	}
}

// TestSoundscapeStartIdempotent verifies repeated Start never stacks
// voices or restarts ramps
func TestSoundscapeStartIdempotent(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	s.Start()
	if !s.Active() {
		t.Fatal("Expected active soundscape")
	}
	target := s.drones[0].GainTarget()
	if target <= 0 {
		t.Fatal("Expected positive drone target after Start")
	}

	s.Start()
	if s.drones[0].GainTarget() != target {
		t.Errorf("Expected unchanged target after repeated Start, got %f", s.drones[0].GainTarget())
	}
}

// TestSoundscapeStartBeforeInitIgnored verifies Start without Init is a
// safe no-op
func TestSoundscapeStartBeforeInitIgnored(t *testing.T) {
	s := NewSoundscape()
	s.Start()
	if s.Active() {
		t.Error("Expected inactive soundscape without Init")
	}
}

// TestSoundscapeIntensityRemembered verifies intensity set while
// stopped shapes the very first Start
func TestSoundscapeIntensityRemembered(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	s.SetIntensity(1)
	if s.Intensity() != 1 {
		t.Fatalf("Expected remembered intensity 1, got %f", s.Intensity())
	}

	s.Start()
	full := s.pads[0].GainTarget()

	s2 := NewSoundscape()
	if err := s2.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s2.SetIntensity(0.2)
	s2.Start()

	if s2.pads[0].GainTarget() >= full {
		t.Errorf("Expected lower pad target at low intensity: %f >= %f", s2.pads[0].GainTarget(), full)
	}
}

// TestSoundscapeIntensityClamp verifies intensity is clamped to 0..1
func TestSoundscapeIntensityClamp(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	s.SetIntensity(4)
	if s.Intensity() != 1 {
		t.Errorf("Expected intensity clamped to 1, got %f", s.Intensity())
	}
	s.SetIntensity(-2)
	if s.Intensity() != 0 {
		t.Errorf("Expected intensity clamped to 0, got %f", s.Intensity())
	}
}

// TestSoundscapeGameLevelClamp verifies the level stays inside the
// valid progression range
func TestSoundscapeGameLevelClamp(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	s.SetGameLevel(99)
	if s.Level() != parameter.MaxGameLevel {
		t.Errorf("Expected level clamped to %d, got %d", parameter.MaxGameLevel, s.Level())
	}
	s.SetGameLevel(0)
	if s.Level() != 1 {
		t.Errorf("Expected level clamped to 1, got %d", s.Level())
	}
}

// TestSoundscapeInvertedRoundTrip verifies leaving inverted mode
// restores the normal layer targets exactly
func TestSoundscapeInvertedRoundTrip(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.Start()

	padTarget := s.pads[0].GainTarget()
	shimmerTarget := s.shimmer.GainTarget()
	if shimmerTarget <= 0 {
		t.Fatal("Expected audible shimmer in normal mode")
	}

	s.SetInvertedMode(true)
	if !s.Inverted() {
		t.Fatal("Expected inverted state")
	}
	if s.shimmer.GainTarget() != 0 {
		t.Errorf("Expected shimmer silenced in inverted mode, got %f", s.shimmer.GainTarget())
	}
	if got := s.pads[0].GainTarget(); got >= padTarget {
		t.Errorf("Expected dimmed pads in inverted mode: %f >= %f", got, padTarget)
	}
	if !s.pulse.Active() {
		t.Error("Expected pulse layer active in inverted mode")
	}

	// same-value call is a no-op
	s.SetInvertedMode(true)

	s.SetInvertedMode(false)
	if s.pads[0].GainTarget() != padTarget {
		t.Errorf("Expected pad target restored: got %f want %f", s.pads[0].GainTarget(), padTarget)
	}
	if s.shimmer.GainTarget() != shimmerTarget {
		t.Errorf("Expected shimmer target restored: got %f want %f", s.shimmer.GainTarget(), shimmerTarget)
	}
}

// TestSoundscapePulseTracksLevelWhileInverted verifies the pulse layer
// follows a game level change like every other layer instead of
// keeping the gain it entered inverted mode with
func TestSoundscapePulseTracksLevelWhileInverted(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.SetGameLevel(1)
	s.Start()
	s.SetInvertedMode(true)

	low := s.pulse.GainTarget()
	if low <= 0 {
		t.Fatal("Expected audible pulse in inverted mode")
	}

	s.SetGameLevel(parameter.MaxGameLevel)
	if got := s.pulse.GainTarget(); got <= low {
		t.Errorf("Expected pulse to follow game level: %f <= %f", got, low)
	}

	s.SetInvertedMode(false)
	if s.pulse.GainTarget() != 0 {
		t.Errorf("Expected pulse silenced outside inverted mode, got %f", s.pulse.GainTarget())
	}
}

// TestSoundscapeLayerActive verifies the layer status follows the
// palette: pulse only sounds inverted, shimmer only upright
func TestSoundscapeLayerActive(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if s.LayerActive(core.LayerDrone) {
		t.Error("Expected no active layers before Start")
	}

	s.Start()
	if !s.LayerActive(core.LayerDrone) || !s.LayerActive(core.LayerShimmer) {
		t.Error("Expected drone and shimmer active upright")
	}
	if s.LayerActive(core.LayerPulse) {
		t.Error("Expected pulse silent upright")
	}

	s.SetInvertedMode(true)
	if s.LayerActive(core.LayerShimmer) {
		t.Error("Expected shimmer silent inverted")
	}
	if !s.LayerActive(core.LayerPulse) {
		t.Error("Expected pulse active inverted")
	}
}

// TestSoundscapeSwellSkippedWhileInverted verifies the crescendo and
// the inverted dim never contend for the same gains
func TestSoundscapeSwellSkippedWhileInverted(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.Start()
	s.SetInvertedMode(true)

	s.Swell(time.Second)
	if s.cond.swellRemaining != 0 {
		t.Error("Expected no swell scheduled while inverted")
	}

	s.SetInvertedMode(false)
	s.Swell(time.Second)
	if s.cond.swellRemaining == 0 {
		t.Error("Expected swell scheduled in normal mode")
	}
}

// TestSoundscapeStopFadesVoices verifies Stop releases every voice
// rather than cutting it
func TestSoundscapeStopFadesVoices(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.Start()
	s.Stop()

	if s.Active() {
		t.Error("Expected inactive soundscape after Stop")
	}
	if s.drones[0].GainTarget() != 0 {
		t.Errorf("Expected drone releasing toward 0, got %f", s.drones[0].GainTarget())
	}
	if !s.drones[0].Active() {
		t.Error("Expected drone still fading, not cut")
	}
}

// TestSoundscapeDisposeBeforeStart verifies teardown is safe in any
// lifecycle order
func TestSoundscapeDisposeBeforeStart(t *testing.T) {
	s := NewSoundscape()
	s.Dispose()
	s.Dispose()
	s.Start()
	if s.Active() {
		t.Error("Expected disposed soundscape to ignore Start")
	}

	s2 := NewSoundscape()
	if err := s2.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s2.Start()
	s2.Dispose()
	if s2.Active() {
		t.Error("Expected inactive soundscape after Dispose")
	}
}

// TestConductorAdvancesChordInSampleTime verifies progression steps are
// driven by streamed samples, not wall clock
func TestConductorAdvancesChordInSampleTime(t *testing.T) {
	s := NewSoundscape()
	if err := s.Init(newTestChain(t)); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	s.Start()

	before := s.pads[0].freq.Target()

	// exactly one chord step worth of samples through the conductor
	block := make([][2]float64, 512)
	remaining := s.cond.stepSamples + 1
	for remaining > 0 {
		want := len(block)
		if remaining < want {
			want = remaining
		}
		s.cond.Stream(block[:want])
		remaining -= want
	}

	after := s.pads[0].freq.Target()
	if before == after {
		t.Error("Expected pad pitch to move after one chord step")
	}
}
