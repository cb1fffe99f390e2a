package audio

import (
	"math"
	"testing"
)

// TestSoftLimitBounds verifies the limiter keeps any input inside the
// valid sample range
func TestSoftLimitBounds(t *testing.T) {
	inputs := []float64{0, 0.5, 0.79, 1, 2, 10, -0.5, -1, -5}
	for _, in := range inputs {
		out := softLimit(in)
		if out < -1 || out > 1 {
			t.Errorf("softLimit(%f) = %f outside [-1, 1]", in, out)
		}
	}
}

// TestSoftLimitLinearBelowKnee verifies quiet signals pass untouched
func TestSoftLimitLinearBelowKnee(t *testing.T) {
	for _, in := range []float64{0, 0.2, -0.2, 0.5, -0.79} {
		if out := softLimit(in); out != in {
			t.Errorf("Expected pass-through below knee: softLimit(%f) = %f", in, out)
		}
	}
}

// TestSoftLimitMonotonic verifies louder input never maps quieter
func TestSoftLimitMonotonic(t *testing.T) {
	prev := softLimit(0)
	for in := 0.05; in < 4; in += 0.05 {
		out := softLimit(in)
		if out < prev {
			t.Fatalf("softLimit not monotonic at %f: %f < %f", in, out, prev)
		}
		prev = out
	}
}

// TestOnePoleConvergesToDC verifies the lowpass settles onto a constant
// input
func TestOnePoleConvergesToDC(t *testing.T) {
	f := newOnePole(1000, 44100)
	var out float64
	for i := 0; i < 44100; i++ {
		f.step()
		out = f.process(0, 0.8)
	}
	if math.Abs(out-0.8) > 0.001 {
		t.Errorf("Expected convergence to 0.8, got %f", out)
	}
}

// TestOnePoleChannelsIndependent verifies the two stereo channels keep
// separate state
func TestOnePoleChannelsIndependent(t *testing.T) {
	f := newOnePole(1000, 44100)
	for i := 0; i < 4410; i++ {
		f.step()
		f.process(0, 1)
		f.process(1, -1)
	}
	f.step()
	left := f.process(0, 1)
	right := f.process(1, -1)
	if left <= 0 || right >= 0 {
		t.Errorf("Expected opposite channel states, got %f / %f", left, right)
	}
}

// TestBiquadBandpassSelective verifies the bandpass passes its center
// and rejects far-off frequencies
func TestBiquadBandpassSelective(t *testing.T) {
	rate := 44100.0
	center := 1000.0

	energy := func(freq float64) float64 {
		var f biquad
		f.setBandpass(center, 1.2, rate)
		sum := 0.0
		n := 8820
		for i := 0; i < n; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / rate)
			y := f.process(x)
			if i > n/2 { // skip transient
				sum += y * y
			}
		}
		return sum
	}

	pass := energy(center)
	reject := energy(center * 16)
	if pass <= reject*4 {
		t.Errorf("Expected bandpass selectivity: pass=%f reject=%f", pass, reject)
	}
}

// TestBiquadLowpassRollsOff verifies the lowpass passes frequencies
// below the cutoff and attenuates those far above it
func TestBiquadLowpassRollsOff(t *testing.T) {
	rate := 44100.0
	cutoff := 200.0

	energy := func(freq float64) float64 {
		var f biquad
		f.setLowpass(cutoff, 0.8, rate)
		sum := 0.0
		n := 8820
		for i := 0; i < n; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / rate)
			y := f.process(x)
			if i > n/2 { // skip transient
				sum += y * y
			}
		}
		return sum
	}

	low := energy(cutoff / 4)
	high := energy(cutoff * 32)
	if low <= high*16 {
		t.Errorf("Expected lowpass roll-off: low=%f high=%f", low, high)
	}
}

// TestFeedbackDelayEchoes verifies an impulse returns after the delay
// length at reduced level
func TestFeedbackDelayEchoes(t *testing.T) {
	delay := 100
	d := newFeedbackDelay(delay, 0.5)

	first := d.process(1)
	if first != 0 {
		t.Errorf("Expected silent first tap, got %f", first)
	}

	var echo float64
	for i := 1; i <= delay; i++ {
		echo = d.process(0)
	}
	if echo != 1 {
		t.Errorf("Expected first echo at input level, got %f", echo)
	}

	var second float64
	for i := 0; i < delay; i++ {
		second = d.process(0)
	}
	if second != 0.5 {
		t.Errorf("Expected feedback-attenuated second echo, got %f", second)
	}
}

// TestSchroederProducesTail verifies the reverb rings after the input
// stops
func TestSchroederProducesTail(t *testing.T) {
	r := newSchroeder(44100, 1.0)

	for i := 0; i < 4410; i++ {
		r.process(0.5)
	}

	tail := 0.0
	for i := 0; i < 8820; i++ {
		tail += math.Abs(r.process(0))
	}
	if tail == 0 {
		t.Error("Expected reverb tail after input stops")
	}
}

// TestWidenPreservesMono verifies a centered signal survives any width
func TestWidenPreservesMono(t *testing.T) {
	for _, w := range []float64{0, 0.5, 1} {
		l, r := widen(0.6, 0.6, w)
		if math.Abs(l-r) > 1e-12 {
			t.Errorf("Expected symmetric output at width %f: %f / %f", w, l, r)
		}
	}
}

// TestCompressorReducesLoudPeaks verifies gain reduction above the
// threshold
func TestCompressorReducesLoudPeaks(t *testing.T) {
	c := newCompressor(0.6, 3, 0.12, 44100)

	var out float64
	for i := 0; i < 4410; i++ {
		out = c.process(0.95)
	}
	if out >= 0.95 {
		t.Errorf("Expected compressed output below input, got %f", out)
	}
	if out <= 0 {
		t.Errorf("Expected positive output, got %f", out)
	}
}
