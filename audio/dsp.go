package audio

import (
	"math"

	"github.com/nightveil/lumendrift/parameter"
)

// onePole is a one-pole lowpass with a rampable cutoff, shared by the
// chain's tone filter and the sustained voices
type onePole struct {
	cutoff *Param // Hz
	coef   float64
	state  [parameter.AudioChannels]float64
	rate   float64
}

func newOnePole(cutoffHz, rate float64) *onePole {
	f := &onePole{cutoff: NewParam(cutoffHz), rate: rate}
	f.updateCoef()
	return f
}

func (f *onePole) updateCoef() {
	fc := f.cutoff.Value()
	if fc < parameter.FilterMinHz {
		fc = parameter.FilterMinHz
	}
	if fc > parameter.FilterMaxHz {
		fc = parameter.FilterMaxHz
	}
	f.coef = 1 - math.Exp(-2*math.Pi*fc/f.rate)
}

// step advances the cutoff ramp one sample and refreshes the coefficient
func (f *onePole) step() {
	if f.cutoff.Ramping() {
		f.cutoff.Step()
		f.updateCoef()
	}
}

func (f *onePole) process(ch int, x float64) float64 {
	f.state[ch] += f.coef * (x - f.state[ch])
	return f.state[ch]
}

// biquad is a direct-form-I second order filter
type biquad struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *biquad) setBandpass(centerHz, q, rate float64) {
	w := 2 * math.Pi * centerHz / rate
	alpha := math.Sin(w) / (2 * q)
	a0 := 1 + alpha
	f.b0 = alpha / a0
	f.b1 = 0
	f.b2 = -alpha / a0
	f.a1 = -2 * math.Cos(w) / a0
	f.a2 = (1 - alpha) / a0
}

func (f *biquad) setLowpass(cutoffHz, q, rate float64) {
	w := 2 * math.Pi * cutoffHz / rate
	alpha := math.Sin(w) / (2 * q)
	cw := math.Cos(w)
	a0 := 1 + alpha
	f.b0 = (1 - cw) / 2 / a0
	f.b1 = (1 - cw) / a0
	f.b2 = (1 - cw) / 2 / a0
	f.a1 = -2 * cw / a0
	f.a2 = (1 - alpha) / a0
}

func (f *biquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// combFilter is one feedback comb line of the reverb
type combFilter struct {
	buf    []float64
	pos    int
	decay  float64
	damp   float64
	dstate float64
}

func newComb(delaySamples int, decay, damp float64) *combFilter {
	return &combFilter{
		buf:   make([]float64, delaySamples),
		decay: decay,
		damp:  damp,
	}
}

func (c *combFilter) process(x float64) float64 {
	out := c.buf[c.pos]
	c.dstate = out*(1-c.damp) + c.dstate*c.damp
	c.buf[c.pos] = x + c.dstate*c.decay
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

// allpassFilter diffuses the comb output
type allpassFilter struct {
	buf  []float64
	pos  int
	gain float64
}

func newAllpass(delaySamples int, gain float64) *allpassFilter {
	return &allpassFilter{buf: make([]float64, delaySamples), gain: gain}
}

func (a *allpassFilter) process(x float64) float64 {
	delayed := a.buf[a.pos]
	out := -x*a.gain + delayed
	a.buf[a.pos] = x + delayed*a.gain
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

// schroeder is a small comb+allpass reverb. The delay lines are built
// once at chain init; processing is mono in, mono out per channel pair.
type schroeder struct {
	combs [4]*combFilter
	apass [2]*allpassFilter
}

// comb delays in samples at 44.1kHz, mutually prime tunings
var combTunings = [4]int{1557, 1617, 1491, 1422}
var allpassTunings = [2]int{225, 556}

// spread detunes the line lengths slightly; two instances with
// different spreads give the wet path its stereo width
func newSchroeder(rate, spread float64) *schroeder {
	scale := rate / 44100.0 * spread
	r := &schroeder{}
	for i, t := range combTunings {
		r.combs[i] = newComb(int(float64(t)*scale), parameter.ReverbDecay, parameter.ReverbDamp)
	}
	for i, t := range allpassTunings {
		r.apass[i] = newAllpass(int(float64(t)*scale), 0.5)
	}
	return r
}

func (r *schroeder) process(x float64) float64 {
	var sum float64
	for _, c := range r.combs {
		sum += c.process(x)
	}
	sum /= float64(len(r.combs))
	for _, a := range r.apass {
		sum = a.process(sum)
	}
	return sum
}

// feedbackDelay is a single-tap echo line with feedback
type feedbackDelay struct {
	buf      []float64
	pos      int
	feedback float64
}

func newFeedbackDelay(delaySamples int, feedback float64) *feedbackDelay {
	return &feedbackDelay{buf: make([]float64, delaySamples), feedback: feedback}
}

func (d *feedbackDelay) process(x float64) float64 {
	out := d.buf[d.pos]
	d.buf[d.pos] = x + out*d.feedback
	d.pos++
	if d.pos >= len(d.buf) {
		d.pos = 0
	}
	return out
}

// compressor is a peak-follower gain reduction stage
type compressor struct {
	threshold float64
	ratio     float64
	envelope  float64
	release   float64 // per-sample envelope decay
}

func newCompressor(threshold, ratio, releaseSec, rate float64) *compressor {
	return &compressor{
		threshold: threshold,
		ratio:     ratio,
		release:   math.Exp(-1 / (releaseSec * rate)),
	}
}

func (c *compressor) process(x float64) float64 {
	abs := math.Abs(x)
	if abs > c.envelope {
		c.envelope = abs
	} else {
		c.envelope *= c.release
	}
	if c.envelope <= c.threshold {
		return x
	}
	over := c.envelope - c.threshold
	gain := (c.threshold + over/c.ratio) / c.envelope
	return x * gain
}

// softLimit applies a tanh-style knee above 0.8 with a hard clip at 1.0
func softLimit(v float64) float64 {
	if v > 0.8 {
		v = 0.8 + 0.2*(1.0-1.0/(1.0+(v-0.8)*5.0))
	} else if v < -0.8 {
		v = -0.8 - 0.2*(1.0-1.0/(1.0+(-v-0.8)*5.0))
	}
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}

// widen rebalances mid/side content; width 0 is mono, 1 full stereo
func widen(l, r, width float64) (float64, float64) {
	mid := (l + r) * 0.5
	side := (l - r) * 0.5 * width
	return mid + side, mid - side
}
