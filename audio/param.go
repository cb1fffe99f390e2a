package audio

// Param is a scalar audio parameter mutated only through time-bounded
// linear ramps. Setting a new target cancels any ramp in flight and
// restarts from the current value, so repeated calls never double-apply.
// Not safe for concurrent use; the owning component's lock covers it.
type Param struct {
	value     float64
	target    float64
	step      float64
	remaining int
}

// NewParam creates a parameter resting at v
func NewParam(v float64) *Param {
	return &Param{value: v, target: v}
}

// Jump sets the value instantly. Reserved for first attack and
// initialization; a sounding parameter must use SetTarget.
func (p *Param) Jump(v float64) {
	p.value = v
	p.target = v
	p.remaining = 0
	p.step = 0
}

// SetTarget starts a ramp from the current value to v over durSamples
func (p *Param) SetTarget(v float64, durSamples int) {
	if durSamples <= 0 {
		p.Jump(v)
		return
	}
	p.target = v
	p.remaining = durSamples
	p.step = (v - p.value) / float64(durSamples)
}

// Step advances one sample and returns the new value.
// The final step lands exactly on the target.
func (p *Param) Step() float64 {
	if p.remaining > 0 {
		p.value += p.step
		p.remaining--
		if p.remaining == 0 {
			p.value = p.target
		}
	}
	return p.value
}

// StepN advances n samples at once, used by block-based processors
func (p *Param) StepN(n int) float64 {
	for i := 0; i < n; i++ {
		p.Step()
	}
	return p.value
}

// Value returns the current value without advancing
func (p *Param) Value() float64 { return p.value }

// Target returns the ramp destination
func (p *Param) Target() float64 { return p.target }

// Ramping reports whether a ramp is still in flight
func (p *Param) Ramping() bool { return p.remaining > 0 }
