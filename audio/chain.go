package audio

import (
	"errors"
	"sync"

	"github.com/gopxl/beep"

	"github.com/nightveil/lumendrift/parameter"
)

// Sentinel errors
var (
	ErrChainNotInitialized = errors.New("effect chain not initialized")
	ErrChainDisposed       = errors.New("effect chain disposed")
)

// EffectChain builds the shared mix topology once and exposes stable
// fan-in handles to every sound-producing component:
//
//	dry bus    -> tone filter ---\
//	reverb bus -> reverb  -> wet--+-> compressor -> limiter -> widener
//	delay bus  -> delay   -> echo/         -> master gain -> mute
//
// Buses are connect-once; nothing disconnects before Dispose.
type EffectChain struct {
	mu sync.Mutex

	initialized bool
	disposed    bool
	muted       bool
	rate        float64

	dry *beep.Mixer
	rev *beep.Mixer
	del *beep.Mixer

	tone      *onePole
	reverb    [2]*schroeder
	delay     [2]*feedbackDelay
	comp      *compressor
	reverbMix *Param
	delayMix  *Param
	width     *Param
	master    *Param // linear gain
	mute      *Param // 1 open, 0 closed

	underwater bool
	masterDB   float64

	// scratch buffers reused across Stream calls
	dryBuf, revBuf, delBuf [][2]float64
}

// NewEffectChain creates an unbuilt chain; Init assembles the graph
func NewEffectChain() *EffectChain {
	return &EffectChain{rate: float64(parameter.AudioSampleRate)}
}

// Init builds the mix topology. Idempotent; the reverb delay-line
// generation completes before initialized is set, so handles are only
// visible once the graph is usable.
func (c *EffectChain) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrChainDisposed
	}
	if c.initialized {
		return nil
	}

	c.dry = &beep.Mixer{}
	c.rev = &beep.Mixer{}
	c.del = &beep.Mixer{}

	c.tone = newOnePole(parameter.BrightCutoffHz, c.rate)
	c.reverb[0] = newSchroeder(c.rate, 1.0)
	c.reverb[1] = newSchroeder(c.rate, 1.017)
	delaySamples := parameter.SamplesFor(parameter.DelayTime)
	c.delay[0] = newFeedbackDelay(delaySamples, parameter.DelayFeedback)
	c.delay[1] = newFeedbackDelay(delaySamples+311, parameter.DelayFeedback)
	c.comp = newCompressor(parameter.CompThreshold, parameter.CompRatio, parameter.CompReleaseSec, c.rate)

	c.reverbMix = NewParam(parameter.DefaultReverbMix)
	c.delayMix = NewParam(parameter.DefaultDelayMix)
	c.width = NewParam(parameter.DefaultWidth)
	c.masterDB = parameter.DefaultMasterVolumeDB
	c.master = NewParam(dbToGain(c.masterDB))
	c.mute = NewParam(1)

	c.initialized = true
	return nil
}

// Initialized reports whether the graph has been built
func (c *EffectChain) Initialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// MainInput returns the shared dry input bus, nil before Init
func (c *EffectChain) MainInput() *beep.Mixer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	return c.dry
}

// ReverbSend returns the reverb send bus, nil before Init
func (c *EffectChain) ReverbSend() *beep.Mixer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	return c.rev
}

// DelaySend returns the delay send bus, nil before Init
func (c *EffectChain) DelaySend() *beep.Mixer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	return c.del
}

// MasterChannel returns the chain output streamer, nil before Init.
// This is the single streamer handed to the speaker.
func (c *EffectChain) MasterChannel() beep.Streamer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	return c
}

// AddToMain connects a voice to the dry input bus. Connection shares
// the chain lock with Stream, so producers may attach while audio runs.
func (c *EffectChain) AddToMain(s beep.Streamer) bool {
	return c.connect(func() *beep.Mixer { return c.dry }, s)
}

// AddToReverb connects a voice to the reverb send bus
func (c *EffectChain) AddToReverb(s beep.Streamer) bool {
	return c.connect(func() *beep.Mixer { return c.rev }, s)
}

// AddToDelay connects a voice to the delay send bus
func (c *EffectChain) AddToDelay(s beep.Streamer) bool {
	return c.connect(func() *beep.Mixer { return c.del }, s)
}

func (c *EffectChain) connect(bus func() *beep.Mixer, s beep.Streamer) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.disposed || s == nil {
		return false
	}
	bus().Add(s)
	return true
}

// SetMasterVolume ramps the master gain to the given level in dB
func (c *EffectChain) SetMasterVolume(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	c.masterDB = db
	c.master.SetTarget(dbToGain(db), parameter.SamplesFor(parameter.MasterVolumeRamp))
}

// MasterVolumeDB returns the current master target in dB
func (c *EffectChain) MasterVolumeDB() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.masterDB
}

// SetMuted ramps the mute stage closed or open. While muted the master
// output is forced to exact zero once the short ramp lands.
func (c *EffectChain) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.muted == muted {
		return
	}
	c.muted = muted
	target := 1.0
	if muted {
		target = 0
	}
	c.mute.SetTarget(target, parameter.SamplesFor(parameter.MuteRamp))
}

// Muted reports the mute state
func (c *EffectChain) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetReverbMix ramps the reverb wet level, clamped to 0..1
func (c *EffectChain) SetReverbMix(mix float64) {
	c.setMix(c.reverbMix, mix)
}

// SetDelayMix ramps the delay wet level, clamped to 0..1
func (c *EffectChain) SetDelayMix(mix float64) {
	c.setMix(c.delayMix, mix)
}

func (c *EffectChain) setMix(p *Param, mix float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	if mix < 0 {
		mix = 0
	}
	if mix > 1 {
		mix = 1
	}
	p.SetTarget(mix, parameter.SamplesFor(parameter.MixRamp))
}

// SetFilterFrequency ramps the shared tone filter cutoff, clamped to
// the audible range
func (c *EffectChain) SetFilterFrequency(hz float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	if hz < parameter.FilterMinHz {
		hz = parameter.FilterMinHz
	}
	if hz > parameter.FilterMaxHz {
		hz = parameter.FilterMaxHz
	}
	c.tone.cutoff.SetTarget(hz, parameter.SamplesFor(parameter.FilterRamp))
}

// SetUnderwaterMode muffles or brightens the whole mix by ramping the
// shared tone filter, signalling a game-state transition
func (c *EffectChain) SetUnderwaterMode(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.underwater == active {
		return
	}
	c.underwater = active
	target := parameter.BrightCutoffHz
	if active {
		target = parameter.UnderwaterCutoffHz
	}
	c.tone.cutoff.SetTarget(target, parameter.SamplesFor(parameter.UnderwaterRamp))
}

// FilterCutoffHz returns the tone filter's current cutoff
func (c *EffectChain) FilterCutoffHz() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return 0
	}
	return c.tone.cutoff.Value()
}

// Err implements beep.Streamer; the chain never self-terminates
func (c *EffectChain) Err() error {
	return nil
}

// Stream renders the full chain. Always returns ok so the speaker
// never drops the master; silence before Init or after Dispose.
func (c *EffectChain) Stream(samples [][2]float64) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized || c.disposed {
		for i := range samples {
			samples[i][0] = 0
			samples[i][1] = 0
		}
		return len(samples), true
	}

	n := len(samples)
	c.dryBuf = growBuf(c.dryBuf, n)
	c.revBuf = growBuf(c.revBuf, n)
	c.delBuf = growBuf(c.delBuf, n)
	zeroBuf(c.dryBuf[:n])
	zeroBuf(c.revBuf[:n])
	zeroBuf(c.delBuf[:n])

	c.dry.Stream(c.dryBuf[:n])
	c.rev.Stream(c.revBuf[:n])
	c.del.Stream(c.delBuf[:n])

	fullyMuted := c.muted && !c.mute.Ramping()

	for i := 0; i < n; i++ {
		c.tone.step()
		dl := c.tone.process(0, c.dryBuf[i][0])
		dr := c.tone.process(1, c.dryBuf[i][1])

		wet := c.reverbMix.Step()
		rl := c.reverb[0].process(c.revBuf[i][0]) * wet
		rr := c.reverb[1].process(c.revBuf[i][1]) * wet

		echo := c.delayMix.Step()
		el := c.delay[0].process(c.delBuf[i][0]) * echo
		er := c.delay[1].process(c.delBuf[i][1]) * echo

		l := c.comp.process((dl + rl + el) * parameter.LimiterDrivePad)
		r := c.comp.process((dr + rr + er) * parameter.LimiterDrivePad)
		l = softLimit(l)
		r = softLimit(r)
		l, r = widen(l, r, c.width.Step())

		g := c.master.Step() * c.mute.Step()
		if fullyMuted {
			g = 0
		}
		samples[i][0] = l * g
		samples[i][1] = r * g
	}
	return n, true
}

// Dispose releases the graph; safe to call repeatedly and before Init
func (c *EffectChain) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	c.disposed = true
	c.initialized = false
	c.dry = nil
	c.rev = nil
	c.del = nil
	c.reverb[0] = nil
	c.reverb[1] = nil
	c.delay[0] = nil
	c.delay[1] = nil
}

func growBuf(buf [][2]float64, n int) [][2]float64 {
	if cap(buf) < n {
		return make([][2]float64, n)
	}
	return buf[:n]
}

func zeroBuf(buf [][2]float64) {
	for i := range buf {
		buf[i][0] = 0
		buf[i][1] = 0
	}
}
