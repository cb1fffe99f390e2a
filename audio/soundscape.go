package audio

import (
	"errors"
	"sync"
	"time"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

var ErrScapeNeedsChain = errors.New("soundscape requires an initialized effect chain")

// voiceTarget is a conductor baseline entry: the level a voice returns
// to after a swell
type voiceTarget struct {
	voice *SustainVoice
	level float64
}

// conductor is a silent streamer on the dry bus that advances the
// chord progression and resolves swells in the sample domain, so the
// slow musical timers share the audio clock with the ramps they drive.
type conductor struct {
	mu sync.Mutex

	pads   []*SustainVoice
	drones []*SustainVoice

	progression []core.ChordStep
	stepSamples int
	pos         int
	stepIdx     int
	glide       time.Duration

	baseline       []voiceTarget
	swellRemaining int
	swellRamp      time.Duration
}

func (cd *conductor) Stream(samples [][2]float64) (int, bool) {
	cd.mu.Lock()
	defer cd.mu.Unlock()

	for i := range samples {
		samples[i][0] = 0
		samples[i][1] = 0
	}

	n := len(samples)
	cd.pos += n
	for cd.stepSamples > 0 && cd.pos >= cd.stepSamples {
		cd.pos -= cd.stepSamples
		cd.stepIdx++
		cd.applyChordLocked()
	}

	if cd.swellRemaining > 0 {
		cd.swellRemaining -= n
		if cd.swellRemaining <= 0 {
			cd.swellRemaining = 0
			for _, t := range cd.baseline {
				t.voice.SetLevel(t.level, cd.swellRamp)
			}
		}
	}
	return n, true
}

func (cd *conductor) Err() error { return nil }

// applyChordLocked retunes pads and drones to the current step
func (cd *conductor) applyChordLocked() {
	if len(cd.progression) == 0 {
		return
	}
	step := cd.progression[cd.stepIdx%len(cd.progression)]
	for i, pad := range cd.pads {
		offset := step.Offsets[i%len(step.Offsets)]
		pad.SetPitch(NoteFreq(step.Root+offset), cd.glide)
	}
	for i, drone := range cd.drones {
		drone.SetPitch(NoteFreq(step.Root-12*(i+1)), cd.glide)
	}
}

func (cd *conductor) applyChord() {
	cd.mu.Lock()
	cd.applyChordLocked()
	cd.mu.Unlock()
}

func (cd *conductor) setProgression(p []core.ChordStep) {
	cd.mu.Lock()
	cd.progression = p
	cd.stepIdx = 0
	cd.pos = 0
	cd.applyChordLocked()
	cd.mu.Unlock()
}

func (cd *conductor) setTempo(mult float64) {
	cd.mu.Lock()
	cd.stepSamples = int(float64(parameter.SamplesFor(parameter.ChordStepInterval)) / mult)
	cd.mu.Unlock()
}

func (cd *conductor) setBaseline(b []voiceTarget) {
	cd.mu.Lock()
	cd.baseline = b
	cd.swellRemaining = 0
	cd.mu.Unlock()
}

func (cd *conductor) swell(factor float64, d time.Duration) {
	cd.mu.Lock()
	defer cd.mu.Unlock()
	if cd.swellRemaining > 0 {
		return // one crescendo at a time
	}
	half := d / 2
	for _, t := range cd.baseline {
		t.voice.SetLevel(t.level*factor, half)
	}
	cd.swellRamp = half
	cd.swellRemaining = parameter.SamplesFor(half)
}

// Soundscape is the continuous modulation layer: two detuned drones, a
// chord pad, a shimmer layer, and an inverted-mode pulse layer, all
// connected once to the effect chain buses and driven by smooth ramps.
//
// State machine: uninitialized -> initialized -> active <-> inverted -> stopped.
type Soundscape struct {
	mu sync.Mutex

	initialized bool
	active      bool
	inverted    bool
	disposed    bool

	// remembered modulation state; every gain target derives from
	// these, never from a fixed baseline
	intensity float64
	level     int

	drones  [2]*SustainVoice
	pads    [4]*SustainVoice
	shimmer *SustainVoice
	pulse   *SustainVoice
	cond    *conductor
}

// NewSoundscape creates an uninitialized soundscape
func NewSoundscape() *Soundscape {
	return &Soundscape{intensity: 0.5, level: 1}
}

// Init builds the voices and connects them to the chain buses. The
// chain must already be initialized: connection order is a hard
// dependency, not a convenience. No audible output until Start.
func (s *Soundscape) Init(chain *EffectChain) error {
	s.mu.Lock()
	if s.disposed || s.initialized {
		s.mu.Unlock()
		return nil
	}
	if chain == nil || !chain.Initialized() {
		s.mu.Unlock()
		return ErrScapeNeedsChain
	}

	s.drones[0] = NewSustainVoice(core.WaveSaw, NoteFreq(45), 700)
	s.drones[0].SetDetune(0.004)
	s.drones[1] = NewSustainVoice(core.WaveSine, NoteFreq(33), 300)
	for i := range s.pads {
		s.pads[i] = NewSustainVoice(core.WaveTriangle, NoteFreq(57), parameter.LevelCutoffBaseHz)
	}
	s.shimmer = NewSustainVoice(core.WaveSine, NoteFreq(93), 9000)
	s.shimmer.SetTremolo(0.12, 0.6, 0)
	s.pulse = NewSustainVoice(core.WaveSquare, NoteFreq(33), 260)
	s.pulse.SetTremolo(2.0, 0.9, 0)

	s.cond = &conductor{
		pads:        s.pads[:],
		drones:      s.drones[:],
		progression: padProgression,
		stepSamples: parameter.SamplesFor(parameter.ChordStepInterval),
		glide:       parameter.LevelRamp,
	}
	s.initialized = true
	s.mu.Unlock()

	// connect outside the state lock; the chain lock also serializes
	// the speaker pull
	chain.AddToMain(s.cond)
	chain.AddToMain(s.drones[0])
	chain.AddToMain(s.drones[1])
	for _, pad := range s.pads {
		chain.AddToReverb(pad)
	}
	chain.AddToReverb(s.shimmer)
	chain.AddToDelay(s.pulse)
	return nil
}

// Initialized reports whether Init completed
func (s *Soundscape) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Active reports whether the bed is sounding
func (s *Soundscape) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Inverted reports the alternate emotional state
func (s *Soundscape) Inverted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inverted
}

// Start fades the bed in over several seconds. Idempotent: a second
// call while active changes nothing, so voices never stack. The
// audible state reflects the current level and intensity from the
// first rendered frame.
func (s *Soundscape) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.disposed || s.active {
		return
	}
	s.active = true
	s.cond.applyChord()
	s.applyTargetsLocked(parameter.SoundscapeFadeIn)
}

// Stop fades the bed out and silences the voices only after the fade
// lands, deferred in the ramps' own time domain
func (s *Soundscape) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Soundscape) stopLocked() {
	if !s.initialized || !s.active {
		return
	}
	s.active = false
	for _, v := range s.allVoices() {
		v.Stop(parameter.SoundscapeFadeOut)
	}
	s.cond.setBaseline(nil)
}

// SetIntensity retargets the layer gains as seconds-scale ramps,
// relative to the remembered state so repeated calls never drift
func (s *Soundscape) SetIntensity(intensity float64) {
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intensity = intensity
	if !s.active {
		return // remembered; applied on Start
	}
	s.applyTargetsLocked(parameter.IntensityRamp)
}

// SetGameLevel re-maps brightness and drive for the level bracket
func (s *Soundscape) SetGameLevel(level int) {
	if level < 1 {
		level = 1
	}
	if level > parameter.MaxGameLevel {
		level = parameter.MaxGameLevel
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.level = level
	if !s.initialized {
		return
	}
	cutoff := parameter.LevelCutoffBaseHz + float64(level-1)*parameter.LevelCutoffStepHz
	for _, pad := range s.pads {
		pad.SetCutoff(cutoff, parameter.LevelRamp)
	}
	if s.active {
		s.applyTargetsLocked(parameter.LevelRamp)
	}
}

// SetInvertedMode switches the alternate palette on or off. Repeated
// calls with the same value are no-ops. Leaving inverted mode restores
// the targets derived from the remembered intensity, not a default.
func (s *Soundscape) SetInvertedMode(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.inverted == active {
		return
	}
	s.inverted = active
	if active {
		s.cond.setProgression(invertedProgression)
	} else {
		s.cond.setProgression(padProgression)
	}
	if !s.active {
		return
	}
	s.applyTargetsLocked(parameter.InvertedRamp)
}

// Swell runs a momentary crescendo-and-return. Skipped while inverted:
// both effects contend for the same gain targets.
func (s *Soundscape) Swell(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || !s.active || s.inverted {
		return
	}
	if d <= 0 {
		d = parameter.SwellDefault
	}
	s.cond.swell(1.5, d)
}

// SetTempo scales the chord-step rate; 1 is the default pace. Accepted
// any time after Init and remembered by the conductor.
func (s *Soundscape) SetTempo(mult float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.disposed || mult <= 0 {
		return
	}
	s.cond.setTempo(mult)
}

// LayerActive reports whether one layer is sounding under the current
// remembered state, for status displays
func (s *Soundscape) LayerActive(l core.LayerType) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return false
	}
	return s.layerTargetLocked(l) > 0
}

// Intensity returns the remembered intensity
func (s *Soundscape) Intensity() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intensity
}

// Level returns the remembered game level
func (s *Soundscape) Level() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Dispose stops and releases every voice; safe if never started
func (s *Soundscape) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.stopLocked()
	s.disposed = true
	s.initialized = false
}

// driveLocked maps the game level onto a gentle gain multiplier
func (s *Soundscape) driveLocked() float64 {
	return 0.85 + 0.15*float64(s.level-1)/float64(parameter.MaxGameLevel-1)
}

// layerTargetLocked derives the gain target one layer should sit at
// for the current intensity, level and inverted state
func (s *Soundscape) layerTargetLocked(l core.LayerType) float64 {
	drive := s.driveLocked()
	switch l {
	case core.LayerDrone:
		return parameter.DroneLevel * (0.4 + 0.6*s.intensity) * drive
	case core.LayerPad:
		level := parameter.PadLevel * s.intensity * drive
		if s.inverted {
			level *= parameter.InvertedPadDim
		}
		return level
	case core.LayerShimmer:
		if s.inverted {
			return 0
		}
		return parameter.ShimmerLevel * s.intensity * s.intensity
	case core.LayerPulse:
		if s.inverted {
			return parameter.PulseLevel * drive
		}
		return 0
	}
	return 0
}

// applyTargetsLocked ramps every layer toward the gain derived from
// the remembered state. This is the single place layer targets are
// applied, so callers cannot double-apply and no layer is left behind
// when intensity, level or the palette changes.
func (s *Soundscape) applyTargetsLocked(ramp time.Duration) {
	droneLevel := s.layerTargetLocked(core.LayerDrone)
	padLevel := s.layerTargetLocked(core.LayerPad)
	shimmerLevel := s.layerTargetLocked(core.LayerShimmer)
	pulseLevel := s.layerTargetLocked(core.LayerPulse)

	baseline := make([]voiceTarget, 0, len(s.pads)+3)
	for _, d := range s.drones {
		d.Start(droneLevel, ramp)
		baseline = append(baseline, voiceTarget{d, droneLevel})
	}
	for _, pad := range s.pads {
		pad.Start(padLevel, ramp)
		baseline = append(baseline, voiceTarget{pad, padLevel})
	}
	if shimmerLevel > 0 {
		s.shimmer.Start(shimmerLevel, ramp)
	} else if s.shimmer.Active() {
		s.shimmer.Stop(ramp)
	}
	baseline = append(baseline, voiceTarget{s.shimmer, shimmerLevel})
	if pulseLevel > 0 {
		s.pulse.Start(pulseLevel, ramp)
	} else if s.pulse.Active() {
		s.pulse.Stop(ramp)
	}
	s.cond.setBaseline(baseline)
}

func (s *Soundscape) allVoices() []*SustainVoice {
	vs := []*SustainVoice{s.drones[0], s.drones[1], s.shimmer, s.pulse}
	for _, pad := range s.pads {
		vs = append(vs, pad)
	}
	return vs
}
