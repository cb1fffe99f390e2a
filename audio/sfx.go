package audio

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

var ErrSFXNeedsChain = errors.New("sfx engine requires an initialized effect chain")

// CollectParams tunes the collect blip
type CollectParams struct {
	Velocity float64 // 0..1, 0 means default
	Pitch    int     // semitone offset from the collect root
}

// SFXEngine fires discrete musical gestures keyed by game events and
// drives the continuous textures. Every trigger is fire-and-forget: a
// freshly built streamer graph appended to a chain bus, self-expiring
// when drained. Nothing here ever propagates an error into game logic.
type SFXEngine struct {
	mu sync.Mutex

	initialized bool
	disposed    bool
	chain       *EffectChain

	masterGain float64 // proportional scale over every group

	comboCount int
	comboLast  time.Time
	now        func() time.Time

	crackle    *crackleVoice
	suction    *SustainVoice
	attraction *SustainVoice
}

// NewSFXEngine creates an uninitialized engine
func NewSFXEngine() *SFXEngine {
	return &SFXEngine{
		masterGain: 1,
		now:        time.Now,
	}
}

// Init builds the texture voices and connects them to the chain.
// Requires an initialized chain; send buses must exist first.
func (e *SFXEngine) Init(chain *EffectChain) error {
	e.mu.Lock()
	if e.disposed || e.initialized {
		e.mu.Unlock()
		return nil
	}
	if chain == nil || !chain.Initialized() {
		e.mu.Unlock()
		return ErrSFXNeedsChain
	}
	e.chain = chain
	e.crackle = newCrackleVoice()
	e.suction = NewSustainVoice(core.WaveSaw, parameter.SuctionBaseHz, 1200)
	e.suction.SetDetune(0.006)
	e.attraction = NewSustainVoice(core.WaveSine, parameter.AttractionHz, 400)
	e.initialized = true
	e.mu.Unlock()

	chain.AddToMain(e.crackle)
	chain.AddToMain(e.suction)
	chain.AddToDelay(e.attraction)
	return nil
}

// Initialized reports whether Init completed
func (e *SFXEngine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialized
}

// SetVolume scales every voice group proportionally, preserving the
// internal balance. Running textures retarget immediately by the
// old/new gain ratio; one-shots already in flight keep the gain they
// were launched with and fade out on their own.
func (e *SFXEngine) SetVolume(db float64) {
	e.mu.Lock()
	old := e.masterGain
	e.masterGain = dbToGain(db)
	ratio := e.masterGain / old
	crackle, suction, attraction := e.crackle, e.suction, e.attraction
	e.mu.Unlock()

	if ratio == 1 {
		return
	}
	if crackle != nil {
		crackle.scaleLevel(ratio, parameter.TextureUpdateRamp)
	}
	if suction != nil {
		suction.ScaleLevel(ratio, parameter.TextureUpdateRamp)
	}
	if attraction != nil {
		attraction.ScaleLevel(ratio, parameter.TextureUpdateRamp)
	}
}

// TextureActive reports whether one continuous texture is sounding
// (or still fading), for status displays
func (e *SFXEngine) TextureActive(t core.TextureType) bool {
	e.mu.Lock()
	crackle, suction, attraction := e.crackle, e.suction, e.attraction
	e.mu.Unlock()
	switch t {
	case core.TextureCrackle:
		return crackle != nil && crackle.isActive()
	case core.TextureSuction:
		return suction != nil && suction.Active()
	case core.TextureAttraction:
		return attraction != nil && attraction.Active()
	}
	return false
}

// ComboCount returns the running collect combo, for state probes
func (e *SFXEngine) ComboCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.comboCount
}

// comboBoost is the combo-derived multiplicative velocity factor,
// saturating at the combo cap
func comboBoost(combo int) float64 {
	if combo > parameter.ComboCap {
		combo = parameter.ComboCap
	}
	if combo < 1 {
		combo = 1
	}
	return math.Pow(parameter.ComboVelocityBoost, float64(combo-1))
}

// begin snapshots shared state behind the lock; ok is false when the
// engine must no-op
func (e *SFXEngine) begin() (chain *EffectChain, gain float64, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized || e.disposed {
		return nil, 0, false
	}
	return e.chain, e.masterGain, true
}

// submit appends a gesture to a bus. Any scheduling failure is
// swallowed: audio glitches must not crash game logic.
func (e *SFXEngine) submit(add func(beep.Streamer) bool, s beep.Streamer) {
	defer func() { _ = recover() }()
	if s == nil {
		return
	}
	add(s)
}

// PlayCollect is the softest, most frequent gesture. Successive calls
// inside the combo window climb the pentatonic ladder and boost
// velocity multiplicatively up to the cap; past the layer threshold an
// extra harmonic layer joins as a reward for rapid play.
func (e *SFXEngine) PlayCollect(p CollectParams) {
	e.mu.Lock()
	if !e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}
	now := e.now()
	if now.Sub(e.comboLast) < parameter.ComboWindow {
		if e.comboCount < parameter.ComboCap {
			e.comboCount++
		}
	} else {
		e.comboCount = 1
	}
	e.comboLast = now
	combo := e.comboCount
	chain, gain := e.chain, e.masterGain
	e.mu.Unlock()

	vel := p.Velocity
	if vel <= 0 {
		vel = 0.7
	}
	vol := 0.12 * vel * comboBoost(combo) * gain
	freq := NoteFreq(CollectNote(81+p.Pitch, combo-1))

	e.submit(chain.AddToMain, shapedTone(freq, parameter.CollectDuration, parameter.CollectAttack, parameter.CollectRelease, core.WaveSine, vol))
	e.submit(chain.AddToReverb, shapedTone(freq, parameter.CollectDuration, parameter.CollectAttack, parameter.CollectRelease, core.WaveSine, vol*0.35))
	if combo >= parameter.ComboLayerThreshold {
		e.submit(chain.AddToReverb, shapedTone(freq*2, parameter.CollectDuration, parameter.CollectAttack, parameter.CollectRelease, core.WaveSine, vol*0.4))
	}
}

// PlaySuperStarCollect plays a rising major arpeggio
func (e *SFXEngine) PlaySuperStarCollect() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	notes := make([]beep.Streamer, len(superStarArp))
	for i, off := range superStarArp {
		notes[i] = shapedTone(NoteFreq(81+off), parameter.SuperStarNoteDuration, parameter.SuperStarAttack, parameter.SuperStarRelease, core.WaveTriangle, 0.16*gain)
	}
	e.submit(chain.AddToMain, beep.Seq(notes...))
	e.submit(chain.AddToReverb, shapedTone(NoteFreq(93), parameter.SuperStarNoteDuration, parameter.SuperStarAttack, parameter.SuperStarRelease, core.WaveSine, 0.06*gain))
}

// PlayRedHeartCapture plays a warm sustained triad
func (e *SFXEngine) PlayRedHeartCapture() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	voices := make([]beep.Streamer, len(heartTriad))
	for i, off := range heartTriad {
		voices[i] = shapedTone(NoteFreq(64+off), parameter.HeartDuration, parameter.HeartAttack, parameter.HeartRelease, core.WaveSine, 0.1*gain)
	}
	e.submit(chain.AddToReverb, beep.Mix(voices...))
}

// PlayCapture plays a short neutral pluck
func (e *SFXEngine) PlayCapture() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	e.submit(chain.AddToMain, shapedTone(NoteFreq(76), parameter.CaptureDuration, parameter.CaptureAttack, parameter.CaptureRelease, core.WaveTriangle, 0.14*gain))
}

// PlayDischarge fires a descending buzz; higher levels add voices and
// loudness, never less
func (e *SFXEngine) PlayDischarge(level int) {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	if level < 1 {
		level = 1
	}
	voices := 1 + min(level, 3)
	vol := 0.09 * (1 + 0.12*float64(min(level, 6))) * gain
	layers := make([]beep.Streamer, voices)
	for i := 0; i < voices; i++ {
		start := NoteFreq(57 - i*5)
		layers[i] = shapedGlide(start, start*0.5, parameter.DischargeDuration, parameter.DischargeAttack, parameter.DischargeRelease, core.WaveSaw, vol/float64(voices))
	}
	e.submit(chain.AddToMain, beep.Mix(layers...))
	e.submit(chain.AddToDelay, shapedNoise(900, 1.0, parameter.DischargeDuration, parameter.DischargeAttack, parameter.DischargeRelease, vol*0.3))
}

// PlayLevelUp plays an ascending arpeggio that grows with the level
func (e *SFXEngine) PlayLevelUp(level int) {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	if level < 1 {
		level = 1
	}
	count := min(2+level, len(levelUpArp))
	vol := 0.13 * (1 + 0.06*float64(min(level, parameter.MaxGameLevel))) * gain
	notes := make([]beep.Streamer, count)
	for i := 0; i < count; i++ {
		notes[i] = shapedTone(NoteFreq(69+levelUpArp[i]), parameter.LevelUpNoteDuration, parameter.LevelUpAttack, parameter.LevelUpRelease, core.WaveTriangle, vol)
	}
	e.submit(chain.AddToMain, beep.Seq(notes...))
	e.submit(chain.AddToReverb, shapedTone(NoteFreq(81+levelUpArp[count-1]), parameter.LevelUpNoteDuration, parameter.LevelUpAttack, parameter.LevelUpRelease, core.WaveSine, vol*0.3))
}

// PlayMaxStack plays a bright stacked-fifth voicing
func (e *SFXEngine) PlayMaxStack() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	voices := make([]beep.Streamer, len(maxStackVoicing))
	for i, off := range maxStackVoicing {
		voices[i] = shapedTone(NoteFreq(69+off), parameter.MaxStackDuration, parameter.MaxStackAttack, parameter.MaxStackRelease, core.WaveSquare, 0.05*gain)
	}
	e.submit(chain.AddToReverb, beep.Mix(voices...))
}

// PlayModalEnter plays a soft upward chime
func (e *SFXEngine) PlayModalEnter() {
	e.playModal(true)
}

// PlayModalClose plays the downward mirror of PlayModalEnter
func (e *SFXEngine) PlayModalClose() {
	e.playModal(false)
}

func (e *SFXEngine) playModal(up bool) {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	lo, hi := NoteFreq(72), NoteFreq(79)
	first, second := lo, hi
	if !up {
		first, second = hi, lo
	}
	e.submit(chain.AddToMain, beep.Seq(
		shapedTone(first, parameter.ModalDuration/2, parameter.ModalAttack, parameter.ModalRelease/2, core.WaveSine, 0.1*gain),
		shapedTone(second, parameter.ModalDuration/2, parameter.ModalAttack, parameter.ModalRelease/2, core.WaveSine, 0.08*gain),
	))
}

// PlayChamberCapture plays a tone cluster that thickens with count
func (e *SFXEngine) PlayChamberCapture(count int) {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	if count < 1 {
		count = 1
	}
	voices := 1 + min(count, 4)
	vol := 0.07 * (1 + 0.1*float64(min(count, 8))) * gain
	cluster := make([]beep.Streamer, voices)
	for i := 0; i < voices; i++ {
		cluster[i] = shapedTone(NoteFreq(69+i*3), parameter.ChamberNoteDuration, parameter.ChamberAttack, parameter.ChamberRelease, core.WaveTriangle, vol/float64(voices))
	}
	e.submit(chain.AddToMain, beep.Mix(cluster...))
}

// PlayBridgeSpawn plays a rising glide tone
func (e *SFXEngine) PlayBridgeSpawn() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	e.submit(chain.AddToDelay, shapedGlide(NoteFreq(52), NoteFreq(64), parameter.BridgeSpawnDuration, parameter.BridgeSpawnAttack, parameter.BridgeSpawnRelease, core.WaveSine, 0.12*gain))
}

// PlayCollectionComplete plays a resolved cadence
func (e *SFXEngine) PlayCollectionComplete() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	steps := make([]beep.Streamer, len(cadenceSteps))
	for i, off := range cadenceSteps {
		steps[i] = shapedTone(NoteFreq(76+off), parameter.CompleteNoteDuration, parameter.CompleteAttack, parameter.CompleteRelease, core.WaveSine, 0.14*gain)
	}
	e.submit(chain.AddToMain, beep.Seq(steps...))
	e.submit(chain.AddToReverb, shapedTone(NoteFreq(88), parameter.CompleteNoteDuration*2, parameter.CompleteAttack, parameter.CompleteRelease*2, core.WaveSine, 0.05*gain))
}

// PlayRejectDischarge plays a dull lowpassed thud
func (e *SFXEngine) PlayRejectDischarge() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	e.submit(chain.AddToMain, beep.Mix(
		shapedGlide(140, 60, parameter.RejectDuration, parameter.RejectAttack, parameter.RejectRelease, core.WaveSine, 0.18*gain),
		shapedNoise(220, 0.9, parameter.RejectDuration, parameter.RejectAttack, parameter.RejectRelease, 0.06*gain),
	))
}

// PlaySpiralSpawn plays a dissonant cluster announcing the threat
func (e *SFXEngine) PlaySpiralSpawn() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	voices := make([]beep.Streamer, len(spiralCluster))
	for i, off := range spiralCluster {
		voices[i] = shapedTone(NoteFreq(58+off), parameter.SpiralSpawnDuration, parameter.SpiralAttack, parameter.SpiralRelease, core.WaveSaw, 0.06*gain)
	}
	e.submit(chain.AddToReverb, beep.Mix(voices...))
}

// PlaySpiralDefeat plays a downward sweep with a noise tail
func (e *SFXEngine) PlaySpiralDefeat() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	e.submit(chain.AddToMain, beep.Mix(
		shapedGlide(NoteFreq(70), NoteFreq(46), parameter.SpiralDefeatDuration, parameter.SpiralAttack, parameter.SpiralRelease, core.WaveSaw, 0.12*gain),
		shapedNoise(1800, 1.1, parameter.SpiralDefeatDuration, parameter.SpiralAttack, parameter.SpiralRelease, 0.05*gain),
	))
}

// PlaySpiralDamage plays a short bandpassed hit
func (e *SFXEngine) PlaySpiralDamage() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	e.submit(chain.AddToMain, shapedNoise(1200, 1.4, parameter.SpiralDamageDuration, parameter.SpiralAttack, parameter.SpiralDamageDuration/2, 0.12*gain))
}

// PlayYouDied plays the end-of-game chord and noise fall. The
// orchestrator also stops the continuous layer on this event.
func (e *SFXEngine) PlayYouDied() {
	chain, gain, ok := e.begin()
	if !ok {
		return
	}
	voices := make([]beep.Streamer, 0, len(youDiedChord)+2)
	for _, off := range youDiedChord {
		voices = append(voices, shapedTone(NoteFreq(45+off), parameter.YouDiedDuration, parameter.YouDiedAttack, parameter.YouDiedRelease, core.WaveSine, 0.09*gain))
	}
	voices = append(voices, shapedGlide(NoteFreq(57), NoteFreq(33), parameter.YouDiedDuration, parameter.YouDiedAttack, parameter.YouDiedRelease, core.WaveSaw, 0.05*gain))
	voices = append(voices, shapedRumble(180, 0.8, parameter.YouDiedDuration, parameter.YouDiedAttack, parameter.YouDiedRelease, 0.07*gain))
	e.submit(chain.AddToReverb, beep.Mix(voices...))
}

// SetChamberCrackling drives the chamber texture by chamber count.
// Zero or less ramps down and fully stops the voice after its fade;
// a positive count while active only retargets the modulation.
func (e *SFXEngine) SetChamberCrackling(count int) {
	e.mu.Lock()
	if !e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}
	crackle, gain := e.crackle, e.masterGain
	e.mu.Unlock()

	if count <= 0 {
		crackle.release(parameter.TextureReleaseRamp)
		return
	}
	density := parameter.CrackleBaseDensity * float64(count)
	if density > parameter.CrackleMaxDensity {
		density = parameter.CrackleMaxDensity
	}
	level := parameter.CrackleLevel * (0.5 + 0.5*float64(min(count, 8))/8) * gain
	ramp := parameter.TextureUpdateRamp
	if !crackle.isActive() {
		ramp = parameter.TextureAttackRamp
	}
	crackle.set(density, level, ramp)
}

// SetSpiralSuction drives the attraction hum by live intensity
func (e *SFXEngine) SetSpiralSuction(intensity float64) {
	e.mu.Lock()
	if !e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}
	suction, gain := e.suction, e.masterGain
	e.mu.Unlock()

	if intensity <= 0 {
		suction.Stop(parameter.TextureReleaseRamp)
		return
	}
	if intensity > 1 {
		intensity = 1
	}
	ramp := parameter.TextureUpdateRamp
	if !suction.Active() {
		ramp = parameter.TextureAttackRamp
	}
	suction.SetPitch(parameter.SuctionBaseHz+intensity*parameter.SuctionRangeHz, ramp)
	suction.Start(parameter.SuctionLevel*intensity*gain, ramp)
}

// SetBridgeAttraction drives the bridge pull drone by strength
func (e *SFXEngine) SetBridgeAttraction(strength float64) {
	e.mu.Lock()
	if !e.initialized || e.disposed {
		e.mu.Unlock()
		return
	}
	attraction, gain := e.attraction, e.masterGain
	e.mu.Unlock()

	if strength <= 0 {
		attraction.Stop(parameter.TextureReleaseRamp)
		return
	}
	if strength > 1 {
		strength = 1
	}
	ramp := parameter.TextureUpdateRamp
	if !attraction.Active() {
		ramp = parameter.TextureAttackRamp
	}
	attraction.SetTremolo(parameter.AttractionTremRate, 0.3+0.6*strength, ramp)
	attraction.Start(parameter.AttractionLevel*strength*gain, ramp)
}

// Dispose stops the continuous textures first, then releases the engine
func (e *SFXEngine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	crackle, suction, attraction := e.crackle, e.suction, e.attraction
	e.disposed = true
	e.initialized = false
	e.mu.Unlock()

	if crackle != nil {
		crackle.release(parameter.TextureReleaseRamp)
	}
	if suction != nil {
		suction.Stop(parameter.TextureReleaseRamp)
	}
	if attraction != nil {
		attraction.Stop(parameter.TextureReleaseRamp)
	}
}
