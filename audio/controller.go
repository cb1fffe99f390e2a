package audio

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/nightveil/lumendrift/core"
	"github.com/nightveil/lumendrift/parameter"
)

// State is a snapshot of the engine for UI and debugging
type State struct {
	Initialized bool
	Muted       bool
	Active      bool // soundscape sounding
	MasterDB    float64
	Tempo       float64
}

// Controller owns the engine lifecycle and is the single entry point
// for game code: it builds the effect chain, the soundscape and the
// SFX engine in dependency order, runs the backend unlock sequence,
// and guards every event trigger behind the init and mute state so the
// layers never have to.
type Controller struct {
	mu sync.Mutex

	cfg   *Config
	chain *EffectChain
	scape *Soundscape
	sfx   *SFXEngine

	initialized  bool
	disposed     bool
	muted        bool
	speakerReady bool

	// soundscape activity to restore when unmuting
	scapeWasActive bool

	unlocking atomic.Bool
}

// NewController creates an idle controller; nothing sounds until Init
func NewController(cfg *Config) *Controller {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Controller{
		cfg:   cfg,
		chain: NewEffectChain(),
		scape: NewSoundscape(),
		sfx:   NewSFXEngine(),
	}
}

// Init brings the whole engine up: backend unlock, then chain, then
// soundscape and SFX (both need the chain's buses), then the one
// speaker.Play of the master channel. Idempotent, and best-effort: a
// dead audio backend leaves a silent but fully functional engine so
// the game keeps running.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized || c.disposed {
		return nil
	}

	c.unlock()

	if err := c.chain.Init(); err != nil {
		return err
	}
	c.chain.SetMasterVolume(c.cfg.MasterVolumeDB)
	c.muted = c.cfg.StartMuted
	c.chain.SetMuted(c.muted)

	if err := c.scape.Init(c.chain); err != nil {
		return err
	}
	c.scape.SetTempo(c.cfg.Tempo)

	if err := c.sfx.Init(c.chain); err != nil {
		return err
	}

	if c.speakerReady {
		speaker.Play(c.chain.MasterChannel())
	}
	c.initialized = true
	return nil
}

// unlock runs the backend wake-up sequence. Each step is bounded by a
// timeout; failures are logged and skipped, never propagated.
// Re-entrant calls while a sequence is in flight are coalesced; once
// the backend is up further calls return immediately.
func (c *Controller) unlock() {
	if !c.unlocking.CompareAndSwap(false, true) {
		return
	}
	defer c.unlocking.Store(false)
	if c.speakerReady {
		return
	}

	rate := beep.SampleRate(c.cfg.SampleRate)

	if err := runStep("speaker init", parameter.UnlockStepTimeout, func() error {
		return speaker.Init(rate, c.cfg.BufferSize)
	}); err != nil {
		log.Printf("audio: %v", err)
		return
	}

	if err := runStep("speaker resume", parameter.UnlockStepTimeout, func() error {
		speaker.Resume()
		return nil
	}); err != nil {
		log.Printf("audio: %v", err)
	}

	// push a near-silent primer through the device; some backends only
	// open the output stream on first playback
	if err := runStep("primer", parameter.UnlockStepTimeout, func() error {
		sine, err := generators.SineTone(rate, 440)
		if err != nil {
			return err
		}
		primer := newVolume(beep.Take(rate.N(parameter.PrimerDuration), sine), parameter.PrimerGain)
		speaker.Play(primer)
		return nil
	}); err != nil {
		log.Printf("audio: %v", err)
	}

	c.speakerReady = true
}

// runStep executes fn with a hard deadline, converting panics and
// hangs in the audio backend into plain errors
func runStep(name string, timeout time.Duration, fn func() error) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s panicked: %v", name, r)
			}
		}()
		done <- fn()
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("%s timed out after %v", name, timeout)
	}
}

// Resume re-runs the unlock path on a later user interaction: a live
// backend is resumed directly, a backend that never came up gets the
// full sequence another try.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disposed {
		return
	}
	if c.speakerReady {
		speaker.Resume()
		return
	}
	c.unlock()
	if c.speakerReady && c.initialized {
		speaker.Play(c.chain.MasterChannel())
	}
}

// GetState snapshots the engine state
func (c *Controller) GetState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Initialized: c.initialized,
		Muted:       c.muted,
		Active:      c.scape.Active(),
		MasterDB:    c.chain.MasterVolumeDB(),
		Tempo:       c.cfg.Tempo,
	}
}

// ToggleMute flips the mute state and returns the new value. Muting
// literally stops the soundscape rather than just closing the gate;
// unmuting restores it if it was sounding before.
func (c *Controller) ToggleMute() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return c.muted
	}
	c.muted = !c.muted
	c.chain.SetMuted(c.muted)
	if c.muted {
		c.scapeWasActive = c.scape.Active()
		c.scape.Stop()
	} else if c.scapeWasActive {
		c.scape.Start()
	}
	return c.muted
}

// Muted reports the mute state
func (c *Controller) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// SetMasterVolume moves the master gain; the SFX group volume is a
// separate balance control and is left alone so the move never
// double-applies
func (c *Controller) SetMasterVolume(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	c.chain.SetMasterVolume(db)
}

// SetSFXVolume rebalances the one-shot group against the ambient bed
func (c *Controller) SetSFXVolume(db float64) {
	if c.ready() {
		c.sfx.SetVolume(db)
	}
}

// SetReverbMix adjusts the shared reverb return level
func (c *Controller) SetReverbMix(mix float64) {
	if c.ready() {
		c.chain.SetReverbMix(mix)
	}
}

// SetDelayMix adjusts the shared delay return level
func (c *Controller) SetDelayMix(mix float64) {
	if c.ready() {
		c.chain.SetDelayMix(mix)
	}
}

// SetFilterFrequency moves the master tone filter cutoff
func (c *Controller) SetFilterFrequency(hz float64) {
	if c.ready() {
		c.chain.SetFilterFrequency(hz)
	}
}

// SetUnderwaterMode toggles the muffled master filter state
func (c *Controller) SetUnderwaterMode(active bool) {
	if c.ready() {
		c.chain.SetUnderwaterMode(active)
	}
}

// StartSoundscape fades the ambient bed in
func (c *Controller) StartSoundscape() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	if c.muted {
		// remember intent; unmute restores it
		c.scapeWasActive = true
		return
	}
	c.scape.Start()
}

// StopSoundscape fades the ambient bed out
func (c *Controller) StopSoundscape() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	c.scapeWasActive = false
	c.scape.Stop()
}

// Modulation state setters pass through while muted: the soundscape
// remembers them, so unmuting resumes at the right character instead
// of a stale one.

// SetIntensity drives the ambient density from game activity
func (c *Controller) SetIntensity(intensity float64) {
	if c.ready() {
		c.scape.SetIntensity(intensity)
	}
}

// SetGameLevel brightens the bed as the player progresses
func (c *Controller) SetGameLevel(level int) {
	if c.ready() {
		c.scape.SetGameLevel(level)
	}
}

// SetInvertedMode switches the bed between the two emotional states
func (c *Controller) SetInvertedMode(active bool) {
	if c.ready() {
		c.scape.SetInvertedMode(active)
	}
}

// Swell runs a momentary ambient crescendo
func (c *Controller) Swell(d time.Duration) {
	if c.audible() {
		c.scape.Swell(d)
	}
}

// Event triggers. All no-op while muted or uninitialized; the guard
// lives here so the SFX engine stays policy-free.

func (c *Controller) PlayCollect(p CollectParams) {
	if c.audible() {
		c.sfx.PlayCollect(p)
	}
}

func (c *Controller) PlaySuperStarCollect() {
	if c.audible() {
		c.sfx.PlaySuperStarCollect()
	}
}

func (c *Controller) PlayRedHeartCapture() {
	if c.audible() {
		c.sfx.PlayRedHeartCapture()
	}
}

func (c *Controller) PlayCapture() {
	if c.audible() {
		c.sfx.PlayCapture()
	}
}

func (c *Controller) PlayDischarge(level int) {
	if c.audible() {
		c.sfx.PlayDischarge(level)
	}
}

func (c *Controller) PlayLevelUp(level int) {
	if c.audible() {
		c.sfx.PlayLevelUp(level)
	}
}

func (c *Controller) PlayMaxStack() {
	if c.audible() {
		c.sfx.PlayMaxStack()
	}
}

func (c *Controller) PlayModalEnter() {
	if c.audible() {
		c.sfx.PlayModalEnter()
	}
}

func (c *Controller) PlayModalClose() {
	if c.audible() {
		c.sfx.PlayModalClose()
	}
}

func (c *Controller) PlayChamberCapture(count int) {
	if c.audible() {
		c.sfx.PlayChamberCapture(count)
	}
}

func (c *Controller) PlayBridgeSpawn() {
	if c.audible() {
		c.sfx.PlayBridgeSpawn()
	}
}

func (c *Controller) PlayCollectionComplete() {
	if c.audible() {
		c.sfx.PlayCollectionComplete()
	}
}

func (c *Controller) PlayRejectDischarge() {
	if c.audible() {
		c.sfx.PlayRejectDischarge()
	}
}

func (c *Controller) PlaySpiralSpawn() {
	if c.audible() {
		c.sfx.PlaySpiralSpawn()
	}
}

func (c *Controller) PlaySpiralDefeat() {
	if c.audible() {
		c.sfx.PlaySpiralDefeat()
	}
}

func (c *Controller) PlaySpiralDamage() {
	if c.audible() {
		c.sfx.PlaySpiralDamage()
	}
}

// PlayYouDied fires the end-of-game gesture and takes the ambient bed
// down with it
func (c *Controller) PlayYouDied() {
	c.mu.Lock()
	audible := c.initialized && !c.muted
	c.mu.Unlock()
	if !audible {
		return
	}
	c.sfx.PlayYouDied()
	c.mu.Lock()
	c.scapeWasActive = false
	c.mu.Unlock()
	c.scape.Stop()
}

// Continuous texture drivers, same guard as events

func (c *Controller) SetChamberCrackling(count int) {
	if c.audible() {
		c.sfx.SetChamberCrackling(count)
	} else if c.ready() {
		// mute releases a running texture instead of freezing it
		c.sfx.SetChamberCrackling(0)
	}
}

func (c *Controller) SetSpiralSuction(intensity float64) {
	if c.audible() {
		c.sfx.SetSpiralSuction(intensity)
	} else if c.ready() {
		c.sfx.SetSpiralSuction(0)
	}
}

func (c *Controller) SetBridgeAttraction(strength float64) {
	if c.audible() {
		c.sfx.SetBridgeAttraction(strength)
	} else if c.ready() {
		c.sfx.SetBridgeAttraction(0)
	}
}

// LayerActive reports whether one soundscape layer is sounding
func (c *Controller) LayerActive(l core.LayerType) bool {
	return c.scape.LayerActive(l)
}

// TextureActive reports whether one continuous texture is sounding
func (c *Controller) TextureActive(t core.TextureType) bool {
	return c.sfx.TextureActive(t)
}

// Dispose tears the engine down in reverse dependency order. Safe
// before Init and safe to call twice.
func (c *Controller) Dispose() {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return
	}
	c.disposed = true
	c.initialized = false
	ready := c.speakerReady
	c.mu.Unlock()

	c.sfx.Dispose()
	c.scape.Dispose()
	c.chain.Dispose()
	if ready {
		speaker.Close()
	}
}

func (c *Controller) ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized && !c.disposed
}

func (c *Controller) audible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized && !c.disposed && !c.muted
}
