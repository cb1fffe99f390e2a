package parameter

import "time"

// Audio Hardware Settings
const (
	AudioSampleRate = 44100
	AudioChannels   = 2

	// AudioBufferDuration determines speaker latency
	AudioBufferDuration = 100 * time.Millisecond

	// Unlock sequence bounds; a wedged backend must not hang startup
	UnlockStepTimeout = 2 * time.Second
	PrimerDuration    = 60 * time.Millisecond
	PrimerGain        = 0.001
)

// Master Chain
const (
	MasterVolumeRamp = 700 * time.Millisecond
	MuteRamp         = 50 * time.Millisecond
	MixRamp          = 600 * time.Millisecond
	FilterRamp       = 800 * time.Millisecond

	// Tone filter clamp range
	FilterMinHz = 20.0
	FilterMaxHz = 20000.0

	// Underwater mode cutoff targets
	UnderwaterCutoffHz = 420.0
	BrightCutoffHz     = 16000.0
	UnderwaterRamp     = 800 * time.Millisecond

	DefaultMasterVolumeDB = -6.0
	DefaultReverbMix      = 0.35
	DefaultDelayMix       = 0.2

	// Reverb tail and delay line tuning
	ReverbDecay     = 0.82
	ReverbDamp      = 0.25
	DelayTime       = 340 * time.Millisecond
	DelayFeedback   = 0.45
	CompThreshold   = 0.6
	CompRatio       = 3.0
	CompReleaseSec  = 0.12
	DefaultWidth    = 0.6
	LimiterDrivePad = 0.95
)

// Soundscape Timing
const (
	SoundscapeFadeIn  = 4 * time.Second
	SoundscapeFadeOut = 2500 * time.Millisecond
	IntensityRamp     = 2 * time.Second
	LevelRamp         = 1200 * time.Millisecond
	InvertedRamp      = 1500 * time.Millisecond
	SwellDefault      = 3 * time.Second

	// Progression advance interval at the default tempo
	ChordStepInterval = 6 * time.Second
)

// Soundscape Mix Levels (linear gain at intensity 1.0)
const (
	DroneLevel   = 0.16
	PadLevel     = 0.11
	ShimmerLevel = 0.05
	PulseLevel   = 0.14

	// Pad dim factor while inverted mode holds
	InvertedPadDim = 0.3

	// Per-level brightness: tone cutoff rises with game level
	LevelCutoffBaseHz = 900.0
	LevelCutoffStepHz = 350.0
	MaxGameLevel      = 7
)

// Collect Combo
const (
	ComboWindow         = 300 * time.Millisecond
	ComboCap            = 8
	ComboVelocityBoost  = 1.09 // multiplicative per combo step
	ComboLayerThreshold = 4    // extra harmonic layer at and past this count
)

// One-Shot Gesture Timing
const (
	CollectDuration = 180 * time.Millisecond
	CollectAttack   = 4 * time.Millisecond
	CollectRelease  = 120 * time.Millisecond

	SuperStarNoteDuration = 110 * time.Millisecond
	SuperStarAttack       = 5 * time.Millisecond
	SuperStarRelease      = 70 * time.Millisecond

	HeartDuration = 700 * time.Millisecond
	HeartAttack   = 40 * time.Millisecond
	HeartRelease  = 500 * time.Millisecond

	CaptureDuration = 150 * time.Millisecond
	CaptureAttack   = 3 * time.Millisecond
	CaptureRelease  = 100 * time.Millisecond

	DischargeDuration = 450 * time.Millisecond
	DischargeAttack   = 8 * time.Millisecond
	DischargeRelease  = 300 * time.Millisecond

	LevelUpNoteDuration = 140 * time.Millisecond
	LevelUpAttack       = 5 * time.Millisecond
	LevelUpRelease      = 90 * time.Millisecond

	MaxStackDuration = 400 * time.Millisecond
	MaxStackAttack   = 6 * time.Millisecond
	MaxStackRelease  = 280 * time.Millisecond

	ModalDuration = 260 * time.Millisecond
	ModalAttack   = 12 * time.Millisecond
	ModalRelease  = 180 * time.Millisecond

	ChamberNoteDuration = 200 * time.Millisecond
	ChamberAttack       = 6 * time.Millisecond
	ChamberRelease      = 140 * time.Millisecond

	BridgeSpawnDuration = 500 * time.Millisecond
	BridgeSpawnAttack   = 60 * time.Millisecond
	BridgeSpawnRelease  = 300 * time.Millisecond

	CompleteNoteDuration = 180 * time.Millisecond
	CompleteAttack       = 8 * time.Millisecond
	CompleteRelease      = 120 * time.Millisecond

	RejectDuration = 220 * time.Millisecond
	RejectAttack   = 2 * time.Millisecond
	RejectRelease  = 160 * time.Millisecond

	SpiralSpawnDuration  = 600 * time.Millisecond
	SpiralDefeatDuration = 800 * time.Millisecond
	SpiralDamageDuration = 120 * time.Millisecond
	SpiralAttack         = 10 * time.Millisecond
	SpiralRelease        = 400 * time.Millisecond

	YouDiedDuration = 2200 * time.Millisecond
	YouDiedAttack   = 80 * time.Millisecond
	YouDiedRelease  = 1600 * time.Millisecond
)

// Continuous Textures
const (
	TextureAttackRamp  = 350 * time.Millisecond
	TextureUpdateRamp  = 250 * time.Millisecond
	TextureReleaseRamp = 400 * time.Millisecond

	CrackleBaseDensity = 6.0 // pops per second per chamber
	CrackleMaxDensity  = 60.0
	CrackleLevel       = 0.2

	SuctionBaseHz  = 55.0
	SuctionRangeHz = 160.0
	SuctionLevel   = 0.18

	AttractionHz       = 42.0
	AttractionLevel    = 0.15
	AttractionTremRate = 3.2 // Hz
)

// SamplesFor converts a duration to a sample count at the engine rate
func SamplesFor(d time.Duration) int {
	return int(d.Seconds() * float64(AudioSampleRate))
}
