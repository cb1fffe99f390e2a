package core

// LayerType identifies the sustained soundscape layers
type LayerType int

const (
	LayerDrone LayerType = iota
	LayerPad
	LayerShimmer
	LayerPulse
	LayerCount
)

func (l LayerType) String() string {
	names := [...]string{"drone", "pad", "shimmer", "pulse"}
	if int(l) < len(names) {
		return names[l]
	}
	return "unknown"
}

// TextureType identifies the continuous one-shot-engine textures
type TextureType int

const (
	TextureCrackle    TextureType = iota // chamber crackling, density-driven
	TextureSuction                       // spiral attraction hum
	TextureAttraction                    // bridge pull drone
	TextureCount
)

func (t TextureType) String() string {
	names := [...]string{"crackle", "suction", "attraction"}
	if int(t) < len(names) {
		return names[t]
	}
	return "unknown"
}

// ChordStep is one step of a progression: a root note plus the
// simultaneous offsets the pad voices take from it
type ChordStep struct {
	Root    int // MIDI note
	Offsets []int
}

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveTriangle
	WaveSquare
	WaveSaw
	WaveNoise
)

func (w WaveType) String() string {
	names := [...]string{"sine", "triangle", "square", "saw", "noise"}
	if int(w) < len(names) {
		return names[w]
	}
	return "unknown"
}
