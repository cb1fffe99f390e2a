package audio

import (
	"math"

	"github.com/nightveil/lumendrift/core"
)

// NoteFrequencies contains precomputed frequencies for MIDI notes 0-127
// A4 (note 69) = 440Hz, equal temperament
var NoteFrequencies [128]float64

func init() {
	for i := range NoteFrequencies {
		NoteFrequencies[i] = 440.0 * math.Pow(2, (float64(i)-69.0)/12.0)
	}
}

// NoteFreq returns frequency in Hz for MIDI note number
func NoteFreq(midi int) float64 {
	if midi < 0 || midi >= 128 {
		return 0
	}
	return NoteFrequencies[midi]
}

// pentatonicScale is the collect-blip ladder; combo count walks up it
var pentatonicScale = []int{0, 2, 4, 7, 9, 12, 14, 16, 19}

// CollectNote returns the MIDI note for a combo count, climbing the
// pentatonic ladder from the base and saturating at its top
func CollectNote(base, combo int) int {
	idx := combo
	if idx >= len(pentatonicScale) {
		idx = len(pentatonicScale) - 1
	}
	return base + pentatonicScale[idx]
}

// padProgression is the soundscape chord cycle, roots around A minor
var padProgression = []core.ChordStep{
	{Root: 57, Offsets: []int{0, 3, 7, 12}}, // Am
	{Root: 53, Offsets: []int{0, 4, 7, 12}}, // F
	{Root: 48, Offsets: []int{0, 4, 7, 12}}, // C
	{Root: 55, Offsets: []int{0, 4, 7, 12}}, // G
}

// invertedProgression is the alternate emotional palette: darker
// voicings a third below, minor throughout
var invertedProgression = []core.ChordStep{
	{Root: 45, Offsets: []int{0, 3, 7, 10}}, // Am7
	{Root: 41, Offsets: []int{0, 3, 7, 10}}, // Fm7
}

// Gesture interval sets, offsets in semitones from each gesture's root
var (
	superStarArp    = []int{0, 4, 7, 12}
	heartTriad      = []int{0, 4, 7}
	levelUpArp      = []int{0, 4, 7, 12, 16}
	maxStackVoicing = []int{0, 7, 12, 19}
	cadenceSteps    = []int{7, 5, 0}
	spiralCluster   = []int{0, 1, 6}
	youDiedChord    = []int{0, 3, 7, 10}
)
