package audio

import (
	"math"
	"testing"
)

// TestNoteFreqReference verifies equal temperament anchors
func TestNoteFreqReference(t *testing.T) {
	if f := NoteFreq(69); f != 440 {
		t.Errorf("Expected A4 = 440Hz, got %f", f)
	}
	if f := NoteFreq(57); math.Abs(f-220) > 1e-9 {
		t.Errorf("Expected A3 = 220Hz, got %f", f)
	}
	if f := NoteFreq(81); math.Abs(f-880) > 1e-9 {
		t.Errorf("Expected A5 = 880Hz, got %f", f)
	}
}

// TestNoteFreqOutOfRange verifies invalid MIDI numbers return silence
// instead of panicking
func TestNoteFreqOutOfRange(t *testing.T) {
	if f := NoteFreq(-1); f != 0 {
		t.Errorf("Expected 0 for negative note, got %f", f)
	}
	if f := NoteFreq(128); f != 0 {
		t.Errorf("Expected 0 for note 128, got %f", f)
	}
}

// TestCollectNoteClimbs verifies the combo ladder rises strictly until
// the top of the scale
func TestCollectNoteClimbs(t *testing.T) {
	base := 81
	prev := CollectNote(base, 0)
	if prev != base {
		t.Fatalf("Expected first collect at the base note, got %d", prev)
	}
	for combo := 1; combo < len(pentatonicScale); combo++ {
		note := CollectNote(base, combo)
		if note <= prev {
			t.Fatalf("Expected rising ladder at combo %d: %d <= %d", combo, note, prev)
		}
		prev = note
	}
}

// TestCollectNoteSaturates verifies the ladder holds its top note for
// any further combo growth
func TestCollectNoteSaturates(t *testing.T) {
	base := 81
	top := CollectNote(base, len(pentatonicScale)-1)
	if CollectNote(base, len(pentatonicScale)) != top {
		t.Error("Expected ladder to saturate at its top")
	}
	if CollectNote(base, 100) != top {
		t.Error("Expected ladder to hold the top for large combos")
	}
}
