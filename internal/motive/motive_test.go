package motive

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func p(step model.Step, octave int) *model.PitchName {
	pn := model.PitchName{Step: step, Accidental: model.Natural, Octave: octave}
	return &pn
}

func TestDetectMotivesMinimumTwoNotes(t *testing.T) {
	notes := []model.Note{
		{Pitch: p(model.StepC, 4), Measure: 1, Beat: 0, Duration: 4},
	}
	ts := model.TimeSignature{Beats: 4, BeatType: 4}
	motives := DetectMotives(notes, ts)
	if len(motives) != 0 {
		t.Errorf("single-note measure must not produce a motive, got %+v", motives)
	}
}

func TestDetectMotivesRepetition(t *testing.T) {
	notes := []model.Note{
		{Pitch: p(model.StepC, 4), Measure: 1, Beat: 0, Duration: 0.5},
		{Pitch: p(model.StepD, 4), Measure: 1, Beat: 0.5, Duration: 0.5},
		{Pitch: p(model.StepC, 4), Measure: 1, Beat: 2, Duration: 0.5},
		{Pitch: p(model.StepD, 4), Measure: 1, Beat: 2.5, Duration: 0.5},
	}
	ts := model.TimeSignature{Beats: 4, BeatType: 4}
	motives := DetectMotives(notes, ts)
	if len(motives) != 2 {
		t.Fatalf("expected 2 motives (strong beats 0 and 2), got %d: %+v", len(motives), motives)
	}
	if motives[1].Relationship != model.RelationRepetition {
		t.Errorf("second motive relationship = %v, want repetition", motives[1].Relationship)
	}
}

// TestSubPhraseSplit feeds a single measure of six notes: five
// eighth notes and a middle half-note rest at beat 2. Expected: two
// sub-phrases on beats [0,2) and [2,4) with distinct material letters.
func TestSubPhraseSplit(t *testing.T) {
	notes := []model.Note{
		{Pitch: p(model.StepC, 4), Measure: 1, Beat: 0, Duration: 0.5},
		{Pitch: p(model.StepD, 4), Measure: 1, Beat: 0.5, Duration: 0.5},
		{Pitch: p(model.StepE, 4), Measure: 1, Beat: 1, Duration: 0.5},
		{Measure: 1, Beat: 2, Duration: 2}, // rest at beat 2, not at boundary start
		{Pitch: p(model.StepF, 4), Measure: 1, Beat: 3, Duration: 0.5},
		{Pitch: p(model.StepG, 4), Measure: 1, Beat: 3.5, Duration: 0.5},
	}
	subs := DetectSubPhrases(notes, nil)
	if len(subs) != 2 {
		t.Fatalf("expected split into 2 sub-phrases, got %d: %+v", len(subs), subs)
	}
	if subs[0].StartBeat != 0 || subs[0].EndBeat != 2 {
		t.Errorf("first sub-phrase beats = [%v,%v), want [0,2)", subs[0].StartBeat, subs[0].EndBeat)
	}
	if subs[1].StartBeat != 2 || subs[1].EndBeat != 4 {
		t.Errorf("second sub-phrase beats = [%v,%v), want [2,4)", subs[1].StartBeat, subs[1].EndBeat)
	}
	if subs[0].Material == subs[1].Material {
		t.Errorf("expected distinct material letters, both = %q", subs[0].Material)
	}
}

func TestSubPhraseOnePerMeasureByDefault(t *testing.T) {
	notes := []model.Note{
		{Pitch: p(model.StepC, 4), Measure: 1, Beat: 0, Duration: 2},
		{Pitch: p(model.StepD, 4), Measure: 1, Beat: 2, Duration: 2},
		{Pitch: p(model.StepC, 4), Measure: 2, Beat: 0, Duration: 4},
	}
	subs := DetectSubPhrases(notes, nil)
	if len(subs) != 2 {
		t.Fatalf("expected 1 sub-phrase per measure, got %d", len(subs))
	}
}
