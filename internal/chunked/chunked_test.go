package chunked

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func TestShouldChunk(t *testing.T) {
	if ShouldChunk(500, 20, 1000, 32) {
		t.Error("small stream should not require chunking")
	}
	if !ShouldChunk(2000, 20, 1000, 32) {
		t.Error("note count >= 2x threshold should require chunking")
	}
	if !ShouldChunk(500, 64, 1000, 32) {
		t.Error("measure count >= 2x threshold should require chunking")
	}
}

func TestPartitionStridesByOverlap(t *testing.T) {
	chunks := Partition(1, 100, 32, 4)
	if len(chunks) == 0 {
		t.Fatal("expected at least one chunk")
	}
	if chunks[0].Start != 1 || chunks[0].End != 32 {
		t.Errorf("first chunk = %+v, want [1,32]", chunks[0])
	}
	if chunks[1].Start != 29 { // stride = 32-4 = 28, so next start = 1+28 = 29
		t.Errorf("second chunk start = %d, want 29", chunks[1].Start)
	}
	last := chunks[len(chunks)-1]
	if last.End != 100 {
		t.Errorf("last chunk should reach the final measure, got %+v", last)
	}
}

func makeNote(measure int, step model.Step) model.Note {
	return model.Note{Pitch: &model.PitchName{Step: step, Octave: 4}, Measure: measure, Beat: 0, Duration: 4}
}

func TestDetectMotivesAndSubPhrasesMergesAcrossOverlap(t *testing.T) {
	var notes []model.Note
	for m := 1; m <= 20; m++ {
		notes = append(notes, makeNote(m, model.StepC))
	}
	ts := model.TimeSignature{Beats: 4, BeatType: 4}
	chunks := Partition(1, 20, 12, 4) // stride 8: [1,12], [9,20]
	_, subs := DetectMotivesAndSubPhrases(notes, ts, chunks, 4)

	seen := map[int]bool{}
	for _, s := range subs {
		if seen[s.StartMeasure] {
			t.Errorf("duplicate sub-phrase at measure %d after overlap merge", s.StartMeasure)
		}
		seen[s.StartMeasure] = true
	}
	for m := 1; m <= 20; m++ {
		if !seen[m] {
			t.Errorf("measure %d missing from merged sub-phrases", m)
		}
	}
}
