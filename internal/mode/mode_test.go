package mode

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func noteAt(step model.Step, acc model.Accidental, dur float64) model.Note {
	pn := model.PitchName{Step: step, Accidental: acc, Octave: 4}
	return model.Note{Pitch: &pn, Duration: dur}
}

func TestDetectCMajorScale(t *testing.T) {
	notes := []model.Note{
		noteAt(model.StepC, model.Natural, 2),
		noteAt(model.StepD, model.Natural, 1),
		noteAt(model.StepE, model.Natural, 1),
		noteAt(model.StepF, model.Natural, 1),
		noteAt(model.StepG, model.Natural, 2),
		noteAt(model.StepA, model.Natural, 1),
		noteAt(model.StepB, model.Natural, 1),
	}
	tonic := model.PitchName{Step: model.StepC, Accidental: model.Natural, Octave: 4}
	result := Detect(notes, tonic)
	if result.Mode != NameMajor && result.Mode != NameIonian {
		t.Errorf("mode = %v, want major or ionian for a full C major scale", result.Mode)
	}
	if result.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 (every note diatonic)", result.Confidence)
	}
}

func TestDetectHarmonicMinorLeadingTone(t *testing.T) {
	notes := []model.Note{
		noteAt(model.StepC, model.Natural, 2),
		noteAt(model.StepD, model.Natural, 1),
		noteAt(model.StepE, model.Flat, 1),
		noteAt(model.StepF, model.Natural, 1),
		noteAt(model.StepG, model.Natural, 2),
		noteAt(model.StepA, model.Flat, 1),
		noteAt(model.StepB, model.Natural, 3), // raised leading tone
	}
	tonic := model.PitchName{Step: model.StepC, Accidental: model.Natural, Octave: 4}
	result := Detect(notes, tonic)
	if result.Mode != NameHarmonicMinor {
		t.Errorf("mode = %v, want harmonic_minor", result.Mode)
	}
}

func TestDetectEmptyNotes(t *testing.T) {
	tonic := model.PitchName{Step: model.StepC, Accidental: model.Natural, Octave: 4}
	result := Detect(nil, tonic)
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 for no notes", result.Confidence)
	}
}
