package pitch

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func TestTonicFromKey(t *testing.T) {
	tests := []struct {
		name   string
		fifths int
		mode   model.Mode
		step   model.Step
		acc    model.Accidental
	}{
		{"C major", 0, model.Major, model.StepC, model.Natural},
		{"G major (1 sharp)", 1, model.Major, model.StepG, model.Natural},
		{"F major (1 flat)", -1, model.Major, model.StepF, model.Natural},
		{"C# major (7 sharps)", 7, model.Major, model.StepC, model.Sharp},
		{"Cb major (7 flats)", -7, model.Major, model.StepC, model.Flat},
		{"A minor (0 fifths)", 0, model.Minor, model.StepA, model.Natural},
		{"E minor (1 sharp)", 1, model.Minor, model.StepE, model.Natural},
		{"D minor (1 flat)", -1, model.Minor, model.StepD, model.Natural},
		{"clamps beyond +7", 20, model.Major, model.StepC, model.Sharp},
		{"clamps beyond -7", -20, model.Major, model.StepC, model.Flat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TonicFromKey(tt.fifths, tt.mode)
			if got.Step != tt.step || got.Accidental != tt.acc {
				t.Errorf("TonicFromKey(%d, %v) = %+v, want step=%v acc=%v", tt.fifths, tt.mode, got, tt.step, tt.acc)
			}
		})
	}
}

func TestScaleDegree(t *testing.T) {
	tonic := model.PitchName{Step: model.StepC, Accidental: model.Natural}
	tests := []struct {
		name string
		p    model.PitchName
		want int
	}{
		{"tonic", model.PitchName{Step: model.StepC, Accidental: model.Natural}, 0},
		{"second", model.PitchName{Step: model.StepD, Accidental: model.Natural}, 1},
		{"third", model.PitchName{Step: model.StepE, Accidental: model.Natural}, 2},
		{"fourth", model.PitchName{Step: model.StepF, Accidental: model.Natural}, 3},
		{"fifth", model.PitchName{Step: model.StepG, Accidental: model.Natural}, 4},
		{"sixth", model.PitchName{Step: model.StepA, Accidental: model.Natural}, 5},
		{"seventh", model.PitchName{Step: model.StepB, Accidental: model.Natural}, 6},
		{"chromatic, not diatonic", model.PitchName{Step: model.StepC, Accidental: model.Sharp}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScaleDegree(tt.p, tonic, model.Major); got != tt.want {
				t.Errorf("ScaleDegree(%+v) = %d, want %d", tt.p, got, tt.want)
			}
		})
	}
}

func TestPitchToMidi(t *testing.T) {
	middleC := model.PitchName{Step: model.StepC, Accidental: model.Natural, Octave: 4}
	if got := PitchToMidi(&middleC); got != 60 {
		t.Errorf("PitchToMidi(middle C) = %d, want 60", got)
	}

	if got := PitchToMidi(nil); got != 60 {
		t.Errorf("PitchToMidi(nil) = %d, want 60 default", got)
	}

	aSharp3 := model.PitchName{Step: model.StepA, Accidental: model.Sharp, Octave: 3}
	if got := PitchToMidi(&aSharp3); got != 58 {
		t.Errorf("PitchToMidi(A#3) = %d, want 58", got)
	}
}
