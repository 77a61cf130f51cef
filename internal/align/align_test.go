package align

import (
	"math"
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func note(measure int, step model.Step, beat, dur float64) model.Note {
	return model.Note{Pitch: &model.PitchName{Step: step, Octave: 4}, Measure: measure, Beat: beat, Duration: dur}
}

func TestBuildSymbolicChromaNormalizesPerFrame(t *testing.T) {
	notes := []model.Note{note(1, model.StepC, 0, 4)}
	frames := BuildSymbolicChroma(notes, 1, 1)
	if len(frames) != framesPerMeasure {
		t.Fatalf("expected %d frames, got %d", framesPerMeasure, len(frames))
	}
	for i, f := range frames {
		sum := 0.0
		for _, v := range f {
			sum += v
		}
		if sum != 0 && (sum < 0.999 || sum > 1.001) {
			t.Errorf("frame %d not L1-normalised, sums to %f", i, sum)
		}
	}
}

func TestAlignIdenticalSequencesIsHighConfidence(t *testing.T) {
	notes := []model.Note{
		note(1, model.StepC, 0, 4),
		note(2, model.StepD, 0, 4),
		note(3, model.StepE, 0, 4),
	}
	s := BuildSymbolicChroma(notes, 1, 3)
	a := BuildSymbolicChroma(notes, 1, 3)
	result := Align(s, a)
	if result.Confidence < 0.99 {
		t.Errorf("identical sequences should align with near-1 confidence, got %f", result.Confidence)
	}
	if len(result.Path) == 0 {
		t.Error("expected non-empty warping path")
	}
	// first and last path points should anchor the corners
	first, last := result.Path[0], result.Path[len(result.Path)-1]
	if first.SymbolicFrame != 0 || first.AcousticFrame != 0 {
		t.Errorf("path should start at origin, got %+v", first)
	}
	if last.SymbolicFrame != len(s)-1 || last.AcousticFrame != len(a)-1 {
		t.Errorf("path should end at final frame pair, got %+v", last)
	}
}

func TestAlignEmptyYieldsZeroConfidence(t *testing.T) {
	result := Align(nil, []ChromaFrame{{}})
	if result.Confidence != 0 {
		t.Errorf("empty symbolic sequence should yield 0 confidence, got %f", result.Confidence)
	}
	if !math.IsInf(result.Distance, 1) {
		t.Errorf("degenerate alignment distance = %f, want +Inf", result.Distance)
	}
	if len(result.Path) != 0 {
		t.Errorf("degenerate alignment path = %v, want empty", result.Path)
	}
}

func TestExportCarriesPathAndLookups(t *testing.T) {
	notes := []model.Note{note(1, model.StepC, 0, 4), note(2, model.StepD, 0, 4)}
	s := BuildSymbolicChroma(notes, 1, 2)
	a := BuildSymbolicChroma(notes, 1, 2)
	result := Align(s, a)
	mapping := NewMapping(result, 1, 0.5)

	exported := mapping.Export(result)
	if len(exported.Path) != len(result.Path) {
		t.Errorf("exported path length = %d, want %d", len(exported.Path), len(result.Path))
	}
	if exported.Confidence != mapping.Confidence() {
		t.Errorf("exported confidence = %f, want %f", exported.Confidence, mapping.Confidence())
	}
	if _, ok := exported.MeasureToTime[1]; !ok {
		t.Error("exported MeasureToTime missing measure 1")
	}
	if len(exported.TimeToMeasure) == 0 {
		t.Error("exported TimeToMeasure is empty")
	}
}

func TestMappingInterpolatesBetweenKnownMeasures(t *testing.T) {
	notes := []model.Note{
		note(1, model.StepC, 0, 4),
		note(2, model.StepD, 0, 4),
		note(3, model.StepE, 0, 4),
	}
	s := BuildSymbolicChroma(notes, 1, 3)
	a := BuildSymbolicChroma(notes, 1, 3)
	result := Align(s, a)
	frameSeconds := 0.5
	mapping := NewMapping(result, 1, frameSeconds)

	t1 := mapping.MeasureToTime(1)
	t3 := mapping.MeasureToTime(3)
	if t1 >= t3 {
		t.Errorf("measure 1 time (%f) should precede measure 3 time (%f)", t1, t3)
	}

	delete(mapping.measureTime, 2)
	if t2 := mapping.MeasureToTime(2); math.Abs(t2-(t1+t3)/2) > 1e-9 {
		t.Errorf("MeasureToTime(2) = %f, want %f interpolated between measures 1 and 3", t2, (t1+t3)/2)
	}

	gotMeasure := mapping.TimeToMeasure(t1)
	if gotMeasure != 1 {
		t.Errorf("TimeToMeasure(MeasureToTime(1)) = %d, want 1", gotMeasure)
	}
}

func TestAdjustAlignmentReducesConfidence(t *testing.T) {
	notes := []model.Note{note(1, model.StepC, 0, 4), note(2, model.StepD, 0, 4)}
	s := BuildSymbolicChroma(notes, 1, 2)
	a := BuildSymbolicChroma(notes, 1, 2)
	result := Align(s, a)
	mapping := NewMapping(result, 1, 0.5)

	before := mapping.Confidence()
	mapping.AdjustAlignment(2, 10.0)
	after := mapping.Confidence()
	if after != before-0.05 && after != 0.5 {
		t.Errorf("AdjustAlignment should reduce confidence by 0.05 (floored at 0.5), got before=%f after=%f", before, after)
	}
	if mapping.MeasureToTime(2) != 10.0 {
		t.Errorf("AdjustAlignment should overwrite measure->time mapping")
	}
	if mapping.TimeToMeasure(10.0) != 2 {
		t.Errorf("AdjustAlignment should overwrite time->measure mapping")
	}
}
