package form

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func pn(step model.Step) *model.PitchName {
	return &model.PitchName{Step: step, Accidental: model.Natural, Octave: 4}
}

func notes(measure int, steps ...model.Step) []model.Note {
	out := make([]model.Note, len(steps))
	for i, s := range steps {
		out[i] = model.Note{Pitch: pn(s), Measure: measure, Beat: float64(i), Duration: 1}
	}
	return out
}

func makePeriod(material string, start, end int, ns []model.Note, closed bool) model.Period {
	closure := model.ClosureOpen
	if closed {
		closure = model.ClosureClosed
	}
	ph := model.Phrase{Index: start, StartMeasure: start, EndMeasure: end, Material: material, Notes: ns, Closure: closure}
	return model.Period{
		StartMeasure: start, EndMeasure: end, Material: material,
		Phrases: []model.Phrase{ph}, PhraseCount: 1, Closure: closure,
	}
}

func withDurations(ns []model.Note, d float64) []model.Note {
	out := make([]model.Note, len(ns))
	for i, n := range ns {
		n.Duration = d
		out[i] = n
	}
	return out
}

// TestRondoForm feeds materials a-b-a-c-a (ABACA), the
// refrain recurring three times around two distinct episodes.
func TestRondoForm(t *testing.T) {
	a := notes(1, model.StepC, model.StepE, model.StepG, model.StepC)
	b := withDurations(notes(5, model.StepG, model.StepD, model.StepF, model.StepA), 4)
	c := withDurations(notes(13, model.StepB, model.StepD, model.StepF, model.StepA), 4)

	periods := []model.Period{
		makePeriod("a", 1, 4, a, true),
		makePeriod("b", 5, 8, b, false),
		makePeriod("a", 9, 12, a, true),
		makePeriod("c", 13, 16, c, false),
		makePeriod("a", 17, 20, a, true),
	}
	fa := Classify(periods)
	if fa.FormType != model.FormRondo {
		t.Fatalf("form = %v, want rondo", fa.FormType)
	}
	if fa.Confidence <= 0.5 {
		t.Errorf("confidence = %v, want > 0.5", fa.Confidence)
	}
	refrains := 0
	for _, s := range fa.Sections {
		if s.Function == model.FunctionRefrain {
			refrains++
		}
	}
	if refrains != 3 {
		t.Errorf("refrain sections = %d, want 3", refrains)
	}
}

// TestTernaryCompoundForm builds four periods where the
// closing period recalls the first (A B B' A), qualifying as a compound
// ternary with a trio-like closed middle section.
func TestTernaryCompoundForm(t *testing.T) {
	a := notes(1, model.StepC, model.StepE, model.StepG, model.StepC)
	b := withDurations(notes(9, model.StepG, model.StepD, model.StepF, model.StepA), 4)

	periods := []model.Period{
		makePeriod("a", 1, 4, a, true),
		makePeriod("b", 5, 8, b, true),
		makePeriod("b'", 9, 12, b, true),
		makePeriod("a", 13, 16, a, true),
	}
	fa := Classify(periods)
	if fa.FormType != model.FormTernaryCompound {
		t.Fatalf("form = %v, want ternary_compound", fa.FormType)
	}
	if len(fa.Sections) != 3 {
		t.Fatalf("expected 3 sections (A, B, A'), got %d", len(fa.Sections))
	}
	if fa.Sections[1].MiddleType != model.MiddleTrio {
		t.Errorf("middle section type = %v, want trio (closed, phraseCount>=2... )", fa.Sections[1].MiddleType)
	}
}

func TestOnePartAndSinglePeriod(t *testing.T) {
	if fa := Classify(nil); fa.FormType != model.FormOnePart || fa.Confidence != 0.5 {
		t.Errorf("empty periods = %+v, want one_part/0.5", fa)
	}
	a := notes(1, model.StepC, model.StepD)
	single := []model.Period{makePeriod("a", 1, 4, a, true)}
	if fa := Classify(single); fa.FormType != model.FormOnePart || fa.Confidence != 0.9 {
		t.Errorf("single period = %+v, want one_part/0.9", fa)
	}
}

func TestBuildMaterialPattern(t *testing.T) {
	periods := []model.Period{
		{Material: "a"}, {Material: "b"}, {Material: "a"},
	}
	mp := BuildMaterialPattern(periods)
	if mp.Pattern != "aba" {
		t.Errorf("pattern = %q, want aba", mp.Pattern)
	}
	if mp.MainMaterial != 'a' {
		t.Errorf("main material = %q, want a", mp.MainMaterial)
	}
	if !mp.HasRecapitulation {
		t.Error("expected recapitulation (first == last material)")
	}
}

func TestDetectAuxiliaries(t *testing.T) {
	periods := []model.Period{
		{StartMeasure: 5, EndMeasure: 8, Phrases: []model.Phrase{{Index: 0, StartMeasure: 5, EndMeasure: 8}}},
		{StartMeasure: 11, EndMeasure: 20, Phrases: []model.Phrase{{Index: 1, StartMeasure: 11, EndMeasure: 20}}},
	}
	aux := DetectAuxiliaries(periods, 1, 26)
	if aux.Introduction == nil || aux.Introduction.StartMeasure != 1 || aux.Introduction.EndMeasure != 4 {
		t.Errorf("introduction = %+v, want [1,4]", aux.Introduction)
	}
	if aux.Coda == nil || aux.Coda.StartMeasure != 21 {
		t.Errorf("coda = %+v, want starting at 21", aux.Coda)
	}
	if len(aux.Transitions) != 1 || aux.Transitions[0].StartMeasure != 9 || aux.Transitions[0].EndMeasure != 10 {
		t.Errorf("transitions = %+v, want one [9,10]", aux.Transitions)
	}
	if len(aux.Extensions) != 1 || aux.Extensions[0] != 1 {
		t.Errorf("extensions = %+v, want phrase index 1 (10-measure phrase)", aux.Extensions)
	}
}
