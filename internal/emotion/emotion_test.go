package emotion

import (
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func TestDynamicsDefaultByType(t *testing.T) {
	cases := []struct {
		typ  model.StructureType
		want string
	}{
		{model.TypeMotive, "soft"},
		{model.TypeSubPhrase, "soft"},
		{model.TypePhrase, "moderate"},
		{model.TypePeriod, "moderate"},
		{model.TypeTheme, "strong"},
		{model.TypeSection, "strong"},
	}
	for _, c := range cases {
		node := model.StructureNode{Type: c.typ}
		got := Extract(node, Durations{}, nil).Dynamics
		if got != c.want {
			t.Errorf("type %v: got dynamics %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestTempoFromDensity(t *testing.T) {
	cases := []struct {
		d    Durations
		want string
	}{
		{Durations{ChildCount: 10, SpanMeasures: 2}, "fast"},
		{Durations{ChildCount: 1, SpanMeasures: 4}, "slow"},
		{Durations{ChildCount: 2, SpanMeasures: 2}, "moderate"},
	}
	for _, c := range cases {
		got := Extract(model.StructureNode{}, c.d, nil).Tempo
		if got != c.want {
			t.Errorf("density %+v: got tempo %q, want %q", c.d, got, c.want)
		}
	}
}

func TestTensionFromCadenceAndClosure(t *testing.T) {
	pac := model.Cadence{Type: model.CadencePAC}
	half := model.Cadence{Type: model.CadenceHalf}
	closed := model.ClosureClosed
	open := model.ClosureOpen

	relaxed := model.StructureNode{Features: model.Features{Cadence: &pac}}
	if got := tensionFor(relaxed); got != "relaxed" {
		t.Errorf("PAC cadence: got %q, want relaxed", got)
	}
	if got := tensionFor(model.StructureNode{Features: model.Features{Closure: &closed}}); got != "relaxed" {
		t.Errorf("closed closure: got %q, want relaxed", got)
	}
	tense := model.StructureNode{Features: model.Features{Cadence: &half}}
	if got := tensionFor(tense); got != "tense" {
		t.Errorf("half cadence: got %q, want tense", got)
	}
	if got := tensionFor(model.StructureNode{Features: model.Features{Closure: &open}}); got != "tense" {
		t.Errorf("open closure: got %q, want tense", got)
	}
	if got := tensionFor(model.StructureNode{}); got != "neutral" {
		t.Errorf("no cadence/closure: got %q, want neutral", got)
	}
}

func TestAudioOverridesDynamicsAndTension(t *testing.T) {
	node := model.StructureNode{Type: model.TypePhrase}
	loud := Extract(node, Durations{}, &AudioScalars{RMS: 0.9, SpectralCentroid: 4000})
	if loud.Dynamics != "strong" || loud.Tension != "tense" {
		t.Errorf("got %+v, want strong/tense override", loud)
	}
	soft := Extract(node, Durations{}, &AudioScalars{RMS: 0.1, SpectralCentroid: 200})
	if soft.Dynamics != "soft" || soft.Tension != "relaxed" {
		t.Errorf("got %+v, want soft/relaxed override", soft)
	}
}
