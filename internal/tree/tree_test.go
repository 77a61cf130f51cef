package tree

import (
	"math"
	"testing"

	"github.com/schollz/scorelens/internal/model"
)

func samplePhrase(material string, start, end int, cad *model.Cadence) model.Phrase {
	notes := []model.Note{
		{Pitch: &model.PitchName{Step: model.StepC, Octave: 4}, Measure: start, Duration: 1},
		{Pitch: &model.PitchName{Step: model.StepE, Octave: 4}, Measure: start, Duration: 1},
		{Pitch: &model.PitchName{Step: model.StepG, Octave: 4}, Measure: end, Duration: 1},
	}
	closure := model.ClosureOpen
	if cad != nil && model.CadenceStrengthScore(cad.Type) > 0.7 {
		closure = model.ClosureClosed
	}
	return model.Phrase{StartMeasure: start, EndMeasure: end, Material: material, Notes: notes, Cadence: cad, Closure: closure}
}

func sampleForm() model.FormAnalysis {
	pac := model.Cadence{Measure: 4, Type: model.CadencePAC}
	period := model.Period{
		StartMeasure: 1, EndMeasure: 4, Material: "a", Cadence: &pac,
		Phrases: []model.Phrase{
			samplePhrase("a", 1, 2, nil),
			samplePhrase("a'", 3, 4, &pac),
		},
	}
	sec := model.Section{
		ID: "A", Name: "A", Function: model.FunctionTheme,
		StartMeasure: 1, EndMeasure: 4, Periods: []model.Period{period}, Confidence: 0.8,
	}
	return model.FormAnalysis{FormType: model.FormOnePart, Sections: []model.Section{sec}, Confidence: 0.8}
}

func TestBuildProducesFullHierarchy(t *testing.T) {
	tr := Build(sampleForm(), "v1")
	root, ok := tr.Node(tr.RootID)
	if !ok {
		t.Fatal("missing root")
	}
	if len(root.Children) != 1 {
		t.Fatalf("root children = %d, want 1 theme", len(root.Children))
	}
	theme, _ := tr.Node(root.Children[0])
	if theme.Type != model.TypeTheme || len(theme.Children) != 1 {
		t.Fatalf("theme node malformed: %+v", theme)
	}
	period, _ := tr.Node(theme.Children[0])
	if period.Type != model.TypePeriod || len(period.Children) != 2 {
		t.Fatalf("period node malformed: %+v", period)
	}
	phrase0, _ := tr.Node(period.Children[0])
	if phrase0.Type != model.TypePhrase || len(phrase0.Children) != 1 {
		t.Fatalf("phrase node malformed: %+v", phrase0)
	}
	sub, _ := tr.Node(phrase0.Children[0])
	if sub.Type != model.TypeSubPhrase {
		t.Fatalf("expected single sub-phrase for a 2-measure phrase, got %+v", sub)
	}
	if len(sub.Children) == 0 {
		t.Error("expected motive children under the sub-phrase")
	}
	for _, mid := range sub.Children {
		m, _ := tr.Node(mid)
		if m.Type != model.TypeMotive {
			t.Errorf("child of sub-phrase has type %v, want motive", m.Type)
		}
	}
}

func TestConfidencePropagationClampedAndCadenceBumped(t *testing.T) {
	tr := Build(sampleForm(), "v1")
	for _, node := range tr.Nodes {
		if node.Confidence < 0 || node.Confidence > 1 {
			t.Errorf("node %s confidence out of range: %v", node.ID, node.Confidence)
		}
	}
	// PAC phrase over measures 3-4: detect 1.0, one sub-phrase (0.6) with
	// two 1-measure motives (0.5) gives (1.0+0.55)/2 = 0.775, plus 0.1.
	ph, ok := tr.Node("theme_0_period_0_phrase_1")
	if !ok {
		t.Fatal("missing cadence-bearing phrase node")
	}
	if math.Abs(ph.Confidence-0.875) > 1e-9 {
		t.Errorf("cadence phrase confidence = %v, want 0.875 (includes +0.1 cadence bump)", ph.Confidence)
	}
}

func TestUpdateMaterialIdempotent(t *testing.T) {
	tr := Build(sampleForm(), "v1")
	id := tr.RootID
	node, _ := tr.Node(id)
	before := node.Confidence
	if err := tr.UpdateMaterial(id, node.Material); err != nil {
		t.Fatal(err)
	}
	if node.Confidence != before {
		t.Errorf("re-setting the same material changed confidence: %v -> %v", before, node.Confidence)
	}
	if err := tr.UpdateMaterial(id, "newmat"); err != nil {
		t.Fatal(err)
	}
	if node.Confidence != before-0.1 && node.Confidence != 0.5 {
		t.Errorf("material change should decrement confidence by 0.1 (floored at 0.5), got %v", node.Confidence)
	}
}

func TestUpdateBoundariesFloorsAtHalf(t *testing.T) {
	tr := Build(sampleForm(), "v1")
	id := tr.RootID
	node, _ := tr.Node(id)
	node.Confidence = 0.52
	for i := 0; i < 5; i++ {
		if err := tr.UpdateBoundaries(id, 1, 10); err != nil {
			t.Fatal(err)
		}
	}
	if node.Confidence != 0.5 {
		t.Errorf("confidence = %v, want floored at 0.5 after repeated edits", node.Confidence)
	}
}
