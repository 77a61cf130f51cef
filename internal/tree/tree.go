// Package tree implements the structure-tree builder:
// an arena of nodes addressed by string ID (never by pointer), post-order
// confidence propagation, visual-style derivation, tooltip assembly, a
// material relabelling pass, and the editing operations (of which only
// UpdateMaterial is idempotent).
package tree

import (
	"fmt"
	"math"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
)

// Tree is the arena: every node lives in Nodes keyed by its own ID;
// parent/child links are string references into that map, never pointers.
type Tree struct {
	Nodes  map[string]*model.StructureNode `json:"nodes"`
	RootID string                          `json:"root"`
}

// Node looks up a node by ID.
func (t *Tree) Node(id string) (*model.StructureNode, bool) {
	n, ok := t.Nodes[id]
	return n, ok
}

type builder struct {
	tree      *Tree
	notesByID map[string][]model.Note
	order     []string
	modelVer  string
}

// Build constructs the full hierarchy from a form analysis: root (the
// whole piece), one theme node per section, periods, phrases, derived
// sub-phrases, and derived motives.
func Build(fa model.FormAnalysis, modelVersion string) *Tree {
	b := &builder{
		tree:      &Tree{Nodes: map[string]*model.StructureNode{}},
		notesByID: map[string][]model.Note{},
		modelVer:  modelVersion,
	}

	start, end := 0, 0
	if len(fa.Sections) > 0 {
		start = fa.Sections[0].StartMeasure
		end = fa.Sections[len(fa.Sections)-1].EndMeasure
	}
	root := &model.StructureNode{
		ID: "root", Type: model.TypeSection,
		StartMeasure: start, EndMeasure: end,
		Confidence: 0.8,
		Features:   model.Features{FormType: &fa.FormType},
	}
	b.add(root, nil)
	b.tree.RootID = root.ID

	for si, sec := range fa.Sections {
		b.buildSection(root, si, sec)
	}

	propagateConfidence(b.tree, root.ID)
	relabelMaterials(b)
	assignStyles(b.tree, b.modelVer)
	return b.tree
}

func (b *builder) add(n *model.StructureNode, parent *model.StructureNode) {
	b.tree.Nodes[n.ID] = n
	b.order = append(b.order, n.ID)
	if parent != nil {
		n.ParentRef = parent.ID
		parent.Children = append(parent.Children, n.ID)
	}
}

func (b *builder) buildSection(root *model.StructureNode, si int, sec model.Section) {
	id := fmt.Sprintf("theme_%d", si)
	fn := sec.Function
	node := &model.StructureNode{
		ID: id, Type: model.TypeTheme,
		StartMeasure: sec.StartMeasure, EndMeasure: sec.EndMeasure,
		Material:   sec.Name,
		Confidence: sec.Confidence,
		Features:   model.Features{Function: &fn},
	}
	b.add(node, root)

	for pi, per := range sec.Periods {
		b.buildPeriod(node, id, pi, per)
	}
}

func (b *builder) buildPeriod(theme *model.StructureNode, themeID string, pi int, per model.Period) {
	id := fmt.Sprintf("%s_period_%d", themeID, pi)
	pt, prop, clo := per.Type, per.Proportion, per.Closure
	node := &model.StructureNode{
		ID: id, Type: model.TypePeriod,
		StartMeasure: per.StartMeasure, EndMeasure: per.EndMeasure,
		Material:   per.Material,
		Confidence: baselineConfidence(per.Cadence, 0.6),
		Features:   model.Features{PeriodType: &pt, Proportion: &prop, Closure: &clo, Cadence: per.Cadence},
	}
	b.add(node, theme)

	for phi, ph := range per.Phrases {
		b.buildPhrase(node, id, phi, ph)
	}
}

func (b *builder) buildPhrase(period *model.StructureNode, periodID string, phi int, ph model.Phrase) {
	id := fmt.Sprintf("%s_phrase_%d", periodID, phi)
	clo := ph.Closure
	node := &model.StructureNode{
		ID: id, Type: model.TypePhrase,
		StartMeasure: ph.StartMeasure, EndMeasure: ph.EndMeasure,
		Material:   ph.Material,
		Confidence: baselineConfidence(ph.Cadence, 0.5),
		Features:   model.Features{Cadence: ph.Cadence, Closure: &clo},
	}
	b.add(node, period)
	b.notesByID[id] = ph.Notes

	b.buildSubPhrases(node, id, ph)
}

// buildSubPhrases derives one or two sub-phrase nodes from a phrase's
// measure span: phrases of >=4 measures split into equal halves labelled
// with subscript 1/2, shorter phrases get a single sub-phrase node
// spanning the whole phrase.
func (b *builder) buildSubPhrases(phrase *model.StructureNode, phraseID string, ph model.Phrase) {
	length := ph.Length()
	if length >= 4 {
		mid := ph.StartMeasure + length/2 - 1
		b.addSubPhrase(phrase, phraseID+"_sub1", ph.StartMeasure, mid, ph.Material+"₁", subNotes(ph.Notes, ph.StartMeasure, mid))
		b.addSubPhrase(phrase, phraseID+"_sub2", mid+1, ph.EndMeasure, ph.Material+"₂", subNotes(ph.Notes, mid+1, ph.EndMeasure))
		return
	}
	b.addSubPhrase(phrase, phraseID+"_sub", ph.StartMeasure, ph.EndMeasure, ph.Material, ph.Notes)
}

func subNotes(notes []model.Note, start, end int) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if n.Measure >= start && n.Measure <= end {
			out = append(out, n)
		}
	}
	return out
}

func (b *builder) addSubPhrase(phrase *model.StructureNode, id string, start, end int, material string, notes []model.Note) {
	node := &model.StructureNode{
		ID: id, Type: model.TypeSubPhrase,
		StartMeasure: start, EndMeasure: end,
		Material:   material,
		Confidence: 0.6,
	}
	b.add(node, phrase)
	b.notesByID[id] = notes
	b.buildMotives(node, id, notes)
}

// buildMotives strides a sub-phrase's measures into motive nodes: 1
// measure per motive if the parent spans <=2 measures, else 2.
func (b *builder) buildMotives(sub *model.StructureNode, subID string, notes []model.Note) {
	length := sub.EndMeasure - sub.StartMeasure + 1
	stride := 2
	if length <= 2 {
		stride = 1
	}
	idx := 0
	for m := sub.StartMeasure; m <= sub.EndMeasure; m += stride {
		endM := m + stride - 1
		if endM > sub.EndMeasure {
			endM = sub.EndMeasure
		}
		id := fmt.Sprintf("%s_motive_%d", subID, idx)
		node := &model.StructureNode{
			ID: id, Type: model.TypeMotive,
			StartMeasure: m, EndMeasure: endM,
			Material:   sub.Material,
			Confidence: 0.5,
		}
		b.add(node, sub)
		b.notesByID[id] = subNotes(notes, m, endM)
		idx++
	}
}

func baselineConfidence(c *model.Cadence, fallback float64) float64 {
	if c == nil {
		return fallback
	}
	return model.CadenceStrengthScore(c.Type)
}

// propagateConfidence recomputes every node's confidence post-order:
// (detectConfidence + mean(children.confidence)) / 2, +0.1 if a cadence
// feature is present, clamped to [0,1].
func propagateConfidence(t *Tree, id string) float64 {
	node := t.Nodes[id]
	detect := node.Confidence
	if len(node.Children) > 0 {
		sum := 0.0
		for _, cid := range node.Children {
			sum += propagateConfidence(t, cid)
		}
		mean := sum / float64(len(node.Children))
		detect = (detect + mean) / 2
	}
	if node.Features.Cadence != nil {
		detect += 0.1
	}
	node.Confidence = math.Min(1, math.Max(0, detect))
	return node.Confidence
}

// visualStyleFor maps a final confidence to its rendering hint.
func visualStyleFor(confidence float64) model.VisualStyle {
	switch {
	case confidence >= 0.8:
		return model.VisualStyle{LineStyle: model.LineSolid, Opacity: 1.0, BorderWidth: 2, UncertaintyLevel: model.UncertaintyLow}
	case confidence >= 0.6:
		return model.VisualStyle{LineStyle: model.LineSolid, Opacity: 0.85, BorderWidth: 2, UncertaintyLevel: model.UncertaintyMedium}
	case confidence >= 0.4:
		return model.VisualStyle{LineStyle: model.LineDashed, Opacity: 0.7, BorderWidth: 1, UncertaintyLevel: model.UncertaintyHigh}
	default:
		return model.VisualStyle{LineStyle: model.LineDotted, Opacity: 0.5, BorderWidth: 1, UncertaintyLevel: model.UncertaintyVeryHigh}
	}
}

func usedFeaturesFor(t model.StructureType) []string {
	switch t {
	case model.TypeMotive:
		return []string{"intervalPattern", "rhythmPattern", "contour"}
	case model.TypeSubPhrase:
		return []string{"material", "motives"}
	case model.TypePhrase:
		return []string{"cadence", "closure", "material"}
	case model.TypePeriod:
		return []string{"periodType", "proportion", "closure"}
	case model.TypeTheme:
		return []string{"function", "periods"}
	default:
		return []string{"formType", "sections"}
	}
}

func assignStyles(t *Tree, modelVersion string) {
	for _, node := range t.Nodes {
		node.VisualStyle = visualStyleFor(node.Confidence)
		details := map[string]string{"type": node.Type.String()}
		if node.Features.Cadence != nil {
			details["cadence"] = node.Features.Cadence.Type.String()
		}
		node.TooltipData = model.TooltipData{
			UsedFeatures:     usedFeaturesFor(node.Type),
			DetectionDetails: details,
			ModelVersion:     modelVersion,
		}
	}
}

// intervalHash returns the first <=4 signed-semitone intervals of notes,
// skipping rests.
func intervalHash(notes []model.Note) []int {
	midis := make([]int, 0, len(notes))
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		midis = append(midis, pitch.PitchToMidi(n.Pitch))
	}
	if len(midis) < 2 {
		return nil
	}
	out := make([]int, 0, len(midis)-1)
	for i := 1; i < len(midis) && len(out) < 4; i++ {
		out = append(out, midis[i]-midis[i-1])
	}
	return out
}

func tolerantMatch(a, b []int) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	matches := 0
	for i := 0; i < minLen; i++ {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d <= 2 {
			matches++
		}
	}
	return float64(matches)/float64(minLen) > 0.7
}

// relabelMaterials hashes each node's opening intervals and, on a
// tolerant match against an earlier node of the same type, appends a
// prime mark to the later node's material.
func relabelMaterials(b *builder) {
	registry := map[model.StructureType][][]int{}
	for _, id := range b.order {
		node := b.tree.Nodes[id]
		hash := intervalHash(b.notesByID[id])
		if hash == nil {
			continue
		}
		matched := false
		for _, prior := range registry[node.Type] {
			if tolerantMatch(hash, prior) {
				node.Material += "'"
				matched = true
				break
			}
		}
		if !matched {
			registry[node.Type] = append(registry[node.Type], hash)
		}
	}
}

// UpdateBoundaries moves a node's measure span. Never re-runs detection;
// strictly decrements confidence by 0.1, floored at 0.5.
func (t *Tree) UpdateBoundaries(id string, start, end int) error {
	node, ok := t.Nodes[id]
	if !ok {
		return fmt.Errorf("tree: no node %q", id)
	}
	node.StartMeasure = start
	node.EndMeasure = end
	decrementConfidence(node)
	return nil
}

// UpdateType changes a node's structural type.
func (t *Tree) UpdateType(id string, newType model.StructureType) error {
	node, ok := t.Nodes[id]
	if !ok {
		return fmt.Errorf("tree: no node %q", id)
	}
	node.Type = newType
	decrementConfidence(node)
	return nil
}

// UpdateMaterial relabels a node's material. Idempotent: setting the same
// material twice is a no-op and does not further decrement confidence.
func (t *Tree) UpdateMaterial(id string, material string) error {
	node, ok := t.Nodes[id]
	if !ok {
		return fmt.Errorf("tree: no node %q", id)
	}
	if node.Material == material {
		return nil
	}
	node.Material = material
	decrementConfidence(node)
	return nil
}

func decrementConfidence(node *model.StructureNode) {
	node.Confidence -= 0.1
	if node.Confidence < 0.5 {
		node.Confidence = 0.5
	}
}
