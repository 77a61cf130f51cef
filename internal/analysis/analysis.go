// Package analysis is the top-level orchestrator wiring the detectors
// into one data flow: ParsedScore -> (cadence, motive, sub-phrase,
// phrase, period, form, mode) -> tree -> FullAnalysis, and, on node
// selection, emotion -> scheme/preference -> ranked VisualSchemes. It is
// the single place that constructs every detector's output and hands it
// to the caller (a CLI or a persisted session).
package analysis

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/schollz/scorelens/internal/cadence"
	"github.com/schollz/scorelens/internal/chunked"
	"github.com/schollz/scorelens/internal/config"
	"github.com/schollz/scorelens/internal/emotion"
	"github.com/schollz/scorelens/internal/form"
	"github.com/schollz/scorelens/internal/logx"
	"github.com/schollz/scorelens/internal/mode"
	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/motive"
	"github.com/schollz/scorelens/internal/period"
	"github.com/schollz/scorelens/internal/phrase"
	"github.com/schollz/scorelens/internal/pitch"
	"github.com/schollz/scorelens/internal/preference"
	"github.com/schollz/scorelens/internal/scheme"
	"github.com/schollz/scorelens/internal/tree"
)

// Statistics summarizes counts across a FullAnalysis, surfaced to the UI
// dashboard alongside the tree.
type Statistics struct {
	MeasureCount int `json:"measureCount"`
	NoteCount    int `json:"noteCount"`
	MotiveCount  int `json:"motiveCount"`
	PhraseCount  int `json:"phraseCount"`
	PeriodCount  int `json:"periodCount"`
	CadenceCount int `json:"cadenceCount"`
}

// ProcessingInfo records how a score was processed: whether chunking
// engaged and which model/config version produced the result.
type ProcessingInfo struct {
	Chunked      bool   `json:"chunked"`
	ChunkCount   int    `json:"chunkCount"`
	ModelVersion string `json:"modelVersion"`
}

// FullAnalysis is the complete analysis output handed to the UI and
// export layers.
type FullAnalysis struct {
	Tree           *tree.Tree                   `json:"tree"`
	Motives        []model.Motive               `json:"motives"`
	SubPhrases     []model.SubPhrase            `json:"subPhrases"`
	Phrases        []model.Phrase               `json:"phrases"`
	Periods        []model.Period               `json:"periods"`
	Cadences       []model.Cadence              `json:"cadences"`
	FormAnalysis   model.FormAnalysis           `json:"formAnalysis"`
	Mode           mode.Result                  `json:"mode"`
	Auxiliaries    model.Auxiliaries            `json:"auxiliaries"`
	Statistics     Statistics                   `json:"statistics"`
	ProcessingInfo ProcessingInfo               `json:"processingInfo"`
	TooltipMap     map[string]model.TooltipData `json:"tooltipMap"`
}

func validate(score model.ParsedScore) error {
	measureNumbers := make(map[int]bool, len(score.Measures))
	for _, m := range score.Measures {
		measureNumbers[m.Number] = true
	}
	for _, n := range score.Notes {
		if !measureNumbers[n.Measure] {
			return fmt.Errorf("analysis: InvalidScore: note references measure %d not present in measures[]", n.Measure)
		}
	}
	return nil
}

func measureSpan(score model.ParsedScore) (first, last int) {
	if len(score.Measures) == 0 {
		return 0, 0
	}
	first, last = score.Measures[0].Number, score.Measures[0].Number
	for _, m := range score.Measures {
		if m.Number < first {
			first = m.Number
		}
		if m.Number > last {
			last = m.Number
		}
	}
	return
}

// AnalyzeComplete runs the full, unchunked pipeline over a score. Scores
// with no notes or fewer than two measures yield an empty one_part
// analysis rather than an error.
func AnalyzeComplete(score model.ParsedScore, cfg config.Config) (FullAnalysis, error) {
	if err := validate(score); err != nil {
		logx.Error("invalid score", err, logx.Fields{"noteCount": len(score.Notes)})
		return FullAnalysis{}, err
	}
	if len(score.Notes) == 0 || len(score.Measures) < 2 {
		return insufficientData(cfg), nil
	}

	motives := motive.DetectMotives(score.Notes, score.TimeSignature)
	subphrases := motive.DetectSubPhrases(score.Notes, motives)
	return finishPipeline(score, cfg, motives, subphrases, false, 0)
}

// AnalyzeCompleteChunked runs the chunked driver for long scores:
// motive and sub-phrase detection run per-chunk with overlap merging;
// cadence, phrase, period, form, and mode remain global.
func AnalyzeCompleteChunked(score model.ParsedScore, cfg config.Config) (FullAnalysis, error) {
	if err := validate(score); err != nil {
		logx.Error("invalid score", err, logx.Fields{"noteCount": len(score.Notes)})
		return FullAnalysis{}, err
	}
	if len(score.Notes) == 0 || len(score.Measures) < 2 {
		return insufficientData(cfg), nil
	}

	first, last := measureSpan(score)
	if !chunked.ShouldChunk(len(score.Notes), last-first+1, cfg.Chunking.MaxNotesPerChunk, cfg.Chunking.MaxMeasuresPerChunk) {
		motives := motive.DetectMotives(score.Notes, score.TimeSignature)
		subphrases := motive.DetectSubPhrases(score.Notes, motives)
		return finishPipeline(score, cfg, motives, subphrases, false, 0)
	}

	ranges := chunked.Partition(first, last, cfg.Chunking.MaxMeasuresPerChunk, cfg.Chunking.OverlapMeasures)
	motives, subphrases := chunked.DetectMotivesAndSubPhrases(score.Notes, score.TimeSignature, ranges, cfg.Chunking.OverlapMeasures)
	return finishPipeline(score, cfg, motives, subphrases, true, len(ranges))
}

func insufficientData(cfg config.Config) FullAnalysis {
	fa := model.FormAnalysis{FormType: model.FormOnePart, Confidence: 0.5, Description: "insufficient data"}
	return FullAnalysis{
		Motives: []model.Motive{}, SubPhrases: []model.SubPhrase{}, Phrases: []model.Phrase{},
		Periods: []model.Period{}, Cadences: []model.Cadence{}, FormAnalysis: fa,
		Tree:       tree.Build(fa, cfg.ModelVersion),
		TooltipMap: map[string]model.TooltipData{},
		ProcessingInfo: ProcessingInfo{ModelVersion: cfg.ModelVersion},
	}
}

// finishPipeline runs the globally-scoped detectors (cadence, phrase,
// period, form, mode) over the full note stream, builds the tree, and
// assembles the FullAnalysis. Harmonic context is global, so these
// detectors never run per-chunk.
func finishPipeline(score model.ParsedScore, cfg config.Config, motives []model.Motive, subphrases []model.SubPhrase, wasChunked bool, chunkCount int) (FullAnalysis, error) {
	cadences := cadence.DetectCadences(score.Notes, score.KeySignature)
	sort.Slice(cadences, func(i, j int) bool { return cadences[i].Measure < cadences[j].Measure })

	phrases := phrase.DetectPhrases(score.Notes, cadences)
	periods := period.DetectPeriods(phrases)
	formAnalysis := form.Classify(periods)

	first, last := measureSpan(score)
	aux := form.DetectAuxiliaries(periods, first, last)

	tonic := pitch.TonicFromKey(score.KeySignature.Fifths, score.KeySignature.Mode)
	modeResult := mode.Detect(score.Notes, tonic)

	t := tree.Build(formAnalysis, cfg.ModelVersion)
	tooltips := make(map[string]model.TooltipData, len(t.Nodes))
	for id, n := range t.Nodes {
		tooltips[id] = n.TooltipData
	}

	return FullAnalysis{
		Tree: t, Motives: motives, SubPhrases: subphrases, Phrases: phrases,
		Periods: periods, Cadences: cadences, FormAnalysis: formAnalysis,
		Mode: modeResult, Auxiliaries: aux,
		Statistics: Statistics{
			MeasureCount: last - first + 1, NoteCount: len(score.Notes),
			MotiveCount: len(motives), PhraseCount: len(phrases),
			PeriodCount: len(periods), CadenceCount: len(cadences),
		},
		ProcessingInfo: ProcessingInfo{Chunked: wasChunked, ChunkCount: chunkCount, ModelVersion: cfg.ModelVersion},
		TooltipMap:     tooltips,
	}, nil
}

// Session ties a FullAnalysis to a live preference Manager and PRNG for
// the per-node recommendation flow. The tree, preference buffer, and
// audio/note inputs are all exclusively owned by the session.
type Session struct {
	Analysis   FullAnalysis
	Preference *preference.Manager
	rng        *rand.Rand
	cfg        config.Config
}

// NewSession wraps a completed FullAnalysis with a fresh preference
// manager, seeding its scheme-generator PRNG from seed for reproducible
// top-up draws. Tests pass a fixed seed; production code seeds from
// time.
func NewSession(fa FullAnalysis, cfg config.Config, seed int64) *Session {
	pm := preference.NewManagerTuned(cfg.Preference.RecencyDecayPerMinute, cfg.Preference.MinExamples)
	return &Session{Analysis: fa, Preference: pm, rng: rand.New(rand.NewSource(seed)), cfg: cfg}
}

// Recommend implements the recommend step for one node: derive its
// emotion features, generate rule-based scheme candidates, and prepend
// any preference-learned groups the session has accumulated.
func (s *Session) Recommend(nodeID string, audio *emotion.AudioScalars, nowMinutes float64) ([]model.VisualScheme, error) {
	node, ok := s.Analysis.Tree.Node(nodeID)
	if !ok {
		return nil, fmt.Errorf("analysis: no node %q", nodeID)
	}

	durations := emotion.Durations{ChildCount: len(node.Children), SpanMeasures: node.EndMeasure - node.StartMeasure + 1}
	ef := emotion.Extract(*node, durations, audio)

	related := relatedNodes(s.Analysis.Tree, *node)
	ruleBased := scheme.Generate(scheme.Input{Node: *node, Emotion: ef, RelatedNodes: related}, 5, s.rng)

	featureInput := toFeatureInput(*node, ef)
	featureVec := preference.BuildFeatureVector(featureInput)
	learned := s.Preference.GetRecommendations(featureVec, 5, nowMinutes)

	result := make([]model.VisualScheme, 0, len(learned)+len(ruleBased))
	for _, g := range learned {
		result = append(result, g.Scheme)
	}
	result = append(result, ruleBased...)
	return result, nil
}

func relatedNodes(t *tree.Tree, node model.StructureNode) []model.StructureNode {
	parent, ok := t.Node(node.ParentRef)
	if !ok {
		return nil
	}
	out := make([]model.StructureNode, 0, len(parent.Children))
	for _, cid := range parent.Children {
		if cid == node.ID {
			continue
		}
		if sib, ok := t.Node(cid); ok {
			out = append(out, *sib)
		}
	}
	return out
}

func toFeatureInput(node model.StructureNode, ef model.EmotionFeatures) preference.FeatureInput {
	in := preference.FeatureInput{
		Type:       node.Type,
		Confidence: node.Confidence,
		LengthMeas: node.EndMeasure - node.StartMeasure + 1,
		HasPrime:   len(node.Material) > 0 && node.Material[len(node.Material)-1] == '\'',
		IsCompound: node.Features.PeriodType != nil && *node.Features.PeriodType == model.PeriodCompound,
		Tempo:      ef.Tempo, Dynamics: ef.Dynamics, Tension: ef.Tension,
	}
	if node.Features.Cadence != nil {
		in.Cadence = &node.Features.Cadence.Type
	}
	in.PeriodType = node.Features.PeriodType
	return in
}

// RecordSelection records a user's accept/modify/reject response to a
// recommended scheme and updates the session's preference state.
func (s *Session) RecordSelection(nodeID, action string, vs model.VisualScheme, nowMinutes float64) error {
	node, ok := s.Analysis.Tree.Node(nodeID)
	if !ok {
		return fmt.Errorf("analysis: no node %q", nodeID)
	}
	var reward float64
	switch action {
	case "accept":
		reward = preference.RewardAccept
	case "modify":
		reward = preference.RewardModify
	case "reject":
		reward = preference.RewardReject
	default:
		return fmt.Errorf("analysis: unknown action %q", action)
	}

	ef := vs.EmotionFeatures
	var tempo, dynamics, tension string
	if ef != nil {
		tempo, dynamics, tension = ef.Tempo, ef.Dynamics, ef.Tension
	}
	in := toFeatureInput(*node, model.EmotionFeatures{Tempo: tempo, Dynamics: dynamics, Tension: tension})
	feats := preference.BuildFeatureVector(in)

	cadenceBucket, periodBucket := 4, 3
	if in.Cadence != nil && int(*in.Cadence) < 4 {
		cadenceBucket = int(*in.Cadence)
	}
	if in.PeriodType != nil && int(*in.PeriodType) < 3 {
		periodBucket = int(*in.PeriodType)
	}
	s.Preference.RecordSelection(action, nodeID, feats, vs, reward, nowMinutes, cadenceBucket, periodBucket)
	return nil
}
