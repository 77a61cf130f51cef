// Package preference implements the weighted-KNN preference learner:
// a session-local, append-only example buffer scored
// by a recency-decayed, per-feature-weighted distance, with additive
// weight adaptation on each recorded selection.
package preference

import (
	"math"
	"sort"

	"github.com/schollz/scorelens/internal/model"
)

// FeatureDim is the fixed feature-vector dimensionality:
// one-hot(type,6) ++ confidence ++ lengthNorm ++ hasPrime ++ isCompound
// ++ one-hot(cadence,5) ++ one-hot(periodType,4) ++ tempo ++ dynamics ++
// tension.
const FeatureDim = 23

const (
	idxConfidence   = 6
	idxLength       = 7
	idxHasPrime     = 8
	idxIsCompound   = 9
	idxCadenceStart = 10 // 5 slots
	idxPeriodStart  = 15 // 4 slots
	idxTempo        = 19
	idxDynamics     = 20
	idxTension      = 21
	// index 22 is a trailing pad: the named slots above sum to 22, so the
	// vector is padded to FeatureDim to keep bucket offsets stable.
	idxPad = 22
)

const recencyDecayPerMinute = 0.95

// Weights is the per-feature weight vector, mutated by RecordSelection.
type Weights [FeatureDim]float64

// DefaultWeights returns the initial weight vector.
func DefaultWeights() Weights {
	var w Weights
	for i := 0; i < 6; i++ {
		w[i] = 1.0
	}
	w[idxConfidence] = 0.5
	w[idxLength] = 0.8
	w[idxHasPrime] = 0.7
	w[idxIsCompound] = 0.7
	for i := 0; i < 5; i++ {
		w[idxCadenceStart+i] = 0.9
	}
	for i := 0; i < 4; i++ {
		w[idxPeriodStart+i] = 0.8
	}
	w[idxTempo] = 0.6
	w[idxDynamics] = 0.6
	w[idxTension] = 0.7
	return w
}

// FeatureInput bundles the raw fields BuildFeatureVector one-hot-encodes
// and normalises into a feature vector.
type FeatureInput struct {
	Type       model.StructureType
	Confidence float64
	LengthMeas int
	HasPrime   bool
	IsCompound bool
	Cadence    *model.CadenceType // nil => "none" bucket
	PeriodType *model.PeriodType  // nil => "none" bucket
	Tempo      string             // fast|moderate|slow
	Dynamics   string             // strong|moderate|soft
	Tension    string             // tense|neutral|relaxed
}

func numericTriad(v, a, b, c string) float64 {
	switch v {
	case a:
		return 0
	case b:
		return 0.5
	case c:
		return 1
	default:
		return 0.5
	}
}

// BuildFeatureVector encodes a FeatureInput into the fixed 23-dim vector.
func BuildFeatureVector(in FeatureInput) [FeatureDim]float64 {
	var v [FeatureDim]float64
	if int(in.Type) >= 0 && int(in.Type) < 6 {
		v[in.Type] = 1
	}
	v[idxConfidence] = in.Confidence
	v[idxLength] = math.Min(1, float64(in.LengthMeas)/16)
	if in.HasPrime {
		v[idxHasPrime] = 1
	}
	if in.IsCompound {
		v[idxIsCompound] = 1
	}
	if in.Cadence == nil || int(*in.Cadence) >= 4 {
		v[idxCadenceStart+4] = 1
	} else {
		v[idxCadenceStart+int(*in.Cadence)] = 1
	}
	if in.PeriodType == nil {
		v[idxPeriodStart+3] = 1
	} else if int(*in.PeriodType) < 4 {
		v[idxPeriodStart+int(*in.PeriodType)] = 1
	} else {
		v[idxPeriodStart+3] = 1
	}
	v[idxTempo] = numericTriad(in.Tempo, "slow", "moderate", "fast")
	v[idxDynamics] = numericTriad(in.Dynamics, "soft", "moderate", "strong")
	v[idxTension] = numericTriad(in.Tension, "relaxed", "neutral", "tense")
	return v
}

// Reward values for the three user signals.
const (
	RewardAccept = 1.0
	RewardModify = 0.5
	RewardReject = -1.0
)

// HistoryEntry is one recorded accept/modify/reject event, retained for
// the persisted-state `learningHistory` export.
type HistoryEntry struct {
	Action    string  `json:"action"`
	NodeID    string  `json:"nodeId"`
	SchemeID  string  `json:"schemeId"`
	Timestamp float64 `json:"timestamp"`
}

// Manager is the session-local preference learner: an append-only
// example buffer, a mutable weight vector, and a selection history.
type Manager struct {
	examples    []model.PreferenceExample
	weights     Weights
	history     []HistoryEntry
	accept      int
	modify      int
	reject      int
	decay       float64
	minExamples int
}

// NewManager returns a Manager with default weights and an empty buffer.
func NewManager() *Manager {
	return NewManagerTuned(recencyDecayPerMinute, minExamplesForRecommendation)
}

// NewManagerTuned returns a Manager with the given recency decay and
// minimum-example threshold, for callers that load these from config.
// Out-of-range values fall back to the defaults.
func NewManagerTuned(decay float64, minExamples int) *Manager {
	if decay <= 0 || decay > 1 {
		decay = recencyDecayPerMinute
	}
	if minExamples < 1 {
		minExamples = minExamplesForRecommendation
	}
	return &Manager{weights: DefaultWeights(), decay: decay, minExamples: minExamples}
}

// Clear empties the buffer and history and zeros the counts.
func (m *Manager) Clear() {
	m.examples = nil
	m.history = nil
	m.accept, m.modify, m.reject = 0, 0, 0
}

// Counts returns the accept/modify/reject tallies for persisted-state
// export.
func (m *Manager) Counts() (accept, modify, reject int) { return m.accept, m.modify, m.reject }

// SeedCounts restores the accept/modify/reject tallies and selection
// history from a prior PersistedState export onto a freshly-constructed
// Manager. It does not restore the
// example buffer or learned weights: those need each example's original
// feature vector and reward, which the persisted-state wire format
// intentionally drops down to history entries for display, so a process
// reloading a session starts re-learning from default weights with its
// counts/history continuous across the reload.
func (m *Manager) SeedCounts(history []HistoryEntry, accept, modify, reject int) {
	m.history = append([]HistoryEntry{}, history...)
	m.accept, m.modify, m.reject = accept, modify, reject
}

// ExampleCount returns the number of buffered examples.
func (m *Manager) ExampleCount() int { return len(m.examples) }

// History returns the recorded selection history.
func (m *Manager) History() []HistoryEntry { return m.history }

// kFor implements the K-adaptation table: >20 examples => 7,
// >10 => 5, else 3.
func kFor(n int) int {
	switch {
	case n > 20:
		return 7
	case n > 10:
		return 5
	default:
		return 3
	}
}

// RecordSelection appends a PreferenceExample for the given feature
// vector/scheme/reward, updates accept/modify/reject tallies and
// history, and adjusts the relevant feature-weight buckets.
func (m *Manager) RecordSelection(action string, nodeID string, features [FeatureDim]float64, scheme model.VisualScheme, reward float64, timestamp float64, cadenceBucket, periodBucket int) {
	m.examples = append(m.examples, model.PreferenceExample{
		FeatureVector: append([]float64{}, features[:]...),
		Scheme:        scheme,
		Reward:        reward,
		Timestamp:     timestamp,
	})
	m.history = append(m.history, HistoryEntry{Action: action, NodeID: nodeID, SchemeID: scheme.ID, Timestamp: timestamp})

	switch action {
	case "accept":
		m.accept++
	case "modify":
		m.modify++
	case "reject":
		m.reject++
	}

	m.adjustWeights(reward, cadenceBucket, periodBucket)
}

// adjustWeights applies the weight-update rule: +0.05 if
// reward>0 else -0.03, additively applied to the structureType,
// cadenceType, and periodType buckets, clamped to [0.1, 2.0].
func (m *Manager) adjustWeights(reward float64, cadenceBucket, periodBucket int) {
	adjust := -0.03
	if reward > 0 {
		adjust = 0.05
	}
	for i := 0; i < 6; i++ {
		m.weights[i] = clamp(m.weights[i]+adjust, 0.1, 2.0)
	}
	if cadenceBucket >= 0 && cadenceBucket < 5 {
		m.weights[idxCadenceStart+cadenceBucket] = clamp(m.weights[idxCadenceStart+cadenceBucket]+adjust, 0.1, 2.0)
	}
	if periodBucket >= 0 && periodBucket < 4 {
		m.weights[idxPeriodStart+periodBucket] = clamp(m.weights[idxPeriodStart+periodBucket]+adjust, 0.1, 2.0)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const minExamplesForRecommendation = 2

// GroupedRecommendation is one canonical scheme group surfaced to the
// caller, tagged with its preference score and member count.
type GroupedRecommendation struct {
	Scheme     model.VisualScheme
	Score      float64
	MatchCount int
}

// GetRecommendations scores the buffer against a query feature vector by
// weighted distance + reward + recency decay, keeps the positive-reward
// top-k, and groups survivors by canonical scheme key, returning the top
// `count` groups tagged fromPreference=true. nowMinutes is
// the caller-supplied current timestamp in the same units as the
// buffered examples' Timestamp (minutes), so age can be computed without
// calling time.Now from a pure function.
func (m *Manager) GetRecommendations(query [FeatureDim]float64, count int, nowMinutes float64) []GroupedRecommendation {
	if len(m.examples) < m.minExamples {
		return nil
	}
	k := kFor(len(m.examples))

	type scored struct {
		ex       model.PreferenceExample
		combined float64
	}
	var candidates []scored
	for _, ex := range m.examples {
		if ex.Reward <= 0 {
			continue
		}
		dist := weightedDistance(m.weights, query[:], ex.FeatureVector)
		ageMinutes := nowMinutes - ex.Timestamp
		if ageMinutes < 0 {
			ageMinutes = 0
		}
		recency := math.Pow(m.decay, ageMinutes)
		combined := (1 / (dist + 0.1)) * ex.Reward * recency
		candidates = append(candidates, scored{ex, combined})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].combined > candidates[j].combined })
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	groups := map[string]*GroupedRecommendation{}
	var order []string
	for _, c := range candidates {
		key := canonicalSchemeKey(c.ex.Scheme)
		g, ok := groups[key]
		if !ok {
			g = &GroupedRecommendation{Scheme: c.ex.Scheme}
			groups[key] = g
			order = append(order, key)
		}
		g.Score += c.combined
		g.MatchCount++
	}

	result := make([]GroupedRecommendation, 0, len(order))
	for _, key := range order {
		g := *groups[key]
		g.Scheme.FromPreference = true
		g.Scheme.PreferenceScore = g.Score
		g.Scheme.MatchCount = g.MatchCount
		g.Scheme.RecommendationSource = model.SourcePreferenceLearning
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	if len(result) > count {
		result = result[:count]
	}
	return result
}

func weightedDistance(w Weights, q, e []float64) float64 {
	sum := 0.0
	for i := 0; i < FeatureDim && i < len(e); i++ {
		d := q[i] - e[i]
		sum += w[i] * d * d
	}
	return math.Sqrt(sum)
}

func canonicalSchemeKey(s model.VisualScheme) string {
	key := ""
	for _, sh := range s.Shapes {
		key += string(sh.Type) + "|"
	}
	key += "#"
	for _, c := range s.Colors {
		key += c + ","
	}
	key += "#" + string(s.Animation)
	return key
}
