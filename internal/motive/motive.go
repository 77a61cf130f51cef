// Package motive implements the motive and sub-phrase detectors:
// segmenting notes into 1-2 beat motives and ~1-measure
// sub-phrases, and relating each to its predecessor.
package motive

import (
	"sort"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
	"github.com/schollz/scorelens/internal/similarity"
)

// strongBeats returns the beat offsets within a measure that open a new
// motive candidate: beat 0 always, plus beat 2 in a 4-beat meter.
func strongBeats(ts model.TimeSignature) []float64 {
	if ts.Beats == 4 {
		return []float64{0, 2}
	}
	return []float64{0}
}

func measureGroups(notes []model.Note) (measures []int, grouped map[int][]model.Note) {
	grouped = make(map[int][]model.Note)
	for _, n := range notes {
		grouped[n.Measure] = append(grouped[n.Measure], n)
	}
	for m := range grouped {
		measures = append(measures, m)
	}
	sort.Ints(measures)
	return
}

func intervalPattern(notes []model.Note) []int {
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
	out := make([]int, len(midis)-1)
	for i := 1; i < len(midis); i++ {
		out[i-1] = midis[i] - midis[i-1]
	}
	return out
}

func rhythmPattern(notes []model.Note) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = n.Duration
	}
	return out
}

// DetectMotives segments a note stream into motives and annotates each
// with its relationship to the preceding motive.
func DetectMotives(notes []model.Note, ts model.TimeSignature) []model.Motive {
	measures, grouped := measureGroups(notes)
	motives := make([]model.Motive, 0)

	for _, m := range measures {
		measureNotes := grouped[m]
		sort.SliceStable(measureNotes, func(i, j int) bool { return measureNotes[i].Beat < measureNotes[j].Beat })

		boundaries := strongBeats(ts)
		for bi, start := range boundaries {
			end := 1e9
			if bi+1 < len(boundaries) {
				end = boundaries[bi+1]
			}
			segment := make([]model.Note, 0)
			for _, n := range measureNotes {
				if n.Beat >= start && n.Beat < end {
					segment = append(segment, n)
				}
			}
			if len(segment) < 2 {
				continue
			}
			motives = append(motives, model.Motive{
				Measure:         m,
				StartBeat:       start,
				Notes:           segment,
				IntervalPattern: intervalPattern(segment),
				RhythmPattern:   rhythmPattern(segment),
				Contour:         similarity.ContourOf(segment),
			})
		}
	}

	for i := range motives {
		motives[i].Index = i
		if i == 0 {
			motives[i].Relationship = model.RelationNew
			motives[i].Confidence = 0.6
			continue
		}
		classifyRelationship(&motives[i], motives[i-1])
	}
	return motives
}

// classifyRelationship applies the first-match-wins cascade to
// classify cur's relationship to prev.
func classifyRelationship(cur *model.Motive, prev model.Motive) {
	intervalSim := similarity.IntervalSimilarity(prev.IntervalPattern, cur.IntervalPattern)
	rhythmSim := similarity.RhythmSimilarity(prev.RhythmPattern, cur.RhythmPattern)
	transposition := similarity.DetectTransposition(prev.Notes, cur.Notes)

	switch {
	case intervalSim > 0.9 && rhythmSim > 0.9:
		cur.Relationship = model.RelationRepetition
		cur.Confidence = 0.95
	case intervalSim > 0.8 && rhythmSim > 0.7 && transposition != 0:
		cur.Relationship = model.RelationSequence
		cur.Confidence = 0.85
		cur.Transposition = transposition
	case rhythmSim > 0.8 && intervalSim < 0.5:
		cur.Relationship = model.RelationVariation
		cur.Confidence = 0.70
	case similarity.IsFragmentation(prev.IntervalPattern, cur.IntervalPattern):
		cur.Relationship = model.RelationFragmentation
		cur.Confidence = 0.75
	case similarity.IsInversion(prev.IntervalPattern, cur.IntervalPattern):
		cur.Relationship = model.RelationInversion
		cur.Confidence = 0.80
	default:
		cur.Relationship = model.RelationNew
		cur.Confidence = 0.60
	}
}
