package motive

import (
	"sort"
	"strconv"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/similarity"
)

// hasInternalBreak reports whether a measure's notes contain a break that
// warrants splitting it into two sub-phrases: a note of duration >= 2
// beats, or a rest that isn't at the measure's start.
func hasInternalBreak(notes []model.Note) bool {
	for _, n := range notes {
		if n.Duration >= 2 {
			return true
		}
		if n.IsRest() && n.Beat > 0 {
			return true
		}
	}
	return false
}

// motivesIn returns the motives whose measure and start beat fall within
// [startBeat, endBeat) of the given measure.
func motivesIn(all []model.Motive, measure int, startBeat, endBeat float64) []model.Motive {
	out := make([]model.Motive, 0)
	for _, m := range all {
		if m.Measure == measure && m.StartBeat >= startBeat && m.StartBeat < endBeat {
			out = append(out, m)
		}
	}
	return out
}

// DetectSubPhrases segments notes into one sub-phrase per measure, or two
// when a measure carries more than 4 notes and an internal rhythmic break,
// then assigns greedy material labels.
func DetectSubPhrases(notes []model.Note, motives []model.Motive) []model.SubPhrase {
	measures, grouped := measureGroups(notes)
	subs := make([]model.SubPhrase, 0, len(measures))

	for _, m := range measures {
		measureNotes := grouped[m]
		sort.SliceStable(measureNotes, func(i, j int) bool { return measureNotes[i].Beat < measureNotes[j].Beat })

		if len(measureNotes) > 4 && hasInternalBreak(measureNotes) {
			mid := len(measureNotes) / 2
			first := measureNotes[:mid]
			second := measureNotes[mid:]
			subs = append(subs, model.SubPhrase{
				StartMeasure: m, EndMeasure: m,
				StartBeat: 0, EndBeat: 2,
				Notes:   first,
				Motives: motivesIn(motives, m, 0, 2),
			})
			subs = append(subs, model.SubPhrase{
				StartMeasure: m, EndMeasure: m,
				StartBeat: 2, EndBeat: 4,
				Notes:   second,
				Motives: motivesIn(motives, m, 2, 4),
			})
			continue
		}

		subs = append(subs, model.SubPhrase{
			StartMeasure: m, EndMeasure: m,
			StartBeat: 0, EndBeat: 4,
			Notes:   measureNotes,
			Motives: motivesIn(motives, m, 0, 4),
		})
	}

	assignMaterials(subs)
	for i := range subs {
		subs[i].Index = i
	}
	return subs
}

// assignMaterials labels each sub-phrase greedily against all predecessors
//: the best-matching predecessor drives whether the label is a
// variant (' or v) of its material, or a fresh letter.
func assignMaterials(subs []model.SubPhrase) {
	nextLetter := byte('a')
	for i := range subs {
		if i == 0 {
			subs[i].Material = string(nextLetter)
			nextLetter++
			continue
		}

		bestSim := -1.0
		bestIdx := -1
		curIntervals := intervalPattern(subs[i].Notes)
		curRhythm := rhythmPattern(subs[i].Notes)
		for j := 0; j < i; j++ {
			sim := 0.6*similarity.IntervalSimilarity(intervalPattern(subs[j].Notes), curIntervals) +
				0.4*similarity.RhythmSimilarity(rhythmPattern(subs[j].Notes), curRhythm)
			if sim > bestSim {
				bestSim = sim
				bestIdx = j
			}
		}

		switch {
		case bestSim >= 0.8:
			subs[i].Material = subs[bestIdx].Material + "'"
			subs[i].SimilarTo = materialID(bestIdx)
			subs[i].Similarity = bestSim
		case bestSim >= 0.5:
			subs[i].Material = subs[bestIdx].Material + "v"
			subs[i].SimilarTo = materialID(bestIdx)
			subs[i].Similarity = bestSim
		default:
			subs[i].Material = string(nextLetter)
			nextLetter++
		}
	}
}

func materialID(index int) string {
	return "subphrase-" + strconv.Itoa(index)
}
