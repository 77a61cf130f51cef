// Package cadence implements the cadence detector:
// classifying two-measure bass/soprano transitions into harmonic closures.
package cadence

import (
	"sort"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
)

const (
	degreeTonic       = 0
	degreeSubdominant = 3
	degreeDominant    = 4
	degreeSubmediant  = 5
	degreeLeading     = 6
)

// byMeasure groups notes by measure number, in ascending measure order.
func byMeasure(notes []model.Note) (measures []int, grouped map[int][]model.Note) {
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

// extreme returns the lowest (byHighest=false) or highest (byHighest=true)
// pitched note of a group, ignoring rests. ok is false if the group has no
// pitched notes.
func extreme(notes []model.Note, byHighest bool) (model.Note, bool) {
	var best model.Note
	found := false
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		if !found {
			best = n
			found = true
			continue
		}
		bestMidi := pitch.PitchToMidi(best.Pitch)
		curMidi := pitch.PitchToMidi(n.Pitch)
		if (byHighest && curMidi > bestMidi) || (!byHighest && curMidi < bestMidi) {
			best = n
		}
	}
	return best, found
}

// DetectCadences classifies every adjacent measure pair with notes into a
// cadence. Output is sorted strictly ascending by measure.
func DetectCadences(notes []model.Note, key model.KeySignature) []model.Cadence {
	measures, grouped := byMeasure(notes)
	if len(measures) < 2 {
		return []model.Cadence{}
	}
	tonic := pitch.TonicFromKey(key.Fifths, key.Mode)

	cadences := make([]model.Cadence, 0, len(measures)-1)
	for i := 0; i+1 < len(measures); i++ {
		m, mNext := measures[i], measures[i+1]
		if mNext != m+1 {
			continue
		}
		bassCur, ok1 := extreme(grouped[m], false)
		bassNext, ok2 := extreme(grouped[mNext], false)
		sopranoNext, ok3 := extreme(grouped[mNext], true)
		if !ok1 || !ok2 || !ok3 {
			continue
		}

		prev := pitch.ScaleDegree(*bassCur.Pitch, tonic, key.Mode)
		curr := pitch.ScaleDegree(*bassNext.Pitch, tonic, key.Mode)
		melody := pitch.ScaleDegree(*sopranoNext.Pitch, tonic, key.Mode)

		if c, ok := classify(mNext, sopranoNext.Beat, prev, curr, melody, key.Mode); ok {
			cadences = append(cadences, c)
		}
	}
	return cadences
}

// classify applies the classification table, first match wins.
func classify(measure int, beat float64, prev, curr, melody int, mode model.Mode) (model.Cadence, bool) {
	mk := func(t model.CadenceType, strength model.CadenceStrength, confidence float64) (model.Cadence, bool) {
		return model.Cadence{
			Measure:    measure,
			Beat:       beat,
			Type:       t,
			Strength:   strength,
			Confidence: confidence,
		}, true
	}

	switch {
	case prev == degreeDominant && curr == degreeTonic && melody == degreeTonic:
		return mk(model.CadencePAC, model.StrengthStrong, 0.95)
	case prev == degreeDominant && curr == degreeTonic && melody != degreeTonic:
		return mk(model.CadenceIAC, model.StrengthModerate, 0.8)
	case (prev == degreeDominant || prev == degreeLeading) && curr == degreeTonic && melody != degreeTonic:
		return mk(model.CadenceIAC, model.StrengthModerate, 0.75)
	case curr == degreeDominant:
		return mk(model.CadenceHalf, model.StrengthWeak, 0.8)
	case prev == degreeDominant && curr == degreeSubmediant:
		return mk(model.CadenceDeceptive, model.StrengthModerate, 0.85)
	case prev == degreeSubdominant && curr == degreeTonic:
		return mk(model.CadencePlagal, model.StrengthModerate, 0.75)
	case mode == model.Minor && prev == degreeSubdominant && curr == degreeDominant:
		return mk(model.CadencePhrygian, model.StrengthWeak, 0.7)
	default:
		return model.Cadence{}, false
	}
}
