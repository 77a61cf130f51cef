// Package phrase implements the phrase detector:
// segmenting a note stream on cadences into 2-12 measure phrases, splitting
// overlong spans, and assigning material labels and inter-phrase
// relationships.
package phrase

import (
	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
	"github.com/schollz/scorelens/internal/similarity"
)

const headTailCap = 8

// notesInRange returns notes whose measure falls within [start,end].
func notesInRange(notes []model.Note, start, end int) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range notes {
		if n.Measure >= start && n.Measure <= end {
			out = append(out, n)
		}
	}
	return out
}

func midiInterval(notes []model.Note) []int {
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

func durations(notes []model.Note) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = n.Duration
	}
	return out
}

func cap8(notes []model.Note) []model.Note {
	if len(notes) > headTailCap {
		return notes[:headTailCap]
	}
	return notes
}

func head(notes []model.Note) []model.Note {
	half := len(notes) / 2
	return cap8(notes[:half])
}

func tail(notes []model.Note) []model.Note {
	half := len(notes) / 2
	return cap8(notes[len(notes)-half:])
}

func melodicSim(a, b []model.Note) float64 {
	return similarity.MelodicSimilarity(midiInterval(a), midiInterval(b), durations(a), durations(b))
}

// CompareHeads returns the melodic similarity of two phrases' opening
// notes (first half, capped at 8), reused by the period and form
// detectors for recapitulation/compound-period checks.
func CompareHeads(a, b model.Phrase) float64 {
	return melodicSim(head(a.Notes), head(b.Notes))
}

// IsSequentialRelation reports whether b's melody is a transposed
// sequence of a's: interval similarity > 0.7 with a nonzero transposition.
func IsSequentialRelation(a, b model.Phrase) bool {
	sim := similarity.IntervalSimilarity(midiInterval(a.Notes), midiInterval(b.Notes))
	return sim > 0.7 && similarity.DetectTransposition(a.Notes, b.Notes) != 0
}

// DetectPhrases walks the cadence list and segments notes into phrases
// bounded by cadences.
func DetectPhrases(notes []model.Note, cadences []model.Cadence) []model.Phrase {
	if len(notes) == 0 {
		return []model.Phrase{}
	}

	firstMeasure := notes[0].Measure
	lastMeasure := notes[0].Measure
	for _, n := range notes {
		if n.Measure < firstMeasure {
			firstMeasure = n.Measure
		}
		if n.Measure > lastMeasure {
			lastMeasure = n.Measure
		}
	}

	phrases := make([]model.Phrase, 0)
	cursor := firstMeasure
	for i := range cadences {
		c := cadences[i]
		emitClosed(&phrases, notes, cursor, c.Measure, &cadences[i])
		cursor = c.Measure + 1
	}
	if cursor <= lastMeasure && lastMeasure-cursor+1 >= 2 {
		emitClosed(&phrases, notes, cursor, lastMeasure, nil)
	}

	for i := range phrases {
		phrases[i].Index = i
	}
	assignRelationships(phrases)
	return phrases
}

// emitClosed appends one phrase spanning [start,end], splitting it in two
// at the midpoint if it exceeds 12 measures.
func emitClosed(phrases *[]model.Phrase, notes []model.Note, start, end int, c *model.Cadence) {
	length := end - start + 1
	if length < 2 {
		return
	}
	if length <= 12 {
		*phrases = append(*phrases, buildPhrase(notes, start, end, c))
		return
	}

	mid := start + length/2 - 1
	*phrases = append(*phrases, buildPhrase(notes, start, mid, nil))
	*phrases = append(*phrases, buildPhrase(notes, mid+1, end, c))
}

func buildPhrase(notes []model.Note, start, end int, c *model.Cadence) model.Phrase {
	closure := model.ClosureOpen
	strength := 0.0
	if c != nil {
		strength = model.CadenceStrengthScore(c.Type)
	}
	if strength > 0.7 {
		closure = model.ClosureClosed
	}
	return model.Phrase{
		StartMeasure: start,
		EndMeasure:   end,
		Cadence:      c,
		Notes:        notesInRange(notes, start, end),
		Closure:      closure,
	}
}

// assignRelationships classifies each phrase's relationship to its
// predecessor and assigns material labels.
func assignRelationships(phrases []model.Phrase) {
	nextLetter := byte('a')
	for i := range phrases {
		if i == 0 {
			phrases[i].Material = string(nextLetter)
			nextLetter++
			continue
		}
		prev := phrases[i-1]
		h := head(phrases[i].Notes)
		t := tail(phrases[i].Notes)
		headSim := melodicSim(head(prev.Notes), h)
		tailSim := melodicSim(tail(prev.Notes), t)
		phrases[i].HeadSimilarity = headSim

		switch {
		case headSim > 0.7 && tailSim < 0.5:
			phrases[i].Relationship = model.PhraseRelationParallel
			phrases[i].Material = prev.Material + "'"
		case headSim > 0.7 && tailSim > 0.7:
			phrases[i].Relationship = model.PhraseRelationRepetition
			phrases[i].Material = prev.Material + "r"
		case headSim < 0.3:
			phrases[i].Relationship = model.PhraseRelationContrasting
			phrases[i].Material = string(nextLetter)
			nextLetter++
		default:
			phrases[i].Relationship = model.PhraseRelationDevelopment
			phrases[i].Material = prev.Material + "d"
		}
	}
}
