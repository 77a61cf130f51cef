// Package similarity implements the melodic similarity kernels:
// interval/rhythm/melodic similarity, contour, and transposition/inversion
// detection. Every kernel here returns 0 (or the stated zero value) on
// empty input and never panics.
package similarity

import (
	"math"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
)

// CompareArrays aligns two numeric sequences on the shorter length, counts
// positions where the values differ by at most 1 as matches, and scales
// the match ratio by a length penalty.
func CompareArrays(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	minLen := len(a)
	maxLen := len(b)
	if minLen > maxLen {
		minLen, maxLen = maxLen, minLen
	}

	matches := 0
	for i := 0; i < minLen; i++ {
		if math.Abs(a[i]-b[i]) <= 1 {
			matches++
		}
	}

	lengthPenalty := 1.0 - float64(maxLen-minLen)/float64(maxLen)
	return (float64(matches) / float64(minLen)) * lengthPenalty
}

// intsToFloats converts []int to []float64 for reuse by CompareArrays.
func intsToFloats(in []int) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// IntervalSimilarity compares two signed-semitone interval patterns.
func IntervalSimilarity(a, b []int) float64 {
	return CompareArrays(intsToFloats(a), intsToFloats(b))
}

// RhythmSimilarity compares two duration patterns.
func RhythmSimilarity(a, b []float64) float64 {
	return CompareArrays(a, b)
}

// MelodicSimilarity combines interval and rhythm similarity 0.6/0.4.
func MelodicSimilarity(intervalsA, intervalsB []int, rhythmA, rhythmB []float64) float64 {
	return 0.6*IntervalSimilarity(intervalsA, intervalsB) + 0.4*RhythmSimilarity(rhythmA, rhythmB)
}

// notesToMidi converts a note slice's pitches to MIDI numbers, skipping
// rests.
func notesToMidi(notes []model.Note) []int {
	out := make([]int, 0, len(notes))
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		out = append(out, pitch.PitchToMidi(n.Pitch))
	}
	return out
}

func meanInt(xs []int) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}

// DetectTransposition returns the rounded difference between the mean MIDI
// pitch of n2 and n1.
func DetectTransposition(n1, n2 []model.Note) int {
	m1 := notesToMidi(n1)
	m2 := notesToMidi(n2)
	if len(m1) == 0 || len(m2) == 0 {
		return 0
	}
	return int(math.Round(meanInt(m2) - meanInt(m1)))
}

// IsInversion reports whether i2 is a melodic inversion of i1: equal
// length and |i1[k]+i2[k]| <= 1 in at least 80% of positions.
func IsInversion(i1, i2 []int) bool {
	if len(i1) == 0 || len(i2) == 0 || len(i1) != len(i2) {
		return false
	}
	matches := 0
	for k := range i1 {
		if math.Abs(float64(i1[k]+i2[k])) <= 1 {
			matches++
		}
	}
	return float64(matches)/float64(len(i1)) >= 0.8
}

// ContourOf classifies a pitch sequence's overall direction from its first
// to last pitched note.
func ContourOf(notes []model.Note) model.Contour {
	midis := notesToMidi(notes)
	if len(midis) < 2 {
		return model.ContourStatic
	}
	diff := midis[len(midis)-1] - midis[0]
	switch {
	case diff > 0:
		return model.ContourAscending
	case diff < 0:
		return model.ContourDescending
	default:
		return model.ContourStatic
	}
}

// IsFragmentation reports whether intervals2 is a truncated, similar-opening
// fragment of intervals1: shorter than 80% of intervals1's length, and
// matching intervals1's opening intervals above 0.7 similarity.
func IsFragmentation(intervals1, intervals2 []int) bool {
	if len(intervals1) == 0 || len(intervals2) == 0 {
		return false
	}
	if float64(len(intervals2)) >= 0.8*float64(len(intervals1)) {
		return false
	}
	prefixLen := len(intervals2)
	if prefixLen > len(intervals1) {
		prefixLen = len(intervals1)
	}
	prefix := intervals1[:prefixLen]
	return IntervalSimilarity(prefix, intervals2) > 0.7
}
