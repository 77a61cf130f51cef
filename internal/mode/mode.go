// Package mode implements the mode detector: scoring a
// weighted pitch-class histogram against major/minor variants, the seven
// church modes, and the five pentatonic modes.
package mode

import (
	"sort"

	"github.com/schollz/scorelens/internal/model"
)

// Name identifies one of the fifteen candidate scales scored against a
// pitch-class histogram.
type Name int

const (
	NameMajor Name = iota
	NameNaturalMinor
	NameHarmonicMinor
	NameIonian
	NameDorian
	NamePhrygian
	NameLydian
	NameMixolydian
	NameAeolian
	NameLocrian
	NamePentatonicMajor
	NamePentatonicMode2
	NamePentatonicMode3
	NamePentatonicMode4
	NamePentatonicMode5
)

func (n Name) String() string {
	switch n {
	case NameMajor:
		return "major"
	case NameNaturalMinor:
		return "natural_minor"
	case NameHarmonicMinor:
		return "harmonic_minor"
	case NameIonian:
		return "ionian"
	case NameDorian:
		return "dorian"
	case NamePhrygian:
		return "phrygian"
	case NameLydian:
		return "lydian"
	case NameMixolydian:
		return "mixolydian"
	case NameAeolian:
		return "aeolian"
	case NameLocrian:
		return "locrian"
	case NamePentatonicMajor:
		return "pentatonic_major"
	case NamePentatonicMode2:
		return "pentatonic_mode_2"
	case NamePentatonicMode3:
		return "pentatonic_mode_3"
	case NamePentatonicMode4:
		return "pentatonic_mode_4"
	default:
		return "pentatonic_mode_5"
	}
}

// Result is the top scoring scale plus its runner-up.
type Result struct {
	Mode               Name    `json:"mode"`
	Confidence         float64 `json:"confidence"`
	RunnerUp           Name    `json:"runnerUp"`
	RunnerUpConfidence float64 `json:"runnerUpConfidence"`
}

var majorPattern = []int{0, 2, 4, 5, 7, 9, 11}
var harmonicMinorPattern = []int{0, 2, 3, 5, 7, 8, 11}
var pentatonicPattern = []int{0, 2, 4, 7, 9}

// rotations returns, for each degree of pattern, the interval set obtained
// by starting the scale at that degree (a mode of the parent scale).
func rotations(pattern []int) [][]int {
	n := len(pattern)
	out := make([][]int, n)
	for i := 0; i < n; i++ {
		rotated := make([]int, n)
		root := pattern[i]
		for j := 0; j < n; j++ {
			val := pattern[(i+j)%n] - root
			if val < 0 {
				val += 12
			}
			rotated[j] = val
		}
		sort.Ints(rotated)
		out[i] = rotated
	}
	return out
}

func toSet(intervals []int) map[int]bool {
	m := make(map[int]bool, len(intervals))
	for _, v := range intervals {
		m[v] = true
	}
	return m
}

type candidateScale struct {
	name      Name
	intervals map[int]bool
}

func candidates() []candidateScale {
	churchModes := rotations(majorPattern)
	pentModes := rotations(pentatonicPattern)
	return []candidateScale{
		{NameMajor, toSet(majorPattern)},
		{NameNaturalMinor, toSet(churchModes[5])}, // Aeolian == natural minor
		{NameHarmonicMinor, toSet(harmonicMinorPattern)},
		{NameIonian, toSet(churchModes[0])},
		{NameDorian, toSet(churchModes[1])},
		{NamePhrygian, toSet(churchModes[2])},
		{NameLydian, toSet(churchModes[3])},
		{NameMixolydian, toSet(churchModes[4])},
		{NameAeolian, toSet(churchModes[5])},
		{NameLocrian, toSet(churchModes[6])},
		{NamePentatonicMajor, toSet(pentModes[0])},
		{NamePentatonicMode2, toSet(pentModes[1])},
		{NamePentatonicMode3, toSet(pentModes[2])},
		{NamePentatonicMode4, toSet(pentModes[3])},
		{NamePentatonicMode5, toSet(pentModes[4])},
	}
}

// histogram builds a weighted pitch-class histogram, weight = note
// duration, ignoring rests.
func histogram(notes []model.Note) [12]float64 {
	var hist [12]float64
	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		hist[n.Pitch.PitchClass()] += n.Duration
	}
	return hist
}

// rotateToTonic shifts a 0..11-indexed histogram so index 0 becomes the
// tonic's pitch class.
func rotateToTonic(hist [12]float64, tonicPC int) [12]float64 {
	var out [12]float64
	for i := 0; i < 12; i++ {
		out[i] = hist[(i+tonicPC)%12]
	}
	return out
}

// Detect scores every candidate scale against notes rotated into the
// tonic's frame and returns the winner and runner-up. tonic is
// the key signature's tonic pitch.
func Detect(notes []model.Note, tonic model.PitchName) Result {
	hist := histogram(notes)
	rotated := rotateToTonic(hist, tonic.PitchClass())

	total := 0.0
	for _, v := range rotated {
		total += v
	}
	if total == 0 {
		return Result{Mode: NameMajor, Confidence: 0}
	}

	type scored struct {
		name  Name
		score float64
	}
	scores := make([]scored, 0, 15)
	for _, c := range candidates() {
		inScale := 0.0
		for pc, weight := range rotated {
			if c.intervals[pc] {
				inScale += weight
			}
		}
		scores = append(scores, scored{c.name, inScale / total})
	}

	best, runner := scores[0], scored{}
	for _, s := range scores[1:] {
		if s.score > best.score {
			runner = best
			best = s
		} else if s.score > runner.score {
			runner = s
		}
	}

	return Result{
		Mode:               best.name,
		Confidence:         best.score,
		RunnerUp:           runner.name,
		RunnerUpConfidence: runner.score,
	}
}
