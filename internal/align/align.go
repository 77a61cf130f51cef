// Package align implements the DTW aligner: building
// a symbolic chroma matrix from notes, aligning it against an acoustic
// chroma matrix by dynamic time warping, and exposing measure<->time
// lookups derived from the warping path.
package align

import (
	"math"
	"sort"

	"github.com/schollz/scorelens/internal/model"
)

const framesPerMeasure = 10

// ChromaFrame is a 12-bin pitch-class energy distribution, L1-normalised.
type ChromaFrame [12]float64

// BuildSymbolicChroma derives a chroma matrix from notes: each measure is
// divided into framesPerMeasure frames, each frame accumulating the
// duration-weighted occupancy of every note sounding during it, then
// L1-normalised.
func BuildSymbolicChroma(notes []model.Note, firstMeasure, lastMeasure int) []ChromaFrame {
	if lastMeasure < firstMeasure {
		return nil
	}
	numMeasures := lastMeasure - firstMeasure + 1
	frames := make([]ChromaFrame, numMeasures*framesPerMeasure)

	for _, n := range notes {
		if n.IsRest() {
			continue
		}
		pc := n.Pitch.PitchClass()
		measureIdx := n.Measure - firstMeasure
		if measureIdx < 0 || measureIdx >= numMeasures {
			continue
		}
		startFrame := measureIdx*framesPerMeasure + frameOffset(n.Beat)
		endBeat := n.Beat + n.Duration
		endFrame := measureIdx*framesPerMeasure + frameOffset(endBeat)
		if endFrame > (measureIdx+1)*framesPerMeasure {
			endFrame = (measureIdx + 1) * framesPerMeasure
		}
		if endFrame <= startFrame {
			endFrame = startFrame + 1
		}
		for f := startFrame; f < endFrame && f < len(frames); f++ {
			frames[f][pc] += 1
		}
	}

	for i := range frames {
		frames[i] = normalizeL1(frames[i])
	}
	return frames
}

// frameOffset maps a beat position within a measure (assumed 4 beats) to
// a 0..framesPerMeasure frame index.
func frameOffset(beat float64) int {
	f := int(beat / 4.0 * framesPerMeasure)
	if f < 0 {
		f = 0
	}
	if f >= framesPerMeasure {
		f = framesPerMeasure - 1
	}
	return f
}

func normalizeL1(f ChromaFrame) ChromaFrame {
	sum := 0.0
	for _, v := range f {
		sum += v
	}
	if sum == 0 {
		return f
	}
	var out ChromaFrame
	for i, v := range f {
		out[i] = v / sum
	}
	return out
}

func euclidean(a, b ChromaFrame) float64 {
	sum := 0.0
	for i := 0; i < 12; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Result is a DTW alignment between a symbolic and an acoustic chroma
// sequence: the backtracked path (pairs of symbolic/acoustic frame
// indices), the cost matrix's final cell, and the derived confidence.
type Result struct {
	Path       []PathPoint
	Distance   float64
	Confidence float64
}

// PathPoint is one step of the warping path.
type PathPoint struct {
	SymbolicFrame int
	AcousticFrame int
}

const inf = math.MaxFloat64 / 2

// Align runs DTW between symbolic frames S and acoustic frames A: cost
// matrix with Euclidean per-frame distance, backtracking
// from (n,m) preferring the diagonal.
func Align(s, a []ChromaFrame) Result {
	n, m := len(s), len(a)
	if n == 0 || m == 0 {
		return Result{Distance: math.Inf(1), Confidence: 0}
	}

	d := make([][]float64, n+1)
	for i := range d {
		d[i] = make([]float64, m+1)
		for j := range d[i] {
			d[i][j] = inf
		}
	}
	d[0][0] = 0
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			cost := euclidean(s[i-1], a[j-1])
			best := d[i-1][j]
			if d[i][j-1] < best {
				best = d[i][j-1]
			}
			if d[i-1][j-1] < best {
				best = d[i-1][j-1]
			}
			d[i][j] = cost + best
		}
	}

	path := backtrack(d, n, m)
	confidence := 1 - d[n][m]/float64(n*m)
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Result{Path: path, Distance: d[n][m], Confidence: confidence}
}

// backtrack walks the cost matrix from (n,m) to (0,0), preferring the
// diagonal, else whichever of left/up is smaller.
func backtrack(d [][]float64, n, m int) []PathPoint {
	path := make([]PathPoint, 0, n+m)
	i, j := n, m
	for i > 0 && j > 0 {
		path = append(path, PathPoint{SymbolicFrame: i - 1, AcousticFrame: j - 1})
		diag, up, left := d[i-1][j-1], d[i-1][j], d[i][j-1]
		switch {
		case diag <= up && diag <= left:
			i--
			j--
		case left < up:
			j--
		default:
			i--
		}
	}
	for k, l := 0, len(path)-1; k < l; k, l = k+1, l-1 {
		path[k], path[l] = path[l], path[k]
	}
	return path
}

// Mapping exposes measure<->time lookups derived from an alignment path,
// plus manual overrides.
type Mapping struct {
	measureTime map[int]float64
	reverse     map[int]int // 0.1s-quantised seconds -> nearest measure
	confidence  float64
}

// NewMapping builds measure<->time lookups from an alignment result: the
// acoustic frame index of each symbolic frame gives that measure's time
// (frames are framesPerMeasure per measure, acoustic frame duration
// derived from frameSeconds).
func NewMapping(result Result, firstMeasure int, frameSeconds float64) *Mapping {
	mp := &Mapping{measureTime: map[int]float64{}, reverse: map[int]int{}, confidence: result.Confidence}
	for _, p := range result.Path {
		measure := firstMeasure + p.SymbolicFrame/framesPerMeasure
		t := float64(p.AcousticFrame) * frameSeconds
		if _, ok := mp.measureTime[measure]; !ok {
			mp.measureTime[measure] = t
		}
		key := int(math.Round(t / 0.1))
		if _, ok := mp.reverse[key]; !ok {
			mp.reverse[key] = measure
		}
	}
	return mp
}

// MeasureToTime returns T for measure M by linear interpolation between
// the two closest known measures.
func (mp *Mapping) MeasureToTime(measure int) float64 {
	if t, ok := mp.measureTime[measure]; ok {
		return t
	}
	known := make([]int, 0, len(mp.measureTime))
	for k := range mp.measureTime {
		known = append(known, k)
	}
	sort.Ints(known)
	if len(known) == 0 {
		return 0
	}
	if measure < known[0] {
		return mp.measureTime[known[0]]
	}
	if measure > known[len(known)-1] {
		return mp.measureTime[known[len(known)-1]]
	}
	for i := 0; i < len(known)-1; i++ {
		lo, hi := known[i], known[i+1]
		if measure >= lo && measure <= hi {
			if hi == lo {
				return mp.measureTime[lo]
			}
			frac := float64(measure-lo) / float64(hi-lo)
			return mp.measureTime[lo] + frac*(mp.measureTime[hi]-mp.measureTime[lo])
		}
	}
	return mp.measureTime[known[len(known)-1]]
}

// TimeToMeasure returns M for time T by nearest-key lookup on a
// 0.1-second-quantised reverse map.
func (mp *Mapping) TimeToMeasure(t float64) int {
	key := int(math.Round(t / 0.1))
	if m, ok := mp.reverse[key]; ok {
		return m
	}
	bestKey, bestDist := 0, math.MaxInt64
	found := false
	for k := range mp.reverse {
		d := k - key
		if d < 0 {
			d = -d
		}
		if !found || d < bestDist {
			bestDist = d
			bestKey = k
			found = true
		}
	}
	if !found {
		return 0
	}
	return mp.reverse[bestKey]
}

// AdjustAlignment manually overwrites both directions of the mapping and
// reduces confidence by 0.05, floored at 0.5.
func (mp *Mapping) AdjustAlignment(measure int, t float64) {
	mp.measureTime[measure] = t
	key := int(math.Round(t / 0.1))
	mp.reverse[key] = measure
	mp.confidence -= 0.05
	if mp.confidence < 0.5 {
		mp.confidence = 0.5
	}
}

// Confidence returns the mapping's current alignment confidence.
func (mp *Mapping) Confidence() float64 { return mp.confidence }

// Export assembles the public AlignmentResult contract from a DTW run and
// this mapping's current lookup state (including any manual adjustments).
func (mp *Mapping) Export(r Result) model.AlignmentResult {
	path := make([][2]int, len(r.Path))
	for i, p := range r.Path {
		path[i] = [2]int{p.SymbolicFrame, p.AcousticFrame}
	}
	m2t := make(map[int]float64, len(mp.measureTime))
	for m, t := range mp.measureTime {
		m2t[m] = t
	}
	t2m := make(map[float64]int, len(mp.reverse))
	for key, m := range mp.reverse {
		t2m[float64(key)*0.1] = m
	}
	return model.AlignmentResult{
		Path:          path,
		MeasureToTime: m2t,
		TimeToMeasure: t2m,
		Confidence:    mp.confidence,
		Distance:      r.Distance,
	}
}
