// Package model holds the shared data contracts: the symbolic score the
// analyzer consumes and the structural/visual artifacts it produces.
// Types here carry no behavior beyond small accessors; the detectors in
// the sibling packages own the logic.
package model

// Accidental is a pitch alteration relative to the natural step.
type Accidental int

const (
	DoubleFlat Accidental = iota - 2
	Flat
	Natural
	Sharp
	DoubleSharp
)

// Step is a diatonic letter name, C through B.
type Step int

const (
	StepC Step = iota
	StepD
	StepE
	StepF
	StepG
	StepA
	StepB
)

// stepSemitones gives the natural (no-accidental) pitch class of each step.
var stepSemitones = [7]int{0, 2, 4, 5, 7, 9, 11}

// PitchName is a spelled pitch: step + accidental + octave (scientific,
// middle C = octave 4).
type PitchName struct {
	Step       Step       `json:"step"`
	Accidental Accidental `json:"accidental"`
	Octave     int        `json:"octave"`
}

// PitchClass returns the 0..11 chromatic pitch class, wrapping negative
// results into range.
func (p PitchName) PitchClass() int {
	pc := (stepSemitones[p.Step] + int(p.Accidental)) % 12
	if pc < 0 {
		pc += 12
	}
	return pc
}

// Mode is the scale quality of a key signature.
type Mode int

const (
	Major Mode = iota
	Minor
)

// DynMark is a dynamic marking attached to a note.
type DynMark int

const (
	Pianissimo DynMark = iota
	Piano
	MezzoPiano
	MezzoForte
	Forte
	Fortissimo
)

// Note is one symbolic event. A nil Pitch represents a rest.
type Note struct {
	Pitch    *PitchName `json:"pitch,omitempty"`
	Duration float64    `json:"duration"` // in beats
	Measure  int        `json:"measure"`  // 1-based
	Beat     float64    `json:"beat"`     // beats from measure start
	Voice    int        `json:"voice"`
	Dynamics *DynMark   `json:"dynamics,omitempty"`
}

// IsRest reports whether this note carries no pitch.
func (n Note) IsRest() bool { return n.Pitch == nil }

// MeasureInfo describes one measure's position in the stream.
type MeasureInfo struct {
	Number int `json:"number"`
}

// KeySignature follows circle-of-fifths notation: fifths in [-7,7],
// negative = flats, positive = sharps.
type KeySignature struct {
	Fifths int  `json:"fifths"`
	Mode   Mode `json:"mode"`
}

// TimeSignature is a simple beats/beatType pair (e.g. 4/4 -> {4,4}).
type TimeSignature struct {
	Beats    int `json:"beats"`
	BeatType int `json:"beatType"`
}

// ParsedScore is the input contract from the (out-of-scope) score decoder.
type ParsedScore struct {
	Measures      []MeasureInfo `json:"measures"`
	Notes         []Note        `json:"notes"`
	KeySignature  KeySignature  `json:"keySignature"`
	TimeSignature TimeSignature `json:"timeSignature"`
	Tempo         float64       `json:"tempo"` // BPM, default 120
	Parts         []string      `json:"parts"`
}

// AudioFeatures is the input contract from the (out-of-scope) audio decoder.
// All per-frame slices are equal length; chroma rows have 12 bins summing to
// approximately 1.
type AudioFeatures struct {
	RMS              []float64   `json:"rms"`
	SpectralCentroid []float64   `json:"spectralCentroid"`
	ZCR              []float64   `json:"zcr"`
	MFCC             [][]float64 `json:"mfcc"`
	Chroma           [][]float64 `json:"chroma"`
	Timestamps       []float64   `json:"timestamps"`
}
