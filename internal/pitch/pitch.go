// Package pitch implements the pitch and key utilities:
// pitch-class encoding, scale-degree arithmetic, tonic resolution from a
// fifths+mode key signature, and MIDI conversion.
package pitch

import "github.com/schollz/scorelens/internal/model"

// sharpTonics gives the major tonic (step, accidental) for each fifths
// value 0..7 (C up through C#).
var sharpTonics = []model.PitchName{
	{Step: model.StepC, Accidental: model.Natural},
	{Step: model.StepG, Accidental: model.Natural},
	{Step: model.StepD, Accidental: model.Natural},
	{Step: model.StepA, Accidental: model.Natural},
	{Step: model.StepE, Accidental: model.Natural},
	{Step: model.StepB, Accidental: model.Natural},
	{Step: model.StepF, Accidental: model.Sharp},
	{Step: model.StepC, Accidental: model.Sharp},
}

// flatTonics gives the major tonic for each fifths value 0..-7 (C down
// through Cb), indexed by absolute value.
var flatTonics = []model.PitchName{
	{Step: model.StepC, Accidental: model.Natural},
	{Step: model.StepF, Accidental: model.Natural},
	{Step: model.StepB, Accidental: model.Flat},
	{Step: model.StepE, Accidental: model.Flat},
	{Step: model.StepA, Accidental: model.Flat},
	{Step: model.StepD, Accidental: model.Flat},
	{Step: model.StepG, Accidental: model.Flat},
	{Step: model.StepC, Accidental: model.Flat},
}

// shortSpellings lists, per pitch class, the preferred short spelling used
// when resolving a minor tonic by semitone shift.
var shortSpellings = []model.PitchName{
	{Step: model.StepC, Accidental: model.Natural},
	{Step: model.StepD, Accidental: model.Flat},
	{Step: model.StepD, Accidental: model.Natural},
	{Step: model.StepE, Accidental: model.Flat},
	{Step: model.StepE, Accidental: model.Natural},
	{Step: model.StepF, Accidental: model.Natural},
	{Step: model.StepF, Accidental: model.Sharp},
	{Step: model.StepG, Accidental: model.Natural},
	{Step: model.StepA, Accidental: model.Flat},
	{Step: model.StepA, Accidental: model.Natural},
	{Step: model.StepB, Accidental: model.Flat},
	{Step: model.StepB, Accidental: model.Natural},
}

// TonicFromKey resolves the tonic pitch class from a key signature. Fifths
// is clamped to [-7,7]. Minor keys are resolved by taking the relative
// major's tonic and shifting down a minor third (9 semitones mod 12),
// then mapping to the short spelling table.
func TonicFromKey(fifths int, mode model.Mode) model.PitchName {
	if fifths > 7 {
		fifths = 7
	}
	if fifths < -7 {
		fifths = -7
	}

	var majorTonic model.PitchName
	if fifths >= 0 {
		majorTonic = sharpTonics[fifths]
	} else {
		majorTonic = flatTonics[-fifths]
	}

	if mode == model.Major {
		return majorTonic
	}

	minorPC := (majorTonic.PitchClass() + 9) % 12
	return shortSpellings[minorPC]
}

// scaleDegreeBySemitone maps a semitone interval above the tonic to a
// diatonic scale degree 0..6, or -1 if the interval isn't a diatonic step.
var scaleDegreeBySemitone = map[int]int{
	0: 0, 2: 1, 4: 2, 5: 3, 7: 4, 9: 5, 11: 6,
}

// ScaleDegree returns the 0-based diatonic scale degree of pitch relative
// to tonic, or -1 if the semitone distance isn't one of the seven diatonic
// steps. Mode is accepted for interface symmetry but the lookup table
// already encodes the major-scale degrees used for both modes' cadence
// analysis.
func ScaleDegree(p model.PitchName, tonic model.PitchName, mode model.Mode) int {
	interval := ((p.PitchClass() - tonic.PitchClass()) % 12 + 12) % 12
	if deg, ok := scaleDegreeBySemitone[interval]; ok {
		return deg
	}
	return -1
}

// PitchToMidi converts a spelled pitch to a MIDI note number. Octave 4 is
// the MIDI-60 octave (C4 = 60).
func PitchToMidi(p *model.PitchName) int {
	if p == nil {
		return 60
	}
	return p.PitchClass() + (p.Octave+1)*12
}

// PitchFromMidi is the inverse of PitchToMidi: it spells a MIDI note number
// using the same short-spelling table TonicFromKey uses to resolve minor
// tonics. MIDI carries no key context, so every import uses this one fixed
// spelling rather than re-deriving one per key.
func PitchFromMidi(midiNote int) model.PitchName {
	pc := ((midiNote % 12) + 12) % 12
	octave := midiNote/12 - 1
	p := shortSpellings[pc]
	p.Octave = octave
	return p
}
