// Package midiimport builds a model.ParsedScore from a Standard MIDI
// File, an ingestion path alongside the external score decoder:
// gitlab.com/gomidi/midi/v2/smf does the file parsing.
package midiimport

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/pitch"
)

const defaultTicksPerQuarter = 960

// rawEvent is one track event resolved to an absolute tick, accumulated
// from the file's delta-time encoding (smf.Track.Add takes a delta, so
// reading walks the same way in reverse).
type rawEvent struct {
	absTick uint32
	track   int
	message smf.Message
}

type noteStart struct {
	tick     uint32
	velocity uint8
}

// Import parses a Standard MIDI File into a ParsedScore. It assumes a
// single tempo, time signature, and key signature for the whole piece
// (the first MetaTempo/MetaTimeSig/MetaKeySig events win); ParsedScore
// has no slot for mid-piece changes, so later ones are ignored.
func Import(path string) (model.ParsedScore, error) {
	data, err := smf.ReadFile(path)
	if err != nil {
		return model.ParsedScore{}, fmt.Errorf("midiimport: read %s: %w", path, err)
	}

	ticksPerQuarter := defaultTicksPerQuarter
	if mt, ok := data.TimeFormat.(smf.MetricTicks); ok {
		ticksPerQuarter = int(mt.Ticks4th())
	}

	events := flatten(data.Tracks)

	tempo := 120.0
	numerator, denominator := uint8(4), uint8(4)
	fifths, mode := 0, model.Major
	haveTempo, haveTimeSig, haveKeySig := false, false, false

	for _, ev := range events {
		var bpm float64
		var num, denom, root, accidentals uint8
		var isMajor, isFlat bool
		switch {
		case !haveTempo && ev.message.GetMetaTempo(&bpm):
			tempo = bpm
			haveTempo = true
		case !haveTimeSig && ev.message.GetMetaMeter(&num, &denom):
			numerator, denominator = num, denom
			haveTimeSig = true
		case !haveKeySig && ev.message.GetMetaKeySig(&root, &accidentals, &isMajor, &isFlat):
			fifths = int(accidentals)
			if isFlat {
				fifths = -fifths
			}
			if !isMajor {
				mode = model.Minor
			}
			haveKeySig = true
		}
	}

	ticksPerBeat := float64(ticksPerQuarter) * 4 / float64(denominator)
	beatsPerMeasure := float64(numerator)

	notes, maxMeasure := extractNotes(events, ticksPerBeat, beatsPerMeasure)

	measures := make([]model.MeasureInfo, maxMeasure)
	for i := range measures {
		measures[i] = model.MeasureInfo{Number: i + 1}
	}

	return model.ParsedScore{
		Measures:      measures,
		Notes:         notes,
		KeySignature:  model.KeySignature{Fifths: fifths, Mode: mode},
		TimeSignature: model.TimeSignature{Beats: int(numerator), BeatType: int(denominator)},
		Tempo:         tempo,
	}, nil
}

// flatten resolves every track's delta-encoded events into absolute ticks
// and merges all tracks into one time-ordered stream.
func flatten(tracks []smf.Track) []rawEvent {
	var events []rawEvent
	for trackNo, tr := range tracks {
		var abs uint32
		for _, te := range tr {
			abs += te.Delta
			events = append(events, rawEvent{absTick: abs, track: trackNo, message: te.Message})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].absTick < events[j].absTick })
	return events
}

// extractNotes pairs note-on/note-off events per (channel, key) into
// model.Note values, converting tick positions to 1-based measure + beat
// offset under a single fixed time signature.
func extractNotes(events []rawEvent, ticksPerBeat, beatsPerMeasure float64) ([]model.Note, int) {
	type voiceKey struct {
		channel, key uint8
	}
	active := make(map[voiceKey]noteStart)
	var notes []model.Note
	maxMeasure := 1

	emit := func(vk voiceKey, endTick uint32) {
		start, ok := active[vk]
		if !ok {
			return
		}
		delete(active, vk)

		startBeats := float64(start.tick) / ticksPerBeat
		measureIdx := int(startBeats / beatsPerMeasure)
		beatInMeasure := startBeats - float64(measureIdx)*beatsPerMeasure
		durBeats := float64(endTick-start.tick) / ticksPerBeat
		if durBeats <= 0 {
			durBeats = 0.25
		}

		spelled := pitch.PitchFromMidi(int(vk.key))
		dyn := dynFromVelocity(start.velocity)
		notes = append(notes, model.Note{
			Pitch:    &spelled,
			Duration: durBeats,
			Measure:  measureIdx + 1,
			Beat:     beatInMeasure,
			Voice:    int(vk.channel),
			Dynamics: &dyn,
		})
		if measureIdx+1 > maxMeasure {
			maxMeasure = measureIdx + 1
		}
	}

	for _, ev := range events {
		var channel, key, velocity uint8
		switch {
		case ev.message.GetNoteOn(&channel, &key, &velocity):
			if velocity == 0 {
				emit(voiceKey{channel, key}, ev.absTick)
				continue
			}
			active[voiceKey{channel, key}] = noteStart{tick: ev.absTick, velocity: velocity}
		case ev.message.GetNoteOff(&channel, &key, &velocity):
			emit(voiceKey{channel, key}, ev.absTick)
		}
	}

	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].Measure != notes[j].Measure {
			return notes[i].Measure < notes[j].Measure
		}
		return notes[i].Beat < notes[j].Beat
	})
	return notes, maxMeasure
}

func dynFromVelocity(v uint8) model.DynMark {
	switch {
	case v <= 20:
		return model.Pianissimo
	case v <= 41:
		return model.Piano
	case v <= 62:
		return model.MezzoPiano
	case v <= 83:
		return model.MezzoForte
	case v <= 104:
		return model.Forte
	default:
		return model.Fortissimo
	}
}
