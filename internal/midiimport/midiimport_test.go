package midiimport

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func TestFlattenAccumulatesDeltaToAbsoluteTicks(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(480, midi.NoteOff(0, 60))

	events := flatten([]smf.Track{tr})
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].absTick != 0 || events[1].absTick != 480 {
		t.Errorf("got ticks %d,%d, want 0,480", events[0].absTick, events[1].absTick)
	}
}

func TestExtractNotesPairsOnOffIntoMeasureBeat(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 60, 100))
	tr.Add(960, midi.NoteOff(0, 60))
	events := flatten([]smf.Track{tr})

	notes, maxMeasure := extractNotes(events, 960, 4)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	n := notes[0]
	if n.Measure != 1 {
		t.Errorf("got measure %d, want 1", n.Measure)
	}
	if n.Beat != 0 {
		t.Errorf("got beat %v, want 0", n.Beat)
	}
	if n.Duration != 1.0 {
		t.Errorf("got duration %v, want 1.0", n.Duration)
	}
	if maxMeasure != 1 {
		t.Errorf("got maxMeasure %d, want 1", maxMeasure)
	}
	if n.Pitch == nil {
		t.Errorf("got rest, want a spelled pitch for MIDI 60")
	}
}

func TestExtractNotesTreatsZeroVelocityNoteOnAsNoteOff(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOn(0, 64, 90))
	tr.Add(480, midi.NoteOn(0, 64, 0))
	events := flatten([]smf.Track{tr})

	notes, _ := extractNotes(events, 960, 4)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Duration != 0.5 {
		t.Errorf("got duration %v, want 0.5", notes[0].Duration)
	}
}

func TestExtractNotesAdvancesMeasureAcrossBoundary(t *testing.T) {
	var tr smf.Track
	tr.Add(4800, midi.NoteOn(0, 60, 80)) // beat 5.0 under 4/4 at 960 ticks/beat
	tr.Add(200, midi.NoteOff(0, 60))
	events := flatten([]smf.Track{tr})

	notes, maxMeasure := extractNotes(events, 960, 4)
	if len(notes) != 1 {
		t.Fatalf("got %d notes, want 1", len(notes))
	}
	if notes[0].Measure != 2 {
		t.Errorf("got measure %d, want 2", notes[0].Measure)
	}
	if notes[0].Beat != 1.0 {
		t.Errorf("got beat %v, want 1.0", notes[0].Beat)
	}
	if maxMeasure != 2 {
		t.Errorf("got maxMeasure %d, want 2", maxMeasure)
	}
}

func TestDynFromVelocityBuckets(t *testing.T) {
	cases := []struct {
		v    uint8
		want string
	}{
		{0, "pp"}, {30, "p"}, {50, "mp"}, {70, "mf"}, {90, "f"}, {120, "ff"},
	}
	names := map[int]string{0: "pp", 1: "p", 2: "mp", 3: "mf", 4: "f", 5: "ff"}
	for _, c := range cases {
		got := int(dynFromVelocity(c.v))
		if names[got] != c.want {
			t.Errorf("velocity %d: got %s, want %s", c.v, names[got], c.want)
		}
	}
}

func TestExtractNotesDropsUnmatchedNoteOff(t *testing.T) {
	var tr smf.Track
	tr.Add(0, midi.NoteOff(0, 60))
	events := flatten([]smf.Track{tr})

	notes, maxMeasure := extractNotes(events, 960, 4)
	if len(notes) != 0 {
		t.Errorf("got %d notes, want 0 for an unmatched note-off", len(notes))
	}
	if maxMeasure != 1 {
		t.Errorf("got maxMeasure %d, want default of 1", maxMeasure)
	}
}
