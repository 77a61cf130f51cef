// Package chunked implements the chunked driver:
// deciding whether a note stream is large enough to require
// partitioning, running the per-chunk leaf detectors (motive,
// sub-phrase) over each partition with overlap-aware merging and
// per-chunk failure recovery, while leaving the globally-scoped
// detectors (cadence, phrase, period, form, mode) to run once over the
// whole stream.
package chunked

import (
	"fmt"

	"github.com/schollz/scorelens/internal/logx"
	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/motive"
)

// Range is a chunk boundary by measure number, inclusive on both ends.
type Range struct {
	Start int
	End   int
}

// ShouldChunk reports whether a stream is large enough to require
// partitioning: |notes| >= 2*maxNotesPerChunk or |measures| >=
// 2*maxMeasuresPerChunk.
func ShouldChunk(numNotes, numMeasures, maxNotesPerChunk, maxMeasuresPerChunk int) bool {
	return numNotes >= 2*maxNotesPerChunk || numMeasures >= 2*maxMeasuresPerChunk
}

// Partition splits [firstMeasure, lastMeasure] into overlapping chunks of
// at most maxMeasuresPerChunk measures, advancing by stride =
// maxMeasuresPerChunk - overlapMeasures.
func Partition(firstMeasure, lastMeasure, maxMeasuresPerChunk, overlapMeasures int) []Range {
	stride := maxMeasuresPerChunk - overlapMeasures
	if stride < 1 {
		stride = 1
	}
	var chunks []Range
	for start := firstMeasure; start <= lastMeasure; start += stride {
		end := start + maxMeasuresPerChunk - 1
		if end > lastMeasure {
			end = lastMeasure
		}
		chunks = append(chunks, Range{Start: start, End: end})
		if end == lastMeasure {
			break
		}
	}
	return chunks
}

func notesInRange(notes []model.Note, r Range) []model.Note {
	out := make([]model.Note, 0)
	for _, n := range notes {
		if n.Measure >= r.Start && n.Measure <= r.End {
			out = append(out, n)
		}
	}
	return out
}

// DetectMotivesAndSubPhrases runs motive and sub-phrase detection on
// each chunk independently (recovering and logging per-chunk failures
// instead of aborting), then merges results by dropping items from a
// non-first chunk whose start measure falls in the first half of its
// overlap with the preceding chunk.
func DetectMotivesAndSubPhrases(notes []model.Note, ts model.TimeSignature, chunks []Range, overlapMeasures int) ([]model.Motive, []model.SubPhrase) {
	var motives []model.Motive
	var subphrases []model.SubPhrase

	for i, chunk := range chunks {
		chunkNotes := notesInRange(notes, chunk)
		cm, cs, err := detectChunk(chunkNotes, ts)
		if err != nil {
			logx.Warn("chunk leaf detection failed, skipping chunk", logx.Fields{
				"chunkStart": chunk.Start, "chunkEnd": chunk.End, "error": err.Error(),
			})
			continue
		}

		// Each measure belongs to exactly one chunk's contribution: a
		// chunk yields from its overlap cutoff with the preceding chunk
		// (dropping the first half, already covered) up to, but not
		// including, the next chunk's cutoff (its second half is ceded
		// to that chunk).
		visibleStart := chunk.Start
		if i > 0 {
			visibleStart = chunk.Start + overlapMeasures/2
		}
		visibleEnd := chunk.End
		if i+1 < len(chunks) {
			visibleEnd = chunks[i+1].Start + overlapMeasures/2 - 1
		}

		cm = keepInRange(cm, visibleStart, visibleEnd, func(m model.Motive) int { return m.Measure })
		cs = keepInRange(cs, visibleStart, visibleEnd, func(s model.SubPhrase) int { return s.StartMeasure })
		motives = append(motives, cm...)
		subphrases = append(subphrases, cs...)
	}

	for i := range motives {
		motives[i].Index = i
	}
	for i := range subphrases {
		subphrases[i].Index = i
	}
	return motives, subphrases
}

// keepInRange retains only items whose measure position falls within
// [start,end], so adjacent chunks partition the overlap without
// duplicating or dropping any measure.
func keepInRange[T any](items []T, start, end int, measureOf func(T) int) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		m := measureOf(it)
		if m >= start && m <= end {
			out = append(out, it)
		}
	}
	return out
}

// detectChunk recovers from a panicking leaf detector so one malformed
// chunk cannot abort the whole stream.
func detectChunk(notes []model.Note, ts model.TimeSignature) (ms []model.Motive, subs []model.SubPhrase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chunk detector panic: %v", r)
		}
	}()
	ms = motive.DetectMotives(notes, ts)
	subs = motive.DetectSubPhrases(notes, ms)
	return ms, subs, nil
}
