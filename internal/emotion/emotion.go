// Package emotion implements the emotion feature extractor:
// deriving a node's {tempo, dynamics, tension} triple from its
// structural features, with optional audio-derived overrides.
package emotion

import (
	"github.com/schollz/scorelens/internal/model"
)

// Durations carries the duration-per-child ratio used for the tempo
// heuristic: children.duration is children-count / span-in-measures, a
// proxy for event density the node's own StructureNode doesn't otherwise
// expose.
type Durations struct {
	ChildCount   int
	SpanMeasures int
}

func (d Durations) ratio() float64 {
	if d.SpanMeasures <= 0 {
		return 0
	}
	return float64(d.ChildCount) / float64(d.SpanMeasures)
}

// dynamicsDefault is the fixed per-type dynamics table.
func dynamicsDefault(t model.StructureType) string {
	switch t {
	case model.TypeMotive, model.TypeSubPhrase:
		return "soft"
	case model.TypePhrase, model.TypePeriod:
		return "moderate"
	default:
		return "strong"
	}
}

// Extract derives a node's emotion features from its type, features, and
// children density. audio, if non-nil, provides RMS and
// spectral-centroid scalars that override the node-derived dynamics and
// tension.
func Extract(node model.StructureNode, d Durations, audio *AudioScalars) model.EmotionFeatures {
	ef := model.EmotionFeatures{
		Tempo:    tempoFor(d),
		Dynamics: dynamicsDefault(node.Type),
		Tension:  tensionFor(node),
	}

	if audio != nil {
		if audio.RMS > 0.7 {
			ef.Dynamics = "strong"
		} else if audio.RMS < 0.3 {
			ef.Dynamics = "soft"
		}
		if audio.SpectralCentroid > 3000 {
			ef.Tension = "tense"
		} else if audio.SpectralCentroid < 1000 {
			ef.Tension = "relaxed"
		}
	}

	return ef
}

// AudioScalars is the pair of per-node audio-feature scalars the
// extractor consults: the mean RMS and spectral centroid across the node's time
// span (the caller computes these from the AudioFeatures arrays over the
// node's aligned measure range).
type AudioScalars struct {
	RMS              float64
	SpectralCentroid float64
}

func tempoFor(d Durations) string {
	ratio := d.ratio()
	switch {
	case ratio > 2:
		return "fast"
	case ratio < 0.5:
		return "slow"
	default:
		return "moderate"
	}
}

func tensionFor(node model.StructureNode) string {
	c := node.Features.Cadence
	closure := node.Features.Closure
	switch {
	case c != nil && c.Type == model.CadencePAC:
		return "relaxed"
	case closure != nil && *closure == model.ClosureClosed:
		return "relaxed"
	case c != nil && (c.Type == model.CadenceHalf || c.Type == model.CadenceDeceptive):
		return "tense"
	case closure != nil && *closure == model.ClosureOpen:
		return "tense"
	default:
		return "neutral"
	}
}
