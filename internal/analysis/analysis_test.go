package analysis

import (
	"testing"

	"github.com/schollz/scorelens/internal/config"
	"github.com/schollz/scorelens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func note(measure int, step model.Step, beat, dur float64) model.Note {
	return model.Note{Pitch: &model.PitchName{Step: step, Octave: 4}, Measure: measure, Beat: beat, Duration: dur}
}

func measures(n int) []model.MeasureInfo {
	out := make([]model.MeasureInfo, n)
	for i := range out {
		out[i] = model.MeasureInfo{Number: i + 1}
	}
	return out
}

func TestAnalyzeCompleteInsufficientData(t *testing.T) {
	score := model.ParsedScore{Measures: measures(1), TimeSignature: model.TimeSignature{Beats: 4, BeatType: 4}}
	fa, err := AnalyzeComplete(score, config.Default())
	require.NoError(t, err)
	assert.Equal(t, model.FormOnePart, fa.FormAnalysis.FormType)
	assert.Equal(t, 0.5, fa.FormAnalysis.Confidence)
	assert.Empty(t, fa.Motives)
}

func TestAnalyzeCompleteInvalidScoreIsRejected(t *testing.T) {
	score := model.ParsedScore{
		Measures: measures(2),
		Notes:    []model.Note{note(5, model.StepC, 0, 1)}, // measure 5 not in Measures[]
	}
	_, err := AnalyzeComplete(score, config.Default())
	assert.Error(t, err)
}

// A four-measure I-IV-V-I progression in C major with bass C-F-G-C and
// soprano resting on the tonic should produce a PAC cadence at measure 4.
func TestAnalyzeCompleteDetectsAuthenticCadence(t *testing.T) {
	score := model.ParsedScore{
		Measures:      measures(4),
		KeySignature:  model.KeySignature{Fifths: 0, Mode: model.Major},
		TimeSignature: model.TimeSignature{Beats: 4, BeatType: 4},
		Notes: []model.Note{
			note(1, model.StepC, 0, 4),
			note(2, model.StepF, 0, 4),
			note(3, model.StepG, 0, 4),
			note(4, model.StepC, 0, 4),
		},
	}
	fa, err := AnalyzeComplete(score, config.Default())
	require.NoError(t, err)
	require.NotEmpty(t, fa.Cadences)
	last := fa.Cadences[len(fa.Cadences)-1]
	assert.Equal(t, model.CadencePAC, last.Type)
	assert.Equal(t, 4, last.Measure)
}

func TestAnalyzeCompleteDeterministic(t *testing.T) {
	score := model.ParsedScore{
		Measures:      measures(4),
		KeySignature:  model.KeySignature{Fifths: 0, Mode: model.Major},
		TimeSignature: model.TimeSignature{Beats: 4, BeatType: 4},
		Notes: []model.Note{
			note(1, model.StepC, 0, 4),
			note(2, model.StepF, 0, 4),
			note(3, model.StepG, 0, 4),
			note(4, model.StepC, 0, 4),
		},
	}
	a, err := AnalyzeComplete(score, config.Default())
	require.NoError(t, err)
	b, err := AnalyzeComplete(score, config.Default())
	require.NoError(t, err)
	assert.Equal(t, a.FormAnalysis, b.FormAnalysis)
	assert.Equal(t, a.Cadences, b.Cadences)
	assert.Equal(t, len(a.Tree.Nodes), len(b.Tree.Nodes))
}

func TestSessionRecommendAndRecordSelection(t *testing.T) {
	score := model.ParsedScore{
		Measures:      measures(4),
		KeySignature:  model.KeySignature{Fifths: 0, Mode: model.Major},
		TimeSignature: model.TimeSignature{Beats: 4, BeatType: 4},
		Notes: []model.Note{
			note(1, model.StepC, 0, 4),
			note(2, model.StepF, 0, 4),
			note(3, model.StepG, 0, 4),
			note(4, model.StepC, 0, 4),
		},
	}
	fa, err := AnalyzeComplete(score, config.Default())
	require.NoError(t, err)

	sess := NewSession(fa, config.Default(), 7)
	schemes, err := sess.Recommend(fa.Tree.RootID, nil, 0)
	require.NoError(t, err)
	require.NotEmpty(t, schemes)

	require.NoError(t, sess.RecordSelection(fa.Tree.RootID, "accept", schemes[0], 0))
	assert.Equal(t, 1, sess.Preference.ExampleCount())
}
