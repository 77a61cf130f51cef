package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/schollz/scorelens/internal/analysis"
	"github.com/schollz/scorelens/internal/emotion"
	"github.com/schollz/scorelens/internal/storage"
)

// buildSessionFromState rebuilds an analysis.Session from a saved
// PersistedState: the tree and structure detectors come back exactly as
// saved, while the preference manager only gets its counts and history
// restored (see preference.Manager.SeedCounts) and starts re-learning
// weights from scratch.
func buildSessionFromState(statePath string, seed int64) (*analysis.Session, error) {
	state, err := storage.Load(statePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	tree := storage.RebuildTree(state.Structure)
	fa := analysis.FullAnalysis{
		Tree:         tree,
		Cadences:     state.Structure.Cadences,
		Phrases:      state.Structure.Phrases,
		Periods:      state.Structure.Periods,
		FormAnalysis: state.Structure.FormAnalysis,
	}

	cfg, err := loadConfig("")
	if err != nil {
		return nil, err
	}
	sess := analysis.NewSession(fa, cfg, seed)
	sess.Preference.SeedCounts(state.Preferences.LearningHistory, state.Preferences.AcceptCount,
		state.Preferences.ModifyCount, state.Preferences.RejectCount)
	return sess, nil
}

func newRecommendCmd(configPath *string) *cobra.Command {
	var statePath, node, out string
	var seed int64
	var audioRMS, audioCentroid float64
	var withAudio bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend visual schemes for a node of a previously saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			sess, err := buildSessionFromState(statePath, seed)
			if err != nil {
				return err
			}

			var audio *emotion.AudioScalars
			if withAudio {
				audio = &emotion.AudioScalars{RMS: audioRMS, SpectralCentroid: audioCentroid}
			}

			schemes, err := sess.Recommend(node, audio, float64(time.Now().Unix())/60)
			if err != nil {
				return fmt.Errorf("recommend: %w", err)
			}
			return writeJSON(out, schemes)
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "path to a gzip persisted-state file produced by analyze --state-out (required)")
	cmd.Flags().StringVar(&node, "node", "", "structure node id to recommend for (required)")
	cmd.Flags().StringVar(&out, "out", "-", "output path, or - for stdout")
	cmd.Flags().Int64Var(&seed, "seed", 0, "PRNG seed for scheme generation (default: time-based)")
	cmd.Flags().BoolVar(&withAudio, "with-audio", false, "override emotion features with measured audio scalars")
	cmd.Flags().Float64Var(&audioRMS, "audio-rms", 0, "measured RMS loudness, 0..1 (requires --with-audio)")
	cmd.Flags().Float64Var(&audioCentroid, "audio-centroid", 0, "measured spectral centroid in Hz (requires --with-audio)")
	cmd.MarkFlagRequired("state")
	cmd.MarkFlagRequired("node")
	return cmd
}
