package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/schollz/scorelens/internal/align"
	"github.com/schollz/scorelens/internal/model"
)

func readAudioFeatures(path string) (model.AudioFeatures, error) {
	var af model.AudioFeatures
	data, err := os.ReadFile(path)
	if err != nil {
		return af, fmt.Errorf("read audio features: %w", err)
	}
	if err := json.Unmarshal(data, &af); err != nil {
		return af, fmt.Errorf("parse audio features: %w", err)
	}
	return af, nil
}

func chromaFrames(rows [][]float64) []align.ChromaFrame {
	out := make([]align.ChromaFrame, len(rows))
	for i, row := range rows {
		var f align.ChromaFrame
		for b := 0; b < 12 && b < len(row); b++ {
			f[b] = row[b]
		}
		out[i] = f
	}
	return out
}

func newAlignCmd() *cobra.Command {
	var scorePath, audioPath, out string

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Align a parsed score to an audio recording's chroma frames via DTW",
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := readScore(scorePath)
			if err != nil {
				return err
			}
			audio, err := readAudioFeatures(audioPath)
			if err != nil {
				return err
			}
			if len(audio.Timestamps) < 2 {
				return fmt.Errorf("align: audio features need at least 2 timestamped frames")
			}
			if len(score.Measures) == 0 {
				return fmt.Errorf("align: score has no measures")
			}

			first, last := score.Measures[0].Number, score.Measures[0].Number
			for _, m := range score.Measures {
				if m.Number < first {
					first = m.Number
				}
				if m.Number > last {
					last = m.Number
				}
			}

			symbolic := align.BuildSymbolicChroma(score.Notes, first, last)
			acoustic := chromaFrames(audio.Chroma)
			result := align.Align(symbolic, acoustic)

			frameSeconds := audio.Timestamps[1] - audio.Timestamps[0]
			mapping := align.NewMapping(result, first, frameSeconds)
			exported := mapping.Export(result)
			for m := first; m <= last; m++ {
				if _, ok := exported.MeasureToTime[m]; !ok {
					exported.MeasureToTime[m] = mapping.MeasureToTime(m)
				}
			}
			return writeJSON(out, exported)
		},
	}

	cmd.Flags().StringVar(&scorePath, "score", "", "path to a ParsedScore JSON file (required)")
	cmd.Flags().StringVar(&audioPath, "audio", "", "path to an AudioFeatures JSON file (required)")
	cmd.Flags().StringVar(&out, "out", "-", "output path, or - for stdout")
	cmd.MarkFlagRequired("score")
	cmd.MarkFlagRequired("audio")
	return cmd
}
