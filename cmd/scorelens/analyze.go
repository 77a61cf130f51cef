package main

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/schollz/scorelens/internal/analysis"
	"github.com/schollz/scorelens/internal/config"
	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/preference"
	"github.com/schollz/scorelens/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func readScore(path string) (model.ParsedScore, error) {
	var score model.ParsedScore
	data, err := os.ReadFile(path)
	if err != nil {
		return score, fmt.Errorf("read score: %w", err)
	}
	if err := json.Unmarshal(data, &score); err != nil {
		return score, fmt.Errorf("parse score: %w", err)
	}
	return score, nil
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var in, out, stateOut, sessionID string
	var chunked bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run structural analysis over a parsed score JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			score, err := readScore(in)
			if err != nil {
				return err
			}

			var fa analysis.FullAnalysis
			if chunked {
				fa, err = analysis.AnalyzeCompleteChunked(score, cfg)
			} else {
				fa, err = analysis.AnalyzeComplete(score, cfg)
			}
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
			if err := writeJSON(out, fa); err != nil {
				return err
			}

			if stateOut == "" {
				return nil
			}
			if sessionID == "" {
				sessionID = fmt.Sprintf("cli-%d", time.Now().UnixNano())
			}
			state := storage.BuildState(sessionID, float64(time.Now().Unix()), score, nil, nil,
				fa.Tree, fa.FormAnalysis, fa.Cadences, fa.Phrases, fa.Periods,
				map[string]model.VisualScheme{}, preference.NewManager())
			if err := storage.Save(stateOut, state); err != nil {
				return fmt.Errorf("analyze: save state: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "path to a ParsedScore JSON file (required)")
	cmd.Flags().StringVar(&out, "out", "-", "output path, or - for stdout")
	cmd.Flags().StringVar(&stateOut, "state-out", "", "also save a gzip persisted-state snapshot here for recommend/record")
	cmd.Flags().StringVar(&sessionID, "session-id", "", "session id to stamp into the saved state (default: generated)")
	cmd.Flags().BoolVar(&chunked, "chunked", false, "use the chunked driver, which partitions the score only when it exceeds the chunk thresholds")
	cmd.MarkFlagRequired("in")
	return cmd
}
