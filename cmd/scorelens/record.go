package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/schollz/scorelens/internal/model"
	"github.com/schollz/scorelens/internal/storage"
)

func readScheme(path string) (model.VisualScheme, error) {
	var vs model.VisualScheme
	data, err := os.ReadFile(path)
	if err != nil {
		return vs, fmt.Errorf("read scheme: %w", err)
	}
	if err := json.Unmarshal(data, &vs); err != nil {
		return vs, fmt.Errorf("parse scheme: %w", err)
	}
	return vs, nil
}

func newRecordCmd() *cobra.Command {
	var statePath, stateOut, node, action, schemePath string
	var seed int64

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record an accept/modify/reject response and resave the session state",
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			sess, err := buildSessionFromState(statePath, seed)
			if err != nil {
				return err
			}
			vs, err := readScheme(schemePath)
			if err != nil {
				return err
			}

			now := float64(time.Now().Unix()) / 60
			if err := sess.RecordSelection(node, action, vs, now); err != nil {
				return fmt.Errorf("record: %w", err)
			}

			priorState, err := storage.Load(statePath)
			if err != nil {
				return fmt.Errorf("record: reload prior state: %w", err)
			}
			newState := storage.BuildState(priorState.Session.SessionID, priorState.Session.CreatedAt,
				priorState.Session.ParsedScore, priorState.Session.AudioFeatures, priorState.Session.Alignment,
				sess.Analysis.Tree, sess.Analysis.FormAnalysis, sess.Analysis.Cadences, sess.Analysis.Phrases,
				sess.Analysis.Periods, priorState.VisualMappings, sess.Preference)

			if stateOut == "" {
				stateOut = statePath
			}
			if err := storage.Save(stateOut, newState); err != nil {
				return fmt.Errorf("record: save state: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&statePath, "state", "", "path to the gzip persisted-state file to update (required)")
	cmd.Flags().StringVar(&stateOut, "state-out", "", "where to save the updated state (default: overwrite --state)")
	cmd.Flags().StringVar(&node, "node", "", "structure node id the response applies to (required)")
	cmd.Flags().StringVar(&action, "action", "", "accept, modify, or reject (required)")
	cmd.Flags().StringVar(&schemePath, "scheme", "", "path to the selected VisualScheme JSON file (required)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "PRNG seed for scheme generation (default: time-based)")
	cmd.MarkFlagRequired("state")
	cmd.MarkFlagRequired("node")
	cmd.MarkFlagRequired("action")
	cmd.MarkFlagRequired("scheme")
	return cmd
}
