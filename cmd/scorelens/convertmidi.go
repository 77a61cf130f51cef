package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/schollz/scorelens/internal/midiimport"
)

func newConvertMidiCmd() *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "convert-midi",
		Short: "Convert a Standard MIDI File into a ParsedScore JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			score, err := midiimport.Import(in)
			if err != nil {
				return fmt.Errorf("convert-midi: %w", err)
			}
			return writeJSON(out, score)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "path to a .mid file (required)")
	cmd.Flags().StringVar(&out, "out", "-", "output path, or - for stdout")
	cmd.MarkFlagRequired("in")
	return cmd
}
