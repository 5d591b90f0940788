package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/petface/internal/classify"
)

func newResolveCmd(stdin io.Reader, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [PREDICTIONS_JSON]",
		Short: "Resolve a prediction list to a dog, cat or mixed verdict",
		Long: `Reads a JSON array of {"className", "probability"} objects from the
argument, or from stdin when no argument is given, and prints the verdict.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			asJSON, err := useJSON(format, stdout)
			if err != nil {
				return err
			}

			var src io.Reader = stdin
			if len(args) == 1 {
				src = strings.NewReader(args[0])
			}
			var preds []classify.Prediction
			if err := json.NewDecoder(src).Decode(&preds); err != nil {
				return fmt.Errorf("decode predictions: %w", err)
			}
			return printVerdict(stdout, newVerdict("", preds), asJSON)
		},
	}
	cmd.Flags().String("format", "auto", "Output format: auto, json, text")
	return cmd
}
