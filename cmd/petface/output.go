package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Brownie44l1/petface/internal/board"
	"github.com/Brownie44l1/petface/internal/classify"
)

// verdict is one classified input as printed by the CLI.
type verdict struct {
	File        string                `json:"file,omitempty"`
	Predictions []classify.Prediction `json:"predictions,omitempty"`
	Result      classify.Result       `json:"result"`
	Headline    classify.Headline     `json:"headline"`
	Error       string                `json:"error,omitempty"`
}

func newVerdict(file string, preds []classify.Prediction) verdict {
	result := classify.Resolve(preds)
	return verdict{
		File:        file,
		Predictions: preds,
		Result:      result,
		Headline:    classify.Describe(result),
	}
}

// useJSON resolves --format: auto prints text only to a terminal.
func useJSON(format string, w io.Writer) (bool, error) {
	switch format {
	case "json":
		return true, nil
	case "text":
		return false, nil
	case "auto", "":
		f, ok := w.(*os.File)
		if !ok {
			return true, nil
		}
		tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		return !tty, nil
	default:
		return false, fmt.Errorf("invalid --format value %q: must be auto, json, or text", format)
	}
}

func printVerdict(w io.Writer, v verdict, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(v)
	}
	if v.File != "" {
		fmt.Fprintf(w, "%s\n", v.File)
	}
	if v.Error != "" {
		_, err := fmt.Fprintf(w, "  error: %s\n", v.Error)
		return err
	}
	fmt.Fprintf(w, "%s %s\n%s\n", v.Headline.Emoji, v.Headline.Title, v.Headline.Description)
	for _, p := range v.Predictions {
		fmt.Fprintf(w, "  %-12s %3d%%\n", p.ClassName, board.Percent(p.Probability))
	}
	return nil
}
