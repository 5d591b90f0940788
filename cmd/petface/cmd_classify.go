package main

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/petface/internal/inference"
	"github.com/Brownie44l1/petface/internal/model/onnx"
)

func newClassifyCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify IMAGE...",
		Short: "Classify image files with the configured model",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args, stdout, stderr)
		},
	}
	cmd.Flags().String("format", "auto", "Output format: auto, json, text")
	return cmd
}

func runClassify(cmd *cobra.Command, files []string, stdout, stderr io.Writer) error {
	format, _ := cmd.Flags().GetString("format")
	asJSON, err := useJSON(format, stdout)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(stderr, cfg.Level())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	loader := inference.NewLoader(onnx.Opener(http.DefaultClient, cfg.Source()), logger)
	defer loader.Close()
	m, err := loader.Get(ctx)
	if err != nil {
		return err
	}

	failed := false
	for _, file := range files {
		v, err := classifyFile(ctx, m, file)
		if err != nil {
			failed = true
			v = verdict{File: file, Error: err.Error()}
		}
		if err := printVerdict(stdout, v, asJSON); err != nil {
			return err
		}
	}
	if failed {
		return errExit
	}
	return nil
}

func classifyFile(ctx context.Context, m inference.Predictor, path string) (verdict, error) {
	f, err := os.Open(path)
	if err != nil {
		return verdict{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return verdict{}, fmt.Errorf("decode image: %w", err)
	}
	preds, err := m.PredictImage(ctx, img)
	if err != nil {
		return verdict{}, err
	}
	return newVerdict(path, preds), nil
}
