package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Brownie44l1/petface/internal/camera"
	"github.com/Brownie44l1/petface/internal/config"
	"github.com/Brownie44l1/petface/internal/handlers"
	"github.com/Brownie44l1/petface/internal/inference"
	"github.com/Brownie44l1/petface/internal/model/onnx"
	"github.com/Brownie44l1/petface/internal/report"
	"github.com/Brownie44l1/petface/internal/session"
)

func newServeCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the classifier HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, stdout, stderr)
		},
	}
	cmd.Flags().String("port", "", "Port to listen on (overrides config and $PORT)")
	return cmd
}

func runServe(cmd *cobra.Command, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	logger := newLogger(stderr, cfg.Level())

	reporter, err := report.New(cfg.SentryDSN, version)
	if err != nil {
		return err
	}
	defer reporter.Flush(2 * time.Second)

	loader := inference.NewLoader(onnx.Opener(http.DefaultClient, cfg.Source()), logger)
	defer loader.Close()

	opts := session.Options{Logger: logger, OnError: reporter.Capture}
	registry := session.NewRegistry(loader, cfg.Upload.PreviewDir, cfg.Upload.MaxBytes, opts)
	defer registry.Close()

	var live *session.Live
	if dev := newDevice(cfg.Camera); dev != nil {
		live = session.NewLive(loader, dev, cfg.FrameInterval(), opts)
		defer live.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load the model up front; requests retry on their own if this fails.
	go func() {
		if _, err := loader.Get(ctx); err != nil {
			logger.Warn("model not ready", "error", err)
			reporter.Capture(err)
		}
	}()

	handler := handlers.NewHandler(loader, registry, live, cfg.Upload.MaxBytes, logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logEndpoints(logger, cfg, live != nil)
	fmt.Fprintf(stdout, "petface listening on http://localhost%s\n", cfg.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newDevice picks the capture device from config, or nil when none is set.
func newDevice(cfg config.CameraConfig) camera.Device {
	switch {
	case cfg.SnapshotURL != "":
		return camera.NewSnapshot(cfg.SnapshotURL, &http.Client{Timeout: 5 * time.Second})
	case cfg.Dir != "":
		return camera.NewDir(cfg.Dir)
	}
	return nil
}

func logEndpoints(logger *slog.Logger, cfg config.Config, live bool) {
	logger.Info("server starting", "addr", cfg.Addr(), "model", cfg.Model.Path, "model_url", cfg.Model.BaseURL)
	logger.Info("endpoint", "route", "GET /health")
	logger.Info("endpoint", "route", "POST /predict", "about", "raw array prediction")
	logger.Info("endpoint", "route", "POST /predict/image", "about", "predict from image upload")
	logger.Info("endpoint", "route", "POST /api/sessions", "about", "open an upload session")
	if live {
		logger.Info("endpoint", "route", "POST /api/live/start|stop", "about", "camera loop")
	}
}
