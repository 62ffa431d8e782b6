package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ayusman/handfuse/internal/app"
	"github.com/ayusman/handfuse/internal/capture"
	"github.com/ayusman/handfuse/internal/config"
	"github.com/ayusman/handfuse/internal/detector"
	"github.com/ayusman/handfuse/internal/export"
	"github.com/ayusman/handfuse/internal/server"
	"github.com/ayusman/handfuse/internal/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	listDevices := flag.Bool("list-devices", false, "print connected depth sensors and exit")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("handfuse", version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listDevices {
		err = printDevices(ctx, cfg)
	} else {
		err = run(ctx, cfg, logger)
	}
	if err != nil {
		logger.Errorw("handfuse failed", "error", err)
		logger.Sync() //nolint:errcheck
		os.Exit(1)
	}
}

func printDevices(ctx context.Context, cfg config.Config) error {
	devices, err := capture.ListDevices(ctx, cfg.Device())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}

// run wires the pipeline and blocks until the stream ends or ctx is cancelled.
func run(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger) (err error) {
	// Until the driver owns them, everything acquired here is released on failure.
	var cleanup []func() error
	defer func() {
		if err == nil {
			return
		}
		for i := len(cleanup) - 1; i >= 0; i-- {
			err = multierr.Append(err, cleanup[i]())
		}
	}()

	dev, err := capture.OpenDevice(ctx, cfg.Device())
	if err != nil {
		return err
	}
	cleanup = append(cleanup, dev.Close)
	logger.Infow("depth sensor ready", "serial", dev.Serial(), "width", cfg.Width, "height", cfg.Height, "fps", cfg.FPS)

	det, err := detector.NewMediaPipeDetector(cfg.Detector())
	if err != nil {
		return fmt.Errorf("start detector: %w", err)
	}
	cleanup = append(cleanup, det.Close)

	var exporters export.Multi
	if cfg.UDPAddr != "" {
		udp, err := export.NewUDPBridge(cfg.UDPAddr, cfg.Selection(), logger.Named("udp"))
		if err != nil {
			return err
		}
		exporters = append(exporters, udp)
		cleanup = append(cleanup, udp.Close)
	}

	var hands *export.Broadcaster
	if cfg.HTTPAddr != "" {
		hands, err = export.NewBroadcaster(cfg.Selection(), logger.Named("ws"))
		if err != nil {
			return err
		}
		exporters = append(exporters, hands)
		cleanup = append(cleanup, hands.Close)
	}

	var st *store.Store
	if cfg.DBPath != "" {
		st, err = store.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		rec, err := store.NewRecorder(st, dev.Serial(), cfg.Mirror(), logger.Named("store"))
		if err != nil {
			return err
		}
		exporters = append(exporters, rec)
		cleanup = append(cleanup, rec.Close)
	}

	if len(exporters) == 0 {
		logger.Warn("no exporters configured; hands are localized but not sent anywhere")
	}

	driver, err := app.New(app.Config{Mirror: cfg.Mirror()}, dev, det, exporters, logger.Named("driver"))
	cleanup = nil
	if err != nil {
		return err
	}

	var srv *server.Server
	if cfg.HTTPAddr != "" {
		srv = server.New(server.Config{
			StaticDir: cfg.StaticDir,
			Store:     st,
			Hands:     hands,
			Stats:     driver.Stats,
			Logger:    logger.Named("http"),
		})
		go func() {
			if err := srv.ListenAndServe(cfg.HTTPAddr); err != nil {
				logger.Errorw("http server failed", "error", err)
				driver.Stop()
			}
		}()
	}

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		driver.Stop()
	}()

	err = driver.Run()
	if errors.Is(err, app.ErrStopped) {
		// Stopped before the loop started; Stop already released everything.
		err = nil
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	}
	return err
}
