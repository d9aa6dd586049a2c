package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tickwake/alarmd/internal/adapters/secondary/audio"
	"github.com/tickwake/alarmd/internal/adapters/secondary/console"
	"github.com/tickwake/alarmd/internal/adapters/secondary/memsched"
	"github.com/tickwake/alarmd/internal/adapters/secondary/sqlite"
	"github.com/tickwake/alarmd/internal/application/services"
	"github.com/tickwake/alarmd/internal/domain"
	"github.com/tickwake/alarmd/internal/infrastructure/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	showVersion := flag.Bool("version", false, "show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("alarmd v%s (%s %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Bootstrap logger; replaced once the config is loaded.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "text" {
		logger = slog.New(slog.NewTextHandler(os.Stdout, opts))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	logger.Info("starting alarmd", slog.String("version", version), slog.String("commit", commit), slog.String("date", date))

	dbPath := cfg.Storage.Path
	if dbPath == "" {
		dbPath, err = sqlite.DefaultPath()
		if err != nil {
			logger.Error("failed to resolve database path", slog.Any("error", err))
			os.Exit(1)
		}
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		logger.Error("failed to open alarm store", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("alarm store opened", slog.String("path", dbPath))

	notifier := &console.Notifier{Logger: logger}
	vibrator := &console.Vibrator{Logger: logger}
	wakeLock := &console.WakeLock{Logger: logger}
	display := console.Display{}
	sound := audio.New(logger)

	// The scheduler delivers wake intents back into the dispatcher; the
	// dispatcher exists only after the services are built, hence the
	// indirection.
	ctx, cancel := context.WithCancel(context.Background())
	var dispatcher *services.Dispatcher
	scheduler := memsched.New(logger, func(intent domain.Intent) {
		go func() {
			if err := dispatcher.Dispatch(ctx, intent); err != nil {
				logger.Error("wake intent failed",
					slog.String("action", string(intent.Action)),
					slog.Int64("alarm_id", intent.AlarmID),
					slog.Any("error", err),
				)
			}
		}()
	})

	scheduleSvc := services.NewScheduleService(scheduler, logger, cfg.Schedule.PreviewLead)
	playbackSvc := services.NewPlaybackService(
		store, scheduleSvc, sound, vibrator, wakeLock, display, notifier,
		logger, cfg.VolumeKeyBehavior(), cfg.Playback.DefaultSound,
		cfg.Schedule.PreviewEnabled,
	)
	reconcileSvc := services.NewReconcileService(store, scheduleSvc, notifier, logger, cfg.Schedule.PreviewEnabled)
	dispatcher = services.NewDispatcher(store, playbackSvc, notifier, logger, cfg.Playback.TimeFormat24h, nil)

	// Process start doubles as the boot-completed signal.
	if n, err := reconcileSvc.OnBootCompleted(ctx); err != nil {
		logger.Error("boot reconciliation failed", slog.Any("error", err))
	} else {
		logger.Info("boot reconciliation done", slog.Int("scheduled", n))
	}

	go reconcileSvc.RunSafetyNet(ctx, cfg.Schedule.SafetyNetInterval)

	// Every committed store mutation re-derives the wake requests for the
	// alarms that changed, so edits and enable/disable toggles take effect
	// immediately without disturbing the rest of the table.
	sub := store.Observe()
	go func() {
		prev, err := store.GetAll(ctx)
		if err != nil {
			logger.Warn("initial table snapshot failed", slog.Any("error", err))
		}
		for snapshot := range sub.C() {
			reconcileSvc.OnStoreChanged(ctx, prev, snapshot)
			prev = snapshot
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down...")

	cancel()
	sub.Close()
	scheduler.Stop()
	sound.Stop()

	if err := store.Close(); err != nil {
		logger.Error("failed to close alarm store", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
}
