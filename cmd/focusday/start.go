package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/actionsum/focusday/internal/daemon"
	"github.com/actionsum/focusday/internal/logging"
	"github.com/actionsum/focusday/internal/models"
	"github.com/actionsum/focusday/internal/retention"
	"github.com/actionsum/focusday/internal/tracker"
	"github.com/actionsum/focusday/internal/tui"
	"github.com/actionsum/focusday/internal/web"
	"github.com/actionsum/focusday/pkg/detector"
	"github.com/actionsum/focusday/pkg/window"
)

const shutdownTimeout = 10 * time.Second

var (
	foreground bool
	withWeb    bool
	live       bool
	webPort    int
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start tracking",
	Long: `Starts the sampler in the background. Use --foreground to stay attached,
--web to serve the dashboard and API, and --live for a terminal live view.`,
	RunE: runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background tracker",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tracker status and the focused window",
	RunE:  runStatus,
}

func init() {
	startCmd.Flags().BoolVarP(&foreground, "foreground", "f", false, "Run in the foreground")
	startCmd.Flags().BoolVar(&withWeb, "web", false, "Serve the web dashboard and API")
	startCmd.Flags().BoolVar(&live, "live", false, "Show the terminal live view (implies --foreground)")
	startCmd.Flags().IntVarP(&webPort, "port", "p", 0, "Port for the web server (default from config)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if webPort > 0 {
		if err := cfg.SetWebPort(webPort); err != nil {
			return err
		}
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}
	if running {
		return fmt.Errorf("tracker is already running (PID: %d)", pid)
	}

	if !foreground && !live && !daemon.IsChild() {
		childPID, err := daemon.Spawn(os.Args[1:])
		if err != nil {
			return err
		}
		fmt.Printf("Tracker started (PID: %d)\n", childPID)
		if withWeb {
			fmt.Printf("Dashboard: http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
		}
		fmt.Printf("Logs: %s\n", cfg.Log.File)
		return nil
	}

	// The live view owns the terminal, so it logs to the file like a daemon.
	logger, err := logging.New(cfg.Log, foreground && !live)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return err
	}
	defer a.Close()

	if err := dm.WritePID(); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	defer func() {
		if err := dm.RemovePID(); err != nil {
			logger.Warn("failed to remove PID file", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, a)
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger
	recorder := a.newRecorder(ctx)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := recorder.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush metrics", zap.Error(err))
		}
	}()

	svc, err := tracker.NewService(a.cfg, a.store, detector.Resolver(), logger, tracker.WithMetrics(recorder))
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close probe", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	defer wg.Wait()

	hub := web.NewHub(logger)
	progress := make(chan models.Progress, 1)

	onUpdate := func(p models.Progress) {
		hub.PublishProgress(p)
		if live {
			select {
			case progress <- p:
			default:
			}
		}
	}

	if err := svc.Start(ctx, onUpdate); err != nil {
		return err
	}
	defer svc.Stop()

	logger.Info("focusday started", zap.String("config", a.cfg.String()))

	sweeper := retention.NewSweeper(a.store, a.loc, a.clock, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		sweeper.Run(ctx, a.cfg.Retention.SweepInterval, a.cfg.Retention.DaysToKeep)
	}()

	if withWeb {
		handler := web.NewHandler(a.cfg, a.reporter, svc, hub, a.clock, logger)
		server := web.NewServer(a.cfg, handler, 0, logger)

		if a.files != nil {
			if updates, err := a.files.Watch(ctx); err != nil {
				logger.Warn("record change notifications disabled", zap.Error(err))
			} else {
				wg.Add(1)
				go func() {
					defer wg.Done()
					hub.ForwardRecordUpdates(ctx, updates)
				}()
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(); err != nil {
				logger.Error("web server failed", zap.Error(err))
				cancel()
			}
		}()
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
			defer done()
			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shut down web server", zap.Error(err))
			}
		}()
	}

	if live {
		if err := tui.Run(ctx, a.reporter, progress); err != nil {
			logger.Error("live view failed", zap.Error(err))
		}
		cancel()
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	if err := dm.Stop(shutdownTimeout); err != nil {
		if errors.Is(err, daemon.ErrNotRunning) {
			fmt.Println("Tracker is not running")
			return nil
		}
		return fmt.Errorf("failed to stop tracker: %w", err)
	}

	fmt.Println("Tracker stopped")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if running {
		fmt.Printf("Status: Running (PID: %d)\n", pid)
	} else {
		fmt.Println("Status: Not running")
	}
	fmt.Printf("Poll Interval: %v\n", cfg.Tracker.PollInterval)
	fmt.Printf("Storage: %s\n", cfg.Storage.Backend)

	probe, err := detector.New()
	if err != nil {
		fmt.Printf("\nCould not detect current window: %v\n", err)
		return nil
	}
	if c, ok := probe.(window.Closer); ok {
		defer c.Close()
	}

	sample, err := probe.Poll()
	if err != nil {
		fmt.Printf("\nCould not read current window: %v\n", err)
		return nil
	}
	if sample != nil {
		fmt.Printf("\nCurrent Window:\n")
		fmt.Printf("  Owner: %s\n", sample.OwnerProcessName)
		fmt.Printf("  Title: %s\n", sample.WindowTitle)
		fmt.Printf("  Display: %s\n", sample.DisplayServer)
	}
	return nil
}
