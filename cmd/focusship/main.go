package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/attn-labs/focusship/internal/cliconfig"
	"github.com/attn-labs/focusship/internal/server"
	"github.com/attn-labs/focusship/internal/store"
	"github.com/attn-labs/focusship/pkg/focusship"
	"github.com/attn-labs/focusship/pkg/log"
	"github.com/attn-labs/focusship/plugins/configwatcher"
)

const helpDescription = `
Track attention from a webcam landmark feed and ship scored samples to a
focusship server.

Highlights:
  - Scores every frame locally; only compact metric samples leave the device.
  - Batches and retries automatically, with at most one send in flight.
  - Discovers a stable device ID; configure via file, env, or flags.

Run 'focusship agent' next to a landmark feed, or 'focusship serve' to host
the collection API.
`

var exampleUsage = strings.TrimSpace(`
  focusship agent --feed ~/focus/frames.ndjson --auth-key <api-key>
  focusship agent --config $HOME/.focusship/config.toml --once
  focusship serve --config /etc/focusship/server.toml
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	logger := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "focusship",
		Short:   "Attention tracking agent and collection server",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
	}

	root.AddCommand(newAgentCmd())
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("focusship")
		os.Exit(1)
	}
}

func newAgentCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	logger := cliconfig.Logger()

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Read a landmark feed, score attention, and ship samples",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.focusship/config.toml),
			// then env, then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else {
				cfgFile = ""
			}

			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			// Generate or load the stable device ID.
			if err := cliconfig.EnsureDeviceID(&cfg); err != nil {
				return err
			}

			logCfg := cfg
			if len(logCfg.AuthKey) > 0 {
				logCfg.AuthKey = "*****"
			}
			logger.Info().Interface("config", logCfg).Msg("configuration")

			libCfg := focusship.Config{
				FeedPath:       cfg.FeedPath,
				StateDir:       cfg.StateDir,
				DeviceID:       cfg.DeviceID,
				ServiceURL:     cfg.ServiceURL,
				AuthKey:        cfg.AuthKey,
				PollInterval:   cfg.PollInterval,
				SendInterval:   cfg.SendInterval,
				HardInterval:   cfg.HardInterval,
				HTTPTimeout:    cfg.HTTPTimeout,
				MaxBatchSize:   cfg.MaxBatchSize,
				DrainAttempts:  cfg.DrainAttempts,
				BlinkThreshold: cfg.BlinkThreshold,
				GazeDeadzone:   cfg.GazeDeadzone,
				MaxYawDeg:      cfg.MaxYawDeg,
				MaxPitchDeg:    cfg.MaxPitchDeg,
				BlinkWindow:    cfg.BlinkWindow,
				Once:           cfg.Once,
			}

			opts := []focusship.Option{
				focusship.WithLogger(log.Wrap(logger)),
			}
			// Live threshold tuning only works when a config file is in play.
			if cfgFile != "" {
				opts = append(opts, configwatcher.WithDefaultConfigWatcher(cfgFile))
			}

			tracker, err := focusship.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create tracker: %w", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := tracker.Start(ctx); err != nil {
				return fmt.Errorf("start tracker: %w", err)
			}

			doneCh := make(chan struct{})
			go func() {
				// Poll for completion (for once mode)
				ticker := time.NewTicker(100 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						status := tracker.Status()
						if status == focusship.StateStopped || status == focusship.StateCrashed {
							close(doneCh)
							return
						}
					}
				}
			}()

			select {
			case <-sigCh:
				logger.Info().Msg("received signal, stopping...")
			case <-doneCh:
				if tracker.Status() == focusship.StateCrashed {
					logger.Error().Msg("tracker crashed")
				}
			}

			// Once mode stops the tracker itself before doneCh closes.
			if err := tracker.Stop(); err != nil && !errors.Is(err, focusship.ErrNotRunning) {
				return fmt.Errorf("stop tracker: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.focusship/config.toml)")
	cmd.Flags().StringVar(&cfg.FeedPath, "feed", "", "NDJSON landmark feed file to follow")
	cmd.Flags().StringVar(&cfg.StateDir, "state-dir", cfg.StateDir, "state directory for status.json and device-id (defaults to the feed directory)")
	cmd.Flags().StringVar(&cfg.DeviceID, "device-id", cfg.DeviceID, "device identifier (generated and persisted if empty)")

	cmd.Flags().StringVar(&cfg.ServiceURL, "service-url", cfg.ServiceURL, fmt.Sprintf("base service URL (defaults to %s)", cliconfig.DefaultServiceURL))
	cmd.Flags().StringVar(&cfg.AuthKey, "auth-key", cfg.AuthKey, "API key for authentication")

	cmd.Flags().DurationVar(&cfg.PollInterval, "poll", cfg.PollInterval, "poll interval when the feed is idle")
	cmd.Flags().DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "soft send interval")
	cmd.Flags().DurationVar(&cfg.HardInterval, "hard-interval", cfg.HardInterval, "hard send interval (flush even if the batch is small)")
	cmd.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP timeout")
	cmd.Flags().IntVar(&cfg.MaxBatchSize, "max-batch-size", cfg.MaxBatchSize, "maximum samples per batch")
	cmd.Flags().IntVar(&cfg.DrainAttempts, "drain-attempts", cfg.DrainAttempts, "bounded flush attempts on shutdown")

	cmd.Flags().Float64Var(&cfg.BlinkThreshold, "blink-threshold", cfg.BlinkThreshold, "eye aspect ratio below which the eye counts as closed")
	cmd.Flags().Float64Var(&cfg.GazeDeadzone, "gaze-deadzone", cfg.GazeDeadzone, "normalized gaze offset tolerated as center")
	cmd.Flags().Float64Var(&cfg.MaxYawDeg, "max-yaw", cfg.MaxYawDeg, "head yaw in degrees tolerated as facing the screen")
	cmd.Flags().Float64Var(&cfg.MaxPitchDeg, "max-pitch", cfg.MaxPitchDeg, "head pitch in degrees tolerated as facing the screen")
	cmd.Flags().DurationVar(&cfg.BlinkWindow, "blink-window", cfg.BlinkWindow, "rolling window for the blink rate")

	cmd.Flags().BoolVar(&cfg.Once, "once", cfg.Once, "process available frames and exit")

	return cmd
}

func newServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the focusship collection and reporting server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := server.LoadConfig(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := log.NewJSON(os.Stderr)

			st, err := store.Open(cfg.Driver, cfg.DSN)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			logger.Info("starting server",
				log.String("addr", cfg.Addr),
				log.String("driver", cfg.Driver),
			)

			srv := server.New(cfg, st, logger, nil)

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&cfgPath, "config", "", "path to server config file (TOML, optional)")

	return cmd
}
