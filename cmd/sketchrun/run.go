package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-sketch/internal/config"
	"github.com/opd-ai/go-sketch/internal/profiling"
	"github.com/opd-ai/go-sketch/pkg/sketch"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <script.lua>",
	Short: "Run a sketch",
	Long: `Run loads the Lua script, applies the run file (--config), the script's
settings table and the flags in that order, then runs setup once and draw
every frame until the window closes, the script halts or --frames is reached.`,
	Args: cobra.ExactArgs(1),
	RunE: runSketch,
}

func init() {
	f := runCmd.Flags()
	f.StringP("config", "c", "", "Path to a YAML run file")
	f.Bool("headless", false, "Render off-screen without opening a window")
	f.Uint64("frames", 0, "Stop after this many frames (0 = no limit)")
	f.Float64("fps", 0, "Target frame rate")
	f.String("snapshot", "", "Write the last frame to this PNG file")
	f.Bool("watch", false, "Reload the sketch when the script or run file changes")
	f.String("debug-addr", "", "Serve metrics, status and pprof on this address")
	f.String("cpuprofile", "", "Write CPU profile to file")
	f.String("memprofile", "", "Write memory profile to file")
	rootCmd.AddCommand(runCmd)
}

func runSketch(cmd *cobra.Command, args []string) error {
	scriptPath := args[0]
	if _, err := os.Stat(scriptPath); err != nil {
		return fmt.Errorf("script not accessible: %w", err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}
	result := config.Validate(cfg)
	if err := result.Error(); err != nil {
		return err
	}

	logger := cfg.Logger()
	for _, w := range result.Warnings {
		logger.Warn("configuration warning", "field", w.Field, "message", w.Message)
	}

	cpuProfile, _ := cmd.Flags().GetString("cpuprofile")
	memProfile, _ := cmd.Flags().GetString("memprofile")
	profConfig := profiling.Config{CPUProfilePath: cpuProfile, MemProfilePath: memProfile}
	profiler := profiling.New(profConfig)
	if profConfig.Enabled() {
		if err := profiler.Start(); err != nil {
			return fmt.Errorf("starting profiler: %w", err)
		}
		defer func() {
			if err := profiler.Stop(); err != nil {
				logger.Warn("failed to stop profiling", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := newRunner(cfg, configPath, scriptPath, flagOverrides(cmd), logger)
	runErr := r.Run(ctx)

	if err := r.saveSnapshot(); err != nil {
		logger.Error("saving snapshot failed", "path", r.config().Snapshot, "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	writeSummary(cmd.OutOrStdout(), r.ref.Status(), r.metrics.Snapshot(), r.config().Snapshot)
	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := config.DefaultConfig()
		return &cfg, nil
	}
	cfg, err := config.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading run file: %w", err)
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags onto the run file settings.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("headless") {
		if cfg.Headless, err = flags.GetBool("headless"); err != nil {
			return err
		}
	}
	if flags.Changed("frames") {
		if cfg.MaxFrames, err = flags.GetUint64("frames"); err != nil {
			return err
		}
	}
	if flags.Changed("fps") {
		if cfg.FrameRate, err = flags.GetFloat64("fps"); err != nil {
			return err
		}
	}
	if flags.Changed("snapshot") {
		if cfg.Snapshot, err = flags.GetString("snapshot"); err != nil {
			return err
		}
	}
	if flags.Changed("watch") {
		if cfg.Watch, err = flags.GetBool("watch"); err != nil {
			return err
		}
	}
	if flags.Changed("debug-addr") {
		if cfg.DebugAddr, err = flags.GetString("debug-addr"); err != nil {
			return err
		}
	}

	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Log.Level = "debug"
	}
	if j, _ := cmd.Flags().GetBool("json-logs"); j {
		cfg.Log.Format = "json"
	}
	return nil
}

// flagOverrides returns the options a script's settings table must not
// override: the frame limit and frame rate given on the command line.
func flagOverrides(cmd *cobra.Command) func(*sketch.Options) {
	flags := cmd.Flags()
	frames, _ := flags.GetUint64("frames")
	fps, _ := flags.GetFloat64("fps")
	setFrames, setFPS := flags.Changed("frames"), flags.Changed("fps")
	if !setFrames && !setFPS {
		return nil
	}
	return func(opts *sketch.Options) {
		if setFrames {
			opts.MaxFrames = frames
		}
		if setFPS {
			opts.FrameRate = fps
		}
	}
}
