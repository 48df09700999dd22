package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"futprint/internal/config"
	"futprint/internal/observ"
)

type settingsKey struct{}

// session is the per-invocation state built in preRun.
type session struct {
	cfg     config.Config
	timer   *observ.Timer
	cleanup func(failed bool)
}

func sessionFrom(ctx context.Context) *session {
	if s, ok := ctx.Value(settingsKey{}).(*session); ok {
		return s
	}
	return &session{cfg: config.Default(), timer: observ.NewTimer(), cleanup: func(bool) {}}
}

func preRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s := &session{cfg: cfg, timer: observ.NewTimer()}
	ctx := context.WithValue(cmd.Context(), settingsKey{}, s)
	cmd.SetContext(ctx)

	cleanup, err := setupTracing(cmd, cfg.Trace)
	if err != nil {
		return err
	}
	s.cleanup = cleanup
	return nil
}

func postRun(cmd *cobra.Command, _ []string) {
	s := sessionFrom(cmd.Context())
	s.cleanup(false)
	if timings, _ := cmd.Root().PersistentFlags().GetBool("timings"); timings {
		if err := s.timer.WriteSummary(cmd.ErrOrStderr()); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "timings: %v\n", err)
		}
	}
}

// loadConfig merges futprint.toml, the environment and changed flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	root := cmd.Root().PersistentFlags()
	envFile, err := root.GetString("env-file")
	if err != nil {
		return config.Config{}, err
	}
	if err := config.LoadEnvFile(envFile); err != nil {
		return config.Config{}, err
	}
	path, err := root.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(config.Options{Path: path})
	if err != nil {
		return config.Config{}, err
	}

	if root.Changed("color") {
		cfg.Render.Color, _ = root.GetString("color")
	}
	if root.Changed("trace") {
		cfg.Trace.Output, _ = root.GetString("trace")
		if !root.Changed("trace-level") && cfg.Trace.Level == "off" {
			cfg.Trace.Level = "session"
		}
	}
	if root.Changed("trace-level") {
		cfg.Trace.Level, _ = root.GetString("trace-level")
	}
	if root.Changed("trace-mode") {
		cfg.Trace.Mode, _ = root.GetString("trace-mode")
	}
	if root.Changed("trace-ring-size") {
		cfg.Trace.RingSize, _ = root.GetInt("trace-ring-size")
	}
	local := cmd.Flags()
	if f := local.Lookup("max-depth"); f != nil && f.Changed {
		cfg.Render.MaxDepth, _ = local.GetInt("max-depth")
	}
	if f := local.Lookup("raw"); f != nil && f.Changed {
		cfg.Render.Raw, _ = local.GetBool("raw")
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// useColor resolves the color mode against the output stream.
func useColor(mode string, out io.Writer) bool {
	switch mode {
	case config.ColorOn:
		return true
	case config.ColorOff:
		return false
	}
	f, ok := out.(*os.File)
	return ok && isTerminal(f)
}

// failing wraps a RunE so a failed command still flushes its tracer.
func failing(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := run(cmd, args)
		if err != nil {
			sessionFrom(cmd.Context()).cleanup(true)
		}
		return err
	}
}
