package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"futprint/internal/config"
	"futprint/internal/trace"
)

// setupTracing builds the tracer from the merged trace settings and
// attaches it to the command context. At the error level events go to a
// ring that is dumped only when the command fails.
func setupTracing(cmd *cobra.Command, cfg config.Trace) (func(failed bool), error) {
	level, err := trace.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(bool) {}, nil
	}
	mode, err := trace.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	output := cfg.Output
	if output == "stderr" {
		output = "-"
	}

	var tracer trace.Tracer
	if level == trace.LevelError {
		tracer = trace.NewRingTracer(cfg.RingSize, trace.LevelDebug)
	} else {
		tracer, err = trace.New(trace.Config{
			Level:      level,
			Mode:       mode,
			OutputPath: output,
			RingSize:   cfg.RingSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create tracer: %w", err)
		}
	}

	ctx := trace.WithTracer(cmd.Context(), tracer)
	span := trace.Begin(tracer, trace.ScopeSession, cmd.CommandPath(), 0)
	cmd.SetContext(trace.WithSpan(ctx, span))

	done := false
	cleanup := func(failed bool) {
		if done {
			return
		}
		done = true
		if failed {
			span.End("failed")
		} else {
			span.End("")
		}
		dump := mode == trace.ModeRing
		if level == trace.LevelError {
			dump = failed
		}
		if ring, ok := ringOf(tracer); ok && dump {
			if err := dumpRing(ring, output); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: dump error: %v\n", err)
			}
		}
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

func ringOf(t trace.Tracer) (*trace.RingTracer, bool) {
	switch x := t.(type) {
	case *trace.RingTracer:
		return x, true
	case *trace.MultiTracer:
		return x.Ring()
	}
	return nil, false
}

func dumpRing(ring *trace.RingTracer, output string) error {
	format := trace.FormatFor(output, trace.FormatAuto)
	if output == "" || output == "-" {
		return ring.Dump(os.Stderr, format)
	}
	f, err := os.Create(output)
	if err != nil {
		return err
	}
	if err := ring.Dump(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
