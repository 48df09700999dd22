package main

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"futprint/internal/printers"
	"futprint/internal/registry"
	"futprint/internal/render"
	"futprint/internal/target"
	"futprint/internal/trace"
)

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print -i IMAGE [-i IMAGE...] [SYMBOL...]",
		Short: "Render symbols through the futures printers",
		Long: `print loads every image, registers the futures printers on a fresh
printer chain per image and renders the named symbols, or all of them.`,
		RunE: failing(runPrint),
	}
	cmd.Flags().StringArrayP("image", "i", nil, "debuggee image (repeatable)")
	cmd.Flags().Int("max-depth", 0, "maximum nesting depth (0 = unlimited)")
	cmd.Flags().Bool("raw", false, "bypass the printers and use default formatting")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

// loadImages decodes and opens images concurrently.
func loadImages(ctx context.Context, s *session, paths []string) ([]*target.Process, error) {
	procs := make([]*target.Process, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(runtime.GOMAXPROCS(0), len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			idx := s.timer.Begin("load " + filepath.Base(path))
			img, err := target.LoadImage(path)
			if err != nil {
				return err
			}
			p, err := target.Open(img)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			s.timer.End(idx, fmt.Sprintf("%d symbols", len(img.Symbols)))
			procs[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return procs, nil
}

func runPrint(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	s := sessionFrom(ctx)
	paths, err := cmd.Flags().GetStringArray("image")
	if err != nil {
		return err
	}
	procs, err := loadImages(ctx, s, paths)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tracer := trace.FromContext(ctx)
	opts := render.Options{
		MaxDepth: s.cfg.Render.MaxDepth,
		Color:    useColor(s.cfg.Render.Color, out),
		Raw:      s.cfg.Render.Raw,
	}
	for i, p := range procs {
		span := trace.Begin(tracer, trace.ScopeSession, "image "+paths[i], trace.CurrentSpan(ctx))
		ictx := trace.WithSpan(ctx, span)
		idx := s.timer.Begin("render " + filepath.Base(paths[i]))

		chain := registry.NewChain()
		registry.Register(chain, registry.New(printers.Env{Types: p, Tracer: tracer}))
		r := render.New(chain, opts)

		names := args
		if len(names) == 0 {
			for _, sym := range p.Symbols() {
				names = append(names, sym.Name)
			}
		}
		if len(procs) > 1 {
			fmt.Fprintf(out, "# %s\n", paths[i])
		}
		for _, name := range names {
			v, err := p.Variable(name)
			if err != nil {
				span.Fail(err)
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			if err := r.Render(ictx, out, name, v); err != nil {
				span.Fail(err)
				return err
			}
		}
		s.timer.End(idx, fmt.Sprintf("%d symbols", len(names)))
		span.End("")
	}
	return nil
}
