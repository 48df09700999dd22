package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"futprint/internal/sample"
	"futprint/internal/target"
)

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Write the sample futures image",
		Args:  cobra.NoArgs,
		RunE:  failing(runDemo),
	}
	cmd.Flags().StringP("output", "o", "futures.fpi", "image file to write")
	return cmd
}

func runDemo(cmd *cobra.Command, _ []string) error {
	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	s := sessionFrom(cmd.Context())
	idx := s.timer.Begin("build sample")
	img, err := sample.FuturesImage()
	if err != nil {
		return fmt.Errorf("build sample image: %w", err)
	}
	s.timer.End(idx, fmt.Sprintf("%d types, %d symbols", len(img.Types), len(img.Symbols)))

	idx = s.timer.Begin("save " + out)
	if err := target.SaveImage(out, img); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	s.timer.End(idx, "")
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d symbols)\n", out, len(img.Symbols))
	return nil
}
