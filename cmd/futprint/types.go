package main

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"futprint/internal/target"
)

func newTypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types -i IMAGE",
		Short: "List the types defined in an image",
		Args:  cobra.NoArgs,
		RunE:  failing(runTypes),
	}
	cmd.Flags().StringP("image", "i", "", "debuggee image")
	cmd.Flags().String("prefix", "", "only list names with this prefix")
	_ = cmd.MarkFlagRequired("image")
	return cmd
}

func runTypes(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("image")
	prefix, _ := cmd.Flags().GetString("prefix")
	img, err := target.LoadImage(path)
	if err != nil {
		return err
	}
	p, err := target.Open(img)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	out := cmd.OutOrStdout()
	for _, name := range p.TypeNames() {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		t, err := p.LookupType(name)
		if err != nil {
			return err
		}
		code := runewidth.FillRight(t.Code().String(), 9)
		fmt.Fprintf(out, "%s %6d  %s\n", code, t.Size(), name)
	}
	return nil
}
