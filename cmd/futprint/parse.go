package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"futprint/internal/typesig"
)

func newParseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse TYPE...",
		Short: "Show how a type signature splits into base, qualifiers and generic arguments",
		Args:  cobra.MinimumNArgs(1),
		RunE:  failing(runParse),
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, text := range args {
		sig, err := typesig.Parse(text)
		if err != nil {
			return err
		}
		quals := make([]string, len(sig.Qualifiers))
		for i, q := range sig.Qualifiers {
			quals[i] = q.String()
		}
		fmt.Fprintf(out, "%s\n", sig.String())
		fmt.Fprintf(out, "  base:       %s\n", sig.BaseName)
		fmt.Fprintf(out, "  qualifiers: %s\n", strings.Join(quals, " "))
		fmt.Fprintf(out, "  trailing:   %s\n", typesig.TrailingName(sig.BaseName))
		for i, arg := range sig.GenericArgs {
			fmt.Fprintf(out, "  arg[%d]:     %s\n", i, arg)
		}
	}
	return nil
}
