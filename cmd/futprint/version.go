package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"futprint/internal/version"
)

type versionPayload struct {
	Tool string `json:"tool"`
	version.Info
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show futprint build information",
		Args:  cobra.NoArgs,
		RunE:  failing(runVersion),
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json)")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	info := version.Current()
	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(versionPayload{Tool: "futprint", Info: info})
	case "pretty":
		fmt.Fprintf(out, "futprint %s\n", version.Colored())
		if info.GitCommit != "" {
			fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
		}
		if info.BuildDate != "" {
			fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
}
