package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"strata/internal/dependency"
)

var versionShort bool

// newVersionCmd creates the version command.  Besides the release it prints
// the toolchain and the dependency kinds this build understands, which is what
// matters when a definition written for a newer release is rejected.
func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number of strata",
		Long: `Print the strata release together with the Go toolchain it was built with
and the dependency kinds accepted in component definitions.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), formatVersion(rootCmd.Version, versionShort))
		},
	}
	cmd.Flags().BoolVar(&versionShort, "short", false, "Print only the release")
	return cmd
}

func formatVersion(version string, short bool) string {
	if version == "" {
		version = "unknown"
	}
	if short {
		return version + "\n"
	}

	kinds := make([]string, 0, len(dependency.Kinds))
	for _, kind := range dependency.Kinds {
		kinds = append(kinds, kind.String())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "strata version %s\n", version)
	fmt.Fprintf(&b, "  go:               %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "  dependency kinds: %s\n", strings.Join(kinds, ", "))
	return b.String()
}
