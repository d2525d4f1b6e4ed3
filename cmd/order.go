package cmd

import (
	"github.com/spf13/cobra"

	"strata/internal/dependency"
	"strata/internal/formatting"
	"strata/internal/orchestrator"
)

var (
	orderShutdown     bool
	orderOutputFormat string
	orderNoColor      bool
)

// orderCmd represents the order command
var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the order in which components are initialized",
	Long: `Print every known component in dependency order. Each component appears
after all of the components it depends on. With --shutdown the order is
reversed, so dependents come before their dependencies.

Components that are only referenced as dependencies are listed as well and
marked as not defined.

Examples:
  strata order
  strata order --shutdown
  strata order -o yaml`,
	Args: cobra.NoArgs,
	RunE: runOrder,
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().BoolVar(&orderShutdown, "shutdown", false, "Print the shutdown order instead")
	orderCmd.Flags().StringVarP(&orderOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	orderCmd.Flags().BoolVar(&orderNoColor, "no-color", false, "Disable colored output")
}

func runOrder(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(orderOutputFormat)
	if err != nil {
		return err
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	orch, err := loadDefinitions(dir, false)
	if err != nil {
		return err
	}

	report, err := buildOrderReport(orch, orderShutdown)
	if err != nil {
		return err
	}

	formatter := formatting.NewFormatter(formatting.Options{Format: format, Color: !orderNoColor})
	return formatter.FormatOrder(cmd.OutOrStdout(), report)
}

func buildOrderReport(orch *orchestrator.Orchestrator, shutdown bool) (formatting.OrderReport, error) {
	var (
		order []dependency.ComponentKey
		err   error
	)
	report := formatting.OrderReport{Direction: formatting.DirectionInitialization}
	if shutdown {
		report.Direction = formatting.DirectionShutdown
		order, err = orch.ShutdownOrder()
	} else {
		order, err = orch.InitializationOrder()
	}
	if err != nil {
		return formatting.OrderReport{}, err
	}

	report.Components = make([]formatting.OrderEntry, 0, len(order))
	for i, key := range order {
		entry := formatting.OrderEntry{
			Position:  i + 1,
			Component: key.String(),
		}
		if md, ok := orch.Metadata(key); ok {
			entry.Defined = true
			entry.Version = md.Version
		}
		for _, edge := range orch.DirectDependencies(key) {
			entry.Dependencies = append(entry.Dependencies, edge.To.String())
		}
		report.Components = append(report.Components, entry)
	}
	return report, nil
}
