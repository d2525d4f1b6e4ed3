package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"strata/internal/dependency"
	"strata/internal/formatting"
	"strata/internal/orchestrator"
)

var (
	checkOutputFormat string
	checkAvailable    []string
	checkSkipInvalid  bool
	checkNoColor      bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that every required dependency is available",
	Long: `Check the component definitions for problems that prevent a clean start:

  - a dependency cycle
  - required dependencies that are not available
  - dependencies whose version does not satisfy the declared constraint

A component is available when it has a definition, when it is listed under
'available' in config.yaml, or when it is passed with --available. Missing
non-required dependencies are reported but do not fail the check.

Exit codes:
  0  all dependencies satisfied
  1  dependency cycle or other error
  2  missing required dependencies or version mismatches
  3  invalid configuration or component definitions

Examples:
  strata check
  strata check --available cache/redis,secrets/vault
  strata check -o json`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVarP(&checkOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	checkCmd.Flags().StringSliceVar(&checkAvailable, "available", nil, "Additional available components as type/provider")
	checkCmd.Flags().BoolVar(&checkSkipInvalid, "skip-invalid", false, "Skip invalid component definitions instead of failing")
	checkCmd.Flags().BoolVar(&checkNoColor, "no-color", false, "Disable colored output")
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(checkOutputFormat)
	if err != nil {
		return err
	}

	dir, err := configDir()
	if err != nil {
		return err
	}
	orch, err := loadDefinitions(dir, !checkSkipInvalid)
	if err != nil {
		return err
	}

	available, err := availableComponents(orch, checkAvailable)
	if err != nil {
		return err
	}

	report, err := buildCheckReport(orch, available)
	if err != nil {
		return err
	}

	formatter := formatting.NewFormatter(formatting.Options{Format: format, Color: !checkNoColor})
	if err := formatter.FormatCheck(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if len(report.Cycle) > 0 {
		return fmt.Errorf("%w: %s", dependency.ErrCycle, strings.Join(report.Cycle, " -> "))
	}
	if report.Failed() {
		return &CheckFailedError{Problems: len(report.Missing) + len(report.Mismatches)}
	}
	return nil
}

func buildCheckReport(orch *orchestrator.Orchestrator, available dependency.KeySet) (formatting.CheckReport, error) {
	var report formatting.CheckReport

	if _, err := orch.InitializationOrder(); err != nil {
		var cycleErr *dependency.CycleError
		if !errors.As(err, &cycleErr) {
			return formatting.CheckReport{}, err
		}
		report.Cycle = formatting.KeyStrings(cycleErr.Path)
	}

	missing := orch.VerifyDependencies(available)
	for _, key := range orch.Components() {
		if deps, ok := missing[key]; ok {
			report.Missing = append(report.Missing, formatting.MissingEntry{
				Component: key.String(),
				Missing:   formatting.KeyStrings(deps),
			})
		}

		var optional []string
		for _, edge := range orch.DirectDependencies(key) {
			if edge.Kind != dependency.KindRequired && !available.Has(edge.To) {
				optional = append(optional, edge.To.String())
			}
		}
		if len(optional) > 0 {
			report.Optional = append(report.Optional, formatting.MissingEntry{
				Component: key.String(),
				Missing:   optional,
			})
		}
	}

	if mismatches := orch.VerifyVersions(); len(mismatches) > 0 {
		report.Mismatches = formatting.NewMismatchEntries(mismatches)
	}

	report.Finalize()
	return report, nil
}
