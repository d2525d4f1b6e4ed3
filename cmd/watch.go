package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"strata/internal/config"
	"strata/internal/formatting"
	"strata/pkg/logging"
)

var (
	watchOutputFormat string
	watchNoColor      bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the initialization order whenever definitions change",
	Long: `Watch the components directory and print the initialization order each
time a definition is added, changed or removed. Definitions are re-read from
scratch on every change, so removed dependencies disappear from the order.

Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutputFormat, "output", "o", "table", "Output format (table, json, yaml)")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false, "Disable colored output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := formatting.ParseOutputFormat(watchOutputFormat)
	if err != nil {
		return err
	}

	dir, err := configDir()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	formatter := formatting.NewFormatter(formatting.Options{Format: format, Color: !watchNoColor})
	return watchDefinitions(ctx, dir, formatter, cmd.OutOrStdout())
}

// watchDefinitions prints the order once and again after every change until
// ctx is done.
func watchDefinitions(ctx context.Context, dir string, formatter formatting.Formatter, out io.Writer) error {
	var mu sync.Mutex
	render := func() {
		mu.Lock()
		defer mu.Unlock()

		orch, err := loadDefinitions(dir, false)
		if err != nil {
			logging.Error("Watch", err, "Failed to load component definitions")
			return
		}
		report, err := buildOrderReport(orch, false)
		if err != nil {
			fmt.Fprintf(out, "%v\n", err)
			return
		}
		if err := formatter.FormatOrder(out, report); err != nil {
			logging.Error("Watch", err, "Failed to render order")
		}
	}

	render()

	watcher := config.NewWatcher(config.WatcherConfig{
		Dir:      filepath.Join(dir, config.ComponentsDir),
		OnChange: render,
	})
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()

	<-ctx.Done()
	return nil
}
