package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata/internal/api"
	"strata/internal/config"
	"strata/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments, dependency cycle).
	ExitCodeError = 1
	// ExitCodeCheckFailed indicates that the dependency check found missing or incompatible dependencies.
	ExitCodeCheckFailed = 2
	// ExitCodeConfigError indicates invalid configuration or component definitions.
	ExitCodeConfigError = 3
)

var (
	// rootConfigPath is the configuration directory; empty means ~/.config/strata
	rootConfigPath string
	rootLogLevel   string
	rootLogFormat  string

	// loadedConfig is populated by the persistent pre-run hook
	loadedConfig = config.GetDefaultConfig()
)

// rootCmd represents the base command for the strata application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Resolve plugin component dependencies",
	Long: `strata reads component definitions (a type, a provider and their declared
dependencies) and answers the questions needed to start them safely: in which
order to initialize and shut them down, which required dependencies are missing,
and which declared version constraints are not met.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors that are handled by the application.
	SilenceUsage:      true,
	PersistentPreRunE: initRoot,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// This function is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
// This provides semantic exit codes for scripting and automation.
func getExitCode(err error) int {
	var checkFailed *CheckFailedError
	if errors.As(err, &checkFailed) {
		return ExitCodeCheckFailed
	}

	if api.IsConfigurationError(err) {
		return ExitCodeConfigError
	}

	return ExitCodeError
}

// configDir returns the directory given by --config-path or the default one.
func configDir() (string, error) {
	if rootConfigPath != "" {
		return rootConfigPath, nil
	}
	return config.GetUserConfigDir()
}

// initRoot loads config.yaml and configures logging.  Flags override the
// values from the file.
func initRoot(cmd *cobra.Command, args []string) error {
	dir, err := configDir()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("log-level") || cfg.Logging.Level == "" {
		cfg.Logging.Level = rootLogLevel
	}
	if cmd.Flags().Changed("log-format") || cfg.Logging.Format == "" {
		cfg.Logging.Format = rootLogFormat
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	if cfg.Logging.Format != logging.FormatText && cfg.Logging.Format != logging.FormatJSON {
		return fmt.Errorf("unsupported log format %q (supported: text, json)", cfg.Logging.Format)
	}

	logging.Init(level, cfg.Logging.Format, cmd.ErrOrStderr())
	loadedConfig = cfg
	return nil
}

// init is a special Go function that is executed when the package is initialized.
// It is used here to add subcommands and global flags to the root command.
func init() {
	rootCmd.SetVersionTemplate(`{{printf "strata version %s\n" .Version}}`)
	rootCmd.AddCommand(newVersionCmd())

	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Configuration directory (default is $HOME/.config/strata)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&rootLogFormat, "log-format", config.DefaultLogFormat, "Log format (text, json)")
}
