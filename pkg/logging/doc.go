// Package logging provides structured logging for strata on top of Go's
// standard slog package.
//
// # Log Levels
//   - **Debug**: Detailed information for debugging and development
//   - **Info**: General informational messages about application operation
//   - **Warn**: Conditions that degrade behaviour without stopping it, such as
//     an optional dependency that failed to load
//   - **Error**: Failures that abort an operation
//
// Every record carries a subsystem attribute, and Error records also carry an
// error attribute.
//
// # Usage Examples
//
//	import "strata/pkg/logging"
//
//	// Text output at info level
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	// JSON output, level parsed from configuration
//	level, _ := logging.ParseLevel(cfg.Logging.Level)
//	logging.Init(level, logging.FormatJSON, os.Stderr)
//
//	logging.Info("Orchestrator", "Starting %d components", n)
//	logging.Warn("Loader", "Optional dependency %s unavailable", key)
//	logging.Error("Loader", err, "Required dependency %s failed", key)
//
// # Subsystems
//
//   - **DependencyManager**: Metadata registration
//   - **Loader**: Dependency loading for a single component
//   - **Provider**: Component creation and initialization
//   - **Orchestrator**: Whole-system start and stop
//   - **ConfigLoader** / **ConfigWatcher**: Definition files
//
// Before Init is called only warnings and errors are written, to stderr.
//
// # Thread Safety
//
// All functions are safe for concurrent use.
package logging
