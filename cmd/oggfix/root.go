package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/joshuapare/oggfix/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	noColor bool

	// Logging flags
	logLevel string
	logDir   string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "oggfix",
	Short: "Repair Ogg files with a truncated final page",
	Long: `oggfix repairs Ogg container files cut short by an interrupted
recording, download or copy. It finds the last page, fits its segment table
to the bytes actually present, marks it end-of-stream, recomputes its
checksum and drops any trailing partial data, leaving a file players accept.`,
	Version:           version,
	PersistentPreRunE: setupOutput,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Write structured logs at this level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"Write logs to a dated file in this directory")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupOutput applies the colour and logging flags before any command runs.
func setupOutput(_ *cobra.Command, _ []string) error {
	if noColor || jsonOut {
		color.NoColor = true
	}

	opts := logger.Options{
		Enabled: logLevel != "" || logDir != "",
		JSON:    logJSON,
		LogDir:  logDir,
	}
	if logLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(logLevel)); err != nil {
			return fmt.Errorf("invalid log level: %s (use: debug, info, warn, error)", logLevel)
		}
		opts.Level = level
	}
	if err := logger.Init(opts); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	return nil
}

// Helper functions for output

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	warnMark = color.New(color.FgYellow).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
)

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, failMark("Error: ")+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
