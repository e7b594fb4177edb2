package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/oggfix/pkg/oggfix"
)

var (
	repairDryRun       bool
	repairBackupSuffix string
	repairNoBackup     bool
	repairWindow       int
)

var repairCmd = &cobra.Command{
	Use:   "repair <file>...",
	Short: "Repair the trailing page of Ogg files",
	Long: `Repairs the final page of one or more Ogg files in place.

For each file the repair command:
1. Scans backward for the last page start
2. Fits the page's segment table to the bytes present
3. Sets the end-of-stream flag and recomputes the checksum
4. Creates a backup (unless --no-backup) before the first write
5. Drops anything after the repaired page with an atomic replace

A file that is already well formed is left untouched. The --dry-run flag
reports what would change without writing anything.`,
	Example: `  # Preview the repair without applying it
  oggfix repair --dry-run recording.ogg

  # Repair several files, keeping backups with a custom suffix
  oggfix repair --backup-suffix .orig *.ogg

  # Repair without a backup
  oggfix repair --no-backup recording.ogg`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepair(args)
	},
}

func init() {
	repairCmd.Flags().BoolVarP(&repairDryRun, "dry-run", "n", false,
		"Preview the repair without applying it")
	repairCmd.Flags().StringVarP(&repairBackupSuffix, "backup-suffix", "b", ".backup",
		"Suffix for backup file")
	repairCmd.Flags().BoolVar(&repairNoBackup, "no-backup", false,
		"Skip creating a backup before writing")
	repairCmd.Flags().IntVar(&repairWindow, "window", 0,
		"Backward scan window in bytes (default 4000)")

	rootCmd.AddCommand(repairCmd)
}

func runRepair(args []string) error {
	opts := oggfix.Options{
		DryRun:       repairDryRun,
		BackupSuffix: repairBackupSuffix,
		WindowSize:   repairWindow,
	}
	if repairNoBackup {
		opts.BackupSuffix = ""
	}

	var results []*oggfix.Result
	failed := 0
	for _, path := range args {
		result, err := oggfix.FixWithOptions(path, opts)
		results = append(results, result)
		if err != nil {
			failed++
			printError("%s: %v\n", path, err)
			printHint(err)
			continue
		}
		if !jsonOut {
			printRepairResult(result)
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) could not be repaired", failed, len(args))
	}
	return nil
}

func printRepairResult(result *oggfix.Result) {
	trimmed := humanize.Bytes(uint64(result.TrimmedBytes()))

	switch {
	case result.DryRun && result.AlreadyValid && result.TrimmedBytes() == 0:
		printInfo("%s %s: already valid\n", okMark("✓"), result.Path)
	case result.DryRun:
		printInfo("%s %s: would repair (zero %d segment(s), trim %s)\n",
			warnMark("○"), result.Path, result.ZeroedSegments, trimmed)
	case result.AlreadyValid && !result.Truncated:
		printInfo("%s %s: already valid\n", okMark("✓"), result.Path)
	case result.AlreadyValid:
		printInfo("%s %s: trimmed %s of trailing data\n", okMark("✓"), result.Path, trimmed)
	default:
		printInfo("%s %s: repaired (zeroed %d segment(s), trimmed %s)\n",
			okMark("✓"), result.Path, result.ZeroedSegments, trimmed)
	}

	printVerbose("  Last page:  offset 0x%X, %d bytes, %d segment(s)\n",
		result.PageOffset, result.PageSize, result.SegmentCount)
	printVerbose("  File size:  %s -> %s\n",
		humanize.Bytes(uint64(result.OriginalSize)), humanize.Bytes(uint64(result.FinalSize)))
	if result.Retried {
		printVerbose("  Note:       first page candidate was a false match\n")
	}
	if result.BackupPath != "" {
		printVerbose("  Backup:     %s\n", result.BackupPath)
	}
	printVerbose("  Duration:   %v\n", result.Duration)
	if verbose && len(result.Patches) > 0 {
		printVerbose("\n%s\n", oggfix.ExportPatches(result.Patches))
	}
	if verbose && len(result.Transitions) > 0 {
		printVerbose("  Transitions:\n")
		for _, tr := range result.Transitions {
			printVerbose("    %-10s -> %-10s (%s)\n", tr.From, tr.To, tr.Event)
		}
	}
}

// printHint explains the class of a failure.
func printHint(err error) {
	switch {
	case errors.Is(err, oggfix.ErrNotFound):
		printInfo("  No Ogg page found; the file is not an Ogg container.\n")
	case errors.Is(err, oggfix.ErrUnrecoverableFormat):
		printInfo("  The end of the file is too damaged to locate a complete page header.\n")
	case errors.Is(err, oggfix.ErrIO):
		printInfo("  The file could not be read or written; it was not modified.\n")
	}
}
