package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/joshuapare/oggfix/pkg/oggfix"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show the trailing page of an Ogg file",
	Long: `Locates the last page of an Ogg file and prints its header fields,
whether it is truncated and whether its checksum matches, without
modifying the file. Exits non-zero when no page can be found.`,
	Example: `  oggfix inspect recording.ogg
  oggfix inspect --json recording.ogg`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(args []string) error {
	path := args[0]

	info, err := oggfix.Inspect(path)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	if jsonOut {
		return printJSON(info)
	}

	printInfo("File:            %s (%s)\n", info.Path, humanize.Bytes(uint64(info.FileSize)))
	printInfo("Last page:       offset 0x%X\n", info.Offset)
	if info.Retried {
		printInfo("                 (first candidate was a false match)\n")
	}
	printInfo("Version:         %d\n", info.Version)
	printInfo("Flags:           0x%02X%s\n", info.Flags, flagNames(info))
	printInfo("Granule:         %s\n", humanize.Comma(int64(info.GranulePosition)))
	printInfo("Serial:          0x%08X\n", info.SerialNumber)
	printInfo("Sequence:        %d\n", info.SequenceNumber)
	printInfo("Segments:        %d\n", info.SegmentCount)
	printInfo("Declared size:   %d bytes\n", info.DeclaredSize)
	printInfo("Available:       %d bytes\n", info.Available)
	if info.Truncated {
		printInfo("Truncated:       %d bytes missing\n", info.DeclaredSize-info.Available)
	}
	if info.TrailingBytes > 0 {
		printInfo("Trailing data:   %d bytes\n", info.TrailingBytes)
	}

	checksum := okMark("valid")
	if !info.ChecksumValid {
		checksum = failMark("mismatch")
	}
	printInfo("Checksum:        0x%08X (%s)\n", info.StoredChecksum, checksum)
	printVerbose("Computed:        0x%08X\n", info.ComputedChecksum)

	if info.NeedsRepair() {
		printInfo("\n%s Needs repair. Run: oggfix repair %s\n", warnMark("○"), info.Path)
	} else {
		printInfo("\n%s Trailing page is complete.\n", okMark("✓"))
	}
	return nil
}

func flagNames(info *oggfix.PageInfo) string {
	var names []string
	if info.Continued {
		names = append(names, "continued")
	}
	if info.BeginOfStream {
		names = append(names, "bos")
	}
	if info.EndOfStream {
		names = append(names, "eos")
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(names, ", "))
}
