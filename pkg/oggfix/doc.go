/*
Package oggfix repairs the trailing page of an Ogg container file left
truncated by an interrupted recording or copy.

# Quick Start

Repair a file in place:

	err := oggfix.Fix("recording.ogg")

# What a repair does

The last page is located by scanning backward for its "OggS" capture
pattern. Its segment table is cut down to the bytes actually present, the
end-of-stream flag is set, and the page checksum is recomputed. Only those
header fields are rewritten. Anything after the repaired page is dropped
with an atomic replace, so the file on disk is either the original or the
repaired version.

If the first candidate page start turns out to be a false match, the search
resumes once from just before it. A second failure aborts the repair
without touching the file.

# Options

	result, err := oggfix.FixWithOptions("recording.ogg", oggfix.Options{
	    DryRun:       true,
	    BackupSuffix: ".bak",
	})
	if err == nil {
	    fmt.Printf("would trim %d bytes\n", result.TrimmedBytes())
	}

# Inspection

Inspect reports on the trailing page without modifying the file:

	info, err := oggfix.Inspect("recording.ogg")
	if err == nil && info.NeedsRepair() {
	    fmt.Println("needs repair")
	}

# Errors

Failures match one of ErrNotFound, ErrUnrecoverableFormat or ErrIO with
errors.Is. An unrecoverable format error also matches ErrStructural.

# Concurrency

A repair assumes exclusive access to the file. Separate files may be
repaired from separate goroutines.
*/
package oggfix
