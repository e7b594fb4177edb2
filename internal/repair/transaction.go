package repair

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// PatchLog records every header field the patch step writes, enabling a
// best-effort rollback if a later write fails.
type PatchLog struct {
	entries []LogEntry
}

// LogEntry records a single field write.
type LogEntry struct {
	Field     string    // Header field name
	Offset    int64     // Absolute file offset of the field
	Size      int       // Number of bytes written
	OldData   []byte    // Bytes on disk before the write (for rollback)
	NewData   []byte    // Bytes written
	Timestamp time.Time // When the write was attempted
	Applied   bool      // Whether the write succeeded
}

// Changed reports whether the write altered the bytes on disk.
func (e LogEntry) Changed() bool {
	return string(e.OldData) != string(e.NewData)
}

// NewPatchLog creates a new patch log.
func NewPatchLog() *PatchLog {
	return &PatchLog{
		entries: make([]LogEntry, 0, 3), // flags, checksum, segment table
	}
}

// AddEntry logs a field write before it is performed.
func (pl *PatchLog) AddEntry(field string, offset int64, oldData, newData []byte) {
	pl.entries = append(pl.entries, LogEntry{
		Field:     field,
		Offset:    offset,
		Size:      len(newData),
		OldData:   append([]byte(nil), oldData...),
		NewData:   append([]byte(nil), newData...),
		Timestamp: time.Now(),
	})
}

// MarkApplied marks the most recent entry as successfully written.
func (pl *PatchLog) MarkApplied() error {
	if len(pl.entries) == 0 {
		return fmt.Errorf("patch log: no entries to mark applied")
	}
	pl.entries[len(pl.entries)-1].Applied = true
	return nil
}

// Rollback writes the old bytes of every applied entry back, most recent
// first. It returns the number of entries restored.
func (pl *PatchLog) Rollback(w io.WriterAt) (int, error) {
	rolled := 0
	for i := len(pl.entries) - 1; i >= 0; i-- {
		entry := pl.entries[i]
		if !entry.Applied {
			continue
		}
		if _, err := w.WriteAt(entry.OldData, entry.Offset); err != nil {
			return rolled, fmt.Errorf("patch log: restoring %s at 0x%X: %w", entry.Field, entry.Offset, err)
		}
		pl.entries[i].Applied = false
		rolled++
	}
	return rolled, nil
}

// AppliedCount returns the number of successfully written entries.
func (pl *PatchLog) AppliedCount() int {
	count := 0
	for _, entry := range pl.entries {
		if entry.Applied {
			count++
		}
	}
	return count
}

// TotalCount returns the total number of entries in the log.
func (pl *PatchLog) TotalCount() int {
	return len(pl.entries)
}

// Export generates a human-readable summary of all writes.
func (pl *PatchLog) Export() string {
	return ExportEntries(pl.entries)
}

// ExportEntries renders entries the way PatchLog.Export does.
func ExportEntries(entries []LogEntry) string {
	if len(entries) == 0 {
		return "Patch log: empty"
	}

	applied := 0
	for _, entry := range entries {
		if entry.Applied {
			applied++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Patch log: %d entries (%d applied)\n", len(entries), applied)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")

	for i, entry := range entries {
		status := "PENDING"
		if entry.Applied {
			status = "APPLIED"
		}
		if !entry.Changed() {
			status += " (unchanged)"
		}

		fmt.Fprintf(&sb, "\n[%d] %s - %s\n", i+1, status, entry.Field)
		fmt.Fprintf(&sb, "  Offset:   0x%08X\n", entry.Offset)
		fmt.Fprintf(&sb, "  Size:     %d bytes\n", entry.Size)

		// Segment tables can run to 255 bytes; show the first 32.
		show := min(entry.Size, 32)
		fmt.Fprintf(&sb, "  Before:   % X", entry.OldData[:min(show, len(entry.OldData))])
		if entry.Size > 32 {
			sb.WriteString(" ...")
		}
		sb.WriteString("\n")
		fmt.Fprintf(&sb, "  After:    % X", entry.NewData[:show])
		if entry.Size > 32 {
			sb.WriteString(" ...")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Entries returns a copy of all log entries.
func (pl *PatchLog) Entries() []LogEntry {
	entries := make([]LogEntry, len(pl.entries))
	copy(entries, pl.entries)
	return entries
}

// Clear removes all entries from the log.
func (pl *PatchLog) Clear() {
	pl.entries = pl.entries[:0]
}
