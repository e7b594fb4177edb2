package oggfix

import (
	"log/slog"

	"github.com/joshuapare/oggfix/internal/repair"
)

// Options controls a repair.
type Options struct {
	// DryRun computes the repair and reports it without writing.
	DryRun bool

	// BackupSuffix, when set, copies the file to <path><suffix>.<timestamp>
	// before the first write. No backup is made when nothing changes.
	BackupSuffix string

	// WindowSize is the backward scan window in bytes. Zero selects 4000.
	WindowSize int

	// Logger receives progress records. Nil uses the package-wide logger,
	// which discards output unless the CLI enabled it.
	Logger *slog.Logger
}

// Result describes the outcome of a repair (re-exported for convenience).
type Result = repair.Result

// PageInfo is a read-only report on a trailing page (re-exported for convenience).
type PageInfo = repair.PageInfo

// LogEntry is one header field written by a repair (re-exported for convenience).
type LogEntry = repair.LogEntry

// Error is the typed error returned by every operation.
type Error = repair.RepairError

// Sentinel errors, matched with errors.Is.
var (
	ErrNotFound            = repair.ErrNotFound
	ErrStructural          = repair.ErrStructural
	ErrUnrecoverableFormat = repair.ErrUnrecoverableFormat
	ErrIO                  = repair.ErrIO
)

// Fix repairs the file at path in place with default options.
func Fix(path string) error {
	_, err := FixWithOptions(path, Options{})
	return err
}

// FixWithOptions repairs the file at path. The result is returned even
// when err is non-nil.
func FixWithOptions(path string, opts Options) (*Result, error) {
	return newEngine(opts).Repair(path)
}

// Inspect reports on the trailing page of the file at path without
// modifying it.
func Inspect(path string) (*PageInfo, error) {
	return newEngine(Options{}).Inspect(path)
}

// ExportPatches renders the header fields a repair wrote as text.
func ExportPatches(entries []LogEntry) string {
	return repair.ExportEntries(entries)
}

func newEngine(opts Options) *repair.Engine {
	return repair.NewEngine(repair.EngineConfig{
		DryRun:       opts.DryRun,
		BackupSuffix: opts.BackupSuffix,
		WindowSize:   opts.WindowSize,
		Logger:       opts.Logger,
	})
}
