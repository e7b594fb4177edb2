package repair

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// tempPattern names the scratch file created next to the target.
const tempPattern = ".oggfix-*.tmp"

// Writer provides atomic file replacement for the truncation step and for
// backups. All writes use the temp-file-then-rename pattern: either the
// whole new file is in place or the original is untouched.
type Writer struct{}

// NewWriter creates a new writer.
func NewWriter() *Writer {
	return &Writer{}
}

// TruncateAtomic replaces the file at path with its first size bytes.
// It reports whether the file was replaced; a file already exactly size
// bytes long is left alone. The replacement keeps the original's
// permission bits.
func (w *Writer) TruncateAtomic(path string, size int64) (bool, error) {
	src, err := os.Open(path)
	if err != nil {
		return false, fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return false, fmt.Errorf("stat source file: %w", err)
	}
	switch {
	case stat.Size() == size:
		return false, nil
	case stat.Size() < size:
		return false, fmt.Errorf("cannot truncate %d-byte file to %d bytes", stat.Size(), size)
	}

	if err := w.writeAtomic(path, src, size, stat.Mode().Perm()); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic writes exactly n bytes from r to path atomically.
//
// Steps:
//  1. Create temporary file in same directory as target
//  2. Copy n bytes into it
//  3. Fsync temp file to ensure data is on disk
//  4. Rename temp file over the target (atomic operation)
//  5. Fsync parent directory to ensure rename is persisted
//
// If any step fails, the temp file is cleaned up and the target is left as
// it was.
func (w *Writer) writeAtomic(path string, r io.Reader, n int64, mode fs.FileMode) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}

	dir := filepath.Dir(absPath)

	// Same directory means same filesystem, which rename needs to be atomic.
	tmpFile, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	if _, copyErr := io.CopyN(tmpFile, r, n); copyErr != nil {
		cleanup()
		return fmt.Errorf("copying %d bytes to temp file: %w", n, copyErr)
	}

	if chmodErr := tmpFile.Chmod(mode); chmodErr != nil {
		cleanup()
		return fmt.Errorf("setting temp file mode: %w", chmodErr)
	}

	if syncErr := tmpFile.Sync(); syncErr != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", syncErr)
	}

	// Close before rename (required on Windows)
	if closeErr := tmpFile.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if renameErr := os.Rename(tmpPath, absPath); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}

	// The data is already in place; a directory that cannot be synced
	// (Windows, some network filesystems) does not fail the write.
	_ = syncDir(dir)

	return nil
}

// CreateBackup copies the file to a timestamped sibling before any write.
// The backup is verified by size after creation.
//
// Backup naming: <original><suffix>.<timestamp>
// Example: track.ogg.bak.20060102-150405.
func (w *Writer) CreateBackup(path, suffix string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("source file not found: %w", err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return "", fmt.Errorf("stat source file: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	// Don't add extra dot if suffix already starts with one
	var backupPath string
	if suffix != "" && suffix[0] == '.' {
		backupPath = fmt.Sprintf("%s%s.%s", path, suffix, timestamp)
	} else {
		backupPath = fmt.Sprintf("%s.%s.%s", path, suffix, timestamp)
	}

	if writeErr := w.writeAtomic(backupPath, src, stat.Size(), stat.Mode().Perm()); writeErr != nil {
		return "", fmt.Errorf("writing backup: %w", writeErr)
	}

	if verifyErr := verifyBackup(backupPath, stat.Size()); verifyErr != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", verifyErr)
	}

	return backupPath, nil
}

// syncDir fsyncs a directory to ensure metadata changes are persisted.
// This is necessary after rename operations to ensure crash consistency.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	defer d.Close()

	if syncErr := d.Sync(); syncErr != nil {
		return fmt.Errorf("syncing directory: %w", syncErr)
	}

	return nil
}

// verifyBackup checks that the backup exists and has the expected size.
func verifyBackup(path string, expectedSize int64) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}

	if stat.Size() != expectedSize {
		return fmt.Errorf("backup size mismatch: expected %d, got %d", expectedSize, stat.Size())
	}

	return nil
}
