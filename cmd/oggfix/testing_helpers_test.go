package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/oggfix/internal/format"
)

// testPage builds a page with a valid checksum and zeroed payload.
func testPage(flags byte, seq uint32, segs ...byte) []byte {
	n := format.HeaderFixedSize + len(segs)
	for _, s := range segs {
		n += int(s)
	}
	b := make([]byte, n)
	copy(b, format.OggSignature)
	b[format.PageFlagsOffset] = flags
	binary.LittleEndian.PutUint32(b[format.PageSequenceOffset:], seq)
	b[format.PageSegCountOffset] = byte(len(segs))
	copy(b[format.PageSegTableOffset:], segs)
	binary.LittleEndian.PutUint32(b[format.PageChecksumOffset:], format.Checksum(b))
	return b
}

// testFile writes data to a fresh file and returns its path.
func testFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	return path
}

// truncatedOgg returns a two-page file whose last page lost 100 bytes.
func truncatedOgg() []byte {
	first := testPage(format.FlagBeginStream, 0, 16)
	last := testPage(0, 1, 255, 120)
	return append(first, last[:len(last)-100]...)
}

// validOgg returns a complete two-page file.
func validOgg() []byte {
	return append(testPage(format.FlagBeginStream, 0, 16), testPage(format.FlagEndStream, 1, 64)...)
}

// resetFlags restores every command flag to its default.
func resetFlags() {
	verbose = false
	quiet = false
	jsonOut = false
	noColor = true
	repairDryRun = false
	repairBackupSuffix = ".backup"
	repairNoBackup = false
	repairWindow = 0
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Drain concurrently so large outputs don't block on the pipe buffer
	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout
	<-done

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
