package repair

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/oggfix/internal/format"
)

// makePage assembles a complete page with a valid checksum. The payload
// bytes count upward and never contain the capture pattern.
func makePage(flags byte, seq uint32, segs []byte) []byte {
	payload := 0
	for _, s := range segs {
		payload += int(s)
	}
	b := make([]byte, format.HeaderFixedSize+len(segs)+payload)
	copy(b, format.OggSignature)
	b[format.PageFlagsOffset] = flags
	binary.LittleEndian.PutUint64(b[format.PageGranuleOffset:], uint64(seq)*960)
	binary.LittleEndian.PutUint32(b[format.PageSerialOffset:], 0x5EED)
	binary.LittleEndian.PutUint32(b[format.PageSequenceOffset:], seq)
	b[format.PageSegCountOffset] = byte(len(segs))
	copy(b[format.PageSegTableOffset:], segs)
	for i := format.HeaderFixedSize + len(segs); i < len(b); i++ {
		b[i] = byte(i % 251)
	}
	binary.LittleEndian.PutUint32(b[format.PageChecksumOffset:], format.Checksum(b))
	return b
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func writeTestFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "track.ogg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func readTestFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading test file: %v", err)
	}
	return data
}

// lastPage parses the page at off in data, which must run to the end.
func lastPage(t *testing.T, data []byte, off int) *format.Page {
	t.Helper()
	p, err := format.ParsePage(append([]byte(nil), data[off:]...))
	if err != nil {
		t.Fatalf("parsing page at %d: %v", off, err)
	}
	return p
}
