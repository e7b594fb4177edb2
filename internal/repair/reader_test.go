package repair

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReadPage(t *testing.T) {
	data := []byte("0123456789")
	got, err := ReadPage(bytes.NewReader(data), 4, int64(len(data)))
	if err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if string(got) != "456789" {
		t.Fatalf("ReadPage = %q", got)
	}

	got, err = ReadPage(bytes.NewReader(data), 10, 10)
	if err != nil || len(got) != 0 {
		t.Fatalf("ReadPage at end = (%q, %v)", got, err)
	}
}

func TestReadPage_Errors(t *testing.T) {
	data := []byte("0123456789")
	if _, err := ReadPage(bytes.NewReader(data), 11, 10); err == nil {
		t.Fatalf("expected error for offset past size")
	}
	if _, err := ReadPage(bytes.NewReader(data), -1, 10); err == nil {
		t.Fatalf("expected error for negative offset")
	}
	// Size measured larger than the data now present.
	if _, err := ReadPage(bytes.NewReader(data), 4, 20); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
}
