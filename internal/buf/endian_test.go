package buf

import "testing"

func TestEndianHelpers(t *testing.T) {
	data := []byte{0x01, 0x23, 0x45, 0x67, 0x89, 0xab, 0xcd, 0xef}

	if got := U32LE(data); got != 0x67452301 {
		t.Fatalf("U32LE = 0x%x, want 0x67452301", got)
	}
	if got := U64LE(data); got != 0xefcdab8967452301 {
		t.Fatalf("U64LE = 0x%x, want 0xefcdab8967452301", got)
	}

	short := []byte{0xAA}
	if U32LE(short) != 0 || U64LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
}

func TestPutU32LE(t *testing.T) {
	b := make([]byte, 6)
	if !PutU32LE(b[1:], 0xDEADBEEF) {
		t.Fatalf("PutU32LE reported short buffer")
	}
	want := []byte{0x00, 0xEF, 0xBE, 0xAD, 0xDE, 0x00}
	for i := range want {
		if b[i] != want[i] {
			t.Fatalf("byte %d = 0x%02x, want 0x%02x", i, b[i], want[i])
		}
	}
	if PutU32LE(b[:3], 1) {
		t.Fatalf("PutU32LE should refuse a 3-byte buffer")
	}
	if b[0] != 0x00 || b[1] != 0xEF {
		t.Fatalf("short PutU32LE modified the buffer")
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3}
	Zero(b[1:])
	if b[0] != 1 || b[1] != 0 || b[2] != 0 {
		t.Fatalf("Zero = %v", b)
	}
}
