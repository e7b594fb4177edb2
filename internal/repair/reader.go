package repair

import (
	"fmt"
	"io"
	"math"
)

// ReadPage reads every byte from offset up to size (the file length) into a
// new buffer. A short read, including one caused by the file shrinking
// underneath us, is an error.
func ReadPage(r io.ReaderAt, offset, size int64) ([]byte, error) {
	if offset < 0 || offset > size {
		return nil, fmt.Errorf("page offset %d outside file of %d bytes", offset, size)
	}
	n := size - offset
	if n > math.MaxInt {
		return nil, fmt.Errorf("page region of %d bytes too large to buffer", n)
	}
	page := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(r, offset, n), page); err != nil {
		return nil, fmt.Errorf("reading %d bytes at offset %d: %w", n, offset, err)
	}
	return page, nil
}
