package repair

import (
	"bytes"
	"errors"
	"io"

	"github.com/joshuapare/oggfix/internal/format"
)

// DefaultWindowSize is the number of bytes the scanner reads per step.
const DefaultWindowSize = 4000

// Scanner searches a file backward for the page capture pattern.
//
// Windows are read from the origin toward offset 0. Consecutive windows
// overlap by len(pattern)-1 bytes so a pattern straddling a window boundary
// is still seen whole in the earlier window.
type Scanner struct {
	r       io.ReaderAt
	pattern []byte
	chunk   []byte
}

// NewScanner returns a scanner over r. A window smaller than the pattern
// selects DefaultWindowSize.
func NewScanner(r io.ReaderAt, window int) *Scanner {
	if window < format.SignatureSize {
		window = DefaultWindowSize
	}
	return &Scanner{
		r:       r,
		pattern: format.OggSignature,
		chunk:   make([]byte, window),
	}
}

// FindLast returns the highest offset below origin at which the whole
// pattern occurs before origin (offset+len(pattern) <= origin). found is
// false when the start of the file is reached without a match.
func (s *Scanner) FindLast(origin int64) (offset int64, found bool, err error) {
	overlap := int64(len(s.pattern) - 1)
	end := origin
	for end >= int64(len(s.pattern)) {
		start := max(end-int64(len(s.chunk)), 0)
		chunk := s.chunk[:end-start]

		n, rerr := s.r.ReadAt(chunk, start)
		if n < len(chunk) {
			if rerr == nil || errors.Is(rerr, io.EOF) {
				rerr = io.ErrUnexpectedEOF
			}
			return -1, false, rerr
		}

		if i := bytes.LastIndex(chunk, s.pattern); i >= 0 {
			return start + int64(i), true, nil
		}
		if start == 0 {
			break
		}
		end = start + overlap
	}
	return -1, false, nil
}
