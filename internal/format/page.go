package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/oggfix/internal/buf"
)

// Page is a typed view over a buffer that starts at a page's capture pattern
// and runs to the end of the available data. The buffer may hold fewer bytes
// than the header declares (a truncated page) or more (trailing garbage).
//
// Header layout (little-endian):
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    'O' 'g' 'g' 'S'
//	 0x04    1    Stream structure version
//	 0x05    1    Header type flags (continued, BOS, EOS)
//	 0x06    8    Granule position
//	 0x0E    4    Bitstream serial number
//	 0x12    4    Page sequence number
//	 0x16    4    CRC checksum
//	 0x1A    1    Segment count
//	 0x1B    n    Segment table
//
// The payload follows the segment table; its length is the sum of the table.
type Page struct {
	raw []byte
}

// ParsePage validates the fixed header and the segment table length in b and
// returns a Page that owns b. Mutating accessors write through to b, so the
// caller must not reuse it.
func ParsePage(b []byte) (*Page, error) {
	if len(b) < HeaderFixedSize {
		return nil, fmt.Errorf("page header: %d bytes available: %w", len(b), ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], OggSignature) {
		return nil, fmt.Errorf("page header: %w", ErrSignatureMismatch)
	}
	n := int(b[PageSegCountOffset])
	if !buf.Has(b, PageSegTableOffset, n) {
		return nil, fmt.Errorf("page header: segment table of %d entries exceeds %d available bytes: %w",
			n, len(b), ErrTruncated)
	}
	return &Page{raw: b}, nil
}

// Version returns the stream structure version.
func (p *Page) Version() byte { return p.raw[PageVersionOffset] }

// Flags returns the header type flags.
func (p *Page) Flags() byte { return p.raw[PageFlagsOffset] }

// HasFlag reports whether every bit of f is set.
func (p *Page) HasFlag(f byte) bool { return p.raw[PageFlagsOffset]&f == f }

// SetFlag sets the bits of f and leaves the others untouched. It reports
// whether the flag byte changed.
func (p *Page) SetFlag(f byte) bool {
	old := p.raw[PageFlagsOffset]
	p.raw[PageFlagsOffset] = old | f
	return old != p.raw[PageFlagsOffset]
}

// EndOfStream reports whether the EOS flag is set.
func (p *Page) EndOfStream() bool { return p.HasFlag(FlagEndStream) }

// GranulePosition returns the granule position.
func (p *Page) GranulePosition() uint64 { return buf.U64LE(p.raw[PageGranuleOffset:]) }

// SerialNumber returns the bitstream serial number.
func (p *Page) SerialNumber() uint32 { return buf.U32LE(p.raw[PageSerialOffset:]) }

// SequenceNumber returns the page sequence number.
func (p *Page) SequenceNumber() uint32 { return buf.U32LE(p.raw[PageSequenceOffset:]) }

// StoredChecksum returns the checksum as stored in the header.
func (p *Page) StoredChecksum() uint32 { return buf.U32LE(p.raw[PageChecksumOffset:]) }

// SetChecksum stores crc in the header.
func (p *Page) SetChecksum(crc uint32) {
	buf.PutU32LE(p.raw[PageChecksumOffset:], crc)
}

// SegmentCount returns the number of segment table entries.
func (p *Page) SegmentCount() int { return int(p.raw[PageSegCountOffset]) }

// Segments returns the segment table. The slice aliases the page buffer.
func (p *Page) Segments() []byte {
	return p.raw[PageSegTableOffset : PageSegTableOffset+p.SegmentCount()]
}

// HeaderSize returns the size of the fixed header plus the segment table.
func (p *Page) HeaderSize() int { return HeaderFixedSize + p.SegmentCount() }

// Header returns the header bytes, segment table included. The slice aliases
// the page buffer.
func (p *Page) Header() []byte { return p.raw[:p.HeaderSize()] }

// PayloadSize returns the payload length the segment table declares.
func (p *Page) PayloadSize() int {
	sum := 0
	for _, s := range p.Segments() {
		sum += int(s)
	}
	return sum
}

// DeclaredSize returns the page size the header declares.
func (p *Page) DeclaredSize() int { return p.HeaderSize() + p.PayloadSize() }

// Available returns the number of bytes held from the page start onward.
func (p *Page) Available() int { return len(p.raw) }

// Truncated reports whether the header declares more bytes than are available.
func (p *Page) Truncated() bool { return p.DeclaredSize() > len(p.raw) }

// FitSegments makes the segment table agree with the available bytes.
// Segments are accumulated in table order starting from the header size; at
// the first segment that would run past the available data, accumulation
// stops and that entry and every later one is set to zero. The table keeps
// its length, so the header size is unchanged.
//
// It returns the resulting page size and the index of the first zeroed
// entry, which equals SegmentCount when every segment fits.
func (p *Page) FitSegments() (size, cutoff int) {
	segs := p.Segments()
	size = p.HeaderSize()
	for cutoff = 0; cutoff < len(segs); cutoff++ {
		next := size + int(segs[cutoff])
		if next > len(p.raw) {
			break
		}
		size = next
	}
	buf.Zero(segs[cutoff:])
	return size, cutoff
}

// ComputeChecksum returns the CRC of the first size bytes of the page with
// the checksum field counted as zero. The page buffer is not modified. size
// is clamped to [HeaderSize, Available].
func (p *Page) ComputeChecksum(size int) uint32 {
	size = max(min(size, len(p.raw)), p.HeaderSize())
	var zero [PageChecksumSize]byte
	crc := UpdateChecksum(0, p.raw[:PageChecksumOffset])
	crc = UpdateChecksum(crc, zero[:])
	return UpdateChecksum(crc, p.raw[PageChecksumOffset+PageChecksumSize:size])
}

// ChecksumValid reports whether the stored checksum matches the CRC of the
// first size bytes.
func (p *Page) ChecksumValid(size int) bool {
	return p.StoredChecksum() == p.ComputeChecksum(size)
}
