// Package format houses the low-level view of the Ogg page layout. The goal
// is to keep parsing bounds-checked at construction and independent from the
// repair pipeline so higher-level packages only deal with typed accessors.
package format

// OggSignature is the capture pattern at the start of every page.
// Layout:
//
//	0x00  'O' 'g' 'g' 'S'
var OggSignature = []byte{'O', 'g', 'g', 'S'}

const (
	// SignatureSize is the length of the capture pattern.
	SignatureSize = 4

	// HeaderFixedSize is the size of the page preamble preceding the segment
	// table. The full header is HeaderFixedSize + segment count.
	HeaderFixedSize = 27

	// MaxSegments is the largest segment count an unsigned byte can declare.
	MaxSegments = 255

	// MaxSegmentSize is the largest lacing value. A segment of this size means
	// the packet continues in the next segment.
	MaxSegmentSize = 255

	// MaxPageSize is the largest page the layout can describe:
	// 27 + 255 table entries + 255*255 payload bytes.
	MaxPageSize = HeaderFixedSize + MaxSegments + MaxSegments*MaxSegmentSize
)

// Page header field offsets (relative to the page start).
const (
	PageSignatureOffset = 0x00 // 4 bytes, "OggS"
	PageVersionOffset   = 0x04 // 1 byte, stream structure version
	PageFlagsOffset     = 0x05 // 1 byte, header type flags
	PageGranuleOffset   = 0x06 // 8 bytes LE, granule position
	PageSerialOffset    = 0x0E // 4 bytes LE, bitstream serial number
	PageSequenceOffset  = 0x12 // 4 bytes LE, page sequence number
	PageChecksumOffset  = 0x16 // 4 bytes LE, CRC
	PageSegCountOffset  = 0x1A // 1 byte, number of segments
	PageSegTableOffset  = 0x1B // segment table, one byte per segment

	PageChecksumSize = 4
)

// Header type flag bits (byte at PageFlagsOffset).
const (
	FlagContinued   byte = 0x01 // first packet continues from the previous page
	FlagBeginStream byte = 0x02 // first page of a logical bitstream (BOS)
	FlagEndStream   byte = 0x04 // last page of a logical bitstream (EOS)
)
