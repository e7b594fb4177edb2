package format

// ChecksumPolynomial is the generator polynomial of the page CRC. Unlike
// hash/crc32 the register is not reflected, starts at zero and has no final
// xor.
const ChecksumPolynomial uint32 = 0x04C11DB7

var crcTable = makeCRCTable(ChecksumPolynomial)

func makeCRCTable(poly uint32) *[256]uint32 {
	t := new([256]uint32)
	for i := range t {
		r := uint32(i) << 24
		for range 8 {
			if r&0x80000000 != 0 {
				r = r<<1 ^ poly
			} else {
				r <<= 1
			}
		}
		t[i] = r
	}
	return t
}

// UpdateChecksum returns the result of adding the bytes in p to crc.
func UpdateChecksum(crc uint32, p []byte) uint32 {
	for _, b := range p {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return crc
}

// Checksum returns the page CRC of data.
func Checksum(data []byte) uint32 {
	return UpdateChecksum(0, data)
}
