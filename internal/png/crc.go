package png

import "hash/crc32"

// PNG uses CRC-32/ISO-HDLC: reflected polynomial 0xedb88320, init and
// final xor 0xffffffff. That is exactly crc32.IEEE.
var crcTable = crc32.MakeTable(crc32.IEEE)

// checksum is the CRC of a chunk, computed over the type code followed by the data.
// Construction and verification both go through here.
func checksum(t ChunkType, data []byte) uint32 {
	b := t.Bytes()
	crc := crc32.Update(0, crcTable, b[:])
	return crc32.Update(crc, crcTable, data)
}
