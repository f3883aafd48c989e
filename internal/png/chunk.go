package png

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	lengthSize = 4
	typeSize   = 4
	crcSize    = 4

	// chunkOverhead is the framing around the payload: length, type, crc.
	chunkOverhead = lengthSize + typeSize + crcSize
)

// Chunk is one length-framed, checksummed unit of a PNG file.
// A Chunk is immutable once built.
type Chunk struct {
	length uint32
	typ    ChunkType
	data   []byte
	crc    uint32
}

// NewChunk builds a chunk around data and computes its checksum.
func NewChunk(t ChunkType, data []byte) (*Chunk, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrChunkTooLarge, len(data))
	}
	data = bytes.Clone(data)
	if data == nil {
		data = []byte{}
	}
	return &Chunk{
		length: uint32(len(data)),
		typ:    t,
		data:   data,
		crc:    checksum(t, data),
	}, nil
}

// ParseChunk decodes the chunk starting at buf[0]. Anything after the
// chunk is ignored; Size tells the caller how far to advance.
//
// The type code is taken as is. Whether it is a well-formed code is a
// question for ChunkType.IsValid, not a framing error.
func ParseChunk(buf []byte) (*Chunk, error) {
	if len(buf) < chunkOverhead {
		return nil, fmt.Errorf("%w: have %d bytes, need at least %d", ErrTruncated, len(buf), chunkOverhead)
	}

	length := binary.BigEndian.Uint32(buf[:lengthSize])
	// check the declared length against what we actually have before touching the payload
	if uint64(length) > uint64(len(buf)-chunkOverhead) {
		return nil, fmt.Errorf("%w: declared length %d, only %d bytes left", ErrTruncated, length, len(buf)-chunkOverhead)
	}

	var tb [4]byte
	copy(tb[:], buf[lengthSize:lengthSize+typeSize])
	t := chunkTypeOf(tb)

	start := lengthSize + typeSize
	end := start + int(length)
	data := bytes.Clone(buf[start:end])
	if data == nil {
		data = []byte{}
	}

	stored := binary.BigEndian.Uint32(buf[end : end+crcSize])
	if actual := checksum(t, data); actual != stored {
		return nil, &CRCMismatchError{Type: t, Expected: stored, Actual: actual}
	}

	return &Chunk{length: length, typ: t, data: data, crc: stored}, nil
}

func (c *Chunk) Length() uint32 {
	return c.length
}

func (c *Chunk) Type() ChunkType {
	return c.typ
}

func (c *Chunk) CRC() uint32 {
	return c.crc
}

// Data returns a copy of the payload.
func (c *Chunk) Data() []byte {
	return bytes.Clone(c.data)
}

// Size is the number of bytes the chunk occupies on disk.
func (c *Chunk) Size() int {
	return chunkOverhead + len(c.data)
}

// DataAsText interprets the payload as UTF-8.
func (c *Chunk) DataAsText() (string, error) {
	if !utf8.Valid(c.data) {
		return "", fmt.Errorf("%w: chunk %q", ErrInvalidUTF8, c.typ.String())
	}
	return string(c.data), nil
}

// AppendTo appends the serialized chunk to dst and returns the extended slice.
func (c *Chunk) AppendTo(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, c.length)
	tb := c.typ.Bytes()
	dst = append(dst, tb[:]...)
	dst = append(dst, c.data...)
	return binary.BigEndian.AppendUint32(dst, c.crc)
}

// Bytes serializes the chunk: length, type, data, crc.
func (c *Chunk) Bytes() []byte {
	return c.AppendTo(make([]byte, 0, c.Size()))
}

func (c *Chunk) String() string {
	return fmt.Sprintf("%s length=%d crc=%08x", c.typ.String(), c.length, c.crc)
}
