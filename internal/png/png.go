// Package png reads and writes the chunk layer of PNG files.
//
// A file is the 8-byte signature followed by chunks:
//
//	length (4, big endian) | type (4) | data (length) | crc (4, big endian)
//
// The crc covers type and data. Nothing above the framing is interpreted:
// IHDR, IDAT and IEND are opaque chunks like any other, and no ordering
// rules are enforced.
package png

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
)

// Signature is the magic that opens every PNG file.
var Signature = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// Png is an ordered list of chunks behind the signature. File order is kept.
type Png struct {
	chunks []*Chunk
}

// New returns a container holding chunks in the given order.
func New(chunks ...*Chunk) *Png {
	return &Png{chunks: slices.Clone(chunks)}
}

// Parse decodes a whole file. Bytes(Parse(buf)) reproduces buf exactly.
func Parse(buf []byte) (*Png, error) {
	if len(buf) < len(Signature) || !bytes.Equal(buf[:len(Signature)], Signature[:]) {
		return nil, ErrBadSignature
	}

	p := &Png{}
	offset := len(Signature)
	for offset < len(buf) {
		c, err := ParseChunk(buf[offset:])
		if err != nil {
			return nil, fmt.Errorf("chunk %d at offset %d: %w", len(p.chunks), offset, err)
		}
		p.chunks = append(p.chunks, c)
		offset += c.Size()
	}

	return p, nil
}

// Chunks returns the chunk sequence in file order.
func (p *Png) Chunks() []*Chunk {
	return slices.Clone(p.chunks)
}

// AppendChunk adds c at the end of the sequence. It is up to the caller
// to keep it ahead of IEND if that matters to them.
func (p *Png) AppendChunk(c *Chunk) {
	p.chunks = append(p.chunks, c)
}

// InsertChunkBefore puts c right in front of the first chunk of type code.
func (p *Png) InsertChunkBefore(code string, c *Chunk) error {
	i := p.index(code)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrChunkNotFound, code)
	}
	p.chunks = slices.Insert(p.chunks, i, c)
	return nil
}

// ChunkByType returns the first chunk of type code, or nil.
func (p *Png) ChunkByType(code string) *Chunk {
	if i := p.index(code); i >= 0 {
		return p.chunks[i]
	}
	return nil
}

// RemoveChunk removes and returns the first chunk of type code.
func (p *Png) RemoveChunk(code string) (*Chunk, error) {
	i := p.index(code)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrChunkNotFound, code)
	}
	c := p.chunks[i]
	p.chunks = slices.Delete(p.chunks, i, i+1)
	return c, nil
}

func (p *Png) index(code string) int {
	return slices.IndexFunc(p.chunks, func(c *Chunk) bool {
		return c.Type().String() == code
	})
}

// Size is the length of the serialized file.
func (p *Png) Size() int {
	n := len(Signature)
	for _, c := range p.chunks {
		n += c.Size()
	}
	return n
}

// Bytes serializes the signature followed by every chunk in order.
func (p *Png) Bytes() []byte {
	out := make([]byte, 0, p.Size())
	out = append(out, Signature[:]...)
	for _, c := range p.chunks {
		out = c.AppendTo(out)
	}
	return out
}

func (p *Png) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PNG (%d chunks, %d bytes)\n", len(p.chunks), p.Size())
	for i, c := range p.chunks {
		fmt.Fprintf(&b, "%3d  %s\n", i, c)
	}
	return b.String()
}
