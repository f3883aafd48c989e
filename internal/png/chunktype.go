package png

import "fmt"

// ChunkType is the 4-byte code naming a chunk. The case of each byte
// encodes one property bit (bit 5): ancillary, private, reserved, safe-to-copy.
type ChunkType struct {
	b [4]byte
}

// ChunkTypeFromBytes validates b and returns it as a ChunkType.
func ChunkTypeFromBytes(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isLetter(c) {
			return ChunkType{}, fmt.Errorf("%w: byte %d is %#02x, want A-Z or a-z", ErrInvalidChunkType, i, c)
		}
	}
	return ChunkType{b: b}, nil
}

// ParseChunkType parses a 4-character code such as "IHDR" or "ruSt".
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 {
		return ChunkType{}, fmt.Errorf("%w: %q has %d bytes, want 4", ErrInvalidChunkType, s, len(s))
	}
	var b [4]byte
	copy(b[:], s)
	t, err := ChunkTypeFromBytes(b)
	if err != nil {
		return ChunkType{}, fmt.Errorf("%q: %w", s, err)
	}
	return t, nil
}

// chunkTypeOf wraps raw bytes read from a file without validating them.
func chunkTypeOf(b [4]byte) ChunkType {
	return ChunkType{b: b}
}

func (t ChunkType) Bytes() [4]byte {
	return t.b
}

func (t ChunkType) String() string {
	return string(t.b[:])
}

// IsCritical reports whether a decoder must understand the chunk to display the image.
func (t ChunkType) IsCritical() bool {
	return isUpper(t.b[0])
}

// IsPublic reports whether the type is part of the PNG standard registry.
func (t ChunkType) IsPublic() bool {
	return isUpper(t.b[1])
}

// IsReservedBitValid reports whether the third byte is uppercase, as conforming files require.
func (t ChunkType) IsReservedBitValid() bool {
	return isUpper(t.b[2])
}

// IsSafeToCopy reports whether editors that don't recognise the chunk may copy it unchanged.
func (t ChunkType) IsSafeToCopy() bool {
	return isLower(t.b[3])
}

// IsValid checks the reserved bit and the letter range of every byte.
func (t ChunkType) IsValid() bool {
	if !t.IsReservedBitValid() {
		return false
	}
	for _, c := range t.b {
		if !isLetter(c) {
			return false
		}
	}
	return true
}

func isUpper(c byte) bool  { return c >= 'A' && c <= 'Z' }
func isLower(c byte) bool  { return c >= 'a' && c <= 'z' }
func isLetter(c byte) bool { return isUpper(c) || isLower(c) }
