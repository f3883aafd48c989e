package png

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidChunkType indicates a type code that is not 4 ASCII letters.
	ErrInvalidChunkType = errors.New("invalid chunk type")

	// ErrTruncated indicates a buffer shorter than its framing declares.
	ErrTruncated = errors.New("truncated chunk")

	// ErrCRCMismatch indicates a stored checksum that does not match the chunk contents.
	ErrCRCMismatch = errors.New("crc mismatch")

	// ErrBadSignature indicates the first 8 bytes are not the PNG magic.
	ErrBadSignature = errors.New("not a png: bad signature")

	// ErrChunkNotFound indicates no chunk of the requested type exists.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrInvalidUTF8 indicates a payload requested as text is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("chunk data is not valid utf-8")

	// ErrChunkTooLarge indicates a payload whose length does not fit in 32 bits.
	ErrChunkTooLarge = errors.New("chunk data too large")
)

// CRCMismatchError carries both checksums of a chunk that failed verification.
type CRCMismatchError struct {
	Type     ChunkType
	Expected uint32 // stored in the file
	Actual   uint32 // recomputed over type ++ data
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("%v: chunk %q: expected %08x, got %08x", ErrCRCMismatch, e.Type.String(), e.Expected, e.Actual)
}

func (e *CRCMismatchError) Is(target error) bool {
	return target == ErrCRCMismatch
}
