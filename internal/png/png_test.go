package png

import (
	"bytes"
	"image"
	"image/color"
	stdpng "image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPNG is the signature followed by a lone IEND chunk.
func minimalPNG() []byte {
	buf := append([]byte(nil), Signature[:]...)
	return append(buf, 0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xAE, 0x42, 0x60, 0x82)
}

// encodedPNG is a real image produced by the standard library encoder.
func encodedPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for x := 0; x < 4; x++ {
		img.Set(x, x%3, color.RGBA{R: 200, G: uint8(x * 40), B: 10, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, stdpng.Encode(&buf, img))
	return buf.Bytes()
}

func mustChunk(t *testing.T, code, data string) *Chunk {
	t.Helper()
	c, err := NewChunk(mustType(t, code), []byte(data))
	require.NoError(t, err)
	return c
}

func chunkTypes(p *Png) []string {
	var out []string
	for _, c := range p.Chunks() {
		out = append(out, c.Type().String())
	}
	return out
}

func TestParse_Minimal(t *testing.T) {
	p, err := Parse(minimalPNG())
	require.NoError(t, err)

	require.Len(t, p.Chunks(), 1)
	assert.Equal(t, "IEND", p.Chunks()[0].Type().String())
	assert.Equal(t, minimalPNG(), p.Bytes())
}

func TestParse_SignatureOnly(t *testing.T) {
	p, err := Parse(Signature[:])
	require.NoError(t, err)
	assert.Empty(t, p.Chunks())
	assert.Equal(t, Signature[:], p.Bytes())
}

func TestParse_EncodedImageRoundTrip(t *testing.T) {
	buf := encodedPNG(t)

	p, err := Parse(buf)
	require.NoError(t, err)

	types := chunkTypes(p)
	require.NotEmpty(t, types)
	assert.Equal(t, "IHDR", types[0])
	assert.Contains(t, types, "IDAT")
	assert.Equal(t, "IEND", types[len(types)-1])
	assert.Equal(t, buf, p.Bytes())
	assert.Equal(t, len(buf), p.Size())
}

func TestParse_BadSignature(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short", Signature[:5]},
		{"wrong magic", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0B}},
		{"gif", []byte("GIF89a\x00\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.buf)
			assert.ErrorIs(t, err, ErrBadSignature)
		})
	}
}

func TestParse_Truncated(t *testing.T) {
	full := minimalPNG()

	for _, n := range []int{9, 12, 19} {
		_, err := Parse(full[:n])
		assert.ErrorIs(t, err, ErrTruncated, "length %d", n)
	}

	// declared length runs past the end of the file
	buf := append([]byte(nil), Signature[:]...)
	buf = append(buf, 0, 0, 1, 0, 'r', 'u', 'S', 't', 1, 2, 3, 4)
	_, err := Parse(buf)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestParse_CRCMismatch(t *testing.T) {
	buf := minimalPNG()
	buf[len(buf)-1] ^= 0x01

	_, err := Parse(buf)
	require.ErrorIs(t, err, ErrCRCMismatch)
	assert.Contains(t, err.Error(), "chunk 0 at offset 8")
}

func TestAppendFindRemove(t *testing.T) {
	p, err := Parse(minimalPNG())
	require.NoError(t, err)

	p.AppendChunk(mustChunk(t, "ruSt", "hello"))

	found := p.ChunkByType("ruSt")
	require.NotNil(t, found)
	text, err := found.DataAsText()
	require.NoError(t, err)
	assert.Equal(t, "hello", text)

	removed, err := p.RemoveChunk("ruSt")
	require.NoError(t, err)
	assert.Same(t, found, removed)
	assert.Nil(t, p.ChunkByType("ruSt"))
	assert.Equal(t, []string{"IEND"}, chunkTypes(p))

	_, err = p.RemoveChunk("zzZz")
	assert.ErrorIs(t, err, ErrChunkNotFound)
}

func TestChunkByType_FirstMatchWins(t *testing.T) {
	first := mustChunk(t, "ruSt", "one")
	second := mustChunk(t, "ruSt", "two")
	p := New(mustChunk(t, "IHDR", "h"), first, second, mustChunk(t, "IEND", ""))

	assert.Same(t, first, p.ChunkByType("ruSt"))
	assert.Nil(t, p.ChunkByType("RUST"))

	removed, err := p.RemoveChunk("ruSt")
	require.NoError(t, err)
	assert.Same(t, first, removed)
	assert.Same(t, second, p.ChunkByType("ruSt"))
	assert.Equal(t, []string{"IHDR", "ruSt", "IEND"}, chunkTypes(p))
}

func TestRemoveChunk_PreservesOrder(t *testing.T) {
	p := New(
		mustChunk(t, "IHDR", ""),
		mustChunk(t, "tEXt", "a"),
		mustChunk(t, "ruSt", "x"),
		mustChunk(t, "zTXt", "b"),
		mustChunk(t, "IEND", ""),
	)

	_, err := p.RemoveChunk("ruSt")
	require.NoError(t, err)
	assert.Equal(t, []string{"IHDR", "tEXt", "zTXt", "IEND"}, chunkTypes(p))
}

func TestAppendChunk_NoReordering(t *testing.T) {
	p, err := Parse(minimalPNG())
	require.NoError(t, err)

	p.AppendChunk(mustChunk(t, "ruSt", "after the end"))
	assert.Equal(t, []string{"IEND", "ruSt"}, chunkTypes(p))
}

func TestInsertChunkBefore(t *testing.T) {
	p, err := Parse(encodedPNG(t))
	require.NoError(t, err)
	n := len(p.Chunks())

	require.NoError(t, p.InsertChunkBefore("IEND", mustChunk(t, "ruSt", "hidden")))

	types := chunkTypes(p)
	require.Len(t, types, n+1)
	assert.Equal(t, []string{"ruSt", "IEND"}, types[n-1:])

	err = p.InsertChunkBefore("zzZz", mustChunk(t, "ruSt", "x"))
	assert.ErrorIs(t, err, ErrChunkNotFound)
	assert.Len(t, p.Chunks(), n+1)
}

func TestChunks_ReturnsCopy(t *testing.T) {
	p := New(mustChunk(t, "IEND", ""))
	chunks := p.Chunks()
	chunks[0] = nil
	assert.NotNil(t, p.Chunks()[0])
}

func TestEndToEnd(t *testing.T) {
	p, err := Parse(minimalPNG())
	require.NoError(t, err)
	require.Len(t, p.Chunks(), 1)

	p.AppendChunk(mustChunk(t, "ruSt", "secret"))
	out := p.Bytes()

	reparsed, err := Parse(out)
	require.NoError(t, err)
	require.Len(t, reparsed.Chunks(), 2)

	msg := reparsed.ChunkByType("ruSt")
	require.NotNil(t, msg)
	text, err := msg.DataAsText()
	require.NoError(t, err)
	assert.Equal(t, "secret", text)
	assert.Equal(t, out, reparsed.Bytes())
}

func TestPngString(t *testing.T) {
	p := New(mustChunk(t, "IEND", ""))
	assert.Equal(t, "PNG (1 chunks, 20 bytes)\n  0  IEND length=0 crc=ae426082\n", p.String())
}
