// Package commands implements the pngme workflows on top of the chunk codec:
// read a .png file, edit its chunk list, write it back.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/ketan-sonar/png-hack-go/internal/config"
	"gitlab.com/ketan-sonar/png-hack-go/internal/png"
)

var (
	// ErrNotPNG indicates a path without the .png extension.
	ErrNotPNG = errors.New("this program takes only PNG files")

	// ErrFileTooLarge indicates a file over the configured size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// Runner executes commands with a fixed configuration.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewRunner returns a Runner. A nil logger falls back to slog.Default.
func NewRunner(cfg *config.Config, logger *slog.Logger) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger.With("component", "commands")}
}

// EncodeOptions describes a message to hide.
type EncodeOptions struct {
	Path      string
	ChunkType string // config default when empty
	Message   string
	Output    string // rewrite Path when empty
	Before    string // insert ahead of the first chunk of this type instead of appending
}

// Encode hides opts.Message in a new chunk and writes the result.
// It returns the path that was written.
func (r *Runner) Encode(ctx context.Context, opts EncodeOptions) (string, error) {
	ct, err := png.ParseChunkType(r.chunkType(opts.ChunkType))
	if err != nil {
		return "", err
	}

	img, err := r.load(opts.Path)
	if err != nil {
		return "", err
	}

	msg, err := r.normalize(opts.Message)
	if err != nil {
		return "", err
	}
	chunk, err := png.NewChunk(ct, []byte(msg))
	if err != nil {
		return "", err
	}

	if opts.Before != "" {
		if err := img.InsertChunkBefore(opts.Before, chunk); err != nil {
			return "", fmt.Errorf("placing chunk: %w", err)
		}
	} else {
		img.AppendChunk(chunk)
	}

	out := opts.Output
	if out == "" {
		out = opts.Path
	}
	if err := r.store(ctx, out, img); err != nil {
		return "", err
	}

	r.logger.InfoContext(ctx, "message encoded",
		"path", out, "chunk_type", ct.String(), "length", chunk.Length(), "crc", chunk.CRC())
	return out, nil
}

// Decode returns the text of the first chunk of type code. A missing chunk
// is reported through found, not as an error.
func (r *Runner) Decode(ctx context.Context, path, code string) (msg string, found bool, err error) {
	code = r.chunkType(code)
	img, err := r.load(path)
	if err != nil {
		return "", false, err
	}

	chunk := img.ChunkByType(code)
	if chunk == nil {
		r.logger.DebugContext(ctx, "no message chunk", "path", path, "chunk_type", code)
		return "", false, nil
	}

	msg, err = chunk.DataAsText()
	if err != nil {
		return "", true, err
	}
	return msg, true, nil
}

// Remove deletes the first chunk of type code and rewrites the file.
func (r *Runner) Remove(ctx context.Context, path, code string) (*png.Chunk, error) {
	code = r.chunkType(code)
	img, err := r.load(path)
	if err != nil {
		return nil, err
	}

	chunk, err := img.RemoveChunk(code)
	if err != nil {
		return nil, err
	}

	if err := r.store(ctx, path, img); err != nil {
		return nil, err
	}

	r.logger.InfoContext(ctx, "message removed", "path", path, "chunk_type", code, "length", chunk.Length())
	return chunk, nil
}

// Print writes one line per chunk with its property flags to w.
func (r *Runner) Print(ctx context.Context, path string, w io.Writer) error {
	img, err := r.load(path)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	chunks := img.Chunks()
	if _, err := fmt.Fprintf(w, "%s: %d chunks\n", filepath.Base(path), len(chunks)); err != nil {
		return err
	}
	for i, c := range chunks {
		if _, err := fmt.Fprintf(w, "%3d  %-40s %s\n", i, c.String(), flags(c.Type())); err != nil {
			return err
		}
	}
	return nil
}

// flags renders the four property bits, e.g. "critical,public,unsafe-to-copy".
func flags(t png.ChunkType) string {
	parts := make([]string, 0, 5)
	if t.IsCritical() {
		parts = append(parts, "critical")
	} else {
		parts = append(parts, "ancillary")
	}
	if t.IsPublic() {
		parts = append(parts, "public")
	} else {
		parts = append(parts, "private")
	}
	if t.IsSafeToCopy() {
		parts = append(parts, "safe-to-copy")
	} else {
		parts = append(parts, "unsafe-to-copy")
	}
	if !t.IsValid() {
		parts = append(parts, "invalid")
	}
	return strings.Join(parts, ",")
}

func (r *Runner) chunkType(code string) string {
	if code == "" {
		return r.cfg.ChunkType
	}
	return code
}

func (r *Runner) normalize(msg string) (string, error) {
	form, ok, err := r.cfg.Form()
	if err != nil || !ok {
		return msg, err
	}
	return form.String(msg), nil
}

func checkExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".png") {
		return fmt.Errorf("%w: %s", ErrNotPNG, path)
	}
	return nil
}

// load reads and parses path, refusing files above the size limit.
func (r *Runner) load(path string) (*png.Png, error) {
	if err := checkExtension(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	limit := r.cfg.MaxFileSize
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}

	img, err := png.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	r.logger.Debug("parsed file", "path", path, "bytes", len(data), "chunks", len(img.Chunks()))
	return img, nil
}

func (r *Runner) store(ctx context.Context, path string, img *png.Png) error {
	if err := checkExtension(path); err != nil {
		return err
	}
	// last point where the caller can still back out without touching the file
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
