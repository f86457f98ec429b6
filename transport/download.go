package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrContentLengthMismatch is reported when a download ends short of, or
// beyond, its declared length.
var ErrContentLengthMismatch = errors.New("content length mismatch")

// WriteFile copies body into destPath through a temporary file in the same
// directory, so destPath only ever holds a complete download. A negative
// contentLength skips the length check.
func WriteFile(ctx context.Context, body io.Reader, contentLength int64, destPath string) (err error) {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}
	file, err := os.CreateTemp(filepath.Dir(destPath), ".vimeonet-dl-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = file.Close()
			_ = os.Remove(file.Name())
		}
	}()

	n, err := io.Copy(file, &contextReader{ctx: ctx, r: body})
	if err != nil {
		return fmt.Errorf("copying body: %w", err)
	}
	if contentLength >= 0 && n != contentLength {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrContentLengthMismatch, contentLength, n)
	}
	if err = file.Sync(); err != nil {
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err = os.Rename(file.Name(), destPath); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// contextReader stops a copy as soon as ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
