package transport

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "video.mp4")

	if err := WriteFile(context.Background(), strings.NewReader("frames"), 6, dest); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "frames" {
		t.Errorf("expected frames, got %q", data)
	}
}

func TestWriteFile_LengthMismatchLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "video.mp4")

	err := WriteFile(context.Background(), strings.NewReader("short"), 100, dest)
	if !errors.Is(err, ErrContentLengthMismatch) {
		t.Fatalf("expected ErrContentLengthMismatch, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected no files left behind, found %d", len(entries))
	}
}

func TestWriteFile_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dest := filepath.Join(t.TempDir(), "video.mp4")
	err := WriteFile(ctx, strings.NewReader("frames"), -1, dest)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
		t.Error("destination should not exist after a cancelled download")
	}
}
