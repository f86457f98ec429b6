package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newDir(t *testing.T) *Dir {
	t.Helper()
	d, err := NewDir(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return d
}

func TestDir_WriteReadDelete(t *testing.T) {
	d := newDir(t)

	if _, err := d.Read("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := d.Write("cached.me.1", []byte("payload")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data, err := d.Read("cached.me.1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("expected payload, got %q", data)
	}

	if err := d.Write("cached.me.1", []byte("replaced")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = d.Read("cached.me.1")
	if string(data) != "replaced" {
		t.Errorf("expected replaced, got %q", data)
	}

	if err := d.Delete("cached.me.1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := d.Delete("cached.me.1"); err != nil {
		t.Errorf("deleting a missing blob should succeed: %v", err)
	}
}

func TestDir_LazyCreationAndRemoveAll(t *testing.T) {
	d := newDir(t)
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Fatal("directory should not exist before the first write")
	}
	if err := d.RemoveAll(); err != nil {
		t.Errorf("RemoveAll on a missing directory should succeed: %v", err)
	}

	_ = d.Write("a", []byte("1"))
	if err := d.RemoveAll(); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if _, err := os.Stat(d.Path()); !os.IsNotExist(err) {
		t.Error("directory should be gone")
	}
}

func TestDir_WriteLeavesNoTempFiles(t *testing.T) {
	d := newDir(t)
	name := strings.Repeat("k", 240)
	if err := d.Write(name, []byte("1")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entries, err := os.ReadDir(d.Path())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != name {
		t.Fatalf("expected only %d-byte blob, got %v", len(name), entries)
	}
}

func TestDir_RejectsInvalidNames(t *testing.T) {
	d := newDir(t)
	for _, name := range []string{"", ".", "..", "../escape", "a/b", ".hidden"} {
		if err := d.Write(name, []byte("x")); !errors.Is(err, ErrInvalidName) {
			t.Errorf("%q: expected ErrInvalidName, got %v", name, err)
		}
	}
}
