package fsutil

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
)

func TestOSFileSystem_RoundTrip(t *testing.T) {
	fsys := OSFileSystem{}
	path := filepath.Join(t.TempDir(), "nested", "out.txt")

	if err := WriteTo(fsys, path, bytes.NewBufferString("pillar")); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !fsys.Exists(path) {
		t.Fatal("expected file to exist after WriteTo")
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "pillar" {
		t.Errorf("ReadFile = %q, want %q", data, "pillar")
	}
	info, err := fsys.Stat(path)
	if err != nil || info.Size() != 6 {
		t.Errorf("Stat = %v, %v; want size 6", info, err)
	}
}

func TestMemoryFileSystem(t *testing.T) {
	fsys := NewMemoryFileSystem()

	if _, err := fsys.ReadFile("missing.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected fs.ErrNotExist, got %v", err)
	}

	if err := WriteTo(fsys, "plots/row_001.html", bytes.NewBufferString("<html>")); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if !fsys.Exists("plots") || !fsys.Exists("plots/row_001.html") {
		t.Error("expected directory and file to exist")
	}

	if err := fsys.WriteFile("cfg.json", []byte("{}"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := fsys.Stat("cfg.json")
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 2 || info.IsDir() {
		t.Errorf("Stat(cfg.json) size=%d dir=%v", info.Size(), info.IsDir())
	}
	dirInfo, err := fsys.Stat("plots")
	if err != nil || !dirInfo.IsDir() {
		t.Errorf("Stat(plots) = %v, %v; want directory", dirInfo, err)
	}

	got := fsys.Files()
	want := []string{"cfg.json", "plots/row_001.html"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Files() = %v, want %v", got, want)
	}
}
