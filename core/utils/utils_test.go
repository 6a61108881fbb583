package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestElapsed(t *testing.T) {
	clk := &fakeClock{t: time.Unix(100, 0)}
	e := NewElapsed(clk.now)

	clk.t = clk.t.Add(150 * time.Millisecond)
	if got := e.Elapsed(); got != 150*time.Millisecond {
		t.Errorf("Elapsed() = %v, want 150ms", got)
	}

	e.Update()
	if got := e.Elapsed(); got != 0 {
		t.Errorf("Elapsed() after Update = %v, want 0", got)
	}
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cover")
	if err := WriteFileAtomic(path, []byte("one")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	if err := WriteFileAtomic(path, []byte("two")); err != nil {
		t.Fatalf("WriteFileAtomic() overwrite error = %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "two" {
		t.Errorf("content = %q, want two", got)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory holds %d entries, want only the target", len(entries))
	}
}
