package object

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStorage_PutGet(t *testing.T) {
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}

	loc, err := s.Put(context.Background(), "population/us.csv", "text/csv", []byte("a,b\n1,2\n"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if loc != filepath.Join(s.Root(), "population", "us.csv") {
		t.Errorf("location = %q", loc)
	}

	got, err := s.Get(context.Background(), "population/us.csv")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "a,b\n1,2\n" {
		t.Errorf("content = %q", got)
	}

	entries, _ := os.ReadDir(filepath.Join(s.Root(), "population"))
	if len(entries) != 1 {
		t.Errorf("expected only the final file, found %d entries", len(entries))
	}
}

func TestLocalStorage_RejectsEscape(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorage: %v", err)
	}
	if _, err := s.Put(context.Background(), "../outside.csv", "text/csv", nil); err == nil {
		t.Fatal("expected error for path outside root")
	}
}
