package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveMessageFile(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	relPath, err := s.SaveMessageFile("notes.txt", strings.NewReader("attachment body"))
	if err != nil {
		t.Fatalf("save file: %v", err)
	}

	if filepath.Dir(relPath) != "messages" {
		t.Errorf("expected path under messages/, got %s", relPath)
	}
	if !strings.HasSuffix(relPath, "_notes.txt") {
		t.Errorf("expected original name suffix, got %s", relPath)
	}

	data, err := os.ReadFile(filepath.Join(s.BaseDir(), relPath))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "attachment body" {
		t.Errorf("unexpected content: %q", data)
	}
}

func TestSaveMessageFileStripsDirectoryComponents(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	relPath, err := s.SaveMessageFile("../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("save file: %v", err)
	}

	if strings.Contains(relPath, "..") {
		t.Fatalf("path escapes upload area: %s", relPath)
	}
	if !strings.HasSuffix(relPath, "_passwd") {
		t.Errorf("expected sanitized base name, got %s", relPath)
	}
}

func TestNamesDoNotCollide(t *testing.T) {
	s, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("create storage: %v", err)
	}

	p1, err := s.SaveMessageFile("same.txt", strings.NewReader("one"))
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	p2, err := s.SaveMessageFile("same.txt", strings.NewReader("two"))
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if p1 == p2 {
		t.Fatalf("expected unique paths, both were %s", p1)
	}
}
