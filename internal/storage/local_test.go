package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T, maxBytes int64) *Local {
	t.Helper()
	store, err := NewLocal(t.TempDir(), "/uploads", maxBytes)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return store
}

func TestSave(t *testing.T) {
	store := newTestStore(t, 1024)

	url, err := store.Save(strings.NewReader("fake image data"), "screenshot.PNG")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(url, "/uploads/") {
		t.Errorf("url = %q, want /uploads/ prefix", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("url = %q, want lowercased .png extension", url)
	}
	if strings.Contains(url, "screenshot") {
		t.Errorf("url %q leaks the original filename", url)
	}

	// The file exists on disk with the stored content
	data, err := os.ReadFile(filepath.Join(store.Dir(), filepath.Base(url)))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("stored content = %q", data)
	}
}

func TestSave_UniqueNames(t *testing.T) {
	store := newTestStore(t, 1024)

	u1, err := store.Save(strings.NewReader("a"), "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	u2, err := store.Save(strings.NewReader("b"), "logo.png")
	if err != nil {
		t.Fatal(err)
	}
	if u1 == u2 {
		t.Error("two uploads of the same filename got the same URL")
	}
}

func TestSave_RejectsDisallowedTypes(t *testing.T) {
	store := newTestStore(t, 1024)

	for _, name := range []string{"script.exe", "page.html", "noextension", "shell.sh"} {
		if _, err := store.Save(strings.NewReader("x"), name); err == nil {
			t.Errorf("Save(%q) succeeded, want rejection", name)
		}
	}
}

func TestSave_SizeLimit(t *testing.T) {
	store := newTestStore(t, 10)

	if _, err := store.Save(strings.NewReader("exactly10b"), "ok.png"); err != nil {
		t.Errorf("Save at the limit failed: %v", err)
	}

	if _, err := store.Save(strings.NewReader("eleven bytes"), "big.png"); err == nil {
		t.Error("Save over the limit succeeded")
	}

	// The oversized file must not linger on disk
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("uploads dir has %d files, want 1", len(entries))
	}
}
