package covers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "covers")

	cache, err := NewCache(dir)
	if err != nil {
		t.Fatalf("NewCache failed: %v", err)
	}

	if cache.Dir() != dir {
		t.Errorf("expected covers dir %s, got %s", dir, cache.Dir())
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		t.Error("covers directory was not created")
	}
}

func TestEnsure_EmptyURL(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	path, err := cache.Ensure(1, "")
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path for empty URL, got %s", path)
	}
}

func TestEnsure_DownloadsOnceThenServesFromDisk(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	path1, err := cache.Ensure(1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if path1 == "" {
		t.Fatal("expected non-empty path")
	}
	if _, err := os.Stat(path1); os.IsNotExist(err) {
		t.Error("cached file does not exist")
	}

	path2, err := cache.Ensure(1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("Ensure (cached) failed: %v", err)
	}
	if path1 != path2 {
		t.Error("expected same path for cached cover")
	}
	if requests != 1 {
		t.Errorf("expected 1 upstream request, got %d", requests)
	}
}

func TestEnsure_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	if _, err := cache.Ensure(1, server.URL+"/notfound.jpg"); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestRemove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("fake image data"))
	}))
	defer server.Close()

	cache, _ := NewCache(t.TempDir())

	path, err := cache.Ensure(1, server.URL+"/cover.jpg")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	if err := cache.Remove(1); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cached file should be deleted after Remove")
	}
}

func TestFilename_KeyedOnBookAndURL(t *testing.T) {
	cache, _ := NewCache(t.TempDir())

	name1 := cache.filename(1, "https://example.com/cover.jpg")
	name2 := cache.filename(1, "https://example.com/cover.jpg")
	if name1 != name2 {
		t.Error("same inputs should produce same filename")
	}

	if name3 := cache.filename(1, "https://example.com/other.jpg"); name1 == name3 {
		t.Error("different URLs should produce different filenames")
	}

	if name4 := cache.filename(2, "https://example.com/cover.jpg"); name1 == name4 {
		t.Error("different book IDs should produce different filenames")
	}
}
