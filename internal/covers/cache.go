// Package covers keeps local copies of book cover images so the UI never
// hotlinks the catalog that supplied the metadata.
package covers

import (
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Cache stores downloaded cover images on disk, one file per
// (book, source URL) pair.
type Cache struct {
	dir        string
	httpClient *http.Client
}

func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create covers dir: %w", err)
	}

	return &Cache{
		dir: dir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Ensure makes sure the cover at coverURL is present on disk and returns
// the local path. An empty coverURL is not an error; it returns "".
func (c *Cache) Ensure(bookID uint, coverURL string) (string, error) {
	if coverURL == "" {
		return "", nil
	}

	path := filepath.Join(c.dir, c.filename(bookID, coverURL))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := c.download(coverURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// Remove deletes every cached cover belonging to a book. Used when a book
// leaves the library or its cover URL changes.
func (c *Cache) Remove(bookID uint) error {
	matches, err := filepath.Glob(filepath.Join(c.dir, fmt.Sprintf("cover_%d_*", bookID)))
	if err != nil {
		return err
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// Dir returns the directory covers are cached in.
func (c *Cache) Dir() string {
	return c.dir
}

// filename keys the file on book ID plus a URL digest so a changed cover
// URL never serves a stale image.
func (c *Cache) filename(bookID uint, coverURL string) string {
	hash := sha256.Sum256([]byte(coverURL))
	return fmt.Sprintf("cover_%d_%x.jpg", bookID, hash[:8])
}

func (c *Cache) download(url, path string) error {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "ReadStack/1.0 (https://github.com/readstack/readstack)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch cover: status %d", resp.StatusCode)
	}

	// Write through a temp file in the same directory so readers never
	// observe a partial image.
	tmpFile, err := os.CreateTemp(c.dir, "cover_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}()

	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}
	tmpFile.Close()

	return os.Rename(tmpPath, path)
}
