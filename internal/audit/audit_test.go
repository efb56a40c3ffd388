package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchive(t *testing.T) {
	tempDir := "./test_audit"
	defer os.RemoveAll(tempDir)

	archive := NewArchive(tempDir)

	t.Run("SaveImport writes payload and record", func(t *testing.T) {
		payload := "Title,Author\nDune,Frank Herbert\n"

		recordName, err := archive.SaveImport("goodreads", 1, payload, 3, 2, nil)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(recordName, ".json"))

		data, err := os.ReadFile(filepath.Join(tempDir, recordName))
		require.NoError(t, err)

		var record ImportRecord
		require.NoError(t, json.Unmarshal(data, &record))
		assert.Equal(t, "goodreads", record.Source)
		assert.Equal(t, uint(1), record.OwnerID)
		assert.Equal(t, 3, record.Created)
		assert.Equal(t, 2, record.Skipped)
		assert.Empty(t, record.Errors)
		assert.False(t, record.ReceivedAt.IsZero())

		saved, err := os.ReadFile(filepath.Join(tempDir, record.Payload))
		require.NoError(t, err)
		assert.Equal(t, payload, string(saved))
	})

	t.Run("SaveImport records partial failure", func(t *testing.T) {
		recordName, err := archive.SaveImport("libby", 2, "payload", 1, 0, []string{"books 51-60: disk I/O error"})
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(tempDir, recordName))
		require.NoError(t, err)

		var record ImportRecord
		require.NoError(t, json.Unmarshal(data, &record))
		assert.Equal(t, []string{"books 51-60: disk I/O error"}, record.Errors)
	})

	t.Run("records get distinct names", func(t *testing.T) {
		a, err := archive.SaveImport("kobo", 1, "x", 0, 0, nil)
		require.NoError(t, err)
		b, err := archive.SaveImport("kobo", 1, "x", 0, 0, nil)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})
}
