// Package audit archives raw import uploads so a bad import can be
// inspected and replayed after the fact.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

type Archive struct {
	Dir string
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir}
}

// ImportRecord is the JSON sidecar written next to each archived payload.
type ImportRecord struct {
	Source     string    `json:"source"`
	OwnerID    uint      `json:"owner_id"`
	ReceivedAt time.Time `json:"received_at"`
	Created    int       `json:"created"`
	Skipped    int       `json:"skipped"`
	Errors     []string  `json:"errors,omitempty"`
	Payload    string    `json:"payload"`
}

// SaveImport archives one import: the raw uploaded payload under
// <id>.txt and the outcome record under <id>.json. Returns the record
// filename.
func (a *Archive) SaveImport(source string, ownerID uint, payload string, created, skipped int, importErrors []string) (string, error) {
	if err := a.ensureDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	id := uuid.New().String()
	payloadName := id + ".txt"
	recordName := id + ".json"

	if err := os.WriteFile(filepath.Join(a.Dir, payloadName), []byte(payload), 0644); err != nil {
		return "", fmt.Errorf("failed to write payload file: %w", err)
	}

	record := ImportRecord{
		Source:     source,
		OwnerID:    ownerID,
		ReceivedAt: time.Now().UTC(),
		Created:    created,
		Skipped:    skipped,
		Errors:     importErrors,
		Payload:    payloadName,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal import record: %w", err)
	}

	if err := os.WriteFile(filepath.Join(a.Dir, recordName), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write audit file: %w", err)
	}

	return recordName, nil
}

func (a *Archive) ensureDir() error {
	if _, err := os.Stat(a.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
