package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/boothsync/internal/survey"
)

// createTestStore creates a new file-backed store in a temp dir for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResponse creates a response with minimal required fields.
func createTestResponse(id string, nps int) survey.Response {
	return survey.Response{
		ID:               id,
		Timestamp:        "2025-05-01T10:00:00.000Z",
		FirstName:        "Ana",
		LastName:         "Gómez",
		Email:            "ana@example.com",
		Role:             survey.RoleProducer,
		NPS:              nps,
		SelectedProducts: []string{},
		DeviceID:         "device-1",
		SectorName:       "Pabellón A",
	}
}
