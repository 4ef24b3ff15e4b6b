package transport

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/boothsync/internal/survey"
)

// fixtureResponses returns the two records behind the golden files.
func fixtureResponses() []survey.Response {
	return []survey.Response{
		{
			ID:               "a",
			Timestamp:        "2025-05-01T10:00:00.000Z",
			FirstName:        "Ana",
			LastName:         "Gómez",
			Email:            "ana@example.com",
			Role:             survey.RoleProducer,
			NPS:              9,
			InterestedInInfo: true,
			SelectedProducts: []string{"Cosechadoras Serie S", "John Deere Financial"},
			Synced:           survey.Bool(false),
			DeviceID:         "dev-1",
			SectorName:       "Pabellón A",
		},
		{
			ID:               "b",
			Timestamp:        "2025-05-01T10:05:00.000Z",
			FirstName:        "Luis",
			LastName:         "O'Neil, Jr.",
			Email:            "luis@example.com",
			Role:             survey.RoleStudent,
			NPS:              3,
			SelectedProducts: []string{},
			Synced:           survey.Bool(true),
			DeviceID:         "dev-1",
		},
	}
}

// newGoldie compares output against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/transport -update
func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}
