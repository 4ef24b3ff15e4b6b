package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/boothsync/internal/survey"
)

// ListResponses returns every response in insertion order.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListResponses(ctx context.Context) ([]survey.Response, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, first_name, last_name, email, role, nps,
		       interested_in_info, selected_products, synced, device_id, sector_name
		FROM responses
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, storageError("query responses", err)
	}
	defer rows.Close()

	responses := []survey.Response{}
	for rows.Next() {
		r, err := scanResponse(rows)
		if err != nil {
			return nil, storageError("scan response", err)
		}
		responses = append(responses, r)
	}

	if err := rows.Err(); err != nil {
		return nil, storageError("iterate responses", err)
	}

	return responses, nil
}

// ResponseIDs returns the set of ids currently stored.
func (s *Store) ResponseIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM responses`)
	if err != nil {
		return nil, storageError("query response ids", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storageError("scan response id", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, storageError("iterate response ids", err)
	}
	return ids, nil
}

// CountResponses returns the number of stored responses.
func (s *Store) CountResponses(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&n); err != nil {
		return 0, storageError("count responses", err)
	}
	return n, nil
}

func scanResponse(rows *sql.Rows) (survey.Response, error) {
	var (
		r        survey.Response
		role     string
		products string
		synced   sql.NullBool
	)
	err := rows.Scan(
		&r.ID,
		&r.Timestamp,
		&r.FirstName,
		&r.LastName,
		&r.Email,
		&role,
		&r.NPS,
		&r.InterestedInInfo,
		&products,
		&synced,
		&r.DeviceID,
		&r.SectorName,
	)
	if err != nil {
		return survey.Response{}, fmt.Errorf("scan: %w", err)
	}
	r.Role = survey.Role(role)
	if synced.Valid {
		r.Synced = survey.Bool(synced.Bool)
	}

	r.SelectedProducts, err = unmarshalProducts(products)
	if err != nil {
		return survey.Response{}, err
	}
	return r, nil
}
