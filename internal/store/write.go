package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/boothsync/internal/survey"
)

const insertResponseSQL = `
	INSERT INTO responses
	(id, timestamp, first_name, last_name, email, role, nps,
	 interested_in_info, selected_products, synced, device_id, sector_name)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AppendResponse appends a single response at the end of the log.
//
// A duplicate id is a constraint violation and is returned as an error; the
// caller generated an id that is already taken.
func (s *Store) AppendResponse(ctx context.Context, r survey.Response) error {
	if err := insertResponse(ctx, s.db, r); err != nil {
		return storageError("append response", err)
	}
	return nil
}

// AppendResponses appends a batch of responses, in order, in one transaction.
// Either every response is stored or none is.
func (s *Store) AppendResponses(ctx context.Context, rs []survey.Response) error {
	if len(rs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("append responses: begin tx", err)
	}
	defer tx.Rollback() // No-op if committed

	for i, r := range rs {
		if err := insertResponse(ctx, tx, r); err != nil {
			return storageError(fmt.Sprintf("append responses: row %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("append responses: commit", err)
	}
	return nil
}

func insertResponse(ctx context.Context, ex execer, r survey.Response) error {
	products, err := marshalProducts(r.SelectedProducts)
	if err != nil {
		return err
	}
	_, err = ex.ExecContext(ctx, insertResponseSQL,
		r.ID,
		r.Timestamp,
		r.FirstName,
		r.LastName,
		r.Email,
		string(r.Role),
		r.NPS,
		r.InterestedInInfo,
		products,
		r.Synced,
		r.DeviceID,
		r.SectorName,
	)
	return err
}

// ClearResponses irreversibly deletes every response.
func (s *Store) ClearResponses(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM responses`); err != nil {
		return storageError("clear responses", err)
	}
	return nil
}

// MarkSynced sets synced=true on the given ids in one transaction.
// Unknown ids are ignored.
func (s *Store) MarkSynced(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageError("mark synced: begin tx", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE responses SET synced = 1 WHERE id = ?`)
	if err != nil {
		return storageError("mark synced: prepare", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, id); err != nil {
			return storageError("mark synced", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return storageError("mark synced: commit", err)
	}
	return nil
}
