package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/boothsync/internal/merge"
	"github.com/roach88/boothsync/internal/survey"
)

// Source is the local Response Store as seen by the exporter.
type Source interface {
	Responses(ctx context.Context) ([]survey.Response, error)
	MarkSynced(ctx context.Context, ids []string) error
}

// Merger incorporates a parsed foreign batch.
type Merger interface {
	Merge(ctx context.Context, batch []survey.Response) (merge.Result, error)
}

// Service exports the local store and imports foreign snapshots.
type Service struct {
	source Source
	merger Merger
	logger *slog.Logger
}

// NewService creates a transport service.
func NewService(source Source, merger Merger, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, merger: merger, logger: logger}
}

// Sink receives the encoded bytes of an export. It either stores all of
// them and returns nil, or fails.
type Sink func(data []byte) error

// WriterSink returns a Sink that writes to w.
func WriterSink(w io.Writer) Sink {
	return func(data []byte) error {
		_, err := w.Write(data)
		return err
	}
}

// Export describes a completed export.
type Export struct {
	// Records is the number of responses in the encoded data.
	Records int
	// Bytes is the encoded size.
	Bytes int
	// NewlySynced counts responses whose synced flag this export set.
	NewlySynced int
}

// ExportSnapshot encodes every local response, hands the bytes to sink and,
// once sink has accepted them, marks those responses synced. The snapshot
// carries the records as they were before marking.
//
// When sink fails nothing is marked. When marking fails after sink succeeded
// the records stay pending, so they are never reported synced without a
// written snapshot.
func (s *Service) ExportSnapshot(ctx context.Context, sink Sink) (Export, error) {
	rs, err := s.source.Responses(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("export snapshot: %w", err)
	}
	data, err := EncodeSnapshot(rs)
	if err != nil {
		return Export{}, err
	}
	if err := sink(data); err != nil {
		return Export{}, fmt.Errorf("export snapshot: write: %w", err)
	}

	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		if !r.IsSynced() {
			ids = append(ids, r.ID)
		}
	}
	if err := s.source.MarkSynced(ctx, ids); err != nil {
		return Export{}, fmt.Errorf("export snapshot: %w", err)
	}

	s.logger.Info("snapshot exported", "records", len(rs), "newly_synced", len(ids))
	return Export{Records: len(rs), Bytes: len(data), NewlySynced: len(ids)}, nil
}

// ExportReport encodes the CSV report of every local response and hands it
// to sink. It never changes the store.
func (s *Service) ExportReport(ctx context.Context, sink Sink) (Export, error) {
	rs, err := s.source.Responses(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("export report: %w", err)
	}
	data := EncodeReport(rs)
	if err := sink(data); err != nil {
		return Export{}, fmt.Errorf("export report: write: %w", err)
	}
	s.logger.Info("report exported", "records", len(rs))
	return Export{Records: len(rs), Bytes: len(data)}, nil
}

// Import parses a foreign snapshot and merges it. Either the whole snapshot
// is merged or nothing changes; on failure the Result is zero.
func (s *Service) Import(ctx context.Context, data []byte) (merge.Result, error) {
	batch, err := ParseSnapshot(data)
	if err != nil {
		s.logger.Warn("snapshot rejected", "error", err)
		return merge.Result{}, err
	}
	res, err := s.merger.Merge(ctx, batch)
	if err != nil {
		return merge.Result{}, err
	}
	return res, nil
}

// SnapshotFilename returns the conventional snapshot file name for a stand.
func SnapshotFilename(standID string, now time.Time) string {
	return fmt.Sprintf("respuestas_%s_%s.json", standID, now.Format("2006-01-02"))
}

// ReportFilename returns the conventional report file name for a stand.
func ReportFilename(standID string, now time.Time) string {
	return fmt.Sprintf("reporte_%s_%s.csv", standID, now.Format("2006-01-02"))
}
