// Package responses is the Response Store: the record of truth for survey
// responses on one device.
//
// SaveResponse is the only way a local record is created. It assigns the id,
// stamps the device and sector labels and appends the record with
// synced=false. Reads are pure; ClearAll is irreversible and has no undo.
package responses

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/boothsync/internal/device"
	"github.com/roach88/boothsync/internal/ident"
	"github.com/roach88/boothsync/internal/survey"
)

// Backend is the persistence the Response Store writes through.
type Backend interface {
	AppendResponse(ctx context.Context, r survey.Response) error
	ListResponses(ctx context.Context) ([]survey.Response, error)
	ClearResponses(ctx context.Context) error
	MarkSynced(ctx context.Context, ids []string) error
}

// ConfigSource supplies the current device configuration.
type ConfigSource interface {
	GetConfig(ctx context.Context) (survey.AppConfig, error)
}

// IdentitySource supplies the device identity.
type IdentitySource interface {
	Info(ctx context.Context) device.Info
}

// Store is the Response Store.
type Store struct {
	backend  Backend
	config   ConfigSource
	identity IdentitySource
	gen      ident.Generator
	clock    ident.Clock
	logger   *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithGenerator overrides the response id generator (default UUIDv7).
func WithGenerator(gen ident.Generator) Option {
	return func(s *Store) { s.gen = gen }
}

// WithClock overrides the clock used for missing timestamps.
func WithClock(clock ident.Clock) Option {
	return func(s *Store) { s.clock = clock }
}

// WithLogger overrides the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a Response Store.
func New(backend Backend, config ConfigSource, identity IdentitySource, opts ...Option) *Store {
	s := &Store{
		backend:  backend,
		config:   config,
		identity: identity,
		gen:      ident.UUIDv7Generator{},
		clock:    ident.SystemClock{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveResponse validates d, stamps it and appends it to the store.
//
// Returns a validation error (nothing written) for an unanswered or
// out-of-range NPS or missing identity fields, and a storage error when the
// medium rejects the write.
func (s *Store) SaveResponse(ctx context.Context, d survey.Draft) (survey.Response, error) {
	if err := survey.ValidateDraft(d); err != nil {
		return survey.Response{}, err
	}
	d = survey.NormalizeDraft(d)

	cfg, err := s.config.GetConfig(ctx)
	if err != nil {
		return survey.Response{}, fmt.Errorf("save response: %w", err)
	}
	dev := s.identity.Info(ctx)

	ts := d.Timestamp
	if ts == "" {
		ts = survey.FormatTimestamp(s.clock.Now())
	}
	products := d.SelectedProducts
	if products == nil {
		products = []string{}
	}

	r := survey.Response{
		ID:               s.gen.Generate(),
		Timestamp:        ts,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		Role:             d.Role,
		NPS:              d.NPS,
		InterestedInInfo: d.InterestedInInfo,
		SelectedProducts: products,
		Synced:           survey.Bool(false),
		DeviceID:         dev.ID,
		SectorName:       cfg.SectorName,
	}

	if err := s.backend.AppendResponse(ctx, r); err != nil {
		return survey.Response{}, fmt.Errorf("save response: %w", err)
	}
	s.logger.Debug("response saved", "id", r.ID, "nps", r.NPS, "device_id", r.DeviceID)
	return r, nil
}

// Responses returns every response on this device in insertion order.
func (s *Store) Responses(ctx context.Context) ([]survey.Response, error) {
	rs, err := s.backend.ListResponses(ctx)
	if err != nil {
		return nil, fmt.Errorf("get responses: %w", err)
	}
	return rs, nil
}

// ClearAll irreversibly empties the store.
func (s *Store) ClearAll(ctx context.Context) error {
	if err := s.backend.ClearResponses(ctx); err != nil {
		return fmt.Errorf("clear all data: %w", err)
	}
	s.logger.Info("all responses cleared")
	return nil
}

// MarkSynced flags the given records as included in an exported snapshot.
func (s *Store) MarkSynced(ctx context.Context, ids []string) error {
	if err := s.backend.MarkSynced(ctx, ids); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}
	return nil
}

// PendingCount returns the number of records not yet exported.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	rs, err := s.Responses(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range rs {
		if !r.IsSynced() {
			n++
		}
	}
	return n, nil
}
