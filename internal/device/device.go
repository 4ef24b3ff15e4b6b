// Package device provides the stable per-device identifier that labels every
// locally authored response.
//
// The id is generated on first use and persisted in the settings table. If
// the settings table cannot be read or written, the provider logs a warning
// and falls back to an id that lives only as long as the Provider: a new
// process on the same device will then author records under a different id.
// Records stay unique (their own ids are random); only the device label
// splits.
package device

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/boothsync/internal/ident"
)

// SettingKey is the settings key holding the persisted device id.
const SettingKey = "device_id"

// KV is the settings persistence the provider needs.
type KV interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Info describes the local device.
type Info struct {
	ID string `json:"id"`

	// Persisted is false when the id could not be stored and is only valid
	// for this session.
	Persisted bool `json:"persisted"`
}

// Provider resolves the device identity.
//
// Thread-safety: Provider is safe for concurrent use; the id is resolved at
// most once per Provider.
type Provider struct {
	kv     KV
	gen    ident.Generator
	logger *slog.Logger

	mu   sync.Mutex
	info *Info
}

// Option configures a Provider.
type Option func(*Provider)

// WithGenerator overrides the id generator (default UUIDv4).
func WithGenerator(gen ident.Generator) Option {
	return func(p *Provider) { p.gen = gen }
}

// WithLogger overrides the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) { p.logger = logger }
}

// NewProvider creates a provider backed by kv.
func NewProvider(kv KV, opts ...Option) *Provider {
	p := &Provider{
		kv:     kv,
		gen:    ident.UUIDv4Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Info returns the device identity, generating and persisting it on first
// call. It never fails; see the package doc for the degraded mode.
func (p *Provider) Info(ctx context.Context) Info {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.info != nil {
		return *p.info
	}

	id, ok, err := p.kv.Setting(ctx, SettingKey)
	if err != nil {
		p.logger.Warn("device id unreadable, using session id", "error", err)
		return p.remember(p.gen.Generate(), false)
	}
	if ok && id != "" {
		return p.remember(id, true)
	}

	id = p.gen.Generate()
	if err := p.kv.PutSetting(ctx, SettingKey, id); err != nil {
		p.logger.Warn("device id not persisted, using session id", "device_id", id, "error", err)
		return p.remember(id, false)
	}
	p.logger.Info("device id created", "device_id", id)
	return p.remember(id, true)
}

func (p *Provider) remember(id string, persisted bool) Info {
	p.info = &Info{ID: id, Persisted: persisted}
	return *p.info
}
