package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/boothsync/internal/survey"
)

// SettingKey is the settings key holding the configuration document.
const SettingKey = "app_config"

// Hardcoded defaults applied when a device has no configuration yet.
const (
	DefaultAdminPIN = "1234"
	DefaultStandID  = "stand-01"
)

// DefaultProducts is the catalog a fresh device starts with.
var DefaultProducts = []string{
	"Tractores Serie 6M / 6J",
	"Cosechadoras Serie S",
	"Pulverizadoras PLA by John Deere",
	"Sembradoras 1775NT",
	"Ecosistema Conectado / Operations Center",
	"Soluciones de Posventa / Repuestos",
	"John Deere Financial",
}

// Defaults returns a fresh copy of the default configuration.
func Defaults() survey.AppConfig {
	return survey.AppConfig{
		AdminPIN:          DefaultAdminPIN,
		AvailableProducts: append([]string(nil), DefaultProducts...),
		StandID:           DefaultStandID,
		SectorName:        "",
	}
}

// KV is the settings persistence the store needs.
type KV interface {
	Setting(ctx context.Context, key string) (string, bool, error)
	PutSetting(ctx context.Context, key, value string) error
}

// Store reads and writes the device configuration.
type Store struct {
	kv     KV
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a configuration store backed by kv.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{kv: kv, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetConfig returns the current configuration.
//
// When none exists, the defaults are persisted and returned. A failure to
// persist the defaults is logged and the defaults are still returned; the
// next call tries again. Fields missing from an older stored document keep
// their default values.
func (s *Store) GetConfig(ctx context.Context) (survey.AppConfig, error) {
	raw, ok, err := s.kv.Setting(ctx, SettingKey)
	if err != nil {
		return survey.AppConfig{}, fmt.Errorf("get config: %w", err)
	}

	cfg := Defaults()
	if !ok {
		if err := s.put(ctx, cfg); err != nil {
			s.logger.Warn("default config not persisted", "error", err)
		}
		return cfg, nil
	}

	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		return survey.AppConfig{}, survey.NewStorageError("decode config", err)
	}
	return cfg, nil
}

// SaveConfig replaces the stored configuration with cfg.
func (s *Store) SaveConfig(ctx context.Context, cfg survey.AppConfig) error {
	if err := s.put(ctx, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	s.logger.Info("config saved", "stand_id", cfg.StandID, "sector", cfg.SectorName, "products", len(cfg.AvailableProducts))
	return nil
}

// Update loads the configuration, applies fn and saves the result.
func (s *Store) Update(ctx context.Context, fn func(*survey.AppConfig)) (survey.AppConfig, error) {
	cfg, err := s.GetConfig(ctx)
	if err != nil {
		return survey.AppConfig{}, err
	}
	fn(&cfg)
	if err := s.SaveConfig(ctx, cfg); err != nil {
		return survey.AppConfig{}, err
	}
	return cfg, nil
}

func (s *Store) put(ctx context.Context, cfg survey.AppConfig) error {
	if cfg.AvailableProducts == nil {
		cfg.AvailableProducts = []string{}
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return s.kv.PutSetting(ctx, SettingKey, string(data))
}
