// Package profile manages the persisted settings and user records. Neither
// record participates in the reward flows; they round-trip through the same
// storage port as everything else.
package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rbxsim/rbxsim/internal/domain"
	"github.com/rbxsim/rbxsim/internal/infra/observability"
)

// Service owns the settings and user records.
type Service struct {
	mu     sync.Mutex
	store  domain.StoragePort
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup

	settings domain.SettingsRecord
	user     domain.UserRecord
}

// NewService starts from the out-of-box defaults; Restore overlays whatever
// the store holds.
func NewService(store domain.StoragePort, logger *zap.Logger, now func() time.Time) *Service {
	return &Service{
		store:    store,
		logger:   logger,
		now:      now,
		settings: domain.DefaultSettings(),
	}
}

// Settings returns the current settings record.
func (s *Service) Settings() domain.SettingsRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the settings record and persists it. Conversion
// rates default back when the caller sends none.
func (s *Service) UpdateSettings(ctx context.Context, rec domain.SettingsRecord) domain.SettingsRecord {
	if rec.ConversionRates == nil {
		rec.ConversionRates = domain.DefaultSettings().ConversionRates
	}

	s.mu.Lock()
	s.settings = rec
	s.mu.Unlock()

	s.persistAsync(ctx, domain.KeySettings, rec)
	return rec
}

// User returns the current user record.
func (s *Service) User() domain.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// UpdateUser replaces the user record and persists it. CreatedAt is stamped
// on the first write and preserved afterwards.
func (s *Service) UpdateUser(ctx context.Context, rec domain.UserRecord) domain.UserRecord {
	s.mu.Lock()
	if s.user.CreatedAt.IsZero() {
		rec.CreatedAt = s.now()
	} else {
		rec.CreatedAt = s.user.CreatedAt
	}
	s.user = rec
	s.mu.Unlock()

	s.persistAsync(ctx, domain.KeyUser, rec)
	return rec
}

// Reset restores both records to defaults without touching storage.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = domain.DefaultSettings()
	s.user = domain.UserRecord{}
}

// Restore loads both records. Missing keys keep defaults; corrupt blobs are
// logged and replaced with defaults.
func (s *Service) Restore(ctx context.Context) error {
	raw, err := s.store.Get(ctx, domain.KeySettings)
	if err != nil {
		return fmt.Errorf("load settings record: %w", err)
	}
	if raw != nil {
		var rec domain.SettingsRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("corrupt settings record, using defaults", zap.Error(err))
		} else {
			s.mu.Lock()
			s.settings = rec
			s.mu.Unlock()
		}
	}

	raw, err = s.store.Get(ctx, domain.KeyUser)
	if err != nil {
		return fmt.Errorf("load user record: %w", err)
	}
	if raw != nil {
		var rec domain.UserRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			s.logger.Warn("corrupt user record, using defaults", zap.Error(err))
		} else {
			s.mu.Lock()
			s.user = rec
			s.mu.Unlock()
		}
	}
	return nil
}

// Save persists both records synchronously. Used at shutdown.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	settings, user := s.settings, s.user
	s.mu.Unlock()

	if err := s.persist(ctx, domain.KeySettings, settings); err != nil {
		return err
	}
	return s.persist(ctx, domain.KeyUser, user)
}

// Wait blocks until in-flight persistence requests finish.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) persistAsync(ctx context.Context, key string, rec any) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.persist(context.WithoutCancel(ctx), key, rec); err != nil {
			s.logger.Warn("profile persistence failed; in-memory state unaffected",
				zap.String("key", key), zap.Error(err))
		}
	}()
}

func (s *Service) persist(ctx context.Context, key string, rec any) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s record: %w", key, err)
	}
	if err := s.store.Set(ctx, key, raw); err != nil {
		observability.PersistenceFailures.WithLabelValues(key).Inc()
		return fmt.Errorf("save %s record: %w", key, err)
	}
	return nil
}
