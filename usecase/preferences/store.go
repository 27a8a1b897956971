// Package preferences keeps the delivery settings the user asked to remember.
package preferences

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/pkg/observe"
	"github.com/fastygo/stockdesk/repository"
)

var ErrInvalidPhone = domain.NewError(domain.ErrCodeInvalid, "whatsapp number must be a valid Brazilian phone")

type Store struct {
	repo   repository.PreferencesRepository
	logger *zap.Logger

	mu    sync.RWMutex
	prefs domain.Preferences

	subject observe.Subject[domain.Preferences]
}

// New returns a store that remembers numbers by default. repo may be nil.
func New(repo repository.PreferencesRepository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:   repo,
		logger: logger,
		prefs:  domain.Preferences{RememberWhatsApp: true},
	}
}

// Restore loads persisted preferences once at startup.
func (s *Store) Restore(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.repo.Load(ctx)
	if errors.Is(err, domain.ErrNotStored) {
		return nil
	}
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "restore preferences", err)
	}
	prefs := *stored
	if !prefs.RememberWhatsApp {
		prefs.WhatsApp = ""
	}
	s.set(prefs)
	return nil
}

// SetWhatsApp validates and stores the number. With remember false the number
// is kept for this process only.
func (s *Store) SetWhatsApp(ctx context.Context, raw string, remember bool) error {
	phone, ok := ToE164BR(raw)
	if !ok {
		return ErrInvalidPhone
	}
	prefs := domain.Preferences{WhatsApp: phone, RememberWhatsApp: remember}
	s.set(prefs)
	return s.persist(ctx, prefs)
}

// ClearWhatsApp forgets the number but keeps the remember choice.
func (s *Store) ClearWhatsApp(ctx context.Context) error {
	s.mu.RLock()
	prefs := domain.Preferences{RememberWhatsApp: s.prefs.RememberWhatsApp}
	s.mu.RUnlock()
	s.set(prefs)
	return s.persist(ctx, prefs)
}

func (s *Store) Current() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.prefs
}

// WhatsApp returns the number to attach to reports, or "".
func (s *Store) WhatsApp() string {
	return s.Current().WhatsApp
}

func (s *Store) Subscribe(fn func(domain.Preferences)) func() {
	return s.subject.Subscribe(fn)
}

func (s *Store) set(prefs domain.Preferences) {
	s.subject.Update(func() domain.Preferences {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.prefs = prefs
		return prefs
	})
}

func (s *Store) persist(ctx context.Context, prefs domain.Preferences) error {
	if s.repo == nil {
		return nil
	}
	durable := prefs
	if !durable.RememberWhatsApp {
		durable.WhatsApp = ""
	}
	if err := s.repo.Save(ctx, durable); err != nil {
		s.logger.Error("failed to persist preferences", zap.Error(err))
		return domain.WrapError(domain.ErrCodeInternal, "save preferences", err)
	}
	return nil
}
