package bolt

import (
	"context"

	"github.com/fastygo/stockdesk/domain"
	boltInfra "github.com/fastygo/stockdesk/internal/infrastructure/bolt"
	"github.com/fastygo/stockdesk/repository"
)

const (
	sessionKey     = "session"
	preferencesKey = "preferences"
)

type sessionRepository struct {
	store *boltInfra.Store
}

// NewSessionRepository persists the session triple in the local Bolt file.
func NewSessionRepository(store *boltInfra.Store) repository.SessionRepository {
	return &sessionRepository{store: store}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var session domain.Session
	found, err := r.store.Get(sessionKey, &session)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotStored
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Put(sessionKey, session)
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Delete(sessionKey)
}

type preferencesRepository struct {
	store *boltInfra.Store
}

// NewPreferencesRepository persists delivery preferences in the local Bolt file.
func NewPreferencesRepository(store *boltInfra.Store) repository.PreferencesRepository {
	return &preferencesRepository{store: store}
}

func (r *preferencesRepository) Load(ctx context.Context) (*domain.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var prefs domain.Preferences
	found, err := r.store.Get(preferencesKey, &prefs)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domain.ErrNotStored
	}
	return &prefs, nil
}

func (r *preferencesRepository) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Put(preferencesKey, prefs)
}
