package repository

import (
	"context"

	"github.com/fastygo/stockdesk/domain"
)

// SessionRepository persists the durable session triple. Load returns
// domain.ErrNotStored when nothing was saved yet.
type SessionRepository interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, session domain.Session) error
	Clear(ctx context.Context) error
}
