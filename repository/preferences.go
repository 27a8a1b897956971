package repository

import (
	"context"

	"github.com/fastygo/stockdesk/domain"
)

// PreferencesRepository persists the remembered delivery settings.
type PreferencesRepository interface {
	Load(ctx context.Context) (*domain.Preferences, error)
	Save(ctx context.Context, prefs domain.Preferences) error
}
