package redis

import (
	"context"
	"encoding/json"
	"errors"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/repository"
)

type preferencesRepository struct {
	client *redislib.Client
	key    string
}

// NewPreferencesRepository stores preferences as a JSON string without expiry.
func NewPreferencesRepository(client *redislib.Client, prefix string) repository.PreferencesRepository {
	return &preferencesRepository{
		client: client,
		key:    normalizePrefix(prefix) + "preferences",
	}
}

func (r *preferencesRepository) Load(ctx context.Context) (*domain.Preferences, error) {
	result, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrNotStored
		}
		return nil, err
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(result), &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

func (r *preferencesRepository) Save(ctx context.Context, prefs domain.Preferences) error {
	payload, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, 0).Err()
}
