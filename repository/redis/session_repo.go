package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/stockdesk/domain"
	"github.com/fastygo/stockdesk/repository"
)

type sessionRepository struct {
	client *redislib.Client
	key    string
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session repository. Every
// client sharing the prefix sees the same session. A ttl of zero keeps the
// entry until logout.
func NewSessionRepository(client *redislib.Client, prefix string, ttl time.Duration) repository.SessionRepository {
	return &sessionRepository{
		client: client,
		key:    fmt.Sprintf("%ssession", normalizePrefix(prefix)),
		ttl:    ttl,
	}
}

func (r *sessionRepository) Load(ctx context.Context) (*domain.Session, error) {
	result, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrNotStored
		}
		return nil, err
	}

	var session domain.Session
	if err := json.Unmarshal([]byte(result), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) Save(ctx context.Context, session domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, r.ttl).Err()
}

func (r *sessionRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "stockdesk:"
	}
	if prefix[len(prefix)-1] != ':' {
		return prefix + ":"
	}
	return prefix
}
