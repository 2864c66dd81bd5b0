package redisstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/repository"
	"github.com/oksasatya/edu-verify/pkg/helpers"
)

type ticketValue struct {
	PlatformID string    `json:"platform_id"`
	IssuedAt   time.Time `json:"issued_at"`
}

// TicketStore keeps interactive verification tickets in Redis; expiry is the key TTL.
type TicketStore struct {
	rdb *redis.Client
}

func NewTicketStore(rdb *redis.Client) *TicketStore {
	return &TicketStore{rdb: rdb}
}

func (s *TicketStore) Issue(ctx context.Context, platformID string, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	v := ticketValue{PlatformID: platformID, IssuedAt: time.Now().UTC()}
	if err := helpers.RedisSetJSON(ctx, s.rdb, helpers.KeyInteractiveTicket(id), v, ttl); err != nil {
		return "", err
	}
	return id, nil
}

func (s *TicketStore) Resolve(ctx context.Context, id string) (string, error) {
	var v ticketValue
	ok, err := helpers.RedisGetJSON(ctx, s.rdb, helpers.KeyInteractiveTicket(id), &v)
	if err != nil {
		return "", err
	}
	if !ok || v.PlatformID == "" {
		return "", repository.ErrNotFound
	}
	return v.PlatformID, nil
}

func (s *TicketStore) Release(ctx context.Context, id string) error {
	return helpers.RedisDel(ctx, s.rdb, helpers.KeyInteractiveTicket(id))
}

var _ application.TicketStore = (*TicketStore)(nil)
