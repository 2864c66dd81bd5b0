package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/repository"
)

type ticket struct {
	platformID string
	expiresAt  time.Time
}

// TicketStore keeps interactive verification tickets in process memory.
type TicketStore struct {
	mu      sync.Mutex
	tickets map[string]ticket
	now     func() time.Time
}

func NewTicketStore() *TicketStore {
	return &TicketStore{tickets: map[string]ticket{}, now: time.Now}
}

func (s *TicketStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *TicketStore) Issue(ctx context.Context, platformID string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.tickets[id] = ticket{platformID: platformID, expiresAt: s.now().Add(ttl)}
	return id, nil
}

func (s *TicketStore) Resolve(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return "", repository.ErrNotFound
	}
	if !s.now().Before(t.expiresAt) {
		delete(s.tickets, id)
		return "", repository.ErrNotFound
	}
	return t.platformID, nil
}

func (s *TicketStore) Release(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickets, id)
	return nil
}

var _ application.TicketStore = (*TicketStore)(nil)
