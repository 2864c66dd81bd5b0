package application_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/entity"
	repo "github.com/oksasatya/edu-verify/internal/domain/repository"
	"github.com/oksasatya/edu-verify/internal/infrastructure/memory"
)

var t0 = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// sequenceCodes hands out 100001, 100002, ...
type sequenceCodes struct {
	mu   sync.Mutex
	next int
}

func (s *sequenceCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%d", 100000+s.next), nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []application.VerificationMessage
	err  error
}

func (f *fakeNotifier) SendVerificationCode(_ context.Context, msg application.VerificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeNotifier) last() application.VerificationMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return application.VerificationMessage{}
	}
	return f.sent[len(f.sent)-1]
}

type fakeStats struct{ st entity.ProjectStats }

func (f fakeStats) ProjectStats(context.Context, string) (entity.ProjectStats, error) {
	return f.st, nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func (f *fakeAudit) Record(_ context.Context, e repo.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e.Action)
	}
	return out
}

type fakeDirectory struct {
	mu      sync.Mutex
	indexed []string
	results []application.DirectoryEntry
	size    int
}

func (f *fakeDirectory) Index(_ context.Context, i *entity.Identity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, i.PlatformID)
	return nil
}

func (f *fakeDirectory) Search(_ context.Context, _ string, size int) ([]application.DirectoryEntry, error) {
	f.size = size
	return f.results, nil
}

// failingStore fails every call after the wrapped store answers reads.
type failingStore struct {
	*memory.IdentityRepository
	failUpsert bool
	failFind   bool
}

var errDB = errors.New("connection reset by peer")

func (s *failingStore) FindByPlatformID(ctx context.Context, id string) (*entity.Identity, error) {
	if s.failFind {
		return nil, errDB
	}
	return s.IdentityRepository.FindByPlatformID(ctx, id)
}

func (s *failingStore) UpsertPending(ctx context.Context, p repo.PendingRegistration) (*entity.Identity, error) {
	if s.failUpsert {
		return nil, errDB
	}
	return s.IdentityRepository.UpsertPending(ctx, p)
}

// racingStore verifies the identity from "another request" right before the upsert lands.
type racingStore struct {
	*memory.IdentityRepository
	at time.Time
}

func (s *racingStore) UpsertPending(ctx context.Context, p repo.PendingRegistration) (*entity.Identity, error) {
	s.Put(entity.Identity{
		PlatformID: p.PlatformID,
		Email:      "winner@uni.edu",
		State:      entity.Verified{Email: "winner@uni.edu", VerifiedAt: s.at},
		CreatedAt:  s.at,
	})
	return s.IdentityRepository.UpsertPending(ctx, p)
}
