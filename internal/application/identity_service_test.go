package application_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/edu-verify/internal/application"
	"github.com/oksasatya/edu-verify/internal/domain/entity"
	repo "github.com/oksasatya/edu-verify/internal/domain/repository"
	"github.com/oksasatya/edu-verify/internal/infrastructure/memory"
)

type fixture struct {
	svc      *application.Service
	store    *memory.IdentityRepository
	notifier *fakeNotifier
	clock    *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewIdentityRepository()
	return newFixtureWith(t, store, store)
}

func newFixtureWith(t *testing.T, store *memory.IdentityRepository, us repo.UserStore) *fixture {
	t.Helper()
	n := &fakeNotifier{}
	c := &clock{now: t0}
	store.SetClock(c.Now)
	svc := application.NewService(us, n, memory.NewTicketStore(), nil, application.Settings{
		DomainSuffix: ".edu",
		CodeTTL:      15 * time.Minute,
	})
	svc.Codes = &sequenceCodes{}
	svc.Now = c.Now
	return &fixture{svc: svc, store: store, notifier: n, clock: c}
}

func (f *fixture) register(t *testing.T, platformID, email string) application.Outcome {
	t.Helper()
	return f.svc.Register(context.Background(), application.RegisterInput{PlatformID: platformID, DisplayName: "User " + platformID, Email: email})
}

func (f *fixture) verify(platformID, code string) application.Outcome {
	return f.svc.Verify(context.Background(), platformID, code)
}

func TestRegisterRejectsMalformedEmail(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"", "plain", "a@b", "@uni.edu", "a b@uni.edu", "a@@uni.edu", "a@uni .edu", "a@uni."} {
		o := f.register(t, "u1", email)
		assert.Equal(t, application.OutcomeInvalidFormat, o.Kind, "email %q", email)
	}
	assert.Empty(t, f.notifier.sent)
}

func TestRegisterRejectsWrongDomain(t *testing.T) {
	f := newFixture(t)
	for _, email := range []string{"a@gmail.com", "a@uni.edu.au", "a@edu.org", "a@uni.education"} {
		o := f.register(t, "u1", email)
		assert.Equal(t, application.OutcomeWrongDomain, o.Kind, "email %q", email)
	}
	_, err := f.store.FindByPlatformID(context.Background(), "u1")
	assert.ErrorIs(t, err, repo.ErrNotFound, "rejected registrations leave no record")
}

func TestRegisterNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	o := f.register(t, "u1", "  Alice@School.EDU ")
	require.Equal(t, application.OutcomeCodeSent, o.Kind)
	assert.Equal(t, "alice@school.edu", o.Email)
	assert.Equal(t, t0.Add(15*time.Minute), o.ExpiresAt)

	msg := f.notifier.last()
	assert.Equal(t, "alice@school.edu", msg.Email)
	assert.Equal(t, "User u1", msg.DisplayName)
	assert.Len(t, msg.Code, 6)
}

func TestEndToEnd(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, application.OutcomeCodeSent, f.register(t, "u1", "alice@school.edu").Kind)
	code := f.notifier.last().Code

	assert.Equal(t, application.OutcomeInvalidCode, f.verify("u1", "999999").Kind)

	o := f.verify("u1", code)
	require.Equal(t, application.OutcomeVerified, o.Kind)
	assert.Equal(t, "alice@school.edu", o.Email)
	assert.Equal(t, t0, o.VerifiedAt)

	assert.Equal(t, application.OutcomeInvalidCode, f.verify("u1", code).Kind)

	i, _, err := f.svc.GetIdentity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusVerified, i.Status())
	_, pending := i.Pending()
	assert.False(t, pending)
}

func TestReRegisterInvalidatesPreviousCode(t *testing.T) {
	f := newFixture(t)

	f.register(t, "u1", "alice@school.edu")
	first := f.notifier.last().Code
	f.register(t, "u1", "alice@school.edu")
	second := f.notifier.last().Code
	require.NotEqual(t, first, second)

	assert.Equal(t, application.OutcomeInvalidCode, f.verify("u1", first).Kind)
	assert.Equal(t, application.OutcomeVerified, f.verify("u1", second).Kind)
}

func TestReRegisterCanChangeEmailBeforeVerification(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1", "old@school.edu")
	f.register(t, "u1", "new@school.edu")

	o := f.verify("u1", f.notifier.last().Code)
	require.Equal(t, application.OutcomeVerified, o.Kind)
	assert.Equal(t, "new@school.edu", o.Email)
}

func TestExpiryBoundary(t *testing.T) {
	tests := []struct {
		name   string
		offset time.Duration
		want   application.OutcomeKind
	}{
		{"one millisecond before", -time.Millisecond, application.OutcomeVerified},
		{"exactly at expiry", 0, application.OutcomeExpired},
		{"one millisecond after", time.Millisecond, application.OutcomeExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			reg := f.register(t, "u1", "alice@school.edu")
			require.Equal(t, application.OutcomeCodeSent, reg.Kind)
			code := f.notifier.last().Code

			f.clock.Set(reg.ExpiresAt.Add(tt.offset))
			assert.Equal(t, tt.want, f.verify("u1", code).Kind)
		})
	}
}

func TestExpiredCodeIsCleared(t *testing.T) {
	f := newFixture(t)
	reg := f.register(t, "u1", "alice@school.edu")
	code := f.notifier.last().Code

	f.clock.Set(reg.ExpiresAt)
	o := f.verify("u1", code)
	require.Equal(t, application.OutcomeExpired, o.Kind)
	assert.Equal(t, reg.ExpiresAt, o.ExpiresAt)

	// the code is gone, so a retry is InvalidCode rather than Expired again
	assert.Equal(t, application.OutcomeInvalidCode, f.verify("u1", code).Kind)

	i, _, err := f.svc.GetIdentity(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusNoPending, i.Status())

	// a fresh registration recovers
	f.register(t, "u1", "alice@school.edu")
	assert.Equal(t, application.OutcomeVerified, f.verify("u1", f.notifier.last().Code).Kind)
}

func TestEmailUniqueness(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "alice@school.edu")
	require.Equal(t, application.OutcomeVerified, f.verify("A", f.notifier.last().Code).Kind)

	sent := len(f.notifier.sent)
	o := f.register(t, "B", "Alice@School.edu")
	assert.Equal(t, application.OutcomeEmailTaken, o.Kind)
	assert.Len(t, f.notifier.sent, sent, "no code is sent for a taken email")

	o = f.register(t, "A", "alice@school.edu")
	assert.Equal(t, application.OutcomeAlreadyVerified, o.Kind)
	assert.False(t, o.EmailMismatch)
}

func TestAlreadyVerifiedDetails(t *testing.T) {
	f := newFixture(t)
	f.svc.Stats = fakeStats{st: entity.ProjectStats{Assigned: 3, Led: 1}}

	f.register(t, "A", "alice@school.edu")
	f.clock.Set(t0.Add(time.Minute))
	require.Equal(t, application.OutcomeVerified, f.verify("A", f.notifier.last().Code).Kind)

	o := f.register(t, "A", "alice.two@school.edu")
	require.Equal(t, application.OutcomeAlreadyVerified, o.Kind)
	assert.Equal(t, "alice@school.edu", o.Email)
	assert.Equal(t, "alice.two@school.edu", o.SubmittedEmail)
	assert.True(t, o.EmailMismatch)
	assert.Equal(t, t0, o.RegisteredAt)
	assert.Equal(t, t0.Add(time.Minute), o.VerifiedAt)
	assert.Equal(t, entity.ProjectStats{Assigned: 3, Led: 1}, o.Projects)

	// the stored email is not replaced
	i, _, err := f.svc.GetIdentity(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, "alice@school.edu", i.Email)
}

func TestFormatCheckedBeforeVerifiedStatus(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "alice@school.edu")
	f.verify("A", f.notifier.last().Code)

	// format and domain are still judged first
	assert.Equal(t, application.OutcomeWrongDomain, f.register(t, "A", "alice@gmail.com").Kind)
}

func TestVerifiedIsTerminal(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "alice@school.edu")
	code := f.notifier.last().Code
	require.Equal(t, application.OutcomeVerified, f.verify("A", code).Kind)

	for _, c := range []string{code, "100001", "999999", "", "abc"} {
		assert.Equal(t, application.OutcomeInvalidCode, f.verify("A", c).Kind, "code %q", c)
	}
	f.clock.Set(t0.Add(24 * time.Hour))
	assert.Equal(t, application.OutcomeInvalidCode, f.verify("A", code).Kind)
}

func TestVerifyUnknownIdentity(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, application.OutcomeInvalidCode, f.verify("ghost", "123456").Kind)
}

func TestVerifyTrimsCode(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "alice@school.edu")
	assert.Equal(t, application.OutcomeVerified, f.verify("A", " "+f.notifier.last().Code+"\n").Kind)
}

func TestNotificationFailureKeepsPendingCode(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("mailgun: 503")

	o := f.register(t, "A", "alice@school.edu")
	require.Equal(t, application.OutcomeNotificationFailed, o.Kind)

	i, _, err := f.svc.GetIdentity(context.Background(), "A")
	require.NoError(t, err)
	p, ok := i.Pending()
	require.True(t, ok)
	assert.Equal(t, application.OutcomeVerified, f.verify("A", p.Code).Kind)
}

func TestStoreFailureIsInternalError(t *testing.T) {
	mem := memory.NewIdentityRepository()
	f := newFixtureWith(t, mem, &failingStore{IdentityRepository: mem, failUpsert: true})

	o := f.register(t, "A", "alice@school.edu")
	assert.Equal(t, application.OutcomeInternalError, o.Kind)
	assert.False(t, o.Success())
	assert.Empty(t, f.notifier.sent)

	f = newFixtureWith(t, mem, &failingStore{IdentityRepository: mem, failFind: true})
	assert.Equal(t, application.OutcomeInternalError, f.register(t, "A", "alice@school.edu").Kind)
}

func TestRegisterLosesRaceToVerification(t *testing.T) {
	mem := memory.NewIdentityRepository()
	f := newFixtureWith(t, mem, &racingStore{IdentityRepository: mem, at: t0})

	o := f.register(t, "A", "alice@school.edu")
	require.Equal(t, application.OutcomeAlreadyVerified, o.Kind)
	assert.Equal(t, "winner@uni.edu", o.Email)
	assert.True(t, o.EmailMismatch)
	assert.Empty(t, f.notifier.sent)
}

func TestConcurrentVerifySameCode(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "alice@school.edu")
	code := f.notifier.last().Code

	const n = 16
	var wg sync.WaitGroup
	results := make(chan application.OutcomeKind, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.verify("A", code).Kind
		}()
	}
	wg.Wait()
	close(results)

	counts := map[application.OutcomeKind]int{}
	for k := range results {
		counts[k]++
	}
	assert.Equal(t, 1, counts[application.OutcomeVerified])
	assert.Equal(t, n-1, counts[application.OutcomeInvalidCode])
}

func TestConcurrentVerifySameEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "A", "shared@school.edu")
	codeA := f.notifier.last().Code
	f.register(t, "B", "shared@school.edu")
	codeB := f.notifier.last().Code

	var wg sync.WaitGroup
	var a, b application.Outcome
	wg.Add(2)
	go func() { defer wg.Done(); a = f.verify("A", codeA) }()
	go func() { defer wg.Done(); b = f.verify("B", codeB) }()
	wg.Wait()

	kinds := []application.OutcomeKind{a.Kind, b.Kind}
	assert.ElementsMatch(t, []application.OutcomeKind{application.OutcomeVerified, application.OutcomeEmailTaken}, kinds)

	_, err := f.store.FindVerifiedByEmail(context.Background(), "shared@school.edu")
	assert.NoError(t, err)
}

func TestInteractiveAuthorization(t *testing.T) {
	f := newFixture(t)
	f.register(t, "u1", "alice@school.edu")
	code := f.notifier.last().Code

	o := f.svc.BeginInteractiveVerify(context.Background(), "u1", "u2")
	assert.Equal(t, application.OutcomeNotAuthorized, o.Kind)
	assert.Empty(t, o.Ticket)

	// nothing was consumed
	assert.Equal(t, application.OutcomeVerified, f.verify("u1", code).Kind)
}

func TestInteractiveFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "u1", "alice@school.edu")
	code := f.notifier.last().Code

	opened := f.svc.BeginInteractiveVerify(ctx, "u1", "u1")
	require.Equal(t, application.OutcomeFormOpened, opened.Kind)
	require.NotEmpty(t, opened.Ticket)
	assert.Equal(t, t0.Add(15*time.Minute), opened.ExpiresAt)

	assert.Equal(t, application.OutcomeNotAuthorized, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u2", code).Kind)
	assert.Equal(t, application.OutcomeNotAuthorized, f.svc.SubmitInteractiveVerify(ctx, "no-such-ticket", "u1", code).Kind)

	// a wrong code keeps the form usable
	assert.Equal(t, application.OutcomeInvalidCode, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u1", "000000").Kind)
	assert.Equal(t, application.OutcomeVerified, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u1", code).Kind)

	assert.Equal(t, application.OutcomeNotAuthorized, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u1", code).Kind)
}

func TestInteractiveExpiredCodeReleasesTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	reg := f.register(t, "u1", "alice@school.edu")
	code := f.notifier.last().Code
	opened := f.svc.BeginInteractiveVerify(ctx, "u1", "u1")

	f.clock.Set(reg.ExpiresAt)
	assert.Equal(t, application.OutcomeExpired, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u1", code).Kind)
	assert.Equal(t, application.OutcomeNotAuthorized, f.svc.SubmitInteractiveVerify(ctx, opened.Ticket, "u1", code).Kind)
}

func TestAuditAndDirectory(t *testing.T) {
	f := newFixture(t)
	audit := &fakeAudit{}
	dir := &fakeDirectory{}
	f.svc.Audit = audit
	f.svc.Directory = dir

	f.register(t, "A", "alice@school.edu")
	f.verify("A", "000000")
	f.verify("A", f.notifier.last().Code)

	assert.Equal(t, []string{"register_code_sent", "verify_invalid_code", "verify_verified"}, audit.actions())
	assert.Equal(t, []string{"A"}, dir.indexed)

	_, err := f.svc.SetCouncilMember(context.Background(), "A", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A"}, dir.indexed)
}

func TestSetCouncilMemberUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SetCouncilMember(context.Background(), "ghost", true)
	assert.ErrorIs(t, err, application.ErrIdentityNotFound)
}

func TestSearchDirectory(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SearchDirectory(context.Background(), "ali", 5)
	assert.ErrorIs(t, err, application.ErrDirectoryOff)

	dir := &fakeDirectory{results: []application.DirectoryEntry{{PlatformID: "A"}}}
	f.svc.Directory = dir
	res, err := f.svc.SearchDirectory(context.Background(), "ali", 500)
	require.NoError(t, err)
	assert.Len(t, res, 1)
	assert.Equal(t, 10, dir.size, "oversized page falls back to default")
}

func TestGetIdentityUnknown(t *testing.T) {
	f := newFixture(t)
	_, _, err := f.svc.GetIdentity(context.Background(), "ghost")
	assert.ErrorIs(t, err, application.ErrIdentityNotFound)
}
