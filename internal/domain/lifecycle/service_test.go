package lifecycle_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
	"github.com/honeycarbs/career-ledger/internal/domain/lifecycle"
	"github.com/honeycarbs/career-ledger/internal/storage/memory"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingRecorder struct {
	created    int
	recorded   map[domain.EventType]int
	rejected   map[domain.TransitionReason]int
	concurrent int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		recorded: make(map[domain.EventType]int),
		rejected: make(map[domain.TransitionReason]int),
	}
}

func (r *countingRecorder) ApplicationCreated()                               { r.created++ }
func (r *countingRecorder) EventRecorded(t domain.EventType)                  { r.recorded[t]++ }
func (r *countingRecorder) TransitionRejected(reason domain.TransitionReason) { r.rejected[reason]++ }
func (r *countingRecorder) ConcurrentUpdate()                                 { r.concurrent++ }

type fixture struct {
	repo     *memory.ApplicationRepository
	clock    *clock
	recorder *countingRecorder
	svc      lifecycle.Service
	account  domain.AccountID
}

func newFixture(t *testing.T, opts ...lifecycle.Option) *fixture {
	t.Helper()

	f := &fixture{
		repo:     memory.NewApplicationRepository(memory.NewStore()),
		clock:    &clock{now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)},
		recorder: newCountingRecorder(),
		account:  uuid.New(),
	}

	all := append([]lifecycle.Option{
		lifecycle.WithRepository(f.repo),
		lifecycle.WithClock(f.clock.Now),
		lifecycle.WithMetrics(f.recorder),
	}, opts...)

	svc, err := lifecycle.NewService(all...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) create(t *testing.T, company string) *application.Application {
	t.Helper()
	app, err := f.svc.CreateApplication(context.Background(), application.Params{
		AccountID:   f.account,
		CompanyName: company,
		JobTitle:    "Backend Engineer",
	})
	require.NoError(t, err)
	return app
}

func (f *fixture) record(app *application.Application, et domain.EventType) (*application.Application, error) {
	return f.svc.RecordEvent(context.Background(), lifecycle.RecordEventInput{
		AccountID:     f.account,
		ApplicationID: app.ID(),
		Type:          et,
	})
}

func TestNewService_RequiresRepository(t *testing.T) {
	_, err := lifecycle.NewService()
	assert.Error(t, err)

	_, err = lifecycle.NewService(lifecycle.WithRepository(memory.NewApplicationRepository(memory.NewStore())), lifecycle.WithPolicy(nil))
	assert.Error(t, err)
}

func TestService_RecordEventPipeline(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	for _, step := range []domain.EventType{
		domain.EventInReview,
		domain.EventPhoneScreen,
		domain.EventPhoneScreen,
		domain.EventOnsiteInterview,
		domain.EventOfferReceived,
		domain.EventOfferAccepted,
	} {
		f.clock.Advance(time.Hour)
		updated, err := f.record(app, step)
		require.NoError(t, err, step.String())
		assert.Equal(t, step, updated.CurrentStatus())
	}

	stored, err := f.svc.Get(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.Equal(t, 7, stored.EventCount())
	assert.Equal(t, domain.EventOfferAccepted, stored.CurrentStatus())

	assert.Equal(t, 1, f.recorder.created)
	assert.Equal(t, 2, f.recorder.recorded[domain.EventPhoneScreen])
}

func TestService_IllegalTransitionNotPersisted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	f.clock.Advance(time.Second)
	_, err := f.record(app, domain.EventRejected)
	require.NoError(t, err)

	f.clock.Advance(time.Second)
	_, err = f.record(app, domain.EventInReview)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	var terr *domain.TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, domain.EventRejected, terr.From)
	assert.Equal(t, domain.EventInReview, terr.To)
	assert.Equal(t, domain.ReasonTerminalState, terr.Reason)

	stored, err := f.svc.Get(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EventCount())
	assert.Equal(t, domain.EventRejected, stored.CurrentStatus())
	assert.Equal(t, 1, f.recorder.rejected[domain.ReasonTerminalState])
}

func TestService_RecordEventBackdated(t *testing.T) {
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	updated, err := f.svc.RecordEvent(context.Background(), lifecycle.RecordEventInput{
		AccountID:     f.account,
		ApplicationID: app.ID(),
		Type:          domain.EventInReview,
		OccurredAt:    f.clock.Now().Add(-time.Hour),
		Notes:         "recruiter emailed yesterday",
	})
	require.NoError(t, err)

	// an event older than Submitted does not become the current status
	assert.Equal(t, domain.EventSubmitted, updated.CurrentStatus())
	assert.Equal(t, 2, updated.EventCount())
}

func TestService_RecordEventRejectsFuture(t *testing.T) {
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	_, err := f.svc.RecordEvent(context.Background(), lifecycle.RecordEventInput{
		AccountID:     f.account,
		ApplicationID: app.ID(),
		Type:          domain.EventInReview,
		OccurredAt:    f.clock.Now().Add(2 * time.Hour),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// racingRepo lets another writer append right before the service does
type racingRepo struct {
	*memory.ApplicationRepository
	race func(ctx context.Context)
}

func (r *racingRepo) AppendEvent(ctx context.Context, ev application.Event, expectedVersion int) error {
	if r.race != nil {
		race := r.race
		r.race = nil
		race(ctx)
	}
	return r.ApplicationRepository.AppendEvent(ctx, ev, expectedVersion)
}

func TestService_ConcurrentUpdate(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewApplicationRepository(memory.NewStore())
	repo := &racingRepo{ApplicationRepository: inner}
	recorder := newCountingRecorder()

	svc, err := lifecycle.NewService(lifecycle.WithRepository(repo), lifecycle.WithMetrics(recorder))
	require.NoError(t, err)

	accountID := uuid.New()
	app, err := svc.CreateApplication(ctx, application.Params{
		AccountID:   accountID,
		CompanyName: "TechCorp",
		JobTitle:    "Engineer",
	})
	require.NoError(t, err)

	repo.race = func(ctx context.Context) {
		ev, err := application.NewEvent(app.ID(), accountID, domain.EventRejected, time.Now(), "")
		require.NoError(t, err)
		require.NoError(t, inner.AppendEvent(ctx, ev, 1))
	}

	_, err = svc.RecordEvent(ctx, lifecycle.RecordEventInput{
		AccountID:     accountID,
		ApplicationID: app.ID(),
		Type:          domain.EventOfferReceived,
	})
	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
	assert.Equal(t, 1, recorder.concurrent)

	stored, err := svc.Get(ctx, accountID, app.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, stored.EventCount())
	assert.Equal(t, domain.EventRejected, stored.CurrentStatus())
}

func TestService_OtherAccountSeesNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	stranger := uuid.New()
	_, err := f.svc.Get(ctx, stranger, app.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.RecordEvent(ctx, lifecycle.RecordEventInput{
		AccountID:     stranger,
		ApplicationID: app.ID(),
		Type:          domain.EventWithdrawn,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.UpdateBasicInfo(ctx, lifecycle.UpdateInput{
		AccountID:     stranger,
		ApplicationID: app.ID(),
		CompanyName:   "Hijack",
		JobTitle:      "Engineer",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_UpdateBasicInfo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	f.clock.Advance(time.Minute)
	_, err := f.record(app, domain.EventInReview)
	require.NoError(t, err)

	updated, err := f.svc.UpdateBasicInfo(ctx, lifecycle.UpdateInput{
		AccountID:     f.account,
		ApplicationID: app.ID(),
		CompanyName:   "TechCorp International",
		JobTitle:      "Staff Engineer",
		JobURL:        "https://techcorp.example/jobs/9",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.EventInReview, updated.CurrentStatus())

	stored, err := f.svc.Get(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.Equal(t, "TechCorp International", stored.CompanyName())
	assert.Equal(t, "https://techcorp.example/jobs/9", stored.JobURL())
	assert.Equal(t, 2, stored.EventCount())
}

func TestService_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := f.create(t, "Alpha")
	f.clock.Advance(time.Hour)
	second := f.create(t, "Beta")
	f.clock.Advance(time.Hour)
	_, err := f.record(first, domain.EventInReview)
	require.NoError(t, err)

	apps, err := f.svc.List(ctx, f.account)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, first.ID(), apps[0].ID())
	assert.Equal(t, second.ID(), apps[1].ID())

	others, err := f.svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestService_Transitions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	set, err := f.svc.Transitions(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.EventSubmitted, set.Current)
	assert.False(t, set.Terminal)
	assert.Equal(t, lifecycle.Next(domain.EventSubmitted), set.Next)

	f.clock.Advance(time.Minute)
	_, err = f.record(app, domain.EventWithdrawn)
	require.NoError(t, err)

	set, err = f.svc.Transitions(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.True(t, set.Terminal)
	assert.Empty(t, set.Next)
}

func TestService_CustomPolicy(t *testing.T) {
	strict := lifecycle.PolicyFunc(func(from, to domain.EventType) error {
		if to == domain.EventWithdrawn {
			return &domain.TransitionError{From: from, To: to, Reason: domain.ReasonNoSuchEdge}
		}
		return lifecycle.Validate(from, to)
	})
	f := newFixture(t, lifecycle.WithPolicy(strict))
	app := f.create(t, "TechCorp")

	_, err := f.record(app, domain.EventWithdrawn)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 1, f.recorder.rejected[domain.ReasonNoSuchEdge])

	// the injected policy also shapes the advertised next statuses
	set := f.svc.TransitionsFor(app)
	assert.Contains(t, set.Next, domain.EventRejected)
	assert.NotContains(t, set.Next, domain.EventWithdrawn)
}

func TestService_TransitionsForUsesLoadedState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	app := f.create(t, "TechCorp")

	f.clock.Advance(time.Minute)
	updated, err := f.record(app, domain.EventOfferReceived)
	require.NoError(t, err)

	set := f.svc.TransitionsFor(updated)
	assert.Equal(t, domain.EventOfferReceived, set.Current)
	assert.Equal(t, lifecycle.Next(domain.EventOfferReceived), set.Next)

	stored, err := f.svc.Transitions(ctx, f.account, app.ID())
	require.NoError(t, err)
	assert.Equal(t, set, stored)
}
