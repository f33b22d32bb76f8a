package application

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/career-ledger/internal/domain"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func at(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func newTestApp(t *testing.T, opts ...Option) *Application {
	t.Helper()
	app, err := New(Params{
		AccountID:   uuid.New(),
		CompanyName: "TechCorp",
		JobTitle:    "Senior Engineer",
	}, opts...)
	require.NoError(t, err)
	return app
}

func mustEvent(t *testing.T, app *Application, et domain.EventType, occurredAt time.Time, opts ...Option) Event {
	t.Helper()
	ev, err := NewEvent(app.ID(), app.AccountID(), et, occurredAt, "", opts...)
	require.NoError(t, err)
	return ev
}

func TestNew_StartsSubmitted(t *testing.T) {
	app := newTestApp(t, at(baseTime))

	assert.Equal(t, 1, app.EventCount())
	assert.Equal(t, domain.EventSubmitted, app.CurrentStatus())
	assert.Equal(t, baseTime, app.CreatedAt())

	events := app.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventSubmitted, events[0].Type())
	assert.Equal(t, baseTime, events[0].OccurredAt())
	assert.Equal(t, app.ID(), events[0].ApplicationID())
	assert.Equal(t, app.AccountID(), events[0].AccountID())

	last, ok := app.LastUpdated()
	assert.True(t, ok)
	assert.Equal(t, baseTime, last)
}

func TestNew_SubmittedAtAndNotes(t *testing.T) {
	submitted := baseTime.Add(-48 * time.Hour)
	app, err := New(Params{
		AccountID:   uuid.New(),
		CompanyName: "  TechCorp ",
		JobTitle:    "Engineer",
		JobURL:      " https://techcorp.example/jobs/1 ",
		SubmittedAt: submitted,
		Notes:       "  via referral  ",
	}, at(baseTime))
	require.NoError(t, err)

	assert.Equal(t, "TechCorp", app.CompanyName())
	assert.Equal(t, "https://techcorp.example/jobs/1", app.JobURL())
	ev := app.Events()[0]
	assert.Equal(t, submitted, ev.OccurredAt())
	assert.Equal(t, "via referral", ev.Notes())
}

func TestNew_Validation(t *testing.T) {
	account := uuid.New()
	cases := map[string]Params{
		"nil account":    {CompanyName: "TechCorp", JobTitle: "Engineer"},
		"blank company":  {AccountID: account, CompanyName: "  ", JobTitle: "Engineer"},
		"long company":   {AccountID: account, CompanyName: strings.Repeat("c", 256), JobTitle: "Engineer"},
		"blank title":    {AccountID: account, CompanyName: "TechCorp"},
		"long title":     {AccountID: account, CompanyName: "TechCorp", JobTitle: strings.Repeat("t", 256)},
		"long url":       {AccountID: account, CompanyName: "TechCorp", JobTitle: "Engineer", JobURL: strings.Repeat("u", 2049)},
		"future submit":  {AccountID: account, CompanyName: "TechCorp", JobTitle: "Engineer", SubmittedAt: baseTime.Add(2 * time.Hour)},
		"too much notes": {AccountID: account, CompanyName: "TechCorp", JobTitle: "Engineer", Notes: strings.Repeat("n", 5001)},
	}

	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(p, at(baseTime))
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestNew_LengthBoundaries(t *testing.T) {
	_, err := New(Params{
		AccountID:   uuid.New(),
		CompanyName: strings.Repeat("c", 255),
		JobTitle:    strings.Repeat("t", 255),
		JobURL:      strings.Repeat("u", 2048),
		Notes:       strings.Repeat("n", 5000),
	})
	assert.NoError(t, err)
}

// Limits count characters, matching the VARCHAR(n) columns, so a
// character outside the BMP counts once.
func TestNew_LengthCountsCharacters(t *testing.T) {
	const rocket = "\U0001F680"

	_, err := New(Params{
		AccountID:   uuid.New(),
		CompanyName: strings.Repeat(rocket, 255),
		JobTitle:    strings.Repeat("é", 255),
		Notes:       strings.Repeat(rocket, 5000),
	})
	assert.NoError(t, err)

	_, err = New(Params{
		AccountID:   uuid.New(),
		CompanyName: strings.Repeat(rocket, 256),
		JobTitle:    "Engineer",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "company_name", verr.Field)
}

func TestCurrentStatus_Idempotent(t *testing.T) {
	app := newTestApp(t, at(baseTime))
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventInReview, baseTime, at(baseTime))))

	first := app.CurrentStatus()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, app.CurrentStatus())
	}
}

func TestCurrentStatus_OrderingLaw(t *testing.T) {
	t1 := baseTime.Add(time.Hour)
	t2 := baseTime.Add(2 * time.Hour)
	now := baseTime.Add(3 * time.Hour)

	for _, reversed := range []bool{false, true} {
		app := newTestApp(t, at(baseTime))
		early := mustEvent(t, app, domain.EventPhoneScreen, t1, at(now))
		late := mustEvent(t, app, domain.EventTechnicalInterview, t2, at(now))

		if reversed {
			require.NoError(t, app.AddEvent(late))
			require.NoError(t, app.AddEvent(early))
		} else {
			require.NoError(t, app.AddEvent(early))
			require.NoError(t, app.AddEvent(late))
		}

		assert.Equal(t, domain.EventTechnicalInterview, app.CurrentStatus(), "reversed=%t", reversed)
	}
}

func TestCurrentStatus_TieBreakOnCreatedAt(t *testing.T) {
	occurred := baseTime.Add(time.Hour)
	app := newTestApp(t, at(baseTime))

	later := mustEvent(t, app, domain.EventRejected, occurred, at(baseTime.Add(3*time.Hour)))
	earlier := mustEvent(t, app, domain.EventWithdrawn, occurred, at(baseTime.Add(2*time.Hour)))

	require.NoError(t, app.AddEvent(later))
	require.NoError(t, app.AddEvent(earlier))

	assert.Equal(t, domain.EventRejected, app.CurrentStatus())
}

func TestCurrentStatus_FullTieKeepsFirstAppended(t *testing.T) {
	occurred := baseTime.Add(time.Hour)
	created := baseTime.Add(2 * time.Hour)
	app := newTestApp(t, at(baseTime))

	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventRejected, occurred, at(created))))
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventWithdrawn, occurred, at(created))))

	assert.Equal(t, domain.EventRejected, app.CurrentStatus())
}

func TestCurrentStatus_EmptyLogIsSubmitted(t *testing.T) {
	app := &Application{}
	assert.Equal(t, domain.EventSubmitted, app.CurrentStatus())
	assert.Equal(t, 0, app.EventCount())

	_, ok := app.LastUpdated()
	assert.False(t, ok)
}

func TestAddEvent_OwnershipMismatch(t *testing.T) {
	app := newTestApp(t)
	other := newTestApp(t)

	cases := map[string]struct {
		appID     domain.ApplicationID
		accountID domain.AccountID
		field     string
	}{
		"foreign application": {appID: other.ID(), accountID: app.AccountID(), field: "application_id"},
		"foreign account":     {appID: app.ID(), accountID: other.AccountID(), field: "account_id"},
		"both foreign":        {appID: other.ID(), accountID: other.AccountID(), field: "application_id"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ev, err := NewEvent(tc.appID, tc.accountID, domain.EventInReview, time.Now(), "")
			require.NoError(t, err)

			err = app.AddEvent(ev)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrOwnershipMismatch)

			var oerr *domain.OwnershipError
			require.ErrorAs(t, err, &oerr)
			assert.Equal(t, tc.field, oerr.Field)
			assert.Equal(t, 1, app.EventCount())
		})
	}
}

func TestAddEvent_ZeroEvent(t *testing.T) {
	app := newTestApp(t)
	assert.ErrorIs(t, app.AddEvent(Event{}), domain.ErrInvalidArgument)
	assert.Equal(t, 1, app.EventCount())
}

func TestAddEvent_BackfillAllowed(t *testing.T) {
	app := newTestApp(t, at(baseTime))
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventOnsiteInterview, baseTime.Add(time.Hour), at(baseTime))))
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventPhoneScreen, baseTime.Add(-time.Hour), at(baseTime))))

	assert.Equal(t, 3, app.EventCount())
	assert.Equal(t, domain.EventOnsiteInterview, app.CurrentStatus())

	history := app.History()
	require.Len(t, history, 3)
	assert.Equal(t, domain.EventPhoneScreen, history[0].Type())
	assert.Equal(t, domain.EventSubmitted, history[1].Type())
	assert.Equal(t, domain.EventOnsiteInterview, history[2].Type())
}

func TestNewEvent_FutureBoundary(t *testing.T) {
	app := newTestApp(t, at(baseTime))
	boundary := baseTime.Add(ClockSkewTolerance)

	_, err := NewEvent(app.ID(), app.AccountID(), domain.EventInReview, boundary, "", at(baseTime))
	assert.NoError(t, err)

	_, err = NewEvent(app.ID(), app.AccountID(), domain.EventInReview, boundary.Add(-time.Nanosecond), "", at(baseTime))
	assert.NoError(t, err)

	_, err = NewEvent(app.ID(), app.AccountID(), domain.EventInReview, boundary.Add(time.Nanosecond), "", at(baseTime))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestNewEvent_Validation(t *testing.T) {
	appID := uuid.New()
	accountID := uuid.New()

	cases := map[string]func() error{
		"nil application": func() error {
			_, err := NewEvent(uuid.Nil, accountID, domain.EventInReview, baseTime, "", at(baseTime))
			return err
		},
		"nil account": func() error {
			_, err := NewEvent(appID, uuid.Nil, domain.EventInReview, baseTime, "", at(baseTime))
			return err
		},
		"unknown type": func() error {
			_, err := NewEvent(appID, accountID, domain.EventType(99), baseTime, "", at(baseTime))
			return err
		},
		"zero occurred_at": func() error {
			_, err := NewEvent(appID, accountID, domain.EventInReview, time.Time{}, "", at(baseTime))
			return err
		},
		"long notes": func() error {
			_, err := NewEvent(appID, accountID, domain.EventInReview, baseTime, strings.Repeat("n", 5001), at(baseTime))
			return err
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, fn(), domain.ErrInvalidArgument)
		})
	}
}

func TestNewEvent_Fields(t *testing.T) {
	appID := uuid.New()
	accountID := uuid.New()
	local := time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("PST", -8*3600))

	ev, err := NewEvent(appID, accountID, domain.EventPhoneScreen, local, "  call with recruiter \n", at(baseTime))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, ev.ID())
	assert.Equal(t, time.UTC, ev.OccurredAt().Location())
	assert.True(t, local.Equal(ev.OccurredAt()))
	assert.Equal(t, baseTime, ev.CreatedAt())
	assert.Equal(t, "call with recruiter", ev.Notes())
	assert.False(t, ev.IsZero())
}

func TestUpdateBasicInfo_LeavesStatus(t *testing.T) {
	app := newTestApp(t, at(baseTime))
	later := baseTime.Add(time.Minute)
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventInReview, later, at(later))))

	require.NoError(t, app.UpdateBasicInfo("NewCorp", " Staff Engineer ", ""))
	assert.Equal(t, "NewCorp", app.CompanyName())
	assert.Equal(t, "Staff Engineer", app.JobTitle())
	assert.Equal(t, 2, app.EventCount())
	assert.Equal(t, domain.EventInReview, app.CurrentStatus())

	err := app.UpdateBasicInfo("", "Engineer", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	assert.Equal(t, "NewCorp", app.CompanyName())
}

func TestRestore(t *testing.T) {
	app := newTestApp(t, at(baseTime))
	require.NoError(t, app.AddEvent(mustEvent(t, app, domain.EventInReview, baseTime, at(baseTime))))

	records := make([]EventRecord, 0, app.EventCount())
	for _, ev := range app.Events() {
		records = append(records, ev.Record())
	}

	restored, err := Restore(app.Record(), records)
	require.NoError(t, err)
	assert.Equal(t, app.Record(), restored.Record())
	assert.Equal(t, app.Events(), restored.Events())
	assert.Equal(t, app.CurrentStatus(), restored.CurrentStatus())

	_, err = Restore(app.Record(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	foreign := records[0]
	foreign.AccountID = uuid.New()
	_, err = Restore(app.Record(), []EventRecord{foreign})
	assert.ErrorIs(t, err, domain.ErrOwnershipMismatch)
}
