package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
	"github.com/honeycarbs/career-ledger/pkg/logging"
)

// Service applies lifecycle changes to stored applications
type Service interface {
	CreateApplication(ctx context.Context, p application.Params) (*application.Application, error)
	UpdateBasicInfo(ctx context.Context, in UpdateInput) (*application.Application, error)
	RecordEvent(ctx context.Context, in RecordEventInput) (*application.Application, error)
	Get(ctx context.Context, accountID domain.AccountID, id domain.ApplicationID) (*application.Application, error)
	List(ctx context.Context, accountID domain.AccountID) ([]*application.Application, error)
	Transitions(ctx context.Context, accountID domain.AccountID, id domain.ApplicationID) (TransitionSet, error)
	TransitionsFor(app *application.Application) TransitionSet
}

// RecordEventInput describes a proposed status change
type RecordEventInput struct {
	AccountID     domain.AccountID
	ApplicationID domain.ApplicationID
	Type          domain.EventType
	OccurredAt    time.Time // defaults to now
	Notes         string
}

// UpdateInput replaces the descriptive fields of an application
type UpdateInput struct {
	AccountID     domain.AccountID
	ApplicationID domain.ApplicationID
	CompanyName   string
	JobTitle      string
	JobURL        string
}

// TransitionSet is the current status of an application and where it may go next
type TransitionSet struct {
	Current  domain.EventType
	Terminal bool
	Next     []domain.EventType
}

// Recorder receives lifecycle activity counts
type Recorder interface {
	ApplicationCreated()
	EventRecorded(t domain.EventType)
	TransitionRejected(reason domain.TransitionReason)
	ConcurrentUpdate()
}

type nopRecorder struct{}

func (nopRecorder) ApplicationCreated()                        {}
func (nopRecorder) EventRecorded(domain.EventType)             {}
func (nopRecorder) TransitionRejected(domain.TransitionReason) {}
func (nopRecorder) ConcurrentUpdate()                          {}

// Option configures Service
type Option func(*config)

type config struct {
	repo     application.Repository
	policy   Policy
	clock    func() time.Time
	logger   *logging.Logger
	recorder Recorder
}

// WithRepository sets the repository
func WithRepository(repo application.Repository) Option {
	return func(c *config) {
		c.repo = repo
	}
}

// WithPolicy replaces DefaultPolicy
func WithPolicy(policy Policy) Option {
	return func(c *config) {
		c.policy = policy
	}
}

// WithClock sets a custom clock
func WithClock(clock func() time.Time) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics sets the activity recorder
func WithMetrics(recorder Recorder) Option {
	return func(c *config) {
		c.recorder = recorder
	}
}

// NewService builds Service from options
func NewService(opts ...Option) (Service, error) {
	cfg := &config{
		policy:   DefaultPolicy,
		clock:    time.Now,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.repo == nil {
		return nil, fmt.Errorf("lifecycle.Service: repository is required")
	}
	if cfg.policy == nil {
		return nil, fmt.Errorf("lifecycle.Service: policy is required")
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	if cfg.recorder == nil {
		cfg.recorder = nopRecorder{}
	}

	return &service{
		repo:     cfg.repo,
		policy:   cfg.policy,
		clock:    cfg.clock,
		logger:   cfg.logger,
		recorder: cfg.recorder,
	}, nil
}

// NewServiceWithDeps creates a Service with direct dependencies (Wire-compatible)
func NewServiceWithDeps(repo application.Repository, logger *logging.Logger, recorder Recorder) (Service, error) {
	return NewService(
		WithRepository(repo),
		WithLogger(logger),
		WithMetrics(recorder),
	)
}

type service struct {
	repo     application.Repository
	policy   Policy
	clock    func() time.Time
	logger   *logging.Logger
	recorder Recorder
}

// CreateApplication builds a new application with its Submitted event and stores it
func (s *service) CreateApplication(ctx context.Context, p application.Params) (*application.Application, error) {
	app, err := application.New(p, application.WithClock(s.clock))
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, err
	}

	s.recorder.ApplicationCreated()
	s.logger.Info("application created",
		"application_id", app.ID(),
		"account_id", app.AccountID(),
		"company", app.CompanyName(),
	)
	return app, nil
}

// UpdateBasicInfo changes company, title and URL without touching the event log
func (s *service) UpdateBasicInfo(ctx context.Context, in UpdateInput) (*application.Application, error) {
	app, err := s.Get(ctx, in.AccountID, in.ApplicationID)
	if err != nil {
		return nil, err
	}

	if err := app.UpdateBasicInfo(in.CompanyName, in.JobTitle, in.JobURL); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateBasicInfo(ctx, app); err != nil {
		return nil, err
	}

	s.logger.Debug("application info updated", "application_id", app.ID())
	return app, nil
}

// RecordEvent validates the proposed status against the current one and
// appends it. A concurrent append between load and write surfaces as
// domain.ErrConcurrentUpdate.
func (s *service) RecordEvent(ctx context.Context, in RecordEventInput) (*application.Application, error) {
	app, err := s.Get(ctx, in.AccountID, in.ApplicationID)
	if err != nil {
		return nil, err
	}

	current := app.CurrentStatus()
	if err := s.policy.Validate(current, in.Type); err != nil {
		var terr *domain.TransitionError
		if errors.As(err, &terr) {
			s.recorder.TransitionRejected(terr.Reason)
		}
		s.logger.Info("transition rejected",
			"application_id", app.ID(),
			"from", current,
			"to", in.Type,
			"err", err,
		)
		return nil, err
	}

	occurredAt := in.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.clock()
	}

	ev, err := application.NewEvent(app.ID(), app.AccountID(), in.Type, occurredAt, in.Notes, application.WithClock(s.clock))
	if err != nil {
		return nil, err
	}

	expected := app.EventCount()
	if err := app.AddEvent(ev); err != nil {
		return nil, err
	}

	if err := s.repo.AppendEvent(ctx, ev, expected); err != nil {
		if errors.Is(err, domain.ErrConcurrentUpdate) {
			s.recorder.ConcurrentUpdate()
			s.logger.Warn("concurrent append rejected", "application_id", app.ID(), "expected_version", expected)
		}
		return nil, err
	}

	s.recorder.EventRecorded(ev.Type())
	s.logger.Info("event recorded",
		"application_id", app.ID(),
		"event_id", ev.ID(),
		"from", current,
		"to", ev.Type(),
		"status", app.CurrentStatus(),
	)
	return app, nil
}

// Get loads an application owned by accountID. Applications owned by other
// accounts are reported as not found.
func (s *service) Get(ctx context.Context, accountID domain.AccountID, id domain.ApplicationID) (*application.Application, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.AccountID() != accountID {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	return app, nil
}

// List returns the account's applications, most recently active first
func (s *service) List(ctx context.Context, accountID domain.AccountID) ([]*application.Application, error) {
	apps, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(apps, func(i, j int) bool {
		ti, _ := apps[i].LastUpdated()
		tj, _ := apps[j].LastUpdated()
		return ti.After(tj)
	})
	return apps, nil
}

// Transitions reports the legal next statuses for an application
func (s *service) Transitions(ctx context.Context, accountID domain.AccountID, id domain.ApplicationID) (TransitionSet, error) {
	app, err := s.Get(ctx, accountID, id)
	if err != nil {
		return TransitionSet{}, err
	}

	return s.TransitionsFor(app), nil
}

// TransitionsFor evaluates the policy against an already loaded application
func (s *service) TransitionsFor(app *application.Application) TransitionSet {
	current := app.CurrentStatus()
	set := TransitionSet{
		Current:  current,
		Terminal: current.Terminal(),
	}
	for _, t := range domain.EventTypes() {
		if s.policy.Validate(current, t) == nil {
			set.Next = append(set.Next, t)
		}
	}
	return set
}
