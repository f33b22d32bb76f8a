package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/honeycarbs/career-ledger/internal/domain"
	"github.com/honeycarbs/career-ledger/internal/domain/application"

	pkgneo4j "github.com/honeycarbs/career-ledger/pkg/neo4j"
)

// Ensure ApplicationRepository implements application.Repository
var _ application.Repository = (*ApplicationRepository)(nil)

// ApplicationRepository implements application.Repository with Neo4j.
// Application.version counts HAS_EVENT relationships and guards appends.
type ApplicationRepository struct {
	client *pkgneo4j.Client
}

// NewApplicationRepository creates an ApplicationRepository with a Neo4j client
func NewApplicationRepository(client *pkgneo4j.Client) *ApplicationRepository {
	return &ApplicationRepository{client: client}
}

// Create stores the Application node, its events and the OWNS edge when the
// account node exists
func (r *ApplicationRepository) Create(ctx context.Context, app *application.Application) error {
	rec := app.Record()
	events := app.Events()

	query := `
		CREATE (a:Application {
			id: $id,
			accountId: $accountId,
			companyName: $companyName,
			jobTitle: $jobTitle,
			jobURL: $jobURL,
			createdAt: $createdAt,
			version: $version
		})
		WITH a
		OPTIONAL MATCH (owner:Account {id: $accountId})
		FOREACH (_ IN CASE WHEN owner IS NULL THEN [] ELSE [1] END |
			CREATE (owner)-[:OWNS]->(a)
		)
		WITH a
		UNWIND $events AS ev
		CREATE (a)-[:HAS_EVENT]->(:ApplicationEvent {
			id: ev.id,
			applicationId: ev.applicationId,
			accountId: ev.accountId,
			eventType: ev.eventType,
			occurredAt: ev.occurredAt,
			createdAt: ev.createdAt,
			notes: ev.notes,
			seq: ev.seq
		})
	`

	eventsData := make([]map[string]any, 0, len(events))
	for i, ev := range events {
		eventsData = append(eventsData, eventParams(ev, i))
	}

	_, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{
			"id":          rec.ID.String(),
			"accountId":   rec.AccountID.String(),
			"companyName": rec.CompanyName,
			"jobTitle":    rec.JobTitle,
			"jobURL":      rec.JobURL,
			"createdAt":   rec.CreatedAt,
			"version":     int64(len(events)),
			"events":      eventsData,
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if isConstraintViolation(err) {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("neo4j: create application: %w", err)
	}
	return nil
}

// Get loads an application with its events in append order
func (r *ApplicationRepository) Get(ctx context.Context, id domain.ApplicationID) (*application.Application, error) {
	apps, err := r.load(ctx,
		`MATCH (a:Application {id: $key}) RETURN a`,
		`MATCH (:Application {id: $key})-[:HAS_EVENT]->(e:ApplicationEvent) RETURN e ORDER BY e.seq`,
		id.String(),
	)
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("application %s: %w", id, domain.ErrNotFound)
	}
	return apps[0], nil
}

// ListByAccount loads every application of accountID
func (r *ApplicationRepository) ListByAccount(ctx context.Context, accountID domain.AccountID) ([]*application.Application, error) {
	return r.load(ctx,
		`MATCH (a:Application {accountId: $key}) RETURN a ORDER BY a.createdAt`,
		`MATCH (e:ApplicationEvent {accountId: $key}) RETURN e ORDER BY e.applicationId, e.seq`,
		accountID.String(),
	)
}

// UpdateBasicInfo persists company, title and URL
func (r *ApplicationRepository) UpdateBasicInfo(ctx context.Context, app *application.Application) error {
	rec := app.Record()

	query := `
		MATCH (a:Application {id: $id})
		SET a.companyName = $companyName,
		    a.jobTitle = $jobTitle,
		    a.jobURL = $jobURL
		RETURN count(a) AS matched
	`

	matched, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, map[string]any{
			"id":          rec.ID.String(),
			"companyName": rec.CompanyName,
			"jobTitle":    rec.JobTitle,
			"jobURL":      rec.JobURL,
		})
		if err != nil {
			return nil, err
		}
		record, err := result.Single(ctx)
		if err != nil {
			return nil, err
		}
		n, _, err := neo4j.GetRecordValue[int64](record, "matched")
		return n, err
	})
	if err != nil {
		return fmt.Errorf("neo4j: update application: %w", err)
	}
	if matched.(int64) == 0 {
		return fmt.Errorf("application %s: %w", rec.ID, domain.ErrNotFound)
	}
	return nil
}

// AppendEvent locks the Application node, checks owner and version, then
// creates the event and bumps the version in the same transaction
func (r *ApplicationRepository) AppendEvent(ctx context.Context, ev application.Event, expectedVersion int) error {
	lockQuery := `
		MATCH (a:Application {id: $id})
		SET a._lock = true
		RETURN a.accountId AS accountId, a.version AS version
	`

	appendQuery := `
		MATCH (a:Application {id: $id})
		SET a.version = a.version + 1
		REMOVE a._lock
		CREATE (a)-[:HAS_EVENT]->(:ApplicationEvent {
			id: $event.id,
			applicationId: $event.applicationId,
			accountId: $event.accountId,
			eventType: $event.eventType,
			occurredAt: $event.occurredAt,
			createdAt: $event.createdAt,
			notes: $event.notes,
			seq: $event.seq
		})
	`

	_, err := r.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, lockQuery, map[string]any{"id": ev.ApplicationID().String()})
		if err != nil {
			return nil, err
		}
		records, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("application %s: %w", ev.ApplicationID(), domain.ErrNotFound)
		}

		owner, _, err := neo4j.GetRecordValue[string](records[0], "accountId")
		if err != nil {
			return nil, err
		}
		if owner != ev.AccountID().String() {
			return nil, &domain.OwnershipError{Field: "account_id", Expected: parseOrNil(owner), Actual: ev.AccountID()}
		}

		version, _, err := neo4j.GetRecordValue[int64](records[0], "version")
		if err != nil {
			return nil, err
		}
		if version != int64(expectedVersion) {
			return nil, fmt.Errorf("application %s at version %d, expected %d: %w",
				ev.ApplicationID(), version, expectedVersion, domain.ErrConcurrentUpdate)
		}

		result, err = tx.Run(ctx, appendQuery, map[string]any{
			"id":    ev.ApplicationID().String(),
			"event": eventParams(ev, expectedVersion),
		})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("neo4j: append event: %w", err)
	}
	return nil
}

// load runs the application and event queries in one read transaction and
// joins them in memory
func (r *ApplicationRepository) load(ctx context.Context, appQuery, eventQuery, key string) ([]*application.Application, error) {
	type loaded struct {
		apps   []props
		events []props
	}

	out, err := r.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		apps, err := collectNodes(ctx, tx, appQuery, key, "a")
		if err != nil {
			return nil, err
		}
		if len(apps) == 0 {
			return loaded{}, nil
		}
		events, err := collectNodes(ctx, tx, eventQuery, key, "e")
		if err != nil {
			return nil, err
		}
		return loaded{apps: apps, events: events}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j: load applications: %w", err)
	}
	data := out.(loaded)

	eventsByApp := make(map[string][]application.EventRecord)
	for _, p := range data.events {
		er, err := eventFromProps(p)
		if err != nil {
			return nil, err
		}
		appID := p.str("applicationId")
		eventsByApp[appID] = append(eventsByApp[appID], er)
	}

	apps := make([]*application.Application, 0, len(data.apps))
	for _, p := range data.apps {
		rec, err := applicationFromProps(p)
		if err != nil {
			return nil, err
		}
		app, err := application.Restore(rec, eventsByApp[p.str("id")])
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func collectNodes(ctx context.Context, tx neo4j.ManagedTransaction, query, key, binding string) ([]props, error) {
	result, err := tx.Run(ctx, query, map[string]any{"key": key})
	if err != nil {
		return nil, err
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make([]props, 0, len(records))
	for _, record := range records {
		p, ok := nodeProps(record, binding)
		if !ok {
			continue
		}
		nodes = append(nodes, p)
	}
	return nodes, nil
}

func eventParams(ev application.Event, seq int) map[string]any {
	rec := ev.Record()
	return map[string]any{
		"id":            rec.ID.String(),
		"applicationId": rec.ApplicationID.String(),
		"accountId":     rec.AccountID.String(),
		"eventType":     rec.Type.String(),
		"occurredAt":    rec.OccurredAt,
		"createdAt":     rec.CreatedAt,
		"notes":         rec.Notes,
		"seq":           int64(seq),
	}
}

func applicationFromProps(p props) (application.Record, error) {
	id, err := p.uuid("id")
	if err != nil {
		return application.Record{}, fmt.Errorf("neo4j: application id: %w", err)
	}
	accountID, err := p.uuid("accountId")
	if err != nil {
		return application.Record{}, fmt.Errorf("neo4j: application account id: %w", err)
	}

	return application.Record{
		ID:          id,
		AccountID:   accountID,
		CompanyName: p.str("companyName"),
		JobTitle:    p.str("jobTitle"),
		JobURL:      p.str("jobURL"),
		CreatedAt:   p.time("createdAt"),
	}, nil
}

func eventFromProps(p props) (application.EventRecord, error) {
	id, err := p.uuid("id")
	if err != nil {
		return application.EventRecord{}, fmt.Errorf("neo4j: event id: %w", err)
	}
	appID, err := p.uuid("applicationId")
	if err != nil {
		return application.EventRecord{}, fmt.Errorf("neo4j: event application id: %w", err)
	}
	accountID, err := p.uuid("accountId")
	if err != nil {
		return application.EventRecord{}, fmt.Errorf("neo4j: event account id: %w", err)
	}
	t, err := domain.ParseEventType(p.str("eventType"))
	if err != nil {
		return application.EventRecord{}, fmt.Errorf("neo4j: event %s: %w", id, err)
	}

	return application.EventRecord{
		ID:            id,
		ApplicationID: appID,
		AccountID:     accountID,
		Type:          t,
		OccurredAt:    p.time("occurredAt"),
		CreatedAt:     p.time("createdAt"),
		Notes:         p.str("notes"),
	}, nil
}
