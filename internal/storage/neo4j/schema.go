// Package neo4j stores the ledger as a graph:
// (:Account)-[:OWNS]->(:Application)-[:HAS_EVENT]->(:ApplicationEvent).
package neo4j

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	pkgneo4j "github.com/honeycarbs/career-ledger/pkg/neo4j"
)

// Schema holds the idempotent constraint statements for the ledger graph
var Schema = []string{
	`CREATE CONSTRAINT account_id IF NOT EXISTS FOR (a:Account) REQUIRE a.id IS UNIQUE`,
	`CREATE CONSTRAINT account_email IF NOT EXISTS FOR (a:Account) REQUIRE a.email IS UNIQUE`,
	`CREATE CONSTRAINT application_id IF NOT EXISTS FOR (a:Application) REQUIRE a.id IS UNIQUE`,
	`CREATE CONSTRAINT application_event_id IF NOT EXISTS FOR (e:ApplicationEvent) REQUIRE e.id IS UNIQUE`,
}

// EnsureSchema creates the ledger constraints
func EnsureSchema(ctx context.Context, client *pkgneo4j.Client) error {
	return client.EnsureSchema(ctx, Schema)
}

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

func isConstraintViolation(err error) bool {
	var neoErr *neo4j.Neo4jError
	return errors.As(err, &neoErr) && neoErr.Code == constraintViolation
}

// props reads typed values out of node properties. Missing keys yield zero values.
type props map[string]any

func (p props) str(key string) string {
	s, _ := p[key].(string)
	return s
}

func (p props) boolean(key string) bool {
	b, _ := p[key].(bool)
	return b
}

func (p props) integer(key string) int64 {
	n, _ := p[key].(int64)
	return n
}

func (p props) time(key string) time.Time {
	switch v := p[key].(type) {
	case time.Time:
		return v
	case neo4j.LocalDateTime:
		return v.Time()
	}
	return time.Time{}
}

func (p props) uuid(key string) (uuid.UUID, error) {
	return uuid.Parse(p.str(key))
}

// nodeProps extracts the properties of the node bound to key in rec
func nodeProps(rec *neo4j.Record, key string) (props, bool) {
	val, ok := rec.Get(key)
	if !ok {
		return nil, false
	}
	node, ok := val.(neo4j.Node)
	if !ok {
		return nil, false
	}
	return props(node.Props), true
}

func parseOrNil(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}
