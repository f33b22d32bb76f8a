//go:build wireinject
// +build wireinject

package mcp

import (
	"context"

	"github.com/google/wire"

	"github.com/honeycarbs/career-ledger/internal/config"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
	"github.com/honeycarbs/career-ledger/internal/domain/application"
	"github.com/honeycarbs/career-ledger/internal/domain/lifecycle"
	"github.com/honeycarbs/career-ledger/internal/metrics"
	storage "github.com/honeycarbs/career-ledger/internal/storage/neo4j"
	"github.com/honeycarbs/career-ledger/internal/storage/postgres"
	"github.com/honeycarbs/career-ledger/pkg/logging"
)

var serviceSet = wire.NewSet(
	account.NewService,
	lifecycle.NewServiceWithDeps,
	wire.Bind(new(lifecycle.Recorder), new(*metrics.Collector)),
	provideSheetsExporter,
)

// InitializeNeo4jResources creates Resources backed by Neo4j
func InitializeNeo4jResources(ctx context.Context, cfg config.Config, logger *logging.Logger, collector *metrics.Collector) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure - Neo4j
		provideNeo4jConfig,
		provideNeo4jClient,

		// Repositories
		storage.NewAccountRepository,
		wire.Bind(new(account.Repository), new(*storage.AccountRepository)),
		storage.NewApplicationRepository,
		wire.Bind(new(application.Repository), new(*storage.ApplicationRepository)),

		serviceSet,
		newGraphResources,
	)

	return nil, nil, nil
}

// InitializePostgresResources creates Resources backed by PostgreSQL
func InitializePostgresResources(ctx context.Context, cfg config.Config, logger *logging.Logger, collector *metrics.Collector) (*Resources, func(), error) {
	wire.Build(
		// Infrastructure - PostgreSQL
		providePostgresDB,

		// Repositories
		postgres.NewAccountRepository,
		wire.Bind(new(account.Repository), new(*postgres.AccountRepository)),
		postgres.NewApplicationRepository,
		wire.Bind(new(application.Repository), new(*postgres.ApplicationRepository)),

		serviceSet,
		newResources,
	)

	return nil, nil, nil
}
