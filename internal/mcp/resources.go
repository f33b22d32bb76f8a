package mcp

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/honeycarbs/career-ledger/internal/config"
	"github.com/honeycarbs/career-ledger/internal/domain/account"
	"github.com/honeycarbs/career-ledger/internal/domain/lifecycle"
	"github.com/honeycarbs/career-ledger/internal/mcp/tools"
	"github.com/honeycarbs/career-ledger/internal/metrics"
	"github.com/honeycarbs/career-ledger/internal/storage/memory"
	storage "github.com/honeycarbs/career-ledger/internal/storage/neo4j"
	"github.com/honeycarbs/career-ledger/internal/storage/postgres"
	"github.com/honeycarbs/career-ledger/pkg/logging"
	n4j "github.com/honeycarbs/career-ledger/pkg/neo4j"
	sheetsclient "github.com/honeycarbs/career-ledger/pkg/sheets"
)

// Resources are the services the MCP tools run against
type Resources struct {
	Accounts    *account.Service
	Lifecycle   lifecycle.Service
	Sheets      tools.SheetsExporter // nil when no credentials are configured
	Neo4jClient *n4j.Client          // nil unless STORAGE_BACKEND=neo4j
	Owner       *account.Account     // set by EnsureOwner
}

// EnsureOwner registers the configured owner account if it does not exist yet
func (r *Resources) EnsureOwner(ctx context.Context, cfg config.Config) error {
	owner, err := r.Accounts.EnsureOwner(ctx, cfg.Owner.Email, cfg.Owner.PasswordHash)
	if err != nil {
		return fmt.Errorf("bootstrap owner account: %w", err)
	}
	r.Owner = owner
	return nil
}

// InitializeResources builds Resources for cfg.Backend. The returned cleanup
// releases backend connections.
func InitializeResources(ctx context.Context, cfg config.Config, logger *logging.Logger, collector *metrics.Collector) (*Resources, func(), error) {
	var (
		res     *Resources
		cleanup func()
		err     error
	)

	switch cfg.Backend {
	case config.BackendNeo4j:
		res, cleanup, err = InitializeNeo4jResources(ctx, cfg, logger, collector)
	case config.BackendPostgres:
		res, cleanup, err = InitializePostgresResources(ctx, cfg, logger, collector)
	default:
		res, cleanup, err = InitializeMemoryResources(ctx, cfg, logger, collector)
	}
	if err != nil {
		return nil, nil, err
	}

	logger.Info("storage backend initialized", "backend", cfg.Backend)
	if res.Sheets != nil {
		logger.Info("Google Sheets client initialized")
	}
	return res, cleanup, nil
}

// InitializeMemoryResources wires the in-process backend. Data is lost on exit.
func InitializeMemoryResources(ctx context.Context, cfg config.Config, logger *logging.Logger, collector *metrics.Collector) (*Resources, func(), error) {
	store := memory.NewStore()

	accounts, err := account.NewService(memory.NewAccountRepository(store), logger)
	if err != nil {
		return nil, nil, err
	}

	svc, err := lifecycle.NewServiceWithDeps(memory.NewApplicationRepository(store), logger, collector)
	if err != nil {
		return nil, nil, err
	}

	exporter, err := provideSheetsExporter(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	return newResources(accounts, svc, exporter), func() {}, nil
}

// provideNeo4jConfig extracts Neo4j config from main config
func provideNeo4jConfig(cfg config.Config) n4j.Config {
	return n4j.Config{
		URI:      cfg.Neo4j.URI,
		Username: cfg.Neo4j.Username,
		Password: cfg.Neo4j.Password,
		Database: cfg.Neo4j.Database,
	}
}

// provideNeo4jClient connects to Neo4j and creates the ledger constraints
func provideNeo4jClient(ctx context.Context, cfg n4j.Config, logger *logging.Logger) (*n4j.Client, func(), error) {
	client, err := n4j.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := storage.EnsureSchema(ctx, client); err != nil {
		_ = client.Close(ctx)
		return nil, nil, err
	}

	logger.Info("Neo4j client initialized", "uri", cfg.URI)
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("failed to close Neo4j client", "err", err)
		}
	}
	return client, cleanup, nil
}

// providePostgresDB opens the database and applies pending migrations
func providePostgresDB(ctx context.Context, cfg config.Config, logger *logging.Logger) (*sql.DB, func(), error) {
	db, err := postgres.Open(cfg.Postgres.URL)
	if err != nil {
		return nil, nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}

	if err := postgres.RunMigrations(cfg.Postgres.URL); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	logger.Info("PostgreSQL connection initialized")
	cleanup := func() {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close PostgreSQL connection", "err", err)
		}
	}
	return db, cleanup, nil
}

// provideSheetsExporter returns nil when no credentials path is configured
func provideSheetsExporter(ctx context.Context, cfg config.Config, logger *logging.Logger) (tools.SheetsExporter, error) {
	if cfg.SheetsCredsPath == "" {
		logger.Debug("GOOGLE_SHEETS_CREDENTIALS_PATH not set, sheets_export disabled")
		return nil, nil
	}

	client, err := sheetsclient.NewClient(ctx, sheetsclient.Config{CredentialsPath: cfg.SheetsCredsPath})
	if err != nil {
		return nil, err
	}
	return newSheetsExporter(client), nil
}

// newResources creates Resources struct
func newResources(accounts *account.Service, svc lifecycle.Service, exporter tools.SheetsExporter) *Resources {
	return &Resources{
		Accounts:  accounts,
		Lifecycle: svc,
		Sheets:    exporter,
	}
}

// newGraphResources creates Resources that also expose the Neo4j client
func newGraphResources(accounts *account.Service, svc lifecycle.Service, exporter tools.SheetsExporter, client *n4j.Client) *Resources {
	res := newResources(accounts, svc, exporter)
	res.Neo4jClient = client
	return res
}
