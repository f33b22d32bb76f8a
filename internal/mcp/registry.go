package mcp

import (
	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/career-ledger/internal/mcp/tools"
	"github.com/honeycarbs/career-ledger/internal/metrics"
	"github.com/honeycarbs/career-ledger/pkg/logging"
)

// ToolRegistry installs the ledger tools on an MCP server
type ToolRegistry struct {
	logger    *logging.Logger
	collector *metrics.Collector
}

// NewToolRegistry creates a registry. A nil collector disables tool metrics.
func NewToolRegistry(logger *logging.Logger, collector *metrics.Collector) *ToolRegistry {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ToolRegistry{logger: logger, collector: collector}
}

// RegisterAll registers every tool res can serve. graph_inspect is only
// offered on the Neo4j backend.
func (r *ToolRegistry) RegisterAll(server *sdkmcp.Server, res *Resources) []string {
	owner := uuid.Nil
	if res.Owner != nil {
		owner = res.Owner.ID()
	}

	opts := []tools.Option{
		tools.WithLogger(r.logger),
		tools.WithAccountTools(res.Accounts, owner),
		tools.WithApplicationTools(res.Lifecycle, owner),
		tools.WithSheetsExport(res.Lifecycle, res.Sheets, owner),
	}
	if r.collector != nil {
		opts = append(opts, tools.WithRecorder(r.collector))
	}
	if res.Neo4jClient != nil {
		opts = append(opts, tools.WithGraphInspect(res.Neo4jClient))
	}

	names := tools.Register(server, opts...)
	r.logger.Info("MCP tools registered", "tools", names)
	return names
}
