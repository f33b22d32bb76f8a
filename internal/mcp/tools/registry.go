package tools

import (
	"context"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/career-ledger/pkg/logging"
)

// Recorder receives one observation per tool call
type Recorder interface {
	ToolCall(tool string, err error, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ToolCall(string, error, time.Duration) {}

// Option configures which tools are registered
type Option func(*registry)

type registry struct {
	server   *sdkmcp.Server
	logger   *logging.Logger
	recorder Recorder
	pending  []func(*registry)
	names    []string
}

// Register applies the provided tool options. Logger and recorder options take
// effect for every tool regardless of their position in opts.
func Register(server *sdkmcp.Server, opts ...Option) []string {
	reg := &registry{
		server:   server,
		logger:   logging.NewNop(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(reg)
	}
	for _, add := range reg.pending {
		add(reg)
	}
	return reg.names
}

// WithLogger sets the logger used by tool handlers
func WithLogger(logger *logging.Logger) Option {
	return func(reg *registry) {
		if logger != nil {
			reg.logger = logger.Named("tools")
		}
	}
}

// WithRecorder sets the per-call metrics sink
func WithRecorder(recorder Recorder) Option {
	return func(reg *registry) {
		if recorder != nil {
			reg.recorder = recorder
		}
	}
}

func (reg *registry) later(add func(*registry)) {
	reg.pending = append(reg.pending, add)
}

// addTool registers h under tool.Name, timing and logging every call
func addTool[In any](reg *registry, tool *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, any]) {
	name := tool.Name
	logger := reg.logger
	recorder := reg.recorder

	sdkmcp.AddTool(reg.server, tool, func(ctx context.Context, req *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		start := time.Now()
		res, out, err := h(ctx, req, in)
		elapsed := time.Since(start)

		recorder.ToolCall(name, err, elapsed)
		if err != nil {
			logger.Warn("tool call failed", "tool", name, "err", err, "elapsed", elapsed)
		} else {
			logger.Debug("tool call completed", "tool", name, "elapsed", elapsed)
		}
		return res, out, err
	})
	reg.names = append(reg.names, name)
}
