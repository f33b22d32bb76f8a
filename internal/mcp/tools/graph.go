package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	pkgneo4j "github.com/honeycarbs/career-ledger/pkg/neo4j"
)

// GraphInspectParams defines the arguments for the graph_inspect tool
type GraphInspectParams struct {
	ApplicationID string `json:"application_id,omitempty" jsonschema:"Application UUID to show with its owner and events"`
	Cypher        string `json:"cypher,omitempty" jsonschema:"Read-only Cypher query; $applicationId is bound when application_id is set"`
}

const (
	applicationGraphQuery = `
		MATCH (a:Application {id: $applicationId})
		OPTIONAL MATCH (owner:Account)-[:OWNS]->(a)
		OPTIONAL MATCH (a)-[:HAS_EVENT]->(e:ApplicationEvent)
		WITH a, owner, e ORDER BY e.seq
		RETURN a, owner.email AS owner, collect(e) AS events
	`

	labelCountQuery = "MATCH (n) RETURN labels(n) AS labels, count(n) AS count ORDER BY count DESC LIMIT 20"

	maxGraphRows = 100
)

// GraphInspectResult is the structured output of graph_inspect
type GraphInspectResult struct {
	Keys      []string         `json:"keys"`
	Rows      []map[string]any `json:"rows"`
	RowCount  int              `json:"row_count"`
	Truncated bool             `json:"truncated,omitempty"`
}

type graphToolHandler struct {
	client *pkgneo4j.Client
}

// WithGraphInspect registers graph_inspect. Queries run in read transactions.
func WithGraphInspect(client *pkgneo4j.Client) Option {
	return func(reg *registry) {
		reg.later(func(reg *registry) {
			handler := graphToolHandler{client: client}
			addTool(reg, &sdkmcp.Tool{
				Name:        "graph_inspect",
				Description: "Developer tool for inspecting the ledger graph in Neo4j",
			}, handler.handle)
		})
	}
}

func (h graphToolHandler) handle(ctx context.Context, _ *sdkmcp.CallToolRequest, params GraphInspectParams) (*sdkmcp.CallToolResult, any, error) {
	if h.client == nil {
		return nil, nil, fmt.Errorf("graph_inspect unavailable: Neo4j client not configured")
	}

	query, queryParams, err := buildGraphQuery(params)
	if err != nil {
		return nil, nil, err
	}

	result, err := h.executeQuery(ctx, query, queryParams)
	if err != nil {
		return nil, nil, err
	}

	return textResult(formatGraphResult(result)), result, nil
}

// buildGraphQuery picks the custom query, the per-application view or the
// label histogram, in that order
func buildGraphQuery(params GraphInspectParams) (string, map[string]any, error) {
	var queryParams map[string]any
	if strings.TrimSpace(params.ApplicationID) != "" {
		id, err := parseID("application_id", params.ApplicationID)
		if err != nil {
			return "", nil, err
		}
		queryParams = map[string]any{"applicationId": id.String()}
	}

	switch {
	case strings.TrimSpace(params.Cypher) != "":
		return params.Cypher, queryParams, nil
	case queryParams != nil:
		return applicationGraphQuery, queryParams, nil
	default:
		return labelCountQuery, nil, nil
	}
}

// executeQuery runs query in a read transaction and keeps at most
// maxGraphRows rows. Retried transactions start from an empty result.
func (h graphToolHandler) executeQuery(ctx context.Context, query string, params map[string]any) (GraphInspectResult, error) {
	var out GraphInspectResult

	_, err := h.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		out = GraphInspectResult{Rows: make([]map[string]any, 0)}

		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}

		for res.Next(ctx) {
			record := res.Record()
			if out.Keys == nil {
				out.Keys = record.Keys
			}
			out.RowCount++
			if len(out.Rows) == maxGraphRows {
				out.Truncated = true
				continue
			}
			out.Rows = append(out.Rows, recordRow(record))
		}
		return nil, res.Err()
	})
	if err != nil {
		return GraphInspectResult{}, fmt.Errorf("graph_inspect: query failed: %w", err)
	}
	return out, nil
}

func recordRow(record *neo4j.Record) map[string]any {
	row := make(map[string]any, len(record.Keys))
	for i, key := range record.Keys {
		row[key] = plainValue(record.Values[i])
	}
	return row
}

// plainValue turns driver values into JSON-friendly maps, slices and scalars
func plainValue(val any) any {
	switch v := val.(type) {
	case neo4j.Node:
		return map[string]any{"labels": v.Labels, "props": plainProps(v.Props)}
	case neo4j.Relationship:
		return map[string]any{"type": v.Type, "props": plainProps(v.Props)}
	case time.Time:
		return formatTime(v)
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = plainValue(item)
		}
		return items
	case map[string]any:
		return plainProps(v)
	default:
		return v
	}
}

func plainProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = plainValue(v)
	}
	return out
}

func formatGraphResult(result GraphInspectResult) string {
	if result.RowCount == 0 {
		return "[graph_inspect] Query returned no rows"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[graph_inspect] %d row(s)", result.RowCount)
	if result.Truncated {
		fmt.Fprintf(&sb, ", showing first %d", len(result.Rows))
	}
	sb.WriteString("\n")

	for i, row := range result.Rows {
		fmt.Fprintf(&sb, "\n%d.", i+1)
		for _, key := range result.Keys {
			fmt.Fprintf(&sb, " %s=%s", key, formatValue(row[key]))
		}
	}
	return sb.String()
}

// formatValue renders one plain value compactly; maps print with sorted keys
func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+":"+formatValue(v[k]))
		}
		return "{" + strings.Join(parts, " ") + "}"
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, formatValue(item))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []string:
		return "[" + strings.Join(v, ", ") + "]"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
