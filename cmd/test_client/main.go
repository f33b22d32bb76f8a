package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func main() {
	ctx := context.Background()

	endpoint := os.Getenv("MCP_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080/mcp/stream"
	}

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "career-ledger-test-client",
		Version: "0.1.0",
	}, nil)

	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{
		Endpoint: endpoint,
	}, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { _ = session.Close() }()

	log.Printf("Connected to server (session ID: %s)\n", session.ID())

	testListTools(ctx, session)

	appID := testCreateApplication(ctx, session)
	if appID == "" {
		return
	}
	testRecordEvents(ctx, session, appID)
	testIllegalTransition(ctx, session, appID)
	testListApplications(ctx, session)

	fmt.Println("\nAll tests completed")
}

func testListTools(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: tools/list")

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		log.Printf("tools/list failed: %v", err)
		return
	}
	for _, tool := range res.Tools {
		fmt.Printf("  %s: %s\n", tool.Name, tool.Description)
	}
}

func testCreateApplication(ctx context.Context, session *mcp.ClientSession) string {
	fmt.Println("\nTEST: application_create")

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "application_create",
		Arguments: map[string]any{
			"company_name": "TechCorp",
			"job_title":    "Backend Engineer",
			"job_url":      "https://techcorp.example/jobs/42",
			"notes":        "referred by a friend",
		},
	})
	if err != nil {
		log.Printf("application_create failed: %v", err)
		return ""
	}
	printResult(result)

	view, ok := result.StructuredContent.(map[string]any)
	if !ok {
		log.Printf("application_create returned no structured content")
		return ""
	}
	id, _ := view["id"].(string)
	return id
}

func testRecordEvents(ctx context.Context, session *mcp.ClientSession, appID string) {
	fmt.Println("\nTEST: application_record_event")

	base := time.Now().UTC().Add(-72 * time.Hour)
	steps := []string{"in_review", "phone_screen", "technical_interview"}
	for i, step := range steps {
		result, err := session.CallTool(ctx, &mcp.CallToolParams{
			Name: "application_record_event",
			Arguments: map[string]any{
				"application_id": appID,
				"event_type":     step,
				"occurred_at":    base.Add(time.Duration(i+1) * time.Hour).Format(time.RFC3339),
			},
		})
		if err != nil {
			log.Printf("application_record_event %s failed: %v", step, err)
			return
		}
		printResult(result)
	}
}

func testIllegalTransition(ctx context.Context, session *mcp.ClientSession, appID string) {
	fmt.Println("\nTEST: application_record_event (illegal)")

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: "application_record_event",
		Arguments: map[string]any{
			"application_id": appID,
			"event_type":     "offer_accepted",
		},
	})
	if err != nil {
		log.Printf("application_record_event failed: %v", err)
		return
	}
	if !result.IsError {
		log.Printf("expected a tool error for technical_interview -> offer_accepted")
	}
	printResult(result)
}

func testListApplications(ctx context.Context, session *mcp.ClientSession) {
	fmt.Println("\nTEST: application_list")

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "application_list",
		Arguments: map[string]any{},
	})
	if err != nil {
		log.Printf("application_list failed: %v", err)
		return
	}
	printResult(result)
}

func printResult(res *mcp.CallToolResult) {
	for _, c := range res.Content {
		if txt, ok := c.(*mcp.TextContent); ok {
			fmt.Println(txt.Text)
		}
	}
}
