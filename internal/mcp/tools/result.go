package tools

import (
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult wraps msg as the single text content of a tool result
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// toolText renders a one-line message tagged with the tool name, e.g.
// "[application_get] Engineer at TechCorp: phone_screen (3 event(s))"
func toolText(tool, format string, args ...any) *sdkmcp.CallToolResult {
	return textResult("[" + tool + "] " + fmt.Sprintf(format, args...))
}

func formatList(result ApplicationListResult) string {
	if result.Count == 0 {
		return "[application_list] No applications found"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[application_list] %d application(s)\n", result.Count)
	for _, app := range result.Applications {
		fmt.Fprintf(&sb, "\n• %s at %s: %s", app.JobTitle, app.CompanyName, app.Status)
	}
	return sb.String()
}
