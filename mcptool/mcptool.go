// Package mcptool exposes the format engine as Model Context Protocol tools
// so that assistants can preview how a format string renders a value.
package mcptool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	cellfmt "github.com/TsubasaBE/go-cellfmt"
	"github.com/TsubasaBE/go-cellfmt/export"
)

// NewServer returns an MCP server with the format_value, parse_format and
// render_rows tools registered against e.
func NewServer(e *cellfmt.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"cellfmt",
		version,
		server.WithToolCapabilities(true),
	)

	formatTool := mcp.NewTool("format_value",
		mcp.WithDescription("Format a cell value with an Excel-style conditional format string and return the display text and style"),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description(`Format string, e.g. [>80]"High"[Green];"Low"[Red]`),
		),
		mcp.WithString("value",
			mcp.Description("Cell value; JSON numbers, booleans and null are accepted as well as text"),
		),
	)
	s.AddTool(formatTool, HandleFormatValue(e))

	parseTool := mcp.NewTool("parse_format",
		mcp.WithDescription("Parse a format string into its conditions or sections"),
		mcp.WithString("format",
			mcp.Required(),
			mcp.Description("Format string to parse"),
		),
	)
	s.AddTool(parseTool, HandleParseFormat(e))

	renderTool := mcp.NewTool("render_rows",
		mcp.WithDescription("Apply a YAML column profile to CSV data and return one JSON object per row"),
		mcp.WithString("profile",
			mcp.Required(),
			mcp.Description("Column profile: columns: [{field, format}]"),
		),
		mcp.WithString("csv",
			mcp.Required(),
			mcp.Description("CSV data with a header row"),
		),
	)
	s.AddTool(renderTool, HandleRenderRows())

	return s
}

// HandleFormatValue returns the format_value handler.
func HandleFormatValue(e *cellfmt.Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		format, ok := args["format"].(string)
		if !ok {
			return mcp.NewToolResultError("format parameter is required and must be a string"), nil
		}
		res := e.Format(args["value"], format)
		return jsonResult(res)
	}
}

// HandleParseFormat returns the parse_format handler.
func HandleParseFormat(e *cellfmt.Engine) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		format, ok := request.GetArguments()["format"].(string)
		if !ok {
			return mcp.NewToolResultError("format parameter is required and must be a string"), nil
		}
		return jsonResult(e.Compile(format).Parsed())
	}
}

// HandleRenderRows returns the render_rows handler.
func HandleRenderRows() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		profileText := request.GetString("profile", "")
		csvText := request.GetString("csv", "")
		if profileText == "" || csvText == "" {
			return mcp.NewToolResultError("profile and csv parameters are required"), nil
		}

		profile, err := export.ParseProfile([]byte(profileText))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		records, err := export.ReadCSV(strings.NewReader(csvText), "")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		rows, err := profile.Apply(ctx, records, 4)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var sb strings.Builder
		if err := export.WriteJSONLines(&sb, rows); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("failed to encode result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
