// Package mcp exposes the form-filling service as MCP tools over stdio,
// so assistants can fill the SSA-3373 form directly.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/formworks/ssa-form-filler/internal/config"
	"github.com/formworks/ssa-form-filler/internal/pdf"
)

// Server represents the MCP server instance
type Server struct {
	config      *config.Config
	formService *pdf.Service
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, formService *pdf.Service) (*Server, error) {
	if formService == nil {
		return nil, fmt.Errorf("formService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServiceName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:      cfg,
		formService: formService,
		mcpServer:   mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	fillFormTool := mcp.NewTool(
		"fill_form",
		mcp.WithDescription("Fill an SSA-3373 form template with field values and save the resulting PDF"),
		mcp.WithObject("fields",
			mcp.Required(),
			mcp.Description("Map of form field names to the text to fill in"),
		),
		mcp.WithString("output_path",
			mcp.Required(),
			mcp.Description("Path where the filled PDF will be written"),
		),
		mcp.WithString("template_name",
			mcp.Description("Template file name inside the templates directory (uses default if empty)"),
		),
		mcp.WithObject("line_limits",
			mcp.Description("Optional per-field line limit overrides"),
		),
	)
	s.mcpServer.AddTool(fillFormTool, s.handleFillForm)

	formFieldsTool := mcp.NewTool(
		"form_fields",
		mcp.WithDescription("List the form fields of a template, with their types and sizes"),
		mcp.WithString("template_name",
			mcp.Description("Template file name inside the templates directory (uses default if empty)"),
		),
	)
	s.mcpServer.AddTool(formFieldsTool, s.handleFormFields)

	lineLimitsTool := mcp.NewTool(
		"line_limits",
		mcp.WithDescription("Show the default per-field line limits for the SSA-3373 form"),
	)
	s.mcpServer.AddTool(lineLimitsTool, s.handleLineLimits)

	serviceInfoTool := mcp.NewTool(
		"service_info",
		mcp.WithDescription("Get service information, available templates, and usage guidance"),
	)
	s.mcpServer.AddTool(serviceInfoTool, s.handleServiceInfo)
}

// Handler functions

func (s *Server) handleFillForm(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	outputPath, err := request.RequireString("output_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	fields, err := stringMap(args["fields"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fields: %v", err)), nil
	}
	if len(fields) == 0 {
		return mcp.NewToolResultError("fields must not be empty"), nil
	}

	limits, err := intMap(args["line_limits"])
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("line_limits: %v", err)), nil
	}

	templateName := ""
	if name, ok := args["template_name"].(string); ok {
		templateName = name
	}

	result, err := s.formService.FillForm(pdf.FormFillRequest{
		TemplateName: templateName,
		Fields:       fields,
		LineLimits:   limits,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := os.WriteFile(outputPath, result.PDF, 0o600); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to write filled PDF: %v", err)), nil
	}

	return mcp.NewToolResultText(s.formatFillResult(result, outputPath)), nil
}

func (s *Server) handleFormFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	templateName := ""
	if name, ok := args["template_name"].(string); ok {
		templateName = name
	}

	result, err := s.formService.TemplateFields(pdf.TemplateFieldsRequest{TemplateName: templateName})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatTemplateFields(result)), nil
}

func (s *Server) handleLineLimits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result := s.formService.LineLimits()

	names := make([]string, 0, len(result.Limits))
	for name := range result.Limits {
		names = append(names, name)
	}
	sort.Strings(names)

	text := fmt.Sprintf("Default line limits for %d field(s):\n", result.Count)
	for _, name := range names {
		text += fmt.Sprintf("  %s: %d\n", name, result.Limits[name])
	}

	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleServiceInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.formService.ServiceInfo()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatServiceInfo(result)), nil
}

// Formatting methods

func (s *Server) formatFillResult(result *pdf.FormFillResult, outputPath string) string {
	text := fmt.Sprintf("Filled %d field(s) in template: %s\n", result.FilledCount, result.TemplateName)
	text += fmt.Sprintf("Saved to: %s\n", outputPath)

	if len(result.UnknownFields) > 0 {
		text += fmt.Sprintf("\nSkipped %d unknown field(s): %s\n",
			len(result.UnknownFields), strings.Join(result.UnknownFields, ", "))
	}

	if len(result.Overflow) > 0 {
		text += "\nTruncated fields:\n"
		for _, overflow := range result.Overflow {
			text += fmt.Sprintf("  %s: kept %d of %d lines, dropped %d line(s)\n",
				overflow.Field, overflow.DisplayedLines, overflow.TotalLines, overflow.DroppedLines)
		}
	}

	return text
}

func (s *Server) formatTemplateFields(result *pdf.TemplateFieldsResult) string {
	text := fmt.Sprintf("Template: %s\n", result.TemplateName)
	text += fmt.Sprintf("Fields: %d\n\n", len(result.Fields))

	for i, field := range result.Fields {
		text += fmt.Sprintf("%d. %s (%s)\n", i+1, field.Name, field.Kind)
		if field.Width > 0 {
			text += fmt.Sprintf("   Size: %.1f x %.1f points\n", field.Width, field.Height)
		}
		if field.FontSize > 0 {
			text += fmt.Sprintf("   Font size: %s pt\n", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", field.FontSize), "0"), "."))
		}
		if field.Multiline {
			text += "   Multiline\n"
		}
		if field.Required {
			text += "   Required\n"
		}
	}

	return text
}

func (s *Server) formatServiceInfo(result *pdf.ServiceInfoResult) string {
	text := fmt.Sprintf("%s v%s\n", result.ServiceName, result.Version)
	text += fmt.Sprintf("Templates directory: %s\n", result.TemplateDirectory)
	text += fmt.Sprintf("Default template: %s\n", result.DefaultTemplate)
	text += fmt.Sprintf("Fields with default line limits: %d\n", result.LineLimitCount)

	if len(result.Templates) > 0 {
		text += fmt.Sprintf("\nAvailable templates (%d):\n", len(result.Templates))
		for i, tmpl := range result.Templates {
			text += fmt.Sprintf("  %d. %s (%d bytes)\n", i+1, tmpl.Name, tmpl.Size)
		}
	} else {
		text += "\nNo templates found in templates directory\n"
	}

	text += "\nUse 'form_fields' to inspect a template and 'fill_form' to fill it.\n"

	return text
}

// Argument helpers

// stringMap coerces a JSON object argument into a map of strings. Numeric
// and boolean values become their string forms; arrays and objects are
// rejected.
func stringMap(arg interface{}) (map[string]string, error) {
	if arg == nil {
		return nil, nil
	}

	raw, ok := arg.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object")
	}

	out := make(map[string]string, len(raw))
	for key, value := range raw {
		text, ok := pdf.FieldValueText(value)
		if !ok {
			return nil, fmt.Errorf("value for %q must be a string, number, or boolean", key)
		}
		out[key] = text
	}
	return out, nil
}

// intMap coerces a JSON object argument into a map of ints. JSON numbers
// decode as float64.
func intMap(arg interface{}) (map[string]int, error) {
	if arg == nil {
		return nil, nil
	}

	raw, ok := arg.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("expected an object")
	}

	out := make(map[string]int, len(raw))
	for key, value := range raw {
		num, ok := value.(float64)
		if !ok {
			return nil, fmt.Errorf("value for %q must be a number", key)
		}
		out[key] = int(num)
	}
	return out, nil
}

// Run serves the MCP tools over stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting form-filler MCP server in stdio mode")
		log.Printf("Templates directory: %s", s.config.TemplateDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
