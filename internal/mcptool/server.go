// Package mcptool exposes review drafting as a Model Context Protocol tool so
// assistants can request a draft over stdio.
package mcptool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/review"
)

// ToolName is the name of the drafting tool.
const ToolName = "draft_review"

// DraftInput mirrors the generate-review request body, including its
// "timeframe" name for the positive points.
type DraftInput struct {
	Business       string `json:"business,omitempty" jsonschema:"business name, defaults to the configured business"`
	Service        string `json:"service,omitempty" jsonschema:"service the customer received, e.g. Dinner"`
	PositivePoints string `json:"timeframe,omitempty" jsonschema:"what stood out, e.g. Price, Professionalism"`
	Price          string `json:"price,omitempty" jsonschema:"price or value impression"`
	Hints          string `json:"hints,omitempty" jsonschema:"additional context for the review"`
	Tone           string `json:"tone,omitempty" jsonschema:"tone of the review, defaults to friendly"`
	Length         string `json:"length,omitempty" jsonschema:"short, normal or long"`
	Language       string `json:"language,omitempty" jsonschema:"language to write in"`
}

// DraftOutput is the structured tool result.
type DraftOutput struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// NewServer builds an MCP server with the drafting tool registered.
func NewServer(svc *review.Service, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "review-drafter", Version: version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Draft a short public review from a customer's hints.",
	}, draftHandler(svc))
	return server
}

func draftHandler(svc *review.Service) func(context.Context, *mcp.CallToolRequest, DraftInput) (*mcp.CallToolResult, DraftOutput, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DraftInput) (*mcp.CallToolResult, DraftOutput, error) {
		resp := svc.GenerateDraft(ctx, review.DraftRequest{
			Business:       in.Business,
			Service:        in.Service,
			PositivePoints: in.PositivePoints,
			Price:          in.Price,
			Hints:          in.Hints,
			Tone:           in.Tone,
			Length:         in.Length,
			Language:       in.Language,
		})
		out := DraftOutput{Success: resp.Success, Text: resp.Text, Message: resp.Message}
		if !resp.Success {
			log.Warn().Str("tool", ToolName).Msg("Draft tool call failed")
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: resp.Message}},
			}, out, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: resp.Text}},
		}, out, nil
	}
}

// Serve runs the server on stdin/stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
