package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

const notationGuide = "# Exercise notation\n\n" +
	"Sets-based: `Name SETSxREPS @ WEIGHT - notes`\n\n" +
	"- `Bench Press 3x8 @ 60kg - slow tempo`\n" +
	"- `Squat 4x8-12 @ 100kg` (rep range)\n" +
	"- `Plank 3x45s` (seconds instead of reps)\n" +
	"- `Pull Up 3x8 @ BW`\n\n" +
	"Cardio: `[CARDIO] Name | DURATIONmin | DISTANCEkm | intensity - notes`\n\n" +
	"- `[CARDIO] Run | 30min | 5km | easy`\n\n" +
	"Any part may be missing. Text that matches neither form is kept as the exercise name.\n"

func (h *handlers) customerRoster(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	customers, err := h.ds.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(customers)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) notation(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     notationGuide,
		},
	}, nil
}
