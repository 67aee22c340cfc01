package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("CoachDesk", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("CoachDesk coaching server. Look up customers, their workouts and templates, weight progress, nutrition and training volume. Exercises are stored as short strings like \"Bench Press 3x8 @ 60kg - slow tempo\" or \"[CARDIO] Run | 30min | 5km | easy\"; tools return them decoded."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListCustomers, Handler: h.listCustomers},
		server.ServerTool{Tool: toolGetCustomerStats, Handler: h.getCustomerStats},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolDecodeExercise, Handler: h.decodeExercise},
		server.ServerTool{Tool: toolGetWeightProgress, Handler: h.getWeightProgress},
		server.ServerTool{Tool: toolGetNutritionSummary, Handler: h.getNutritionSummary},
		server.ServerTool{Tool: toolGetTrainingSummary, Handler: h.getTrainingSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCustomerRoster, Handler: h.customerRoster},
		server.ServerResource{Resource: resNotation, Handler: h.notation},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCustomerRoster = mcp.NewResource(
	"coachdesk://customers",
	"Customer Roster",
	mcp.WithResourceDescription("Every customer with language, weight goal and nutrition target"),
	mcp.WithMIMEType("application/json"),
)

var resNotation = mcp.NewResource(
	"coachdesk://exercise_notation",
	"Exercise Notation",
	mcp.WithResourceDescription("How exercise strings are written, with examples"),
	mcp.WithMIMEType("text/markdown"),
)
