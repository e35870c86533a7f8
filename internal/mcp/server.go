package mcp

import (
	"log/slog"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered. When
// base is set, estimates carry a share link built on it.
func New(ds DataSource, base *url.URL, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("onerm", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("One-rep max calculator. Estimates a 1RM from a weight lifted for 1 to 10 reps with the Epley formula, for bench press, squat and deadlift. Names and messages are available in Korean, English and Japanese."),
	)

	h := &handlers{ds: ds, base: base, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolEstimate, Handler: h.estimate},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resExercises, Handler: h.exercises},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds   DataSource
	base *url.URL
	log  *slog.Logger
}

// --- Resource definitions ---

var resExercises = mcp.NewResource(
	"onerm://exercises",
	"Exercises",
	mcp.WithResourceDescription("Supported exercises with localized names, the accepted rep range and the formula used"),
	mcp.WithMIMEType("application/json"),
)
