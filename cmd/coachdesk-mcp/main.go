// Command coachdesk-mcp serves the CoachDesk MCP tools over stdio for local
// assistants, reading data from a running CoachDesk server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/coachdesk/internal/client"
	coachmcp "github.com/claude/coachdesk/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("COACHDESK_SERVER"), "CoachDesk server URL (default $COACHDESK_SERVER)")
	apiKey := flag.String("key", os.Getenv("COACHDESK_API_KEY"), "API key (default $COACHDESK_API_KEY)")
	flag.Parse()

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: coachdesk-mcp -server <URL> [-key <API key>]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	s := coachmcp.New(client.New(*serverURL, *apiKey), Version, log)
	log.Info("serving MCP over stdio", "server", *serverURL, "version", Version)
	if err := mcpserver.ServeStdio(s); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
