package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/claude/onerm/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "onerm server URL to compute on (default: compute locally)")
	baseURL := flag.String("base-url", "", "public calculator URL used for share links")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("onerm-mcp", Version)
		return
	}

	// stdout carries the protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource = mcp.Local{}
	if *serverURL != "" {
		ds = mcp.NewHTTPClient(*serverURL)
		log.Info("remote mode", "server", *serverURL)
	}

	var base *url.URL
	if *baseURL != "" {
		u, err := url.Parse(*baseURL)
		if err != nil {
			log.Error("invalid -base-url", "error", err)
			os.Exit(1)
		}
		base = u
	}

	if err := mcpserver.ServeStdio(mcp.New(ds, base, Version, log)); err != nil {
		log.Error("mcp server stopped", "error", err)
		os.Exit(1)
	}
}
