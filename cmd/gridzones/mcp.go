package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1broseidon/gridzones/internal/mcp"
)

func printMCPUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: gridzones mcp serve")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Expose zone control as MCP tools over stdio. Meant to be launched by an")
	fmt.Fprintln(w, "MCP client, for example:")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  claude mcp add gridzones -- gridzones mcp serve")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "The daemon must be running; tools proxy to it over the IPC socket.")
}

func runMCP(args []string) int {
	if len(args) == 0 {
		printMCPUsage(os.Stderr)
		return 2
	}

	switch args[0] {
	case "serve":
		if len(args) > 1 && (args[1] == "help" || args[1] == "-h" || args[1] == "--help") {
			printMCPUsage(os.Stdout)
			return 0
		}
	case "help", "-h", "--help":
		printMCPUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown mcp command: %s\n\n", args[0])
		printMCPUsage(os.Stderr)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mcp.NewServer().Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
		return 1
	}
	return 0
}
