package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/use-agent/statuswatch/app"
	"github.com/use-agent/statuswatch/cleaner"
	"github.com/use-agent/statuswatch/config"
	"github.com/use-agent/statuswatch/engine"
	"github.com/use-agent/statuswatch/models"
	"github.com/use-agent/statuswatch/scraper"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app.InitLogger(cfg.Log, os.Stderr)

	pipe, err := app.NewPipeline(cfg)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"statuswatch",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	checkStatusTool := mcp.NewTool("check_status",
		mcp.WithDescription("Fetch a page and extract its current status line, the same way a tracker refresh does. Result-portal URLs with a site profile (e.g. GNDU) submit the search term through the site's form."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page to check"),
		),
		mcp.WithString("search_term",
			mcp.Description("Value to look for, such as a roll or application number"),
		),
		mcp.WithString("selector",
			mcp.Description("Optional CSS selector, or a regular expression prefixed with 'regex:'"),
		),
	)
	s.AddTool(checkStatusTool, handleCheckStatus(pipe.Scraper))

	previewTool := mcp.NewTool("preview_page",
		mcp.WithDescription("Fetch a page and return its main content as Markdown, to help choose a selector or search term."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page to preview"),
		),
	)
	s.AddTool(previewTool, handlePreview(pipe.Fetcher, cleaner.NewPreviewer()))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleCheckStatus(sc *scraper.Scraper) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		term := request.GetString("search_term", "")
		selector := request.GetString("selector", "")

		st := sc.Scrape(ctx, models.ScrapeRequest{TargetURL: url, Selector: selector, SearchTerm: term})
		if st.IsFault() {
			return mcp.NewToolResultError(st.String()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Status: %s\nKind: %s", st.String(), st.Kind)), nil
	}
}

func handlePreview(f engine.Fetcher, pv *cleaner.Previewer) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		res, err := f.Fetch(ctx, &engine.FetchRequest{URL: url})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fetch failed: %v", err)), nil
		}
		p, err := pv.Preview(res.Body, url)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("preview failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Title: %s\nSource: %s\n\n%s", p.Title, p.SourceURL, p.Markdown)), nil
	}
}
