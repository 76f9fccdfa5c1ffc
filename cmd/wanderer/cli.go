package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/SirWilliamIII/wanderer"
	"github.com/SirWilliamIII/wanderer/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Config    *Config
	DB        *sqlite.DB
	Documents wanderer.DocumentService
	Seeds     wanderer.SeedSource
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config  string `short:"c" help:"Path to YAML config file" type:"path"`
	DB      string `help:"SQLite database path (overrides config and WANDERER_DB)"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Crawl CrawlCmd `cmd:"" help:"Crawl from seed URLs"`
	Stats StatsCmd `cmd:"" help:"Show document counts by category and mode"`
}

// CrawlCmd is the "crawl" subcommand.
type CrawlCmd struct {
	Seeds []string `arg:"" optional:"" help:"Seed URLs (merged with config seeds)"`

	Mode        string `short:"m" default:"wander" enum:"wander,strict" help:"Crawl mode: wander (aggressive) or strict (polite)"`
	MaxRequests int    `short:"n" help:"Override the mode's request budget"`
	Depth       int    `short:"d" help:"Override the mode's depth limit"`
	Concurrency int    `help:"Override the mode's worker count"`
	Sitemap     bool   `short:"s" help:"Expand seeds via sitemap discovery before crawling"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Category string `arg:"" optional:"" help:"Limit output to one category"`
}
