package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	wandererhttp "github.com/SirWilliamIII/wanderer/http"
	"github.com/SirWilliamIII/wanderer/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("wanderer"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'wanderer --help' to see available commands")
	}
	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg := DefaultConfig()
	if cli.Config != "" {
		cfg, err = LoadConfig(cli.Config)
		if err != nil {
			return err
		}
	}
	deps.Config = cfg

	if cli.DB != "" {
		m.DBPath = cli.DB
	} else if cfg.Database != "" {
		m.DBPath = cfg.Database
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set WANDERER_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	var docOpts []sqlite.Option
	if cfg.CollectionThreshold > 0 {
		docOpts = append(docOpts, sqlite.WithCollectionThreshold(cfg.CollectionThreshold))
	}
	deps.DB = m.DB
	deps.Documents = sqlite.NewDocumentService(m.DB, docOpts...)
	deps.Seeds = wandererhttp.NewSitemapSeeds(nil)

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("WANDERER_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "wanderer.db"
	}
	dir := filepath.Join(home, ".wanderer")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "wanderer.db")
}
