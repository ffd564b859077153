package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/portdex/portdex/fs"
	"github.com/portdex/portdex/goquery"
	"github.com/portdex/portdex/htmltomarkdown"
	portdexhttp "github.com/portdex/portdex/http"
	portdexslog "github.com/portdex/portdex/slog"
	"github.com/portdex/portdex/sqlite"
	"github.com/portdex/portdex/update"
	"github.com/portdex/portdex/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()
	defer m.Close()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Config file path. Set before calling Run().
	ConfigPath string

	// Resolved configuration, populated by Run().
	Config *yaml.Config

	// SQLite database holding page snapshots.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: defaultConfigPath(),
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
	// Config file is optional; defaults apply when it is absent. It is
	// loaded before flag parsing so file values can serve as flag defaults
	// and an explicit flag still wins.
	var configErr error
	m.Config, configErr = yaml.Load(m.ConfigPath)
	if configErr != nil {
		m.Config = yaml.Default()
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("portdex"),
		kong.Description("Offline lookup of TCP/UDP port usage."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Vars{"default_max_age": m.Config.MaxAge.String()},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no query specified. Run 'portdex --help' to see usage")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if configErr != nil {
		logger.Debug("config file not loaded, using defaults", "path", m.ConfigPath, "err", configErr)
	}

	cacheDir := m.Config.CacheDir
	if cacheDir == "" {
		cacheDir = defaultCacheDir()
	}

	store := portdexslog.NewLoggingCacheStore(
		fs.NewStore(filepath.Join(cacheDir, "registry.json")), logger)

	// Snapshots are a best-effort convenience; a broken snapshot DB must
	// not block a lookup.
	var snapshots *sqlite.SnapshotService
	m.DB = sqlite.NewDB(filepath.Join(cacheDir, "snapshots.db"))
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		logger.Warn("cache directory unavailable, snapshots disabled", "dir", cacheDir, "err", err)
		m.DB = nil
	} else if err := m.DB.Open(); err != nil {
		logger.Warn("snapshot store unavailable", "err", err)
		m.DB = nil
	} else {
		snapshots = sqlite.NewSnapshotService(m.DB)
	}

	fetcher := portdexslog.NewLoggingFetcher(
		portdexhttp.NewRateLimitedFetcher(
			portdexhttp.NewFetcher(portdexhttp.WithTimeout(cli.Timeout)), 1.0),
		logger)

	updater := &update.Updater{
		Fetcher:   fetcher,
		Revisions: portdexhttp.NewRevisionService(nil, m.Config.HistoryAPIURL),
		Parser:    goquery.NewParser(goquery.WithConverter(htmltomarkdown.NewConverter())),
		Cache:     store,
		PageURL:   m.Config.SourceURL,
		Logger:    logger,
	}
	if snapshots != nil {
		updater.Snapshots = snapshots
	}

	deps := &Dependencies{
		Ctx:     ctx,
		Stdout:  stdout,
		Stderr:  stderr,
		Logger:  logger,
		Store:   store,
		Updater: updater,
		Color:   colorEnabled(stdout, cli.NoColor || m.Config.NoColor),
	}
	if snapshots != nil {
		deps.Snapshots = snapshots
	}

	return kongCtx.Run(deps)
}

func defaultConfigPath() string {
	if path := os.Getenv("PORTDEX_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "portdex.yaml"
	}
	return filepath.Join(home, ".config", "portdex", "config.yaml")
}

func defaultCacheDir() string {
	if dir := os.Getenv("PORTDEX_CACHE_DIR"); dir != "" {
		return dir
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".portdex"
	}
	return filepath.Join(dir, "portdex")
}
