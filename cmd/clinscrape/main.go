package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/clinscrape/clinscrape"
	"github.com/clinscrape/clinscrape/anthropic"
	"github.com/clinscrape/clinscrape/config"
	"github.com/clinscrape/clinscrape/crawl"
	"github.com/clinscrape/clinscrape/extract"
	"github.com/clinscrape/clinscrape/gemini"
	"github.com/clinscrape/clinscrape/goquery"
	"github.com/clinscrape/clinscrape/htmltomarkdown"
	clinhttp "github.com/clinscrape/clinscrape/http"
	"github.com/clinscrape/clinscrape/rod"
	clinslog "github.com/clinscrape/clinscrape/slog"
	"github.com/clinscrape/clinscrape/sqlite"
	"github.com/clinscrape/clinscrape/trafilatura"
	"google.golang.org/genai"
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
	// Config file path. Set before calling Run().
	ConfigPath string

	// Database path override. Empty means config or the default location.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Service for end-to-end testing.
	RunService clinscrape.RunService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPath: os.Getenv("CLINSCRAPE_CONFIG"),
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
		kong.Name("clinscrape"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'clinscrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(m.ConfigPath)
	if err != nil {
		return err
	}
	deps.Targets = cfg.AllTargets()
	deps.SnapshotDir = cfg.SnapshotDir

	dbPath := m.DBPath
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		dbPath = defaultDBPath()
	}
	m.DB = sqlite.NewDB(dbPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CLINSCRAPE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", dbPath, err)
	}
	defer m.Close()

	m.RunService = sqlite.NewRunService(m.DB)
	deps.Runs = m.RunService

	if cmd == "scrape" {
		if err := m.wireScrape(ctx, cli, cfg, deps, stderr); err != nil {
			return err
		}
		defer closeCrawlerServices(deps.Crawler)
	}

	return kongCtx.Run(deps)
}

// wireScrape builds the provider, extraction client, and crawler for the
// scrape command. Browser-backed services are only started for the strategies
// the selected targets actually use.
func (m *Main) wireScrape(ctx context.Context, cli *CLI, cfg *config.Config, deps *Dependencies, stderr io.Writer) error {
	if cli.Scrape.Provider != "" {
		cfg.Provider = cli.Scrape.Provider
	}
	if cli.Scrape.Model != "" {
		cfg.Model = cli.Scrape.Model
	}

	logger := newLogger(stderr)

	provider, err := newProvider(ctx, cfg, stderr)
	if err != nil {
		return err
	}
	deps.ProviderName = cfg.Provider
	deps.Model = provider.Model()

	products := clinslog.NewLoggingProductExtractor(
		extract.NewClient(provider,
			extract.WithLogger(logger),
			extract.WithRequestsPerMinute(cfg.RequestsPerMinute),
		),
		logger,
	)

	needFetcher, needSessions := neededStrategies(cli.Scrape.Keys, deps.Targets)

	crawler := &crawl.Crawler{
		Sitemaps:    clinslog.NewLoggingSitemapService(clinhttp.NewSitemapService(nil), logger),
		Links:       goquery.NewLinkExtractor(),
		Extractor:   trafilatura.NewExtractor(),
		Converter:   htmltomarkdown.NewConverter(),
		Products:    products,
		RateLimiter: crawl.NewDomainLimiter(time.Second),
		Logger:      logger,
		Concurrency: cfg.Concurrency,
	}

	if needFetcher {
		if cli.Scrape.NoRender {
			crawler.Fetcher = clinslog.NewLoggingFetcher(clinhttp.NewFetcher(), logger)
		} else {
			fetcher, err := rod.NewFetcher()
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
				return fmt.Errorf("failed to start browser: %w", err)
			}
			crawler.Fetcher = clinslog.NewLoggingFetcher(fetcher, logger)
		}
	}
	if needSessions {
		opener, err := rod.NewOpener(rod.WithOpenerLogger(logger))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		crawler.Sessions = opener
	}

	deps.Crawler = crawler
	return nil
}

// closeCrawlerServices releases the browser-backed services a scrape wired
// up. Both the fetcher and the SPA session opener hold a launched browser.
func closeCrawlerServices(c *crawl.Crawler) {
	if c.Fetcher != nil {
		_ = c.Fetcher.Close()
	}
	if c.Sessions != nil {
		_ = c.Sessions.Close()
	}
}

// neededStrategies reports whether the selected targets need a page fetcher
// and whether they need an interactive browser session opener.
func neededStrategies(keys []string, targets []*clinscrape.Target) (fetcher, sessions bool) {
	selected := make(map[string]bool, len(keys))
	for _, k := range keys {
		selected[k] = true
	}
	for _, t := range targets {
		if len(keys) > 0 && !selected[t.Key] {
			continue
		}
		if t.Strategy == clinscrape.SourceSPA {
			sessions = true
		} else {
			fetcher = true
		}
	}
	return fetcher, sessions
}

// newProvider builds the configured LLM provider.
func newProvider(ctx context.Context, cfg *config.Config, stderr io.Writer) (clinscrape.LLMProvider, error) {
	switch cfg.Provider {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			fmt.Fprintln(stderr, "ANTHROPIC_API_KEY environment variable not set.")
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
		model := cfg.Model
		if model == "" {
			model = anthropic.DefaultModel
		}
		return anthropic.NewProvider(cfg.AnthropicAPIKey, model), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return nil, fmt.Errorf("GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		model := cfg.Model
		if model == "" {
			model = gemini.DefaultModel
		}
		return gemini.NewProvider(client, model), nil
	default:
		return nil, clinscrape.Errorf(clinscrape.EINVALID, "unknown provider %q", cfg.Provider)
	}
}

// newLogger builds the CLI logger. Warnings and errors only, unless
// CLINSCRAPE_VERBOSE is set.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("CLINSCRAPE_VERBOSE") != "" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	if path := os.Getenv("CLINSCRAPE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "clinscrape.db"
	}
	dir := filepath.Join(home, ".clinscrape")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "clinscrape.db")
}
