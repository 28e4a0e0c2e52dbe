package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/casedoc"
	"github.com/fwojciec/casedoc/crawl"
	"github.com/fwojciec/casedoc/extract"
	"github.com/fwojciec/casedoc/fs"
	"github.com/fwojciec/casedoc/gemini"
	"github.com/fwojciec/casedoc/goquery"
	casedochttp "github.com/fwojciec/casedoc/http"
	"github.com/fwojciec/casedoc/index"
	"github.com/fwojciec/casedoc/pool"
	"github.com/fwojciec/casedoc/rod"
	"github.com/fwojciec/casedoc/scan"
	"github.com/fwojciec/casedoc/search"
	casedocslog "github.com/fwojciec/casedoc/slog"
	"github.com/fwojciec/casedoc/sqlite"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	// A .env file is optional; variables already set take precedence.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Configuration read from the environment. Set before calling Run().
	Config Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Config: LoadConfig(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	for i := len(m.closers) - 1; i >= 0; i-- {
		_ = m.closers[i].Close()
	}
	m.closers = nil
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("casedoc"),
		kong.Description("Discover, extract and search utility regulatory case documents."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'casedoc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	// Open database
	m.DB = sqlite.NewDB(m.Config.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CASEDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.Config.DBPath, err)
	}
	defer m.Close()

	// Wire core services into dependencies
	chunks := sqlite.NewChunkService(m.DB)
	deps.Runs = sqlite.NewRunService(m.DB)
	deps.Chunks = chunks
	deps.Failures = sqlite.NewFailureService(m.DB)
	deps.Search = casedocslog.NewLoggingSearchService(search.NewEngine(chunks), logger)

	// Wire command-specific dependencies based on the selected command
	switch kongCtx.Command() {
	case "run <query>":
		crawler, err := m.newCrawler(ctx, &cli.Run, deps, logger)
		if err != nil {
			return err
		}
		deps.Crawler = crawler

	case "ask <run-id> <question>":
		if m.Config.GeminiAPIKey == "" {
			fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return fmt.Errorf("GEMINI_API_KEY not set")
		}

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  m.Config.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}

		deps.Asker = gemini.NewAsker(client, deps.Search)

	case "extract <url>":
		deps.Viewers = rod.NewViewerFactory(cli.Extract.Timeout)
		deps.Extractor = newProcessor(logger)
	}

	return kongCtx.Run(deps)
}

// tokenizerModel is used for counting the tokens of extracted text.
const tokenizerModel = "gemini-2.5-flash"

// newProcessor builds the document extractor with logging around the
// detector and every strategy.
func newProcessor(logger *slog.Logger) casedoc.DocumentExtractor {
	processor := extract.NewProcessor(extract.DefaultThresholds(), logger)
	processor.Detector = casedocslog.NewLoggingDetector(processor.Detector, logger)
	for viewerType, strategy := range processor.Strategies {
		processor.Strategies[viewerType] = casedocslog.NewLoggingPageExtractor(strategy, viewerType, logger)
	}
	return casedocslog.NewLoggingDocumentExtractor(processor, logger)
}

// newCrawler wires the full run pipeline: listing fetcher and scanner,
// viewer pool, indexer, storage and optional artifacts and token counting.
func (m *Main) newCrawler(ctx context.Context, c *RunCmd, deps *Dependencies, logger *slog.Logger) (*crawl.Crawler, error) {
	listingURLs, err := ListingURLs(m.Config.BaseURL)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Set CASEDOC_BASE_URL to the public utilities commission site")
		return nil, err
	}

	parser := goquery.NewListingParser()
	limiter := crawl.NewDomainLimiter(m.Config.RPS)
	for host, rps := range m.Config.HostRPS {
		limiter.SetLimit(host, rps)
	}

	fetcher, err := m.newListingFetcher(ctx, c, listingURLs, parser, deps.Stderr)
	if err != nil {
		return nil, err
	}
	m.closers = append(m.closers, fetcher)

	scanner := scan.NewScanner(casedocslog.NewLoggingFetcher(fetcher, logger), parser, listingURLs)
	scanner.Limiter = limiter
	scanner.MissThreshold = c.MissThreshold
	scanner.Logger = logger
	source := casedocslog.NewLoggingScanner(scanner, scanner, logger)

	crawler := &crawl.Crawler{
		Scanner:   source,
		Documents: source,
		Pool: &pool.Pool{
			Factory:   rod.NewViewerFactory(c.Timeout),
			Extractor: newProcessor(logger),
			Limiter:   limiter,
			Workers:   c.Workers,
			Stagger:   pool.DefaultStagger,
			Logger:    logger,
		},
		Indexer:  index.New(),
		Runs:     deps.Runs,
		Chunks:   deps.Chunks,
		Failures: deps.Failures,
		Logger:   logger,
	}

	if m.Config.ArtifactsDir != "" {
		crawler.Artifacts = fs.NewArtifactStore(m.Config.ArtifactsDir)
	}

	tokenCounter, err := gemini.NewTokenCounter(tokenizerModel)
	if err != nil {
		logger.Warn("token counting disabled", "err", err)
	} else {
		crawler.TokenCounter = tokenCounter
	}

	return crawler, nil
}

// newListingFetcher returns the fetcher for listing and detail pages.
func (m *Main) newListingFetcher(ctx context.Context, c *RunCmd, listingURLs map[casedoc.ListingView]string, parser casedoc.ListingParser, stderr io.Writer) (casedoc.Fetcher, error) {
	httpFetcher := casedochttp.NewFetcher(casedochttp.WithTimeout(c.Timeout))
	newBrowserFetcher := func() (casedoc.Fetcher, error) {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return nil, fmt.Errorf("failed to start browser: %w", err)
		}
		return f, nil
	}

	switch c.Fetcher {
	case "http":
		return httpFetcher, nil
	case "browser":
		return newBrowserFetcher()
	}

	probe := casedoc.AllListingViews()[0]
	return ProbeFetcher(ctx, listingURLs[probe], probe, httpFetcher, newBrowserFetcher, parser)
}
