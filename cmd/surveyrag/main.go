// Package main is the surveyrag CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/surveyrag/internal/cli"
	"github.com/hyperjump/surveyrag/internal/config"
	"github.com/hyperjump/surveyrag/internal/ingest"
	"github.com/hyperjump/surveyrag/internal/keyword"
	"github.com/hyperjump/surveyrag/internal/llm"
	"github.com/hyperjump/surveyrag/internal/models"
	"github.com/hyperjump/surveyrag/internal/outcome"
	"github.com/hyperjump/surveyrag/internal/pipeline"
	"github.com/hyperjump/surveyrag/internal/retrieval"
	"github.com/hyperjump/surveyrag/internal/search"
	"github.com/hyperjump/surveyrag/internal/selector"
	"github.com/hyperjump/surveyrag/internal/server"
	"github.com/hyperjump/surveyrag/internal/storage"
	"github.com/hyperjump/surveyrag/internal/watcher"
	"github.com/hyperjump/surveyrag/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/surveyrag/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory takes precedence if it exists. A missing file yields defaults plus environment.
// Returns the config and the path that was considered.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func main() {
	config.LoadDotEnv()
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "ask":
		runAsk()
	case "ingest":
		runIngest()
	case "collections":
		runCollections()
	case "reindex":
		runReindex()
	case "version", "--version", "-v":
		fmt.Printf("surveyrag version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
		zap.String("search_backend", cfg.Search.Backend),
		zap.String("llm_provider", cfg.Generation.Provider),
	)

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(components.Pipeline, components.Search, cfg.Collections, &cfg.Server, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func printAskUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: surveyrag ask [flags] <question>\n\n")
	fmt.Fprintf(fs.Output(), "Question is all remaining arguments joined by spaces.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  surveyrag ask How much do people spend on Christmas gifts?
  surveyrag ask --output json "Is sustainability important to shoppers?"
  surveyrag ask --server http://localhost:8080 holiday travel plans
`)
}

func buildQuestion(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags that follow positional arguments to the front so that
// "surveyrag ask my question --output json" parses the flag.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runAsk() {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "", "server URL; empty runs the pipeline in-process")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printAskUsage(fs) }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	format := cli.ParseFormat(*outputFormat)
	question := buildQuestion(fs.Args())

	if *serverURL != "" {
		answer, status, err := askViaHTTP(*serverURL, question)
		if err != nil {
			_ = cli.WriteError(os.Stderr, err.Error(), format)
			os.Exit(exitCode(status))
		}
		if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewCLILogger(cfg.Debug || *debug)
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	answer, err := components.Pipeline.Handle(context.Background(), models.Question(question)).Get()
	if err != nil {
		_ = cli.WriteError(os.Stderr, outcome.PublicMessage(err), format)
		components.Close()
		os.Exit(exitCode(server.StatusFor(outcome.KindOf(err))))
	}
	if err := cli.WriteAnswer(os.Stdout, answer, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// exitCode is 2 for caller errors, 3 when nothing was found and 1 otherwise.
func exitCode(status int) int {
	switch status {
	case http.StatusBadRequest:
		return 2
	case http.StatusNotFound:
		return 3
	default:
		return 1
	}
}

func askViaHTTP(serverURL, question string) (*models.Answer, int, error) {
	var answer models.Answer
	var failure models.ErrorResponse
	resp, err := resty.New().
		SetTimeout(2*time.Minute).
		R().
		SetBody(models.QueryRequest{Question: question}).
		SetResult(&answer).
		SetError(&failure).
		Post(strings.TrimRight(serverURL, "/") + "/api/v1/query")
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		if failure.Detail != "" {
			return nil, resp.StatusCode(), errors.New(failure.Detail)
		}
		return nil, resp.StatusCode(), fmt.Errorf("server returned %d: %s", resp.StatusCode(), resp.String())
	}
	return &answer, resp.StatusCode(), nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tag := fs.String("collection", "", "collection tag to ingest into (e.g. christmas)")
	watchDir := fs.String("watch", "", "keep running and ingest exports dropped into this directory")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if *tag == "" || (fs.NArg() < 1 && *watchDir == "") {
		fmt.Println("Usage: surveyrag ingest --collection <tag> [--config path] [--watch dir] <file.json|file.csv|file.xlsx>...")
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	col, ok := cfg.Collection(models.IndexTag(*tag))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown collection %q\n", *tag)
		os.Exit(1)
	}
	logger := utils.NewCLILogger(cfg.Debug || *debug)
	defer logger.Sync()
	format := cli.ParseFormat(*outputFormat)

	svc, closeSearch, err := initializeSearch(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize search: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ing := ingest.NewIngester(svc, ingest.WithLogger(logger))
	var total ingest.Report
	for _, path := range fs.Args() {
		rep, err := ingestFile(ctx, ing, col.Index, path)
		total.Succeeded += rep.Succeeded
		total.Failed += rep.Failed
		total.Skipped += rep.Skipped
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			if ctx.Err() != nil {
				break
			}
		}
	}
	if fs.NArg() > 0 {
		if err := cli.WriteReport(os.Stdout, col.Index, total, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		}
	}

	if *watchDir != "" && ctx.Err() == nil {
		if err := watchAndIngest(ctx, *watchDir, ing, col.Index, format, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			total.Failed++
		}
	}

	stop()
	if err := closeSearch(); err != nil {
		logger.Warn("failed to close search backend", zap.Error(err))
	}
	if total.Failed > 0 {
		os.Exit(1)
	}
}

// ingestFile loads one export and uploads it. A file that cannot be parsed counts as one failure.
func ingestFile(ctx context.Context, ing *ingest.Ingester, index, path string) (ingest.Report, error) {
	docs, err := ingest.Load(path)
	if err != nil {
		return ingest.Report{Failed: 1}, fmt.Errorf("load: %w", err)
	}
	return ing.Ingest(ctx, index, docs)
}

// watchAndIngest ingests exports already in dir, then every export that lands there, until ctx ends.
// Files are handled one at a time.
func watchAndIngest(ctx context.Context, dir string, ing *ingest.Ingester, index string, format cli.OutputFormat, logger *zap.Logger) error {
	var mu sync.Mutex
	onFile := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		rep, err := ingestFile(ctx, ing, index, path)
		if err != nil {
			logger.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		}
		_ = cli.WriteReport(os.Stdout, index, rep, format)
	}
	w := watcher.NewWatcher(dir, ingest.Extensions, onFile, watcher.WithLogger(logger))
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	if err := w.SyncExisting(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Watching %s for %s exports (Ctrl+C to stop)\n", dir, strings.Join(ingest.Extensions, ", "))
	<-ctx.Done()
	return nil
}

func runReindex() {
	fs := flag.NewFlagSet("reindex", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	tag := fs.String("collection", "", "collection tag to rebuild; empty rebuilds every collection")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if cfg.Search.Backend != config.BackendLocal {
		fmt.Fprintf(os.Stderr, "reindex needs search.backend: %s (configured: %s)\n", config.BackendLocal, cfg.Search.Backend)
		os.Exit(1)
	}
	cols := cfg.Collections
	if *tag != "" {
		col, ok := cfg.Collection(models.IndexTag(*tag))
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown collection %q\n", *tag)
			os.Exit(1)
		}
		cols = []config.CollectionConfig{col}
	}
	logger := utils.NewCLILogger(cfg.Debug || *debug)
	defer logger.Sync()

	store, err := storage.NewSQLiteStorage(cfg.Search.Local.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}
	local := search.NewLocal(keyword.NewRegistry(cfg.Search.Local.IndexDir), store, search.WithLocalLogger(logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = reindexCollections(ctx, local, cols, os.Stdout)
	stop()
	if closeErr := local.Close(); closeErr != nil {
		logger.Warn("failed to close search backend", zap.Error(closeErr))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Reindex failed: %v\n", err)
		os.Exit(1)
	}
}

func reindexCollections(ctx context.Context, local *search.Local, cols []config.CollectionConfig, w io.Writer) error {
	for _, c := range cols {
		n, err := local.Reindex(ctx, c.Index)
		if err != nil {
			return fmt.Errorf("%s: %w", c.Index, err)
		}
		fmt.Fprintf(w, "%s: %d documents reindexed\n", c.Index, n)
	}
	return nil
}

func runCollections() {
	fs := flag.NewFlagSet("collections", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	outputFormat := fs.String("output", "text", "output format: text or json")
	counts := fs.Bool("counts", false, "query the search service for document counts")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := utils.NewCLILogger(cfg.Debug)
	defer logger.Sync()

	var svc search.Service
	if *counts {
		s, closeSearch, err := initializeSearch(cfg, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize search: %v\n", err)
			os.Exit(1)
		}
		defer closeSearch()
		svc = s
	}
	infos := collectionInfos(context.Background(), cfg.Collections, svc, logger)
	if err := cli.WriteCollections(os.Stdout, infos, cli.ParseFormat(*outputFormat)); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func collectionInfos(ctx context.Context, cols []config.CollectionConfig, svc search.Service, logger *zap.Logger) []models.CollectionInfo {
	infos := make([]models.CollectionInfo, 0, len(cols))
	for _, c := range cols {
		info := models.CollectionInfo{Tag: c.Tag, Index: c.Index, Keywords: c.Keywords}
		if svc != nil {
			if n, err := svc.Count(ctx, c.Index); err != nil {
				logger.Warn("collection count failed", zap.String("index", c.Index), zap.Error(err))
			} else {
				info.Documents = &n
			}
		}
		infos = append(infos, info)
	}
	return infos
}

// Components holds initialized services.
type Components struct {
	Search   search.Service
	Pipeline *pipeline.Orchestrator

	closeSearch func() error
}

// Close releases the search backend. Safe to call more than once.
func (c *Components) Close() {
	if c.closeSearch != nil {
		_ = c.closeSearch()
		c.closeSearch = nil
	}
}

// initializeSearch returns the configured search backend and its cleanup function.
func initializeSearch(cfg *config.Config, logger *zap.Logger) (search.Service, func() error, error) {
	switch cfg.Search.Backend {
	case config.BackendLocal:
		store, err := storage.NewSQLiteStorage(cfg.Search.Local.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		local := search.NewLocal(keyword.NewRegistry(cfg.Search.Local.IndexDir), store, search.WithLocalLogger(logger))
		return local, local.Close, nil
	case config.BackendAzure:
		client := search.NewAzureClient(
			cfg.Search.Endpoint,
			cfg.Search.APIKey,
			cfg.Search.APIVersion,
			cfg.Search.Timeout,
			search.WithAzureLogger(logger),
			search.WithQueryType(cfg.Search.QueryType),
		)
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown search backend %q", cfg.Search.Backend)
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	svc, closeSearch, err := initializeSearch(cfg, logger)
	if err != nil {
		return nil, err
	}

	completer, err := llm.NewCompleter(ctx, cfg.Generation)
	if err != nil {
		_ = closeSearch()
		return nil, fmt.Errorf("failed to initialize %s provider: %w", cfg.Generation.Provider, err)
	}
	generator := llm.NewGenerator(completer, llm.ParamsFromConfig(cfg.Generation), logger)
	retriever := retrieval.New(svc, cfg.Collections,
		retrieval.WithTopK(cfg.Search.TopK),
		retrieval.WithLogger(logger),
	)
	p := pipeline.New(selector.FromConfig(cfg.Collections), retriever, generator,
		pipeline.WithLogger(logger),
		pipeline.WithMaxContextChars(cfg.Generation.MaxContextChars),
	)

	return &Components{
		Search:      svc,
		Pipeline:    p,
		closeSearch: closeSearch,
	}, nil
}

func printUsage() {
	fmt.Println(`surveyrag - Question answering over survey collections

Usage:
  surveyrag server [flags]                         Start the HTTP server
  surveyrag ask [flags] <question>                 Answer a question
  surveyrag ingest --collection <tag> <file>...    Upload survey documents into a collection
  surveyrag collections [flags]                    Show the routing table
  surveyrag reindex [--collection <tag>]           Rebuild local keyword indexes from stored documents
  surveyrag version                                Show version
  surveyrag help                                   Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/surveyrag/config.yaml)
  --debug            Enable debug logging

Ask Flags:
  --config string    Config file path (direct mode)
  --server string    Server URL; empty runs the pipeline in-process
  --output string    Output format: text or json (default: text)

Ingest Flags:
  --collection string  Collection tag (required)
  --watch string       Keep running and ingest exports dropped into this directory
  --output string      Output format: text or json (default: text)

Collections Flags:
  --counts           Query the search service for document counts
  --output string    Output format: text or json (default: text)

Environment:
  AZURE_SEARCH_ENDPOINT, AZURE_SEARCH_API_KEY, AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY,
  AZURE_OPENAI_API_VERSION and SURVEYRAG_* overrides; a .env file in the working directory is loaded first.

Examples:
  surveyrag server
  surveyrag ask "What are the most popular Christmas gifts?"
  surveyrag ask --output json is eco packaging important
  surveyrag ingest --collection christmas cleaned_christmas_data.csv
  surveyrag ingest --collection sustainability --watch ~/surveys/incoming
  surveyrag collections --counts`)
}
