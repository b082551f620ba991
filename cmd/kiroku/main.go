// Package main is the Kiroku CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/metrodocs/kiroku/internal/annotate"
	"github.com/metrodocs/kiroku/internal/config"
	"github.com/metrodocs/kiroku/internal/extract"
	"github.com/metrodocs/kiroku/internal/intake"
	"github.com/metrodocs/kiroku/internal/models"
	"github.com/metrodocs/kiroku/internal/notify"
	"github.com/metrodocs/kiroku/internal/pipeline"
	"github.com/metrodocs/kiroku/internal/server"
	"github.com/metrodocs/kiroku/internal/store"
	"github.com/metrodocs/kiroku/internal/transfer"
	"github.com/metrodocs/kiroku/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kiroku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "kiroku server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "submit":
		runSubmit()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("kiroku version %s\n", version)
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
	debug := fs.Bool("debug", false, "enable debug logging (intake events, stage transitions, etc.)")
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
	)

	pipe, st, err := initializePipeline(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize pipeline", zap.Error(err))
	}

	var watcher *intake.Watcher
	intakeCtx, intakeCancel := context.WithCancel(context.Background())
	defer intakeCancel()
	if cfg.Intake.DropDir != "" {
		opts := []intake.Option{
			intake.WithExtensions(cfg.Intake.Extensions),
			intake.WithDepartments(cfg.Portal.Departments, cfg.Intake.DefaultDepartment),
			intake.WithDebounce(time.Duration(cfg.Intake.DebounceMS) * time.Millisecond),
		}
		if debugMode {
			opts = append(opts, intake.WithLogger(logger))
		}
		watcher = intake.NewWatcher(cfg.Intake.DropDir, pipe, opts...)
		if err := watcher.Start(intakeCtx); err != nil {
			logger.Fatal("Failed to start intake watcher", zap.Error(err))
		}
		watcher.SyncExistingFiles()
		logger.Info("intake enabled", zap.String("drop_dir", cfg.Intake.DropDir))
	}

	srv := server.NewServer(st, pipe, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watcher != nil {
		watcher.Stop()
	}
	intakeCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// initializePipeline wires the store, transfer sink, extractor, annotator and
// notification sinks into a pipeline.
func initializePipeline(cfg *config.Config, logger *zap.Logger) (*pipeline.Pipeline, store.Store, error) {
	st := store.NewMemoryStore()

	sink, err := transfer.NewLocalSink(cfg.Portal.DocumentDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize document directory: %w", err)
	}

	sinks := notify.MultiSink{notify.NewLogSink(logger)}
	if cfg.Notify.WebhookURL != "" {
		timeout := time.Duration(cfg.Notify.TimeoutSeconds) * time.Second
		sinks = append(sinks, notify.NewWebhookSink(cfg.Notify.WebhookURL, timeout))
	}

	pipe, err := pipeline.New(pipeline.Deps{
		Store:     st,
		Transfer:  sink,
		Extractor: extract.NewFileExtractor(),
		Annotator: annotate.NewRuleAnnotator(cfg.Portal.ComplianceVocabulary),
		Notifier:  sinks,
	},
		pipeline.WithLogger(logger),
		pipeline.WithRelevanceMap(cfg.Portal.Relevance),
		pipeline.WithMaxConcurrentJobs(cfg.Intake.MaxConcurrentJobs),
	)
	if err != nil {
		return nil, nil, err
	}
	return pipe, st, nil
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	department := fs.String("department", "", "filter by department")
	docType := fs.String("type", "", "filter by document type (pdf, docx, xlsx, ...)")
	compliance := fs.String("compliance", "", "filter by compliance flag")
	dateRange := fs.String("date-range", "", "filter by upload date: last-week, last-month, last-quarter, last-year")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	queryStr := buildSearchQuery(fs.Args())
	q := &models.SearchQuery{
		Query: queryStr,
		Filters: models.SearchFilters{
			Department:     *department,
			DocumentType:   *docType,
			ComplianceFlag: *compliance,
			DateRange:      *dateRange,
		},
	}
	if q.IsEmpty() {
		fmt.Println("Usage: kiroku search [flags] <query>")
		fs.PrintDefaults()
		os.Exit(1)
	}

	response, err := searchViaHTTP(*serverURL, q)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(response); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("%d result(s) in %dms\n\n", response.Total, response.QueryTime)
		for _, doc := range response.Results {
			fmt.Printf("%s  [%s/%s]  %s\n", doc.ID, doc.Department, doc.FileType, doc.Title)
			if doc.AIAnnotationSummary != "" {
				fmt.Printf("    %s\n", utils.Truncate(doc.AIAnnotationSummary, 120))
			}
			fmt.Printf("    %s, v%s, %s\n",
				doc.UploadDate.Format("2006-01-02"), doc.Version, utils.FormatFileSize(doc.SizeBytes))
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runSubmit() {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	department := fs.String("department", "", "owning department (required)")
	title := fs.String("title", "", "title override (single-file batches)")
	tags := fs.String("tags", "", "comma-separated tags")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 || *department == "" {
		fmt.Println("Usage: kiroku submit --department <name> [flags] <file>...")
		fs.PrintDefaults()
		os.Exit(1)
	}

	req := models.BatchRequest{
		Department:    *department,
		TitleOverride: *title,
	}
	if *tags != "" {
		for _, tag := range strings.Split(*tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	for _, path := range fs.Args() {
		abs, err := filepath.Abs(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid path %s: %v\n", path, err)
			os.Exit(1)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot read %s: %v\n", path, err)
			os.Exit(1)
		}
		req.Files = append(req.Files, models.FileSpec{
			FileRef:          abs,
			DeclaredName:     filepath.Base(abs),
			DeclaredSize:     info.Size(),
			DeclaredMimeType: mime.TypeByExtension(filepath.Ext(abs)),
		})
	}

	body, _ := json.Marshal(req)
	resp, err := http.Post(*serverURL+"/api/v1/batches", "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Submit failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var result models.BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	for _, out := range result.Outcomes {
		if out.Stage == models.StageCommitted {
			fmt.Printf("%s: committed as %s\n", out.DeclaredName, out.DocumentID)
		} else {
			fmt.Printf("%s: %s (%s)\n", out.DeclaredName, out.Stage, out.ErrorReason)
		}
	}
	if !result.AllCommitted {
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status struct {
		Documents int `json:"documents"`
		Config    struct {
			Departments []string `json:"departments"`
			DocumentDir string   `json:"document_dir"`
			Intake      bool     `json:"intake"`
		} `json:"config"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("documents:     %d\n", status.Documents)
		fmt.Printf("departments:   %s\n", strings.Join(status.Config.Departments, ", "))
		fmt.Printf("document_dir:  %s\n", status.Config.DocumentDir)
		fmt.Printf("intake:        %t\n", status.Config.Intake)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`kiroku - Department document intake and retrieval service

Usage:
  kiroku server [flags]             Start the HTTP server
  kiroku search [flags] <query>     Search documents
  kiroku submit [flags] <file>...   Submit files for ingestion
  kiroku status [flags]             Show portal status
  kiroku version                    Show version
  kiroku help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kiroku/config.yaml)
  --debug            Enable debug logging (intake events, stage transitions, etc.)

Search Flags:
  --server string      Server URL (default: http://localhost:8080)
  --department string  Filter by department
  --type string        Filter by document type (pdf, docx, xlsx, ...)
  --compliance string  Filter by compliance flag
  --date-range string  Filter by upload date: last-week, last-month, last-quarter, last-year
  --output string      Output format: text or json (default: text)

Submit Flags:
  --server string      Server URL (default: http://localhost:8080)
  --department string  Owning department (required)
  --title string       Title override (single-file batches)
  --tags string        Comma-separated tags

Status Flags:
  --server string      Server URL (default: http://localhost:8080)
  --output string      Output format: text or json (default: text)

Examples:
  kiroku server
  kiroku search evacuation procedure
  kiroku search --department safety --date-range last-month inspection
  kiroku submit --department engineering --tags signalling spec.pdf
  kiroku status --output json`)
}
