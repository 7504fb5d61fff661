// Causewayd is the conversation dispatch daemon behind the AskAnaliz and
// Şantiye AI apps.
//
// It exposes the HTTP API (analyze, confession, vision, voice, upload and
// narrative endpoints) and owns no durable state of its own: turn budgets
// are recomputed from submitted history, and rows live in the managed
// backend.
//
// Configuration is loaded from a YAML file with environment overrides.
// See internal/config for details.
//
// Usage:
//
//	# Start with defaults (~/.config/causewayd/config.yaml)
//	causewayd
//
//	# Configure via environment
//	SERVER_PORT=9090 LLM_API_KEY=sk-... causewayd
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/fyrsmithlabs/causewayd/internal/confession"
	"github.com/fyrsmithlabs/causewayd/internal/config"
	"github.com/fyrsmithlabs/causewayd/internal/dispatch"
	"github.com/fyrsmithlabs/causewayd/internal/httpapi"
	"github.com/fyrsmithlabs/causewayd/internal/llm"
	"github.com/fyrsmithlabs/causewayd/internal/logging"
	"github.com/fyrsmithlabs/causewayd/internal/narrative"
	"github.com/fyrsmithlabs/causewayd/internal/objectstore"
	"github.com/fyrsmithlabs/causewayd/internal/persona"
	"github.com/fyrsmithlabs/causewayd/internal/speech"
	"github.com/fyrsmithlabs/causewayd/internal/store"
	"github.com/fyrsmithlabs/causewayd/internal/telemetry"
	"github.com/fyrsmithlabs/causewayd/internal/vision"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  causewayd           Start the causewayd daemon\n")
			fmt.Fprintf(os.Stderr, "  causewayd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion() {
	fmt.Printf("causewayd by Fyrsmith Labs\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run starts the daemon and blocks until the context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger
//  3. Build provider clients (chat, confession pair, Gemini)
//  4. Build optional backends (row store, object store)
//  5. Wire the dispatch protocol and HTTP server
//  6. Serve until cancellation, then shut down gracefully
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("Starting causewayd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("analyze_timeout", cfg.Server.AnalyzeTimeout),
	)

	telemetryProvider, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetryProvider.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to shut down telemetry", zap.Error(err))
		}
	}()

	deps, err := initDeps(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.Close()

	logger.Info("Dependencies initialized",
		zap.Bool("store_enabled", deps.httpDeps.Store.Enabled()),
		zap.Bool("object_store_enabled", deps.httpDeps.Uploader != nil),
		zap.Bool("gemini_enabled", deps.httpDeps.Vision != nil),
	)

	srv, err := httpapi.NewServer(deps.httpDeps, logger.Named("http"), &httpapi.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AnalyzeTimeout: cfg.Server.AnalyzeTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://%s:%d/health", cfg.Server.Host, cfg.Server.Port)),
		zap.String("metrics_endpoint", "/metrics"),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// dependencies holds everything behind the HTTP API plus the resources
// that need closing on shutdown.
type dependencies struct {
	httpDeps    httpapi.Deps
	objectStore *objectstore.Store
	logger      *zap.Logger
}

// Close releases held resources.
func (d *dependencies) Close() {
	if d.objectStore != nil {
		if err := d.objectStore.Close(); err != nil {
			d.logger.Warn("failed to close object store", zap.Error(err))
		}
	}
}

// initDeps builds all services from config. Optional backends (row store,
// object store, Gemini) are wired only when configured; the server answers
// 503 on their routes otherwise.
func initDeps(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*dependencies, error) {
	personas, err := persona.Defaults()
	if err != nil {
		return nil, fmt.Errorf("failed to build persona registry: %w", err)
	}

	chatClient, err := llm.NewClient(llm.Config{
		APIKey:    cfg.LLM.APIKey,
		BaseURL:   cfg.LLM.BaseURL,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		RateLimit: cfg.LLM.RateLimit,
		Burst:     cfg.LLM.Burst,
		Timeout:   int(cfg.LLM.Timeout / time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	router := dispatch.NewRouter(chatClient, logger.Named("router"))
	executor, err := dispatch.NewExecutor(chatClient, personas, logger.Named("executor"))
	if err != nil {
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}
	dispatcher, err := dispatch.NewDispatcher(router, executor, dispatch.NewMetrics(logger), logger.Named("dispatch"))
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}

	rowStore, err := initStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	confessionChat, err := initConfessionChat(cfg, chatClient, logger)
	if err != nil {
		return nil, err
	}
	confessionSvc, err := confession.NewAnalyzer(confessionChat, rowStore, logger.Named("confession"))
	if err != nil {
		return nil, fmt.Errorf("failed to create confession analyzer: %w", err)
	}

	narrativeSvc, err := narrative.NewGenerator(chatClient, logger.Named("narrative"))
	if err != nil {
		return nil, fmt.Errorf("failed to create narrative generator: %w", err)
	}

	deps := &dependencies{
		httpDeps: httpapi.Deps{
			Dispatcher: dispatcher,
			Confession: confessionSvc,
			Narrative:  narrativeSvc,
			Store:      rowStore,
			Personas:   personas,
			Metrics:    httpapi.NewMetrics(logger),
		},
		logger: logger,
	}

	if cfg.ObjectStore.Bucket != "" {
		objStore, err := objectstore.New(ctx, objectstore.Config{
			Bucket:       cfg.ObjectStore.Bucket,
			SignedURLTTL: cfg.ObjectStore.SignedURLTTL,
		}, logger.Named("objectstore"))
		if err != nil {
			return nil, fmt.Errorf("failed to create object store: %w", err)
		}
		deps.objectStore = objStore
		deps.httpDeps.Uploader = objStore
	}

	if cfg.Gemini.APIKey != "" {
		genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.Gemini.APIKey})
		if err != nil {
			return nil, fmt.Errorf("failed to create genai client: %w", err)
		}

		visionSvc, err := vision.NewAnalyzer(genaiClient, cfg.Gemini.VisionModel, logger.Named("vision"))
		if err != nil {
			return nil, fmt.Errorf("failed to create vision analyzer: %w", err)
		}
		speechSvc, err := speech.NewTranscriber(genaiClient, cfg.Gemini.SpeechModel, logger.Named("speech"))
		if err != nil {
			return nil, fmt.Errorf("failed to create transcriber: %w", err)
		}

		deps.httpDeps.Vision = visionSvc
		deps.httpDeps.Speech = speechSvc
	}

	return deps, nil
}

// initStore returns the configured row store, or the NoOp store when no
// backend URL is set.
func initStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	if cfg.Store.BaseURL == "" {
		return store.NoOp{}, nil
	}

	client, err := store.NewClient(store.Config{
		BaseURL:    cfg.Store.BaseURL,
		ServiceKey: cfg.Store.ServiceKey,
		Timeout:    cfg.Store.Timeout,
	}, logger.Named("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to create row store client: %w", err)
	}
	return client, nil
}

// initConfessionChat builds the primary/fallback model pair for the
// confession path. Without a dedicated key, verdicts run on the main chat
// client instead.
func initConfessionChat(cfg *config.Config, fallbackTo llm.Chatter, logger *zap.Logger) (llm.Chatter, error) {
	if cfg.Confession.APIKey == "" {
		logger.Info("confession api key not set, using primary chat client")
		return fallbackTo, nil
	}

	primary, err := llm.NewClient(llm.Config{
		APIKey:  cfg.Confession.APIKey,
		BaseURL: cfg.Confession.BaseURL,
		Model:   cfg.Confession.PrimaryModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create confession primary client: %w", err)
	}

	fallback, err := llm.NewClient(llm.Config{
		APIKey:  cfg.Confession.APIKey,
		BaseURL: cfg.Confession.BaseURL,
		Model:   cfg.Confession.FallbackModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create confession fallback client: %w", err)
	}

	return llm.NewFallback(primary, fallback, logger.Named("confession-llm")), nil
}
