package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripagent/tripagent/internal/api"
	"github.com/tripagent/tripagent/internal/auth"
	"github.com/tripagent/tripagent/internal/catalog"
	"github.com/tripagent/tripagent/internal/config"
	"github.com/tripagent/tripagent/internal/core"
	"github.com/tripagent/tripagent/internal/llm"
	"github.com/tripagent/tripagent/internal/logger"
	"github.com/tripagent/tripagent/internal/store"
)

func main() {
	// Command line flag for minting an API token
	issueToken := flag.String("issue-token", "", "Print a bearer token for the given subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of a token minted with -issue-token")
	flag.Parse()

	// Token minting only needs JWT_SECRET, not a model provider
	if *issueToken != "" {
		if err := runIssueToken(os.Stdout, *issueToken, *tokenTTL); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := config.AppConfig

	// Setup logging
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer dbStore.Close()

	// Load the travel catalog
	cat, err := catalog.Default()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load catalog")
	}
	if cfg.TimezoneLookup {
		finder, err := catalog.NewTimezoneFinder()
		if err != nil {
			log.Warn().Err(err).Msg("Timezone lookup disabled")
		} else {
			cat.WithTimezones(finder)
		}
	}

	// Initialize the model provider
	provider, err := newProvider(context.Background(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize LLM provider")
	}
	defer provider.Close()

	// Initialize trip agent service
	agent := core.NewTripAgentService(
		dbStore,
		provider,
		core.DefaultTools(cat, dbStore, log),
		core.Options{
			MaxSteps:        cfg.MaxToolSteps,
			MaxOutputTokens: cfg.MaxOutputTokens,
			ModelTimeout:    cfg.ModelTimeout,
		},
		log,
	)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(agent, api.NewIdempotencyCache(cfg.IdempotencyTTL), cfg.JWTSecret, log)
	router := api.NewRouter(apiHandler, log)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ModelTimeout*time.Duration(cfg.MaxToolSteps) + 30*time.Second, // a turn may make several model calls
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Info().
			Str("addr", cfg.Addr()).
			Str("provider", provider.Name()).
			Bool("auth", cfg.AuthEnabled()).
			Msg("Starting server. Press Ctrl+C to quit.")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Str("addr", cfg.Addr()).Msg("Could not listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting gracefully")
}

// runIssueToken prints a signed token for subject.
func runIssueToken(out io.Writer, subject string, ttl time.Duration) error {
	cfg, err := config.LoadEnv()
	if err != nil {
		return err
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is required")
	}
	token, err := auth.GenerateJWT(cfg.JWTSecret, subject, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func newProvider(ctx context.Context, cfg config.Config, log zerolog.Logger) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return llm.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.ChatModel, log), nil
	case config.ProviderGemini:
		p, err := llm.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.ChatModel, log)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.LLMProvider)
	}
}
