package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peerfact-labs/peerfact/pkg/analysis"
	"github.com/peerfact-labs/peerfact/pkg/api"
	"github.com/peerfact-labs/peerfact/pkg/auth"
	"github.com/peerfact-labs/peerfact/pkg/chain"
	"github.com/peerfact-labs/peerfact/pkg/config"
	"github.com/peerfact-labs/peerfact/pkg/llm"
	"github.com/peerfact-labs/peerfact/pkg/observability"
	"github.com/peerfact-labs/peerfact/pkg/service"
	"github.com/peerfact-labs/peerfact/pkg/store"
)

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

// buildAnalyzer assembles the claim analyzer selected by config.
func buildAnalyzer(cfg *config.Config) analysis.Analyzer {
	switch cfg.AnalyzerMode {
	case "llm":
		client := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
		return analysis.NewLLMAnalyzer(client)
	case "ensemble":
		client := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
		return analysis.NewEnsembleAnalyzer(client)
	default:
		return analysis.NewHeuristicAnalyzer()
	}
}

//nolint:gocognit
func runServer() {
	fmt.Fprintf(os.Stdout, "%sPeerFact starting...%s\n", ColorBold+ColorBlue, ColorReset)
	ctx := context.Background()

	cfg := config.Load()
	if code := os.Getenv("PROFILE"); code != "" {
		profile, err := config.LoadProfile(os.Getenv("PROFILES_DIR"), code)
		if err != nil {
			log.Fatalf("Failed to load profile: %v", err)
		}
		profile.Apply(cfg)
		log.Printf("[peerfact] profile: %s", profile.Name)
	}
	setupLogger(cfg.LogLevel)

	// Storage
	var st service.Store
	var reputations store.ReputationStore
	if cfg.DatabasePath == "" {
		fmt.Fprintf(os.Stdout, "ℹ️  DATABASE_PATH not set. Falling back to %sin-memory store%s.\n", ColorBold+ColorCyan, ColorReset)
		mem := store.NewMemoryStore()
		st = mem
		reputations = mem
	} else {
		sqliteStore, err := store.OpenSQLite(cfg.DatabasePath)
		if err != nil {
			log.Fatalf("Failed to open SQLite store: %v", err)
		}
		defer sqliteStore.Close()
		st = sqliteStore
		reputations = sqliteStore
		log.Printf("[peerfact] sqlite: %s", cfg.DatabasePath)
	}

	if cfg.RedisAddr != "" {
		redisReps := store.NewRedisReputationStore(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), cfg.RedisDB)
		if err := redisReps.Ping(ctx); err != nil {
			log.Fatalf("Redis ping failed: %v", err)
		}
		reputations = redisReps
		log.Printf("[peerfact] redis: %s", cfg.RedisAddr)
	}

	// Telemetry
	obsCfg := observability.DefaultConfig()
	obsCfg.Enabled = cfg.OTLPEndpoint != ""
	if obsCfg.Enabled {
		obsCfg.OTLPEndpoint = cfg.OTLPEndpoint
	}
	obs, err := observability.New(ctx, obsCfg)
	if err != nil {
		log.Fatalf("Failed to init observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = obs.Shutdown(shutdownCtx)
	}()

	// Core
	integrity := chain.New(cfg.ChainDifficulty)
	svc := service.New(st, reputations, buildAnalyzer(cfg), integrity)

	var issuer *auth.TokenIssuer
	if cfg.JWTSecret != "" {
		issuer = auth.NewTokenIssuer(cfg.JWTSecret, 24*time.Hour)
	}

	// HTTP surface
	mux := http.NewServeMux()
	api.NewServer(svc, tokenIssuerOrNil(issuer)).Routes(mux)

	limiter := api.NewGlobalRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	var handler http.Handler = mux
	if issuer != nil {
		handler = auth.NewMiddleware(issuer)(handler)
	}
	handler = limiter.Middleware(handler)
	handler = auth.CORSMiddleware(nil)(handler)
	handler = auth.RequestIDMiddleware(handler)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[peerfact] ready: http://localhost:%s", cfg.Port)
		log.Println("[peerfact] press ctrl+c to stop")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Println("[peerfact] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[peerfact] shutdown error: %v", err)
	}
}

// tokenIssuerOrNil avoids handing a typed-nil issuer to the API layer.
func tokenIssuerOrNil(issuer *auth.TokenIssuer) api.TokenIssuer {
	if issuer == nil {
		return nil
	}
	return issuer
}
