package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchstate/internal/config"
	dbRedis "github.com/kailas-cloud/searchstate/internal/db/redis"
	"github.com/kailas-cloud/searchstate/internal/domain/search/fieldlist"
	"github.com/kailas-cloud/searchstate/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/searchstate/internal/logger"
	"github.com/kailas-cloud/searchstate/internal/metrics"
	sessionrepo "github.com/kailas-cloud/searchstate/internal/repository/session"
	chiTransport "github.com/kailas-cloud/searchstate/internal/transport/chi"
	healthuc "github.com/kailas-cloud/searchstate/internal/usecase/health"
	searchuc "github.com/kailas-cloud/searchstate/internal/usecase/search"
	"github.com/kailas-cloud/searchstate/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchstate API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("namespace", cfg.Search.Namespace),
	)

	// Valkey and Redis share the rueidis client; redis is pinned to RESP2
	// for older servers and proxies.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
		RESP2:    cfg.Database.Driver == "redis",
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.Register()

	sessions := sessionrepo.New(
		store,
		cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTLSec)*time.Second,
		metrics.SessionOpsTotal,
		logger,
	)

	searchSvc := searchuc.New(sessions, searchuc.Options{
		Fields: buildFieldLists(cfg.Search),
		Paging: searchuc.Paging{
			DefaultResultsPerPage: cfg.Search.DefaultResultsPerPage,
			MaxResultsPerPage:     cfg.Search.MaxResultsPerPage,
		},
		State: []request.Option{
			request.WithNamespace(cfg.Search.Namespace),
			request.WithPersistentPaths(cfg.Search.PersistentPaths...),
		},
		MalformedTokensTotal: metrics.FieldListMalformedTokensTotal,
		SubRequestsTotal:     metrics.SubRequestsTotal,
	}, logger)

	healthSvc := healthuc.New(store, 2*time.Second)

	server := chiTransport.NewServer(searchSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys: cfg.Auth.APIKeys,
		Logger:  logger,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildFieldLists turns the configured field lists into their backend parameters.
func buildFieldLists(cfg config.SearchConfig) searchuc.FieldLists {
	build := func(src config.FieldListConfig, key string) fieldlist.List {
		return fieldlist.FromConfiguration(src,
			fieldlist.WithParameterKey(key),
			fieldlist.WithDelimiter(src.Delimiter),
		)
	}
	return searchuc.FieldLists{
		Query:         build(cfg.QueryFields, fieldlist.QueryFields),
		Phrase:        build(cfg.Phrase, fieldlist.PhraseFields),
		BigramPhrase:  build(cfg.BigramPhrase, fieldlist.BigramPhraseFields),
		TrigramPhrase: build(cfg.TrigramPhrase, fieldlist.TrigramPhraseFields),
	}
}
