// Package querysvc assembles the query service from its configured
// components and runs the HTTP server.
package querysvc

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kart-io/logger"

	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/biz"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/handler"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/router"
	"github.com/ariel1441/ai-rag-project-sub000/internal/queryd/store"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/app"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/component/milvus"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/component/redis"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/llm"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/llm/resilience"
	"github.com/ariel1441/ai-rag-project-sub000/pkg/pool"
	httpserver "github.com/ariel1441/ai-rag-project-sub000/pkg/server/http"

	// Register LLM providers.
	_ "github.com/ariel1441/ai-rag-project-sub000/pkg/llm/ollama"
	_ "github.com/ariel1441/ai-rag-project-sub000/pkg/llm/openai"

	answeropts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/answer"
	cacheopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/cache"
	llmopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/llm"
	logopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/logger"
	milvusopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/milvus"
	searchopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/search"
	httpopts "github.com/ariel1441/ai-rag-project-sub000/pkg/options/server/http"
)

// Name is the service name used in logs and banners.
const Name = "queryd"

// Config aggregates every option group the service needs.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	SearchOptions    *searchopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	AnswerOptions    *answeropts.Options
	CacheOptions     *cacheopts.Options
	ShutdownTimeout  time.Duration
}

// Server holds the running HTTP server and the resources it owns.
type Server struct {
	httpServer      *httpserver.Server
	synthesisPool   *pool.Pool
	shutdownTimeout time.Duration
	closers         []func()
}

// NewServer builds all components from cfg and wires them together.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting query service...")

	srv := &Server{shutdownTimeout: cfg.ShutdownTimeout}

	chunkStore, err := srv.buildChunkStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	redisClient := srv.buildRedisClient(ctx, cfg)

	embedder, err := buildEmbeddingProvider(cfg, redisClient)
	if err != nil {
		return nil, err
	}

	retriever := biz.NewRetriever(chunkStore, embedder, cfg.SearchOptions)
	parser := biz.NewParser(nil)

	synthesizer, synthesisPool, err := srv.buildSynthesis(cfg)
	if err != nil {
		return nil, err
	}

	var queryCache *biz.QueryCache
	if redisClient != nil && cfg.CacheOptions.Enabled {
		queryCache = biz.NewQueryCache(redisClient.Client(), &biz.QueryCacheConfig{
			Enabled:   true,
			TTL:       cfg.CacheOptions.TTL,
			KeyPrefix: cfg.CacheOptions.KeyPrefix,
		})
		logger.Infow("Query cache initialized",
			"ttl", cfg.CacheOptions.TTL,
			"key_prefix", cfg.CacheOptions.KeyPrefix,
		)
	}

	serviceConfig := biz.DefaultServiceConfig()
	if cfg.AnswerOptions.Timeout > 0 {
		serviceConfig.SynthesisTimeout = cfg.AnswerOptions.Timeout
	}
	service := biz.NewService(parser, retriever, synthesizer, queryCache, chunkStore, synthesisPool, serviceConfig)
	logger.Infow("Query service initialized",
		"backend", cfg.SearchOptions.Backend,
		"answer.enabled", cfg.AnswerOptions.Enabled,
		"cache.enabled", cfg.CacheOptions.Enabled,
	)

	httpServer := httpserver.NewServer(cfg.HTTPOptions)
	router.Register(httpServer.Engine(), handler.NewQueryHandler(service))

	srv.httpServer = httpServer
	logger.Info("Query service is ready")
	return srv, nil
}

// Run starts the HTTP server and blocks until a termination signal or a
// server error, then shuts down gracefully and releases owned resources.
func (s *Server) Run(ctx context.Context) error {
	defer s.close()

	errCh := s.httpServer.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Infow("Received termination signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.Info("Query service stopped")
	return nil
}

func (s *Server) close() {
	if s.synthesisPool != nil {
		if err := s.synthesisPool.ReleaseTimeout(5 * time.Second); err != nil {
			logger.Warnw("synthesis pool release timed out", "error", err.Error())
		}
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func (s *Server) buildChunkStore(ctx context.Context, cfg *Config) (store.ChunkStore, error) {
	if cfg.SearchOptions.Backend == searchopts.BackendMemory {
		logger.Info("Using in-memory chunk store")
		return store.NewMemoryStore(), nil
	}

	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	s.closers = append(s.closers, func() {
		_ = milvusClient.Close(context.Background())
	})

	milvusStore := store.NewMilvusStore(milvusClient, cfg.SearchOptions.Collection)
	if err := milvusStore.EnsureCollection(ctx, cfg.SearchOptions.EmbeddingDim); err != nil {
		return nil, fmt.Errorf("failed to ensure chunk collection: %w", err)
	}
	logger.Infow("Milvus chunk store initialized",
		"address", cfg.MilvusOptions.Address,
		"collection", cfg.SearchOptions.Collection,
	)
	return milvusStore, nil
}

// buildRedisClient connects to Redis when caching is configured. A
// connection failure disables caching instead of failing startup.
func (s *Server) buildRedisClient(ctx context.Context, cfg *Config) *redis.Client {
	if !cfg.CacheOptions.Enabled {
		logger.Info("Cache is disabled")
		return nil
	}
	if cfg.CacheOptions.Redis == nil {
		logger.Warn("Cache is enabled but no Redis configuration provided")
		return nil
	}

	redisClient, err := redis.NewWithContext(ctx, cfg.CacheOptions.Redis)
	if err != nil {
		logger.Warnw("failed to connect to redis, cache will be disabled", "error", err.Error())
		return nil
	}
	s.closers = append(s.closers, func() { _ = redisClient.Close() })
	logger.Infow("Redis client initialized",
		"host", cfg.CacheOptions.Redis.Host,
		"port", cfg.CacheOptions.Redis.Port,
	)
	return redisClient
}

// buildEmbeddingProvider layers retry and circuit breaking over the raw
// provider, plus a Redis embedding cache when Redis is available.
func buildEmbeddingProvider(cfg *Config, redisClient *redis.Client) (llm.EmbeddingProvider, error) {
	raw, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	var embedder llm.EmbeddingProvider = resilience.NewResilientEmbeddingProvider(raw, nil, nil)
	if redisClient != nil {
		embedder = llm.NewCachedEmbeddingProvider(embedder, redisClient.Client(), nil)
		logger.Info("Embedding cache enabled")
	}
	return embedder, nil
}

// buildSynthesis creates the synthesizer and its worker pool when answer
// generation is enabled. Both are nil otherwise.
func (s *Server) buildSynthesis(cfg *Config) (*biz.Synthesizer, *pool.Pool, error) {
	if !cfg.AnswerOptions.Enabled {
		logger.Info("Answer synthesis is disabled")
		return nil, nil, nil
	}

	raw, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)
	chat := resilience.NewResilientChatProvider(raw, nil, nil)

	synthConfig := biz.DefaultSynthesizerConfig()
	if cfg.AnswerOptions.MinAnswerLength > 0 {
		synthConfig.MinAnswerRunes = cfg.AnswerOptions.MinAnswerLength
	}
	if cfg.AnswerOptions.MaxContextRecords > 0 {
		synthConfig.MaxContextRecords = cfg.AnswerOptions.MaxContextRecords
	}
	synthesizer := biz.NewSynthesizer(chat, synthConfig)

	synthesisPool, err := pool.NewPool("synthesis", pool.SynthesisPool, pool.SynthesisPoolConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create synthesis pool: %w", err)
	}
	s.synthesisPool = synthesisPool
	logger.Infow("Synthesis pool initialized", "capacity", synthesisPool.Cap())

	return synthesizer, synthesisPool, nil
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Search backend: %s\n", cfg.SearchOptions.Backend)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	if cfg.AnswerOptions.Enabled {
		fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
	}
}
