// Package rafiq provides the assistant server implementation.
package rafiq

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/rafiq/internal/rafiq/biz"
	"github.com/kart-io/rafiq/internal/rafiq/handler"
	"github.com/kart-io/rafiq/internal/rafiq/ingest"
	"github.com/kart-io/rafiq/internal/rafiq/router"
	"github.com/kart-io/rafiq/internal/rafiq/store"
	"github.com/kart-io/rafiq/internal/rafiq/translate"
	"github.com/kart-io/rafiq/pkg/component/milvus"
	"github.com/kart-io/rafiq/pkg/component/redis"
	"github.com/kart-io/rafiq/pkg/infra/app"
	"github.com/kart-io/rafiq/pkg/infra/pool"
	"github.com/kart-io/rafiq/pkg/llm"

	// Register LLM providers.
	_ "github.com/kart-io/rafiq/pkg/llm/gemini"
	_ "github.com/kart-io/rafiq/pkg/llm/ollama"
	_ "github.com/kart-io/rafiq/pkg/llm/openai"

	"github.com/kart-io/rafiq/pkg/llm/resilience"
	cacheopts "github.com/kart-io/rafiq/pkg/options/cache"
	llmopts "github.com/kart-io/rafiq/pkg/options/llm"
	logopts "github.com/kart-io/rafiq/pkg/options/logger"
	milvusopts "github.com/kart-io/rafiq/pkg/options/milvus"
	ragopts "github.com/kart-io/rafiq/pkg/options/rag"
	httpopts "github.com/kart-io/rafiq/pkg/options/server/http"
)

// Name is the name of the application.
const Name = "rafiq"

// Config contains everything needed to assemble the assistant server.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RAGOptions       *ragopts.Options
	CacheOptions     *cacheopts.Options
	ShutdownTimeout  time.Duration
}

// Server runs the HTTP API and the uploads watcher.
type Server struct {
	httpServer      *http.Server
	watcher         *ingest.Watcher
	workers         *pool.Pool
	shutdownTimeout time.Duration
	closers         []func()
}

// NewServer initializes and returns a new Server instance.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	printBanner(cfg)

	cfg.LogOptions.AddInitialField("service.name", Name)
	cfg.LogOptions.AddInitialField("service.version", app.GetVersion())
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting assistant service...")

	var closers []func()

	// Vector store. Milvus when configured, in-process otherwise.
	var vectorStore store.VectorStore
	if cfg.MilvusOptions.Enabled {
		milvusClient, err := milvus.New(cfg.MilvusOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize milvus: %w", err)
		}
		closers = append(closers, func() { _ = milvusClient.Close(context.Background()) })
		vectorStore = store.NewMilvusStore(milvusClient)
		logger.Infow("Milvus vector store initialized", "address", cfg.MilvusOptions.Address)
	} else {
		vectorStore = store.NewMemoryStore()
		logger.Info("In-memory vector store initialized")
	}

	// Redis backs the answer cache and the embedding cache. When it is
	// unreachable the service runs without caching.
	answerCache := biz.NewAnswerCache(nil, nil)
	var redisClient *redis.Client
	if cfg.CacheOptions.Enabled && cfg.CacheOptions.Redis != nil {
		rc, err := redis.NewFactory(cfg.CacheOptions.Redis).Create(ctx)
		if err != nil {
			logger.Warnw("failed to connect to redis, caching disabled", "error", err.Error())
		} else {
			redisClient = rc
			closers = append(closers, func() { _ = rc.Close() })
			answerCache = biz.NewAnswerCache(rc, &biz.AnswerCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			logger.Infow("Answer cache initialized",
				"host", cfg.CacheOptions.Redis.Host,
				"ttl", cfg.CacheOptions.TTL,
			)
		}
	} else {
		logger.Info("Answer cache is disabled")
	}

	// LLM providers, wrapped with retry and circuit breaking.
	rawEmbed, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	var embedProvider llm.EmbeddingProvider = resilience.NewResilientEmbeddingProvider(rawEmbed, nil, nil)
	if redisClient != nil {
		embedProvider = llm.NewCachedEmbeddingProvider(embedProvider, redisClient.Client(), nil)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	rawChat, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	chatProvider := resilience.NewResilientChatProvider(rawChat, nil, nil)
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	// Ingestion pipeline with the TF-IDF index fed as a side sink.
	translator := translate.NewLLMTranslator(chatProvider, nil)
	extractor := ingest.NewExtractor(ingest.ExecRunner{}, "")
	summarizer := ingest.NewSummarizer(chatProvider, translator)
	pipeline := ingest.NewPipeline(extractor, translator, summarizer, embedProvider, vectorStore, &ingest.PipelineConfig{
		Collection:   cfg.RAGOptions.Collection,
		EmbeddingDim: cfg.RAGOptions.EmbeddingDim,
		ChunkSize:    cfg.RAGOptions.ChunkSize,
		ChunkOverlap: cfg.RAGOptions.ChunkOverlap,
	})
	lexical := biz.NewLexicalTier(&biz.LexicalConfig{Threshold: cfg.RAGOptions.LexicalThreshold})
	pipeline.AddSink(lexical)

	workers, err := pool.New("rafiq-ingest", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	retriever := biz.NewRetriever(vectorStore, embedProvider, &biz.RetrieverConfig{
		TopK:       cfg.RAGOptions.TopK,
		Collection: cfg.RAGOptions.Collection,
	})
	generator := biz.NewGenerator(chatProvider, &biz.GeneratorConfig{
		PromptTemplate: cfg.RAGOptions.PromptTemplate,
	})

	engine := biz.NewEngine(pipeline, retriever, generator, translator, vectorStore, workers, &biz.EngineConfig{
		Collection: cfg.RAGOptions.Collection,
	})
	if err := engine.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	logger.Infow("Assistant engine started", "state", engine.State().String())

	// Response chain, most specific tier first.
	faq := biz.NewFAQTier(&biz.FAQConfig{
		Path:      cfg.RAGOptions.FAQPath,
		Threshold: cfg.RAGOptions.FAQThreshold,
	})
	chain := biz.NewChain(
		faq,
		biz.NewRAGTier(engine),
		lexical,
		biz.NewExternalTier(chatProvider),
		biz.NewPatternTier(),
		biz.NewTemplateTier(),
	)

	assistant := biz.NewAssistant(engine, chain, answerCache, workers, faq, lexical)
	h := handler.NewAssistantHandler(assistant, cfg.RAGOptions.UploadsDir)

	gin.SetMode(gin.ReleaseMode)
	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	router.Register(ginEngine, h)

	var watcher *ingest.Watcher
	if cfg.RAGOptions.WatchDir != "" {
		watcher = ingest.NewWatcher(cfg.RAGOptions.WatchDir, func(path string) {
			docID, err := assistant.Ingest(path)
			if err != nil {
				logger.Warnw("failed to submit watched file", "path", path, "error", err.Error())
				return
			}
			logger.Infow("watched file accepted", "path", path, "document_id", docID)
		})
	}

	logger.Info("Assistant service is ready")
	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPOptions.Addr,
			Handler:      ginEngine,
			ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
			WriteTimeout: cfg.HTTPOptions.WriteTimeout,
			IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
		},
		watcher:         watcher,
		workers:         workers,
		shutdownTimeout: cfg.ShutdownTimeout,
		closers:         closers,
	}, nil
}

// Run serves HTTP and the uploads watcher until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()

	if s.watcher != nil {
		go func() {
			if err := s.watcher.Run(watchCtx); err != nil {
				logger.Errorw("uploads watcher stopped", "error", err.Error())
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.cleanup()
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.cleanup()
	return err
}

func (s *Server) cleanup() {
	if s.workers != nil {
		s.workers.Release()
	}
	for _, closeFn := range s.closers {
		closeFn()
	}
	_ = logger.Flush()
}

func printBanner(cfg *Config) {
	fmt.Printf("Starting %s...\n", Name)
	fmt.Printf("  Embedding: %s (%s)\n", cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.Model)
	fmt.Printf("  Chat: %s (%s)\n", cfg.ChatOptions.Provider, cfg.ChatOptions.Model)
	fmt.Printf("  Listen: %s\n", cfg.HTTPOptions.Addr)
}
