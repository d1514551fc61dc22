package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"language-learner/handler"
	"language-learner/internal/config"
	"language-learner/internal/integrations/gemini"
	"language-learner/internal/integrations/openai"
	"language-learner/internal/integrations/paramstore"
	"language-learner/internal/usecase"
)

const (
	openaiKeyName = "openai-token"
	geminiKeyName = "gemini-token"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := config.LoadDotEnv(); err != nil {
		logger.Fatal("failed to load .env", zap.Error(err))
	}
	cfg, err := config.LoadDevServer(os.LookupEnv)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	keys := paramstore.Static{
		openaiKeyName: cfg.OpenAIKey,
		geminiKeyName: cfg.GeminiKey,
	}
	openaiKey, err := paramstore.NewKeyResolver(keys, openaiKeyName)
	if err != nil {
		logger.Fatal("failed to create OpenAI key resolver", zap.Error(err))
	}
	geminiKey, err := paramstore.NewKeyResolver(keys, geminiKeyName)
	if err != nil {
		logger.Fatal("failed to create Gemini key resolver", zap.Error(err))
	}

	var openaiOpts []openai.Option
	if cfg.OpenAIBaseURL != "" {
		openaiOpts = append(openaiOpts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	openaiClient, err := openai.NewClient(openaiKey, openaiOpts...)
	if err != nil {
		logger.Fatal("failed to create OpenAI client", zap.Error(err))
	}
	geminiClient, err := gemini.NewClient(geminiKey, gemini.WithModel(cfg.GeminiModel))
	if err != nil {
		logger.Fatal("failed to create Gemini client", zap.Error(err))
	}

	svc, err := usecase.NewGenerateService(openaiClient, geminiClient,
		usecase.WithChatModel(cfg.ChatModel),
		usecase.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to create generate service", zap.Error(err))
	}
	h, err := handler.NewHandler(svc, logger)
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}

	router := gin.Default()

	// Enable CORS for local development
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-User-Id, X-Correlation-Id")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	h.RegisterRoutes(router)

	srv := &http.Server{Addr: cfg.Addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
}
