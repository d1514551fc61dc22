package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"language-learner/handler"
	appconfig "language-learner/internal/config"
	"language-learner/internal/integrations/gemini"
	"language-learner/internal/integrations/openai"
	"language-learner/internal/integrations/paramstore"
	"language-learner/internal/repository"
	"language-learner/internal/usecase"
)

func main() {
	ctx := context.Background()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// ---- Configuration (read only here) ----
	cfg, err := appconfig.LoadLambda(os.LookupEnv)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	// ---- AWS SDK config ----
	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Fatal("failed to load AWS config", zap.Error(err))
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
	if err != nil {
		logger.Fatal("failed to create SSM client", zap.Error(err))
	}

	openaiKey, err := paramstore.NewKeyResolver(ssmClient, cfg.OpenAIKeyParam)
	if err != nil {
		logger.Fatal("failed to create OpenAI key resolver", zap.Error(err))
	}
	openaiClient, err := openai.NewClient(openaiKey)
	if err != nil {
		logger.Fatal("failed to create OpenAI client", zap.Error(err))
	}

	geminiKey, err := paramstore.NewKeyResolver(ssmClient, cfg.GeminiKeyParam)
	if err != nil {
		logger.Fatal("failed to create Gemini key resolver", zap.Error(err))
	}
	geminiClient, err := gemini.NewClient(geminiKey, gemini.WithModel(cfg.GeminiModel))
	if err != nil {
		logger.Fatal("failed to create Gemini client", zap.Error(err))
	}

	opts := []usecase.Option{
		usecase.WithChatModel(cfg.ChatModel),
		usecase.WithLogger(logger),
	}
	if cfg.UsageTable != "" {
		usage, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.UsageTable)
		if err != nil {
			logger.Fatal("failed to create usage repository", zap.Error(err))
		}
		opts = append(opts, usecase.WithUsageRecorder(usage))
	}

	// ---- Handler ----
	svc, err := usecase.NewGenerateService(openaiClient, geminiClient, opts...)
	if err != nil {
		logger.Fatal("failed to create generate service", zap.Error(err))
	}

	h, err := handler.NewHandler(svc, logger)
	if err != nil {
		logger.Fatal("failed to create handler", zap.Error(err))
	}

	lambda.Start(h.Handle)
}
