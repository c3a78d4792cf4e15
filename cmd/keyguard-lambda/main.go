package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/hive-corporation/keyguard/internal/adapter/handler"
	"github.com/hive-corporation/keyguard/internal/app"
	"github.com/hive-corporation/keyguard/internal/config"
	"github.com/hive-corporation/keyguard/internal/platform/logger"
	"github.com/hive-corporation/keyguard/internal/platform/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	metrics.Init()

	application, err := app.New(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	h := handler.NewLambdaHandler(application.Responder, log)
	lambda.Start(h.Handle)
}
