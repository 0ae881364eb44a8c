// Package main is the Lambda entry point for the review-drafting API behind
// API Gateway (HTTP API, payload v2).
//
// Endpoints:
//
//	GET  /api/health           health check
//	POST /api/generate-review  draft a review
//
// Metrics go to CloudWatch as EMF log lines instead of /metrics.
package main

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/review-drafter/internal/api"
	"github.com/fpang/review-drafter/internal/cli"
	"github.com/fpang/review-drafter/internal/config"
	"github.com/fpang/review-drafter/internal/lambdaboot"
	"github.com/fpang/review-drafter/internal/logging"
	"github.com/fpang/review-drafter/internal/review"
)

// Build-time version identity, injected via -ldflags.
var commitHash = "dev"

var (
	cfg     config.Config
	service *review.Service
)

func init() {
	initStart := time.Now()
	var err error
	cfg, err = config.Load()
	if err != nil {
		logging.Init("info")
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	logging.Init(cfg.LogLevel)

	ctx := context.Background()
	clients := lambdaboot.InitAWS(ctx)
	param, err := lambdaboot.LoadAPIKey(ctx, clients.SSM, cfg.Provider)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load API key")
	}

	// Key validation is skipped on cold start; a bad key surfaces as draft
	// failures in the logs and EMF metrics.
	gen := cli.InitGenerator(ctx, cfg, false)
	service = cli.NewDraftService(gen, cfg)

	lambdaboot.StartupLog("review-lambda", initStart).
		CommitHash(commitHash).
		Provider(gen.Name(), cfg.Model).
		SSMParam(param).
		Config("business", cfg.BusinessName).
		Log()
}

func main() {
	handler := api.NewRouter(api.Options{
		Drafter:        service,
		AllowedOrigins: cfg.Origins(),
	})
	adapter := httpadapter.NewV2(handler)
	lambda.Start(adapter.ProxyWithContext)
}
