package main

import (
	"context"
	"log"
	"time"

	"template-backend/infrastructure/config"
	"template-backend/infrastructure/di"
	"template-backend/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	container *di.Container

	// coldStart is true until the first invocation completes
	coldStart     = true
	coldStartTime time.Time
)

func init() {
	coldStartTime = time.Now()
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var cleanup func()
	container, cleanup, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	container.AddShutdownFunction(func() error {
		cleanup()
		return nil
	})

	router, err := rest.NewRouterFromContainer(container)
	if err != nil {
		container.Logger.Fatal("Failed to create router", zap.Error(err))
	}

	chiRouter, ok := router.Setup().(*chi.Mux)
	if !ok {
		container.Logger.Fatal("Router is not a chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	duration := time.Since(coldStartTime)
	if err := container.StartupReporter.RecordColdStart(ctx, cfg.BuildVariant, duration); err != nil {
		container.Logger.Warn("Failed to report cold start", zap.Error(err))
	}
	container.Logger.Info("Lambda cold start completed", zap.Duration("duration", duration))
}

// Handler is the Lambda function handler
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	// The environment may freeze after the response, so flush per invocation.
	defer func() { _ = container.Logger.Sync() }()

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)
	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}

	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Lambda-Request-ID"] = req.RequestContext.RequestID
	}

	if resp.StatusCode >= 500 {
		container.Logger.Error("Lambda error response",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
		)
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
