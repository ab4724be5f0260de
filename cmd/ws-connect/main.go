// Package main implements the WebSocket $connect and $disconnect Lambda.
// Connections are recorded in the table the notification manager reads.
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"template-backend/infrastructure/config"
	"template-backend/infrastructure/di"
	"template-backend/infrastructure/notifications"
	"template-backend/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"
)

// connectionStore is the part of notifications.ConnectionStore the handler uses
type connectionStore interface {
	Save(ctx context.Context, conn notifications.Connection) error
	Delete(ctx context.Context, connectionID string) error
}

type tokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type handler struct {
	store     connectionStore
	validator tokenValidator
	logger    *zap.Logger
	now       func() time.Time
}

// Handle dispatches on the route key
func (h *handler) Handle(ctx context.Context, req events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := req.RequestContext.ConnectionID

	switch req.RequestContext.RouteKey {
	case "$disconnect":
		if err := h.store.Delete(ctx, connectionID); err != nil {
			h.logger.Error("Failed to delete connection", zap.String("connection_id", connectionID), zap.Error(err))
			return respond(http.StatusInternalServerError), nil
		}
		h.logger.Info("WebSocket disconnected", zap.String("connection_id", connectionID))
		return respond(http.StatusOK), nil
	}

	token := req.QueryStringParameters["token"]
	if token == "" {
		token = req.Headers["Authorization"]
	}

	claims, err := h.validator.ValidateToken(token)
	if err != nil {
		h.logger.Warn("WebSocket authentication failed", zap.String("connection_id", connectionID), zap.Error(err))
		return respond(http.StatusUnauthorized), nil
	}

	conn := notifications.NewConnection(connectionID, claims.UserID, h.now())
	if err := h.store.Save(ctx, conn); err != nil {
		h.logger.Error("Failed to store connection", zap.String("connection_id", connectionID), zap.Error(err))
		return respond(http.StatusInternalServerError), nil
	}

	h.logger.Info("WebSocket connected",
		zap.String("connection_id", connectionID),
		zap.String("user_id", claims.UserID),
	)
	return respond(http.StatusOK), nil
}

func respond(status int) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{StatusCode: status}
}

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, syncLogger, err := di.ProvideLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer syncLogger()

	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	if err != nil {
		logger.Fatal("JWT_SECRET is required", zap.Error(err))
	}

	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	h := &handler{
		store:     notifications.NewConnectionStore(di.ProvideDynamoDBClient(awsCfg), cfg.ConnectionsTable, logger.Named("Connections")),
		validator: validator,
		logger:    logger.Named("WebSocket"),
		now:       time.Now,
	}

	lambda.Start(h.Handle)
}
