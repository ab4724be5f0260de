package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"template-backend/application/ports"
	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/jsonmapper"
	"template-backend/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwTypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// Message types pushed to clients
const (
	MessageNotification = "notification"
	MessageCancel       = "notification.cancel"
)

// PostToConnectionAPI is the subset of the API Gateway management client the
// manager uses
type PostToConnectionAPI interface {
	PostToConnection(ctx context.Context, params *apigatewaymanagementapi.PostToConnectionInput, optFns ...func(*apigatewaymanagementapi.Options)) (*apigatewaymanagementapi.PostToConnectionOutput, error)
}

// ConnectionLister resolves the connections a message goes to
type ConnectionLister interface {
	ForUser(ctx context.Context, userID string) ([]string, error)
	All(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, connectionID string) error
}

// Message is the frame clients receive
type Message struct {
	Type         string              `json:"type"`
	Timestamp    time.Time           `json:"timestamp"`
	Channel      string              `json:"channel,omitempty"`
	Notification *ports.Notification `json:"notification,omitempty"`
	ID           string              `json:"id,omitempty"`
}

// WebSocketManager pushes notifications to connected WebSocket clients
type WebSocketManager struct {
	*channels
	api         PostToConnectionAPI
	connections ConnectionLister
	mapper      *jsonmapper.Mapper
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// NewWebSocketManager creates the manager. metrics may be nil.
func NewWebSocketManager(api PostToConnectionAPI, connections ConnectionLister, mapper *jsonmapper.Mapper, metrics *observability.Metrics, logger *zap.Logger) *WebSocketManager {
	return &WebSocketManager{
		channels:    newChannels(),
		api:         api,
		connections: connections,
		mapper:      mapper,
		metrics:     metrics,
		logger:      logger.Named("Notifications"),
		now:         time.Now,
	}
}

// Notify pushes n to the user's connections, or to everyone when UserID is
// empty
func (m *WebSocketManager) Notify(ctx context.Context, n ports.Notification) error {
	if err := m.check(n); err != nil {
		return err
	}

	err := m.push(ctx, n.UserID, Message{
		Type:         MessageNotification,
		Timestamp:    m.now().UTC(),
		Channel:      n.ChannelID,
		Notification: &n,
	})
	m.record(n.ChannelID, err)
	if err != nil {
		return err
	}
	m.track(n)
	return nil
}

// Cancel tells clients to withdraw a notification
func (m *WebSocketManager) Cancel(ctx context.Context, id string) error {
	n, ok := m.untrack(id)
	if !ok {
		return apperrors.NewNotFoundError("notification " + id)
	}
	return m.push(ctx, n.UserID, Message{
		Type:      MessageCancel,
		Timestamp: m.now().UTC(),
		Channel:   n.ChannelID,
		ID:        id,
	})
}

func (m *WebSocketManager) push(ctx context.Context, userID string, msg Message) error {
	payload, err := m.mapper.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	var targets []string
	if userID == "" {
		targets, err = m.connections.All(ctx)
	} else {
		targets, err = m.connections.ForUser(ctx, userID)
	}
	if err != nil {
		return err
	}

	sent, failed := 0, 0
	var lastErr error
	for _, connID := range targets {
		_, err := m.api.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connID),
			Data:         payload,
		})
		if err == nil {
			sent++
			continue
		}

		var gone *apigwTypes.GoneException
		if errors.As(err, &gone) {
			m.logger.Debug("Removing stale connection", zap.String("connectionId", connID))
			if derr := m.connections.Delete(ctx, connID); derr != nil {
				m.logger.Warn("Failed to remove stale connection", zap.String("connectionId", connID), zap.Error(derr))
			}
			continue
		}

		failed++
		lastErr = err
		m.logger.Warn("Failed to push notification", zap.String("connectionId", connID), zap.Error(err))
	}

	m.logger.Debug("Notification pushed",
		zap.String("type", msg.Type),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)

	if failed > 0 && sent == 0 {
		return apperrors.NewExternalError("websocket", lastErr)
	}
	return nil
}

func (m *WebSocketManager) record(channel string, err error) {
	if m.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.metrics.NotificationsSent.WithLabelValues(channel, result).Inc()
}

var _ ports.NotificationManager = (*WebSocketManager)(nil)
