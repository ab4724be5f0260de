// Package notifications delivers user notifications. Debug builds log them;
// deployed builds push them to connected WebSocket clients.
package notifications

import (
	"context"
	"sync"

	"template-backend/application/ports"
	apperrors "template-backend/pkg/errors"

	"go.uber.org/zap"
)

// channels is the channel table shared by both managers
type channels struct {
	mu     sync.RWMutex
	byID   map[string]ports.Channel
	active map[string]ports.Notification
}

func newChannels() *channels {
	return &channels{
		byID:   make(map[string]ports.Channel),
		active: make(map[string]ports.Notification),
	}
}

func (c *channels) CreateChannel(channel ports.Channel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byID[channel.ID] = channel
}

// Channels returns the registered channels
func (c *channels) Channels() []ports.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ports.Channel, 0, len(c.byID))
	for _, ch := range c.byID {
		out = append(out, ch)
	}
	return out
}

func (c *channels) check(n ports.Notification) error {
	if n.ID == "" {
		return apperrors.NewValidationError("notification id is required")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.byID[n.ChannelID]; !ok {
		return apperrors.NewValidationError("unknown notification channel: " + n.ChannelID)
	}
	return nil
}

func (c *channels) track(n ports.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[n.ID] = n
}

func (c *channels) untrack(id string) (ports.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.active[id]
	delete(c.active, id)
	return n, ok
}

// LogManager writes notifications to the log instead of delivering them
type LogManager struct {
	*channels
	logger *zap.Logger
}

// NewLogManager creates a logging manager
func NewLogManager(logger *zap.Logger) *LogManager {
	return &LogManager{channels: newChannels(), logger: logger.Named("Notifications")}
}

// Notify logs n
func (m *LogManager) Notify(ctx context.Context, n ports.Notification) error {
	if err := m.check(n); err != nil {
		return err
	}
	m.track(n)
	m.logger.Info("Notification",
		zap.String("id", n.ID),
		zap.String("channel", n.ChannelID),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

// Cancel forgets a posted notification
func (m *LogManager) Cancel(ctx context.Context, id string) error {
	if _, ok := m.untrack(id); !ok {
		return apperrors.NewNotFoundError("notification " + id)
	}
	m.logger.Info("Notification cancelled", zap.String("id", id))
	return nil
}

var _ ports.NotificationManager = (*LogManager)(nil)
