package listeners

import (
	"context"
	"fmt"
	"strconv"

	"template-backend/application/ports"
	"template-backend/domain/events"

	"go.uber.org/zap"
)

// Notification channel ids
const (
	ChannelHouseholds = "households"
	ChannelSync       = "sync"
)

// NotificationChannels returns the channels the listener posts on. The
// notification manager registers them at startup.
func NotificationChannels() []ports.Channel {
	return []ports.Channel{
		{ID: ChannelHouseholds, Name: "Households", Description: "New households", Importance: 3},
		{ID: ChannelSync, Name: "Sync", Description: "Background sync results", Importance: 2},
	}
}

// NotificationListener posts user notifications for selected events
type NotificationListener struct {
	manager ports.NotificationManager
	logger  *zap.Logger
}

// NewNotificationListener creates the listener
func NewNotificationListener(manager ports.NotificationManager, logger *zap.Logger) *NotificationListener {
	return &NotificationListener{
		manager: manager,
		logger:  logger.Named("NotificationListener"),
	}
}

func (l *NotificationListener) onHouseholdSaved(ctx context.Context, e events.HouseholdSaved) error {
	if !e.Created {
		return nil
	}
	return l.manager.Notify(ctx, ports.Notification{
		ID:        "household-" + strconv.FormatInt(e.HouseholdID, 10),
		ChannelID: ChannelHouseholds,
		Title:     "Household created",
		Body:      fmt.Sprintf("%s was added", e.Name),
		Data:      map[string]string{"household_id": strconv.FormatInt(e.HouseholdID, 10)},
	})
}

func (l *NotificationListener) onHouseholdDeleted(ctx context.Context, e events.HouseholdDeleted) error {
	err := l.manager.Cancel(ctx, "household-"+strconv.FormatInt(e.HouseholdID, 10))
	if err != nil {
		l.logger.Debug("Nothing to cancel", zap.Int64("householdId", e.HouseholdID), zap.Error(err))
	}
	return nil
}

func (l *NotificationListener) onSyncCompleted(ctx context.Context, e events.SyncCompleted) error {
	return l.manager.Notify(ctx, ports.Notification{
		ID:        "sync",
		ChannelID: ChannelSync,
		Title:     "Sync complete",
		Body:      fmt.Sprintf("%d households and %d individuals updated", e.Households, e.Individuals),
	})
}
