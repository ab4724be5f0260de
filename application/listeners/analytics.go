// Package listeners holds the event bus subscribers and the registry that
// tells the bus which events each of them handles.
package listeners

import (
	"context"
	"strconv"

	"template-backend/application/ports"
	"template-backend/domain/events"
	"template-backend/pkg/dispatch"

	"go.uber.org/zap"
)

// Analytics hit categories
const (
	CategoryIndividual = "individual"
	CategoryHousehold  = "household"
	CategorySync       = "sync"
)

// MaxPendingHits bounds the hits waiting on or running in the IO executor.
// Hits beyond it are dropped.
const MaxPendingHits = 256

// AnalyticsListener turns domain events into analytics hits. Hits are sent
// on the IO executor so posting never waits on the network.
type AnalyticsListener struct {
	analytics ports.Analytics
	executor  dispatch.Executor
	pending   chan struct{}
	logger    *zap.Logger
}

// NewAnalyticsListener creates the listener
func NewAnalyticsListener(analytics ports.Analytics, provider dispatch.ContextProvider, logger *zap.Logger) *AnalyticsListener {
	return &AnalyticsListener{
		analytics: analytics,
		executor:  provider.IO(),
		pending:   make(chan struct{}, MaxPendingHits),
		logger:    logger.Named("AnalyticsListener"),
	}
}

func (l *AnalyticsListener) onIndividualSaved(ctx context.Context, e events.IndividualSaved) error {
	l.track(ctx, CategoryIndividual, savedAction(e.Created), strconv.FormatInt(e.IndividualID, 10))
	return nil
}

func (l *AnalyticsListener) onIndividualDeleted(ctx context.Context, e events.IndividualDeleted) error {
	l.track(ctx, CategoryIndividual, "deleted", strconv.FormatInt(e.IndividualID, 10))
	return nil
}

func (l *AnalyticsListener) onHouseholdSaved(ctx context.Context, e events.HouseholdSaved) error {
	l.track(ctx, CategoryHousehold, savedAction(e.Created), strconv.FormatInt(e.HouseholdID, 10))
	return nil
}

func (l *AnalyticsListener) onHouseholdDeleted(ctx context.Context, e events.HouseholdDeleted) error {
	l.track(ctx, CategoryHousehold, "deleted", strconv.FormatInt(e.HouseholdID, 10))
	return nil
}

func (l *AnalyticsListener) onSyncCompleted(ctx context.Context, e events.SyncCompleted) error {
	l.track(ctx, CategorySync, "completed", strconv.Itoa(e.Households+e.Individuals))
	return nil
}

func (l *AnalyticsListener) track(ctx context.Context, category, action, label string) {
	params := map[string]string{
		"t":  "event",
		"ec": category,
		"ea": action,
		"el": label,
	}

	select {
	case l.pending <- struct{}{}:
	default:
		l.logger.Warn("Dropping analytics hit, queue full",
			zap.String("category", category),
			zap.String("action", action),
		)
		return
	}

	// The request that raised the event may finish before the hit is sent.
	l.executor.Launch(context.WithoutCancel(ctx), func(ctx context.Context) error {
		defer func() { <-l.pending }()
		if err := l.analytics.Send(ctx, params); err != nil {
			l.logger.Warn("Failed to send analytics hit",
				zap.String("category", category),
				zap.String("action", action),
				zap.Error(err),
			)
		}
		return nil
	})
}

func savedAction(created bool) string {
	if created {
		return "created"
	}
	return "updated"
}
