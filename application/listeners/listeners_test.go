package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"template-backend/application/ports"
	"template-backend/domain/events"
	"template-backend/infrastructure/eventbus"
	"template-backend/pkg/dispatch"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingAnalytics struct {
	mu   sync.Mutex
	hits []map[string]string
	err  error
}

func (a *recordingAnalytics) Send(ctx context.Context, params map[string]string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hits = append(a.hits, params)
	return a.err
}

type recordingManager struct {
	channels  []ports.Channel
	posted    []ports.Notification
	cancelled []string
}

func (m *recordingManager) CreateChannel(channel ports.Channel) {
	m.channels = append(m.channels, channel)
}

func (m *recordingManager) Notify(ctx context.Context, n ports.Notification) error {
	m.posted = append(m.posted, n)
	return nil
}

func (m *recordingManager) Cancel(ctx context.Context, id string) error {
	m.cancelled = append(m.cancelled, id)
	return nil
}

func newBus(t *testing.T) *eventbus.Bus {
	t.Helper()
	bus := eventbus.NewBuilder().Build()
	bus.SetRegistry(NewRegistry())
	return bus
}

func TestRegistry_KnownAndUnknownSubscribers(t *testing.T) {
	reg := NewRegistry()

	subs, ok := reg.Subscriptions(NewAnalyticsListener(&recordingAnalytics{}, dispatch.UnconfinedContextProvider(), zap.NewNop()))
	assert.True(t, ok)
	assert.Len(t, subs, 5)

	subs, ok = reg.Subscriptions(NewNotificationListener(&recordingManager{}, zap.NewNop()))
	assert.True(t, ok)
	assert.Len(t, subs, 3)

	_, ok = reg.Subscriptions(&struct{}{})
	assert.False(t, ok)
}

func TestAnalyticsListener_SendsHitPerEvent(t *testing.T) {
	analytics := &recordingAnalytics{}
	listener := NewAnalyticsListener(analytics, dispatch.UnconfinedContextProvider(), zap.NewNop())

	bus := newBus(t)
	require.NoError(t, bus.Register(listener))

	now := time.Now()
	require.NoError(t, bus.Post(context.Background(), events.NewIndividualSaved(7, nil, true, now)))
	require.NoError(t, bus.Post(context.Background(), events.NewHouseholdDeleted(3, now)))

	require.Len(t, analytics.hits, 2)
	assert.Equal(t, map[string]string{"t": "event", "ec": "individual", "ea": "created", "el": "7"}, analytics.hits[0])
	assert.Equal(t, "household", analytics.hits[1]["ec"])
	assert.Equal(t, "deleted", analytics.hits[1]["ea"])
}

func TestAnalyticsListener_SendFailureDoesNotFailPost(t *testing.T) {
	analytics := &recordingAnalytics{err: errors.New("offline")}
	listener := NewAnalyticsListener(analytics, dispatch.UnconfinedContextProvider(), zap.NewNop())

	bus := newBus(t)
	require.NoError(t, bus.Register(listener))

	assert.NoError(t, bus.Post(context.Background(), events.NewSyncCompleted(1, 2, time.Now())))
	assert.Len(t, analytics.hits, 1)
}

func TestAnalyticsListener_UsesIOExecutor(t *testing.T) {
	analytics := &recordingAnalytics{}
	listener := NewAnalyticsListener(analytics, dispatch.MainContextProvider(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, listener.onHouseholdSaved(ctx, events.NewHouseholdSaved(1, "Smith", false, time.Now())))
	cancel()

	assert.Eventually(t, func() bool {
		analytics.mu.Lock()
		defer analytics.mu.Unlock()
		return len(analytics.hits) == 1
	}, time.Second, 10*time.Millisecond)
}

type blockingAnalytics struct {
	release chan struct{}
	mu      sync.Mutex
	sent    int
}

func (a *blockingAnalytics) Send(ctx context.Context, params map[string]string) error {
	<-a.release
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent++
	return nil
}

func (a *blockingAnalytics) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sent
}

func TestAnalyticsListener_DropsHitsWhenQueueFull(t *testing.T) {
	analytics := &blockingAnalytics{release: make(chan struct{})}
	listener := NewAnalyticsListener(analytics, dispatch.MainContextProvider(), zap.NewNop())
	listener.pending = make(chan struct{}, 2)

	for i := int64(0); i < 5; i++ {
		require.NoError(t, listener.onHouseholdDeleted(context.Background(), events.NewHouseholdDeleted(i, time.Now())))
	}
	assert.Len(t, listener.pending, 2)

	close(analytics.release)
	assert.Eventually(t, func() bool { return analytics.count() == 2 && len(listener.pending) == 0 }, time.Second, 10*time.Millisecond)

	require.NoError(t, listener.onHouseholdDeleted(context.Background(), events.NewHouseholdDeleted(9, time.Now())))
	assert.Eventually(t, func() bool { return analytics.count() == 3 }, time.Second, 10*time.Millisecond)
}

func TestSubscribe_AcceptsValueAndPointer(t *testing.T) {
	var got []int64
	sub := subscribe(events.TypeHouseholdDeleted, func(ctx context.Context, e events.HouseholdDeleted) error {
		got = append(got, e.HouseholdID)
		return nil
	})

	event := events.NewHouseholdDeleted(4, time.Now())
	require.NoError(t, sub.Handle(context.Background(), event))
	require.NoError(t, sub.Handle(context.Background(), &event))
	assert.Equal(t, []int64{4, 4}, got)

	assert.Error(t, sub.Handle(context.Background(), events.NewSyncCompleted(1, 1, time.Now())))
}

func TestNotificationListener_HouseholdCreated(t *testing.T) {
	manager := &recordingManager{}
	listener := NewNotificationListener(manager, zap.NewNop())

	bus := newBus(t)
	require.NoError(t, bus.Register(listener))

	now := time.Now()
	require.NoError(t, bus.Post(context.Background(), events.NewHouseholdSaved(5, "Jones", true, now)))
	require.NoError(t, bus.Post(context.Background(), events.NewHouseholdSaved(5, "Jones", false, now)))

	require.Len(t, manager.posted, 1)
	assert.Equal(t, ChannelHouseholds, manager.posted[0].ChannelID)
	assert.Equal(t, "household-5", manager.posted[0].ID)
	assert.Contains(t, manager.posted[0].Body, "Jones")

	require.NoError(t, bus.Post(context.Background(), events.NewHouseholdDeleted(5, now)))
	assert.Equal(t, []string{"household-5"}, manager.cancelled)
}

func TestNotificationListener_SyncCompleted(t *testing.T) {
	manager := &recordingManager{}
	listener := NewNotificationListener(manager, zap.NewNop())

	event := events.NewSyncCompleted(2, 9, time.Now())
	subs, _ := NewRegistry().Subscriptions(listener)
	for _, sub := range subs {
		if sub.EventType == events.TypeSyncCompleted {
			require.NoError(t, sub.Handle(context.Background(), &event))
		}
	}

	require.Len(t, manager.posted, 1)
	assert.Equal(t, ChannelSync, manager.posted[0].ChannelID)
	assert.Equal(t, "2 households and 9 individuals updated", manager.posted[0].Body)
}

func TestNotificationChannels(t *testing.T) {
	ids := []string{}
	for _, c := range NotificationChannels() {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []string{ChannelHouseholds, ChannelSync}, ids)
}
