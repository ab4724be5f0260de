package eventbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"template-backend/application/ports"
	"template-backend/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name string
	log  *[]string
	fail bool
}

func (r *recorder) onSaved(ctx context.Context, event events.DomainEvent) error {
	*r.log = append(*r.log, r.name+":"+event.GetEventType())
	if r.fail {
		return errors.New(r.name + " failed")
	}
	return nil
}

type testRegistry struct{}

func (testRegistry) Subscriptions(target interface{}) ([]ports.Subscription, bool) {
	r, ok := target.(*recorder)
	if !ok {
		return nil, false
	}
	return []ports.Subscription{{EventType: events.TypeHouseholdSaved, Handle: r.onSaved}}, true
}

type captureForwarder struct {
	published []events.DomainEvent
}

func (f *captureForwarder) Publish(ctx context.Context, event events.DomainEvent) error {
	f.published = append(f.published, event)
	return nil
}

func (f *captureForwarder) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	f.published = append(f.published, batch...)
	return nil
}

func newBus() *Bus {
	bus := NewBuilder().Build()
	bus.SetRegistry(testRegistry{})
	return bus
}

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	var log []string
	bus := newBus()
	first := &recorder{name: "first", log: &log}
	second := &recorder{name: "second", log: &log}

	require.NoError(t, bus.Register(first))
	require.NoError(t, bus.Register(second))
	require.NoError(t, bus.Register(first)) // idempotent

	err := bus.Post(context.Background(), events.NewHouseholdSaved(1, "Smith", true, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, []string{"first:household.saved", "second:household.saved"}, log)
	assert.Equal(t, 2, bus.SubscriberCount(events.TypeHouseholdSaved))
}

func TestBus_IgnoresOtherEventTypes(t *testing.T) {
	var log []string
	bus := newBus()
	require.NoError(t, bus.Register(&recorder{name: "r", log: &log}))

	require.NoError(t, bus.Post(context.Background(), events.NewIndividualDeleted(3, time.Now())))
	assert.Empty(t, log)
}

func TestBus_JoinsSubscriberErrors(t *testing.T) {
	var log []string
	bus := newBus()
	require.NoError(t, bus.Register(&recorder{name: "bad", log: &log, fail: true}))
	require.NoError(t, bus.Register(&recorder{name: "good", log: &log}))

	err := bus.Post(context.Background(), events.NewHouseholdSaved(1, "Smith", false, time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad failed")
	assert.Len(t, log, 2, "later subscribers still run")
}

func TestBus_Unregister(t *testing.T) {
	var log []string
	bus := newBus()
	r := &recorder{name: "r", log: &log}
	require.NoError(t, bus.Register(r))

	bus.Unregister(r)
	bus.Unregister(r)

	require.NoError(t, bus.Post(context.Background(), events.NewHouseholdSaved(1, "Smith", false, time.Now())))
	assert.Empty(t, log)
	assert.Zero(t, bus.SubscriberCount(events.TypeHouseholdSaved))
}

func TestBus_RegisterErrors(t *testing.T) {
	bus := NewBuilder().Build()
	var log []string

	assert.ErrorIs(t, bus.Register(&recorder{log: &log}), ErrNoRegistry)

	bus.SetRegistry(testRegistry{})
	assert.ErrorIs(t, bus.Register(&struct{ x int }{}), ErrUnknownSubscriber)
	assert.Error(t, bus.Register(recorder{}))
	assert.Error(t, bus.Register(nil))
}

func TestBus_Forwards(t *testing.T) {
	fwd := &captureForwarder{}
	bus := NewBuilder().WithForwarder(fwd).Build()
	bus.SetRegistry(testRegistry{})

	batch := []events.DomainEvent{
		events.NewHouseholdSaved(1, "A", true, time.Now()),
		events.NewHouseholdDeleted(1, time.Now()),
	}
	require.NoError(t, bus.PostBatch(context.Background(), batch))
	assert.Len(t, fwd.published, 2)
}
