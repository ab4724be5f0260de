package listeners

import (
	"context"
	"fmt"

	"template-backend/application/ports"
	"template-backend/domain/events"
)

// Registry is the fixed subscriber index handed to the event bus. Only the
// listener types known here can register.
type Registry struct{}

// NewRegistry creates the registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Subscriptions returns the handlers of target
func (Registry) Subscriptions(target interface{}) ([]ports.Subscription, bool) {
	switch t := target.(type) {
	case *AnalyticsListener:
		return []ports.Subscription{
			subscribe(events.TypeIndividualSaved, t.onIndividualSaved),
			subscribe(events.TypeIndividualDeleted, t.onIndividualDeleted),
			subscribe(events.TypeHouseholdSaved, t.onHouseholdSaved),
			subscribe(events.TypeHouseholdDeleted, t.onHouseholdDeleted),
			subscribe(events.TypeSyncCompleted, t.onSyncCompleted),
		}, true
	case *NotificationListener:
		return []ports.Subscription{
			subscribe(events.TypeHouseholdSaved, t.onHouseholdSaved),
			subscribe(events.TypeHouseholdDeleted, t.onHouseholdDeleted),
			subscribe(events.TypeSyncCompleted, t.onSyncCompleted),
		}, true
	default:
		return nil, false
	}
}

// subscribe adapts a typed handler. Events arrive by value or by pointer.
func subscribe[E events.DomainEvent](eventType string, handle func(context.Context, E) error) ports.Subscription {
	return ports.Subscription{
		EventType: eventType,
		Handle: func(ctx context.Context, event events.DomainEvent) error {
			switch e := any(event).(type) {
			case E:
				return handle(ctx, e)
			case *E:
				return handle(ctx, *e)
			default:
				return fmt.Errorf("%s handler received %T", eventType, event)
			}
		},
	}
}

var _ ports.SubscriberRegistry = Registry{}
