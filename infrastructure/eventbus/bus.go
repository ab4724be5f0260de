// Package eventbus implements the in-process publish/subscribe dispatcher.
package eventbus

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"template-backend/application/ports"
	"template-backend/domain/events"
	"template-backend/pkg/observability"

	"go.uber.org/zap"
)

var (
	// ErrNoRegistry is returned when subscribers register before SetRegistry
	ErrNoRegistry = errors.New("eventbus: no subscriber registry set")

	// ErrUnknownSubscriber is returned for objects the registry does not know
	ErrUnknownSubscriber = errors.New("eventbus: subscriber not in registry")
)

// Builder configures a Bus
type Builder struct {
	logger    *zap.Logger
	forwarder ports.EventPublisher
	metrics   *observability.Metrics
}

// NewBuilder starts a bus configuration
func NewBuilder() *Builder {
	return &Builder{logger: zap.NewNop()}
}

// WithLogger sets the bus logger
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// WithForwarder sets a publisher that receives every posted event after
// local delivery
func (b *Builder) WithForwarder(forwarder ports.EventPublisher) *Builder {
	b.forwarder = forwarder
	return b
}

// WithMetrics counts posted events by type
func (b *Builder) WithMetrics(metrics *observability.Metrics) *Builder {
	b.metrics = metrics
	return b
}

// Build creates the bus
func (b *Builder) Build() *Bus {
	return &Bus{
		logger:    b.logger,
		forwarder: b.forwarder,
		metrics:   b.metrics,
		byType:    make(map[string][]subscriber),
		targets:   make(map[interface{}]struct{}),
	}
}

type subscriber struct {
	target interface{}
	handle func(ctx context.Context, event events.DomainEvent) error
}

// Bus dispatches events to registered subscribers synchronously, in
// registration order
type Bus struct {
	mu        sync.RWMutex
	logger    *zap.Logger
	forwarder ports.EventPublisher
	metrics   *observability.Metrics
	registry  ports.SubscriberRegistry
	byType    map[string][]subscriber
	targets   map[interface{}]struct{}
}

// SetRegistry binds the bus to its subscriber registry
func (b *Bus) SetRegistry(registry ports.SubscriberRegistry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry = registry
}

// Register subscribes target. Registering the same target twice is a no-op.
func (b *Bus) Register(target interface{}) error {
	if target == nil || reflect.TypeOf(target).Kind() != reflect.Ptr {
		return fmt.Errorf("eventbus: subscriber must be a non-nil pointer, got %T", target)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.registry == nil {
		return ErrNoRegistry
	}
	if _, exists := b.targets[target]; exists {
		return nil
	}

	subs, ok := b.registry.Subscriptions(target)
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnknownSubscriber, target)
	}

	for _, sub := range subs {
		b.byType[sub.EventType] = append(b.byType[sub.EventType], subscriber{target: target, handle: sub.Handle})
	}
	b.targets[target] = struct{}{}

	b.logger.Debug("Subscriber registered",
		zap.String("subscriber", fmt.Sprintf("%T", target)),
		zap.Int("subscriptions", len(subs)),
	)
	return nil
}

// Unregister removes every subscription of target
func (b *Bus) Unregister(target interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.targets[target]; !exists {
		return
	}
	delete(b.targets, target)

	for eventType, subs := range b.byType {
		kept := subs[:0]
		for _, s := range subs {
			if s.target != target {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			delete(b.byType, eventType)
		} else {
			b.byType[eventType] = kept
		}
	}
}

// Post delivers event to its subscribers, then to the forwarder. Every
// subscriber runs even if an earlier one fails; the errors are joined.
func (b *Bus) Post(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	subs := append([]subscriber(nil), b.byType[event.GetEventType()]...)
	forwarder := b.forwarder
	b.mu.RUnlock()

	if b.metrics != nil {
		b.metrics.EventsPosted.WithLabelValues(event.GetEventType()).Inc()
	}

	var errs []error
	for _, s := range subs {
		if err := s.handle(ctx, event); err != nil {
			b.logger.Warn("Subscriber failed",
				zap.String("eventType", event.GetEventType()),
				zap.String("subscriber", fmt.Sprintf("%T", s.target)),
				zap.Error(err),
			)
			errs = append(errs, err)
		}
	}

	if forwarder != nil {
		if err := forwarder.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("forward %s: %w", event.GetEventType(), err))
		}
	}

	return errors.Join(errs...)
}

// PostBatch posts events in order
func (b *Bus) PostBatch(ctx context.Context, batch []events.DomainEvent) error {
	var errs []error
	for _, event := range batch {
		if err := b.Post(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SubscriberCount returns the number of subscriptions for an event type
func (b *Bus) SubscriberCount(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.byType[eventType])
}
