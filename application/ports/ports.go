package ports

import (
	"context"
	"time"

	"template-backend/domain/core/entities"
	"template-backend/domain/events"
)

// Preferences is the key-value settings store.
type Preferences interface {
	// GetString returns the value for key or def when unset
	GetString(key, def string) string

	// GetBool returns the value for key or def when unset or not a bool
	GetBool(key string, def bool) bool

	// GetInt returns the value for key or def when unset or not an int
	GetInt(key string, def int) int

	// All returns a copy of every stored value
	All() map[string]string

	// Set persists a value
	Set(ctx context.Context, key, value string) error

	// Remove deletes a value
	Remove(ctx context.Context, key string) error

	// OnChange registers a listener called with the changed key
	OnChange(listener func(key string))

	// Close releases watchers and connections
	Close() error
}

// NotificationManager dispatches user-facing notifications.
type NotificationManager interface {
	// CreateChannel registers (or replaces) a notification channel
	CreateChannel(channel Channel)

	// Notify posts a notification on a registered channel
	Notify(ctx context.Context, notification Notification) error

	// Cancel withdraws a previously posted notification
	Cancel(ctx context.Context, id string) error
}

// Channel groups notifications of one kind.
type Channel struct {
	ID          string
	Name        string
	Description string
	Importance  int
}

// Notification is a single message for a user (or everyone when UserID is empty).
type Notification struct {
	ID        string            `json:"id"`
	ChannelID string            `json:"channel_id"`
	UserID    string            `json:"user_id,omitempty"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
}

// Analytics is the telemetry destination.
type Analytics interface {
	// Send records one hit built from params
	Send(ctx context.Context, params map[string]string) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus is the in-process publish/subscribe dispatcher.
type EventBus interface {
	// Register subscribes target to every event its registry entry lists
	Register(target interface{}) error

	// Unregister removes all subscriptions of target
	Unregister(target interface{})

	// Post dispatches an event to its subscribers
	Post(ctx context.Context, event events.DomainEvent) error
}

// IndividualDao is the typed query interface for the individual table.
type IndividualDao interface {
	FindByID(ctx context.Context, id int64) (*entities.Individual, error)
	FindAll(ctx context.Context) ([]*entities.Individual, error)
	FindByHousehold(ctx context.Context, householdID int64) ([]*entities.Individual, error)
	Insert(ctx context.Context, individual *entities.Individual) (int64, error)
	Update(ctx context.Context, individual *entities.Individual) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// HouseholdDao is the typed query interface for the household table.
type HouseholdDao interface {
	FindByID(ctx context.Context, id int64) (*entities.Household, error)
	FindAll(ctx context.Context) ([]*entities.Household, error)
	Insert(ctx context.Context, household *entities.Household) (int64, error)
	Update(ctx context.Context, household *entities.Household) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}

// Subscription binds one handler of a subscriber to an event type.
type Subscription struct {
	EventType string
	Handle    func(ctx context.Context, event events.DomainEvent) error
}

// SubscriberRegistry is the fixed mapping from subscriber objects to their
// subscriptions. ok is false for objects the registry does not know.
type SubscriberRegistry interface {
	Subscriptions(target interface{}) (subs []Subscription, ok bool)
}

// Locker serialises a named job. Acquire fails with a conflict error while
// another holder's lock is unexpired; release is safe to call after expiry.
type Locker interface {
	Acquire(ctx context.Context, resource string, ttl time.Duration) (release func(context.Context) error, err error)
}
