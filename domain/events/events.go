package events

import (
	"strconv"
	"time"
)

// SourceBackend identifies this application when events leave the process
const SourceBackend = "template.backend"

// Event types
const (
	TypeIndividualSaved   = "individual.saved"
	TypeIndividualDeleted = "individual.deleted"
	TypeHouseholdSaved    = "household.saved"
	TypeHouseholdDeleted  = "household.deleted"
	TypeSyncCompleted     = "sync.completed"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// IndividualSaved is raised when an individual is inserted or updated
type IndividualSaved struct {
	BaseEvent
	IndividualID int64  `json:"individual_id"`
	HouseholdID  *int64 `json:"household_id,omitempty"`
	Created      bool   `json:"created"`
}

// NewIndividualSaved creates an IndividualSaved event
func NewIndividualSaved(id int64, householdID *int64, created bool, timestamp time.Time) IndividualSaved {
	return IndividualSaved{
		BaseEvent:    newBase(aggregateID("individual", id), TypeIndividualSaved, timestamp),
		IndividualID: id,
		HouseholdID:  householdID,
		Created:      created,
	}
}

// IndividualDeleted is raised when an individual is removed
type IndividualDeleted struct {
	BaseEvent
	IndividualID int64 `json:"individual_id"`
}

// NewIndividualDeleted creates an IndividualDeleted event
func NewIndividualDeleted(id int64, timestamp time.Time) IndividualDeleted {
	return IndividualDeleted{
		BaseEvent:    newBase(aggregateID("individual", id), TypeIndividualDeleted, timestamp),
		IndividualID: id,
	}
}

// HouseholdSaved is raised when a household is inserted or updated
type HouseholdSaved struct {
	BaseEvent
	HouseholdID int64  `json:"household_id"`
	Name        string `json:"name"`
	Created     bool   `json:"created"`
}

// NewHouseholdSaved creates a HouseholdSaved event
func NewHouseholdSaved(id int64, name string, created bool, timestamp time.Time) HouseholdSaved {
	return HouseholdSaved{
		BaseEvent:   newBase(aggregateID("household", id), TypeHouseholdSaved, timestamp),
		HouseholdID: id,
		Name:        name,
		Created:     created,
	}
}

// HouseholdDeleted is raised when a household is removed
type HouseholdDeleted struct {
	BaseEvent
	HouseholdID int64 `json:"household_id"`
}

// NewHouseholdDeleted creates a HouseholdDeleted event
func NewHouseholdDeleted(id int64, timestamp time.Time) HouseholdDeleted {
	return HouseholdDeleted{
		BaseEvent:   newBase(aggregateID("household", id), TypeHouseholdDeleted, timestamp),
		HouseholdID: id,
	}
}

// SyncCompleted is raised after a remote sync finishes
type SyncCompleted struct {
	BaseEvent
	Households  int `json:"households"`
	Individuals int `json:"individuals"`
}

// NewSyncCompleted creates a SyncCompleted event
func NewSyncCompleted(households, individuals int, timestamp time.Time) SyncCompleted {
	return SyncCompleted{
		BaseEvent:   newBase("sync", TypeSyncCompleted, timestamp),
		Households:  households,
		Individuals: individuals,
	}
}

func aggregateID(kind string, id int64) string {
	return kind + "#" + strconv.FormatInt(id, 10)
}
