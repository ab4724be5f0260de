package services

import (
	"context"
	"time"

	"template-backend/application/ports"
	"template-backend/domain/core/entities"
	"template-backend/domain/events"

	"go.uber.org/zap"
)

// IndividualService manages individuals and raises their events
type IndividualService struct {
	individuals ports.IndividualDao
	households  ports.HouseholdDao
	bus         ports.EventBus
	logger      *zap.Logger
	now         func() time.Time
}

// NewIndividualService creates the service
func NewIndividualService(
	individuals ports.IndividualDao,
	households ports.HouseholdDao,
	bus ports.EventBus,
	logger *zap.Logger,
) *IndividualService {
	return &IndividualService{
		individuals: individuals,
		households:  households,
		bus:         bus,
		logger:      logger,
		now:         time.Now,
	}
}

// EventBus returns the bus events are posted to
func (s *IndividualService) EventBus() ports.EventBus {
	return s.bus
}

// List returns every individual
func (s *IndividualService) List(ctx context.Context) ([]*entities.Individual, error) {
	return s.individuals.FindAll(ctx)
}

// Get returns one individual
func (s *IndividualService) Get(ctx context.Context, id int64) (*entities.Individual, error) {
	return s.individuals.FindByID(ctx, id)
}

// Save inserts individual when its ID is zero and updates it otherwise. The
// household, when set, must exist.
func (s *IndividualService) Save(ctx context.Context, individual *entities.Individual) (*entities.Individual, error) {
	if err := individual.Validate(); err != nil {
		return nil, err
	}
	if individual.HouseholdID != nil {
		if _, err := s.households.FindByID(ctx, *individual.HouseholdID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	individual.Touch(now)

	created := individual.ID == 0
	if created {
		if _, err := s.individuals.Insert(ctx, individual); err != nil {
			return nil, err
		}
	} else if err := s.individuals.Update(ctx, individual); err != nil {
		return nil, err
	}

	s.logger.Debug("Individual saved",
		zap.Int64("individualId", individual.ID),
		zap.Bool("created", created),
	)
	s.post(ctx, events.NewIndividualSaved(individual.ID, individual.HouseholdID, created, now))
	return individual, nil
}

// Delete removes an individual
func (s *IndividualService) Delete(ctx context.Context, id int64) error {
	if err := s.individuals.Delete(ctx, id); err != nil {
		return err
	}
	s.post(ctx, events.NewIndividualDeleted(id, s.now()))
	return nil
}

// post never fails the write that raised the event
func (s *IndividualService) post(ctx context.Context, event events.DomainEvent) {
	if err := s.bus.Post(ctx, event); err != nil {
		s.logger.Warn("Failed to post event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
