package services

import (
	"context"
	"time"

	"template-backend/application/ports"
	"template-backend/domain/core/entities"
	"template-backend/domain/events"

	"go.uber.org/zap"
)

// HouseholdService manages households and raises their events
type HouseholdService struct {
	households  ports.HouseholdDao
	individuals ports.IndividualDao
	bus         ports.EventBus
	logger      *zap.Logger
	now         func() time.Time
}

// NewHouseholdService creates the service
func NewHouseholdService(
	households ports.HouseholdDao,
	individuals ports.IndividualDao,
	bus ports.EventBus,
	logger *zap.Logger,
) *HouseholdService {
	return &HouseholdService{
		households:  households,
		individuals: individuals,
		bus:         bus,
		logger:      logger,
		now:         time.Now,
	}
}

// EventBus returns the bus events are posted to
func (s *HouseholdService) EventBus() ports.EventBus {
	return s.bus
}

// List returns every household
func (s *HouseholdService) List(ctx context.Context) ([]*entities.Household, error) {
	return s.households.FindAll(ctx)
}

// Get returns one household
func (s *HouseholdService) Get(ctx context.Context, id int64) (*entities.Household, error) {
	return s.households.FindByID(ctx, id)
}

// Members returns the individuals of a household
func (s *HouseholdService) Members(ctx context.Context, id int64) ([]*entities.Individual, error) {
	if _, err := s.households.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.individuals.FindByHousehold(ctx, id)
}

// Save inserts household when its ID is zero and updates it otherwise
func (s *HouseholdService) Save(ctx context.Context, household *entities.Household) (*entities.Household, error) {
	if err := household.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	household.Touch(now)

	created := household.ID == 0
	if created {
		if _, err := s.households.Insert(ctx, household); err != nil {
			return nil, err
		}
	} else if err := s.households.Update(ctx, household); err != nil {
		return nil, err
	}

	s.logger.Debug("Household saved",
		zap.Int64("householdId", household.ID),
		zap.Bool("created", created),
	)
	s.post(ctx, events.NewHouseholdSaved(household.ID, household.Name, created, now))
	return household, nil
}

// Delete removes a household
func (s *HouseholdService) Delete(ctx context.Context, id int64) error {
	if err := s.households.Delete(ctx, id); err != nil {
		return err
	}
	s.post(ctx, events.NewHouseholdDeleted(id, s.now()))
	return nil
}

func (s *HouseholdService) post(ctx context.Context, event events.DomainEvent) {
	if err := s.bus.Post(ctx, event); err != nil {
		s.logger.Warn("Failed to post event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
