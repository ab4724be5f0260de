package services

import (
	"context"
	"strconv"
	"time"

	"template-backend/application/ports"
	"template-backend/domain/core/entities"
	"template-backend/domain/events"
	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/observability"

	"go.uber.org/zap"
)

// Remote resource paths
const (
	RemoteHouseholdsPath  = "households"
	RemoteIndividualsPath = "individuals"
)

// SyncLockResource names the lock held for the duration of a sync
const SyncLockResource = "sync"

// SyncLockTTL bounds how long a crashed sync blocks the next one
const SyncLockTTL = 5 * time.Minute

// RemoteClient fetches resources from the remote web service
type RemoteClient interface {
	Get(ctx context.Context, path string, out interface{}) error
}

// SyncResult counts the rows written by a sync
type SyncResult struct {
	Households  int `json:"households"`
	Individuals int `json:"individuals"`
}

// SyncService pulls households and individuals from the remote service.
// Remote rows whose id exists locally are updated; the rest are inserted
// with new ids.
type SyncService struct {
	remote      RemoteClient
	households  ports.HouseholdDao
	individuals ports.IndividualDao
	bus         ports.EventBus
	locker      ports.Locker
	tracer      *observability.Tracer
	logger      *zap.Logger
	now         func() time.Time
}

// NewSyncService creates the service. remote may be nil when no remote
// service is configured.
func NewSyncService(
	remote RemoteClient,
	households ports.HouseholdDao,
	individuals ports.IndividualDao,
	bus ports.EventBus,
	locker ports.Locker,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		remote:      remote,
		households:  households,
		individuals: individuals,
		bus:         bus,
		locker:      locker,
		tracer:      tracer,
		logger:      logger,
		now:         time.Now,
	}
}

// EventBus returns the bus events are posted to
func (s *SyncService) EventBus() ports.EventBus {
	return s.bus
}

// Sync runs one pull. Concurrent runs fail with a conflict error.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	if s.remote == nil {
		return nil, apperrors.NewUnavailableError("remote sync")
	}

	release, err := s.locker.Acquire(ctx, SyncLockResource, SyncLockTTL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release sync lock", zap.Error(err))
		}
	}()

	result := &SyncResult{}
	err = s.tracer.TraceFunction(ctx, "Sync", func(ctx context.Context) error {
		var remoteHouseholds []*entities.Household
		if err := s.remote.Get(ctx, RemoteHouseholdsPath, &remoteHouseholds); err != nil {
			return err
		}
		var remoteIndividuals []*entities.Individual
		if err := s.remote.Get(ctx, RemoteIndividualsPath, &remoteIndividuals); err != nil {
			return err
		}

		ids := make(map[int64]int64, len(remoteHouseholds))
		for _, h := range remoteHouseholds {
			remoteID := h.ID
			if err := s.upsertHousehold(ctx, h); err != nil {
				return err
			}
			ids[remoteID] = h.ID
			result.Households++
		}

		for _, i := range remoteIndividuals {
			if i.HouseholdID != nil {
				if local, ok := ids[*i.HouseholdID]; ok {
					i.HouseholdID = &local
				}
			}
			if err := s.upsertIndividual(ctx, i); err != nil {
				return err
			}
			result.Individuals++
		}

		s.tracer.AddAnnotation(ctx, "households", strconv.Itoa(result.Households))
		s.tracer.AddAnnotation(ctx, "individuals", strconv.Itoa(result.Individuals))
		return nil
	})
	if err != nil {
		s.logger.Error("Sync failed", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Sync completed",
		zap.Int("households", result.Households),
		zap.Int("individuals", result.Individuals),
	)
	if err := s.bus.Post(ctx, events.NewSyncCompleted(result.Households, result.Individuals, s.now())); err != nil {
		s.logger.Warn("Failed to post event", zap.String("eventType", events.TypeSyncCompleted), zap.Error(err))
	}
	return result, nil
}

func (s *SyncService) upsertHousehold(ctx context.Context, h *entities.Household) error {
	if err := h.Validate(); err != nil {
		return err
	}
	h.Touch(s.now())

	if h.ID != 0 {
		_, err := s.households.FindByID(ctx, h.ID)
		if err == nil {
			return s.households.Update(ctx, h)
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
	}
	_, err := s.households.Insert(ctx, h)
	return err
}

func (s *SyncService) upsertIndividual(ctx context.Context, i *entities.Individual) error {
	if err := i.Validate(); err != nil {
		return err
	}
	i.Touch(s.now())

	if i.ID != 0 {
		_, err := s.individuals.FindByID(ctx, i.ID)
		if err == nil {
			return s.individuals.Update(ctx, i)
		}
		if !apperrors.IsNotFound(err) {
			return err
		}
	}
	_, err := s.individuals.Insert(ctx, i)
	return err
}
