package services

import (
	"context"
	"time"

	"template-backend/domain/core/entities"
	"template-backend/domain/events"
	apperrors "template-backend/pkg/errors"

	"github.com/stretchr/testify/mock"
)

type mockIndividualDao struct{ mock.Mock }

func (m *mockIndividualDao) FindByID(ctx context.Context, id int64) (*entities.Individual, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*entities.Individual), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockIndividualDao) FindAll(ctx context.Context) ([]*entities.Individual, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.Individual), args.Error(1)
}

func (m *mockIndividualDao) FindByHousehold(ctx context.Context, householdID int64) ([]*entities.Individual, error) {
	args := m.Called(ctx, householdID)
	return args.Get(0).([]*entities.Individual), args.Error(1)
}

func (m *mockIndividualDao) Insert(ctx context.Context, i *entities.Individual) (int64, error) {
	args := m.Called(ctx, i)
	id := args.Get(0).(int64)
	if args.Error(1) == nil {
		i.ID = id
	}
	return id, args.Error(1)
}

func (m *mockIndividualDao) Update(ctx context.Context, i *entities.Individual) error {
	return m.Called(ctx, i).Error(0)
}

func (m *mockIndividualDao) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockIndividualDao) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockHouseholdDao struct{ mock.Mock }

func (m *mockHouseholdDao) FindByID(ctx context.Context, id int64) (*entities.Household, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*entities.Household), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockHouseholdDao) FindAll(ctx context.Context) ([]*entities.Household, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*entities.Household), args.Error(1)
}

func (m *mockHouseholdDao) Insert(ctx context.Context, h *entities.Household) (int64, error) {
	args := m.Called(ctx, h)
	id := args.Get(0).(int64)
	if args.Error(1) == nil {
		h.ID = id
	}
	return id, args.Error(1)
}

func (m *mockHouseholdDao) Update(ctx context.Context, h *entities.Household) error {
	return m.Called(ctx, h).Error(0)
}

func (m *mockHouseholdDao) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockHouseholdDao) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// recordingBus keeps posted events
type recordingBus struct {
	posted []events.DomainEvent
	err    error
}

func (b *recordingBus) Register(target interface{}) error { return nil }
func (b *recordingBus) Unregister(target interface{})     {}

func (b *recordingBus) Post(ctx context.Context, event events.DomainEvent) error {
	b.posted = append(b.posted, event)
	return b.err
}

type fakeRemote struct {
	households  []*entities.Household
	individuals []*entities.Individual
	err         error
}

func (r *fakeRemote) Get(ctx context.Context, path string, out interface{}) error {
	if r.err != nil {
		return r.err
	}
	switch path {
	case RemoteHouseholdsPath:
		*out.(*[]*entities.Household) = r.households
	case RemoteIndividualsPath:
		*out.(*[]*entities.Individual) = r.individuals
	}
	return nil
}

type fakeLocker struct {
	held     bool
	resource string
	acquired int
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, resource string, ttl time.Duration) (func(context.Context) error, error) {
	if l.held {
		return nil, apperrors.NewConflictError(resource + " is already running")
	}
	l.resource = resource
	l.acquired++
	return func(context.Context) error {
		l.released++
		return nil
	}, nil
}
