package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"template-backend/domain/core/entities"
	"template-backend/domain/events"
	apperrors "template-backend/pkg/errors"
	"template-backend/pkg/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func int64Ptr(v int64) *int64 { return &v }

func TestIndividualService_SaveCreates(t *testing.T) {
	individuals := &mockIndividualDao{}
	households := &mockHouseholdDao{}
	bus := &recordingBus{}
	svc := NewIndividualService(individuals, households, bus, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	households.On("FindByID", ctx, int64(3)).Return(&entities.Household{ID: 3, Name: "Doe"}, nil)
	individuals.On("Insert", ctx, mock.AnythingOfType("*entities.Individual")).Return(int64(11), nil)

	saved, err := svc.Save(ctx, &entities.Individual{FirstName: "Jane", HouseholdID: int64Ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.ID)
	assert.Equal(t, entities.IndividualTypeHead, saved.IndividualType)
	assert.Equal(t, fixedNow, saved.LastModified)

	require.Len(t, bus.posted, 1)
	event := bus.posted[0].(events.IndividualSaved)
	assert.True(t, event.Created)
	assert.Equal(t, int64(11), event.IndividualID)
	individuals.AssertExpectations(t)
	households.AssertExpectations(t)
}

func TestIndividualService_SaveUpdatesAndSurvivesBusFailure(t *testing.T) {
	individuals := &mockIndividualDao{}
	bus := &recordingBus{err: errors.New("listener failed")}
	svc := NewIndividualService(individuals, &mockHouseholdDao{}, bus, zap.NewNop())
	ctx := context.Background()

	individuals.On("Update", ctx, mock.Anything).Return(nil)

	_, err := svc.Save(ctx, &entities.Individual{ID: 5, FirstName: "Jo", IndividualType: entities.IndividualTypeChild})
	require.NoError(t, err)
	assert.False(t, bus.posted[0].(events.IndividualSaved).Created)
}

func TestIndividualService_SaveRejectsInvalid(t *testing.T) {
	svc := NewIndividualService(&mockIndividualDao{}, &mockHouseholdDao{}, &recordingBus{}, zap.NewNop())

	_, err := svc.Save(context.Background(), &entities.Individual{Email: "not-an-email"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestIndividualService_SaveUnknownHousehold(t *testing.T) {
	households := &mockHouseholdDao{}
	bus := &recordingBus{}
	svc := NewIndividualService(&mockIndividualDao{}, households, bus, zap.NewNop())
	ctx := context.Background()

	households.On("FindByID", ctx, int64(99)).Return(nil, apperrors.NewNotFoundError("household 99"))

	_, err := svc.Save(ctx, &entities.Individual{FirstName: "X", HouseholdID: int64Ptr(99)})
	assert.True(t, apperrors.IsNotFound(err))
	assert.Empty(t, bus.posted)
}

func TestIndividualService_Delete(t *testing.T) {
	individuals := &mockIndividualDao{}
	bus := &recordingBus{}
	svc := NewIndividualService(individuals, &mockHouseholdDao{}, bus, zap.NewNop())
	ctx := context.Background()

	individuals.On("Delete", ctx, int64(4)).Return(nil).Once()
	individuals.On("Delete", ctx, int64(5)).Return(apperrors.NewNotFoundError("individual 5")).Once()

	require.NoError(t, svc.Delete(ctx, 4))
	assert.Error(t, svc.Delete(ctx, 5))
	require.Len(t, bus.posted, 1)
	assert.Equal(t, events.TypeIndividualDeleted, bus.posted[0].GetEventType())
}

func TestHouseholdService_SaveAndMembers(t *testing.T) {
	households := &mockHouseholdDao{}
	individuals := &mockIndividualDao{}
	bus := &recordingBus{}
	svc := NewHouseholdService(households, individuals, bus, zap.NewNop())
	ctx := context.Background()

	households.On("Insert", ctx, mock.Anything).Return(int64(2), nil)
	saved, err := svc.Save(ctx, &entities.Household{Name: "Smith"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), saved.ID)

	event := bus.posted[0].(events.HouseholdSaved)
	assert.Equal(t, "Smith", event.Name)
	assert.True(t, event.Created)

	households.On("FindByID", ctx, int64(2)).Return(saved, nil)
	individuals.On("FindByHousehold", ctx, int64(2)).Return([]*entities.Individual{{ID: 1}}, nil)
	members, err := svc.Members(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	households.On("Delete", ctx, int64(2)).Return(nil)
	require.NoError(t, svc.Delete(ctx, 2))
	assert.Equal(t, events.TypeHouseholdDeleted, bus.posted[1].GetEventType())
}

func TestHouseholdService_SaveRequiresName(t *testing.T) {
	svc := NewHouseholdService(&mockHouseholdDao{}, &mockIndividualDao{}, &recordingBus{}, zap.NewNop())
	_, err := svc.Save(context.Background(), &entities.Household{})
	assert.True(t, apperrors.IsValidation(err))
}

func TestSyncService_Sync(t *testing.T) {
	households := &mockHouseholdDao{}
	individuals := &mockIndividualDao{}
	bus := &recordingBus{}
	remote := &fakeRemote{
		households: []*entities.Household{{ID: 100, Name: "Remote"}},
		individuals: []*entities.Individual{
			{ID: 7, FirstName: "Kept", HouseholdID: int64Ptr(100)},
			{FirstName: "New"},
		},
	}
	svc := NewSyncService(remote, households, individuals, bus, &fakeLocker{}, observability.NewTracer("test", false), zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	ctx := context.Background()

	households.On("FindByID", ctx, int64(100)).Return(nil, apperrors.NewNotFoundError("household 100"))
	households.On("Insert", ctx, mock.Anything).Return(int64(1), nil)
	individuals.On("FindByID", ctx, int64(7)).Return(&entities.Individual{ID: 7}, nil)
	individuals.On("Update", ctx, mock.MatchedBy(func(i *entities.Individual) bool {
		return i.HouseholdID != nil && *i.HouseholdID == 1
	})).Return(nil)
	individuals.On("Insert", ctx, mock.Anything).Return(int64(8), nil)

	result, err := svc.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, &SyncResult{Households: 1, Individuals: 2}, result)

	require.Len(t, bus.posted, 1)
	assert.Equal(t, events.TypeSyncCompleted, bus.posted[0].GetEventType())
	households.AssertExpectations(t)
	individuals.AssertExpectations(t)
}

func TestSyncService_RemoteFailure(t *testing.T) {
	bus := &recordingBus{}
	remote := &fakeRemote{err: apperrors.NewExternalError("webservice", errors.New("down"))}
	svc := NewSyncService(remote, &mockHouseholdDao{}, &mockIndividualDao{}, bus, &fakeLocker{}, observability.NewTracer("test", false), zap.NewNop())

	_, err := svc.Sync(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	assert.Empty(t, bus.posted)
}

func TestSyncService_NotConfigured(t *testing.T) {
	svc := NewSyncService(nil, &mockHouseholdDao{}, &mockIndividualDao{}, &recordingBus{}, &fakeLocker{}, observability.NewTracer("test", false), zap.NewNop())
	_, err := svc.Sync(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnavailable))
}

func TestSyncService_RejectsConcurrentRun(t *testing.T) {
	bus := &recordingBus{}
	locker := &fakeLocker{held: true}
	svc := NewSyncService(&fakeRemote{}, &mockHouseholdDao{}, &mockIndividualDao{}, bus, locker, observability.NewTracer("test", false), zap.NewNop())

	_, err := svc.Sync(context.Background())
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Empty(t, bus.posted)
}

func TestSyncService_ReleasesLock(t *testing.T) {
	locker := &fakeLocker{}
	svc := NewSyncService(&fakeRemote{}, &mockHouseholdDao{}, &mockIndividualDao{}, &recordingBus{}, locker, observability.NewTracer("test", false), zap.NewNop())

	_, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 1, locker.released)
	assert.Equal(t, SyncLockResource, locker.resource)
}
