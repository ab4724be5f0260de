package locks

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	apperrors "template-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeDynamo evaluates the two conditions the locker issues: an expiry
// comparison on put and a lock id match on delete
type fakeDynamo struct {
	mu    sync.Mutex
	items map[string]lockRecord
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{items: map[string]lockRecord{}}
}

func singleValue(values map[string]types.AttributeValue) types.AttributeValue {
	for _, v := range values {
		return v
	}
	return nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var rec lockRecord
	if err := attributevalue.UnmarshalMap(in.Item, &rec); err != nil {
		return nil, err
	}
	if cur, ok := f.items[rec.PK]; ok {
		now, _ := strconv.ParseInt(singleValue(in.ExpressionAttributeValues).(*types.AttributeValueMemberN).Value, 10, 64)
		if cur.ExpiresAt >= now {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("held")}
		}
	}
	f.items[rec.PK] = rec
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	pk := in.Key["PK"].(*types.AttributeValueMemberS).Value
	lockID := singleValue(in.ExpressionAttributeValues).(*types.AttributeValueMemberS).Value
	cur, ok := f.items[pk]
	if !ok || cur.LockID != lockID {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("not owner")}
	}
	delete(f.items, pk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func TestDynamoDBLocker(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := NewDynamoDBLocker(client, "locks", "a", zap.NewNop())
	a.now = func() time.Time { return now }
	b := NewDynamoDBLocker(client, "locks", "b", zap.NewNop())
	b.now = func() time.Time { return now }

	release, err := a.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "a", client.items["LOCK#sync"].Owner)

	_, err = b.Acquire(ctx, "sync", time.Minute)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, CodeLockHeld, apperrors.GetAppError(err).Code)

	require.NoError(t, release(ctx))
	assert.Empty(t, client.items)

	_, err = b.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)
}

func TestDynamoDBLocker_ExpiredLockIsTakenOver(t *testing.T) {
	ctx := context.Background()
	client := newFakeDynamo()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := NewDynamoDBLocker(client, "locks", "a", zap.NewNop())
	a.now = func() time.Time { return now }
	releaseA, err := a.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)

	b := NewDynamoDBLocker(client, "locks", "b", zap.NewNop())
	b.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = b.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)

	// a's release must not drop b's lock
	require.NoError(t, releaseA(ctx))
	assert.Equal(t, "b", client.items["LOCK#sync"].Owner)
}

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLocalLocker()
	l.now = func() time.Time { return now }

	release, err := l.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, "sync", time.Minute)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
	assert.Equal(t, CodeLockHeld, apperrors.GetAppError(err).Code)

	_, err = l.Acquire(ctx, "other", time.Minute)
	assert.NoError(t, err)

	require.NoError(t, release(ctx))
	release2, err := l.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = l.Acquire(ctx, "sync", time.Minute)
	require.NoError(t, err)
	require.NoError(t, release2(ctx))
}
