// Package locks serialises long-running jobs such as remote sync. The
// DynamoDB locker coordinates every instance sharing a table; the local
// locker only covers one process.
package locks

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "template-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the locker uses
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// lockRecord is the item held while a lock is taken
type lockRecord struct {
	PK         string `dynamodbav:"PK"` // LOCK#<resource>
	SK         string `dynamodbav:"SK"` // LOCK
	LockID     string `dynamodbav:"LockID"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  int64  `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// DynamoDBLocker takes locks with conditional writes
type DynamoDBLocker struct {
	client    DynamoDBAPI
	tableName string
	owner     string
	logger    *zap.Logger
	now       func() time.Time
}

// NewDynamoDBLocker creates a locker over tableName. owner identifies this
// process in lock records.
func NewDynamoDBLocker(client DynamoDBAPI, tableName, owner string, logger *zap.Logger) *DynamoDBLocker {
	return &DynamoDBLocker{
		client:    client,
		tableName: tableName,
		owner:     owner,
		logger:    logger,
		now:       time.Now,
	}
}

func lockKey(resource string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: "LOCK#" + resource},
		"SK": &types.AttributeValueMemberS{Value: "LOCK"},
	}
}

// Acquire takes the lock for resource or fails with a conflict error while
// another holder's lock is unexpired
func (l *DynamoDBLocker) Acquire(ctx context.Context, resource string, ttl time.Duration) (func(context.Context) error, error) {
	now := l.now()
	expiresAt := now.Add(ttl)
	record := lockRecord{
		PK:         "LOCK#" + resource,
		SK:         "LOCK",
		LockID:     uuid.NewString(),
		Owner:      l.owner,
		AcquiredAt: now.UTC().Format(time.RFC3339),
		ExpiresAt:  expiresAt.UnixMilli(),
		TTL:        expiresAt.Unix(),
	}

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lock: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK")).
		Or(expression.Name("ExpiresAt").LessThan(expression.Value(now.UnixMilli())))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build lock condition: %w", err)
	}

	_, err = l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(l.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var held *types.ConditionalCheckFailedException
		if errors.As(err, &held) {
			l.logger.Debug("Lock already held", zap.String("resource", resource))
			return nil, heldError(resource)
		}
		return nil, apperrors.NewDatabaseError("acquire lock", err)
	}

	l.logger.Debug("Lock acquired",
		zap.String("resource", resource),
		zap.String("lockID", record.LockID),
		zap.Duration("ttl", ttl),
	)

	return func(ctx context.Context) error {
		return l.release(ctx, resource, record.LockID)
	}, nil
}

func (l *DynamoDBLocker) release(ctx context.Context, resource, lockID string) error {
	cond := expression.Name("LockID").Equal(expression.Value(lockID))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build release condition: %w", err)
	}

	_, err = l.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(l.tableName),
		Key:                       lockKey(resource),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var gone *types.ConditionalCheckFailedException
		if errors.As(err, &gone) {
			// expired and taken over by another holder
			l.logger.Warn("Lock no longer owned", zap.String("resource", resource), zap.String("lockID", lockID))
			return nil
		}
		return apperrors.NewDatabaseError("release lock", err)
	}

	l.logger.Debug("Lock released", zap.String("resource", resource), zap.String("lockID", lockID))
	return nil
}
