package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"template-backend/application/ports"
	apperrors "template-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// DynamoDBAPI is the subset of the DynamoDB client the store uses
type DynamoDBAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// record is one preference row. PK is the namespace, SK the key.
type record struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Value     string `dynamodbav:"Value"`
	UpdatedAt string `dynamodbav:"UpdatedAt"`
}

// DynamoDBStore keeps preferences in a DynamoDB table, one partition per
// namespace
type DynamoDBStore struct {
	*values
	client    DynamoDBAPI
	tableName string
	namespace string
	logger    *zap.Logger
}

// NewDynamoDBStore loads every preference of namespace
func NewDynamoDBStore(ctx context.Context, client DynamoDBAPI, tableName, namespace string, logger *zap.Logger) (*DynamoDBStore, error) {
	s := &DynamoDBStore{
		values:    newValues(nil),
		client:    client,
		tableName: tableName,
		namespace: "PREFS#" + namespace,
		logger:    logger.Named("Preferences"),
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh reloads the namespace from the table
func (s *DynamoDBStore) Refresh(ctx context.Context) error {
	keyCond := expression.Key("PK").Equal(expression.Value(s.namespace))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return fmt.Errorf("failed to build preferences query: %w", err)
	}

	data := make(map[string]string)
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return s.wrap("query", err)
		}
		var records []record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return fmt.Errorf("failed to decode preferences: %w", err)
		}
		for _, r := range records {
			data[r.SK] = r.Value
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	s.replace(data)
	s.logger.Debug("Preferences loaded", zap.Int("count", len(data)))
	return nil
}

// Set stores value under key
func (s *DynamoDBStore) Set(ctx context.Context, key, value string) error {
	item, err := attributevalue.MarshalMap(record{
		PK:        s.namespace,
		SK:        key,
		Value:     value,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode preference: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return s.wrap("put", err)
	}

	s.replace(s.snapshotWith(key, &value))
	return nil
}

// Remove deletes key
func (s *DynamoDBStore) Remove(ctx context.Context, key string) error {
	k, err := attributevalue.MarshalMap(map[string]string{"PK": s.namespace, "SK": key})
	if err != nil {
		return fmt.Errorf("failed to encode preference key: %w", err)
	}

	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       k,
	}); err != nil {
		return s.wrap("delete", err)
	}

	s.replace(s.snapshotWith(key, nil))
	return nil
}

// Close is a no-op; the client is shared
func (s *DynamoDBStore) Close() error {
	return nil
}

func (s *DynamoDBStore) wrap(op string, err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		s.logger.Error("DynamoDB preferences call failed",
			zap.String("operation", op),
			zap.String("code", apiErr.ErrorCode()),
			zap.Error(err),
		)
		if apiErr.ErrorCode() == "ResourceNotFoundException" {
			return apperrors.NewNotFoundError("preferences table " + s.tableName).WithCause(err)
		}
	}
	return apperrors.NewDatabaseError("preferences "+op, err)
}

var _ ports.Preferences = (*DynamoDBStore)(nil)
