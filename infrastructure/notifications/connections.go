package notifications

import (
	"context"
	"fmt"
	"time"

	apperrors "template-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// UserIndex is the GSI keyed by GSI1PK=USER#<id>
const UserIndex = "user-index"

// ConnectionTTL bounds how long an idle connection record lives
const ConnectionTTL = 24 * time.Hour

// DynamoDBAPI is the subset of the DynamoDB client the connection store uses
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Connection is one open WebSocket client
type Connection struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	GSI1PK       string `dynamodbav:"GSI1PK"`
	GSI1SK       string `dynamodbav:"GSI1SK"`
	ConnectionID string `dynamodbav:"ConnectionID"`
	UserID       string `dynamodbav:"UserID"`
	ConnectedAt  string `dynamodbav:"ConnectedAt"`
	TTL          int64  `dynamodbav:"TTL"`
}

// NewConnection builds the record for connectionID owned by userID
func NewConnection(connectionID, userID string, now time.Time) Connection {
	return Connection{
		PK:           "CONNECTION#" + connectionID,
		SK:           "METADATA",
		GSI1PK:       "USER#" + userID,
		GSI1SK:       "CONNECTION#" + connectionID,
		ConnectionID: connectionID,
		UserID:       userID,
		ConnectedAt:  now.UTC().Format(time.RFC3339),
		TTL:          now.Add(ConnectionTTL).Unix(),
	}
}

// ConnectionStore tracks WebSocket connections in DynamoDB
type ConnectionStore struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewConnectionStore creates a store over tableName
func NewConnectionStore(client DynamoDBAPI, tableName string, logger *zap.Logger) *ConnectionStore {
	return &ConnectionStore{client: client, tableName: tableName, logger: logger}
}

// Save stores a connection
func (s *ConnectionStore) Save(ctx context.Context, conn Connection) error {
	item, err := attributevalue.MarshalMap(conn)
	if err != nil {
		return fmt.Errorf("failed to encode connection: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return apperrors.NewDatabaseError("store connection", err)
	}
	return nil
}

// Delete removes a connection
func (s *ConnectionStore) Delete(ctx context.Context, connectionID string) error {
	key, err := attributevalue.MarshalMap(map[string]string{
		"PK": "CONNECTION#" + connectionID,
		"SK": "METADATA",
	})
	if err != nil {
		return fmt.Errorf("failed to encode connection key: %w", err)
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key,
	}); err != nil {
		return apperrors.NewDatabaseError("delete connection", err)
	}
	return nil
}

// ForUser returns the connection ids of userID
func (s *ConnectionStore) ForUser(ctx context.Context, userID string) ([]string, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value("USER#" + userID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection query: %w", err)
	}

	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		IndexName:                 aws.String(UserIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewDatabaseError("query connections", err)
		}
		var conns []Connection
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &conns); err != nil {
			return nil, fmt.Errorf("failed to decode connections: %w", err)
		}
		for _, c := range conns {
			ids = append(ids, c.ConnectionID)
		}
	}
	return ids, nil
}

// All returns every connection id
func (s *ConnectionStore) All(ctx context.Context) ([]string, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.tableName),
	})

	var ids []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, apperrors.NewDatabaseError("scan connections", err)
		}
		var conns []Connection
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &conns); err != nil {
			return nil, fmt.Errorf("failed to decode connections: %w", err)
		}
		for _, c := range conns {
			if c.ConnectionID != "" {
				ids = append(ids, c.ConnectionID)
			}
		}
	}
	return ids, nil
}
