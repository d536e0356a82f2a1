package store

import (
	"context"
	"fmt"
	"strconv"

	"findvax-notifier/internal/common/logger"
	"findvax-notifier/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// batchWriteLimit is DynamoDB's per-request item cap for BatchWriteItem.
const batchWriteLimit = 25

// maxUnprocessedPasses bounds how often throttled leftovers are resubmitted.
const maxUnprocessedPasses = 5

// DynamoAPI is the subset of the DynamoDB client the store needs.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoStore keeps subscriptions in a table keyed by (location, sms) with a
// secondary index on (location, isSent) for pending lookups.
type DynamoStore struct {
	client       DynamoAPI
	table        string
	pendingIndex string
	logger       logger.Logger
}

func NewDynamoStore(client DynamoAPI, table, pendingIndex string, log logger.Logger) *DynamoStore {
	return &DynamoStore{
		client:       client,
		table:        table,
		pendingIndex: pendingIndex,
		logger:       log.WithFields(map[string]interface{}{"component": "store", "backend": "dynamodb", "table": table}),
	}
}

func (s *DynamoStore) Put(ctx context.Context, sub models.Subscription) error {
	item, err := attributevalue.MarshalMap(sub)
	if err != nil {
		return fmt.Errorf("marshal subscription: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return err
	}

	s.logger.Info("added notification db item", map[string]interface{}{
		"location": sub.Location,
		"lang":     sub.Lang,
	})
	return nil
}

func (s *DynamoStore) QueryPending(ctx context.Context, locationID string) ([]models.Subscription, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(s.pendingIndex),
		ProjectionExpression:   aws.String("#loc, #st, sms, lang"),
		KeyConditionExpression: aws.String("#loc = :id and #st = :no"),
		ExpressionAttributeNames: map[string]string{
			"#loc": "location",
			"#st":  "isSent",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: locationID},
			":no": &types.AttributeValueMemberN{Value: strconv.Itoa(models.Pending)},
		},
	}

	var subs []models.Subscription
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []models.Subscription
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("unmarshal subscriptions: %w", err)
		}
		subs = append(subs, batch...)
	}
	return subs, nil
}

func (s *DynamoStore) DeletePending(ctx context.Context, locationID string) (int, error) {
	pending, err := s.QueryPending(ctx, locationID)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	requests := make([]types.WriteRequest, 0, len(pending))
	for _, sub := range pending {
		requests = append(requests, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"location": &types.AttributeValueMemberS{Value: sub.Location},
					"sms":      &types.AttributeValueMemberS{Value: sub.SMS},
				},
			},
		})
	}

	for start := 0; start < len(requests); start += batchWriteLimit {
		end := start + batchWriteLimit
		if end > len(requests) {
			end = len(requests)
		}
		if err := s.batchDelete(ctx, requests[start:end]); err != nil {
			return 0, err
		}
	}

	s.logger.Info("deleted pending notification items", map[string]interface{}{
		"location": locationID,
		"count":    len(requests),
	})
	return len(requests), nil
}

func (s *DynamoStore) batchDelete(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: requests}
	for pass := 0; pass < maxUnprocessedPasses; pass++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		if len(out.UnprocessedItems[s.table]) == 0 {
			return nil
		}
		pending = out.UnprocessedItems
	}
	return fmt.Errorf("%d delete requests left unprocessed", len(pending[s.table]))
}
