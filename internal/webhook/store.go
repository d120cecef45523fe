package webhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
)

// Store persists processed webhook events, keyed uniquely by dedupe_key.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore returns a Store bound to the webhook events table.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Insert writes the event if its dedupe key has never been seen.
// Returns (true, nil) when this call won the insert, (false, nil) when the
// key already exists (a redelivery), and (false, err) when the store could
// not be reached — the caller must answer the gateway with a retryable error
// in that case, never proceed without the dedup check.
func (s *Store) Insert(ctx context.Context, event Event) (bool, error) {
	if event.ProcessedAt.IsZero() {
		event.ProcessedAt = s.nowFunc().UTC()
	}

	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return false, fmt.Errorf("marshal webhook event: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(dedupe_key)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException" {
			return false, nil
		}
		return false, fmt.Errorf("put webhook event: %w", err)
	}
	return true, nil
}

// Get fetches a recorded event by dedupe key. Returns (nil, nil) if absent.
func (s *Store) Get(ctx context.Context, dedupeKey string) (*Event, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"dedupe_key": &types.AttributeValueMemberS{Value: dedupeKey},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get webhook event: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var ev Event
	if err := attributevalue.UnmarshalMap(out.Item, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal webhook event: %w", err)
	}
	return &ev, nil
}

func awsString(s string) *string { return &s }
