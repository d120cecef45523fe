package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/imrishuroy/go-checkout-reconciler/internal/aws"
)

// requestIndex lets admins address a request by its id instead of the order.
const requestIndex = "request_id-index"

// Store persists exchange requests in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates an exchange request Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create inserts a Pending request. The conditional put on order_id is the
// one-active-request-per-order invariant; a second insert for the same order
// fails with ErrDuplicateRequest instead of overwriting.
func (s *Store) Create(ctx context.Context, req *Request) error {
	req.Status = StatusPending
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.nowFunc().UTC()
	}

	item, err := attributevalue.MarshalMap(req)
	if err != nil {
		return fmt.Errorf("marshal exchange request: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("put exchange request: %w", err)
	}
	return nil
}

// GetByOrder fetches the request for an order. Returns (nil, nil) if absent.
func (s *Store) GetByOrder(ctx context.Context, orderID string) (*Request, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get exchange request: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var req Request
	if err := attributevalue.UnmarshalMap(out.Item, &req); err != nil {
		return nil, fmt.Errorf("unmarshal exchange request: %w", err)
	}
	return &req, nil
}

// GetByRequestID resolves a request id through the GSI. Returns (nil, nil)
// if absent.
func (s *Store) GetByRequestID(ctx context.Context, requestID string) (*Request, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(requestIndex),
		KeyConditionExpression: awsString("request_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: requestID},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query exchange request: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var req Request
	if err := attributevalue.UnmarshalMap(out.Items[0], &req); err != nil {
		return nil, fmt.Errorf("unmarshal exchange request: %w", err)
	}
	return &req, nil
}

// Decide moves a Pending request to its final decision exactly once,
// stamping decision_at. The CAS on status means a second decision — from any
// admin instance — fails with ErrAlreadyDecided.
func (s *Store) Decide(ctx context.Context, orderID, decision string) error {
	if decision != StatusAccepted && decision != StatusRejected {
		return fmt.Errorf("invalid decision %q", decision)
	}
	now := s.nowFunc().UTC()

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression: awsString("SET #s = :decision, decision_at = :da"),
		ExpressionAttributeNames: map[string]string{
			"#s": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":decision": &types.AttributeValueMemberS{Value: decision},
			":pending":  &types.AttributeValueMemberS{Value: StatusPending},
			":da":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ConditionExpression: awsString("#s = :pending"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrAlreadyDecided
		}
		return fmt.Errorf("decide exchange request: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(n int32) *int32    { return &n }
