package orders

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

// intentIndex is the GSI that lets the webhook path find an order from the
// gateway intent id.
const intentIndex = "intent_id-index"

// ErrPaymentStateConflict indicates the payment-status compare-and-swap found
// a different current state. Callers re-read and decide: an order already in
// the target terminal state is a success no-op.
var ErrPaymentStateConflict = errors.New("payment state conflict")

// ErrStatusConflict indicates the fulfillment compare-and-swap lost a race;
// the caller saw a status that is no longer current.
var ErrStatusConflict = errors.New("order status conflict")

// Store persists orders in DynamoDB.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

// NewStore creates an orders Store.
func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   time.Now,
	}
}

// Create persists a new order. The conditional put guards against order-id
// collisions; ids are uuids, so a conflict means a caller bug.
func (s *Store) Create(ctx context.Context, order *Order) error {
	now := s.nowFunc().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now

	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName:           &s.tableName,
		Item:                item,
		ConditionExpression: awsString("attribute_not_exists(order_id)"),
	})
	if err != nil {
		return fmt.Errorf("put order: %w", err)
	}
	return nil
}

// Get fetches an order by id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, orderID string) (*Order, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// GetByIntentID finds the order created for a gateway intent. Returns
// (nil, nil) when no order references the intent, which the webhook path
// records as an ignored event.
func (s *Store) GetByIntentID(ctx context.Context, intentID string) (*Order, error) {
	out, err := s.client.Query(ctx, &dyn.QueryInput{
		TableName:              &s.tableName,
		IndexName:              awsString(intentIndex),
		KeyConditionExpression: awsString("intent_id = :iid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":iid": &types.AttributeValueMemberS{Value: intentID},
		},
		Limit: awsInt32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query by intent id: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, nil
	}
	var o Order
	if err := attributevalue.UnmarshalMap(out.Items[0], &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// MarkPaymentStatus transitions payment_status from expected to next,
// recording the gateway payment id when provided. The condition expression is
// what makes the verify path and the webhook path safe to race: the loser
// gets ErrPaymentStateConflict and re-reads.
func (s *Store) MarkPaymentStatus(ctx context.Context, orderID string, expected, next PaymentStatus, paymentID string) error {
	now := s.nowFunc().UTC()

	updateExpr := "SET payment_status = :next, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":next":     &types.AttributeValueMemberS{Value: string(next)},
		":expected": &types.AttributeValueMemberS{Value: string(expected)},
		":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if paymentID != "" {
		updateExpr += ", payment_id = :pid"
		values[":pid"] = &types.AttributeValueMemberS{Value: paymentID}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &updateExpr,
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("payment_status = :expected"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrPaymentStateConflict
		}
		return fmt.Errorf("update payment status: %w", err)
	}
	return nil
}

// UpdateFulfillment transitions order_status from `from` to `to`, validating
// the machine first and stamping delivered_at exactly when the order enters
// Delivered. The CAS on order_status rejects stale writes from racing admins.
func (s *Store) UpdateFulfillment(ctx context.Context, orderID string, from, to Status) error {
	if !CanTransition(from, to) {
		return &InvalidStatusTransitionError{From: from, To: to}
	}
	now := s.nowFunc().UTC()

	updateExpr := "SET order_status = :to, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: string(to)},
		":from": &types.AttributeValueMemberS{Value: string(from)},
		":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if to == StatusDelivered {
		updateExpr += ", delivered_at = :da"
		values[":da"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"order_id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:          &updateExpr,
		ExpressionAttributeValues: values,
		ConditionExpression:       awsString("order_status = :from"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrStatusConflict
		}
		return fmt.Errorf("update fulfillment status: %w", err)
	}
	return nil
}

func awsString(s string) *string { return &s }
func awsInt32(n int32) *int32    { return &n }
