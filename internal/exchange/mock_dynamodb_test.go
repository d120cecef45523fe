package exchange

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo is an in-memory stand-in for the exchange requests table,
// implementing just the expressions the Store emits.
type mockDynamo struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue // order_id -> item

	failPut error
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{items: map[string]map[string]types.AttributeValue{}}
}

func strAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut != nil {
		return nil, m.failPut
	}
	pk := strAttr(params.Item["order_id"])
	if pk == "" {
		return nil, errors.New("missing order_id")
	}
	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(order_id)" {
		if _, exists := m.items[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	m.items[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := strAttr(params.Key["order_id"])
	item, ok := m.items[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pk := strAttr(params.Key["order_id"])
	item, ok := m.items[pk]
	if !ok {
		return nil, errors.New("item not found")
	}

	vals := params.ExpressionAttributeValues
	if params.ConditionExpression != nil && *params.ConditionExpression == "#s = :pending" {
		if strAttr(item["status"]) != strAttr(vals[":pending"]) {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	expr := *params.UpdateExpression
	if strings.Contains(expr, "#s = :decision") {
		item["status"] = vals[":decision"]
	}
	if strings.Contains(expr, "decision_at = :da") {
		item["decision_at"] = vals[":da"]
	}
	m.items[pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// only the request_id GSI is queried here
	want := strAttr(params.ExpressionAttributeValues[":rid"])
	for _, item := range m.items {
		if strAttr(item["request_id"]) == want {
			return &dyn.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
		}
	}
	return &dyn.QueryOutput{}, nil
}
