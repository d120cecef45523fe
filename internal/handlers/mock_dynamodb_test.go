package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"

	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// mockDynamo backs every table the routes touch, so handlers can be driven
// through the router end to end. table -> pk -> item.
type mockDynamo struct {
	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

func newMockDynamo() *mockDynamo {
	return &mockDynamo{tables: map[string]map[string]map[string]types.AttributeValue{}}
}

func (m *mockDynamo) table(name string) map[string]map[string]types.AttributeValue {
	if _, ok := m.tables[name]; !ok {
		m.tables[name] = map[string]map[string]types.AttributeValue{}
	}
	return m.tables[name]
}

func strAttr(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func pkOf(item map[string]types.AttributeValue) (string, error) {
	for _, key := range []string{"dedupe_key", "order_id", "product_id"} {
		if v, ok := item[key]; ok {
			return strAttr(v), nil
		}
	}
	return "", errors.New("no primary key in item")
}

func (m *mockDynamo) PutItem(ctx context.Context, params *dyn.PutItemInput, optFns ...func(*dyn.Options)) (*dyn.PutItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(*params.TableName)
	pk, err := pkOf(params.Item)
	if err != nil {
		return nil, err
	}
	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := tbl[pk]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}
	tbl[pk] = params.Item
	return &dyn.PutItemOutput{}, nil
}

func (m *mockDynamo) GetItem(ctx context.Context, params *dyn.GetItemInput, optFns ...func(*dyn.Options)) (*dyn.GetItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(*params.TableName)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[pk]
	if !ok {
		return &dyn.GetItemOutput{}, nil
	}
	return &dyn.GetItemOutput{Item: item}, nil
}

func (m *mockDynamo) UpdateItem(ctx context.Context, params *dyn.UpdateItemInput, optFns ...func(*dyn.Options)) (*dyn.UpdateItemOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(*params.TableName)
	pk, err := pkOf(params.Key)
	if err != nil {
		return nil, err
	}
	item, ok := tbl[pk]
	if !ok {
		return nil, errors.New("item not found")
	}

	vals := params.ExpressionAttributeValues
	if params.ConditionExpression != nil {
		switch *params.ConditionExpression {
		case "payment_status = :expected":
			if strAttr(item["payment_status"]) != strAttr(vals[":expected"]) {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "order_status = :from":
			if strAttr(item["order_status"]) != strAttr(vals[":from"]) {
				return nil, &types.ConditionalCheckFailedException{}
			}
		case "#s = :pending":
			if strAttr(item["status"]) != strAttr(vals[":pending"]) {
				return nil, &types.ConditionalCheckFailedException{}
			}
		}
	}

	expr := *params.UpdateExpression
	if strings.Contains(expr, "payment_status = :next") {
		item["payment_status"] = vals[":next"]
	}
	if strings.Contains(expr, "payment_id = :pid") {
		item["payment_id"] = vals[":pid"]
	}
	if strings.Contains(expr, "order_status = :to") {
		item["order_status"] = vals[":to"]
	}
	if strings.Contains(expr, "delivered_at = :da") && strings.Contains(expr, "order_status") {
		item["delivered_at"] = vals[":da"]
	}
	if strings.Contains(expr, "#s = :decision") {
		item["status"] = vals[":decision"]
	}
	if strings.Contains(expr, "decision_at = :da") {
		item["decision_at"] = vals[":da"]
	}
	if v, ok := vals[":ua"]; ok {
		item["updated_at"] = v
	}
	tbl[pk] = item
	return &dyn.UpdateItemOutput{Attributes: item}, nil
}

func (m *mockDynamo) Query(ctx context.Context, params *dyn.QueryInput, optFns ...func(*dyn.Options)) (*dyn.QueryOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tbl := m.table(*params.TableName)
	vals := params.ExpressionAttributeValues
	attr, want := "", ""
	if v, ok := vals[":iid"]; ok {
		attr, want = "intent_id", strAttr(v)
	}
	if v, ok := vals[":rid"]; ok {
		attr, want = "request_id", strAttr(v)
	}
	for _, item := range tbl {
		if attr != "" && strAttr(item[attr]) == want {
			return &dyn.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
		}
	}
	return &dyn.QueryOutput{}, nil
}
