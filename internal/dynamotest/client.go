// Package dynamotest provides an in-memory DynamoDB fake for unit tests.
//
// The fake supports the operation shapes the lattice store issues: point
// reads and writes keyed by "id" or "pk", conditional puts and updates,
// single-attribute key-condition queries, and paged scans. It is not a
// general DynamoDB emulator.
package dynamotest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Client is an in-memory stand-in for *dynamodb.Client.
type Client struct {
	// PageSize caps the number of items per Scan page. Zero means no cap.
	PageSize int

	mu     sync.Mutex
	tables map[string]map[string]map[string]types.AttributeValue
}

// New creates an empty Client.
func New() *Client {
	return &Client{
		tables: make(map[string]map[string]map[string]types.AttributeValue),
	}
}

// Seed plants a raw item directly, bypassing any conditions.
func (c *Client) Seed(table string, item map[string]types.AttributeValue) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.table(table)[itemKey(item)] = copyItem(item)
}

// Len reports how many items a table holds.
func (c *Client) Len(table string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tables[table])
}

func (c *Client) table(name string) map[string]map[string]types.AttributeValue {
	t, ok := c.tables[name]
	if !ok {
		t = make(map[string]map[string]types.AttributeValue)
		c.tables[name] = t
	}
	return t
}

// itemKey returns the item's key value, trying "id" then "pk".
func itemKey(item map[string]types.AttributeValue) string {
	for _, attr := range []string{"id", "pk"} {
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
			return v.Value
		}
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

// sortedKeys returns a table's item keys in deterministic order.
func sortedKeys(t map[string]map[string]types.AttributeValue) []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetItem implements the DynamoDB GetItem call.
func (c *Client) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.table(*params.TableName)[itemKey(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

// PutItem implements the DynamoDB PutItem call, honoring
// attribute_not_exists conditions.
func (c *Client) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.table(*params.TableName)
	key := itemKey(params.Item)

	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_not_exists") {
		if _, exists := t[key]; exists {
			return nil, &types.ConditionalCheckFailedException{}
		}
	}

	t[key] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

// DeleteItem implements the DynamoDB DeleteItem call.
func (c *Client) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.table(*params.TableName), itemKey(params.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

// UpdateItem implements the DynamoDB UpdateItem call for simple SET
// expressions, honoring attribute_exists conditions.
func (c *Client) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.table(*params.TableName)
	item, exists := t[itemKey(params.Key)]

	if params.ConditionExpression != nil && strings.HasPrefix(*params.ConditionExpression, "attribute_exists") && !exists {
		return nil, &types.ConditionalCheckFailedException{}
	}
	if !exists {
		item = copyItem(params.Key)
		t[itemKey(params.Key)] = item
	}

	expr := strings.TrimPrefix(*params.UpdateExpression, "SET ")
	for _, clause := range strings.Split(expr, ", ") {
		parts := strings.Split(clause, " = ")
		if len(parts) != 2 {
			continue
		}
		attr := parts[0]
		if real, ok := params.ExpressionAttributeNames[attr]; ok {
			attr = real
		}
		if value, ok := params.ExpressionAttributeValues[parts[1]]; ok {
			item[attr] = value
		}
	}

	return &dynamodb.UpdateItemOutput{}, nil
}

// Query implements the DynamoDB Query call for "#key = :value" key
// conditions, ignoring the index name (every attribute is queryable here).
func (c *Client) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	parts := strings.Split(*params.KeyConditionExpression, " = ")
	attr := parts[0]
	if real, ok := params.ExpressionAttributeNames[attr]; ok {
		attr = real
	}
	want, _ := params.ExpressionAttributeValues[parts[1]].(*types.AttributeValueMemberS)

	t := c.table(*params.TableName)
	var items []map[string]types.AttributeValue
	for _, key := range sortedKeys(t) {
		item := t[key]
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok && want != nil && v.Value == want.Value {
			items = append(items, copyItem(item))
		}
	}

	return &dynamodb.QueryOutput{Items: items}, nil
}

// Scan implements the DynamoDB Scan call with deterministic paging.
func (c *Client) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.table(*params.TableName)
	keys := sortedKeys(t)

	start := 0
	if params.ExclusiveStartKey != nil {
		after := itemKey(params.ExclusiveStartKey)
		for i, k := range keys {
			if k == after {
				start = i + 1
				break
			}
		}
	}

	end := len(keys)
	if c.PageSize > 0 && start+c.PageSize < end {
		end = start + c.PageSize
	}

	out := &dynamodb.ScanOutput{}
	for _, k := range keys[start:end] {
		out.Items = append(out.Items, copyItem(t[k]))
	}
	if end < len(keys) && end > start {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: keys[end-1]},
		}
	}
	return out, nil
}
