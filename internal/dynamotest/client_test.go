package dynamotest

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func TestScan_Paging(t *testing.T) {
	c := New()
	c.PageSize = 2
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		c.Seed("t", item(id))
	}

	ctx := context.Background()
	var seen []string
	input := &dynamodb.ScanInput{TableName: aws.String("t")}
	for {
		out, err := c.Scan(ctx, input)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, it := range out.Items {
			seen = append(seen, it["id"].(*types.AttributeValueMemberS).Value)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if len(seen) != 5 {
		t.Errorf("expected 5 items across pages, got %d: %v", len(seen), seen)
	}
}

func TestPutItem_ConditionalCreate(t *testing.T) {
	c := New()
	ctx := context.Background()

	put := &dynamodb.PutItemInput{
		TableName:           aws.String("t"),
		Item:                item("a"),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	}

	if _, err := c.PutItem(ctx, put); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := c.PutItem(ctx, put)
	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		t.Errorf("expected conditional check failure, got %v", err)
	}
}

func TestUpdateItem_ConditionRequiresExistence(t *testing.T) {
	c := New()
	ctx := context.Background()

	_, err := c.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String("t"),
		Key:                 item("missing"),
		UpdateExpression:    aws.String("SET #status = :status"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: "OPEN"},
		},
	})

	var condErr *types.ConditionalCheckFailedException
	if !errors.As(err, &condErr) {
		t.Errorf("expected conditional check failure, got %v", err)
	}
}
