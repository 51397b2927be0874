package store

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/jacentio/lattice/internal/synthkey"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
// *dynamodb.Client satisfies it.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store provides generic entity operations over one vertical's tables.
type Store struct {
	client   DynamoAPI
	resolver *Resolver
	config   Config
}

// New creates a new Store bound to a vertical's resolver.
func New(client DynamoAPI, resolver *Resolver, config Config) *Store {
	config.validate()
	return &Store{
		client:   client,
		resolver: resolver,
		config:   config,
	}
}

// Resolver returns the domain resolver the store is bound to.
func (s *Store) Resolver() *Resolver {
	return s.resolver
}

// Config returns the store's configuration.
func (s *Store) Config() Config {
	return s.config
}

// keyOf builds the primary key for an entity id.
func keyOf(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrID: &types.AttributeValueMemberS{Value: id},
	}
}

// Create stores a new entity. It generates the id, timestamps the record,
// normalizes data, and merges the given top-level attributes. An empty status
// falls back to the configured default. Ids are always fresh, so Create never
// fails on duplicate content.
func (s *Store) Create(ctx context.Context, domain string, data map[string]any, status string, attrs map[string]any) (*Entity, error) {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return nil, err
	}

	if status == "" {
		status = s.config.DefaultStatus
	}

	ent := &Entity{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().Unix(),
		Status:    status,
		Data:      normalizeData(data),
		Attrs:     attrs,
	}

	item, err := marshalEntity(ent)
	if err != nil {
		return nil, err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return nil, err
	}
	return ent, nil
}

// Get retrieves an entity by id, returning ErrNotFound if missing.
func (s *Store) Get(ctx context.Context, domain, id string) (*Entity, error) {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return nil, err
	}

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       keyOf(id),
	})
	if err != nil {
		return nil, err
	}
	if result.Item == nil {
		return nil, ErrNotFound
	}
	return unmarshalEntity(result.Item), nil
}

// List returns one page of a domain's entities sorted by CreatedAt
// descending, most recent first. Ties break arbitrarily.
func (s *Store) List(ctx context.Context, domain string) ([]*Entity, error) {
	entities, _, err := s.ListPage(ctx, domain, "")
	return entities, err
}

// ListPage is List with an explicit continuation token. An empty token starts
// from the beginning; an empty next token means the table is exhausted. The
// sort applies within the page only.
func (s *Store) ListPage(ctx context.Context, domain, cursor string) ([]*Entity, string, error) {
	entities, next, err := s.ScanPage(ctx, domain, cursor)
	if err != nil {
		return nil, "", err
	}
	sort.Slice(entities, func(i, j int) bool {
		return entities[i].CreatedAt > entities[j].CreatedAt
	})
	return entities, next, nil
}

// Scan returns one page of a domain's entities in store order. Callers that
// filter client-side use this instead of List to skip the sort.
func (s *Store) Scan(ctx context.Context, domain string) ([]*Entity, error) {
	entities, _, err := s.ScanPage(ctx, domain, "")
	return entities, err
}

// ScanPage is Scan with an explicit continuation token.
func (s *Store) ScanPage(ctx context.Context, domain, cursor string) ([]*Entity, string, error) {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return nil, "", err
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(table),
	}
	if cursor != "" {
		input.ExclusiveStartKey = keyOf(cursor)
	}

	result, err := s.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}

	entities := make([]*Entity, 0, len(result.Items))
	for _, raw := range result.Items {
		entities = append(entities, unmarshalEntity(raw))
	}

	next := ""
	if v, ok := result.LastEvaluatedKey[attrID].(*types.AttributeValueMemberS); ok {
		next = v.Value
	}
	return entities, next, nil
}

// UpdateStatus sets an entity's status and updatedAt timestamp. It is
// idempotent for repeated calls with the same status and returns ErrNotFound
// when the entity doesn't exist.
func (s *Store) UpdateStatus(ctx context.Context, domain, id, status string) error {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return err
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(table),
		Key:                 keyOf(id),
		UpdateExpression:    aws.String("SET #status = :status, #updatedAt = :now"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id":        attrID,
			"#status":    attrStatus,
			"#updatedAt": attrUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: status},
			":now":    &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().Unix(), 10)},
		},
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrNotFound
	}
	return err
}

// Delete removes an entity. Deleting a nonexistent id is not an error.
func (s *Store) Delete(ctx context.Context, domain, id string) error {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return err
	}

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       keyOf(id),
	})
	return err
}

// DeleteAll removes every entity in a domain and returns the count observed
// at read time. The sweep is not atomic with respect to concurrent writers:
// items created while it runs may or may not be included.
func (s *Store) DeleteAll(ctx context.Context, domain string) (int, error) {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return 0, err
	}

	count := 0
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName:                aws.String(table),
		ProjectionExpression:     aws.String("#id"),
		ExpressionAttributeNames: map[string]string{"#id": attrID},
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return count, err
		}
		for _, item := range page.Items {
			v, ok := item[attrID].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}
			if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName: aws.String(table),
				Key:       keyOf(v.Value),
			}); err != nil {
				return count, err
			}
			count++
		}
	}

	return count, nil
}

// QueryByEmail returns entities whose top-level email attribute equals the
// given value. Index order is not creation order.
func (s *Store) QueryByEmail(ctx context.Context, domain, email string) ([]*Entity, error) {
	return s.queryIndex(ctx, domain, s.config.EmailIndex, "email", email)
}

// QueryByOwnerID returns entities whose top-level owner attribute equals the
// given owner id.
func (s *Store) QueryByOwnerID(ctx context.Context, domain, ownerID string) ([]*Entity, error) {
	return s.queryIndex(ctx, domain, s.config.OwnerIndex, s.config.OwnerAttr, ownerID)
}

func (s *Store) queryIndex(ctx context.Context, domain, index, attr, value string) ([]*Entity, error) {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(table),
		IndexName:                aws.String(index),
		KeyConditionExpression:   aws.String("#key = :value"),
		ExpressionAttributeNames: map[string]string{"#key": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}

	entities := make([]*Entity, 0, len(result.Items))
	for _, raw := range result.Items {
		entities = append(entities, unmarshalEntity(raw))
	}
	return entities, nil
}

// ReserveEmail conditionally claims an email for an owner domain. The claim
// is a write-if-absent on a synthetic key derived from the table and email,
// so exactly one concurrent caller wins; the rest get ErrEmailClaimed and
// should re-read by email. The default upsert path does not use this - it is
// an opt-in for callers that need true uniqueness.
func (s *Store) ReserveEmail(ctx context.Context, domain, email string) error {
	table, err := s.resolver.Resolve(domain)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.ClaimTable),
		Item: map[string]types.AttributeValue{
			"pk":        &types.AttributeValueMemberS{Value: synthkey.EmailPK(table, email)},
			"tableName": &types.AttributeValueMemberS{Value: table},
			"email":     &types.AttributeValueMemberS{Value: email},
		},
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})

	var condErr *types.ConditionalCheckFailedException
	if errors.As(err, &condErr) {
		return ErrEmailClaimed
	}
	return err
}

// ReleaseEmail removes an email claim. The table argument is the physical
// table name, as seen by stream records; releasing an absent claim is not an
// error.
func (s *Store) ReleaseEmail(ctx context.Context, table, email string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.config.ClaimTable),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: synthkey.EmailPK(table, email)},
		},
	})
	return err
}
