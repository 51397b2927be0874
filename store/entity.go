package store

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Managed attribute names shared by every table.
const (
	attrID        = "id"
	attrCreatedAt = "createdAt"
	attrUpdatedAt = "updatedAt"
	attrStatus    = "status"
	attrData      = "data"
)

// Entity is the universal record shape stored in every table.
type Entity struct {
	// ID is the globally unique identifier, assigned at creation.
	ID string

	// CreatedAt is the creation time in epoch seconds.
	CreatedAt int64

	// UpdatedAt is the last status-update time in epoch seconds.
	// Zero until the first status update.
	UpdatedAt int64

	// Status is the caller-supplied lifecycle status.
	Status string

	// Data is the free-form business attribute map, normalized on write.
	Data map[string]any

	// Attrs holds the scalar top-level attributes promoted out of Data for
	// secondary-index queries (e.g. "email", "customerId").
	Attrs map[string]any
}

// marshalEntity converts an Entity to a DynamoDB item. Top-level attributes
// go first so managed fields always win on name collisions.
func marshalEntity(ent *Entity) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(ent.Attrs)+5)

	for k, v := range ent.Attrs {
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, err
		}
		item[k] = av
	}

	dataAV, err := encodeValue(ent.Data)
	if err != nil {
		return nil, err
	}

	item[attrID] = &types.AttributeValueMemberS{Value: ent.ID}
	item[attrCreatedAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(ent.CreatedAt, 10)}
	item[attrStatus] = &types.AttributeValueMemberS{Value: ent.Status}
	item[attrData] = dataAV
	if ent.UpdatedAt != 0 {
		item[attrUpdatedAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(ent.UpdatedAt, 10)}
	}

	return item, nil
}

// unmarshalEntity converts a DynamoDB item to an Entity. Attributes that are
// not managed fields become top-level Attrs.
func unmarshalEntity(raw map[string]types.AttributeValue) *Entity {
	ent := &Entity{}

	for k, av := range raw {
		switch k {
		case attrID:
			if v, ok := av.(*types.AttributeValueMemberS); ok {
				ent.ID = v.Value
			}
		case attrCreatedAt:
			ent.CreatedAt = numberAttr(av)
		case attrUpdatedAt:
			ent.UpdatedAt = numberAttr(av)
		case attrStatus:
			if v, ok := av.(*types.AttributeValueMemberS); ok {
				ent.Status = v.Value
			}
		case attrData:
			if m, ok := decodeValue(av).(map[string]any); ok {
				ent.Data = m
			}
		default:
			if ent.Attrs == nil {
				ent.Attrs = make(map[string]any)
			}
			ent.Attrs[k] = decodeValue(av)
		}
	}

	if ent.Data == nil {
		ent.Data = map[string]any{}
	}
	return ent
}

// numberAttr parses an N attribute as int64, returning 0 on any mismatch.
func numberAttr(av types.AttributeValue) int64 {
	if v, ok := av.(*types.AttributeValueMemberN); ok {
		n, _ := strconv.ParseInt(v.Value, 10, 64)
		return n
	}
	return 0
}
