package store

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Decimal is a fixed-point decimal number, stored as a DynamoDB number.
// Normalize produces Decimal values for every floating-point scalar so that
// stored numbers keep an exact textual representation.
type Decimal string

// MarshalDynamoDBAttributeValue implements attributevalue.Marshaler.
func (d Decimal) MarshalDynamoDBAttributeValue() (types.AttributeValue, error) {
	return &types.AttributeValueMemberN{Value: string(d)}, nil
}

// Normalize recursively converts floating-point values to Decimal using their
// shortest exact fixed-point rendering. Integers, strings, booleans, and nil
// pass through unchanged. Maps and slices are copied, never mutated.
func Normalize(v any) any {
	switch x := v.(type) {
	case float64:
		return Decimal(strconv.FormatFloat(x, 'f', -1, 64))
	case float32:
		return Decimal(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

// normalizeData applies Normalize to a data map, never returning nil.
func normalizeData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return Normalize(data).(map[string]any)
}

// encodeValue converts a normalized Go value to a DynamoDB attribute value.
// The data map goes through this codec rather than attributevalue so numbers
// keep the exact form Normalize gave them.
func encodeValue(v any) (types.AttributeValue, error) {
	switch x := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: x}, nil
	case string:
		return &types.AttributeValueMemberS{Value: x}, nil
	case Decimal:
		return &types.AttributeValueMemberN{Value: string(x)}, nil
	case int:
		return &types.AttributeValueMemberN{Value: strconv.Itoa(x)}, nil
	case int32:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(int64(x), 10)}, nil
	case int64:
		return &types.AttributeValueMemberN{Value: strconv.FormatInt(x, 10)}, nil
	case uint:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(uint64(x), 10)}, nil
	case uint64:
		return &types.AttributeValueMemberN{Value: strconv.FormatUint(x, 10)}, nil
	case float64:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(x, 'f', -1, 64)}, nil
	case float32:
		return &types.AttributeValueMemberN{Value: strconv.FormatFloat(float64(x), 'f', -1, 32)}, nil
	case map[string]any:
		m := make(map[string]types.AttributeValue, len(x))
		for k, val := range x {
			av, err := encodeValue(val)
			if err != nil {
				return nil, err
			}
			m[k] = av
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	case []any:
		l := make([]types.AttributeValue, len(x))
		for i, val := range x {
			av, err := encodeValue(val)
			if err != nil {
				return nil, err
			}
			l[i] = av
		}
		return &types.AttributeValueMemberL{Value: l}, nil
	default:
		return nil, fmt.Errorf("lattice: unsupported attribute type %T", v)
	}
}

// decodeValue converts a DynamoDB attribute value back to a Go value.
// Numbers decode to int64 when integral and Decimal otherwise, matching what
// Normalize produces on the write path.
func decodeValue(av types.AttributeValue) any {
	switch x := av.(type) {
	case *types.AttributeValueMemberNULL:
		return nil
	case *types.AttributeValueMemberBOOL:
		return x.Value
	case *types.AttributeValueMemberS:
		return x.Value
	case *types.AttributeValueMemberN:
		if i, err := strconv.ParseInt(x.Value, 10, 64); err == nil {
			return i
		}
		return Decimal(x.Value)
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(x.Value))
		for k, val := range x.Value {
			m[k] = decodeValue(val)
		}
		return m
	case *types.AttributeValueMemberL:
		l := make([]any, len(x.Value))
		for i, val := range x.Value {
			l[i] = decodeValue(val)
		}
		return l
	case *types.AttributeValueMemberSS:
		l := make([]any, len(x.Value))
		for i, s := range x.Value {
			l[i] = s
		}
		return l
	case *types.AttributeValueMemberNS:
		l := make([]any, len(x.Value))
		for i, n := range x.Value {
			l[i] = decodeValue(&types.AttributeValueMemberN{Value: n})
		}
		return l
	default:
		return nil
	}
}
