package store

import (
	"reflect"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// --- encodeValue / decodeValue Tests ---

func TestEncodeValue_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		expected types.AttributeValue
	}{
		{"nil", nil, &types.AttributeValueMemberNULL{Value: true}},
		{"bool", true, &types.AttributeValueMemberBOOL{Value: true}},
		{"string", "x", &types.AttributeValueMemberS{Value: "x"}},
		{"decimal", Decimal("1.5"), &types.AttributeValueMemberN{Value: "1.5"}},
		{"int", 7, &types.AttributeValueMemberN{Value: "7"}},
		{"int64", int64(-9), &types.AttributeValueMemberN{Value: "-9"}},
		{"uint64", uint64(3), &types.AttributeValueMemberN{Value: "3"}},
		{"float64", 2.25, &types.AttributeValueMemberN{Value: "2.25"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			av, err := encodeValue(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(av, tt.expected) {
				t.Errorf("expected %#v, got %#v", tt.expected, av)
			}
		})
	}
}

func TestEncodeValue_UnsupportedType(t *testing.T) {
	_, err := encodeValue(struct{}{})
	if err == nil {
		t.Fatal("expected error for unsupported type")
	}
}

func TestDecodeValue_RoundTrip(t *testing.T) {
	in := map[string]any{
		"title":   "T",
		"active":  true,
		"count":   int64(3),
		"rate":    Decimal("0.5"),
		"nothing": nil,
		"nested":  map[string]any{"deep": []any{int64(1), "two"}},
	}

	av, err := encodeValue(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := decodeValue(av)

	if !reflect.DeepEqual(out, in) {
		t.Errorf("round trip mismatch:\n in: %#v\nout: %#v", in, out)
	}
}

func TestDecodeValue_NumberForms(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected any
	}{
		{"integral", "42", int64(42)},
		{"negative integral", "-7", int64(-7)},
		{"fractional", "1.5", Decimal("1.5")},
		{"huge", "98765432109876543210", Decimal("98765432109876543210")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := decodeValue(&types.AttributeValueMemberN{Value: tt.value})
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %#v, got %#v", tt.expected, result)
			}
		})
	}
}

func TestDecodeValue_Sets(t *testing.T) {
	ss := decodeValue(&types.AttributeValueMemberSS{Value: []string{"a", "b"}})
	if !reflect.DeepEqual(ss, []any{"a", "b"}) {
		t.Errorf("expected string set as []any, got %#v", ss)
	}

	ns := decodeValue(&types.AttributeValueMemberNS{Value: []string{"1", "2.5"}})
	if !reflect.DeepEqual(ns, []any{int64(1), Decimal("2.5")}) {
		t.Errorf("expected number set as []any, got %#v", ns)
	}
}

// --- Entity Marshal Tests ---

func TestMarshalEntity_ManagedFieldsWin(t *testing.T) {
	ent := &Entity{
		ID:        "e-1",
		CreatedAt: 1700000000,
		Status:    "OPEN",
		Data:      map[string]any{"title": "T"},
		Attrs: map[string]any{
			"email": "a@x.com",
			"id":    "spoofed", // collides with a managed field
		},
	}

	item, err := marshalEntity(ent)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v := item["id"].(*types.AttributeValueMemberS).Value; v != "e-1" {
		t.Errorf("expected managed id 'e-1' to win, got %q", v)
	}
	if v := item["createdAt"].(*types.AttributeValueMemberN).Value; v != "1700000000" {
		t.Errorf("expected createdAt '1700000000', got %q", v)
	}
	if v := item["email"].(*types.AttributeValueMemberS).Value; v != "a@x.com" {
		t.Errorf("expected email 'a@x.com', got %q", v)
	}
	if _, ok := item["updatedAt"]; ok {
		t.Error("expected no updatedAt before first status update")
	}
}

func TestUnmarshalEntity_Full(t *testing.T) {
	raw := map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: "e-2"},
		"createdAt":  &types.AttributeValueMemberN{Value: "1700000001"},
		"updatedAt":  &types.AttributeValueMemberN{Value: "1700000002"},
		"status":     &types.AttributeValueMemberS{Value: "ACTIVE"},
		"data":       &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{"name": &types.AttributeValueMemberS{Value: "A"}}},
		"email":      &types.AttributeValueMemberS{Value: "a@x.com"},
		"customerId": &types.AttributeValueMemberS{Value: "c-1"},
	}

	ent := unmarshalEntity(raw)

	if ent.ID != "e-2" {
		t.Errorf("expected ID 'e-2', got %q", ent.ID)
	}
	if ent.CreatedAt != 1700000001 {
		t.Errorf("expected CreatedAt 1700000001, got %d", ent.CreatedAt)
	}
	if ent.UpdatedAt != 1700000002 {
		t.Errorf("expected UpdatedAt 1700000002, got %d", ent.UpdatedAt)
	}
	if ent.Status != "ACTIVE" {
		t.Errorf("expected Status 'ACTIVE', got %q", ent.Status)
	}
	if ent.Data["name"] != "A" {
		t.Errorf("expected data name 'A', got %#v", ent.Data["name"])
	}
	if ent.Attrs["email"] != "a@x.com" || ent.Attrs["customerId"] != "c-1" {
		t.Errorf("expected promoted attrs, got %#v", ent.Attrs)
	}
}

func TestUnmarshalEntity_Minimal(t *testing.T) {
	ent := unmarshalEntity(map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: "e-3"},
	})

	if ent.UpdatedAt != 0 {
		t.Errorf("expected zero UpdatedAt, got %d", ent.UpdatedAt)
	}
	if ent.Data == nil {
		t.Error("expected non-nil Data map")
	}
	if ent.Attrs != nil {
		t.Errorf("expected nil Attrs, got %#v", ent.Attrs)
	}
}

func TestNumberAttr_WrongType(t *testing.T) {
	if n := numberAttr(&types.AttributeValueMemberS{Value: "12"}); n != 0 {
		t.Errorf("expected 0 for non-number attribute, got %d", n)
	}
}
