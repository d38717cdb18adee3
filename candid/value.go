package candid

import (
	"fmt"

	"xdao.co/glacier/principal"
)

// Value is a typed candid value ready for encoding.
type Value interface {
	// Type returns the candid type this value encodes at.
	Type() Type
}

// BoolValue encodes `bool`.
type BoolValue bool

func (BoolValue) Type() Type { return Bool }

// Nat8Value encodes `nat8`.
type Nat8Value uint8

func (Nat8Value) Type() Type { return Nat8 }

// Nat32Value encodes `nat32`.
type Nat32Value uint32

func (Nat32Value) Type() Type { return Nat32 }

// Nat64Value encodes `nat64`.
type Nat64Value uint64

func (Nat64Value) Type() Type { return Nat64 }

// TextValue encodes `text`.
type TextValue string

func (TextValue) Type() Type { return Text }

// BlobValue encodes `vec nat8`.
type BlobValue []byte

func (BlobValue) Type() Type { return VecType{Elem: Nat8} }

// NullValue encodes `null`, the payload of bare variant alternatives.
type NullValue struct{}

func (NullValue) Type() Type { return Null }

// PrincipalValue encodes a principal reference.
type PrincipalValue principal.Principal

func (PrincipalValue) Type() Type { return PrincipalType }

// OptValue encodes `opt Elem`; a nil Value is the absent case. The element
// type must be carried explicitly so absence still has a definite type.
type OptValue struct {
	Elem  Type
	Value Value
}

func (v OptValue) Type() Type { return OptType{Elem: v.Elem} }

// Some wraps a present optional.
func Some(v Value) OptValue {
	return OptValue{Elem: v.Type(), Value: v}
}

// None is an absent optional of the given element type.
func None(elem Type) OptValue {
	return OptValue{Elem: elem}
}

// VecValue encodes `vec Elem`.
type VecValue struct {
	Elem   Type
	Values []Value
}

func (v VecValue) Type() Type { return VecType{Elem: v.Elem} }

// FieldValue is a named record member.
type FieldValue struct {
	Name  string
	Value Value
}

// RecordValue encodes `record { ... }`. Construction order of Fields is
// irrelevant; the wire order is fixed by field hashes.
type RecordValue struct {
	Fields []FieldValue
}

func (v RecordValue) Type() Type {
	fields := make([]Field, len(v.Fields))
	for i, f := range v.Fields {
		fields[i] = Field{Name: f.Name, Type: f.Value.Type()}
	}
	return RecordType{Fields: fields}
}

// VariantValue encodes one alternative of a variant. Alternatives lists the
// full closed set the remote interface declares; Tag selects one of them.
type VariantValue struct {
	Alternatives []Field
	Tag          string
	Value        Value
}

func (v VariantValue) Type() Type { return VariantType{Alternatives: v.Alternatives} }

func (v VariantValue) alternativeIndex() (int, error) {
	sorted := sortedFields(v.Alternatives)
	for i, alt := range sorted {
		if alt.Name == v.Tag {
			return i, nil
		}
	}
	return 0, fmt.Errorf("candid: variant tag %q not among declared alternatives", v.Tag)
}
