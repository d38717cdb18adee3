// Package candid implements the subset of the candid binary format the NNS
// ledger and governance call arguments need: fixed-width nats, text, blobs,
// options, vectors, records, variants, and principals.
//
// The wire layout ("DIDL", LEB128 type table, values) is fixed by the candid
// specification; the canisters on the other end decode these bytes, so the
// encoding must be exact. Record and variant fields are identified by the
// candid field-name hash and are always emitted in ascending hash order.
package candid

import "sort"

// Primitive type opcodes (negative SLEB128 values per the candid spec).
const (
	opcodeNull      = -1
	opcodeBool      = -2
	opcodeNat8      = -5
	opcodeNat32     = -7
	opcodeNat64     = -8
	opcodeText      = -15
	opcodeOpt       = -18
	opcodeVec       = -19
	opcodeRecord    = -20
	opcodeVariant   = -21
	opcodePrincipal = -24
)

// FieldHash is the candid field-name hash: h = h*223 + byte, mod 2^32.
func FieldHash(name string) uint32 {
	var h uint32
	for i := 0; i < len(name); i++ {
		h = h*223 + uint32(name[i])
	}
	return h
}

// Type describes a candid type. Composite types reference their components
// structurally; the encoder lays them out into a type table.
type Type interface {
	isType()
}

type primType struct {
	opcode int64
}

func (primType) isType() {}

// Null, fixed-width nats, and text are the primitive types in use.
var (
	Null  Type = primType{opcodeNull}
	Bool  Type = primType{opcodeBool}
	Nat8  Type = primType{opcodeNat8}
	Nat32 Type = primType{opcodeNat32}
	Nat64 Type = primType{opcodeNat64}
	Text  Type = primType{opcodeText}
)

// PrincipalType is the candid principal reference type.
var PrincipalType Type = primType{opcodePrincipal}

// OptType is `opt Elem`.
type OptType struct {
	Elem Type
}

func (OptType) isType() {}

// VecType is `vec Elem`. `vec nat8` doubles as blob.
type VecType struct {
	Elem Type
}

func (VecType) isType() {}

// Field is a named record or variant member.
type Field struct {
	Name string
	Type Type
}

// RecordType is `record { ... }`.
type RecordType struct {
	Fields []Field
}

func (RecordType) isType() {}

// VariantType is `variant { ... }`. Encoding a variant value requires the full
// alternative set, so the type carries it.
type VariantType struct {
	Alternatives []Field
}

func (VariantType) isType() {}

// sortedFields returns fields ordered by ascending field hash, the order both
// the type table and record values use on the wire.
func sortedFields(fields []Field) []Field {
	out := append([]Field(nil), fields...)
	sort.Slice(out, func(i, j int) bool {
		return FieldHash(out[i].Name) < FieldHash(out[j].Name)
	})
	return out
}
