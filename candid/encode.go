package candid

import (
	"encoding/binary"
	"fmt"

	"xdao.co/glacier/principal"
)

// Encode serializes an argument sequence to candid bytes: the "DIDL" magic,
// the type table, the argument type references, and the argument values.
func Encode(args ...Value) ([]byte, error) {
	table := newTypeTable()
	refs := make([]int64, len(args))
	for i, arg := range args {
		ref, err := table.add(arg.Type())
		if err != nil {
			return nil, err
		}
		refs[i] = ref
	}

	out := []byte("DIDL")
	out = appendULEB128(out, uint64(len(table.entries)))
	for _, entry := range table.entries {
		out = append(out, entry...)
	}
	out = appendULEB128(out, uint64(len(args)))
	for _, ref := range refs {
		out = appendSLEB128(out, ref)
	}
	for _, arg := range args {
		var err error
		out, err = appendValue(out, arg)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// typeTable lays composite types out into indexed entries. Structurally equal
// types share an entry, which keeps the output deterministic regardless of
// how the caller assembled the value tree.
type typeTable struct {
	entries [][]byte
	indexOf map[string]int64
}

func newTypeTable() *typeTable {
	return &typeTable{indexOf: make(map[string]int64)}
}

// add returns the type reference for t: the negative opcode for primitives,
// or a non-negative table index for composites.
func (tt *typeTable) add(t Type) (int64, error) {
	switch t := t.(type) {
	case primType:
		return t.opcode, nil

	case OptType:
		inner, err := tt.add(t.Elem)
		if err != nil {
			return 0, err
		}
		entry := appendSLEB128(nil, opcodeOpt)
		entry = appendSLEB128(entry, inner)
		return tt.intern(entry), nil

	case VecType:
		inner, err := tt.add(t.Elem)
		if err != nil {
			return 0, err
		}
		entry := appendSLEB128(nil, opcodeVec)
		entry = appendSLEB128(entry, inner)
		return tt.intern(entry), nil

	case RecordType:
		return tt.addFielded(opcodeRecord, t.Fields)

	case VariantType:
		return tt.addFielded(opcodeVariant, t.Alternatives)

	default:
		return 0, fmt.Errorf("candid: unsupported type %T", t)
	}
}

func (tt *typeTable) addFielded(opcode int64, fields []Field) (int64, error) {
	sorted := sortedFields(fields)
	if err := checkFieldHashes(sorted); err != nil {
		return 0, err
	}
	refs := make([]int64, len(sorted))
	for i, f := range sorted {
		ref, err := tt.add(f.Type)
		if err != nil {
			return 0, err
		}
		refs[i] = ref
	}
	entry := appendSLEB128(nil, opcode)
	entry = appendULEB128(entry, uint64(len(sorted)))
	for i, f := range sorted {
		entry = appendULEB128(entry, uint64(FieldHash(f.Name)))
		entry = appendSLEB128(entry, refs[i])
	}
	return tt.intern(entry), nil
}

func (tt *typeTable) intern(entry []byte) int64 {
	if idx, ok := tt.indexOf[string(entry)]; ok {
		return idx
	}
	idx := int64(len(tt.entries))
	tt.entries = append(tt.entries, entry)
	tt.indexOf[string(entry)] = idx
	return idx
}

func checkFieldHashes(sorted []Field) error {
	for i := 1; i < len(sorted); i++ {
		if FieldHash(sorted[i-1].Name) == FieldHash(sorted[i].Name) {
			return fmt.Errorf("candid: field hash collision between %q and %q", sorted[i-1].Name, sorted[i].Name)
		}
	}
	return nil
}

func appendValue(out []byte, v Value) ([]byte, error) {
	switch v := v.(type) {
	case BoolValue:
		if v {
			return append(out, 0x01), nil
		}
		return append(out, 0x00), nil

	case Nat8Value:
		return append(out, byte(v)), nil

	case Nat32Value:
		return binary.LittleEndian.AppendUint32(out, uint32(v)), nil

	case Nat64Value:
		return binary.LittleEndian.AppendUint64(out, uint64(v)), nil

	case TextValue:
		out = appendULEB128(out, uint64(len(v)))
		return append(out, v...), nil

	case BlobValue:
		out = appendULEB128(out, uint64(len(v)))
		return append(out, v...), nil

	case NullValue:
		return out, nil

	case PrincipalValue:
		raw := principal.Principal(v).Bytes()
		out = append(out, 0x01) // id reference form
		out = appendULEB128(out, uint64(len(raw)))
		return append(out, raw...), nil

	case OptValue:
		if v.Value == nil {
			return append(out, 0x00), nil
		}
		out = append(out, 0x01)
		return appendValue(out, v.Value)

	case VecValue:
		out = appendULEB128(out, uint64(len(v.Values)))
		for _, elem := range v.Values {
			var err error
			out, err = appendValue(out, elem)
			if err != nil {
				return nil, err
			}
		}
		return out, nil

	case RecordValue:
		byName := make(map[string]Value, len(v.Fields))
		fields := make([]Field, len(v.Fields))
		for i, f := range v.Fields {
			if _, dup := byName[f.Name]; dup {
				return nil, fmt.Errorf("candid: duplicate record field %q", f.Name)
			}
			byName[f.Name] = f.Value
			fields[i] = Field{Name: f.Name, Type: f.Value.Type()}
		}
		for _, f := range sortedFields(fields) {
			var err error
			out, err = appendValue(out, byName[f.Name])
			if err != nil {
				return nil, err
			}
		}
		return out, nil

	case VariantValue:
		idx, err := v.alternativeIndex()
		if err != nil {
			return nil, err
		}
		out = appendULEB128(out, uint64(idx))
		return appendValue(out, v.Value)

	default:
		return nil, fmt.Errorf("candid: unsupported value %T", v)
	}
}
