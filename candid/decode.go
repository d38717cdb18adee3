package candid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
)

// Decoding is generic: the type table drives it, so arguments produced by a
// different build of the toolkit (possibly with extra record fields) still
// decode. Field names are not on the wire; decoded records and variants are
// keyed by field hash and the caller maps hashes back to the names it knows.

var (
	ErrTruncated = errors.New("candid: truncated input")
	ErrMagic     = errors.New("candid: missing DIDL magic")
)

// Decoded is a dynamically typed decoded candid value.
type Decoded struct {
	// Exactly one of the branches below is meaningful, selected by Kind.
	Kind      Kind
	Bool      bool                // KindBool
	Nat       uint64              // KindNat
	Text      string              // KindText
	Blob      []byte              // KindBlob
	Opt       *Decoded            // KindOpt, nil when absent
	Vec       []Decoded           // KindVec
	Record    map[uint32]Decoded  // KindRecord, keyed by field hash
	Variant   *DecodedVariant     // KindVariant
	Principal []byte              // KindPrincipal, raw principal bytes
}

// DecodedVariant is a decoded variant alternative.
type DecodedVariant struct {
	Hash  uint32
	Value Decoded
}

// Kind discriminates Decoded branches.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNat
	KindText
	KindBlob
	KindOpt
	KindVec
	KindRecord
	KindVariant
	KindPrincipal
)

// Field lookups on records, with presence reporting.

// NatField returns the nat-typed field with the given name, if present.
func (d Decoded) NatField(name string) (uint64, bool) {
	f, ok := d.Record[FieldHash(name)]
	if !ok || f.Kind != KindNat {
		return 0, false
	}
	return f.Nat, true
}

// TextField returns the text-typed field with the given name, if present.
func (d Decoded) TextField(name string) (string, bool) {
	f, ok := d.Record[FieldHash(name)]
	if !ok || f.Kind != KindText {
		return "", false
	}
	return f.Text, true
}

// OptField returns the value inside an opt-typed field, or nil when the field
// is missing or absent.
func (d Decoded) OptField(name string) *Decoded {
	f, ok := d.Record[FieldHash(name)]
	if !ok || f.Kind != KindOpt {
		return nil
	}
	return f.Opt
}

// Decode parses candid bytes into one Decoded per argument.
func Decode(data []byte) ([]Decoded, error) {
	if len(data) < 4 || !bytes.Equal(data[:4], []byte("DIDL")) {
		return nil, ErrMagic
	}
	r := bytes.NewReader(data[4:])

	table, err := readTypeTable(r)
	if err != nil {
		return nil, err
	}
	argCount, err := readULEB128(r)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	if argCount > math.MaxInt32 {
		return nil, fmt.Errorf("candid: implausible argument count %d", argCount)
	}
	refs := make([]int64, argCount)
	for i := range refs {
		refs[i], err = readSLEB128(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}
	}

	out := make([]Decoded, argCount)
	for i, ref := range refs {
		out[i], err = table.readValue(r, ref, 0)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// wire type table entries, resolved lazily while reading values
type wireType struct {
	opcode int64
	inner  int64       // opt/vec element reference
	fields []wireField // record/variant members, ascending hash order
}

type wireField struct {
	hash uint32
	ref  int64
}

type wireTable struct {
	types []wireType
}

const maxDepth = 64

func readTypeTable(r *bytes.Reader) (*wireTable, error) {
	count, err := readULEB128(r)
	if err != nil {
		return nil, wrapTruncated(err)
	}
	if count > math.MaxInt32 {
		return nil, fmt.Errorf("candid: implausible type table size %d", count)
	}
	table := &wireTable{types: make([]wireType, count)}
	for i := range table.types {
		opcode, err := readSLEB128(r)
		if err != nil {
			return nil, wrapTruncated(err)
		}
		entry := wireType{opcode: opcode}
		switch opcode {
		case opcodeOpt, opcodeVec:
			entry.inner, err = readSLEB128(r)
			if err != nil {
				return nil, wrapTruncated(err)
			}
		case opcodeRecord, opcodeVariant:
			n, err := readULEB128(r)
			if err != nil {
				return nil, wrapTruncated(err)
			}
			if n > math.MaxInt32 {
				return nil, fmt.Errorf("candid: implausible field count %d", n)
			}
			entry.fields = make([]wireField, n)
			for j := range entry.fields {
				hash, err := readULEB128(r)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				if hash > math.MaxUint32 {
					return nil, fmt.Errorf("candid: field hash %d out of range", hash)
				}
				ref, err := readSLEB128(r)
				if err != nil {
					return nil, wrapTruncated(err)
				}
				entry.fields[j] = wireField{hash: uint32(hash), ref: ref}
			}
		default:
			// Function and service types are not produced by the builders and
			// are rejected rather than skipped blind.
			return nil, fmt.Errorf("candid: unsupported composite opcode %d", opcode)
		}
		table.types[i] = entry
	}
	return table, nil
}

func (t *wireTable) resolve(ref int64) (wireType, error) {
	if ref < 0 {
		return wireType{opcode: ref}, nil
	}
	if ref >= int64(len(t.types)) {
		return wireType{}, fmt.Errorf("candid: dangling type reference %d", ref)
	}
	return t.types[ref], nil
}

func (t *wireTable) readValue(r *bytes.Reader, ref int64, depth int) (Decoded, error) {
	if depth > maxDepth {
		return Decoded{}, errors.New("candid: type nesting too deep")
	}
	wt, err := t.resolve(ref)
	if err != nil {
		return Decoded{}, err
	}

	switch wt.opcode {
	case opcodeNull:
		return Decoded{Kind: KindNull}, nil

	case opcodeBool:
		b, err := r.ReadByte()
		if err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		if b > 1 {
			return Decoded{}, fmt.Errorf("candid: invalid bool byte %d", b)
		}
		return Decoded{Kind: KindBool, Bool: b == 1}, nil

	case opcodeNat8:
		b, err := r.ReadByte()
		if err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		return Decoded{Kind: KindNat, Nat: uint64(b)}, nil

	case opcodeNat32:
		var buf [4]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		v := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24
		return Decoded{Kind: KindNat, Nat: v}, nil

	case opcodeNat64:
		var buf [8]byte
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		var v uint64
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
		return Decoded{Kind: KindNat, Nat: v}, nil

	case opcodeText:
		n, err := readLen(r)
		if err != nil {
			return Decoded{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		return Decoded{Kind: KindText, Text: string(buf)}, nil

	case opcodePrincipal:
		form, err := r.ReadByte()
		if err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		if form != 0x01 {
			return Decoded{}, fmt.Errorf("candid: unsupported principal reference form %d", form)
		}
		n, err := readLen(r)
		if err != nil {
			return Decoded{}, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		return Decoded{Kind: KindPrincipal, Principal: buf}, nil

	case opcodeOpt:
		tag, err := r.ReadByte()
		if err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		switch tag {
		case 0x00:
			return Decoded{Kind: KindOpt}, nil
		case 0x01:
			inner, err := t.readValue(r, wt.inner, depth+1)
			if err != nil {
				return Decoded{}, err
			}
			return Decoded{Kind: KindOpt, Opt: &inner}, nil
		default:
			return Decoded{}, fmt.Errorf("candid: invalid opt tag %d", tag)
		}

	case opcodeVec:
		n, err := readLen(r)
		if err != nil {
			return Decoded{}, err
		}
		// vec nat8 is a blob; keep the bytes together.
		if inner, err := t.resolve(wt.inner); err == nil && inner.opcode == opcodeNat8 {
			buf := make([]byte, n)
			if _, err := io.ReadFull(r, buf); err != nil {
				return Decoded{}, wrapTruncated(err)
			}
			return Decoded{Kind: KindBlob, Blob: buf}, nil
		}
		elems := make([]Decoded, n)
		for i := range elems {
			elems[i], err = t.readValue(r, wt.inner, depth+1)
			if err != nil {
				return Decoded{}, err
			}
		}
		return Decoded{Kind: KindVec, Vec: elems}, nil

	case opcodeRecord:
		record := make(map[uint32]Decoded, len(wt.fields))
		for _, f := range wt.fields {
			v, err := t.readValue(r, f.ref, depth+1)
			if err != nil {
				return Decoded{}, err
			}
			record[f.hash] = v
		}
		return Decoded{Kind: KindRecord, Record: record}, nil

	case opcodeVariant:
		idx, err := readULEB128(r)
		if err != nil {
			return Decoded{}, wrapTruncated(err)
		}
		if idx >= uint64(len(wt.fields)) {
			return Decoded{}, fmt.Errorf("candid: variant index %d out of range", idx)
		}
		alt := wt.fields[idx]
		v, err := t.readValue(r, alt.ref, depth+1)
		if err != nil {
			return Decoded{}, err
		}
		return Decoded{Kind: KindVariant, Variant: &DecodedVariant{Hash: alt.hash, Value: v}}, nil

	default:
		return Decoded{}, fmt.Errorf("candid: unsupported opcode %d", wt.opcode)
	}
}

func readLen(r *bytes.Reader) (int, error) {
	n, err := readULEB128(r)
	if err != nil {
		return 0, wrapTruncated(err)
	}
	if n > uint64(r.Len()) {
		return 0, ErrTruncated
	}
	return int(n), nil
}

func wrapTruncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
