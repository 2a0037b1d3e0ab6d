// Package argvalue defines the typed argument model used by the Transaction
// Resolution Protocol (TRP). Values round-trip losslessly between an
// in-memory representation and the JSON wire format expected by a remote
// resolver.
package argvalue

import (
	"bytes"
	"fmt"
	"math/big"
	"reflect"
)

// A Type is a constant string that uniquely identifies the type of a Value.
type Type string

// Enumeration of value types.
const (
	TypeInt       = Type("int")
	TypeBool      = Type("bool")
	TypeString    = Type("string")
	TypeBytes     = Type("bytes")
	TypeAddress   = Type("address")
	TypeUtxoRef   = Type("utxoref")
	TypeUtxoSet   = Type("utxoset")
	TypeCustom    = Type("custom")
	TypeUndefined = Type("undefined")
)

// A Value is a concrete argument value associated with a Type. The set of
// implementations is closed: every Value has a wire encoding, so new variants
// cannot be defined outside this package.
type Value interface {
	Type() Type
	Equal(Value) bool

	sealed()
}

// An Error reports a value that cannot be constructed, encoded or decoded.
type Error struct {
	msg string
}

func errorf(format string, args ...interface{}) *Error {
	return &Error{msg: fmt.Sprintf(format, args...)}
}

// Error implements the error interface for the Error type.
func (err *Error) Error() string {
	return err.msg
}

// Int is a signed integer in the inclusive range [-2^127, 2^127-1].
type Int struct {
	Int *big.Int
}

// NewInt returns an Int Value, or an error when v is outside the i128 range.
func NewInt(v *big.Int) (Int, error) {
	if v == nil {
		return Int{}, errorf("Value is null")
	}
	if v.Cmp(MinI128) < 0 || v.Cmp(MaxI128) > 0 {
		return Int{}, errorf("Value out of range for i128")
	}
	return Int{Int: new(big.Int).Set(v)}, nil
}

// NewIntFromInt64 returns an Int Value from a host integer. It cannot fail
// because every int64 is within the i128 range.
func NewIntFromInt64(v int64) Int {
	return Int{Int: big.NewInt(v)}
}

func (Int) sealed() {}

// Type implements the Value interface for the Int type.
func (Int) Type() Type {
	return TypeInt
}

// Equal implements the Value interface for the Int type.
func (i Int) Equal(other Value) bool {
	val, ok := other.(Int)
	if !ok {
		return false
	}
	if i.Int == nil || val.Int == nil {
		return i.Int == val.Int
	}
	return i.Int.Cmp(val.Int) == 0
}

// Bool is a boolean value.
type Bool bool

func (Bool) sealed() {}

// Type implements the Value interface for the Bool type.
func (Bool) Type() Type {
	return TypeBool
}

// Equal implements the Value interface for the Bool type.
func (b Bool) Equal(other Value) bool {
	val, ok := other.(Bool)
	return ok && b == val
}

// String is a UTF-8 string value.
type String string

func (String) sealed() {}

// Type implements the Value interface for the String type.
func (String) Type() Type {
	return TypeString
}

// Equal implements the Value interface for the String type.
func (str String) Equal(other Value) bool {
	val, ok := other.(String)
	return ok && str == val
}

// Bytes is a byte sequence value.
type Bytes []byte

func (Bytes) sealed() {}

// Type implements the Value interface for the Bytes type.
func (Bytes) Type() Type {
	return TypeBytes
}

// Equal implements the Value interface for the Bytes type.
func (b Bytes) Equal(other Value) bool {
	val, ok := other.(Bytes)
	return ok && bytes.Equal(b, val)
}

// Address is the raw payload of a chain address.
type Address []byte

func (Address) sealed() {}

// Type implements the Value interface for the Address type.
func (Address) Type() Type {
	return TypeAddress
}

// Equal implements the Value interface for the Address type.
func (addr Address) Equal(other Value) bool {
	val, ok := other.(Address)
	return ok && bytes.Equal(addr, val)
}

// UtxoRef references an unspent transaction output by transaction id and
// output index.
type UtxoRef struct {
	Txid  []byte
	Index uint32
}

func (UtxoRef) sealed() {}

// Type implements the Value interface for the UtxoRef type.
func (UtxoRef) Type() Type {
	return TypeUtxoRef
}

// Equal implements the Value interface for the UtxoRef type.
func (ref UtxoRef) Equal(other Value) bool {
	val, ok := other.(UtxoRef)
	return ok && ref.Index == val.Index && bytes.Equal(ref.Txid, val.Txid)
}

// String formats the reference as "<hex txid>#<decimal index>".
func (ref UtxoRef) String() string {
	return fmt.Sprintf("%s#%d", BytesToHex(ref.Txid), ref.Index)
}

// A Utxo is a single unspent transaction output. Datum, Assets and Script are
// opaque to the codec and pass through the wire unchanged.
type Utxo struct {
	Ref     UtxoRef
	Address Address
	Datum   interface{}
	Assets  interface{}
	Script  interface{}
}

// Equal compares the addressable parts of two Utxos. The passthrough fields
// are compared with reflect.DeepEqual because their shape is opaque.
func (utxo Utxo) Equal(other Utxo) bool {
	return utxo.Ref.Equal(other.Ref) &&
		utxo.Address.Equal(other.Address) &&
		reflect.DeepEqual(utxo.Datum, other.Datum) &&
		reflect.DeepEqual(utxo.Assets, other.Assets) &&
		reflect.DeepEqual(utxo.Script, other.Script)
}

// UtxoSet is an unordered collection of Utxos.
type UtxoSet []Utxo

func (UtxoSet) sealed() {}

// Type implements the Value interface for the UtxoSet type.
func (UtxoSet) Type() Type {
	return TypeUtxoSet
}

// Equal implements the Value interface for the UtxoSet type. The comparison
// is unordered: two sets are equal when every element of one has a matching
// element in the other.
func (set UtxoSet) Equal(other Value) bool {
	val, ok := other.(UtxoSet)
	if !ok || len(set) != len(val) {
		return false
	}
	matched := make([]bool, len(val))
	for _, utxo := range set {
		found := false
		for i := range val {
			if !matched[i] && utxo.Equal(val[i]) {
				matched[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Custom is an instance of a user-defined composite type: a constructor index
// tagging the variant, and an ordered field list. Fields are addressed
// positionally; no field names survive onto the wire.
type Custom struct {
	constructor uint
	fields      []Value
}

// NewCustom returns a Custom Value. The field slice is copied so that later
// mutation of the argument cannot affect the constructed value.
func NewCustom(constructor uint, fields []Value) Custom {
	cloned := make([]Value, len(fields))
	copy(cloned, fields)
	return Custom{constructor: constructor, fields: cloned}
}

func (Custom) sealed() {}

// Type implements the Value interface for the Custom type.
func (Custom) Type() Type {
	return TypeCustom
}

// Equal implements the Value interface for the Custom type. Equality is
// structural: constructor indices must match and every field must be
// recursively equal.
func (custom Custom) Equal(other Value) bool {
	val, ok := other.(Custom)
	if !ok || custom.constructor != val.constructor || len(custom.fields) != len(val.fields) {
		return false
	}
	for i := range custom.fields {
		if !custom.fields[i].Equal(val.fields[i]) {
			return false
		}
	}
	return true
}

// Constructor returns the constructor index.
func (custom Custom) Constructor() uint {
	return custom.constructor
}

// Field returns the field at the given index, or nil when the index is out of
// range.
func (custom Custom) Field(index int) Value {
	if index < 0 || index >= len(custom.fields) {
		return nil
	}
	return custom.fields[index]
}

// Fields returns a snapshot of the field list, independent of the internal
// storage.
func (custom Custom) Fields() []Value {
	fields := make([]Value, len(custom.fields))
	copy(fields, custom.fields)
	return fields
}

// NumFields returns the number of fields.
func (custom Custom) NumFields() int {
	return len(custom.fields)
}

// WithField returns a copy of the Custom value with the field at the given
// index replaced. The original value is not modified.
func (custom Custom) WithField(index int, value Value) (Custom, error) {
	if index < 0 || index >= len(custom.fields) {
		return Custom{}, errorf("Field index %d out of range", index)
	}
	fields := custom.Fields()
	fields[index] = value
	return Custom{constructor: custom.constructor, fields: fields}, nil
}
