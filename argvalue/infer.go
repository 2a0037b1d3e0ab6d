package argvalue

import (
	"math/big"
)

// FromNative converts a host-native value into a Value by attempting a small
// ordered set of fallible conversions: integers, booleans, strings, byte
// buffers, utxo shapes and value passthrough. It returns the first success,
// or an error when no variant matches.
func FromNative(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return NewIntFromInt64(int64(v)), nil
	case int8:
		return NewIntFromInt64(int64(v)), nil
	case int16:
		return NewIntFromInt64(int64(v)), nil
	case int32:
		return NewIntFromInt64(int64(v)), nil
	case int64:
		return NewIntFromInt64(v), nil
	case uint:
		return NewInt(new(big.Int).SetUint64(uint64(v)))
	case uint8:
		return NewIntFromInt64(int64(v)), nil
	case uint16:
		return NewIntFromInt64(int64(v)), nil
	case uint32:
		return NewIntFromInt64(int64(v)), nil
	case uint64:
		return NewInt(new(big.Int).SetUint64(v))
	case float64:
		return intFromFloat(v)
	case *big.Int:
		return NewInt(v)
	case big.Int:
		return NewInt(&v)
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case Utxo:
		return UtxoSet{v}, nil
	case []Utxo:
		return UtxoSet(v), nil
	default:
		return nil, errorf("Can't infer type for value")
	}
}
