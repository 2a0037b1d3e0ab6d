package argvalue

import (
	"encoding/base64"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// Decode converts a JSON value into a Value of the given target type. The
// Undefined target infers the type from the shape of the input.
func Decode(raw interface{}, t Type) (Value, error) {
	switch t {
	case TypeInt:
		return decodeInt(raw)
	case TypeBool:
		return decodeBool(raw)
	case TypeBytes:
		return decodeBytes(raw)
	case TypeAddress:
		return decodeAddress(raw)
	case TypeUtxoRef:
		return decodeUtxoRef(raw)
	case TypeUndefined:
		return Infer(raw)
	default:
		return nil, errorf("Can't decode type %s", t)
	}
}

// Encode converts a Value into its JSON wire representation. Ints within the
// safe-integer range become host numbers; larger magnitudes become 16-byte
// two's-complement hex strings.
func Encode(v Value) interface{} {
	switch val := v.(type) {
	case Int:
		i := val.Int
		if i == nil {
			i = big.NewInt(0)
		}
		if new(big.Int).Abs(i).Cmp(MaxSafeInt) <= 0 {
			return i.Int64()
		}
		return "0x" + BytesToHex(encodeI128(i))
	case Bool:
		return bool(val)
	case String:
		return string(val)
	case Bytes:
		return "0x" + BytesToHex(val)
	case Address:
		return BytesToHex(val)
	case UtxoRef:
		return val.String()
	case UtxoSet:
		set := make([]interface{}, len(val))
		for i, utxo := range val {
			elem := map[string]interface{}{
				"ref":     utxo.Ref.String(),
				"address": BytesToHex(utxo.Address),
			}
			if utxo.Datum != nil {
				elem["datum"] = utxo.Datum
			}
			if utxo.Assets != nil {
				elem["assets"] = utxo.Assets
			}
			if utxo.Script != nil {
				elem["script"] = utxo.Script
			}
			set[i] = elem
		}
		return set
	case Custom:
		fields := make([]interface{}, val.NumFields())
		for i, field := range val.fields {
			fields[i] = Encode(field)
		}
		return map[string]interface{}{
			"constructor": val.constructor,
			"fields":      fields,
		}
	default:
		panic(fmt.Sprintf("unexpected value type %T", v))
	}
}

func decodeInt(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errorf("Value is null")
	case float64:
		return intFromFloat(v)
	case int:
		return NewIntFromInt64(int64(v)), nil
	case int64:
		return NewIntFromInt64(v), nil
	case uint64:
		return NewInt(new(big.Int).SetUint64(v))
	case *big.Int:
		return NewInt(v)
	case Int:
		return v, nil
	case string:
		data, err := HexToBytes(v)
		if err != nil {
			return nil, err
		}
		if len(data) != 16 {
			return nil, errorf("Invalid bytes for number")
		}
		return Int{Int: decodeI128(data)}, nil
	default:
		return nil, errorf("Value is not a number")
	}
}

// intFromFloat converts an integral float64 exactly. Conversion goes through
// big.Float because a direct int64 conversion is implementation-defined for
// magnitudes beyond the int64 range.
func intFromFloat(v float64) (Value, error) {
	if math.IsInf(v, 0) {
		return nil, errorf("Value out of range for i128")
	}
	if v != math.Trunc(v) {
		return nil, errorf("Number is not an integer")
	}
	i, _ := new(big.Float).SetFloat64(v).Int(nil)
	return NewInt(i)
}

func decodeBool(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case float64:
		switch v {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		default:
			return nil, errorf("Invalid number for boolean")
		}
	case int:
		switch v {
		case 0:
			return Bool(false), nil
		case 1:
			return Bool(true), nil
		default:
			return nil, errorf("Invalid number for boolean")
		}
	case string:
		switch v {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		default:
			return nil, errorf("Invalid string for boolean")
		}
	default:
		return nil, errorf("Value is not a bool")
	}
}

func decodeBytes(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case []byte:
		return Bytes(v), nil
	case string:
		data, err := HexToBytes(v)
		if err != nil {
			return nil, err
		}
		return Bytes(data), nil
	case map[string]interface{}:
		content, ok := v["content"].(string)
		if !ok {
			return nil, errorf("Invalid bytes envelope")
		}
		encoding, _ := v["encoding"].(string)
		switch encoding {
		case "hex":
			data, err := HexToBytes(content)
			if err != nil {
				return nil, err
			}
			return Bytes(data), nil
		case "base64":
			data, err := base64.StdEncoding.DecodeString(content)
			if err != nil {
				return nil, errorf("Invalid base64 string")
			}
			return Bytes(data), nil
		default:
			return nil, errorf("Unknown encoding")
		}
	default:
		return nil, errorf("Value is not bytes")
	}
}

// decodeAddress first attempts a bech32 decode of a human-readable chain
// address, and falls back to hex on any bech32 failure. A valid hex string
// that was intended as a malformed bech32 address therefore decodes silently
// as hex bytes.
func decodeAddress(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case []byte:
		return Address(v), nil
	case string:
		if _, data, err := bech32.DecodeNoLimit(v); err == nil {
			converted, err := bech32.ConvertBits(data, 5, 8, false)
			if err == nil {
				return Address(converted), nil
			}
		}
		data, err := HexToBytes(v)
		if err != nil {
			return nil, err
		}
		return Address(data), nil
	default:
		return nil, errorf("Value is not an address")
	}
}

func decodeUtxoRef(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case UtxoRef:
		return v, nil
	case string:
		parts := strings.Split(v, "#")
		if len(parts) != 2 {
			return nil, errorf("Invalid utxo ref")
		}
		index, err := strconv.ParseUint(parts[1], 10, 32)
		if err != nil {
			return nil, errorf("Invalid utxo ref")
		}
		txid, err := HexToBytes(parts[0])
		if err != nil {
			return nil, err
		}
		return UtxoRef{Txid: txid, Index: uint32(index)}, nil
	default:
		return nil, errorf("Invalid utxo ref")
	}
}

// Infer decodes a value without a declared target type. Only shapes with an
// unambiguous interpretation are accepted.
func Infer(raw interface{}) (Value, error) {
	switch v := raw.(type) {
	case bool:
		return Bool(v), nil
	case float64, int, int64, uint64, *big.Int:
		return decodeInt(v)
	case string:
		return String(v), nil
	default:
		return nil, errorf("Can't infer type for value")
	}
}
