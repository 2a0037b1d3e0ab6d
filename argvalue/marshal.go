package argvalue

import (
	"math"
	"reflect"
	"unicode"
)

// Args is a named-argument mapping supplied by a caller. Values may already
// be Values, or native host values the marshaller infers.
type Args map[string]interface{}

// KeyCasing selects how top-level argument names are rewritten on the wire.
type KeyCasing uint8

const (
	// PreserveCase leaves argument names untouched. Used for environment
	// arguments.
	PreserveCase = KeyCasing(iota)

	// SnakeCase rewrites camelCase names to snake_case. Used for transaction
	// arguments.
	SnakeCase
)

// EncodeArgs converts a named-argument mapping into the JSON-safe mapping
// expected by the remote resolver. The caller's values are never mutated;
// fresh output is allocated per call. Key casing applies only to top-level
// argument names, never to nested objects.
func EncodeArgs(args Args, casing KeyCasing) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for name, value := range args {
		encoded, err := encodeAny(value)
		if err != nil {
			return nil, err
		}
		if casing == SnakeCase {
			name = ToSnakeCase(name)
		}
		out[name] = encoded
	}
	return out, nil
}

// encodeAny applies the marshalling algorithm to a single value: explicit
// Values encode directly, arrays map element-wise, native values are
// inferred, plain objects recurse, and anything else passes through.
func encodeAny(value interface{}) (interface{}, error) {
	if v, ok := value.(Value); ok {
		return Encode(v), nil
	}

	if isSlice(value) {
		rv := reflect.ValueOf(value)
		out := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			encoded, err := encodeAny(rv.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	}

	if v, err := FromNative(value); err == nil {
		return Encode(v), nil
	}

	if obj, ok := value.(map[string]interface{}); ok {
		if isCustomShape(obj) {
			custom, err := decodeCustomShape(obj)
			if err != nil {
				return nil, err
			}
			return Encode(custom), nil
		}
		out := make(map[string]interface{}, len(obj))
		for key, field := range obj {
			encoded, err := encodeAny(field)
			if err != nil {
				return nil, err
			}
			out[key] = encoded
		}
		return out, nil
	}

	// Last-resort fallback for already-JSON-safe scalars such as nil.
	return value, nil
}

func isSlice(value interface{}) bool {
	if _, ok := value.([]byte); ok {
		return false
	}
	if value == nil {
		return false
	}
	kind := reflect.TypeOf(value).Kind()
	return kind == reflect.Slice || kind == reflect.Array
}

func isCustomShape(obj map[string]interface{}) bool {
	if len(obj) != 2 {
		return false
	}
	_, hasConstructor := obj["constructor"]
	_, hasFields := obj["fields"]
	return hasConstructor && hasFields
}

// decodeCustomShape parses a plain object resembling {constructor, fields}
// into a Custom value. Fields lacking explicit type information are decoded
// with type inference; nested objects matching the Custom shape recurse.
func decodeCustomShape(obj map[string]interface{}) (Custom, error) {
	constructor, err := customConstructor(obj["constructor"])
	if err != nil {
		return Custom{}, err
	}
	rawFields, ok := obj["fields"].([]interface{})
	if !ok {
		return Custom{}, errorf("Invalid fields for custom value")
	}
	fields := make([]Value, len(rawFields))
	for i, raw := range rawFields {
		if nested, ok := raw.(map[string]interface{}); ok && isCustomShape(nested) {
			field, err := decodeCustomShape(nested)
			if err != nil {
				return Custom{}, err
			}
			fields[i] = field
			continue
		}
		field, err := Infer(raw)
		if err != nil {
			return Custom{}, err
		}
		fields[i] = field
	}
	return Custom{constructor: constructor, fields: fields}, nil
}

func customConstructor(raw interface{}) (uint, error) {
	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) || v < 0 || v > 1<<53 {
			return 0, errorf("Invalid constructor index")
		}
		return uint(v), nil
	case int:
		if v < 0 {
			return 0, errorf("Invalid constructor index")
		}
		return uint(v), nil
	case uint:
		return v, nil
	default:
		return 0, errorf("Invalid constructor index")
	}
}

// ToSnakeCase rewrites a camelCase name to snake_case: a separator is
// inserted at every lowercase-or-digit to uppercase boundary, and the result
// is lowercased. Applying it to an already-snake_case name is a no-op.
func ToSnakeCase(name string) string {
	runes := []rune(name)
	out := make([]rune, 0, len(runes)+4)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				out = append(out, '_')
			}
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
