package argvalue

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
)

// Bounds of the i128 range.
var (
	MaxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	MinI128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// MaxSafeInt is the largest integer magnitude that survives a round trip
// through a JSON number (2^53 - 1). Ints beyond it are encoded as hex
// two's-complement strings.
var MaxSafeInt = big.NewInt(1<<53 - 1)

var two128 = new(big.Int).Lsh(big.NewInt(1), 128)

// HexToBytes decodes a hex string into bytes. The "0x" prefix is optional.
// Odd-length or non-hex input is rejected.
func HexToBytes(str string) ([]byte, error) {
	str = strings.TrimPrefix(str, "0x")
	data, err := hex.DecodeString(str)
	if err != nil {
		return nil, errorf("Invalid hex string")
	}
	return data, nil
}

// BytesToHex encodes bytes as a lowercase hex string without a prefix. It is
// the exact inverse of HexToBytes for any valid even-length input.
func BytesToHex(data []byte) string {
	return hex.EncodeToString(data)
}

// encodeI128 encodes v as 16 big-endian bytes of two's complement. The
// absolute value is padded to 16 bytes; negative values are complemented and
// incremented. v must be within the i128 range.
func encodeI128(v *big.Int) []byte {
	data := math.PaddedBigBytes(new(big.Int).Abs(v), 16)
	if v.Sign() < 0 {
		for i := range data {
			data[i] = ^data[i]
		}
		for i := len(data) - 1; i >= 0; i-- {
			data[i]++
			if data[i] != 0 {
				break
			}
		}
	}
	return data
}

// decodeI128 decodes 16 big-endian bytes of two's complement. The sign bit is
// the top bit of the first byte; when set, 2^128 is subtracted.
func decodeI128(data []byte) *big.Int {
	v := new(big.Int).SetBytes(data)
	if data[0]&0x80 != 0 {
		v.Sub(v, two128)
	}
	return v
}
