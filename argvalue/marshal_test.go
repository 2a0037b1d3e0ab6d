package argvalue_test

import (
	"math/big"

	"github.com/google/go-cmp/cmp"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	. "github.com/tx3-lang/trp-go/argvalue"
)

var _ = Describe("Marshal", func() {
	Context("when converting keys to snake case", func() {
		It("should insert underscores at lower-to-upper boundaries", func() {
			Expect(ToSnakeCase("smallNumber")).To(Equal("small_number"))
			Expect(ToSnakeCase("bigNumber")).To(Equal("big_number"))
			Expect(ToSnakeCase("myValue2X")).To(Equal("my_value2_x"))
		})

		It("should leave snake case keys unchanged", func() {
			Expect(ToSnakeCase("already_snake")).To(Equal("already_snake"))
			Expect(ToSnakeCase("simple")).To(Equal("simple"))
		})

		It("should be idempotent", func() {
			keys := []string{"smallNumber", "already_snake", "HTTPServer", "a1B2"}
			for _, key := range keys {
				once := ToSnakeCase(key)
				Expect(ToSnakeCase(once)).To(Equal(once))
			}
		})
	})

	Context("when encoding argument maps", func() {
		It("should encode primitives and rename top-level keys", func() {
			huge := new(big.Int).Lsh(big.NewInt(1), 100)
			args := Args{
				"smallNumber": 42,
				"bigNumber":   huge,
				"someFlag":    true,
				"someText":    "hello",
			}
			encoded, err := EncodeArgs(args, SnakeCase)
			Expect(err).NotTo(HaveOccurred())

			expected := map[string]interface{}{
				"small_number": int64(42),
				"big_number":   "0x00000010000000000000000000000000",
				"some_flag":    true,
				"some_text":    "hello",
			}
			Expect(cmp.Diff(map[string]interface{}(encoded), expected)).To(BeEmpty())
		})

		It("should preserve keys when asked to", func() {
			encoded, err := EncodeArgs(Args{"smallNumber": 1}, PreserveCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded).To(HaveKey("smallNumber"))
		})

		It("should encode typed values directly", func() {
			encoded, err := EncodeArgs(Args{
				"payload": Bytes{0xde, 0xad},
				"target":  Address{0xbe, 0xef},
			}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["payload"]).To(Equal("0xdead"))
			Expect(encoded["target"]).To(Equal("beef"))
		})

		It("should encode slices element-wise", func() {
			encoded, err := EncodeArgs(Args{
				"amounts": []interface{}{1, 2, 3},
			}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["amounts"]).To(Equal([]interface{}{int64(1), int64(2), int64(3)}))
		})

		It("should not treat byte slices as generic slices", func() {
			encoded, err := EncodeArgs(Args{
				"payload": []byte{0xde, 0xad},
			}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["payload"]).To(Equal("0xdead"))
		})

		It("should recognise constructor/fields maps as custom values", func() {
			encoded, err := EncodeArgs(Args{
				"redeemer": map[string]interface{}{
					"constructor": 1,
					"fields":      []interface{}{42, "hello"},
				},
			}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["redeemer"]).To(Equal(map[string]interface{}{
				"constructor": uint(1),
				"fields":      []interface{}{int64(42), "hello"},
			}))
		})

		It("should reject custom shapes with a negative constructor", func() {
			_, err := EncodeArgs(Args{
				"redeemer": map[string]interface{}{
					"constructor": -1,
					"fields":      []interface{}{},
				},
			}, SnakeCase)
			Expect(err).To(HaveOccurred())
		})

		It("should recurse into plain objects without renaming nested keys", func() {
			encoded, err := EncodeArgs(Args{
				"outerKey": map[string]interface{}{
					"innerKey": 7,
				},
			}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded).To(HaveKey("outer_key"))
			inner := encoded["outer_key"].(map[string]interface{})
			Expect(inner).To(HaveKey("innerKey"))
			Expect(inner["innerKey"]).To(Equal(int64(7)))
		})

		It("should put integral floats beyond the int64 range on the wire exactly", func() {
			expected, _ := new(big.Float).SetFloat64(1e30).Int(nil)
			encoded, err := EncodeArgs(Args{"amount": float64(1e30)}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["amount"]).To(BeAssignableToTypeOf(""))

			decoded, err := Decode(encoded["amount"], TypeInt)
			Expect(err).NotTo(HaveOccurred())
			Expect(decoded.(Int).Int.Cmp(expected)).To(BeZero())
		})

		It("should pass through scalars it cannot infer", func() {
			encoded, err := EncodeArgs(Args{"ratio": float64(1.5)}, SnakeCase)
			Expect(err).NotTo(HaveOccurred())
			Expect(encoded["ratio"]).To(Equal(float64(1.5)))
		})
	})
})
