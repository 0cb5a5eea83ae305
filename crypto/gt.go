package crypto

// Target group GT, the order-r subgroup of Fp12^*.
//
// A GT value is stored as the 12 Fp coefficients of its tower form. The
// type also carries raw Miller loop outputs and small integers created with
// GTFromInt64, so membership in the subgroup is not enforced.

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// GT is an element of the pairing's target group. Values are immutable.
type GT struct {
	c *Curve
	v gtElem
}

func (c *Curve) wrapGT(v gtElem) *GT { return &GT{c: c, v: v} }

// GTOne returns the identity of GT.
func (e *Engine) GTOne() *GT { return e.c.wrapGT(gtOne()) }

// GTFromInt64 embeds n mod p as the constant coefficient.
func (e *Engine) GTFromInt64(n int64) *GT {
	v := gtOne()
	v[0] = e.c.fp.reduce(big.NewInt(n))
	return e.c.wrapGT(v)
}

// GTFromString parses 12 whitespace separated Fp coefficients in tower
// order, the format produced by GT.Text.
func (e *Engine) GTFromString(s string, radix int) (*GT, error) {
	parts := strings.Fields(s)
	if len(parts) != len(gtElem{}) {
		return nil, fmt.Errorf("%w: GT string needs 12 components, got %d", ErrMalformedInput, len(parts))
	}
	var v gtElem
	for i, part := range parts {
		x, err := e.c.fp.parse(part, radix)
		if err != nil {
			return nil, err
		}
		v[i] = x
	}
	return e.c.wrapGT(v), nil
}

// DeserializeGT decodes the output of GT.Serialize.
func (e *Engine) DeserializeGT(b []byte) (*GT, error) {
	v, err := e.c.decodeGT(b)
	if err != nil {
		return nil, err
	}
	return e.c.wrapGT(v), nil
}

// DeserializeGTHexStr decodes the output of GT.SerializeToHexStr.
func (e *Engine) DeserializeGTHexStr(s string) (*GT, error) {
	b, err := decodeHexString(s)
	if err != nil {
		return nil, err
	}
	return e.DeserializeGT(b)
}

// GTByteSize is the length of a serialized GT element.
func (c *Curve) GTByteSize() int { return len(gtElem{}) * c.fp.size }

func (c *Curve) encodeGT(v gtElem) []byte {
	out := make([]byte, c.GTByteSize())
	for i, x := range v {
		c.fp.encodeTo(out[i*c.fp.size:(i+1)*c.fp.size], x)
	}
	return out
}

func (c *Curve) decodeGT(b []byte) (gtElem, error) {
	var v gtElem
	if len(b) != c.GTByteSize() {
		return v, fmt.Errorf("%w: GT needs %d bytes, got %d", ErrMalformedInput, c.GTByteSize(), len(b))
	}
	for i := range v {
		x, err := c.fp.decode(b[i*c.fp.size : (i+1)*c.fp.size])
		if err != nil {
			return v, err
		}
		v[i] = x
	}
	return v, nil
}

func (v gtElem) isZero() bool {
	for _, x := range v {
		if x.Sign() != 0 {
			return false
		}
	}
	return true
}

func (v gtElem) equal(w gtElem) bool {
	for i := range v {
		if v[i].Cmp(w[i]) != 0 {
			return false
		}
	}
	return true
}

// Curve returns the handle x belongs to.
func (x *GT) Curve() *Curve { return x.c }

// Mul returns x * y.
func (x *GT) Mul(y *GT) *GT {
	x.c.mustMatch(y.c)
	return x.c.wrapGT(x.c.backend.gtMul(x.v, y.v))
}

// Sqr returns x^2.
func (x *GT) Sqr() *GT { return x.c.wrapGT(x.c.backend.gtSqr(x.v)) }

// Inv returns 1/x, or ErrNotInvertible when x is zero.
func (x *GT) Inv() (*GT, error) {
	if x.v.isZero() {
		return nil, fmt.Errorf("%w: GT zero", ErrNotInvertible)
	}
	return x.c.wrapGT(x.c.backend.gtInv(x.v)), nil
}

// Div returns x / y, or ErrDivisionByZero when y is zero.
func (x *GT) Div(y *GT) (*GT, error) {
	x.c.mustMatch(y.c)
	inv, err := y.Inv()
	if err != nil {
		return nil, fmt.Errorf("%w: GT division", ErrDivisionByZero)
	}
	return x.Mul(inv), nil
}

// Pow returns x^k.
func (x *GT) Pow(k *Fr) *GT {
	x.c.mustMatch(k.c)
	return x.c.wrapGT(x.c.backend.gtExp(x.v, k.v))
}

// PowBig returns x^k for any integer k; negative k inverts first.
func (x *GT) PowBig(k *big.Int) *GT { return x.c.wrapGT(x.c.backend.gtExp(x.v, k)) }

// Equal reports whether x and y are the same element of the same curve.
func (x *GT) Equal(y *GT) bool { return x.c == y.c && x.v.equal(y.v) }

// IsOne reports whether x is the identity.
func (x *GT) IsOne() bool { return x.v.equal(gtOne()) }

// IsZero reports whether every coefficient is zero.
func (x *GT) IsZero() bool { return x.v.isZero() }

// Coefficients returns the 12 Fp coefficients in tower order.
func (x *GT) Coefficients() []*Fp {
	out := make([]*Fp, len(x.v))
	for i, v := range x.v {
		out[i] = x.c.newFp(new(big.Int).Set(v))
	}
	return out
}

// Text returns the 12 coefficients separated by single spaces.
func (x *GT) Text(radix int) string {
	parts := make([]string, len(x.v))
	for i, v := range x.v {
		parts[i] = x.c.fp.text(v, radix)
	}
	return strings.Join(parts, " ")
}

// String returns x in decimal.
func (x *GT) String() string { return x.Text(10) }

// Serialize concatenates the 12 coefficients at the Fp width.
func (x *GT) Serialize() []byte { return x.c.encodeGT(x.v) }

// SerializeToHexStr returns Serialize as lowercase hex.
func (x *GT) SerializeToHexStr() string { return hex.EncodeToString(x.Serialize()) }

// MarshalBinary implements encoding.BinaryMarshaler.
func (x *GT) MarshalBinary() ([]byte, error) { return x.Serialize(), nil }

// UnmarshalBinary decodes into a bound x.
func (x *GT) UnmarshalBinary(b []byte) error {
	if x.c == nil {
		return ErrUnbound
	}
	v, err := x.c.decodeGT(b)
	if err != nil {
		return err
	}
	x.v = v
	return nil
}

// MarshalText implements encoding.TextMarshaler using the hex serialization.
func (x *GT) MarshalText() ([]byte, error) { return []byte(x.SerializeToHexStr()), nil }

// UnmarshalText is the inverse of MarshalText.
func (x *GT) UnmarshalText(text []byte) error {
	b, err := decodeHexString(string(text))
	if err != nil {
		return err
	}
	return x.UnmarshalBinary(b)
}
