package crypto

// Point encodings.
//
// Field elements are little-endian at a fixed width of ceil(bits/8) bytes.
// Points are compressed to their x coordinate plus two flags stored in the
// top bits of the final byte:
//
//	bit 7: y is odd (G1) or sgn0(y) is set (G2)
//	bit 6: point at infinity, every other bit zero
//
// When the base field leaves fewer than two spare bits in its top byte the
// G1 encoding carries one extra trailing byte for the flags. G2 always has
// room: both pairing curves leave at least two spare bits in Fp.

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	flagSign     = 0x80
	flagInfinity = 0x40
	flagMask     = flagSign | flagInfinity
)

func decodeHexString(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return b, nil
}

// spareFlagBits reports whether Fp's top byte has room for the two flags.
func (c *Curve) spareFlagBits() bool { return 8*c.fp.size-c.fp.bits >= 2 }

// G1ByteSize is the length of a serialized G1 point.
func (c *Curve) G1ByteSize() int {
	if c.spareFlagBits() {
		return c.fp.size
	}
	return c.fp.size + 1
}

func (c *Curve) encodeG1(p *g1Jac) []byte {
	out := make([]byte, c.G1ByteSize())
	if p.isInfinity() {
		out[len(out)-1] = flagInfinity
		return out
	}
	x, y := c.g1ToAffine(p)
	c.fp.encodeTo(out[:c.fp.size], x)
	if y.Bit(0) == 1 {
		out[len(out)-1] |= flagSign
	}
	return out
}

func (c *Curve) decodeG1(b []byte) (*g1Jac, error) {
	if len(b) != c.G1ByteSize() {
		return nil, fmt.Errorf("%w: G1 needs %d bytes, got %d", ErrMalformedInput, c.G1ByteSize(), len(b))
	}
	buf := append([]byte(nil), b...)
	flags := buf[len(buf)-1] & flagMask
	buf[len(buf)-1] &^= flagMask
	if !c.spareFlagBits() && buf[len(buf)-1] != 0 {
		return nil, fmt.Errorf("%w: G1 flag byte", ErrMalformedInput)
	}
	xb := buf[:c.fp.size]

	if flags&flagInfinity != 0 {
		if flags != flagInfinity || !allZero(buf) {
			return nil, fmt.Errorf("%w: G1 infinity encoding", ErrMalformedInput)
		}
		return g1Infinity(), nil
	}
	x, err := c.fp.decode(xb)
	if err != nil {
		return nil, err
	}
	y := c.fp.sqrt(c.g1Rhs(x))
	if y == nil {
		return nil, fmt.Errorf("%w: G1 x not on curve", ErrMalformedInput)
	}
	if (y.Bit(0) == 1) != (flags&flagSign != 0) {
		y = c.fp.neg(y)
	}
	if !c.inG1(x, y) {
		return nil, fmt.Errorf("%w: G1 point not in subgroup", ErrMalformedInput)
	}
	return g1FromAffine(x, y), nil
}

// G2ByteSize is the length of a serialized G2 point.
func (c *Curve) G2ByteSize() int { return 2 * c.fp.size }

func (c *Curve) encodeG2(p *g2Jac) []byte {
	out := make([]byte, c.G2ByteSize())
	if p.isInfinity() {
		out[len(out)-1] = flagInfinity
		return out
	}
	x, y := c.g2ToAffine(p)
	copy(out, c.encodeFp2(x))
	if fp2Sgn0(y) {
		out[len(out)-1] |= flagSign
	}
	return out
}

func (c *Curve) decodeG2(b []byte) (*g2Jac, error) {
	if len(b) != c.G2ByteSize() {
		return nil, fmt.Errorf("%w: G2 needs %d bytes, got %d", ErrMalformedInput, c.G2ByteSize(), len(b))
	}
	buf := append([]byte(nil), b...)
	flags := buf[len(buf)-1] & flagMask
	buf[len(buf)-1] &^= flagMask

	if flags&flagInfinity != 0 {
		if flags != flagInfinity || !allZero(buf) {
			return nil, fmt.Errorf("%w: G2 infinity encoding", ErrMalformedInput)
		}
		return g2Infinity(), nil
	}
	x, err := c.decodeFp2(buf)
	if err != nil {
		return nil, err
	}
	y := c.fp2Sqrt(c.g2Rhs(x))
	if y == nil {
		return nil, fmt.Errorf("%w: G2 x not on curve", ErrMalformedInput)
	}
	if fp2Sgn0(y) != (flags&flagSign != 0) {
		y = c.fp2Neg(y)
	}
	if !c.backend.inG2(x, y) {
		return nil, fmt.Errorf("%w: G2 point not in subgroup", ErrMalformedInput)
	}
	return g2FromAffine(x, y), nil
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
