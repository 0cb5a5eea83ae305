package ibe

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/eth2030/pairing/crypto"
)

var (
	// ErrMessageRange is returned when a 256-bit message does not fit the
	// scalar field of the curve, or a field element does not fit 256 bits.
	ErrMessageRange = errors.New("ibe: message out of range")

	// ErrMessageSyntax is returned for text that is neither a decimal nor a
	// 0x-prefixed hex number.
	ErrMessageSyntax = errors.New("ibe: malformed message")
)

// MessageFromUint256 maps a 256-bit word to a plaintext scalar. Values at or
// above the group order are rejected rather than reduced.
func MessageFromUint256(c *crypto.Curve, x *uint256.Int) (*crypto.Fr, error) {
	v := x.ToBig()
	if v.Cmp(c.FrModulus()) >= 0 {
		return nil, fmt.Errorf("%w: %s >= r", ErrMessageRange, x.Dec())
	}
	return c.FrFromBig(v), nil
}

// MessageToUint256 is the inverse of MessageFromUint256.
func MessageToUint256(m *crypto.Fr) (*uint256.Int, error) {
	x, overflow := uint256.FromBig(m.BigInt())
	if overflow {
		return nil, fmt.Errorf("%w: %d bits", ErrMessageRange, m.BigInt().BitLen())
	}
	return x, nil
}

// ParseMessage reads a decimal or 0x-prefixed hex 256-bit message.
// Numbers wider than 256 bits fail with ErrMessageRange, anything else that
// does not parse with ErrMessageSyntax.
func ParseMessage(c *crypto.Curve, s string) (*crypto.Fr, error) {
	var x uint256.Int
	if err := x.UnmarshalText([]byte(s)); err != nil {
		// uint256 reports long decimal input as out of range before
		// looking at the digits.
		if _, ok := new(big.Int).SetString(s, 0); ok && errors.Is(err, uint256.ErrBig256Range) {
			return nil, fmt.Errorf("%w: %q exceeds 256 bits", ErrMessageRange, s)
		}
		return nil, fmt.Errorf("%w: %q: %w", ErrMessageSyntax, s, err)
	}
	return MessageFromUint256(c, &x)
}
