package crypto

// Hash-to-curve.
//
// Messages are hashed into Fp with RFC 9380 hash_to_field (one element,
// expand_message_xmd over SHA-256, a per-curve domain separation tag) and
// then mapped onto the curve:
//
//   - BN254: Shallue-van de Woestijne map
//   - BLS12-381: simplified SWU on the 11-isogenous (G1) or 3-isogenous (G2)
//     curve followed by the isogeny
//   - secp256k1: Shallue-van de Woestijne map
//   - other plain curves: try-and-increment on x, choosing the even y
//
// Pairing-curve maps clear the cofactor, so every output lies in the
// prime-order subgroup. G2 hashing maps the Fp2 element (HashToFp(m), 0),
// which keeps HashAndMapToG2(m) == MapToG2(NewFp2(HashToFp(m), 0)).
//
// Constant-time note: math/big is not constant time. Hashing identities and
// public messages is fine; do not feed secrets through these paths.

import (
	"math/big"

	"github.com/eth2030/pairing/metrics"
)

// HashToFp deterministically maps msg into the base field.
// HashAndMapToG1 composes it with MapToG1.
func (c *Curve) HashToFp(msg []byte) *Fp {
	return c.newFp(c.fp.hashToField(msg, c.dstFp))
}

// MapToG1 applies only the field-to-curve step to u.
func (c *Curve) MapToG1(u *Fp) *G1 {
	c.mustMatch(u.c)
	metrics.HashToCurve.Inc()
	if c.backend != nil {
		x, y, inf := c.backend.mapToG1(u.v)
		if inf {
			return c.G1Zero()
		}
		return c.wrapG1(g1FromAffine(x, y))
	}
	if c.mapG1 != nil {
		return c.wrapG1(g1FromAffine(c.mapG1(u.v)))
	}
	return c.wrapG1(c.tryAndIncrement(u.v))
}

// HashAndMapToG1 hashes msg to a G1 point.
func (c *Curve) HashAndMapToG1(msg []byte) *G1 {
	return c.MapToG1(c.HashToFp(msg))
}

// tryAndIncrement returns the first point with x in u, u+1, u+2, ... The
// plain curves have prime order, so no cofactor clearing is needed. About
// half of all x values are on the curve, so the loop ends quickly.
func (c *Curve) tryAndIncrement(u *big.Int) *g1Jac {
	x := new(big.Int).Set(u)
	for {
		if y := c.fp.sqrt(c.g1Rhs(x)); y != nil {
			if y.Bit(0) == 1 {
				y = c.fp.neg(y)
			}
			return g1FromAffine(x, y)
		}
		x = c.fp.add(x, bigOne)
	}
}

// MapToG2 applies only the field-to-curve step to u.
func (e *Engine) MapToG2(u *Fp2) *G2 {
	e.c.mustMatch(u.c)
	metrics.HashToCurve.Inc()
	x, y, inf := e.c.backend.mapToG2(u.v)
	if inf {
		return e.G2Zero()
	}
	return e.c.wrapG2(g2FromAffine(x, y))
}

// HashAndMapToG2 hashes msg to a G2 point.
func (e *Engine) HashAndMapToG2(msg []byte) *G2 {
	u := e.c.HashToFp(msg)
	return e.MapToG2(e.NewFp2(u, e.c.FpZero()))
}
