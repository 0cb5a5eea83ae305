package crypto

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/secp256k1"
	secpfp "github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
)

// TestHashAndMapToG1Equivalence verifies the hash path is exactly
// MapToG1(HashToFp(m)).
func TestHashAndMapToG1Equivalence(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		for _, msg := range []string{"", "abc", "alice@example"} {
			p := c.HashAndMapToG1([]byte(msg))
			if !p.Equal(c.MapToG1(c.HashToFp([]byte(msg)))) {
				t.Fatalf("%s %q: HashAndMapToG1 != MapToG1(HashToFp)", id, msg)
			}
			if !p.Equal(c.HashAndMapToG1([]byte(msg))) {
				t.Fatalf("%s %q: not deterministic", id, msg)
			}
			if p.IsZero() || !p.IsOnCurve() || !p.IsInSubgroup() {
				t.Fatalf("%s %q: invalid output %s", id, msg, p)
			}
		}
		if c.HashAndMapToG1([]byte("a")).Equal(c.HashAndMapToG1([]byte("b"))) {
			t.Fatalf("%s: distinct messages collide", id)
		}
	}
}

// TestHashAndMapToG2Equivalence verifies HashAndMapToG2(m) ==
// MapToG2(Fp2(HashToFp(m), 0)).
func TestHashAndMapToG2Equivalence(t *testing.T) {
	for _, id := range pairingCurves {
		e := mustEngine(t, id)
		c := e.Curve()
		for _, msg := range []string{"", "abc", "bob@example"} {
			q := e.HashAndMapToG2([]byte(msg))
			u := e.NewFp2(c.HashToFp([]byte(msg)), c.FpZero())
			if !q.Equal(e.MapToG2(u)) {
				t.Fatalf("%s %q: HashAndMapToG2 != MapToG2(Fp2(HashToFp, 0))", id, msg)
			}
			if q.IsZero() || !q.IsOnCurve() || !q.IsInSubgroup() {
				t.Fatalf("%s %q: invalid output", id, msg)
			}
		}
	}
}

// TestMapToG1PlainCurveEvenY verifies try-and-increment picks the even root
// and starts from x = u when u is already a valid abscissa.
func TestMapToG1PlainCurveEvenY(t *testing.T) {
	for _, id := range plainCurves {
		if id == SECP256K1 {
			continue // SVDW map, see TestMapToG1Secp256k1MatchesGnark
		}
		c := mustCurve(t, id)
		gx, _, _ := c.G1Generator().Affine()
		p := c.MapToG1(gx)
		x, y, ok := p.Affine()
		if !ok || !x.Equal(gx) {
			t.Fatalf("%s: map of generator x moved to %v", id, x)
		}
		if y.BigInt().Bit(0) != 0 {
			t.Fatalf("%s: odd y chosen", id)
		}
	}
}

// TestMapToG1Secp256k1MatchesGnark verifies secp256k1 hashes through gnark's
// SVDW map rather than try-and-increment.
func TestMapToG1Secp256k1MatchesGnark(t *testing.T) {
	c := mustCurve(t, SECP256K1)
	for _, msg := range []string{"", "abc", "alice@example", "q128_qqqq"} {
		u := c.HashToFp([]byte(msg))
		var e secpfp.Element
		e.SetBigInt(u.BigInt())
		want := secp256k1.MapToG1(e)

		x, y, ok := c.MapToG1(u).Affine()
		if !ok {
			t.Fatalf("%q: mapped to infinity", msg)
		}
		if x.BigInt().Cmp(want.X.BigInt(new(big.Int))) != 0 || y.BigInt().Cmp(want.Y.BigInt(new(big.Int))) != 0 {
			t.Fatalf("%q: map = (%s, %s), want gnark's (%s, %s)", msg, x, y, want.X.String(), want.Y.String())
		}
	}
}
