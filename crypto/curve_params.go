package crypto

// Parameter sets for the supported curves.
//
// Pairing curves take every constant from their gnark-crypto backend.
// secp256k1 comes from gnark-crypto as well, the NIST P-224/P-256/P-384
// curves from crypto/elliptic (a = -3), and the two curves neither library
// carries (secp224k1, NIST P-192) are listed in hex below.

import (
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/secp256k1"
	secpfp "github.com/consensys/gnark-crypto/ecc/secp256k1/fp"
	secpfr "github.com/consensys/gnark-crypto/ecc/secp256k1/fr"
)

type curveParams struct {
	p, r    *big.Int
	a, b    *big.Int
	gx, gy  *big.Int
	backend pairingBackend
	// mapG1 replaces try-and-increment on plain curves that have a
	// library map.
	mapG1   func(u *big.Int) (x, y *big.Int)
}

// hexCurve is a parameter set written out as hex strings.
type hexCurve struct {
	p, r, a, b, gx, gy string
}

var (
	// SEC 2 v2, section 2.3.1.
	secp224k1Hex = hexCurve{
		p:  "fffffffffffffffffffffffffffffffffffffffffffffffeffffe56d",
		r:  "010000000000000000000000000001dce8d2ec6184caf0a971769fb1f7",
		a:  "0",
		b:  "5",
		gx: "a1455b334df099df30fc28a169a467e9e47075a90f7e650eb6b7a45c",
		gy: "7e089fed7fba344282cafbd6f7e319f7c0b0bd59e2ca4bdb556d61a5",
	}
	// FIPS 186-4, D.1.2.1. a is -3.
	p192Hex = hexCurve{
		p:  "fffffffffffffffffffffffffffffffeffffffffffffffff",
		r:  "ffffffffffffffffffffffff99def836146bc9b1b4d22831",
		a:  "fffffffffffffffffffffffffffffffefffffffffffffffc",
		b:  "64210519e59c80e70fa7e9ab72243049feb8deecc146b9b1",
		gx: "188da80eb03090f67cbf20eb43a18800f4ff0afd82ff1012",
		gy: "07192b95ffc8da78631011ed6b24cdd573f977a11e794811",
	}
)

func lookupParams(id CurveID) (*curveParams, error) {
	switch id {
	case BN254:
		return backendParams(newBN254Backend()), nil
	case BLS12_381:
		return backendParams(newBLS12381Backend()), nil
	case SECP256K1:
		return secp256k1Params(), nil
	case SECP224K1:
		return secp224k1Hex.params(), nil
	case NIST_P192:
		return p192Hex.params(), nil
	case NIST_P224:
		return ellipticParams(elliptic.P224()), nil
	case NIST_P256:
		return ellipticParams(elliptic.P256()), nil
	case SECP384R1:
		return ellipticParams(elliptic.P384()), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, id)
}

func backendParams(be pairingBackend) *curveParams {
	p := be.params()
	p.backend = be
	return p
}

func secp256k1Params() *curveParams {
	_, g := secp256k1.Generators()
	a, b := secp256k1.CurveCoefficients()
	return &curveParams{
		p:     secpfp.Modulus(),
		r:     secpfr.Modulus(),
		a:     a.BigInt(new(big.Int)),
		b:     b.BigInt(new(big.Int)),
		gx:    g.X.BigInt(new(big.Int)),
		gy:    g.Y.BigInt(new(big.Int)),
		mapG1: secp256k1MapToG1,
	}
}

// secp256k1MapToG1 applies gnark's SVDW map. The curve has cofactor 1 and
// the map never returns the point at infinity.
func secp256k1MapToG1(u *big.Int) (x, y *big.Int) {
	var e secpfp.Element
	e.SetBigInt(u)
	p := secp256k1.MapToG1(e)
	return p.X.BigInt(new(big.Int)), p.Y.BigInt(new(big.Int))
}

func ellipticParams(curve elliptic.Curve) *curveParams {
	cp := curve.Params()
	return &curveParams{
		p:  new(big.Int).Set(cp.P),
		r:  new(big.Int).Set(cp.N),
		a:  new(big.Int).Sub(cp.P, big.NewInt(3)),
		b:  new(big.Int).Set(cp.B),
		gx: new(big.Int).Set(cp.Gx),
		gy: new(big.Int).Set(cp.Gy),
	}
}

func (h hexCurve) params() *curveParams {
	return &curveParams{
		p:  mustHex(h.p),
		r:  mustHex(h.r),
		a:  mustHex(h.a),
		b:  mustHex(h.b),
		gx: mustHex(h.gx),
		gy: mustHex(h.gy),
	}
}

func mustHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("crypto: invalid hex constant " + s)
	}
	return v
}
