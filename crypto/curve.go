package crypto

// Curve selection.
//
// A Curve is the immutable parameter handle returned by Init. Every field
// element, point and target group element keeps a pointer to the handle it
// was created from, and arithmetic between values of two handles is a
// precondition violation. Init builds each curve once per process; later
// calls for the same identifier return the same handle.

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"sync"

	"github.com/eth2030/pairing/log"
)

// CurveID selects one of the fixed curve parameter sets.
type CurveID int

// Pairing-friendly curves.
const (
	BN254 CurveID = iota
	BN381_1
	BLS12_381
	BN462
)

// Plain curves, usable for G1 arithmetic only.
const (
	SECP224K1 CurveID = iota + 100
	SECP256K1
	SECP384R1
	NIST_P192
	NIST_P224
	NIST_P256
)

var curveNames = map[CurveID]string{
	BN254:     "BN254",
	BN381_1:   "BN381_1",
	BLS12_381: "BLS12_381",
	BN462:     "BN462",
	SECP224K1: "SECP224K1",
	SECP256K1: "SECP256K1",
	SECP384R1: "SECP384R1",
	NIST_P192: "NIST_P192",
	NIST_P224: "NIST_P224",
	NIST_P256: "NIST_P256",
}

// String returns the canonical curve name.
func (id CurveID) String() string {
	if name, ok := curveNames[id]; ok {
		return name
	}
	return fmt.Sprintf("CurveID(%d)", int(id))
}

// ParseCurveID resolves a curve name. Matching ignores case and treats '-'
// as '_', so "bls12-381" selects BLS12_381.
func ParseCurveID(name string) (CurveID, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for id, n := range curveNames {
		if n == norm {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurve, name)
}

// CurveIDs returns every known identifier in ascending order. Some may be
// unsupported by this build; Init reports which.
func CurveIDs() []CurveID {
	ids := make([]CurveID, 0, len(curveNames))
	for id := range curveNames {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Curve holds the parameters of one initialized curve.
type Curve struct {
	id CurveID

	fp *primeField // base field
	fr *primeField // scalar field, order of the G1 subgroup

	// G1: y^2 = x^3 + a*x + b over Fp.
	a, b   *big.Int
	gx, gy *big.Int
	mapG1  func(u *big.Int) (x, y *big.Int)

	// Pairing curves only.
	backend  pairingBackend
	twistB   *fp2 // G2: y^2 = x^3 + twistB over Fp2
	g2x, g2y *fp2
	engine   *Engine

	dstFp []byte
	dstFr []byte
}

type curveSlot struct {
	once  sync.Once
	curve *Curve
	err   error
}

var (
	slotsMu sync.Mutex
	slots   = make(map[CurveID]*curveSlot)
)

// Init returns the parameter handle for id, building it on first use. It is
// safe to call from multiple goroutines.
func Init(id CurveID) (*Curve, error) {
	slotsMu.Lock()
	slot, ok := slots[id]
	if !ok {
		slot = new(curveSlot)
		slots[id] = slot
	}
	slotsMu.Unlock()

	slot.once.Do(func() {
		slot.curve, slot.err = newCurve(id)
		if slot.err != nil {
			return
		}
		log.Default().Module("crypto").Info("curve initialized",
			"curve", id.String(),
			"fp_bits", slot.curve.fp.bits,
			"fr_bits", slot.curve.fr.bits,
			"pairing", slot.curve.HasPairing())
	})
	return slot.curve, slot.err
}

// MustInit is like Init but panics on error. It is intended for tests and
// package-level variables.
func MustInit(id CurveID) *Curve {
	c, err := Init(id)
	if err != nil {
		panic(err)
	}
	return c
}

// newCurve assembles a handle from the parameter set of id.
func newCurve(id CurveID) (*Curve, error) {
	params, err := lookupParams(id)
	if err != nil {
		return nil, err
	}
	c := &Curve{
		id:    id,
		fp:    newPrimeField("Fp", params.p),
		fr:    newPrimeField("Fr", params.r),
		a:     params.a,
		b:     params.b,
		gx:    params.gx,
		gy:    params.gy,
		mapG1: params.mapG1,
	}
	c.dstFp = []byte("PAIRING-V01-" + id.String() + "_XMD:SHA-256_FP_")
	c.dstFr = []byte("PAIRING-V01-" + id.String() + "_XMD:SHA-256_FR_")

	if params.backend != nil {
		c.backend = params.backend
		g2x, g2y := params.backend.g2Generator()
		c.g2x, c.g2y = g2x, g2y
		// b' = y^2 - x^3 at the generator; the twist has a = 0.
		c.twistB = c.fp2Sub(c.fp2Sqr(g2y), c.fp2Mul(c.fp2Sqr(g2x), g2x))
		c.engine = &Engine{c: c}
	}
	if !c.onCurveG1(c.gx, c.gy) {
		return nil, fmt.Errorf("crypto: %s generator not on curve", id)
	}
	return c, nil
}

// ID returns the identifier the curve was initialized with.
func (c *Curve) ID() CurveID { return c.id }

// String returns the curve name.
func (c *Curve) String() string { return c.id.String() }

// HasPairing reports whether the curve supports G2, GT and the pairing.
func (c *Curve) HasPairing() bool { return c.backend != nil }

// Engine returns the pairing engine of a pairing-friendly curve.
func (c *Curve) Engine() (*Engine, error) {
	if c.engine == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPairing, c.id)
	}
	return c.engine, nil
}

// FpModulus returns a copy of the base field prime.
func (c *Curve) FpModulus() *big.Int { return new(big.Int).Set(c.fp.p) }

// FrModulus returns a copy of the group order.
func (c *Curve) FrModulus() *big.Int { return new(big.Int).Set(c.fr.p) }

// FpByteSize is the serialized width of an Fp element.
func (c *Curve) FpByteSize() int { return c.fp.size }

// FrByteSize is the serialized width of an Fr element.
func (c *Curve) FrByteSize() int { return c.fr.size }

// mustMatch panics when o is not c. Infallible arithmetic methods use it to
// reject operands from another curve.
func (c *Curve) mustMatch(o *Curve) {
	if c != o {
		panic(ErrCurveMismatch)
	}
}

// match is the error-returning form of mustMatch.
func (c *Curve) match(o *Curve) error {
	if c == nil || o == nil {
		return ErrUnbound
	}
	if c != o {
		return fmt.Errorf("%w: %s and %s", ErrCurveMismatch, c.id, o.id)
	}
	return nil
}
