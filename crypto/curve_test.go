package crypto

import (
	"errors"
	"sync"
	"testing"
)

var (
	pairingCurves = []CurveID{BN254, BLS12_381}
	plainCurves   = []CurveID{SECP224K1, SECP256K1, SECP384R1, NIST_P192, NIST_P224, NIST_P256}
	allCurves     = append(append([]CurveID{}, pairingCurves...), plainCurves...)
)

func mustCurve(t testing.TB, id CurveID) *Curve {
	t.Helper()
	c, err := Init(id)
	if err != nil {
		t.Fatalf("Init(%s): %v", id, err)
	}
	return c
}

func mustEngine(t testing.TB, id CurveID) *Engine {
	t.Helper()
	e, err := mustCurve(t, id).Engine()
	if err != nil {
		t.Fatalf("%s Engine: %v", id, err)
	}
	return e
}

// TestInitReturnsSameHandle verifies that Init builds each curve once.
func TestInitReturnsSameHandle(t *testing.T) {
	for _, id := range allCurves {
		a := mustCurve(t, id)
		b := mustCurve(t, id)
		if a != b {
			t.Fatalf("%s: Init returned two handles", id)
		}
		if a.ID() != id || a.String() != id.String() {
			t.Fatalf("%s: handle reports %s", id, a)
		}
	}
}

// TestInitConcurrent verifies concurrent initialization yields one handle.
func TestInitConcurrent(t *testing.T) {
	const n = 16
	got := make([]*Curve, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = MustInit(NIST_P224)
		}(i)
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		if got[i] != got[0] {
			t.Fatalf("goroutine %d saw a different handle", i)
		}
	}
}

// TestInitUnsupported verifies curves without parameters are rejected.
func TestInitUnsupported(t *testing.T) {
	for _, id := range []CurveID{BN381_1, BN462, CurveID(42)} {
		if _, err := Init(id); !errors.Is(err, ErrUnsupportedCurve) {
			t.Errorf("Init(%s) error = %v, want ErrUnsupportedCurve", id, err)
		}
	}
}

func TestParseCurveID(t *testing.T) {
	tests := []struct {
		in   string
		want CurveID
	}{
		{"BN254", BN254},
		{"bls12-381", BLS12_381},
		{" secp256k1 ", SECP256K1},
		{"nist_p192", NIST_P192},
		{"BN462", BN462},
	}
	for _, tt := range tests {
		got, err := ParseCurveID(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseCurveID(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseCurveID("curve25519"); !errors.Is(err, ErrUnsupportedCurve) {
		t.Fatalf("unknown name error = %v", err)
	}
	if s := CurveID(7).String(); s != "CurveID(7)" {
		t.Fatalf("unknown id String() = %q", s)
	}
}

// TestEngineAvailability verifies only pairing curves expose an engine.
func TestEngineAvailability(t *testing.T) {
	for _, id := range pairingCurves {
		c := mustCurve(t, id)
		if !c.HasPairing() {
			t.Fatalf("%s: HasPairing = false", id)
		}
		e, err := c.Engine()
		if err != nil || e.Curve() != c {
			t.Fatalf("%s: Engine() = %v, %v", id, e, err)
		}
	}
	for _, id := range plainCurves {
		c := mustCurve(t, id)
		if c.HasPairing() {
			t.Fatalf("%s: HasPairing = true", id)
		}
		if _, err := c.Engine(); !errors.Is(err, ErrNoPairing) {
			t.Fatalf("%s: Engine() error = %v, want ErrNoPairing", id, err)
		}
	}
}

// TestGeneratorOrder verifies r*G is the identity on every curve.
func TestGeneratorOrder(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		g := c.G1Generator()
		if !g.IsOnCurve() || !g.IsInSubgroup() {
			t.Fatalf("%s: generator fails validation", id)
		}
		rMinus1 := c.FrModulus()
		rMinus1.Sub(rMinus1, bigOne)
		if !g.MulBig(rMinus1).Equal(g.Neg()) {
			t.Fatalf("%s: (r-1)G != -G", id)
		}
	}
}

// TestModulusAccessorsCopy verifies callers cannot mutate curve constants.
func TestModulusAccessorsCopy(t *testing.T) {
	c := mustCurve(t, BN254)
	p := c.FpModulus()
	p.SetInt64(5)
	if c.FpModulus().Cmp(p) == 0 {
		t.Fatal("FpModulus returned the internal value")
	}
	if c.FpByteSize() != 32 || c.FrByteSize() != 32 {
		t.Fatalf("BN254 widths = %d/%d, want 32/32", c.FpByteSize(), c.FrByteSize())
	}
	bls := mustCurve(t, BLS12_381)
	if bls.FpByteSize() != 48 || bls.FrByteSize() != 32 {
		t.Fatalf("BLS12-381 widths = %d/%d, want 48/32", bls.FpByteSize(), bls.FrByteSize())
	}
}

// TestCurveMismatchPanics verifies arithmetic across curves is rejected.
func TestCurveMismatchPanics(t *testing.T) {
	bn := mustCurve(t, BN254)
	bls := mustCurve(t, BLS12_381)

	expectPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			r := recover()
			err, ok := r.(error)
			if !ok || !errors.Is(err, ErrCurveMismatch) {
				t.Errorf("%s: recovered %v, want ErrCurveMismatch", name, r)
			}
		}()
		fn()
	}
	expectPanic("Fr.Add", func() { bn.FrOne().Add(bls.FrOne()) })
	expectPanic("Fp.Mul", func() { bn.FpOne().Mul(bls.FpOne()) })
	expectPanic("G1.Add", func() { bn.G1Generator().Add(bls.G1Generator()) })
	expectPanic("G1.Mul", func() { bn.G1Generator().Mul(bls.NewFr(2)) })

	// Equality across curves is simply false.
	if bn.FrOne().Equal(bls.FrOne()) {
		t.Fatal("Fr values of different curves compare equal")
	}
}

// TestCurveIDs verifies the identifier list is sorted and complete.
func TestCurveIDs(t *testing.T) {
	ids := CurveIDs()
	if len(ids) < len(allCurves) {
		t.Fatalf("len(CurveIDs()) = %d, want at least %d", len(ids), len(allCurves))
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] >= ids[i] {
			t.Fatalf("CurveIDs not sorted at %d: %v", i, ids)
		}
	}
	for _, want := range allCurves {
		found := false
		for _, id := range ids {
			found = found || id == want
		}
		if !found {
			t.Fatalf("CurveIDs() missing %s", want)
		}
	}
}
