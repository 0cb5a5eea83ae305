package crypto

import (
	"bytes"
	"errors"
	"math/big"
	"strings"
	"testing"
)

// TestFrArithmetic verifies the field laws on small values for every curve.
func TestFrArithmetic(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		a, b := c.NewFr(7), c.NewFr(-3)

		if got := a.Add(b); !got.Equal(c.NewFr(4)) {
			t.Fatalf("%s: 7 + (-3) = %s", id, got)
		}
		if got := a.Sub(b); !got.Equal(c.NewFr(10)) {
			t.Fatalf("%s: 7 - (-3) = %s", id, got)
		}
		if got := a.Mul(b); !got.Equal(c.NewFr(-21)) {
			t.Fatalf("%s: 7 * (-3) = %s", id, got)
		}
		if got := a.Sqr(); !got.Equal(c.NewFr(49)) {
			t.Fatalf("%s: 7^2 = %s", id, got)
		}
		if !a.Add(a.Neg()).IsZero() {
			t.Fatalf("%s: a + (-a) != 0", id)
		}
		inv, err := a.Inv()
		if err != nil {
			t.Fatalf("%s: Inv: %v", id, err)
		}
		if !a.Mul(inv).IsOne() {
			t.Fatalf("%s: a * a^-1 != 1", id)
		}
		q, err := c.NewFr(21).Div(a)
		if err != nil || !q.Equal(c.NewFr(3)) {
			t.Fatalf("%s: 21 / 7 = %v, %v", id, q, err)
		}
		if got := c.NewFr(2).Exp(big.NewInt(10)); !got.Equal(c.NewFr(1024)) {
			t.Fatalf("%s: 2^10 = %s", id, got)
		}
		// -1 is r-1.
		want := c.FrModulus()
		want.Sub(want, bigOne)
		if c.NewFr(-1).BigInt().Cmp(want) != 0 {
			t.Fatalf("%s: -1 = %s, want %s", id, c.NewFr(-1), want)
		}
	}
}

// TestInvZero verifies zero has no inverse in either field.
func TestInvZero(t *testing.T) {
	c := mustCurve(t, BN254)
	if _, err := c.FrZero().Inv(); !errors.Is(err, ErrNotInvertible) {
		t.Fatalf("Fr Inv(0) error = %v", err)
	}
	if _, err := c.FrOne().Div(c.FrZero()); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("Fr Div by 0 error = %v", err)
	}
	if _, err := c.FpZero().Inv(); !errors.Is(err, ErrNotInvertible) {
		t.Fatalf("Fp Inv(0) error = %v", err)
	}
	if _, err := c.FpOne().Div(c.FpZero()); !errors.Is(err, ErrDivisionByZero) {
		t.Fatalf("Fp Div by 0 error = %v", err)
	}
}

// TestFromString covers radix detection, signs and range checks.
func TestFromString(t *testing.T) {
	c := mustCurve(t, BN254)
	tests := []struct {
		in    string
		radix int
		want  int64
	}{
		{"123", 0, 123},
		{"0x1f", 0, 31},
		{"0X1F", 0, 31},
		{"1f", 16, 31},
		{"0x1f", 16, 31},
		{"123", 10, 123},
		{"+5", 10, 5},
		{"-5", 10, -5},
		{"-0x10", 0, -16},
		{"101", 2, 5},
		{"z", 36, 35},
		{"  42 ", 0, 42},
	}
	for _, tt := range tests {
		got, err := c.FrFromString(tt.in, tt.radix)
		if err != nil {
			t.Errorf("FrFromString(%q, %d): %v", tt.in, tt.radix, err)
			continue
		}
		if !got.Equal(c.NewFr(tt.want)) {
			t.Errorf("FrFromString(%q, %d) = %s, want %d", tt.in, tt.radix, got, tt.want)
		}
	}

	bad := []struct {
		in    string
		radix int
	}{
		{"", 0},
		{"-", 10},
		{"12a", 10},
		{"0x", 0},
		{"--5", 10},
		{"1_000", 10},
		{"5", 1},
		{"5", 37},
		{c.FrModulus().String(), 10},
	}
	for _, tt := range bad {
		if _, err := c.FrFromString(tt.in, tt.radix); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("FrFromString(%q, %d) error = %v, want ErrMalformedInput", tt.in, tt.radix, err)
		}
	}
	if _, err := c.FpFromString(c.FpModulus().Text(16), 16); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("FpFromString(p) error = %v", err)
	}
	maxFp := c.FpModulus()
	maxFp.Sub(maxFp, bigOne)
	if v, err := c.FpFromString(maxFp.String(), 10); err != nil || v.BigInt().Cmp(maxFp) != 0 {
		t.Fatalf("FpFromString(p-1) = %v, %v", v, err)
	}
}

// TestFrParsedPlusNegative adds and subtracts a negative int64 from a parsed
// decimal on both pairing curves.
func TestFrParsedPlusNegative(t *testing.T) {
	for _, id := range pairingCurves {
		c := mustCurve(t, id)
		a, err := c.FrFromString("1000000000020", 10)
		if err != nil {
			t.Fatalf("%s: FrFromString: %v", id, err)
		}
		b := c.NewFr(-15)
		want := c.FrModulus()
		want.Sub(want, big.NewInt(15))
		if b.BigInt().Cmp(want) != 0 {
			t.Fatalf("%s: NewFr(-15) = %s, want r-15", id, b)
		}
		if got := a.Add(b).String(); got != "1000000000005" {
			t.Fatalf("%s: a + b = %s, want 1000000000005", id, got)
		}
		if got := a.Sub(b).String(); got != "1000000000035" {
			t.Fatalf("%s: a - b = %s, want 1000000000035", id, got)
		}
	}
}

// TestTextRoundTrip verifies Text output parses back in the same radix.
func TestTextRoundTrip(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		x, err := c.RandomFp()
		if err != nil {
			t.Fatal(err)
		}
		for _, radix := range []int{2, 10, 16, 36} {
			y, err := c.FpFromString(x.Text(radix), radix)
			if err != nil || !y.Equal(x) {
				t.Fatalf("%s radix %d: round trip = %v, %v", id, radix, y, err)
			}
		}
		if x.String() != x.Text(10) {
			t.Fatalf("%s: String() != Text(10)", id)
		}
	}
}

// TestFieldSerialize checks width, byte order and the three hex paths.
func TestFieldSerialize(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)

		one := c.FrOne().Serialize()
		if len(one) != c.FrByteSize() || one[0] != 1 || !allZero(one[1:]) {
			t.Fatalf("%s: Serialize(1) = %x, want little-endian 1", id, one)
		}

		x, err := c.RandomFr()
		if err != nil {
			t.Fatal(err)
		}
		b := x.Serialize()
		y, err := c.DeserializeFr(b)
		if err != nil || !y.Equal(x) {
			t.Fatalf("%s: Deserialize(Serialize(x)) = %v, %v", id, y, err)
		}
		h := x.SerializeToHexStr()
		if h != strings.ToLower(h) {
			t.Fatalf("%s: hex not lowercase: %s", id, h)
		}
		z, err := c.DeserializeFrHexStr(h)
		if err != nil || !z.Equal(x) {
			t.Fatalf("%s: DeserializeFrHexStr = %v, %v", id, z, err)
		}
		w := c.FrZero()
		text, _ := x.MarshalText()
		if err := w.UnmarshalText(text); err != nil || !w.Equal(x) {
			t.Fatalf("%s: UnmarshalText = %v, %v", id, w, err)
		}

		fp, err := c.RandomFp()
		if err != nil {
			t.Fatal(err)
		}
		fb, _ := fp.MarshalBinary()
		if len(fb) != c.FpByteSize() {
			t.Fatalf("%s: Fp width %d, want %d", id, len(fb), c.FpByteSize())
		}
		fq := c.FpZero()
		if err := fq.UnmarshalBinary(fb); err != nil || !fq.Equal(fp) {
			t.Fatalf("%s: Fp UnmarshalBinary = %v, %v", id, fq, err)
		}
	}
}

// TestFieldDeserializeRejects covers wrong lengths, values >= modulus and
// unbound receivers.
func TestFieldDeserializeRejects(t *testing.T) {
	c := mustCurve(t, BN254)
	if _, err := c.DeserializeFr(make([]byte, 31)); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("short input error = %v", err)
	}
	if _, err := c.DeserializeFp(make([]byte, 33)); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("long input error = %v", err)
	}
	// The modulus itself is not canonical.
	r := c.FrModulus().FillBytes(make([]byte, 32))
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	if _, err := c.DeserializeFr(r); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("Deserialize(r) error = %v", err)
	}
	if _, err := c.DeserializeFpHexStr("zz"); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("bad hex error = %v", err)
	}

	var unbound Fr
	if err := unbound.UnmarshalBinary(make([]byte, 32)); !errors.Is(err, ErrUnbound) {
		t.Fatalf("unbound UnmarshalBinary error = %v", err)
	}
	var unboundFp Fp
	if err := unboundFp.UnmarshalText([]byte("00")); !errors.Is(err, ErrUnbound) {
		t.Fatalf("unbound UnmarshalText error = %v", err)
	}
}

// TestFromLittleEndian verifies masking keeps every byte but the top one.
func TestFromLittleEndian(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		n := c.FrByteSize()
		buf := make([]byte, n)
		for i := range buf {
			buf[i] = byte(0xa5 + i)
		}
		buf[n-1] = 0xff

		x := c.FrFromLittleEndian(buf)
		if x.BigInt().Cmp(c.FrModulus()) >= 0 {
			t.Fatalf("%s: masked value not below r", id)
		}
		out := x.Serialize()
		if !bytes.Equal(out[:n-1], buf[:n-1]) {
			t.Fatalf("%s: low bytes changed: %x vs %x", id, out[:n-1], buf[:n-1])
		}
		if out[n-1] == buf[n-1] {
			t.Fatalf("%s: top byte 0xff survived masking", id)
		}

		// Extra input beyond the width is ignored.
		long := append(append([]byte{}, buf...), 0x01, 0x02)
		if !c.FrFromLittleEndian(long).Equal(x) {
			t.Fatalf("%s: trailing bytes changed the result", id)
		}
	}
}

// TestFromLittleEndianMod verifies full reduction of oversized input.
func TestFromLittleEndianMod(t *testing.T) {
	c := mustCurve(t, BLS12_381)
	buf := bytes.Repeat([]byte{0xff}, 64)
	got := c.FrFromLittleEndianMod(buf)

	v := new(big.Int).Lsh(bigOne, 512)
	v.Sub(v, bigOne)
	v.Mod(v, c.FrModulus())
	if got.BigInt().Cmp(v) != 0 {
		t.Fatalf("FrFromLittleEndianMod = %s, want %s", got, v)
	}
	if !c.FpFromLittleEndianMod([]byte{3}).Equal(c.NewFp(3)) {
		t.Fatal("FpFromLittleEndianMod(3) != 3")
	}
}

// TestHashToField verifies determinism and separation between Fr and Fp.
func TestHashToField(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		a := c.HashToFr([]byte("abc"))
		b := c.HashToFr([]byte("abc"))
		if !a.Equal(b) {
			t.Fatalf("%s: HashToFr not deterministic", id)
		}
		if a.Equal(c.HashToFr([]byte("abd"))) {
			t.Fatalf("%s: HashToFr collision on neighbouring inputs", id)
		}
		if c.HashToFp([]byte("abc")).BigInt().Cmp(a.BigInt()) == 0 {
			t.Fatalf("%s: Fp and Fr hashes share a domain", id)
		}
	}
}

// TestFpSqrt verifies square roots of squares and rejection of non-residues.
func TestFpSqrt(t *testing.T) {
	for _, id := range allCurves {
		c := mustCurve(t, id)
		x, err := c.RandomFp()
		if err != nil {
			t.Fatal(err)
		}
		sq := x.Sqr()
		r, ok := sq.Sqrt()
		if !ok || !r.Sqr().Equal(sq) {
			t.Fatalf("%s: Sqrt(x^2) failed", id)
		}
		// Find a non-residue among small integers.
		for i := int64(2); i < 100; i++ {
			v := c.NewFp(i)
			if _, ok := v.Sqrt(); !ok {
				if big.Jacobi(v.BigInt(), c.FpModulus()) != -1 {
					t.Fatalf("%s: Sqrt(%d) failed on a residue", id, i)
				}
				break
			}
		}
	}
}

// TestRandomFresh verifies sampling is never memoized.
func TestRandomFresh(t *testing.T) {
	c := mustCurve(t, BN254)
	a, err := c.RandomFr()
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.RandomFr()
	if err != nil {
		t.Fatal(err)
	}
	if a.Equal(b) {
		t.Fatal("two RandomFr calls returned the same scalar")
	}
}
