package crypto

import "errors"

// Errors returned by the pairing engine. Callers match them with errors.Is;
// most call sites wrap them with additional context.
var (
	// ErrUnsupportedCurve is returned by Init for identifiers without
	// parameters in this build.
	ErrUnsupportedCurve = errors.New("crypto: unsupported curve")

	// ErrMalformedInput is returned by string parsers and deserializers.
	ErrMalformedInput = errors.New("crypto: malformed input")

	// ErrNotInvertible is returned when inverting or dividing by zero.
	ErrNotInvertible = errors.New("crypto: element not invertible")

	// ErrDivisionByZero is the same condition seen from Div.
	ErrDivisionByZero = ErrNotInvertible

	// ErrUseAfterRelease is returned when a released precomputed table is
	// used for a Miller loop.
	ErrUseAfterRelease = errors.New("crypto: precomputed table used after release")

	// ErrCurveMismatch reports values created by different curve handles.
	ErrCurveMismatch = errors.New("crypto: values belong to different curves")

	// ErrNoPairing is returned when pairing-only functionality is requested
	// on a plain curve.
	ErrNoPairing = errors.New("crypto: curve has no pairing")

	// ErrUnbound is returned when decoding into a zero value that was never
	// created by a curve handle.
	ErrUnbound = errors.New("crypto: value not bound to a curve")
)
