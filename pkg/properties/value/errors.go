package value

import "fmt"

var ErrKindMismatch = fmt.Errorf("kind mismatch")
var ErrUnsupportedKind = fmt.Errorf("unsupported kind")
var ErrInvalidInterpolant = fmt.Errorf("invalid interpolant")
var ErrOutOfRange = fmt.Errorf("out of range")

// KindMismatchError is returned when a value of one kind is used where another was expected
type KindMismatchError struct {
	Expected Kind
	Actual   Kind
}

func (e KindMismatchError) Error() string {
	return fmt.Sprintf("kind mismatch: expected %s, got %s", e.Expected, e.Actual)
}

func (e KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }

func newKindMismatchError(expected, actual Kind) error {
	return KindMismatchError{Expected: expected, Actual: actual}
}

func newInvalidInterpolantError(t float64) error {
	return fmt.Errorf("%w: %v", ErrInvalidInterpolant, t)
}

func newOutOfRangeError(k Kind, t float64) error {
	return fmt.Errorf("%w: %s blended at %v", ErrOutOfRange, k, t)
}
