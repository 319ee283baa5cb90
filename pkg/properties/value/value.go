// Package value contains the typed property values that are attached to the
// points of a trajectory, and the rules for blending two of them into a new one.
package value

import (
	"strconv"
	"time"
)

// TimestampLayout is used when rendering timestamps for diagnostics
const TimestampLayout string = "2006-01-02T15:04:05.999999Z07:00"

// Value holds exactly one of a real, an integer, a string, a timestamp or a null
// that remembers the kind that was expected in its place. The zero Value is not a
// valid value and classifies as KindUnknown.
type Value struct {
	kind Kind

	real     float64
	integer  int64
	text     string
	ts       time.Time
	expected Kind
}

func Real(f float64) Value {
	return Value{kind: KindReal, real: f}
}

func Integer(i int64) Value {
	return Value{kind: KindInteger, integer: i}
}

func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Timestamp creates a timestamp value. Any monotonic clock reading is stripped.
func Timestamp(t time.Time) Value {
	return Value{kind: KindTimestamp, ts: t.Round(0)}
}

// Null creates a placeholder for a missing value of the expected kind
func Null(expected Kind) Value {
	return Value{kind: KindNull, expected: expected}
}

// Kind classifies the value
func (v Value) Kind() Kind {
	switch v.kind {
	case KindReal, KindString, KindTimestamp, KindInteger, KindNull:
		return v.kind
	default:
		return KindUnknown
	}
}

func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// ExpectedKind returns the kind a null stands in for. For any other value it is the
// value's own kind.
func (v Value) ExpectedKind() Kind {
	if v.IsNull() {
		return v.expected
	}
	return v.Kind()
}

func (v Value) AsReal() (float64, error) {
	if err := v.mustBe(KindReal); err != nil {
		return 0, err
	}
	return v.real, nil
}

func (v Value) AsInteger() (int64, error) {
	if err := v.mustBe(KindInteger); err != nil {
		return 0, err
	}
	return v.integer, nil
}

func (v Value) AsString() (string, error) {
	if err := v.mustBe(KindString); err != nil {
		return "", err
	}
	return v.text, nil
}

func (v Value) AsTimestamp() (time.Time, error) {
	if err := v.mustBe(KindTimestamp); err != nil {
		return time.Time{}, err
	}
	return v.ts, nil
}

func (v Value) mustBe(k Kind) error {
	if actual := v.Kind(); actual != k {
		return newKindMismatchError(k, actual)
	}
	return nil
}

// Equal reports whether both values are of the same kind and carry the same payload.
// Timestamps are compared as instants, nulls by their expected kind.
func (v Value) Equal(other Value) bool {
	if v.Kind() != other.Kind() {
		return false
	}

	switch v.Kind() {
	case KindReal:
		return v.real == other.real
	case KindInteger:
		return v.integer == other.integer
	case KindString:
		return v.text == other.text
	case KindTimestamp:
		return v.ts.Equal(other.ts)
	case KindNull:
		return v.expected == other.expected
	default:
		return true
	}
}

// String renders the value for humans. The result is not meant to be parsed.
func (v Value) String() string {
	switch v.Kind() {
	case KindReal:
		return strconv.FormatFloat(v.real, 'g', -1, 64)
	case KindInteger:
		return strconv.FormatInt(v.integer, 10)
	case KindString:
		return v.text
	case KindTimestamp:
		return v.ts.UTC().Format(TimestampLayout)
	case KindNull:
		return "(null " + v.expected.String() + ")"
	default:
		return "(" + KindUnknown.String() + ")"
	}
}
