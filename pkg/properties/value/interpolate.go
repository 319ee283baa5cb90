package value

import (
	"math"
	"math/big"
	"time"
)

// Interpolate blends first and second at the fraction t, where 0 yields first and
// 1 yields second. Values outside [0, 1] are clamped to the closest end point.
//
// Reals and integers are blended linearly as first + t*(second-first). Integers are
// computed exactly and rounded half away from zero. Strings are held: first is returned
// below 0.5 and second from 0.5 on. Timestamps advance by the scaled duration between
// them, rounded to whole microseconds. Equal operands blend to themselves.
//
// A null on either side is never blended. The null is returned on its own side of
// 0.5 and the other value on the other side.
func Interpolate(first, second Value, t float64) (Value, error) {
	if math.IsNaN(t) {
		return Value{}, newInvalidInterpolantError(t)
	}

	if t <= 0 {
		return first, nil
	}

	if t >= 1 {
		return second, nil
	}

	if first.IsNull() || second.IsNull() {
		return hold(first, second, t), nil
	}

	return blend(first, second, t)
}

// Extrapolate applies the same rules as Interpolate for any finite t, projecting
// beyond the segment between first and second. There is no clamping, and nulls are
// rejected since there is nothing to project from.
func Extrapolate(first, second Value, t float64) (Value, error) {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return Value{}, newInvalidInterpolantError(t)
	}

	if first.IsNull() {
		return Value{}, newKindMismatchError(expectedFor(first, second), KindNull)
	}

	if second.IsNull() {
		return Value{}, newKindMismatchError(expectedFor(second, first), KindNull)
	}

	return blend(first, second, t)
}

// expectedFor names the kind a null operand should have had
func expectedFor(null, other Value) Kind {
	if k := null.ExpectedKind(); k.valid() && k != KindNull {
		return k
	}
	return other.ExpectedKind()
}

func hold(first, second Value, t float64) Value {
	if t < 0.5 {
		return first
	}
	return second
}

func blend(first, second Value, t float64) (Value, error) {
	kind := first.Kind()

	if !kind.valid() {
		return Value{}, ErrUnsupportedKind
	}

	if second.Kind() != kind {
		return Value{}, newKindMismatchError(kind, second.Kind())
	}

	switch kind {
	case KindReal:
		if first.real == second.real {
			return first, nil
		}
		return Real(first.real + t*(second.real-first.real)), nil
	case KindInteger:
		if first.integer == second.integer {
			return first, nil
		}
		return blendIntegers(first.integer, second.integer, t)
	case KindString:
		return hold(first, second, t), nil
	case KindTimestamp:
		if first.ts.Equal(second.ts) {
			return first, nil
		}
		return blendTimestamps(first.ts, second.ts, t)
	case KindNull:
		return hold(first, second, t), nil
	}

	return Value{}, ErrUnsupportedKind
}

// unixToInternal is the number of seconds between year 1 and 1970
const unixToInternal int64 = 62135596800

func blendIntegers(a, b int64, t float64) (Value, error) {
	frac := new(big.Rat)
	if frac.SetFloat64(t) == nil {
		return Value{}, newInvalidInterpolantError(t)
	}

	blended := new(big.Rat).SetInt(new(big.Int).Sub(big.NewInt(b), big.NewInt(a)))
	blended.Mul(blended, frac)
	blended.Add(blended, new(big.Rat).SetInt64(a))

	rounded := roundHalfAwayFromZero(blended)
	if !rounded.IsInt64() {
		return Value{}, newOutOfRangeError(KindInteger, t)
	}

	return Integer(rounded.Int64()), nil
}

func blendTimestamps(a, b time.Time, t float64) (Value, error) {
	frac := new(big.Rat)
	if frac.SetFloat64(t) == nil {
		return Value{}, newInvalidInterpolantError(t)
	}

	start := unixNanos(a)

	micros := new(big.Rat).SetInt(new(big.Int).Sub(unixNanos(b), start))
	micros.Mul(micros, frac)
	micros.Quo(micros, big.NewRat(int64(time.Microsecond), 1))

	nanos := roundHalfAwayFromZero(micros)
	nanos.Mul(nanos, big.NewInt(int64(time.Microsecond)))
	nanos.Add(nanos, start)

	sec, nsec := new(big.Int).DivMod(nanos, big.NewInt(int64(time.Second)), new(big.Int))
	if !sec.IsInt64() || sec.Int64() > math.MaxInt64-unixToInternal {
		return Value{}, newOutOfRangeError(KindTimestamp, t)
	}

	return Timestamp(time.Unix(sec.Int64(), nsec.Int64()).In(a.Location())), nil
}

func unixNanos(ts time.Time) *big.Int {
	nanos := new(big.Int).Mul(big.NewInt(ts.Unix()), big.NewInt(int64(time.Second)))
	return nanos.Add(nanos, big.NewInt(int64(ts.Nanosecond())))
}

func roundHalfAwayFromZero(r *big.Rat) *big.Int {
	quo, rem := new(big.Int).QuoRem(new(big.Int).Abs(r.Num()), r.Denom(), new(big.Int))

	if rem.Lsh(rem, 1).Cmp(r.Denom()) >= 0 {
		quo.Add(quo, big.NewInt(1))
	}

	if r.Sign() < 0 {
		quo.Neg(quo)
	}

	return quo
}
