package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Parse constructs a value of the declared kind from its textual representation.
// An empty (or all whitespace) input is a null of the declared kind.
func Parse(kind Kind, raw string) (Value, error) {
	raw = strings.TrimSpace(raw)

	if raw == "" {
		return Null(kind), nil
	}

	switch kind {
	case KindReal:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse %q as %s: %w", raw, kind, err)
		}
		return Real(f), nil
	case KindInteger:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse %q as %s: %w", raw, kind, err)
		}
		return Integer(i), nil
	case KindString:
		return String(raw), nil
	case KindTimestamp:
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return Value{}, fmt.Errorf("failed to parse %q as %s: %w", raw, kind, err)
		}
		return Timestamp(ts), nil
	}

	return Value{}, fmt.Errorf("%w: cannot parse values of kind %s", ErrUnsupportedKind, kind)
}
