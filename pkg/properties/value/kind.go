package value

import "fmt"

// Kind identifies which payload a Value holds
type Kind int

const (
	KindUnknown Kind = iota
	KindReal
	KindString
	KindTimestamp
	KindInteger
	KindNull
)

// String returns the display name of the kind
func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "unknown"
	case KindReal:
		return "real"
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindInteger:
		return "integer"
	case KindNull:
		return "null"
	default:
		return "unsupported"
	}
}

// ParseKind is the inverse of Kind.String for the kinds a value can be declared as
func ParseKind(name string) (Kind, error) {
	switch name {
	case "real":
		return KindReal, nil
	case "string":
		return KindString, nil
	case "timestamp":
		return KindTimestamp, nil
	case "integer":
		return KindInteger, nil
	case "null":
		return KindNull, nil
	case "unknown", "":
		return KindUnknown, nil
	}

	return KindUnknown, fmt.Errorf("%w: %q", ErrUnsupportedKind, name)
}

func (k Kind) valid() bool {
	return k >= KindReal && k <= KindNull
}
