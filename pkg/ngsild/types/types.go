package types

// Property is implemented by all NGSI-LD property types
type Property interface {
	Type() string
	Value() any
}
