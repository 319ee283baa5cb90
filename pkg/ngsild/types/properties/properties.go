package properties

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/diwise/temporal-resampler/pkg/ngsild/types"
	"github.com/diwise/temporal-resampler/pkg/properties/value"
)

// NullValue is the NGSI-LD representation of an explicit null
const NullValue string = "urn:ngsi-ld:null"

const (
	ObservedAtAttribute string = "observedAt"
	InstanceIDAttribute string = "instanceId"
	UnitCodeAttribute   string = "unitCode"
	ValueTypeAttribute  string = "valueType"
)

// PropertyImpl contains the mandatory Type property and the metadata shared by all
// property types
type PropertyImpl struct {
	Type        string  `json:"type"`
	ObservedAt_ *string `json:"observedAt,omitempty"`
	InstanceID_ *string `json:"instanceId,omitempty"`
	UnitCode_   *string `json:"unitCode,omitempty"`
}

func (p *PropertyImpl) ObservedAt() string {
	if p.ObservedAt_ != nil {
		return *p.ObservedAt_
	}
	return ""
}

func (p *PropertyImpl) InstanceID() string {
	if p.InstanceID_ != nil {
		return *p.InstanceID_
	}
	return ""
}

func (p *PropertyImpl) UnitCode() string {
	if p.UnitCode_ != nil {
		return *p.UnitCode_
	}
	return ""
}

func (p *PropertyImpl) base() *PropertyImpl {
	return p
}

type decoratable interface {
	base() *PropertyImpl
}

type DecoratorFunc func(p *PropertyImpl)

func ObservedAt(timestamp string) DecoratorFunc {
	return func(p *PropertyImpl) {
		p.ObservedAt_ = &timestamp
	}
}

func InstanceID(id string) DecoratorFunc {
	return func(p *PropertyImpl) {
		p.InstanceID_ = &id
	}
}

func UnitCode(code string) DecoratorFunc {
	return func(p *PropertyImpl) {
		p.UnitCode_ = &code
	}
}

// Decorate applies decorators to any of the property types in this package
func Decorate(p types.Property, decorators ...DecoratorFunc) types.Property {
	if d, ok := p.(decoratable); ok {
		for _, decorator := range decorators {
			decorator(d.base())
		}
	}
	return p
}

// NumberProperty holds a float64 Value
type NumberProperty struct {
	PropertyImpl
	Val float64 `json:"value"`
}

func (np *NumberProperty) Type() string {
	return np.PropertyImpl.Type
}

func (np *NumberProperty) Value() any {
	return np.Val
}

// NewNumberProperty is a convenience function for creating NumberProperty instances
func NewNumberProperty(value float64) *NumberProperty {
	return &NumberProperty{
		PropertyImpl: PropertyImpl{Type: "Property"},
		Val:          value,
	}
}

// NewNumberPropertyFromString accepts a value as a string and returns a new NumberProperty
func NewNumberPropertyFromString(value string) (*NumberProperty, error) {
	number, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", value, err)
	}
	return NewNumberProperty(number), nil
}

// IntegerProperty holds an int64 Value. The valueType tells it apart from a number
// that happens to be integral.
type IntegerProperty struct {
	PropertyImpl
	Val       int64  `json:"value"`
	ValueType string `json:"valueType"`
}

func (ip *IntegerProperty) Type() string {
	return ip.PropertyImpl.Type
}

func (ip *IntegerProperty) Value() any {
	return ip.Val
}

func NewIntegerProperty(i int64) *IntegerProperty {
	return &IntegerProperty{
		PropertyImpl: PropertyImpl{Type: "Property"},
		Val:          i,
		ValueType:    value.KindInteger.String(),
	}
}

// TextProperty stores values of type text
type TextProperty struct {
	PropertyImpl
	Val string `json:"value"`
}

func (tp *TextProperty) Type() string {
	return tp.PropertyImpl.Type
}

func (tp *TextProperty) Value() any {
	return tp.Val
}

// NewTextProperty accepts a value as a string and returns a new TextProperty
func NewTextProperty(value string) *TextProperty {
	return &TextProperty{
		PropertyImpl: PropertyImpl{Type: "Property"},
		Val:          value,
	}
}

// DateTimeProperty stores date and time values (surprise, surprise ...)
type DateTimeProperty struct {
	PropertyImpl
	Val struct {
		Type  string `json:"@type"`
		Value string `json:"@value"`
	} `json:"value"`
}

func (dtp *DateTimeProperty) Type() string {
	return dtp.PropertyImpl.Type
}

func (dtp *DateTimeProperty) Value() any {
	return dtp.Val
}

// NewDateTimeProperty creates a property from a UTC time stamp
func NewDateTimeProperty(value string) *DateTimeProperty {
	dtp := &DateTimeProperty{
		PropertyImpl: PropertyImpl{Type: "Property"},
	}

	dtp.Val.Type = "DateTime"
	dtp.Val.Value = value

	return dtp
}

// NullProperty is an explicit null that remembers the type of value that was expected
type NullProperty struct {
	PropertyImpl
	Val       string `json:"value"`
	ValueType string `json:"valueType,omitempty"`
}

func (nlp *NullProperty) Type() string {
	return nlp.PropertyImpl.Type
}

func (nlp *NullProperty) Value() any {
	return nil
}

// ExpectedKind returns the kind named by the valueType, or value.KindUnknown
func (nlp *NullProperty) ExpectedKind() value.Kind {
	k, err := value.ParseKind(nlp.ValueType)
	if err != nil || k == value.KindNull {
		return value.KindUnknown
	}
	return k
}

func NewNullProperty(expected value.Kind) *NullProperty {
	np := &NullProperty{
		PropertyImpl: PropertyImpl{Type: "Property"},
		Val:          NullValue,
	}

	if expected != value.KindUnknown {
		np.ValueType = expected.String()
	}

	return np
}

// ToValue converts a property into a value of the declared kind. A declared kind of
// value.KindUnknown accepts whatever kind of value the property holds. Text is parsed
// when a number or timestamp is declared.
func ToValue(p types.Property, declared value.Kind) (value.Value, error) {
	switch prop := p.(type) {
	case *NumberProperty:
		switch declared {
		case value.KindUnknown, value.KindReal:
			return value.Real(prop.Val), nil
		case value.KindInteger:
			if prop.Val != math.Trunc(prop.Val) || math.Abs(prop.Val) >= math.MaxInt64 {
				return value.Value{}, fmt.Errorf("number %v is not an integer: %w", prop.Val, value.ErrKindMismatch)
			}
			return value.Integer(int64(prop.Val)), nil
		}
		return value.Value{}, value.KindMismatchError{Expected: declared, Actual: value.KindReal}
	case *IntegerProperty:
		switch declared {
		case value.KindUnknown, value.KindInteger:
			return value.Integer(prop.Val), nil
		case value.KindReal:
			return value.Real(float64(prop.Val)), nil
		}
		return value.Value{}, value.KindMismatchError{Expected: declared, Actual: value.KindInteger}
	case *TextProperty:
		switch declared {
		case value.KindUnknown, value.KindString:
			return value.String(prop.Val), nil
		}
		return value.Parse(declared, prop.Val)
	case *DateTimeProperty:
		if declared != value.KindUnknown && declared != value.KindTimestamp {
			return value.Value{}, value.KindMismatchError{Expected: declared, Actual: value.KindTimestamp}
		}
		ts, err := time.Parse(time.RFC3339Nano, prop.Val.Value)
		if err != nil {
			return value.Value{}, fmt.Errorf("datetime property has an invalid @value: %w", err)
		}
		return value.Timestamp(ts), nil
	case *NullProperty:
		if declared != value.KindUnknown {
			return value.Null(declared), nil
		}
		return value.Null(prop.ExpectedKind()), nil
	}

	return value.Value{}, fmt.Errorf("%w: property of type %T", value.ErrUnsupportedKind, p)
}

// FromValue creates the property that represents a value
func FromValue(v value.Value, decorators ...DecoratorFunc) (types.Property, error) {
	var p types.Property

	switch v.Kind() {
	case value.KindReal:
		f, _ := v.AsReal()
		p = NewNumberProperty(f)
	case value.KindInteger:
		i, _ := v.AsInteger()
		p = NewIntegerProperty(i)
	case value.KindString:
		s, _ := v.AsString()
		p = NewTextProperty(s)
	case value.KindTimestamp:
		ts, _ := v.AsTimestamp()
		p = NewDateTimeProperty(ts.UTC().Format(time.RFC3339Nano))
	case value.KindNull:
		p = NewNullProperty(v.ExpectedKind())
	default:
		return nil, fmt.Errorf("%w: %s", value.ErrUnsupportedKind, v.Kind())
	}

	return Decorate(p, decorators...), nil
}

func UnmarshalP(body map[string]any) (types.Property, error) {
	val, ok := body["value"]
	if !ok {
		return nil, fmt.Errorf("properties without a value attribute are not supported")
	}

	var p types.Property

	valueType, _ := body[ValueTypeAttribute].(string)
	integer := valueType == value.KindInteger.String()

	switch typedValue := val.(type) {
	case nil:
		np := NewNullProperty(value.KindUnknown)
		np.ValueType = valueType
		p = np
	case float64:
		if integer {
			if typedValue != math.Trunc(typedValue) || math.Abs(typedValue) >= math.MaxInt64 {
				return nil, fmt.Errorf("number %v is not an integer: %w", typedValue, value.ErrKindMismatch)
			}
			p = NewIntegerProperty(int64(typedValue))
		} else {
			p = NewNumberProperty(typedValue)
		}
	case json.Number:
		if integer {
			i, err := typedValue.Int64()
			if err != nil {
				return nil, fmt.Errorf("number %s is not an integer: %w", typedValue, value.ErrKindMismatch)
			}
			p = NewIntegerProperty(i)
		} else {
			f, err := typedValue.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number %s: %w", typedValue, err)
			}
			p = NewNumberProperty(f)
		}
	case string:
		if typedValue == NullValue {
			np := NewNullProperty(value.KindUnknown)
			np.ValueType = valueType
			p = np
		} else {
			p = NewTextProperty(sanitizeString(typedValue))
		}
	case map[string]any:
		dtp, err := unmarshalPropertyObject(typedValue)
		if err != nil {
			return nil, err
		}
		p = dtp
	default:
		return nil, fmt.Errorf("property values of type %T are not supported", typedValue)
	}

	decorators := []DecoratorFunc{}

	if observedAt, ok := body[ObservedAtAttribute].(string); ok {
		decorators = append(decorators, ObservedAt(observedAt))
	}
	if instanceID, ok := body[InstanceIDAttribute].(string); ok {
		decorators = append(decorators, InstanceID(instanceID))
	}
	if unitCode, ok := body[UnitCodeAttribute].(string); ok {
		decorators = append(decorators, UnitCode(unitCode))
	}

	return Decorate(p, decorators...), nil
}

func sanitizeString(input string) string {
	if len(input) >= 6 {
		for runeIdx, stopIdx := 0, len(input)-6; runeIdx <= stopIdx; runeIdx++ {
			if input[runeIdx] == '\\' {
				if input[runeIdx+1] == 'u' {
					r, err := strconv.ParseInt(input[runeIdx+2:runeIdx+6], 16, 32)
					if err != nil {
						continue
					}

					return input[:runeIdx] + string(rune(r)) + sanitizeString(input[runeIdx+6:])
				}
			}
		}
	}

	return input
}

func unmarshalPropertyObject(object map[string]any) (*DateTimeProperty, error) {
	objectType, ok := object["@type"]
	if !ok {
		return nil, fmt.Errorf("property objects without a @type attribute are not supported")
	}

	objectValue, ok := object["@value"]
	if !ok {
		return nil, fmt.Errorf("property objects without a @value attribute are not supported")
	}

	objectTypeStr, ok := objectType.(string)
	if !ok {
		return nil, fmt.Errorf("property object @type not convertible to string")
	}

	switch objectTypeStr {
	case "DateTime":
		dateTimeStr, ok := objectValue.(string)
		if !ok {
			return nil, fmt.Errorf("datetime property @value not convertible to string")
		}
		return NewDateTimeProperty(dateTimeStr), nil
	default:
		return nil, fmt.Errorf("property object of type %s not supported", objectTypeStr)
	}
}
