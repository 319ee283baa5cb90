package trajectory

import (
	"fmt"
	"maps"
	"slices"

	"github.com/diwise/temporal-resampler/pkg/properties/value"
)

// Properties maps property names to the values attached to a point
type Properties map[string]value.Value

func (p Properties) Clone() Properties {
	return maps.Clone(p)
}

// Names returns the property names in sorted order
func (p Properties) Names() []string {
	return slices.Sorted(maps.Keys(p))
}

type blendFunc func(first, second value.Value, t float64) (value.Value, error)

// InterpolateProperties blends every property found in first or second. A property
// that is only present on one side is blended against a null of the same kind.
func InterpolateProperties(first, second Properties, t float64) (Properties, error) {
	return combine(first, second, t, value.Interpolate)
}

// ExtrapolateProperties projects every property found in first or second. Since
// nulls can not be extrapolated, both sides must carry a value for each property.
func ExtrapolateProperties(first, second Properties, t float64) (Properties, error) {
	return combine(first, second, t, value.Extrapolate)
}

func combine(first, second Properties, t float64, blend blendFunc) (Properties, error) {
	names := map[string]struct{}{}
	for name := range first {
		names[name] = struct{}{}
	}
	for name := range second {
		names[name] = struct{}{}
	}

	result := make(Properties, len(names))

	// sorted so that the first failing property is the same on every run
	for _, name := range slices.Sorted(maps.Keys(names)) {
		a, inFirst := first[name]
		b, inSecond := second[name]

		if !inFirst {
			a = value.Null(b.ExpectedKind())
		}
		if !inSecond {
			b = value.Null(a.ExpectedKind())
		}

		v, err := blend(a, b, t)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", name, err)
		}

		result[name] = v
	}

	return result, nil
}
