package trajectory

import (
	"time"

	"github.com/diwise/temporal-resampler/pkg/properties/value"
)

// Schema declares the expected kind of named properties
type Schema map[string]value.Kind

// KindOf returns the declared kind of a property, or value.KindUnknown
func (s Schema) KindOf(name string) value.Kind {
	if k, ok := s[name]; ok {
		return k
	}
	return value.KindUnknown
}

// Observation is a single value of a named property, observed at a point in time
type Observation struct {
	Name       string
	ObservedAt time.Time
	Value      value.Value
}

// FromObservations groups observations into points, one per distinct observation time.
// Properties that were not observed at a certain time are set to a null of the kind
// declared in the schema, or else the kind of the first value observed for that name.
// If a property is observed more than once at the same time the last one wins.
func FromObservations(objectID string, schema Schema, observations ...Observation) Trajectory {
	expected := map[string]value.Kind{}

	for _, o := range observations {
		k, seen := expected[o.Name]
		if seen && k != value.KindUnknown {
			continue
		}

		if declared := schema.KindOf(o.Name); declared != value.KindUnknown {
			expected[o.Name] = declared
		} else if !o.Value.IsNull() || !seen {
			expected[o.Name] = o.Value.ExpectedKind()
		}
	}

	points := []Point{}
	pointIndex := map[time.Time]int{}

	for _, o := range observations {
		key := o.ObservedAt.UTC().Round(0)

		idx, ok := pointIndex[key]
		if !ok {
			idx = len(points)
			pointIndex[key] = idx
			points = append(points, Point{Timestamp: o.ObservedAt, Properties: Properties{}})
		}

		v := o.Value
		if v.IsNull() && v.ExpectedKind() == value.KindUnknown {
			v = value.Null(expected[o.Name])
		}

		points[idx].Properties[o.Name] = v
	}

	for _, p := range points {
		for name, kind := range expected {
			if _, ok := p.Properties[name]; !ok {
				p.Properties[name] = value.Null(kind)
			}
		}
	}

	return New(objectID, points...)
}
