package temporal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/diwise/temporal-resampler/pkg/ngsild/types"
	"github.com/diwise/temporal-resampler/pkg/ngsild/types/properties"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
	"github.com/google/uuid"
)

const DefaultContextURL string = "https://raw.githubusercontent.com/diwise/context-broker/main/assets/jsonldcontexts/default-context.jsonld"

// EntityTemporal is the temporal representation of an entity, where each attribute
// holds all the instances of a property that were observed over time
type EntityTemporal struct {
	ID         string
	Type       string
	Context    []string
	Attributes map[string][]types.Property
}

func NewFromJSON(body []byte) (*EntityTemporal, error) {
	e := &EntityTemporal{}
	err := json.Unmarshal(body, e)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal temporal entity: %w", err)
	}

	if e.ID == "" || e.Type == "" {
		return nil, fmt.Errorf("failed to parse temporal entity: id and type are mandatory")
	}

	return e, nil
}

func (e *EntityTemporal) MarshalJSON() ([]byte, error) {
	contents := map[string]any{
		"id":   e.ID,
		"type": e.Type,
	}

	for name, instances := range e.Attributes {
		contents[name] = instances
	}

	if len(e.Context) > 0 {
		contents["@context"] = e.Context
	} else {
		contents["@context"] = []string{DefaultContextURL}
	}

	return json.Marshal(&contents)
}

func (e *EntityTemporal) UnmarshalJSON(data []byte) error {
	contents := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &contents); err != nil {
		return err
	}

	header := struct {
		ID      string          `json:"id"`
		Type    string          `json:"type"`
		Context json.RawMessage `json:"@context"`
	}{}

	if err := json.Unmarshal(data, &header); err != nil {
		return err
	}

	// Delete the properties we have already dealt with
	delete(contents, "id")
	delete(contents, "type")
	delete(contents, "@context")

	e.ID = header.ID
	e.Type = header.Type
	e.Context = []string{}

	if len(header.Context) > 0 {
		var single string
		if err := json.Unmarshal(header.Context, &single); err == nil {
			e.Context = []string{single}
		} else if err := json.Unmarshal(header.Context, &e.Context); err != nil {
			return fmt.Errorf("unsupported context: %s", string(header.Context))
		}
	}

	e.Attributes = map[string][]types.Property{}

	for name, raw := range contents {
		objects := []map[string]any{}

		if err := decodeNumbers(raw, &objects); err != nil {
			object := map[string]any{}
			if err := decodeNumbers(raw, &object); err != nil {
				continue
			}
			objects = append(objects, object)
		}

		for _, obj := range objects {
			if objType, _ := obj["type"].(string); objType != "Property" {
				continue
			}

			p, err := properties.UnmarshalP(obj)
			if err != nil {
				return fmt.Errorf("attribute %s: %w", name, err)
			}

			e.Attributes[name] = append(e.Attributes[name], p)
		}
	}

	return nil
}

// decodeNumbers keeps numbers as json.Number so that integers are not rounded to float64
func decodeNumbers(raw []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

type observed interface {
	ObservedAt() string
}

// Trajectory converts the attribute instances into a trajectory with one point per
// distinct observation time. Instances are converted to the kinds declared in schema.
func (e *EntityTemporal) Trajectory(schema trajectory.Schema) (trajectory.Trajectory, error) {
	observations := []trajectory.Observation{}

	for name, instances := range e.Attributes {
		for _, p := range instances {
			o, ok := p.(observed)
			if !ok || o.ObservedAt() == "" {
				return trajectory.Trajectory{}, fmt.Errorf("attribute %s: instance without observedAt", name)
			}

			observedAt, err := time.Parse(time.RFC3339Nano, o.ObservedAt())
			if err != nil {
				return trajectory.Trajectory{}, fmt.Errorf("attribute %s: invalid observedAt: %w", name, err)
			}

			v, err := properties.ToValue(p, schema.KindOf(name))
			if err != nil {
				return trajectory.Trajectory{}, fmt.Errorf("property %q: %w", name, err)
			}

			observations = append(observations, trajectory.Observation{
				Name:       name,
				ObservedAt: observedAt,
				Value:      v,
			})
		}
	}

	return trajectory.FromObservations(e.ID, schema, observations...), nil
}

// FromTrajectory creates the temporal representation of a trajectory. Every created
// attribute instance is given a new instance id.
func FromTrajectory(entityType string, context []string, tr trajectory.Trajectory) (*EntityTemporal, error) {
	e := &EntityTemporal{
		ID:         tr.ObjectID,
		Type:       entityType,
		Context:    context,
		Attributes: map[string][]types.Property{},
	}

	for _, point := range tr.Points {
		observedAt := point.Timestamp.UTC().Format(time.RFC3339Nano)

		for _, name := range point.Properties.Names() {
			p, err := properties.FromValue(
				point.Properties[name],
				properties.ObservedAt(observedAt),
				properties.InstanceID(NewInstanceID()),
			)
			if err != nil {
				return nil, fmt.Errorf("property %q at %s: %w", name, observedAt, err)
			}

			e.Attributes[name] = append(e.Attributes[name], p)
		}
	}

	return e, nil
}

func NewInstanceID() string {
	return "urn:ngsi-ld:" + uuid.NewString()
}
