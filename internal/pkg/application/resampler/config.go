package resampler

import (
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
	yaml "gopkg.in/yaml.v2"
)

type AttributeInfo struct {
	Name string `yaml:"name"`
	Kind string `yaml:"kind"`
}

type EntityTypeInfo struct {
	Type       string          `yaml:"type"`
	IDPattern  string          `yaml:"idPattern"`
	Interval   string          `yaml:"interval"`
	Attributes []AttributeInfo `yaml:"attributes"`
}

type Tenant struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	EntityTypes []EntityTypeInfo `yaml:"entityTypes"`
}

type Config struct {
	Tenants []Tenant `yaml:"tenants"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {

	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	err = yaml.Unmarshal(buf, &cfg)

	return cfg, err
}

// entityType is the validated form of an EntityTypeInfo
type entityType struct {
	name     string
	pattern  *regexp.Regexp
	interval time.Duration
	schema   trajectory.Schema
}

func (eti EntityTypeInfo) compile() (*entityType, error) {
	if eti.Type == "" {
		return nil, fmt.Errorf("entity types must have a name")
	}

	et := &entityType{
		name:   eti.Type,
		schema: trajectory.Schema{},
	}

	if eti.IDPattern != "" {
		pattern, err := regexp.CompilePOSIX(eti.IDPattern)
		if err != nil {
			return nil, fmt.Errorf("type %s has an invalid idPattern: %w", eti.Type, err)
		}
		et.pattern = pattern
	}

	if eti.Interval != "" {
		interval, err := time.ParseDuration(eti.Interval)
		if err != nil || interval <= 0 {
			return nil, fmt.Errorf("type %s has an invalid interval %q: %w", eti.Type, eti.Interval, trajectory.ErrInvalidInterval)
		}
		et.interval = interval
	}

	for _, attr := range eti.Attributes {
		kind, err := value.ParseKind(attr.Kind)
		if err != nil {
			return nil, fmt.Errorf("attribute %s of type %s: %w", attr.Name, eti.Type, err)
		}
		if kind == value.KindNull {
			return nil, fmt.Errorf("attribute %s of type %s: %w: null can not be declared", attr.Name, eti.Type, value.ErrUnsupportedKind)
		}
		et.schema[attr.Name] = kind
	}

	return et, nil
}

func (et *entityType) matches(entityID string) bool {
	return et.pattern != nil && et.pattern.MatchString(entityID)
}

// Schema returns the declared attribute kinds of the entity type whose idPattern matches
// entityID. Entities that do not match any type get an empty schema.
func (cfg Config) Schema(tenantID, entityID string) (trajectory.Schema, error) {
	for _, tenant := range cfg.Tenants {
		if tenant.ID != tenantID {
			continue
		}

		for _, info := range tenant.EntityTypes {
			et, err := info.compile()
			if err != nil {
				return nil, err
			}

			if et.matches(entityID) {
				return et.schema, nil
			}
		}
	}

	return trajectory.Schema{}, nil
}
