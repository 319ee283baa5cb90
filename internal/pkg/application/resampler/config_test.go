package resampler

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/matryer/is"
)

func TestLoadConfig(t *testing.T) {
	is, config := setupConfigTest(t)

	is.Equal(len(config.Tenants), 1) // should have a single tenant
}

func TestLoadTenant(t *testing.T) {
	is, config := setupConfigTest(t)
	tenant := config.Tenants[0]

	is.Equal(tenant.ID, "default")
	is.Equal(tenant.Name, "Kommunen")
	is.Equal(len(tenant.EntityTypes), 2) // should find two entity types
}

func TestLoadEntityType(t *testing.T) {
	is, config := setupConfigTest(t)
	info := config.Tenants[0].EntityTypes[0]

	is.Equal(info.Type, "Vehicle")
	is.Equal(info.Interval, "30s")
	is.Equal(len(info.Attributes), 3) // should find three attributes

	et, err := info.compile()
	is.NoErr(err)
	is.Equal(et.interval, 30*time.Second)
	is.Equal(et.schema.KindOf("speed"), value.KindReal)
	is.Equal(et.schema.KindOf("gear"), value.KindInteger)
	is.Equal(et.schema.KindOf("unknown"), value.KindUnknown)
	is.True(et.matches("urn:ngsi-ld:Vehicle:B9211"))
	is.True(!et.matches("urn:ngsi-ld:Device:B9211"))
}

func TestCompileRejectsInvalidEntityTypes(t *testing.T) {
	is := is.New(t)

	_, err := EntityTypeInfo{Type: "Vehicle", Interval: "-1s"}.compile()
	is.True(err != nil)

	_, err = EntityTypeInfo{Type: "Vehicle", Attributes: []AttributeInfo{{Name: "speed", Kind: "float"}}}.compile()
	is.True(errors.Is(err, value.ErrUnsupportedKind))

	_, err = EntityTypeInfo{Type: "Vehicle", Attributes: []AttributeInfo{{Name: "speed", Kind: "null"}}}.compile()
	is.True(errors.Is(err, value.ErrUnsupportedKind))

	_, err = EntityTypeInfo{Interval: "1s"}.compile()
	is.True(err != nil)
}

func TestSchemaOfEntity(t *testing.T) {
	is, config := setupConfigTest(t)

	schema, err := config.Schema("default", "urn:ngsi-ld:WaterQualityObserved:1")
	is.NoErr(err)
	is.Equal(schema.KindOf("dateObserved"), value.KindTimestamp)

	schema, err = config.Schema("default", "urn:ngsi-ld:Beach:1")
	is.NoErr(err)
	is.Equal(len(schema), 0)
}

func setupConfigTest(t *testing.T) (*is.I, *Config) {
	is := is.New(t)
	cfgData := bytes.NewBuffer([]byte(configFile))
	config, err := LoadConfiguration(cfgData)
	is.NoErr(err)

	return is, config
}

var configFile string = `
tenants:
  - id: default
    name: Kommunen
    entityTypes:
    - type: Vehicle
      idPattern: ^urn:ngsi-ld:Vehicle:.+
      interval: 30s
      attributes:
      - name: speed
        kind: real
      - name: gear
        kind: integer
      - name: status
        kind: string
    - type: WaterQualityObserved
      idPattern: ^urn:ngsi-ld:WaterQualityObserved:.+
      attributes:
      - name: temperature
        kind: real
      - name: dateObserved
        kind: timestamp
`
