package troe

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/diwise/temporal-resampler/pkg/properties/value"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("temporal-resampler/troe")

// ErrUnsupportedValueType is returned for rows of an undeclared attribute whose value type
// can not be represented as a property value
var ErrUnsupportedValueType = errors.New("unsupported value type")

type Config struct {
	host     string
	user     string
	password string
	port     string
	dbname   string
	sslmode  string
}

func LoadConfiguration(ctx context.Context) Config {
	return Config{
		host:     env.GetVariableOrDefault(ctx, "POSTGRES_HOST", ""),
		user:     env.GetVariableOrDefault(ctx, "POSTGRES_USER", ""),
		password: env.GetVariableOrDefault(ctx, "POSTGRES_PASSWORD", ""),
		port:     env.GetVariableOrDefault(ctx, "POSTGRES_PORT", "5432"),
		dbname:   env.GetVariableOrDefault(ctx, "POSTGRES_DBNAME", "diwise"),
		sslmode:  env.GetVariableOrDefault(ctx, "POSTGRES_SSLMODE", "disable"),
	}
}

// Enabled reports whether a database host has been configured
func (c Config) Enabled() bool {
	return c.host != ""
}

func (c Config) ConnStr() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", c.user, c.password, c.host, c.port, c.dbname, c.sslmode)
}

// Reader reads entity history from the attributes table of a TROE database
type Reader struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, cfg Config) (*Reader, error) {
	conn, err := pgxpool.New(ctx, cfg.ConnStr())
	if err != nil {
		return nil, err
	}

	err = conn.Ping(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &Reader{pool: conn}, nil
}

func (r *Reader) Close() {
	r.pool.Close()
}

func (r *Reader) Entities(ctx context.Context) ([]string, error) {
	sql := `SELECT distinct id FROM entities ORDER BY id;`

	rows, err := r.pool.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entities := make([]string, 0)

	for rows.Next() {
		var e string
		err := rows.Scan(&e)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}

// History returns the observations of an entity between from and to, ordered by the time
// they were observed. Attribute values are converted to the kinds declared in schema.
func (r *Reader) History(ctx context.Context, entityID string, from, to time.Time, schema trajectory.Schema) ([]trajectory.Observation, error) {
	var err error

	ctx, span := tracer.Start(ctx, "read-history",
		trace.WithAttributes(attribute.String("entity_id", entityID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	log := logging.GetFromContext(ctx)

	sql := `
		SELECT id, valuetype, number, text, observedat
		FROM attributes
		WHERE entityid=$1 AND observedat BETWEEN $2 AND $3
		ORDER BY observedat;`

	rows, err := r.pool.Query(ctx, sql, entityID, from.UTC(), to.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	observations := make([]trajectory.Observation, 0)

	for rows.Next() {
		var a attributeRow
		err = rows.Scan(&a.name, &a.valueType, &a.number, &a.text, &a.observedAt)
		if err != nil {
			return nil, err
		}

		var o trajectory.Observation
		o, err = a.observation(schema.KindOf(a.name))
		if errors.Is(err, ErrUnsupportedValueType) {
			log.Debug("ignoring attribute", "entity_id", entityID, "attribute", a.name, "err", err.Error())
			err = nil
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("attribute %s observed at %s: %w", a.name, a.observedAt.Format(time.RFC3339), err)
		}

		observations = append(observations, o)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return observations, nil
}

type attributeRow struct {
	name       string
	valueType  *string
	number     *float64
	text       *string
	observedAt time.Time
}

// observation converts a row into a value of the declared kind. Undeclared attributes are
// converted according to the stored value type.
func (a attributeRow) observation(declared value.Kind) (trajectory.Observation, error) {
	o := trajectory.Observation{Name: a.name, ObservedAt: a.observedAt}

	if declared == value.KindUnknown {
		vt := ""
		if a.valueType != nil {
			vt = *a.valueType
		}

		switch vt {
		case "Number":
			declared = value.KindReal
		case "String":
			declared = value.KindString
		default:
			return o, fmt.Errorf("%w: %q", ErrUnsupportedValueType, vt)
		}
	}

	switch declared {
	case value.KindReal:
		if a.number == nil {
			o.Value = value.Null(declared)
		} else {
			o.Value = value.Real(*a.number)
		}
	case value.KindInteger:
		if a.number == nil {
			o.Value = value.Null(declared)
		} else if *a.number != math.Trunc(*a.number) || math.Abs(*a.number) >= math.MaxInt64 {
			return o, fmt.Errorf("number %v is not an integer: %w", *a.number, value.ErrKindMismatch)
		} else {
			o.Value = value.Integer(int64(*a.number))
		}
	case value.KindString:
		if a.text == nil {
			o.Value = value.Null(declared)
		} else {
			o.Value = value.String(*a.text)
		}
	case value.KindTimestamp:
		if a.text == nil {
			o.Value = value.Null(declared)
			break
		}
		v, err := value.Parse(declared, *a.text)
		if err != nil {
			return o, err
		}
		o.Value = v
	default:
		return o, fmt.Errorf("%w: %s", value.ErrUnsupportedKind, declared)
	}

	return o, nil
}
