package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/temporal-resampler/internal/pkg/application/resampler"
	"github.com/diwise/temporal-resampler/internal/pkg/infrastructure/troe"
	"github.com/diwise/temporal-resampler/pkg/trajectory"
)

const (
	appName string = "troe-inspect"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	var entityID, tenant, configPath, fromArg, toArg string
	var interval time.Duration
	var listEntities bool

	flag.StringVar(&entityID, "entity", "", "id of the entity to inspect")
	flag.StringVar(&tenant, "tenant", "default", "tenant to look up attribute kinds for")
	flag.StringVar(&configPath, "config", "", "path to the resampler configuration file")
	flag.StringVar(&fromArg, "from", "", "start of the inspected interval (RFC3339), defaults to 24 hours ago")
	flag.StringVar(&toArg, "to", "", "end of the inspected interval (RFC3339), defaults to now")
	flag.DurationVar(&interval, "interval", 0, "resample the history at this interval")
	flag.BoolVar(&listEntities, "list", false, "list the stored entities and exit")
	flag.Parse()

	reader, err := troe.Connect(ctx, troe.LoadConfiguration(ctx))
	if err != nil {
		log.Error("failed to connect to database", "err", err.Error())
		os.Exit(1)
	}
	defer reader.Close()

	if listEntities {
		entities, err := reader.Entities(ctx)
		if err != nil {
			log.Error("failed to get entities", "err", err.Error())
			os.Exit(1)
		}
		for _, e := range entities {
			fmt.Println(e)
		}
		return
	}

	if entityID == "" {
		log.Error("an entity id is required")
		os.Exit(1)
	}

	from, to, err := timeRange(fromArg, toArg, time.Now().UTC())
	if err != nil {
		log.Error("invalid time range", "err", err.Error())
		os.Exit(1)
	}

	schema, err := loadSchema(configPath, tenant, entityID)
	if err != nil {
		log.Error("failed to load attribute kinds", "err", err.Error())
		os.Exit(1)
	}

	l := log.With(slog.String("entity_id", entityID))

	observations, err := reader.History(ctx, entityID, from, to, schema)
	if err != nil {
		l.Error("failed to read history", "err", err.Error())
		os.Exit(1)
	}

	l.Debug("read history", slog.Int("count", len(observations)))

	tr := trajectory.FromObservations(entityID, schema, observations...)

	if interval > 0 && !tr.IsEmpty() {
		tr, err = tr.Resample(interval)
		if err != nil {
			l.Error("failed to resample history", "err", err.Error())
			os.Exit(1)
		}
	}

	err = printTrajectory(os.Stdout, tr)
	if err != nil {
		l.Error("failed to print history", "err", err.Error())
		os.Exit(1)
	}
}

func timeRange(fromArg, toArg string, now time.Time) (time.Time, time.Time, error) {
	from, to := now.Add(-24*time.Hour), now

	var err error

	if fromArg != "" {
		if from, err = time.Parse(time.RFC3339Nano, fromArg); err != nil {
			return from, to, fmt.Errorf("from: %w", err)
		}
	}

	if toArg != "" {
		if to, err = time.Parse(time.RFC3339Nano, toArg); err != nil {
			return from, to, fmt.Errorf("to: %w", err)
		}
	}

	if to.Before(from) {
		return from, to, fmt.Errorf("%s is before %s", to.Format(time.RFC3339), from.Format(time.RFC3339))
	}

	return from, to, nil
}

func loadSchema(configPath, tenant, entityID string) (trajectory.Schema, error) {
	if configPath == "" {
		return trajectory.Schema{}, nil
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := resampler.LoadConfiguration(f)
	if err != nil {
		return nil, err
	}

	return cfg.Schema(tenant, entityID)
}

func printTrajectory(out io.Writer, tr trajectory.Trajectory) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "%s\t%d points\n", tr.ObjectID, tr.Len())

	for _, p := range tr.Points {
		for _, name := range p.Properties.Names() {
			v := p.Properties[name]
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Timestamp.UTC().Format(time.RFC3339Nano), name, v.Kind(), v)
		}
	}

	return w.Flush()
}
