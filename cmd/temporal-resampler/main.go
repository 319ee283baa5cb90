package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/temporal-resampler/internal/pkg/application/resampler"
	"github.com/diwise/temporal-resampler/internal/pkg/infrastructure/router"
	"github.com/diwise/temporal-resampler/internal/pkg/infrastructure/troe"
	"github.com/diwise/temporal-resampler/internal/pkg/presentation/api"
	"github.com/go-chi/chi/v5"
)

const serviceName string = "temporal-resampler"

func main() {
	serviceVersion := buildinfo.SourceVersion()

	ctx, logger, cleanup := o11y.Init(context.Background(), serviceName, serviceVersion, "json")
	defer cleanup()

	flags := parseExternalConfig(ctx, DefaultFlags())

	r, closeStorage, err := initialize(ctx, flags)
	if err != nil {
		logger.Error("failed to initialize service", "err", err.Error())
		os.Exit(1)
	}
	defer closeStorage()

	address := flags[listenAddress] + ":" + flags[servicePort]
	logger.Info("starting to listen for connections", "address", address)

	err = http.ListenAndServe(address, r)
	if err != nil {
		logger.Error("failed to listen for connections", "err", err.Error())
	}
}

func initialize(ctx context.Context, flags FlagMap) (*chi.Mux, func(), error) {
	log := logging.GetFromContext(ctx)
	closeStorage := func() {}

	cfgFile, err := os.Open(flags[configPath])
	if err != nil {
		return nil, closeStorage, fmt.Errorf("failed to open resampler configuration: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := resampler.LoadConfiguration(cfgFile)
	if err != nil {
		return nil, closeStorage, fmt.Errorf("failed to load resampler configuration: %w", err)
	}

	var history resampler.HistoryReader

	dbCfg := troe.LoadConfiguration(ctx)
	if dbCfg.Enabled() {
		reader, err := troe.Connect(ctx, dbCfg)
		if err != nil {
			return nil, closeStorage, fmt.Errorf("failed to connect to temporal storage: %w", err)
		}
		history = reader
		closeStorage = reader.Close
	} else {
		log.Warn("no temporal storage configured, stored entities can not be resampled")
	}

	app, err := resampler.New(*cfg, history)
	if err != nil {
		closeStorage()
		return nil, func() {}, fmt.Errorf("invalid resampler configuration: %w", err)
	}

	policies, err := os.Open(flags[opaPath])
	if err != nil {
		closeStorage()
		return nil, func() {}, fmt.Errorf("unable to open opa policy file: %w", err)
	}
	defer policies.Close()

	r := router.New(serviceName)

	err = api.RegisterHandlers(ctx, r, policies, app)
	if err != nil {
		closeStorage()
		return nil, func() {}, err
	}

	return r, closeStorage, nil
}
