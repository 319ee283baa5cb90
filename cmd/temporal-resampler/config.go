package main

import (
	"context"
	"flag"

	"github.com/diwise/service-chassis/pkg/infrastructure/env"
)

type FlagType int
type FlagMap map[FlagType]string

const (
	listenAddress FlagType = iota
	servicePort

	configPath
	opaPath
)

func DefaultFlags() FlagMap {
	return FlagMap{
		listenAddress: "",
		servicePort:   "8080",

		configPath: "/opt/diwise/config/default.yaml",
		opaPath:    "/opt/diwise/config/authz.rego",
	}
}

func parseExternalConfig(ctx context.Context, flags FlagMap) FlagMap {

	// Allow environment variables to override certain defaults
	envOrDef := env.GetVariableOrDefault
	flags[listenAddress] = envOrDef(ctx, "LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef(ctx, "SERVICE_PORT", flags[servicePort])
	flags[configPath] = envOrDef(ctx, "RESAMPLER_CONFIG_PATH", flags[configPath])
	flags[opaPath] = envOrDef(ctx, "POLICY_PATH", flags[opaPath])

	apply := func(f FlagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "path to the resampler configuration file", apply(configPath))
	flag.Func("policies", "an authorization policy file", apply(opaPath))
	flag.Parse()

	return flags
}
