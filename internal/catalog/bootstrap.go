package catalog

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/nulzo/model-catalog-api/internal/catalog/parser"
	"github.com/nulzo/model-catalog-api/internal/cli"
	"github.com/nulzo/model-catalog-api/internal/config"
	"go.uber.org/zap"
)

// ErrNoProviders means no configured provider survived validation.
var ErrNoProviders = errors.New("no catalog providers configured")

// BuildProviders turns enabled provider entries into Providers, preserving
// their configured order. Invalid entries are skipped with a warning.
func BuildProviders(cfgs []config.ProviderConfig, log *zap.Logger) ([]Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	validate := validator.New()
	seen := make(map[string]struct{}, len(cfgs))
	providers := make([]Provider, 0, len(cfgs))

	for _, pCfg := range cfgs {
		if !pCfg.Enabled {
			continue
		}

		if err := validate.Struct(&pCfg); err != nil {
			log.Warn(fmt.Sprintf("%s %s", cli.WarningSign(),
				cli.Style(fmt.Sprintf("skipping provider %q: invalid configuration", pCfg.Key), cli.Yellow)),
				zap.Error(err),
			)
			continue
		}

		if _, dup := seen[pCfg.Key]; dup {
			log.Warn(fmt.Sprintf("%s %s", cli.WarningSign(),
				cli.Style(fmt.Sprintf("skipping provider %q: duplicate key", pCfg.Key), cli.Yellow)))
			continue
		}

		factory, err := parser.Get(pCfg.Type)
		if err != nil {
			log.Error("Unknown provider type", zap.String("provider", pCfg.Key), zap.String("type", pCfg.Type))
			continue
		}

		parse, err := factory(parser.Descriptor{Key: pCfg.Key, Name: pCfg.Name})
		if err != nil {
			log.Error("Failed to initialize parser", zap.String("provider", pCfg.Key), zap.Error(err))
			continue
		}

		p := Provider{
			Key:            pCfg.Key,
			Name:           pCfg.Name,
			Type:           pCfg.Type,
			Endpoint:       pCfg.Endpoint,
			CredentialKey:  pCfg.CredentialKey,
			HealthCheckURL: pCfg.HealthCheck,
			Parse:          parse,
		}
		if rl := pCfg.RateLimit; rl != nil {
			p.RateLimit = &RateLimitPolicy{RequestsPerWindow: rl.RequestsPerWindow, Window: rl.Window}
		}
		if r := pCfg.Retry; r != nil {
			p.Retry = &RetryPolicy{MaxRetries: r.MaxRetries, InitialBackoff: r.InitialBackoff}
		}

		seen[p.Key] = struct{}{}
		providers = append(providers, p)
		log.Info(fmt.Sprintf("%s provider %s", cli.CheckMark(), cli.Style(p.Key, cli.Bold)),
			zap.String("type", p.Type),
		)
	}

	if len(providers) == 0 {
		return nil, ErrNoProviders
	}
	return providers, nil
}

// RateLimitPolicies collects the outbound limits keyed by provider key.
func RateLimitPolicies(providers []Provider) map[string]RateLimitPolicy {
	policies := make(map[string]RateLimitPolicy)
	for _, p := range providers {
		if p.RateLimit != nil {
			policies[p.Key] = *p.RateLimit
		}
	}
	return policies
}
