package networkdefinition

import (
	"fmt"
	"sort"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/configloader"

	"go.uber.org/zap"
)

// Registry serves the chain and market tables.
type Registry struct {
	logger  *zap.Logger
	chains  map[entity.Chain]entity.ChainDefinition
	markets map[marketKey]entity.Market
}

// NewRegistry builds a registry from the hardcoded tables, applying RPC URL
// overrides from config. Overrides for unknown chains are ignored.
func NewRegistry(overrides []configloader.ChainConfig, logger *zap.Logger) port.MarketRegistry {
	r := &Registry{
		logger:  logger.Named("MarketRegistry"),
		chains:  make(map[entity.Chain]entity.ChainDefinition, len(allKnownDefinitions)),
		markets: make(map[marketKey]entity.Market, len(allKnownMarkets)),
	}
	for c, def := range allKnownDefinitions {
		def.FallbackRPCURLs = append([]string(nil), def.FallbackRPCURLs...)
		r.chains[c] = def
	}
	for k, m := range allKnownMarkets {
		r.markets[k] = m
	}

	for _, o := range overrides {
		c, err := entity.ParseChain(o.Name)
		if err != nil {
			r.logger.Warn("Ignoring RPC override for unknown chain", zap.String("chain", o.Name))
			continue
		}
		def := r.chains[c]
		if o.PrimaryRPCURL != "" {
			def.PrimaryRPCURL = o.PrimaryRPCURL
		}
		if len(o.FallbackRPCURLs) > 0 {
			def.FallbackRPCURLs = append([]string(nil), o.FallbackRPCURLs...)
		}
		r.chains[c] = def
		r.logger.Debug("Applied RPC override", zap.String("chain", c.String()), zap.String("primary", def.PrimaryRPCURL))
	}
	return r
}

// ResolveMarket is a pure table lookup.
func (r *Registry) ResolveMarket(chain entity.Chain, version entity.AaveVersion) (entity.Market, error) {
	m, ok := r.markets[marketKey{chain: chain, version: version}]
	if !ok {
		return entity.Market{}, fmt.Errorf("%w: aave v%d on %s", entity.ErrUnsupportedMarket, version, chain)
	}
	return m, nil
}

func (r *Registry) ChainDefinition(chain entity.Chain) (entity.ChainDefinition, bool) {
	def, ok := r.chains[chain]
	return def, ok
}

// Markets returns every market ordered by chain then version.
func (r *Registry) Markets() []entity.Market {
	order := make(map[entity.Chain]int, len(entity.AllChains))
	for i, c := range entity.AllChains {
		order[c] = i
	}
	out := make([]entity.Market, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chain != out[j].Chain {
			return order[out[i].Chain] < order[out[j].Chain]
		}
		return out[i].Version < out[j].Version
	})
	return out
}
