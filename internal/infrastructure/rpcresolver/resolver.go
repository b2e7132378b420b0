package rpcresolver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/client"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/pkg/metrics"
	"aave_alarm/internal/pkg/utils"

	"go.uber.org/zap"
)

const overrideKeyPrefix = "rpc:"

// Resolver picks the JSON-RPC endpoint for a chain. Overrides fetched from the
// remote document live in the key-value cache and win over the defaults.
type Resolver struct {
	registry        port.MarketRegistry
	cache           port.KeyValueCache
	remote          client.RPCConfigClient
	metrics         *metrics.Metrics
	logger          *zap.Logger
	refreshInterval time.Duration
}

// NewResolver creates a resolver. remote may be nil to disable refreshes.
func NewResolver(
	registry port.MarketRegistry,
	cache port.KeyValueCache,
	remote client.RPCConfigClient,
	refreshInterval time.Duration,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		registry:        registry,
		cache:           cache,
		remote:          remote,
		metrics:         m,
		logger:          logger.Named("RPCResolver"),
		refreshInterval: refreshInterval,
	}
}

var _ port.EndpointResolver = (*Resolver)(nil)

func overrideKey(chain entity.Chain) string {
	return overrideKeyPrefix + chain.String()
}

// GetEndpoint returns the cached override for chain, else its default endpoint.
func (r *Resolver) GetEndpoint(ctx context.Context, chain entity.Chain) (string, error) {
	endpoints, err := r.Endpoints(ctx, chain)
	if err != nil {
		return "", err
	}
	return endpoints[0], nil
}

// Endpoints lists the override followed by the registry's primary and
// fallback URLs, without duplicates.
func (r *Resolver) Endpoints(ctx context.Context, chain entity.Chain) ([]string, error) {
	def, ok := r.registry.ChainDefinition(chain)
	if !ok {
		return nil, fmt.Errorf("%w: unknown chain %s", entity.ErrUnsupportedMarket, chain)
	}

	candidates := make([]string, 0, 2+len(def.FallbackRPCURLs))
	override, found, err := r.cache.Get(ctx, overrideKey(chain))
	if err != nil {
		r.logger.Warn("Failed to read RPC override, using defaults", zap.String("chain", chain.String()), zap.Error(err))
	} else if found {
		candidates = append(candidates, override)
	}
	candidates = utils.Dedupe(append(candidates, def.RPCURLs()...))
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no endpoint configured for %s", entity.ErrRPCUnavailable, chain)
	}
	return candidates, nil
}

// RefreshFromRemote replaces cached overrides with the remote document's
// entries. Failures are logged and leave the previous state in effect. It
// returns the number of overrides written.
func (r *Resolver) RefreshFromRemote(ctx context.Context) int {
	if r.remote == nil {
		return 0
	}
	overrides, err := r.remote.FetchOverrides(ctx)
	if err != nil {
		r.metrics.RecordRemoteRefresh("failed")
		r.logger.Warn("Remote RPC refresh failed, keeping current endpoints",
			zap.Error(fmt.Errorf("%w: %w", entity.ErrRemoteRefreshFailed, err)))
		return 0
	}

	applied := 0
	for key, rawURL := range overrides {
		chain, ok := r.chainForKey(key)
		if !ok {
			r.logger.Debug("Skipping RPC override for unknown chain", zap.String("key", key))
			continue
		}
		if !validEndpoint(rawURL) {
			r.logger.Warn("Skipping invalid RPC override", zap.String("chain", chain.String()), zap.String("url", rawURL))
			continue
		}
		if err := r.cache.Set(ctx, overrideKey(chain), rawURL); err != nil {
			r.logger.Warn("Failed to store RPC override", zap.String("chain", chain.String()), zap.Error(err))
			continue
		}
		applied++
	}

	r.metrics.RecordRemoteRefresh("ok")
	r.logger.Info("Remote RPC overrides applied", zap.Int("applied", applied), zap.Int("received", len(overrides)))
	return applied
}

// Start refreshes once in the background and then every refresh interval,
// if one is set, until ctx is done.
func (r *Resolver) Start(ctx context.Context) {
	go func() {
		r.RefreshFromRemote(ctx)
		if r.refreshInterval <= 0 {
			return
		}
		ticker := time.NewTicker(r.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RefreshFromRemote(ctx)
			}
		}
	}()
}

// chainForKey accepts a chain identifier or a decimal chain id.
func (r *Resolver) chainForKey(key string) (entity.Chain, bool) {
	if chain, err := entity.ParseChain(key); err == nil {
		return chain, true
	}
	id, err := strconv.ParseUint(strings.TrimSpace(key), 10, 64)
	if err != nil {
		return "", false
	}
	for _, c := range entity.AllChains {
		if def, ok := r.registry.ChainDefinition(c); ok && def.ChainID == id {
			return c, true
		}
	}
	return "", false
}

func validEndpoint(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return true
	default:
		return false
	}
}
