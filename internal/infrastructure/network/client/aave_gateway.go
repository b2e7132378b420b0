package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/configloader"
	"aave_alarm/internal/infrastructure/network/abis"
	"aave_alarm/internal/pkg/metrics"
	"aave_alarm/internal/pkg/utils"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// usdPriceDecimals is the scale of marketReferenceCurrencyPriceInUsd.
const usdPriceDecimals = 8

// AaveGateway implements port.ProtocolGateway over JSON-RPC eth_call.
type AaveGateway struct {
	resolver    port.EndpointResolver
	callers     port.CallerProvider
	abis        *abis.Set
	metrics     *metrics.Metrics
	logger      *zap.Logger
	callTimeout time.Duration
	maxRetries  int
	retryDelay  time.Duration
	batchSize   int
	multicall   common.Address

	limitersMu sync.Mutex
	limiters   map[entity.Chain]*rate.Limiter
	rateLimit  rate.Limit
	burst      int
}

// NewAaveGateway creates a gateway that resolves endpoints per call.
func NewAaveGateway(
	cfg configloader.GatewayConfig,
	resolver port.EndpointResolver,
	callers port.CallerProvider,
	m *metrics.Metrics,
	logger *zap.Logger,
) port.ProtocolGateway {
	return &AaveGateway{
		resolver:    resolver,
		callers:     callers,
		abis:        abis.Get(),
		metrics:     m,
		logger:      logger.Named("AaveGateway"),
		callTimeout: time.Duration(cfg.CallTimeoutMillis) * time.Millisecond,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Duration(cfg.RetryBaseDelayMillis) * time.Millisecond,
		batchSize:   cfg.HealthFactorBatchSize,
		multicall:   common.HexToAddress(cfg.Multicall3Address),
		limiters:    make(map[entity.Chain]*rate.Limiter),
		rateLimit:   rate.Limit(cfg.RateLimitPerSecond),
		burst:       cfg.BurstLimit,
	}
}

type versionContracts struct {
	provider       *abi.ABI
	providerMethod string
	pool           *abi.ABI
	ui             *abi.ABI
}

func (g *AaveGateway) contractsFor(version entity.AaveVersion) (versionContracts, error) {
	switch version {
	case entity.AaveV2:
		return versionContracts{&g.abis.AddressesProviderV2, abis.MethodGetLendingPool, &g.abis.LendingPoolV2, &g.abis.UIPoolDataProviderV2}, nil
	case entity.AaveV3:
		return versionContracts{&g.abis.AddressesProviderV3, abis.MethodGetPool, &g.abis.PoolV3, &g.abis.UIPoolDataProviderV3}, nil
	default:
		return versionContracts{}, fmt.Errorf("%w: aave version %d", entity.ErrUnsupportedMarket, version)
	}
}

// GetPoolAddress asks the addresses provider for the current pool.
func (g *AaveGateway) GetPoolAddress(ctx context.Context, market entity.Market) (common.Address, error) {
	contracts, err := g.contractsFor(market.Version)
	if err != nil {
		return common.Address{}, err
	}
	out, err := g.call(ctx, market.Chain, market.PoolAddressesProvider, contracts.provider, contracts.providerMethod)
	if err != nil {
		return common.Address{}, err
	}
	if len(out) != 1 {
		return common.Address{}, fmt.Errorf("%w: %s returned %d values", entity.ErrContractCallFailed, contracts.providerMethod, len(out))
	}
	pool, ok := out[0].(common.Address)
	if !ok || pool == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%w: %s returned no pool address", entity.ErrContractCallFailed, contracts.providerMethod)
	}
	return pool, nil
}

// GetUserAccountData returns every field of the account data tuple.
func (g *AaveGateway) GetUserAccountData(ctx context.Context, market entity.Market, pool common.Address, user common.Address) (entity.UserAccountData, error) {
	contracts, err := g.contractsFor(market.Version)
	if err != nil {
		return entity.UserAccountData{}, err
	}
	out, err := g.call(ctx, market.Chain, pool, contracts.pool, abis.MethodGetUserAccountData, user)
	if err != nil {
		return entity.UserAccountData{}, err
	}
	return accountDataFromValues(out)
}

func accountDataFromValues(out []interface{}) (entity.UserAccountData, error) {
	if len(out) == 0 {
		return entity.UserAccountData{}, fmt.Errorf("%w: empty account data", entity.ErrContractCallFailed)
	}
	fields := make([]*big.Int, len(out))
	for i, v := range out {
		n, ok := v.(*big.Int)
		if !ok {
			return entity.UserAccountData{}, fmt.Errorf("%w: account data field %d has type %T", entity.ErrContractCallFailed, i, v)
		}
		fields[i] = n
	}
	return entity.UserAccountData{Fields: fields}, nil
}

// GetReservesAndUserReserves reads the reserve list and the user's balances
// from the UI pool data provider. Both reads run concurrently.
func (g *AaveGateway) GetReservesAndUserReserves(ctx context.Context, market entity.Market, user common.Address) (*entity.ReservesBundle, error) {
	contracts, err := g.contractsFor(market.Version)
	if err != nil {
		return nil, err
	}

	var reservesOut, userOut []interface{}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		reservesOut, err = g.call(egCtx, market.Chain, market.UIPoolDataProvider, contracts.ui, abis.MethodGetReservesData, market.PoolAddressesProvider)
		return err
	})
	eg.Go(func() error {
		var err error
		userOut, err = g.call(egCtx, market.Chain, market.UIPoolDataProvider, contracts.ui, abis.MethodGetUserReservesData, market.PoolAddressesProvider, user)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(reservesOut) != 2 || len(userOut) == 0 {
		return nil, fmt.Errorf("%w: unexpected ui pool data provider output", entity.ErrContractCallFailed)
	}
	rawReserves, err := abis.Convert[[]abis.AggregatedReserveData](reservesOut[0])
	if err != nil {
		return nil, fmt.Errorf("%w: reserves data: %w", entity.ErrContractCallFailed, err)
	}
	baseCurrency, err := abis.Convert[abis.BaseCurrencyInfo](reservesOut[1])
	if err != nil {
		return nil, fmt.Errorf("%w: base currency info: %w", entity.ErrContractCallFailed, err)
	}
	rawUser, err := abis.Convert[[]abis.UserReserveData](userOut[0])
	if err != nil {
		return nil, fmt.Errorf("%w: user reserves data: %w", entity.ErrContractCallFailed, err)
	}

	bundle := &entity.ReservesBundle{
		Reserves:     make([]entity.ReserveInfo, 0, len(rawReserves)),
		UserReserves: make([]entity.UserReserveRaw, 0, len(rawUser)),
	}
	for _, r := range rawReserves {
		if r.Decimals == nil || !r.Decimals.IsUint64() || r.Decimals.Uint64() > 255 {
			return nil, fmt.Errorf("%w: reserve %s has invalid decimals", entity.ErrContractCallFailed, r.Symbol)
		}
		bundle.Reserves = append(bundle.Reserves, entity.ReserveInfo{
			UnderlyingAsset:          r.UnderlyingAsset,
			Name:                     r.Name,
			Symbol:                   r.Symbol,
			Decimals:                 uint8(r.Decimals.Uint64()),
			PriceInReferenceCurrency: r.PriceInMarketReferenceCurrency,
			IsActive:                 r.IsActive,
			IsFrozen:                 r.IsFrozen,
			UsageAsCollateralEnabled: r.UsageAsCollateralEnabled,
			BorrowingEnabled:         r.BorrowingEnabled,
			LiquidityIndex:           r.LiquidityIndex,
			VariableBorrowIndex:      r.VariableBorrowIndex,
			LiquidityRate:            r.LiquidityRate,
			VariableBorrowRate:       r.VariableBorrowRate,
		})
	}
	for _, u := range rawUser {
		bundle.UserReserves = append(bundle.UserReserves, entity.UserReserveRaw{
			UnderlyingAsset:                u.UnderlyingAsset,
			ScaledATokenBalance:            u.ScaledATokenBalance,
			ScaledVariableDebt:             u.ScaledVariableDebt,
			PrincipalStableDebt:            u.PrincipalStableDebt,
			StableBorrowRate:               u.StableBorrowRate,
			UsageAsCollateralEnabledOnUser: u.UsageAsCollateralEnabledOnUser,
		})
	}

	if baseCurrency.MarketReferenceCurrencyUnit == nil || baseCurrency.MarketReferenceCurrencyUnit.Sign() <= 0 {
		return nil, fmt.Errorf("%w: invalid market reference currency unit", entity.ErrContractCallFailed)
	}
	if baseCurrency.MarketReferenceCurrencyPriceInUsd == nil || baseCurrency.MarketReferenceCurrencyPriceInUsd.Sign() < 0 {
		return nil, fmt.Errorf("%w: invalid market reference currency price", entity.ErrContractCallFailed)
	}
	bundle.Reference = entity.ReferenceCurrency{
		Unit:             baseCurrency.MarketReferenceCurrencyUnit,
		Decimals:         utils.DecimalsOfUnit(baseCurrency.MarketReferenceCurrencyUnit),
		PriceInUSD:       baseCurrency.MarketReferenceCurrencyPriceInUsd,
		USDPriceDecimals: usdPriceDecimals,
	}

	g.logger.Debug("Fetched reserves",
		zap.String("chain", market.Chain.String()),
		zap.Int("version", int(market.Version)),
		zap.Int("reserves", len(bundle.Reserves)),
		zap.Int("userReserves", len(bundle.UserReserves)))
	return bundle, nil
}

// GetHealthFactors batches getUserAccountData through Multicall3. Users whose
// call fails get a nil entry.
func (g *AaveGateway) GetHealthFactors(ctx context.Context, market entity.Market, pool common.Address, users []common.Address) ([]*big.Int, error) {
	contracts, err := g.contractsFor(market.Version)
	if err != nil {
		return nil, err
	}
	results := make([]*big.Int, 0, len(users))

	for _, batch := range utils.Batch(users, g.batchSize) {
		calls := make([]abis.Call3, len(batch))
		for i, user := range batch {
			data, err := contracts.pool.Pack(abis.MethodGetUserAccountData, user)
			if err != nil {
				return nil, fmt.Errorf("%w: failed to pack getUserAccountData: %w", entity.ErrContractCallFailed, err)
			}
			calls[i] = abis.Call3{Target: pool, AllowFailure: true, CallData: data}
		}

		out, err := g.call(ctx, market.Chain, g.multicall, &g.abis.Multicall3, abis.MethodAggregate3, calls)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("%w: aggregate3 returned %d values", entity.ErrContractCallFailed, len(out))
		}
		mcResults, err := abis.Convert[[]abis.Multicall3Result](out[0])
		if err != nil {
			return nil, fmt.Errorf("%w: aggregate3 results: %w", entity.ErrContractCallFailed, err)
		}
		if len(mcResults) != len(batch) {
			return nil, fmt.Errorf("%w: aggregate3 returned %d results for %d calls", entity.ErrContractCallFailed, len(mcResults), len(batch))
		}

		for i, r := range mcResults {
			if !r.Success || len(r.ReturnData) == 0 {
				g.logger.Debug("Health factor call failed", zap.String("user", batch[i].Hex()))
				results = append(results, nil)
				continue
			}
			values, err := contracts.pool.Unpack(abis.MethodGetUserAccountData, r.ReturnData)
			if err != nil {
				results = append(results, nil)
				continue
			}
			data, err := accountDataFromValues(values)
			if err != nil {
				results = append(results, nil)
				continue
			}
			results = append(results, data.HealthFactor())
		}
	}
	return results, nil
}

func (g *AaveGateway) call(ctx context.Context, chain entity.Chain, to common.Address, contract *abi.ABI, method string, args ...interface{}) ([]interface{}, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to pack %s: %w", entity.ErrContractCallFailed, method, err)
	}

	raw, err := g.callWithFailover(ctx, chain, method, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: %s on %s returned no data", entity.ErrContractCallFailed, method, to.Hex())
	}

	out, err := contract.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to unpack %s: %w", entity.ErrContractCallFailed, method, err)
	}
	return out, nil
}

// callWithFailover retries transport failures with backoff on each endpoint,
// then moves to the next one. Contract errors stop immediately.
func (g *AaveGateway) callWithFailover(ctx context.Context, chain entity.Chain, method string, msg ethereum.CallMsg) ([]byte, error) {
	start := time.Now()
	endpoints, err := g.resolver.Endpoints(ctx, chain)
	if err != nil {
		return nil, fmt.Errorf("%w: no endpoint for %s: %w", entity.ErrRPCUnavailable, chain, err)
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("%w: no endpoint for %s", entity.ErrRPCUnavailable, chain)
	}
	limiter := g.limiter(chain)

	var lastErr error
	for i, endpoint := range endpoints {
		if i > 0 {
			g.metrics.RecordGatewayRetry(chain.String())
			g.logger.Warn("Failing over to next RPC endpoint",
				zap.String("chain", chain.String()),
				zap.String("method", method),
				zap.String("rpc", endpoint),
				zap.Error(lastErr))
		}

		caller, err := g.callers.GetCaller(ctx, endpoint)
		if err != nil {
			lastErr = classifyCallError(method, err)
			continue
		}

		var raw []byte
		err = withRetry(ctx, g.maxRetries, g.retryDelay, isRetryable,
			func(attempt int, err error) {
				g.metrics.RecordGatewayRetry(chain.String())
				g.logger.Debug("Retrying contract call",
					zap.String("chain", chain.String()),
					zap.String("method", method),
					zap.Int("attempt", attempt),
					zap.Error(err))
			},
			func(ctx context.Context) error {
				if err := limiter.Wait(ctx); err != nil {
					return fmt.Errorf("%w: rate limiter: %w", entity.ErrRPCUnavailable, err)
				}
				attemptCtx, cancel := context.WithTimeout(ctx, g.callTimeout)
				defer cancel()
				out, err := caller.CallContract(attemptCtx, msg, nil)
				if err != nil {
					return classifyCallError(method, err)
				}
				raw = out
				return nil
			})
		if err == nil {
			g.metrics.RecordGatewayCall(chain.String(), method, "ok", time.Since(start))
			return raw, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			lastErr = fmt.Errorf("%w: %s: %w", entity.ErrRPCUnavailable, method, ctx.Err())
			break
		}
		if !isRetryable(err) {
			break
		}
	}

	g.metrics.RecordGatewayCall(chain.String(), method, entity.ErrorKind(lastErr), time.Since(start))
	return nil, lastErr
}

func (g *AaveGateway) limiter(chain entity.Chain) *rate.Limiter {
	g.limitersMu.Lock()
	defer g.limitersMu.Unlock()
	l, ok := g.limiters[chain]
	if !ok {
		limit := g.rateLimit
		if limit <= 0 {
			limit = rate.Inf
		}
		burst := g.burst
		if burst <= 0 {
			burst = 1
		}
		l = rate.NewLimiter(limit, burst)
		g.limiters[chain] = l
	}
	return l
}

func isRetryable(err error) bool {
	return errors.Is(err, entity.ErrRPCUnavailable)
}

// classifyCallError separates node failures from calls that executed and failed.
func classifyCallError(method string, err error) error {
	if errors.Is(err, entity.ErrRPCUnavailable) || errors.Is(err, entity.ErrContractCallFailed) {
		return err
	}
	if isContractError(err) {
		return fmt.Errorf("%w: %s: %w", entity.ErrContractCallFailed, method, err)
	}
	return fmt.Errorf("%w: %s: %w", entity.ErrRPCUnavailable, method, err)
}

func isContractError(err error) bool {
	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return false
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case 3, -32602:
			return true
		}
		return strings.Contains(strings.ToLower(rpcErr.Error()), "revert")
	}
	return false
}
