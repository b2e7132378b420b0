package service

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/configloader"
	"aave_alarm/internal/pkg/metrics"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PositionServiceImpl implements port.PositionService.
type PositionServiceImpl struct {
	registry       port.MarketRegistry
	gateway        port.ProtocolGateway
	metrics        *metrics.Metrics
	logger         *zap.Logger
	promotedSymbol string
	maxConcurrent  int
}

// NewPositionService creates a new instance of PositionServiceImpl.
func NewPositionService(
	registry port.MarketRegistry,
	gateway port.ProtocolGateway,
	cfg configloader.PositionsConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) port.PositionService {
	maxConcurrent := cfg.MaxConcurrentSnapshots
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &PositionServiceImpl{
		registry:       registry,
		gateway:        gateway,
		metrics:        m,
		logger:         logger.Named("PositionService"),
		promotedSymbol: cfg.PromotedSymbol,
		maxConcurrent:  maxConcurrent,
	}
}

// ComputeSnapshot loads the position of one account.
func (s *PositionServiceImpl) ComputeSnapshot(ctx context.Context, account entity.TrackedAccount) (*entity.AccountSnapshot, error) {
	start := time.Now()
	snapshot, err := s.computeSnapshot(ctx, account)

	outcome := "ok"
	if err != nil {
		outcome = entity.ErrorKind(err)
		s.logger.Warn("Failed to compute snapshot",
			zap.String("account", account.Key()), zap.String("kind", outcome), zap.Error(err))
	}
	s.metrics.RecordSnapshot(account.Chain.String(), strconv.Itoa(int(account.AaveVersion)), outcome, time.Since(start))
	return snapshot, err
}

func (s *PositionServiceImpl) computeSnapshot(ctx context.Context, account entity.TrackedAccount) (*entity.AccountSnapshot, error) {
	if err := account.Normalize(); err != nil {
		return nil, err
	}
	market, err := s.registry.ResolveMarket(account.Chain, account.AaveVersion)
	if err != nil {
		return nil, err
	}
	user := common.HexToAddress(account.Address)

	pool, err := s.gateway.GetPoolAddress(ctx, market)
	if err != nil {
		return nil, fmt.Errorf("get pool address: %w", err)
	}

	var (
		accountData entity.UserAccountData
		bundle      *entity.ReservesBundle
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accountData, err = s.gateway.GetUserAccountData(gctx, market, pool, user)
		if err != nil {
			return fmt.Errorf("get user account data: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bundle, err = s.gateway.GetReservesAndUserReserves(gctx, market, user)
		if err != nil {
			return fmt.Errorf("get reserves: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	healthFactor, err := decodeHealthFactor(accountData.HealthFactor())
	if err != nil {
		return nil, err
	}

	snapshot := buildSnapshot(bundle, s.promotedSymbol)
	snapshot.Account = account
	snapshot.HealthFactor = healthFactor

	s.logger.Debug("Computed snapshot",
		zap.String("account", account.Key()),
		zap.Float64("healthFactor", healthFactor),
		zap.Int("assets", len(snapshot.Assets)))
	return snapshot, nil
}

// ComputeSnapshots loads every account concurrently and reports each outcome
// separately, in input order.
func (s *PositionServiceImpl) ComputeSnapshots(ctx context.Context, accounts []entity.TrackedAccount) []entity.SnapshotResult {
	results := make([]entity.SnapshotResult, len(accounts))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for i, acc := range accounts {
		g.Go(func() error {
			results[i].Account = acc
			snapshot, err := s.ComputeSnapshot(ctx, acc)
			if err != nil {
				results[i].Error = entity.NewSnapshotError(acc, err)
				return nil
			}
			results[i].Account = snapshot.Account
			results[i].Snapshot = snapshot
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	s.logger.Info("Computed snapshots", zap.Int("accounts", len(accounts)), zap.Int("failed", failed))
	return results
}

type marketGroup struct {
	market  entity.Market
	indexes []int
}

// HealthFactors reads health factors only, one multicall batch per market.
func (s *PositionServiceImpl) HealthFactors(ctx context.Context, accounts []entity.TrackedAccount) []entity.HealthFactorResult {
	results := make([]entity.HealthFactorResult, len(accounts))

	groups := make(map[entity.Market]*marketGroup)
	var order []entity.Market
	for i, acc := range accounts {
		results[i].Account = acc
		if err := acc.Normalize(); err != nil {
			results[i].Error = entity.NewSnapshotError(acc, err)
			continue
		}
		results[i].Account = acc
		market, err := s.registry.ResolveMarket(acc.Chain, acc.AaveVersion)
		if err != nil {
			results[i].Error = entity.NewSnapshotError(acc, err)
			continue
		}
		grp, ok := groups[market]
		if !ok {
			grp = &marketGroup{market: market}
			groups[market] = grp
			order = append(order, market)
		}
		grp.indexes = append(grp.indexes, i)
	}

	var g errgroup.Group
	g.SetLimit(s.maxConcurrent)
	for _, market := range order {
		grp := groups[market]
		g.Go(func() error {
			s.healthFactorsForMarket(ctx, grp, results)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// healthFactorsForMarket fills results at grp.indexes. Each group owns its
// own indexes, so groups can run in parallel.
func (s *PositionServiceImpl) healthFactorsForMarket(ctx context.Context, grp *marketGroup, results []entity.HealthFactorResult) {
	fail := func(err error) {
		for _, i := range grp.indexes {
			results[i].Error = entity.NewSnapshotError(results[i].Account, err)
		}
	}

	pool, err := s.gateway.GetPoolAddress(ctx, grp.market)
	if err != nil {
		fail(fmt.Errorf("get pool address: %w", err))
		return
	}

	users := make([]common.Address, len(grp.indexes))
	for j, i := range grp.indexes {
		users[j] = common.HexToAddress(results[i].Account.Address)
	}
	raw, err := s.gateway.GetHealthFactors(ctx, grp.market, pool, users)
	if err != nil {
		fail(fmt.Errorf("get health factors: %w", err))
		return
	}

	for j, i := range grp.indexes {
		var value *big.Int
		if j < len(raw) {
			value = raw[j]
		}
		hf, err := decodeHealthFactor(value)
		if err != nil {
			results[i].Error = entity.NewSnapshotError(results[i].Account, err)
			continue
		}
		results[i].HealthFactor = hf
	}
	s.logger.Debug("Read health factors",
		zap.String("chain", grp.market.Chain.String()),
		zap.Int("version", int(grp.market.Version)),
		zap.Int("accounts", len(users)))
}
