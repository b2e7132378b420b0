package client

import (
	"context"
	"math/big"
	"testing"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/configloader"
	"aave_alarm/internal/infrastructure/network/abis"
	"aave_alarm/internal/infrastructure/network/evmtest"
	"aave_alarm/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

var (
	testProvider  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	testUIData    = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	testPool      = common.HexToAddress("0x00000000000000000000000000000000000000a3")
	testUser      = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	testMulticall = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")
	testAsset     = common.HexToAddress("0x00000000000000000000000000000000000000c1")
)

func testMarket(version entity.AaveVersion) entity.Market {
	return entity.Market{
		Chain:                 entity.ChainEthereum,
		Version:               version,
		ChainID:               1,
		PoolAddressesProvider: testProvider,
		UIPoolDataProvider:    testUIData,
	}
}

func testGatewayConfig() configloader.GatewayConfig {
	cfg := configloader.Default().Gateway
	cfg.RetryBaseDelayMillis = 1
	cfg.CallTimeoutMillis = 200
	cfg.RateLimitPerSecond = 1000
	cfg.BurstLimit = 100
	return cfg
}

type GatewaySuite struct {
	suite.Suite
	primary  *evmtest.Node
	backup   *evmtest.Node
	gateway  port.ProtocolGateway
	gwConfig configloader.GatewayConfig
}

func TestGatewaySuite(t *testing.T) {
	suite.Run(t, new(GatewaySuite))
}

func (s *GatewaySuite) SetupTest() {
	s.primary = evmtest.NewNode()
	s.backup = evmtest.NewNode()
	s.gwConfig = testGatewayConfig()
	s.gateway = NewAaveGateway(
		s.gwConfig,
		evmtest.Resolver{URLs: []string{"https://primary", "https://backup"}},
		evmtest.Callers{"https://primary": s.primary, "https://backup": s.backup},
		nil,
		zap.NewNop(),
	)
}

func (s *GatewaySuite) TestPoolAddressDispatchesOnVersion() {
	v2Pool := common.HexToAddress("0x00000000000000000000000000000000000000d2")
	s.primary.Return(s.T(), testProvider, abis.Get().AddressesProviderV2, abis.MethodGetLendingPool, v2Pool)
	s.primary.ServePool(s.T(), testMarket(entity.AaveV3), testPool)

	pool, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV3))
	s.Require().NoError(err)
	s.Equal(testPool, pool)

	pool, err = s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV2))
	s.Require().NoError(err)
	s.Equal(v2Pool, pool)
}

func (s *GatewaySuite) TestUnsupportedVersionMakesNoCall() {
	_, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveVersion(4)))
	s.ErrorIs(err, entity.ErrUnsupportedMarket)
	s.Equal(0, s.primary.Calls())
}

func (s *GatewaySuite) TestUserAccountDataKeepsHealthFactorLast() {
	market := testMarket(entity.AaveV2)
	hf, _ := new(big.Int).SetString("1050000000000000000", 10)
	s.primary.ServeAccountData(s.T(), market, testPool, hf)

	data, err := s.gateway.GetUserAccountData(context.Background(), market, testPool, testUser)
	s.Require().NoError(err)
	s.Len(data.Fields, 6)
	s.Equal(0, hf.Cmp(data.HealthFactor()))
}

func (s *GatewaySuite) TestReservesBundle() {
	market := testMarket(entity.AaveV3)
	reserves := []abis.AggregatedReserveData{evmtest.Reserve("WETH", testAsset, 18, evmtest.Units(2000, 8))}
	users := []abis.UserReserveData{evmtest.UserReserve(testAsset, evmtest.Units(5, 18), nil, nil)}
	s.primary.ServeReserves(s.T(), market, reserves, users, evmtest.USDBase())

	bundle, err := s.gateway.GetReservesAndUserReserves(context.Background(), market, testUser)
	s.Require().NoError(err)
	s.Require().Len(bundle.Reserves, 1)
	s.Equal("WETH", bundle.Reserves[0].Symbol)
	s.Equal(uint8(18), bundle.Reserves[0].Decimals)
	s.True(bundle.Reserves[0].IsActive)
	s.Require().Len(bundle.UserReserves, 1)
	s.Equal(0, evmtest.Units(5, 18).Cmp(bundle.UserReserves[0].ScaledATokenBalance))
	s.Equal(int32(8), bundle.Reference.Decimals)
	s.Equal(int32(8), bundle.Reference.USDPriceDecimals)
}

func (s *GatewaySuite) TestV2UserReservesHaveSingleOutput() {
	market := testMarket(entity.AaveV2)
	base := evmtest.USDBase()
	base.MarketReferenceCurrencyUnit = evmtest.Pow10(18)
	base.MarketReferenceCurrencyPriceInUsd = evmtest.Units(2000, 8)
	reserves := []abis.AggregatedReserveData{evmtest.Reserve("DAI", testAsset, 18, evmtest.Pow10(15))}
	users := []abis.UserReserveData{evmtest.UserReserve(testAsset, nil, evmtest.Units(3, 18), nil)}
	s.primary.ServeReserves(s.T(), market, reserves, users, base)

	bundle, err := s.gateway.GetReservesAndUserReserves(context.Background(), market, testUser)
	s.Require().NoError(err)
	s.Equal(int32(18), bundle.Reference.Decimals)
	s.Equal(0, evmtest.Units(3, 18).Cmp(bundle.UserReserves[0].ScaledVariableDebt))
}

func (s *GatewaySuite) TestTransportFailureRetriesThenFailsOver() {
	market := testMarket(entity.AaveV3)
	s.primary.FailTransport(-1)
	s.backup.ServePool(s.T(), market, testPool)

	pool, err := s.gateway.GetPoolAddress(context.Background(), market)
	s.Require().NoError(err)
	s.Equal(testPool, pool)
	s.Equal(s.gwConfig.MaxRetries+1, s.primary.Calls())
	s.Equal(1, s.backup.Calls())
}

func (s *GatewaySuite) TestTransientFailureRecoversOnSameEndpoint() {
	market := testMarket(entity.AaveV3)
	s.primary.FailTransport(1)
	s.primary.ServePool(s.T(), market, testPool)

	_, err := s.gateway.GetPoolAddress(context.Background(), market)
	s.Require().NoError(err)
	s.Equal(2, s.primary.Calls())
	s.Equal(0, s.backup.Calls())
}

func (s *GatewaySuite) TestAllEndpointsDownIsRPCUnavailable() {
	s.primary.FailTransport(-1)
	s.backup.FailTransport(-1)

	_, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV3))
	s.ErrorIs(err, entity.ErrRPCUnavailable)
	s.NotErrorIs(err, entity.ErrContractCallFailed)
}

func (s *GatewaySuite) TestRevertIsNotRetried() {
	s.primary.Revert(testProvider, abis.Get().AddressesProviderV3, abis.MethodGetPool)

	_, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV3))
	s.ErrorIs(err, entity.ErrContractCallFailed)
	s.Equal(1, s.primary.Calls())
	s.Equal(0, s.backup.Calls())
}

func (s *GatewaySuite) TestEmptyReturnDataIsContractCallFailed() {
	s.primary.Handle(testProvider, abis.Get().AddressesProviderV3.Methods[abis.MethodGetPool],
		func([]byte) ([]byte, error) { return []byte{}, nil })

	_, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV3))
	s.ErrorIs(err, entity.ErrContractCallFailed)
	s.Equal(1, s.primary.Calls())
}

func (s *GatewaySuite) TestMalformedResponseIsContractCallFailed() {
	s.primary.Handle(testProvider, abis.Get().AddressesProviderV3.Methods[abis.MethodGetPool],
		func([]byte) ([]byte, error) { return []byte{0x01, 0x02}, nil })

	_, err := s.gateway.GetPoolAddress(context.Background(), testMarket(entity.AaveV3))
	s.ErrorIs(err, entity.ErrContractCallFailed)
}

func (s *GatewaySuite) TestHealthFactorsBatchThroughMulticall() {
	market := testMarket(entity.AaveV3)
	s.primary.EnableMulticall(testMulticall)

	u1 := common.HexToAddress("0x0000000000000000000000000000000000000001")
	u2 := common.HexToAddress("0x0000000000000000000000000000000000000002")
	u3 := common.HexToAddress("0x0000000000000000000000000000000000000003")
	s.primary.ServeHealthFactors(s.T(), market, testPool, map[common.Address]*big.Int{
		u1: utils.MaxUint256(),
		u3: evmtest.Pow10(18),
	})

	cfg := s.gwConfig
	cfg.HealthFactorBatchSize = 2
	gw := NewAaveGateway(cfg, evmtest.Resolver{URLs: []string{"https://primary"}}, evmtest.Callers{"https://primary": s.primary}, nil, zap.NewNop())

	factors, err := gw.GetHealthFactors(context.Background(), market, testPool, []common.Address{u1, u2, u3})
	s.Require().NoError(err)
	s.Require().Len(factors, 3)
	s.True(utils.IsMaxUint256(factors[0]))
	s.Nil(factors[1])
	s.Equal(0, evmtest.Pow10(18).Cmp(factors[2]))
	s.Equal(2, s.primary.Calls())
}

func TestCancelledContextStopsCall(t *testing.T) {
	node := evmtest.NewNode()
	node.Block()
	cfg := testGatewayConfig()
	cfg.CallTimeoutMillis = 5000
	gw := NewAaveGateway(cfg, evmtest.Resolver{URLs: []string{"https://a"}}, evmtest.Callers{"https://a": node}, nil, zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	start := time.Now()
	_, err := gw.GetPoolAddress(ctx, testMarket(entity.AaveV3))
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrRPCUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClassifyCallError(t *testing.T) {
	assert.ErrorIs(t, classifyCallError("m", evmtest.RevertError{}), entity.ErrContractCallFailed)
	assert.ErrorIs(t, classifyCallError("m", evmtest.ErrTransport), entity.ErrRPCUnavailable)
	assert.ErrorIs(t, classifyCallError("m", context.DeadlineExceeded), entity.ErrRPCUnavailable)
}
