package port

import (
	"context"
	"math/big"

	"aave_alarm/internal/domain/entity"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// ContractCaller executes read-only contract calls against one node.
// *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// CallerProvider hands out a caller for an RPC URL, reusing connections.
type CallerProvider interface {
	GetCaller(ctx context.Context, rpcURL string) (ContractCaller, error)
}

// MarketRegistry is the static (chain, version) -> market table.
type MarketRegistry interface {
	// ResolveMarket fails with entity.ErrUnsupportedMarket for unknown pairs.
	ResolveMarket(chain entity.Chain, version entity.AaveVersion) (entity.Market, error)
	ChainDefinition(chain entity.Chain) (entity.ChainDefinition, bool)
	Markets() []entity.Market
}

// EndpointResolver resolves a chain to its JSON-RPC endpoints.
type EndpointResolver interface {
	// GetEndpoint returns the preferred endpoint: the cached override if any, else the default.
	GetEndpoint(ctx context.Context, chain entity.Chain) (string, error)
	// Endpoints returns every failover candidate, preferred first.
	Endpoints(ctx context.Context, chain entity.Chain) ([]string, error)
}

// ProtocolGateway wraps the read-only Aave contract calls.
type ProtocolGateway interface {
	GetPoolAddress(ctx context.Context, market entity.Market) (common.Address, error)
	GetUserAccountData(ctx context.Context, market entity.Market, pool common.Address, user common.Address) (entity.UserAccountData, error)
	GetReservesAndUserReserves(ctx context.Context, market entity.Market, user common.Address) (*entity.ReservesBundle, error)
	// GetHealthFactors returns raw health factors aligned with users; a nil
	// entry means the call for that user failed.
	GetHealthFactors(ctx context.Context, market entity.Market, pool common.Address, users []common.Address) ([]*big.Int, error)
}
