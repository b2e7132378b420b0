package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
	"aave_alarm/internal/infrastructure/configloader"

	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"
)

// EVMClientProvider implements port.CallerProvider with one ethclient per RPC URL.
type EVMClientProvider struct {
	clients           map[string]*ethclient.Client
	mu                sync.Mutex
	logger            *zap.Logger
	connectionTimeout time.Duration
}

// NewEVMClientProvider creates a new EVMClientProvider.
func NewEVMClientProvider(cfg *configloader.Config, logger *zap.Logger) *EVMClientProvider {
	return &EVMClientProvider{
		clients:           make(map[string]*ethclient.Client),
		logger:            logger.Named("EVMClientProvider"),
		connectionTimeout: time.Duration(cfg.Gateway.ConnectionTimeoutSeconds) * time.Second,
	}
}

var _ port.CallerProvider = (*EVMClientProvider)(nil)

// GetCaller returns the cached client for rpcURL, dialing it on first use.
func (p *EVMClientProvider) GetCaller(ctx context.Context, rpcURL string) (port.ContractCaller, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if client, exists := p.clients[rpcURL]; exists {
		return client, nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, p.connectionTimeout)
	defer cancel()

	p.logger.Debug("Dialing RPC endpoint", zap.String("rpc", rpcURL))
	client, err := ethclient.DialContext(dialCtx, rpcURL)
	if err != nil {
		p.logger.Warn("Failed to dial RPC endpoint", zap.String("rpc", rpcURL), zap.Error(err))
		return nil, fmt.Errorf("%w: failed to connect to RPC %s: %w", entity.ErrRPCUnavailable, rpcURL, err)
	}

	p.clients[rpcURL] = client
	return client, nil
}

// Close releases every cached client.
func (p *EVMClientProvider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for url, c := range p.clients {
		c.Close()
		delete(p.clients, url)
	}
}
