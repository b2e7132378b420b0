package entity

import (
	"fmt"
	"strings"
)

// Chain identifies a supported network. The string value is the identifier
// used by the remote RPC override document and the persistence layer.
type Chain string

const (
	ChainEthereum        Chain = "ETHEREUM"
	ChainEthereumSepolia Chain = "ETHEREUM_SEPOLIA"
	ChainPolygon         Chain = "POLYGON"
	ChainPolygonMumbai   Chain = "POLYGON_MUMBAI"
	ChainAvalanche       Chain = "AVALANCHE"
	ChainOptimism        Chain = "OPTIMISM"
	ChainArbitrum        Chain = "ARBITRUM"
	ChainMetis           Chain = "METIS"
	ChainBase            Chain = "BASE"
)

// AllChains lists every chain in display order.
var AllChains = []Chain{
	ChainEthereum,
	ChainEthereumSepolia,
	ChainPolygon,
	ChainPolygonMumbai,
	ChainAvalanche,
	ChainOptimism,
	ChainArbitrum,
	ChainMetis,
	ChainBase,
}

// ParseChain accepts a chain identifier in any letter case.
func ParseChain(s string) (Chain, error) {
	c := Chain(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range AllChains {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown chain %q", ErrInvalidAccount, s)
}

func (c Chain) String() string { return string(c) }

// ChainDefinition holds the metadata and default RPC endpoints of a chain.
type ChainDefinition struct {
	Chain            Chain    `json:"chain" yaml:"chain"`
	ChainID          uint64   `json:"chainId" yaml:"chainId"`
	Name             string   `json:"name" yaml:"name"`
	NativeSymbol     string   `json:"nativeSymbol" yaml:"nativeSymbol"`
	PrimaryRPCURL    string   `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
	FallbackRPCURLs  []string `json:"fallbackRpcUrls" yaml:"fallbackRpcUrls"`
	BlockExplorerURL string   `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	Testnet          bool     `json:"testnet" yaml:"testnet"`
}

// RPCURLs returns the primary endpoint followed by the fallbacks.
func (d ChainDefinition) RPCURLs() []string {
	urls := make([]string, 0, 1+len(d.FallbackRPCURLs))
	if d.PrimaryRPCURL != "" {
		urls = append(urls, d.PrimaryRPCURL)
	}
	return append(urls, d.FallbackRPCURLs...)
}
