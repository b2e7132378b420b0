package networkdefinition

import (
	"aave_alarm/internal/domain/entity"

	"github.com/ethereum/go-ethereum/common"
)

// Predefined chain definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Ethereum = entity.ChainDefinition{
		Chain:            entity.ChainEthereum,
		ChainID:          1,
		Name:             "Ethereum Mainnet",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://ethereum-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/eth", "https://eth.llamarpc.com"},
		BlockExplorerURL: "https://etherscan.io",
	}
	EthereumSepolia = entity.ChainDefinition{
		Chain:            entity.ChainEthereumSepolia,
		ChainID:          11155111,
		Name:             "Ethereum Sepolia",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://ethereum-sepolia-rpc.publicnode.com",
		FallbackRPCURLs:  []string{"https://rpc.sepolia.org"},
		BlockExplorerURL: "https://sepolia.etherscan.io",
		Testnet:          true,
	}
	Polygon = entity.ChainDefinition{
		Chain:            entity.ChainPolygon,
		ChainID:          137,
		Name:             "Polygon PoS",
		NativeSymbol:     "POL",
		PrimaryRPCURL:    "https://polygon-rpc.com/",
		FallbackRPCURLs:  []string{"https://rpc.ankr.com/polygon", "https://polygon.publicnode.com"},
		BlockExplorerURL: "https://polygonscan.com",
	}
	PolygonMumbai = entity.ChainDefinition{
		Chain:            entity.ChainPolygonMumbai,
		ChainID:          80001,
		Name:             "Polygon Mumbai",
		NativeSymbol:     "MATIC",
		PrimaryRPCURL:    "https://rpc-mumbai.maticvigil.com",
		FallbackRPCURLs:  []string{},
		BlockExplorerURL: "https://mumbai.polygonscan.com",
		Testnet:          true,
	}
	Avalanche = entity.ChainDefinition{
		Chain:            entity.ChainAvalanche,
		ChainID:          43114,
		Name:             "Avalanche C-Chain",
		NativeSymbol:     "AVAX",
		PrimaryRPCURL:    "https://api.avax.network/ext/bc/C/rpc",
		FallbackRPCURLs:  []string{"https://avalanche.public-rpc.com", "https://rpc.ankr.com/avalanche"},
		BlockExplorerURL: "https://snowtrace.io",
	}
	Optimism = entity.ChainDefinition{
		Chain:            entity.ChainOptimism,
		ChainID:          10,
		Name:             "OP Mainnet",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://mainnet.optimism.io",
		FallbackRPCURLs:  []string{"https://optimism.publicnode.com", "https://rpc.ankr.com/optimism"},
		BlockExplorerURL: "https://optimistic.etherscan.io",
	}
	Arbitrum = entity.ChainDefinition{
		Chain:            entity.ChainArbitrum,
		ChainID:          42161,
		Name:             "Arbitrum One",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://arb1.arbitrum.io/rpc",
		FallbackRPCURLs:  []string{"https://arbitrum.llamarpc.com", "https://arbitrum.publicnode.com"},
		BlockExplorerURL: "https://arbiscan.io",
	}
	Metis = entity.ChainDefinition{
		Chain:            entity.ChainMetis,
		ChainID:          1088,
		Name:             "Metis Andromeda Mainnet",
		NativeSymbol:     "METIS",
		PrimaryRPCURL:    "https://andromeda.metis.io/?owner=1088",
		FallbackRPCURLs:  []string{},
		BlockExplorerURL: "https://andromeda-explorer.metis.io",
	}
	Base = entity.ChainDefinition{
		Chain:            entity.ChainBase,
		ChainID:          8453,
		Name:             "Base Mainnet",
		NativeSymbol:     "ETH",
		PrimaryRPCURL:    "https://mainnet.base.org",
		FallbackRPCURLs:  []string{"https://base.publicnode.com", "https://base.llamarpc.com"},
		BlockExplorerURL: "https://basescan.org",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[entity.Chain]entity.ChainDefinition{
	Ethereum.Chain:        Ethereum,
	EthereumSepolia.Chain: EthereumSepolia,
	Polygon.Chain:         Polygon,
	PolygonMumbai.Chain:   PolygonMumbai,
	Avalanche.Chain:       Avalanche,
	Optimism.Chain:        Optimism,
	Arbitrum.Chain:        Arbitrum,
	Metis.Chain:           Metis,
	Base.Chain:            Base,
}

type marketKey struct {
	chain   entity.Chain
	version entity.AaveVersion
}

func market(def entity.ChainDefinition, version entity.AaveVersion, provider, uiProvider string) entity.Market {
	return entity.Market{
		Chain:                 def.Chain,
		Version:               version,
		ChainID:               def.ChainID,
		PoolAddressesProvider: common.HexToAddress(provider),
		UIPoolDataProvider:    common.HexToAddress(uiProvider),
	}
}

// allKnownMarkets holds one row per deployed (chain, version). A missing
// row means the protocol version is not deployed there.
var allKnownMarkets = map[marketKey]entity.Market{
	{entity.ChainEthereum, entity.AaveV2}: market(Ethereum, entity.AaveV2,
		"0xB53C1a33016B2DC2fF3653530bfF1848a515c8c5", "0x00e50FAB64eBB37b87df06Aa46b8B35d5f1A4e1A"),
	{entity.ChainEthereum, entity.AaveV3}: market(Ethereum, entity.AaveV3,
		"0x2f39d218133AFaB8F2B819B1066c7E434Ad94E9e", "0x91c0eA31b49B69Ea18607702c5d9aC360bf3dE7d"),
	{entity.ChainEthereumSepolia, entity.AaveV3}: market(EthereumSepolia, entity.AaveV3,
		"0x012bAC54348C0E635dCAc9D5FB99f06F24136C9A", "0x69529987FA4A075D0C00B0128fa848dc9ebbE9CE"),
	{entity.ChainPolygon, entity.AaveV2}: market(Polygon, entity.AaveV2,
		"0xd05e3E715d945B59290df0ae8eF85c1BdB684744", "0x204f2Eb81D996729829debC819f7992DCEEfE7b1"),
	{entity.ChainPolygon, entity.AaveV3}: market(Polygon, entity.AaveV3,
		"0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb", "0xC69728f11E9E6127733751c8410432913123acf1"),
	{entity.ChainPolygonMumbai, entity.AaveV3}: market(PolygonMumbai, entity.AaveV3,
		"0x4CeDCB57Af02293231BAA9D39354D6BFDFD251e0", "0x928d9A76705aA6e4a6650BFb7E7912e413Fe7341"),
	{entity.ChainAvalanche, entity.AaveV2}: market(Avalanche, entity.AaveV2,
		"0xb6A86025F0FE1862B372cb0ca18CE3EDe02A318f", "0xf51F46EfE8eFdD2c7fd8B6E2F1A6ec99D7f4f5aF"),
	{entity.ChainAvalanche, entity.AaveV3}: market(Avalanche, entity.AaveV3,
		"0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb", "0xF71DBe0FAEF1473ffC607d4c555dfF0aEaDb878d"),
	{entity.ChainOptimism, entity.AaveV3}: market(Optimism, entity.AaveV3,
		"0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb", "0xbd83DdBE37fc91923d59C8c1E0bDe0CccCa332d5"),
	{entity.ChainArbitrum, entity.AaveV3}: market(Arbitrum, entity.AaveV3,
		"0xa97684ead0e402dC232d5A977953DF7ECBaB3CDb", "0x145dE30c929a065582da84Cf96F88460dB9745A7"),
	{entity.ChainMetis, entity.AaveV3}: market(Metis, entity.AaveV3,
		"0xB9FABd7500B2C6781c35Dd48d54f81fc2299D7AF", "0x5d4D4007A4c6336550DdAa2a7c0d5e7972eebd16"),
	{entity.ChainBase, entity.AaveV3}: market(Base, entity.AaveV3,
		"0xe20fCBdBfFC4Dd138cE8b2E6FBb6CB49777ad64D", "0x174446a6741300cD2E7C1b1A636Fee99c8F83502"),
}
