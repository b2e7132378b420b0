package abis

const addressesProviderV2JSON = `[{
	"inputs": [],
	"name": "getLendingPool",
	"outputs": [{"name": "", "type": "address"}],
	"stateMutability": "view",
	"type": "function"
}]`

const addressesProviderV3JSON = `[{
	"inputs": [],
	"name": "getPool",
	"outputs": [{"name": "", "type": "address"}],
	"stateMutability": "view",
	"type": "function"
}]`

const lendingPoolV2JSON = `[{
	"inputs": [{"name": "user", "type": "address"}],
	"name": "getUserAccountData",
	"outputs": [
		{"name": "totalCollateralETH", "type": "uint256"},
		{"name": "totalDebtETH", "type": "uint256"},
		{"name": "availableBorrowsETH", "type": "uint256"},
		{"name": "currentLiquidationThreshold", "type": "uint256"},
		{"name": "ltv", "type": "uint256"},
		{"name": "healthFactor", "type": "uint256"}
	],
	"stateMutability": "view",
	"type": "function"
}]`

const poolV3JSON = `[{
	"inputs": [{"name": "user", "type": "address"}],
	"name": "getUserAccountData",
	"outputs": [
		{"name": "totalCollateralBase", "type": "uint256"},
		{"name": "totalDebtBase", "type": "uint256"},
		{"name": "availableBorrowsBase", "type": "uint256"},
		{"name": "currentLiquidationThreshold", "type": "uint256"},
		{"name": "ltv", "type": "uint256"},
		{"name": "healthFactor", "type": "uint256"}
	],
	"stateMutability": "view",
	"type": "function"
}]`

// Only the leading fields of AggregatedReserveData are declared. Array
// elements are addressed by offset, so trailing fields can be left out.
const reservesDataFunctionJSON = `{
	"inputs": [{"name": "provider", "type": "address"}],
	"name": "getReservesData",
	"outputs": [
		{
			"components": [
				{"name": "underlyingAsset", "type": "address"},
				{"name": "name", "type": "string"},
				{"name": "symbol", "type": "string"},
				{"name": "decimals", "type": "uint256"},
				{"name": "baseLTVasCollateral", "type": "uint256"},
				{"name": "reserveLiquidationThreshold", "type": "uint256"},
				{"name": "reserveLiquidationBonus", "type": "uint256"},
				{"name": "reserveFactor", "type": "uint256"},
				{"name": "usageAsCollateralEnabled", "type": "bool"},
				{"name": "borrowingEnabled", "type": "bool"},
				{"name": "stableBorrowRateEnabled", "type": "bool"},
				{"name": "isActive", "type": "bool"},
				{"name": "isFrozen", "type": "bool"},
				{"name": "liquidityIndex", "type": "uint128"},
				{"name": "variableBorrowIndex", "type": "uint128"},
				{"name": "liquidityRate", "type": "uint128"},
				{"name": "variableBorrowRate", "type": "uint128"},
				{"name": "stableBorrowRate", "type": "uint128"},
				{"name": "lastUpdateTimestamp", "type": "uint40"},
				{"name": "aTokenAddress", "type": "address"},
				{"name": "stableDebtTokenAddress", "type": "address"},
				{"name": "variableDebtTokenAddress", "type": "address"},
				{"name": "interestRateStrategyAddress", "type": "address"},
				{"name": "availableLiquidity", "type": "uint256"},
				{"name": "totalPrincipalStableDebt", "type": "uint256"},
				{"name": "averageStableRate", "type": "uint256"},
				{"name": "stableDebtLastUpdateTimestamp", "type": "uint256"},
				{"name": "totalScaledVariableDebt", "type": "uint256"},
				{"name": "priceInMarketReferenceCurrency", "type": "uint256"}
			],
			"name": "",
			"type": "tuple[]"
		},
		{
			"components": [
				{"name": "marketReferenceCurrencyUnit", "type": "uint256"},
				{"name": "marketReferenceCurrencyPriceInUsd", "type": "int256"},
				{"name": "networkBaseTokenPriceInUsd", "type": "int256"},
				{"name": "networkBaseTokenPriceDecimals", "type": "uint8"}
			],
			"name": "",
			"type": "tuple"
		}
	],
	"stateMutability": "view",
	"type": "function"
}`

const userReserveComponentsJSON = `"components": [
	{"name": "underlyingAsset", "type": "address"},
	{"name": "scaledATokenBalance", "type": "uint256"},
	{"name": "usageAsCollateralEnabledOnUser", "type": "bool"},
	{"name": "stableBorrowRate", "type": "uint256"},
	{"name": "scaledVariableDebt", "type": "uint256"},
	{"name": "principalStableDebt", "type": "uint256"},
	{"name": "stableBorrowLastUpdateTimestamp", "type": "uint256"}
]`

// The v2 provider returns only the user reserves; v3 adds the user's eMode category.
const uiPoolDataProviderV2JSON = `[` + reservesDataFunctionJSON + `, {
	"inputs": [{"name": "provider", "type": "address"}, {"name": "user", "type": "address"}],
	"name": "getUserReservesData",
	"outputs": [{` + userReserveComponentsJSON + `, "name": "", "type": "tuple[]"}],
	"stateMutability": "view",
	"type": "function"
}]`

const uiPoolDataProviderV3JSON = `[` + reservesDataFunctionJSON + `, {
	"inputs": [{"name": "provider", "type": "address"}, {"name": "user", "type": "address"}],
	"name": "getUserReservesData",
	"outputs": [{` + userReserveComponentsJSON + `, "name": "", "type": "tuple[]"}, {"name": "", "type": "uint8"}],
	"stateMutability": "view",
	"type": "function"
}]`

const multicall3JSON = `[{
	"inputs": [{
		"components": [
			{"name": "target", "type": "address"},
			{"name": "allowFailure", "type": "bool"},
			{"name": "callData", "type": "bytes"}
		],
		"name": "calls",
		"type": "tuple[]"
	}],
	"name": "aggregate3",
	"outputs": [{
		"components": [
			{"name": "success", "type": "bool"},
			{"name": "returnData", "type": "bytes"}
		],
		"name": "returnData",
		"type": "tuple[]"
	}],
	"stateMutability": "payable",
	"type": "function"
}]`
