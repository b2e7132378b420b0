package entity

// NoLiquidationRisk is reported as the health factor of an account without debt.
const NoLiquidationRisk = -1.0

// SingleAssetUsageInfo is one reserve in a snapshot. A nil side means the
// reserve does not support that action; zero means supported but unused.
type SingleAssetUsageInfo struct {
	Symbol   string   `json:"symbol"`
	Supplied *float64 `json:"supplied,omitempty"`
	Borrowed *float64 `json:"borrowed,omitempty"`
}

// AccountSnapshot is the normalized position of one tracked account.
type AccountSnapshot struct {
	Account       TrackedAccount         `json:"account"`
	HealthFactor  float64                `json:"healthFactor"`
	NetAPY        float64                `json:"netAPY"`
	TotalSupplied float64                `json:"totalSupplied"`
	TotalBorrowed float64                `json:"totalBorrowed"`
	Assets        []SingleAssetUsageInfo `json:"assets"`
}

// SnapshotResult is the outcome for a single account of a multi-account fetch.
type SnapshotResult struct {
	Account  TrackedAccount   `json:"account"`
	Snapshot *AccountSnapshot `json:"snapshot,omitempty"`
	Error    *SnapshotError   `json:"error,omitempty"`
}

// HealthFactorResult is one entry of a batched health factor read.
type HealthFactorResult struct {
	Account      TrackedAccount `json:"account"`
	HealthFactor float64        `json:"healthFactor"`
	Error        *SnapshotError `json:"error,omitempty"`
}
