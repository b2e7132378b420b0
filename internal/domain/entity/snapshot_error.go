package entity

import "errors"

// SnapshotError describes why one account could not be loaded.
type SnapshotError struct {
	Chain       Chain       `json:"chain"`
	Address     string      `json:"address"`
	AaveVersion AaveVersion `json:"aaveVersion"`
	Kind        string      `json:"kind"`
	Message     string      `json:"message"`
}

// Error kinds exposed to API clients.
const (
	KindUnsupportedMarket  = "UnsupportedMarket"
	KindRPCUnavailable     = "RpcUnavailable"
	KindContractCallFailed = "ContractCallFailed"
	KindInvalidAccount     = "InvalidAccount"
	KindInternal           = "Internal"
)

// ErrorKind maps an error to its taxonomy name.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedMarket):
		return KindUnsupportedMarket
	case errors.Is(err, ErrRPCUnavailable):
		return KindRPCUnavailable
	case errors.Is(err, ErrContractCallFailed):
		return KindContractCallFailed
	case errors.Is(err, ErrInvalidAccount):
		return KindInvalidAccount
	default:
		return KindInternal
	}
}

// NewSnapshotError builds the per-account error record for err.
func NewSnapshotError(acc TrackedAccount, err error) *SnapshotError {
	return &SnapshotError{
		Chain:       acc.Chain,
		Address:     acc.Address,
		AaveVersion: acc.AaveVersion,
		Kind:        ErrorKind(err),
		Message:     err.Error(),
	}
}
