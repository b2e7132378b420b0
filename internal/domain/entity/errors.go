package entity

import "errors"

var (
	// ErrUnsupportedMarket is returned when no market is registered for a (chain, version) pair.
	ErrUnsupportedMarket = errors.New("unsupported market")
	// ErrRPCUnavailable marks transport failures and timeouts talking to a node.
	ErrRPCUnavailable = errors.New("rpc unavailable")
	// ErrContractCallFailed marks reverted calls and responses that do not match the ABI.
	ErrContractCallFailed = errors.New("contract call failed")
	// ErrRemoteRefreshFailed is logged by the RPC resolver and never returned to callers.
	ErrRemoteRefreshFailed = errors.New("remote rpc refresh failed")

	ErrInvalidAccount  = errors.New("invalid account")
	ErrAccountExists   = errors.New("account already tracked")
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidSettings = errors.New("invalid settings")
)
