package port

import (
	"context"

	"aave_alarm/internal/domain/entity"
)

// PositionService computes account snapshots.
type PositionService interface {
	ComputeSnapshot(ctx context.Context, account entity.TrackedAccount) (*entity.AccountSnapshot, error)

	// ComputeSnapshots loads every account independently; one failure never hides the others.
	ComputeSnapshots(ctx context.Context, accounts []entity.TrackedAccount) []entity.SnapshotResult

	// HealthFactors reads only the health factor, batching accounts per market.
	HealthFactors(ctx context.Context, accounts []entity.TrackedAccount) []entity.HealthFactorResult
}

// UserSession resolves the local app user id once initialization completes.
type UserSession interface {
	Wait(ctx context.Context) (string, error)
}
