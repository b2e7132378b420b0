package port

import (
	"context"

	"aave_alarm/internal/domain/entity"
)

// AccountStore persists tracked accounts and settings per user.
type AccountStore interface {
	AddAccount(ctx context.Context, userID string, account entity.TrackedAccount) error
	ListAccounts(ctx context.Context, userID string) ([]entity.TrackedAccount, error)
	DeleteAccount(ctx context.Context, userID string, account entity.TrackedAccount) error

	GetSettings(ctx context.Context, userID string) (entity.UserSettings, error)
	SetThreshold(ctx context.Context, userID string, threshold float64) error
	SetDeviceToken(ctx context.Context, userID string, token string) error
}
