package accountstore

import (
	"fmt"
	"math"
	"strings"

	"aave_alarm/internal/domain/entity"
)

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("%w: empty user id", entity.ErrInvalidAccount)
	}
	return nil
}

// prepareAccount validates the account and returns it in canonical form.
func prepareAccount(userID string, account entity.TrackedAccount) (entity.TrackedAccount, error) {
	if err := checkUser(userID); err != nil {
		return entity.TrackedAccount{}, err
	}
	if err := account.Normalize(); err != nil {
		return entity.TrackedAccount{}, err
	}
	return account, nil
}

func checkThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return fmt.Errorf("%w: health factor threshold must be positive, got %v", entity.ErrInvalidSettings, threshold)
	}
	return nil
}

func defaultSettings(userID string) entity.UserSettings {
	return entity.UserSettings{UserID: userID, HealthFactorThreshold: entity.DefaultHealthFactorThreshold}
}
