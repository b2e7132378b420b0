package accountstore

import (
	"context"
	"fmt"
	"sync"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"
)

// MemoryStore keeps accounts and settings in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string][]entity.TrackedAccount
	settings map[string]entity.UserSettings
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[string][]entity.TrackedAccount),
		settings: make(map[string]entity.UserSettings),
	}
}

var _ port.AccountStore = (*MemoryStore)(nil)

func (s *MemoryStore) AddAccount(_ context.Context, userID string, account entity.TrackedAccount) error {
	account, err := prepareAccount(userID, account)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts[userID] {
		if existing == account {
			return fmt.Errorf("%w: %s", entity.ErrAccountExists, account.Key())
		}
	}
	s.accounts[userID] = append(s.accounts[userID], account)
	return nil
}

// ListAccounts returns accounts in insertion order.
func (s *MemoryStore) ListAccounts(_ context.Context, userID string) ([]entity.TrackedAccount, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.TrackedAccount, len(s.accounts[userID]))
	copy(out, s.accounts[userID])
	return out, nil
}

func (s *MemoryStore) DeleteAccount(_ context.Context, userID string, account entity.TrackedAccount) error {
	account, err := prepareAccount(userID, account)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.accounts[userID]
	for i, existing := range list {
		if existing == account {
			s.accounts[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", entity.ErrAccountNotFound, account.Key())
}

func (s *MemoryStore) GetSettings(_ context.Context, userID string) (entity.UserSettings, error) {
	if err := checkUser(userID); err != nil {
		return entity.UserSettings{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.settings[userID]; ok {
		return settings, nil
	}
	return defaultSettings(userID), nil
}

func (s *MemoryStore) SetThreshold(_ context.Context, userID string, threshold float64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := checkThreshold(threshold); err != nil {
		return err
	}
	s.update(userID, func(settings *entity.UserSettings) { settings.HealthFactorThreshold = threshold })
	return nil
}

func (s *MemoryStore) SetDeviceToken(_ context.Context, userID string, token string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	s.update(userID, func(settings *entity.UserSettings) { settings.DeviceToken = token })
	return nil
}

func (s *MemoryStore) update(userID string, apply func(*entity.UserSettings)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.settings[userID]
	if !ok {
		settings = defaultSettings(userID)
	}
	apply(&settings)
	s.settings[userID] = settings
}
