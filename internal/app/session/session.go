package session

import (
	"context"
	"fmt"
	"sync"

	"aave_alarm/internal/app/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDKey = "session:app_user_id"

// Session resolves the local app user id exactly once. Every caller waits on
// the same completion signal.
type Session struct {
	store  port.KeyValueCache
	logger *zap.Logger

	once   sync.Once
	done   chan struct{}
	userID string
	err    error
}

func New(store port.KeyValueCache, logger *zap.Logger) *Session {
	return &Session{
		store:  store,
		logger: logger.Named("Session"),
		done:   make(chan struct{}),
	}
}

var _ port.UserSession = (*Session)(nil)

// Start begins initialization in the background. Calling it more than once,
// or calling Wait first, is harmless.
func (s *Session) Start(ctx context.Context) {
	s.once.Do(func() {
		go s.initialize(context.WithoutCancel(ctx))
	})
}

// Wait blocks until the user id is known or ctx is done.
func (s *Session) Wait(ctx context.Context) (string, error) {
	s.Start(ctx)
	select {
	case <-s.done:
		return s.userID, s.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *Session) initialize(ctx context.Context) {
	defer close(s.done)

	id, found, err := s.store.Get(ctx, userIDKey)
	if err != nil {
		s.err = fmt.Errorf("load app user id: %w", err)
		s.logger.Error("Failed to load app user id", zap.Error(err))
		return
	}
	if found && id != "" {
		s.userID = id
		s.logger.Info("Restored app user id", zap.String("userID", id))
		return
	}

	id = uuid.NewString()
	if err := s.store.Set(ctx, userIDKey, id); err != nil {
		s.err = fmt.Errorf("store app user id: %w", err)
		s.logger.Error("Failed to store app user id", zap.Error(err))
		return
	}
	s.userID = id
	s.logger.Info("Created app user id", zap.String("userID", id))
}
