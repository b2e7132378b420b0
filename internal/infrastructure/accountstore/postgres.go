package accountstore

import (
	"context"
	"errors"
	"fmt"

	"aave_alarm/internal/app/port"
	"aave_alarm/internal/domain/entity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS tracked_accounts (
	user_id      TEXT        NOT NULL,
	chain        TEXT        NOT NULL,
	address      TEXT        NOT NULL,
	aave_version SMALLINT    NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (user_id, chain, address, aave_version)
);

CREATE TABLE IF NOT EXISTS user_settings (
	user_id                 TEXT             PRIMARY KEY,
	health_factor_threshold DOUBLE PRECISION NOT NULL,
	device_token            TEXT             NOT NULL DEFAULT '',
	updated_at              TIMESTAMPTZ      NOT NULL DEFAULT now()
);
`

// PostgresStore persists accounts and settings in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and creates the tables if needed.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

var _ port.AccountStore = (*PostgresStore)(nil)

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) AddAccount(ctx context.Context, userID string, account entity.TrackedAccount) error {
	account, err := prepareAccount(userID, account)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO tracked_accounts (user_id, chain, address, aave_version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`, userID, string(account.Chain), account.Address, int16(account.AaveVersion))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrAccountExists, account.Key())
	}
	return nil
}

func (s *PostgresStore) ListAccounts(ctx context.Context, userID string) ([]entity.TrackedAccount, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT chain, address, aave_version
		FROM tracked_accounts
		WHERE user_id = $1
		ORDER BY created_at, chain, address, aave_version
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	accounts := []entity.TrackedAccount{}
	for rows.Next() {
		var (
			chain, address string
			version        int16
		)
		if err := rows.Scan(&chain, &address, &version); err != nil {
			return nil, err
		}
		accounts = append(accounts, entity.TrackedAccount{
			Chain:       entity.Chain(chain),
			Address:     address,
			AaveVersion: entity.AaveVersion(version),
		})
	}
	return accounts, rows.Err()
}

func (s *PostgresStore) DeleteAccount(ctx context.Context, userID string, account entity.TrackedAccount) error {
	account, err := prepareAccount(userID, account)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM tracked_accounts
		WHERE user_id = $1 AND chain = $2 AND address = $3 AND aave_version = $4
	`, userID, string(account.Chain), account.Address, int16(account.AaveVersion))
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", entity.ErrAccountNotFound, account.Key())
	}
	return nil
}

func (s *PostgresStore) GetSettings(ctx context.Context, userID string) (entity.UserSettings, error) {
	if err := checkUser(userID); err != nil {
		return entity.UserSettings{}, err
	}
	settings := entity.UserSettings{UserID: userID}
	row := s.pool.QueryRow(ctx, `
		SELECT health_factor_threshold, device_token FROM user_settings WHERE user_id = $1
	`, userID)
	if err := row.Scan(&settings.HealthFactorThreshold, &settings.DeviceToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return defaultSettings(userID), nil
		}
		return entity.UserSettings{}, err
	}
	return settings, nil
}

func (s *PostgresStore) SetThreshold(ctx context.Context, userID string, threshold float64) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	if err := checkThreshold(threshold); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, health_factor_threshold, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id) DO UPDATE
		SET health_factor_threshold = EXCLUDED.health_factor_threshold, updated_at = now()
	`, userID, threshold)
	return err
}

func (s *PostgresStore) SetDeviceToken(ctx context.Context, userID string, token string) error {
	if err := checkUser(userID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, health_factor_threshold, device_token, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE
		SET device_token = EXCLUDED.device_token, updated_at = now()
	`, userID, entity.DefaultHealthFactorThreshold, token)
	return err
}
