package postgres

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/lorandme/restaurant-api/internal/domain/settings"
)

const getConfigValueSQL = `SELECT config_value FROM app_config WHERE config_key = $1`

var _ settings.Store = (*SettingsStore)(nil)

// SettingsStore reads business configuration from the app_config table.
// Every lookup failure, missing key, or parse error resolves to the
// caller-supplied default; this store never surfaces errors.
type SettingsStore struct {
	pool *pgxpool.Pool
}

// NewSettingsStore returns a SettingsStore that uses the given pool.
func NewSettingsStore(pool *pgxpool.Pool) *SettingsStore {
	return &SettingsStore{pool: pool}
}

func (s *SettingsStore) lookup(ctx context.Context, key string) (string, bool) {
	var value string
	if err := s.pool.QueryRow(ctx, getConfigValueSQL, key).Scan(&value); err != nil {
		return "", false
	}
	return value, true
}

// GetString returns the raw configured value or the default.
func (s *SettingsStore) GetString(ctx context.Context, key, def string) string {
	if v, ok := s.lookup(ctx, key); ok {
		return v
	}
	return def
}

// GetInt returns the configured value parsed as an integer or the default.
func (s *SettingsStore) GetInt(ctx context.Context, key string, def int) int {
	v, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// GetDecimal returns the configured value parsed as a decimal or the default.
func (s *SettingsStore) GetDecimal(ctx context.Context, key string, def decimal.Decimal) decimal.Decimal {
	v, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return def
	}
	return d
}
