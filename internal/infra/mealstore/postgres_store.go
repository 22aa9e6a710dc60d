package mealstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS meal_records (
    seq BIGSERIAL PRIMARY KEY,
    owner TEXT NOT NULL,
    date DATE NOT NULL,
    meal TEXT NOT NULL,
    food TEXT NOT NULL,
    quantity DOUBLE PRECISION NOT NULL,
    unit TEXT NOT NULL,
    calories DOUBLE PRECISION NOT NULL,
    protein DOUBLE PRECISION NOT NULL,
    carbs DOUBLE PRECISION NOT NULL,
    fat DOUBLE PRECISION NOT NULL,
    iron DOUBLE PRECISION NOT NULL,
    calc DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_meal_records_owner ON meal_records (owner, seq);
`

// PostgresStore implements ledger.Store using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the records table when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create postgres meal schema: %w", err)
	}
	return nil
}

// Append implements ledger.Store.
func (s *PostgresStore) Append(ctx context.Context, owner string, r ledger.Record) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO meal_records (owner, date, meal, food, quantity, unit, calories, protein, carbs, fat, iron, calc)
		VALUES ($1, $2::date, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, owner, r.Date, r.Meal, r.Food, r.Quantity, r.Unit, r.Calories, r.Protein, r.Carbs, r.Fat, r.Iron, r.Calc)
	return err
}

// List implements ledger.Store.
func (s *PostgresStore) List(ctx context.Context, owner string) ([]ledger.Record, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), meal, food, quantity, unit, calories, protein, carbs, fat, iron, calc
		FROM meal_records
		WHERE owner = $1
		ORDER BY seq
	`, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

var _ ledger.Store = (*PostgresStore)(nil)
