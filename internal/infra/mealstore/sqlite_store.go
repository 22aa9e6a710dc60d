package mealstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/yanqian/nutrient-tracker/internal/domain/ledger"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS meal_records (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    owner TEXT NOT NULL,
    date TEXT NOT NULL,
    meal TEXT NOT NULL,
    food TEXT NOT NULL,
    quantity REAL NOT NULL,
    unit TEXT NOT NULL,
    calories REAL NOT NULL,
    protein REAL NOT NULL,
    carbs REAL NOT NULL,
    fat REAL NOT NULL,
    iron REAL NOT NULL,
    calc REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meal_records_owner ON meal_records(owner, seq);
`

// SQLiteStore persists records in a single-file database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens path and creates the schema if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite meal store: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite meal schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Append implements ledger.Store.
func (s *SQLiteStore) Append(ctx context.Context, owner string, r ledger.Record) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO meal_records (owner, date, meal, food, quantity, unit, calories, protein, carbs, fat, iron, calc)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, owner, r.Date, r.Meal, r.Food, r.Quantity, r.Unit, r.Calories, r.Protein, r.Carbs, r.Fat, r.Iron, r.Calc)
	if err != nil {
		return fmt.Errorf("insert meal record: %w", err)
	}
	return nil
}

// List implements ledger.Store; records come back in insertion order.
func (s *SQLiteStore) List(ctx context.Context, owner string) ([]ledger.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT date, meal, food, quantity, unit, calories, protein, carbs, fat, iron, calc
        FROM meal_records
        WHERE owner = ?
        ORDER BY seq
    `, owner)
	if err != nil {
		return nil, fmt.Errorf("query meal records: %w", err)
	}
	defer rows.Close()

	out := make([]ledger.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (ledger.Record, error) {
	var r ledger.Record
	err := row.Scan(&r.Date, &r.Meal, &r.Food, &r.Quantity, &r.Unit, &r.Calories, &r.Protein, &r.Carbs, &r.Fat, &r.Iron, &r.Calc)
	return r, err
}

var _ ledger.Store = (*SQLiteStore)(nil)
