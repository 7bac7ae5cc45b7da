// Package source serves a demo sales-records API backed by SQLite. It exposes the
// three endpoints the gateway consumes: /records, /sellers and /customers.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/rshade/recordview/internal/logging"
)

// DriverName is the database/sql driver used by the store.
const DriverName = "sqlite"

// Seed sizes for the demo dataset.
const (
	DefaultReceiptCount = 240
	seedA               = 20240101
	seedB               = 42
	maxCents            = 250_000
	minCents            = 500
	centsPerUnit        = 100
	seedDays            = 365
)

// ErrNilStore is returned when a server is built without a store.
var ErrNilStore = errors.New("source store cannot be nil")

//nolint:gochecknoglobals // Seed tables.
var (
	seedSellers = []string{
		"Ivan Petrov", "Anna Smirnova", "Maria Kuznetsova",
		"Dmitry Volkov", "Elena Sokolova", "Pavel Morozov",
	}
	seedCustomers = []string{
		"Oleg Ivanov", "Olga Popova", "Sergey Lebedev", "Natalia Kozlova",
		"Andrei Novikov", "Irina Fedorova", "Mikhail Orlov", "Tatiana Pavlova",
	}
	seedStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
)

const schema = `
CREATE TABLE IF NOT EXISTS sellers (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS customers (
	id   INTEGER PRIMARY KEY,
	name TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS receipts (
	id           INTEGER PRIMARY KEY,
	date         TEXT    NOT NULL,
	seller_id    INTEGER NOT NULL REFERENCES sellers(id),
	customer_id  INTEGER NOT NULL REFERENCES customers(id),
	total_amount REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_receipts_date ON receipts(date);
CREATE INDEX IF NOT EXISTS idx_receipts_total ON receipts(total_amount);
`

// Store reads sellers, customers and receipts from SQLite.
type Store struct {
	db *sql.DB
}

// Open opens dsn, creates the schema and seeds receipts receipts when the
// database is empty. A receipts value below 1 uses DefaultReceiptCount.
func Open(ctx context.Context, dsn string, receipts int) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err = s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if receipts < 1 {
		receipts = DefaultReceiptCount
	}
	if err = s.seed(ctx, receipts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// seed fills an empty database with a deterministic dataset.
func (s *Store) seed(ctx context.Context, receipts int) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM receipts`).Scan(&count); err != nil {
		return fmt.Errorf("counting receipts: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, name := range seedSellers {
		if _, err = tx.ExecContext(ctx, `INSERT INTO sellers (id, name) VALUES (?, ?)`, i+1, name); err != nil {
			return fmt.Errorf("seeding sellers: %w", err)
		}
	}
	for i, name := range seedCustomers {
		if _, err = tx.ExecContext(ctx, `INSERT INTO customers (id, name) VALUES (?, ?)`, i+1, name); err != nil {
			return fmt.Errorf("seeding customers: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO receipts (id, date, seller_id, customer_id, total_amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing receipt insert: %w", err)
	}
	defer stmt.Close()

	rng := rand.New(rand.NewPCG(seedA, seedB)) //nolint:gosec // Demo data, not security sensitive.
	for i := range receipts {
		date := seedStart.AddDate(0, 0, rng.IntN(seedDays)).Format(time.DateOnly)
		cents := minCents + rng.IntN(maxCents-minCents)
		if _, err = stmt.ExecContext(ctx,
			i+1,
			date,
			rng.IntN(len(seedSellers))+1,
			rng.IntN(len(seedCustomers))+1,
			float64(cents)/centsPerUnit,
		); err != nil {
			return fmt.Errorf("seeding receipts: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing seed: %w", err)
	}

	logging.FromContext(ctx).Info().
		Ctx(ctx).
		Str("component", "source").
		Str("operation", "seed").
		Int("sellers", len(seedSellers)).
		Int("customers", len(seedCustomers)).
		Int("receipts", receipts).
		Msg("seeded demo dataset")
	return nil
}

// Sellers returns the seller index keyed by id.
func (s *Store) Sellers(ctx context.Context) (map[string]string, error) {
	return s.index(ctx, `SELECT id, name FROM sellers ORDER BY id`)
}

// Customers returns the customer index keyed by id.
func (s *Store) Customers(ctx context.Context) (map[string]string, error) {
	return s.index(ctx, `SELECT id, name FROM customers ORDER BY id`)
}

func (s *Store) index(ctx context.Context, stmt string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err = rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning index row: %w", err)
		}
		out[strconv.FormatInt(id, 10)] = name
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("reading index rows: %w", err)
	}
	return out, nil
}
