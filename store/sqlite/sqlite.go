/*
Package sqlite provides the SQLite-backed contract catalog.

PURPOSE:
  Persists contract lines and answers the billing.ContractLookup queries the
  batch processor issues per row. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  billing.ContractLookup: per-row contract matching

KEY TABLES:
  contracts: one row per contract line; match_key holds the description
             stripped of spaces and colons so upload-side formatting
             differences cannot break matching

INDEXES:
  idx_contracts_match:    (plant_code, match_key) - primary lookup path
  idx_contracts_fallback: (plant_code, quantity, gross_price) - the
                          description-agnostic fallback

CONCURRENCY:
  sync.RWMutex for thread-safety. Lookups are read-only and may run
  concurrently across batch rows.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers do not block
  the occasional catalog write.

USAGE:
  catalog, err := sqlite.New("./data/contracts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer catalog.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - billing/batch.go: The lookup consumer
  - billing/store/memory.go: In-memory stores for tracker and results
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/meridian/amc-billing/billing"
)

// ContractRecord is the persisted form of one catalog entry.
type ContractRecord struct {
	ID          string
	PlantCode   string
	Description string
	ItemCount   decimal.Decimal
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
	GrossPrice  decimal.Decimal
	ValidFrom   billing.Date
	ValidTo     billing.Date
	CreatedAt   time.Time
}

// Store is the SQLite contract catalog.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the catalog at dbPath. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS contracts (
		id TEXT PRIMARY KEY,
		plant_code TEXT NOT NULL,
		description TEXT NOT NULL,
		match_key TEXT NOT NULL,
		item_count TEXT NOT NULL,
		unit_price TEXT NOT NULL,
		quantity TEXT NOT NULL,
		gross_price TEXT NOT NULL,
		valid_from TEXT NOT NULL,
		valid_to TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Primary lookup path: normalized description within a plant
	CREATE INDEX IF NOT EXISTS idx_contracts_match
		ON contracts(plant_code, match_key);

	-- Description-agnostic fallback
	CREATE INDEX IF NOT EXISTS idx_contracts_fallback
		ON contracts(plant_code, quantity, gross_price);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CATALOG MAINTENANCE
// =============================================================================

// SaveContract inserts a catalog entry, assigning an ID when none is set.
func (s *Store) SaveContract(ctx context.Context, rec ContractRecord) (ContractRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO contracts
		(id, plant_code, description, match_key, item_count, unit_price,
		 quantity, gross_price, valid_from, valid_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.PlantCode,
		rec.Description,
		billing.MatchKey(rec.Description),
		rec.ItemCount.String(),
		rec.UnitPrice.String(),
		rec.Quantity.String(),
		rec.GrossPrice.String(),
		rec.ValidFrom.String(),
		rec.ValidTo.String(),
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return ContractRecord{}, fmt.Errorf("failed to save contract: %w", err)
	}
	return rec, nil
}

// ListContracts returns every catalog entry, newest first.
func (s *Store) ListContracts(ctx context.Context) ([]ContractRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryContracts(ctx, `
		SELECT id, plant_code, description, item_count, unit_price,
		       quantity, gross_price, valid_from, valid_to, created_at
		FROM contracts
		ORDER BY created_at DESC, id
	`)
}

// Reset removes all catalog entries. Intended for tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `DELETE FROM contracts`)
	return err
}

// =============================================================================
// CONTRACT LOOKUP - billing.ContractLookup implementation
// =============================================================================

// Lookup matches on (plant code, match key, quantity, gross price).
// A miss returns (nil, nil).
func (s *Store) Lookup(ctx context.Context, q billing.LookupQuery) (*billing.ContractLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOne(ctx, `
		SELECT plant_code, description, item_count, unit_price, valid_from, valid_to
		FROM contracts
		WHERE plant_code = ? AND match_key = ? AND quantity = ? AND gross_price = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, q.PlantCode, billing.MatchKey(q.Description), q.Quantity.String(), q.GrossPrice.String())
}

// LookupFallback matches on (plant code, quantity, gross price) only.
func (s *Store) LookupFallback(ctx context.Context, q billing.LookupQuery) (*billing.ContractLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOne(ctx, `
		SELECT plant_code, description, item_count, unit_price, valid_from, valid_to
		FROM contracts
		WHERE plant_code = ? AND quantity = ? AND gross_price = ?
		ORDER BY created_at DESC
		LIMIT 1
	`, q.PlantCode, q.Quantity.String(), q.GrossPrice.String())
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (*billing.ContractLine, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	var plantCode, description, itemCount, unitPrice, validFrom, validTo string
	if err := row.Scan(&plantCode, &description, &itemCount, &unitPrice, &validFrom, &validTo); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", billing.ErrLookupFailure, err)
	}

	line, err := buildLine(plantCode, description, itemCount, unitPrice, validFrom, validTo)
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (s *Store) queryContracts(ctx context.Context, query string, args ...any) ([]ContractRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	var records []ContractRecord
	for rows.Next() {
		var rec ContractRecord
		var itemCount, unitPrice, quantity, grossPrice string
		var validFrom, validTo, createdAt string
		if err := rows.Scan(&rec.ID, &rec.PlantCode, &rec.Description,
			&itemCount, &unitPrice, &quantity, &grossPrice,
			&validFrom, &validTo, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}
		if rec.ItemCount, err = decimal.NewFromString(itemCount); err != nil {
			return nil, fmt.Errorf("invalid item_count: %w", err)
		}
		if rec.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("invalid unit_price: %w", err)
		}
		if rec.Quantity, err = decimal.NewFromString(quantity); err != nil {
			return nil, fmt.Errorf("invalid quantity: %w", err)
		}
		if rec.GrossPrice, err = decimal.NewFromString(grossPrice); err != nil {
			return nil, fmt.Errorf("invalid gross_price: %w", err)
		}
		if rec.ValidFrom, err = billing.ParseDate(validFrom); err != nil {
			return nil, fmt.Errorf("invalid valid_from: %w", err)
		}
		if rec.ValidTo, err = billing.ParseDate(validTo); err != nil {
			return nil, fmt.Errorf("invalid valid_to: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("invalid created_at: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func buildLine(plantCode, description, itemCount, unitPrice, validFrom, validTo string) (billing.ContractLine, error) {
	var (
		line billing.ContractLine
		err  error
	)
	line.PlantCode = plantCode
	line.Description = description
	if line.ItemCount, err = decimal.NewFromString(itemCount); err != nil {
		return billing.ContractLine{}, fmt.Errorf("invalid item_count: %w", err)
	}
	if line.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
		return billing.ContractLine{}, fmt.Errorf("invalid unit_price: %w", err)
	}
	if line.ValidFrom, err = billing.ParseDate(validFrom); err != nil {
		return billing.ContractLine{}, fmt.Errorf("invalid valid_from: %w", err)
	}
	if line.ValidTo, err = billing.ParseDate(validTo); err != nil {
		return billing.ContractLine{}, fmt.Errorf("invalid valid_to: %w", err)
	}
	return line, nil
}
