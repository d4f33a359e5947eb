package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// Releaser is a transient resource tied to a stored result.
type Releaser interface {
	Release() error
}

// ResultStore is the ordered, session-scoped set of converted images.
type ResultStore struct {
	mu       sync.RWMutex
	db       *sql.DB
	ownsDB   bool
	attached map[string][]Releaser
}

// NewResultStore wraps an already migrated database.
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db, attached: make(map[string][]Releaser)}
}

// OpenResultStore creates a store backed by a fresh in-memory database. Close drops the database.
func OpenResultStore(ctx context.Context) (*ResultStore, error) {
	db, err := shared.NewSessionDatabase(ctx)
	if err != nil {
		return nil, err
	}
	s := NewResultStore(db)
	s.ownsDB = true
	return s, nil
}

// AppendBatch appends results, in order, as one contiguous block. An empty batch is a no-op.
func (s *ResultStore) AppendBatch(ctx context.Context, results []*models.ConversionResult) error {
	if len(results) == 0 {
		return nil
	}

	for _, r := range results {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO conversion_results (id, original_name, extension, encoded_data, original_size, converted_size, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.ExecContext(ctx,
			r.ID(),
			r.OriginalName(),
			r.Extension(),
			r.Data(),
			int64(r.OriginalSize()),
			int64(r.ConvertedSize()),
			r.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert result %s: %w", r.OriginalName(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// RemoveAt deletes the entry at index and releases its attached resources.
//
// An out-of-range index is a no-op and returns false. Release errors are returned after the row is gone.
func (s *ResultStore) RemoveAt(ctx context.Context, index int) (bool, error) {
	if index < 0 {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM conversion_results ORDER BY seq LIMIT 1 OFFSET ?", index,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find result at %d: %w", index, err)
	}

	return s.removeLocked(ctx, id)
}

// RemoveID deletes the entry with id and releases its attached resources.
//
// An unknown id, including one already removed, is a no-op and returns false.
func (s *ResultStore) RemoveID(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.removeLocked(ctx, id)
}

func (s *ResultStore) removeLocked(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM conversion_results WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("failed to delete result: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete result: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	return true, s.releaseLocked(id)
}

// Attach ties r to the entry with id. If no such entry exists r is released immediately.
func (s *ResultStore) Attach(ctx context.Context, id string, r Releaser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM conversion_results WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return r.Release()
	}
	if err != nil {
		return fmt.Errorf("failed to look up result: %w", err)
	}

	s.attached[id] = append(s.attached[id], r)
	return nil
}

// Detach removes r from the entry with id and releases it. r is released even if it was never attached.
func (s *ResultStore) Detach(id string, r Releaser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.attached[id]
	for i, a := range list {
		if a == r {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(s.attached, id)
	} else {
		s.attached[id] = list
	}
	return r.Release()
}

// Attached counts live resources for id.
func (s *ResultStore) Attached(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attached[id])
}

func (s *ResultStore) releaseLocked(id string) error {
	var errs []error
	for _, r := range s.attached[id] {
		if err := r.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	delete(s.attached, id)
	return errors.Join(errs...)
}

// Len returns the number of stored results.
func (s *ResultStore) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversion_results").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count results: %w", err)
	}
	return n, nil
}

// At returns the entry at index, or false when index is out of range.
func (s *ResultStore) At(ctx context.Context, index int) (*models.ConversionResult, bool, error) {
	if index < 0 {
		return nil, false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectResults+" ORDER BY seq LIMIT 1 OFFSET ?", index)
	r, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Snapshot returns every entry in order. Later writes do not affect the returned slice.
func (s *ResultStore) Snapshot(ctx context.Context) ([]*models.ConversionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectResults+" ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var results []*models.ConversionResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate results: %w", err)
	}
	return results, nil
}

// TotalSavedBytes sums original minus converted size across all entries. The sum may be negative.
func (s *ResultStore) TotalSavedBytes(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COALESCE(SUM(original_size - converted_size), 0) FROM conversion_results",
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum savings: %w", err)
	}
	return total, nil
}

// Close releases all attached resources and, for stores created by [OpenResultStore], closes the database.
func (s *ResultStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for id := range s.attached {
		if err := s.releaseLocked(id); err != nil {
			errs = append(errs, err)
		}
	}
	if s.ownsDB {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}
	return errors.Join(errs...)
}

const selectResults = `
	SELECT id, original_name, extension, encoded_data, original_size, converted_size, created_at
	FROM conversion_results`

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*models.ConversionResult, error) {
	var (
		id, name, ext string
		data          []byte
		orig, conv    int64
		createdAt     time.Time
	)
	if err := row.Scan(&id, &name, &ext, &data, &orig, &conv, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan result: %w", err)
	}
	return models.RestoreConversionResult(id, name, ext, data, uint64(orig), uint64(conv), createdAt), nil
}
