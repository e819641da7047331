// Package store provides the SQLite-backed repository for budgets and the
// input/composition catalog.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrExists is returned when creating a record whose id is taken.
	ErrExists = errors.New("already exists")
)

// Repo persists budgets, inputs and compositions.
type Repo struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at dbPath and applies migrations.
func Open(ctx context.Context, dbPath string) (*Repo, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	// A single connection keeps pragmas and transactions on one sqlite handle.
	db.SetMaxOpenConns(1)

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repo{db: db, now: time.Now}, nil
}

// Close closes the database.
func (r *Repo) Close() error {
	return r.db.Close()
}

// BudgetPatch carries a partial budget update; nil fields are left as stored.
type BudgetPatch struct {
	Name                *string
	ClientID            *string
	BDIPct              *float64
	Items               *[]model.BudgetItem
	SchedulePeriods     *[]model.SchedulePeriod
	ScheduleAllocations *[]model.ScheduleAllocation
	BaselineAllocations *[]model.ScheduleAllocation
	Measurements        *[]model.Measurement
}

// Apply returns b with the patch merged in.
func (p BudgetPatch) Apply(b model.Budget) model.Budget {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.ClientID != nil {
		b.ClientID = *p.ClientID
	}
	if p.BDIPct != nil {
		b.BDIPct = *p.BDIPct
	}
	if p.Items != nil {
		b.Items = *p.Items
	}
	if p.SchedulePeriods != nil {
		b.SchedulePeriods = *p.SchedulePeriods
	}
	if p.ScheduleAllocations != nil {
		b.ScheduleAllocations = *p.ScheduleAllocations
	}
	if p.BaselineAllocations != nil {
		b.BaselineAllocations = *p.BaselineAllocations
	}
	if p.Measurements != nil {
		b.Measurements = *p.Measurements
	}
	return b
}

// CreateBudget validates, totals and inserts a new budget. An empty id is
// replaced with a fresh UUID.
func (r *Repo) CreateBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if _, err := r.FindBudget(ctx, b.ID); err == nil {
		return model.Budget{}, fmt.Errorf("budget %s: %w", b.ID, ErrExists)
	} else if !errors.Is(err, ErrNotFound) {
		return model.Budget{}, err
	}

	now := r.now().UTC().Truncate(time.Second)
	b.CreatedAt = now
	b.UpdatedAt = now
	return r.SaveBudget(ctx, b)
}

// UpdateBudget merges patch into the stored budget, recomputes its totals and
// persists it, so stored totals are never stale.
func (r *Repo) UpdateBudget(ctx context.Context, id string, patch BudgetPatch) (model.Budget, error) {
	current, err := r.FindBudget(ctx, id)
	if err != nil {
		return model.Budget{}, err
	}
	merged := patch.Apply(current)
	merged.UpdatedAt = r.now().UTC().Truncate(time.Second)
	return r.SaveBudget(ctx, merged)
}

// SaveBudget validates, recomputes and upserts b as-is.
func (r *Repo) SaveBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	if err := pipeline.ValidateBudget(b); err != nil {
		return model.Budget{}, fmt.Errorf("budget %s: %w", b.ID, err)
	}
	b = pipeline.RecomputeBudget(b)
	if b.CreatedAt.IsZero() {
		b.CreatedAt = r.now().UTC().Truncate(time.Second)
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}

	doc, err := source.EncodeBudget(b)
	if err != nil {
		return model.Budget{}, fmt.Errorf("encoding budget %s: %w", b.ID, err)
	}

	t := b.Totals
	_, err = r.db.ExecContext(ctx, `INSERT OR REPLACE INTO budgets
		(id, client_id, name, bdi_pct, subtotal, total_discount, total_tax, bdi_amount,
		 grand_total, document, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.ClientID, b.Name, b.BDIPct, t.Subtotal, t.TotalDiscount, t.TotalTax, t.BDIAmount,
		t.GrandTotal, string(doc), source.FormatDate(b.CreatedAt), source.FormatDate(b.UpdatedAt),
	)
	if err != nil {
		return model.Budget{}, fmt.Errorf("saving budget %s: %w", b.ID, err)
	}
	return b, nil
}

// FindBudget loads one budget by id.
func (r *Repo) FindBudget(ctx context.Context, id string) (model.Budget, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, "SELECT document FROM budgets WHERE id = ?", id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Budget{}, err
	}
	return decodeBudget(id, doc)
}

// FindAllBudgets loads every budget ordered by name.
func (r *Repo) FindAllBudgets(ctx context.Context) ([]model.Budget, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, document FROM budgets ORDER BY name, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var budgets []model.Budget
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		b, err := decodeBudget(id, doc)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

// DeleteBudget removes a budget.
func (r *Repo) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM budgets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return nil
}

// BudgetCount returns the number of stored budgets.
func (r *Repo) BudgetCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM budgets").Scan(&count)
	return count, err
}

func decodeBudget(id, doc string) (model.Budget, error) {
	res := source.Parse(source.DiscoveredFile{Name: id, Kind: source.KindBudget}, []byte(doc))
	if res.Err != nil {
		return model.Budget{}, res.Err
	}
	return pipeline.RecomputeBudget(*res.Budget), nil
}
