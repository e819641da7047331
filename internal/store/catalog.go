package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
)

// SaveInput upserts a catalog input.
func (r *Repo) SaveInput(ctx context.Context, in model.Input) (model.Input, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	if !in.Kind.Valid() {
		return model.Input{}, fmt.Errorf("input %s: %w", in.ID, &pipeline.ValidationError{Field: "kind", Reason: "unknown input kind " + string(in.Kind)})
	}
	if in.Price < 0 {
		return model.Input{}, fmt.Errorf("input %s: %w", in.ID, &pipeline.ValidationError{Field: "price", Reason: "must not be negative"})
	}

	_, err := r.db.ExecContext(ctx, `INSERT OR REPLACE INTO inputs
		(id, code, name, unit, price, kind, source) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Code, in.Name, in.Unit, in.Price, string(in.Kind), string(in.Source),
	)
	if err != nil {
		return model.Input{}, fmt.Errorf("saving input %s: %w", in.ID, err)
	}
	return in, nil
}

// FindInput loads one input by id.
func (r *Repo) FindInput(ctx context.Context, id string) (model.Input, error) {
	row := r.db.QueryRowContext(ctx, "SELECT id, code, name, unit, price, kind, source FROM inputs WHERE id = ?", id)
	in, err := scanInput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Input{}, fmt.Errorf("input %s: %w", id, ErrNotFound)
	}
	return in, err
}

// FindAllInputs loads every input ordered by code.
func (r *Repo) FindAllInputs(ctx context.Context) ([]model.Input, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, code, name, unit, price, kind, source FROM inputs ORDER BY code, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var inputs []model.Input
	for rows.Next() {
		in, err := scanInput(rows)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInput(row rowScanner) (model.Input, error) {
	var in model.Input
	var kind, src string
	if err := row.Scan(&in.ID, &in.Code, &in.Name, &in.Unit, &in.Price, &kind, &src); err != nil {
		return model.Input{}, err
	}
	in.Kind = model.InputKind(kind)
	in.Source = model.SourceKind(src)
	return in, nil
}

// SaveComposition prices c against the stored catalog and upserts it with
// its items. Missing references are returned as warnings.
func (r *Repo) SaveComposition(ctx context.Context, c model.Composition) (model.Composition, []pipeline.ReferenceWarning, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := pipeline.ValidateComposition(c); err != nil {
		return model.Composition{}, nil, fmt.Errorf("composition %s: %w", c.ID, err)
	}

	inputs, _, err := r.Catalog(ctx)
	if err != nil {
		return model.Composition{}, nil, err
	}
	priced, warnings := pipeline.Recompose(c, inputs)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Composition{}, nil, err
	}
	defer func() { _ = tx.Rollback() }()

	cost := priced.Cost
	_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO compositions
		(id, code, name, unit, social_charges_pct, bdi_pct, material_cost, labor_cost,
		 equipment_cost, labor_with_charges, direct_cost, total_with_bdi)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		priced.ID, priced.Code, priced.Name, priced.Unit, priced.SocialChargesPct, priced.BDIPct,
		cost.MaterialCost, cost.LaborCost, cost.EquipmentCost, cost.LaborWithCharges,
		cost.DirectCost, cost.TotalWithBDI,
	)
	if err != nil {
		return model.Composition{}, nil, fmt.Errorf("saving composition %s: %w", priced.ID, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM composition_items WHERE composition_id = ?", priced.ID); err != nil {
		return model.Composition{}, nil, fmt.Errorf("clearing items of %s: %w", priced.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO composition_items
		(composition_id, position, id, type, ref_id, coefficient, unit_price)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return model.Composition{}, nil, err
	}
	defer func() { _ = stmt.Close() }()

	for i, it := range priced.Items {
		if it.ID == "" {
			it.ID = uuid.NewString()
			priced.Items[i].ID = it.ID
		}
		if _, err := stmt.ExecContext(ctx, priced.ID, i, it.ID, string(it.Type), it.RefID, it.Coefficient, it.UnitPrice); err != nil {
			return model.Composition{}, nil, fmt.Errorf("saving item %s of %s: %w", it.ID, priced.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Composition{}, nil, err
	}
	return priced, warnings, nil
}

// FindComposition loads one composition and its items.
func (r *Repo) FindComposition(ctx context.Context, id string) (model.Composition, error) {
	row := r.db.QueryRowContext(ctx, compositionSelect+" WHERE id = ?", id)
	c, err := scanComposition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Composition{}, fmt.Errorf("composition %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.Composition{}, err
	}

	items, err := r.compositionItems(ctx, id)
	if err != nil {
		return model.Composition{}, err
	}
	c.Items = items[c.ID]
	return c, nil
}

// FindAllCompositions loads every composition ordered by code.
func (r *Repo) FindAllCompositions(ctx context.Context) ([]model.Composition, error) {
	rows, err := r.db.QueryContext(ctx, compositionSelect+" ORDER BY code, id")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var comps []model.Composition
	for rows.Next() {
		c, err := scanComposition(rows)
		if err != nil {
			return nil, err
		}
		comps = append(comps, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	items, err := r.compositionItems(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range comps {
		comps[i].Items = items[comps[i].ID]
	}
	return comps, nil
}

// DeleteComposition removes a composition and its items.
func (r *Repo) DeleteComposition(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM compositions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("composition %s: %w", id, ErrNotFound)
	}
	return nil
}

// Catalog returns an in-memory snapshot of the stored inputs and
// compositions for use as engine lookups.
func (r *Repo) Catalog(ctx context.Context) (pipeline.InputMap, pipeline.CompositionMap, error) {
	inputs, err := r.FindAllInputs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading inputs: %w", err)
	}
	comps, err := r.FindAllCompositions(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("loading compositions: %w", err)
	}

	im := make(pipeline.InputMap, len(inputs))
	for _, in := range inputs {
		im[in.ID] = in
	}
	cm := make(pipeline.CompositionMap, len(comps))
	for _, c := range comps {
		cm[c.ID] = c
	}
	return im, cm, nil
}

const compositionSelect = `SELECT id, code, name, unit, social_charges_pct, bdi_pct,
	material_cost, labor_cost, equipment_cost, labor_with_charges, direct_cost, total_with_bdi
	FROM compositions`

func scanComposition(row rowScanner) (model.Composition, error) {
	var c model.Composition
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.Unit, &c.SocialChargesPct, &c.BDIPct,
		&c.Cost.MaterialCost, &c.Cost.LaborCost, &c.Cost.EquipmentCost,
		&c.Cost.LaborWithCharges, &c.Cost.DirectCost, &c.Cost.TotalWithBDI)
	return c, err
}

// compositionItems loads items grouped by composition. An empty id loads all.
func (r *Repo) compositionItems(ctx context.Context, id string) (map[string][]model.CompositionItem, error) {
	query := "SELECT composition_id, id, type, ref_id, coefficient, unit_price FROM composition_items"
	var args []any
	if id != "" {
		query += " WHERE composition_id = ?"
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, query+" ORDER BY composition_id, position", args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := make(map[string][]model.CompositionItem)
	for rows.Next() {
		var compID, typ string
		var it model.CompositionItem
		if err := rows.Scan(&compID, &it.ID, &typ, &it.RefID, &it.Coefficient, &it.UnitPrice); err != nil {
			return nil, err
		}
		it.Type = model.ItemType(typ)
		items[compID] = append(items[compID], it)
	}
	return items, rows.Err()
}
