package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
)

func openTestRepo(t *testing.T) *Repo {
	t.Helper()
	r, err := Open(context.Background(), filepath.Join(t.TempDir(), "orca.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func sampleBudget() model.Budget {
	return model.Budget{
		ID:     "casa",
		Name:   "Casa Térrea",
		BDIPct: 25,
		Items: []model.BudgetItem{
			{ID: "i1", Name: "Alvenaria", Unit: "m2", Stage: "1. Estrutura", Quantity: 2, UnitPrice: 2500, DiscountPct: 5, TaxRatePct: 15},
		},
		SchedulePeriods: []model.SchedulePeriod{
			{ID: "p1", Name: "Mês 1", Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		ScheduleAllocations: []model.ScheduleAllocation{{Stage: "1. Estrutura", PeriodID: "p1", Percentage: 100}},
	}
}

func TestRepo_BudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)

	created, err := r.CreateBudget(ctx, sampleBudget())
	require.NoError(t, err)
	assert.Equal(t, 6750.0, created.Totals.GrandTotal)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := r.FindBudget(ctx, "casa")
	require.NoError(t, err)
	assert.Equal(t, created.Items, got.Items)
	assert.Equal(t, created.Totals, got.Totals)
	assert.Equal(t, created.SchedulePeriods, got.SchedulePeriods)
	assert.Equal(t, created.ScheduleAllocations, got.ScheduleAllocations)

	_, err = r.CreateBudget(ctx, sampleBudget())
	assert.ErrorIs(t, err, ErrExists)

	n, err := r.BudgetCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRepo_CreateBudgetAssignsID(t *testing.T) {
	r := openTestRepo(t)
	b := sampleBudget()
	b.ID = ""

	created, err := r.CreateBudget(context.Background(), b)
	require.NoError(t, err)
	assert.Len(t, created.ID, 36)
}

func TestRepo_CreateBudgetRejectsInvalid(t *testing.T) {
	r := openTestRepo(t)
	b := sampleBudget()
	b.Items[0].Quantity = 0

	_, err := r.CreateBudget(context.Background(), b)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrValidation)

	_, err = r.FindBudget(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_UpdateBudgetRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	_, err := r.CreateBudget(ctx, sampleBudget())
	require.NoError(t, err)

	bdi := 0.0
	name := "Casa Reformada"
	updated, err := r.UpdateBudget(ctx, "casa", BudgetPatch{BDIPct: &bdi, Name: &name})
	require.NoError(t, err)
	assert.Equal(t, 5500.0, updated.Totals.GrandTotal)
	assert.Equal(t, "Casa Reformada", updated.Name)
	assert.Len(t, updated.Items, 1, "unpatched fields are kept")

	bad := 120.0
	_, err = r.UpdateBudget(ctx, "casa", BudgetPatch{BDIPct: &bad})
	assert.ErrorIs(t, err, pipeline.ErrValidation)

	_, err = r.UpdateBudget(ctx, "missing", BudgetPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_DeleteBudget(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	_, err := r.CreateBudget(ctx, sampleBudget())
	require.NoError(t, err)

	require.NoError(t, r.DeleteBudget(ctx, "casa"))
	assert.ErrorIs(t, r.DeleteBudget(ctx, "casa"), ErrNotFound)

	all, err := r.FindAllBudgets(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRepo_CompositionPricedAgainstCatalog(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)

	_, err := r.SaveInput(ctx, model.Input{ID: "mason", Code: "88309", Name: "Pedreiro", Price: 10, Kind: model.KindLabor})
	require.NoError(t, err)
	_, err = r.SaveInput(ctx, model.Input{ID: "cement", Code: "00001", Name: "Cimento", Price: 20, Kind: model.KindMaterial})
	require.NoError(t, err)

	saved, warnings, err := r.SaveComposition(ctx, model.Composition{
		ID: "wall", Name: "Parede", SocialChargesPct: 80, BDIPct: 20,
		Items: []model.CompositionItem{
			{ID: "w1", Type: model.ItemInput, RefID: "mason", Coefficient: 5},
			{ID: "w2", Type: model.ItemInput, RefID: "cement", Coefficient: 2},
			{ID: "w3", Type: model.ItemInput, RefID: "ghost", Coefficient: 1},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 156.0, saved.Cost.TotalWithBDI)
	require.Len(t, warnings, 1)
	assert.Equal(t, pipeline.MissingInput, warnings[0].Kind)

	got, err := r.FindComposition(ctx, "wall")
	require.NoError(t, err)
	assert.Equal(t, saved.Cost, got.Cost)
	require.Len(t, got.Items, 3)
	assert.Equal(t, "w1", got.Items[0].ID)

	inputs, comps, err := r.Catalog(ctx)
	require.NoError(t, err)
	assert.Len(t, inputs, 2)
	assert.Contains(t, comps, "wall")

	require.NoError(t, r.DeleteComposition(ctx, "wall"))
	_, err = r.FindComposition(ctx, "wall")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_SaveInputRejectsUnknownKind(t *testing.T) {
	r := openTestRepo(t)
	_, err := r.SaveInput(context.Background(), model.Input{ID: "x", Name: "X", Kind: "ROBOT"})
	assert.ErrorIs(t, err, pipeline.ErrValidation)
}

func TestRepo_Sync(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	dir := t.TempDir()

	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	write("catalog.json", `{
	  "inputs": [{"id": "mason", "name": "Pedreiro", "price": 10, "kind": "LABOR"}],
	  "compositions": [{"id": "wall", "name": "Parede", "items": [
	    {"id": "w1", "type": "INPUT", "refId": "mason", "coefficient": 5}
	  ]}]
	}`)
	write("casa.json", `{"id": "casa", "bdi": 25, "items": [
	  {"id": "i1", "name": "Alvenaria", "quantity": 2, "unitPrice": 2500, "discount": 5, "taxRate": 15}
	]}`)
	write("broken.json", `{`)

	res, err := r.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalFiles)
	assert.Equal(t, 3, res.Reparsed)
	assert.Equal(t, 1, res.FileErrors)

	b, err := r.FindBudget(ctx, "casa")
	require.NoError(t, err)
	assert.Equal(t, 6750.0, b.Totals.GrandTotal)

	c, err := r.FindComposition(ctx, "wall")
	require.NoError(t, err)
	assert.Equal(t, 50.0, c.Cost.TotalWithBDI)

	tracked, err := r.GetTrackedFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, tracked, 2, "failed files are retried next sync")

	again, err := r.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Unchanged)
	assert.Equal(t, 1, again.Reparsed)
}

func TestRepo_SyncRetriesRejectedBudget(t *testing.T) {
	ctx := context.Background()
	r := openTestRepo(t)
	dir := t.TempDir()
	bad := filepath.Join(dir, "ruim.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"id": "ruim", "bdi": 150, "items": [
	  {"id": "i1", "name": "Alvenaria", "quantity": 2, "unitPrice": 2500}
	]}`), 0o600))

	res, err := r.Sync(ctx, dir, nil)
	require.NoError(t, err)
	require.Len(t, res.Invalid, 1)
	assert.ErrorIs(t, res.Invalid[0], pipeline.ErrValidation)
	assert.Equal(t, []string{bad}, res.InvalidFiles)

	tracked, err := r.GetTrackedFiles(ctx)
	require.NoError(t, err)
	assert.NotContains(t, tracked, bad)

	again, err := r.Sync(ctx, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Unchanged)
	assert.Equal(t, 1, again.Reparsed)
	assert.Len(t, again.Invalid, 1, "rejection is reported until the file is fixed")

	_, err = r.FindBudget(ctx, "ruim")
	assert.ErrorIs(t, err, ErrNotFound)
}
