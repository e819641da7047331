package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
)

func testInputs() InputMap {
	return InputMap{
		"mason":  {ID: "mason", Code: "88309", Name: "Pedreiro", Unit: "h", Price: 10, Kind: model.KindLabor},
		"cement": {ID: "cement", Code: "1379", Name: "Cimento", Unit: "kg", Price: 20, Kind: model.KindMaterial},
		"mixer":  {ID: "mixer", Code: "E01", Name: "Betoneira", Unit: "h", Price: 4, Kind: model.KindEquipment},
		"truck":  {ID: "truck", Code: "S01", Name: "Frete", Unit: "un", Price: 7, Kind: model.KindService},
	}
}

func TestComputeComposition_Rollup(t *testing.T) {
	inputs := testInputs()
	items := []model.CompositionItem{
		AttachInput("i1", inputs["mason"], 5),
		AttachInput("i2", inputs["cement"], 2),
	}

	cost, warnings := ComputeComposition(items, inputs, 80, 20)
	require.Empty(t, warnings)

	assert.Equal(t, 50.0, cost.LaborCost)
	assert.Equal(t, 40.0, cost.MaterialCost)
	assert.Equal(t, 0.0, cost.EquipmentCost)
	assert.Equal(t, 90.0, cost.LaborWithCharges)
	assert.Equal(t, 130.0, cost.DirectCost)
	assert.Equal(t, 156.0, cost.TotalWithBDI)
}

func TestComputeComposition_KindBuckets(t *testing.T) {
	inputs := testInputs()
	items := []model.CompositionItem{
		AttachInput("i1", inputs["mixer"], 2),
		AttachInput("i2", inputs["truck"], 1),
	}

	cost, _ := ComputeComposition(items, inputs, 0, 0)
	assert.Equal(t, 8.0, cost.EquipmentCost)
	assert.Equal(t, 7.0, cost.MaterialCost, "services roll into material")
	assert.Equal(t, 15.0, cost.DirectCost)
}

func TestComputeComposition_DanglingReference(t *testing.T) {
	items := []model.CompositionItem{
		{ID: "i1", Type: model.ItemInput, RefID: "gone", Coefficient: 3, UnitPrice: 99},
		AttachInput("i2", testInputs()["cement"], 1),
	}

	cost, warnings := ComputeComposition(items, testInputs(), 0, 0)
	require.Len(t, warnings, 1)
	assert.Equal(t, MissingInput, warnings[0].Kind)
	assert.Equal(t, "gone", warnings[0].RefID)
	assert.Equal(t, 20.0, cost.MaterialCost)
}

func TestComputeComposition_NilLookup(t *testing.T) {
	items := []model.CompositionItem{{ID: "i1", Type: model.ItemInput, RefID: "x", Coefficient: 1, UnitPrice: 5}}
	cost, warnings := ComputeComposition(items, nil, 0, 0)
	assert.Len(t, warnings, 1)
	assert.Zero(t, cost.DirectCost)
}

func TestComputeComposition_SnapshotNotLive(t *testing.T) {
	inputs := testInputs()
	items := []model.CompositionItem{AttachInput("i1", inputs["cement"], 1)}

	inputs["cement"] = model.Input{ID: "cement", Price: 500, Kind: model.KindMaterial}
	cost, _ := ComputeComposition(items, inputs, 0, 0)
	assert.Equal(t, 20.0, cost.MaterialCost)
}

func TestRecompose_DoesNotMutate(t *testing.T) {
	inputs := testInputs()
	c := model.Composition{
		ID:               "c1",
		Items:            []model.CompositionItem{AttachInput("i1", inputs["mason"], 5)},
		SocialChargesPct: 80,
		BDIPct:           20,
	}

	out, _ := Recompose(c, inputs)
	assert.Zero(t, c.Cost.TotalWithBDI)
	assert.Equal(t, 108.0, out.Cost.TotalWithBDI)

	out.Items[0].Coefficient = 99
	assert.Equal(t, 5.0, c.Items[0].Coefficient)
}

func TestRecompose_Idempotent(t *testing.T) {
	inputs := testInputs()
	c := model.Composition{
		ID: "c1",
		Items: []model.CompositionItem{
			AttachInput("i1", inputs["mason"], 5),
			AttachInput("i2", inputs["cement"], 2),
		},
		SocialChargesPct: 80,
		BDIPct:           20,
	}

	first, _ := Recompose(c, inputs)
	stripped := first
	stripped.Cost = model.CompositionCost{}
	second, _ := Recompose(stripped, inputs)
	assert.Equal(t, first.Cost, second.Cost)
}
