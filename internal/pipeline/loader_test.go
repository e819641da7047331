package pipeline

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "catalog.json", `{
	  "inputs": [
	    {"id": "mason", "name": "Pedreiro", "price": 10, "kind": "LABOR"},
	    {"id": "cement", "name": "Cimento", "price": 20, "kind": "MATERIAL"}
	  ],
	  "compositions": [
	    {"id": "wall", "name": "Parede", "socialChargesPct": 80, "bdiPct": 20, "items": [
	      {"id": "w1", "type": "INPUT", "refId": "mason", "coefficient": 5},
	      {"id": "w2", "type": "INPUT", "refId": "cement", "coefficient": 2},
	      {"id": "w3", "type": "INPUT", "refId": "ghost", "coefficient": 1}
	    ]}
	  ]
	}`)
	writeFile(t, dir, "casa.json", `{"id": "casa", "bdi": 25, "items": [
	  {"id": "i1", "name": "Alvenaria", "quantity": 2, "unitPrice": 2500, "discount": 5, "taxRate": 15}
	]}`)
	writeFile(t, dir, "bad.json", `{"id": "bad", "items": [{"id": "x", "quantity": -1, "unitPrice": 1}]}`)
	writeFile(t, dir, "broken.json", `{`)

	var calls atomic.Int64
	res, err := Load(dir, func(_, _ int) { calls.Add(1) })
	require.NoError(t, err)

	assert.Equal(t, 4, res.TotalFiles)
	assert.Equal(t, 3, res.ParsedFiles)
	assert.Equal(t, 1, res.FileErrors)
	assert.Equal(t, int64(4), calls.Load())

	require.Len(t, res.Budgets, 1)
	assert.Equal(t, 6750.0, res.Budgets[0].Totals.GrandTotal)

	require.Len(t, res.Invalid, 1)
	assert.ErrorIs(t, res.Invalid[0], ErrValidation)
	assert.Equal(t, []string{filepath.Join(dir, "bad.json")}, res.InvalidFiles)
	assert.Equal(t, []string{filepath.Join(dir, "broken.json")}, res.FailedFiles)

	origin, ok := res.Origin("composition", "wall")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "catalog.json"), origin)

	require.Len(t, res.Compositions, 1)
	assert.Equal(t, 156.0, res.Compositions[0].Cost.TotalWithBDI)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "wall", res.Warnings[0].Owner)
	assert.Len(t, res.Inputs, 2)
}

func TestLoad_EmptyDir(t *testing.T) {
	res, err := Load(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Zero(t, res.TotalFiles)
}
