package source

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/orca/internal/model"
)

func writeDoc(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sampleBudget = `{
  "id": "casa-01",
  "clientId": "cli-7",
  "name": "Casa térrea",
  "bdi": 25,
  "items": [
    {"id": "i1", "name": "Alvenaria", "stage": "1.0 Estrutura", "quantity": 2, "unitPrice": 2500, "discount": 5, "taxRate": 15}
  ],
  "schedulePeriods": [{"id": "p1", "name": "Mês 1", "date": "2025-01-01"}],
  "scheduleAllocations": [{"stage": "1.0 Estrutura", "periodId": "p1", "percentage": 100}],
  "baselineAllocations": [],
  "measurements": [
    {"id": "m1", "name": "Medição 1", "date": "2025-01-31T12:00:00.000Z", "items": [{"itemId": "i1", "quantityExecuted": 1}], "savedAt": "not-a-date"}
  ]
}`

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "obra/casa.json", sampleBudget)
	writeDoc(t, dir, "sinapi.catalog.json", `{"inputs": []}`)
	writeDoc(t, dir, "notes.txt", "ignore")
	writeDoc(t, dir, ".trash/old.json", "{}")

	files, err := ScanDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, KindCatalog, files[0].Kind)
	assert.Equal(t, "sinapi", files[0].Name)
	assert.Equal(t, KindBudget, files[1].Kind)
	assert.Equal(t, "casa", files[1].Name)
	assert.Equal(t, 1, CountKind(files, KindBudget))
}

func TestScanDir_Missing(t *testing.T) {
	files, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseFile_Budget(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "casa.json", sampleBudget)

	res := ParseFile(DiscoveredFile{Path: path, Name: "casa", Kind: KindBudget})
	require.NoError(t, res.Err)
	require.NotNil(t, res.Budget)

	b := res.Budget
	assert.Equal(t, "casa-01", b.ID)
	assert.Equal(t, 25.0, b.BDIPct)
	require.Len(t, b.Items, 1)
	assert.Equal(t, 5.0, b.Items[0].DiscountPct)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), b.SchedulePeriods[0].Date)
	assert.Equal(t, time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC), b.Measurements[0].Date)
	assert.True(t, b.Measurements[0].SavedAt.IsZero())
	assert.Equal(t, 1, res.ParseErrors)
}

func TestParse_DefaultsIDToFileName(t *testing.T) {
	res := Parse(DiscoveredFile{Name: "galpao", Kind: KindBudget}, []byte(`{"items": []}`))
	require.NoError(t, res.Err)
	assert.Equal(t, "galpao", res.Budget.ID)
}

func TestParse_Catalog(t *testing.T) {
	body := `{"inputs": [{"id": "in1", "code": "88309", "name": "Pedreiro", "unit": "h", "price": 25.5, "kind": "LABOR", "source": "SINAPI"}],
	          "compositions": [{"id": "c1", "name": "Parede", "items": [{"id": "ci1", "type": "INPUT", "refId": "in1", "coefficient": 1.2}], "socialChargesPct": 84.5, "bdiPct": 20}]}`

	res := Parse(DiscoveredFile{Kind: KindCatalog}, []byte(body))
	require.NoError(t, res.Err)
	require.NotNil(t, res.Catalog)
	assert.Equal(t, model.KindLabor, res.Catalog.Inputs[0].Kind)
	assert.Equal(t, model.SourceSINAPI, res.Catalog.Inputs[0].Source)
	assert.Equal(t, 84.5, res.Catalog.Compositions[0].SocialChargesPct)
}

func TestParse_Malformed(t *testing.T) {
	res := Parse(DiscoveredFile{Path: "x.json", Kind: KindBudget}, []byte(`{"items": [`))
	assert.Error(t, res.Err)
	assert.Nil(t, res.Budget)
}

func TestEncodeBudget_RoundTripsDates(t *testing.T) {
	res := Parse(DiscoveredFile{Kind: KindBudget}, []byte(sampleBudget))
	require.NoError(t, res.Err)

	data, err := EncodeBudget(*res.Budget)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"date": "2025-01-01T00:00:00Z"`)

	again := Parse(DiscoveredFile{Kind: KindBudget}, data)
	require.NoError(t, again.Err)
	assert.Equal(t, res.Budget.SchedulePeriods, again.Budget.SchedulePeriods)
	assert.Equal(t, 0, again.ParseErrors)
}
