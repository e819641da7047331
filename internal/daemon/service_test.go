package daemon

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/store"
)

func TestDiffSnapshots(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := Snapshot{
		GrandTotal: 1000,
		ByID: map[string]BudgetSummary{
			"a": {ID: "a", GrandTotal: 600, UpdatedAt: at},
			"b": {ID: "b", GrandTotal: 400, UpdatedAt: at},
		},
	}
	curr := Snapshot{
		GrandTotal: 1250.5,
		ByID: map[string]BudgetSummary{
			"a": {ID: "a", GrandTotal: 600, UpdatedAt: at},
			"c": {ID: "c", GrandTotal: 650.5, UpdatedAt: at},
		},
	}

	delta := diffSnapshots(prev, curr)
	if len(delta.Added) != 1 || delta.Added[0] != "c" {
		t.Fatalf("Added = %v, want [c]", delta.Added)
	}
	if len(delta.Removed) != 1 || delta.Removed[0] != "b" {
		t.Fatalf("Removed = %v, want [b]", delta.Removed)
	}
	if len(delta.Changed) != 0 {
		t.Fatalf("Changed = %v, want none", delta.Changed)
	}
	if delta.GrandTotal != 250.5 {
		t.Fatalf("GrandTotal delta = %.2f, want 250.50", delta.GrandTotal)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}

	if d := diffSnapshots(curr, curr); !d.isZero() {
		t.Fatalf("self diff = %+v, want zero", d)
	}
}

func TestDiffSnapshotsDetectsRetotal(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	prev := Snapshot{ByID: map[string]BudgetSummary{"a": {GrandTotal: 100, UpdatedAt: at}}, GrandTotal: 100}
	curr := Snapshot{ByID: map[string]BudgetSummary{"a": {GrandTotal: 100, UpdatedAt: at.Add(time.Second)}}, GrandTotal: 100}

	delta := diffSnapshots(prev, curr)
	sort.Strings(delta.Changed)
	if len(delta.Changed) != 1 || delta.Changed[0] != "a" {
		t.Fatalf("Changed = %v, want [a]", delta.Changed)
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{Dir: ".", Interval: 10 * time.Second, EventsBuffer: 2}, nil, nil)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollAndServe(t *testing.T) {
	ctx := context.Background()
	repo, err := store.Open(ctx, filepath.Join(t.TempDir(), "orca.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	dir := t.TempDir()
	doc := `{"id": "casa", "name": "Casa", "bdi": 25, "items": [
	  {"id": "i1", "name": "Alvenaria", "quantity": 2, "unitPrice": 2500, "discount": 5, "taxRate": 15}
	]}`
	if err := os.WriteFile(filepath.Join(dir, "casa.json"), []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}

	s := New(Config{Dir: dir}, repo, nil)
	s.pollOnce(ctx)

	st := s.snapshotStatus()
	if st.LastError != "" {
		t.Fatalf("poll error: %s", st.LastError)
	}
	if st.Summary.Budgets != 1 || st.Summary.GrandTotal != 6750 {
		t.Fatalf("summary = %+v, want 1 budget totalling 6750", st.Summary)
	}
	if st.EventCount != 1 || st.LastImported != 1 {
		t.Fatalf("events=%d imported=%d, want 1/1", st.EventCount, st.LastImported)
	}

	// Unchanged directory publishes nothing.
	s.pollOnce(ctx)
	if got := s.snapshotStatus().EventCount; got != 1 {
		t.Fatalf("events after idle poll = %d, want 1", got)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/budgets/casa")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var b model.Budget
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		t.Fatal(err)
	}
	if b.Totals.GrandTotal != 6750 {
		t.Fatalf("grand total = %.2f, want 6750", b.Totals.GrandTotal)
	}

	metricsResp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(metricsResp.Body)
	_ = metricsResp.Body.Close()
	for _, want := range []string{"orca_budgets 1", "orca_portfolio_grand_total 6750", `orca_polls_total{result="ok"} 2`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %q", want)
		}
	}

	missing, err := http.Get(srv.URL + "/v1/budgets/nope")
	if err != nil {
		t.Fatal(err)
	}
	_ = missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("missing status = %d, want 404", missing.StatusCode)
	}
}
