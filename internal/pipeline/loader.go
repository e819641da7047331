package pipeline

import (
	"fmt"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/source"
)

// LoadResult holds the output of loading a directory of documents.
type LoadResult struct {
	Budgets      []model.Budget
	Inputs       []model.Input
	Compositions []model.Composition
	Warnings     []ReferenceWarning
	Invalid      []error
	FailedFiles  []string          // paths that could not be read or decoded
	InvalidFiles []string          // paths holding a document that failed validation
	Origins      map[string]string // "kind/id" -> source path

	TotalFiles  int
	ParsedFiles int
	ParseErrors int
	FileErrors  int
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and decodes every document under dir.
func Load(dir string, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return LoadFiles(files, progressFn), nil
}

// LoadFiles decodes files with a bounded worker pool, then validates each
// budget, prices compositions against the loaded inputs and recomputes
// budget totals. Invalid budgets are reported and left out.
func LoadFiles(files []source.DiscoveredFile, progressFn ProgressFunc) *LoadResult {
	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result
	}

	results := parseAll(files, progressFn)

	inputs := make(InputMap)
	var rawComps []model.Composition
	var budgets []model.Budget

	result.Origins = make(map[string]string)
	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.FailedFiles = append(result.FailedFiles, pr.File.Path)
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors

		if pr.Catalog != nil {
			for _, in := range pr.Catalog.Inputs {
				inputs[in.ID] = in
				result.Inputs = append(result.Inputs, in)
				result.Origins[originKey("input", in.ID)] = pr.File.Path
			}
			for _, c := range pr.Catalog.Compositions {
				result.Origins[originKey("composition", c.ID)] = pr.File.Path
			}
			rawComps = append(rawComps, pr.Catalog.Compositions...)
		}
		if pr.Budget != nil {
			budgets = append(budgets, *pr.Budget)
			result.Origins[originKey("budget", pr.Budget.ID)] = pr.File.Path
		}
	}

	for _, c := range rawComps {
		if err := ValidateComposition(c); err != nil {
			result.Invalid = append(result.Invalid, fmt.Errorf("composition %s: %w", c.ID, err))
			result.MarkInvalid("composition", c.ID)
			continue
		}
		priced, warnings := Recompose(c, inputs)
		result.Compositions = append(result.Compositions, priced)
		result.Warnings = append(result.Warnings, warnings...)
	}

	for _, b := range budgets {
		if err := ValidateBudget(b); err != nil {
			result.Invalid = append(result.Invalid, fmt.Errorf("budget %s: %w", b.ID, err))
			result.MarkInvalid("budget", b.ID)
			continue
		}
		result.Budgets = append(result.Budgets, RecomputeBudget(b))
	}

	return result
}

// Origin returns the file a loaded document of the given kind ("input",
// "composition" or "budget") came from.
func (r *LoadResult) Origin(kind, id string) (string, bool) {
	path, ok := r.Origins[originKey(kind, id)]
	return path, ok
}

// MarkInvalid records the file holding a rejected document so it is retried
// on the next sync.
func (r *LoadResult) MarkInvalid(kind, id string) {
	path, ok := r.Origin(kind, id)
	if !ok || slices.Contains(r.InvalidFiles, path) {
		return
	}
	r.InvalidFiles = append(r.InvalidFiles, path)
}

func originKey(kind, id string) string { return kind + "/" + id }

func parseAll(files []source.DiscoveredFile, progressFn ProgressFunc) []source.ParseResult {
	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers < 1 {
		numWorkers = 4
	}
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]source.ParseResult, len(files))
	var wg sync.WaitGroup
	var processed atomic.Int64

	for i := range files {
		work <- i
	}
	close(work)

	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for idx := range work {
				results[idx] = source.ParseFile(files[idx])
				n := processed.Add(1)
				if progressFn != nil {
					progressFn(int(n), len(files))
				}
			}
		}()
	}

	wg.Wait()
	return results
}
