package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/theirongolddev/orca/internal/model"
	"github.com/theirongolddev/orca/internal/pipeline"
	"github.com/theirongolddev/orca/internal/source"
)

// FileInfo tracks a document's mtime and size for change detection.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// SyncResult extends LoadResult with change-detection counters.
type SyncResult struct {
	pipeline.LoadResult
	Unchanged int
	Reparsed  int
}

// Sync imports every document under dir that changed since the last sync.
// Catalog inputs are saved before compositions, and compositions before
// budgets, so each layer is priced against the one below it.
func (r *Repo) Sync(ctx context.Context, dir string, progressFn pipeline.ProgressFunc) (*SyncResult, error) {
	files, err := source.ScanDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	result := &SyncResult{LoadResult: pipeline.LoadResult{TotalFiles: len(files)}}
	if len(files) == 0 {
		return result, nil
	}

	tracked, err := r.GetTrackedFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading file tracker: %w", err)
	}

	var toReparse []source.DiscoveredFile
	stats := make(map[string]FileInfo, len(files))
	for _, f := range files {
		info, err := os.Stat(f.Path)
		if err != nil {
			continue
		}
		cur := FileInfo{MtimeNs: info.ModTime().UnixNano(), SizeBytes: info.Size()}
		stats[f.Path] = cur
		if prev, ok := tracked[f.Path]; ok && prev == cur {
			result.Unchanged++
			continue
		}
		toReparse = append(toReparse, f)
	}
	result.Reparsed = len(toReparse)
	if len(toReparse) == 0 {
		return result, nil
	}

	loaded := pipeline.LoadFiles(toReparse, func(current, _ int) {
		if progressFn != nil {
			progressFn(current+result.Unchanged, result.TotalFiles)
		}
	})
	total := result.TotalFiles
	result.LoadResult = *loaded
	result.TotalFiles = total

	for _, in := range loaded.Inputs {
		if _, err := r.SaveInput(ctx, in); err != nil {
			result.Invalid = append(result.Invalid, err)
			result.MarkInvalid("input", in.ID)
		}
	}
	// Loaded compositions are re-priced against the full stored catalog.
	for _, c := range loaded.Compositions {
		if _, _, err := r.SaveComposition(ctx, c); err != nil {
			result.Invalid = append(result.Invalid, err)
			result.MarkInvalid("composition", c.ID)
		}
	}
	for _, b := range loaded.Budgets {
		if err := r.importBudget(ctx, b); err != nil {
			result.Invalid = append(result.Invalid, err)
			result.MarkInvalid("budget", b.ID)
		}
	}

	// Files that failed to decode or held a rejected document stay
	// untracked so their errors surface again on the next sync.
	failed := make(map[string]struct{}, len(result.FailedFiles)+len(result.InvalidFiles))
	for _, p := range slices.Concat(result.FailedFiles, result.InvalidFiles) {
		failed[p] = struct{}{}
	}
	for _, f := range toReparse {
		if _, bad := failed[f.Path]; bad {
			continue
		}
		if err := r.trackFile(ctx, f.Path, stats[f.Path]); err != nil {
			return nil, fmt.Errorf("tracking %s: %w", f.Path, err)
		}
	}

	return result, nil
}

// importBudget saves b, keeping the original creation time of an existing
// record with the same id.
func (r *Repo) importBudget(ctx context.Context, b model.Budget) error {
	if existing, err := r.FindBudget(ctx, b.ID); err == nil && b.CreatedAt.IsZero() {
		b.CreatedAt = existing.CreatedAt
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = r.now().UTC().Truncate(time.Second)
	}
	_, err := r.SaveBudget(ctx, b)
	return err
}

// GetTrackedFiles returns the mtime and size recorded for every synced file.
func (r *Repo) GetTrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

func (r *Repo) trackFile(ctx context.Context, path string, fi FileInfo) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes) VALUES (?, ?, ?)",
		path, fi.MtimeNs, fi.SizeBytes)
	return err
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "orca")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "orca")
}

// DefaultPath returns the full path to the default database.
func DefaultPath() string {
	return filepath.Join(DataDir(), "orca.db")
}
