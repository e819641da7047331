package source

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const catalogSuffix = ".catalog"

// ScanDir walks dir and discovers budget and catalog JSON documents.
// Files named catalog.json or *.catalog.json are catalogs; every other
// .json file is a budget. Hidden files and directories are skipped.
func ScanDir(dir string) ([]DiscoveredFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, nil
	}

	var files []DiscoveredFile

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // intentionally skip unreadable entries
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(name) != ".json" {
			return nil
		}

		base := strings.TrimSuffix(name, ".json")
		df := DiscoveredFile{Path: path, Name: base, Kind: KindBudget}
		if base == "catalog" || strings.HasSuffix(base, catalogSuffix) {
			df.Kind = KindCatalog
			df.Name = strings.TrimSuffix(base, catalogSuffix)
		}

		files = append(files, df)
		return nil
	})

	// Catalogs first so compositions can be priced before budgets reference them.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Kind == KindCatalog && files[j].Kind != KindCatalog
	})

	return files, err
}

// CountKind returns how many discovered files are of kind k.
func CountKind(files []DiscoveredFile, k DocKind) int {
	n := 0
	for _, f := range files {
		if f.Kind == k {
			n++
		}
	}
	return n
}
