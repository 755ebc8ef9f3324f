package localfs

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/kirillkom/file-organizer/internal/core/domain"
)

// Tree lists every folder below root with the files it directly contains.
// Root itself is not listed. Nested folders are reported by their
// slash-separated path relative to root.
func (FS) Tree(root string) ([]domain.TreeFolder, error) {
	folders := map[string]*domain.TreeFolder{}
	order := []string{}

	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if entry.IsDir() {
			folders[rel] = &domain.TreeFolder{Category: rel, Files: []string{}}
			order = append(order, rel)
			return nil
		}

		parent := filepath.ToSlash(filepath.Dir(rel))
		if folder, ok := folders[parent]; ok {
			folder.Files = append(folder.Files, entry.Name())
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk folder tree: %w", err)
	}

	sort.Strings(order)
	out := make([]domain.TreeFolder, 0, len(order))
	for _, name := range order {
		folder := folders[name]
		sort.Strings(folder.Files)
		out = append(out, *folder)
	}
	return out, nil
}
