package indexing

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DocumentExt is the extension picked up when a directory is indexed
const DocumentExt = ".txt"

// LoadDocuments reads the given files. Directories are expanded to the .txt
// files they contain. Invalid UTF-8 is dropped rather than rejected.
func LoadDocuments(paths []string) ([]Document, error) {
	files, err := expandPaths(paths)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(files))
	seen := make(map[string]bool)
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read document: %w", err)
		}

		// Base names identify sources; fall back to the path on collisions
		source := filepath.Base(path)
		if seen[source] {
			source = filepath.ToSlash(filepath.Clean(path))
		}
		seen[source] = true

		docs = append(docs, Document{
			Source: source,
			Text:   strings.ToValidUTF8(string(content), ""),
		})
	}
	return docs, nil
}

// expandPaths replaces directories with their sorted .txt files
func expandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}

		var found []string
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(p), DocumentExt) {
				found = append(found, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", path, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
