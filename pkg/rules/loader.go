package rules

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// LoadDir walks dir recursively, parsing every .yml/.yaml file as a rule
// and adding it to collection. One bad rule file fails the whole load,
// since a partially loaded rule set is worse than a startup error.
func LoadDir(dir string, collection Collection) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yml" && ext != ".yaml" {
			return nil
		}
		body, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("rules: read %s: %w", path, err)
		}
		r, err := ParseRule(body)
		if err != nil {
			return fmt.Errorf("rules: parse %s: %w", path, err)
		}
		if err := collection.Add(r); err != nil {
			return fmt.Errorf("rules: add %s: %w", path, err)
		}
		return nil
	})
}
