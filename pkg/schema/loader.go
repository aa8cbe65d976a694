package schema

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/striemhq/striem/pkg/ocsf"
)

// Loaded pairs a parsed Class with the OCSF class it encodes and the file
// it was read from, for diagnostics and for the "description"/"schema_file"
// metadata the writer stamps into every Parquet file it produces.
type Loaded struct {
	Class    ocsf.Class
	Category string
	Name     string
	Path     string
	Schema   *Class
}

// LoadDir walks dir recursively, parsing every file as a schema and
// resolving its message name against the ocsf package's class table. A
// schema file whose message name does not name a known OCSF class is
// reported as an error rather than silently skipped, since it almost
// always means the class table needs a new entry.
func LoadDir(dir string) ([]Loaded, error) {
	var out []Loaded
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		parsed, err := Parse(string(raw))
		if err != nil {
			return fmt.Errorf("schema: parse %s: %w", path, err)
		}
		class, category, name, err := lookupByName(parsed.Name)
		if err != nil {
			return fmt.Errorf("schema: %s: %w", path, err)
		}
		out = append(out, Loaded{
			Class:    class,
			Category: category,
			Name:     name,
			Path:     path,
			Schema:   parsed,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// lookupByName resolves a schema's message name (e.g. "api_activity") to
// its OCSF class by scanning the known class table, since schema files are
// keyed by class name rather than by numeric class_uid.
func lookupByName(name string) (ocsf.Class, string, string, error) {
	for _, c := range ocsf.Classes() {
		_, category, className, err := ocsf.Lookup(uint64(c))
		if err == nil && className == name {
			return c, category, className, nil
		}
	}
	return 0, "", "", fmt.Errorf("no OCSF class registered for schema name %q", name)
}
