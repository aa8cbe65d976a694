package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"github.com/striemhq/striem/pkg/errs"
)

// Holder keeps the active Config behind an atomic pointer so subscribers
// read a fully-formed snapshot and never block a writer mid-swap, matching
// §5's "atomic pointer swap on reload; readers never block writers."
type Holder struct {
	ptr atomic.Pointer[Config]
}

func NewHolder(cfg *Config) *Holder {
	h := &Holder{}
	h.ptr.Store(cfg)
	return h
}

func (h *Holder) Load() *Config {
	return h.ptr.Load()
}

func (h *Holder) Store(cfg *Config) {
	h.ptr.Store(cfg)
}

// localConfigPath resolves the on-disk config file the supervisor persists
// Update patches to: $STRIEM_APPDATA/striem.json, falling back to the
// current working directory, exactly the original's get_local_config.
func localConfigPath() (string, error) {
	if dir, ok := os.LookupEnv("STRIEM_APPDATA"); ok {
		return filepath.Join(dir, "striem.json"), nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("config: determining local config path: %w", err)
	}
	return filepath.Join(cwd, "striem.json"), nil
}

// readLocalPatch loads the current on-disk patch map, returning an empty
// map if no file exists yet.
func readLocalPatch() (map[string]any, error) {
	path, err := localConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("config: reading local patch: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parsing local patch: %w", err)
	}
	return m, nil
}

// writeLocalPatch persists updated to the local config file via write-temp,
// rename, matching the original's set_local_config.
func writeLocalPatch(updated map[string]any) error {
	path, err := localConfigPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(updated, "", "  ")
	if err != nil {
		return fmt.Errorf("config: encoding local patch: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("config: writing temp patch file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("config: renaming patch file into place: %w", err)
	}
	return nil
}

// ApplyPatch merges patch into the persisted local config file, rereads it
// together with path and the environment to produce a fresh Config, and
// returns it without mutating any Holder — callers decide whether and when
// to Store it and broadcast Reload, exactly the original's Update-then-
// Reload sequencing in config_watch.
func ApplyPatch(path string, patch map[string]any) (*Config, error) {
	current, err := readLocalPatch()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigUpdateFailed, err)
	}
	for k, v := range patch {
		current[k] = v
	}
	if err := writeLocalPatch(current); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigUpdateFailed, err)
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigUpdateFailed, err)
	}
	// JSON is a valid subset of YAML, so the persisted patch layers onto
	// the file+env config the same way the original's local JSON file
	// layers on top of the merged builder result.
	overlay, err := json.Marshal(current)
	if err != nil {
		return nil, fmt.Errorf("%w: re-encoding patch overlay: %v", errs.ErrConfigUpdateFailed, err)
	}
	if err := yaml.Unmarshal(overlay, cfg); err != nil {
		return nil, fmt.Errorf("%w: applying patch overlay: %v", errs.ErrConfigUpdateFailed, err)
	}
	if err := check(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrConfigUpdateFailed, err)
	}
	return cfg, nil
}
