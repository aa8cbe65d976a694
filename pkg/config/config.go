package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/striemhq/striem/pkg/log"
)

// StringOrList accepts either a single YAML scalar or a sequence, matching
// the original config crate's untagged StringOrList enum. Detection rule
// directories are commonly one path but operators also split rules by team
// or severity across several.
type StringOrList []string

func (s *StringOrList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var one string
		if err := node.Decode(&one); err != nil {
			return err
		}
		*s = StringOrList{one}
		return nil
	}
	var many []string
	if err := node.Decode(&many); err != nil {
		return err
	}
	*s = StringOrList(many)
	return nil
}

// HostConfig resolves a listener or dial target from either an explicit
// address or a port layered onto a default host, mirroring the original
// HostConfig's address/url/port precedence without needing a URL type for
// the handful of host:port pairs StrIEM actually dials.
type HostConfig struct {
	Address string `yaml:"address,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// Addr returns the host:port string this config resolves to, falling back
// to localhost with the configured port when no explicit address is set.
func (h HostConfig) Addr() string {
	if h.Address != "" {
		if strings.Contains(h.Address, ":") {
			return h.Address
		}
		return fmt.Sprintf("%s:%d", h.Address, h.Port)
	}
	return fmt.Sprintf("127.0.0.1:%d", h.Port)
}

type OutputConfig struct {
	Enabled bool       `yaml:"enabled"`
	Target  HostConfig `yaml:"target"`
}

type StorageConfig struct {
	Enabled          bool          `yaml:"enabled"`
	BaseDir          string        `yaml:"base_dir"`
	SchemaDir        string        `yaml:"schema_dir"`
	RotationInterval time.Duration `yaml:"rotation_interval"`
}

type APIConfig struct {
	Enabled  bool       `yaml:"enabled"`
	Listener HostConfig `yaml:"listener"`
}

// Config is the fully-resolved StrIEM configuration. Unlike the wire types
// above it carries no optionality beyond what check validates: defaults are
// applied once during Load so the rest of the daemon reads plain values.
type Config struct {
	DB         string       `yaml:"db"`
	Detections StringOrList `yaml:"detections"`
	Input      HostConfig   `yaml:"input"`
	Output     OutputConfig `yaml:"output"`
	Storage    StorageConfig `yaml:"storage"`
	API        APIConfig    `yaml:"api"`
	FQDN       string       `yaml:"fqdn"`
}

// defaults mirrors StrIEMConfigOptions::default(): a CWD-relative db path
// and an input listener bound to localhost on port 7171, with
// everything else absent until a file or environment layer turns it on.
func defaults() *Config {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &Config{
		DB:    cwd,
		Input: HostConfig{Address: "127.0.0.1", Port: 7171},
	}
}

// Load builds a Config by layering compiled-in defaults, an optional YAML
// file at path (skipped entirely when path is empty or missing), and
// STRIEM_-prefixed environment variables, then runs check. This is the Go
// analogue of the original's Config::builder() chain of File/Environment
// sources, collapsed into three explicit layers since Go has no equivalent
// crate to do the merging for us.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := check(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg fields from STRIEM_-prefixed environment variables,
// the Go equivalent of config::Environment::with_prefix("STRIEM").
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv("STRIEM_DB"); ok {
		cfg.DB = v
	}
	if v, ok := os.LookupEnv("STRIEM_FQDN"); ok {
		cfg.FQDN = v
	}
	if v, ok := os.LookupEnv("STRIEM_DETECTIONS"); ok {
		cfg.Detections = StringOrList(strings.Split(v, ","))
	}
	if v, ok := os.LookupEnv("STRIEM_INPUT_ADDRESS"); ok {
		cfg.Input.Address = v
	}
	if v, ok := lookupEnvInt("STRIEM_INPUT_PORT"); ok {
		cfg.Input.Port = v
	}
	if v, ok := lookupEnvBool("STRIEM_OUTPUT_ENABLED"); ok {
		cfg.Output.Enabled = v
	}
	if v, ok := os.LookupEnv("STRIEM_OUTPUT_TARGET_ADDRESS"); ok {
		cfg.Output.Target.Address = v
	}
	if v, ok := lookupEnvInt("STRIEM_OUTPUT_TARGET_PORT"); ok {
		cfg.Output.Target.Port = v
	}
	if v, ok := lookupEnvBool("STRIEM_STORAGE_ENABLED"); ok {
		cfg.Storage.Enabled = v
	}
	if v, ok := os.LookupEnv("STRIEM_STORAGE_BASE_DIR"); ok {
		cfg.Storage.BaseDir = v
	}
	if v, ok := os.LookupEnv("STRIEM_STORAGE_SCHEMA_DIR"); ok {
		cfg.Storage.SchemaDir = v
	}
	if v, ok := os.LookupEnv("STRIEM_STORAGE_ROTATION_INTERVAL"); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Storage.RotationInterval = d
		}
	}
	if v, ok := lookupEnvBool("STRIEM_API_ENABLED"); ok {
		cfg.API.Enabled = v
	}
	if v, ok := os.LookupEnv("STRIEM_API_LISTENER_ADDRESS"); ok {
		cfg.API.Listener.Address = v
	}
	if v, ok := lookupEnvInt("STRIEM_API_LISTENER_PORT"); ok {
		cfg.API.Listener.Port = v
	}
}

func lookupEnvInt(key string) (int, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Logger.Warn().Str("env", key).Str("value", v).Msg("ignoring malformed integer environment override")
		return 0, false
	}
	return n, true
}

func lookupEnvBool(key string) (bool, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Logger.Warn().Str("env", key).Str("value", v).Msg("ignoring malformed boolean environment override")
		return false, false
	}
	return b, true
}

// check mirrors StrIEMConfig::check: the daemon must have somewhere to send
// events, either storage, a forwarding target, or the management API, or it
// is pure wasted work.
func check(cfg *Config) error {
	if !cfg.Output.Enabled && !cfg.Storage.Enabled {
		if !cfg.API.Enabled {
			return fmt.Errorf("no output, storage, or API configured; StrIEM cannot run")
		}
		log.Logger.Warn().Msg("no output or storage configured; events will be dropped")
	}
	return nil
}
