// Package config loads cuke settings from YAML or TOML files and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds all cuke configuration.
type Config struct {
	// WikiRoot is the FitNesse root directory holding page directories.
	WikiRoot string `yaml:"wiki_root" toml:"wiki_root"`
	// FeaturesDir is the scratch directory scenario files are written to.
	FeaturesDir string `yaml:"features_dir" toml:"features_dir"`
	// ResultsDir is the scratch directory the engine writes artifacts to.
	ResultsDir string `yaml:"results_dir" toml:"results_dir"`
	// AcceleratorPage is the page name that triggers a batch run.
	AcceleratorPage string `yaml:"accelerator_page" toml:"accelerator_page"`

	Engine EngineConfig `yaml:"engine" toml:"engine"`
}

// EngineConfig configures the external engine invocation.
type EngineConfig struct {
	Command   string   `yaml:"command" toml:"command"`
	Args      []string `yaml:"args" toml:"args"`
	Require   string   `yaml:"require" toml:"require"`
	Formatter string   `yaml:"formatter" toml:"formatter"`
	// ExtraArgs is appended to every run, ahead of per-call arguments.
	ExtraArgs string `yaml:"extra_args" toml:"extra_args"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		WikiRoot:        "FitNesseRoot",
		FeaturesDir:     filepath.Join("features", "fitnesse"),
		ResultsDir:      "slim_results",
		AcceleratorPage: "AaaAccelerator",
		Engine: EngineConfig{
			Command:   "cucumber",
			Formatter: "Cucumber::Formatter::SlimJSON",
		},
	}
}

// searchNames are the config files Find looks for, in order.
var searchNames = []string{"cuke.yaml", "cuke.yml", "cuke.toml"}

// Find returns the first of cuke.yaml, cuke.yml or cuke.toml present in dir,
// or "" when there is none.
func Find(dir string) string {
	for _, name := range searchNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// Load reads path over the defaults. The format follows the extension:
// .yaml/.yml or .toml. An empty path yields the defaults; a path that does
// not exist is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config file %s not found: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// envPrefix prefixes every environment override.
const envPrefix = "CUKE_"

// ApplyEnv overrides fields from CUKE_* variables found by lookup, normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	set("WIKI_ROOT", &c.WikiRoot)
	set("FEATURES_DIR", &c.FeaturesDir)
	set("RESULTS_DIR", &c.ResultsDir)
	set("ACCELERATOR_PAGE", &c.AcceleratorPage)
	set("ENGINE", &c.Engine.Command)
	set("ENGINE_REQUIRE", &c.Engine.Require)
	set("ENGINE_FORMATTER", &c.Engine.Formatter)
	set("ARGS", &c.Engine.ExtraArgs)
}

// Validate reports settings that would make a run impossible.
func (c *Config) Validate() error {
	var errs []error
	if c.WikiRoot == "" {
		errs = append(errs, errors.New("wiki_root must not be empty"))
	}
	if c.FeaturesDir == "" {
		errs = append(errs, errors.New("features_dir must not be empty"))
	}
	if c.ResultsDir == "" {
		errs = append(errs, errors.New("results_dir must not be empty"))
	}
	if filepath.Clean(c.FeaturesDir) == filepath.Clean(c.ResultsDir) {
		errs = append(errs, errors.New("features_dir and results_dir must differ"))
	}
	if c.AcceleratorPage == "" || strings.Contains(c.AcceleratorPage, ".") {
		errs = append(errs, fmt.Errorf("accelerator_page %q must be a single page name", c.AcceleratorPage))
	}
	if c.Engine.Command == "" {
		errs = append(errs, errors.New("engine.command must not be empty"))
	}
	return errors.Join(errs...)
}
