package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angirov/gretildb/internal/collection"
)

// CorpusConfigName is the per-corpus config file at the corpus root.
const CorpusConfigName = "gretildb.yaml"

// CorpusConfig is corpus-level configuration from gretildb.yaml.
type CorpusConfig struct {
	// SchemasDir holds the schema documents (default: "_schemas").
	SchemasDir string `yaml:"schemas_dir,omitempty"`

	// Relations configures relation handling during builds.
	Relations *RelationsConfig `yaml:"relations,omitempty"`

	// Collections holds per-collection item and attachment rules; the key
	// "*" applies to collections without rules of their own.
	Collections collection.RuleSet `yaml:"collections,omitempty"`

	// Site configures the static site renderer.
	Site *SiteConfig `yaml:"site,omitempty"`
}

// RelationsConfig configures relation handling during builds.
type RelationsConfig struct {
	// LazyDiscovery realizes relations that appear only in item payloads
	// (default: true).
	LazyDiscovery *bool `yaml:"lazy_discovery,omitempty"`
}

// SiteConfig configures the static site renderer.
type SiteConfig struct {
	Title  string `yaml:"title,omitempty"`
	Output string `yaml:"output,omitempty"`
}

// DefaultCorpusConfig returns the corpus configuration defaults.
func DefaultCorpusConfig() *CorpusConfig {
	return &CorpusConfig{SchemasDir: collection.DefaultSchemasDir}
}

// LoadCorpusConfig loads gretildb.yaml from the corpus root. Returns the
// defaults if the file doesn't exist.
func LoadCorpusConfig(root string) (*CorpusConfig, error) {
	return LoadCorpusConfigFrom(filepath.Join(root, CorpusConfigName), true)
}

// LoadCorpusConfigFrom loads corpus configuration from a specific path.
// When optional is true a missing file yields the defaults.
func LoadCorpusConfigFrom(path string, optional bool) (*CorpusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return DefaultCorpusConfig(), nil
		}
		return nil, fmt.Errorf("failed to read corpus config %s: %w", path, err)
	}

	var config CorpusConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse corpus config %s: %w", path, err)
	}
	if config.SchemasDir == "" {
		config.SchemasDir = collection.DefaultSchemasDir
	}
	config.Collections = normalizeRuleKeys(config.Collections)
	if err := config.Collections.Compile(); err != nil {
		return nil, fmt.Errorf("corpus config %s: %w", path, err)
	}
	return &config, nil
}

// normalizeRuleKeys rewrites rule keys to collection directory form, so
// "works" in the config addresses the _works directory. The wildcard key
// passes through.
func normalizeRuleKeys(rules collection.RuleSet) collection.RuleSet {
	if len(rules) == 0 {
		return rules
	}
	out := make(collection.RuleSet, len(rules))
	for name, r := range rules {
		if name != "*" && !strings.HasPrefix(name, "_") {
			name = "_" + name
		}
		out[name] = r
	}
	return out
}

// IsLazyDiscoveryEnabled returns whether payload-discovered relations get
// join tables (default: true).
func (cc *CorpusConfig) IsLazyDiscoveryEnabled() bool {
	if cc.Relations == nil || cc.Relations.LazyDiscovery == nil {
		return true
	}
	return *cc.Relations.LazyDiscovery
}

// GetSiteConfig returns the site config with defaults applied.
func (cc *CorpusConfig) GetSiteConfig() *SiteConfig {
	cfg := SiteConfig{}
	if cc.Site != nil {
		cfg = *cc.Site
	}
	if cfg.Title == "" {
		cfg.Title = "Corpus"
	}
	if cfg.Output == "" {
		cfg.Output = "site"
	}
	return &cfg
}
