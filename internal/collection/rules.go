package collection

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules configures per-collection item and attachment policy. The scan
// command loads them from the corpus config; the wildcard entry "*" applies
// to collections without rules of their own. A collection with no rules at
// all gets its attachments paired but not policed.
type Rules struct {
	IDPattern   string            `yaml:"id_pattern,omitempty" json:"id_pattern,omitempty"`
	Attachments []*AttachmentRule `yaml:"allowed_attachments,omitempty" json:"allowed_attachments,omitempty"`

	idRe *regexp.Regexp
}

// AttachmentRule allows one attachment extension, optionally constraining
// the tag and requiring at least one matching attachment per item. Several
// rules may share an extension; a tag passing any of them is accepted.
type AttachmentRule struct {
	Extension  string   `yaml:"extension" json:"extension"`
	Required   bool     `yaml:"required,omitempty" json:"required,omitempty"`
	TagPattern string   `yaml:"tag_pattern,omitempty" json:"tag_pattern,omitempty"`
	Hooks      []string `yaml:"validation_hooks,omitempty" json:"validation_hooks,omitempty"`

	tagRe *regexp.Regexp
}

// UnmarshalYAML accepts either the full mapping form or a bare extension
// string as shorthand.
func (ar *AttachmentRule) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		ar.Extension = value.Value
		return nil
	}
	type plain AttachmentRule
	return value.Decode((*plain)(ar))
}

// RuleSet maps collection names to their rules; "*" is the fallback.
type RuleSet map[string]*Rules

// For returns the rules for a collection, falling back to the wildcard
// entry. Returns nil when neither exists.
func (rs RuleSet) For(name string) *Rules {
	if r, ok := rs[name]; ok {
		return r
	}
	return rs["*"]
}

// Compile normalizes extensions and precompiles every pattern in the set.
// Bad patterns are a config error, so this is fatal rather than a violation.
func (rs RuleSet) Compile() error {
	for name, r := range rs {
		if r == nil {
			continue
		}
		if err := r.compile(); err != nil {
			return fmt.Errorf("rules for collection %s: %w", name, err)
		}
	}
	return nil
}

func (r *Rules) compile() error {
	if r.IDPattern != "" {
		re, err := compileAnchored(r.IDPattern)
		if err != nil {
			return fmt.Errorf("invalid id_pattern %q: %w", r.IDPattern, err)
		}
		r.idRe = re
	}
	for _, ar := range r.Attachments {
		ext := strings.ToLower(strings.TrimSpace(ar.Extension))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		ar.Extension = ext

		if ar.TagPattern == "" {
			continue
		}
		re, err := compileAnchored(ar.TagPattern)
		if err != nil {
			return fmt.Errorf("invalid tag_pattern %q for extension %s: %w", ar.TagPattern, ar.Extension, err)
		}
		ar.tagRe = re
	}
	return nil
}

// compileAnchored anchors a pattern at the start, so "v[0-9]+" accepts
// "v12-draft" but not "rev12".
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")")
}

// MatchID reports whether an item id satisfies the pattern. Rules without
// a pattern accept everything.
func (r *Rules) MatchID(id string) bool {
	if r == nil || r.idRe == nil {
		return true
	}
	return r.idRe.MatchString(id)
}

// RulesForExtension returns every rule allowing the given extension.
func (r *Rules) RulesForExtension(ext string) []*AttachmentRule {
	if r == nil {
		return nil
	}
	var out []*AttachmentRule
	for _, ar := range r.Attachments {
		if ar.Extension == ext {
			out = append(out, ar)
		}
	}
	return out
}

// MatchTag reports whether an attachment tag satisfies the rule's pattern.
func (ar *AttachmentRule) MatchTag(tag string) bool {
	if ar == nil || ar.tagRe == nil {
		return true
	}
	return ar.tagRe.MatchString(tag)
}
