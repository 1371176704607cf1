// Package fscheck lints the layout of a corpus tree against a declarative
// spec: which directories must exist, what files they may contain, and how
// deep the tree may go. Content is never inspected; that is scan's job.
package fscheck

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/paths"
)

// Spec is a layout specification loaded from YAML.
type Spec struct {
	Ignore      IgnoreSpec `yaml:"ignore"`
	Directories []*DirSpec `yaml:"directories"`
}

// IgnoreSpec names directories the linter skips entirely. Patterns are
// anchored at the start and matched against directory names, not paths.
type IgnoreSpec struct {
	DirNameRegex []string `yaml:"dir_name_regex,omitempty"`

	res []*regexp.Regexp
}

// DirSpec binds rules to one directory, named relative to the root.
// A directory that does not exist is skipped unless required.
type DirSpec struct {
	Path          string    `yaml:"path"`
	RequireExists bool      `yaml:"require_exists,omitempty"`
	Rules         *DirRules `yaml:"rules"`

	base string
}

// DirRules constrain the files and subdirectories of a governed directory.
type DirRules struct {
	RequireExists       bool     `yaml:"require_exists,omitempty"`
	AllowAny            bool     `yaml:"allow_any,omitempty"`
	Recursive           bool     `yaml:"recursive,omitempty"`
	AllowSubdirs        *bool    `yaml:"allow_subdirs,omitempty"`
	FileNameRegex       string   `yaml:"file_name_regex,omitempty"`
	OnlyAllowMatching   bool     `yaml:"only_allow_matching,omitempty"`
	AllowedExtensions   []string `yaml:"allowed_extensions,omitempty"`
	AllowedNames        []string `yaml:"allowed_names,omitempty"`
	RequireReadmePerDir []string `yaml:"require_readme_per_dir,omitempty"`

	fileRe *regexp.Regexp
}

// required reports whether the directory must exist. The flag is honored
// both on the entry and inside its rules block.
func (d *DirSpec) required() bool {
	return d.RequireExists || d.Rules.RequireExists
}

// allowSubdirs defaults to true when the spec is silent.
func (r *DirRules) allowSubdirs() bool {
	return r.AllowSubdirs == nil || *r.AllowSubdirs
}

// allowsFile applies the ORed allowance criteria: an exact name, a suffix
// from allowed_extensions (with the dot, case preserved), or the name
// pattern matched against the full file name.
func (r *DirRules) allowsFile(name string) bool {
	for _, allowed := range r.AllowedNames {
		if name == allowed {
			return true
		}
	}
	ext := filepath.Ext(name)
	for _, allowed := range r.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	if r.fileRe != nil && r.fileRe.MatchString(name) {
		return true
	}
	return false
}

// describeAllowed renders the allowance criteria for violation messages.
func (r *DirRules) describeAllowed() string {
	var parts []string
	if len(r.AllowedNames) > 0 {
		parts = append(parts, "names "+strings.Join(r.AllowedNames, ", "))
	}
	if len(r.AllowedExtensions) > 0 {
		parts = append(parts, "extensions "+strings.Join(r.AllowedExtensions, ", "))
	}
	if r.FileNameRegex != "" {
		parts = append(parts, "pattern "+r.FileNameRegex)
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, "; ")
}

// LoadSpec reads and compiles a layout spec. Bad YAML or bad patterns are
// config errors, so they are fatal rather than violations.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout spec %s: %w", path, err)
	}
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse layout spec %s: %w", path, err)
	}
	if err := spec.compile(); err != nil {
		return nil, fmt.Errorf("layout spec %s: %w", path, err)
	}
	return &spec, nil
}

func (s *Spec) compile() error {
	for _, pattern := range s.Ignore.DirNameRegex {
		re, err := compileAnchored(pattern)
		if err != nil {
			return fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		s.Ignore.res = append(s.Ignore.res, re)
	}
	for _, d := range s.Directories {
		if d.Rules == nil {
			d.Rules = &DirRules{}
		}
		if d.Rules.FileNameRegex != "" {
			re, err := compileAnchored(d.Rules.FileNameRegex)
			if err != nil {
				return fmt.Errorf("invalid file_name_regex %q for %s: %w", d.Rules.FileNameRegex, d.Path, err)
			}
			d.Rules.fileRe = re
		}
	}
	return nil
}

// compileAnchored anchors a pattern at the start, so "v[0-9]+" accepts
// "v12-draft.txt" but not "rev12.txt".
func compileAnchored(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + pattern + ")")
}

func (s *Spec) ignored(name string) bool {
	for _, re := range s.Ignore.res {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Check walks the tree once and applies, to every file and directory, the
// rules of the deepest governed directory containing it. Violations are
// layout problems; only an unreadable tree is an error.
func (s *Spec) Check(root string, list *diag.List) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	byBase := make(map[string][]*DirSpec)
	for _, d := range s.Directories {
		d.base = filepath.Join(absRoot, filepath.FromSlash(d.Path))
		byBase[d.base] = append(byBase[d.base], d)
	}
	// Deepest base first, so the first governing match wins.
	specs := make([]*DirSpec, len(s.Directories))
	copy(specs, s.Directories)
	sort.SliceStable(specs, func(i, j int) bool {
		return len(specs[i].base) > len(specs[j].base)
	})

	for _, d := range s.Directories {
		if info, statErr := os.Stat(d.base); statErr == nil && info.IsDir() {
			continue
		}
		if d.required() {
			list.Addf(diag.CategoryLayoutInvalid, d.Path, "required directory is missing")
		}
		// Missing directories never govern anything, whether required or not.
	}

	var walked []string
	filesIn := make(map[string][]string)
	err = filepath.WalkDir(absRoot, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == absRoot {
			return nil
		}
		if entry.IsDir() {
			if s.ignored(entry.Name()) {
				return filepath.SkipDir
			}
			walked = append(walked, path)
			return nil
		}
		dir := filepath.Dir(path)
		filesIn[dir] = append(filesIn[dir], entry.Name())
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk %s: %w", absRoot, err)
	}

	for _, dir := range append([]string{absRoot}, walked...) {
		if dir != absRoot {
			for _, d := range byBase[filepath.Dir(dir)] {
				if !d.Rules.AllowAny && !d.Rules.allowSubdirs() {
					list.Addf(diag.CategoryLayoutInvalid, paths.Rel(absRoot, dir),
						"subdirectories are not allowed under %s", d.Path)
				}
			}
		}
		d := governing(specs, dir)
		if d == nil || d.Rules.AllowAny {
			continue
		}
		s.checkDir(absRoot, d, dir, filesIn[dir], list)
	}
	return nil
}

// governing returns the deepest spec whose directory contains dir: the
// spec's own directory always, deeper levels only when the rules recurse.
func governing(specs []*DirSpec, dir string) *DirSpec {
	for _, d := range specs {
		if dir == d.base {
			return d
		}
		if d.Rules.Recursive && strings.HasPrefix(dir, d.base+string(filepath.Separator)) {
			return d
		}
	}
	return nil
}

func (s *Spec) checkDir(root string, d *DirSpec, dir string, files []string, list *diag.List) {
	rules := d.Rules

	if len(rules.RequireReadmePerDir) > 0 {
		found := false
		for _, name := range files {
			for _, want := range rules.RequireReadmePerDir {
				if name == want {
					found = true
					break
				}
			}
		}
		if !found {
			list.Addf(diag.CategoryLayoutInvalid, paths.Rel(root, dir),
				"missing README (expected one of: %s)", strings.Join(rules.RequireReadmePerDir, ", "))
		}
	}

	// only_allow_matching is the enforcement switch; without it the
	// allowance criteria are documentation only.
	if !rules.OnlyAllowMatching {
		return
	}
	for _, name := range files {
		if rules.allowsFile(name) {
			continue
		}
		list.Addf(diag.CategoryLayoutInvalid, paths.Rel(root, filepath.Join(dir, name)),
			"file not allowed under %s (allowed: %s)", d.Path, rules.describeAllowed())
	}
}
