package collection

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/sirupsen/logrus"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/schema"
)

// Validator checks scanned collections against their schema documents and
// attachment rules. Problems accumulate as violations; nothing aborts.
type Validator struct {
	// RunHooks enables per-attachment validation hooks. Off by default
	// because hooks execute arbitrary corpus-supplied commands.
	RunHooks bool

	// HooksDir resolves relative hook names. Empty leaves resolution to
	// the usual PATH lookup.
	HooksDir string

	// StrictSchema rejects payload properties the schema does not declare,
	// by compiling schemas with additionalProperties set to false when the
	// document leaves it open.
	StrictSchema bool

	log *logrus.Logger
}

// NewValidator creates a validator logging through the given logger.
func NewValidator(log *logrus.Logger) *Validator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Validator{log: log}
}

// ValidateMap applies rules and schema checks to every collection in the
// map. Rules resolved for a collection are attached to it so they travel
// with the serialized snapshot.
func (v *Validator) ValidateMap(ctx context.Context, m *Map, rules RuleSet, list *diag.List) {
	for _, coll := range m.Collections {
		coll.Rules = rules.For(coll.Name)
		v.validateCollection(ctx, coll, list)
	}
}

func (v *Validator) validateCollection(ctx context.Context, coll *Collection, list *diag.List) {
	v.log.Debugf("validating collection %s (%d items)", coll.Name, len(coll.Items))

	compiled := v.compileSchema(coll, list)
	seen := make(map[string]bool, len(coll.Items))
	for _, item := range coll.Items {
		locator := coll.Name + "/" + item.ID

		if !coll.Rules.MatchID(item.ID) {
			list.Addf(diag.CategoryNameInvalid, locator,
				"item id %q does not match pattern %q", item.ID, coll.Rules.IDPattern)
		}

		if _, ok := item.Data.AsObject(); !ok {
			list.Add(diag.CategoryItemInvalid, locator, "payload root must be a mapping")
		} else if compiled != nil {
			for _, msg := range schema.Validate(compiled, item.Data) {
				list.Add(diag.CategorySchemaViolation, locator, msg)
			}
		}

		// Attachments bind to the first item of an id; later duplicates
		// must not repeat required-attachment violations.
		primary := !seen[item.ID]
		seen[item.ID] = true
		v.validateAttachments(ctx, coll, item, primary, list)
	}

	for _, path := range coll.Unclaimed {
		name := filepath.Base(path)
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if !strings.Contains(stem, "_") {
			list.Addf(diag.CategoryAttachmentInvalid, coll.Name,
				"stray file %s: name has no <item>_<tag> form", name)
		} else {
			list.Addf(diag.CategoryAttachmentInvalid, coll.Name,
				"orphan attachment %s: no matching item", name)
		}
	}
}

// compileSchema loads and compiles the collection's schema document. A
// missing file is a SchemaMissing violation; a file that fails to load or
// compile is a content problem and reported as SchemaViolation. Either way
// item validation is skipped and nil is returned.
func (v *Validator) compileSchema(coll *Collection, list *diag.List) *jsonschema.Schema {
	if _, err := os.Stat(coll.SchemaPath); err != nil {
		list.Addf(diag.CategorySchemaMissing, coll.Name, "missing schema file %s", coll.SchemaPath)
		return nil
	}
	doc, err := schema.LoadFile(coll.SchemaPath)
	if err != nil {
		list.Addf(diag.CategorySchemaViolation, coll.Name, "cannot load schema: %v", err)
		return nil
	}
	if v.StrictSchema {
		if obj, ok := doc.AsObject(); ok {
			if _, declared := obj.Get("additionalProperties"); !declared {
				obj.Set("additionalProperties", schema.Bool(false))
			}
		}
	}
	compiled, err := schema.Compile(coll.Name, doc)
	if err != nil {
		list.Addf(diag.CategorySchemaViolation, coll.Name, "schema does not compile: %v", err)
		return nil
	}
	return compiled
}

type attachment struct {
	tag  string
	path string
}

// validateAttachments enforces the collection's attachment rules for one
// item. With no rules, attachments were already paired during discovery and
// nothing further is checked.
func (v *Validator) validateAttachments(ctx context.Context, coll *Collection, item *Item, primary bool, list *diag.List) {
	if coll.Rules == nil {
		return
	}
	locator := coll.Name + "/" + item.ID

	byExt := make(map[string][]attachment)
	for _, path := range item.Attachments {
		name := filepath.Base(path)
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		tag := stem[strings.Index(stem, "_")+1:]
		byExt[ext] = append(byExt[ext], attachment{tag: tag, path: path})
	}

	// Walk in attachment order so violations come out deterministically.
	for _, path := range item.Attachments {
		name := filepath.Base(path)
		ext := strings.ToLower(filepath.Ext(name))
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		tag := stem[strings.Index(stem, "_")+1:]

		rules := coll.Rules.RulesForExtension(ext)
		if len(rules) == 0 {
			list.Addf(diag.CategoryAttachmentInvalid, locator,
				"attachment %s: extension %s not allowed", name, ext)
			continue
		}
		matched := false
		for _, rule := range rules {
			if rule.MatchTag(tag) {
				matched = true
				break
			}
		}
		if !matched {
			list.Addf(diag.CategoryAttachmentInvalid, locator,
				"attachment %s: tag %q matches no pattern for extension %s", name, tag, ext)
		}
	}

	if !primary {
		return
	}
	for _, rule := range coll.Rules.Attachments {
		var matches []attachment
		for _, a := range byExt[rule.Extension] {
			if rule.MatchTag(a.tag) {
				matches = append(matches, a)
			}
		}
		if rule.Required && len(matches) == 0 {
			list.Addf(diag.CategoryAttachmentInvalid, locator,
				"missing required attachment with extension %s", rule.Extension)
		}
		if v.RunHooks {
			for _, a := range matches {
				v.runHooks(ctx, rule, item, a.path, locator, list)
			}
		}
	}
}

// runHooks executes each validation hook with the attachment path as its
// argument. A non-zero exit is a violation carrying the hook's output.
func (v *Validator) runHooks(ctx context.Context, rule *AttachmentRule, item *Item, attPath, locator string, list *diag.List) {
	for _, hook := range rule.Hooks {
		cmdPath := hook
		if v.HooksDir != "" && !filepath.IsAbs(cmdPath) {
			cmdPath = filepath.Join(v.HooksDir, cmdPath)
		}
		v.log.Debugf("running hook %s on %s", cmdPath, attPath)
		cmd := exec.CommandContext(ctx, cmdPath, attPath)
		cmd.Dir = filepath.Dir(item.Path)
		out, err := cmd.CombinedOutput()
		if err != nil {
			msg := strings.TrimSpace(string(out))
			if msg == "" {
				msg = err.Error()
			}
			list.Addf(diag.CategoryHookFailed, locator,
				"hook %s failed for %s: %s", hook, filepath.Base(attPath), msg)
		}
	}
}
