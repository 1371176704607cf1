// Package diag collects violations raised while scanning, building, or
// exporting a corpus. Violations accumulate in order and never abort a run;
// callers decide the exit code from the final list.
package diag

import "fmt"

// Category classifies a violation. The build pipeline uses the core
// categories; scan and lint add the supplementary ones below.
type Category string

const (
	// Core build categories.
	CategoryIdentifierUnsafe     Category = "IdentifierUnsafe"
	CategorySchemaMissing        Category = "SchemaMissing"
	CategoryRelationShapeInvalid Category = "RelationShapeInvalid"
	CategoryReferenceMissing     Category = "ReferenceMissing"
	CategoryDuplicateId          Category = "DuplicateId"
	CategoryDuplicateEdge        Category = "DuplicateEdge"
	CategoryTableCreateFailed    Category = "TableCreateFailed"
	CategoryExportFailed         Category = "ExportFailed"

	// Scan and lint categories.
	CategorySchemaViolation   Category = "SchemaViolation"
	CategoryItemInvalid       Category = "ItemInvalid"
	CategoryNameInvalid       Category = "NameInvalid"
	CategoryAttachmentInvalid Category = "AttachmentInvalid"
	CategoryHookFailed        Category = "HookFailed"
	CategoryLayoutInvalid     Category = "LayoutInvalid"
)

// Violation is a single recorded problem. Locator names the collection,
// item, or table the problem belongs to.
type Violation struct {
	Category Category `json:"category"`
	Locator  string   `json:"locator"`
	Message  string   `json:"message"`
}

func (v Violation) String() string {
	if v.Locator == "" {
		return fmt.Sprintf("%s: %s", v.Category, v.Message)
	}
	return fmt.Sprintf("%s: %s: %s", v.Category, v.Locator, v.Message)
}

// List is an append-only, ordered collection of violations.
type List struct {
	violations []Violation
}

// NewList creates an empty violation list.
func NewList() *List {
	return &List{}
}

// Add records a violation.
func (l *List) Add(c Category, locator, message string) {
	l.violations = append(l.violations, Violation{Category: c, Locator: locator, Message: message})
}

// Addf records a violation with a formatted message.
func (l *List) Addf(c Category, locator, format string, args ...interface{}) {
	l.Add(c, locator, fmt.Sprintf(format, args...))
}

// All returns the violations in the order they were recorded.
func (l *List) All() []Violation {
	return l.violations
}

// Len returns the number of recorded violations.
func (l *List) Len() int {
	return len(l.violations)
}

// Empty reports whether no violations were recorded.
func (l *List) Empty() bool {
	return len(l.violations) == 0
}

// Has reports whether at least one violation of the given category exists.
func (l *List) Has(c Category) bool {
	for _, v := range l.violations {
		if v.Category == c {
			return true
		}
	}
	return false
}

// Count returns the number of violations of the given category.
func (l *List) Count(c Category) int {
	n := 0
	for _, v := range l.violations {
		if v.Category == c {
			n++
		}
	}
	return n
}

// Merge appends all violations from other, preserving order.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	l.violations = append(l.violations, other.violations...)
}
