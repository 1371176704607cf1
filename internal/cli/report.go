package cli

import (
	"fmt"
	"os"

	"github.com/angirov/gretildb/internal/diag"
	"github.com/angirov/gretildb/internal/ui"
)

// printViolations writes one line per violation in category: locator - message form.
func printViolations(list *diag.List) {
	for _, v := range list.All() {
		if v.Locator == "" {
			fmt.Printf("%s: %s\n", v.Category, v.Message)
			continue
		}
		fmt.Printf("%s: %s - %s\n", v.Category, v.Locator, v.Message)
	}
}

// violationSummary returns the trailing summary line for a report.
func violationSummary(list *diag.List) string {
	n := list.Len()
	return fmt.Sprintf("Found %d %s.", n, ui.Pluralize("violation", n))
}

// exitIfViolations terminates the process with the violations exit code
// when the list is non-empty. Reports must be flushed before calling it.
func exitIfViolations(list *diag.List) {
	if !list.Empty() {
		os.Exit(1)
	}
}
