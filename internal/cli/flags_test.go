package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/angirov/gretildb/internal/commands"
)

func TestCommandFlagsMatchRegistry(t *testing.T) {
	for id, meta := range commands.Registry {
		t.Run(id, func(t *testing.T) {
			cmd, ok := findCommandByPath(rootCmd, meta.Name)
			if !ok {
				t.Fatalf("command %q missing from CLI tree", meta.Name)
			}

			cliFlags := make(map[string]struct{})
			cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
				if flag.Name == "help" {
					return
				}
				cliFlags[flag.Name] = struct{}{}
			})

			registryFlags := make(map[string]struct{}, len(meta.Flags))
			for _, flag := range meta.Flags {
				registryFlags[flag.Name] = struct{}{}
			}

			for name := range cliFlags {
				if _, ok := registryFlags[name]; !ok {
					t.Errorf("CLI flag %q is missing from registry metadata", name)
				}
			}
			for name := range registryFlags {
				if _, ok := cliFlags[name]; !ok {
					t.Errorf("registry flag %q is missing from the CLI command", name)
				}
			}
		})
	}
}

func TestEveryRunnableCommandHasRegistryMetadata(t *testing.T) {
	for _, path := range commandPaths(rootCmd) {
		cmd, ok := findCommandByPath(rootCmd, path)
		if !ok {
			t.Errorf("failed to locate command for path %q", path)
			continue
		}
		if !cmd.Runnable() {
			continue
		}
		if _, _, ok := commands.LookupMetaByPath(path); !ok {
			t.Errorf("CLI command %q is missing registry metadata", path)
		}
	}
}

func TestRegistryCorpusGate(t *testing.T) {
	var corpus []string
	for id, meta := range commands.Registry {
		if meta.NeedsCorpus {
			corpus = append(corpus, id)
		}
	}
	slices.Sort(corpus)
	want := []string{"build", "lint", "render", "scan"}
	if !slices.Equal(corpus, want) {
		t.Fatalf("corpus-facing commands = %v, want %v", corpus, want)
	}
}

func TestCommandPath(t *testing.T) {
	if got := commandPath(rootCmd); got != "" {
		t.Fatalf("commandPath(root) = %q, want empty", got)
	}
	cmd, ok := findCommandByPath(rootCmd, "docs search")
	if !ok {
		t.Fatal("docs search missing from CLI tree")
	}
	if got := commandPath(cmd); got != "docs search" {
		t.Fatalf("commandPath() = %q, want %q", got, "docs search")
	}
}

func commandPaths(root *cobra.Command) []string {
	var out []string
	var walk func(cmd *cobra.Command, prefix string)

	walk = func(cmd *cobra.Command, prefix string) {
		for _, child := range cmd.Commands() {
			path := child.Name()
			if prefix != "" {
				path = strings.TrimSpace(prefix + " " + child.Name())
			}
			out = append(out, path)
			walk(child, path)
		}
	}

	walk(root, "")
	return out
}

func findCommandByPath(root *cobra.Command, path string) (*cobra.Command, bool) {
	parts := strings.Fields(path)
	cur := root
	for _, part := range parts {
		var next *cobra.Command
		for _, child := range cur.Commands() {
			if child.Name() == part {
				next = child
				break
			}
		}
		if next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}
