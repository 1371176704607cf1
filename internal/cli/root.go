// Package cli implements the command-line interface.
package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/angirov/gretildb/internal/commands"
	"github.com/angirov/gretildb/internal/config"
	"github.com/angirov/gretildb/internal/ui"
)

// corpusRootEnv overrides the configured corpus when no flag is given.
const corpusRootEnv = "GRETILDB_CORPUS"

var (
	// Global flags
	rootFlag   string // Explicit corpus root path
	corpusName string // Named corpus from config
	configPath string
	verbose    bool

	// Resolved values
	resolvedRoot string
	cfg          *config.Config
	corpusCfg    *config.CorpusConfig

	log = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "gretildb",
	Short: "Gretildb - a relational snapshot builder for text corpora",
	Long: `Gretildb turns a directory tree of YAML collections into a relational
SQLite snapshot and a static reference site.

Collections are directories named _works, _persons, and so on; each YAML
file inside is an item, validated against a JSON Schema. Relations nested
in the schemas become join tables, and every problem found along the way
is reported instead of aborting the run.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}

		// Only commands registered as corpus-facing resolve a root; help,
		// completion, and the offline commands skip it.
		if _, meta, ok := commands.LookupMetaByPath(commandPath(cmd)); !ok || !meta.NeedsCorpus {
			return nil
		}

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		ui.ConfigureTheme(cfg.UI.Accent)
		ui.ConfigureMarkdownCodeTheme(cfg.UI.CodeTheme)

		resolvedRoot, err = resolveCorpusRoot()
		if err != nil {
			return err
		}

		corpusCfg, err = config.LoadCorpusConfig(resolvedRoot)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

// commandPath returns the command's path below the root, e.g. "docs search".
func commandPath(cmd *cobra.Command) string {
	if cmd == nil || !cmd.HasParent() {
		return ""
	}
	var parts []string
	for c := cmd; c.HasParent(); c = c.Parent() {
		parts = append([]string{c.Name()}, parts...)
	}
	return strings.Join(parts, " ")
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootFlag, "root", "r", "", "Path to the corpus root directory")
	rootCmd.PersistentFlags().StringVarP(&corpusName, "corpus", "c", "", "Named corpus from config")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for agent/script use)")
}

// resolveCorpusRoot picks the corpus root:
// explicit path > named corpus > environment > configured default > cwd.
func resolveCorpusRoot() (string, error) {
	if rootFlag != "" {
		return rootFlag, nil
	}
	if corpusName != "" {
		path, err := cfg.CorpusPath(corpusName)
		if err != nil {
			hint := "Add it under [corpora] in the config file"
			if known := cfg.ListCorpora(); len(known) > 0 {
				names := make([]string, 0, len(known))
				for name := range known {
					names = append(names, name)
				}
				sort.Strings(names)
				hint = "Configured corpora: " + strings.Join(names, ", ")
			}
			return "", fmt.Errorf("corpus '%s' not found\n\n%s", corpusName, hint)
		}
		return path, nil
	}
	if env := strings.TrimSpace(os.Getenv(corpusRootEnv)); env != "" {
		return env, nil
	}
	if path, err := cfg.CorpusPath(""); err == nil {
		return path, nil
	}
	return ".", nil
}

// requireCorpusRoot verifies the resolved root exists on disk.
func requireCorpusRoot() error {
	info, err := os.Stat(resolvedRoot)
	if os.IsNotExist(err) {
		return fmt.Errorf("corpus root not found: %s", resolvedRoot)
	}
	if err != nil {
		return fmt.Errorf("failed to stat corpus root %s: %w", resolvedRoot, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("corpus root %s is not a directory", resolvedRoot)
	}
	return nil
}

// getCorpusRoot returns the resolved corpus root.
func getCorpusRoot() string {
	return resolvedRoot
}

// getCorpusConfig returns the loaded per-corpus config.
func getCorpusConfig() *config.CorpusConfig {
	if corpusCfg == nil {
		return config.DefaultCorpusConfig()
	}
	return corpusCfg
}

func loadGlobalConfig() (*config.Config, error) {
	var loaded *config.Config
	var err error
	if strings.TrimSpace(configPath) != "" {
		loaded, err = config.LoadFrom(configPath)
	} else {
		loaded, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		loaded = &config.Config{}
	}
	return loaded, nil
}
