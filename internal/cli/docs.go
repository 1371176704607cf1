package cli

import (
	"bufio"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/spf13/cobra"

	builtindocs "github.com/angirov/gretildb/docs"
	"github.com/angirov/gretildb/internal/ui"
)

var (
	docsSearchLimit   int
	docsSearchSection string
)

type docsSectionView struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	TopicCount int    `json:"topic_count"`
}

type docsTopicView struct {
	Section string `json:"section"`
	ID      string `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"path"`

	fsPath string
}

type docsMatchView struct {
	Section string `json:"section"`
	Topic   string `json:"topic"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Snippet string `json:"snippet"`
}

var docsCmd = &cobra.Command{
	Use:   "docs [section] [topic]",
	Short: "Browse bundled documentation",
	Long: `Browse the long-form documentation bundled into the gretildb binary.

Sections are directories of Markdown topics. In a terminal, topics are
rendered; otherwise the raw Markdown is printed.
For command-level usage, use 'gretildb help <command>'.

Examples:
  gretildb docs
  gretildb docs guide
  gretildb docs guide getting-started
  gretildb docs search "join table"`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sections, err := listDocsSections()
		if err != nil {
			return handleError(ErrInternal, err, "Rebuild gretildb so bundled docs are available")
		}
		if len(args) == 0 {
			return outputDocsSections(sections)
		}

		section, ok := findDocsSection(sections, args[0])
		if !ok {
			available := make([]string, 0, len(sections))
			for _, s := range sections {
				available = append(available, s.ID)
			}
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("unknown docs section: %s", args[0]),
				fmt.Sprintf("Run 'gretildb docs' to list sections (available: %s)", strings.Join(available, ", ")))
		}

		topics, err := listDocsTopics(section.ID)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		if len(args) == 1 {
			return outputDocsTopics(section, topics)
		}

		topic, ok := findDocsTopic(topics, args[1])
		if !ok {
			available := make([]string, 0, len(topics))
			for _, t := range topics {
				available = append(available, t.ID)
			}
			return handleErrorMsg(ErrInvalidInput,
				fmt.Sprintf("unknown topic %q in section %q", args[1], section.ID),
				fmt.Sprintf("Run 'gretildb docs %s' to list topics (available: %s)", section.ID, strings.Join(available, ", ")))
		}
		return outputDocsTopicContent(topic)
	},
}

var docsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search bundled documentation",
	Long: `Search the bundled documentation line by line.

Examples:
  gretildb docs search relation
  gretildb docs search "join table" --section reference
  gretildb docs search schema --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return handleErrorMsg(ErrMissingArgument, "specify a search query", "Usage: gretildb docs search <query>")
		}
		if docsSearchLimit < 1 {
			return handleErrorMsg(ErrInvalidInput, "--limit must be >= 1", "")
		}

		matches, err := searchDocs(query, docsSearchSection, docsSearchLimit)
		if err != nil {
			return handleError(ErrInvalidInput, err, "Run 'gretildb docs' to list sections")
		}

		if isJSONOutput() {
			outputSuccess(map[string]interface{}{
				"query":   query,
				"matches": matches,
			}, &Meta{Count: len(matches)})
			return nil
		}

		if len(matches) == 0 {
			fmt.Printf("No docs matched %q.\n", query)
			return nil
		}
		fmt.Printf("Matches for %q (%d):\n", query, len(matches))
		for _, m := range matches {
			fmt.Printf("- %s/%s:%d %s\n", m.Section, m.Topic, m.Line, m.Snippet)
		}
		return nil
	},
}

func outputDocsSections(sections []docsSectionView) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"sections": sections,
		}, &Meta{Count: len(sections)})
		return nil
	}

	fmt.Println("Documentation sections:")
	for _, s := range sections {
		fmt.Printf("  %-28s %s %s\n", "gretildb docs "+s.ID, s.Title, ui.Count(s.TopicCount, "topic", "topics"))
	}
	fmt.Println()
	fmt.Println("Open a topic with 'gretildb docs <section> <topic>'.")
	fmt.Println("Search with 'gretildb docs search <query>'.")
	return nil
}

func outputDocsTopics(section docsSectionView, topics []docsTopicView) error {
	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"section": section.ID,
			"title":   section.Title,
			"topics":  topics,
		}, &Meta{Count: len(topics)})
		return nil
	}

	fmt.Printf("Topics in %s [%s]:\n", section.Title, section.ID)
	if len(topics) == 0 {
		fmt.Println("  (no topics)")
		return nil
	}
	for _, t := range topics {
		fmt.Printf("  %-44s %s\n", fmt.Sprintf("gretildb docs %s %s", section.ID, t.ID), t.Title)
	}
	return nil
}

func outputDocsTopicContent(topic docsTopicView) error {
	content, err := fs.ReadFile(builtindocs.FS, topic.fsPath)
	if err != nil {
		return handleError(ErrFileReadError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"section": topic.Section,
			"topic":   topic.ID,
			"title":   topic.Title,
			"path":    topic.Path,
			"content": string(content),
		}, nil)
		return nil
	}

	out := string(content)
	if ui.StdoutIsTerminal() {
		if rendered, renderErr := ui.RenderMarkdown(out, ui.TerminalWidth()); renderErr == nil {
			out = rendered
		}
	}

	fmt.Printf("Path: %s\n\n", topic.Path)
	fmt.Print(out)
	if !strings.HasSuffix(out, "\n") {
		fmt.Println()
	}
	return nil
}

// listDocsSections lists the section directories of the embedded docs
// tree in name order.
func listDocsSections() ([]docsSectionView, error) {
	entries, err := fs.ReadDir(builtindocs.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled docs: %w", err)
	}
	sections := make([]docsSectionView, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		topics, err := listDocsTopics(entry.Name())
		if err != nil {
			return nil, err
		}
		sections = append(sections, docsSectionView{
			ID:         entry.Name(),
			Title:      titleFromSlug(entry.Name()),
			TopicCount: len(topics),
		})
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("no docs sections bundled")
	}
	return sections, nil
}

func listDocsTopics(section string) ([]docsTopicView, error) {
	entries, err := fs.ReadDir(builtindocs.FS, section)
	if err != nil {
		return nil, fmt.Errorf("failed to read docs section %s: %w", section, err)
	}
	topics := make([]docsTopicView, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		id := strings.TrimSuffix(name, ".md")
		fsPath := path.Join(section, name)
		topics = append(topics, docsTopicView{
			Section: section,
			ID:      id,
			Title:   docsTitle(fsPath, id),
			Path:    path.Join("docs", fsPath),
			fsPath:  fsPath,
		})
	}
	return topics, nil
}

// docsTitle extracts the first H1 heading; the slug-derived title is the
// fallback.
func docsTitle(fsPath, fallbackSlug string) string {
	f, err := builtindocs.FS.Open(fsPath)
	if err != nil {
		return titleFromSlug(fallbackSlug)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "# ") {
			if title := strings.TrimSpace(strings.TrimPrefix(line, "# ")); title != "" {
				return title
			}
		}
	}
	return titleFromSlug(fallbackSlug)
}

func titleFromSlug(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	if len(parts) == 0 {
		return slug
	}
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

func findDocsSection(sections []docsSectionView, raw string) (docsSectionView, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, s := range sections {
		if s.ID == needle {
			return s, true
		}
	}
	return docsSectionView{}, false
}

func findDocsTopic(topics []docsTopicView, raw string) (docsTopicView, bool) {
	needle := strings.ToLower(strings.TrimSpace(strings.TrimSuffix(raw, ".md")))
	for _, t := range topics {
		if t.ID == needle {
			return t, true
		}
	}
	return docsTopicView{}, false
}

func searchDocs(query, sectionFilter string, limit int) ([]docsMatchView, error) {
	sections, err := listDocsSections()
	if err != nil {
		return nil, err
	}

	selected := sections
	if strings.TrimSpace(sectionFilter) != "" {
		section, ok := findDocsSection(sections, sectionFilter)
		if !ok {
			return nil, fmt.Errorf("unknown section: %s", sectionFilter)
		}
		selected = []docsSectionView{section}
	}

	queryLower := strings.ToLower(query)
	matches := make([]docsMatchView, 0, limit)
	for _, section := range selected {
		topics, err := listDocsTopics(section.ID)
		if err != nil {
			return nil, err
		}
		for _, topic := range topics {
			content, err := fs.ReadFile(builtindocs.FS, topic.fsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", topic.Path, err)
			}
			for i, line := range strings.Split(string(content), "\n") {
				if !strings.Contains(strings.ToLower(line), queryLower) {
					continue
				}
				matches = append(matches, docsMatchView{
					Section: section.ID,
					Topic:   topic.ID,
					Title:   topic.Title,
					Path:    topic.Path,
					Line:    i + 1,
					Snippet: shortenSnippet(line, queryLower),
				})
				if len(matches) >= limit {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}

func shortenSnippet(line, queryLower string) string {
	const maxLen = 160
	snippet := strings.TrimSpace(line)
	if snippet == "" {
		return "(blank line)"
	}
	if len(snippet) <= maxLen {
		return snippet
	}

	idx := strings.Index(strings.ToLower(snippet), queryLower)
	if idx < 0 {
		return snippet[:maxLen-1] + "..."
	}
	start := idx - 50
	if start < 0 {
		start = 0
	}
	end := start + maxLen
	if end > len(snippet) {
		end = len(snippet)
	}
	out := snippet[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(snippet) {
		out += "..."
	}
	return out
}

func init() {
	docsSearchCmd.Flags().IntVarP(&docsSearchLimit, "limit", "n", 20, "Maximum number of matches")
	docsSearchCmd.Flags().StringVarP(&docsSearchSection, "section", "s", "", "Filter search to a docs section")

	docsCmd.AddCommand(docsSearchCmd)
	rootCmd.AddCommand(docsCmd)
}
