package cli

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/dailybrief/internal/config"
)

var (
	importDryRun   bool
	importCategory string
)

var importCmd = &cobra.Command{
	Use:   "import <file.opml>",
	Short: "Import RSS feeds from an OPML file",
	Args:  cobra.ExactArgs(1),
	RunE:  importAction,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "show what would be added without modifying config")
	importCmd.Flags().StringVar(&importCategory, "category", "Imported", "category assigned to imported feeds")
	rootCmd.AddCommand(importCmd)
}

type opml struct {
	Body opmlBody `xml:"body"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	XMLURL   string        `xml:"xmlUrl,attr"`
	Text     string        `xml:"text,attr"`
	Title    string        `xml:"title,attr"`
	Outlines []opmlOutline `xml:"outline"`
}

func importAction(_ *cobra.Command, args []string) error {
	opmlPath := args[0]

	data, err := os.ReadFile(opmlPath)
	if err != nil {
		return fmt.Errorf("read OPML: %w", err)
	}

	var doc opml
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse OPML: %w", err)
	}

	entries := extractFeeds(doc.Body.Outlines)
	if len(entries) == 0 {
		fmt.Println("No feed URLs found in OPML file.")
		return nil
	}

	// Load existing config to find duplicates
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	existing := make(map[string]bool)
	for _, f := range cfg.Feeds {
		existing[f.URL] = true
	}

	var newFeeds []config.Feed
	skipped := 0
	for _, f := range entries {
		if existing[f.URL] {
			skipped++
			continue
		}
		existing[f.URL] = true
		newFeeds = append(newFeeds, f)
	}

	if len(newFeeds) == 0 {
		fmt.Printf("All %d feeds already present, nothing to add.\n", skipped)
		return nil
	}

	if importDryRun {
		fmt.Printf("Would add %d feeds (skipping %d duplicates):\n", len(newFeeds), skipped)
		for _, f := range newFeeds {
			fmt.Printf("  + %s (%s)\n", f.Name, f.URL)
		}
		return nil
	}

	// Merge into feeds.yaml using yaml.Node to preserve structure
	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	if err := mergeFeeds(configPath, newFeeds); err != nil {
		return fmt.Errorf("merge feeds: %w", err)
	}

	fmt.Printf("Added %d feeds, skipped %d duplicates.\n", len(newFeeds), skipped)
	return nil
}

func extractFeeds(outlines []opmlOutline) []config.Feed {
	var feeds []config.Feed
	for _, o := range outlines {
		u := strings.TrimSpace(o.XMLURL)
		if u != "" && (strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")) {
			name := strings.TrimSpace(o.Text)
			if name == "" {
				name = strings.TrimSpace(o.Title)
			}
			if name == "" {
				name = u
			}
			feeds = append(feeds, config.Feed{
				Name:     name,
				URL:      u,
				Category: importCategory,
			})
		}
		// Recurse into nested outlines (folders)
		feeds = append(feeds, extractFeeds(o.Outlines)...)
	}
	return feeds
}

// mergeFeeds reads feeds.yaml as a yaml.Node tree, finds the top-level
// feeds sequence, appends newFeeds, and writes back preserving
// comments and ordering everywhere else.
func mergeFeeds(configPath string, newFeeds []config.Feed) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config YAML: %w", err)
	}

	feedsNode := findFeedsNode(&doc)
	if feedsNode == nil {
		return fmt.Errorf("could not find feeds list in feeds.yaml")
	}

	for _, f := range newFeeds {
		feedsNode.Content = append(feedsNode.Content, feedNode(f))
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(configPath, out, 0o644)
}

// findFeedsNode walks the YAML tree to the sequence node at the
// top-level feeds key.
func findFeedsNode(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return findFeedsNode(doc.Content[0])
	}

	if doc.Kind != yaml.MappingNode {
		return nil
	}

	return findMapValue(doc, "feeds")
}

func feedNode(f config.Feed) *yaml.Node {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			scalarNode("name"), scalarNode(f.Name),
			scalarNode("url"), scalarNode(f.URL),
			scalarNode("category"), scalarNode(f.Category),
		},
	}
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{
		Kind:  yaml.ScalarNode,
		Tag:   "!!str",
		Value: v,
	}
}

func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	if mapping.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
