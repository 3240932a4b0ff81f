package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/dailybrief/internal/config"
	"github.com/ppiankov/dailybrief/internal/prompt"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config directory with example files",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	promptPath := filepath.Join(configDir, config.DefaultPromptFile)
	wrote, err = writeIfNotExists(promptPath, []byte(prompt.DefaultTemplate))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	if created == 0 {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s with %d config files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# dailybrief configuration

settings:
  max_articles_per_feed: 5
  max_articles_to_summarize: 20
  filter_hours: 48
  summary_model: "llama3.2"
  output_dir: "output"
  # ollama_host: "http://localhost:11434"   # env OLLAMA_HOST wins
  # prompt_file: ""                         # default <configdir>/prompt.txt
  # keywords: ["AI", "GPT", "LLM", "breakthrough", "release", "launch", "announced"]
  vault_sync:
    enabled: false
    vault_path: ""
  email:
    enabled: false
    smtp_host: "smtp.gmail.com"
    smtp_port: 587
    to: ""
    # credentials come from these env vars (a .env file works too)
    user_env: DAILYBRIEF_SMTP_USER
    pass_env: DAILYBRIEF_SMTP_PASS

feeds:
  - name: "Hacker News"
    url: "https://hnrss.org/frontpage"
    category: "Tech"
  - name: "TechCrunch"
    url: "https://techcrunch.com/feed/"
    category: "Tech News"
  - name: "The Verge"
    url: "https://www.theverge.com/rss/index.xml"
    category: "Tech News"
  - name: "MIT Technology Review"
    url: "https://www.technologyreview.com/feed/"
    category: "AI/Research"
    days: [monday, thursday]
`
