package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pagegen/internal/core/domain"
	"github.com/custodia-labs/pagegen/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application settings",
	Long: `View and change pagegen settings.

Settings are read from the config file, then .env, then environment
variables (PAGEGEN_<KEY>, GEMINI_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY),
then command-line flags. Later sources win.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long:  "Set a single setting in the config file.\n\nKeys:\n" + settingKeysHelp(),
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key",
	Short: "Store the API key for the LLM provider",
	Long: `Prompts for the API key of the configured LLM provider without echoing it,
stores it in the config file and checks that the provider accepts it.`,
	Args: cobra.NoArgs,
	RunE: runConfigSetKey,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the LLM provider and model used for question and page generation.`,
	RunE:  runConfigLLM,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func settingKeysHelp() string {
	var b strings.Builder
	for _, k := range services.SettingKeys() {
		fmt.Fprintf(&b, "  %-30s %s\n", k.Key, k.Kind)
	}
	return b.String()
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	if configFile != "" {
		cmd.Printf("Config file: %s\n", configFile)
	}
	cmd.Println()

	// LLM settings
	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.ModelOrDefault())
	if settings.LLM.Provider.IsLocal() || settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set, or set %s)\n", settings.LLM.Provider.APIKeyEnv())
		}
	}
	cmd.Printf("  Temperature: %g (comparison %g)\n", settings.LLM.Temperature, settings.LLM.ComparisonTemperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	if settings.LLM.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.LLM.RequestsPerSecond)
	} else {
		cmd.Println("  Rate limit: off")
	}
	cmd.Printf("  Enhance pages: %s\n", yesNo(settings.LLM.EnhancePages))
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	// Pipeline settings
	cmd.Println("[Pipeline]")
	cmd.Printf("  Output dir: %s\n", settings.Pipeline.OutputDir)
	cmd.Printf("  FAQ entries: %d\n", settings.Pipeline.FAQCount)
	cmd.Printf("  Min questions: %d\n", settings.Pipeline.MinQuestions)
	cmd.Printf("  Concurrent pages: %s\n", yesNo(settings.Pipeline.ConcurrentPages))
	cmd.Printf("  Strict JSON: %s\n", yesNo(settings.Pipeline.StrictJSON))
	cmd.Printf("  Timeout: %s\n", settings.Pipeline.Timeout)
	cmd.Printf("  Templates dir: %s\n", orBuiltIn(settings.Pipeline.TemplatesDir))
	cmd.Printf("  Prompts dir: %s\n", orDefault(settings.Pipeline.PromptsDir, "~/.pagegen/prompts"))
	cmd.Println()

	// History settings
	cmd.Println("[History]")
	if settings.History.Enabled {
		cmd.Printf("  Enabled: yes\n")
		cmd.Printf("  Data dir: %s\n", orDefault(settings.History.DataDir, "~/.pagegen/data"))
	} else {
		cmd.Printf("  Enabled: no\n")
	}
	cmd.Println()

	// Validation
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'pagegen config set <key> <value>' to fix configuration issues.")
	} else if !settings.LLM.IsConfigured() {
		cmd.Println("Run 'pagegen config set-key' or 'pagegen config llm' to configure the LLM.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if isSecretKey(key) {
		value = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("%s does not use an API key.\n", settings.LLM.Provider.Description())
		return nil
	}

	cmd.Printf("Enter API key for %s: ", settings.LLM.Provider.Description())
	apiKey := readPassword()
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required for this provider")
	}

	if err := settingsService.SetAPIKey(apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureLLMProvider(cmd, reader)
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaultModel := selectedProvider.DefaultModel()
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Printf("Enter API key (empty to use %s): ", selectedProvider.APIKeyEnv())
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			apiKey = os.Getenv(selectedProvider.APIKeyEnv())
		}
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

func isSecretKey(key string) bool {
	for _, k := range services.SettingKeys() {
		if k.Key == key {
			return k.Secret
		}
	}
	return false
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orBuiltIn(s string) string {
	return orDefault(s, "(built-in)")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a line without echo when stdin is a terminal.
// Replaced in tests.
var readPassword = func() string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n') //nolint:errcheck // CLI helper, error ignored for UX
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
