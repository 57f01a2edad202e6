package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/PetersQuinn/executive-insights/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the LLM provider, the risk classifier and the risk cache.

Use subcommands to configure specific settings or run the interactive wizard.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure all settings step by step.`,
	RunE:  runSettingsWizard,
}

var settingsClassifierCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Set the risk classifier",
	Long: `Select how snapshot pairs are classified into risk alerts.

Available modes:
  rules - Deterministic decision table (no setup required)
  llm   - Model-scored risks, validated locally (requires LLM provider)`,
	RunE: runSettingsClassifier,
}

var settingsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Set the risk cache backend",
	Long: `Select where classified snapshot pairs are memoised.

Available backends:
  sqlite - Stored next to the snapshots (default)
  memory - Kept for the lifetime of the process
  redis  - Shared Redis server`,
	RunE: runSettingsCache,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider used for extraction, summaries and the llm classifier.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsClassifierCmd)
	settingsCmd.AddCommand(settingsCacheCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	if settings.LLM.Model != "" {
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.APIVersion != "" {
		cmd.Printf("  API Version: %s\n", settings.LLM.APIVersion)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	if settings.LLM.RateLimit > 0 {
		cmd.Printf("  Rate Limit: %g req/s\n", settings.LLM.RateLimit)
	}
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Classifier]")
	cmd.Printf("  Mode: %s\n", settings.Classifier.Mode.Description())
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend.Description())
	if settings.Cache.Backend == domain.CacheRedis {
		cmd.Printf("  Redis: %s\n", settings.Cache.RedisAddr)
	}
	if settings.DataDir != "" {
		cmd.Printf("  Data Dir: %s\n", settings.DataDir)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'insights settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Insights Settings Wizard")
	cmd.Println("========================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Select Risk Classifier")
	cmd.Println("------------------------------")
	if err := chooseClassifierMode(cmd, reader, 1); err != nil {
		return err
	}
	cmd.Println()

	if settingsService.RequiresLLM() {
		cmd.Println("Step 2: Configure LLM Provider")
		cmd.Println("------------------------------")
		cmd.Println("The llm classifier needs an LLM provider.")
		cmd.Println()
		if err := configureLLMProvider(cmd, reader); err != nil {
			return err
		}
	} else {
		cmd.Println("Step 2: LLM Provider (optional)")
		cmd.Println("-------------------------------")
		cmd.Print("Configure an LLM for extraction and summaries? [y/N]: ")
		if strings.EqualFold(readLine(reader), "y") {
			if err := configureLLMProvider(cmd, reader); err != nil {
				return err
			}
		}
		cmd.Println()
	}

	cmd.Println("Step 3: Select Risk Cache")
	cmd.Println("-------------------------")
	if err := chooseCacheBackend(cmd, reader, 1); err != nil {
		return err
	}
	cmd.Println()

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}

	return nil
}

func runSettingsClassifier(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := chooseClassifierMode(cmd, bufio.NewReader(cmd.InOrStdin()), 0); err != nil {
		return err
	}

	if settingsService.RequiresLLM() {
		settings, _ := settingsService.Get() //nolint:errcheck // Best-effort check
		if settings != nil && !settings.LLM.IsConfigured() {
			cmd.Println("\nNote: This mode requires an LLM provider.")
			cmd.Println("Run 'insights settings llm' to configure.")
		}
	}
	return nil
}

func runSettingsCache(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return chooseCacheBackend(cmd, bufio.NewReader(cmd.InOrStdin()), 0)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// chooseClassifierMode prompts for a mode. A zero defaultVal makes the
// choice mandatory.
func chooseClassifierMode(cmd *cobra.Command, reader *bufio.Reader, defaultVal int) error {
	cmd.Println("Select Risk Classifier")
	modes := domain.AllClassifierModes()
	for i, mode := range modes {
		cmd.Printf("  %d. %s\n", i+1, mode.Description())
	}
	cmd.Print(choicePrompt(defaultVal))
	idx := parseChoice(readLine(reader), len(modes), defaultVal)
	if idx == 0 {
		return errors.New("invalid selection")
	}

	selected := modes[idx-1]
	if err := settingsService.SetClassifierMode(selected); err != nil {
		return fmt.Errorf("failed to set classifier mode: %w", err)
	}
	cmd.Printf("Classifier set to: %s\n", selected.Description())
	return nil
}

func chooseCacheBackend(cmd *cobra.Command, reader *bufio.Reader, defaultVal int) error {
	cmd.Println("Select Risk Cache")
	backends := domain.AllCacheBackends()
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print(choicePrompt(defaultVal))
	idx := parseChoice(readLine(reader), len(backends), defaultVal)
	if idx == 0 {
		return errors.New("invalid selection")
	}
	selected := backends[idx-1]

	var addr string
	if selected == domain.CacheRedis {
		current := settingsService.GetDefaults().Cache.RedisAddr
		if settings, err := settingsService.Get(); err == nil && settings.Cache.RedisAddr != "" {
			current = settings.Cache.RedisAddr
		}
		cmd.Printf("Enter Redis address [%s]: ", current)
		addr = readLine(reader)
	}

	if err := settingsService.SetCacheBackend(selected, addr); err != nil {
		return fmt.Errorf("failed to set cache backend: %w", err)
	}
	cmd.Printf("Cache set to: %s\n", selected.Description())
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print(choicePrompt(1))
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var baseURL string
	switch {
	case selectedProvider.IsLocal():
		cmd.Print("Enter base URL [http://localhost:11434]: ")
		baseURL = readLine(reader)
	case selectedProvider == domain.AIProviderOpenAI:
		cmd.Print("Enter base URL for Azure or a compatible API (blank for OpenAI): ")
		baseURL = readLine(reader)
	}

	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(cmd.InOrStdin(), reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKey, baseURL); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

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

func choicePrompt(defaultVal int) string {
	if defaultVal > 0 {
		return fmt.Sprintf("\nEnter choice [%d]: ", defaultVal)
	}
	return "\nEnter choice: "
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

// readPassword reads without echo when in is a terminal, else a plain line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
