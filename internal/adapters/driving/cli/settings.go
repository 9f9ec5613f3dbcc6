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

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding and language model backends, retrieval
and mind map options.

Settings are stored in ~/.docmind/config.toml (or $DOCMIND_HOME/config.toml).`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Interactively choose the provider and model used to embed passages and questions.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the LLM provider",
	Long:  `Interactively choose the provider and model that writes answers.`,
	RunE:  runSettingsLLM,
}

var settingsSetKeyCmd = &cobra.Command{
	Use:       "set-key [embedding|llm]",
	Short:     "Store an API key without echoing it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"embedding", "llm"},
	RunE:      runSettingsSetKey,
}

var settingsRetrievalCmd = &cobra.Command{
	Use:   "retrieval",
	Short: "Set retrieval options",
	Args:  cobra.NoArgs,
	RunE:  runSettingsRetrieval,
}

var settingsGraphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Set mind map options",
	Long: `Set how mind maps are built. Changes apply to documents ingested afterwards.

  --max-nodes   longest passages kept as nodes
  --max-edges   edges each node may originate
  --threshold   similarity an edge must exceed (0 to 1, exclusive)`,
	Args: cobra.NoArgs,
	RunE: runSettingsGraph,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that both backends are reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsValidate,
}

var (
	settingsTopK       int
	settingsMaxNodes   int
	settingsMaxEdges   int
	settingsThreshold  float64
	settingsNoValidate bool
)

func init() {
	settingsRetrievalCmd.Flags().IntVarP(&settingsTopK, "top-k", "k", domain.DefaultTopK, "passages retrieved as answer context")
	settingsGraphCmd.Flags().IntVar(&settingsMaxNodes, "max-nodes", domain.DefaultGraphMaxNodes, "maximum nodes")
	settingsGraphCmd.Flags().IntVar(&settingsMaxEdges, "max-edges", domain.DefaultGraphMaxEdgesPerNode, "maximum edges per node")
	settingsGraphCmd.Flags().Float64Var(&settingsThreshold, "threshold", domain.DefaultGraphSimilarityThreshold, "similarity threshold")
	settingsSetKeyCmd.Flags().BoolVar(&settingsNoValidate, "no-validate", false, "skip contacting the provider")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsRetrievalCmd)
	settingsCmd.AddCommand(settingsGraphCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model, settings.Embedding.BaseURL,
		settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	if settings.Embedding.BatchSize > 0 {
		cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	}
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Requests/second: %g\n", settings.Embedding.RequestsPerSecond)
	}
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model, settings.LLM.BaseURL,
		settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Mind map]")
	cmd.Printf("  Max nodes: %d\n", settings.Graph.MaxNodes)
	cmd.Printf("  Max edges per node: %d\n", settings.Graph.MaxEdgesPerNode)
	cmd.Printf("  Similarity threshold: %.2f\n", settings.Graph.SimilarityThreshold)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docmind settings embedding' or 'docmind settings llm' to fix it.")
	} else {
		cmd.Println("Configuration is valid. Run 'docmind settings validate' to test connectivity.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsSetKey(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	switch args[0] {
	case "embedding":
		if !settings.Embedding.Provider.RequiresAPIKey() {
			return fmt.Errorf("%s does not use an API key", settings.Embedding.Provider.Description())
		}
		cmd.Printf("API key for %s: ", settings.Embedding.Provider.Description())
		key := readPassword(reader)
		cmd.Println()
		if err := settingsService.SetEmbeddingProvider(settings.Embedding.Provider, settings.Embedding.Model, key); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
		if !settingsNoValidate {
			return reportValidation(cmd, "Embedding", settingsService.ValidateEmbeddingConfig())
		}

	case "llm":
		if !settings.LLM.Provider.RequiresAPIKey() {
			return fmt.Errorf("%s does not use an API key", settings.LLM.Provider.Description())
		}
		cmd.Printf("API key for %s: ", settings.LLM.Provider.Description())
		key := readPassword(reader)
		cmd.Println()
		if err := settingsService.SetLLMProvider(settings.LLM.Provider, settings.LLM.Model, key); err != nil {
			return fmt.Errorf("failed to store API key: %w", err)
		}
		if !settingsNoValidate {
			return reportValidation(cmd, "LLM", settingsService.ValidateLLMConfig())
		}

	default:
		return fmt.Errorf("unknown target %q: use 'embedding' or 'llm'", args[0])
	}

	cmd.Println("API key saved.")
	return nil
}

func runSettingsRetrieval(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}
	if err := settingsService.SetTopK(settingsTopK); err != nil {
		return err
	}
	cmd.Printf("Retrieval top K set to %d\n", settingsTopK)
	return nil
}

func runSettingsGraph(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	opts := settings.Graph
	if cmd.Flags().Changed("max-nodes") {
		opts.MaxNodes = settingsMaxNodes
	}
	if cmd.Flags().Changed("max-edges") {
		opts.MaxEdgesPerNode = settingsMaxEdges
	}
	if cmd.Flags().Changed("threshold") {
		opts.SimilarityThreshold = settingsThreshold
	}

	if err := settingsService.SetGraphOptions(opts); err != nil {
		return err
	}
	cmd.Printf("Mind map: %d nodes, %d edges per node, threshold %.2f\n",
		opts.MaxNodes, opts.MaxEdgesPerNode, opts.SimilarityThreshold)
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	embedErr := reportValidation(cmd, "Embedding", settingsService.ValidateEmbeddingConfig())
	llmErr := reportValidation(cmd, "LLM", settingsService.ValidateLLMConfig())
	return errors.Join(embedErr, llmErr)
}

func reportValidation(cmd *cobra.Command, what string, err error) error {
	cmd.Printf("%s backend... ", what)
	if err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("%s validation failed: %w", strings.ToLower(what), err)
	}
	cmd.Println("OK")
	return nil
}

//nolint:dupl // Mirrors configureLLMProvider for embeddings.
func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use OPENAI_API_KEY): ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	if err := reportValidation(cmd, "Embedding", settingsService.ValidateEmbeddingConfig()); err != nil {
		return err
	}
	cmd.Printf("Embedding provider configured: %s (%s)\n", selected.Description(), model)
	cmd.Println("Re-ingest your documents: indexes built with another model cannot be searched.")
	return nil
}

//nolint:dupl // Mirrors configureEmbeddingProvider for the LLM.
func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if err := reportValidation(cmd, "LLM", settingsService.ValidateLLMConfig()); err != nil {
		return err
	}
	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), model)
	return nil
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

// readPassword reads without echo when stdin is a terminal, otherwise a
// plain line from reader.
func readPassword(reader io.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	br, ok := reader.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(reader)
	}
	return readLine(br)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
