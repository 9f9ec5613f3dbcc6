// Package cli implements the docmind command line interface.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/logger"
)

// skipServices marks commands that run without backends or stores.
const skipServices = "docmind/skip-services"

var version = "dev"

var (
	verbose   bool
	ephemeral bool
)

// Services injected by main.
var (
	ingestService   driving.IngestService
	queryService    driving.QueryService
	documentService driving.DocumentService
	settingsService driving.SettingsService
)

// Services holds the driving ports the commands call.
type Services struct {
	Ingest   driving.IngestService
	Query    driving.QueryService
	Document driving.DocumentService
	Settings driving.SettingsService
}

// Options are the global flags the bootstrap needs to wire services.
type Options struct {
	// Ephemeral keeps indexes, chunks, graphs and settings in memory only.
	Ephemeral bool
}

// BootstrapFunc builds the services after flags are parsed. The returned
// cleanup func runs when the command finishes.
type BootstrapFunc func(opts Options) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "docmind",
	Short: "Ask questions about your documents",
	Long: `docmind indexes text, Markdown and PDF documents, answers questions about
them with a retrieval-augmented language model and draws a mind map of how
their passages relate.

Embeddings and answers come from a local Ollama server by default; OpenAI
and Anthropic can be configured with 'docmind settings'.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging to stderr")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep all state in memory for this run")
}

// SetVersion sets the version reported by 'docmind version'.
func SetVersion(v string) {
	version = v
}

// SetServices injects the driving ports directly.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	ingestService = s.Ingest
	queryService = s.Query
	documentService = s.Document
	settingsService = s.Settings
}

// SetBootstrap registers the function that wires services once flags are known.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Execute runs the root command. Command output goes to stdout so JSON
// results can be piped; cobra would otherwise print to stderr.
func Execute() error {
	rootCmd.SetOut(os.Stdout)
	return rootCmd.Execute()
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || skipsServices(cmd) {
		return nil
	}

	services, done, err := bootstrap(Options{Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	cleanup = done
	return nil
}

func skipsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[skipServices]; ok {
			return true
		}
	}
	return false
}

var (
	errIngestNotConfigured   = errors.New("ingest service not configured")
	errQueryNotConfigured    = errors.New("query service not configured")
	errDocumentNotConfigured = errors.New("document service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)
