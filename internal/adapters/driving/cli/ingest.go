package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/connectors/filesystem"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
	"github.com/custodia-labs/docmind/internal/core/services"
	"github.com/custodia-labs/docmind/internal/logger"
)

var (
	ingestWatch bool
	ingestJSON  bool
	ingestStdin bool
	ingestID    string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file or directory...]",
	Short: "Index documents and build their mind maps",
	Long: `Extracts the text of each file, splits it into sentences, embeds and indexes
them and builds the document's mind map. Supported files: .txt, .md, .pdf,
.html and .docx.
Directories are searched recursively.

Every ingest fully rebuilds the document's index. The document ID is the
file name without its extension.

Examples:
  docmind ingest report.pdf
  docmind ingest ./notes --watch
  cat memo.txt | docmind ingest --stdin --id memo`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest files when they change")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output results as JSON")
	ingestCmd.Flags().BoolVar(&ingestStdin, "stdin", false, "read plain text from standard input")
	ingestCmd.Flags().StringVar(&ingestID, "id", "", "document ID for --stdin")
	rootCmd.AddCommand(ingestCmd)
}

// ingestSummary is the --json form of an ingest result.
type ingestSummary struct {
	DocumentID string `json:"document_id"`
	Source     string `json:"source,omitempty"`
	Chunks     int    `json:"chunks"`
	Nodes      int    `json:"nodes"`
	Edges      int    `json:"edges"`
	Error      string `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errIngestNotConfigured
	}

	if ingestStdin {
		return runIngestStdin(cmd, args)
	}
	if len(args) == 0 {
		return fmt.Errorf("no files given; pass a path or use --stdin")
	}

	files, err := filesystem.Expand(args, isIngestible)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files found (.txt, .md, .pdf, .html, .docx)")
	}

	failed := ingestFiles(cmd.Context(), cmd, files)

	if !ingestWatch {
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to ingest", failed, len(files))
		}
		return nil
	}
	return watchAndIngest(cmd, args)
}

func runIngestStdin(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("--stdin does not take file arguments")
	}
	if strings.TrimSpace(ingestID) == "" {
		return fmt.Errorf("--id is required with --stdin")
	}

	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	result, err := ingestService.IngestText(cmd.Context(), ingestID, string(text))
	if err != nil {
		return err
	}
	return printIngestResults(cmd, []ingestSummary{summarise("", result)})
}

// ingestFiles ingests each file, reporting per-file failures without
// stopping, and returns the number of failures.
func ingestFiles(ctx context.Context, cmd *cobra.Command, files []string) int {
	summaries := make([]ingestSummary, 0, len(files))
	failed := 0

	for _, file := range files {
		result, err := ingestService.IngestFile(ctx, file)
		if err != nil {
			failed++
			summaries = append(summaries, ingestSummary{
				DocumentID: services.DocumentIDFromPath(file),
				Source:     file,
				Error:      err.Error(),
			})
			continue
		}
		summaries = append(summaries, summarise(file, result))
	}

	if err := printIngestResults(cmd, summaries); err != nil {
		cmd.PrintErrln(err)
	}
	return failed
}

func summarise(source string, result *driving.IngestResult) ingestSummary {
	s := ingestSummary{
		DocumentID: result.DocumentID,
		Source:     source,
		Chunks:     result.ChunkCount,
	}
	if result.Graph != nil {
		s.Nodes = len(result.Graph.Nodes)
		s.Edges = len(result.Graph.Edges)
	}
	return s
}

func printIngestResults(cmd *cobra.Command, summaries []ingestSummary) error {
	if ingestJSON {
		data, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	for _, s := range summaries {
		if s.Error != "" {
			cmd.Printf("✗ %s: %s\n", s.Source, s.Error)
			continue
		}
		cmd.Printf("✓ %s: %d chunks, mind map %d nodes / %d edges\n", s.DocumentID, s.Chunks, s.Nodes, s.Edges)
	}
	return nil
}

func watchAndIngest(cmd *cobra.Command, roots []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := filesystem.NewWatcher(roots, isIngestible)
	if err != nil {
		return err
	}
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	for change := range changes {
		if change.Type == filesystem.ChangeRemoved {
			logger.Info("%s removed; its index is kept", change.Path)
			continue
		}
		logger.Debug("Change detected: %s", change.Path)
		ingestFiles(ctx, cmd, []string{change.Path})
	}
	return nil
}

func isIngestible(path string) bool {
	return slices.Contains(services.SupportedExtensions(), strings.ToLower(filepath.Ext(path)))
}
