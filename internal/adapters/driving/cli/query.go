package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/core/domain"
)

var (
	queryJSON     bool
	queryShowSrc  bool
	retrieveLimit int
	retrieveJSON  bool
)

var queryCmd = &cobra.Command{
	Use:   "query [document-id] [question]",
	Short: "Answer a question about a document",
	Long: `Retrieves the passages of the document most similar to the question and asks
the language model to answer from them. The answer is never invented: when
the document is not indexed or a backend is unreachable the command fails.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [document-id] [query]",
	Short: "Show the passages most similar to a query",
	Long: `Runs the retrieval step alone and prints the best matching chunks with their
cosine similarity. No answer is generated.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runRetrieve,
}

func init() {
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer and sources as JSON")
	queryCmd.Flags().BoolVarP(&queryShowSrc, "sources", "s", false, "print the passages the answer was based on")
	retrieveCmd.Flags().IntVarP(&retrieveLimit, "limit", "k", domain.DefaultTopK, "number of passages to return")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(retrieveCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errQueryNotConfigured
	}

	documentID, question := args[0], strings.Join(args[1:], " ")
	result, err := queryService.AnswerQuery(cmd.Context(), documentID, question)
	if err != nil {
		return err
	}

	if queryJSON {
		return printJSON(cmd, result)
	}

	cmd.Println(result.Answer)
	if queryShowSrc {
		cmd.Println()
		cmd.Println("Sources:")
		for i, src := range result.Sources {
			cmd.Printf("  [%d] %s\n", i+1, src.Text)
		}
	}
	return nil
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if queryService == nil {
		return errQueryNotConfigured
	}

	documentID, query := args[0], strings.Join(args[1:], " ")
	results, err := queryService.Retrieve(cmd.Context(), documentID, query, retrieveLimit)
	if err != nil {
		return err
	}

	if retrieveJSON {
		return printJSON(cmd, results)
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}
	for i, r := range results {
		cmd.Printf("  [%d] (%.3f) #%d %s\n", i+1, r.Score, r.Position, r.Text)
	}
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
