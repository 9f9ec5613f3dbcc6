package cli

import (
	"github.com/spf13/cobra"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List indexed documents",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var chunksCmd = &cobra.Command{
	Use:   "chunks [document-id]",
	Short: "Print the chunks a document was indexed from",
	Args:  cobra.ExactArgs(1),
	RunE:  runChunks,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(chunksCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return err
	}

	if listJSON {
		return printJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No documents indexed. Run 'docmind ingest <file>' first.")
		return nil
	}

	cmd.Printf("%-30s %8s  %-24s %s\n", "DOCUMENT", "CHUNKS", "MODEL", "BUILT")
	for _, d := range docs {
		cmd.Printf("%-30s %8d  %-24s %s\n",
			truncate(d.DocumentID, 30), d.ChunkCount, truncate(d.Model, 24), d.BuiltAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}

func runChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errDocumentNotConfigured
	}

	chunks, err := documentService.GetChunks(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	for _, c := range chunks {
		cmd.Printf("%4d  %s\n", c.Position, c.Text)
	}
	return nil
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
