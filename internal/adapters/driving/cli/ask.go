package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui"
)

// runApp starts the interactive session. Tests replace it to avoid a terminal.
var runApp = func(app *tui.App) error {
	return app.Run()
}

var askCmd = &cobra.Command{
	Use:     "ask [document-id]",
	Aliases: []string{"tui"},
	Short:   "Start an interactive question and answer session",
	Long: `Start an interactive terminal session for asking questions about an
ingested document.

With a document ID the session opens on that document. Without one, pick a
document from the list of everything that has been ingested.

Controls:
  ↑/k, ↓/j - Navigate documents
  Enter    - Select document / Ask question
  Tab      - Toggle answer sources
  Ctrl+O   - Show the document's chunks
  Esc      - Back
  ?        - Help
  Ctrl+C   - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) (err error) {
	if queryService == nil {
		return errQueryNotConfigured
	}

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	documentID := ""
	if len(args) == 1 {
		documentID = args[0]
	}

	app, err := tui.NewApp(&tui.Ports{
		Query:    queryService,
		Document: documentService,
	}, documentID)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runApp(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
