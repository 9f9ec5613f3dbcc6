package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/views/ask"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/views/chunks"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/views/documents"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	documentsView *documents.View
	askView       *ask.View
	chunksView    *chunks.View

	// documentID is set when the session was opened on one document.
	documentID string

	currentView  messages.ViewType
	previousView messages.ViewType

	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a TUI. With a document ID the session opens straight on
// that document; otherwise it starts on the document list.
func NewApp(ports *Ports, documentID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	documentID = strings.TrimSpace(documentID)
	if documentID == "" && ports.Document == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingDocumentService)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		help:          help.New(),
		documentsView: documents.NewView(s, ports.Document),
		askView:       ask.NewView(s, km, ports.Query),
		chunksView:    chunks.NewView(s, ports.Document),
		documentID:    documentID,
		currentView:   messages.ViewDocuments,
	}

	if documentID != "" {
		a.askView.SetDocument(documentID, false)
		a.currentView = messages.ViewAsk
	}
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.WithContext(ctx)
	a.askView.WithContext(ctx)
	a.chunksView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle("docmind")}
	if a.currentView == messages.ViewAsk {
		cmds = append(cmds, a.askView.Init())
	} else {
		cmds = append(cmds, a.documentsView.Init())
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.updateActive(msg)

	case messages.Quit:
		return a, tea.Quit

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.DocumentSelected:
		a.askView.SetDocument(msg.DocumentID, a.documentID == "")
		a.currentView = messages.ViewAsk
		return a, a.askView.Init()

	case messages.ChunksRequested:
		if a.ports.Document == nil {
			a.err = ErrMissingDocumentService
			return a.updateActive(messages.ErrorOccurred{Err: a.err})
		}
		back := a.currentView
		a.currentView = messages.ViewChunks
		return a, a.chunksView.SetDocument(msg.DocumentID, back)

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.ChunksLoaded:
		a.chunksView, cmd = a.chunksView.Update(msg)
		return a, cmd

	case messages.AnswerCompleted:
		a.err = msg.Err
		a.askView, cmd = a.askView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a.updateActive(msg)
}

// updateActive forwards a message to the active view.
func (a *App) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewAsk:
		a.askView, cmd = a.askView.Update(msg)
	case messages.ViewChunks:
		a.chunksView, cmd = a.chunksView.Update(msg)
	case messages.ViewHelp:
		if key, ok := msg.(tea.KeyMsg); ok && (key.Type == tea.KeyEsc || key.String() == "?" || key.String() == "q") {
			return a, a.switchTo(a.previousView)
		}
	}
	return a, cmd
}

// switchTo changes the active view and runs its initialisation.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	if view == messages.ViewHelp {
		a.previousView = a.currentView
	}
	a.currentView = view

	switch view {
	case messages.ViewDocuments:
		if a.ports.Document == nil {
			return tea.Quit
		}
		return a.documentsView.Init()
	case messages.ViewAsk:
		return a.askView.Init()
	case messages.ViewChunks, messages.ViewHelp:
	}
	return nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewAsk:
		return a.askView.View()
	case messages.ViewChunks:
		return a.chunksView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewDocuments:
	}
	return a.documentsView.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keymap.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("In a session: tab toggles sources, ctrl+o shows the document's chunks."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and all views.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.documentsView.SetDimensions(width, height)
	a.askView.SetDimensions(width, height)
	a.chunksView.SetDimensions(width, height)
}
