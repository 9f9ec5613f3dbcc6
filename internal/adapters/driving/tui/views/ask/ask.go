// Package ask provides the question and answer view for a single document.
package ask

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docmind/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docmind/internal/core/domain"
	"github.com/custodia-labs/docmind/internal/core/ports/driving"
)

// ErrNoQueryService indicates the view was built without a query service.
var ErrNoQueryService = errors.New("query service is required")

// Exchange is one question and its outcome.
type Exchange struct {
	Question string
	Answer   string
	Sources  []domain.Chunk
	Err      error
}

// View is the question and answer session.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	queryService driving.QueryService
	ctx          context.Context

	documentID  string
	transcript  []Exchange
	thinking    bool
	showSources bool
	canGoBack   bool

	width  int
	height int
	ready  bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, km *keymap.KeyMap, queryService driving.QueryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Subtitle

	v := &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		statusbar:    status.NewBar(s, km),
		viewport:     viewport.New(80, 16),
		spinner:      sp,
		queryService: queryService,
		ctx:          context.Background(),
		showSources:  true,
		width:        80,
		height:       24,
	}
	return v
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetDocument starts a fresh session for a document. canGoBack controls
// whether esc leaves the view or quits.
func (v *View) SetDocument(documentID string, canGoBack bool) {
	v.documentID = documentID
	v.canGoBack = canGoBack
	v.transcript = nil
	v.thinking = false
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.statusbar.SetMessage(documentID)
	v.refreshViewport()
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerCompleted:
		v.handleAnswer(msg)
		return v, nil

	case spinner.TickMsg:
		if !v.thinking {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		if v.canGoBack {
			return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewDocuments} }
		}
		return v, func() tea.Msg { return messages.Quit{} }

	case tea.KeyEnter:
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.thinking {
			return v, nil
		}
		v.input.Reset()
		v.thinking = true
		v.transcript = append(v.transcript, Exchange{Question: question})
		v.statusbar.SetState(status.StateThinking)
		v.refreshViewport()
		return v, tea.Batch(v.spinner.Tick, v.ask(question))

	case tea.KeyTab:
		v.showSources = !v.showSources
		v.refreshViewport()
		return v, nil

	case tea.KeyCtrlO:
		id := v.documentID
		return v, func() tea.Msg { return messages.ChunksRequested{DocumentID: id} }

	case tea.KeyUp, tea.KeyDown, tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask returns a command that answers a question against the document.
func (v *View) ask(question string) tea.Cmd {
	service, ctx, id := v.queryService, v.ctx, v.documentID
	return func() tea.Msg {
		if service == nil {
			return messages.AnswerCompleted{Question: question, Err: ErrNoQueryService}
		}
		result, err := service.AnswerQuery(ctx, id, question)
		return messages.AnswerCompleted{Question: question, Result: result, Err: err}
	}
}

// handleAnswer fills in the pending exchange.
func (v *View) handleAnswer(msg messages.AnswerCompleted) {
	v.thinking = false
	if len(v.transcript) == 0 {
		return
	}

	last := &v.transcript[len(v.transcript)-1]
	if msg.Err != nil {
		last.Err = msg.Err
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(describeError(msg.Err))
	} else if msg.Result != nil {
		last.Answer = msg.Result.Answer
		last.Sources = msg.Result.Sources
		v.statusbar.SetState(status.StateAnswered)
		v.statusbar.SetSourceCount(len(msg.Result.Sources))
	}
	v.refreshViewport()
}

// describeError turns service failures into guidance for the user.
func describeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return "this document has not been ingested"
	case errors.Is(err, domain.ErrEmptyIndex), errors.Is(err, domain.ErrEmptyContext):
		return "no passages to answer from"
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return "language model unavailable, check 'docmind settings'"
	case errors.Is(err, domain.ErrEmbeddingBackend):
		return "embedding service unavailable, check 'docmind settings'"
	default:
		return err.Error()
	}
}

// refreshViewport re-renders the transcript into the viewport.
func (v *View) refreshViewport() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.transcript) == 0 {
		return v.styles.Muted.Render("Answers are grounded on the passages most similar to your question.")
	}

	wrap := lipgloss.NewStyle().Width(max(v.viewport.Width-2, 20))
	var b strings.Builder
	for i, ex := range v.transcript {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(v.styles.Question.Render("Q: "))
		b.WriteString(wrap.Render(ex.Question))
		b.WriteString("\n")

		switch {
		case ex.Err != nil:
			b.WriteString(v.styles.Error.Render("Error: " + describeError(ex.Err)))
		case ex.Answer == "" && v.thinking && i == len(v.transcript)-1:
			b.WriteString(v.styles.Muted.Render("thinking..."))
		default:
			b.WriteString(v.styles.Normal.Render(wrap.Render(ex.Answer)))
			if v.showSources && len(ex.Sources) > 0 {
				b.WriteString("\n")
				b.WriteString(v.renderSources(ex.Sources))
			}
		}
	}
	return b.String()
}

func (v *View) renderSources(sources []domain.Chunk) string {
	lines := make([]string, 0, len(sources)+1)
	lines = append(lines, v.styles.Subtitle.Render("Sources"))
	for _, c := range sources {
		lines = append(lines, v.styles.Source.Render(fmt.Sprintf("[%d] %s", c.Position, domain.NodeLabel(c.Text))))
	}
	return strings.Join(lines, "\n")
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("docmind") + v.styles.Muted.Render("  "+v.documentID)

	prompt := v.input.View()
	if v.thinking {
		prompt = v.spinner.View() + v.styles.Muted.Render(" Thinking...")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		v.styles.Border.Render(v.viewport.View()),
		prompt,
		"",
		v.statusbar.View(),
	)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Header, prompt, status bar, spacing and the transcript border take
	// nine lines; the border also takes two columns.
	v.viewport.Width = max(width-2, 10)
	v.viewport.Height = max(height-9, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refreshViewport()
}

// DocumentID returns the document being asked about.
func (v *View) DocumentID() string {
	return v.documentID
}

// Transcript returns the exchanges so far.
func (v *View) Transcript() []Exchange {
	return v.transcript
}

// Thinking reports whether an answer is pending.
func (v *View) Thinking() bool {
	return v.thinking
}

// ShowSources reports whether sources are rendered under answers.
func (v *View) ShowSources() bool {
	return v.showSources
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}
