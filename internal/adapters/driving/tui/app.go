package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-rag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// chromeHeight is the number of rows outside the transcript:
// header, pending line, bordered input and status bar.
const chromeHeight = 6

// Turn is one answered question.
type Turn struct {
	Question string
	Answer   string
	Sources  []string
}

// App is the chat application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports      *Ports
	ctx        context.Context
	dataset    string
	collection string

	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.QuestionInput
	statusbar *status.Bar
	viewport  viewport.Model
	spinner   spinner.Model

	turns   []Turn
	pending string

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a chat over the given dataset.
func NewApp(ports *Ports, datasetID string) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	if datasetID == "" {
		return nil, fmt.Errorf("creating app: %w", ErrMissingDataset)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()
	spin := spinner.New(spinner.WithSpinner(spinner.Dot))
	spin.Style = s.Muted

	a := &App{
		ports:      ports,
		ctx:        context.Background(),
		dataset:    datasetID,
		collection: domain.CollectionName(datasetID),
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		statusbar:  status.NewBar(s, km, datasetID),
		viewport:   viewport.New(80, 24-chromeHeight),
		spinner:    spin,
	}
	a.refresh()
	return a, nil
}

// WithContext sets the context passed to the services.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init initialises the application.
func (a *App) Init() tea.Cmd {
	return a.input.Init()
}

// Update handles messages and updates the model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.AnswerReceived:
		a.turns = append(a.turns, Turn{Question: msg.Question, Answer: msg.Answer, Sources: msg.Sources})
		a.pending = ""
		a.statusbar.Answered(len(a.turns))
		a.refresh()
		return a, nil

	case messages.ErrorOccurred:
		a.pending = ""
		a.statusbar.Failed(msg.Err)
		return a, nil

	case spinner.TickMsg:
		if a.pending == "" {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(k, a.keymap.Clear):
		a.turns = nil
		a.statusbar.Clear()
		a.refresh()
		return a, nil

	case keymap.Matches(k, a.keymap.ScrollUp), keymap.Matches(k, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case keymap.Matches(k, a.keymap.Send):
		question := a.input.Value()
		if question == "" || a.pending != "" {
			return a, nil
		}
		a.pending = question
		a.input.Reset()
		a.statusbar.Thinking()
		return a, tea.Batch(a.ask(question), a.spinner.Tick)
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask runs the question against the dataset off the UI loop.
func (a *App) ask(question string) tea.Cmd {
	ctx, collection := a.ctx, a.collection
	answerer, searcher := a.ports.Answer, a.ports.Search
	return func() tea.Msg {
		answer := answerer.Ask(ctx, collection, question)

		var sources []string
		if searcher != nil {
			results, err := searcher.Search(ctx, collection, question, domain.DefaultTopK)
			if err == nil {
				sources = sourceLabels(results)
			}
		}

		return messages.AnswerReceived{Question: question, Answer: answer, Sources: sources}
	}
}

// sourceLabels lists distinct sources in rank order.
func sourceLabels(results []domain.RetrievalResult) []string {
	var labels []string
	for _, r := range results {
		label := r.Metadata.Source
		if label == "" {
			label = r.Metadata.DocumentKey
		}
		if label != "" && !slices.Contains(labels, label) {
			labels = append(labels, label)
		}
	}
	return labels
}

// isPlaceholder reports answers such as "(no response)" that stand in
// for a model reply.
func isPlaceholder(answer string) bool {
	return strings.HasPrefix(answer, "(")
}

// refresh re-renders the transcript into the viewport.
func (a *App) refresh() {
	wrap := max(a.viewport.Width-4, 10)

	var b strings.Builder
	if len(a.turns) == 0 {
		b.WriteString(a.styles.Muted.Render("Answers come only from the passages stored in this dataset."))
	}
	for i, t := range a.turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(a.styles.Question.Render("> " + t.Question))
		b.WriteString("\n")
		style := a.styles.Answer
		if isPlaceholder(t.Answer) {
			style = a.styles.Placeholder
		}
		b.WriteString(style.Width(wrap).Render(t.Answer))
		for _, src := range t.Sources {
			b.WriteString("\n")
			b.WriteString(a.styles.Source.Render("· " + src))
		}
	}

	a.viewport.SetContent(b.String())
	a.viewport.GotoBottom()
}

// View renders the current state.
func (a *App) View() string {
	header := a.styles.Title.Render("sercha-rag") + a.styles.Muted.Render(" · "+a.collection)

	pending := ""
	if a.pending != "" {
		pending = a.spinner.View() + " " + a.styles.Muted.Render(a.pending)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		a.viewport.View(),
		pending,
		a.input.View(),
		a.statusbar.View(),
	)
}

// SetDimensions resizes every component.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.input.SetWidth(width)
	a.statusbar.SetWidth(width)
	a.refresh()
}

// Turns returns the answered questions.
func (a *App) Turns() []Turn {
	return a.turns
}

// Pending returns the question awaiting an answer, if any.
func (a *App) Pending() string {
	return a.pending
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// Run starts the chat in the alternate screen and blocks until it exits.
func Run(ctx context.Context, ports *Ports, datasetID string) error {
	app, err := NewApp(ports, datasetID)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(app.WithContext(ctx), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
