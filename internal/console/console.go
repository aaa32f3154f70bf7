// Package console is an interactive terminal session against the decision
// pipeline. The learner types instead of speaking.
package console

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/voxtutor/internal/conversation"
	"github.com/abhisek/voxtutor/internal/learner"
	"github.com/abhisek/voxtutor/internal/orchestrator"
	"github.com/abhisek/voxtutor/internal/persona"
	"github.com/abhisek/voxtutor/internal/ui/components"
)

// windowSize is how many recent turns are analysed per learner turn.
const windowSize = 20

// Options configure a console session.
type Options struct {
	UserID string
	Topic  string
	// Persona overrides the opening persona.
	Persona string
}

// Model is the root Bubble Tea model for a console session.
type Model struct {
	ctx  context.Context
	orch *orchestrator.Orchestrator
	opts Options
	now  func() time.Time

	catalog persona.Catalog
	state   persona.SessionState
	turns   []conversation.Turn
	started time.Time

	last  *orchestrator.TurnResult
	plan  *orchestrator.PlanResult
	input components.ReplyInput

	busy     bool
	finished bool
	errMsg   string
	width    int
	height   int
}

// New creates a console model.
func New(ctx context.Context, orch *orchestrator.Orchestrator, opts Options) *Model {
	if opts.UserID == "" {
		opts.UserID = "console"
	}
	return &Model{
		ctx:     ctx,
		orch:    orch,
		opts:    opts,
		now:     time.Now,
		catalog: persona.DefaultCatalog(),
		input:   components.NewReplyInput("Type your reply and press Enter", 500),
		busy:    true,
	}
}

// Run starts the console program and blocks until it exits.
func Run(ctx context.Context, orch *orchestrator.Orchestrator, opts Options) error {
	p := tea.NewProgram(New(ctx, orch, opts), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.input.Model.Focus(), m.startSession())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionStartedMsg:
		return m.handleStarted(msg)

	case turnDoneMsg:
		return m.handleTurn(msg)

	case planDoneMsg:
		return m.handlePlan(msg)

	case sessionFinishedMsg:
		if msg.Err != nil {
			m.errMsg = msg.Err.Error()
		}
		m.finished = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		if m.state.SessionID == "" {
			return m, tea.Quit
		}
		m.busy = true
		return m, m.finishSession()
	case "ctrl+p":
		if m.busy || m.state.SessionID == "" {
			return m, nil
		}
		m.busy = true
		return m, m.planSession()
	case "enter":
		if m.busy {
			return m, nil
		}
		text, ok := m.input.Take()
		if !ok {
			return m, nil
		}
		m.turns = append(m.turns, conversation.NewTurn(conversation.SenderUser, text, m.now()))
		m.busy = true
		return m, m.processTurn()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleStarted(msg sessionStartedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		return m, nil
	}
	m.state = msg.State
	m.started = m.now()
	m.say(m.greeting())
	return m, nil
}

func (m *Model) handleTurn(msg turnDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.last = msg.Result
	m.say(msg.Result.Reply.Text)
	return m, nil
}

func (m *Model) handlePlan(msg planDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		m.errMsg = msg.Err.Error()
		return m, nil
	}
	m.errMsg = ""
	m.plan = msg.Result
	m.state = msg.Result.State
	m.opts.Topic = msg.Result.Topic.Topic
	if tr := msg.Result.Transition; tr != nil && tr.Message != "" {
		m.say(tr.Message)
	}
	if msg.Result.Rationale.Text != "" {
		m.say(msg.Result.Rationale.Text)
	}
	return m, nil
}

// say appends a tutor turn.
func (m *Model) say(text string) {
	if text == "" {
		return
	}
	m.turns = append(m.turns, conversation.NewTurn(conversation.SenderAgent, text, m.now()))
}

func (m *Model) greeting() string {
	name := m.state.ActivePersona
	if p, ok := m.catalog.Get(name); ok {
		name = p.Name
	}
	topic := "anything you like"
	if m.opts.Topic != "" {
		topic = m.opts.Topic
	}
	return "Hi, I'm " + name + ". Let's talk about " + topic + ". How are you today?"
}

func (m *Model) window() []conversation.Turn {
	if len(m.turns) <= windowSize {
		return append([]conversation.Turn(nil), m.turns...)
	}
	return append([]conversation.Turn(nil), m.turns[len(m.turns)-windowSize:]...)
}

func (m *Model) elapsedSec() int {
	if m.started.IsZero() {
		return 0
	}
	return int(m.now().Sub(m.started).Seconds())
}

// metrics estimates session metrics from the typed transcript. Accuracy and
// fluency are not measurable without audio, so they stay zero.
func (m *Model) metrics() learner.SessionMetrics {
	words := 0
	for _, t := range conversation.UserTurns(m.turns) {
		words += len(strings.Fields(t.Content))
	}
	return learner.SessionMetrics{DurationSec: m.elapsedSec(), WordsSpoken: words}
}

func (m *Model) startSession() tea.Cmd {
	in := orchestrator.StartInput{UserID: m.opts.UserID, Persona: m.opts.Persona}
	return func() tea.Msg {
		st, err := m.orch.StartSession(m.ctx, in)
		return sessionStartedMsg{State: st, Err: err}
	}
}

func (m *Model) processTurn() tea.Cmd {
	in := orchestrator.TurnInput{
		SessionID:   m.state.SessionID,
		UserID:      m.opts.UserID,
		Topic:       m.opts.Topic,
		Turns:       m.window(),
		DurationSec: m.elapsedSec(),
	}
	return func() tea.Msg {
		res, err := m.orch.ProcessTurn(m.ctx, in)
		return turnDoneMsg{Result: res, Err: err}
	}
}

func (m *Model) planSession() tea.Cmd {
	in := orchestrator.PlanInput{
		SessionID: m.state.SessionID,
		UserID:    m.opts.UserID,
		Turns:     m.window(),
		Metrics:   m.metrics(),
		Style:     persona.StyleExplicit,
	}
	return func() tea.Msg {
		res, err := m.orch.PlanSession(m.ctx, in)
		return planDoneMsg{Result: res, Err: err}
	}
}

func (m *Model) finishSession() tea.Cmd {
	rec := learner.SessionRecord{
		SessionID: m.state.SessionID,
		UserID:    m.opts.UserID,
		Topic:     m.opts.Topic,
		Persona:   m.state.ActivePersona,
		StartedAt: m.started,
		Metrics:   m.metrics(),
	}
	return func() tea.Msg {
		return sessionFinishedMsg{Err: m.orch.FinishSession(m.ctx, rec)}
	}
}
