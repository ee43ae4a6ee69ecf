// Package model provides Bubble Tea models for CLI commands.
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/titanbrowser/capbridge/internal/bridge"
	"github.com/titanbrowser/capbridge/internal/cli/styles"
	"github.com/titanbrowser/capbridge/internal/domain/entity"
	"github.com/titanbrowser/capbridge/internal/logging"
)

// ConsoleModel is the interactive demo console: each line typed becomes a
// capability call against the simulated host, outcomes and subscription
// events stream into the transcript.
type ConsoleModel struct {
	input    textinput.Model
	view     viewport.Model
	theme    *styles.Theme
	ctx      context.Context
	bridge   *bridge.Bridge
	counter  int
	lines    []string
	width    int
	height   int
	ready    bool
	quitting bool
}

// outcomeMsg carries one call result into the update loop.
type outcomeMsg struct {
	result bridge.CallResult
}

// eventMsg carries one subscription event into the update loop.
type eventMsg struct {
	event bridge.SubscriptionEvent
}

// noticeMsg carries an out-of-band status line into the update loop.
type noticeMsg struct {
	text string
}

// ConsoleSink adapts the bridge delivery path to Bubble Tea messages. The
// program pointer is set after tea.NewProgram, under the same lock the
// deliveries take.
type ConsoleSink struct {
	mu      sync.Mutex
	program *tea.Program
}

// Attach binds the running program. Deliveries before Attach are dropped.
func (s *ConsoleSink) Attach(p *tea.Program) {
	s.mu.Lock()
	s.program = p
	s.mu.Unlock()
}

// DeliverResult implements bridge.ResultSink.
func (s *ConsoleSink) DeliverResult(_ context.Context, result bridge.CallResult) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(outcomeMsg{result: result})
	}
}

// DeliverEvent implements bridge.ResultSink.
func (s *ConsoleSink) DeliverEvent(_ context.Context, event bridge.SubscriptionEvent) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(eventMsg{event: event})
	}
}

// Notify appends a status line to the transcript.
func (s *ConsoleSink) Notify(text string) {
	s.mu.Lock()
	p := s.program
	s.mu.Unlock()
	if p != nil {
		p.Send(noticeMsg{text: text})
	}
}

// NewConsoleModel creates the demo console model.
func NewConsoleModel(ctx context.Context, theme *styles.Theme, br *bridge.Bridge) ConsoleModel {
	log := logging.FromContext(ctx)
	log.Debug().Msg("creating demo console model")

	input := textinput.New()
	input.Placeholder = `capability [json args], e.g. clipboard.write {"text":"hi"}`
	input.Prompt = "> "
	input.Focus()

	return ConsoleModel{
		input:  input,
		theme:  theme,
		ctx:    ctx,
		bridge: br,
		lines: []string{
			theme.Subtle.Render("Type a capability name followed by optional JSON arguments."),
			theme.Subtle.Render("Examples:"),
			theme.Subtle.Render(`  clipboard.write {"text":"hello"}`),
			theme.Subtle.Render("  clipboard.read"),
			theme.Subtle.Render("  notification.requestPermission"),
			theme.Subtle.Render("  geolocation.watchPosition"),
			theme.Subtle.Render("Press esc or ctrl+c to quit."),
			"",
		},
		width:  80,
		height: 24,
	}
}

// Init implements tea.Model.
func (m ConsoleModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m ConsoleModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit()
			m.input.SetValue("")
			m.refreshViewport()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view = viewport.New(msg.Width, msg.Height-4)
		m.ready = true
		m.refreshViewport()

	case outcomeMsg:
		m.appendOutcome(msg.result)
		m.refreshViewport()
		return m, nil

	case eventMsg:
		payload, _ := json.Marshal(msg.event.Payload)
		m.lines = append(m.lines, fmt.Sprintf("%s %s %s",
			m.theme.WarningStyle.Render("event"),
			m.theme.Subtle.Render(shortID(msg.event.SubscriptionID)),
			m.theme.Normal.Render(string(payload)),
		))
		m.refreshViewport()
		return m, nil

	case noticeMsg:
		m.lines = append(m.lines, m.theme.WarningStyle.Render("note")+" "+m.theme.Subtle.Render(msg.text))
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit parses the input line and dispatches the call.
func (m *ConsoleModel) submit() {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return
	}

	name, rawArgs, _ := strings.Cut(line, " ")
	rawArgs = strings.TrimSpace(rawArgs)

	m.counter++
	id := "demo-" + strconv.Itoa(m.counter)

	m.lines = append(m.lines, fmt.Sprintf("%s %s",
		m.theme.Highlight.Render("call "+name),
		m.theme.Subtle.Render(rawArgs),
	))

	req := bridge.CallRequest{
		CorrelationID: id,
		Capability:    entity.CapabilityName(name),
	}
	if rawArgs != "" {
		req.Arguments = json.RawMessage(rawArgs)
	}

	m.bridge.Dispatch(m.ctx, req)
}

func (m *ConsoleModel) appendOutcome(result bridge.CallResult) {
	if result.OK {
		value, _ := json.Marshal(result.Value)
		text := string(value)
		if text == "null" {
			text = "ok"
		}
		m.lines = append(m.lines, fmt.Sprintf("%s %s",
			m.theme.SuccessStyle.Render("ok  "),
			m.theme.Normal.Render(text),
		))
		return
	}

	kind := "operation_failed"
	message := ""
	if result.Error != nil {
		kind = string(result.Error.Kind)
		message = result.Error.Message
	}
	m.lines = append(m.lines, fmt.Sprintf("%s %s %s",
		m.theme.ErrorStyle.Render("err "),
		m.theme.ErrorStyle.Render(kind),
		m.theme.Subtle.Render(message),
	))
}

func (m *ConsoleModel) refreshViewport() {
	if !m.ready {
		return
	}
	m.view.SetContent(strings.Join(m.lines, "\n"))
	m.view.GotoBottom()
}

// View implements tea.Model.
func (m ConsoleModel) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	title := m.theme.Title.Render("capbridge demo console") + " " +
		m.theme.BadgeMuted.Render("sim host")

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		m.view.View(),
		m.input.View(),
	)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
