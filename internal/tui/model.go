package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"mmrag/internal/workflow"
)

// QAPort is the TUI-facing subset of the question/answer workflow.
type QAPort interface {
	Ask(question string) (workflow.State, error)
}

// Model is the Bubble Tea model for the chat surface.
type Model struct {
	qa           QAPort
	input        textinput.Model
	viewport     viewport.Model
	answer       string
	docCount     int
	status       string
	ready        bool
	lastQuestion string
}

// New creates a new TUI model instance.
func New(qa QAPort) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "질문을 입력하고 Enter를 누르세요"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{qa: qa, input: ti, viewport: vp, status: "컬렉션 로드 완료. 질문을 입력하세요."}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := answerBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 1 + 1 + qh + 1 // header + status + input frame + spacer
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderAnswer())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			q := strings.TrimSpace(m.input.Value())
			if q == "" {
				break
			}
			if q == "quit" || q == "exit" || q == "종료" {
				return m, tea.Quit
			}
			state, err := m.qa.Ask(q)
			if err != nil {
				m.status = "오류: " + err.Error()
				m.answer = ""
				m.docCount = 0
			} else {
				m.status = fmt.Sprintf("참조된 문서 수: %d개", len(state.Documents))
				m.answer = state.Answer
				m.docCount = len(state.Documents)
				m.lastQuestion = q
			}
			m.input.SetValue("")
			m.viewport.SetContent(m.renderAnswer())
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "up":
			m.viewport.LineUp(1)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the chat layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Multimodal Document Q&A")
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	answer := answerBoxStyle.Render(m.viewport.View())
	return header + "\n" + answer + "\n" + input + "\n" + status
}

func (m Model) renderAnswer() string {
	if m.answer == "" {
		return "아직 답변이 없습니다."
	}
	title := lipgloss.NewStyle().Bold(true).Render("질문: " + m.lastQuestion)
	return title + "\n\n" + m.answer
}

var (
	answerBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
