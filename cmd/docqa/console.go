package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a-h/docqa/client"
	"github.com/a-h/docqa/console"
	"github.com/a-h/docqa/models"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type ConsoleCommand struct {
	ServerURL string `help:"The URL of the docqa server." env:"DOCQA_SERVER_URL" default:"http://localhost:9020"`
	APIKey    string `help:"The API key for the docqa server." env:"DOCQA_API_KEY" default:""`
	LogLevel  string `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c ConsoleCommand) Run(ctx context.Context) (err error) {
	dc := client.New(c.ServerURL, c.APIKey)

	displays := make(chan string)
	display := console.DisplayFunc(func(text string) {
		displays <- text
	})

	m := newModel(ctx, dc, console.NewQA(display), console.NewSummary(display), displays)
	p := tea.NewProgram(m)
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

// Dracula color scheme.
var (
	Background  = lipgloss.Color("#282a36")
	CurrentLine = lipgloss.Color("#44475a")
	Foreground  = lipgloss.Color("#f8f8f2")
	Comment     = lipgloss.Color("#6272a4")
	Cyan        = lipgloss.Color("#8be9fd")
	Green       = lipgloss.Color("#50fa7b")
	Pink        = lipgloss.Color("#ff79c6")
	Purple      = lipgloss.Color("#bd93f9")
)

var headerStyle = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Margin(10).Padding(1).PaddingTop(0)

var header = `
 ______   _______  _______  _______  _______
|      | |       ||       ||       ||   _   |
|  _    ||   _   ||       ||   _   ||  |_|  |
| | |   ||  | |  ||       ||  | |  ||       |
| |_|   ||  |_|  ||      _||  |_|  ||       |
|       ||       ||     |_ |      | |   _   |
|______| |_______||_______||____||_||__| |__|
`

var resultStyle = lipgloss.NewStyle().Padding(1).Margin(1).MarginBottom(0).MaxWidth(90).Background(Background).Foreground(Cyan)
var modeStyle = lipgloss.NewStyle().Foreground(Green).Bold(true)
var hintStyle = lipgloss.NewStyle().Foreground(Comment)

type formMode int

const (
	modeAsk formMode = iota
	modeSummarize
)

func (m formMode) String() string {
	if m == modeSummarize {
		return "summarize"
	}
	return "ask"
}

func (m formMode) placeholder() string {
	if m == modeSummarize {
		return "Enter an article URL or text to summarize..."
	}
	return "Enter a URL or document path, followed by your question..."
}

// displayMsg carries one display-target update into the program.
type displayMsg string

type model struct {
	viewport viewport.Model
	textarea textarea.Model
	mode     formMode
	ctx      context.Context

	client      client.Client
	askCtrl     *console.Controller
	summaryCtrl *console.Controller
	displays    chan string
}

func newModel(ctx context.Context, dc client.Client, askCtrl, summaryCtrl *console.Controller, displays chan string) model {
	ta := textarea.New()
	ta.Placeholder = modeAsk.placeholder()
	ta.Focus()

	ta.Prompt = "┃ "
	ta.CharLimit = 1024

	ta.SetHeight(3)

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)

	vp := viewport.New(80, 20)
	vp.SetContent(headerStyle.Render(header))

	return model{
		ctx:         ctx,
		textarea:    ta,
		viewport:    vp,
		client:      dc,
		askCtrl:     askCtrl,
		summaryCtrl: summaryCtrl,
		displays:    displays,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.subscribeToDisplays(),
	)
}

func (m model) subscribeToDisplays() tea.Cmd {
	return func() tea.Msg {
		select {
		case text := <-m.displays:
			return displayMsg(text)
		case <-m.ctx.Done():
			return nil
		}
	}
}

// parseAskRequest splits form input into the ask form's fields: a leading URL
// or document path, with the remainder as the question.
func parseAskRequest(value string) (req client.AskRequest, documentPath string) {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return req, ""
	}
	first := fields[0]
	rest := strings.TrimSpace(strings.TrimPrefix(value, first))
	switch {
	case strings.HasPrefix(first, "http://") || strings.HasPrefix(first, "https://"):
		req.URL = first
		req.Question = rest
	case strings.EqualFold(filepath.Ext(first), ".pdf") || strings.EqualFold(filepath.Ext(first), ".docx"):
		documentPath = first
		req.Question = rest
	default:
		req.Question = value
	}
	return req, documentPath
}

func parseSummarizeInput(value string) (url, text string) {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value, ""
	}
	return "", value
}

func summarizeRequest(url, text string) models.SummarizePostRequest {
	return models.SummarizePostRequest{
		URL:  url,
		Text: text,
	}
}

func (m model) submit(value string) {
	if m.mode == modeSummarize {
		url, text := parseSummarizeInput(value)
		go m.summaryCtrl.Submit(m.ctx, func(ctx context.Context) (string, error) {
			resp, err := m.client.SummarizePost(ctx, summarizeRequest(url, text))
			return resp.Summary, err
		})
		return
	}
	req, documentPath := parseAskRequest(value)
	go m.askCtrl.Submit(m.ctx, func(ctx context.Context) (string, error) {
		if documentPath != "" {
			f, err := os.Open(documentPath)
			if err != nil {
				return "", err
			}
			defer f.Close()
			req.File = &client.AskFile{
				Name:     filepath.Base(documentPath),
				Contents: f,
			}
		}
		resp, err := m.client.AskPost(ctx, req)
		return resp.Answer, err
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case displayMsg:
		m.viewport.SetContent(resultStyle.Render(wordwrap.String(string(msg), 80)))
		m.viewport.GotoBottom()
		return m, m.subscribeToDisplays()
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - m.textarea.Height() - 4
		m.textarea.SetWidth(msg.Width)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			if m.mode == modeAsk {
				m.mode = modeSummarize
			} else {
				m.mode = modeAsk
			}
			m.textarea.Placeholder = m.mode.placeholder()
			return m, nil
		case "enter":
			v := strings.TrimSpace(m.textarea.Value())
			if v == "" {
				// Don't submit empty forms.
				return m, nil
			}
			m.textarea.Reset()
			m.submit(v)
			return m, nil
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}
	case cursor.BlinkMsg:
		// Textarea should also process cursor blinks.
		var cmd tea.Cmd
		m.textarea, cmd = m.textarea.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) View() string {
	modeLine := fmt.Sprintf("%s %s",
		modeStyle.Render(fmt.Sprintf("[%s]", m.mode)),
		hintStyle.Render("tab to switch mode, enter to submit, esc to quit"),
	)
	return fmt.Sprintf("%s\n%s\n%s",
		m.viewport.View(),
		modeLine,
		m.textarea.View(),
	) + "\n\n"
}
