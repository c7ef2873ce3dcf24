// cli/cli.go
// Package cli provides the interactive quiz interface for recall.
package cli

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwiater/recall/internal/appconfig"
	"github.com/mwiater/recall/internal/articles"
	"github.com/mwiater/recall/internal/chat"
	"github.com/mwiater/recall/internal/providerfactory"
	"github.com/mwiater/recall/internal/providers"
	"github.com/mwiater/recall/internal/quiz"
	"github.com/mwiater/recall/internal/readiness"
	"github.com/mwiater/recall/internal/schema"
	"github.com/mwiater/recall/internal/util"
)

// viewState represents the current view or screen of the application.
type viewState int

const (
	// viewStartup is the dependency check sequence shown before any question.
	viewStartup viewState = iota
	// viewQuestion is the state where the user reads and answers a question.
	viewQuestion
	// viewFeedback is the state showing the grading verdict.
	viewFeedback
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	headerStyle   = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	questionStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, false).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	passStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Padding(0, 1)
	labelStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// model is the main application model for the Bubble Tea UI. All session
// state lives here and is mutated only inside Update, on the foreground
// goroutine; background work reports back through typed messages.
type model struct {
	ctx     context.Context
	config  *appconfig.Config
	router  *chat.Router
	prober  *readiness.Prober
	service *quiz.Service

	state       viewState
	isLoading   bool
	loadingText string
	statusText  string
	errText     string
	fatalText   string

	article    articles.Article
	question   string
	verdict    schema.Verdict
	hasVerdict bool

	spinner  spinner.Model
	textArea textarea.Model
	viewport viewport.Model

	width, height    int
	program          *tea.Program
	requestStartTime time.Time
}

// initialModel creates and initializes a new model with default values.
func initialModel(ctx context.Context, cfg *appconfig.Config, router *chat.Router, prober *readiness.Prober) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Type your answer..."
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(5)

	vp := viewport.New(100, 10)

	return &model{
		ctx:         ctx,
		config:      cfg,
		router:      router,
		prober:      prober,
		service:     quiz.New(router),
		state:       viewStartup,
		isLoading:   true,
		statusText:  "Initializing...",
		spinner:     s,
		textArea:    ta,
		viewport:    vp,
	}
}

// startupStatusMsg carries a readiness progress line for display.
type startupStatusMsg string

// startupDoneMsg is sent when every startup check has passed.
type startupDoneMsg struct{ probedLocal bool }

// startupFailedMsg is sent when a startup check reaches a terminal failure.
type startupFailedMsg struct{ message string }

// questionReadyMsg is sent when a new question has been generated.
type questionReadyMsg struct {
	article  articles.Article
	question string
}

// questionFailedMsg is sent when question generation fails.
type questionFailedMsg struct{ message string }

// verdictReadyMsg is sent when an answer has been graded.
type verdictReadyMsg struct{ verdict schema.Verdict }

// verdictFailedMsg is sent when grading fails or the response fails
// validation.
type verdictFailedMsg struct{ message string }

// providerCheckedMsg is sent when a provider switch has been cleared to
// proceed.
type providerCheckedMsg struct{ target providers.Identity }

// providerCheckFailedMsg is sent when the readiness re-check for a provider
// switch fails; the active provider stays unchanged.
type providerCheckFailedMsg struct{ message string }

// tickMsg is a message sent at regular intervals, used for the elapsed-time
// display while a request is in flight.
type tickMsg time.Time

// startupCmd runs the dependency check sequence off the foreground thread,
// streaming progress lines back through the program.
func startupCmd(ctx context.Context, p *tea.Program, prober *readiness.Prober, cfg *appconfig.Config) tea.Cmd {
	return func() tea.Msg {
		go func() {
			probedLocal := false
			if cfg.DefaultProvider == appconfig.ProviderOllama {
				prober.Notify = func(_ readiness.State, text string) {
					p.Send(startupStatusMsg(text))
				}
				if err := prober.EnsureLocal(ctx); err != nil {
					p.Send(startupFailedMsg{message: err.Error()})
					return
				}
				probedLocal = true
			}

			p.Send(startupStatusMsg("Checking articles..."))
			if err := readiness.EnsureCorpus(cfg.ArticlesDir); err != nil {
				p.Send(startupFailedMsg{message: err.Error()})
				return
			}

			p.Send(startupDoneMsg{probedLocal: probedLocal})
		}()
		return nil
	}
}

// generateQuestionCmd picks a random article and asks the active provider for
// a question about it.
func generateQuestionCmd(ctx context.Context, service *quiz.Service, cfg *appconfig.Config) tea.Cmd {
	return func() tea.Msg {
		article, err := articles.PickRandom(cfg.ArticlesDir)
		if err != nil {
			return questionFailedMsg{message: err.Error()}
		}
		question, err := service.GenerateQuestion(ctx, article.Text)
		if err != nil {
			return questionFailedMsg{message: err.Error()}
		}
		return questionReadyMsg{article: article, question: question}
	}
}

// evaluateAnswerCmd grades the user's answer against the current article and
// question.
func evaluateAnswerCmd(ctx context.Context, service *quiz.Service, article articles.Article, question, answer string) tea.Cmd {
	return func() tea.Msg {
		verdict, err := service.EvaluateAnswer(ctx, article.Text, question, answer)
		if err != nil {
			return verdictFailedMsg{message: err.Error()}
		}
		return verdictReadyMsg{verdict: verdict}
	}
}

// switchProviderCmd clears a provider switch. Switching into the local
// provider requires a reachability re-check unless it already passed one this
// session; the cloud credential was validated at configuration load and is
// never re-checked.
func switchProviderCmd(ctx context.Context, prober *readiness.Prober, target providers.Identity, needCheck bool) tea.Cmd {
	return func() tea.Msg {
		if needCheck {
			if err := prober.Recheck(ctx); err != nil {
				return providerCheckFailedMsg{message: fmt.Sprintf("Ollama is not reachable: %v", err)}
			}
		}
		return providerCheckedMsg{target: target}
	}
}

// tickCmd creates a Bubble Tea command that sends a tickMsg at a regular interval.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init initializes the Bubble Tea model and kicks off the startup sequence.
func (m *model) Init() tea.Cmd {
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, startupCmd(m.ctx, m.program, m.prober, m.config), tickCmd())
}

// beginQuestionCycle resets per-question state and starts generation.
func (m *model) beginQuestionCycle() tea.Cmd {
	m.state = viewQuestion
	m.isLoading = true
	m.loadingText = "Selecting article and generating question..."
	m.question = ""
	m.errText = ""
	m.hasVerdict = false
	m.textArea.Reset()
	m.requestStartTime = time.Now()
	return tea.Batch(m.spinner.Tick, generateQuestionCmd(m.ctx, m.service, m.config), tickCmd())
}

// otherProvider returns the identity the toggle switches to.
func (m *model) otherProvider() providers.Identity {
	if m.router.Active() == providers.Ollama {
		return providers.OpenAI
	}
	return providers.Ollama
}

// activeModelName resolves the model identifier for the active provider.
func (m *model) activeModelName() string {
	if m.router.Active() == providers.OpenAI {
		return m.config.OpenAIModelName
	}
	return m.config.ModelName
}

// Update is the central update function for the Bubble Tea model. It is the
// only place session state is mutated.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "ctrl+s":
			if m.state == viewQuestion && !m.isLoading && m.question != "" {
				answer := strings.TrimSpace(m.textArea.Value())
				if answer == "" {
					return m, nil
				}
				m.isLoading = true
				m.loadingText = "Evaluating answer..."
				m.errText = ""
				m.requestStartTime = time.Now()
				return m, tea.Batch(m.spinner.Tick, evaluateAnswerCmd(m.ctx, m.service, m.article, m.question, answer), tickCmd())
			}
		case "ctrl+n":
			if m.state != viewStartup && !m.isLoading {
				return m, m.beginQuestionCycle()
			}
		case "ctrl+p":
			if m.state != viewStartup && !m.isLoading {
				target := m.otherProvider()
				if !m.router.Has(target) {
					m.errText = "OpenAI provider is not configured. Set OPENAI_API_KEY to enable it."
					return m, nil
				}
				needCheck := target == providers.Ollama && !m.router.Verified(providers.Ollama)
				m.isLoading = true
				m.loadingText = fmt.Sprintf("Switching to %s...", target)
				m.requestStartTime = time.Now()
				return m, tea.Batch(m.spinner.Tick, switchProviderCmd(m.ctx, m.prober, target, needCheck), tickCmd())
			}
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.textArea.SetWidth(msg.Width - 4)
		m.viewport.Width = msg.Width - 2
		m.viewport.Height = util.Max(msg.Height-12, 5)

	case startupStatusMsg:
		m.statusText = string(msg)
		return m, nil

	case startupFailedMsg:
		m.isLoading = false
		m.fatalText = msg.message
		return m, nil

	case startupDoneMsg:
		if msg.probedLocal {
			m.router.MarkVerified(providers.Ollama)
		}
		return m, m.beginQuestionCycle()

	case questionReadyMsg:
		m.isLoading = false
		m.article = msg.article
		m.question = msg.question
		m.errText = ""
		m.textArea.Focus()
		return m, nil

	case questionFailedMsg:
		m.isLoading = false
		m.errText = "Error generating question: " + msg.message
		return m, nil

	case verdictReadyMsg:
		m.isLoading = false
		m.verdict = msg.verdict
		m.hasVerdict = true
		m.state = viewFeedback
		m.viewport.SetContent(m.feedbackContent())
		m.viewport.GotoTop()
		return m, nil

	case verdictFailedMsg:
		m.isLoading = false
		m.hasVerdict = false
		m.errText = "Error evaluating answer: " + msg.message
		m.state = viewFeedback
		return m, nil

	case providerCheckedMsg:
		m.isLoading = false
		if err := m.router.Use(msg.target); err != nil {
			m.errText = err.Error()
			return m, nil
		}
		if msg.target == providers.Ollama {
			m.router.MarkVerified(providers.Ollama)
		}
		m.errText = ""
		return m, nil

	case providerCheckFailedMsg:
		m.isLoading = false
		m.errText = msg.message
		return m, nil

	case tickMsg:
		if m.isLoading {
			return m, tickCmd()
		}
		return m, nil
	}

	if m.state == viewQuestion && !m.isLoading {
		m.textArea, cmd = m.textArea.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.state == viewFeedback {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	if m.isLoading {
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the application's UI based on the current state of the model.
func (m *model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.fatalText != "" {
		return errorStyle.Render(fmt.Sprintf("Startup failed: %s", m.fatalText)) +
			"\n\n" + helpStyle.Render("Fix the problem and restart. ctrl+q to quit.")
	}

	switch m.state {
	case viewStartup:
		return fmt.Sprintf("\n  %s\n\n  %s %s\n",
			titleStyle.Render("recall setup"),
			m.spinner.View(),
			m.statusText,
		)
	case viewQuestion:
		return m.questionView()
	case viewFeedback:
		return m.feedbackView()
	default:
		return "Unknown state"
	}
}

// header renders the provider/model badge line shared by the question and
// feedback views.
func (m *model) header() string {
	providerInfo := fmt.Sprintf("Provider: %s", m.router.Active())
	modelInfo := fmt.Sprintf("Model: %s", m.activeModelName())
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Render(providerInfo),
		headerStyle.MarginLeft(1).Render(modelInfo),
	)
}

// questionView renders the question, the answer input, and the help line.
func (m *model) questionView() string {
	var builder strings.Builder
	builder.WriteString(m.header() + "\n\n")

	if m.errText != "" {
		builder.WriteString(errorStyle.Render(m.errText) + "\n\n")
		builder.WriteString(helpStyle.Render("ctrl+n: new question • ctrl+p: switch provider • ctrl+q: quit"))
		return builder.String()
	}

	if m.isLoading {
		timer := fmt.Sprintf("%.1f", time.Since(m.requestStartTime).Seconds())
		builder.WriteString(fmt.Sprintf("  %s %s %ss\n", m.spinner.View(), m.loadingText, timer))
		return builder.String()
	}

	questionText := labelStyle.Render("Question: ") + util.WrapToWidth(m.question, util.Max(m.width-14, 20))
	builder.WriteString(questionStyle.Width(m.width - 2).Render(questionText) + "\n")
	builder.WriteString(sourceStyle.Render(fmt.Sprintf("Source: %s", util.TruncateRunes(m.article.Title, util.Max(m.width-10, 20)))) + "\n\n")
	builder.WriteString(m.textArea.View() + "\n\n")
	builder.WriteString(helpStyle.Render("ctrl+s: submit • ctrl+n: new question • ctrl+p: switch provider • ctrl+q: quit"))
	return builder.String()
}

// feedbackContent builds the scrollable verdict body.
func (m *model) feedbackContent() string {
	width := util.Max(m.width-4, 20)
	var builder strings.Builder

	if m.verdict.Passed() {
		builder.WriteString(passStyle.Render(m.verdict.Result) + "\n\n")
	} else {
		builder.WriteString(failStyle.Render(m.verdict.Result) + "\n\n")
	}
	builder.WriteString(util.WrapToWidth(m.verdict.Explanation, width) + "\n\n")
	builder.WriteString(labelStyle.Render("Expected Answer:") + "\n")
	builder.WriteString(util.WrapToWidth(m.verdict.Answer, width))
	return builder.String()
}

// feedbackView renders the verdict (or the evaluation error) below the
// question.
func (m *model) feedbackView() string {
	var builder strings.Builder
	builder.WriteString(m.header() + "\n\n")

	questionText := labelStyle.Render("Question: ") + util.WrapToWidth(m.question, util.Max(m.width-14, 20))
	builder.WriteString(questionStyle.Width(m.width - 2).Render(questionText) + "\n\n")

	if m.errText != "" {
		builder.WriteString(errorStyle.Render(m.errText) + "\n\n")
	} else if m.hasVerdict {
		builder.WriteString(m.viewport.View() + "\n\n")
	}

	builder.WriteString(helpStyle.Render("ctrl+n: next question • ctrl+p: switch provider • ctrl+q: quit"))
	return builder.String()
}

// StartGUI initializes and runs the interactive quiz TUI.
func StartGUI(ctx context.Context, cfg *appconfig.Config, cancel context.CancelFunc) {
	defer cancel()

	if cfg == nil {
		log.Fatalf("Failed to start: configuration is not loaded")
	}

	router, local, err := providerfactory.NewRouter(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize providers: %v", err)
	}
	prober := readiness.NewProber(local, cfg.ModelName)

	m := initialModel(ctx, cfg, router, prober)

	p := tea.NewProgram(m, tea.WithAltScreen())
	m.program = p

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}
