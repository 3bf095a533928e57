package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/consensuslabs/chronicle/internal/storage"
	"github.com/consensuslabs/chronicle/pkg/game"
	"github.com/consensuslabs/chronicle/pkg/score"
	"github.com/consensuslabs/chronicle/pkg/story"
)

const placeholderText = "Argue for A or B, then /a or /b to vote..."

// ChronicleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ChronicleUI struct {
	session *game.Session
	store   *storage.RedisStorage
	themes  []*story.Theme

	snap          game.Snapshot
	storyViewport viewport.Model
	metaViewport  viewport.Model
	textarea      textarea.Model
	ready         bool
	width         int
	height        int
	status        string

	// Theme selection state
	showThemeModal bool
	selectedTheme  int

	// Quit confirmation state
	showQuitModal bool

	// History overlay state
	showHistory bool
	history     []score.HistoryEntry
	leaders     []score.LeaderboardEntry
	historyErr  error
}

type tickMsg time.Time

type historyLoadedMsg struct {
	history []score.HistoryEntry
	leaders []score.LeaderboardEntry
	err     error
}

type copiedMsg struct {
	err error
}

var (
	storyPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	chatNameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")). // teal
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	timerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")). // yellow
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func NewChronicleUI(session *game.Session, store *storage.RedisStorage, themes []*story.Theme) ChronicleUI {
	ta := textarea.New()
	ta.Placeholder = placeholderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 500
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	storyVp := viewport.New(50, 20)
	storyVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ChronicleUI{
		session:        session,
		store:          store,
		themes:         themes,
		textarea:       ta,
		storyViewport:  storyVp,
		metaViewport:   metaVp,
		snap:           session.Snapshot(),
		showThemeModal: true,
	}
}

func (m ChronicleUI) Init() tea.Cmd {
	return tea.Batch(tick(), textarea.Blink)
}

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m ChronicleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The ticker runs in every state so lobby joins, phase changes, and
	// countdowns render without input.
	if _, ok := msg.(tickMsg); ok {
		m.snap = m.session.Snapshot()
		if m.ready {
			m.writeStoryContent()
			m.metaViewport.SetContent(m.writeMetadata())
		}
		return m, tick()
	}

	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showThemeModal {
		return m.updateThemeModal(msg)
	}
	if m.showHistory {
		return m.updateHistoryOverlay(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.storyViewport, vpCmd = m.storyViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.writeStoryContent()
		m.metaViewport.SetContent(m.writeMetadata())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textarea.Value())
			m.textarea.Reset()

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}
			if input == "" {
				if m.snap.Phase == game.PhaseIdle {
					return m.runAction(m.session.StartGame())
				}
				return m, nil
			}
			return m.runAction(m.session.SubmitCommentary(input))
		}

	case historyLoadedMsg:
		m.history = msg.history
		m.leaders = msg.leaders
		m.historyErr = msg.err
		m.showHistory = true
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Copy failed: " + msg.err.Error())
		} else {
			m.status = systemStyle.Render("Transcript copied to clipboard")
		}
		return m, nil
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.storyViewport, vpCmd = m.storyViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// runAction refreshes the snapshot after a session call and surfaces any
// precondition error in the status line.
func (m ChronicleUI) runAction(err error) (tea.Model, tea.Cmd) {
	if err != nil {
		m.status = errorStyle.Render(err.Error())
	} else {
		m.status = ""
	}
	m.snap = m.session.Snapshot()
	m.writeStoryContent()
	m.metaViewport.SetContent(m.writeMetadata())
	return m, nil
}

func (m ChronicleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	switch strings.ToLower(input) {
	case "/start":
		return m.runAction(m.session.StartGame())
	case "/a":
		return m.runAction(m.session.SubmitVote(story.BranchA))
	case "/b":
		return m.runAction(m.session.SubmitVote(story.BranchB))
	case "/end":
		return m.runAction(m.session.EndGame())
	case "/new":
		m.session.Reset()
		m.snap = m.session.Snapshot()
		m.showThemeModal = true
		m.status = ""
		return m, nil
	case "/history":
		return m, m.loadHistory()
	case "/copy":
		transcript := plainTranscript(m.snap)
		return m, func() tea.Msg {
			return copiedMsg{err: clipboard.WriteAll(transcript)}
		}
	case "/help":
		m.status = systemStyle.Render("/start /a /b /end /new /history /copy. Enter sends commentary")
		return m, nil
	default:
		m.status = errorStyle.Render("Unknown command: " + input)
		return m, nil
	}
}

func (m ChronicleUI) loadHistory() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()

		history, err := m.store.ListHistory(ctx)
		if err != nil {
			return historyLoadedMsg{err: err}
		}
		leaders, err := m.store.ListLeaderboard(ctx)
		return historyLoadedMsg{history: history, leaders: leaders, err: err}
	}
}

func (m *ChronicleUI) resize() {
	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	m.storyViewport.Width = storyWidth - 2
	m.storyViewport.Height = m.height - 8
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(storyWidth - 4)
}

// plainTranscript renders the finished chronicle as shareable plain text.
func plainTranscript(snap game.Snapshot) string {
	var sb strings.Builder
	sb.WriteString(snap.ThemeName + "\n")
	sb.WriteString(strings.Repeat("=", len(snap.ThemeName)) + "\n\n")
	for _, e := range snap.Transcript {
		switch e.Kind {
		case game.TranscriptChoice:
			sb.WriteString(fmt.Sprintf("Round %d, %s wins: %s\n", e.Round, e.Winner, e.Text))
		default:
			sb.WriteString(e.Text + "\n")
		}
	}
	if len(snap.Path) > 0 {
		sb.WriteString("\nPath: " + story.PathString(snap.Path) + "\n")
	}
	return sb.String()
}

func (m *ChronicleUI) writeStoryContent() {
	width := m.storyViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	title := m.snap.ThemeIcon + " " + m.snap.ThemeName
	if m.snap.ThemeName == "" {
		title = "CONSENSUS CHRONICLE"
	}
	content.WriteString(titleStyle.Render(title) + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.snap.Transcript {
		switch e.Kind {
		case game.TranscriptOpening:
			content.WriteString(contextStyle.Render(wordwrap.String(e.Text, width)) + "\n\n")
		case game.TranscriptContext:
			content.WriteString(wordwrap.String(e.Text, width) + "\n\n")
		case game.TranscriptChoice:
			content.WriteString(choiceStyle.Render("▶ "+e.Text) + "\n")
		case game.TranscriptOutcome:
			content.WriteString(contextStyle.Render(wordwrap.String(e.Text, width)) + "\n\n")
		}
	}

	if m.snap.Phase == game.PhaseVote || m.snap.Phase == game.PhaseDebate {
		content.WriteString(m.renderOptions(width))
	}

	if len(m.snap.Feed) > 0 {
		content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n")
		for _, msg := range m.snap.Feed {
			content.WriteString(renderFeedLine(msg, width))
		}
	}

	if m.snap.Phase == game.PhaseEnded {
		content.WriteString("\n" + titleStyle.Render(fmt.Sprintf("Chronicle complete: +%d GLT", m.snap.LastReward)) + "\n")
		content.WriteString(systemStyle.Render("/copy to share the transcript, /new to play again") + "\n")
	}

	m.storyViewport.SetContent(content.String())
	m.storyViewport.GotoBottom()
}

func (m *ChronicleUI) renderOptions(width int) string {
	if m.snap.OptionA == nil || m.snap.OptionB == nil {
		return ""
	}
	var sb strings.Builder
	optWidth := width - 6

	a := fmt.Sprintf("[A] %s: %s", m.snap.OptionA.Tag, m.snap.OptionA.Text)
	b := fmt.Sprintf("[B] %s: %s", m.snap.OptionB.Tag, m.snap.OptionB.Text)
	sb.WriteString(choiceStyle.Render("A") + " " + wordwrap.String(a, optWidth) + "\n")
	sb.WriteString(choiceStyle.Render("B") + " " + wordwrap.String(b, optWidth) + "\n")

	if m.snap.Phase == game.PhaseVote {
		tally := fmt.Sprintf("Votes: A %d · B %d", m.snap.CountA, m.snap.CountB)
		if m.snap.HumanVoted {
			tally += "  ✓ vote recorded"
		} else {
			tally += "  /a or /b to vote"
		}
		sb.WriteString(timerStyle.Render(tally) + "\n")
	}
	sb.WriteString("\n")
	return sb.String()
}

func renderFeedLine(msg game.Message, width int) string {
	switch msg.Kind {
	case game.MessageChat:
		name := msg.From.Avatar + " " + msg.From.Name
		leaning := ""
		if msg.Leaning.Valid() {
			leaning = choiceStyle.Render(" ["+string(msg.Leaning)+"]")
		}
		body := wordwrap.String(msg.Text, width-4)
		return chatNameStyle.Render(name) + leaning + ": " + body + "\n"
	default:
		return systemStyle.Render("· "+wordwrap.String(msg.Text, width-2)) + "\n"
	}
}

func (m *ChronicleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ROOM") + "\n\n")

	content.WriteString("Phase:\n")
	phase := string(m.snap.Phase)
	if m.snap.Phase != game.PhaseIdle && m.snap.Round > 0 {
		phase = fmt.Sprintf("%s · round %d/%d", m.snap.Phase, m.snap.Round, m.snap.TotalRounds)
	}
	content.WriteString(phase + "\n\n")

	if m.snap.Remaining > 0 {
		content.WriteString("Time left:\n")
		content.WriteString(timerStyle.Render(fmtDuration(m.snap.Remaining)) + "\n\n")
	}

	content.WriteString(fmt.Sprintf("Players (%d):\n", len(m.snap.Members)))
	for _, p := range m.snap.Members {
		line := p.Avatar + " " + p.Name
		if rec, ok := m.snap.Scores[p.ID]; ok {
			line += fmt.Sprintf(" · %d", rec.Total())
		}
		if _, voted := m.snap.Votes[p.ID]; voted && m.snap.Phase == game.PhaseVote {
			line += " ✓"
		}
		content.WriteString(line + "\n")
	}
	content.WriteString("\n")

	if m.snap.Path != nil {
		content.WriteString("Path:\n")
		content.WriteString(story.PathString(m.snap.Path) + "\n\n")
	}

	content.WriteString("Balance:\n")
	content.WriteString(fmt.Sprintf("%d GLT\n\n", m.snap.Balance))

	content.WriteString("Commands:\n")
	content.WriteString("• Enter: commentary\n")
	content.WriteString("• /a /b: vote\n")
	content.WriteString("• /start: begin\n")
	content.WriteString("• /end: finish early\n")
	content.WriteString("• /history: records\n")
	content.WriteString("• Ctrl+C: quit\n")

	return content.String()
}

func fmtDuration(d time.Duration) string {
	total := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func (m ChronicleUI) updateThemeModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedTheme > 0 {
				m.selectedTheme--
			}
		case tea.KeyDown:
			if m.selectedTheme < len(m.themes)-1 {
				m.selectedTheme++
			}
		case tea.KeyEnter:
			theme := m.themes[m.selectedTheme]
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := m.session.CreateRoom(ctx, theme.ID); err != nil {
				m.status = errorStyle.Render(err.Error())
				return m, nil
			}
			m.status = ""
			m.showThemeModal = false
			m.snap = m.session.Snapshot()
			m.writeStoryContent()
			m.metaViewport.SetContent(m.writeMetadata())
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}

	return m, nil
}

func (m ChronicleUI) updateHistoryOverlay(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			m.showQuitModal = true
		default:
			m.showHistory = false
			m.textarea.Focus()
			return m, textarea.Blink
		}
	}
	return m, nil
}

func (m ChronicleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showThemeModal {
					m.textarea.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ChronicleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Leave the Chronicle?"))
	content.WriteString("\n\n")
	content.WriteString("An unfinished game settles with the score so far.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ChronicleUI) renderThemeModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Choose a Theme"))
	content.WriteString("\n\n")

	for i, theme := range m.themes {
		line := fmt.Sprintf("%s %s: %s", theme.Icon, theme.Name, theme.Desc)
		if i == m.selectedTheme {
			content.WriteString(modalSelectedItemStyle.Render("▶ " + line))
		} else {
			content.WriteString(modalItemStyle.Render("  " + line))
		}
		content.WriteString("\n")
	}

	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("Balance: %d GLT · entry fee %d GLT\n", m.snap.Balance, game.DefaultConfig().EntryFee))
	if m.status != "" {
		content.WriteString(m.status + "\n")
	}
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to open a room, Ctrl+C to exit"))

	modal := modalStyle.Width(64).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ChronicleUI) renderHistoryOverlay() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Game History"))
	content.WriteString("\n\n")

	if m.historyErr != nil {
		content.WriteString(errorStyle.Render("Failed to load records: " + m.historyErr.Error()))
	} else {
		if len(m.history) == 0 {
			content.WriteString("No games played yet.\n")
		}
		for i, e := range m.history {
			if i >= 10 {
				break
			}
			content.WriteString(fmt.Sprintf("%s  %s  %d pts  %+d GLT\n",
				e.Timestamp.Format("Jan 02 15:04"), e.ThemeName, e.Points, e.Net))
		}

		content.WriteString("\n" + modalTitleStyle.Render("Leaderboard") + "\n\n")
		if len(m.leaders) == 0 {
			content.WriteString("No scores recorded yet.\n")
		}
		for i, e := range m.leaders {
			if i >= 10 {
				break
			}
			content.WriteString(fmt.Sprintf("%2d. %s %s, %d pts\n", i+1, e.Avatar, e.Name, e.Points))
		}
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Press any key to return"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ChronicleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showThemeModal {
		return m.renderThemeModal()
	}
	if m.showHistory {
		return m.renderHistoryOverlay()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	storyWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - storyWidth - 6

	statusLine := m.status
	if statusLine == "" {
		statusLine = " "
	}

	storyPanel := storyPanelStyle.Width(storyWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.storyViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", storyWidth-4)),
			m.textarea.View(),
			statusLine,
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, storyPanel, metaPanel)
}
