package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"postpilot/session"
	"postpilot/trends"
	"postpilot/types"
	"postpilot/workflow"
)

// Screen identifies the top-level view.
type Screen string

const (
	ScreenAuth     Screen = "auth"
	ScreenWorkflow Screen = "workflow"
	ScreenHistory  Screen = "history"
)

// HistoryAPI is the slice of the gateway the history screen needs.
type HistoryAPI interface {
	History(ctx context.Context) ([]types.HistoryEntry, error)
}

// Auth form field indexes.
const (
	fieldName = iota
	fieldEmail
	fieldPassword
	fieldPrefs
)

// Model is the TUI state. It renders snapshots of the workflow controller
// and forwards user intents to it via commands.
type Model struct {
	ctx       context.Context
	store     *session.Store
	flow      *workflow.Controller
	suggester *trends.Suggester
	history   HistoryAPI
	log       zerolog.Logger

	screen Screen
	busy   bool
	errMsg string
	user   *types.User

	// Auth form
	registering bool
	authInputs  []textinput.Model
	authFocus   int

	// Topic step
	topicInput  textinput.Model
	topics      []types.TrendingTopic
	topicCursor int

	// Summary step
	summaryArea   textarea.Model
	suggestInput  textinput.Model
	suggesting    bool
	suggestTarget string // "summary", "post", or "image"

	// Platform selection
	platformCursor int

	// Content review
	contentCursor  int
	editingContent bool
	editFocus      int // 0 = post text, 1 = image URL
	contentArea    textarea.Model
	imageInput     textinput.Model

	// History
	historyEntries []types.HistoryEntry
	historyCursor  int

	spinner spinner.Model
	width   int
}

// NewModel wires the TUI to the session store, workflow controller, trend
// suggester, and history API.
func NewModel(ctx context.Context, store *session.Store, flow *workflow.Controller, suggester *trends.Suggester, history HistoryAPI, log zerolog.Logger) Model {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 200
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 200

	prefs := textinput.New()
	prefs.Placeholder = "Interests, comma separated (optional)"
	prefs.CharLimit = 300
	prefs.Width = 60

	topic := textinput.New()
	topic.Placeholder = "Enter a topic, or pick a trend below"
	topic.CharLimit = 300
	topic.Width = 60

	suggest := textinput.New()
	suggest.Placeholder = "Optional suggestions to steer the regeneration"
	suggest.CharLimit = 500
	suggest.Width = 60

	image := textinput.New()
	image.Placeholder = "Image URL"
	image.CharLimit = 500
	image.Width = 60

	summary := textarea.New()
	summary.SetWidth(76)
	summary.SetHeight(10)

	content := textarea.New()
	content.SetWidth(76)
	content.SetHeight(8)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(colorPrimary))

	return Model{
		ctx:          ctx,
		store:        store,
		flow:         flow,
		suggester:    suggester,
		history:      history,
		log:          log,
		screen:       ScreenAuth,
		authInputs:   []textinput.Model{name, email, password, prefs},
		authFocus:    fieldEmail,
		topicInput:   topic,
		summaryArea:  summary,
		suggestInput: suggest,
		contentArea:  content,
		imageInput:   image,
		spinner:      sp,
		width:        80,
	}
}

// Init implements tea.Model. It tries the persisted token before showing
// the login form.
func (m Model) Init() tea.Cmd {
	return tea.Batch(restoreSession(m.ctx, m.store), m.spinner.Tick)
}

// currentPlatform returns the platform under the review cursor.
func (m Model) currentPlatform(snap workflow.Snapshot) (types.Platform, bool) {
	ordered := orderedPlatforms(snap)
	if len(ordered) == 0 {
		return "", false
	}
	idx := m.contentCursor
	if idx < 0 || idx >= len(ordered) {
		idx = 0
	}
	return ordered[idx], true
}

// orderedPlatforms lists the platforms with generated content in display
// order, so cursor movement is stable across renders.
func orderedPlatforms(snap workflow.Snapshot) []types.Platform {
	out := make([]types.Platform, 0, len(snap.Content))
	for _, p := range types.AllPlatforms {
		if _, ok := snap.Content[p]; ok {
			out = append(out, p)
		}
	}
	return out
}
