package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"postpilot/api"
	"postpilot/session"
	"postpilot/types"
	"postpilot/workflow"
)

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case SessionRestoredMsg:
		return m.handleSessionRestored(msg)
	case AuthDoneMsg:
		return m.handleAuthDone(msg)
	case TopicsLoadedMsg:
		return m.handleTopicsLoaded(msg)
	case SummaryGeneratedMsg:
		return m.handleSummaryGenerated(msg)
	case SummaryApprovedMsg:
		return m.handleSummaryApproved(msg)
	case SummaryRegeneratedMsg:
		return m.handleSummaryRegenerated(msg)
	case ContentGeneratedMsg:
		return m.handleContentGenerated(msg)
	case ContentApprovedMsg:
		return m.handleContentApproved(msg)
	case ContentRegeneratedMsg:
		return m.handleContentRegenerated(msg)
	case PublishDoneMsg:
		return m.handlePublishDone(msg)
	case RedirectMsg:
		// The user may have started a new workflow during the delay.
		if m.screen != ScreenWorkflow || m.flow.Step() != workflow.StepPublished {
			return m, nil
		}
		m.busy = true
		return m, loadHistory(m.ctx, m.history)
	case HistoryLoadedMsg:
		return m.handleHistoryLoaded(msg)
	case WorkflowResumedMsg:
		return m.handleWorkflowResumed(msg)
	}
	return m, nil
}

// handleFailure records a failed backend call. A 401 forces a logout and
// routes back to the auth screen no matter which step was active.
func (m Model) handleFailure(err error) (tea.Model, tea.Cmd) {
	m.busy = false
	m.errMsg = err.Error()

	if api.IsUnauthorized(err) {
		m.screen = ScreenAuth
		m.user = nil
		m.flow.Reset()
		m.suggesting = false
		m.editingContent = false
	}
	return m, nil
}

// handleKeyPress routes keyboard input by screen.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	// Exactly one request in flight per user action: swallow everything
	// else while waiting.
	if m.busy {
		return m, nil
	}

	switch m.screen {
	case ScreenAuth:
		return m.handleAuthKeys(msg)
	case ScreenWorkflow:
		return m.handleWorkflowKeys(msg)
	case ScreenHistory:
		return m.handleHistoryKeys(msg)
	}
	return m, nil
}

// --- auth screen ---

func (m Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+r":
		m.registering = !m.registering
		m.errMsg = ""
		if !m.registering && (m.authFocus == fieldName || m.authFocus == fieldPrefs) {
			m.authFocus = fieldEmail
		}
		return m.focusAuthField(m.authFocus), nil

	case "tab", "down":
		return m.cycleAuthFocus(1), nil
	case "shift+tab", "up":
		return m.cycleAuthFocus(-1), nil

	case "enter":
		name := m.authInputs[fieldName].Value()
		email := m.authInputs[fieldEmail].Value()
		password := m.authInputs[fieldPassword].Value()

		if email == "" || password == "" || (m.registering && name == "") {
			m.errMsg = "please fill in all fields"
			return m, nil
		}

		m.busy = true
		m.errMsg = ""
		if m.registering {
			prefs := splitPreferences(m.authInputs[fieldPrefs].Value())
			return m, register(m.ctx, m.store, name, email, password, prefs)
		}
		return m, login(m.ctx, m.store, email, password)
	}

	var cmd tea.Cmd
	m.authInputs[m.authFocus], cmd = m.authInputs[m.authFocus].Update(msg)
	return m, cmd
}

func (m Model) cycleAuthFocus(delta int) Model {
	first, last := fieldEmail, fieldPassword
	if m.registering {
		first, last = fieldName, fieldPrefs
	}

	next := m.authFocus + delta
	if next < first {
		next = last
	}
	if next > last {
		next = first
	}
	return m.focusAuthField(next)
}

// splitPreferences turns the comma-separated preferences field into a slice,
// dropping blanks.
func splitPreferences(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (m Model) focusAuthField(idx int) Model {
	m.authFocus = idx
	for i := range m.authInputs {
		if i == idx {
			m.authInputs[i].Focus()
		} else {
			m.authInputs[i].Blur()
		}
	}
	return m
}

// --- workflow screen ---

func (m Model) handleWorkflowKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+x" {
		return m.logout()
	}

	switch m.flow.Step() {
	case workflow.StepChooseTopic:
		return m.handleTopicKeys(msg)
	case workflow.StepSummaryGenerated:
		return m.handleSummaryKeys(msg)
	case workflow.StepSummaryApproved, workflow.StepPlatformsSelected:
		return m.handlePlatformKeys(msg)
	case workflow.StepContentGenerated:
		return m.handleContentKeys(msg)
	case workflow.StepPublished:
		return m.handlePublishedKeys(msg)
	}
	return m, nil
}

func (m Model) handleTopicKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.topicCursor > 0 {
			m.topicCursor--
		}
		return m, nil
	case "down":
		if m.topicCursor < len(m.topics)-1 {
			m.topicCursor++
		}
		return m, nil
	case "ctrl+t":
		if len(m.topics) > 0 {
			m.topicInput.SetValue(m.topics[m.topicCursor].Topic)
		}
		return m, nil
	case "ctrl+l":
		m.busy = true
		return m, loadTopics(m.ctx, m.suggester, m.preferences())
	case "ctrl+h":
		m.busy = true
		return m, loadHistory(m.ctx, m.history)
	case "enter":
		m.busy = true
		m.errMsg = ""
		return m, submitTopic(m.ctx, m.flow, m.topicInput.Value())
	}

	var cmd tea.Cmd
	m.topicInput, cmd = m.topicInput.Update(msg)
	return m, cmd
}

func (m Model) handleSummaryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.suggesting {
		switch msg.String() {
		case "enter":
			m.busy = true
			m.errMsg = ""
			return m, regenerateSummary(m.ctx, m.flow, m.suggestInput.Value())
		case "esc":
			m.suggesting = false
			return m, nil
		}
		var cmd tea.Cmd
		m.suggestInput, cmd = m.suggestInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+a":
		m.flow.EditSummary(m.summaryArea.Value())
		m.busy = true
		m.errMsg = ""
		return m, approveSummary(m.ctx, m.flow)
	case "ctrl+r":
		m.flow.EditSummary(m.summaryArea.Value())
		return m.openSuggestions("summary"), nil
	case "esc":
		m.flow.Back()
		m.errMsg = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.summaryArea, cmd = m.summaryArea.Update(msg)
	return m, cmd
}

func (m Model) openSuggestions(target string) Model {
	m.suggesting = true
	m.suggestTarget = target
	m.suggestInput.SetValue("")
	m.suggestInput.Focus()
	return m
}

func (m Model) handlePlatformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up":
		if m.platformCursor > 0 {
			m.platformCursor--
		}
	case "down":
		if m.platformCursor < len(types.AllPlatforms)-1 {
			m.platformCursor++
		}
	case " ":
		if err := m.flow.TogglePlatform(types.AllPlatforms[m.platformCursor]); err != nil {
			m.errMsg = err.Error()
		} else {
			m.errMsg = ""
		}
	case "enter":
		m.busy = true
		m.errMsg = ""
		return m, generateContent(m.ctx, m.flow)
	case "esc":
		m.flow.Back()
		m.errMsg = ""
	}
	return m, nil
}

func (m Model) handleContentKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	snap := m.flow.Snapshot()
	platform, ok := m.currentPlatform(snap)

	if m.editingContent {
		switch msg.String() {
		case "tab":
			m.editFocus = 1 - m.editFocus
			if m.editFocus == 0 {
				m.contentArea.Focus()
				m.imageInput.Blur()
			} else {
				m.contentArea.Blur()
				m.imageInput.Focus()
			}
			return m, nil
		case "esc":
			m.editingContent = false
			if ok {
				if err := m.flow.EditContent(platform, m.contentArea.Value(), m.imageInput.Value()); err != nil {
					m.errMsg = err.Error()
				}
			}
			return m, nil
		}

		var cmd tea.Cmd
		if m.editFocus == 0 {
			m.contentArea, cmd = m.contentArea.Update(msg)
		} else {
			m.imageInput, cmd = m.imageInput.Update(msg)
		}
		return m, cmd
	}

	if m.suggesting {
		switch msg.String() {
		case "enter":
			if !ok {
				m.suggesting = false
				return m, nil
			}
			m.busy = true
			m.errMsg = ""
			if m.suggestTarget == "image" {
				return m, regenerateImage(m.ctx, m.flow, platform, m.suggestInput.Value())
			}
			return m, regeneratePostText(m.ctx, m.flow, platform, m.suggestInput.Value())
		case "esc":
			m.suggesting = false
			return m, nil
		}
		var cmd tea.Cmd
		m.suggestInput, cmd = m.suggestInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "left", "shift+tab":
		if m.contentCursor > 0 {
			m.contentCursor--
		}
	case "right", "tab":
		if m.contentCursor < len(orderedPlatforms(snap))-1 {
			m.contentCursor++
		}
	case "e":
		if ok {
			entry := snap.Content[platform]
			m.editingContent = true
			m.editFocus = 0
			m.contentArea.SetValue(entry.PostText)
			m.contentArea.Focus()
			m.imageInput.SetValue(entry.ImageURL)
			m.imageInput.Blur()
		}
	case "a":
		if ok {
			m.busy = true
			m.errMsg = ""
			return m, approveContent(m.ctx, m.flow, platform)
		}
	case "r":
		if ok {
			return m.openSuggestions("post"), nil
		}
	case "i":
		if ok {
			return m.openSuggestions("image"), nil
		}
	case "p":
		m.busy = true
		m.errMsg = ""
		return m, publishApproved(m.ctx, m.flow)
	case "esc":
		m.flow.Back()
		m.errMsg = ""
	}
	return m, nil
}

func (m Model) handlePublishedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n":
		return m.startNewWorkflow()
	case "ctrl+h":
		m.busy = true
		return m, loadHistory(m.ctx, m.history)
	}
	return m, nil
}

// --- history screen ---

func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+x":
		return m.logout()
	case "up":
		if m.historyCursor > 0 {
			m.historyCursor--
		}
	case "down":
		if m.historyCursor < len(m.historyEntries)-1 {
			m.historyCursor++
		}
	case "enter":
		if len(m.historyEntries) > 0 {
			m.busy = true
			m.errMsg = ""
			return m, resumeWorkflow(m.ctx, m.flow, m.historyEntries[m.historyCursor].Summary.ID)
		}
	case "n":
		return m.startNewWorkflow()
	}
	return m, nil
}

func (m Model) startNewWorkflow() (tea.Model, tea.Cmd) {
	m.flow.Reset()
	m.screen = ScreenWorkflow
	m.errMsg = ""
	m.topicInput.SetValue("")
	m.topicInput.Focus()
	m.topicCursor = 0
	m.platformCursor = 0
	m.contentCursor = 0
	m.suggesting = false
	m.editingContent = false
	m.busy = true
	return m, loadTopics(m.ctx, m.suggester, m.preferences())
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	m.store.Logout()
	m.flow.Reset()
	m.screen = ScreenAuth
	m.user = nil
	m.errMsg = ""
	m.registering = false
	for i := range m.authInputs {
		m.authInputs[i].SetValue("")
	}
	m = m.focusAuthField(fieldEmail)
	return m, nil
}

func (m Model) preferences() []string {
	if m.user == nil {
		return nil
	}
	return m.user.Preferences
}

// --- message handlers ---

func (m Model) handleSessionRestored(msg SessionRestoredMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		// No stored token just means a normal login; anything else is
		// worth surfacing on the form.
		if !errors.Is(msg.Err, session.ErrNotAuthenticated) && !api.IsUnauthorized(msg.Err) {
			m.errMsg = msg.Err.Error()
		}
		return m, nil
	}
	m.user = msg.User
	return m.startNewWorkflow()
}

func (m Model) handleAuthDone(msg AuthDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.busy = false
		m.errMsg = msg.Err.Error()
		return m, nil
	}
	m.user = msg.User
	m.authInputs[fieldPassword].SetValue("")
	return m.startNewWorkflow()
}

func (m Model) handleTopicsLoaded(msg TopicsLoadedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.topics = msg.Topics
	m.topicCursor = 0
	m.topicInput.Focus()
	return m, nil
}

func (m Model) handleSummaryGenerated(msg SummaryGeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.summaryArea.SetValue(m.flow.Snapshot().SummaryText)
	m.summaryArea.Focus()
	return m, nil
}

func (m Model) handleSummaryApproved(msg SummaryApprovedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.summaryArea.Blur()
	m.platformCursor = 0
	return m, nil
}

func (m Model) handleSummaryRegenerated(msg SummaryRegeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.suggesting = false
	m.summaryArea.SetValue(m.flow.Snapshot().SummaryText)
	m.summaryArea.Focus()
	return m, nil
}

func (m Model) handleContentGenerated(msg ContentGeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.contentCursor = 0
	return m, nil
}

func (m Model) handleContentApproved(msg ContentApprovedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	return m, nil
}

func (m Model) handleContentRegenerated(msg ContentRegeneratedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.suggesting = false
	return m, nil
}

func (m Model) handlePublishDone(msg PublishDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	return m, redirectAfterPublish()
}

func (m Model) handleHistoryLoaded(msg HistoryLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.historyEntries = msg.Entries
	m.historyCursor = 0
	m.screen = ScreenHistory
	return m, nil
}

func (m Model) handleWorkflowResumed(msg WorkflowResumedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		return m.handleFailure(msg.Err)
	}
	m.busy = false
	m.screen = ScreenWorkflow
	m.errMsg = ""
	snap := m.flow.Snapshot()
	m.summaryArea.SetValue(snap.SummaryText)
	if snap.Step == workflow.StepSummaryGenerated {
		m.summaryArea.Focus()
	}
	m.contentCursor = 0
	m.platformCursor = 0
	return m, nil
}
