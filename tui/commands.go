package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"postpilot/session"
	"postpilot/trends"
	"postpilot/types"
	"postpilot/workflow"
)

// redirectDelay is the cosmetic pause on the publish results before the
// history screen takes over.
const redirectDelay = 2 * time.Second

// restoreSession tries the persisted token against /auth/me.
func restoreSession(ctx context.Context, store *session.Store) tea.Cmd {
	return func() tea.Msg {
		user, err := store.Restore(ctx)
		return SessionRestoredMsg{User: user, Err: err}
	}
}

// login authenticates with the backend.
func login(ctx context.Context, store *session.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := store.Login(ctx, email, password)
		return AuthDoneMsg{User: user, Err: err}
	}
}

// register signs up and auto-logs-in.
func register(ctx context.Context, store *session.Store, name, email, password string, preferences []string) tea.Cmd {
	return func() tea.Msg {
		user, err := store.Register(ctx, name, email, password, preferences)
		return AuthDoneMsg{User: user, Err: err}
	}
}

// loadTopics fetches trend suggestions for the topic picker.
func loadTopics(ctx context.Context, suggester *trends.Suggester, preferences []string) tea.Cmd {
	return func() tea.Msg {
		topics, err := suggester.Suggestions(ctx, preferences)
		return TopicsLoadedMsg{Topics: topics, Err: err}
	}
}

// submitTopic drives the topic → summary transition.
func submitTopic(ctx context.Context, flow *workflow.Controller, topic string) tea.Cmd {
	return func() tea.Msg {
		return SummaryGeneratedMsg{Err: flow.SubmitTopic(ctx, topic)}
	}
}

// approveSummary commits the edited summary text.
func approveSummary(ctx context.Context, flow *workflow.Controller) tea.Cmd {
	return func() tea.Msg {
		return SummaryApprovedMsg{Err: flow.ApproveSummary(ctx)}
	}
}

// regenerateSummary replaces the summary draft in place.
func regenerateSummary(ctx context.Context, flow *workflow.Controller, suggestions string) tea.Cmd {
	return func() tea.Msg {
		return SummaryRegeneratedMsg{Err: flow.RegenerateSummary(ctx, suggestions)}
	}
}

// generateContent produces drafts for the selected platforms.
func generateContent(ctx context.Context, flow *workflow.Controller) tea.Cmd {
	return func() tea.Msg {
		return ContentGeneratedMsg{Err: flow.GenerateContent(ctx)}
	}
}

// approveContent commits one platform draft.
func approveContent(ctx context.Context, flow *workflow.Controller, p types.Platform) tea.Cmd {
	return func() tea.Msg {
		return ContentApprovedMsg{Platform: p, Err: flow.ApproveContent(ctx, p)}
	}
}

// regeneratePostText replaces one platform draft's text.
func regeneratePostText(ctx context.Context, flow *workflow.Controller, p types.Platform, suggestions string) tea.Cmd {
	return func() tea.Msg {
		return ContentRegeneratedMsg{Platform: p, Err: flow.RegeneratePostText(ctx, p, suggestions)}
	}
}

// regenerateImage replaces one platform draft's image.
func regenerateImage(ctx context.Context, flow *workflow.Controller, p types.Platform, suggestions string) tea.Cmd {
	return func() tea.Msg {
		return ContentRegeneratedMsg{Platform: p, Err: flow.RegenerateImage(ctx, p, suggestions)}
	}
}

// publishApproved fans out the per-platform publishes.
func publishApproved(ctx context.Context, flow *workflow.Controller) tea.Cmd {
	return func() tea.Msg {
		return PublishDoneMsg{Err: flow.PublishApproved(ctx)}
	}
}

// loadHistory fetches the post history.
func loadHistory(ctx context.Context, backend HistoryAPI) tea.Cmd {
	return func() tea.Msg {
		entries, err := backend.History(ctx)
		return HistoryLoadedMsg{Entries: entries, Err: err}
	}
}

// resumeWorkflow rebuilds the workflow from a stored summary.
func resumeWorkflow(ctx context.Context, flow *workflow.Controller, summaryID string) tea.Cmd {
	return func() tea.Msg {
		return WorkflowResumedMsg{Err: flow.Resume(ctx, summaryID)}
	}
}

// redirectAfterPublish waits the cosmetic delay before jumping to history.
func redirectAfterPublish() tea.Cmd {
	return tea.Tick(redirectDelay, func(time.Time) tea.Msg {
		return RedirectMsg{}
	})
}
