package tui

import (
	"postpilot/types"
)

// Messages for the tea program. Every backend-touching command resolves to
// exactly one of these, carrying the error when the call failed.

// SessionRestoredMsg is sent after trying to reuse a persisted token.
type SessionRestoredMsg struct {
	User *types.User
	Err  error
}

// AuthDoneMsg is sent when login or registration resolves.
type AuthDoneMsg struct {
	User *types.User
	Err  error
}

// TopicsLoadedMsg is sent when trend suggestions resolve.
type TopicsLoadedMsg struct {
	Topics []types.TrendingTopic
	Err    error
}

// SummaryGeneratedMsg is sent when generate-summary resolves.
type SummaryGeneratedMsg struct {
	Err error
}

// SummaryApprovedMsg is sent when approve-summary resolves.
type SummaryApprovedMsg struct {
	Err error
}

// SummaryRegeneratedMsg is sent when a summary regeneration resolves.
type SummaryRegeneratedMsg struct {
	Err error
}

// ContentGeneratedMsg is sent when generate-content resolves.
type ContentGeneratedMsg struct {
	Err error
}

// ContentApprovedMsg is sent when one platform's approval resolves.
type ContentApprovedMsg struct {
	Platform types.Platform
	Err      error
}

// ContentRegeneratedMsg is sent when a platform text/image regeneration
// resolves.
type ContentRegeneratedMsg struct {
	Platform types.Platform
	Err      error
}

// PublishDoneMsg is sent once every attempted platform publish has resolved.
type PublishDoneMsg struct {
	Err error
}

// HistoryLoadedMsg is sent when the post history resolves.
type HistoryLoadedMsg struct {
	Entries []types.HistoryEntry
	Err     error
}

// WorkflowResumedMsg is sent when resuming a stored workflow resolves.
type WorkflowResumedMsg struct {
	Err error
}

// RedirectMsg fires after the cosmetic post-publish delay.
type RedirectMsg struct{}
