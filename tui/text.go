package tui

// UI Text Constants
const (
	TextAppTitle = "✍️  PostPilot · AI Content Automation"

	// Footers per screen/step
	TextFooterAuth      = "tab: next field | enter: submit | ctrl+r: toggle login/register | ctrl+c: quit"
	TextFooterTopic     = "enter: generate summary | ↑/↓: browse trends | ctrl+t: use trend | ctrl+l: reload trends | ctrl+h: history | ctrl+c: quit"
	TextFooterSummary   = "ctrl+a: approve | ctrl+r: regenerate with suggestions | esc: back | ctrl+c: quit"
	TextFooterPlatforms = "space: toggle | ↑/↓: move | enter: generate content | esc: back | ctrl+c: quit"
	TextFooterContent   = "←/→: platform | e: edit | a: approve | r: regen text | i: regen image | p: publish | esc: back | ctrl+c: quit"
	TextFooterEditing   = "tab: switch text/image | esc: done editing"
	TextFooterSuggest   = "enter: regenerate | esc: cancel"
	TextFooterPublished = "n: new post | ctrl+h: history | ctrl+c: quit"
	TextFooterHistory   = "↑/↓: move | enter: resume draft | n: new post | ctrl+x: logout | ctrl+c: quit"
)
