package tui

import (
	"fmt"
	"strings"

	"postpilot/types"
	"postpilot/workflow"
)

// stepLabels drives the progress header, in flow order.
var stepLabels = []struct {
	step  workflow.Step
	label string
}{
	{workflow.StepChooseTopic, "Topic"},
	{workflow.StepSummaryGenerated, "Summary"},
	{workflow.StepSummaryApproved, "Approve"},
	{workflow.StepPlatformsSelected, "Platforms"},
	{workflow.StepContentGenerated, "Content"},
	{workflow.StepPublished, "Publish"},
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(TextAppTitle))
	b.WriteString("\n\n")

	switch m.screen {
	case ScreenAuth:
		m.viewAuth(&b)
	case ScreenWorkflow:
		m.viewWorkflow(&b)
	case ScreenHistory:
		m.viewHistory(&b)
	}

	if m.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(ErrorStyle.Render("✖ " + m.errMsg))
		b.WriteString("\n")
	}

	if m.busy {
		b.WriteString("\n")
		b.WriteString(m.spinner.View())
		b.WriteString(StatusStyle.Render(" working..."))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewAuth(b *strings.Builder) {
	if m.registering {
		b.WriteString(HighlightStyle.Render("Create account"))
		b.WriteString("\n\n")
		b.WriteString(m.authInputs[fieldName].View())
		b.WriteString("\n")
	} else {
		b.WriteString(HighlightStyle.Render("Log in"))
		b.WriteString("\n\n")
	}
	b.WriteString(m.authInputs[fieldEmail].View())
	b.WriteString("\n")
	b.WriteString(m.authInputs[fieldPassword].View())
	b.WriteString("\n")
	if m.registering {
		b.WriteString(m.authInputs[fieldPrefs].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(TextFooterAuth))
	b.WriteString("\n")
}

func (m Model) viewWorkflow(b *strings.Builder) {
	snap := m.flow.Snapshot()

	m.viewProgress(b, snap.Step)
	b.WriteString("\n")

	switch snap.Step {
	case workflow.StepChooseTopic:
		m.viewTopic(b)
	case workflow.StepSummaryGenerated:
		m.viewSummary(b, snap)
	case workflow.StepSummaryApproved, workflow.StepPlatformsSelected:
		m.viewPlatforms(b, snap)
	case workflow.StepContentGenerated:
		m.viewContent(b, snap)
	case workflow.StepPublished:
		m.viewPublished(b, snap)
	}
}

func (m Model) viewProgress(b *strings.Builder, current workflow.Step) {
	reached := false
	parts := make([]string, 0, len(stepLabels))
	for _, s := range stepLabels {
		switch {
		case s.step == current:
			reached = true
			parts = append(parts, StepActiveStyle.Render("● "+s.label))
		case !reached:
			parts = append(parts, StepDoneStyle.Render("✓ "+s.label))
		default:
			parts = append(parts, StepPendingStyle.Render("○ "+s.label))
		}
	}
	b.WriteString(strings.Join(parts, InfoStyle.Render(" ─ ")))
	b.WriteString("\n")
}

func (m Model) viewTopic(b *strings.Builder) {
	b.WriteString(HighlightStyle.Render("What is your content about?"))
	b.WriteString("\n\n")
	b.WriteString(m.topicInput.View())
	b.WriteString("\n\n")

	if len(m.topics) > 0 {
		b.WriteString(InfoStyle.Render("🔥 Trending now:"))
		b.WriteString("\n")
		for i, t := range m.topics {
			line := fmt.Sprintf("%s  %s", t.Topic, InfoStyle.Render("("+t.Category+")"))
			if i == m.topicCursor {
				b.WriteString(CursorStyle.Render("▸ " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render(TextFooterTopic))
	b.WriteString("\n")
}

func (m Model) viewSummary(b *strings.Builder, snap workflow.Snapshot) {
	b.WriteString(HighlightStyle.Render("Review the generated summary"))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render("Topic: " + snap.Topic))
	b.WriteString("\n\n")
	b.WriteString(m.summaryArea.View())
	b.WriteString("\n\n")

	if m.suggesting {
		b.WriteString(InfoStyle.Render("Steer the regeneration:"))
		b.WriteString("\n")
		b.WriteString(m.suggestInput.View())
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(TextFooterSuggest))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterSummary))
	}
	b.WriteString("\n")
}

func (m Model) viewPlatforms(b *strings.Builder, snap workflow.Snapshot) {
	b.WriteString(HighlightStyle.Render("Where should this be published?"))
	b.WriteString("\n\n")

	selected := make(map[types.Platform]bool, len(snap.Selected))
	for _, p := range snap.Selected {
		selected[p] = true
	}

	for i, p := range types.AllPlatforms {
		mark := "[ ]"
		if selected[p] {
			mark = StatusStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", mark, p.DisplayName())
		if i == m.platformCursor {
			b.WriteString(CursorStyle.Render("▸ ") + line)
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(TextFooterPlatforms))
	b.WriteString("\n")
}

func (m Model) viewContent(b *strings.Builder, snap workflow.Snapshot) {
	ordered := orderedPlatforms(snap)
	platform, ok := m.currentPlatform(snap)
	if !ok {
		b.WriteString(InfoStyle.Render("No content generated yet."))
		b.WriteString("\n")
		return
	}

	// Platform tabs with approval markers.
	tabs := make([]string, 0, len(ordered))
	for _, p := range ordered {
		label := p.DisplayName()
		if snap.Content[p].Approved {
			label += " ✓"
		}
		if p == platform {
			tabs = append(tabs, HighlightStyle.Render(label))
		} else {
			tabs = append(tabs, InfoStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, "  "))
	b.WriteString("\n\n")

	entry := snap.Content[platform]

	if m.editingContent {
		b.WriteString(m.contentArea.View())
		b.WriteString("\n")
		b.WriteString(m.imageInput.View())
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render(TextFooterEditing))
		b.WriteString("\n")
		return
	}

	b.WriteString(BoxStyle.Render(entry.PostText))
	b.WriteString("\n")
	if entry.ImageURL != "" {
		b.WriteString(InfoStyle.Render("🖼  " + entry.ImageURL))
		b.WriteString("\n")
	}
	if entry.Approved {
		b.WriteString(StatusStyle.Render("Approved, ready to publish"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.suggesting {
		label := "Steer the text regeneration:"
		if m.suggestTarget == "image" {
			label = "Steer the image regeneration:"
		}
		b.WriteString(InfoStyle.Render(label))
		b.WriteString("\n")
		b.WriteString(m.suggestInput.View())
		b.WriteString("\n")
		b.WriteString(InfoStyle.Render(TextFooterSuggest))
	} else {
		b.WriteString(InfoStyle.Render(TextFooterContent))
	}
	b.WriteString("\n")
}

func (m Model) viewPublished(b *strings.Builder, snap workflow.Snapshot) {
	b.WriteString(HighlightStyle.Render("Publish results"))
	b.WriteString("\n\n")

	var result strings.Builder
	for _, p := range types.AllPlatforms {
		r, ok := snap.PublishResults[p]
		if !ok {
			continue
		}
		if r.Success {
			result.WriteString(StatusStyle.Render(fmt.Sprintf("✓ %-12s %s", p.DisplayName(), r.Message)))
		} else {
			result.WriteString(ErrorStyle.Render(fmt.Sprintf("✖ %-12s %s", p.DisplayName(), r.Message)))
		}
		result.WriteString("\n")
	}
	b.WriteString(BoxStyle.Render(strings.TrimRight(result.String(), "\n")))
	b.WriteString("\n\n")
	b.WriteString(InfoStyle.Render("Taking you to your post history..."))
	b.WriteString("\n\n")
	b.WriteString(InfoStyle.Render(TextFooterPublished))
	b.WriteString("\n")
}

func (m Model) viewHistory(b *strings.Builder) {
	b.WriteString(HighlightStyle.Render("Post history"))
	b.WriteString("\n\n")

	if len(m.historyEntries) == 0 {
		b.WriteString(InfoStyle.Render("Nothing here yet. Press 'n' to create your first post."))
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render(TextFooterHistory))
		b.WriteString("\n")
		return
	}

	for i, entry := range m.historyEntries {
		published := 0
		for _, p := range entry.Platforms {
			if p.Published {
				published++
			}
		}

		line := fmt.Sprintf("%s  %s", entry.Summary.Topic,
			InfoStyle.Render(fmt.Sprintf("(%d platforms, %d published)", len(entry.Platforms), published)))
		if !entry.Summary.SummaryApproved {
			line += " " + StatusStyle.Render("draft")
		}

		if i == m.historyCursor {
			b.WriteString(CursorStyle.Render("▸ " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(TextFooterHistory))
	b.WriteString("\n")
}
