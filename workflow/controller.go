// Package workflow owns the content creation state machine: topic →
// summary → approval → platform selection → platform content → publish.
// The controller sequences backend calls and keeps every artifact the
// flow produces; the TUI only renders snapshots and forwards intents.
package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"postpilot/api"
	"postpilot/types"
)

// Step identifies where the user is in the creation flow.
type Step string

const (
	StepChooseTopic       Step = "choose_topic"
	StepSummaryGenerated  Step = "summary_generated"
	StepSummaryApproved   Step = "summary_approved"
	StepPlatformsSelected Step = "platforms_selected"
	StepContentGenerated  Step = "content_generated"
	StepPublished         Step = "published"
)

// stepOrder drives Back(). Forward transitions are explicit per operation.
var stepOrder = []Step{
	StepChooseTopic,
	StepSummaryGenerated,
	StepSummaryApproved,
	StepPlatformsSelected,
	StepContentGenerated,
	StepPublished,
}

// ValidationError is a client-side rejection. It never reaches the network.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Backend is the slice of the API surface the controller drives.
type Backend interface {
	GenerateSummary(ctx context.Context, topic, description string) (*api.Summary, error)
	ApproveSummary(ctx context.Context, summaryID, summaryText string) error
	GenerateContent(ctx context.Context, summaryID string, platforms []types.Platform) ([]api.GeneratedPlatform, error)
	ApproveContent(ctx context.Context, platformID, postText, imageURL string) error
	Publish(ctx context.Context, platformID string) (*api.PublishOutcome, error)
	RegenerateText(ctx context.Context, req api.RegenerateTextRequest) (string, error)
	RegenerateImage(ctx context.Context, summaryID, platformID, suggestions string) (string, error)
	SummaryWithPlatforms(ctx context.Context, summaryID string) (*types.HistoryEntry, error)
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	Step             Step
	Topic            string
	SummaryID        string
	SummaryText      string
	GeneratedSummary string
	SummaryApproved  bool
	Selected         []types.Platform
	Content          map[types.Platform]types.PlatformContent
	PublishResults   map[types.Platform]types.PublishResult
}

// Controller is the workflow state machine. All exported methods are safe
// for concurrent use; command goroutines call the mutating ones while the
// render loop reads snapshots.
type Controller struct {
	mu      sync.RWMutex
	backend Backend
	log     zerolog.Logger

	step             Step
	topic            string
	summaryID        string
	summaryText      string
	generatedSummary string
	summaryApproved  bool
	selected         map[types.Platform]bool
	content          map[types.Platform]types.PlatformContent
	publishResults   map[types.Platform]types.PublishResult
}

// NewController creates a fresh workflow at the topic step.
func NewController(backend Backend, log zerolog.Logger) *Controller {
	c := &Controller{backend: backend, log: log}
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.step = StepChooseTopic
	c.topic = ""
	c.summaryID = ""
	c.summaryText = ""
	c.generatedSummary = ""
	c.summaryApproved = false
	c.selected = make(map[types.Platform]bool)
	c.content = make(map[types.Platform]types.PlatformContent)
	c.publishResults = make(map[types.Platform]types.PublishResult)
}

// Reset discards the workflow and starts over at topic selection.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Step returns the current step.
func (c *Controller) Step() Step {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.step
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		Step:             c.step,
		Topic:            c.topic,
		SummaryID:        c.summaryID,
		SummaryText:      c.summaryText,
		GeneratedSummary: c.generatedSummary,
		SummaryApproved:  c.summaryApproved,
		Selected:         c.selectedLocked(),
		Content:          make(map[types.Platform]types.PlatformContent, len(c.content)),
		PublishResults:   make(map[types.Platform]types.PublishResult, len(c.publishResults)),
	}
	for p, entry := range c.content {
		snap.Content[p] = entry
	}
	for p, r := range c.publishResults {
		snap.PublishResults[p] = r
	}
	return snap
}

// selectedLocked returns the selected platforms in display order.
func (c *Controller) selectedLocked() []types.Platform {
	out := make([]types.Platform, 0, len(c.selected))
	for _, p := range types.AllPlatforms {
		if c.selected[p] {
			out = append(out, p)
		}
	}
	return out
}

// Back moves one step backwards, preserving all artifacts. At the topic
// step it is a no-op.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, s := range stepOrder {
		if s == c.step && i > 0 {
			c.step = stepOrder[i-1]
			return
		}
	}
}

// SubmitTopic generates a summary for the topic and advances to review.
// A blank topic is rejected before any request is made.
func (c *Controller) SubmitTopic(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return validationErrorf("please enter a topic")
	}

	c.mu.RLock()
	step := c.step
	c.mu.RUnlock()
	if step != StepChooseTopic {
		return validationErrorf("a summary was already generated for this workflow")
	}

	summary, err := c.backend.GenerateSummary(ctx, topic, "")
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic = topic
	c.summaryID = summary.SummaryID
	c.summaryText = summary.SummaryText
	c.generatedSummary = summary.SummaryText
	c.summaryApproved = false
	c.step = StepSummaryGenerated

	c.log.Info().Str("summary_id", summary.SummaryID).Str("topic", topic).Msg("summary generated")
	return nil
}

// EditSummary replaces the draft summary text locally. The backend sees the
// edit only when the summary is approved.
func (c *Controller) EditSummary(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaryText = text
}

// ApproveSummary commits the current (possibly edited) summary text.
func (c *Controller) ApproveSummary(ctx context.Context) error {
	c.mu.RLock()
	step, summaryID, text := c.step, c.summaryID, c.summaryText
	c.mu.RUnlock()

	if step != StepSummaryGenerated {
		return validationErrorf("no summary to approve yet")
	}
	if strings.TrimSpace(text) == "" {
		return validationErrorf("please enter a summary")
	}

	if err := c.backend.ApproveSummary(ctx, summaryID, text); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaryApproved = true
	c.step = StepSummaryApproved

	c.log.Info().Str("summary_id", summaryID).Msg("summary approved")
	return nil
}

// RegenerateSummary replaces the draft summary in place, optionally steered
// by free-text suggestions. The step does not change.
func (c *Controller) RegenerateSummary(ctx context.Context, suggestions string) error {
	c.mu.RLock()
	step, summaryID := c.step, c.summaryID
	c.mu.RUnlock()

	if step != StepSummaryGenerated {
		return validationErrorf("no summary to regenerate yet")
	}

	text, err := c.backend.RegenerateText(ctx, api.RegenerateTextRequest{
		SummaryID:   summaryID,
		ContentType: "summary",
		Suggestions: suggestions,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaryText = text
	c.generatedSummary = text
	return nil
}

// TogglePlatform flips a platform's selection. Selection is only meaningful
// between summary approval and content generation.
func (c *Controller) TogglePlatform(p types.Platform) error {
	if _, err := types.ParsePlatform(string(p)); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepSummaryApproved && c.step != StepPlatformsSelected {
		return validationErrorf("platforms are chosen after the summary is approved")
	}

	if c.selected[p] {
		delete(c.selected, p)
	} else {
		c.selected[p] = true
	}

	if len(c.selected) > 0 {
		c.step = StepPlatformsSelected
	} else {
		c.step = StepSummaryApproved
	}
	return nil
}

// GenerateContent produces platform drafts for every selected platform.
// Requires at least one selection; nothing is sent otherwise.
func (c *Controller) GenerateContent(ctx context.Context) error {
	c.mu.RLock()
	step, summaryID := c.step, c.summaryID
	platforms := c.selectedLocked()
	c.mu.RUnlock()

	if step != StepPlatformsSelected || len(platforms) == 0 {
		return validationErrorf("please select at least one platform")
	}

	generated, err := c.backend.GenerateContent(ctx, summaryID, platforms)
	if err != nil {
		return err
	}

	content := make(map[types.Platform]types.PlatformContent, len(generated))
	for _, g := range generated {
		p, err := types.ParsePlatform(g.PlatformName)
		if err != nil {
			return fmt.Errorf("backend returned %w", err)
		}
		content[p] = types.PlatformContent{
			PlatformID: g.PlatformID,
			Platform:   p,
			PostText:   g.PostText,
			ImageURL:   g.ImageURL,
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = content
	c.publishResults = make(map[types.Platform]types.PublishResult)
	c.step = StepContentGenerated

	c.log.Info().Str("summary_id", summaryID).Int("platforms", len(content)).Msg("platform content generated")
	return nil
}

// EditContent replaces a platform draft's text and image locally. Any prior
// approval is withdrawn: approval always covers exactly what was sent.
func (c *Controller) EditContent(p types.Platform, postText, imageURL string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.content[p]
	if !ok {
		return validationErrorf("no generated content for %s", p.DisplayName())
	}
	entry.PostText = postText
	entry.ImageURL = imageURL
	entry.Approved = false
	c.content[p] = entry
	return nil
}

// ApproveContent commits one platform draft exactly as it stands, edits
// included. Other platforms are unaffected by a failure here.
func (c *Controller) ApproveContent(ctx context.Context, p types.Platform) error {
	c.mu.RLock()
	step := c.step
	entry, ok := c.content[p]
	c.mu.RUnlock()

	if step != StepContentGenerated {
		return validationErrorf("no generated content to approve yet")
	}
	if !ok {
		return validationErrorf("no generated content for %s", p.DisplayName())
	}

	if err := c.backend.ApproveContent(ctx, entry.PlatformID, entry.PostText, entry.ImageURL); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-read in case an edit landed while the call was in flight.
	current := c.content[p]
	current.Approved = current.PostText == entry.PostText && current.ImageURL == entry.ImageURL
	c.content[p] = current

	c.log.Info().Str("platform", string(p)).Msg("platform content approved")
	return nil
}

// RegeneratePostText replaces one platform draft's text in place. The entry
// drops back to unapproved.
func (c *Controller) RegeneratePostText(ctx context.Context, p types.Platform, suggestions string) error {
	c.mu.RLock()
	step, summaryID := c.step, c.summaryID
	entry, ok := c.content[p]
	c.mu.RUnlock()

	if step != StepContentGenerated || !ok {
		return validationErrorf("no generated content for %s", p.DisplayName())
	}

	text, err := c.backend.RegenerateText(ctx, api.RegenerateTextRequest{
		SummaryID:   summaryID,
		PlatformID:  entry.PlatformID,
		ContentType: "post",
		Suggestions: suggestions,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.content[p]
	current.PostText = text
	current.Approved = false
	c.content[p] = current
	return nil
}

// RegenerateImage replaces one platform draft's image in place. The entry
// drops back to unapproved.
func (c *Controller) RegenerateImage(ctx context.Context, p types.Platform, suggestions string) error {
	c.mu.RLock()
	step, summaryID := c.step, c.summaryID
	entry, ok := c.content[p]
	c.mu.RUnlock()

	if step != StepContentGenerated || !ok {
		return validationErrorf("no generated content for %s", p.DisplayName())
	}

	imageURL, err := c.backend.RegenerateImage(ctx, summaryID, entry.PlatformID, suggestions)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	current := c.content[p]
	current.ImageURL = imageURL
	current.Approved = false
	c.content[p] = current
	return nil
}

// PublishApproved pushes every approved platform live. Publishes are
// independent: one platform failing is recorded in its result and never
// blocks or rolls back the others. The step advances to Published once
// every attempted platform has resolved.
func (c *Controller) PublishApproved(ctx context.Context) error {
	c.mu.RLock()
	step := c.step
	approved := make(map[types.Platform]types.PlatformContent)
	for p, entry := range c.content {
		if entry.Approved {
			approved[p] = entry
		}
	}
	c.mu.RUnlock()

	if step != StepContentGenerated {
		return validationErrorf("no generated content to publish yet")
	}
	if len(approved) == 0 {
		return validationErrorf("approve at least one platform before publishing")
	}

	var (
		resultsMu sync.Mutex
		results   = make(map[types.Platform]types.PublishResult, len(approved))
	)

	g, ctx := errgroup.WithContext(ctx)
	for p, entry := range approved {
		p, entry := p, entry
		g.Go(func() error {
			result := c.publishOne(ctx, entry)

			resultsMu.Lock()
			results[p] = result
			resultsMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.publishResults = results
	c.step = StepPublished

	c.log.Info().Int("platforms", len(results)).Msg("publish fan-out resolved")
	return nil
}

func (c *Controller) publishOne(ctx context.Context, entry types.PlatformContent) types.PublishResult {
	outcome, err := c.backend.Publish(ctx, entry.PlatformID)
	if err != nil {
		c.log.Warn().Err(err).Str("platform", string(entry.Platform)).Msg("publish failed")
		return types.PublishResult{Success: false, Message: err.Error()}
	}

	result := types.PublishResult{Success: outcome.Published(), Message: outcome.Message}
	if !result.Success && result.Message == "" {
		result.Message = "publish failed"
	}
	return result
}

// Resume rebuilds a workflow from a persisted summary, landing on the
// furthest step the stored artifacts support.
func (c *Controller) Resume(ctx context.Context, summaryID string) error {
	if strings.TrimSpace(summaryID) == "" {
		return validationErrorf("nothing to resume")
	}

	entry, err := c.backend.SummaryWithPlatforms(ctx, summaryID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()

	c.topic = entry.Summary.Topic
	c.summaryID = entry.Summary.ID
	c.summaryText = entry.Summary.SummaryText
	c.generatedSummary = entry.Summary.SummaryText
	c.summaryApproved = entry.Summary.SummaryApproved

	switch {
	case len(entry.Platforms) > 0:
		for _, rec := range entry.Platforms {
			p, err := types.ParsePlatform(rec.PlatformName)
			if err != nil {
				return fmt.Errorf("stored workflow contains %w", err)
			}
			c.selected[p] = true
			c.content[p] = types.PlatformContent{
				PlatformID: rec.ID,
				Platform:   p,
				PostText:   rec.PostText,
				ImageURL:   rec.ImageURL,
				Approved:   rec.Approved,
			}
		}
		c.step = StepContentGenerated
	case entry.Summary.SummaryApproved:
		c.step = StepSummaryApproved
	default:
		c.step = StepSummaryGenerated
	}

	c.log.Info().Str("summary_id", summaryID).Str("step", string(c.step)).Msg("workflow resumed")
	return nil
}
