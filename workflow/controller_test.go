package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"postpilot/api"
	"postpilot/types"
)

// ---- fake backend ----

type fakeBackend struct {
	mu sync.Mutex

	generateSummaryFn func(topic, description string) (*api.Summary, error)
	approveSummaryFn  func(summaryID, summaryText string) error
	generateContentFn func(summaryID string, platforms []types.Platform) ([]api.GeneratedPlatform, error)
	approveContentFn  func(platformID, postText, imageURL string) error
	publishFn         func(platformID string) (*api.PublishOutcome, error)
	regenTextFn       func(req api.RegenerateTextRequest) (string, error)
	regenImageFn      func(summaryID, platformID, suggestions string) (string, error)
	summaryFn         func(summaryID string) (*types.HistoryEntry, error)

	calls map[string]int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) GenerateSummary(_ context.Context, topic, description string) (*api.Summary, error) {
	f.record("generate-summary")
	if f.generateSummaryFn == nil {
		return nil, errors.New("unexpected generate-summary call")
	}
	return f.generateSummaryFn(topic, description)
}

func (f *fakeBackend) ApproveSummary(_ context.Context, summaryID, summaryText string) error {
	f.record("approve-summary")
	if f.approveSummaryFn == nil {
		return errors.New("unexpected approve-summary call")
	}
	return f.approveSummaryFn(summaryID, summaryText)
}

func (f *fakeBackend) GenerateContent(_ context.Context, summaryID string, platforms []types.Platform) ([]api.GeneratedPlatform, error) {
	f.record("generate-content")
	if f.generateContentFn == nil {
		return nil, errors.New("unexpected generate-content call")
	}
	return f.generateContentFn(summaryID, platforms)
}

func (f *fakeBackend) ApproveContent(_ context.Context, platformID, postText, imageURL string) error {
	f.record("approve-content")
	if f.approveContentFn == nil {
		return errors.New("unexpected approve-content call")
	}
	return f.approveContentFn(platformID, postText, imageURL)
}

func (f *fakeBackend) Publish(_ context.Context, platformID string) (*api.PublishOutcome, error) {
	f.record("publish")
	if f.publishFn == nil {
		return nil, errors.New("unexpected publish call")
	}
	return f.publishFn(platformID)
}

func (f *fakeBackend) RegenerateText(_ context.Context, req api.RegenerateTextRequest) (string, error) {
	f.record("regenerate-text")
	if f.regenTextFn == nil {
		return "", errors.New("unexpected regenerate-text call")
	}
	return f.regenTextFn(req)
}

func (f *fakeBackend) RegenerateImage(_ context.Context, summaryID, platformID, suggestions string) (string, error) {
	f.record("regenerate-image")
	if f.regenImageFn == nil {
		return "", errors.New("unexpected regenerate-image call")
	}
	return f.regenImageFn(summaryID, platformID, suggestions)
}

func (f *fakeBackend) SummaryWithPlatforms(_ context.Context, summaryID string) (*types.HistoryEntry, error) {
	f.record("summary")
	if f.summaryFn == nil {
		return nil, errors.New("unexpected summary call")
	}
	return f.summaryFn(summaryID)
}

// ---- helpers ----

func newTestController(backend Backend) *Controller {
	return NewController(backend, zerolog.Nop())
}

// advance drives a controller to the content review step with the given
// platforms generated.
func advanceToContent(t *testing.T, backend *fakeBackend, platforms ...types.Platform) *Controller {
	t.Helper()

	backend.generateSummaryFn = func(topic, description string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", Topic: topic, SummaryText: "generated summary"}, nil
	}
	backend.approveSummaryFn = func(summaryID, summaryText string) error { return nil }
	backend.generateContentFn = func(summaryID string, selected []types.Platform) ([]api.GeneratedPlatform, error) {
		out := make([]api.GeneratedPlatform, 0, len(selected))
		for i, p := range selected {
			out = append(out, api.GeneratedPlatform{
				PlatformID:   "p" + string(rune('1'+i)),
				PlatformName: string(p),
				PostText:     "post for " + string(p),
				ImageURL:     "https://img.example/" + string(p) + ".png",
			})
		}
		return out, nil
	}

	c := newTestController(backend)
	ctx := context.Background()
	require.NoError(t, c.SubmitTopic(ctx, "AI trends"))
	require.NoError(t, c.ApproveSummary(ctx))
	for _, p := range platforms {
		require.NoError(t, c.TogglePlatform(p))
	}
	require.NoError(t, c.GenerateContent(ctx))
	require.Equal(t, StepContentGenerated, c.Step())
	return c
}

// ---- tests ----

func TestSubmitTopic_Success(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, description string) (*api.Summary, error) {
		require.Equal(t, "AI trends", topic)
		require.Empty(t, description)
		return &api.Summary{SummaryID: "s1", Topic: topic, SummaryText: "a synopsis"}, nil
	}

	c := newTestController(backend)
	require.NoError(t, c.SubmitTopic(context.Background(), "AI trends"))

	snap := c.Snapshot()
	assert.Equal(t, StepSummaryGenerated, snap.Step)
	assert.Equal(t, "s1", snap.SummaryID)
	assert.Equal(t, "a synopsis", snap.SummaryText)
	assert.False(t, snap.SummaryApproved)
}

func TestSubmitTopic_BlankTopicNeverHitsNetwork(t *testing.T) {
	for _, topic := range []string{"", "   ", "\t\n"} {
		backend := newFakeBackend()
		c := newTestController(backend)

		err := c.SubmitTopic(context.Background(), topic)

		var vErr *ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, StepChooseTopic, c.Step())
		assert.Zero(t, backend.callCount("generate-summary"))
	}
}

func TestSubmitTopic_BackendFailureLeavesStateUntouched(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(string, string) (*api.Summary, error) {
		return nil, &api.APIError{StatusCode: 500, Detail: "n8n summary generation failed"}
	}

	c := newTestController(backend)
	err := c.SubmitTopic(context.Background(), "AI trends")

	require.EqualError(t, err, "n8n summary generation failed")
	snap := c.Snapshot()
	assert.Equal(t, StepChooseTopic, snap.Step)
	assert.Empty(t, snap.SummaryID)
	assert.Empty(t, snap.Topic)
}

func TestApproveSummary_SendsEditedText(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, _ string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", Topic: topic, SummaryText: "original text"}, nil
	}

	var sentText string
	backend.approveSummaryFn = func(summaryID, summaryText string) error {
		require.Equal(t, "s1", summaryID)
		sentText = summaryText
		return nil
	}

	c := newTestController(backend)
	ctx := context.Background()
	require.NoError(t, c.SubmitTopic(ctx, "AI trends"))

	c.EditSummary("original text, edited")
	require.NoError(t, c.ApproveSummary(ctx))

	assert.Equal(t, "original text, edited", sentText)
	snap := c.Snapshot()
	assert.Equal(t, StepSummaryApproved, snap.Step)
	assert.Equal(t, "s1", snap.SummaryID)
	assert.True(t, snap.SummaryApproved)
}

func TestApproveSummary_BlankTextNeverHitsNetwork(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, _ string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", SummaryText: "text"}, nil
	}

	c := newTestController(backend)
	require.NoError(t, c.SubmitTopic(context.Background(), "AI trends"))

	c.EditSummary("   ")
	err := c.ApproveSummary(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, backend.callCount("approve-summary"))
	assert.Equal(t, StepSummaryGenerated, c.Step())
}

func TestRegenerateSummary_ReplacesDraftInPlace(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, _ string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", SummaryText: "first draft"}, nil
	}
	backend.regenTextFn = func(req api.RegenerateTextRequest) (string, error) {
		require.Equal(t, "summary", req.ContentType)
		require.Equal(t, "s1", req.SummaryID)
		require.Equal(t, "make it shorter", req.Suggestions)
		return "second draft", nil
	}

	c := newTestController(backend)
	require.NoError(t, c.SubmitTopic(context.Background(), "AI trends"))
	require.NoError(t, c.RegenerateSummary(context.Background(), "make it shorter"))

	snap := c.Snapshot()
	assert.Equal(t, StepSummaryGenerated, snap.Step)
	assert.Equal(t, "second draft", snap.SummaryText)
	assert.False(t, snap.SummaryApproved)
}

func TestTogglePlatform_UnknownPlatformRejected(t *testing.T) {
	backend := newFakeBackend()
	c := newTestController(backend)

	err := c.TogglePlatform(types.Platform("myspace"))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, err.Error(), "myspace")
}

func TestTogglePlatform_TracksSelectionStep(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, _ string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", SummaryText: "text"}, nil
	}
	backend.approveSummaryFn = func(string, string) error { return nil }

	c := newTestController(backend)
	ctx := context.Background()
	require.NoError(t, c.SubmitTopic(ctx, "AI trends"))
	require.NoError(t, c.ApproveSummary(ctx))

	require.NoError(t, c.TogglePlatform(types.PlatformTwitter))
	assert.Equal(t, StepPlatformsSelected, c.Step())

	require.NoError(t, c.TogglePlatform(types.PlatformTwitter))
	assert.Equal(t, StepSummaryApproved, c.Step())
}

func TestGenerateContent_NoSelectionNeverHitsNetwork(t *testing.T) {
	backend := newFakeBackend()
	backend.generateSummaryFn = func(topic, _ string) (*api.Summary, error) {
		return &api.Summary{SummaryID: "s1", SummaryText: "text"}, nil
	}
	backend.approveSummaryFn = func(string, string) error { return nil }

	c := newTestController(backend)
	ctx := context.Background()
	require.NoError(t, c.SubmitTopic(ctx, "AI trends"))
	require.NoError(t, c.ApproveSummary(ctx))

	err := c.GenerateContent(ctx)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, backend.callCount("generate-content"))
	assert.Equal(t, StepSummaryApproved, c.Step())
}

func TestGenerateContent_BuildsKeyedContentMap(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook, types.PlatformLinkedIn)

	snap := c.Snapshot()
	require.Len(t, snap.Content, 2)
	fb := snap.Content[types.PlatformFacebook]
	assert.Equal(t, "post for facebook", fb.PostText)
	assert.False(t, fb.Approved)
	li := snap.Content[types.PlatformLinkedIn]
	assert.NotEmpty(t, li.PlatformID)
	assert.NotEqual(t, fb.PlatformID, li.PlatformID)
}

func TestApproveContent_SendsEditedImageURL(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformInstagram)

	var sentText, sentImage string
	backend.approveContentFn = func(platformID, postText, imageURL string) error {
		sentText, sentImage = postText, imageURL
		return nil
	}

	require.NoError(t, c.EditContent(types.PlatformInstagram, "edited caption", "https://img.example/replaced.png"))
	require.NoError(t, c.ApproveContent(context.Background(), types.PlatformInstagram))

	assert.Equal(t, "edited caption", sentText)
	assert.Equal(t, "https://img.example/replaced.png", sentImage)
	assert.True(t, c.Snapshot().Content[types.PlatformInstagram].Approved)
}

func TestEditContent_WithdrawsApproval(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformTwitter)
	backend.approveContentFn = func(string, string, string) error { return nil }

	require.NoError(t, c.ApproveContent(context.Background(), types.PlatformTwitter))
	require.True(t, c.Snapshot().Content[types.PlatformTwitter].Approved)

	require.NoError(t, c.EditContent(types.PlatformTwitter, "new text", ""))
	assert.False(t, c.Snapshot().Content[types.PlatformTwitter].Approved)
}

func TestApproveContent_FailureOnlyAffectsThatEntry(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook, types.PlatformTwitter)

	backend.approveContentFn = func(platformID, _, _ string) error {
		if platformID == c.Snapshot().Content[types.PlatformTwitter].PlatformID {
			return &api.APIError{StatusCode: 500, Detail: "approval failed"}
		}
		return nil
	}

	require.NoError(t, c.ApproveContent(context.Background(), types.PlatformFacebook))
	err := c.ApproveContent(context.Background(), types.PlatformTwitter)

	require.EqualError(t, err, "approval failed")
	snap := c.Snapshot()
	assert.True(t, snap.Content[types.PlatformFacebook].Approved)
	assert.False(t, snap.Content[types.PlatformTwitter].Approved)
	assert.Equal(t, StepContentGenerated, snap.Step)
}

func TestPublishApproved_PartialFailureStillPublishes(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend,
		types.PlatformFacebook, types.PlatformTwitter, types.PlatformLinkedIn)

	backend.approveContentFn = func(string, string, string) error { return nil }
	ctx := context.Background()
	for _, p := range []types.Platform{types.PlatformFacebook, types.PlatformTwitter, types.PlatformLinkedIn} {
		require.NoError(t, c.ApproveContent(ctx, p))
	}

	failingID := c.Snapshot().Content[types.PlatformTwitter].PlatformID
	backend.publishFn = func(platformID string) (*api.PublishOutcome, error) {
		if platformID == failingID {
			return nil, &api.APIError{StatusCode: 500, Detail: "rate limited by platform"}
		}
		return &api.PublishOutcome{PlatformID: platformID, Status: "published", Message: "Post published"}, nil
	}

	require.NoError(t, c.PublishApproved(ctx))

	snap := c.Snapshot()
	assert.Equal(t, StepPublished, snap.Step)
	require.Len(t, snap.PublishResults, 3)
	assert.True(t, snap.PublishResults[types.PlatformFacebook].Success)
	assert.True(t, snap.PublishResults[types.PlatformLinkedIn].Success)
	assert.False(t, snap.PublishResults[types.PlatformTwitter].Success)
	assert.Equal(t, "rate limited by platform", snap.PublishResults[types.PlatformTwitter].Message)
	assert.Equal(t, 3, backend.callCount("publish"))
}

func TestPublishApproved_SkipsUnapprovedEntries(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook, types.PlatformTwitter)

	backend.approveContentFn = func(string, string, string) error { return nil }
	ctx := context.Background()
	require.NoError(t, c.ApproveContent(ctx, types.PlatformFacebook))

	backend.publishFn = func(platformID string) (*api.PublishOutcome, error) {
		return &api.PublishOutcome{PlatformID: platformID, Status: "published", Message: "ok"}, nil
	}

	require.NoError(t, c.PublishApproved(ctx))

	snap := c.Snapshot()
	require.Len(t, snap.PublishResults, 1)
	assert.Contains(t, snap.PublishResults, types.PlatformFacebook)
	assert.Equal(t, 1, backend.callCount("publish"))
}

func TestPublishApproved_NothingApprovedNeverHitsNetwork(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook)

	err := c.PublishApproved(context.Background())

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Zero(t, backend.callCount("publish"))
	assert.Equal(t, StepContentGenerated, c.Step())
}

func TestRegeneratePostText_UnapprovesEntry(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformLinkedIn)
	backend.approveContentFn = func(string, string, string) error { return nil }
	require.NoError(t, c.ApproveContent(context.Background(), types.PlatformLinkedIn))

	backend.regenTextFn = func(req api.RegenerateTextRequest) (string, error) {
		require.Equal(t, "post", req.ContentType)
		require.NotEmpty(t, req.PlatformID)
		return "fresher take", nil
	}

	require.NoError(t, c.RegeneratePostText(context.Background(), types.PlatformLinkedIn, "more formal"))

	snap := c.Snapshot()
	entry := snap.Content[types.PlatformLinkedIn]
	assert.Equal(t, "fresher take", entry.PostText)
	assert.False(t, entry.Approved)
	assert.Equal(t, StepContentGenerated, snap.Step)
}

func TestRegenerateImage_ReplacesURLInPlace(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformInstagram)

	backend.regenImageFn = func(summaryID, platformID, suggestions string) (string, error) {
		require.Equal(t, "s1", summaryID)
		return "https://img.example/v2.png", nil
	}

	require.NoError(t, c.RegenerateImage(context.Background(), types.PlatformInstagram, "brighter"))

	entry := c.Snapshot().Content[types.PlatformInstagram]
	assert.Equal(t, "https://img.example/v2.png", entry.ImageURL)
	assert.False(t, entry.Approved)
}

func TestBack_PreservesState(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook)

	c.Back()
	assert.Equal(t, StepPlatformsSelected, c.Step())

	snap := c.Snapshot()
	assert.Equal(t, "s1", snap.SummaryID)
	assert.Len(t, snap.Content, 1)
	assert.Equal(t, []types.Platform{types.PlatformFacebook}, snap.Selected)

	c.Back()
	c.Back()
	c.Back()
	assert.Equal(t, StepChooseTopic, c.Step())
	c.Back() // no-op at the first step
	assert.Equal(t, StepChooseTopic, c.Step())
}

func TestResume_LandsOnFurthestSupportedStep(t *testing.T) {
	tests := []struct {
		name     string
		entry    types.HistoryEntry
		wantStep Step
	}{
		{
			name: "unapproved summary",
			entry: types.HistoryEntry{
				Summary: types.SummaryRecord{ID: "s1", Topic: "AI", SummaryText: "draft"},
			},
			wantStep: StepSummaryGenerated,
		},
		{
			name: "approved summary without content",
			entry: types.HistoryEntry{
				Summary: types.SummaryRecord{ID: "s1", Topic: "AI", SummaryText: "draft", SummaryApproved: true},
			},
			wantStep: StepSummaryApproved,
		},
		{
			name: "generated content",
			entry: types.HistoryEntry{
				Summary: types.SummaryRecord{ID: "s1", Topic: "AI", SummaryText: "draft", SummaryApproved: true},
				Platforms: []types.PlatformRecord{
					{ID: "p1", PlatformName: "facebook", PostText: "post", Approved: true},
				},
			},
			wantStep: StepContentGenerated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.summaryFn = func(summaryID string) (*types.HistoryEntry, error) {
				require.Equal(t, "s1", summaryID)
				entry := tt.entry
				return &entry, nil
			}

			c := newTestController(backend)
			require.NoError(t, c.Resume(context.Background(), "s1"))

			snap := c.Snapshot()
			assert.Equal(t, tt.wantStep, snap.Step)
			assert.Equal(t, "s1", snap.SummaryID)
			assert.Equal(t, "AI", snap.Topic)
			if len(tt.entry.Platforms) > 0 {
				entry := snap.Content[types.PlatformFacebook]
				assert.Equal(t, "p1", entry.PlatformID)
				assert.True(t, entry.Approved)
			}
		})
	}
}

func TestReset_ReturnsToCleanTopicStep(t *testing.T) {
	backend := newFakeBackend()
	c := advanceToContent(t, backend, types.PlatformFacebook)

	c.Reset()

	snap := c.Snapshot()
	assert.Equal(t, StepChooseTopic, snap.Step)
	assert.Empty(t, snap.SummaryID)
	assert.Empty(t, snap.Content)
	assert.Empty(t, snap.Selected)
}
