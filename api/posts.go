package api

import (
	"context"
	"net/http"

	"postpilot/types"
)

// Summary is the body of POST /posts/generate-summary.
type Summary struct {
	SummaryID   string `json:"summary_id"`
	Topic       string `json:"topic"`
	SummaryText string `json:"summary_text"`
}

// GenerateSummary asks the backend to produce a draft summary for topic.
// The draft is persisted server-side but not yet approved.
func (c *Client) GenerateSummary(ctx context.Context, topic, description string) (*Summary, error) {
	payload := map[string]string{
		"topic":       topic,
		"description": description,
	}

	var result Summary
	if err := c.doJSON(ctx, http.MethodPost, "/posts/generate-summary", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ApproveSummary commits the (possibly edited) summary text. This is the
// persistence point; generation alone carries no approval.
func (c *Client) ApproveSummary(ctx context.Context, summaryID, summaryText string) error {
	payload := map[string]string{
		"summary_id":   summaryID,
		"summary_text": summaryText,
	}
	return c.doJSON(ctx, http.MethodPost, "/posts/approve-summary", payload, nil)
}

// GeneratedPlatform is one entry of the generate-content response.
type GeneratedPlatform struct {
	PlatformID   string `json:"platform_id"`
	PlatformName string `json:"platform_name"`
	PostText     string `json:"post_text"`
	ImageURL     string `json:"image_url"`
}

// GenerateContent produces draft posts for the selected platforms from an
// approved summary.
func (c *Client) GenerateContent(ctx context.Context, summaryID string, platforms []types.Platform) ([]GeneratedPlatform, error) {
	names := make([]string, 0, len(platforms))
	for _, p := range platforms {
		names = append(names, string(p))
	}
	payload := map[string]interface{}{
		"summary_id": summaryID,
		"platforms":  names,
	}

	var result struct {
		Platforms []GeneratedPlatform `json:"platforms"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts/generate-content", payload, &result); err != nil {
		return nil, err
	}
	return result.Platforms, nil
}

// ApproveContent commits the edited post text and image URL for one platform.
func (c *Client) ApproveContent(ctx context.Context, platformID, postText, imageURL string) error {
	payload := map[string]string{
		"platform_id": platformID,
		"post_text":   postText,
		"image_url":   imageURL,
	}
	return c.doJSON(ctx, http.MethodPost, "/posts/approve-content", payload, nil)
}

// PublishOutcome is the body of POST /posts/publish. The backend reports
// per-platform publish failures with a 200 and status "failed" rather than
// an error response.
type PublishOutcome struct {
	Message    string `json:"message"`
	PlatformID string `json:"platform_id"`
	Status     string `json:"status"`
}

// Published reports whether the platform post actually went live.
func (o *PublishOutcome) Published() bool {
	return o.Status == "published"
}

// Publish pushes one approved platform post live.
func (c *Client) Publish(ctx context.Context, platformID string) (*PublishOutcome, error) {
	payload := map[string]string{
		"platform_id": platformID,
	}

	var result PublishOutcome
	if err := c.doJSON(ctx, http.MethodPost, "/posts/publish", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MultiPublishResult is one entry of the publish-multiple response.
type MultiPublishResult struct {
	PlatformID   string `json:"platform_id"`
	PlatformName string `json:"platform_name"`
	Status       string `json:"status"`
	Error        string `json:"error"`
}

// PublishMultiple publishes several approved platform posts in one call.
// Individual failures are reported per entry, not as a request error.
func (c *Client) PublishMultiple(ctx context.Context, platformIDs []string) ([]MultiPublishResult, error) {
	payload := map[string]interface{}{
		"platform_ids": platformIDs,
	}

	var result struct {
		Message string               `json:"message"`
		Results []MultiPublishResult `json:"results"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts/publish-multiple", payload, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// RegenerateTextRequest steers a text regeneration. ContentType is "summary"
// or "post"; PlatformID is only sent for post regeneration.
type RegenerateTextRequest struct {
	SummaryID   string
	PlatformID  string
	ContentType string
	Suggestions string
}

// RegenerateText replaces a draft's text server-side and returns the new
// text. The draft's approval state is untouched.
func (c *Client) RegenerateText(ctx context.Context, req RegenerateTextRequest) (string, error) {
	payload := map[string]string{
		"content_type": req.ContentType,
		"suggestions":  req.Suggestions,
	}
	if req.SummaryID != "" {
		payload["summary_id"] = req.SummaryID
	}
	if req.PlatformID != "" && req.ContentType != "summary" {
		payload["platform_id"] = req.PlatformID
	}

	var result struct {
		RegeneratedContent string `json:"regenerated_content"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts/regenerate-text", payload, &result); err != nil {
		return "", err
	}
	return result.RegeneratedContent, nil
}

// RegenerateImage produces a fresh image for a draft and returns its URL.
func (c *Client) RegenerateImage(ctx context.Context, summaryID, platformID, suggestions string) (string, error) {
	payload := map[string]string{
		"suggestions": suggestions,
	}
	if summaryID != "" {
		payload["summary_id"] = summaryID
	}
	if platformID != "" {
		payload["platform_id"] = platformID
	}

	var result struct {
		ImageURL string `json:"image_url"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/posts/regenerate-image", payload, &result); err != nil {
		return "", err
	}
	return result.ImageURL, nil
}

// History returns every summary the user created, with its platform posts.
func (c *Client) History(ctx context.Context) ([]types.HistoryEntry, error) {
	var result []types.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/posts/history", nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SummaryWithPlatforms fetches one summary and its platform posts, used to
// resume an unfinished workflow.
func (c *Client) SummaryWithPlatforms(ctx context.Context, summaryID string) (*types.HistoryEntry, error) {
	var result types.HistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/posts/summary/"+summaryID, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
