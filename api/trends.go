package api

import (
	"context"
	"net/http"

	"postpilot/types"
)

// TrendingTopics fetches topic suggestions matched to the user's
// preference categories.
func (c *Client) TrendingTopics(ctx context.Context) ([]types.TrendingTopic, error) {
	var result struct {
		Topics []types.TrendingTopic `json:"topics"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/trends/suggestions", nil, &result); err != nil {
		return nil, err
	}
	return result.Topics, nil
}
