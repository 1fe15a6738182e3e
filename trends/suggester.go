// Package trends supplies topic suggestions for the topic step. The backend
// is the primary source; when it errors or comes back empty, headlines from
// a few news feeds stand in so the user is never staring at a blank picker.
package trends

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"postpilot/api"
	"postpilot/types"
)

// Default configuration for the RSS fallback.
const (
	maxPerFeed = 5
)

// FeedPresets maps friendly names to RSS feed URLs.
var FeedPresets = map[string]string{
	"tech":      "https://www.technologyreview.com/feed/",
	"hn":        "https://hnrss.org/newest",
	"marketing": "https://feeds.feedburner.com/Mashable",
	"business":  "https://feeds.bbci.co.uk/news/business/rss.xml",
}

// DefaultFeeds is the fallback rotation when none is configured.
var DefaultFeeds = []string{"tech", "business"}

// ResolveFeedURL resolves a preset name to a URL, passing through anything
// that is not a preset so direct URLs work too.
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}

// Backend is the trends slice of the API surface.
type Backend interface {
	TrendingTopics(ctx context.Context) ([]types.TrendingTopic, error)
}

// Suggester produces trending topic suggestions.
type Suggester struct {
	backend Backend
	feeds   []string
	parser  *gofeed.Parser
	log     zerolog.Logger
}

// NewSuggester creates a Suggester. feeds may be preset names or URLs;
// empty means DefaultFeeds.
func NewSuggester(backend Backend, feeds []string, log zerolog.Logger) *Suggester {
	if len(feeds) == 0 {
		feeds = DefaultFeeds
	}
	return &Suggester{
		backend: backend,
		feeds:   feeds,
		parser:  gofeed.NewParser(),
		log:     log,
	}
}

// Suggestions returns trending topics, preferring the backend's curated
// suggestions and falling back to feed headlines. Preferences float
// matching topics to the front. An expired session is never masked by
// the fallback.
func (s *Suggester) Suggestions(ctx context.Context, preferences []string) ([]types.TrendingTopic, error) {
	topics, err := s.backend.TrendingTopics(ctx)
	if err == nil && len(topics) > 0 {
		return rank(topics, preferences), nil
	}
	if api.IsUnauthorized(err) {
		return nil, err
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("trend suggestions unavailable, falling back to feeds")
	}

	fallback := s.fromFeeds(ctx)
	if len(fallback) == 0 && err != nil {
		return nil, err
	}
	return rank(fallback, preferences), nil
}

// fromFeeds builds suggestions out of feed headlines. Individual feed
// failures are logged and skipped.
func (s *Suggester) fromFeeds(ctx context.Context) []types.TrendingTopic {
	var topics []types.TrendingTopic

	for _, name := range s.feeds {
		feed, err := s.parser.ParseURLWithContext(ResolveFeedURL(name), ctx)
		if err != nil {
			s.log.Warn().Err(err).Str("feed", name).Msg("failed to fetch feed")
			continue
		}

		count := min(len(feed.Items), maxPerFeed)
		for i := 0; i < count; i++ {
			item := feed.Items[i]
			if strings.TrimSpace(item.Title) == "" {
				continue
			}

			category := name
			if len(item.Categories) > 0 {
				category = item.Categories[0]
			}

			topics = append(topics, types.TrendingTopic{
				Topic:    item.Title,
				Category: category,
				Trend:    "headline",
			})
		}
	}

	return topics
}

// rank floats topics matching a user preference to the front, keeping the
// original order within each group.
func rank(topics []types.TrendingTopic, preferences []string) []types.TrendingTopic {
	if len(preferences) == 0 {
		return topics
	}

	matched := make([]types.TrendingTopic, 0, len(topics))
	rest := make([]types.TrendingTopic, 0, len(topics))

	for _, t := range topics {
		if matchesAny(t, preferences) {
			matched = append(matched, t)
		} else {
			rest = append(rest, t)
		}
	}
	return append(matched, rest...)
}

func matchesAny(t types.TrendingTopic, preferences []string) bool {
	topic := strings.ToLower(t.Topic)
	category := strings.ToLower(t.Category)
	for _, pref := range preferences {
		p := strings.ToLower(strings.TrimSpace(pref))
		if p == "" {
			continue
		}
		if strings.Contains(topic, p) || strings.Contains(category, p) {
			return true
		}
	}
	return false
}
