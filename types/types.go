package types

import (
	"fmt"
	"strings"
	"time"
)

// Platform identifies a publishing target. The set is closed; anything else
// is rejected during validation before a request is made.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformLinkedIn  Platform = "linkedin"
	PlatformInstagram Platform = "instagram"
)

// AllPlatforms lists every supported platform in display order.
var AllPlatforms = []Platform{
	PlatformFacebook,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformInstagram,
}

// ParsePlatform normalizes and validates a platform identifier.
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// DisplayName returns the human-readable platform name.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformFacebook:
		return "Facebook"
	case PlatformTwitter:
		return "Twitter/X"
	case PlatformLinkedIn:
		return "LinkedIn"
	case PlatformInstagram:
		return "Instagram"
	default:
		return string(p)
	}
}

// User is the minimal identity the backend returns from /auth/me.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Preferences []string `json:"preferences"`
}

// TrendingTopic is a single suggestion from /trends/suggestions.
type TrendingTopic struct {
	Topic    string `json:"topic"`
	Category string `json:"category"`
	Trend    string `json:"trend"`
}

// PlatformContent is the draft post for one platform. PostText and ImageURL
// are user-editable after generation; Approved flips only after the backend
// accepts an approve-content call.
type PlatformContent struct {
	PlatformID string   `json:"platform_id"`
	Platform   Platform `json:"platform_name"`
	PostText   string   `json:"post_text"`
	ImageURL   string   `json:"image_url"`
	Approved   bool     `json:"approved"`
}

// PublishResult records the outcome of one platform publish attempt.
type PublishResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SummaryRecord is a persisted summary as returned by /posts/history.
type SummaryRecord struct {
	ID              string    `json:"id"`
	Topic           string    `json:"topic"`
	SummaryText     string    `json:"summary_text"`
	SummaryApproved bool      `json:"summary_approved"`
	CreatedAt       time.Time `json:"created_at"`
}

// PlatformRecord is a persisted platform post as returned by /posts/history.
type PlatformRecord struct {
	ID           string     `json:"id"`
	PlatformName string     `json:"platform_name"`
	PostText     string     `json:"post_text"`
	ImageURL     string     `json:"image_url"`
	Approved     bool       `json:"approved"`
	Published    bool       `json:"published"`
	PublishedAt  *time.Time `json:"published_at"`
	ErrorMessage string     `json:"error_message"`
}

// HistoryEntry pairs a summary with the platform posts derived from it.
type HistoryEntry struct {
	Summary   SummaryRecord    `json:"summary"`
	Platforms []PlatformRecord `json:"platforms"`
}
