package internal

import (
	"fmt"
	"strings"

	pkgerrs "github.com/jamesprial/go-twitter-api-wrapper/pkg/errors"
)

const (
	// Tweet ID constraints (snowflake IDs are 64-bit decimals)
	maxTweetIDLength = 20

	// Screen name constraints
	maxScreenNameLength = 15

	// User agent constraints
	maxUserAgentLength = 256
)

// Validator provides validation operations for Twitter API parameters.
type Validator struct{}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTweetID checks that a tweet ID is a plausible snowflake ID.
// Returns an error if the ID is empty, too long, or not purely numeric.
func (v *Validator) ValidateTweetID(id string) error {
	if id == "" {
		return &pkgerrs.ConfigError{Field: "tweetID", Message: "tweet ID cannot be empty"}
	}
	if len(id) > maxTweetIDLength {
		return &pkgerrs.ConfigError{Field: "tweetID", Message: fmt.Sprintf("tweet ID cannot exceed %d digits", maxTweetIDLength)}
	}
	for i, ch := range id {
		if ch < '0' || ch > '9' {
			return &pkgerrs.ConfigError{Field: "tweetID", Message: fmt.Sprintf("tweet ID contains non-digit character '%c' at position %d", ch, i)}
		}
	}
	return nil
}

// ValidateScreenName checks a screen name against Twitter's naming rules:
// 1-15 characters, letters, digits, and underscores only.
func (v *Validator) ValidateScreenName(name string) error {
	if name == "" {
		return &pkgerrs.ConfigError{Field: "screenName", Message: "screen name cannot be empty"}
	}
	if len(name) > maxScreenNameLength {
		return &pkgerrs.ConfigError{Field: "screenName", Message: fmt.Sprintf("screen name cannot exceed %d characters", maxScreenNameLength)}
	}
	for i, ch := range name {
		if !(ch >= 'a' && ch <= 'z') && !(ch >= 'A' && ch <= 'Z') && !(ch >= '0' && ch <= '9') && ch != '_' {
			return &pkgerrs.ConfigError{Field: "screenName", Message: fmt.Sprintf("screen name contains invalid character '%c' at position %d", ch, i)}
		}
	}
	return nil
}

// ValidateUserAgent validates the User-Agent string to prevent header injection.
func (v *Validator) ValidateUserAgent(ua string) error {
	if len(ua) == 0 {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot be empty"}
	}
	if strings.ContainsAny(ua, "\r\n") {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: "user agent cannot contain newline characters"}
	}
	if len(ua) > maxUserAgentLength {
		return &pkgerrs.ConfigError{Field: "UserAgent", Message: fmt.Sprintf("user agent too long (max %d characters)", maxUserAgentLength)}
	}
	return nil
}
