package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ReferralStartPrefix is the /start payload prefix carried by referral links
const ReferralStartPrefix = "/start ref_"

// ReferralService handles generation and parsing of Telegram referral deep-links
type ReferralService struct {
	botUsername string
}

// NewReferralService creates a new ReferralService for the specified bot username
func NewReferralService(botUsername string) *ReferralService {
	return &ReferralService{
		botUsername: strings.TrimPrefix(botUsername, "@"),
	}
}

// GenerateReferralLink generates a Telegram deep-link inviting friends on behalf of a chat
// Format: https://t.me/{bot_username}?start=ref_{chatID}
func (s *ReferralService) GenerateReferralLink(chatID int64) string {
	return fmt.Sprintf("https://t.me/%s?start=ref_%d", s.botUsername, chatID)
}

// IsReferralStart reports whether a message text is a /start with a referral payload
func IsReferralStart(text string) bool {
	return strings.HasPrefix(text, ReferralStartPrefix)
}

// ParseReferralCode extracts the referral code from a "/start ref_<code>" message.
// The code is returned only when it is purely ASCII digits and names a non-zero
// chat ID; anything else yields an empty code.
func ParseReferralCode(text string) string {
	if !IsReferralStart(text) {
		return ""
	}

	code := strings.TrimPrefix(text, ReferralStartPrefix)
	if code == "" {
		return ""
	}

	for _, r := range code {
		if r < '0' || r > '9' {
			return ""
		}
	}

	chatID, err := strconv.ParseInt(code, 10, 64)
	if err != nil || chatID == 0 {
		return ""
	}

	return code
}

// ReferrerChatID converts a parsed referral code to the chat ID to notify
func ReferrerChatID(code string) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("invalid referral code: empty")
	}

	chatID, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid referral code %q: %w", code, err)
	}

	return chatID, nil
}
