package locale

// Message key constants for localization
// All user-facing messages should use these constants to ensure consistency

const (
	// ============================================================================
	// MESSAGE BODIES
	// ============================================================================

	WelcomeText          = "WelcomeText"
	WelcomeReferralText  = "WelcomeReferralText"
	ReferralNoticeText   = "ReferralNoticeText"
	MenuText             = "MenuText"
	PremiumInfoText      = "PremiumInfoText"
	HowToPlayText        = "HowToPlayText"
	StatsText            = "StatsText"
	EarnGuideText        = "EarnGuideText"
	LeaderboardText      = "LeaderboardText"
	WithdrawalInfoText   = "WithdrawalInfoText"
	LanguageSelectorText = "LanguageSelectorText"

	// ============================================================================
	// GAME LINK BUTTONS
	// ============================================================================

	ButtonStartGame     = "ButtonStartGame"
	ButtonStartPlaying  = "ButtonStartPlaying"
	ButtonPlayNow       = "ButtonPlayNow"
	ButtonGoUpgrade     = "ButtonGoUpgrade"
	ButtonPlayTogether  = "ButtonPlayTogether"
	ButtonBeatRecords   = "ButtonBeatRecords"
	ButtonEarnInGame    = "ButtonEarnInGame"
	ButtonWithdrawInApp = "ButtonWithdrawInApp"
	ButtonOpenGame      = "ButtonOpenGame"

	// ============================================================================
	// ACTION BUTTONS
	// ============================================================================

	ButtonPremium     = "ButtonPremium"
	ButtonHowToPlay   = "ButtonHowToPlay"
	ButtonEarn        = "ButtonEarn"
	ButtonLeaderboard = "ButtonLeaderboard"
	ButtonWithdrawal  = "ButtonWithdrawal"
	ButtonLanguageEn  = "ButtonLanguageEn"
	ButtonLanguageRu  = "ButtonLanguageRu"
)
