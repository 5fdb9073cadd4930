package bot

import (
	"fmt"
	"html"

	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"
)

// Vars are the dynamic values a template may embed
type Vars struct {
	Name         string
	ReferralLink string
}

// Reply is a rendered template ready to be addressed to a chat
type Reply struct {
	Text      string
	ParseMode domain.ParseMode
	Keyboard  *domain.KeyboardLayout
}

// Message addresses the reply to a chat
func (r *Reply) Message(chatID int64) domain.OutboundMessage {
	return domain.OutboundMessage{
		ChatID:    chatID,
		Text:      r.Text,
		ParseMode: r.ParseMode,
		Keyboard:  r.Keyboard,
	}
}

// buttonSpec is a button caption key and its action. No action means a game link.
type buttonSpec struct {
	caption string
	action  domain.Action
}

func gameLink(caption string) buttonSpec {
	return buttonSpec{caption: caption}
}

func actionButton(caption string, action domain.Action) buttonSpec {
	return buttonSpec{caption: caption, action: action}
}

type templateSpec struct {
	body   string
	fields func(v Vars) []string
	rows   [][]buttonSpec
}

func nameField(v Vars) []string { return []string{html.EscapeString(v.Name)} }

func referralField(v Vars) []string { return []string{html.EscapeString(v.ReferralLink)} }

var (
	premiumButton     = actionButton(locale.ButtonPremium, domain.ActionPremiumInfo)
	howToPlayButton   = actionButton(locale.ButtonHowToPlay, domain.ActionHowToPlay)
	earnButton        = actionButton(locale.ButtonEarn, domain.ActionEarnGuide)
	leaderboardButton = actionButton(locale.ButtonLeaderboard, domain.ActionLeaderboard)
	withdrawalButton  = actionButton(locale.ButtonWithdrawal, domain.ActionWithdrawal)
	languageEnButton  = actionButton(locale.ButtonLanguageEn, domain.ActionLanguageEn)
	languageRuButton  = actionButton(locale.ButtonLanguageRu, domain.ActionLanguageRu)
)

var templates = map[domain.TemplateKey]templateSpec{
	domain.TemplateWelcome: {
		body:   locale.WelcomeText,
		fields: nameField,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonStartGame)},
			{premiumButton, howToPlayButton},
			{earnButton, leaderboardButton},
		},
	},
	domain.TemplateWelcomeReferral: {
		body:   locale.WelcomeReferralText,
		fields: nameField,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonStartPlaying)},
			{howToPlayButton},
		},
	},
	domain.TemplateReferralNotice: {
		body:   locale.ReferralNoticeText,
		fields: nameField,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonPlayTogether)},
		},
	},
	domain.TemplateMenu: {
		body: locale.MenuText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonOpenGame)},
			{premiumButton, howToPlayButton},
			{earnButton, leaderboardButton},
		},
	},
	domain.TemplatePremiumInfo: {
		body: locale.PremiumInfoText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonGoUpgrade)},
			{howToPlayButton},
		},
	},
	domain.TemplateHowToPlay: {
		body: locale.HowToPlayText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonPlayNow)},
			{premiumButton, withdrawalButton},
		},
	},
	domain.TemplateStats: {
		body: locale.StatsText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonBeatRecords)},
			{leaderboardButton},
		},
	},
	domain.TemplateEarnGuide: {
		body:   locale.EarnGuideText,
		fields: referralField,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonEarnInGame)},
			{withdrawalButton, leaderboardButton},
		},
	},
	domain.TemplateLeaderboard: {
		body: locale.LeaderboardText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonBeatRecords)},
			{earnButton},
		},
	},
	domain.TemplateWithdrawalInfo: {
		body: locale.WithdrawalInfoText,
		rows: [][]buttonSpec{
			{gameLink(locale.ButtonWithdrawInApp)},
			{earnButton, howToPlayButton},
		},
	},
	domain.TemplateLanguageSelector: {
		body: locale.LanguageSelectorText,
		rows: [][]buttonSpec{
			{languageEnButton, languageRuButton},
			{gameLink(locale.ButtonOpenGame)},
		},
	},
}

// Resolver renders templates from the immutable locale catalog
type Resolver struct {
	catalog  *locale.Catalog
	gameURL  string
	style    domain.KeyboardStyle
	captions map[string]domain.Action
}

// NewResolver creates a resolver and indexes every action button caption in
// every language so reply keyboard presses can be mapped back to actions.
func NewResolver(catalog *locale.Catalog, gameURL string, style domain.KeyboardStyle) (*Resolver, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if gameURL == "" {
		return nil, fmt.Errorf("game URL is required")
	}
	if style == "" {
		style = domain.KeyboardInline
	}

	r := &Resolver{
		catalog:  catalog,
		gameURL:  gameURL,
		style:    style,
		captions: make(map[string]domain.Action),
	}

	for _, lang := range locale.Supported {
		l := catalog.For(lang)
		for _, tmpl := range templates {
			for _, row := range tmpl.rows {
				for _, b := range row {
					if b.action == domain.ActionUnknown {
						continue
					}
					caption, err := l.LocalizeWithTemplate(b.caption)
					if err != nil {
						return nil, fmt.Errorf("failed to localize %s for %s: %w", b.caption, lang, err)
					}
					r.captions[caption] = b.action
				}
			}
		}
	}

	return r, nil
}

// Style returns the keyboard style the resolver renders
func (r *Resolver) Style() domain.KeyboardStyle {
	return r.style
}

// ActionForCaption implements CaptionMatcher
func (r *Resolver) ActionForCaption(text string) (domain.Action, bool) {
	action, ok := r.captions[text]
	return action, ok
}

// Render localizes a template. Unsupported languages render in English.
// The display name is HTML-escaped before it is embedded.
func (r *Resolver) Render(key domain.TemplateKey, lang string, vars Vars) (*Reply, error) {
	tmpl, ok := templates[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, key)
	}

	l := r.catalog.For(lang)

	var fields []string
	if tmpl.fields != nil {
		fields = tmpl.fields(vars)
	}

	text, err := l.LocalizeWithTemplate(tmpl.body, fields...)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", key, err)
	}

	keyboard, err := r.layout(l, tmpl.rows)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s keyboard: %w", key, err)
	}

	return &Reply{
		Text:      text,
		ParseMode: domain.ParseModeHTML,
		Keyboard:  keyboard,
	}, nil
}

func (r *Resolver) layout(l locale.Localizer, rows [][]buttonSpec) (*domain.KeyboardLayout, error) {
	layout := &domain.KeyboardLayout{
		Style: r.style,
		Rows:  make([][]domain.Button, 0, len(rows)),
	}

	for _, row := range rows {
		buttons := make([]domain.Button, 0, len(row))
		for _, b := range row {
			caption, err := l.LocalizeWithTemplate(b.caption)
			if err != nil {
				return nil, err
			}

			button := domain.Button{Text: caption, Action: b.action}
			if b.action == domain.ActionUnknown {
				button.URL = r.gameURL
			}
			buttons = append(buttons, button)
		}
		layout.Rows = append(layout.Rows, buttons)
	}

	return layout, nil
}
