package bot

import (
	"context"
	"fmt"

	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"
)

// Deliverer sends outbound messages and acknowledges callbacks
type Deliverer interface {
	Deliver(ctx context.Context, msg domain.OutboundMessage) error
	Acknowledge(ctx context.Context, queryID string) error
}

// Dispatch is the planned work for one inbound event: an optional callback
// acknowledgement, the reply to the sender and an optional notice to a third party.
type Dispatch struct {
	AckQueryID string
	Primary    *domain.OutboundMessage
	Secondary  *domain.OutboundMessage
}

var commandTemplates = map[domain.Command]domain.TemplateKey{
	domain.CommandStart:    domain.TemplateWelcome,
	domain.CommandHelp:     domain.TemplateHowToPlay,
	domain.CommandPremium:  domain.TemplatePremiumInfo,
	domain.CommandStats:    domain.TemplateStats,
	domain.CommandEarn:     domain.TemplateEarnGuide,
	domain.CommandLanguage: domain.TemplateLanguageSelector,
}

var actionTemplates = map[domain.Action]domain.TemplateKey{
	domain.ActionPremiumInfo: domain.TemplatePremiumInfo,
	domain.ActionHowToPlay:   domain.TemplateHowToPlay,
	domain.ActionEarnGuide:   domain.TemplateEarnGuide,
	domain.ActionLeaderboard: domain.TemplateLeaderboard,
	domain.ActionWithdrawal:  domain.TemplateWithdrawalInfo,
	domain.ActionLanguageEn:  domain.TemplateWelcome,
	domain.ActionLanguageRu:  domain.TemplateWelcome,
}

// languageActions switch the reply language regardless of the client setting
var languageActions = map[domain.Action]string{
	domain.ActionLanguageEn: locale.En,
	domain.ActionLanguageRu: locale.Ru,
}

// Router maps inbound events to outbound messages
type Router struct {
	resolver  *Resolver
	referrals *domain.ReferralService
	deliverer Deliverer
	logger    domain.Logger
}

// NewRouter creates a router
func NewRouter(resolver *Resolver, referrals *domain.ReferralService, deliverer Deliverer, logger domain.Logger) *Router {
	return &Router{
		resolver:  resolver,
		referrals: referrals,
		deliverer: deliverer,
		logger:    logger,
	}
}

// Plan decides what to send for an event without performing any I/O
func (r *Router) Plan(event domain.InboundEvent) (*Dispatch, error) {
	if event == nil {
		return nil, fmt.Errorf("nil event")
	}

	sender := event.From()
	vars := Vars{
		Name:         sender.DisplayName,
		ReferralLink: r.referrals.GenerateReferralLink(referrerID(sender)),
	}
	dispatch := &Dispatch{}

	switch e := event.(type) {
	case domain.CommandEvent:
		if e.Command == domain.CommandStart && e.ReferralCode != "" {
			return r.planReferral(dispatch, sender, e.ReferralCode, vars)
		}

		key, ok := commandTemplates[e.Command]
		if !ok {
			return nil, fmt.Errorf("no template for command %s", e.Command)
		}
		return r.planPrimary(dispatch, key, sender.Language, sender.ChatID, vars)

	case domain.PlainTextEvent:
		return r.planPrimary(dispatch, domain.TemplateMenu, sender.Language, sender.ChatID, vars)

	case domain.CallbackEvent:
		dispatch.AckQueryID = e.QueryID

		key, ok := actionTemplates[e.Action]
		if !ok {
			return dispatch, nil
		}

		lang := sender.Language
		if switched, ok := languageActions[e.Action]; ok {
			lang = switched
		}
		return r.planPrimary(dispatch, key, lang, sender.ChatID, vars)

	default:
		return nil, fmt.Errorf("unsupported event type %T", event)
	}
}

func (r *Router) planPrimary(d *Dispatch, key domain.TemplateKey, lang string, chatID int64, vars Vars) (*Dispatch, error) {
	reply, err := r.resolver.Render(key, lang, vars)
	if err != nil {
		return nil, err
	}

	msg := reply.Message(chatID)
	d.Primary = &msg
	return d, nil
}

// planReferral greets the joiner and notifies the referrer in the joiner's language
func (r *Router) planReferral(d *Dispatch, sender domain.Sender, code string, vars Vars) (*Dispatch, error) {
	referrerChatID, err := domain.ReferrerChatID(code)
	if err != nil {
		return nil, err
	}

	d, err = r.planPrimary(d, domain.TemplateWelcomeReferral, sender.Language, sender.ChatID, vars)
	if err != nil {
		return nil, err
	}

	notice, err := r.resolver.Render(domain.TemplateReferralNotice, sender.Language, vars)
	if err != nil {
		return nil, err
	}

	msg := notice.Message(referrerChatID)
	d.Secondary = &msg
	return d, nil
}

// Handle plans and executes the dispatch for one event. The acknowledgement
// precedes the primary reply, and the primary precedes the secondary notice.
// Only a failed primary reply is reported to the caller.
func (r *Router) Handle(ctx context.Context, event domain.InboundEvent) error {
	dispatch, err := r.Plan(event)
	if err != nil {
		return fmt.Errorf("failed to plan reply: %w", err)
	}

	sender := event.From()

	if dispatch.AckQueryID != "" {
		if err := r.deliverer.Acknowledge(ctx, dispatch.AckQueryID); err != nil {
			r.logger.Warn("callback acknowledgement failed", "chat_id", sender.ChatID, "error", err)
		}
	}

	if dispatch.Primary == nil {
		if cb, ok := event.(domain.CallbackEvent); ok {
			r.logger.Warn("unknown callback data", "chat_id", sender.ChatID, "data", cb.Data)
		}
		return nil
	}

	if err := r.deliverer.Deliver(ctx, *dispatch.Primary); err != nil {
		return fmt.Errorf("%w: %w", ErrPrimaryDelivery, err)
	}

	if dispatch.Secondary != nil {
		if err := r.deliverer.Deliver(ctx, *dispatch.Secondary); err != nil {
			r.logger.Warn("referral notice not delivered",
				"chat_id", sender.ChatID,
				"referrer_chat_id", dispatch.Secondary.ChatID,
				"error", err)
		} else {
			r.logger.Info("referral notice sent", "chat_id", sender.ChatID, "referrer_chat_id", dispatch.Secondary.ChatID)
		}
	}

	return nil
}

// referrerID is the chat a referral notice for this sender should reach.
// A user's private chat shares their user ID; group chat IDs are negative
// and cannot be carried in a start payload.
func referrerID(sender domain.Sender) int64 {
	if sender.UserID != 0 {
		return sender.UserID
	}
	return sender.ChatID
}
