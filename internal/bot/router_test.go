package bot

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"

	"github.com/go-telegram/bot/models"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func inlineMarkup(t *testing.T, msg MockSentMessage) *models.InlineKeyboardMarkup {
	t.Helper()
	kb, ok := msg.ReplyMarkup.(*models.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("expected inline keyboard, got %T", msg.ReplyMarkup)
	}
	return kb
}

func TestHandleUpdate_PremiumInRussian(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), textUpdate(42, "Ann", "ru", "/premium")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].ChatID != 42 {
		t.Errorf("expected chat 42, got %d", sent[0].ChatID)
	}
	if sent[0].Text != localized(t, "ru", locale.PremiumInfoText) {
		t.Errorf("expected Russian premium text, got %q", sent[0].Text)
	}
	if sent[0].ParseMode != models.ParseModeHTML {
		t.Errorf("expected HTML parse mode, got %q", sent[0].ParseMode)
	}

	kb := inlineMarkup(t, sent[0])
	links := 0
	for _, row := range kb.InlineKeyboard {
		for _, b := range row {
			if b.WebApp != nil {
				links++
				if b.WebApp.URL != testGameURL {
					t.Errorf("unexpected game URL %s", b.WebApp.URL)
				}
			}
		}
	}
	if links != 1 {
		t.Errorf("expected one game link, got %d", links)
	}
}

func TestHandleUpdate_ReferralStart(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), textUpdate(7, "Bo", "", "/start ref_99")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sent))
	}

	if sent[0].ChatID != 7 || sent[1].ChatID != 99 {
		t.Fatalf("expected chats 7 then 99, got %d then %d", sent[0].ChatID, sent[1].ChatID)
	}
	if sent[0].Text != localized(t, "en", locale.WelcomeReferralText, "Bo") {
		t.Errorf("unexpected welcome text: %q", sent[0].Text)
	}
	if !strings.Contains(sent[1].Text, "Bo") {
		t.Errorf("referral notice must name the joiner: %q", sent[1].Text)
	}
	if !env.logger.hasMessage("INFO", "referral notice sent") {
		t.Error("expected referral notice to be logged")
	}
}

func TestHandleUpdate_InvalidReferralCodeIsPlainStart(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), textUpdate(7, "Bo", "en", "/start ref_x1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].Text != localized(t, "en", locale.WelcomeText, "Bo") {
		t.Errorf("expected plain welcome, got %q", sent[0].Text)
	}
}

func TestHandleUpdate_ZeroReferralCodeIsPlainStart(t *testing.T) {
	for _, text := range []string{"/start ref_0", "/start ref_000"} {
		t.Run(text, func(t *testing.T) {
			env := newTestEnv(t, domain.KeyboardInline)

			if err := env.handler.HandleUpdate(context.Background(), textUpdate(5, "Ed", "en", text)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			calls := env.mock.callLog()
			if len(calls) != 1 || calls[0] != "sendMessage:5" {
				t.Fatalf("expected only the welcome to chat 5, got %v", calls)
			}
			if sent := env.mock.sentMessages(); sent[0].Text != localized(t, "en", locale.WelcomeText, "Ed") {
				t.Errorf("expected plain welcome, got %q", sent[0].Text)
			}
		})
	}
}

func TestHandleUpdate_EarnInGroupLinksInvitingUser(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	update := textUpdate(-1001234, "Ed", "en", "/earn")
	update.Message.From.ID = 555

	if err := env.handler.HandleUpdate(context.Background(), update); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 || sent[0].ChatID != -1001234 {
		t.Fatalf("expected the guide in the group chat, got %+v", sent)
	}
	link := "https://t.me/tonblast_bot?start=ref_555"
	if sent[0].Text != localized(t, "en", locale.EarnGuideText, link) {
		t.Fatalf("expected guide with %s, got %q", link, sent[0].Text)
	}

	// A friend following the link lands in a private chat with the bot
	joiner := newTestEnv(t, domain.KeyboardInline)
	start := "/start " + strings.TrimPrefix(link, "https://t.me/tonblast_bot?start=")
	if err := joiner.handler.HandleUpdate(context.Background(), textUpdate(42, "Flo", "en", start)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := joiner.mock.sentMessages()
	if len(joined) != 2 {
		t.Fatalf("expected welcome and referral notice, got %d messages", len(joined))
	}
	if joined[1].ChatID != 555 {
		t.Errorf("expected referral notice for user 555, got chat %d", joined[1].ChatID)
	}
}

func TestHandleUpdate_CommandTemplates(t *testing.T) {
	tests := []struct {
		text string
		body string
	}{
		{"/start", locale.WelcomeText},
		{"/help", locale.HowToPlayText},
		{"/premium", locale.PremiumInfoText},
		{"/stats", locale.StatsText},
		{"/earn", locale.EarnGuideText},
		{"/language", locale.LanguageSelectorText},
		{"anything else", locale.MenuText},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			env := newTestEnv(t, domain.KeyboardInline)
			if err := env.handler.HandleUpdate(context.Background(), textUpdate(5, "Ed", "en", tt.text)); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			sent := env.mock.sentMessages()
			if len(sent) != 1 {
				t.Fatalf("expected 1 message, got %d", len(sent))
			}

			var want string
			switch tt.body {
			case locale.WelcomeText:
				want = localized(t, "en", tt.body, "Ed")
			case locale.EarnGuideText:
				want = localized(t, "en", tt.body, "https://t.me/tonblast_bot?start=ref_5")
			default:
				want = localized(t, "en", tt.body)
			}
			if sent[0].Text != want {
				t.Errorf("expected %s, got %q", tt.body, sent[0].Text)
			}
		})
	}
}

func TestHandleUpdate_CallbackAcknowledgedFirst(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), callbackUpdate(42, "Ann", "en", "q-1", "leaderboard_info")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"answerCallbackQuery:q-1", "sendMessage:42"}
	if got := env.mock.callLog(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected calls %v, got %v", want, got)
	}
	if env.mock.sentMessages()[0].Text != localized(t, "en", locale.LeaderboardText) {
		t.Error("expected leaderboard text")
	}
}

func TestHandleUpdate_LanguageSwitch(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), callbackUpdate(42, "Ann", "en", "q-2", "language_ru")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 || sent[0].Text != localized(t, "ru", locale.WelcomeText, "Ann") {
		t.Fatalf("expected Russian welcome, got %+v", sent)
	}
}

func TestHandleUpdate_UnknownCallbackOnlyAcknowledged(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), callbackUpdate(42, "Ann", "en", "q-3", "bogus")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := env.mock.callLog(); !reflect.DeepEqual(got, []string{"answerCallbackQuery:q-3"}) {
		t.Errorf("expected only acknowledgement, got %v", got)
	}
	if !env.logger.hasMessage("WARN", "unknown callback data") {
		t.Error("expected unknown callback to be logged")
	}
}

func TestHandleUpdate_AckFailureDoesNotBlockReply(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)
	env.mock.failAnswers = true

	if err := env.handler.HandleUpdate(context.Background(), callbackUpdate(42, "Ann", "en", "q-4", "how_to_play")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(env.mock.sentMessages()) != 1 {
		t.Error("expected reply despite failed acknowledgement")
	}
}

func TestHandleUpdate_PrimaryFailure(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)
	env.mock.failChats[42] = true

	err := env.handler.HandleUpdate(context.Background(), textUpdate(42, "Ann", "en", "/stats"))
	if !errors.Is(err, ErrPrimaryDelivery) {
		t.Fatalf("expected ErrPrimaryDelivery, got %v", err)
	}
	if !errors.Is(err, ErrDelivery) {
		t.Errorf("expected wrapped ErrDelivery, got %v", err)
	}
}

func TestHandleUpdate_SecondaryFailureSwallowed(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)
	env.mock.failChats[99] = true

	if err := env.handler.HandleUpdate(context.Background(), textUpdate(7, "Bo", "en", "/start ref_99")); err != nil {
		t.Fatalf("secondary failure must not fail the request: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 || sent[0].ChatID != 7 {
		t.Errorf("expected the welcome to be delivered, got %+v", sent)
	}
	if !env.logger.hasMessage("WARN", "referral notice not delivered") {
		t.Error("expected secondary failure to be logged")
	}
}

func TestHandleUpdate_ReplyKeyboardCaption(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardReply)

	caption := localized(t, "ru", locale.ButtonWithdrawal)
	if err := env.handler.HandleUpdate(context.Background(), textUpdate(8, "Ivan", "ru", caption)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sent := env.mock.sentMessages()
	if len(sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(sent))
	}
	if sent[0].Text != localized(t, "ru", locale.WithdrawalInfoText) {
		t.Errorf("expected withdrawal info, got %q", sent[0].Text)
	}
	if _, ok := sent[0].ReplyMarkup.(*models.ReplyKeyboardMarkup); !ok {
		t.Errorf("expected reply keyboard, got %T", sent[0].ReplyMarkup)
	}
	for _, call := range env.mock.callLog() {
		if strings.HasPrefix(call, "answerCallbackQuery") {
			t.Error("reply captions must not be acknowledged")
		}
	}
}

func TestHandleUpdate_NoTextIgnored(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	if err := env.handler.HandleUpdate(context.Background(), textUpdate(1, "A", "en", "")); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(env.mock.callLog()) != 0 {
		t.Error("expected no outbound calls")
	}
}

func TestHandleUpdate_Malformed(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	updates := map[string]*models.Update{
		"empty update":     {ID: 9},
		"message no chat":  {ID: 10, Message: &models.Message{ID: 1, Text: "/start"}},
		"callback no chat": {ID: 11, CallbackQuery: &models.CallbackQuery{ID: "q", Data: "how_to_play"}},
	}

	for name, update := range updates {
		t.Run(name, func(t *testing.T) {
			if err := env.handler.HandleUpdate(context.Background(), update); !errors.Is(err, ErrMalformedUpdate) {
				t.Errorf("expected ErrMalformedUpdate, got %v", err)
			}
		})
	}

	if calls := env.mock.callLog(); len(calls) != 0 {
		t.Errorf("expected no delivery for malformed updates, got %v", calls)
	}
}

func TestPlan_ReferralRequiresNumericCode(t *testing.T) {
	env := newTestEnv(t, domain.KeyboardInline)

	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	properties.Property("secondary exists only for numeric referral codes", prop.ForAll(
		func(chatID int64, code string) bool {
			event := domain.CommandEvent{
				Sender:       domain.Sender{ChatID: chatID, DisplayName: "Bo", Language: "en"},
				Command:      domain.CommandStart,
				ReferralCode: domain.ParseReferralCode("/start ref_" + code),
			}

			dispatch, err := env.router.Plan(event)
			if err != nil {
				return false
			}
			if dispatch.Primary == nil || dispatch.Primary.ChatID != chatID {
				return false
			}
			if event.ReferralCode == "" {
				return dispatch.Secondary == nil
			}
			return dispatch.Secondary != nil && dispatch.Secondary.Keyboard.HasGameLink()
		},
		gen.Int64Range(1, 1<<40),
		gen.OneGenOf(gen.NumString(), gen.AlphaString()),
	))

	properties.Property("every recognized action plans a reply with a game link", prop.ForAll(
		func(idx int, lang string) bool {
			action := domain.Actions[idx]
			dispatch, err := env.router.Plan(domain.CallbackEvent{
				Sender:  domain.Sender{ChatID: 1, DisplayName: "A", Language: lang},
				Data:    string(action),
				Action:  action,
				QueryID: "q",
			})
			if err != nil {
				return false
			}
			return dispatch.AckQueryID == "q" && dispatch.Primary != nil && dispatch.Primary.Keyboard.HasGameLink()
		},
		gen.IntRange(0, len(domain.Actions)-1),
		gen.OneConstOf("en", "ru", "de"),
	))

	properties.TestingRun(t)
}
