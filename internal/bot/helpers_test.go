package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/ad/tonblast-bot/internal/domain"
	"github.com/ad/tonblast-bot/internal/locale"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const testGameURL = "https://ton-blast-game.vercel.app"

// capturingLogger implements domain.Logger and captures log entries
type capturingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level   string
	message string
	fields  map[string]interface{}
}

func (l *capturingLogger) Debug(msg string, args ...interface{}) {
	l.capture("DEBUG", msg, args...)
}

func (l *capturingLogger) Info(msg string, args ...interface{}) {
	l.capture("INFO", msg, args...)
}

func (l *capturingLogger) Warn(msg string, args ...interface{}) {
	l.capture("WARN", msg, args...)
}

func (l *capturingLogger) Error(msg string, args ...interface{}) {
	l.capture("ERROR", msg, args...)
}

func (l *capturingLogger) capture(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fields := make(map[string]interface{})
	for i := 0; i < len(args)-1; i += 2 {
		key := fmt.Sprintf("%v", args[i])
		fields[key] = args[i+1]
	}

	l.entries = append(l.entries, logEntry{
		level:   level,
		message: msg,
		fields:  fields,
	})
}

func (l *capturingLogger) getEntries() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry{}, l.entries...)
}

func (l *capturingLogger) hasMessage(level, msg string) bool {
	for _, e := range l.getEntries() {
		if e.level == level && e.message == msg {
			return true
		}
	}
	return false
}

// MockBot records outbound calls in order and can fail for selected chats
type MockBot struct {
	mu          sync.Mutex
	calls       []string
	sent        []MockSentMessage
	answered    []string
	failChats   map[int64]bool
	failAnswers bool
}

type MockSentMessage struct {
	ChatID      int64
	Text        string
	ParseMode   models.ParseMode
	ReplyMarkup models.ReplyMarkup
}

func (m *MockBot) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	chatID, _ := params.ChatID.(int64)
	m.calls = append(m.calls, fmt.Sprintf("sendMessage:%d", chatID))
	if m.failChats[chatID] {
		return nil, errors.New("Bad Request: chat not found")
	}

	m.sent = append(m.sent, MockSentMessage{
		ChatID:      chatID,
		Text:        params.Text,
		ParseMode:   params.ParseMode,
		ReplyMarkup: params.ReplyMarkup,
	})
	return &models.Message{ID: len(m.sent)}, nil
}

func (m *MockBot) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, "answerCallbackQuery:"+params.CallbackQueryID)
	if m.failAnswers {
		return false, errors.New("Bad Request: query is too old")
	}
	m.answered = append(m.answered, params.CallbackQueryID)
	return true, nil
}

func (m *MockBot) sentMessages() []MockSentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockSentMessage{}, m.sent...)
}

func (m *MockBot) callLog() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.calls...)
}

var (
	testCatalogOnce sync.Once
	testCatalog     *locale.Catalog
	testCatalogErr  error
)

func newTestCatalog(t *testing.T) *locale.Catalog {
	t.Helper()
	testCatalogOnce.Do(func() {
		testCatalog, testCatalogErr = locale.NewCatalog()
	})
	if testCatalogErr != nil {
		t.Fatalf("failed to build catalog: %v", testCatalogErr)
	}
	return testCatalog
}

func newTestResolver(t *testing.T, style domain.KeyboardStyle) *Resolver {
	t.Helper()
	r, err := NewResolver(newTestCatalog(t), testGameURL, style)
	if err != nil {
		t.Fatalf("failed to create resolver: %v", err)
	}
	return r
}

type testEnv struct {
	mock    *MockBot
	logger  *capturingLogger
	router  *Router
	handler *BotHandler
}

func newTestEnv(t *testing.T, style domain.KeyboardStyle) *testEnv {
	t.Helper()
	mock := &MockBot{failChats: map[int64]bool{}}
	logger := &capturingLogger{}
	resolver := newTestResolver(t, style)
	router := NewRouter(resolver, domain.NewReferralService("tonblast_bot"), NewSender(mock, logger), logger)
	return &testEnv{
		mock:    mock,
		logger:  logger,
		router:  router,
		handler: NewBotHandler(NewClassifier(style, resolver), router, logger),
	}
}

func localized(t *testing.T, lang, id string, fields ...string) string {
	t.Helper()
	text, err := newTestCatalog(t).For(lang).LocalizeWithTemplate(id, fields...)
	if err != nil {
		t.Fatalf("failed to localize %s: %v", id, err)
	}
	return text
}

func textUpdate(chatID int64, firstName, lang, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   1,
			Chat: models.Chat{ID: chatID},
			From: &models.User{ID: chatID, FirstName: firstName, LanguageCode: lang},
			Text: text,
		},
	}
}

func callbackUpdate(chatID int64, firstName, lang, queryID, data string) *models.Update {
	return &models.Update{
		ID: 2,
		CallbackQuery: &models.CallbackQuery{
			ID:   queryID,
			From: models.User{ID: chatID, FirstName: firstName, LanguageCode: lang},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: chatID}},
			},
			Data: data,
		},
	}
}
