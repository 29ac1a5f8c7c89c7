package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ad/translit"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
)

const (
	callbackPrefix = "schema:"

	callbackDataLimit = 64
	messageTextLimit  = 4096

	keyboardColumns = 2
)

type app struct {
	registry *translit.Registry
	fallback string
	log      *slog.Logger

	mu    sync.Mutex
	chats map[int64]string
}

func newApp(registry *translit.Registry, fallback string, log *slog.Logger) (*app, error) {
	s, err := registry.Lookup(fallback)
	if err != nil {
		return nil, err
	}

	return &app{
		registry: registry,
		fallback: s.Name(),
		log:      log,
		chats:    map[int64]string{},
	}, nil
}

func (a *app) schemaFor(chatID int64) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if name, ok := a.chats[chatID]; ok {
		return name
	}

	return a.fallback
}

func (a *app) selectSchema(chatID int64, name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.chats[chatID] = name
}

func (a *app) handler(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		a.handleCallback(ctx, b, update.CallbackQuery)

		return
	}

	if update.Message == nil || update.Message.Text == "" {
		a.log.Debug("skipping update", "id", update.ID)

		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text

	command, arg := parseCommand(text)
	switch command {
	case "/start", "/schemas":
		a.send(ctx, b, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        fmt.Sprintf("Send me Cyrillic text and I will reply in Latin.\nCurrent schema: %s", a.schemaFor(chatID)),
			ReplyMarkup: a.keyboard(a.schemaFor(chatID)),
		})
	case "/schema":
		a.send(ctx, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   a.describe(lo.Ternary(arg != "", arg, a.schemaFor(chatID))),
		})
	default:
		a.send(ctx, b, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   a.translate(chatID, text),
		})
	}
}

func (a *app) handleCallback(ctx context.Context, b *bot.Bot, query *models.CallbackQuery) {
	answer := &bot.AnswerCallbackQueryParams{CallbackQueryID: query.ID}

	name, ok := strings.CutPrefix(query.Data, callbackPrefix)
	if !ok {
		a.log.Warn("unexpected callback", "data", query.Data)
		a.answer(ctx, b, answer)

		return
	}

	s, err := a.registry.Lookup(name)
	if err != nil {
		answer.Text = err.Error()
		a.answer(ctx, b, answer)

		return
	}

	msg := query.Message.Message
	if msg == nil {
		answer.Text = "message is no longer available"
		a.answer(ctx, b, answer)

		return
	}

	a.selectSchema(msg.Chat.ID, s.Name())
	a.log.Info("schema selected", "chat", msg.Chat.ID, "user", query.From.ID, "schema", s.Name())

	answer.Text = s.Name()
	a.answer(ctx, b, answer)

	_, err = b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      msg.Chat.ID,
		MessageID:   msg.ID,
		Text:        fmt.Sprintf("Current schema: %s\n%s", s.Name(), s.Description()),
		ReplyMarkup: a.keyboard(s.Name()),
	})
	if err != nil {
		a.log.Error("edit message", "chat", msg.Chat.ID, "error", err)
	}
}

func (a *app) keyboard(current string) *models.InlineKeyboardMarkup {
	buttons := lo.FilterMap(a.registry.Names(), func(name string, _ int) (models.InlineKeyboardButton, bool) {
		data := callbackPrefix + name
		if !checkStringLimit(data, callbackDataLimit) {
			return models.InlineKeyboardButton{}, false
		}

		text := name
		if name == current {
			text = "✅ " + name
		}

		return models.InlineKeyboardButton{Text: text, CallbackData: data}, true
	})

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: lo.Chunk(buttons, keyboardColumns),
	}
}

func (a *app) describe(name string) string {
	data, err := a.registry.Source(name)
	if err != nil {
		return err.Error()
	}

	text := minifyJson(data)
	if !checkStringLimit(text, messageTextLimit) {
		return fmt.Sprintf("schema %s is too large to show here", name)
	}

	return text
}

func (a *app) translate(chatID int64, text string) string {
	name := a.schemaFor(chatID)

	out, err := a.registry.Translate(text, name)
	if err != nil {
		a.log.Error("translate", "chat", chatID, "schema", name, "error", err)

		return err.Error()
	}

	if !checkStringLimit(out, messageTextLimit) {
		return "the transliteration is too long for one message"
	}

	return out
}

func (a *app) send(ctx context.Context, b *bot.Bot, params *bot.SendMessageParams) {
	if _, err := b.SendMessage(ctx, params); err != nil {
		a.log.Error("send message", "chat", params.ChatID, "error", err)
	}
}

func (a *app) answer(ctx context.Context, b *bot.Bot, params *bot.AnswerCallbackQueryParams) {
	if _, err := b.AnswerCallbackQuery(ctx, params); err != nil {
		a.log.Error("answer callback", "id", params.CallbackQueryID, "error", err)
	}
}

// parseCommand splits "/cmd@bot arg" into "/cmd" and "arg". Plain text yields
// an empty command.
func parseCommand(text string) (string, string) {
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}

	command, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	command, _, _ = strings.Cut(command, "@")

	return strings.ToLower(command), strings.TrimSpace(arg)
}
