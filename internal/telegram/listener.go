package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rusneurosoft/neuro-connector/internal/flow"
)

const pollTimeout = 30 // seconds

// UserSaver records every user who starts the bot.
type UserSaver interface {
	SaveUser(ctx context.Context, telegramID int64, firstName, lastName, username, languageCode string) error
}

// Listener polls for updates, normalizes them into flow events and renders
// the engine's replies back to Telegram. Updates for different chats are
// handled concurrently; the engine serializes per session.
type Listener struct {
	bot       *Client
	engine    *flow.Engine
	users     UserSaver
	webAppURL string
	log       zerolog.Logger
}

func NewListener(bot *Client, engine *flow.Engine, users UserSaver, webAppURL string, log zerolog.Logger) *Listener {
	return &Listener{
		bot:       bot,
		engine:    engine,
		users:     users,
		webAppURL: webAppURL,
		log:       log,
	}
}

// RegisterCommands publishes the command menu.
func (l *Listener) RegisterCommands(ctx context.Context) error {
	return l.bot.SetMyCommands(ctx, []BotCommand{
		{Command: "start", Description: "Начать диалог"},
		{Command: "roulette", Description: "Крутить AI рулетку"},
		{Command: "cancel", Description: "Отменить диалог"},
	})
}

// Run polls until the context is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	var offset int64
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := l.bot.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.log.Error().Err(err).Msg("get updates failed")
			time.Sleep(3 * time.Second)
			continue
		}

		for _, u := range updates {
			offset = u.UpdateID + 1
			update := u
			go l.handleUpdate(ctx, update)
		}
	}
}

func (l *Listener) handleUpdate(ctx context.Context, u Update) {
	switch {
	case u.CallbackQuery != nil:
		l.handleCallback(ctx, *u.CallbackQuery)
	case u.Message != nil:
		l.handleMessage(ctx, *u.Message)
	}
}

func (l *Listener) handleCallback(ctx context.Context, cb CallbackQuery) {
	if err := l.bot.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		l.log.Warn().Err(err).Msg("answer callback failed")
	}
	if cb.Message == nil {
		return
	}

	ev := flow.Event{
		UserID:    cb.From.ID,
		FirstName: cb.From.FirstName,
		Username:  cb.From.Username,
		Kind:      flow.EventButton,
		Code:      cb.Data,
	}
	l.dispatch(ctx, cb.Message.Chat.ID, ev)
}

func (l *Listener) handleMessage(ctx context.Context, msg Message) {
	if msg.From == nil {
		return
	}
	chatID := msg.Chat.ID

	if msg.WebAppData != nil {
		l.handleWebAppResult(ctx, chatID, *msg.WebAppData)
		return
	}

	ev := flow.Event{
		UserID:    msg.From.ID,
		FirstName: msg.From.FirstName,
		Username:  msg.From.Username,
	}

	switch {
	case msg.Text == "/start" || strings.HasPrefix(msg.Text, "/start "):
		if err := l.users.SaveUser(ctx, msg.From.ID, msg.From.FirstName, msg.From.LastName, msg.From.Username, msg.From.LanguageCode); err != nil {
			l.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("save user failed")
		}
		ev.Kind = flow.EventStart

	case msg.Text == "/cancel":
		ev.Kind = flow.EventCancel

	case msg.Text == "/roulette":
		l.sendRouletteInvite(ctx, chatID)
		return

	case msg.Contact != nil:
		ev.Kind = flow.EventContact
		ev.Contact = &flow.SharedContact{
			Phone:     msg.Contact.PhoneNumber,
			FirstName: msg.Contact.FirstName,
		}

	case msg.Voice != nil:
		ev.Kind = flow.EventVoice
		ev.Voice = flow.VoiceRef{FileID: msg.Voice.FileID, Duration: msg.Voice.Duration}

	default:
		ev.Kind = flow.EventText
		ev.Text = strings.TrimSpace(msg.Text)
	}

	l.dispatch(ctx, chatID, ev)
}

func (l *Listener) dispatch(ctx context.Context, chatID int64, ev flow.Event) {
	for _, reply := range l.engine.HandleEvent(ctx, ev) {
		if err := l.bot.SendMessage(ctx, chatID, reply.Text, l.markup(reply)); err != nil {
			l.log.Error().Err(err).Int64("chat_id", chatID).Msg("send reply failed")
		}
	}
}

// markup translates the engine's transport-neutral reply into the concrete
// Telegram keyboard.
func (l *Listener) markup(reply flow.Reply) any {
	if reply.RequestContact {
		return ReplyKeyboardMarkup{
			Keyboard: [][]KeyboardButton{
				{{Text: flow.ShareContactLabel, RequestContact: true}},
				{{Text: flow.ManualContactLabel}},
			},
			ResizeKeyboard:  true,
			OneTimeKeyboard: true,
		}
	}

	if len(reply.Buttons) > 0 {
		rows := make([][]InlineKeyboardButton, 0, len(reply.Buttons))
		for _, row := range reply.Buttons {
			btns := make([]InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				btn := InlineKeyboardButton{Text: b.Label}
				switch {
				case b.WebAppURL != "":
					btn.WebApp = &WebAppInfo{URL: b.WebAppURL}
				case b.URL != "":
					btn.URL = b.URL
				default:
					btn.CallbackData = b.Code
				}
				btns = append(btns, btn)
			}
			rows = append(rows, btns)
		}
		return InlineKeyboardMarkup{InlineKeyboard: rows}
	}

	if reply.RemoveKeyboard {
		return ReplyKeyboardRemove{RemoveKeyboard: true}
	}
	return nil
}

// ----- roulette -----

func (l *Listener) sendRouletteInvite(ctx context.Context, chatID int64) {
	if l.webAppURL == "" {
		return
	}
	text := "🎰 **AI Рулетка**\n\nИспытайте удачу и выиграйте до **30 000 ₽** на услуги нашей компании!"
	markup := InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "🎰 Крутить рулетку", WebApp: &WebAppInfo{URL: l.webAppURL}}},
	}}
	if err := l.bot.SendMessage(ctx, chatID, text, markup); err != nil {
		l.log.Error().Err(err).Int64("chat_id", chatID).Msg("send roulette invite failed")
	}
}

type rouletteResult struct {
	Prize int `json:"prize"`
}

// handleWebAppResult congratulates the user with the prize the mini app
// reported back through the main button.
func (l *Listener) handleWebAppResult(ctx context.Context, chatID int64, data WebAppData) {
	var res rouletteResult
	if err := json.Unmarshal([]byte(data.Data), &res); err != nil || res.Prize <= 0 {
		l.log.Warn().Str("data", data.Data).Msg("unparseable web app payload")
		return
	}

	text := fmt.Sprintf(`🎉 **Поздравляем!**

Вы выиграли **%d ₽** на услуги нашей компании!

Приз закреплен за вашим аккаунтом. Наш менеджер свяжется с вами, чтобы обсудить, как его использовать.`, res.Prize)

	markup := InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "💰 Расчет стоимости проекта", CallbackData: "request_cost_calculation"}},
		{{Text: "🏠 В главное меню", CallbackData: "back_to_roles"}},
	}}
	if err := l.bot.SendMessage(ctx, chatID, text, markup); err != nil {
		l.log.Error().Err(err).Int64("chat_id", chatID).Msg("send prize message failed")
	}
}
