// Package telegram adapts the Telegram Bot API to the transport-neutral
// event and sink contracts of the bot gateway. Nothing outside this
// package imports telebot.
package telegram

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/qzpost/quizbot/internal/gateway/bot"
)

const (
	pollTimeout   = 10 * time.Second
	handleTimeout = 15 * time.Second
)

type Config struct {
	token string
}

func LoadConfig() Config {
	var cfg Config

	cfg.token = os.Getenv("TELEGRAM_TOKEN")
	if cfg.token == "" {
		log.Fatal("Telegram token is not set")
	}

	return cfg
}

// Adapter owns the long-polling connection. Events go to the router,
// replies come back through the Sink methods.
type Adapter struct {
	bot    *tele.Bot
	router *bot.Bot
}

func New(cfg Config) (*Adapter, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.token,
		Poller: &tele.LongPoller{Timeout: pollTimeout},
	})
	if err != nil {
		return nil, err
	}
	return &Adapter{bot: b}, nil
}

// Bind registers the update handlers against the router. Split from New
// so the router can be constructed with the adapter as its sink.
func (a *Adapter) Bind(router *bot.Bot) {
	a.router = router

	a.bot.Handle("/start", a.command("start"))
	a.bot.Handle("/addbutton", a.command("addbutton"))
	a.bot.Handle("/finish", a.command("finish"))
	a.bot.Handle("/cancel", a.command("cancel"))
	a.bot.Handle("/stats", a.command("stats"))

	a.bot.Handle(tele.OnText, func(c tele.Context) error {
		ev := a.baseEvent(c)
		ev.Kind = bot.EventText
		ev.Text = c.Text()
		a.dispatch(ev)
		return nil
	})

	a.bot.Handle(tele.OnPhoto, func(c tele.Context) error {
		photo := c.Message().Photo
		if photo == nil {
			return nil
		}
		ev := a.baseEvent(c)
		ev.Kind = bot.EventPhoto
		ev.PhotoID = photo.FileID
		a.dispatch(ev)
		return nil
	})

	a.bot.Handle(tele.OnCallback, func(c tele.Context) error {
		a.dispatch(callbackEvent(c.Callback()))
		return nil
	})

	a.bot.Handle(tele.OnQuery, func(c tele.Context) error {
		query := c.Query()
		ev := bot.Event{
			UserID:  strconv.FormatInt(query.Sender.ID, 10),
			Kind:    bot.EventInlineQuery,
			QueryID: query.ID,
			Query:   query.Text,
		}
		a.dispatch(ev)
		return nil
	})
}

// Listen blocks polling for updates until the context is cancelled.
func (a *Adapter) Listen(ctx context.Context) {
	go func() {
		<-ctx.Done()
		a.bot.Stop()
	}()
	log.Println("Quiz bot listening now")
	a.bot.Start()
}

func (a *Adapter) Close() {
	a.bot.Stop()
}

func (a *Adapter) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev := a.baseEvent(c)
		ev.Kind = bot.EventCommand
		ev.Command = name
		a.dispatch(ev)
		return nil
	}
}

// callbackEvent builds a click event from a callback query. Callbacks
// on inline-mode messages carry no chat message, only the inline
// message id, so the session id stays empty there. Click handling
// answers through the callback id and never needs the chat.
func callbackEvent(callback *tele.Callback) bot.Event {
	ev := bot.Event{
		UserID:       strconv.FormatInt(callback.Sender.ID, 10),
		Kind:         bot.EventButtonClick,
		CallbackID:   callback.ID,
		CallbackData: callback.Data,
	}
	if callback.Message != nil {
		ev.SessionID = strconv.FormatInt(callback.Message.Chat.ID, 10)
	}
	return ev
}

func (a *Adapter) baseEvent(c tele.Context) bot.Event {
	return bot.Event{
		SessionID: strconv.FormatInt(c.Chat().ID, 10),
		UserID:    strconv.FormatInt(c.Sender().ID, 10),
	}
}

// dispatch runs the router with a bounded context, one goroutine per
// update. Per-session ordering is the router's job, not the poller's.
func (a *Adapter) dispatch(ev bot.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
		defer cancel()
		a.router.HandleEvent(ctx, ev)
	}()
}

type chatRecipient string

func (r chatRecipient) Recipient() string { return string(r) }

func (a *Adapter) SendText(_ context.Context, sessionID, text string, kb *bot.Keyboard) error {
	_, err := a.bot.Send(chatRecipient(sessionID), text, markupFrom(kb))
	return err
}

func (a *Adapter) SendPhoto(_ context.Context, sessionID, photoID string, kb *bot.Keyboard) error {
	photo := &tele.Photo{File: tele.File{FileID: photoID}}
	_, err := a.bot.Send(chatRecipient(sessionID), photo, markupFrom(kb))
	return err
}

func (a *Adapter) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	return a.bot.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{
		Text:      text,
		ShowAlert: alert,
	})
}

func (a *Adapter) AnswerInline(_ context.Context, queryID string, post *bot.InlinePost) error {
	var result tele.Result
	if post.PhotoID != "" {
		result = &tele.PhotoResult{
			Cache:       post.PhotoID,
			Title:       post.Title,
			Description: post.Description,
		}
	} else {
		result = &tele.ArticleResult{
			Title:       post.Title,
			Description: post.Description,
			Text:        post.Text,
		}
	}
	result.SetResultID(post.ID)
	result.SetReplyMarkup(markupFrom(post.Keyboard))

	return a.bot.Answer(&tele.Query{ID: queryID}, &tele.QueryResponse{
		Results: tele.Results{result},
	})
}

func markupFrom(kb *bot.Keyboard) *tele.ReplyMarkup {
	if kb == nil {
		return &tele.ReplyMarkup{}
	}

	markup := &tele.ReplyMarkup{}
	for _, row := range kb.Inline {
		buttons := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tele.InlineButton{
				Text:        btn.Text,
				Data:        btn.Data,
				InlineQuery: btn.InlineQuery,
			})
		}
		markup.InlineKeyboard = append(markup.InlineKeyboard, buttons)
	}
	if len(kb.ReplyKeys) > 0 {
		row := make([]tele.ReplyButton, 0, len(kb.ReplyKeys))
		for _, key := range kb.ReplyKeys {
			row = append(row, tele.ReplyButton{Text: key})
		}
		markup.ReplyKeyboard = [][]tele.ReplyButton{row}
		markup.ResizeKeyboard = true
	}
	markup.RemoveKeyboard = kb.RemoveReply
	return markup
}

var _ bot.Sink = (*Adapter)(nil)
