package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/usecase"
)

// EventKind classifies inbound chat events.
type EventKind int

const (
	EventText EventKind = iota
	EventPhoto
	EventCommand
	EventButtonClick
	EventInlineQuery
)

// Event - one inbound chat event, already stripped of transport
// details. SessionID identifies the authoring dialogue (the chat),
// UserID the end-user behind it.
type Event struct {
	SessionID string
	UserID    string
	Kind      EventKind
	Text      string
	PhotoID   string
	Command   string
	// CallbackID - transport handle for answering a button click.
	CallbackID   string
	CallbackData string
	// QueryID - transport handle for answering an inline query.
	QueryID string
	Query   string
}

// InlineButton - one button of an inline keyboard. Exactly one of Data
// and InlineQuery is set.
type InlineButton struct {
	Text string
	Data string
	// InlineQuery - switch-inline-query payload for share buttons.
	InlineQuery string
}

// Keyboard - outbound keyboard: inline rows under a message,
// one-shot reply keys, or an instruction to drop the reply keyboard.
type Keyboard struct {
	Inline      [][]InlineButton
	ReplyKeys   []string
	RemoveReply bool
}

// InlinePost - a post preview offered as an inline query result.
type InlinePost struct {
	ID          string
	Title       string
	Description string
	Text        string
	PhotoID     string
	Keyboard    *Keyboard
}

// Sink is the outbound half of the chat transport.
type Sink interface {
	SendText(ctx context.Context, sessionID, text string, kb *Keyboard) error
	SendPhoto(ctx context.Context, sessionID, photoID string, kb *Keyboard) error
	// AnswerCallback shows a transient per-user acknowledgment, as a
	// popup alert when alert is set.
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	AnswerInline(ctx context.Context, queryID string, post *InlinePost) error
}

const (
	msgGreeting        = "Hi! Send me arbitrary post (image or text)!"
	msgContentAccepted = "Great, I've got a post content from you! Now add buttons with /addbutton command."
	msgSendButtonText  = "Send me the button text!"
	msgSendAlertText   = "Fine. Now send me the alert text to be shown when the button is pressed by user."
	msgButtonAdded     = "Great, the button %s added! Now either /addbutton or /finish post creation."
	msgChooseCorrect   = "Choose correct answer:"
	msgNoSuchAnswer    = "No such answer, choose correct one from keyboard!"
	msgPublished       = "Fine, here is your new post:"
	msgCanceled        = "You canceled post creation. Just send me another one when you're back!"
	msgEditingHint     = "Either /addbutton or /finish post creation."
	msgDuplicateButton = "You already have a button with this text. Send me another one!"
	msgBadButtonKey    = "This text can not be a button. Send me another one!"
	msgBodyTooLong     = "This post is too long for a single message. Send me a shorter one!"
	msgNoButtons       = "Add at least one button with /addbutton before finishing."
	msgWrongState      = "I did not expect that here. Use /start to begin a new post."
	msgNoPosts         = "You have no posts yet!"
	msgTryAgain        = "Something went wrong. Try again"

	alertAnswerLocked = "Ответ нельзя изменить!"
	alertPostMissing  = "Пост не найден в базе данных. Обратитесь к разработчику."
	alertStatsMissing = "Post has not been found. Approach the developer."

	btnPublish    = "Publish to channel"
	btnStatistics = "Post statistics"

	inlineTitle = "New post"
)

// Bot routes inbound events to the authoring machine, the vote ledger
// and the statistics reader, and renders their outcomes back through
// the sink. Events of one session are processed strictly one at a time;
// distinct sessions run in parallel.
type Bot struct {
	authoring *usecase.Authoring
	ledger    *usecase.Ledger
	stats     *usecase.Stats
	sink      Sink
	sessions  lockTable
}

func New(authoring *usecase.Authoring, ledger *usecase.Ledger, stats *usecase.Stats, sink Sink) *Bot {
	return &Bot{
		authoring: authoring,
		ledger:    ledger,
		stats:     stats,
		sink:      sink,
		sessions:  newLockTable(),
	}
}

// HandleEvent processes one inbound event to completion, replies
// included. Safe for concurrent use.
func (b *Bot) HandleEvent(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventText, EventPhoto, EventCommand:
		unlock := b.sessions.lock(ev.SessionID)
		defer unlock()
		b.handleAuthoring(ctx, ev)
	case EventButtonClick:
		b.handleClick(ctx, ev)
	case EventInlineQuery:
		b.handleInlineQuery(ctx, ev)
	}
}

func (b *Bot) handleAuthoring(ctx context.Context, ev Event) {
	var reply usecase.Reply
	var err error

	switch {
	case ev.Kind == EventCommand && ev.Command == "start":
		reply, err = b.authoring.Start(ctx, ev.SessionID, ev.UserID)
	case ev.Kind == EventCommand && ev.Command == "addbutton":
		reply, err = b.authoring.AddButton(ctx, ev.SessionID, ev.UserID)
	case ev.Kind == EventCommand && ev.Command == "finish":
		reply, err = b.authoring.Finish(ctx, ev.SessionID, ev.UserID)
	case ev.Kind == EventCommand && ev.Command == "cancel":
		reply, err = b.authoring.Cancel(ctx, ev.SessionID, ev.UserID)
	case ev.Kind == EventCommand && ev.Command == "stats":
		b.handleUserStats(ctx, ev)
		return
	case ev.Kind == EventCommand:
		return
	case ev.Kind == EventPhoto:
		reply, err = b.authoring.HandlePhoto(ctx, ev.SessionID, ev.UserID, ev.PhotoID)
	default:
		reply, err = b.authoring.HandleText(ctx, ev.SessionID, ev.UserID, ev.Text)
	}

	if err != nil {
		b.respond(ctx, ev.SessionID, authoringFailureText(err), nil)
		return
	}
	b.renderReply(ctx, ev.SessionID, reply)
}

// authoringFailureText maps a non-success authoring outcome to its
// reprompt. The machine has already refused to advance, the reply is
// all that is left to do.
func authoringFailureText(err error) string {
	switch {
	case errors.Is(err, domain.ErrDuplicateButton):
		return msgDuplicateButton
	case errors.Is(err, domain.ErrInvalidButtonKey):
		return msgBadButtonKey
	case errors.Is(err, domain.ErrUnknownAnswer):
		return msgNoSuchAnswer
	case errors.Is(err, domain.ErrNoButtons):
		return msgNoButtons
	case errors.Is(err, usecase.ErrBodyTooLong):
		return msgBodyTooLong
	case errors.Is(err, usecase.ErrWrongState):
		return msgWrongState
	default:
		log.Printf("Authoring step failed: %v\n", err)
		return msgTryAgain
	}
}

func (b *Bot) renderReply(ctx context.Context, sessionID string, reply usecase.Reply) {
	switch reply.Step {
	case usecase.StepPromptPost:
		b.respond(ctx, sessionID, msgGreeting, nil)
	case usecase.StepContentAccepted:
		b.respond(ctx, sessionID, msgContentAccepted, nil)
	case usecase.StepPromptButtonKey:
		b.respond(ctx, sessionID, msgSendButtonText, nil)
	case usecase.StepPromptAlertText:
		b.respond(ctx, sessionID, msgSendAlertText, nil)
	case usecase.StepButtonAdded:
		b.respond(ctx, sessionID, fmt.Sprintf(msgButtonAdded, reply.ButtonKey), nil)
	case usecase.StepChooseCorrect:
		b.respond(ctx, sessionID, msgChooseCorrect, &Keyboard{ReplyKeys: reply.Keys})
	case usecase.StepPublished:
		b.respond(ctx, sessionID, msgPublished, &Keyboard{RemoveReply: true})
		b.renderPost(ctx, sessionID, reply.Post)
	case usecase.StepCanceled:
		b.respond(ctx, sessionID, msgCanceled, &Keyboard{RemoveReply: true})
	case usecase.StepEditingHint:
		b.respond(ctx, sessionID, msgEditingHint, nil)
	}
}

// renderPost shows the freshly published post to its author with the
// quiz keyboard plus the publish and statistics rows.
func (b *Bot) renderPost(ctx context.Context, sessionID string, post *domain.Post) {
	kb := quizKeyboard(post)
	kb.Inline = append(kb.Inline, []InlineButton{{
		Text:        btnPublish,
		InlineQuery: "#" + post.ID,
	}})
	kb.Inline = append(kb.Inline, []InlineButton{{
		Text: btnStatistics,
		Data: domain.EncodeCallback(post.ID, domain.StatsKey),
	}})

	kind, err := post.Kind()
	if err != nil {
		log.Printf("Refusing to render invalid post %s: %v\n", post.ID, err)
		return
	}
	switch kind {
	case domain.KindText:
		b.respond(ctx, sessionID, post.Text, kb)
	case domain.KindPhoto:
		if err = b.sink.SendPhoto(ctx, sessionID, post.PhotoID, kb); err != nil {
			log.Printf("Could not send photo post: session=%s; %v\n", sessionID, err)
		}
	}
}

func (b *Bot) handleClick(ctx context.Context, ev Event) {
	postID, key, err := domain.ParseCallback(ev.CallbackData)
	if err != nil {
		log.Printf("Malformed callback token %q: %v\n", ev.CallbackData, err)
		return
	}
	if key == domain.StatsKey {
		b.handlePostStats(ctx, ev, postID)
		return
	}

	feedback, err := b.ledger.ProcessClick(ctx, ev.UserID, postID, key)
	switch {
	case errors.Is(err, usecase.ErrAnswerLocked):
		b.answer(ctx, ev.CallbackID, alertAnswerLocked, false)
	case errors.Is(err, usecase.ErrPostNotFound):
		b.answer(ctx, ev.CallbackID, alertPostMissing, false)
	case err != nil:
		log.Printf("Could not process click: user=%s; post=%s; %v\n", ev.UserID, postID, err)
		b.answer(ctx, ev.CallbackID, msgTryAgain, false)
	default:
		b.answer(ctx, ev.CallbackID, clampAlert(feedback.Text), true)
	}
}

func (b *Bot) handlePostStats(ctx context.Context, ev Event, postID string) {
	clicks, correct, err := b.stats.PostSummary(ctx, postID)
	if err != nil {
		log.Printf("Could not read post statistics: post=%s; %v\n", postID, err)
		b.answer(ctx, ev.CallbackID, alertStatsMissing, false)
		return
	}
	b.answer(ctx, ev.CallbackID, fmt.Sprintf("Правильных ответов: %d / %d", correct, clicks), true)
}

func (b *Bot) handleUserStats(ctx context.Context, ev Event) {
	summary, err := b.stats.UserSummary(ctx, ev.UserID)
	if errors.Is(err, usecase.ErrNoPosts) {
		b.respond(ctx, ev.SessionID, msgNoPosts, nil)
		return
	}
	if err != nil {
		log.Printf("Could not read user statistics: user=%s; %v\n", ev.UserID, err)
		b.respond(ctx, ev.SessionID, msgTryAgain, nil)
		return
	}

	average := float64(summary.Clicks) / float64(summary.PostsAuthored)
	percent := 0
	if summary.Clicks > 0 {
		percent = int(math.Round(float64(summary.CorrectClicks) / float64(summary.Clicks) * 100))
	}
	b.respond(ctx, ev.SessionID, fmt.Sprintf(
		"Statistics of your posts:\n"+
			"  - Total number: %d\n"+
			"  - Average users answers per post: %.1f\n"+
			"  - Average correct answers: %d%%",
		summary.PostsAuthored, average, percent), nil)
}

// handleInlineQuery serves the publish surface: "#<postID>" resolves to
// a ready-to-send copy of the post with its quiz keyboard.
func (b *Bot) handleInlineQuery(ctx context.Context, ev Event) {
	if !strings.HasPrefix(ev.Query, "#") {
		return
	}
	postID := strings.TrimPrefix(ev.Query, "#")

	post, err := b.stats.Post(ctx, postID)
	if err != nil {
		log.Printf("Could not resolve inline query %q: %v\n", ev.Query, err)
		return
	}
	summary, err := post.ContentSummary()
	if err != nil {
		log.Printf("Refusing to offer invalid post %s inline: %v\n", post.ID, err)
		return
	}

	result := &InlinePost{
		ID:          post.ID,
		Title:       inlineTitle,
		Description: "Create new post with " + summary,
		Text:        post.Text,
		PhotoID:     post.PhotoID,
		Keyboard:    quizKeyboard(post),
	}
	if err = b.sink.AnswerInline(ctx, ev.QueryID, result); err != nil {
		log.Printf("Could not answer inline query %q: %v\n", ev.Query, err)
	}
}

func quizKeyboard(post *domain.Post) *Keyboard {
	options := post.Keyboard()
	if len(options) == 0 {
		return &Keyboard{}
	}
	row := make([]InlineButton, 0, len(options))
	for _, opt := range options {
		row = append(row, InlineButton{Text: opt.Label, Data: opt.Token})
	}
	return &Keyboard{Inline: [][]InlineButton{row}}
}

// clampAlert truncates feedback that would not fit the alert popup. The
// text policy only detects overflow, the cut happens here at the edge.
func clampAlert(text string) string {
	if domain.ValidAlertText(text) {
		return text
	}
	runes := []rune(text)
	return string(runes[:domain.MaxAlertTextLen])
}

func (b *Bot) respond(ctx context.Context, sessionID, text string, kb *Keyboard) {
	if err := b.sink.SendText(ctx, sessionID, text, kb); err != nil {
		log.Printf("Could not respond: session=%s; msg=%q; %v\n", sessionID, text, err)
	}
}

func (b *Bot) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.sink.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		log.Printf("Could not answer callback %s: %v\n", callbackID, err)
	}
}
