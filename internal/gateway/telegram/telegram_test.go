package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v3"

	"github.com/qzpost/quizbot/internal/gateway/bot"
)

func TestCallbackEventFromChatMessage(t *testing.T) {
	ev := callbackEvent(&tele.Callback{
		ID:      "cb-1",
		Sender:  &tele.User{ID: 7},
		Message: &tele.Message{Chat: &tele.Chat{ID: 42}},
		Data:    "post-1|Paris",
	})

	want := bot.Event{
		SessionID:    "42",
		UserID:       "7",
		Kind:         bot.EventButtonClick,
		CallbackID:   "cb-1",
		CallbackData: "post-1|Paris",
	}
	if ev != want {
		t.Errorf("callbackEvent() = %+v, want %+v", ev, want)
	}
}

// A click on a post published through an inline query arrives with only
// the inline message id set, there is no chat message behind it.
func TestCallbackEventFromInlineMessage(t *testing.T) {
	ev := callbackEvent(&tele.Callback{
		ID:        "cb-2",
		Sender:    &tele.User{ID: 7},
		MessageID: "inline-1",
		Data:      "post-1|Paris",
	})

	if ev.SessionID != "" {
		t.Errorf("session id = %q, want empty", ev.SessionID)
	}
	if ev.UserID != "7" || ev.CallbackID != "cb-2" || ev.CallbackData != "post-1|Paris" {
		t.Errorf("callbackEvent() = %+v", ev)
	}
}
