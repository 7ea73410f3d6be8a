package domain

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// MaxPostBodyLen - outbound-message ceiling of the chat platform.
	MaxPostBodyLen = 4096
	// MaxAlertTextLen - ceiling for the per-click alert popup.
	MaxAlertTextLen = 200
)

const (
	correctBanner   = "✅ Правильно!\n\n"
	incorrectBanner = "❌ Неверно. \n\n"
	firstVoterLine  = "\n\nВы ответили первым!"
)

// ValidPostBody reports whether a post body fits the outbound-message
// ceiling.
func ValidPostBody(text string) bool {
	return utf8.RuneCountInString(text) <= MaxPostBodyLen
}

// ValidAlertText reports whether an alert fits the popup ceiling. The
// policy only detects, truncation is up to the caller.
func ValidAlertText(text string) bool {
	return utf8.RuneCountInString(text) <= MaxAlertTextLen
}

// ComposeAlertText formats the feedback shown to a voter. matching and
// total are the button's and the post's click counts after the vote was
// recorded. Pure function: same inputs, same output.
func ComposeAlertText(base string, matching, total int, correct, header bool) string {
	text := base
	if header {
		if correct {
			text = correctBanner + text
		} else {
			text = incorrectBanner + text
		}
	}

	if total == 0 {
		return text + firstVoterLine
	}
	percent := int(math.Round(float64(matching) / float64(total) * 100))
	return text + fmt.Sprintf("\n\nОтветили так же: %d%% (из %d).", percent, total)
}
