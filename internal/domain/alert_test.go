package domain

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestComposeAlertTextExample(t *testing.T) {
	got := ComposeAlertText("Nice try", 50, 100, false, true)
	want := "❌ Неверно. \n\nNice try\n\nОтветили так же: 50% (из 100)."
	if got != want {
		t.Errorf("ComposeAlertText() = %q, want %q", got, want)
	}
}

func TestComposeAlertTextFirstVoter(t *testing.T) {
	got := ComposeAlertText("Correct!", 0, 0, true, true)
	want := "✅ Правильно!\n\nCorrect!\n\nВы ответили первым!"
	if got != want {
		t.Errorf("ComposeAlertText() = %q, want %q", got, want)
	}
}

func TestComposeAlertTextNoHeader(t *testing.T) {
	got := ComposeAlertText("Nice try", 1, 2, true, false)
	if strings.Contains(got, "✅") || strings.Contains(got, "❌") {
		t.Errorf("ComposeAlertText() without header still has a banner: %q", got)
	}
}

func TestComposeAlertTextRounding(t *testing.T) {
	tests := []struct {
		name     string
		matching int
		total    int
		want     string
	}{
		{name: "exact third", matching: 1, total: 3, want: "33%"},
		{name: "two thirds", matching: 2, total: 3, want: "67%"},
		{name: "all", matching: 7, total: 7, want: "100%"},
		{name: "none", matching: 0, total: 5, want: "0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposeAlertText("x", tt.matching, tt.total, false, false)
			if !strings.Contains(got, tt.want) {
				t.Errorf("ComposeAlertText(%d/%d) = %q, want share %q", tt.matching, tt.total, got, tt.want)
			}
		})
	}
}

// The composed alert must stay under the popup ceiling for any
// combination of correctness, totals and shares, as long as the base
// text leaves room for the decoration.
func TestComposeAlertTextCeiling(t *testing.T) {
	base := strings.Repeat("о", 140)

	for _, correct := range []bool{true, false} {
		for _, total := range []int{0, 50, 1000000} {
			for _, matching := range []int{0, total / 2, total} {
				got := ComposeAlertText(base, matching, total, correct, true)
				if !ValidAlertText(got) {
					t.Errorf("alert for matching=%d total=%d correct=%v is %d runes, over the ceiling",
						matching, total, correct, utf8.RuneCountInString(got))
				}
			}
		}
	}
}

func TestValidAlertTextDetectsOnly(t *testing.T) {
	long := strings.Repeat("a", MaxAlertTextLen+1)
	if ValidAlertText(long) {
		t.Error("ValidAlertText() accepted text over the ceiling")
	}
	if !ValidAlertText(strings.Repeat("a", MaxAlertTextLen)) {
		t.Error("ValidAlertText() rejected text exactly at the ceiling")
	}
}

func TestValidPostBody(t *testing.T) {
	if !ValidPostBody(strings.Repeat("я", MaxPostBodyLen)) {
		t.Error("ValidPostBody() rejected a body exactly at the ceiling")
	}
	if ValidPostBody(strings.Repeat("я", MaxPostBodyLen+1)) {
		t.Error("ValidPostBody() accepted a body over the ceiling")
	}
}
