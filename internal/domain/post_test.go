package domain

import (
	"errors"
	"testing"
)

func TestPostKind(t *testing.T) {
	tests := []struct {
		name    string
		post    Post
		want    PostKind
		wantErr bool
	}{
		{name: "text", post: Post{Text: "hello"}, want: KindText},
		{name: "photo", post: Post{PhotoID: "file-1"}, want: KindPhoto},
		{name: "both", post: Post{Text: "hello", PhotoID: "file-1"}, wantErr: true},
		{name: "neither", post: Post{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.post.Kind()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidPost) {
					t.Fatalf("Kind() error = %v, want ErrInvalidPost", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Kind() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPostKeyboard(t *testing.T) {
	post := Post{
		ID: "post-1",
		Buttons: []Button{
			{Key: "Paris"},
			{Key: "Lyon"},
		},
	}

	options := post.Keyboard()
	if len(options) != 2 {
		t.Fatalf("Keyboard() returned %d options, want 2", len(options))
	}
	if options[0].Label != "Paris" || options[1].Label != "Lyon" {
		t.Errorf("Keyboard() order broken: %v", options)
	}

	postID, key, err := ParseCallback(options[1].Token)
	if err != nil {
		t.Fatalf("ParseCallback(%q) failed: %v", options[1].Token, err)
	}
	if postID != "post-1" || key != "Lyon" {
		t.Errorf("token round-trip gave (%q, %q)", postID, key)
	}
}

func TestPostKeyboardEmpty(t *testing.T) {
	post := Post{ID: "post-1"}
	if options := post.Keyboard(); len(options) != 0 {
		t.Errorf("Keyboard() on buttonless post = %v, want empty", options)
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	token := EncodeCallback("post-1", "Paris")
	postID, key, err := ParseCallback(token)
	if err != nil {
		t.Fatalf("ParseCallback() failed: %v", err)
	}
	if postID != "post-1" || key != "Paris" {
		t.Errorf("round trip gave (%q, %q)", postID, key)
	}
}

// A separator that slipped into the key must not shift the post id.
func TestCallbackSeparatorInKey(t *testing.T) {
	token := EncodeCallback("post-1", "a|b")
	postID, key, err := ParseCallback(token)
	if err != nil {
		t.Fatalf("ParseCallback() failed: %v", err)
	}
	if postID != "post-1" || key != "a|b" {
		t.Errorf("round trip gave (%q, %q)", postID, key)
	}
}

func TestParseCallbackMalformed(t *testing.T) {
	for _, token := range []string{"", "no-separator", "|", "post-1|", "|key"} {
		if _, _, err := ParseCallback(token); !errors.Is(err, ErrBadCallback) {
			t.Errorf("ParseCallback(%q) error = %v, want ErrBadCallback", token, err)
		}
	}
}

func TestValidButtonKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{key: "Paris", want: true},
		{key: "two words", want: true},
		{key: "", want: false},
		{key: "a|b", want: false},
		{key: StatsKey, want: false},
	}
	for _, tt := range tests {
		if got := ValidButtonKey(tt.key); got != tt.want {
			t.Errorf("ValidButtonKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestContentSummary(t *testing.T) {
	post := Post{Text: "Capital of France?", Buttons: []Button{{Key: "Paris"}, {Key: "Lyon"}}}
	got, err := post.ContentSummary()
	if err != nil {
		t.Fatalf("ContentSummary() failed: %v", err)
	}
	want := `text "Capital of France?" with 2 buttons`
	if got != want {
		t.Errorf("ContentSummary() = %q, want %q", got, want)
	}

	photo := Post{PhotoID: "file-1", Buttons: []Button{{Key: "Yes"}}}
	got, err = photo.ContentSummary()
	if err != nil {
		t.Fatalf("ContentSummary() failed: %v", err)
	}
	if got != "photo with 1 buttons" {
		t.Errorf("ContentSummary() = %q", got)
	}
}
