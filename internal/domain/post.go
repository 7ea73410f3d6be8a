package domain

import (
	"errors"
	"fmt"
)

// PostKind - kind of a post's content: plain text or a single photo.
type PostKind int

const (
	KindText PostKind = iota
	KindPhoto
)

// ErrInvalidPost is returned when a post's content fields violate the
// text-xor-photo invariant.
var ErrInvalidPost = errors.New("post must have exactly one of text or photo")

// Button - one selectable answer on a post. Key doubles as the visible
// label and the identifier inside the callback token.
type Button struct {
	Key       string
	AlertText string
	IsCorrect bool
	// Clicks - count of users, who chose this answer.
	Clicks int
}

// Post - a published quiz item. Content is frozen after publishing,
// only the counters move.
type Post struct {
	ID      string
	Text    string
	PhotoID string
	// Buttons - answer buttons in presentation order.
	Buttons       []Button
	Clicks        int
	CorrectClicks int
	// AuthorID - ID of post's author.
	AuthorID string
}

// Kind reports whether the post carries text or a photo.
func (p *Post) Kind() (PostKind, error) {
	switch {
	case p.Text != "" && p.PhotoID == "":
		return KindText, nil
	case p.PhotoID != "" && p.Text == "":
		return KindPhoto, nil
	default:
		return 0, ErrInvalidPost
	}
}

// Button returns the button with the given key.
func (p *Post) Button(key string) (*Button, bool) {
	for i := range p.Buttons {
		if p.Buttons[i].Key == key {
			return &p.Buttons[i], true
		}
	}
	return nil, false
}

// InlineOption - one rendered answer button: a visible label plus the
// opaque callback token the transport sends back on click.
type InlineOption struct {
	Label string
	Token string
}

// Keyboard returns the post's answer buttons as renderable options,
// in presentation order. Empty slice if the post has no buttons.
func (p *Post) Keyboard() []InlineOption {
	opts := make([]InlineOption, 0, len(p.Buttons))
	for i := range p.Buttons {
		opts = append(opts, InlineOption{
			Label: p.Buttons[i].Key,
			Token: EncodeCallback(p.ID, p.Buttons[i].Key),
		})
	}
	return opts
}

// ContentSummary describes the post for preview surfaces.
func (p *Post) ContentSummary() (string, error) {
	kind, err := p.Kind()
	if err != nil {
		return "", err
	}

	var content string
	switch kind {
	case KindText:
		content = fmt.Sprintf("text %q", p.Text)
	case KindPhoto:
		content = "photo"
	}
	return fmt.Sprintf("%s with %d buttons", content, len(p.Buttons)), nil
}
