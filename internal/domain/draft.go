package domain

import "errors"

var (
	ErrDuplicateButton  = errors.New("button with this key already exists")
	ErrInvalidButtonKey = errors.New("invalid button key")
	ErrNoButtons        = errors.New("draft has no buttons")
	ErrUnknownAnswer    = errors.New("no button with this key")
	ErrNoCursor         = errors.New("no button is being edited")
)

// DraftButton - a not-yet-published answer button.
type DraftButton struct {
	Key       string
	AlertText string
}

// Draft - the in-progress state of a post under authoring. Owned by a
// single session, never shared, never published as-is.
type Draft struct {
	Text    string
	PhotoID string
	Buttons []DraftButton
	// Cursor - key of the button currently being edited.
	Cursor string
}

func NewTextDraft(text string) *Draft {
	return &Draft{Text: text}
}

func NewPhotoDraft(photoID string) *Draft {
	return &Draft{PhotoID: photoID}
}

// AddButton appends a button keyed by key and moves the cursor to it.
func (d *Draft) AddButton(key string) error {
	if !ValidButtonKey(key) {
		return ErrInvalidButtonKey
	}
	if d.HasButton(key) {
		return ErrDuplicateButton
	}
	d.Buttons = append(d.Buttons, DraftButton{Key: key})
	d.Cursor = key
	return nil
}

// SetAlertText sets the alert text of the cursor button.
func (d *Draft) SetAlertText(text string) error {
	for i := range d.Buttons {
		if d.Buttons[i].Key == d.Cursor {
			d.Buttons[i].AlertText = text
			return nil
		}
	}
	return ErrNoCursor
}

func (d *Draft) HasButton(key string) bool {
	for i := range d.Buttons {
		if d.Buttons[i].Key == key {
			return true
		}
	}
	return false
}

// Keys returns the drafted answer keys in insertion order.
func (d *Draft) Keys() []string {
	keys := make([]string, 0, len(d.Buttons))
	for i := range d.Buttons {
		keys = append(keys, d.Buttons[i].Key)
	}
	return keys
}

// Finalize turns the draft into a publishable post with correctKey
// marked as the single correct answer and all counters at zero. The
// draft itself is left untouched, so a failed publish can be retried.
// The post id is assigned by the caller at persist time.
func (d *Draft) Finalize(authorID, correctKey string) (*Post, error) {
	if (d.Text == "") == (d.PhotoID == "") {
		return nil, ErrInvalidPost
	}
	if len(d.Buttons) == 0 {
		return nil, ErrNoButtons
	}
	if !d.HasButton(correctKey) {
		return nil, ErrUnknownAnswer
	}

	buttons := make([]Button, 0, len(d.Buttons))
	for i := range d.Buttons {
		buttons = append(buttons, Button{
			Key:       d.Buttons[i].Key,
			AlertText: d.Buttons[i].AlertText,
			IsCorrect: d.Buttons[i].Key == correctKey,
		})
	}

	return &Post{
		Text:     d.Text,
		PhotoID:  d.PhotoID,
		Buttons:  buttons,
		AuthorID: authorID,
	}, nil
}
