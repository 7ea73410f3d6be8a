package ttadapter

import (
	"fmt"
	"time"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// Tuple layouts. Field numbers are 0-based and shared with the update
// operations in the repositories.
const (
	postFieldID            = 0
	postFieldText          = 1
	postFieldPhoto         = 2
	postFieldAuthor        = 3
	postFieldClicks        = 4
	postFieldCorrectClicks = 5
	postModelFields        = 6

	buttonFieldPostID    = 0
	buttonFieldKey       = 1
	buttonFieldPosition  = 2
	buttonFieldAlertText = 3
	buttonFieldIsCorrect = 4
	buttonFieldClicks    = 5
	buttonModelFields    = 6

	userFieldID         = 0
	userFieldLastVoteAt = 1
	userFieldAuthored   = 2
	userModelFields     = 3

	voteModelFields    = 4
	sessionModelFields = 4
)

type PostModel struct {
	ID            string
	Text          string
	Photo         string
	Author        string
	Clicks        int
	CorrectClicks int
}

type ButtonModel struct {
	PostID    string
	Key       string
	Position  int
	AlertText string
	IsCorrect bool
	Clicks    int
}

type UserModel struct {
	ID         string
	LastVoteAt int64
	Authored   int
}

type VoteModel struct {
	UserID  string
	PostID  string
	Answer  string
	VotedAt int64
}

type SessionModel struct {
	ID     string
	UserID string
	State  string
	Draft  *DraftModel
}

// DraftModel rides inside the session tuple as a plain msgpack value,
// there is nothing to index in it.
type DraftModel struct {
	Text    string             `msgpack:"text"`
	Photo   string             `msgpack:"photo"`
	Buttons []DraftButtonModel `msgpack:"buttons"`
	Cursor  string             `msgpack:"cursor"`
}

type DraftButtonModel struct {
	Key       string `msgpack:"key"`
	AlertText string `msgpack:"alert_text"`
}

func NewPostModel(post *domain.Post) *PostModel {
	return &PostModel{
		ID:            post.ID,
		Text:          post.Text,
		Photo:         post.PhotoID,
		Author:        post.AuthorID,
		Clicks:        post.Clicks,
		CorrectClicks: post.CorrectClicks,
	}
}

// ToPost assembles the domain post from the post tuple and its button
// tuples, which must already be in presentation order.
func (p *PostModel) ToPost(buttons []ButtonModel) *domain.Post {
	post := &domain.Post{
		ID:            p.ID,
		Text:          p.Text,
		PhotoID:       p.Photo,
		AuthorID:      p.Author,
		Clicks:        p.Clicks,
		CorrectClicks: p.CorrectClicks,
		Buttons:       make([]domain.Button, 0, len(buttons)),
	}
	for i := range buttons {
		post.Buttons = append(post.Buttons, domain.Button{
			Key:       buttons[i].Key,
			AlertText: buttons[i].AlertText,
			IsCorrect: buttons[i].IsCorrect,
			Clicks:    buttons[i].Clicks,
		})
	}
	return post
}

func NewButtonModels(post *domain.Post) []*ButtonModel {
	models := make([]*ButtonModel, 0, len(post.Buttons))
	for i := range post.Buttons {
		models = append(models, &ButtonModel{
			PostID:    post.ID,
			Key:       post.Buttons[i].Key,
			Position:  i,
			AlertText: post.Buttons[i].AlertText,
			IsCorrect: post.Buttons[i].IsCorrect,
			Clicks:    post.Buttons[i].Clicks,
		})
	}
	return models
}

func (u *UserModel) ToUser() *domain.User {
	user := &domain.User{
		ID:            u.ID,
		PostsAuthored: u.Authored,
	}
	if u.LastVoteAt != 0 {
		user.LastVoteAt = time.Unix(u.LastVoteAt, 0)
	}
	return user
}

func NewVoteModel(vote *domain.Vote) *VoteModel {
	return &VoteModel{
		UserID:  vote.UserID,
		PostID:  vote.PostID,
		Answer:  vote.Answer,
		VotedAt: vote.At.Unix(),
	}
}

func (v *VoteModel) ToVote() *domain.Vote {
	return &domain.Vote{
		UserID: v.UserID,
		PostID: v.PostID,
		Answer: v.Answer,
		At:     time.Unix(v.VotedAt, 0),
	}
}

func NewSessionModel(session *domain.Session) *SessionModel {
	model := &SessionModel{
		ID:     session.ID,
		UserID: session.UserID,
		State:  string(session.State),
	}
	if session.Draft != nil {
		draft := &DraftModel{
			Text:   session.Draft.Text,
			Photo:  session.Draft.PhotoID,
			Cursor: session.Draft.Cursor,
		}
		for i := range session.Draft.Buttons {
			draft.Buttons = append(draft.Buttons, DraftButtonModel{
				Key:       session.Draft.Buttons[i].Key,
				AlertText: session.Draft.Buttons[i].AlertText,
			})
		}
		model.Draft = draft
	}
	return model
}

func (s *SessionModel) ToSession() *domain.Session {
	session := &domain.Session{
		ID:     s.ID,
		UserID: s.UserID,
		State:  domain.State(s.State),
	}
	if s.Draft != nil {
		draft := &domain.Draft{
			Text:    s.Draft.Text,
			PhotoID: s.Draft.Photo,
			Cursor:  s.Draft.Cursor,
		}
		for i := range s.Draft.Buttons {
			draft.Buttons = append(draft.Buttons, domain.DraftButton{
				Key:       s.Draft.Buttons[i].Key,
				AlertText: s.Draft.Buttons[i].AlertText,
			})
		}
		session.Draft = draft
	}
	return session
}

func (p *PostModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(postModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(p.ID); err != nil {
		return err
	}
	if err := e.EncodeString(p.Text); err != nil {
		return err
	}
	if err := e.EncodeString(p.Photo); err != nil {
		return err
	}
	if err := e.EncodeString(p.Author); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(p.Clicks)); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(p.CorrectClicks)); err != nil {
		return err
	}
	return nil
}

func (p *PostModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != postModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if p.ID, err = d.DecodeString(); err != nil {
		return err
	}
	if p.Text, err = d.DecodeString(); err != nil {
		return err
	}
	if p.Photo, err = d.DecodeString(); err != nil {
		return err
	}
	if p.Author, err = d.DecodeString(); err != nil {
		return err
	}
	if p.Clicks, err = d.DecodeInt(); err != nil {
		return err
	}
	if p.CorrectClicks, err = d.DecodeInt(); err != nil {
		return err
	}
	return nil
}

func (b *ButtonModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(buttonModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(b.PostID); err != nil {
		return err
	}
	if err := e.EncodeString(b.Key); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(b.Position)); err != nil {
		return err
	}
	if err := e.EncodeString(b.AlertText); err != nil {
		return err
	}
	if err := e.EncodeBool(b.IsCorrect); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(b.Clicks)); err != nil {
		return err
	}
	return nil
}

func (b *ButtonModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != buttonModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if b.PostID, err = d.DecodeString(); err != nil {
		return err
	}
	if b.Key, err = d.DecodeString(); err != nil {
		return err
	}
	if b.Position, err = d.DecodeInt(); err != nil {
		return err
	}
	if b.AlertText, err = d.DecodeString(); err != nil {
		return err
	}
	if b.IsCorrect, err = d.DecodeBool(); err != nil {
		return err
	}
	if b.Clicks, err = d.DecodeInt(); err != nil {
		return err
	}
	return nil
}

func (u *UserModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(userModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(u.ID); err != nil {
		return err
	}
	if err := e.EncodeInt(u.LastVoteAt); err != nil {
		return err
	}
	if err := e.EncodeInt(int64(u.Authored)); err != nil {
		return err
	}
	return nil
}

func (u *UserModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != userModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if u.ID, err = d.DecodeString(); err != nil {
		return err
	}
	if u.LastVoteAt, err = d.DecodeInt64(); err != nil {
		return err
	}
	if u.Authored, err = d.DecodeInt(); err != nil {
		return err
	}
	return nil
}

func (v *VoteModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(voteModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(v.UserID); err != nil {
		return err
	}
	if err := e.EncodeString(v.PostID); err != nil {
		return err
	}
	if err := e.EncodeString(v.Answer); err != nil {
		return err
	}
	if err := e.EncodeInt(v.VotedAt); err != nil {
		return err
	}
	return nil
}

func (v *VoteModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != voteModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if v.UserID, err = d.DecodeString(); err != nil {
		return err
	}
	if v.PostID, err = d.DecodeString(); err != nil {
		return err
	}
	if v.Answer, err = d.DecodeString(); err != nil {
		return err
	}
	if v.VotedAt, err = d.DecodeInt64(); err != nil {
		return err
	}
	return nil
}

func (s *SessionModel) EncodeMsgpack(e *msgpack.Encoder) error {
	if err := e.EncodeArrayLen(sessionModelFields); err != nil {
		return err
	}
	if err := e.EncodeString(s.ID); err != nil {
		return err
	}
	if err := e.EncodeString(s.UserID); err != nil {
		return err
	}
	if err := e.EncodeString(s.State); err != nil {
		return err
	}
	if err := e.Encode(s.Draft); err != nil {
		return err
	}
	return nil
}

func (s *SessionModel) DecodeMsgpack(d *msgpack.Decoder) error {
	var err error
	var l int
	if l, err = d.DecodeArrayLen(); err != nil {
		return err
	}
	if l != sessionModelFields {
		return fmt.Errorf("array len doesn't match: %d", l)
	}
	if s.ID, err = d.DecodeString(); err != nil {
		return err
	}
	if s.UserID, err = d.DecodeString(); err != nil {
		return err
	}
	if s.State, err = d.DecodeString(); err != nil {
		return err
	}
	if err = d.Decode(&s.Draft); err != nil {
		return err
	}
	return nil
}
