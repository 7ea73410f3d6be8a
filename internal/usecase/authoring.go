package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/qzpost/quizbot/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrWrongState      = errors.New("command is not valid in the current state")
	ErrBodyTooLong     = errors.New("post body exceeds the message ceiling")
)

// SessionRepository persists authoring sessions keyed by session id.
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
}

// PostRepository stores published posts.
type PostRepository interface {
	Save(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error)
}

// UserRepository stores end-users, created lazily on first contact.
type UserRepository interface {
	Upsert(ctx context.Context, id string) (*domain.User, error)
	AddAuthored(ctx context.Context, id string) error
}

// Step tells the gateway which prompt or confirmation to send after a
// successful authoring transition.
type Step int

const (
	StepNone Step = iota
	// StepPromptPost - ask the author for post content.
	StepPromptPost
	// StepContentAccepted - draft seeded, suggest adding buttons.
	StepContentAccepted
	// StepPromptButtonKey - ask for the new button's text.
	StepPromptButtonKey
	// StepPromptAlertText - ask for the cursor button's alert text.
	StepPromptAlertText
	// StepButtonAdded - button complete, back to editing.
	StepButtonAdded
	// StepChooseCorrect - present drafted keys to pick the correct one.
	StepChooseCorrect
	// StepPublished - draft persisted as a new post.
	StepPublished
	// StepCanceled - draft discarded.
	StepCanceled
	// StepEditingHint - free text while editing, remind the commands.
	StepEditingHint
)

// Reply - outcome of one authoring turn.
type Reply struct {
	Step Step
	// ButtonKey - the key just added or completed.
	ButtonKey string
	// Keys - drafted answer keys, set with StepChooseCorrect.
	Keys []string
	// Post - the published post, set with StepPublished.
	Post *domain.Post
}

// Authoring drives the post creation dialogue. One inbound event per
// session at a time; the gateway enforces that.
type Authoring struct {
	sessions SessionRepository
	posts    PostRepository
	users    UserRepository
}

func NewAuthoring(sessions SessionRepository, posts PostRepository, users UserRepository) *Authoring {
	return &Authoring{
		sessions: sessions,
		posts:    posts,
		users:    users,
	}
}

// Start resets the session to the beginning of the dialogue.
func (a *Authoring) Start(ctx context.Context, sessionID, userID string) (Reply, error) {
	session := domain.NewSession(sessionID, userID)
	if err := a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepPromptPost}, nil
}

// AddButton begins the creation of one more answer button.
func (a *Authoring) AddButton(ctx context.Context, sessionID, userID string) (Reply, error) {
	session, err := a.loadSession(ctx, sessionID, userID)
	if err != nil {
		return Reply{}, err
	}
	if session.State != domain.StateEditingPost {
		return Reply{}, ErrWrongState
	}

	session.State = domain.StateAwaitingButtonText
	if err = a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepPromptButtonKey}, nil
}

// Finish moves the dialogue to the correct-answer choice. The drafted
// keys are returned so the gateway can render a choice keyboard.
func (a *Authoring) Finish(ctx context.Context, sessionID, userID string) (Reply, error) {
	session, err := a.loadSession(ctx, sessionID, userID)
	if err != nil {
		return Reply{}, err
	}
	if session.State != domain.StateEditingPost {
		return Reply{}, ErrWrongState
	}
	if session.Draft == nil || len(session.Draft.Buttons) == 0 {
		// A post without buttons could never be answered, so the
		// dialogue stays in editing instead of dead-ending.
		return Reply{}, domain.ErrNoButtons
	}

	session.State = domain.StateAwaitingCorrectAnswer
	if err = a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepChooseCorrect, Keys: session.Draft.Keys()}, nil
}

// Cancel discards the draft and restarts the dialogue.
func (a *Authoring) Cancel(ctx context.Context, sessionID, userID string) (Reply, error) {
	session, err := a.loadSession(ctx, sessionID, userID)
	if err != nil {
		return Reply{}, err
	}

	session.Reset()
	if err = a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepCanceled}, nil
}

// HandlePhoto feeds a photo message into the dialogue. Photos only make
// sense as post content, so any other state reports ErrWrongState.
func (a *Authoring) HandlePhoto(ctx context.Context, sessionID, userID, photoID string) (Reply, error) {
	session, err := a.loadSession(ctx, sessionID, userID)
	if err != nil {
		return Reply{}, err
	}
	if session.State != domain.StateAwaitingPost {
		return Reply{}, ErrWrongState
	}
	return a.seedDraft(ctx, session, domain.NewPhotoDraft(photoID))
}

// HandleText feeds a text message into the dialogue, dispatching on the
// session's state. Validation failures leave the state untouched.
func (a *Authoring) HandleText(ctx context.Context, sessionID, userID, text string) (Reply, error) {
	session, err := a.loadSession(ctx, sessionID, userID)
	if err != nil {
		return Reply{}, err
	}

	switch session.State {
	case domain.StateAwaitingPost:
		if !domain.ValidPostBody(text) {
			return Reply{}, ErrBodyTooLong
		}
		return a.seedDraft(ctx, session, domain.NewTextDraft(text))

	case domain.StateEditingPost:
		return Reply{Step: StepEditingHint}, nil

	case domain.StateAwaitingButtonText:
		if err = session.Draft.AddButton(text); err != nil {
			return Reply{}, err
		}
		session.State = domain.StateAwaitingButtonAlertText
		if err = a.sessions.Save(ctx, session); err != nil {
			return Reply{}, fmt.Errorf("could not save session: %w", err)
		}
		return Reply{Step: StepPromptAlertText, ButtonKey: text}, nil

	case domain.StateAwaitingButtonAlertText:
		if err = session.Draft.SetAlertText(text); err != nil {
			return Reply{}, err
		}
		key := session.Draft.Cursor
		session.State = domain.StateEditingPost
		if err = a.sessions.Save(ctx, session); err != nil {
			return Reply{}, fmt.Errorf("could not save session: %w", err)
		}
		return Reply{Step: StepButtonAdded, ButtonKey: key}, nil

	case domain.StateAwaitingCorrectAnswer:
		return a.publish(ctx, session, text)

	default:
		return Reply{}, ErrWrongState
	}
}

func (a *Authoring) seedDraft(ctx context.Context, session *domain.Session, draft *domain.Draft) (Reply, error) {
	session.Draft = draft
	session.State = domain.StateEditingPost
	if err := a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepContentAccepted}, nil
}

// publish persists the draft as a new post. On a store failure the
// session stays in the correct-answer state with the draft intact, so
// the author can simply retry.
func (a *Authoring) publish(ctx context.Context, session *domain.Session, correctKey string) (Reply, error) {
	post, err := session.Draft.Finalize(session.UserID, correctKey)
	if err != nil {
		return Reply{}, err
	}
	post.ID = uuid.NewString()

	if err = a.posts.Save(ctx, post); err != nil {
		return Reply{}, fmt.Errorf("could not save post: %w", err)
	}
	if err = a.users.AddAuthored(ctx, session.UserID); err != nil {
		return Reply{}, fmt.Errorf("could not update author: %w", err)
	}

	session.Reset()
	if err = a.sessions.Save(ctx, session); err != nil {
		return Reply{}, fmt.Errorf("could not save session: %w", err)
	}
	return Reply{Step: StepPublished, Post: post}, nil
}

// loadSession fetches the session or lazily creates one in the initial
// state, mirroring how users themselves are created on first contact.
func (a *Authoring) loadSession(ctx context.Context, sessionID, userID string) (*domain.Session, error) {
	session, err := a.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		if _, err = a.users.Upsert(ctx, userID); err != nil {
			return nil, fmt.Errorf("could not upsert user: %w", err)
		}
		return domain.NewSession(sessionID, userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	return session, nil
}
