package domain

// State - position of an authoring session in the creation dialogue.
type State string

const (
	StateAwaitingPost            State = "awaiting_post"
	StateEditingPost             State = "editing_post"
	StateAwaitingButtonText      State = "awaiting_button_text"
	StateAwaitingButtonAlertText State = "awaiting_button_alert_text"
	StateAwaitingCorrectAnswer   State = "awaiting_correct_answer"
)

// Session - one ongoing authoring dialogue. Persisted between events so
// a process restart does not lose an in-progress draft.
type Session struct {
	ID     string
	UserID string
	State  State
	// Draft - nil outside of an active creation dialogue.
	Draft *Draft
}

func NewSession(id, userID string) *Session {
	return &Session{ID: id, UserID: userID, State: StateAwaitingPost}
}

// Reset returns the session to the initial state, discarding the draft.
func (s *Session) Reset() {
	s.State = StateAwaitingPost
	s.Draft = nil
}
