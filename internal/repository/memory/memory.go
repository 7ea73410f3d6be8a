// Package memory holds in-process implementations of the repository
// contracts. The vote mutation step is one critical section here,
// matching the transaction the tarantool adapter runs.
package memory

import (
	"context"
	"sync"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/usecase"
)

type voteKey struct {
	userID string
	postID string
}

// Store keeps posts, users, votes and sessions in process memory.
type Store struct {
	mu       sync.Mutex
	posts    map[string]*domain.Post
	users    map[string]*domain.User
	votes    map[voteKey]*domain.Vote
	sessions map[string]*domain.Session
}

func NewStore() *Store {
	return &Store{
		posts:    make(map[string]*domain.Post),
		users:    make(map[string]*domain.User),
		votes:    make(map[voteKey]*domain.Vote),
		sessions: make(map[string]*domain.Session),
	}
}

func (s *Store) Save(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	post, ok := s.posts[id]
	if !ok {
		return nil, usecase.ErrPostNotFound
	}
	return clonePost(post), nil
}

func (s *Store) ListByAuthor(_ context.Context, authorID string) ([]*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var posts []*domain.Post
	for _, post := range s.posts {
		if post.AuthorID == authorID {
			posts = append(posts, clonePost(post))
		}
	}
	return posts, nil
}

func (s *Store) Upsert(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		user = &domain.User{ID: id}
		s.users[id] = user
	}
	cloned := *user
	return &cloned, nil
}

func (s *Store) AddAuthored(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		user = &domain.User{ID: id}
		s.users[id] = user
	}
	user.PostsAuthored++
	return nil
}

func (s *Store) GetByUserAndPost(_ context.Context, userID, postID string) (*domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vote, ok := s.votes[voteKey{userID: userID, postID: postID}]
	if !ok {
		return nil, usecase.ErrVoteNotFound
	}
	cloned := *vote
	return &cloned, nil
}

// Record is the set-if-absent point of the ledger: the first vote for a
// (user, post) pair wins, every later one gets ErrVoteExists.
func (s *Store) Record(_ context.Context, vote *domain.Vote, correct bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := voteKey{userID: vote.UserID, postID: vote.PostID}
	if _, ok := s.votes[key]; ok {
		return usecase.ErrVoteExists
	}
	post, ok := s.posts[vote.PostID]
	if !ok {
		return usecase.ErrPostNotFound
	}
	button, ok := post.Button(vote.Answer)
	if !ok {
		return domain.ErrUnknownAnswer
	}

	cloned := *vote
	s.votes[key] = &cloned

	button.Clicks++
	post.Clicks++
	if correct {
		post.CorrectClicks++
	}

	user, ok := s.users[vote.UserID]
	if !ok {
		user = &domain.User{ID: vote.UserID}
		s.users[vote.UserID] = user
	}
	user.LastVoteAt = vote.At
	return nil
}

func (s *Store) GetSession(ctx context.Context, id string) (*domain.Session, error) {
	return s.sessionByID(id)
}

func (s *Store) sessionByID(id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, usecase.ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *Store) SaveSession(_ context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

// Sessions adapts the store to usecase.SessionRepository, whose method
// names clash with the post repository's.
func (s *Store) Sessions() usecase.SessionRepository {
	return sessionView{store: s}
}

type sessionView struct {
	store *Store
}

func (v sessionView) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	return v.store.GetSession(ctx, id)
}

func (v sessionView) Save(ctx context.Context, session *domain.Session) error {
	return v.store.SaveSession(ctx, session)
}

func clonePost(post *domain.Post) *domain.Post {
	cloned := *post
	cloned.Buttons = make([]domain.Button, len(post.Buttons))
	copy(cloned.Buttons, post.Buttons)
	return &cloned
}

func cloneSession(session *domain.Session) *domain.Session {
	cloned := *session
	if session.Draft != nil {
		draft := *session.Draft
		draft.Buttons = make([]domain.DraftButton, len(session.Draft.Buttons))
		copy(draft.Buttons, session.Draft.Buttons)
		cloned.Draft = &draft
	}
	return &cloned
}

var (
	_ usecase.PostRepository = (*Store)(nil)
	_ usecase.UserRepository = (*Store)(nil)
	_ usecase.VoteRepository = (*Store)(nil)
)
