package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/qzpost/quizbot/internal/domain"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrVoteNotFound = errors.New("vote not found")
	ErrVoteExists   = errors.New("vote already exists")
	ErrAnswerLocked = errors.New("answer can not be changed")
)

// VoteRepository is the ledger's storage contract. Record must be
// atomic: either the whole mutation step lands (vote record, button
// and post counters, user timestamp) or none of it does, and a second
// Record for the same (user, post) pair must fail with ErrVoteExists.
type VoteRepository interface {
	GetByUserAndPost(ctx context.Context, userID, postID string) (*domain.Vote, error)
	Record(ctx context.Context, vote *domain.Vote, correct bool) error
}

// Feedback - the transient per-user acknowledgment of a click.
type Feedback struct {
	Text    string
	Correct bool
	// Replayed - the click repeated an already recorded vote and
	// nothing was counted.
	Replayed bool
}

// Ledger processes answer clicks: exactly one counted vote per
// (user, post), idempotent replays, no answer changes.
type Ledger struct {
	posts PostRepository
	users UserRepository
	votes VoteRepository
}

func NewLedger(posts PostRepository, users UserRepository, votes VoteRepository) *Ledger {
	return &Ledger{
		posts: posts,
		users: users,
		votes: votes,
	}
}

// ProcessClick records userID's answer on postID and returns the
// feedback alert computed from the counters after the vote.
func (l *Ledger) ProcessClick(ctx context.Context, userID, postID, answerKey string) (Feedback, error) {
	post, err := l.posts.GetByID(ctx, postID)
	if err != nil {
		return Feedback{}, err
	}
	button, ok := post.Button(answerKey)
	if !ok {
		return Feedback{}, domain.ErrUnknownAnswer
	}

	if _, err = l.users.Upsert(ctx, userID); err != nil {
		return Feedback{}, fmt.Errorf("could not upsert user: %w", err)
	}

	replayed, err := l.checkRecorded(ctx, userID, postID, answerKey)
	if err != nil {
		return Feedback{}, err
	}

	if !replayed {
		vote := &domain.Vote{
			UserID: userID,
			PostID: postID,
			Answer: answerKey,
			At:     time.Now(),
		}
		err = l.votes.Record(ctx, vote, button.IsCorrect)
		switch {
		case errors.Is(err, ErrVoteExists):
			// Lost a race against our own concurrent first vote.
			// Reclassify against the vote that actually landed.
			if replayed, err = l.checkRecorded(ctx, userID, postID, answerKey); err != nil {
				return Feedback{}, err
			}
			if !replayed {
				return Feedback{}, fmt.Errorf("vote vanished after conflict: %w", ErrVoteExists)
			}
		case err != nil:
			return Feedback{}, fmt.Errorf("could not record vote: %w", err)
		}

		// Re-read so the feedback reflects the counters after the
		// increment.
		if post, err = l.posts.GetByID(ctx, postID); err != nil {
			return Feedback{}, err
		}
		if button, ok = post.Button(answerKey); !ok {
			return Feedback{}, domain.ErrUnknownAnswer
		}
	}

	text := domain.ComposeAlertText(button.AlertText, button.Clicks, post.Clicks, button.IsCorrect, true)
	return Feedback{Text: text, Correct: button.IsCorrect, Replayed: replayed}, nil
}

// checkRecorded reports whether the user already voted on the post.
// A recorded vote with a different answer is a locked answer.
func (l *Ledger) checkRecorded(ctx context.Context, userID, postID, answerKey string) (bool, error) {
	recorded, err := l.votes.GetByUserAndPost(ctx, userID, postID)
	if errors.Is(err, ErrVoteNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not load vote: %w", err)
	}
	if recorded.Answer != answerKey {
		return false, ErrAnswerLocked
	}
	return true, nil
}
