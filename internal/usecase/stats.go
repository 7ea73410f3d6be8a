package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/qzpost/quizbot/internal/domain"
)

var ErrNoPosts = errors.New("user has no posts")

// UserSummary - rollup over every post the user authored.
type UserSummary struct {
	PostsAuthored int
	Clicks        int
	CorrectClicks int
}

// Stats is the read-only statistics surface. It never mutates state.
type Stats struct {
	posts PostRepository
}

func NewStats(posts PostRepository) *Stats {
	return &Stats{posts: posts}
}

// UserSummary sums the counters of the user's posts. ErrNoPosts keeps
// "nothing to report" distinct from an all-zero report.
func (s *Stats) UserSummary(ctx context.Context, userID string) (UserSummary, error) {
	posts, err := s.posts.ListByAuthor(ctx, userID)
	if err != nil {
		return UserSummary{}, fmt.Errorf("could not list posts: %w", err)
	}
	if len(posts) == 0 {
		return UserSummary{}, ErrNoPosts
	}

	summary := UserSummary{PostsAuthored: len(posts)}
	for _, post := range posts {
		summary.Clicks += post.Clicks
		summary.CorrectClicks += post.CorrectClicks
	}
	return summary, nil
}

// PostSummary reads a post's counters. Direct read, no aggregation.
func (s *Stats) PostSummary(ctx context.Context, postID string) (clicks, correctClicks int, err error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return 0, 0, err
	}
	return post.Clicks, post.CorrectClicks, nil
}

// Post returns a post for preview surfaces, buttons included.
func (s *Stats) Post(ctx context.Context, postID string) (*domain.Post, error) {
	return s.posts.GetByID(ctx, postID)
}
