package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/repository/memory"
	"github.com/qzpost/quizbot/internal/usecase"
)

func TestUserSummaryNoPosts(t *testing.T) {
	stats := usecase.NewStats(memory.NewStore())
	if _, err := stats.UserSummary(context.Background(), "nobody"); !errors.Is(err, usecase.ErrNoPosts) {
		t.Errorf("error = %v, want ErrNoPosts", err)
	}
}

func TestUserSummarySums(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	stats := usecase.NewStats(store)

	posts := []*domain.Post{
		{ID: "p1", Text: "q1", AuthorID: "author-1", Clicks: 10, CorrectClicks: 4},
		{ID: "p2", Text: "q2", AuthorID: "author-1", Clicks: 5, CorrectClicks: 5},
		{ID: "p3", Text: "q3", AuthorID: "someone-else", Clicks: 100, CorrectClicks: 1},
	}
	for _, post := range posts {
		if err := store.Save(ctx, post); err != nil {
			t.Fatalf("could not seed post: %v", err)
		}
	}

	summary, err := stats.UserSummary(ctx, "author-1")
	if err != nil {
		t.Fatalf("UserSummary() failed: %v", err)
	}
	want := usecase.UserSummary{PostsAuthored: 2, Clicks: 15, CorrectClicks: 9}
	if summary != want {
		t.Errorf("UserSummary() = %+v, want %+v", summary, want)
	}
}

func TestPostSummary(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	stats := usecase.NewStats(store)

	if err := store.Save(ctx, &domain.Post{ID: "p1", Text: "q", Clicks: 7, CorrectClicks: 3}); err != nil {
		t.Fatalf("could not seed post: %v", err)
	}

	clicks, correct, err := stats.PostSummary(ctx, "p1")
	if err != nil {
		t.Fatalf("PostSummary() failed: %v", err)
	}
	if clicks != 7 || correct != 3 {
		t.Errorf("PostSummary() = %d/%d, want 7/3", clicks, correct)
	}

	if _, _, err = stats.PostSummary(ctx, "missing"); !errors.Is(err, usecase.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}
