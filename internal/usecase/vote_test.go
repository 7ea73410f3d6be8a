package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/repository/memory"
	"github.com/qzpost/quizbot/internal/usecase"
)

const testPostID = "post-1"

func newLedger(t *testing.T) (*usecase.Ledger, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	post := &domain.Post{
		ID:   testPostID,
		Text: "Capital of France?",
		Buttons: []domain.Button{
			{Key: "Paris", AlertText: "Correct!", IsCorrect: true},
			{Key: "Lyon", AlertText: "Wrong city"},
		},
		AuthorID: testAuthor,
	}
	if err := store.Save(context.Background(), post); err != nil {
		t.Fatalf("could not seed post: %v", err)
	}
	return usecase.NewLedger(store, store, store), store
}

// The worked scenario: A votes Paris, B votes Lyon, A tries to switch.
func TestProcessClickScenario(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	feedback, err := ledger.ProcessClick(ctx, "user-a", testPostID, "Paris")
	if err != nil {
		t.Fatalf("first click failed: %v", err)
	}
	if !feedback.Correct || feedback.Replayed {
		t.Errorf("feedback = %+v", feedback)
	}
	if !strings.Contains(feedback.Text, "✅") || !strings.Contains(feedback.Text, "100%") {
		t.Errorf("feedback text = %q, want correct banner and 100%%", feedback.Text)
	}
	assertCounters(t, store, 1, 1)

	feedback, err = ledger.ProcessClick(ctx, "user-b", testPostID, "Lyon")
	if err != nil {
		t.Fatalf("second click failed: %v", err)
	}
	if feedback.Correct {
		t.Errorf("Lyon reported as correct")
	}
	if !strings.Contains(feedback.Text, "❌") || !strings.Contains(feedback.Text, "50%") {
		t.Errorf("feedback text = %q, want incorrect banner and 50%%", feedback.Text)
	}
	assertCounters(t, store, 2, 1)

	if _, err = ledger.ProcessClick(ctx, "user-a", testPostID, "Lyon"); !errors.Is(err, usecase.ErrAnswerLocked) {
		t.Fatalf("answer change error = %v, want ErrAnswerLocked", err)
	}
	assertCounters(t, store, 2, 1)
}

// Replaying the same click counts once and keeps reporting the same
// share.
func TestProcessClickIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	first, err := ledger.ProcessClick(ctx, "user-a", testPostID, "Paris")
	if err != nil {
		t.Fatalf("first click failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		replay, err := ledger.ProcessClick(ctx, "user-a", testPostID, "Paris")
		if err != nil {
			t.Fatalf("replay %d failed: %v", i, err)
		}
		if !replay.Replayed {
			t.Errorf("replay %d not marked as replayed", i)
		}
		if replay.Text != first.Text {
			t.Errorf("replay %d feedback drifted: %q != %q", i, replay.Text, first.Text)
		}
	}
	assertCounters(t, store, 1, 1)
}

func TestProcessClickPostNotFound(t *testing.T) {
	ledger, _ := newLedger(t)
	if _, err := ledger.ProcessClick(context.Background(), "user-a", "missing", "Paris"); !errors.Is(err, usecase.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestProcessClickUnknownButton(t *testing.T) {
	ledger, store := newLedger(t)
	if _, err := ledger.ProcessClick(context.Background(), "user-a", testPostID, "Berlin"); !errors.Is(err, domain.ErrUnknownAnswer) {
		t.Errorf("error = %v, want ErrUnknownAnswer", err)
	}
	assertCounters(t, store, 0, 0)
}

// N distinct users voting at once lose no increments.
func TestProcessClickConcurrentUsers(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	const voters = 32
	var failures atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := "Paris"
			if n%2 == 1 {
				key = "Lyon"
			}
			if _, err := ledger.ProcessClick(ctx, fmt.Sprintf("user-%d", n), testPostID, key); err != nil {
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d clicks failed", failures.Load())
	}
	assertCounters(t, store, voters, voters/2)
}

// Concurrent first votes from one user resolve to exactly one counted
// vote, with every caller seeing either a win or its own replay.
func TestProcessClickConcurrentSameUser(t *testing.T) {
	ctx := context.Background()
	ledger, store := newLedger(t)

	const attempts = 16
	var failures atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ledger.ProcessClick(ctx, "user-a", testPostID, "Paris"); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d clicks failed", failures.Load())
	}
	assertCounters(t, store, 1, 1)

	vote, err := store.GetByUserAndPost(ctx, "user-a", testPostID)
	if err != nil {
		t.Fatalf("vote not recorded: %v", err)
	}
	if vote.Answer != "Paris" {
		t.Errorf("recorded answer = %q", vote.Answer)
	}
}

func assertCounters(t *testing.T, store *memory.Store, clicks, correct int) {
	t.Helper()
	post, err := store.GetByID(context.Background(), testPostID)
	if err != nil {
		t.Fatalf("could not load post: %v", err)
	}
	if post.Clicks != clicks || post.CorrectClicks != correct {
		t.Errorf("counters = %d/%d, want %d/%d", post.Clicks, post.CorrectClicks, clicks, correct)
	}
}
