package ttadapter

import (
	"context"
	"fmt"
	"sort"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
)

const (
	postSpace   = "posts"
	buttonSpace = "buttons"

	// buttonSelectLimit caps the button select; posts carry a handful
	// of answers, never hundreds.
	buttonSelectLimit = 128
	authorSelectLimit = 1024
)

// PostRepository stores posts as a post tuple plus one tuple per button
// in a separate space, so per-button counters can be bumped with atomic
// update operations instead of read-modify-write.
type PostRepository struct {
	conn *tarantool.Connection
}

func NewPostRepository(conn *tarantool.Connection) *PostRepository {
	return &PostRepository{
		conn: conn,
	}
}

// Save persists a freshly published post and its buttons in one
// transaction, so no reader ever observes a post without its keyboard.
func (r *PostRepository) Save(ctx context.Context, post *domain.Post) error {
	stream, err := r.conn.NewStream()
	if err != nil {
		return fmt.Errorf("could not open tarantool stream: %w", err)
	}
	if _, err = stream.Do(tarantool.NewBeginRequest().Context(ctx)).Get(); err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if _, err = stream.Do(
		tarantool.NewInsertRequest(postSpace).
			Context(ctx).
			Tuple(NewPostModel(post)),
	).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not insert post: %w", err)
	}
	for _, button := range NewButtonModels(post) {
		if _, err = stream.Do(
			tarantool.NewInsertRequest(buttonSpace).
				Context(ctx).
				Tuple(button),
		).Get(); err != nil {
			rollback(stream)
			return fmt.Errorf("could not insert button: %w", err)
		}
	}

	if _, err = stream.Do(tarantool.NewCommitRequest().Context(ctx)).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	var res []PostModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(postSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Key(tarantool.StringKey{S: id}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed post in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, usecase.ErrPostNotFound
	}

	buttons, err := r.buttonsByPost(ctx, id)
	if err != nil {
		return nil, err
	}
	return res[0].ToPost(buttons), nil
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID string) ([]*domain.Post, error) {
	var res []PostModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(postSpace).
			Context(ctx).
			Index("author").
			Iterator(tarantool.IterEq).
			Limit(authorSelectLimit).
			Key(tarantool.StringKey{S: authorID}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select posts by author in tarantool: %w", err)
	}

	posts := make([]*domain.Post, 0, len(res))
	for i := range res {
		buttons, err := r.buttonsByPost(ctx, res[i].ID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, res[i].ToPost(buttons))
	}
	return posts, nil
}

// buttonsByPost selects the post's buttons by the partial primary key
// and restores presentation order from the position field.
func (r *PostRepository) buttonsByPost(ctx context.Context, postID string) ([]ButtonModel, error) {
	var res []ButtonModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(buttonSpace).
			Context(ctx).
			Index("primary").
			Iterator(tarantool.IterEq).
			Limit(buttonSelectLimit).
			Key(tarantool.StringKey{S: postID}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed buttons in tarantool: %w", err)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Position < res[j].Position })
	return res, nil
}

func rollback(stream *tarantool.Stream) {
	// The original error is what matters, a rollback failure only means
	// the server will discard the stream on its own.
	_, _ = stream.Do(tarantool.NewRollbackRequest()).Get()
}
