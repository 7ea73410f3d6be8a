package ttadapter

import (
	"context"
	"fmt"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/tarantool/go-tarantool/v2"
)

const userSpace = "users"

type UserRepository struct {
	conn *tarantool.Connection
}

func NewUserRepository(conn *tarantool.Connection) *UserRepository {
	return &UserRepository{
		conn: conn,
	}
}

// userTouchField is the field the first-contact upsert's no-op add
// addresses. It must stay off the primary key: tarantool drops upsert
// ops touching key parts and only reports that in the server log.
const userTouchField = userFieldAuthored

// userTouchOps leaves an existing tuple as it is.
func userTouchOps() *tarantool.Operations {
	return tarantool.NewOperations().Add(userTouchField, 0)
}

// Upsert creates the user on first contact and leaves an existing one
// untouched.
func (r *UserRepository) Upsert(ctx context.Context, id string) (*domain.User, error) {
	if _, err := r.conn.Do(
		tarantool.NewUpsertRequest(userSpace).
			Context(ctx).
			Tuple(&UserModel{ID: id}).
			Operations(userTouchOps()),
	).Get(); err != nil {
		return nil, fmt.Errorf("could not upsert user in tarantool: %w", err)
	}

	var res []UserModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(userSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Key(tarantool.StringKey{S: id}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed user in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("user %s vanished after upsert", id)
	}
	return res[0].ToUser(), nil
}

// AddAuthored bumps the user's authored-posts counter, creating the
// user if the author has never voted before.
func (r *UserRepository) AddAuthored(ctx context.Context, id string) error {
	if _, err := r.conn.Do(
		tarantool.NewUpsertRequest(userSpace).
			Context(ctx).
			Tuple(&UserModel{ID: id, Authored: 1}).
			Operations(tarantool.NewOperations().Add(userFieldAuthored, 1)),
	).Get(); err != nil {
		return fmt.Errorf("could not add authored post in tarantool: %w", err)
	}
	return nil
}
