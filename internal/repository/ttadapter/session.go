package ttadapter

import (
	"context"
	"fmt"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/usecase"
	"github.com/tarantool/go-tarantool/v2"
)

const sessionSpace = "sessions"

// SessionRepository persists authoring dialogues so a restart does not
// lose an in-progress draft.
type SessionRepository struct {
	conn *tarantool.Connection
}

func NewSessionRepository(conn *tarantool.Connection) *SessionRepository {
	return &SessionRepository{
		conn: conn,
	}
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var res []SessionModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(sessionSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Key(tarantool.StringKey{S: id}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed session in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, usecase.ErrSessionNotFound
	}
	return res[0].ToSession(), nil
}

// Save replaces the whole session tuple. The session is single-owner,
// so last-write-wins is safe here.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if _, err := r.conn.Do(
		tarantool.NewReplaceRequest(sessionSpace).
			Context(ctx).
			Tuple(NewSessionModel(session)),
	).Get(); err != nil {
		return fmt.Errorf("could not replace session in tarantool: %w", err)
	}
	return nil
}
