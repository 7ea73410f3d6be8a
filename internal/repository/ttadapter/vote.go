package ttadapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/qzpost/quizbot/internal/domain"
	"github.com/qzpost/quizbot/internal/usecase"
	"github.com/tarantool/go-iproto"
	"github.com/tarantool/go-tarantool/v2"
)

const voteSpace = "votes"

// VoteRepository is the ledger's write path. The vote space's primary
// index is (user_id, post_id), so the insert inside Record doubles as
// the set-if-absent lock: the first vote wins, the loser gets
// ER_TUPLE_FOUND.
type VoteRepository struct {
	conn *tarantool.Connection
}

func NewVoteRepository(conn *tarantool.Connection) *VoteRepository {
	return &VoteRepository{
		conn: conn,
	}
}

func (r *VoteRepository) GetByUserAndPost(ctx context.Context, userID, postID string) (*domain.Vote, error) {
	var res []VoteModel
	if err := r.conn.Do(
		tarantool.NewSelectRequest(voteSpace).
			Context(ctx).
			Index("primary").
			Limit(1).
			Key([]interface{}{userID, postID}),
	).GetTyped(&res); err != nil {
		return nil, fmt.Errorf("could not select typed vote in tarantool: %w", err)
	}
	if len(res) == 0 {
		return nil, usecase.ErrVoteNotFound
	}
	return res[0].ToVote(), nil
}

// Record lands the whole mutation step in one transaction: the vote
// record, the button and post counters, and the user's last-vote
// timestamp. A cancelled context or any failure rolls everything back,
// leaving state as if the vote had never been attempted.
func (r *VoteRepository) Record(ctx context.Context, vote *domain.Vote, correct bool) error {
	stream, err := r.conn.NewStream()
	if err != nil {
		return fmt.Errorf("could not open tarantool stream: %w", err)
	}
	if _, err = stream.Do(tarantool.NewBeginRequest().Context(ctx)).Get(); err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	if _, err = stream.Do(
		tarantool.NewInsertRequest(voteSpace).
			Context(ctx).
			Tuple(NewVoteModel(vote)),
	).Get(); err != nil {
		rollback(stream)
		if isDuplicateKey(err) {
			return usecase.ErrVoteExists
		}
		return fmt.Errorf("could not insert vote: %w", err)
	}

	if _, err = stream.Do(
		tarantool.NewUpdateRequest(buttonSpace).
			Context(ctx).
			Index("primary").
			Key([]interface{}{vote.PostID, vote.Answer}).
			Operations(tarantool.NewOperations().Add(buttonFieldClicks, 1)),
	).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not update button counter: %w", err)
	}

	postOps := tarantool.NewOperations().Add(postFieldClicks, 1)
	if correct {
		postOps = postOps.Add(postFieldCorrectClicks, 1)
	}
	if _, err = stream.Do(
		tarantool.NewUpdateRequest(postSpace).
			Context(ctx).
			Index("primary").
			Key(tarantool.StringKey{S: vote.PostID}).
			Operations(postOps),
	).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not update post counters: %w", err)
	}

	if _, err = stream.Do(
		tarantool.NewUpsertRequest(userSpace).
			Context(ctx).
			Tuple(&UserModel{ID: vote.UserID, LastVoteAt: vote.At.Unix()}).
			Operations(tarantool.NewOperations().Assign(userFieldLastVoteAt, vote.At.Unix())),
	).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not update user timestamp: %w", err)
	}

	if _, err = stream.Do(tarantool.NewCommitRequest().Context(ctx)).Get(); err != nil {
		rollback(stream)
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

func isDuplicateKey(err error) bool {
	var ttErr tarantool.Error
	return errors.As(err, &ttErr) && ttErr.Code == iproto.ER_TUPLE_FOUND
}
