package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"meetup-service/internal/models"
)

var ErrVoteNotFound = errors.New("vote not found")

// VoteRepository is the ledger of per-participant poll answers.
type VoteRepository interface {
	RecordVote(ctx context.Context, pollID string, userID int64, optionID *int, now time.Time) error
	GetVote(ctx context.Context, pollID string, userID int64) (models.Vote, error)
	UsersWithOption(ctx context.Context, pollID string, optionID int) ([]int64, error)
}

// VoteRepo is a sqlx implementation of VoteRepository.
type VoteRepo struct {
	db *sqlx.DB
}

// NewVoteRepo constructs a VoteRepo.
func NewVoteRepo(db *sqlx.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

// RecordVote upserts the participant's current answer. A later call for
// the same (poll, user) pair always overwrites the earlier one; a nil
// option records a retracted answer without deleting the row.
func (r *VoteRepo) RecordVote(ctx context.Context, pollID string, userID int64, optionID *int, now time.Time) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO votes (poll_id, user_id, option_id, updated_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (poll_id, user_id) DO UPDATE SET option_id=EXCLUDED.option_id, updated_at=EXCLUDED.updated_at`,
		pollID, userID, optionID, now)
	return err
}

// GetVote fetches one participant's current answer.
func (r *VoteRepo) GetVote(ctx context.Context, pollID string, userID int64) (models.Vote, error) {
	var vote models.Vote
	err := r.db.GetContext(ctx, &vote, `SELECT poll_id, user_id, option_id, updated_at FROM votes WHERE poll_id=$1 AND user_id=$2`,
		pollID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, ErrVoteNotFound
	}
	return vote, err
}

// UsersWithOption returns every participant whose current answer is the
// given option. Order is unspecified; display capping is the caller's
// concern.
func (r *VoteRepo) UsersWithOption(ctx context.Context, pollID string, optionID int) ([]int64, error) {
	var userIDs []int64
	err := r.db.SelectContext(ctx, &userIDs, `SELECT user_id FROM votes WHERE poll_id=$1 AND option_id=$2`,
		pollID, optionID)
	return userIDs, err
}
