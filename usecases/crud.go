package usecases

import (
	"context"

	"kamen/domain"
)

// PollSource is the remote poll service: one listing call and one vote call.
type PollSource interface {
	ListPolls(ctx context.Context) ([]domain.Poll, error)
	Vote(ctx context.Context, req domain.VoteRequest) (*domain.VoteResult, error)
}

// PollState is the view-local copy of the polls.
type PollState interface {
	ReplacePolls(polls []domain.Poll)
	ListPolls() []domain.Poll
	GetPoll(id int) (*domain.Poll, error)
	ApplyVote(pollID int, res domain.VoteResult) error
}

// PollView is what the page and the terminal UI render from.
type PollView interface {
	Load(ctx context.Context) error
	Reload(ctx context.Context) error
	CastVote(ctx context.Context, pollID, optionID int) error
	Polls() []domain.Poll
	Loading() bool
}
