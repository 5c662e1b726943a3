package errors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the voting engine wraps exactly one of
// these, so callers branch with errors.Is.
var (
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrStateConflict     = errors.New("state conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStorageFailure    = errors.New("storage failure")
)

var (
	ErrSenderIsNotAdmin       = kind(ErrUnauthorized, "sender is not owner or admin")
	ErrSenderIsNotOwner       = kind(ErrUnauthorized, "sender is not owner")
	ErrSenderIsNotWhitelisted = kind(ErrUnauthorized, "sender is not whitelisted")

	ErrCannotFindVote      = kind(ErrNotFound, "cannot find vote")
	ErrNotInstantiated     = kind(ErrNotFound, "governance config is not instantiated")
	ErrVoteAlreadyExists   = kind(ErrConflict, "vote already exists")
	ErrAlreadyInstantiated = kind(ErrConflict, "governance config is already instantiated")

	ErrWrongVotesPercentage      = kind(ErrInvalidArgument, "required votes percentage must be within [0,100]")
	ErrVoteCountCannotBeNegative = kind(ErrInvalidArgument, "min votes count cannot be negative")
	ErrBalanceCannotBeNegative   = kind(ErrInvalidArgument, "required balance cannot be negative")
	ErrInvalidTitle              = kind(ErrInvalidArgument, "vote title is invalid")
	ErrRequiredCoinMissing       = kind(ErrInvalidArgument, "coin gate requires a required coin denom")
	ErrInvalidChoice             = kind(ErrInvalidArgument, "ballot choice must be For, Against or Abstain")
	ErrInvalidSender             = kind(ErrInvalidArgument, "sender is required")
	ErrInvalidCommand            = kind(ErrInvalidArgument, "unrecognized command")

	ErrVoterAlreadyParticipated = kind(ErrStateConflict, "voter already participated")
	ErrVoteIsPaused             = kind(ErrStateConflict, "vote is paused")

	ErrStatsOutOfSync = kind(ErrStorageFailure, "stats counters out of sync")
	ErrCorruptRecord  = kind(ErrStorageFailure, "stored record cannot be decoded")
)

func kind(base error, message string) error {
	return fmt.Errorf("%w: %s", base, message)
}

// Kind returns the kind sentinel wrapped by err, or nil.
func Kind(err error) error {
	for _, k := range []error{
		ErrUnauthorized,
		ErrNotFound,
		ErrConflict,
		ErrInvalidArgument,
		ErrStateConflict,
		ErrInsufficientFunds,
		ErrStorageFailure,
	} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Storage wraps a backend failure as ErrStorageFailure while keeping the
// original error reachable through errors.Is/As.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFailure, op, err)
}
