package services

import (
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

// Authorization predicates are pure: they read the config and vote snapshots
// they are given and never mutate them.

func IsOwner(cfg entities.GlobalConfig, principal entities.Principal) bool {
	return !principal.IsZero() && principal == cfg.Owner
}

func IsAdmin(cfg entities.GlobalConfig, principal entities.Principal) bool {
	return cfg.Admins.Contains(principal)
}

// HasElevatedRights gates every administrative vote action.
func HasElevatedRights(cfg entities.GlobalConfig, principal entities.Principal) bool {
	return IsOwner(cfg, principal) || IsAdmin(cfg, principal)
}

func RequireElevatedRights(cfg entities.GlobalConfig, principal entities.Principal) error {
	if !HasElevatedRights(cfg, principal) {
		return domainerrors.ErrSenderIsNotAdmin
	}
	return nil
}

// RequireOwner gates admin-set management.
func RequireOwner(cfg entities.GlobalConfig, principal entities.Principal) error {
	if !IsOwner(cfg, principal) {
		return domainerrors.ErrSenderIsNotOwner
	}
	return nil
}

func HasVoted(record entities.VoteRecord, principal entities.Principal) bool {
	return record.HasVoted(principal)
}

func IsWhitelisted(record entities.VoteRecord, principal entities.Principal) bool {
	return record.IsWhitelisted(principal)
}

// MeetsFunding is true when the coin gate is off, or when the first offered
// coin with the required denom covers the required amount.
func MeetsFunding(record entities.VoteRecord, offered entities.Funds) bool {
	if !record.CoinGateEnabled {
		return true
	}
	coin, ok := offered.First(record.RequiredCoin.Denom)
	if !ok {
		return false
	}
	return coin.Amount >= record.RequiredCoin.Amount
}

// CheckBallot evaluates ballot eligibility for an existing record. Checks run
// in a fixed order and the first failure is returned.
func CheckBallot(
	cfg entities.GlobalConfig,
	record entities.VoteRecord,
	voter entities.Principal,
	choice entities.Choice,
	offered entities.Funds,
) error {
	if HasVoted(record, voter) {
		return domainerrors.ErrVoterAlreadyParticipated
	}
	if record.Paused {
		return domainerrors.ErrVoteIsPaused
	}
	// The owner bypasses the whitelist but not the funding or double-vote checks.
	if record.WhitelistEnabled && !IsWhitelisted(record, voter) && !IsOwner(cfg, voter) {
		return domainerrors.ErrSenderIsNotWhitelisted
	}
	if !MeetsFunding(record, offered) {
		return domainerrors.ErrInsufficientFunds
	}
	if !choice.Valid() {
		return domainerrors.ErrInvalidChoice
	}
	return nil
}
