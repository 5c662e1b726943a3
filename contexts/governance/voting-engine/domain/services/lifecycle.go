package services

import (
	"strings"
	"time"

	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

const maxTitleLength = 256

// NormalizeTitle trims the title and rejects values that cannot be used as a
// registry key segment.
func NormalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" || len(title) > maxTitleLength || strings.Contains(title, "/") {
		return "", domainerrors.ErrInvalidTitle
	}
	return title, nil
}

func ValidateRule(rule entities.VoteRule) error {
	if rule.RequiredBalance < 0 {
		return domainerrors.ErrBalanceCannotBeNegative
	}
	if rule.MinVotesCount < 0 {
		return domainerrors.ErrVoteCountCannotBeNegative
	}
	if rule.RequiredVotesPercentage < 0 || rule.RequiredVotesPercentage > 100 {
		return domainerrors.ErrWrongVotesPercentage
	}
	return RequireGateCoin(rule.CoinGateEnabled, rule.RequiredCoin)
}

// RequireGateCoin rejects an enabled coin gate that has no denom to match.
func RequireGateCoin(enabled bool, coin entities.Coin) error {
	if enabled && strings.TrimSpace(coin.Denom) == "" {
		return domainerrors.ErrRequiredCoinMissing
	}
	return nil
}

// NewVoteRecord builds an Active record with an empty tally.
func NewVoteRecord(title string, creator entities.Principal, rule entities.VoteRule, now time.Time) (entities.VoteRecord, error) {
	if err := ValidateRule(rule); err != nil {
		return entities.VoteRecord{}, err
	}
	return entities.VoteRecord{
		Title:                   title,
		Creator:                 creator,
		Paused:                  false,
		Tally:                   entities.Tally{},
		RequiredBalance:         rule.RequiredBalance,
		MinVotesCount:           rule.MinVotesCount,
		RequiredVotesPercentage: rule.RequiredVotesPercentage,
		AlreadyVoted:            entities.PrincipalSet{},
		WhitelistEnabled:        rule.WhitelistEnabled,
		Whitelist:               entities.NewPrincipalSet(rule.Whitelist),
		CoinGateEnabled:         rule.CoinGateEnabled,
		RequiredCoin: entities.Coin{
			Denom:  strings.TrimSpace(rule.RequiredCoin.Denom),
			Amount: rule.RequiredCoin.Amount,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyBallot is the only transition touching the tally. Eligibility must be
// checked with CheckBallot first.
func ApplyBallot(record entities.VoteRecord, voter entities.Principal, choice entities.Choice, now time.Time) entities.VoteRecord {
	next := record.Clone()
	switch choice {
	case entities.ChoiceFor:
		next.Tally.For++
	case entities.ChoiceAgainst:
		next.Tally.Against++
	case entities.ChoiceAbstain:
		next.Tally.Abstain++
	default:
		return record
	}
	next.AlreadyVoted = next.AlreadyVoted.Add(voter)
	next.UpdatedAt = now
	return next
}

// SetPaused moves the record to the requested state. changed is false when
// the record already was in that state.
func SetPaused(record entities.VoteRecord, paused bool, now time.Time) (entities.VoteRecord, bool) {
	if record.Paused == paused {
		return record, false
	}
	next := record.Clone()
	next.Paused = paused
	next.UpdatedAt = now
	return next, true
}

func ToggleWhitelist(record entities.VoteRecord, now time.Time) entities.VoteRecord {
	next := record.Clone()
	next.WhitelistEnabled = !record.WhitelistEnabled
	next.UpdatedAt = now
	return next
}

func ToggleCoinGate(record entities.VoteRecord, now time.Time) entities.VoteRecord {
	next := record.Clone()
	next.CoinGateEnabled = !record.CoinGateEnabled
	next.UpdatedAt = now
	return next
}
