package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestNormalizeTitle(t *testing.T) {
	title, err := NormalizeTitle("  Q1 budget  ")
	require.NoError(t, err)
	require.Equal(t, "Q1 budget", title)

	for _, raw := range []string{"", "   ", "a/b", strings.Repeat("x", 257)} {
		_, err := NormalizeTitle(raw)
		require.ErrorIs(t, err, domainerrors.ErrInvalidTitle, "title %q", raw)
	}
}

func TestValidateRuleOrder(t *testing.T) {
	require.ErrorIs(t, ValidateRule(entities.VoteRule{RequiredBalance: -1, MinVotesCount: -1, RequiredVotesPercentage: 101}),
		domainerrors.ErrBalanceCannotBeNegative)
	require.ErrorIs(t, ValidateRule(entities.VoteRule{MinVotesCount: -1, RequiredVotesPercentage: 101}),
		domainerrors.ErrVoteCountCannotBeNegative)
	require.ErrorIs(t, ValidateRule(entities.VoteRule{RequiredVotesPercentage: 101}),
		domainerrors.ErrWrongVotesPercentage)
	require.ErrorIs(t, ValidateRule(entities.VoteRule{RequiredVotesPercentage: -1}),
		domainerrors.ErrInvalidArgument)
	require.ErrorIs(t, ValidateRule(entities.VoteRule{CoinGateEnabled: true}),
		domainerrors.ErrRequiredCoinMissing)
	require.ErrorIs(t, ValidateRule(entities.VoteRule{CoinGateEnabled: true, RequiredCoin: entities.Coin{Denom: "  ", Amount: 1}}),
		domainerrors.ErrInvalidArgument)
	require.NoError(t, ValidateRule(entities.VoteRule{RequiredCoin: entities.Coin{}}))
	require.NoError(t, ValidateRule(entities.VoteRule{RequiredVotesPercentage: 100}))
	require.NoError(t, ValidateRule(entities.VoteRule{}))
}

func TestNewVoteRecord(t *testing.T) {
	record, err := NewVoteRecord("q1", "admin", entities.VoteRule{
		MinVotesCount:           3,
		RequiredVotesPercentage: 50,
		WhitelistEnabled:        true,
		Whitelist:               entities.PrincipalSet{"w", " w ", ""},
		CoinGateEnabled:         true,
		RequiredCoin:            entities.Coin{Denom: " test ", Amount: 1},
	}, fixedNow)
	require.NoError(t, err)
	require.Equal(t, entities.VoteStateActive, record.State())
	require.Equal(t, entities.Tally{}, record.Tally)
	require.Empty(t, record.AlreadyVoted)
	require.Equal(t, entities.PrincipalSet{"w"}, record.Whitelist)
	require.Equal(t, "test", record.RequiredCoin.Denom)
	require.Equal(t, fixedNow, record.CreatedAt)
	require.True(t, record.Consistent())
}

func TestApplyBallotKeepsTallyConsistent(t *testing.T) {
	record, err := NewVoteRecord("q1", "admin", entities.VoteRule{}, fixedNow)
	require.NoError(t, err)

	voters := []entities.Principal{"a", "b", "c", "d"}
	choices := []entities.Choice{entities.ChoiceFor, entities.ChoiceAgainst, entities.ChoiceAbstain, entities.ChoiceFor}
	for i, voter := range voters {
		record = ApplyBallot(record, voter, choices[i], fixedNow.Add(time.Minute))
		require.True(t, record.Consistent())
	}
	require.Equal(t, entities.Tally{For: 2, Against: 1, Abstain: 1}, record.Tally)
	require.Equal(t, fixedNow.Add(time.Minute), record.UpdatedAt)
}

func TestApplyBallotDoesNotAliasInput(t *testing.T) {
	record, err := NewVoteRecord("q1", "admin", entities.VoteRule{}, fixedNow)
	require.NoError(t, err)
	next := ApplyBallot(record, "a", entities.ChoiceFor, fixedNow)
	require.Empty(t, record.AlreadyVoted)
	require.Len(t, next.AlreadyVoted, 1)
}

func TestSetPausedIsIdempotent(t *testing.T) {
	record, err := NewVoteRecord("q1", "admin", entities.VoteRule{}, fixedNow)
	require.NoError(t, err)

	paused, changed := SetPaused(record, true, fixedNow)
	require.True(t, changed)
	require.Equal(t, entities.VoteStatePaused, paused.State())

	again, changed := SetPaused(paused, true, fixedNow)
	require.False(t, changed)
	require.Equal(t, paused, again)
}

func TestTogglesNegate(t *testing.T) {
	record, err := NewVoteRecord("q1", "admin", entities.VoteRule{}, fixedNow)
	require.NoError(t, err)

	record = ToggleWhitelist(record, fixedNow)
	require.True(t, record.WhitelistEnabled)
	record = ToggleWhitelist(record, fixedNow)
	require.False(t, record.WhitelistEnabled)

	record = ToggleCoinGate(record, fixedNow)
	require.True(t, record.CoinGateEnabled)
	record = ToggleCoinGate(record, fixedNow)
	require.False(t, record.CoinGateEnabled)
}
