package entities

import "time"

// Choice is a ballot option. Values match the wire literals.
type Choice string

const (
	ChoiceFor     Choice = "For"
	ChoiceAgainst Choice = "Against"
	ChoiceAbstain Choice = "Abstain"
)

func (c Choice) Valid() bool {
	switch c {
	case ChoiceFor, ChoiceAgainst, ChoiceAbstain:
		return true
	default:
		return false
	}
}

// Tally holds per-option running counters. Each field only grows.
type Tally struct {
	For     int64 `json:"for"`
	Against int64 `json:"against"`
	Abstain int64 `json:"abstain"`
}

func (t Tally) Total() int64 {
	return t.For + t.Against + t.Abstain
}

// VoteState is derived from VoteRecord.Paused; there is no terminal state.
type VoteState string

const (
	VoteStateActive VoteState = "active"
	VoteStatePaused VoteState = "paused"
)

// VoteRule is the creator-supplied rule set of a vote.
type VoteRule struct {
	RequiredBalance         int64        `json:"required_balance"`
	MinVotesCount           int64        `json:"min_votes_count"`
	RequiredVotesPercentage int64        `json:"required_votes_percentage"`
	WhitelistEnabled        bool         `json:"whitelist_enabled"`
	Whitelist               PrincipalSet `json:"whitelist"`
	CoinGateEnabled         bool         `json:"coin_gate_enabled"`
	RequiredCoin            Coin         `json:"required_coin"`
}

// VoteRecord is one ballot-collection instance keyed by title.
//
// MinVotesCount, RequiredVotesPercentage and RequiredBalance are advisory:
// they are validated at creation and never enforced by a transition.
type VoteRecord struct {
	Title                   string       `json:"title"`
	Creator                 Principal    `json:"creator"`
	Paused                  bool         `json:"paused"`
	Tally                   Tally        `json:"tally"`
	RequiredBalance         int64        `json:"required_balance"`
	MinVotesCount           int64        `json:"min_votes_count"`
	RequiredVotesPercentage int64        `json:"required_votes_percentage"`
	AlreadyVoted            PrincipalSet `json:"already_voted"`
	WhitelistEnabled        bool         `json:"whitelist_enabled"`
	Whitelist               PrincipalSet `json:"whitelist"`
	CoinGateEnabled         bool         `json:"coin_gate_enabled"`
	RequiredCoin            Coin         `json:"required_coin"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

func (v VoteRecord) State() VoteState {
	if v.Paused {
		return VoteStatePaused
	}
	return VoteStateActive
}

func (v VoteRecord) HasVoted(p Principal) bool {
	return v.AlreadyVoted.Contains(p)
}

func (v VoteRecord) IsWhitelisted(p Principal) bool {
	return v.Whitelist.Contains(p)
}

// Consistent reports whether the tally matches the voter set.
func (v VoteRecord) Consistent() bool {
	return v.Tally.Total() == int64(len(v.AlreadyVoted))
}

// Clone returns a deep copy so transforms never alias stored slices.
func (v VoteRecord) Clone() VoteRecord {
	out := v
	out.AlreadyVoted = v.AlreadyVoted.Clone()
	out.Whitelist = v.Whitelist.Clone()
	return out
}
