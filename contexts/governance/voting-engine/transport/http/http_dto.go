package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CoinDTO is not validated on the way in. Denom matching is part of the ballot
// checks, which run after the vote lookup and the double-vote check.
type CoinDTO struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

type InstantiateRequest struct {
	Admins []string `json:"admins" validate:"dive,required"`
}

// AdminsRequest is shared by add and remove.
type AdminsRequest struct {
	Admins []string `json:"admins" validate:"required,min=1,dive,required"`
}

// CreateVoteRequest carries the rule set as the caller sent it. Range checks
// happen after authorization, so only structure is validated here.
type CreateVoteRequest struct {
	Title                   string   `json:"title"`
	RequiredBalance         int64    `json:"required_balance"`
	MinVotesCount           int64    `json:"min_votes_count"`
	RequiredVotesPercentage int64    `json:"required_votes_percentage"`
	WhitelistOn             bool     `json:"whitelist_on"`
	Whitelist               []string `json:"whitelist"`
	CoinGateOn              bool     `json:"coin_gate_on"`
	RequiredCoin            *CoinDTO `json:"required_coin,omitempty"`
}

type CastBallotRequest struct {
	Choice string    `json:"choice"`
	Funds  []CoinDTO `json:"funds"`
}

// VoteTitleRequest addresses a vote inside an execute message.
type VoteTitleRequest struct {
	Title string `json:"title"`
}

type ExecuteVoteRequest struct {
	Title  string    `json:"title"`
	Choice string    `json:"choice"`
	Funds  []CoinDTO `json:"funds"`
}

// ExecuteRequest is a tagged union: exactly one field must be set.
type ExecuteRequest struct {
	CreateNewVote   *CreateVoteRequest  `json:"create_new_vote,omitempty"`
	Vote            *ExecuteVoteRequest `json:"vote,omitempty"`
	CloseVote       *VoteTitleRequest   `json:"close_vote,omitempty"`
	OpenVote        *VoteTitleRequest   `json:"open_vote,omitempty"`
	ToggleWhitelist *VoteTitleRequest   `json:"toggle_whitelist,omitempty"`
	ToggleCoinGate  *VoteTitleRequest   `json:"toggle_coin_gate,omitempty"`
	AddAdmins       *AdminsRequest      `json:"add_admins,omitempty" validate:"omitempty"`
	RemoveAdmins    *AdminsRequest      `json:"remove_admins,omitempty" validate:"omitempty"`
}

type ConfigResponse struct {
	Owner      string   `json:"owner"`
	Admins     []string `json:"admins"`
	VoteTitles []string `json:"vote_titles"`
}

type StatsResponse struct {
	InProgress int64 `json:"in_progress"`
	Paused     int64 `json:"paused"`
	Accepted   int64 `json:"accepted"`
	Rejected   int64 `json:"rejected"`
}

type TallyResponse struct {
	For     int64 `json:"for"`
	Against int64 `json:"against"`
	Abstain int64 `json:"abstain"`
}

type VoteResponse struct {
	Title                   string        `json:"title"`
	Creator                 string        `json:"creator"`
	State                   string        `json:"state"`
	Paused                  bool          `json:"paused"`
	Tally                   TallyResponse `json:"tally"`
	RequiredBalance         int64         `json:"required_balance"`
	MinVotesCount           int64         `json:"min_votes_count"`
	RequiredVotesPercentage int64         `json:"required_votes_percentage"`
	AlreadyVoted            []string      `json:"already_voted"`
	WhitelistEnabled        bool          `json:"whitelist_enabled"`
	Whitelist               []string      `json:"whitelist"`
	CoinGateEnabled         bool          `json:"coin_gate_enabled"`
	RequiredCoin            CoinDTO       `json:"required_coin"`
	CreatedAt               time.Time     `json:"created_at"`
	UpdatedAt               time.Time     `json:"updated_at"`
}

type VoteTitlesResponse struct {
	Items []string `json:"items"`
}

type VoterResponse struct {
	Title     string `json:"title"`
	Principal string `json:"principal"`
	Voted     bool   `json:"voted"`
}

type ExecuteResponse struct {
	Command string          `json:"command"`
	Vote    *VoteResponse   `json:"vote,omitempty"`
	Config  *ConfigResponse `json:"config,omitempty"`
}
