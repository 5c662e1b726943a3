package commands

import (
	"context"

	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

// Command is a decoded execute message. Name returns its snake_case wire tag.
type Command interface {
	Name() string
}

// Wire tags accepted by Execute.
const (
	CommandCreateNewVote   = "create_new_vote"
	CommandVote            = "vote"
	CommandCloseVote       = "close_vote"
	CommandOpenVote        = "open_vote"
	CommandToggleWhitelist = "toggle_whitelist"
	CommandToggleCoinGate  = "toggle_coin_gate"
	CommandAddAdmins       = "add_admins"
	CommandRemoveAdmins    = "remove_admins"
)

func (CreateVoteCommand) Name() string      { return CommandCreateNewVote }
func (CastBallotCommand) Name() string      { return CommandVote }
func (PauseCommand) Name() string           { return CommandCloseVote }
func (UnpauseCommand) Name() string         { return CommandOpenVote }
func (ToggleWhitelistCommand) Name() string { return CommandToggleWhitelist }
func (ToggleCoinGateCommand) Name() string  { return CommandToggleCoinGate }
func (AddAdminsCommand) Name() string       { return CommandAddAdmins }
func (RemoveAdminsCommand) Name() string    { return CommandRemoveAdmins }

// Distinct types for actions that share a payload shape.
type (
	PauseCommand           VoteActionCommand
	UnpauseCommand         VoteActionCommand
	ToggleWhitelistCommand VoteActionCommand
	ToggleCoinGateCommand  VoteActionCommand
	AddAdminsCommand       AdminsCommand
	RemoveAdminsCommand    AdminsCommand
)

// ExecuteResult carries whichever state the dispatched transition returns.
type ExecuteResult struct {
	Command string
	Vote    *entities.VoteRecord
	Config  *entities.GlobalConfig
}

// Execute dispatches a decoded command to its transition.
func (uc GovernanceUseCase) Execute(ctx context.Context, cmd Command) (ExecuteResult, error) {
	if cmd == nil {
		return ExecuteResult{}, domainerrors.ErrInvalidCommand
	}
	result := ExecuteResult{Command: cmd.Name()}
	var (
		vote entities.VoteRecord
		cfg  entities.GlobalConfig
		err  error
	)
	switch c := cmd.(type) {
	case CreateVoteCommand:
		vote, err = uc.CreateVote(ctx, c)
	case CastBallotCommand:
		vote, err = uc.CastBallot(ctx, c)
	case PauseCommand:
		vote, err = uc.PauseVote(ctx, VoteActionCommand(c))
	case UnpauseCommand:
		vote, err = uc.UnpauseVote(ctx, VoteActionCommand(c))
	case ToggleWhitelistCommand:
		vote, err = uc.ToggleWhitelist(ctx, VoteActionCommand(c))
	case ToggleCoinGateCommand:
		vote, err = uc.ToggleCoinGate(ctx, VoteActionCommand(c))
	case AddAdminsCommand:
		cfg, err = uc.AddAdmins(ctx, AdminsCommand(c))
		if err == nil {
			result.Config = &cfg
		}
		return result, err
	case RemoveAdminsCommand:
		cfg, err = uc.RemoveAdmins(ctx, AdminsCommand(c))
		if err == nil {
			result.Config = &cfg
		}
		return result, err
	default:
		return ExecuteResult{}, domainerrors.ErrInvalidCommand
	}
	if err != nil {
		return result, err
	}
	result.Vote = &vote
	return result, nil
}
