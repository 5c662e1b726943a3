package httpadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"governance/contexts/governance/voting-engine/application"
	"governance/contexts/governance/voting-engine/application/commands"
	"governance/contexts/governance/voting-engine/application/queries"
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	httptransport "governance/contexts/governance/voting-engine/transport/http"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Handler struct {
	Governance commands.GovernanceUseCase
	Queries    queries.GovernanceQueries
	Logger     *slog.Logger
}

func (h Handler) InstantiateHandler(
	ctx context.Context,
	sender string,
	req httptransport.InstantiateRequest,
) (httptransport.ConfigResponse, error) {
	if err := h.validateRequest("instantiate", sender, req); err != nil {
		return httptransport.ConfigResponse{}, err
	}
	cfg, err := h.Governance.Instantiate(ctx, commands.InstantiateCommand{
		Sender: entities.NormalizePrincipal(sender),
		Admins: principals(req.Admins),
	})
	if err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return mapConfig(cfg), nil
}

func (h Handler) ExecuteHandler(
	ctx context.Context,
	sender string,
	req httptransport.ExecuteRequest,
) (httptransport.ExecuteResponse, error) {
	if err := h.validateRequest("execute", sender, req); err != nil {
		return httptransport.ExecuteResponse{}, err
	}
	cmd, err := decodeCommand(entities.NormalizePrincipal(sender), req)
	if err != nil {
		h.logRejected("execute", sender, err)
		return httptransport.ExecuteResponse{}, err
	}
	result, err := h.Governance.Execute(ctx, cmd)
	if err != nil {
		return httptransport.ExecuteResponse{}, err
	}
	resp := httptransport.ExecuteResponse{Command: result.Command}
	if result.Vote != nil {
		vote := mapVote(*result.Vote)
		resp.Vote = &vote
	}
	if result.Config != nil {
		cfg := mapConfig(*result.Config)
		resp.Config = &cfg
	}
	return resp, nil
}

func (h Handler) AddAdminsHandler(
	ctx context.Context,
	sender string,
	req httptransport.AdminsRequest,
) (httptransport.ConfigResponse, error) {
	if err := h.validateRequest("add_admins", sender, req); err != nil {
		return httptransport.ConfigResponse{}, err
	}
	cfg, err := h.Governance.AddAdmins(ctx, commands.AdminsCommand{
		Sender: entities.NormalizePrincipal(sender),
		Admins: principals(req.Admins),
	})
	if err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return mapConfig(cfg), nil
}

func (h Handler) RemoveAdminsHandler(
	ctx context.Context,
	sender string,
	req httptransport.AdminsRequest,
) (httptransport.ConfigResponse, error) {
	if err := h.validateRequest("remove_admins", sender, req); err != nil {
		return httptransport.ConfigResponse{}, err
	}
	cfg, err := h.Governance.RemoveAdmins(ctx, commands.AdminsCommand{
		Sender: entities.NormalizePrincipal(sender),
		Admins: principals(req.Admins),
	})
	if err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return mapConfig(cfg), nil
}

func (h Handler) CreateVoteHandler(
	ctx context.Context,
	sender string,
	req httptransport.CreateVoteRequest,
) (httptransport.VoteResponse, error) {
	if err := h.validateRequest("create_vote", sender, req); err != nil {
		return httptransport.VoteResponse{}, err
	}
	record, err := h.Governance.CreateVote(ctx, createCommand(entities.NormalizePrincipal(sender), req))
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(record), nil
}

func (h Handler) CastBallotHandler(
	ctx context.Context,
	sender string,
	title string,
	req httptransport.CastBallotRequest,
) (httptransport.VoteResponse, error) {
	if err := h.validateRequest("cast_ballot", sender, req); err != nil {
		return httptransport.VoteResponse{}, err
	}
	record, err := h.Governance.CastBallot(ctx, commands.CastBallotCommand{
		Sender: entities.NormalizePrincipal(sender),
		Title:  title,
		Choice: entities.Choice(req.Choice),
		Funds:  funds(req.Funds),
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(record), nil
}

func (h Handler) PauseVoteHandler(ctx context.Context, sender string, title string) (httptransport.VoteResponse, error) {
	return h.voteAction(ctx, h.Governance.PauseVote, sender, title)
}

func (h Handler) UnpauseVoteHandler(ctx context.Context, sender string, title string) (httptransport.VoteResponse, error) {
	return h.voteAction(ctx, h.Governance.UnpauseVote, sender, title)
}

func (h Handler) ToggleWhitelistHandler(ctx context.Context, sender string, title string) (httptransport.VoteResponse, error) {
	return h.voteAction(ctx, h.Governance.ToggleWhitelist, sender, title)
}

func (h Handler) ToggleCoinGateHandler(ctx context.Context, sender string, title string) (httptransport.VoteResponse, error) {
	return h.voteAction(ctx, h.Governance.ToggleCoinGate, sender, title)
}

func (h Handler) voteAction(
	ctx context.Context,
	action func(context.Context, commands.VoteActionCommand) (entities.VoteRecord, error),
	sender string,
	title string,
) (httptransport.VoteResponse, error) {
	record, err := action(ctx, commands.VoteActionCommand{
		Sender: entities.NormalizePrincipal(sender),
		Title:  title,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return mapVote(record), nil
}

func (h Handler) ConfigHandler(ctx context.Context) (httptransport.ConfigResponse, error) {
	cfg, err := h.Queries.GetConfig(ctx)
	if err != nil {
		return httptransport.ConfigResponse{}, err
	}
	return mapConfig(cfg), nil
}

func (h Handler) StatsHandler(ctx context.Context) (httptransport.StatsResponse, error) {
	stats, err := h.Queries.GetStats(ctx)
	if err != nil {
		return httptransport.StatsResponse{}, err
	}
	return httptransport.StatsResponse{
		InProgress: stats.InProgress,
		Paused:     stats.Paused,
		Accepted:   stats.Accepted,
		Rejected:   stats.Rejected,
	}, nil
}

func (h Handler) ListVotesHandler(ctx context.Context) (httptransport.VoteTitlesResponse, error) {
	titles, err := h.Queries.ListVoteTitles(ctx)
	if err != nil {
		return httptransport.VoteTitlesResponse{}, err
	}
	return httptransport.VoteTitlesResponse{Items: titles}, nil
}

func (h Handler) GetVoteHandler(ctx context.Context, title string) (httptransport.VoteResponse, error) {
	record, found, err := h.Queries.GetVote(ctx, title)
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	if !found {
		return httptransport.VoteResponse{}, domainerrors.ErrCannotFindVote
	}
	return mapVote(record), nil
}

func (h Handler) VoterHandler(ctx context.Context, title string, principal string) (httptransport.VoterResponse, error) {
	voted, err := h.Queries.HasVoted(ctx, title, entities.NormalizePrincipal(principal))
	if err != nil {
		return httptransport.VoterResponse{}, err
	}
	return httptransport.VoterResponse{
		Title:     title,
		Principal: principal,
		Voted:     voted,
	}, nil
}

// decodeCommand maps the tagged union onto its application command.
func decodeCommand(sender entities.Principal, req httptransport.ExecuteRequest) (commands.Command, error) {
	var (
		cmd commands.Command
		set int
	)
	if req.CreateNewVote != nil {
		set++
		cmd = createCommand(sender, *req.CreateNewVote)
	}
	if req.Vote != nil {
		set++
		cmd = commands.CastBallotCommand{
			Sender: sender,
			Title:  req.Vote.Title,
			Choice: entities.Choice(req.Vote.Choice),
			Funds:  funds(req.Vote.Funds),
		}
	}
	if req.CloseVote != nil {
		set++
		cmd = commands.PauseCommand{Sender: sender, Title: req.CloseVote.Title}
	}
	if req.OpenVote != nil {
		set++
		cmd = commands.UnpauseCommand{Sender: sender, Title: req.OpenVote.Title}
	}
	if req.ToggleWhitelist != nil {
		set++
		cmd = commands.ToggleWhitelistCommand{Sender: sender, Title: req.ToggleWhitelist.Title}
	}
	if req.ToggleCoinGate != nil {
		set++
		cmd = commands.ToggleCoinGateCommand{Sender: sender, Title: req.ToggleCoinGate.Title}
	}
	if req.AddAdmins != nil {
		set++
		cmd = commands.AddAdminsCommand{Sender: sender, Admins: principals(req.AddAdmins.Admins)}
	}
	if req.RemoveAdmins != nil {
		set++
		cmd = commands.RemoveAdminsCommand{Sender: sender, Admins: principals(req.RemoveAdmins.Admins)}
	}
	if set != 1 {
		return nil, domainerrors.ErrInvalidCommand
	}
	return cmd, nil
}

func createCommand(sender entities.Principal, req httptransport.CreateVoteRequest) commands.CreateVoteCommand {
	rule := entities.VoteRule{
		RequiredBalance:         req.RequiredBalance,
		MinVotesCount:           req.MinVotesCount,
		RequiredVotesPercentage: req.RequiredVotesPercentage,
		WhitelistEnabled:        req.WhitelistOn,
		Whitelist:               principals(req.Whitelist),
		CoinGateEnabled:         req.CoinGateOn,
	}
	if req.RequiredCoin != nil {
		rule.RequiredCoin = entities.Coin{Denom: req.RequiredCoin.Denom, Amount: req.RequiredCoin.Amount}
	}
	return commands.CreateVoteCommand{
		Sender: sender,
		Title:  req.Title,
		Rule:   rule,
	}
}

func (h Handler) validateRequest(operation string, sender string, req any) error {
	if err := validate.Struct(req); err != nil {
		err = fmt.Errorf("%w: %v", domainerrors.ErrInvalidArgument, err)
		h.logRejected(operation, sender, err)
		return err
	}
	return nil
}

func (h Handler) logRejected(operation string, sender string, err error) {
	application.ResolveLogger(h.Logger).Warn("http governance request rejected",
		"event", "governance_http_request_rejected",
		"module", "governance/voting-engine",
		"layer", "transport",
		"operation", operation,
		"sender", sender,
		"error", err.Error(),
	)
}

func principals(values []string) []entities.Principal {
	out := make([]entities.Principal, 0, len(values))
	for _, value := range values {
		out = append(out, entities.NormalizePrincipal(value))
	}
	return out
}

func funds(coins []httptransport.CoinDTO) entities.Funds {
	out := make(entities.Funds, 0, len(coins))
	for _, coin := range coins {
		out = append(out, entities.Coin{Denom: coin.Denom, Amount: coin.Amount})
	}
	return out
}

func mapConfig(cfg entities.GlobalConfig) httptransport.ConfigResponse {
	return httptransport.ConfigResponse{
		Owner:      cfg.Owner.String(),
		Admins:     principalStrings(cfg.Admins),
		VoteTitles: append([]string{}, cfg.VoteTitles...),
	}
}

func mapVote(record entities.VoteRecord) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		Title:   record.Title,
		Creator: record.Creator.String(),
		State:   string(record.State()),
		Paused:  record.Paused,
		Tally: httptransport.TallyResponse{
			For:     record.Tally.For,
			Against: record.Tally.Against,
			Abstain: record.Tally.Abstain,
		},
		RequiredBalance:         record.RequiredBalance,
		MinVotesCount:           record.MinVotesCount,
		RequiredVotesPercentage: record.RequiredVotesPercentage,
		AlreadyVoted:            principalStrings(record.AlreadyVoted),
		WhitelistEnabled:        record.WhitelistEnabled,
		Whitelist:               principalStrings(record.Whitelist),
		CoinGateEnabled:         record.CoinGateEnabled,
		RequiredCoin: httptransport.CoinDTO{
			Denom:  record.RequiredCoin.Denom,
			Amount: record.RequiredCoin.Amount,
		},
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

func principalStrings(set entities.PrincipalSet) []string {
	out := make([]string, 0, len(set))
	for _, item := range set {
		out = append(out, item.String())
	}
	return out
}
