package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	application "governance/contexts/governance/voting-engine/application"
	"governance/contexts/governance/voting-engine/application/registry"
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/domain/services"
	"governance/contexts/governance/voting-engine/ports"
	contractsv1 "governance/contracts/gen/events/v1"
)

// InstantiateCommand writes the singleton config. Sender becomes the owner.
type InstantiateCommand struct {
	Sender entities.Principal
	Admins []entities.Principal
}

type CreateVoteCommand struct {
	Sender entities.Principal
	Title  string
	Rule   entities.VoteRule
}

type CastBallotCommand struct {
	Sender entities.Principal
	Title  string
	Choice entities.Choice
	Funds  entities.Funds
}

// VoteActionCommand addresses an existing vote for pause, unpause and the
// two toggles.
type VoteActionCommand struct {
	Sender entities.Principal
	Title  string
}

type AdminsCommand struct {
	Sender entities.Principal
	Admins []entities.Principal
}

// GovernanceUseCase runs every state transition as one KVStore.Update call.
// Config, stats, the vote record and the outbox row are read and written
// inside that call, so a failed check leaves storage untouched.
type GovernanceUseCase struct {
	Store   ports.KVStore
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Metrics ports.Metrics
	Logger  *slog.Logger
}

var errIDGeneratorMissing = errors.New("event id generator is not configured")

func (uc GovernanceUseCase) Instantiate(ctx context.Context, cmd InstantiateCommand) (entities.GlobalConfig, error) {
	owner := entities.NormalizePrincipal(cmd.Sender.String())
	var out entities.GlobalConfig
	err := uc.run(ctx, "instantiate", []any{"sender", owner.String()}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		if owner.IsZero() {
			return nil, domainerrors.ErrInvalidSender
		}
		if _, found, err := tx.Config(); err != nil {
			return nil, err
		} else if found {
			return nil, domainerrors.ErrAlreadyInstantiated
		}
		cfg := entities.GlobalConfig{
			Owner:      owner,
			Admins:     entities.NewPrincipalSet(cmd.Admins).Remove(owner),
			VoteTitles: []string{},
		}
		if err := tx.PutConfig(cfg); err != nil {
			return nil, err
		}
		stats := entities.Stats{}
		if err := tx.PutStats(stats); err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, contractsv1.EventGovernanceInstantiated, "config", registry.ConfigKey, now, map[string]any{
			"owner":  cfg.Owner,
			"admins": cfg.Admins,
		}); err != nil {
			return nil, err
		}
		out = cfg
		return &stats, nil
	})
	return out, err
}

// CreateVote opens a new Active vote. Checks run as authorization, rule
// validation, title validation, then uniqueness.
func (uc GovernanceUseCase) CreateVote(ctx context.Context, cmd CreateVoteCommand) (entities.VoteRecord, error) {
	sender := entities.NormalizePrincipal(cmd.Sender.String())
	var out entities.VoteRecord
	err := uc.run(ctx, "create_vote", []any{"sender", sender.String(), "title", strings.TrimSpace(cmd.Title)}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		cfg, err := tx.RequireConfig()
		if err != nil {
			return nil, err
		}
		if err := services.RequireElevatedRights(cfg, sender); err != nil {
			return nil, err
		}
		if err := services.ValidateRule(cmd.Rule); err != nil {
			return nil, err
		}
		title, err := services.NormalizeTitle(cmd.Title)
		if err != nil {
			return nil, err
		}
		record, err := services.NewVoteRecord(title, sender, cmd.Rule, now)
		if err != nil {
			return nil, err
		}
		if _, err := tx.CreateVote(cfg, record); err != nil {
			return nil, err
		}
		stats, err := tx.Stats()
		if err != nil {
			return nil, err
		}
		stats = services.StatsVoteOpened(stats)
		if err := tx.PutStats(stats); err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, contractsv1.EventVoteCreated, "title", title, now, map[string]any{
			"title":                     title,
			"creator":                   sender,
			"min_votes_count":           record.MinVotesCount,
			"required_votes_percentage": record.RequiredVotesPercentage,
			"whitelist_enabled":         record.WhitelistEnabled,
			"coin_gate_enabled":         record.CoinGateEnabled,
		}); err != nil {
			return nil, err
		}
		out = record
		return &stats, nil
	})
	return out, err
}

// CastBallot records one ballot. Eligibility is checked in the order
// existence, prior participation, paused, whitelist, funding, choice.
func (uc GovernanceUseCase) CastBallot(ctx context.Context, cmd CastBallotCommand) (entities.VoteRecord, error) {
	voter := entities.NormalizePrincipal(cmd.Sender.String())
	title := strings.TrimSpace(cmd.Title)
	var out entities.VoteRecord
	err := uc.run(ctx, "cast_ballot", []any{"sender", voter.String(), "title", title}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		if voter.IsZero() {
			return nil, domainerrors.ErrInvalidSender
		}
		next, _, err := tx.UpdateVote(title, func(record entities.VoteRecord) (entities.VoteRecord, bool, error) {
			cfg, err := tx.RequireConfig()
			if err != nil {
				return record, false, err
			}
			if err := services.CheckBallot(cfg, record, voter, cmd.Choice, cmd.Funds); err != nil {
				return record, false, err
			}
			return services.ApplyBallot(record, voter, cmd.Choice, now), true, nil
		})
		if err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, contractsv1.EventBallotCast, "title", title, now, map[string]any{
			"title":  title,
			"voter":  voter,
			"choice": cmd.Choice,
			"tally":  next.Tally,
		}); err != nil {
			return nil, err
		}
		out = next
		return nil, nil
	})
	return out, err
}

// PauseVote is idempotent: pausing a paused vote succeeds without touching
// stats or emitting an event.
func (uc GovernanceUseCase) PauseVote(ctx context.Context, cmd VoteActionCommand) (entities.VoteRecord, error) {
	return uc.setPaused(ctx, "pause_vote", cmd, true)
}

func (uc GovernanceUseCase) UnpauseVote(ctx context.Context, cmd VoteActionCommand) (entities.VoteRecord, error) {
	return uc.setPaused(ctx, "unpause_vote", cmd, false)
}

func (uc GovernanceUseCase) setPaused(ctx context.Context, operation string, cmd VoteActionCommand, paused bool) (entities.VoteRecord, error) {
	sender := entities.NormalizePrincipal(cmd.Sender.String())
	title := strings.TrimSpace(cmd.Title)
	var out entities.VoteRecord
	err := uc.run(ctx, operation, []any{"sender", sender.String(), "title", title}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		cfg, err := tx.RequireConfig()
		if err != nil {
			return nil, err
		}
		if err := services.RequireElevatedRights(cfg, sender); err != nil {
			return nil, err
		}
		next, changed, err := tx.UpdateVote(title, func(record entities.VoteRecord) (entities.VoteRecord, bool, error) {
			next, changed := services.SetPaused(record, paused, now)
			return next, changed, nil
		})
		if err != nil {
			return nil, err
		}
		out = next
		if !changed {
			return nil, nil
		}

		stats, err := tx.Stats()
		if err != nil {
			return nil, err
		}
		eventType := contractsv1.EventVotePaused
		if paused {
			stats, err = services.StatsVotePaused(stats)
		} else {
			eventType = contractsv1.EventVoteUnpaused
			stats, err = services.StatsVoteUnpaused(stats)
		}
		if err != nil {
			return nil, err
		}
		if err := tx.PutStats(stats); err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, eventType, "title", title, now, map[string]any{
			"title": title,
			"actor": sender,
		}); err != nil {
			return nil, err
		}
		return &stats, nil
	})
	return out, err
}

func (uc GovernanceUseCase) ToggleWhitelist(ctx context.Context, cmd VoteActionCommand) (entities.VoteRecord, error) {
	return uc.toggle(ctx, "toggle_whitelist", contractsv1.EventVoteWhitelistToggled, cmd, services.ToggleWhitelist)
}

func (uc GovernanceUseCase) ToggleCoinGate(ctx context.Context, cmd VoteActionCommand) (entities.VoteRecord, error) {
	return uc.toggle(ctx, "toggle_coin_gate", contractsv1.EventVoteCoinGateToggled, cmd, services.ToggleCoinGate)
}

func (uc GovernanceUseCase) toggle(
	ctx context.Context,
	operation string,
	eventType string,
	cmd VoteActionCommand,
	flip func(entities.VoteRecord, time.Time) entities.VoteRecord,
) (entities.VoteRecord, error) {
	sender := entities.NormalizePrincipal(cmd.Sender.String())
	title := strings.TrimSpace(cmd.Title)
	var out entities.VoteRecord
	err := uc.run(ctx, operation, []any{"sender", sender.String(), "title", title}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		cfg, err := tx.RequireConfig()
		if err != nil {
			return nil, err
		}
		if err := services.RequireElevatedRights(cfg, sender); err != nil {
			return nil, err
		}
		next, _, err := tx.UpdateVote(title, func(record entities.VoteRecord) (entities.VoteRecord, bool, error) {
			next := flip(record, now)
			if err := services.RequireGateCoin(next.CoinGateEnabled, next.RequiredCoin); err != nil {
				return record, false, err
			}
			return next, true, nil
		})
		if err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, eventType, "title", title, now, map[string]any{
			"title":             title,
			"actor":             sender,
			"whitelist_enabled": next.WhitelistEnabled,
			"coin_gate_enabled": next.CoinGateEnabled,
		}); err != nil {
			return nil, err
		}
		out = next
		return nil, nil
	})
	return out, err
}

// AddAdmins is owner-only. Existing members and the owner are skipped.
func (uc GovernanceUseCase) AddAdmins(ctx context.Context, cmd AdminsCommand) (entities.GlobalConfig, error) {
	return uc.changeAdmins(ctx, "add_admins", cmd, func(cfg entities.GlobalConfig, principal entities.Principal) entities.PrincipalSet {
		if principal == cfg.Owner {
			return cfg.Admins
		}
		return cfg.Admins.Add(principal)
	})
}

// RemoveAdmins is owner-only. Removing a non-member is a no-op.
func (uc GovernanceUseCase) RemoveAdmins(ctx context.Context, cmd AdminsCommand) (entities.GlobalConfig, error) {
	return uc.changeAdmins(ctx, "remove_admins", cmd, func(cfg entities.GlobalConfig, principal entities.Principal) entities.PrincipalSet {
		return cfg.Admins.Remove(principal)
	})
}

func (uc GovernanceUseCase) changeAdmins(
	ctx context.Context,
	operation string,
	cmd AdminsCommand,
	apply func(entities.GlobalConfig, entities.Principal) entities.PrincipalSet,
) (entities.GlobalConfig, error) {
	sender := entities.NormalizePrincipal(cmd.Sender.String())
	var out entities.GlobalConfig
	err := uc.run(ctx, operation, []any{"sender", sender.String(), "admins_count", len(cmd.Admins)}, func(tx registry.Tx, now time.Time) (*entities.Stats, error) {
		cfg, err := tx.RequireConfig()
		if err != nil {
			return nil, err
		}
		if err := services.RequireOwner(cfg, sender); err != nil {
			return nil, err
		}
		next := cfg.Clone()
		for _, principal := range entities.NewPrincipalSet(cmd.Admins) {
			next.Admins = apply(next, principal)
		}
		out = next
		if samePrincipals(cfg.Admins, next.Admins) {
			out = cfg
			return nil, nil
		}
		if err := tx.PutConfig(next); err != nil {
			return nil, err
		}
		if err := uc.emit(ctx, tx, contractsv1.EventGovernanceAdminsChanged, "config", registry.ConfigKey, now, map[string]any{
			"actor":     sender,
			"operation": operation,
			"admins":    next.Admins,
		}); err != nil {
			return nil, err
		}
		return nil, nil
	})
	return out, err
}

func samePrincipals(a entities.PrincipalSet, b entities.PrincipalSet) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// run wraps fn in one storage transaction with logging and metrics. fn
// returns the stats it wrote, if any, so gauges are refreshed after commit.
func (uc GovernanceUseCase) run(
	ctx context.Context,
	operation string,
	attrs []any,
	fn func(tx registry.Tx, now time.Time) (*entities.Stats, error),
) error {
	logger := application.ResolveLogger(uc.Logger)
	started := time.Now()
	base := append([]any{
		"module", "governance/voting-engine",
		"layer", "application",
		"operation", operation,
	}, attrs...)
	logger.Debug("governance transition started", append([]any{"event", "governance_" + operation + "_started"}, base...)...)

	now := uc.now()
	var written *entities.Stats
	err := uc.Store.Update(ctx, func(txn ports.KVTxn) error {
		stats, err := fn(registry.Wrap(txn), now)
		if err != nil {
			return err
		}
		written = stats
		return nil
	})
	if err != nil {
		err = normalizeError(err)
		level := slog.LevelWarn
		if errors.Is(err, domainerrors.ErrStorageFailure) {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "governance transition rejected", append([]any{
			"event", "governance_" + operation + "_failed",
			"error", err.Error(),
		}, base...)...)
		uc.observe(operation, outcome(err), started)
		return err
	}

	logger.Info("governance transition applied", append([]any{"event", "governance_" + operation + "_completed"}, base...)...)
	uc.observe(operation, "ok", started)
	if written != nil && uc.Metrics != nil {
		uc.Metrics.ObserveStats(*written)
	}
	return nil
}

func (uc GovernanceUseCase) emit(
	ctx context.Context,
	tx registry.Tx,
	eventType string,
	partitionKeyPath string,
	partitionKey string,
	now time.Time,
	data map[string]any,
) error {
	if uc.IDGen == nil {
		return domainerrors.Storage("generate event id", errIDGeneratorMissing)
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return domainerrors.Storage("generate event id", err)
	}
	envelope, err := newGovernanceEnvelope(eventID, eventType, partitionKeyPath, partitionKey, now, data)
	if err != nil {
		return domainerrors.Storage("encode event", err)
	}
	return tx.AppendOutbox(envelope)
}

func (uc GovernanceUseCase) observe(operation string, result string, started time.Time) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.ObserveTransition(operation, result, time.Since(started))
}

func (uc GovernanceUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// normalizeError guarantees every returned error carries a kind. Errors an
// adapter returned without wrapping are treated as storage failures.
func normalizeError(err error) error {
	if domainerrors.Kind(err) != nil {
		return err
	}
	return domainerrors.Storage("update", err)
}

func outcome(err error) string {
	switch domainerrors.Kind(err) {
	case domainerrors.ErrUnauthorized:
		return "unauthorized"
	case domainerrors.ErrNotFound:
		return "not_found"
	case domainerrors.ErrConflict:
		return "conflict"
	case domainerrors.ErrInvalidArgument:
		return "invalid_argument"
	case domainerrors.ErrStateConflict:
		return "state_conflict"
	case domainerrors.ErrInsufficientFunds:
		return "insufficient_funds"
	default:
		return "storage_failure"
	}
}
