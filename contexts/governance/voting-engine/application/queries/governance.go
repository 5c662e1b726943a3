package queries

import (
	"context"
	"strings"

	"governance/contexts/governance/voting-engine/application/registry"
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	"governance/contexts/governance/voting-engine/ports"
)

type GovernanceQueries struct {
	Store ports.KVStore
}

func (q GovernanceQueries) reader() registry.Reader {
	return registry.Reader{Store: q.Store}
}

// GetConfig fails with ErrNotInstantiated before Instantiate ran.
func (q GovernanceQueries) GetConfig(ctx context.Context) (entities.GlobalConfig, error) {
	cfg, found, err := q.reader().Config(ctx)
	if err != nil {
		return entities.GlobalConfig{}, err
	}
	if !found {
		return entities.GlobalConfig{}, domainerrors.ErrNotInstantiated
	}
	return cfg, nil
}

func (q GovernanceQueries) GetStats(ctx context.Context) (entities.Stats, error) {
	return q.reader().Stats(ctx)
}

// GetVote reports found=false for unknown titles rather than an error.
func (q GovernanceQueries) GetVote(ctx context.Context, title string) (entities.VoteRecord, bool, error) {
	return q.reader().Vote(ctx, strings.TrimSpace(title))
}

// ListVoteTitles returns titles in creation order.
func (q GovernanceQueries) ListVoteTitles(ctx context.Context) ([]string, error) {
	cfg, found, err := q.reader().Config(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return []string{}, nil
	}
	return append([]string{}, cfg.VoteTitles...), nil
}

func (q GovernanceQueries) HasVoted(ctx context.Context, title string, principal entities.Principal) (bool, error) {
	record, found, err := q.GetVote(ctx, title)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domainerrors.ErrCannotFindVote
	}
	return record.HasVoted(entities.NormalizePrincipal(principal.String())), nil
}
