package services

import (
	"governance/contexts/governance/voting-engine/domain/entities"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
)

// Stats adjustments. Each returns the complete next value so the caller
// persists both counters of a pair in one write.

func StatsVoteOpened(stats entities.Stats) entities.Stats {
	stats.InProgress++
	return stats
}

func StatsVotePaused(stats entities.Stats) (entities.Stats, error) {
	if stats.InProgress <= 0 {
		return stats, domainerrors.ErrStatsOutOfSync
	}
	stats.InProgress--
	stats.Paused++
	return stats, nil
}

func StatsVoteUnpaused(stats entities.Stats) (entities.Stats, error) {
	if stats.Paused <= 0 {
		return stats, domainerrors.ErrStatsOutOfSync
	}
	stats.Paused--
	stats.InProgress++
	return stats, nil
}
