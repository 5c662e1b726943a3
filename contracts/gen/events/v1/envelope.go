package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope for cross-runtime use.
// This package is generated-contract-only and must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Governance event types carried in Envelope.EventType.
const (
	EventGovernanceInstantiated  = "governance.instantiated"
	EventVoteCreated             = "governance.vote.created"
	EventBallotCast              = "governance.ballot.cast"
	EventVotePaused              = "governance.vote.paused"
	EventVoteUnpaused            = "governance.vote.unpaused"
	EventVoteWhitelistToggled    = "governance.vote.whitelist_toggled"
	EventVoteCoinGateToggled     = "governance.vote.coin_gate_toggled"
	EventGovernanceAdminsChanged = "governance.admins.changed"
)
