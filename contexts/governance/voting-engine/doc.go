// Package votingengine implements the governance vote engine.
//
// An owner, or an admin the owner delegated to, opens named votes with a rule
// set (optional whitelist, optional coin gate, advisory thresholds).
// Participants cast one ballot each. The module keeps per-vote tallies and
// registry-wide statistics, and every transition commits config, stats, vote
// record and outbox event through a single key-value store transaction.
package votingengine
