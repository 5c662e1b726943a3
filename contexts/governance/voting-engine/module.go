package votingengine

import (
	"log/slog"

	httpadapter "governance/contexts/governance/voting-engine/adapters/http"
	"governance/contexts/governance/voting-engine/application/commands"
	"governance/contexts/governance/voting-engine/application/queries"
	"governance/contexts/governance/voting-engine/application/workers"
	"governance/contexts/governance/voting-engine/ports"
)

type Module struct {
	Handler    httpadapter.Handler
	Governance commands.GovernanceUseCase
	Queries    queries.GovernanceQueries
	Relay      workers.OutboxRelay
	Store      ports.KVStore
}

type Dependencies struct {
	Store          ports.KVStore
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Metrics        ports.Metrics
	Publisher      ports.EventPublisher
	RelayBatchSize int
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	governance := commands.GovernanceUseCase{
		Store:   deps.Store,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
	}
	governanceQueries := queries.GovernanceQueries{
		Store: deps.Store,
	}
	return Module{
		Handler: httpadapter.Handler{
			Governance: governance,
			Queries:    governanceQueries,
			Logger:     deps.Logger,
		},
		Governance: governance,
		Queries:    governanceQueries,
		Relay: workers.OutboxRelay{
			Store:     deps.Store,
			Publisher: deps.Publisher,
			BatchSize: deps.RelayBatchSize,
			Logger:    deps.Logger,
		},
		Store: deps.Store,
	}
}
