package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	votingengine "governance/contexts/governance/voting-engine"
	domainerrors "governance/contexts/governance/voting-engine/domain/errors"
	governancehttp "governance/contexts/governance/voting-engine/transport/http"
	_ "governance/internal/platform/httpserver/docs"
)

// SenderHeader carries the calling principal.
const SenderHeader = "X-Sender"

const maxBodyBytes = 1 << 20

type Server struct {
	mux        *http.ServeMux
	logger     *slog.Logger
	addr       string
	governance votingengine.Module
	gatherer   prometheus.Gatherer
}

// New registers governance routes. A nil gatherer disables /metrics.
func New(
	governance votingengine.Module,
	gatherer prometheus.Gatherer,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:        http.NewServeMux(),
		logger:     logger,
		addr:       addr,
		governance: governance,
		gatherer:   gatherer,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("http server stopping",
			"event", "http_server_stopping",
			"module", "internal/platform/httpserver",
			"layer", "platform",
		)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.gatherer != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.mux.HandleFunc("POST /v1/governance/instantiate", s.handleInstantiate)
	s.mux.HandleFunc("POST /v1/governance/execute", s.handleExecute)
	s.mux.HandleFunc("POST /v1/governance/admins", s.handleAddAdmins)
	s.mux.HandleFunc("DELETE /v1/governance/admins", s.handleRemoveAdmins)
	s.mux.HandleFunc("GET /v1/governance/config", s.handleConfig)
	s.mux.HandleFunc("GET /v1/governance/stats", s.handleStats)

	s.mux.HandleFunc("POST /v1/votes", s.handleCreateVote)
	s.mux.HandleFunc("GET /v1/votes", s.handleListVotes)
	s.mux.HandleFunc("GET /v1/votes/{title}", s.handleGetVote)
	s.mux.HandleFunc("POST /v1/votes/{title}/ballots", s.handleCastBallot)
	s.mux.HandleFunc("POST /v1/votes/{title}/pause", s.voteAction(s.governance.Handler.PauseVoteHandler))
	s.mux.HandleFunc("POST /v1/votes/{title}/unpause", s.voteAction(s.governance.Handler.UnpauseVoteHandler))
	s.mux.HandleFunc("POST /v1/votes/{title}/whitelist/toggle", s.voteAction(s.governance.Handler.ToggleWhitelistHandler))
	s.mux.HandleFunc("POST /v1/votes/{title}/coin-gate/toggle", s.voteAction(s.governance.Handler.ToggleCoinGateHandler))
	s.mux.HandleFunc("GET /v1/votes/{title}/voters/{principal}", s.handleVoter)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInstantiate(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.InstantiateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.InstantiateHandler(r.Context(), sender(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.ExecuteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.ExecuteHandler(r.Context(), sender(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAddAdmins(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.AdminsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.AddAdminsHandler(r.Context(), sender(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRemoveAdmins(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.AdminsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.RemoveAdminsHandler(r.Context(), sender(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ConfigHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.StatsHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateVote(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.CreateVoteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CreateVoteHandler(r.Context(), sender(r), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListVotesHandler(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetVote(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetVoteHandler(r.Context(), r.PathValue("title"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastBallot(w http.ResponseWriter, r *http.Request) {
	var req governancehttp.CastBallotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CastBallotHandler(r.Context(), sender(r), r.PathValue("title"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoter(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.VoterHandler(r.Context(), r.PathValue("title"), r.PathValue("principal"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) voteAction(
	action func(context.Context, string, string) (governancehttp.VoteResponse, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := action(r.Context(), sender(r), r.PathValue("title"))
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch domainerrors.Kind(err) {
	case domainerrors.ErrUnauthorized:
		writeError(w, http.StatusForbidden, "unauthorized", err.Error())
	case domainerrors.ErrNotFound:
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case domainerrors.ErrConflict:
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case domainerrors.ErrInvalidArgument:
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	case domainerrors.ErrStateConflict:
		writeError(w, http.StatusConflict, "state_conflict", err.Error())
	case domainerrors.ErrInsufficientFunds:
		writeError(w, http.StatusPaymentRequired, "insufficient_funds", err.Error())
	default:
		s.logger.Error("governance request failed",
			"event", "http_request_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error(),
		)
		writeError(w, http.StatusInternalServerError, "storage_failure", "internal storage failure")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func sender(r *http.Request) string {
	return r.Header.Get(SenderHeader)
}

func writeError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, governancehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
