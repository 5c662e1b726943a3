package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	votingengine "governance/contexts/governance/voting-engine"
	"governance/contexts/governance/voting-engine/adapters/memory"
	governancehttp "governance/contexts/governance/voting-engine/transport/http"
	"governance/internal/platform/kv"
	"governance/internal/platform/metrics"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	registry := prometheus.NewRegistry()
	module := votingengine.NewModule(votingengine.Dependencies{
		Store:   memory.NewStore(),
		Clock:   kv.SystemClock{},
		IDGen:   kv.UUIDGenerator{},
		Metrics: metrics.New(registry),
	})

	srv := httptest.NewServer(New(module, registry, nil, "").Handler())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method string, path string, sender string, body any) (*http.Response, []byte) {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &payload)
	require.NoError(t, err)
	if sender != "" {
		req.Header.Set(SenderHeader, sender)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func decodeError(t *testing.T, raw []byte) governancehttp.ErrorResponse {
	t.Helper()
	var out governancehttp.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func instantiate(t *testing.T, srv *httptest.Server) {
	t.Helper()
	resp, _ := call(t, srv, http.MethodPost, "/v1/governance/instantiate", "owner",
		governancehttp.InstantiateRequest{Admins: []string{"admin"}})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, body := call(t, srv, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestVoteFlowOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)

	resp, body := call(t, srv, http.MethodPost, "/v1/votes", "admin", governancehttp.CreateVoteRequest{
		Title:                   "budget",
		RequiredVotesPercentage: 50,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = call(t, srv, http.MethodPost, "/v1/votes/budget/ballots", "alice",
		governancehttp.CastBallotRequest{Choice: "For"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var vote governancehttp.VoteResponse
	require.NoError(t, json.Unmarshal(body, &vote))
	require.Equal(t, int64(1), vote.Tally.For)
	require.Equal(t, []string{"alice"}, vote.AlreadyVoted)

	resp, body = call(t, srv, http.MethodGet, "/v1/votes/budget/voters/alice", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var voter governancehttp.VoterResponse
	require.NoError(t, json.Unmarshal(body, &voter))
	require.True(t, voter.Voted)

	resp, _ = call(t, srv, http.MethodPost, "/v1/votes/budget/pause", "owner", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, srv, http.MethodGet, "/v1/governance/stats", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"in_progress":0,"paused":1,"accepted":0,"rejected":0}`, string(body))

	resp, body = call(t, srv, http.MethodGet, "/v1/votes", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"items":["budget"]}`, string(body))
}

func TestErrorKindsMapToStatus(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)

	resp, body := call(t, srv, http.MethodPost, "/v1/votes", "mallory", governancehttp.CreateVoteRequest{Title: "x"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Equal(t, "unauthorized", decodeError(t, body).Code)

	resp, body = call(t, srv, http.MethodGet, "/v1/votes/missing", "", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", decodeError(t, body).Code)

	resp, body = call(t, srv, http.MethodPost, "/v1/governance/instantiate", "owner", governancehttp.InstantiateRequest{})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "conflict", decodeError(t, body).Code)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes", "owner", governancehttp.CreateVoteRequest{
		Title:                   "too-much",
		RequiredVotesPercentage: 101,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_argument", decodeError(t, body).Code)

	resp, _ = call(t, srv, http.MethodPost, "/v1/votes", "owner", governancehttp.CreateVoteRequest{
		Title:        "gated",
		CoinGateOn:   true,
		RequiredCoin: &governancehttp.CoinDTO{Denom: "test", Amount: 1},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice", governancehttp.CastBallotRequest{
		Choice: "For",
		Funds:  []governancehttp.CoinDTO{{Denom: "earth", Amount: 1000}},
	})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	require.Equal(t, "insufficient_funds", decodeError(t, body).Code)

	resp, _ = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice", governancehttp.CastBallotRequest{
		Choice: "For",
		Funds:  []governancehttp.CoinDTO{{Denom: "test", Amount: 1}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice", governancehttp.CastBallotRequest{
		Choice: "For",
		Funds:  []governancehttp.CoinDTO{{Denom: "test", Amount: 1}},
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "state_conflict", decodeError(t, body).Code)
}

func TestBallotFundsCheckedAfterVoteLookup(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)
	blank := []governancehttp.CoinDTO{{Denom: "", Amount: 5}}

	resp, body := call(t, srv, http.MethodPost, "/v1/votes/missing/ballots", "alice",
		governancehttp.CastBallotRequest{Choice: "For", Funds: blank})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "not_found", decodeError(t, body).Code)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes", "owner", governancehttp.CreateVoteRequest{
		Title:      "gated",
		CoinGateOn: true,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_argument", decodeError(t, body).Code)

	resp, _ = call(t, srv, http.MethodPost, "/v1/votes", "owner", governancehttp.CreateVoteRequest{
		Title:        "gated",
		CoinGateOn:   true,
		RequiredCoin: &governancehttp.CoinDTO{Denom: "test", Amount: 1},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice",
		governancehttp.CastBallotRequest{Choice: "For", Funds: blank})
	require.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	require.Equal(t, "insufficient_funds", decodeError(t, body).Code)

	resp, _ = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice",
		governancehttp.CastBallotRequest{Choice: "For", Funds: []governancehttp.CoinDTO{{Denom: "test", Amount: 1}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = call(t, srv, http.MethodPost, "/v1/votes/gated/ballots", "alice",
		governancehttp.CastBallotRequest{Choice: "For", Funds: blank})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.Equal(t, "state_conflict", decodeError(t, body).Code)
}

func TestInvalidJSON(t *testing.T) {
	srv := newTestServer(t)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/votes", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExecuteTaggedCommand(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)

	resp, body := call(t, srv, http.MethodPost, "/v1/governance/execute", "owner", map[string]any{
		"create_new_vote": map[string]any{"title": "q1", "required_votes_percentage": 60},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var out governancehttp.ExecuteResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.Equal(t, "create_new_vote", out.Command)
	require.NotNil(t, out.Vote)
	require.Equal(t, "q1", out.Vote.Title)

	resp, body = call(t, srv, http.MethodPost, "/v1/governance/execute", "owner", map[string]any{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_argument", decodeError(t, body).Code)

	resp, body = call(t, srv, http.MethodPost, "/v1/governance/execute", "owner", map[string]any{
		"close_vote": map[string]any{"title": "q1"},
		"open_vote":  map[string]any{"title": "q1"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "invalid_argument", decodeError(t, body).Code)
}

func TestAdminRoutes(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)

	resp, body := call(t, srv, http.MethodPost, "/v1/governance/admins", "owner",
		governancehttp.AdminsRequest{Admins: []string{"carol"}})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	resp, body = call(t, srv, http.MethodDelete, "/v1/governance/admins", "owner",
		governancehttp.AdminsRequest{Admins: []string{"admin"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cfg governancehttp.ConfigResponse
	require.NoError(t, json.Unmarshal(body, &cfg))
	require.Equal(t, []string{"carol"}, cfg.Admins)

	resp, _ = call(t, srv, http.MethodPost, "/v1/governance/admins", "carol",
		governancehttp.AdminsRequest{Admins: []string{"dave"}})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	instantiate(t, srv)

	resp, body := call(t, srv, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), `governance_transitions_total{operation="instantiate",outcome="ok"} 1`)
}
