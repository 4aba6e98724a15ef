package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacl-coder/PlatformBrawl-Server/config"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/auth"
	"github.com/jacl-coder/PlatformBrawl-Server/internal/models"
)

type fakeSessions struct {
	sessions []models.SessionRecord
	summary  *models.PlayerSummary
	top      []models.LeaderboardEntry
	err      error
	calls    int
}

func (f *fakeSessions) ListSessions(_ context.Context, playerID string, limit int) ([]models.SessionRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.SessionRecord
	for _, s := range f.sessions {
		if s.PlayerID == playerID && len(out) < limit {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSessions) PlayerSummary(_ context.Context, playerID string) (*models.PlayerSummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.summary == nil || f.summary.PlayerID != playerID {
		return &models.PlayerSummary{PlayerID: playerID}, nil
	}
	return f.summary, nil
}

func (f *fakeSessions) TopPlayers(_ context.Context, _ models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.top) {
		return f.top[:limit], nil
	}
	return f.top, nil
}

type fakeBoard struct {
	entries map[models.LeaderboardType][]models.LeaderboardEntry
	ranks   map[string]int
	err     error
	calls   int
}

func (f *fakeBoard) GetLeaderboard(_ context.Context, scoreType models.LeaderboardType, limit int) ([]models.LeaderboardEntry, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	entries := append([]models.LeaderboardEntry{}, f.entries[scoreType]...)
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *fakeBoard) GetPlayerRank(_ context.Context, playerID string, _ models.LeaderboardType) (int, error) {
	if f.err != nil {
		return -1, f.err
	}
	if rank, ok := f.ranks[playerID]; ok {
		return rank, nil
	}
	return -1, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"
	return &cfg
}

func statsMux(sessions SessionQuery, board LeaderboardQuery) *http.ServeMux {
	mux := http.NewServeMux()
	NewStatsHandler(sessions, board).RegisterHandlers(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, StatsResponse) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp StatsResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestGuestTokenFlow(t *testing.T) {
	cfg := testConfig()
	tokens := auth.NewTokenIssuer(cfg.Auth)
	mux := http.NewServeMux()
	NewAuthHandler(tokens).RegisterHandlers(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/guest", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var guest AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &guest))
	assert.True(t, guest.Success)
	require.NotEmpty(t, guest.Token)
	require.NotEmpty(t, guest.PlayerID)
	assert.WithinDuration(t, time.Now().Add(cfg.Auth.TokenTTL), guest.ExpiresAt, time.Minute)

	playerID, err := tokens.Verify(guest.Token, time.Now())
	require.NoError(t, err)
	assert.Equal(t, guest.PlayerID, playerID)

	req := httptest.NewRequest(http.MethodGet, "/auth/validate", nil)
	req.Header.Set("Authorization", "Bearer "+guest.Token)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/refresh?token="+guest.Token, nil)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	assert.Equal(t, guest.PlayerID, refreshed.PlayerID)
	assert.NotEmpty(t, refreshed.Token)
}

func TestAuthRejectsBadRequests(t *testing.T) {
	mux := http.NewServeMux()
	NewAuthHandler(auth.NewTokenIssuer(testConfig().Auth)).RegisterHandlers(mux)

	cases := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/auth/guest", http.StatusMethodNotAllowed},
		{http.MethodGet, "/auth/validate", http.StatusBadRequest},
		{http.MethodGet, "/auth/validate?token=garbage", http.StatusUnauthorized},
		{http.MethodPost, "/auth/refresh", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
		assert.Equal(t, tc.status, rec.Code, tc.target)
	}
}

func TestLeaderboardFromRedis(t *testing.T) {
	board := &fakeBoard{entries: map[models.LeaderboardType][]models.LeaderboardEntry{
		models.LeaderboardSurvival: {
			{PlayerID: "a", Score: 90000, Rank: 1},
			{PlayerID: "b", Score: 30000, Rank: 2},
		},
	}}
	sessions := &fakeSessions{}
	mux := statsMux(sessions, board)

	rec, resp := do(t, mux, http.MethodGet, "/stats/leaderboard?type=survival&limit=1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	data := resp.Data.([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "a", data[0].(map[string]interface{})["player_id"])
	assert.Zero(t, sessions.calls)
}

func TestLeaderboardFallsBackToDatabase(t *testing.T) {
	board := &fakeBoard{err: errors.New("redis down")}
	sessions := &fakeSessions{top: []models.LeaderboardEntry{{PlayerID: "db", Score: 3, Rank: 1}}}
	mux := statsMux(sessions, board)

	rec, resp := do(t, mux, http.MethodGet, "/stats/leaderboard")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "db", data[0].(map[string]interface{})["player_id"])
	assert.Equal(t, 1, board.calls)
}

func TestLeaderboardErrors(t *testing.T) {
	rec, _ := do(t, statsMux(nil, nil), http.MethodGet, "/stats/leaderboard")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, statsMux(nil, &fakeBoard{}), http.MethodGet, "/stats/leaderboard?type=kda")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, statsMux(nil, &fakeBoard{err: errors.New("down")}), http.MethodGet, "/stats/leaderboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec, _ = do(t, statsMux(nil, &fakeBoard{}), http.MethodPost, "/stats/leaderboard")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestSessionsEndpoint(t *testing.T) {
	sessions := &fakeSessions{sessions: []models.SessionRecord{
		{ID: "s1", PlayerID: "p1", Eliminations: 3, Cause: models.EndFell},
		{ID: "s2", PlayerID: "p2"},
	}}
	mux := statsMux(sessions, nil)

	rec, resp := do(t, mux, http.MethodGet, "/stats/sessions?player=p1")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.([]interface{})
	require.Len(t, data, 1)
	assert.Equal(t, "s1", data[0].(map[string]interface{})["id"])

	rec, _ = do(t, mux, http.MethodGet, "/stats/sessions")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, statsMux(nil, nil), http.MethodGet, "/stats/sessions?player=p1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPlayerSummaryEndpoint(t *testing.T) {
	sessions := &fakeSessions{summary: &models.PlayerSummary{PlayerID: "p1", Sessions: 4, BestEliminations: 7}}
	mux := statsMux(sessions, nil)

	rec, resp := do(t, mux, http.MethodGet, "/stats/player/p1")
	require.Equal(t, http.StatusOK, rec.Code)
	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 7, data["best_eliminations"])

	rec, _ = do(t, mux, http.MethodGet, "/stats/player/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, mux, http.MethodGet, "/stats/player/")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRankEndpoint(t *testing.T) {
	mux := statsMux(nil, &fakeBoard{ranks: map[string]int{"p1": 3}})

	rec, resp := do(t, mux, http.MethodGet, "/stats/rank?player=p1&type=eliminations")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, resp.Data.(map[string]interface{})["rank"])

	_, resp = do(t, mux, http.MethodGet, "/stats/rank?player=ghost")
	assert.EqualValues(t, -1, resp.Data.(map[string]interface{})["rank"])

	rec, _ = do(t, statsMux(nil, nil), http.MethodGet, "/stats/rank?player=p1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGatewayHandler(t *testing.T) {
	board := &fakeBoard{entries: map[models.LeaderboardType][]models.LeaderboardEntry{
		models.LeaderboardEliminations: {{PlayerID: "a", Score: 5, Rank: 1}},
	}}
	g := NewGateway(testConfig(), &fakeSessions{}, board)
	h := g.Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/stats/leaderboard", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// 第二次命中缓存，不再查询排行榜
	for i := 0; i < 2; i++ {
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/leaderboard", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	assert.Equal(t, 1, board.calls)
}
