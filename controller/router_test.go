package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trivia-token-service/controller/respond"
	"trivia-token-service/database"
	"trivia-token-service/ledger"
	"trivia-token-service/metrics"
	model "trivia-token-service/models"
	"trivia-token-service/registry"
	"trivia-token-service/service/catalog_service"
	"trivia-token-service/service/common_service"
	"trivia-token-service/service/eligibility_service"
	"trivia-token-service/service/forge_service"
	"trivia-token-service/service/mint_service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	router  *gin.Engine
	mint    *mint_service.MintService
	catalog *catalog_service.CatalogService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewPebbleDatabase(&database.PebbleConfig{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	now := time.Now()
	calendar, err := registry.NewSeasonCalendar([]registry.SeasonWindow{
		{Code: "WI1", StartsAt: now.Add(-24 * time.Hour), EndsAt: now.Add(30 * 24 * time.Hour)},
	}, 0)
	require.NoError(t, err)

	prom := metrics.NewPrometheus()
	opts := common_service.Options{Metrics: prom}
	client := ledger.NewMemoryClient()
	policy := common_service.LedgerPolicy{RetryInterval: time.Millisecond, MaxPollAttempts: 3}

	eligibility := eligibility_service.NewEligibilityService(db, eligibility_service.Windows{}, opts)
	catalog := catalog_service.NewCatalogService(db, 0, opts)
	mint := mint_service.NewMintService(db, eligibility, catalog, client, calendar, policy, opts)
	forge := forge_service.NewForgeService(db, client, calendar, policy, opts)

	items := make([]*model.CatalogItem, 0, 3)
	for i := 0; i < 3; i++ {
		items = append(items, &model.CatalogItem{ID: fmt.Sprintf("hist-%d", i), CategoryID: "history"})
	}
	require.NoError(t, catalog.Seed(t.Context(), items))

	router := SetupRouter(Services{
		Eligibility: eligibility,
		Catalog:     catalog,
		Mint:        mint,
		Forge:       forge,
		Metrics:     prom.Handler(),
	})
	return &testServer{router: router, mint: mint, catalog: catalog}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) envelope {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestClaimFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodPost, "/api/v1/eligibilities", map[string]interface{}{
		"playerId": "player-7", "categoryId": "history", "isGuest": true,
	})
	require.Equal(t, respond.CodeSuccess, env.Code, env.Message)
	var e respond.EligibilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, "active", e.Status)
	assert.True(t, e.IsGuest)

	env = s.do(t, http.MethodPost, "/api/v1/eligibilities/"+e.ID+"/claim", map[string]string{"ownerKey": "owner-1"})
	require.Equal(t, respond.CodeSuccess, env.Code, env.Message)
	var op respond.MintOperationResponse
	require.NoError(t, json.Unmarshal(env.Data, &op))
	assert.Equal(t, "submitted", op.Status)

	env = s.do(t, http.MethodPost, "/api/v1/eligibilities/"+e.ID+"/claim", map[string]string{"ownerKey": "owner-1"})
	assert.Equal(t, respond.CodeConflict, env.Code)

	require.NoError(t, s.mint.ProcessActive(t.Context()))
	env = s.do(t, http.MethodGet, "/api/v1/mints/"+op.ID, nil)
	require.NoError(t, json.Unmarshal(env.Data, &op))
	assert.Equal(t, "confirmed", op.Status)

	env = s.do(t, http.MethodGet, "/api/v1/owners/owner-1/tokens", nil)
	var tokens respond.TokenListResponse
	require.NoError(t, json.Unmarshal(env.Data, &tokens))
	require.Equal(t, 1, tokens.Total)
	assert.Equal(t, op.AssetIdentifier, tokens.Tokens[0].AssetIdentifier)

	env = s.do(t, http.MethodGet, "/api/v1/catalog/history/availability", nil)
	var avail respond.AvailabilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &avail))
	assert.Equal(t, int64(2), avail.Available)

	env = s.do(t, http.MethodGet, "/api/v1/players/player-7/eligibilities", nil)
	var list []respond.EligibilityResponse
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "used", list[0].Status)
}

func TestErrorCodes(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodPost, "/api/v1/eligibilities", map[string]interface{}{"playerId": "p"})
	assert.Equal(t, respond.CodeInvalidParam, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/eligibilities", map[string]interface{}{"playerId": "p", "categoryId": "cooking"})
	assert.Equal(t, respond.CodeInvalidParam, env.Code)

	env = s.do(t, http.MethodGet, "/api/v1/eligibilities/nope", nil)
	assert.Equal(t, respond.CodeNotFound, env.Code)

	env = s.do(t, http.MethodGet, "/api/v1/forge/nope", nil)
	assert.Equal(t, respond.CodeNotFound, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/forge", map[string]interface{}{
		"type": "seasonal_ultimate", "ownerKey": "owner-1", "inputIdentifiers": []string{"a-legacy-token"},
	})
	require.Equal(t, respond.CodeValidation, env.Code)
	var v respond.ValidationResponse
	require.NoError(t, json.Unmarshal(env.Data, &v))
	assert.Equal(t, "count_mismatch", v.Rule)

	env = s.do(t, http.MethodPost, "/api/v1/forge", map[string]interface{}{
		"type": "legendary", "ownerKey": "owner-1", "inputIdentifiers": []string{},
	})
	assert.Equal(t, respond.CodeInvalidParam, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/admin/catalog/hist-0/release", nil)
	assert.Equal(t, respond.CodeConflict, env.Code)

	env = s.do(t, http.MethodPost, "/api/v1/admin/forge/nope/reconcile", nil)
	assert.Equal(t, respond.CodeNotFound, env.Code)
}

func TestIdentifierAndProgressRoutes(t *testing.T) {
	s := newTestServer(t)

	env := s.do(t, http.MethodGet, "/api/v1/identifiers/TNFT_V1_SCI_REG_12b3de7d", nil)
	var id respond.IdentifierResponse
	require.NoError(t, json.Unmarshal(env.Data, &id))
	require.True(t, id.Valid)
	assert.Equal(t, "SCI", id.Description.CategoryCode)
	assert.Equal(t, "12b3de7d", id.Description.UniqueID)

	env = s.do(t, http.MethodGet, "/api/v1/identifiers/NOT%20AN%20ID", nil)
	require.NoError(t, json.Unmarshal(env.Data, &id))
	assert.False(t, id.Valid)

	env = s.do(t, http.MethodGet, "/api/v1/forge/progress/owner-1", nil)
	var progress respond.ForgeProgressResponse
	require.NoError(t, json.Unmarshal(env.Data, &progress))
	assert.Len(t, progress.Progress, registry.CategoryCount+2)

	env = s.do(t, http.MethodGet, "/api/v1/admin/forge/stuck", nil)
	assert.Equal(t, respond.CodeSuccess, env.Code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/api/v1/eligibilities", map[string]interface{}{"playerId": "p", "categoryId": "art"})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	w = httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "trivia_token_eligibility_created_total")
}
