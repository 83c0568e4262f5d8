package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"map-catalog-service/internal/adapters/primary/http/middleware"
	"map-catalog-service/internal/core/domain"
	ports "map-catalog-service/internal/core/ports/output"
	"map-catalog-service/internal/core/services"
	"map-catalog-service/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const basePath = "/api/v1/catalog"

type testEnv struct {
	store    *testutil.MemStore
	geocoder *testutil.MockGeocoderClient
	router   *gin.Engine
}

func newRouter(maps ports.MapRepository, accounts ports.AccountRepository, geocoder ports.GeocoderClient) *gin.Engine {
	gin.SetMode(gin.TestMode)

	credits := services.NewCreditLedgerService(accounts, nil, 5)
	h := New(
		services.NewCatalogService(maps, testutil.NewMemCache(), nil, 50),
		services.NewMapService(maps),
		services.NewVoteService(maps, nil),
		services.NewPurchaseService(maps, credits, nil),
		credits,
		services.NewSuggestionService(geocoder, nil, "village"),
		10,
	)

	r := gin.New()
	r.Use(middleware.Identity())
	h.RegisterRoutes(r.Group(basePath))
	return r
}

func setupRouter() *testEnv {
	store := testutil.NewMemStore()
	geocoder := new(testutil.MockGeocoderClient)
	return &testEnv{
		store:    store,
		geocoder: geocoder,
		router:   newRouter(store, store, geocoder),
	}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body any) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, basePath+path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return w, resp
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

func TestExplore_Paginates(t *testing.T) {
	env := setupRouter()
	testutil.SeedMaps(env.store, 7, "owner-1", domain.TierMedium)
	testutil.SeedMaps(env.store, 2, "owner-1", domain.TierSmall)

	w, resp := env.do(t, "GET", "/maps?page_size=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(7), resp["total"])
	assert.Equal(t, float64(2), resp["total_pages"])
	assert.Len(t, resp["items"], 5)
	cursor, _ := resp["next_cursor"].(string)
	require.NotEmpty(t, cursor)

	w, resp = env.do(t, "GET", "/maps?page=2&page_size=5&cursor="+cursor, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["items"], 2)
	_, hasNext := resp["next_cursor"]
	assert.False(t, hasNext)
}

func TestExplore_InvalidQuery(t *testing.T) {
	env := setupRouter()

	for _, path := range []string{
		"/maps?sort=random",
		"/maps?page_size=-1",
		"/maps?page_size=500",
		"/maps?page_size=abc",
		"/maps?filter=voters:eq:x",
		"/maps?tier=huge",
	} {
		w, resp := env.do(t, "GET", path, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, string(domain.ReasonValidation), resp["reason"], path)
	}
}

func TestMyMaps(t *testing.T) {
	env := setupRouter()
	testutil.SeedMaps(env.store, 3, "me", domain.TierSmall)
	testutil.SeedMaps(env.store, 4, "someone", domain.TierLarge)

	w, _ := env.do(t, "GET", "/maps/mine", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := env.do(t, "GET", "/maps/mine", "me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), resp["total"])
}

func TestPurchasableMaps_ExcludesOwn(t *testing.T) {
	env := setupRouter()
	testutil.SeedMaps(env.store, 2, "me", domain.TierLarge)
	testutil.SeedMaps(env.store, 3, "seller", domain.TierLarge)
	testutil.SeedMaps(env.store, 1, "seller", domain.TierSmall)

	w, resp := env.do(t, "GET", "/maps/purchasable", "me", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), resp["total"])
}

func TestCatalog_StoreUnavailable(t *testing.T) {
	repo := new(testutil.MockMapRepo)
	repo.On("Count", mock.Anything, mock.Anything).Return(0, fmt.Errorf("count maps: %w", domain.ErrStoreUnavailable)).Maybe()
	repo.On("Query", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("query maps: %w", domain.ErrStoreUnavailable)).Maybe()
	r := newRouter(repo, new(testutil.MockAccountRepo), new(testutil.MockGeocoderClient))

	req, _ := http.NewRequest("GET", basePath+"/maps", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

// ---------------------------------------------------------------------------
// Maps
// ---------------------------------------------------------------------------

func TestGetMap(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("owner-1", domain.TierLarge)
	m.Voters = []string{"viewer"}
	m.Votes = 1
	env.store.PutMap(m)

	w, resp := env.do(t, "GET", "/maps/"+m.UID.String(), "viewer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, m.UID.String(), resp["uid"])
	assert.Equal(t, true, resp["has_voted"])
	assert.NotContains(t, resp, "voters")

	w, resp = env.do(t, "GET", "/maps/ticket/"+m.Ticket, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, m.UID.String(), resp["uid"])

	w, _ = env.do(t, "GET", "/maps/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, "GET", "/maps/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveAndDeleteMap(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("owner-1", domain.TierMedium)
	env.store.PutMap(m)
	path := "/maps/" + m.UID.String()

	w, _ := env.do(t, "POST", path+"/archive", "intruder", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, "POST", path+"/archive", "owner-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = env.do(t, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	other := testutil.NewMap("owner-1", domain.TierMedium)
	env.store.PutMap(other)
	w, _ = env.do(t, "DELETE", "/maps/"+other.UID.String(), "owner-1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, env.store.Maps(), 1)
}

func TestGetPrintSize(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("owner-1", domain.TierMedium)
	m.Design.Width = 3000
	env.store.PutMap(m)

	w, resp := env.do(t, "GET", "/maps/"+m.UID.String()+"/size?unit=cm", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(26), resp["width"])
	assert.Equal(t, float64(39), resp["height"])
	assert.Equal(t, "cm", resp["unit"])
}

// ---------------------------------------------------------------------------
// Votes
// ---------------------------------------------------------------------------

func TestVotes(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("owner-1", domain.TierMedium)
	env.store.PutMap(m)
	path := "/maps/" + m.UID.String() + "/votes"

	w, _ := env.do(t, "POST", path, "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp := env.do(t, "POST", path, "voter-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["votes"])

	w, resp = env.do(t, "POST", path, "voter-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domain.ReasonAlreadyVoted), resp["reason"])

	w, resp = env.do(t, "GET", path, "voter-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["votes"])
	assert.Equal(t, true, resp["has_voted"])

	w, resp = env.do(t, "DELETE", path, "voter-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["votes"])

	w, resp = env.do(t, "DELETE", path, "voter-1", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, string(domain.ReasonNotVoted), resp["reason"])
}

// ---------------------------------------------------------------------------
// Purchases
// ---------------------------------------------------------------------------

func TestPurchaseMap_Succeeds(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("seller", domain.TierMedium)
	env.store.PutMap(m)
	env.do(t, "POST", "/credits/initialize", "buyer", map[string]int{"credits": 1})
	path := "/maps/" + m.UID.String() + "/purchase"

	w, resp := env.do(t, "GET", path+"/eligibility", "buyer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["can_purchase"])
	assert.Equal(t, float64(1), resp["cost"])

	w, resp = env.do(t, "POST", path, "buyer", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, string(domain.PurchaseSucceeded), resp["state"])
	assert.NotEmpty(t, resp["new_map_id"])

	w, resp = env.do(t, "GET", "/credits", "buyer", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["credits"])
}

func TestPurchaseMap_Rejections(t *testing.T) {
	env := setupRouter()
	small := testutil.NewMap("seller", domain.TierSmall)
	large := testutil.NewMap("seller", domain.TierLarge)
	own := testutil.NewMap("buyer", domain.TierLarge)
	env.store.PutMap(small)
	env.store.PutMap(large)
	env.store.PutMap(own)
	env.do(t, "POST", "/credits/initialize", "buyer", map[string]int{"credits": 1})

	tests := []struct {
		name   string
		mapID  string
		status int
		reason domain.Reason
	}{
		{"not purchasable", small.UID.String(), http.StatusBadRequest, domain.ReasonNotPurchasable},
		{"own map", own.UID.String(), http.StatusBadRequest, domain.ReasonOwnMap},
		{"insufficient credits", large.UID.String(), http.StatusPaymentRequired, domain.ReasonInsufficientCredits},
		{"not found", uuid.NewString(), http.StatusNotFound, domain.ReasonNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, "POST", "/maps/"+tt.mapID+"/purchase", "buyer", nil)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, false, resp["success"])
			assert.Equal(t, string(domain.PurchaseRejected), resp["state"])
			assert.Equal(t, string(tt.reason), resp["reason"])
		})
	}
}

func TestPurchaseMap_PartiallySucceeded(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("seller", domain.TierMedium)
	env.store.PutMap(m)
	env.do(t, "POST", "/credits/initialize", "buyer", map[string]int{"credits": 3})
	env.store.FailCreate = errors.New("disk full")
	env.store.FailCredit = fmt.Errorf("credit: %w", domain.ErrStoreUnavailable)

	w, resp := env.do(t, "POST", "/maps/"+m.UID.String()+"/purchase", "buyer", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, string(domain.PurchasePartiallySucceeded), resp["state"])
	assert.Equal(t, float64(1), resp["cost_deducted"])
}

func TestPurchaseMap_CloneFailedRefunds(t *testing.T) {
	env := setupRouter()
	m := testutil.NewMap("seller", domain.TierMedium)
	env.store.PutMap(m)
	env.do(t, "POST", "/credits/initialize", "buyer", map[string]int{"credits": 3})
	env.store.FailCreate = fmt.Errorf("insert map: %w", domain.ErrStoreUnavailable)

	w, resp := env.do(t, "POST", "/maps/"+m.UID.String()+"/purchase", "buyer", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(domain.PurchaseCloneFailed), resp["state"])

	_, resp = env.do(t, "GET", "/credits", "buyer", nil)
	assert.Equal(t, float64(3), resp["credits"])
}

// ---------------------------------------------------------------------------
// Credits
// ---------------------------------------------------------------------------

func TestCredits_InitializeSpendHistory(t *testing.T) {
	env := setupRouter()

	w, _ := env.do(t, "GET", "/credits", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp := env.do(t, "POST", "/credits/initialize", "user-1", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, float64(5), resp["credits"])

	w, _ = env.do(t, "POST", "/credits/initialize", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, "POST", "/credits/spend", "user-1", map[string]string{"tier": "large"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), resp["credits"])
	assert.Equal(t, float64(5), resp["cost"])
	assert.Equal(t, "l", resp["tier"])

	w, resp = env.do(t, "POST", "/credits/spend", "user-1", map[string]string{"tier": "s"})
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, string(domain.ReasonInsufficientCredits), resp["reason"])

	w, _ = env.do(t, "POST", "/credits/spend", "user-1", map[string]string{"tier": "giant"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, "POST", "/credits/topup", "user-1", map[string]any{"amount": 4, "reference": "order-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), resp["credits"])

	w, resp = env.do(t, "POST", "/credits/topup", "user-1", map[string]any{"amount": 4, "reference": "order-1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(4), resp["credits"])

	w, _ = env.do(t, "POST", "/credits/topup", "user-1", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, "GET", "/credits/history?limit=10", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items, _ := resp["items"].([]interface{})
	require.Len(t, items, 3)
	newest, _ := items[0].(map[string]interface{})
	assert.Equal(t, "credit", newest["kind"])
}

func TestGetCosts(t *testing.T) {
	env := setupRouter()

	w, resp := env.do(t, "GET", "/costs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tiers, _ := resp["tiers"].([]interface{})
	require.Len(t, tiers, len(domain.Tiers))
	first, _ := tiers[0].(map[string]interface{})
	assert.Equal(t, "s", first["tier"])
	assert.Equal(t, false, first["purchasable"])
}

// ---------------------------------------------------------------------------
// Suggestions
// ---------------------------------------------------------------------------

func TestGetSuggestions(t *testing.T) {
	env := setupRouter()
	env.geocoder.On("Search", mock.Anything, "Porto", "pt", 5).Return([]domain.Suggestion{
		{PlaceID: "1", Name: "Porto", DisplayName: "Porto, Portugal", AddressType: "city"},
		{PlaceID: "2", Name: "Porto", DisplayName: "Porto, Portugal", AddressType: "city"},
		{PlaceID: "3", Name: "Porto Covo", DisplayName: "Porto Covo", AddressType: "village"},
	}, nil)

	w, resp := env.do(t, "GET", "/suggestions?q=Porto&locale=pt", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["items"], 1)

	w, _ = env.do(t, "GET", "/suggestions?q=", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.ErrMapNotFound, http.StatusNotFound},
		{domain.ErrInvalidSort, http.StatusBadRequest},
		{domain.ErrInsufficientCredits, http.StatusPaymentRequired},
		{domain.ErrAlreadyVoted, http.StatusConflict},
		{domain.ErrNotVoted, http.StatusConflict},
		{fmt.Errorf("debit: %w", domain.ErrStoreConflict), http.StatusConflict},
		{fmt.Errorf("query: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("query: %w", domain.ErrIndexRequired), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, statusOf(tt.err), tt.err.Error())
	}
}

func TestMapDomainError_HidesInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	mapDomainError(c, fmt.Errorf("query maps: %w", domain.ErrIndexRequired))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp["error"])
	assert.Equal(t, string(domain.ReasonIndexRequired), resp["reason"])
}

func TestSearchMaps(t *testing.T) {
	env := setupRouter()
	porto := testutil.NewMap("owner-1", domain.TierLarge)
	porto.Title = "Porto"
	porto.Design.Style = "noir"
	env.store.PutMap(porto)
	testutil.SeedMaps(env.store, 3, "owner-1", domain.TierMedium)

	w, resp := env.do(t, "GET", "/maps/search?q=porto&style=noir&composition=all&limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp["total"])
	assert.Equal(t, "porto", resp["query"])
	assert.Equal(t, float64(5), resp["limit"])
	assert.Equal(t, map[string]interface{}{"style": "noir"}, resp["filters"])
	require.Len(t, resp["items"], 1)
	item := resp["items"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, porto.UID.String(), item["uid"])

	w, resp = env.do(t, "GET", "/maps/search?q=%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(domain.ReasonValidation), resp["reason"])
}
