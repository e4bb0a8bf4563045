package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"gatepass-client/internal/config"
	"gatepass-client/internal/gateway"
	"gatepass-client/internal/session"
	"gatepass-client/internal/storage"
	syncpkg "gatepass-client/internal/sync"
	"gatepass-client/internal/verify"
	"gatepass-client/internal/watchlist"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func respondBackend(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

// newStation wires the full station against a fake backend. A nil
// handler leaves the backend unreachable.
func newStation(t *testing.T, backend http.Handler) (*httptest.Server, storage.Provider) {
	t.Helper()

	store := storage.NewProvider(&config.Storage{
		SQLite: &config.SQLLiteStorage{Path: ":memory:"},
	})
	require.NotNil(t, store)
	t.Cleanup(func() { store.Close() })

	remote := httptest.NewServer(backend)
	if backend == nil {
		remote.Close()
	} else {
		t.Cleanup(remote.Close)
	}

	gw := gateway.New(remote.URL, time.Second)
	sessions := session.NewManager(store, gw)
	gw.SetTokenSource(sessions)

	coord := syncpkg.NewCoordinator(store, gw)
	watch := watchlist.NewImporter(store)
	engine := verify.NewEngine(gw, store, coord, watch, "Main Gate")

	srv := NewServer(sessions, engine, coord, store, gw)
	station := httptest.NewServer(srv.Router())
	t.Cleanup(station.Close)
	return station, store
}

func authenticate(t *testing.T, store storage.Provider) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.PutCredential(ctx, storage.Credential{
		Token: "tok", UserID: "guard-1", SavedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.PutUser(ctx, storage.User{
		ID: "guard-1", Email: "guard@example.edu", FirstName: "Sam",
		LastName: "Otieno", Role: "guard", IsActive: true,
	}))
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, method, url, body string) (int, apiResponse) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var parsed apiResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&parsed))
	return res.StatusCode, parsed
}

func TestHealth(t *testing.T) {
	station, _ := newStation(t, nil)

	res, err := http.Get(station.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, 200, res.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestScanRejectsMissingBody(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)

	status, parsed := doJSON(t, http.MethodPost, station.URL+"/api/scan", `{}`)
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, parsed.Success)
}

func TestScanRequiresSession(t *testing.T) {
	station, _ := newStation(t, nil)

	status, _ := doJSON(t, http.MethodPost, station.URL+"/api/scan", `{"qr_data":"{}"}`)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestScanOfflineDecision(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)

	status, parsed := doJSON(t, http.MethodPost, station.URL+"/api/scan",
		`{"qr_data":"{\"type\":\"asset\",\"id\":\"a1\",\"user_id\":\"u1\",\"hash\":\"h\"}"}`)
	require.Equal(t, 200, status)
	require.True(t, parsed.Success)

	var decision verify.Decision
	require.NoError(t, json.Unmarshal(parsed.Data, &decision))
	require.Equal(t, verify.VerdictInvalid, decision.Verdict)
	require.True(t, decision.Offline)
}

func TestScanSupersededSessionConflicts(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)

	status, parsed := doJSON(t, http.MethodPost, station.URL+"/api/scan-session", "")
	require.Equal(t, 200, status)
	var first struct {
		Session uint64 `json:"session"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &first))

	// A second session supersedes the first.
	status, _ = doJSON(t, http.MethodPost, station.URL+"/api/scan-session", "")
	require.Equal(t, 200, status)

	body := `{"qr_data":"{\"type\":\"asset\",\"id\":\"a1\",\"userId\":\"u1\",\"hash\":\"h\"}",` +
		`"session":` + strconv.FormatUint(first.Session, 10) + `}`
	status, parsed = doJSON(t, http.MethodPost, station.URL+"/api/scan", body)
	require.Equal(t, http.StatusConflict, status)
	require.False(t, parsed.Success)
}

func TestLoginProxiesToBackend(t *testing.T) {
	station, _ := newStation(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondBackend(w, http.StatusUnauthorized, nil, "bad credentials")
	}))

	status, parsed := doJSON(t, http.MethodPost, station.URL+"/api/login",
		`{"email":"a@b.c","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, status)
	require.Equal(t, "Invalid email or password", parsed.Message)
}

func TestLoginUnreachableBackend(t *testing.T) {
	station, _ := newStation(t, nil)

	status, _ := doJSON(t, http.MethodPost, station.URL+"/api/login",
		`{"email":"a@b.c","password":"pw"}`)
	require.Equal(t, http.StatusServiceUnavailable, status)
}

func TestDayScholarsFallsBackToCache(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "s1", FirstName: "Asha", LastName: "Noor", Role: "day_scholar",
		IsActive: true, ScholarStatus: "in",
	}))

	status, parsed := doJSON(t, http.MethodGet, station.URL+"/api/day-scholars", "")
	require.Equal(t, 200, status)

	var scholars []gateway.DayScholar
	require.NoError(t, json.Unmarshal(parsed.Data, &scholars))
	require.Len(t, scholars, 1)
	require.Equal(t, "s1", scholars[0].UserID)
	require.Equal(t, "in", scholars[0].Status)
}

func TestSyncReportsResult(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)

	coord := syncpkg.NewCoordinator(store, gateway.New("http://127.0.0.1:0", time.Second))
	_, err := coord.Enqueue(context.Background(), storage.ActionLogEntry,
		gateway.VehicleEntryRequest{PlateNumber: "KAA 1"})
	require.NoError(t, err)

	status, parsed := doJSON(t, http.MethodPost, station.URL+"/api/sync", "")
	require.Equal(t, 200, status)

	var result struct {
		Succeeded int `json:"succeeded"`
		Remaining int `json:"remaining"`
	}
	require.NoError(t, json.Unmarshal(parsed.Data, &result))
	require.Zero(t, result.Succeeded)
	require.Equal(t, 1, result.Remaining)
}

func TestLogsLimitValidation(t *testing.T) {
	station, store := newStation(t, nil)
	authenticate(t, store)

	status, _ := doJSON(t, http.MethodGet, station.URL+"/api/logs?limit=bogus", "")
	require.Equal(t, http.StatusBadRequest, status)

	status, parsed := doJSON(t, http.MethodGet, station.URL+"/api/logs?limit=5", "")
	require.Equal(t, 200, status)
	require.True(t, parsed.Success)
}
