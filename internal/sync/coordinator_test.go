package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatepass-client/internal/config"
	"gatepass-client/internal/gateway"
	"gatepass-client/internal/qr"
	"gatepass-client/internal/storage"
)

func respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

func newCoordinator(t *testing.T, handler http.Handler) (*Coordinator, storage.Provider) {
	t.Helper()

	store := storage.NewProvider(&config.Storage{
		SQLite: &config.SQLLiteStorage{Path: ":memory:"},
	})
	require.NotNil(t, store)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(handler)
	if handler == nil {
		srv.Close()
	} else {
		t.Cleanup(srv.Close)
	}

	gw := gateway.New(srv.URL, time.Second)
	return NewCoordinator(store, gw), store
}

func TestEnqueueIDsPreserveInsertionOrder(t *testing.T) {
	c, store := newCoordinator(t, nil)
	ctx := context.Background()

	a, err := c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "a", "u", "h"))
	require.NoError(t, err)
	b, err := c.Enqueue(ctx, storage.ActionLogEntry, gateway.VehicleEntryRequest{PlateNumber: "KAA 1"})
	require.NoError(t, err)
	d, err := c.Enqueue(ctx, storage.ActionToggleStatus, map[string]string{"user_id": "s1"})
	require.NoError(t, err)

	require.Less(t, a.ID, b.ID)
	require.Less(t, b.ID, d.ID)

	actions, err := store.ListPendingActions(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{a.ID, b.ID, d.ID}, []string{actions[0].ID, actions[1].ID, actions[2].ID})
}

func TestDrainReplaysInOrderAndDeletes(t *testing.T) {
	var paths []string
	c, store := newCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/verify-qr":
			respond(w, 200, map[string]any{"status": "valid"}, "ok")
		case "/log-vehicle-entry":
			respond(w, 200, map[string]any{"status": "valid", "plate_number": "KAA 1"}, "ok")
		case "/day-scholars/s1/toggle":
			respond(w, 200, map[string]any{"user_id": "s1", "status": "in"}, "ok")
		}
	}))
	ctx := context.Background()

	_, err := c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "a", "u", "h"))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, storage.ActionLogEntry, gateway.VehicleEntryRequest{PlateNumber: "KAA 1"})
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, storage.ActionToggleStatus, map[string]string{"user_id": "s1"})
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, result.Succeeded)
	require.Zero(t, result.Remaining)
	require.Equal(t, []string{"/verify-qr", "/log-vehicle-entry", "/day-scholars/s1/toggle"}, paths)

	actions, err := store.ListPendingActions(ctx)
	require.NoError(t, err)
	require.Empty(t, actions)
}

func TestDrainStopsOnConnectivityFailure(t *testing.T) {
	c, store := newCoordinator(t, nil)
	ctx := context.Background()

	_, err := c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "a", "u", "h"))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "b", "u", "h"))
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	require.Zero(t, result.Succeeded)
	require.Equal(t, 2, result.Remaining)

	actions, err := store.ListPendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2, "nothing is deleted without server confirmation")
}

func TestDrainRejectionBlocksKindButNotOthers(t *testing.T) {
	c, store := newCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/verify-qr":
			respond(w, http.StatusBadRequest, nil, "rejected")
		case "/log-vehicle-entry":
			respond(w, 200, map[string]any{"status": "valid", "plate_number": "KAA 1"}, "ok")
		}
	}))
	ctx := context.Background()

	_, err := c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "a", "u", "h"))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "b", "u", "h"))
	require.NoError(t, err)
	_, err = c.Enqueue(ctx, storage.ActionLogEntry, gateway.VehicleEntryRequest{PlateNumber: "KAA 1"})
	require.NoError(t, err)

	result, err := c.Drain(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.Succeeded)
	require.Equal(t, 1, result.Failed)

	// The rejected verify actions stay queued; the entry log cleared.
	actions, err := store.ListPendingActions(ctx)
	require.NoError(t, err)
	require.Len(t, actions, 2)
	for _, a := range actions {
		require.Equal(t, storage.ActionVerify, a.Kind)
	}
}

func TestDrainStopsOnSessionExpiry(t *testing.T) {
	c, _ := newCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusUnauthorized, nil, "token revoked")
	}))
	ctx := context.Background()

	_, err := c.Enqueue(ctx, storage.ActionVerify, qr.New(qr.KindAsset, "a", "u", "h"))
	require.NoError(t, err)

	_, err = c.Drain(ctx)
	require.ErrorIs(t, err, gateway.ErrSessionExpired)
}

func TestDrainToggleUpdatesCachedStatus(t *testing.T) {
	c, store := newCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, 200, map[string]any{"user_id": "s1", "status": "out"}, "ok")
	}))
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, storage.User{
		ID: "s1", FirstName: "Asha", LastName: "Noor", IsActive: true, ScholarStatus: "in",
	}))
	_, err := c.Enqueue(ctx, storage.ActionToggleStatus, map[string]string{"user_id": "s1"})
	require.NoError(t, err)

	_, err = c.Drain(ctx)
	require.NoError(t, err)

	user, err := store.GetUser(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "out", user.ScholarStatus, "the server's answer wins over the local flip")
}

func TestPullRefreshesCache(t *testing.T) {
	c, store := newCoordinator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/":
			respond(w, 200, []map[string]any{{
				"id": "a1", "user_id": "u1", "qr_code": "ASSET_a1_1755000000.123",
				"verification_hash": "h1", "is_active": true,
			}}, "ok")
		case "/vehicles/":
			respond(w, 200, []map[string]any{{
				"id": "v1", "user_id": "u1", "plate_number": "KAA 1",
				"qr_code": "VEHICLE_v1_1755000000.123", "verification_hash": "h2", "is_active": true,
			}}, "ok")
		case "/day-scholars":
			respond(w, 200, []map[string]any{{"user_id": "s1", "status": "in"}}, "ok")
		}
	}))
	ctx := context.Background()

	require.NoError(t, store.PutUser(ctx, storage.User{ID: "s1", IsActive: true, ScholarStatus: "out"}))

	stats, err := c.Pull(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Assets)
	require.Equal(t, 1, stats.Vehicles)
	require.Equal(t, 1, stats.Scholars)

	asset, err := store.GetAssetByQRCode(ctx, "ASSET_a1_1755000000.123")
	require.NoError(t, err)
	require.NotNil(t, asset)

	user, err := store.GetUser(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "in", user.ScholarStatus)
}
