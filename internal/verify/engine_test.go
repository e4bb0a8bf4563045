package verify

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
	syncpkg "gatepass-client/internal/sync"
	"gatepass-client/internal/watchlist"
)

type recordedAlert struct {
	subject string
	detail  string
}

type fakeAlerter struct {
	alerts []recordedAlert
}

func (f *fakeAlerter) StolenDetected(ctx context.Context, subject, detail, location string) error {
	f.alerts = append(f.alerts, recordedAlert{subject: subject, detail: detail})
	return nil
}

func respond(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": status < 400,
		"message": message,
		"data":    data,
	})
}

// newEngine wires an engine against handler. A nil handler yields an
// unreachable server, forcing every remote call down the offline path.
func newEngine(t *testing.T, handler http.Handler) (*Engine, storage.Provider, *fakeAlerter) {
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
	queue := syncpkg.NewCoordinator(store, gw)
	watch := watchlist.NewImporter(store)

	engine := NewEngine(gw, store, queue, watch, "Main Gate")
	alerts := &fakeAlerter{}
	engine.SetAlerter(alerts)

	// An authenticated guard with a cached snapshot.
	ctx := context.Background()
	require.NoError(t, store.PutCredential(ctx, storage.Credential{
		Token: "tok", UserID: "guard-1", SavedAt: time.Now().UTC(),
	}))
	require.NoError(t, store.PutUser(ctx, storage.User{
		ID: "guard-1", Email: "guard@example.edu", FirstName: "Sam",
		LastName: "Otieno", Role: "guard", IsActive: true,
	}))

	return engine, store, alerts
}

func seedAsset(t *testing.T, store storage.Provider, asset storage.Asset) {
	t.Helper()
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = time.Now().UTC()
		asset.UpdatedAt = asset.CreatedAt
	}
	require.NoError(t, store.PutAsset(context.Background(), asset))
}

func encode(t *testing.T, p qr.Payload) string {
	t.Helper()
	raw, err := p.Encode()
	require.NoError(t, err)
	return raw
}

func pendingCount(t *testing.T, store storage.Provider) int {
	t.Helper()
	actions, err := store.ListPendingActions(context.Background())
	require.NoError(t, err)
	return len(actions)
}

func lastLog(t *testing.T, store storage.Provider) storage.GateLog {
	t.Helper()
	logs, err := store.ListGateLogs(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	return logs[0]
}

func TestVerifyAssetRequiresGuard(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.DeleteCredential(context.Background()))

	_, err := engine.VerifyAsset(context.Background(), "{}")
	require.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestVerifyAssetMalformedPayload(t *testing.T) {
	engine, store, _ := newEngine(t, nil)

	d, err := engine.VerifyAsset(context.Background(), "not json at all")
	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, d.Verdict)
	require.Zero(t, pendingCount(t, store))

	log := lastLog(t, store)
	require.Equal(t, storage.LogTypeAssetVerification, log.Type)
	require.Equal(t, "invalid", log.Status)
}

func TestVerifyAssetOnlineValid(t *testing.T) {
	engine, store, _ := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify-qr", r.URL.Path)
		respond(w, 200, map[string]any{"status": "valid", "type": "asset", "user": "Ada Lovelace"}, "ok")
	}))

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictValid, d.Verdict)
	require.Equal(t, "Ada Lovelace", d.Owner)
	require.False(t, d.Offline)

	log := lastLog(t, store)
	require.Equal(t, "valid", log.Status)
	require.Equal(t, "a1", log.AssetID)
	require.Equal(t, "guard-1", log.GuardID)
}

func TestVerifyAssetOnlineStolenRaisesAlert(t *testing.T) {
	engine, _, alerts := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respond(w, 200, map[string]any{"status": "stolen"}, "ok")
	}))

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictStolen, d.Verdict)
	require.Len(t, alerts.alerts, 1)
	require.Equal(t, "asset", alerts.alerts[0].subject)
}

func TestVerifyAssetOfflineUnknownDenied(t *testing.T) {
	engine, store, _ := newEngine(t, nil)

	raw := encode(t, qr.New(qr.KindAsset, "ghost", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, d.Verdict)
	require.True(t, d.Offline)
	require.Zero(t, pendingCount(t, store), "a denied offline check must not queue anything")
}

func TestVerifyAssetOfflineHashMismatchDenied(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	seedAsset(t, store, storage.Asset{
		ID: "a1", UserID: "owner-1", QRCode: "ASSET_a1_1755000000.123",
		VerificationHash: "real-hash", IsActive: true,
	})

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "forged"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, d.Verdict)
	require.Zero(t, pendingCount(t, store))
}

func TestVerifyAssetOfflineMatchPendingWithOneQueuedAction(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "owner-1", FirstName: "Ada", LastName: "Lovelace", IsActive: true,
	}))
	// The server mints qr_code strings like ASSET_<id>_<timestamp>; the
	// scanned payload carries only the asset id, so the offline lookup
	// must key on the id, never on a reconstructed qr_code.
	seedAsset(t, store, storage.Asset{
		ID: "a1", UserID: "owner-1", QRCode: "ASSET_a1_1755000000.123",
		VerificationHash: "hash-1", IsActive: true,
	})

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictPending, d.Verdict)
	require.True(t, d.Offline)
	require.Equal(t, "Ada Lovelace", d.Owner)

	actions, err := store.ListPendingActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, storage.ActionVerify, actions[0].Kind)

	var queued qr.Payload
	require.NoError(t, json.Unmarshal(actions[0].Payload, &queued))
	require.Equal(t, "a1", queued.SubjectID)
	require.Equal(t, "hash-1", queued.Hash)
}

func TestVerifyAssetOfflineInactiveOwnerDenied(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "owner-1", FirstName: "Ada", LastName: "Lovelace", IsActive: false,
	}))
	seedAsset(t, store, storage.Asset{
		ID: "a1", UserID: "owner-1", QRCode: "ASSET_a1_1755000000.123",
		VerificationHash: "hash-1", IsActive: true,
	})

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, d.Verdict)
	require.Zero(t, pendingCount(t, store))

	log := lastLog(t, store)
	require.Equal(t, "invalid", log.Status)
}

func TestVerifyAssetOfflineStolenFlag(t *testing.T) {
	engine, store, alerts := newEngine(t, nil)
	seedAsset(t, store, storage.Asset{
		ID: "a1", UserID: "owner-1", QRCode: "ASSET_a1_1755000000.123",
		VerificationHash: "hash-1", IsActive: true, IsReportedStolen: true,
	})

	raw := encode(t, qr.New(qr.KindAsset, "a1", "owner-1", "hash-1"))
	d, err := engine.VerifyAsset(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, VerdictStolen, d.Verdict)
	require.Len(t, alerts.alerts, 1)
	require.Zero(t, pendingCount(t, store))
}

func TestVehicleEntryOnlineVisitor(t *testing.T) {
	engine, store, _ := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/log-vehicle-entry", r.URL.Path)
		respond(w, 200, map[string]any{"status": "visitor", "plate_number": "KAA 123X"}, "ok")
	}))

	d, err := engine.LogVehicleEntry(context.Background(), "KAA 123X", "white pickup")
	require.NoError(t, err)
	require.Equal(t, VerdictVisitor, d.Verdict)

	log := lastLog(t, store)
	require.Equal(t, storage.LogTypeVehicleEntry, log.Type)
	require.Equal(t, "visitor", log.Status)
}

func TestVehicleEntryOfflineWatchlistHit(t *testing.T) {
	engine, store, alerts := newEngine(t, nil)
	require.NoError(t, store.PutWatchlistEntry(context.Background(), storage.WatchlistEntry{
		PlateNumber: "KAA123X", Reason: "Reported stolen", AddedAt: time.Now().UTC(),
	}))

	d, err := engine.LogVehicleEntry(context.Background(), "kaa 123x", "")
	require.NoError(t, err)
	require.Equal(t, VerdictStolen, d.Verdict)
	require.True(t, d.Offline)
	require.Len(t, alerts.alerts, 1)
	require.Zero(t, pendingCount(t, store))
}

func TestVehicleEntryOfflineUnknownDenied(t *testing.T) {
	engine, store, _ := newEngine(t, nil)

	d, err := engine.LogVehicleEntry(context.Background(), "KZZ 999Z", "")
	require.NoError(t, err)
	require.Equal(t, VerdictInvalid, d.Verdict)
	require.Zero(t, pendingCount(t, store))
}

func TestVehicleEntryOfflineCachedMatchPending(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "owner-2", FirstName: "Grace", LastName: "Wanjiru", IsActive: true,
	}))
	require.NoError(t, store.PutVehicle(context.Background(), storage.Vehicle{
		ID: "v1", UserID: "owner-2", PlateNumber: "KBB 456Y",
		QRCode: "VEHICLE_v1_1755000000.456", VerificationHash: "vh", IsActive: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	d, err := engine.LogVehicleEntry(context.Background(), "KBB 456Y", "")
	require.NoError(t, err)
	require.Equal(t, VerdictPending, d.Verdict)
	require.Equal(t, "Grace Wanjiru", d.Owner)

	actions, err := store.ListPendingActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, storage.ActionLogEntry, actions[0].Kind)
}

func TestVehicleEntryOfflinePlateCaseAndSpacing(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "owner-2", FirstName: "Grace", LastName: "Wanjiru", IsActive: true,
	}))
	// The server uppercases plates before caching; guards type whatever
	// the keyboard gives them.
	require.NoError(t, store.PutVehicle(context.Background(), storage.Vehicle{
		ID: "v1", UserID: "owner-2", PlateNumber: "KAA 123X",
		QRCode: "VEHICLE_v1_1755000000.123", VerificationHash: "vh", IsActive: true,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	d, err := engine.LogVehicleEntry(context.Background(), "kaa 123x", "")
	require.NoError(t, err)
	require.Equal(t, VerdictPending, d.Verdict)
	require.True(t, d.Offline)
	require.Equal(t, "Grace Wanjiru", d.Owner)
	require.Equal(t, 1, pendingCount(t, store))
}

func TestToggleDayScholarOnline(t *testing.T) {
	engine, store, _ := newEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/day-scholars/s1/toggle", r.URL.Path)
		respond(w, 200, map[string]any{"user_id": "s1", "name": "Asha Noor", "status": "in"}, "ok")
	}))
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "s1", FirstName: "Asha", LastName: "Noor", Role: "day_scholar",
		IsActive: true, ScholarStatus: "out",
	}))

	res, err := engine.ToggleDayScholar(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "in", res.Status)
	require.False(t, res.Offline)

	user, err := store.GetUser(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "in", user.ScholarStatus)

	log := lastLog(t, store)
	require.Equal(t, storage.LogTypeDayScholarIn, log.Type)
}

func TestToggleDayScholarOfflineFlipsAndQueues(t *testing.T) {
	engine, store, _ := newEngine(t, nil)
	require.NoError(t, store.PutUser(context.Background(), storage.User{
		ID: "s1", FirstName: "Asha", LastName: "Noor", Role: "day_scholar",
		IsActive: true, ScholarStatus: "in",
	}))

	res, err := engine.ToggleDayScholar(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "out", res.Status)
	require.True(t, res.Offline)

	user, err := store.GetUser(context.Background(), "s1")
	require.NoError(t, err)
	require.Equal(t, "out", user.ScholarStatus)

	actions, err := store.ListPendingActions(context.Background())
	require.NoError(t, err)
	require.Len(t, actions, 1)
	require.Equal(t, storage.ActionToggleStatus, actions[0].Kind)

	log := lastLog(t, store)
	require.Equal(t, storage.LogTypeDayScholarOut, log.Type)
}

func TestToggleDayScholarOfflineUnknownUser(t *testing.T) {
	engine, _, _ := newEngine(t, nil)

	_, err := engine.ToggleDayScholar(context.Background(), "nobody")
	require.Error(t, err)
}
