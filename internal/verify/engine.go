package verify

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatepass-client/internal/gateway"
	"gatepass-client/internal/qr"
	"gatepass-client/internal/storage"
	"gatepass-client/internal/watchlist"
)

// Queue accepts provisional actions for later reconciliation. Enqueue
// is durable before it returns.
type Queue interface {
	Enqueue(ctx context.Context, kind string, payload any) (*storage.PendingAction, error)
}

// Alerter raises a security alert when a stolen subject is detected.
// Delivery is best effort; a failed alert never blocks the verdict.
type Alerter interface {
	StolenDetected(ctx context.Context, subject, detail, location string) error
}

// Engine decides verdicts. Online it defers to the remote API; when
// the API is unreachable it falls back to the local cache, denying
// anything it cannot positively match and admitting cache matches
// provisionally with a queued action.
type Engine struct {
	gw       *gateway.Client
	store    storage.Provider
	queue    Queue
	watch    *watchlist.Importer
	alerts   Alerter
	location string
	logger   *slog.Logger
}

func NewEngine(gw *gateway.Client, store storage.Provider, queue Queue, watch *watchlist.Importer, location string) *Engine {
	return &Engine{
		gw:       gw,
		store:    store,
		queue:    queue,
		watch:    watch,
		location: location,
		logger:   slog.With("component", "verify"),
	}
}

// SetAlerter wires the stolen-subject notifier. Optional.
func (e *Engine) SetAlerter(a Alerter) {
	e.alerts = a
}

// VerifyAsset decides a scanned asset QR code. raw is the scanned
// string as read from the code.
func (e *Engine) VerifyAsset(ctx context.Context, raw string) (*Decision, error) {
	guard, err := e.guard(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := qr.Decode(raw)
	if err == nil {
		err = payload.Validate()
	}
	if err != nil {
		d := &Decision{Verdict: VerdictInvalid, Message: "Malformed QR code"}
		e.appendLog(ctx, storage.GateLog{
			Type:    storage.LogTypeAssetVerification,
			GuardID: guard.ID,
			Status:  string(VerdictInvalid),
			Notes:   "malformed payload",
		})
		return d, nil
	}

	result, err := e.gw.VerifyQR(ctx, payload)
	switch {
	case err == nil:
		return e.assetOnline(ctx, guard, payload, result)
	case gateway.IsConnectivity(err):
		e.logger.Warn("Remote verification unreachable, deciding from cache", "error", err)
		return e.assetOffline(ctx, guard, payload)
	default:
		return nil, err
	}
}

func (e *Engine) assetOnline(ctx context.Context, guard *storage.User, payload qr.Payload, result *gateway.VerifyResult) (*Decision, error) {
	d := &Decision{
		Verdict: Verdict(result.Status),
		Subject: payload.SubjectID,
		Owner:   result.User,
	}

	e.appendLog(ctx, storage.GateLog{
		Type:    storage.LogTypeAssetVerification,
		AssetID: payload.SubjectID,
		UserID:  payload.OwnerID,
		GuardID: guard.ID,
		Status:  string(d.Verdict),
	})

	if d.Verdict == VerdictStolen {
		e.raiseAlert(ctx, "asset", payload.SubjectID)
		d.Message = "Asset reported stolen. Do not release, notify security."
	}
	return d, nil
}

func (e *Engine) assetOffline(ctx context.Context, guard *storage.User, payload qr.Payload) (*Decision, error) {
	// The payload's id is the asset's primary key; the server-issued
	// qr_code string is opaque and not reconstructible offline.
	asset, err := e.store.GetAsset(ctx, payload.SubjectID)
	if err != nil {
		return nil, err
	}

	d := &Decision{Subject: payload.SubjectID, Offline: true}

	switch {
	case asset == nil:
		d.Verdict = VerdictInvalid
		d.Message = "Not in local cache. Deny while offline."

	case subtle.ConstantTimeCompare([]byte(asset.VerificationHash), []byte(payload.Hash)) != 1:
		d.Verdict = VerdictInvalid
		d.Message = "Verification hash mismatch."

	case asset.IsReportedStolen:
		d.Verdict = VerdictStolen
		d.Message = "Asset reported stolen. Do not release, notify security."

	case !asset.IsActive:
		d.Verdict = VerdictInvalid
		d.Message = "Asset registration is inactive."

	case !e.ownerActive(ctx, asset.UserID):
		d.Verdict = VerdictInvalid
		d.Message = "Owner account is inactive."

	default:
		d.Verdict = VerdictPending
		d.Message = "Admitted provisionally from cache. Pending sync."
		if owner, _ := e.store.GetUser(ctx, asset.UserID); owner != nil {
			d.Owner = owner.FullName()
		}
		if _, err := e.queue.Enqueue(ctx, storage.ActionVerify, payload); err != nil {
			return nil, fmt.Errorf("failed to queue verification: %w", err)
		}
	}

	e.appendLog(ctx, storage.GateLog{
		Type:    storage.LogTypeAssetVerification,
		AssetID: payload.SubjectID,
		UserID:  payload.OwnerID,
		GuardID: guard.ID,
		Status:  string(d.Verdict),
		Notes:   "decided offline",
	})

	if d.Verdict == VerdictStolen {
		e.raiseAlert(ctx, "asset", payload.SubjectID)
	}
	return d, nil
}

// LogVehicleEntry decides a plate observation at the gate.
func (e *Engine) LogVehicleEntry(ctx context.Context, plate, notes string) (*Decision, error) {
	guard, err := e.guard(ctx)
	if err != nil {
		return nil, err
	}

	req := gateway.VehicleEntryRequest{
		PlateNumber: plate,
		Notes:       notes,
		Location:    e.location,
	}

	result, err := e.gw.LogVehicleEntry(ctx, req)
	switch {
	case err == nil:
		return e.vehicleOnline(ctx, guard, plate, result)
	case gateway.IsConnectivity(err):
		e.logger.Warn("Remote entry logging unreachable, deciding from cache", "error", err)
		return e.vehicleOffline(ctx, guard, req)
	default:
		return nil, err
	}
}

func (e *Engine) vehicleOnline(ctx context.Context, guard *storage.User, plate string, result *gateway.VehicleEntryResult) (*Decision, error) {
	d := &Decision{
		Verdict: Verdict(result.Status),
		Subject: plate,
		Owner:   result.User,
	}

	log := storage.GateLog{
		Type:     storage.LogTypeVehicleEntry,
		GuardID:  guard.ID,
		Status:   string(d.Verdict),
		Notes:    "plate " + plate,
		Location: e.location,
	}
	if result.Vehicle != nil {
		log.VehicleID = result.Vehicle.ID
		log.UserID = result.Vehicle.UserID
	}
	e.appendLog(ctx, log)

	switch d.Verdict {
	case VerdictVisitor:
		d.Message = "Unregistered vehicle. Admit as visitor."
	case VerdictStolen:
		e.raiseAlert(ctx, "vehicle", plate)
		d.Message = "Vehicle reported stolen. Do not admit, notify security."
	}
	return d, nil
}

func (e *Engine) vehicleOffline(ctx context.Context, guard *storage.User, req gateway.VehicleEntryRequest) (*Decision, error) {
	d := &Decision{Subject: req.PlateNumber, Offline: true}

	entry, err := e.watch.Check(ctx, req.PlateNumber)
	if err != nil {
		return nil, err
	}
	if entry != nil {
		d.Verdict = VerdictStolen
		d.Message = "Plate on the stolen watchlist. Do not admit."
		if entry.Reason != "" {
			d.Message += " " + entry.Reason
		}
	} else {
		vehicle, err := e.store.GetVehicleByPlate(ctx, req.PlateNumber)
		if err != nil {
			return nil, err
		}
		switch {
		case vehicle == nil:
			// Visitor admission requires a server answer. Offline we
			// cannot distinguish a visitor from a bad plate.
			d.Verdict = VerdictInvalid
			d.Message = "Plate not in local cache. Deny while offline."

		case vehicle.IsReportedStolen:
			d.Verdict = VerdictStolen
			d.Message = "Vehicle reported stolen. Do not admit, notify security."

		case !vehicle.IsActive || !e.ownerActive(ctx, vehicle.UserID):
			d.Verdict = VerdictInvalid
			d.Message = "Vehicle registration is inactive."

		default:
			d.Verdict = VerdictPending
			d.Message = "Admitted provisionally from cache. Pending sync."
			if owner, _ := e.store.GetUser(ctx, vehicle.UserID); owner != nil {
				d.Owner = owner.FullName()
			}
			if _, err := e.queue.Enqueue(ctx, storage.ActionLogEntry, req); err != nil {
				return nil, fmt.Errorf("failed to queue vehicle entry: %w", err)
			}
		}
	}

	e.appendLog(ctx, storage.GateLog{
		Type:     storage.LogTypeVehicleEntry,
		GuardID:  guard.ID,
		Status:   string(d.Verdict),
		Notes:    "plate " + req.PlateNumber + ", decided offline",
		Location: e.location,
	})

	if d.Verdict == VerdictStolen {
		e.raiseAlert(ctx, "vehicle", req.PlateNumber)
	}
	return d, nil
}

// ScholarToggle is the answer to a day scholar in/out flip.
type ScholarToggle struct {
	UserID  string `json:"user_id"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status"`
	Offline bool   `json:"offline"`
}

// ToggleDayScholar flips a day scholar between in and out. Offline the
// flip is applied to the cached snapshot and queued; replaying the
// queued toggle converges because the server records who last toggled,
// not a target state.
func (e *Engine) ToggleDayScholar(ctx context.Context, userID string) (*ScholarToggle, error) {
	guard, err := e.guard(ctx)
	if err != nil {
		return nil, err
	}

	scholar, err := e.gw.ToggleDayScholar(ctx, userID)
	if err == nil {
		e.cacheScholarStatus(ctx, userID, scholar.Status)
		e.appendLog(ctx, storage.GateLog{
			Type:    scholarLogType(scholar.Status),
			UserID:  userID,
			GuardID: guard.ID,
			Status:  scholar.Status,
		})
		return &ScholarToggle{UserID: userID, Name: scholar.Name, Status: scholar.Status}, nil
	}
	if !gateway.IsConnectivity(err) {
		return nil, err
	}

	e.logger.Warn("Remote toggle unreachable, applying locally", "error", err)

	user, err := e.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("day scholar %s not in local cache", userID)
	}

	status := "in"
	if user.ScholarStatus == "in" {
		status = "out"
	}
	e.cacheScholarStatus(ctx, userID, status)

	if _, err := e.queue.Enqueue(ctx, storage.ActionToggleStatus, map[string]string{"user_id": userID}); err != nil {
		return nil, fmt.Errorf("failed to queue toggle: %w", err)
	}

	e.appendLog(ctx, storage.GateLog{
		Type:    scholarLogType(status),
		UserID:  userID,
		GuardID: guard.ID,
		Status:  status,
		Notes:   "decided offline",
	})

	return &ScholarToggle{UserID: userID, Name: user.FullName(), Status: status, Offline: true}, nil
}

// guard resolves the acting guard from the persisted credential. Works
// offline: no network involved.
func (e *Engine) guard(ctx context.Context) (*storage.User, error) {
	cred, err := e.store.GetCredential(ctx)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrNotAuthenticated
	}
	user, err := e.store.GetUser(ctx, cred.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &storage.User{ID: cred.UserID}
	}
	return user, nil
}

func (e *Engine) ownerActive(ctx context.Context, userID string) bool {
	owner, err := e.store.GetUser(ctx, userID)
	if err != nil || owner == nil {
		// Unknown owner does not void a hash-matching cached record.
		return true
	}
	return owner.IsActive
}

func (e *Engine) cacheScholarStatus(ctx context.Context, userID, status string) {
	user, err := e.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		return
	}
	user.ScholarStatus = status
	user.UpdatedAt = time.Now().UTC()
	if err := e.store.PutUser(ctx, *user); err != nil {
		e.logger.Warn("Failed to cache scholar status", "user", userID, "error", err)
	}
}

func (e *Engine) appendLog(ctx context.Context, log storage.GateLog) {
	log.ID = uuid.NewString()
	log.Timestamp = time.Now().UTC()
	if log.Location == "" {
		log.Location = e.location
	}
	if err := e.store.AppendGateLog(ctx, log); err != nil {
		e.logger.Error("Failed to append gate log", "error", err)
	}
}

func (e *Engine) raiseAlert(ctx context.Context, subjectKind, subjectID string) {
	if e.alerts == nil {
		return
	}
	if err := e.alerts.StolenDetected(ctx, subjectKind, subjectID, e.location); err != nil {
		e.logger.Error("Failed to send stolen alert", "subject", subjectID, "error", err)
	}
}

func scholarLogType(status string) string {
	if status == "in" {
		return storage.LogTypeDayScholarIn
	}
	return storage.LogTypeDayScholarOut
}
