// Package sync owns the pending action queue: enqueueing provisional
// actions taken offline and replaying them against the remote API once
// connectivity returns.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gatepass-client/internal/gateway"
	"gatepass-client/internal/qr"
	"gatepass-client/internal/storage"
)

// Coordinator replays queued actions in insertion order. It implements
// the queue the verification engine enqueues into.
type Coordinator struct {
	store  storage.Provider
	gw     *gateway.Client
	logger *slog.Logger
}

func NewCoordinator(store storage.Provider, gw *gateway.Client) *Coordinator {
	return &Coordinator{
		store:  store,
		gw:     gw,
		logger: slog.With("component", "sync"),
	}
}

// Enqueue persists one provisional action. Action ids are derived from
// the creation time and zero-padded so that lexical order equals
// insertion order.
func (c *Coordinator) Enqueue(ctx context.Context, kind string, payload any) (*storage.PendingAction, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode pending action: %w", err)
	}

	now := time.Now().UTC()
	action := storage.PendingAction{
		ID:        fmt.Sprintf("%020d-%s", now.UnixNano(), uuid.NewString()[:8]),
		Kind:      kind,
		Payload:   body,
		CreatedAt: now,
	}
	if err := c.store.AppendPendingAction(ctx, action); err != nil {
		return nil, err
	}

	c.logger.Info("Queued pending action", "id", action.ID, "kind", kind)
	return &action, nil
}

// Pending returns the queued actions in replay order.
func (c *Coordinator) Pending(ctx context.Context) ([]storage.PendingAction, error) {
	return c.store.ListPendingActions(ctx)
}

// Result summarizes one drain pass.
type Result struct {
	Succeeded int
	Failed    int
	Remaining int
}

// Drain replays the queue front to back. An action is deleted only
// after the server confirms it. A connectivity failure stops the whole
// pass; a definitive rejection leaves the action queued, blocks its
// kind for the rest of the pass to preserve per-kind ordering, and
// moves on.
func (c *Coordinator) Drain(ctx context.Context) (*Result, error) {
	actions, err := c.store.ListPendingActions(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Remaining: len(actions)}
	blocked := map[string]bool{}

	for _, action := range actions {
		if blocked[action.Kind] {
			continue
		}

		err := c.submit(ctx, action)
		switch {
		case err == nil:
			if err := c.store.DeletePendingAction(ctx, action.ID); err != nil {
				return result, err
			}
			result.Succeeded++
			result.Remaining--
			c.logger.Info("Synced pending action", "id", action.ID, "kind", action.Kind)

		case gateway.IsConnectivity(err):
			c.logger.Warn("Sync interrupted, server unreachable", "error", err)
			return result, nil

		case isAuthFailure(err):
			c.logger.Warn("Sync interrupted, session expired", "error", err)
			return result, err

		default:
			result.Failed++
			blocked[action.Kind] = true
			c.logger.Error("Pending action rejected", "id", action.ID, "kind", action.Kind, "error", err)
		}
	}

	return result, nil
}

func (c *Coordinator) submit(ctx context.Context, action storage.PendingAction) error {
	switch action.Kind {
	case storage.ActionVerify:
		var payload qr.Payload
		if err := json.Unmarshal(action.Payload, &payload); err != nil {
			return fmt.Errorf("corrupt verify payload: %w", err)
		}
		_, err := c.gw.VerifyQR(ctx, payload)
		return err

	case storage.ActionLogEntry:
		var req gateway.VehicleEntryRequest
		if err := json.Unmarshal(action.Payload, &req); err != nil {
			return fmt.Errorf("corrupt vehicle entry payload: %w", err)
		}
		_, err := c.gw.LogVehicleEntry(ctx, req)
		return err

	case storage.ActionToggleStatus:
		var body struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(action.Payload, &body); err != nil {
			return fmt.Errorf("corrupt toggle payload: %w", err)
		}
		scholar, err := c.gw.ToggleDayScholar(ctx, body.UserID)
		if err != nil {
			return err
		}
		c.cacheScholarStatus(ctx, body.UserID, scholar.Status)
		return nil

	default:
		return fmt.Errorf("unknown pending action kind %q", action.Kind)
	}
}

// cacheScholarStatus brings the cached snapshot in line with the
// server's answer after a replayed toggle. The server's status wins.
func (c *Coordinator) cacheScholarStatus(ctx context.Context, userID, status string) {
	user, err := c.store.GetUser(ctx, userID)
	if err != nil || user == nil {
		return
	}
	user.ScholarStatus = status
	user.UpdatedAt = time.Now().UTC()
	if err := c.store.PutUser(ctx, *user); err != nil {
		c.logger.Warn("Failed to cache scholar status", "user", userID, "error", err)
	}
}

func isAuthFailure(err error) bool {
	return errors.Is(err, gateway.ErrSessionExpired) || errors.Is(err, gateway.ErrForbidden)
}
