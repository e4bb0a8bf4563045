package gateway

import (
	"encoding/json"
	"fmt"

	"gatepass-client/internal/storage"
)

// Response schemas, validated at the gateway boundary. Loosely shaped
// data from the remote side never reaches the verification engine.

// Verdict statuses the remote verification endpoints may answer with.
func validStatus(status string) bool {
	switch status {
	case "valid", "invalid", "visitor", "stolen":
		return true
	}
	return false
}

type LoginData struct {
	User  storage.User `json:"user"`
	Token string       `json:"token"`
}

func (d *LoginData) Validate() error {
	if d.Token == "" {
		return fmt.Errorf("login response missing token")
	}
	if d.User.ID == "" {
		return fmt.Errorf("login response missing user id")
	}
	return nil
}

type refreshData struct {
	Token string `json:"token"`
}

func (d *refreshData) Validate() error {
	if d.Token == "" {
		return fmt.Errorf("refresh response missing token")
	}
	return nil
}

// VerifyResult is the definitive answer of POST /verify-qr. Item is
// an asset or a vehicle depending on Type and is kept raw; the engine
// only needs the status and owner name.
type VerifyResult struct {
	Status string          `json:"status"`
	Type   string          `json:"type,omitempty"`
	Item   json.RawMessage `json:"item,omitempty"`
	User   string          `json:"user,omitempty"`
}

func (r *VerifyResult) Validate() error {
	if !validStatus(r.Status) {
		return fmt.Errorf("unknown verification status %q", r.Status)
	}
	return nil
}

type VehicleEntryRequest struct {
	PlateNumber string `json:"plate_number"`
	Notes       string `json:"notes,omitempty"`
	Location    string `json:"location,omitempty"`
}

type VehicleEntryResult struct {
	Status      string           `json:"status"`
	PlateNumber string           `json:"plate_number"`
	LogID       string           `json:"log_id,omitempty"`
	Vehicle     *storage.Vehicle `json:"vehicle,omitempty"`
	User        string           `json:"user,omitempty"`
}

func (r *VehicleEntryResult) Validate() error {
	if !validStatus(r.Status) {
		return fmt.Errorf("unknown entry status %q", r.Status)
	}
	return nil
}

// DayScholar is one row of GET /day-scholars.
type DayScholar struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name,omitempty"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func (d *DayScholar) Validate() error {
	if d.UserID == "" {
		return fmt.Errorf("day scholar row missing user id")
	}
	if d.Status != "in" && d.Status != "out" {
		return fmt.Errorf("unknown day scholar status %q", d.Status)
	}
	return nil
}

type DashboardStats struct {
	TotalUsers    int `json:"total_users"`
	TotalAssets   int `json:"total_assets"`
	TotalVehicles int `json:"total_vehicles"`
	TodayLogs     int `json:"today_logs"`
	ActiveGuards  int `json:"active_guards"`
	DayScholarsIn int `json:"day_scholars_in,omitempty"`
}
