package storage

import "time"

// User is a locally cached snapshot of a remote user record.
type User struct {
	ID            string    `db:"id" json:"id"`
	Email         string    `db:"email" json:"email"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	Role          string    `db:"role" json:"role"`
	StudentID     string    `db:"student_id" json:"student_id,omitempty"`
	StaffID       string    `db:"staff_id" json:"staff_id,omitempty"`
	Phone         string    `db:"phone" json:"phone,omitempty"`
	Department    string    `db:"department" json:"department,omitempty"`
	IsActive      bool      `db:"is_active" json:"is_active"`
	ScholarStatus string    `db:"scholar_status" json:"scholar_status,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Asset is a locally cached snapshot of a registered asset.
type Asset struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Type             string    `db:"type" json:"asset_type"`
	SerialNumber     string    `db:"serial_number" json:"serial_number"`
	Brand            string    `db:"brand" json:"brand"`
	Model            string    `db:"model" json:"model"`
	Description      string    `db:"description" json:"description,omitempty"`
	QRCode           string    `db:"qr_code" json:"qr_code"`
	VerificationHash string    `db:"verification_hash" json:"verification_hash"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	IsReportedStolen bool      `db:"is_reported_stolen" json:"is_reported_stolen"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Vehicle is a locally cached snapshot of a registered vehicle.
type Vehicle struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	PlateNumber      string    `db:"plate_number" json:"plate_number"`
	Make             string    `db:"make" json:"make"`
	Model            string    `db:"model" json:"model"`
	Color            string    `db:"color" json:"color"`
	Year             int       `db:"year" json:"year,omitempty"`
	QRCode           string    `db:"qr_code" json:"qr_code"`
	VerificationHash string    `db:"verification_hash" json:"verification_hash"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	IsReportedStolen bool      `db:"is_reported_stolen" json:"is_reported_stolen"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// GateLog records one verification or entry event at the gate.
// Gate logs are append-only and never updated.
type GateLog struct {
	ID        string    `db:"id" json:"id"`
	Type      string    `db:"type" json:"log_type"`
	UserID    string    `db:"user_id" json:"user_id,omitempty"`
	AssetID   string    `db:"asset_id" json:"asset_id,omitempty"`
	VehicleID string    `db:"vehicle_id" json:"vehicle_id,omitempty"`
	GuardID   string    `db:"guard_id" json:"guard_id"`
	Status    string    `db:"status" json:"status"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	Notes     string    `db:"notes" json:"notes,omitempty"`
	Location  string    `db:"location" json:"location,omitempty"`
}

// Gate log types.
const (
	LogTypeAssetVerification = "asset_verification"
	LogTypeVehicleEntry      = "vehicle_entry"
	LogTypeVehicleExit       = "vehicle_exit"
	LogTypeDayScholarIn      = "day_scholar_in"
	LogTypeDayScholarOut     = "day_scholar_out"
)

// PendingAction is a queued, not-yet-confirmed mutation destined for the
// remote API. Created when an online attempt fails with a connectivity
// error, deleted only after the remote side confirms acceptance.
type PendingAction struct {
	ID        string    `db:"id" json:"id"`
	Kind      string    `db:"kind" json:"kind"`
	Payload   []byte    `db:"payload" json:"payload"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Pending action kinds.
const (
	ActionVerify       = "verify"
	ActionLogEntry     = "log-entry"
	ActionToggleStatus = "toggle-status"
)

// Credential is the single persisted bearer token together with the
// identity it was issued for.
type Credential struct {
	Token   string    `db:"token"`
	UserID  string    `db:"user_id"`
	SavedAt time.Time `db:"saved_at"`
}

// WatchlistEntry marks a plate number flagged by campus security.
type WatchlistEntry struct {
	PlateNumber string    `db:"plate_number"`
	Reason      string    `db:"reason"`
	AddedAt     time.Time `db:"added_at"`
}
