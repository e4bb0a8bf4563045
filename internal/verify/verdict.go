// Package verify holds the gate verification engine: the decision
// logic behind every scan and plate check, online or offline.
package verify

import "errors"

// Verdict is the outcome of a gate check.
type Verdict string

const (
	// VerdictValid: the subject is registered, active and matches.
	VerdictValid Verdict = "valid"
	// VerdictInvalid: unknown, inactive or tampered. Deny passage.
	VerdictInvalid Verdict = "invalid"
	// VerdictVisitor: an unregistered vehicle confirmed by the server.
	VerdictVisitor Verdict = "visitor"
	// VerdictStolen: flagged as stolen. Deny passage, raise alert.
	VerdictStolen Verdict = "stolen"
	// VerdictPending: provisionally admitted offline, awaiting remote
	// confirmation. Never produced while online.
	VerdictPending Verdict = "pending"
)

// Decided reports whether the verdict denies or grants on its own
// authority, as opposed to a provisional pending answer.
func (v Verdict) Decided() bool {
	return v != VerdictPending
}

var (
	ErrNotAuthenticated = errors.New("no authenticated guard")
)

// Decision is the engine's answer to one gate check.
type Decision struct {
	Verdict Verdict `json:"verdict"`
	// Subject names what was checked: an asset description or a plate.
	Subject string `json:"subject,omitempty"`
	// Owner is the registered owner's display name, when known.
	Owner string `json:"owner,omitempty"`
	// Offline is set when the decision was made against the local
	// cache rather than the remote API.
	Offline bool `json:"offline"`
	// Message is a human-readable explanation for the guard display.
	Message string `json:"message,omitempty"`
}
