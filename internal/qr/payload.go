// Package qr implements the QR payload wire format used on printed
// asset and vehicle badges: a flat JSON record carrying the subject
// identity and a server-computed integrity hash. The hash is opaque to
// the client; it is carried and submitted, never recomputed here.
package qr

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Payload kinds.
const (
	KindAsset   = "asset"
	KindVehicle = "vehicle"
)

var ErrMalformedPayload = errors.New("malformed qr payload")

// Payload is the decoded content of a scanned QR code. Field names
// mirror the records the server prints onto badges; the owner key is
// camel-cased there.
type Payload struct {
	Kind      string `json:"type"`
	SubjectID string `json:"id"`
	OwnerID   string `json:"userId"`
	IssuedAt  string `json:"timestamp"`
	Hash      string `json:"hash"`
}

// New builds a payload for a cached record. The hash must be the
// server-issued verification hash, passed through verbatim.
func New(kind, subjectID, ownerID, hash string) Payload {
	return Payload{
		Kind:      kind,
		SubjectID: subjectID,
		OwnerID:   ownerID,
		IssuedAt:  time.Now().UTC().Format(time.RFC3339),
		Hash:      hash,
	}
}

// Encode serializes the payload to its flat text form.
func (p Payload) Encode() (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Decode parses a scanned text record. It does not validate field
// contents; see Validate. Badges printed by older backend releases
// carry the owner under a snake_cased key; both spellings decode.
func Decode(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if p.OwnerID == "" {
		var legacy struct {
			OwnerID string `json:"user_id"`
		}
		if err := json.Unmarshal([]byte(raw), &legacy); err == nil {
			p.OwnerID = legacy.OwnerID
		}
	}
	return p, nil
}

// Validate checks the payload shape. A payload failing validation is
// classified invalid without any network call.
func (p Payload) Validate() error {
	switch p.Kind {
	case KindAsset, KindVehicle:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedPayload, p.Kind)
	}
	if p.SubjectID == "" {
		return fmt.Errorf("%w: missing subject id", ErrMalformedPayload)
	}
	if p.OwnerID == "" {
		return fmt.Errorf("%w: missing owner id", ErrMalformedPayload)
	}
	if p.Hash == "" {
		return fmt.Errorf("%w: missing integrity hash", ErrMalformedPayload)
	}
	return nil
}

