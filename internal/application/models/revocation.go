package models

import "time"

// Revocation is the audit record written when an application is revoked.
// Revocations are insert-only.
type Revocation struct {
	ID            int64         `json:"id"`
	ApplicationID ApplicationID `json:"ApplicationId"`
	Reason        string        `json:"reason"`
	RevokedBy     string        `json:"revokedBy,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// NewRevocation builds the audit record for applicationID.
func NewRevocation(applicationID ApplicationID, req RevocationRequest, now time.Time) *Revocation {
	return &Revocation{
		ApplicationID: applicationID,
		Reason:        req.Reason,
		RevokedBy:     req.RevokedBy,
		CreatedAt:     now,
	}
}
