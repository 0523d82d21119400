// Package verify defines the identity-verification capability boundary.
// The wired implementation is simulated; a real biometric backend can be
// swapped in without touching call sites.
package verify

import "context"

type SubmitIDInput struct {
	UserID       string
	DocumentType string
	// client-side capture reference, not persisted server-side
	DocumentRef string
}

type SubmitIDResult struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

type MatchFaceInput struct {
	UserID string
	// stored profile picture path, empty when none uploaded yet
	ProfilePicture string
	// live capture reference from the client
	CaptureRef string
}

type MatchFaceResult struct {
	Match      bool    `json:"match"`
	Confidence float64 `json:"confidence"`
}

type IdentityVerifier interface {
	SubmitID(ctx context.Context, in SubmitIDInput) (SubmitIDResult, error)
	MatchFace(ctx context.Context, in MatchFaceInput) (MatchFaceResult, error)
}
