package verify

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// SimulatedVerifier stands in for a real biometric provider. It always
// reports success, logging enough to trace the flow end to end.
type SimulatedVerifier struct{}

func NewSimulatedVerifier() *SimulatedVerifier { return &SimulatedVerifier{} }

func (v *SimulatedVerifier) SubmitID(ctx context.Context, in SubmitIDInput) (SubmitIDResult, error) {
	if err := simulateProvider(ctx); err != nil {
		return SubmitIDResult{}, err
	}

	slog.InfoContext(ctx, "verify.id_submission",
		"user_id", in.UserID,
		"document_type", in.DocumentType,
	)

	return SubmitIDResult{
		Accepted: true,
		Message:  "ID document submitted for proctor review.",
	}, nil
}

func (v *SimulatedVerifier) MatchFace(ctx context.Context, in MatchFaceInput) (MatchFaceResult, error) {
	if err := simulateProvider(ctx); err != nil {
		return MatchFaceResult{}, err
	}

	slog.InfoContext(ctx, "verify.face_match",
		"user_id", in.UserID,
		"has_profile_picture", in.ProfilePicture != "",
	)

	return MatchFaceResult{Match: true, Confidence: 1.0}, nil
}

func simulateProvider(ctx context.Context) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("VERIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("VERIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
