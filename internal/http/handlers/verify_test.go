package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/handlers"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/verify"
)

type fakeVerifier struct {
	submitFn func(ctx context.Context, in verify.SubmitIDInput) (verify.SubmitIDResult, error)
	matchFn  func(ctx context.Context, in verify.MatchFaceInput) (verify.MatchFaceResult, error)
}

func (f *fakeVerifier) SubmitID(ctx context.Context, in verify.SubmitIDInput) (verify.SubmitIDResult, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, in)
	}
	return verify.SubmitIDResult{Accepted: true, Message: "received"}, nil
}

func (f *fakeVerifier) MatchFace(ctx context.Context, in verify.MatchFaceInput) (verify.MatchFaceResult, error) {
	if f.matchFn != nil {
		return f.matchFn(ctx, in)
	}
	return verify.MatchFaceResult{Match: true, Confidence: 0.98}, nil
}

func TestSubmitIDHandler(t *testing.T) {
	studentID := newUUID()

	tests := []struct {
		name           string
		body           string
		verifier       *fakeVerifier
		wantStatusCode int
	}{
		{
			name:           "accepted",
			body:           `{"documentType": "passport", "documentRef": "ref-123"}`,
			wantStatusCode: http.StatusAccepted,
		},
		{
			name:           "document_type_outside_enum",
			body:           `{"documentType": "library_card", "documentRef": "ref-123"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_ref",
			body:           `{"documentType": "passport"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "verifier_error",
			body: `{"documentType": "passport", "documentRef": "ref-123"}`,
			verifier: &fakeVerifier{
				submitFn: func(ctx context.Context, in verify.SubmitIDInput) (verify.SubmitIDResult, error) {
					return verify.SubmitIDResult{}, errors.New("backend down")
				},
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			v := tt.verifier
			if v == nil {
				v = &fakeVerifier{}
			}

			h := handlers.NewVerifyHandler(v, &fakeUserReader{}, nil)
			r := setupRouterAs(http.MethodPost, "/api/verify/id", studentID, user.RoleStudent, h.SubmitID)

			req := httptest.NewRequest(http.MethodPost, "/api/verify/id", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestMatchFaceThreadsProfilePicture(t *testing.T) {
	studentID := newUUID()
	picPath := "/uploads/profile-pics/profilePic-" + studentID + ".png"

	users := &fakeUserReader{
		getFn: func(ctx context.Context, id string) (user.User, error) {
			return user.User{ID: id, ProfilePicture: &picPath, IsIDVerified: false}, nil
		},
	}

	var got verify.MatchFaceInput

	v := &fakeVerifier{
		matchFn: func(ctx context.Context, in verify.MatchFaceInput) (verify.MatchFaceResult, error) {
			got = in
			return verify.MatchFaceResult{Match: true, Confidence: 0.91}, nil
		},
	}

	h := handlers.NewVerifyHandler(v, users, nil)
	r := setupRouterAs(http.MethodPost, "/api/verify/face", studentID, user.RoleStudent, h.MatchFace)

	body := `{"captureRef": "capture-xyz"}`
	req := httptest.NewRequest(http.MethodPost, "/api/verify/face", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if got.UserID != studentID || got.ProfilePicture != picPath || got.CaptureRef != "capture-xyz" {
		t.Fatalf("verifier input not threaded: %+v", got)
	}

	var resp verify.MatchFaceResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !resp.Match || resp.Confidence != 0.91 {
		t.Fatalf("unexpected result: %+v", resp)
	}
}
