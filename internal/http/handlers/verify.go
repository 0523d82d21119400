package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/verify"
	"github.com/gin-gonic/gin"
)

// VerifyHandler fronts the identity-verification capability. Results are
// advisory: the authoritative account flag is only flipped by a proctor
// through VerifyStudentID.
type VerifyHandler struct {
	verifier verify.IdentityVerifier
	users    VerifiedUserReader
	prom     *observability.Prom
}

func NewVerifyHandler(verifier verify.IdentityVerifier, users VerifiedUserReader, prom *observability.Prom) *VerifyHandler {
	return &VerifyHandler{verifier: verifier, users: users, prom: prom}
}

func (h *VerifyHandler) count(step, result string) {
	if h.prom != nil {
		h.prom.VerificationsTotal.WithLabelValues(step, result).Inc()
	}
}

type SubmitIDRequest struct {
	DocumentType string `json:"documentType" binding:"required,oneof=passport national_id drivers_license student_card"`
	DocumentRef  string `json:"documentRef" binding:"required,max=2048"`
}

// SubmitID hands the captured document to the verifier. Nothing is stored
// server-side; the document waits for proctor review on the client.
func (h *VerifyHandler) SubmitID(ctx *gin.Context) {
	var req SubmitIDRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	result, err := h.verifier.SubmitID(cctx, verify.SubmitIDInput{
		UserID:       userID,
		DocumentType: req.DocumentType,
		DocumentRef:  req.DocumentRef,
	})

	if err != nil {
		h.count("id_submission", "error")
		RespondInternal(ctx, "Could not submit ID document")
		return
	}

	h.count("id_submission", "ok")

	ctx.JSON(http.StatusAccepted, result)
}

type MatchFaceRequest struct {
	CaptureRef string `json:"captureRef" binding:"required,max=2048"`
}

// MatchFace compares a live capture against the stored profile picture via
// the verifier.
func (h *VerifyHandler) MatchFace(ctx *gin.Context) {
	var req MatchFaceRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not run face match")
		return
	}

	profilePicture := ""
	if u.ProfilePicture != nil {
		profilePicture = *u.ProfilePicture
	}

	result, err := h.verifier.MatchFace(cctx, verify.MatchFaceInput{
		UserID:         userID,
		ProfilePicture: profilePicture,
		CaptureRef:     req.CaptureRef,
	})

	if err != nil {
		h.count("face_match", "error")
		RespondInternal(ctx, "Could not run face match")
		return
	}

	h.count("face_match", "ok")

	ctx.JSON(http.StatusOK, result)
}
