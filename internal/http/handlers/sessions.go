package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/session"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/utils"
	"github.com/gin-gonic/gin"
)

type SessionsStore interface {
	Create(ctx context.Context, s session.Session) (session.Session, error)
	UpdateStatus(ctx context.Context, id string, next session.Status, proctorID string) (session.Session, error)
	ListByStudent(ctx context.Context, studentID string) ([]session.Detail, error)
	ListAll(ctx context.Context) ([]session.Detail, error)
}

type ExamChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type VerifiedUserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SessionsHandler struct {
	repo  SessionsStore
	exams ExamChecker
	users VerifiedUserReader
	prom  *observability.Prom
}

func NewSessionsHandler(repo SessionsStore, exams ExamChecker, users VerifiedUserReader, prom *observability.Prom) *SessionsHandler {
	return &SessionsHandler{repo: repo, exams: exams, users: users, prom: prom}
}

func (h *SessionsHandler) countTransition(to session.Status, result string) {
	if h.prom != nil {
		h.prom.SessionTransitions.WithLabelValues(string(to), result).Inc()
	}
}

// StartSession creates an active session for the calling student. The
// account-level ID verification flag is an enforced precondition here, not
// just a client-side navigation gate. Repeat calls are not deduplicated:
// each start creates a fresh session.
func (h *SessionsHandler) StartSession(ctx *gin.Context) {
	var req session.StartSessionRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.StudentID = userID

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	actor, err := h.users.GetByID(cctx, userID)

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return
	}

	if !actor.IsIDVerified {
		RespondForbidden(ctx, "id_not_verified", "Complete ID verification before starting an exam.")
		return
	}

	exists, err := h.exams.Exists(cctx, req.ExamID)

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return
	}

	if !exists {
		RespondNotFound(ctx, "Exam not found")
		return
	}

	created, err := h.repo.Create(cctx, session.NewFromStartRequest(req))

	if err != nil {
		RespondInternal(ctx, "Could not start session")
		return
	}

	h.countTransition(session.StatusActive, "ok")

	ctx.JSON(http.StatusCreated, created)
}

// UpdateStatus moves a session through the lifecycle. Illegal moves are a
// 409, unknown sessions a 404. The acting proctor claims the session when it
// has no proctor yet.
func (h *SessionsHandler) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "session id must be a valid UUID", gin.H{"code": "invalid_id"})
		return
	}

	var req session.UpdateStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	proctorID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || proctorID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.repo.UpdateStatus(cctx, id, req.Status, proctorID)

	if err != nil {
		switch {
		case errors.Is(err, session.ErrNotFound):
			RespondNotFound(ctx, "Session not found")
		case errors.Is(err, session.ErrInvalidTransition):
			h.countTransition(req.Status, "rejected")
			RespondConflict(ctx, "invalid_transition", "Session cannot move to the requested status.")
		default:
			RespondInternal(ctx, "Could not update session")
		}
		return
	}

	h.countTransition(req.Status, "ok")

	ctx.JSON(http.StatusOK, updated)
}

// ListSessions is role-scoped: students see their own sessions with the
// assigned proctor joined in, proctors see every session with the student
// joined in.
func (h *SessionsHandler) ListSessions(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	role, _ := middlewares.RoleFromContext(ctx)

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	var (
		details []session.Detail
		err     error
	)

	switch role {
	case user.RoleStudent:
		details, err = h.repo.ListByStudent(cctx, userID)
	case user.RoleProctor:
		details, err = h.repo.ListAll(cctx)
	default:
		RespondForbidden(ctx, "forbidden", "Access denied")
		return
	}

	if err != nil {
		RespondInternal(ctx, "Could not list sessions")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": details,
		"count": len(details),
	})
}
