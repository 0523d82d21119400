package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/storage"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/utils"
	"github.com/gin-gonic/gin"
)

type UsersStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	SetIDVerified(ctx context.Context, id string, verified bool) (user.User, error)
	SetProfilePicture(ctx context.Context, id, path string) (user.User, error)
}

type UsersHandler struct {
	repo    UsersStore
	uploads *storage.UploadStore
	prom    *observability.Prom
}

func NewUsersHandler(repo UsersStore, uploads *storage.UploadStore, prom *observability.Prom) *UsersHandler {
	return &UsersHandler{repo: repo, uploads: uploads, prom: prom}
}

func (h *UsersHandler) Profile(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not fetch profile")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

// VerifyStudentID is the proctor review step of the verification flow: it
// flips the target account's is_id_verified flag. Sessions keep their own
// id_verified flag; the two are not synchronized.
func (h *UsersHandler) VerifyStudentID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "user id must be a valid UUID", gin.H{"code": "invalid_id"})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.SetIDVerified(cctx, id, true)

	if err != nil {
		if h.prom != nil {
			h.prom.VerificationsTotal.WithLabelValues("proctor_review", "error").Inc()
		}
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Could not verify user")
		return
	}

	if h.prom != nil {
		h.prom.VerificationsTotal.WithLabelValues("proctor_review", "ok").Inc()
	}

	ctx.JSON(http.StatusOK, u)
}

// UploadProfilePicture accepts a single multipart image (field "profilePic",
// 2MB cap) and records its public path on the user.
func (h *UsersHandler) UploadProfilePicture(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	fileHeader, err := ctx.FormFile("profilePic")

	if err != nil {
		RespondBadRequest(ctx, "No file uploaded.", gin.H{"code": "missing_file"})
		return
	}

	file, err := fileHeader.Open()

	if err != nil {
		RespondInternal(ctx, "Could not read upload")
		return
	}

	defer file.Close()

	path, err := h.uploads.SaveProfilePicture(userID, file, fileHeader.Size)

	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			RespondBadRequest(ctx, "File exceeds the 2MB limit.", gin.H{"code": "file_too_large"})
		case errors.Is(err, storage.ErrUnsupportedType):
			RespondBadRequest(ctx, "File upload only supports image types.", gin.H{"code": "unsupported_type"})
		default:
			RespondInternal(ctx, "Server error during upload.")
		}
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.repo.SetProfilePicture(cctx, userID, path)

	if err != nil {
		// the file write is not rolled back; the record simply keeps its old path
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}
		RespondInternal(ctx, "Server error during upload.")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message":  "Profile picture uploaded successfully.",
		"filePath": path,
		"user":     u,
	})
}
