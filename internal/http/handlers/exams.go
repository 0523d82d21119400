package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/cache"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/exam"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/http/middlewares"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/utils"
	"github.com/gin-gonic/gin"
)

type ExamsStore interface {
	Create(ctx context.Context, req exam.CreateExamRequest) (exam.Exam, error)
	List(ctx context.Context) ([]exam.WithCreator, error)
	GetByID(ctx context.Context, id string) (exam.WithCreator, error)
}

type ExamsHandler struct {
	repo  ExamsStore
	cache *cache.Store
}

func NewExamsHandler(repo ExamsStore, cacheStore *cache.Store) *ExamsHandler {
	return &ExamsHandler{repo: repo, cache: cacheStore}
}

const examListCacheKey = "list"

// CreateExam persists a new exam owned by the acting proctor. Role
// enforcement happens in the route group; the creator id comes from the
// token, never the body.
func (h *ExamsHandler) CreateExam(ctx *gin.Context) {
	var req exam.CreateExamRequest

	if !BindJSON(ctx, &req) {
		return
	}

	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	req.CreatedBy = userID

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	created, err := h.repo.Create(cctx, req)

	if err != nil {
		RespondInternal(ctx, "Could not create exam")
		return
	}

	// the catalogue changed; drop the cached listing
	_ = h.cache.Delete(cctx, examListCacheKey)

	ctx.JSON(http.StatusCreated, created)
}

func (h *ExamsHandler) ListExams(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	var exams []exam.WithCreator

	if err := h.cache.Get(cctx, examListCacheKey, &exams); err == nil {
		ctx.JSON(http.StatusOK, gin.H{
			"items": exams,
			"count": len(exams),
		})
		return
	}

	exams, err := h.repo.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list exams")
		return
	}

	_ = h.cache.Set(cctx, examListCacheKey, exams)

	ctx.JSON(http.StatusOK, gin.H{
		"items": exams,
		"count": len(exams),
	})
}

func (h *ExamsHandler) GetExamByID(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "exam id must be a valid UUID", gin.H{"code": "invalid_id"})
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	e, err := h.repo.GetByID(cctx, id)

	if err != nil {
		if errors.Is(err, exam.ErrNotFound) {
			RespondNotFound(ctx, "Exam not found")
			return
		}
		RespondInternal(ctx, "Could not fetch exam")
		return
	}

	ctx.JSON(http.StatusOK, e)
}
