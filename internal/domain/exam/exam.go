package exam

import (
	"errors"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/google/uuid"
)

type Exam struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Duration    int       `json:"duration"` // minutes
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WithCreator is the read shape: the exam plus the creating proctor joined in.
type WithCreator struct {
	Exam
	Creator user.Summary `json:"creator"`
}

var ErrNotFound = errors.New("exam not found")

type CreateExamRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=120"`
	Description string    `json:"description" binding:"omitempty,max=1000"`
	Date        time.Time `json:"date" binding:"required"`
	Duration    int       `json:"duration" binding:"required,min=1,max=1440"`
	// set from the authenticated proctor, never from the body
	CreatedBy string `json:"-"`
}

// a factory to build an Exam from the incoming DTO

func NewFromCreateRequest(req CreateExamRequest) Exam {
	now := time.Now().UTC()
	return Exam{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Duration:    req.Duration,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
