package session

import (
	"errors"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/exam"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/google/uuid"
)

// Status is the session lifecycle state. The schema default is "pending",
// kept for historical reasons; the only creation path writes "active".
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusFlagged   Status = "flagged"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusFlagged:
		return true
	}
	return false
}

// transitions is the allowed-move table. Completed is terminal; a flagged
// session can be cleared back to active or closed out.
var transitions = map[Status][]Status{
	StatusPending: {StatusActive},
	StatusActive:  {StatusCompleted, StatusFlagged},
	StatusFlagged: {StatusActive, StatusCompleted},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

var (
	ErrNotFound          = errors.New("session not found")
	ErrInvalidStatus     = errors.New("invalid session status")
	ErrInvalidTransition = errors.New("invalid status transition")
)

type Session struct {
	ID         string     `json:"id"`
	ExamID     string     `json:"examId"`
	StudentID  string     `json:"studentId"`
	ProctorID  *string    `json:"proctorId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	Status     Status     `json:"status"`
	IDVerified bool       `json:"idVerified"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Detail is the listing shape: the session joined with an exam summary and,
// depending on who is asking, the counterpart (proctor for students,
// student for proctors).
type Detail struct {
	Session
	Exam    exam.Exam     `json:"exam"`
	Student *user.Summary `json:"student,omitempty"`
	Proctor *user.Summary `json:"proctor,omitempty"`
}

type StartSessionRequest struct {
	ExamID string `json:"examId" binding:"required,uuid4"`
	// set from the authenticated student, never from the body
	StudentID string `json:"-"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required,oneof=pending active completed flagged"`
}

// NewFromStartRequest builds the session a student begins with. Sessions
// start active with the clock running. IDVerified is the per-session flag
// (face match at session start); it is distinct from the account-level
// User.IsIDVerified and starts false.
func NewFromStartRequest(req StartSessionRequest) Session {
	now := time.Now().UTC()
	return Session{
		ID:         uuid.NewString(),
		ExamID:     req.ExamID,
		StudentID:  req.StudentID,
		StartTime:  now,
		Status:     StatusActive,
		IDVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
