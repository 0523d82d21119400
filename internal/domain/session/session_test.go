package session_test

import (
	"testing"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/session"
)

func TestStatusValid(t *testing.T) {
	valid := []session.Status{
		session.StatusPending,
		session.StatusActive,
		session.StatusCompleted,
		session.StatusFlagged,
	}

	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	invalid := []session.Status{"", "archived", "Active", "done"}

	for _, s := range invalid {
		if s.Valid() {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from session.Status
		to   session.Status
		want bool
	}{
		{"pending_to_active", session.StatusPending, session.StatusActive, true},
		{"pending_to_completed", session.StatusPending, session.StatusCompleted, false},
		{"pending_to_flagged", session.StatusPending, session.StatusFlagged, false},
		{"active_to_completed", session.StatusActive, session.StatusCompleted, true},
		{"active_to_flagged", session.StatusActive, session.StatusFlagged, true},
		{"active_to_pending", session.StatusActive, session.StatusPending, false},
		{"flagged_to_active", session.StatusFlagged, session.StatusActive, true},
		{"flagged_to_completed", session.StatusFlagged, session.StatusCompleted, true},
		{"flagged_to_pending", session.StatusFlagged, session.StatusPending, false},
		// completed is terminal
		{"completed_to_active", session.StatusCompleted, session.StatusActive, false},
		{"completed_to_flagged", session.StatusCompleted, session.StatusFlagged, false},
		// unknown statuses go nowhere
		{"unknown_from", session.Status("archived"), session.StatusActive, false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := tt.from.CanTransitionTo(tt.to)

			if got != tt.want {
				t.Fatalf("CanTransitionTo(%q -> %q) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestNewFromStartRequest(t *testing.T) {
	req := session.StartSessionRequest{
		ExamID:    "3d60b1a9-7d2a-4b86-9a1d-0f0f58d0a111",
		StudentID: "9f0a2c61-64a0-4f0e-bd55-0d70cf4b2222",
	}

	s := session.NewFromStartRequest(req)

	if s.ID == "" {
		t.Fatal("expected a generated id")
	}

	if s.Status != session.StatusActive {
		t.Fatalf("got status %q, want active", s.Status)
	}

	if s.IDVerified {
		t.Fatal("per-session idVerified must start false")
	}

	if s.StartTime.IsZero() {
		t.Fatal("expected startTime to be set")
	}

	if s.EndTime != nil {
		t.Fatal("endTime must be nil at creation")
	}

	if s.ExamID != req.ExamID || s.StudentID != req.StudentID {
		t.Fatalf("exam/student not carried over: %+v", s)
	}

	// no dedup by design: a second start is a brand new session
	s2 := session.NewFromStartRequest(req)

	if s2.ID == s.ID {
		t.Fatal("two starts must produce distinct sessions")
	}
}
