package postgres

import (
	"context"
	"errors"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/session"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SessionsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewSessionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *SessionsRepo {
	return &SessionsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *SessionsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const sessionColumns = `id, exam_id, student_id, proctor_id, start_time, end_time, status, id_verified, created_at, updated_at`

func scanSession(row pgx.Row) (session.Session, error) {
	var s session.Session

	err := row.Scan(
		&s.ID,
		&s.ExamID,
		&s.StudentID,
		&s.ProctorID,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.IDVerified,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, err
	}

	return s, nil
}

// Create inserts the session row. There is intentionally no duplicate check:
// two starts for the same student/exam pair produce two sessions.
func (r *SessionsRepo) Create(ctx context.Context, s session.Session) (session.Session, error) {
	err := r.observe("sessions.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO exam_sessions (id, exam_id, student_id, proctor_id, start_time, end_time, status, id_verified, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			s.ID, s.ExamID, s.StudentID, s.ProctorID, s.StartTime, s.EndTime, s.Status, s.IDVerified, s.CreatedAt, s.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return session.Session{}, err
	}

	return s, nil
}

func (r *SessionsRepo) GetByID(ctx context.Context, id string) (s session.Session, err error) {
	err = r.observe("sessions.get_by_id", func() error {
		var e error
		s, e = scanSession(r.pool.QueryRow(ctx,
			`SELECT `+sessionColumns+` FROM exam_sessions WHERE id = $1`, id))
		return e
	})
	return
}

// UpdateStatus moves the session through the lifecycle table under a row lock,
// so two proctors racing on the same session cannot both win an illegal move.
// The acting proctor claims an unassigned session; a move to completed stamps
// end_time.
func (r *SessionsRepo) UpdateStatus(ctx context.Context, id string, next session.Status, proctorID string) (updated session.Session, err error) {
	err = r.observe("sessions.update_status", func() error {
		tx, txErr := r.pool.BeginTx(ctx, pgx.TxOptions{})

		if txErr != nil {
			return txErr
		}

		defer func() { _ = tx.Rollback(ctx) }()

		var current session.Status

		txErr = tx.QueryRow(ctx,
			`SELECT status FROM exam_sessions WHERE id = $1 FOR UPDATE`, id).Scan(&current)

		if txErr != nil {
			if errors.Is(txErr, pgx.ErrNoRows) {
				return session.ErrNotFound
			}
			return txErr
		}

		if !current.CanTransitionTo(next) {
			return session.ErrInvalidTransition
		}

		updated, txErr = scanSession(tx.QueryRow(ctx,
			`UPDATE exam_sessions
			 SET status = $2,
			     proctor_id = COALESCE(proctor_id, $3),
			     end_time = CASE WHEN $2 = 'completed' THEN NOW() ELSE end_time END,
			     updated_at = NOW()
			 WHERE id = $1
			 RETURNING `+sessionColumns, id, next, proctorID))

		if txErr != nil {
			return txErr
		}

		return tx.Commit(ctx)
	})
	return
}

const sessionDetailQuery = `
	SELECT s.id, s.exam_id, s.student_id, s.proctor_id, s.start_time, s.end_time, s.status, s.id_verified, s.created_at, s.updated_at,
	       e.id, e.title, e.description, e.date, e.duration, e.created_by, e.created_at, e.updated_at,
	       st.id, st.name, st.email,
	       p.id, p.name, p.email
	FROM exam_sessions s
	JOIN exams e ON e.id = s.exam_id
	JOIN users st ON st.id = s.student_id
	LEFT JOIN users p ON p.id = s.proctor_id
`

func scanSessionDetail(row pgx.Row) (session.Detail, error) {
	var d session.Detail
	var student user.Summary
	var proctorID, proctorName, proctorEmail *string

	err := row.Scan(
		&d.ID,
		&d.ExamID,
		&d.StudentID,
		&d.ProctorID,
		&d.StartTime,
		&d.EndTime,
		&d.Status,
		&d.IDVerified,
		&d.CreatedAt,
		&d.UpdatedAt,
		&d.Exam.ID,
		&d.Exam.Title,
		&d.Exam.Description,
		&d.Exam.Date,
		&d.Exam.Duration,
		&d.Exam.CreatedBy,
		&d.Exam.CreatedAt,
		&d.Exam.UpdatedAt,
		&student.ID,
		&student.Name,
		&student.Email,
		&proctorID,
		&proctorName,
		&proctorEmail,
	)

	if err != nil {
		return session.Detail{}, err
	}

	d.Student = &student

	if proctorID != nil {
		d.Proctor = &user.Summary{ID: *proctorID, Name: *proctorName, Email: *proctorEmail}
	}

	return d, nil
}

func (r *SessionsRepo) listDetails(ctx context.Context, op, where string, args ...any) ([]session.Detail, error) {
	var out []session.Detail

	err := r.observe(op, func() error {
		rows, queryErr := r.pool.Query(ctx, sessionDetailQuery+where+` ORDER BY s.start_time DESC, s.id ASC`, args...)

		if queryErr != nil {
			return queryErr
		}

		defer rows.Close()

		out = make([]session.Detail, 0)

		for rows.Next() {
			d, scanErr := scanSessionDetail(rows)

			if scanErr != nil {
				return scanErr
			}

			out = append(out, d)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListByStudent returns a student's own sessions. The student summary is
// dropped from the payload: the caller already knows who they are.
func (r *SessionsRepo) ListByStudent(ctx context.Context, studentID string) ([]session.Detail, error) {
	details, err := r.listDetails(ctx, "sessions.list_by_student", ` WHERE s.student_id = $1`, studentID)

	if err != nil {
		return nil, err
	}

	for i := range details {
		details[i].Student = nil
	}

	return details, nil
}

// ListAll returns every session for the proctor dashboard.
func (r *SessionsRepo) ListAll(ctx context.Context) ([]session.Detail, error) {
	return r.listDetails(ctx, "sessions.list_all", ``)
}
