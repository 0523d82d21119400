package postgres

import (
	"context"
	"errors"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/exam"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ExamsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewExamsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ExamsRepo {
	return &ExamsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *ExamsRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *ExamsRepo) Create(ctx context.Context, req exam.CreateExamRequest) (exam.Exam, error) {
	e := exam.NewFromCreateRequest(req)

	err := r.observe("exams.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO exams (id, title, description, date, duration, created_by, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			e.ID, e.Title, e.Description, e.Date, e.Duration, e.CreatedBy, e.CreatedAt, e.UpdatedAt,
		)
		return execErr
	})

	if err != nil {
		return exam.Exam{}, err
	}

	return e, nil
}

const examWithCreatorQuery = `
	SELECT e.id, e.title, e.description, e.date, e.duration, e.created_by, e.created_at, e.updated_at,
	       u.id, u.name, u.email
	FROM exams e
	JOIN users u ON u.id = e.created_by
`

func scanExamWithCreator(row pgx.Row) (exam.WithCreator, error) {
	var e exam.WithCreator

	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.Duration,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
		&e.Creator.ID,
		&e.Creator.Name,
		&e.Creator.Email,
	)

	return e, err
}

// List returns every exam with the creating proctor joined in. Deliberately
// unpaginated: the exam catalogue is the whole browsable surface.
func (r *ExamsRepo) List(ctx context.Context) ([]exam.WithCreator, error) {
	var out []exam.WithCreator

	err := r.observe("exams.list", func() error {
		rows, e := r.pool.Query(ctx, examWithCreatorQuery+` ORDER BY e.date ASC, e.id ASC`)

		if e != nil {
			return e
		}

		defer rows.Close()

		out = make([]exam.WithCreator, 0)

		for rows.Next() {
			ex, scanErr := scanExamWithCreator(rows)

			if scanErr != nil {
				return scanErr
			}

			out = append(out, ex)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ExamsRepo) GetByID(ctx context.Context, id string) (exam.WithCreator, error) {
	var e exam.WithCreator

	err := r.observe("exams.get_by_id", func() error {
		var scanErr error
		e, scanErr = scanExamWithCreator(r.pool.QueryRow(ctx, examWithCreatorQuery+` WHERE e.id = $1`, id))
		return scanErr
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exam.WithCreator{}, exam.ErrNotFound
		}

		return exam.WithCreator{}, err
	}

	return e, nil
}

// Exists is the cheap referential check used before starting a session.
func (r *ExamsRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool

	err := r.observe("exams.exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM exams WHERE id = $1)`, id).Scan(&exists)
	})

	return exists, err
}
