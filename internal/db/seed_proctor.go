package db

import (
	"context"
	"errors"
	"time"

	"github.com/KmNeetuSingh/Exam-Proctor/internal/config"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/domain/user"
	"github.com/KmNeetuSingh/Exam-Proctor/internal/security"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureProctorUser creates the bootstrap proctor account if configured and
// not already present. Without a proctor there is no way to create exams or
// verify students.
func EnsureProctorUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.SeedProctorEmail == "" || cfg.SeedProctorPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.SeedProctorEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.SeedProctorPassword)

	if err != nil {
		return err
	}

	now := time.Now().UTC()

	u := user.User{
		ID:           uuid.NewString(),
		Name:         cfg.SeedProctorName,
		Email:        cfg.SeedProctorEmail,
		PasswordHash: hash,
		Role:         user.RoleProctor,
		IsIDVerified: true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, is_id_verified, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.IsIDVerified, u.CreatedAt, u.UpdatedAt,
	)

	return err
}
