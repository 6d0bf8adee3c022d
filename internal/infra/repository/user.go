package repository

import (
	"context"
	"time"

	"studio-booking/internal/domain/user"
	"studio-booking/internal/infra"
	"studio-booking/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return r.findBy(ctx, `
		SELECT id, email, password_hash, role, is_active, last_login_at, created_at
		FROM users WHERE email = $1`, email)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.findBy(ctx, `
		SELECT id, email, password_hash, role, is_active, last_login_at, created_at
		FROM users WHERE id = $1`, id)
}

func (r *UserRepository) findBy(ctx context.Context, query string, arg any) (*user.User, error) {
	var (
		id           uuid.UUID
		email        string
		passwordHash string
		role         string
		isActive     bool
		lastLoginAt  pgtype.Timestamptz
		createdAt    time.Time
	)
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&id, &email, &passwordHash, &role, &isActive, &lastLoginAt, &createdAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user", err)
	}

	u, err := user.ReconstructUser(id, email, passwordHash, user.Role(role), isActive,
		pgconv.TimePtrFromPgtype(lastLoginAt), createdAt)
	if err != nil {
		return nil, infra.WrapRepoErr("corrupt user row", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return infra.WrapRepoErr("failed to update last login", err)
	}
	return nil
}
