package userstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/teamauth/pkg/auth"
	"github.com/dmitrymomot/teamauth/pkg/pg"
)

var _ auth.UserStorage = (*Postgres)(nil)

// Postgres stores accounts in the users table created by Migrations.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const userColumns = `id::text, email, full_name, avatar, auth_provider, is_first_login, is_profile_complete, created_at, updated_at`

// CreateUser relies on ON CONFLICT so a losing concurrent insert is detected
// without aborting a surrounding transaction.
func (p *Postgres) CreateUser(ctx context.Context, user *auth.User) error {
	tag, err := p.pool.Exec(ctx, `
		INSERT INTO users (id, email, full_name, avatar, auth_provider, is_first_login, is_profile_complete, created_at, updated_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (email) DO NOTHING`,
		user.ID.String(), user.Email, user.FullName, user.Avatar, string(user.AuthProvider),
		user.IsFirstLogin, user.IsProfileComplete, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return auth.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrEmailAlreadyExists
	}
	return nil
}

func (p *Postgres) GetUserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return p.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1::uuid`, id.String())
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return p.queryOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (p *Postgres) UpdateUser(ctx context.Context, id uuid.UUID, upd auth.ProfileUpdate) (*auth.User, error) {
	var updatedAt *time.Time
	if !upd.UpdatedAt.IsZero() {
		updatedAt = &upd.UpdatedAt
	}
	return p.queryOne(ctx, `
		UPDATE users SET
			full_name           = COALESCE($2, full_name),
			avatar              = COALESCE($3, avatar),
			is_first_login      = COALESCE($4, is_first_login),
			is_profile_complete = COALESCE($5, is_profile_complete),
			updated_at          = COALESCE($6, updated_at)
		WHERE id = $1::uuid
		RETURNING `+userColumns,
		id.String(), upd.FullName, upd.Avatar, upd.IsFirstLogin, upd.IsProfileComplete, updatedAt,
	)
}

func (p *Postgres) queryOne(ctx context.Context, sql string, args ...any) (*auth.User, error) {
	var (
		u        auth.User
		id       string
		provider string
	)
	err := p.pool.QueryRow(ctx, sql, args...).Scan(
		&id, &u.Email, &u.FullName, &u.Avatar, &provider,
		&u.IsFirstLogin, &u.IsProfileComplete, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if u.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt user id %q: %w", id, err)
	}
	u.AuthProvider = auth.AuthProvider(provider)
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}
