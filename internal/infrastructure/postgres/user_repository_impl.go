package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-slot-booking/internal/domain/entity"
	"github.com/oksasatya/go-slot-booking/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id::text, username, display_name, email, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateIfAbsent relies on the users_username_key constraint; a concurrent
// insert of the same username yields no row instead of an error.
func (r *UserRepository) CreateIfAbsent(ctx context.Context, u *entity.User) (bool, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, display_name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (username) DO NOTHING
		RETURNING id::text, created_at, updated_at
	`, u.Username, u.DisplayName, u.Email)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	return true, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE username = $1
	`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// BackfillEmail sets email only where it is still NULL, then returns the
// stored row. COALESCE keeps an existing email untouched in one statement.
func (r *UserRepository) BackfillEmail(ctx context.Context, userID, email string) (*entity.User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `
		UPDATE users
		SET email = COALESCE(email, $2),
		    updated_at = CASE WHEN email IS NULL THEN now() ELSE updated_at END
		WHERE id = $1::uuid
		RETURNING `+userColumns+`
	`, userID, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("backfill email for %s: %w", userID, err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
